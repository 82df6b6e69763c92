/*
handlers.go - HTTP API handlers for the attendance kiosk

PURPOSE:
  Exposes the attendance ledger and reports via a JSON API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Kiosk (no credential):
    GET    /api/employees               Roster for the kiosk dropdown
    GET    /api/employees/{id}/status   Daily status token (NONE/IN/OUT)
    POST   /api/mark-in                 Clock in
    POST   /api/mark-out                Clock out

  Session:
    POST   /api/login                   Admin login (sets session cookie)
    POST   /api/logout                  Clears the session cookie

  Admin (session required):
    POST   /api/employees               Create employee
    GET    /api/dashboard               Summary counts for today
    GET    /api/records                 Filtered record listing
    GET    /api/employees/{id}/report   Per-employee report with durations
    GET    /api/export.csv              Full CSV export

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Bad credentials or missing session
  - 404: Unknown employee
  - 409: Already in, nothing open, duplicate identifier
  - 500: Persistence errors (generic message; detail is logged, query
         text never reaches the client)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - auth/auth.go: Session gate
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warp/attendance-kiosk/attendance"
	"github.com/warp/attendance-kiosk/auth"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger   *attendance.Ledger
	Reporter *attendance.Reporter
	Store    attendance.Store
	Gate     *auth.Gate

	validate *validator.Validate

	// now is the clock used for mark-in/mark-out and "today" in
	// reports. Overridable in tests.
	now func() time.Time
}

// NewHandler creates a handler over the given store and access gate.
func NewHandler(store attendance.Store, gate *auth.Gate) *Handler {
	return &Handler{
		Ledger:   attendance.NewLedger(store),
		Reporter: attendance.NewReporter(store),
		Store:    store,
		Gate:     gate,
		validate: validator.New(),
		now:      time.Now,
	}
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// Login checks the submitted credentials and sets the session cookie.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required", nil)
		return
	}

	token, err := h.Gate.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	http.SetCookie(w, auth.SessionCookie(token))
	writeJSON(w, http.StatusOK, map[string]bool{"admin": true})
}

// Logout clears the session cookie.
// POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie())
	writeJSON(w, http.StatusOK, map[string]bool{"admin": false})
}

// =============================================================================
// KIOSK HANDLERS
// =============================================================================

// ListEmployees returns the roster for the kiosk dropdown.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeInternalError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStatus returns the employee's status token for today.
// GET /api/employees/{id}/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}

	today := h.now().Format(attendance.DateLayout)
	status, err := h.Ledger.ResolveStatus(r.Context(), id, today)
	if err != nil {
		writeInternalError(w, "Failed to resolve status", err)
		return
	}

	writeJSON(w, http.StatusOK, StatusDTO{Status: status})
}

// MarkIn records a clock-in for the submitted employee.
// POST /api/mark-in
func (h *Handler) MarkIn(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	if err := h.Ledger.MarkIn(r.Context(), req.EmployeeID, req.Location, h.now()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Marked in"})
}

// MarkOut records a clock-out for the submitted employee.
// POST /api/mark-out
func (h *Handler) MarkOut(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	if err := h.Ledger.MarkOut(r.Context(), req.EmployeeID, h.now()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Marked out"})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CreateEmployee creates a new employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Employee ID and Name are required", nil)
		return
	}

	emp := attendance.Employee{
		ExternalID: req.EmployeeID,
		Name:       req.Name,
		Department: req.Department,
		JobTitle:   req.JobTitle,
	}
	id, err := h.Store.CreateEmployee(r.Context(), emp)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	emp.ID = id

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// Dashboard returns the summary counts for today.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	today := h.now().Format(attendance.DateLayout)
	dash, err := h.Reporter.Dashboard(r.Context(), today)
	if err != nil {
		writeInternalError(w, "Failed to build dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardDTO{
		Date:           dash.Date,
		TotalEmployees: dash.TotalEmployees,
		EmployeesIn:    dash.EmployeesIn,
		EmployeesOut:   dash.EmployeesOut,
		NotMarked:      dash.NotMarked,
		TotalRecords:   dash.TotalRecords,
		ByLocation:     dash.ByLocation,
		Recent:         toRecordDTOs(dash.Recent),
	})
}

// ListRecords returns the filtered record listing. A malformed
// employee filter is ignored: the unfiltered set comes back with a
// notice instead of an error.
// GET /api/records?start_date=&end_date=&employee_id_filter=
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := attendance.RecordFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}

	var notice string
	employeeID, err := attendance.ParseEmployeeFilter(q.Get("employee_id_filter"))
	if err != nil {
		if !errors.Is(err, attendance.ErrMalformedFilter) {
			writeInternalError(w, "Failed to parse filter", err)
			return
		}
		notice = "Invalid employee filter ignored."
	} else {
		filter.EmployeeID = employeeID
	}

	records, err := h.Reporter.Records(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "Failed to list records", err)
		return
	}

	writeJSON(w, http.StatusOK, RecordsResponse{
		Records: toRecordDTOs(records),
		Notice:  notice,
	})
}

// EmployeeReport returns one employee's records annotated with
// durations, newest first.
// GET /api/employees/{id}/report
func (h *Handler) EmployeeReport(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}

	report, err := h.Reporter.EmployeeReport(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rows := make([]ReportRowDTO, len(report.Rows))
	for i, row := range report.Rows {
		rows[i] = ReportRowDTO{
			Date:            row.Date,
			TimeIn:          row.TimeIn,
			TimeOut:         row.TimeOut,
			Location:        row.Location,
			DurationMinutes: row.DurationMinutes,
			DurationHours:   row.DurationHours,
		}
	}

	writeJSON(w, http.StatusOK, EmployeeReportDTO{
		Employee: toEmployeeDTO(report.Employee),
		Records:  rows,
	})
}

// ExportCSV streams the full record set as a CSV attachment.
// GET /api/export.csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance_records.csv"`)

	if _, err := h.Reporter.WriteCSV(r.Context(), w); err != nil {
		// Headers may already be out; log and abandon the response.
		log.Printf("csv export failed: %v", err)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("employee id %q is not numeric", raw)
	}
	return id, nil
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case attendance.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Employee not found", err)
	case errors.Is(err, attendance.ErrAlreadyIn):
		writeError(w, http.StatusConflict, "Employee has already marked in and not yet marked out", err)
	case errors.Is(err, attendance.ErrNoOpenRecord):
		writeError(w, http.StatusConflict, "No active mark-in record found for this employee today", err)
	case errors.Is(err, attendance.ErrDuplicateIdentifier):
		writeError(w, http.StatusConflict, "Employee ID already exists", err)
	case attendance.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeInternalError(w, "Operation failed", err)
	}
}

// writeInternalError logs the detail and sends a generic message so
// persistence internals never reach the client.
func writeInternalError(w http.ResponseWriter, message string, err error) {
	log.Printf("%s: %v", message, err)
	writeError(w, http.StatusInternalServerError, message, nil)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
