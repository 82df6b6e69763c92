/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request structs carry validator/v10 tags; handlers run the shared
  validator instance before touching the domain.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import "github.com/warp/attendance-kiosk/attendance"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// LoginRequest is the admin credential submission.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
	JobTitle   string `json:"job_title"`
}

// MarkRequest is a kiosk mark-in or mark-out submission. Location is
// only meaningful for mark-in and defaults to "Onsite".
type MarkRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required"`
	Location   string `json:"location"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	JobTitle   string `json:"job_title,omitempty"`
}

// StatusDTO is the kiosk status-poll response.
type StatusDTO struct {
	Status attendance.Status `json:"status"`
}

// RecordDTO represents a joined attendance record.
type RecordDTO struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	ExternalID string `json:"employee_id_text"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	TimeIn     string `json:"time_in"`
	TimeOut    string `json:"time_out,omitempty"`
	Location   string `json:"location,omitempty"`
}

// RecordsResponse wraps a record listing. Notice is set when a
// malformed filter was ignored and the unfiltered set returned.
type RecordsResponse struct {
	Records []RecordDTO `json:"records"`
	Notice  string      `json:"notice,omitempty"`
}

// DashboardDTO is the admin summary for one date.
type DashboardDTO struct {
	Date           string         `json:"date"`
	TotalEmployees int            `json:"total_employees"`
	EmployeesIn    int            `json:"employees_in_today"`
	EmployeesOut   int            `json:"employees_out_today"`
	NotMarked      int            `json:"employees_not_marked_today"`
	TotalRecords   int            `json:"total_attendance_records"`
	ByLocation     map[string]int `json:"today_by_location"`
	Recent         []RecordDTO    `json:"recent_activities"`
}

// ReportRowDTO is one annotated row of a per-employee report.
type ReportRowDTO struct {
	Date            string `json:"date"`
	TimeIn          string `json:"time_in"`
	TimeOut         string `json:"time_out,omitempty"`
	Location        string `json:"location,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	DurationHours   string `json:"duration_hours,omitempty"`
}

// EmployeeReportDTO is all records for one employee, newest first.
type EmployeeReportDTO struct {
	Employee EmployeeDTO    `json:"employee"`
	Records  []ReportRowDTO `json:"records"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e attendance.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		EmployeeID: e.ExternalID,
		Name:       e.Name,
		Department: e.Department,
		JobTitle:   e.JobTitle,
	}
}

func toRecordDTO(r attendance.JoinedRecord) RecordDTO {
	return RecordDTO{
		ID:         r.RecordID,
		EmployeeID: r.EmployeeID,
		ExternalID: r.ExternalID,
		Name:       r.Name,
		Date:       r.Date,
		TimeIn:     r.TimeIn,
		TimeOut:    r.TimeOut,
		Location:   r.Location,
	}
}

func toRecordDTOs(records []attendance.JoinedRecord) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}
