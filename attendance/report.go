/*
report.go - Read-only reporting over the ledger and employee store

PURPOSE:
  Composes the reporting queries: dashboard counts, filtered record
  listings, per-employee reports annotated with durations, and the
  CSV export. Everything here is a read; the reporter never mutates
  either table.

DASHBOARD INVARIANT:
  in + out + notMarked == total employees. An employee with both a
  closed and an open record today counts as IN only (an open record
  wins, matching status derivation), and notMarked is clamped at
  zero.

FILTERS:
  Date bounds are inclusive. The employee filter arrives as free text
  from a query parameter; ParseEmployeeFilter rejects non-numeric
  values with ErrMalformedFilter so callers can fall back to the
  unfiltered set instead of crashing. All filter values reach the
  store as bound parameters, never as query text.

SEE ALSO:
  - duration.go: Duration annotation
  - store.go: Query interface
*/
package attendance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvHeader is the fixed export column order.
var csvHeader = []string{"Employee ID", "Employee Name", "Date", "Time In", "Time Out", "Location"}

// csvMissingTimeOut is the placeholder for an open record's time_out.
const csvMissingTimeOut = "N/A"

// recentActivityLimit caps the dashboard's recent-records list.
const recentActivityLimit = 10

// Dashboard is the admin landing-page summary for one date.
type Dashboard struct {
	Date           string
	TotalEmployees int
	EmployeesIn    int
	EmployeesOut   int
	NotMarked      int
	TotalRecords   int
	ByLocation     map[string]int
	Recent         []JoinedRecord
}

// ReportRow is one record in a per-employee report, annotated with
// the computed duration when known.
type ReportRow struct {
	Record
	DurationMinutes *int
	DurationHours   string
}

// EmployeeReport is all of one employee's records, newest first.
type EmployeeReport struct {
	Employee Employee
	Rows     []ReportRow
}

// Reporter runs the read-only reporting queries.
type Reporter struct {
	store Store
}

// NewReporter creates a reporter over the given store.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// ParseEmployeeFilter parses a free-text employee filter into a
// surrogate id. Empty input means no filter. Non-numeric input fails
// with ErrMalformedFilter.
func ParseEmployeeFilter(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &MalformedFilterError{Raw: raw}
	}
	return &id, nil
}

// Dashboard computes the summary counts for the given date.
func (r *Reporter) Dashboard(ctx context.Context, date string) (*Dashboard, error) {
	total, err := r.store.CountEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	in, err := r.store.CountEmployeesIn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	out, err := r.store.CountEmployeesOut(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	records, err := r.store.CountRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	byLocation, err := r.store.CountByLocation(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	recent, err := r.store.ListJoined(ctx, RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}

	notMarked := total - in - out
	if notMarked < 0 {
		notMarked = 0
	}

	return &Dashboard{
		Date:           date,
		TotalEmployees: total,
		EmployeesIn:    in,
		EmployeesOut:   out,
		NotMarked:      notMarked,
		TotalRecords:   records,
		ByLocation:     byLocation,
		Recent:         recent,
	}, nil
}

// Records returns the joined record listing bounded by the filter,
// ordered by date descending then time_in descending.
func (r *Reporter) Records(ctx context.Context, f RecordFilter) ([]JoinedRecord, error) {
	records, err := r.store.ListJoined(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// EmployeeReport returns all records for one employee annotated with
// durations, newest first. Fails with ErrEmployeeNotFound for an
// unknown employee.
func (r *Reporter) EmployeeReport(ctx context.Context, employeeID int64) (*EmployeeReport, error) {
	emp, err := r.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("employee report: %w", err)
	}
	if emp == nil {
		return nil, &NotFoundError{EmployeeID: employeeID}
	}

	records, err := r.store.RecordsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("employee report: %w", err)
	}

	rows := make([]ReportRow, 0, len(records))
	for _, rec := range records {
		row := ReportRow{Record: rec}
		if minutes, ok := DurationMinutes(rec.TimeIn, rec.TimeOut); ok {
			row.DurationMinutes = &minutes
			row.DurationHours = DurationHours(minutes).String()
		}
		rows = append(rows, row)
	}

	return &EmployeeReport{Employee: *emp, Rows: rows}, nil
}

// WriteCSV streams the full joined record set to w as CSV and returns
// the number of data rows written. Open records render their time_out
// as "N/A".
func (r *Reporter) WriteCSV(ctx context.Context, w io.Writer) (int, error) {
	records, err := r.store.ListJoined(ctx, RecordFilter{})
	if err != nil {
		return 0, fmt.Errorf("csv export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("csv export: %w", err)
	}

	for _, rec := range records {
		timeOut := rec.TimeOut
		if timeOut == "" {
			timeOut = csvMissingTimeOut
		}
		row := []string{rec.ExternalID, rec.Name, rec.Date, rec.TimeIn, timeOut, rec.Location}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("csv export: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("csv export: %w", err)
	}
	return len(records), nil
}
