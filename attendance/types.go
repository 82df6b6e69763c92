/*
types.go - Core domain types for the attendance ledger

PURPOSE:
  Defines the employee identity record, the attendance record, and the
  daily status values derived from them. These types mirror the two
  persistence tables one-to-one; the store converts rows to these
  structs and nothing else.

DATE/TIME REPRESENTATION:
  Dates and times-of-day are stored and passed around as strings:
  dates as "2006-01-02", times as "15:04:05". A record carries a
  calendar date plus two times-of-day; a shift that crosses midnight
  keeps the date it started on (see duration.go for the rollover
  handling).

SEE ALSO:
  - store.go: Persistence interface over these types
  - status.go: Status derivation rules
*/
package attendance

// DateLayout is the canonical calendar-date format for records.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical time-of-day format for clock events.
const TimeLayout = "15:04:05"

// DefaultLocation is used when a mark-in does not specify a location.
const DefaultLocation = "Onsite"

// Status is an employee's daily attendance state.
type Status string

const (
	// StatusNone means the employee has no record for the day.
	StatusNone Status = "NONE"

	// StatusIn means the employee has an open record (clocked in,
	// not yet clocked out).
	StatusIn Status = "IN"

	// StatusOut means every record for the day is closed (at least
	// one completed shift, nothing open).
	StatusOut Status = "OUT"
)

// Employee is an identity record. ID is the surrogate key assigned by
// the store; ExternalID is the human-readable identifier entered by
// the administrator and unique across employees.
type Employee struct {
	ID         int64
	ExternalID string
	Name       string
	Department string
	JobTitle   string
}

// Record is a single attendance event pair. TimeOut is empty while
// the record is open; it is set exactly once on mark-out and never
// cleared afterwards.
type Record struct {
	ID         int64
	EmployeeID int64
	Date       string
	TimeIn     string
	TimeOut    string
	Location   string
}

// Open reports whether the record has no clock-out yet.
func (r Record) Open() bool {
	return r.TimeOut == ""
}

// JoinedRecord is an attendance record joined with its employee's
// identity, as produced by the reporting queries.
type JoinedRecord struct {
	RecordID   int64
	EmployeeID int64
	ExternalID string
	Name       string
	Date       string
	TimeIn     string
	TimeOut    string
	Location   string
}

// Open reports whether the joined record has no clock-out yet.
func (r JoinedRecord) Open() bool {
	return r.TimeOut == ""
}
