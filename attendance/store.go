/*
store.go - Persistence interface for employees and attendance records

PURPOSE:
  Defines the interface between the domain logic and the database.
  The ledger appends and closes records; the reporter reads joined
  and aggregated views. Different implementations can use SQLite,
  PostgreSQL, or in-memory storage.

MUTATION CONTRACT:
  The ledger side is append-then-close:
  - InsertRecord(): the only way a row is created (mark-in)
  - CloseRecord(): the only mutation, sets time_out exactly once
  - No delete path exists for either table

OPEN-RECORD INVARIANT:
  At most one open record may exist per (employee, date). The
  implementation is expected to enforce this with a storage-level
  uniqueness constraint and surface violations as ErrAlreadyIn, so
  the check-then-insert sequence in the ledger cannot race into a
  second open record.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite with a partial unique index

SEE ALSO:
  - ledger.go: Write path using this interface
  - report.go: Read path using this interface
*/
package attendance

import "context"

// RecordFilter bounds a reporting query. Zero values mean "no bound".
// Dates are inclusive. EmployeeID is the surrogate key, not the
// external identifier.
type RecordFilter struct {
	StartDate  string
	EndDate    string
	EmployeeID *int64
}

// Store handles persistence of employees and attendance records.
type Store interface {
	// CreateEmployee inserts an identity record and returns its id.
	// A reused external identifier yields ErrDuplicateIdentifier.
	CreateEmployee(ctx context.Context, e Employee) (int64, error)

	// GetEmployee returns the employee or nil when unknown.
	GetEmployee(ctx context.Context, id int64) (*Employee, error)

	// ListEmployees returns all employees ordered by name.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// CountEmployees returns the total number of identity records.
	CountEmployees(ctx context.Context) (int, error)

	// InsertRecord appends an open attendance record and returns its id.
	// A second open record for the same (employee, date) yields
	// ErrAlreadyIn.
	InsertRecord(ctx context.Context, rec Record) (int64, error)

	// CloseRecord sets time_out on the given record.
	CloseRecord(ctx context.Context, recordID int64, timeOut string) error

	// OpenRecord returns the open record for (employee, date) or nil.
	// If several exist the one with the latest time_in wins.
	OpenRecord(ctx context.Context, employeeID int64, date string) (*Record, error)

	// RecordsOn returns all records for (employee, date), most recently
	// created first.
	RecordsOn(ctx context.Context, employeeID int64, date string) ([]Record, error)

	// RecordsForEmployee returns every record for one employee, ordered
	// by date descending then time_in descending.
	RecordsForEmployee(ctx context.Context, employeeID int64) ([]Record, error)

	// CountRecords returns the total number of attendance records.
	CountRecords(ctx context.Context) (int, error)

	// CountEmployeesIn counts distinct employees with an open record
	// on the date.
	CountEmployeesIn(ctx context.Context, date string) (int, error)

	// CountEmployeesOut counts distinct employees with at least one
	// closed record and no open record on the date.
	CountEmployeesOut(ctx context.Context, date string) (int, error)

	// CountByLocation returns the date's record count per location value.
	CountByLocation(ctx context.Context, date string) (map[string]int, error)

	// ListJoined returns attendance records joined with employee
	// identity, bounded by the filter, ordered by date descending then
	// time_in descending.
	ListJoined(ctx context.Context, f RecordFilter) ([]JoinedRecord, error)
}
