/*
Package sqlite provides the SQLite-backed implementation of the
attendance storage interface.

PURPOSE:
  Implements attendance.Store using database/sql over mattn/go-sqlite3.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  employees:  Identity records (surrogate id + unique external id)
  attendance: Clock-in/clock-out events keyed to an employee

OPEN-RECORD ENFORCEMENT:
  idx_attendance_open is a partial unique index on
  (employee_id, date) WHERE time_out IS NULL. It makes the ledger's
  check-then-insert safe under concurrency: the second of two racing
  mark-ins hits the constraint and surfaces attendance.ErrAlreadyIn
  instead of a second open row.

PARAMETERIZATION:
  Every query uses bound parameters. No user-supplied value is ever
  formatted into query text; the reporting filters are appended as
  "AND ... ?" fragments with matching args.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: multiple readers don't block, single writer at a time,
  better crash recovery.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := attendance.NewLedger(store)

SEE ALSO:
  - attendance/store.go: Interface definition
  - attendance/ledger.go: Write path
  - attendance/report.go: Read path
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-kiosk/attendance"
)

// Store implements attendance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employee identity records
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id_text TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		department TEXT,
		job_title TEXT
	);

	-- Attendance events (created on mark-in, closed once on mark-out)
	CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		time_in TEXT NOT NULL,
		time_out TEXT,
		location TEXT,
		FOREIGN KEY (employee_id) REFERENCES employees(id)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_employee_date
		ON attendance(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_attendance_date
		ON attendance(date);

	-- CRITICAL: at most one open record per (employee, date).
	-- Closes the race between two concurrent mark-ins that both pass
	-- the status precondition.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_open
		ON attendance(employee_id, date)
		WHERE time_out IS NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// CreateEmployee inserts an identity record and returns its id.
func (s *Store) CreateEmployee(ctx context.Context, e attendance.Employee) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (employee_id_text, name, department, job_title)
		 VALUES (?, ?, ?, ?)`,
		e.ExternalID, e.Name, nullString(e.Department), nullString(e.JobTitle),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, &attendance.DuplicateIdentifierError{ExternalID: e.ExternalID}
		}
		return 0, fmt.Errorf("failed to create employee: %w", err)
	}
	return res.LastInsertId()
}

// GetEmployee returns the employee or nil when unknown.
func (s *Store) GetEmployee(ctx context.Context, id int64) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, employee_id_text, name, department, job_title
		 FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id_text, name, department, job_title
		 FROM employees ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

// CountEmployees returns the total number of identity records.
func (s *Store) CountEmployees(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count)
	return count, err
}

// =============================================================================
// ATTENDANCE LEDGER
// =============================================================================

// InsertRecord appends an open attendance record and returns its id.
func (s *Store) InsertRecord(ctx context.Context, rec attendance.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (employee_id, date, time_in, location)
		 VALUES (?, ?, ?, ?)`,
		rec.EmployeeID, rec.Date, rec.TimeIn, rec.Location,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, &attendance.AlreadyInError{EmployeeID: rec.EmployeeID, Date: rec.Date}
		}
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}
	return res.LastInsertId()
}

// CloseRecord sets time_out on the given record. The single mutation
// path: a closed record is never reopened or reassigned.
func (s *Store) CloseRecord(ctx context.Context, recordID int64, timeOut string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE attendance SET time_out = ? WHERE id = ? AND time_out IS NULL`,
		timeOut, recordID,
	)
	if err != nil {
		return fmt.Errorf("failed to close record: %w", err)
	}
	return nil
}

// OpenRecord returns the open record for (employee, date) or nil.
// Latest time_in wins if several exist.
func (s *Store) OpenRecord(ctx context.Context, employeeID int64, date string) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, employee_id, date, time_in, time_out, location
		 FROM attendance
		 WHERE employee_id = ? AND date = ? AND (time_out IS NULL OR time_out = '')
		 ORDER BY time_in DESC
		 LIMIT 1`,
		employeeID, date)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open record: %w", err)
	}
	return rec, nil
}

// RecordsOn returns all records for (employee, date), most recently
// created first.
func (s *Store) RecordsOn(ctx context.Context, employeeID int64, date string) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		`SELECT id, employee_id, date, time_in, time_out, location
		 FROM attendance
		 WHERE employee_id = ? AND date = ?
		 ORDER BY id DESC`,
		employeeID, date)
}

// RecordsForEmployee returns every record for one employee, newest first.
func (s *Store) RecordsForEmployee(ctx context.Context, employeeID int64) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		`SELECT id, employee_id, date, time_in, time_out, location
		 FROM attendance
		 WHERE employee_id = ?
		 ORDER BY date DESC, time_in DESC`,
		employeeID)
}

// CountRecords returns the total number of attendance records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&count)
	return count, err
}

// =============================================================================
// REPORTING QUERIES
// =============================================================================

// CountEmployeesIn counts distinct employees with an open record on the date.
func (s *Store) CountEmployeesIn(ctx context.Context, date string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT e.id)
		 FROM employees e
		 JOIN attendance a ON e.id = a.employee_id
		 WHERE a.date = ? AND (a.time_out IS NULL OR a.time_out = '')`,
		date,
	).Scan(&count)
	return count, err
}

// CountEmployeesOut counts distinct employees with a closed record and
// no open record on the date. Excluding the open side keeps the
// dashboard partition exact: IN and OUT never overlap.
func (s *Store) CountEmployeesOut(ctx context.Context, date string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT e.id)
		 FROM employees e
		 JOIN attendance a ON e.id = a.employee_id
		 WHERE a.date = ? AND a.time_out IS NOT NULL AND a.time_out != ''
		   AND e.id NOT IN (
		       SELECT employee_id FROM attendance
		       WHERE date = ? AND (time_out IS NULL OR time_out = '')
		   )`,
		date, date,
	).Scan(&count)
	return count, err
}

// CountByLocation returns the date's record count per location value.
func (s *Store) CountByLocation(ctx context.Context, date string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(location, ''), COUNT(*)
		 FROM attendance
		 WHERE date = ?
		 GROUP BY location`,
		date)
	if err != nil {
		return nil, fmt.Errorf("failed to count by location: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var location string
		var count int
		if err := rows.Scan(&location, &count); err != nil {
			return nil, fmt.Errorf("failed to scan location count: %w", err)
		}
		counts[location] = count
	}
	return counts, rows.Err()
}

// ListJoined returns attendance records joined with employee identity,
// bounded by the filter. Filter values are bound parameters only.
func (s *Store) ListJoined(ctx context.Context, f attendance.RecordFilter) ([]attendance.JoinedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT a.id, a.employee_id, e.employee_id_text, e.name,
		       a.date, a.time_in, a.time_out, a.location
		FROM attendance a
		JOIN employees e ON a.employee_id = e.id
		WHERE 1=1`
	var args []any

	if f.StartDate != "" {
		query += " AND a.date >= ?"
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		query += " AND a.date <= ?"
		args = append(args, f.EndDate)
	}
	if f.EmployeeID != nil {
		query += " AND a.employee_id = ?"
		args = append(args, *f.EmployeeID)
	}

	query += " ORDER BY a.date DESC, a.time_in DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []attendance.JoinedRecord
	for rows.Next() {
		var rec attendance.JoinedRecord
		var timeOut, location sql.NullString
		if err := rows.Scan(&rec.RecordID, &rec.EmployeeID, &rec.ExternalID, &rec.Name,
			&rec.Date, &rec.TimeIn, &timeOut, &location); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.TimeOut = timeOut.String
		rec.Location = location.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*attendance.Employee, error) {
	var emp attendance.Employee
	var department, jobTitle sql.NullString
	if err := row.Scan(&emp.ID, &emp.ExternalID, &emp.Name, &department, &jobTitle); err != nil {
		return nil, err
	}
	emp.Department = department.String
	emp.JobTitle = jobTitle.String
	return &emp, nil
}

func scanRecord(row scanner) (*attendance.Record, error) {
	var rec attendance.Record
	var timeOut, location sql.NullString
	if err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.TimeIn, &timeOut, &location); err != nil {
		return nil, err
	}
	rec.TimeOut = timeOut.String
	rec.Location = location.String
	return &rec, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
