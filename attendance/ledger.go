/*
ledger.go - Mark-in / mark-out operations

PURPOSE:
  The write path of the attendance ledger. Mark-in appends an open
  record after checking the employee exists and is not already in;
  mark-out closes the latest open record. These are the only two
  mutations in the system.

PRECONDITION AND RACE:
  Mark-in is check-then-insert. The status check gives the friendly
  error path; the store's open-record uniqueness constraint backs it
  up, so two concurrent mark-ins for the same employee cannot both
  land an open record - the loser gets ErrAlreadyIn from the insert.

MULTIPLE SHIFTS:
  OUT and NONE both permit a new mark-in. An employee may complete
  several IN/OUT pairs on one day; each pair is independent.

SEE ALSO:
  - status.go: Status derivation used by the precondition
  - store/sqlite/sqlite.go: Constraint enforcement
*/
package attendance

import (
	"context"
	"fmt"
	"time"
)

// Ledger performs mark-in and mark-out against a Store.
type Ledger struct {
	store Store
}

// NewLedger creates a ledger over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// MarkIn records a clock-in for the employee at now. The location
// defaults to DefaultLocation when empty. Fails with ErrAlreadyIn if
// an open record exists for today, or ErrEmployeeNotFound for an
// unknown employee.
func (l *Ledger) MarkIn(ctx context.Context, employeeID int64, location string, now time.Time) error {
	emp, err := l.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("mark-in: %w", err)
	}
	if emp == nil {
		return &NotFoundError{EmployeeID: employeeID}
	}

	date := now.Format(DateLayout)

	status, err := l.ResolveStatus(ctx, employeeID, date)
	if err != nil {
		return fmt.Errorf("mark-in: %w", err)
	}
	if status == StatusIn {
		return &AlreadyInError{EmployeeID: employeeID, Date: date}
	}

	if location == "" {
		location = DefaultLocation
	}

	rec := Record{
		EmployeeID: employeeID,
		Date:       date,
		TimeIn:     now.Format(TimeLayout),
		Location:   location,
	}
	if _, err := l.store.InsertRecord(ctx, rec); err != nil {
		if IsClientError(err) {
			// Lost the check-then-insert race; the constraint caught it.
			return &AlreadyInError{EmployeeID: employeeID, Date: date}
		}
		return fmt.Errorf("mark-in: %w", err)
	}
	return nil
}

// MarkOut records a clock-out for the employee at now, closing the
// open record with the latest time_in. Fails with ErrNoOpenRecord
// when nothing is open today, or ErrEmployeeNotFound for an unknown
// employee. time_out is set exactly once and never reassigned.
func (l *Ledger) MarkOut(ctx context.Context, employeeID int64, now time.Time) error {
	emp, err := l.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("mark-out: %w", err)
	}
	if emp == nil {
		return &NotFoundError{EmployeeID: employeeID}
	}

	date := now.Format(DateLayout)

	open, err := l.store.OpenRecord(ctx, employeeID, date)
	if err != nil {
		return fmt.Errorf("mark-out: %w", err)
	}
	if open == nil {
		return &NoOpenRecordError{EmployeeID: employeeID, Date: date}
	}

	if err := l.store.CloseRecord(ctx, open.ID, now.Format(TimeLayout)); err != nil {
		return fmt.Errorf("mark-out: %w", err)
	}
	return nil
}
