/*
status.go - Daily attendance status derivation

PURPOSE:
  Derives an employee's status for a calendar day from their records:
  an open record means IN, only closed records mean OUT, no records
  mean NONE.

TIE-BREAK:
  The open-record invariant says at most one open record exists per
  (employee, date). StatusOf still tolerates several: the most
  recently created open record determines IN, and any closed record
  satisfies OUT. Callers that need the winning open record use
  Store.OpenRecord, which breaks ties on latest time_in.

SEE ALSO:
  - ledger.go: Uses ResolveStatus as the mark-in precondition
*/
package attendance

import (
	"context"
	"fmt"
)

// StatusOf derives the daily status from a day's records. Pure
// function of its input; records may be in any order.
func StatusOf(records []Record) Status {
	closed := false
	for _, r := range records {
		if r.Open() {
			return StatusIn
		}
		closed = true
	}
	if closed {
		return StatusOut
	}
	return StatusNone
}

// ResolveStatus reads the employee's records for the date and derives
// the status. Each call is a fresh read; no state is cached between
// calls.
func (l *Ledger) ResolveStatus(ctx context.Context, employeeID int64, date string) (Status, error) {
	records, err := l.store.RecordsOn(ctx, employeeID, date)
	if err != nil {
		return StatusNone, fmt.Errorf("failed to resolve status: %w", err)
	}
	return StatusOf(records), nil
}
