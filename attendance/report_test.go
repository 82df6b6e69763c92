package attendance_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-kiosk/attendance"
	"github.com/warp/attendance-kiosk/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const reportDay = "2026-03-10"

func newTestReporter(t *testing.T) (*attendance.Reporter, *attendance.Ledger, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return attendance.NewReporter(store), attendance.NewLedger(store), store
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

// seedDay sets up three employees on reportDay:
//   - Ada:   completed shift then marked in again (currently IN)
//   - Ben:   one completed shift (OUT)
//   - Cleo:  never marked (NONE)
func seedDay(t *testing.T, ledger *attendance.Ledger, store *sqlite.Store) (ada, ben, cleo int64) {
	ctx := context.Background()
	ada = createEmployee(t, store, "E-001", "Ada")
	ben = createEmployee(t, store, "E-002", "Ben")
	cleo = createEmployee(t, store, "E-003", "Cleo")

	require.NoError(t, ledger.MarkIn(ctx, ada, "Onsite", at(9, 0)))
	require.NoError(t, ledger.MarkOut(ctx, ada, at(12, 0)))
	require.NoError(t, ledger.MarkIn(ctx, ada, "Remote", at(13, 0)))

	require.NoError(t, ledger.MarkIn(ctx, ben, "Onsite", at(8, 30)))
	require.NoError(t, ledger.MarkOut(ctx, ben, at(17, 0)))
	return ada, ben, cleo
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestReporter_Dashboard_PartitionsEmployees(t *testing.T) {
	reporter, ledger, store := newTestReporter(t)
	seedDay(t, ledger, store)

	dash, err := reporter.Dashboard(context.Background(), reportDay)
	require.NoError(t, err)

	assert.Equal(t, 3, dash.TotalEmployees)
	assert.Equal(t, 1, dash.EmployeesIn, "Ada has an open record")
	assert.Equal(t, 1, dash.EmployeesOut, "Ben completed and did not return")
	assert.Equal(t, 1, dash.NotMarked, "Cleo never marked")
	assert.Equal(t, dash.TotalEmployees, dash.EmployeesIn+dash.EmployeesOut+dash.NotMarked)

	assert.Equal(t, 3, dash.TotalRecords)
	assert.Equal(t, map[string]int{"Onsite": 2, "Remote": 1}, dash.ByLocation)
	assert.Len(t, dash.Recent, 3)
}

func TestReporter_Dashboard_InAndOutNeverOverlap(t *testing.T) {
	// Ada completed a shift AND is currently in. She counts as IN
	// only, so the partition stays exact.
	reporter, ledger, store := newTestReporter(t)
	ctx := context.Background()
	ada := createEmployee(t, store, "E-001", "Ada")

	require.NoError(t, ledger.MarkIn(ctx, ada, "", at(9, 0)))
	require.NoError(t, ledger.MarkOut(ctx, ada, at(12, 0)))
	require.NoError(t, ledger.MarkIn(ctx, ada, "", at(13, 0)))

	dash, err := reporter.Dashboard(ctx, reportDay)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.EmployeesIn)
	assert.Equal(t, 0, dash.EmployeesOut)
	assert.Equal(t, 0, dash.NotMarked)
	assert.Equal(t, dash.TotalEmployees, dash.EmployeesIn+dash.EmployeesOut+dash.NotMarked)
}

func TestReporter_Dashboard_EmptyStore(t *testing.T) {
	reporter, _, _ := newTestReporter(t)

	dash, err := reporter.Dashboard(context.Background(), reportDay)
	require.NoError(t, err)
	assert.Equal(t, 0, dash.TotalEmployees)
	assert.Equal(t, 0, dash.NotMarked, "clamped, never negative")
	assert.Empty(t, dash.ByLocation)
}

// =============================================================================
// FILTERED LISTING
// =============================================================================

func TestParseEmployeeFilter(t *testing.T) {
	id, err := attendance.ParseEmployeeFilter("42")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(42), *id)

	id, err = attendance.ParseEmployeeFilter("")
	require.NoError(t, err)
	assert.Nil(t, id, "empty means unfiltered")

	_, err = attendance.ParseEmployeeFilter("bob")
	assert.ErrorIs(t, err, attendance.ErrMalformedFilter)

	var malformed *attendance.MalformedFilterError
	assert.ErrorAs(t, err, &malformed)
	assert.Equal(t, "bob", malformed.Raw)
}

func TestReporter_Records_FiltersAndOrders(t *testing.T) {
	reporter, ledger, store := newTestReporter(t)
	ctx := context.Background()
	ada, _, _ := seedDay(t, ledger, store)

	// Older record outside the range.
	_, err := store.InsertRecord(ctx, attendance.Record{
		EmployeeID: ada, Date: "2026-03-01", TimeIn: "09:00:00", Location: "Onsite",
	})
	require.NoError(t, err)
	older, err := store.OpenRecord(ctx, ada, "2026-03-01")
	require.NoError(t, err)
	require.NoError(t, store.CloseRecord(ctx, older.ID, "17:00:00"))

	// Unfiltered: everything, date descending then time_in descending.
	all, err := reporter.Records(ctx, attendance.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, reportDay, all[0].Date)
	assert.Equal(t, "13:00:00", all[0].TimeIn)
	assert.Equal(t, "2026-03-01", all[3].Date)

	// Date range excludes the older record.
	ranged, err := reporter.Records(ctx, attendance.RecordFilter{StartDate: reportDay, EndDate: reportDay})
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	// Employee filter narrows to Ada.
	adaOnly, err := reporter.Records(ctx, attendance.RecordFilter{EmployeeID: &ada})
	require.NoError(t, err)
	require.Len(t, adaOnly, 3)
	for _, rec := range adaOnly {
		assert.Equal(t, "Ada", rec.Name)
	}
}

// =============================================================================
// PER-EMPLOYEE REPORT
// =============================================================================

func TestReporter_EmployeeReport_AnnotatesDurations(t *testing.T) {
	reporter, ledger, store := newTestReporter(t)
	ctx := context.Background()
	ada, _, _ := seedDay(t, ledger, store)

	report, err := reporter.EmployeeReport(ctx, ada)
	require.NoError(t, err)
	assert.Equal(t, "Ada", report.Employee.Name)
	require.Len(t, report.Rows, 2)

	// Newest first: the open afternoon shift has no duration.
	assert.Equal(t, "13:00:00", report.Rows[0].TimeIn)
	assert.Nil(t, report.Rows[0].DurationMinutes)
	assert.Empty(t, report.Rows[0].DurationHours)

	// The completed morning shift: 09:00-12:00.
	require.NotNil(t, report.Rows[1].DurationMinutes)
	assert.Equal(t, 180, *report.Rows[1].DurationMinutes)
	assert.Equal(t, "3", report.Rows[1].DurationHours)
}

func TestReporter_EmployeeReport_UnknownEmployee(t *testing.T) {
	reporter, _, _ := newTestReporter(t)

	_, err := reporter.EmployeeReport(context.Background(), 4242)
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

// =============================================================================
// CSV EXPORT
// =============================================================================

func TestReporter_WriteCSV(t *testing.T) {
	reporter, ledger, store := newTestReporter(t)
	ctx := context.Background()
	seedDay(t, ledger, store)

	var buf strings.Builder
	count, err := reporter.WriteCSV(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4, "header plus one line per record")
	assert.Equal(t, "Employee ID,Employee Name,Date,Time In,Time Out,Location", lines[0])

	total, err := store.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, total, len(lines)-1, "row count equals ledger count")

	// Field five is a time of day or the literal N/A.
	sawNA := false
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 6)
		if fields[4] == "N/A" {
			sawNA = true
			continue
		}
		_, err := time.Parse("15:04:05", fields[4])
		assert.NoError(t, err, "time_out field %q should parse", fields[4])
	}
	assert.True(t, sawNA, "Ada's open shift renders N/A")
}

func TestReporter_WriteCSV_EmptyLedger(t *testing.T) {
	reporter, _, _ := newTestReporter(t)

	var buf strings.Builder
	count, err := reporter.WriteCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "Employee ID,Employee Name,Date,Time In,Time Out,Location\n", buf.String())
}
