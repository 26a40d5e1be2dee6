package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-quota/leave"
)

func newEmployee(id, name string, year int, days *decimal.Decimal) leave.Employee {
	return leave.Employee{
		ID:     leave.EmployeeID(id),
		Name:   name,
		Quotas: []leave.Quota{{Year: year, Days: days}},
	}
}

func newBooking(id, employeeID string, from, to leave.Date, days leave.DayCount) leave.Booking {
	return leave.Booking{ID: leave.BookingID(id), EmployeeID: leave.EmployeeID(employeeID), From: from, To: to, Days: days}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func TestNew_MissingFile_CreatesEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")

	_, err := New(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"employees": [], "leaves": []}`, string(data))
}

func TestStore_SurvivesRestart(t *testing.T) {
	// GIVEN: A store with data written to disk
	path := filepath.Join(t.TempDir(), "data.json")
	ctx := context.Background()
	twenty := decimal.NewFromInt(20)

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.InsertEmployee(ctx, newEmployee("emp-1", "Maria", 2024, &twenty)))
	require.NoError(t, s.InsertEmployee(ctx, newEmployee("emp-2", "Nikos", 2024, nil)))
	require.NoError(t, s.InsertBooking(ctx, newBooking("l-1", "emp-1", leave.NewDate(2024, 7, 1), leave.NewDate(2024, 7, 5), leave.Days(5))))

	// WHEN: Opening the same file again
	reopened, err := New(path)
	require.NoError(t, err)

	// THEN: Same roster and ledger
	employees, err := reopened.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Maria", employees[0].Name)
	assert.Equal(t, "20", employees[0].Quotas[0].Days.String())
	assert.Nil(t, employees[1].Quotas[0].Days)

	bookings, err := reopened.ListBookingsForYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "2024-07-01", bookings[0].From.String())
	assert.Equal(t, "5", bookings[0].Days.Raw())
}

func TestNew_LegacyDocument_ToleratesLooseValues(t *testing.T) {
	// GIVEN: A file as written by the previous server, with a null day
	// count, a string quota, an empty quota and an unparseable date
	path := filepath.Join(t.TempDir(), "data.json")
	legacy := `{
	  "employees": [
	    {"id": "1", "name": "Maria", "quotas": [{"year": 2024, "days": "20"}, {"year": 2025, "days": ""}]}
	  ],
	  "leaves": [
	    {"id": "a", "employeeId": "1", "from": "2024-07-01", "to": "2024-07-05", "days": 5},
	    {"id": "b", "employeeId": "1", "from": "2024-08-01", "to": "2024-08-01", "days": null},
	    {"id": "c", "employeeId": "1", "from": "soon", "to": "later", "days": 3}
	  ]
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	// WHEN: Loading it
	s, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	// THEN: Numbers as strings parse, blanks are absent, bad dates match no year
	emp, err := s.GetEmployee(ctx, "1")
	require.NoError(t, err)
	q, ok := emp.QuotaFor(2024)
	assert.True(t, ok)
	assert.Equal(t, "20", q.String())
	_, ok = emp.QuotaFor(2025)
	assert.False(t, ok)

	bookings, err := s.ListBookingsForYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.True(t, bookings[1].Days.Value().IsZero())

	c, err := s.GetBooking(ctx, "c")
	require.NoError(t, err)
	assert.True(t, c.From.IsZero())

	// WHEN: Any write rewrites the file
	require.NoError(t, s.DeleteBooking(ctx, "nope"))

	// THEN: The unparseable dates survive verbatim
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk fileDocument
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk.Leaves, 3)
	assert.Equal(t, "soon", onDisk.Leaves[2].From)
	assert.Equal(t, "later", onDisk.Leaves[2].To)
	assert.Equal(t, "2024-07-01", onDisk.Leaves[0].From)
}

func TestStore_LegacyDates_ReplacedOnceBookingIsUpdated(t *testing.T) {
	// GIVEN: A legacy booking with a bad start date and a good end date
	path := filepath.Join(t.TempDir(), "data.json")
	legacy := `{"employees": [], "leaves": [
	  {"id": "c", "employeeId": "1", "from": "2024-7-1", "to": "2024-07-05", "days": 5}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	s, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	// WHEN: The booking gets a valid date
	require.NoError(t, s.UpdateBooking(ctx, "c", func(b *leave.Booking) error {
		b.From = leave.NewDate(2024, 7, 1)
		return nil
	}))

	// THEN: The parsed dates win and survive a restart
	reopened, err := New(path)
	require.NoError(t, err)
	bookings, err := reopened.ListBookingsForYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "2024-07-01", bookings[0].From.String())
	assert.Equal(t, "2024-07-05", bookings[0].To.String())
}

func TestStore_FileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ctx := context.Background()
	s, err := New(path)
	require.NoError(t, err)
	twenty := decimal.NewFromInt(20)
	require.NoError(t, s.InsertEmployee(ctx, newEmployee("emp-1", "Maria", 2024, &twenty)))
	require.NoError(t, s.InsertBooking(ctx, newBooking("l-1", "emp-1", leave.NewDate(2024, 7, 1), leave.NewDate(2024, 7, 5), leave.Days(5))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Employees []map[string]any `json:"employees"`
		Leaves    []map[string]any `json:"leaves"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Employees, 1)
	assert.Equal(t, "emp-1", doc.Employees[0]["id"])
	assert.Equal(t, []any{map[string]any{"year": float64(2024), "days": float64(20)}}, doc.Employees[0]["quotas"])
	require.Len(t, doc.Leaves, 1)
	assert.Equal(t, "emp-1", doc.Leaves[0]["employeeId"])
	assert.Equal(t, "2024-07-01", doc.Leaves[0]["from"])
	assert.Equal(t, float64(5), doc.Leaves[0]["days"])
}

// =============================================================================
// MUTATION SEMANTICS
// =============================================================================

func TestStore_FailedUpdate_LeavesDocumentUntouched(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	require.NoError(t, s.InsertEmployee(ctx, newEmployee("emp-1", "Maria", 2024, nil)))

	err := s.UpdateEmployee(ctx, "emp-1", func(e *leave.Employee) error {
		e.Name = "Changed"
		return &leave.ValidationError{Field: "name", Message: "rejected"}
	})

	require.Error(t, err)
	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.Name)
}

func TestStore_ReturnedEmployee_IsACopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	twenty := decimal.NewFromInt(20)
	require.NoError(t, s.InsertEmployee(ctx, newEmployee("emp-1", "Maria", 2024, &twenty)))

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	one := decimal.NewFromInt(1)
	got.SetQuota(2024, &one)
	got.Name = "Changed"

	again, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Maria", again.Name)
	assert.Equal(t, "20", again.Quotas[0].Days.String())
}

func TestStore_DeleteBooking_DoesNotDisturbOthers(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"l-1", "l-2", "l-3"} {
		require.NoError(t, s.InsertBooking(ctx, newBooking(id, "e", leave.NewDate(2024, 1, 2), leave.NewDate(2024, 1, 2), leave.Days(1))))
	}

	require.NoError(t, s.DeleteBooking(ctx, "l-2"))

	got, err := s.ListBookingsForYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, leave.BookingID("l-1"), got[0].ID)
	assert.Equal(t, leave.BookingID("l-3"), got[1].ID)
}
