/*
ledger.go - Leave bookings

PURPOSE:
  Records leave bookings and answers year queries. Writes are permissive:
  the employee id is not checked against the roster and the day count is
  stored as supplied. Interpretation happens when reading (DayCount.Value).

YEAR ATTRIBUTION:
  A booking belongs to the year of its From date, even when To falls in
  the next year (Dec 28 - Jan 3 counts entirely towards the first year).

SEE ALSO:
  - aggregator.go: Sums bookings per employee
  - roster.go: Employee deletion; stores drop the bookings in the same
    write, so DeleteByEmployee is only needed for bookings on their own
*/
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NewBooking is the input for Ledger.AddLeave. ID is generated when empty.
type NewBooking struct {
	ID         BookingID
	EmployeeID EmployeeID
	From       Date
	To         Date
	Days       DayCount
}

// Ledger applies the booking rules on top of a LedgerStore.
type Ledger struct {
	Store LedgerStore
	NewID func() string
	Now   func() time.Time
}

func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{Store: store, NewID: uuid.NewString, Now: time.Now}
}

// AddLeave records a booking.
func (l *Ledger) AddLeave(ctx context.Context, in NewBooking) (Booking, error) {
	id := in.ID
	if id == "" {
		id = BookingID(l.NewID())
	}

	b := Booking{
		ID:         id,
		EmployeeID: in.EmployeeID,
		From:       in.From,
		To:         in.To,
		Days:       in.Days,
		CreatedAt:  l.Now().UTC(),
	}
	if err := l.Store.InsertBooking(ctx, b); err != nil {
		return Booking{}, err
	}
	return b, nil
}

// UpdateLeave replaces from, to and days of an existing booking.
func (l *Ledger) UpdateLeave(ctx context.Context, id BookingID, from, to Date, days DayCount) error {
	return l.Store.UpdateBooking(ctx, id, func(b *Booking) error {
		b.From = from
		b.To = to
		b.Days = days
		return nil
	})
}

func (l *Ledger) DeleteLeave(ctx context.Context, id BookingID) error {
	return l.Store.DeleteBooking(ctx, id)
}

// DeleteByEmployee removes every booking of employeeID in every year. The
// employee itself is untouched, which also clears orphaned bookings.
func (l *Ledger) DeleteByEmployee(ctx context.Context, employeeID EmployeeID) error {
	return l.Store.DeleteBookingsByEmployee(ctx, employeeID)
}

func (l *Ledger) GetLeave(ctx context.Context, id BookingID) (Booking, error) {
	return l.Store.GetBooking(ctx, id)
}

// ListForYear returns the bookings attributed to year in insertion order.
func (l *Ledger) ListForYear(ctx context.Context, year int) ([]Booking, error) {
	return l.Store.ListBookingsForYear(ctx, year)
}
