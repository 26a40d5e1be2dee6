/*
aggregator.go - Per-employee quota / taken / remaining for a year

PURPOSE:
  Joins the roster against the ledger for one calendar year. The result is
  a pure function of (year, roster, ledger); nothing is cached between
  calls, so switching the year never requires re-entering data.

RULES:
  1. Quota comes from the employee's entry for the year. No entry, or an
     entry without days, means the quota is absent (never zero).
  2. Taken is the sum of DayCount.Value() over the employee's bookings
     attributed to the year. Malformed or negative counts add zero.
  3. Remaining = Quota - Taken when Quota is present, else absent.
     Negative remaining is reported as is.
  4. Output follows roster order and includes every employee, also those
     with no bookings.

ORPHANED BOOKINGS:
  A booking whose employee is gone never contributes to a summary. The
  year view still lists it, labelled with the raw employee id.

SEE ALSO:
  - ledger.go: Year attribution
  - export/: Workbooks built from Detail and Summarize
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Summary is one employee's figures for one year.
type Summary struct {
	Employee  Employee
	Year      int
	Quota     *decimal.Decimal // nil = no quota recorded
	Taken     decimal.Decimal
	Remaining *decimal.Decimal // nil whenever Quota is nil
}

// BookingLine is a booking as shown in an export: days already coerced.
type BookingLine struct {
	ID   BookingID
	From Date
	To   Date
	Days decimal.Decimal
}

// EmployeeDetail is a Summary plus the bookings behind Taken.
type EmployeeDetail struct {
	Summary
	Bookings []BookingLine
}

// LabelledBooking is a booking with a display label for its employee.
type LabelledBooking struct {
	Booking
	EmployeeName string
	Orphaned     bool
}

// YearView is everything the dashboard shows for a year.
type YearView struct {
	Year      int
	Summaries []Summary
	Bookings  []LabelledBooking
}

// =============================================================================
// AGGREGATOR
// =============================================================================

type Aggregator struct {
	Roster RosterStore
	Ledger LedgerStore
}

func NewAggregator(roster RosterStore, ledger LedgerStore) *Aggregator {
	return &Aggregator{Roster: roster, Ledger: ledger}
}

// Summarize returns one Summary per employee in roster order.
func (a *Aggregator) Summarize(ctx context.Context, year int) ([]Summary, error) {
	employees, byEmployee, _, err := a.load(ctx, year)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(employees))
	for _, emp := range employees {
		out = append(out, summarize(emp, year, byEmployee[emp.ID]))
	}
	return out, nil
}

// Detail returns the summaries together with each employee's bookings in
// submission order.
func (a *Aggregator) Detail(ctx context.Context, year int) ([]EmployeeDetail, error) {
	employees, byEmployee, _, err := a.load(ctx, year)
	if err != nil {
		return nil, err
	}

	out := make([]EmployeeDetail, 0, len(employees))
	for _, emp := range employees {
		bookings := byEmployee[emp.ID]
		lines := make([]BookingLine, 0, len(bookings))
		for _, b := range bookings {
			lines = append(lines, BookingLine{ID: b.ID, From: b.From, To: b.To, Days: b.Days.Value()})
		}
		out = append(out, EmployeeDetail{
			Summary:  summarize(emp, year, bookings),
			Bookings: lines,
		})
	}
	return out, nil
}

// YearView returns the summaries and every booking of the year, each
// labelled with its employee's name (or the raw id when orphaned).
func (a *Aggregator) YearView(ctx context.Context, year int) (YearView, error) {
	employees, byEmployee, bookings, err := a.load(ctx, year)
	if err != nil {
		return YearView{}, err
	}

	names := make(map[EmployeeID]string, len(employees))
	view := YearView{
		Year:      year,
		Summaries: make([]Summary, 0, len(employees)),
		Bookings:  make([]LabelledBooking, 0, len(bookings)),
	}
	for _, emp := range employees {
		names[emp.ID] = emp.Name
		view.Summaries = append(view.Summaries, summarize(emp, year, byEmployee[emp.ID]))
	}
	for _, b := range bookings {
		name, ok := names[b.EmployeeID]
		if !ok {
			name = string(b.EmployeeID)
		}
		view.Bookings = append(view.Bookings, LabelledBooking{Booking: b, EmployeeName: name, Orphaned: !ok})
	}
	return view, nil
}

func (a *Aggregator) load(ctx context.Context, year int) ([]Employee, map[EmployeeID][]Booking, []Booking, error) {
	employees, err := a.Roster.ListEmployees(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	bookings, err := a.Ledger.ListBookingsForYear(ctx, year)
	if err != nil {
		return nil, nil, nil, err
	}

	byEmployee := make(map[EmployeeID][]Booking)
	for _, b := range bookings {
		if !b.InYear(year) {
			continue
		}
		byEmployee[b.EmployeeID] = append(byEmployee[b.EmployeeID], b)
	}
	return employees, byEmployee, bookings, nil
}

func summarize(emp Employee, year int, bookings []Booking) Summary {
	s := Summary{Employee: emp, Year: year, Taken: decimal.Zero}
	for _, b := range bookings {
		s.Taken = s.Taken.Add(b.Days.Value())
	}
	if q, ok := emp.QuotaFor(year); ok {
		remaining := q.Sub(s.Taken)
		s.Quota = &q
		s.Remaining = &remaining
	}
	return s
}
