/*
types.go - Core domain types for leave quota tracking

PURPOSE:
  Defines the data carried by the roster (employees and their yearly
  quotas) and by the ledger (leave bookings). These types are shared by
  every store implementation and by the aggregator.

KEY TYPES:
  Employee:  Person with a name and a per-year quota history
  Quota:     Entitlement for one calendar year (days may be absent)
  Booking:   One recorded leave event, a date range plus a day count
  DayCount:  Caller-supplied day count, kept raw and coerced on read

ABSENT VS ZERO:
  A quota whose Days is nil means "no quota set". It is NOT zero.
  Remaining is only computed against a present quota.

SEE ALSO:
  - date.go: Calendar dates and year attribution
  - aggregator.go: Quota/taken/remaining computation
  - store.go: Persistence interfaces
*/
package leave

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type BookingID string

// =============================================================================
// EMPLOYEE / QUOTA
// =============================================================================

// Quota is an employee's leave entitlement for one calendar year.
// Days == nil means no quota is recorded for the year.
type Quota struct {
	Year int
	Days *decimal.Decimal
}

// Employee is a roster entry. Quotas keeps insertion order and holds at
// most one entry per year.
type Employee struct {
	ID        EmployeeID
	Name      string
	Quotas    []Quota
	CreatedAt time.Time
}

// QuotaFor returns the quota days for year. The bool is false when no
// entry exists for the year or the entry has no days set.
func (e Employee) QuotaFor(year int) (decimal.Decimal, bool) {
	for _, q := range e.Quotas {
		if q.Year == year {
			if q.Days == nil {
				return decimal.Zero, false
			}
			return *q.Days, true
		}
	}
	return decimal.Zero, false
}

// SetQuota upserts the quota for year. An existing entry is replaced in
// place (days may become absent); otherwise a new entry is appended.
func (e *Employee) SetQuota(year int, days *decimal.Decimal) {
	for i := range e.Quotas {
		if e.Quotas[i].Year == year {
			e.Quotas[i].Days = copyDecimal(days)
			return
		}
	}
	e.Quotas = append(e.Quotas, Quota{Year: year, Days: copyDecimal(days)})
}

// Clone returns a deep copy so callers can mutate it without touching
// store-owned state.
func (e Employee) Clone() Employee {
	out := e
	out.Quotas = make([]Quota, len(e.Quotas))
	for i, q := range e.Quotas {
		out.Quotas[i] = Quota{Year: q.Year, Days: copyDecimal(q.Days)}
	}
	return out
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// =============================================================================
// BOOKING
// =============================================================================

// Booking is a single leave event. Days is supplied by the caller and may
// differ from the inclusive length of [From, To] when the selected days are
// not contiguous.
type Booking struct {
	ID         BookingID
	EmployeeID EmployeeID
	From       Date
	To         Date
	Days       DayCount
	CreatedAt  time.Time
}

// InYear reports whether the booking is attributed to year. A booking is
// attributed entirely to the year of its start date; one without a start
// date belongs to no year.
func (b Booking) InYear(year int) bool {
	return !b.From.IsZero() && b.From.Year() == year
}

// =============================================================================
// DAY COUNT - raw value, coerced on read
// =============================================================================

// DayCount holds a day count exactly as it was written. Writes are
// permissive; Value is the single place where it is turned into a number.
type DayCount struct {
	raw string
}

// Days builds a DayCount from a whole number of days.
func Days(n int) DayCount { return DayCount{raw: strconv.Itoa(n)} }

// DecimalDays builds a DayCount from a decimal value.
func DecimalDays(d decimal.Decimal) DayCount { return DayCount{raw: d.String()} }

// RawDays wraps an arbitrary stored value.
func RawDays(s string) DayCount { return DayCount{raw: s} }

// Raw returns the stored representation.
func (d DayCount) Raw() string { return d.raw }

// IsEmpty reports whether no value was supplied.
func (d DayCount) IsEmpty() bool { return strings.TrimSpace(d.raw) == "" }

// Decimal parses the raw value strictly. The bool is false when the value
// is missing or not a finite number.
func (d DayCount) Decimal() (decimal.Decimal, bool) {
	s := strings.TrimSpace(d.raw)
	if s == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	// Beyond float64 range counts as infinite.
	if math.IsInf(v.InexactFloat64(), 0) {
		return decimal.Zero, false
	}
	return v, true
}

// Value returns the day count used for aggregation: missing, malformed
// and negative values all count as zero.
func (d DayCount) Value() decimal.Decimal {
	v, ok := d.Decimal()
	if !ok || v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// QuotaDays interprets the value as a quota: missing or malformed input
// means no quota.
func (d DayCount) QuotaDays() *decimal.Decimal {
	v, ok := d.Decimal()
	if !ok {
		return nil
	}
	return &v
}

// MarshalJSON writes numeric values as JSON numbers, anything else as a
// string and an empty value as null.
func (d DayCount) MarshalJSON() ([]byte, error) {
	if d.IsEmpty() {
		return []byte("null"), nil
	}
	if v, ok := d.Decimal(); ok {
		return []byte(v.String()), nil
	}
	return json.Marshal(d.raw)
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (d *DayCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		d.raw = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.raw = s
	default:
		d.raw = string(data)
	}
	return nil
}
