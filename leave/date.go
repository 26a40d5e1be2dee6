package leave

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day (UTC midnight)
// =============================================================================

const (
	DateLayout       = "2006-01-02"
	ExportDateLayout = "02-01-2006"
)

// Years outside this range cannot be written as YYYY-MM-DD.
const (
	MinYear = 1
	MaxYear = 9999
)

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD and full RFC 3339 timestamps; the time of
// day is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
}

func (d Date) Year() int { return d.Time.Year() }
func (d Date) IsZero() bool { return d.Time.IsZero() }
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) String() string { return d.Time.Format(DateLayout) }

// ExportString formats the date as DD-MM-YYYY; zero dates are empty.
func (d Date) ExportString() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(ExportDateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DAY COUNTING
// =============================================================================

// InclusiveDays counts the days in [from, to]. It is zero or negative when
// to is before from.
func InclusiveDays(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours()/24) + 1
}

// SpanOf turns a set of individually selected days into a booking span:
// the earliest and latest day and the number of distinct days. ok is false
// for an empty selection.
func SpanOf(dates []Date) (from, to Date, days int, ok bool) {
	if len(dates) == 0 {
		return Date{}, Date{}, 0, false
	}
	sorted := make([]Date, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	days = 1
	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Equal(sorted[i-1]) {
			days++
		}
	}
	return sorted[0], sorted[len(sorted)-1], days, true
}
