package leave

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ROSTER - Employees and their yearly quotas
// =============================================================================

// NewEmployee is the input for Roster.AddEmployee. ID is generated when
// empty and Year defaults to the current calendar year.
type NewEmployee struct {
	ID   EmployeeID
	Name string
	Year int
	Days *decimal.Decimal
}

// Roster applies the employee rules on top of a RosterStore.
type Roster struct {
	Store RosterStore
	NewID func() string
	Now   func() time.Time
}

func NewRoster(store RosterStore) *Roster {
	return &Roster{Store: store, NewID: uuid.NewString, Now: time.Now}
}

// AddEmployee creates an employee with a single quota entry for in.Year.
func (r *Roster) AddEmployee(ctx context.Context, in NewEmployee) (Employee, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Employee{}, &ValidationError{Field: "name", Message: "must not be empty"}
	}

	id := in.ID
	if id == "" {
		id = EmployeeID(r.NewID())
	}

	emp := Employee{
		ID:        id,
		Name:      name,
		Quotas:    []Quota{{Year: r.yearOrCurrent(in.Year), Days: copyDecimal(in.Days)}},
		CreatedAt: r.Now().UTC(),
	}
	if err := r.Store.InsertEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

// UpdateEmployee renames the employee and upserts the quota for year.
// days == nil clears the quota for that year without removing the entry.
func (r *Roster) UpdateEmployee(ctx context.Context, id EmployeeID, name string, year int, days *decimal.Decimal) error {
	year = r.yearOrCurrent(year)
	return r.Store.UpdateEmployee(ctx, id, func(emp *Employee) error {
		emp.Name = strings.TrimSpace(name)
		emp.SetQuota(year, days)
		return nil
	})
}

// DeleteEmployee removes the employee and all of their bookings.
func (r *Roster) DeleteEmployee(ctx context.Context, id EmployeeID) error {
	return r.Store.DeleteEmployee(ctx, id)
}

func (r *Roster) GetEmployee(ctx context.Context, id EmployeeID) (Employee, error) {
	return r.Store.GetEmployee(ctx, id)
}

func (r *Roster) ListEmployees(ctx context.Context) ([]Employee, error) {
	return r.Store.ListEmployees(ctx)
}

// GetQuota returns the quota days for year, or nil when none is recorded.
func GetQuota(emp Employee, year int) *decimal.Decimal {
	if q, ok := emp.QuotaFor(year); ok {
		return &q
	}
	return nil
}

func (r *Roster) yearOrCurrent(year int) int {
	if year < MinYear || year > MaxYear {
		return r.Now().Year()
	}
	return year
}
