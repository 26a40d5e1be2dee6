/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes of the HTTP API. Field names follow the existing frontend
  (camelCase: employeeId, totalTaken) so it keeps working unchanged.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers

LOOSE INPUT:
  Day counts arrive as numbers or strings and are kept as leave.DayCount;
  years accept a number or a numeric string. Validation happens in the
  handlers, DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-quota/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// QuotaDTO is one entry of an employee's quota history.
type QuotaDTO struct {
	Year int      `json:"year"`
	Days *float64 `json:"days"`
}

// EmployeeDTO is an employee with the quota for the requested year.
type EmployeeDTO struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Quota  *float64   `json:"quota"`
	Quotas []QuotaDTO `json:"quotas"`
}

// EmployeeSummaryDTO adds the year's totals.
type EmployeeSummaryDTO struct {
	EmployeeDTO
	TotalTaken float64  `json:"totalTaken"`
	Remaining  *float64 `json:"remaining"`
}

// AddEmployeeRequest creates an employee. Year defaults to the current year.
type AddEmployeeRequest struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Year LooseInt       `json:"year"`
	Days leave.DayCount `json:"days"`
}

// UpdateEmployeeRequest renames an employee and upserts a year's quota.
type UpdateEmployeeRequest struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Year LooseInt       `json:"year"`
	Days leave.DayCount `json:"days"`
}

// =============================================================================
// LEAVES
// =============================================================================

// LeaveDTO is a booking with a display label for its employee.
type LeaveDTO struct {
	ID           string         `json:"id"`
	EmployeeID   string         `json:"employeeId"`
	EmployeeName string         `json:"employeeName"`
	Orphaned     bool           `json:"orphaned,omitempty"`
	From         leave.Date     `json:"from"`
	To           leave.Date     `json:"to"`
	Days         leave.DayCount `json:"days"`
}

// AddLeaveRequest records a booking. Either From/To (with optional Days,
// defaulting to the inclusive day count) or a list of selected Dates.
type AddLeaveRequest struct {
	ID         string         `json:"id"`
	EmployeeID string         `json:"employeeId"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Days       leave.DayCount `json:"days"`
	Dates      []string       `json:"dates,omitempty"`
}

// UpdateLeaveRequest replaces a booking's range and day count.
type UpdateLeaveRequest struct {
	ID   string         `json:"id"`
	From string         `json:"from"`
	To   string         `json:"to"`
	Days leave.DayCount `json:"days"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// YearDataResponse is the dashboard payload for one year.
type YearDataResponse struct {
	Year      int                  `json:"year"`
	Employees []EmployeeSummaryDTO `json:"employees"`
	Leaves    []LeaveDTO           `json:"leaves"`
}

// OKResponse acknowledges a mutation.
type OKResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// LooseInt accepts a JSON number, a numeric string, an empty string or null.
type LooseInt struct {
	leave.DayCount
}

// Int returns the integer part; ok is false when no number was given or
// it is not a calendar year.
func (n LooseInt) Int() (int, bool) {
	d, ok := n.Decimal()
	if !ok {
		return 0, false
	}
	year := d.Truncate(0)
	if year.LessThan(decimal.NewFromInt(leave.MinYear)) || year.GreaterThan(decimal.NewFromInt(leave.MaxYear)) {
		return 0, false
	}
	return int(year.IntPart()), true
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(emp leave.Employee, year int) EmployeeDTO {
	dto := EmployeeDTO{
		ID:     string(emp.ID),
		Name:   emp.Name,
		Quota:  floatPtr(leave.GetQuota(emp, year)),
		Quotas: make([]QuotaDTO, 0, len(emp.Quotas)),
	}
	for _, q := range emp.Quotas {
		dto.Quotas = append(dto.Quotas, QuotaDTO{Year: q.Year, Days: floatPtr(q.Days)})
	}
	return dto
}

func toEmployeeSummaryDTO(s leave.Summary) EmployeeSummaryDTO {
	return EmployeeSummaryDTO{
		EmployeeDTO: toEmployeeDTO(s.Employee, s.Year),
		TotalTaken:  s.Taken.InexactFloat64(),
		Remaining:   floatPtr(s.Remaining),
	}
}

func toLeaveDTO(b leave.LabelledBooking) LeaveDTO {
	return LeaveDTO{
		ID:           string(b.ID),
		EmployeeID:   string(b.EmployeeID),
		EmployeeName: b.EmployeeName,
		Orphaned:     b.Orphaned,
		From:         b.From,
		To:           b.To,
		Days:         b.Days,
	}
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
