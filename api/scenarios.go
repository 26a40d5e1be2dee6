/*
scenarios.go - Demo data sets for development and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the store with a small
  office, so the dashboard and exports can be tried without typing data.

AVAILABLE SCENARIOS:
  empty:          No data at all
  small-office:   Quotas set and unset, one orphaned booking
  year-boundary:  Bookings that straddle New Year

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Add employees through the roster
 3. Record bookings through the ledger

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "small-office"}

NOTE:
  Scenarios reset the store. The routes are only registered when dev
  routes are enabled.

SEE ALSO:
  - server.go: Dev route registration
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-quota/leave"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "Clean slate",
	},
	{
		ID:          "small-office",
		Name:        "Small Office",
		Description: "Three employees, one without a quota, one booking for a removed employee",
	},
	{
		ID:          "year-boundary",
		Name:        "Year Boundary",
		Description: "Bookings spanning New Year count toward the year they start in",
	},
}

type scenarioLoader func(ctx context.Context, h *Handler, year int) error

var scenarioLoaders = map[string]scenarioLoader{
	"empty":         func(context.Context, *Handler, int) error { return nil },
	"small-office":  loadSmallOffice,
	"year-boundary": loadYearBoundary,
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns all available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario for the
// current year.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, err, "Failed to reset database")
		return
	}
	h.currentScenario = ""

	if err := load(ctx, h, h.Now().Year()); err != nil {
		h.fail(w, r, err, "Failed to load scenario")
		return
	}
	h.currentScenario = req.ScenarioID

	h.Log.WithField("scenario", req.ScenarioID).Info("scenario loaded")
	writeJSON(w, http.StatusOK, OKResponse{OK: true, ID: req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, err, "Failed to reset database")
		return
	}
	h.currentScenario = ""

	h.Log.Warn("database reset")
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// =============================================================================
// LOADERS
// =============================================================================

func loadSmallOffice(ctx context.Context, h *Handler, year int) error {
	twenty := decimal.NewFromInt(20)
	twentyFive := decimal.NewFromInt(25)

	employees := []leave.NewEmployee{
		{ID: "emp-maria", Name: "Maria", Year: year, Days: &twenty},
		{ID: "emp-nikos", Name: "Nikos", Year: year},
		{ID: "emp-eleni", Name: "Eleni", Year: year, Days: &twentyFive},
	}
	for _, e := range employees {
		if _, err := h.Roster.AddEmployee(ctx, e); err != nil {
			return err
		}
	}

	bookings := []leave.NewBooking{
		{EmployeeID: "emp-maria", From: leave.NewDate(year, time.March, 10), To: leave.NewDate(year, time.March, 14), Days: leave.Days(5)},
		{EmployeeID: "emp-nikos", From: leave.NewDate(year, time.June, 2), To: leave.NewDate(year, time.June, 3), Days: leave.Days(2)},
		{EmployeeID: "emp-eleni", From: leave.NewDate(year, time.August, 4), To: leave.NewDate(year, time.August, 15), Days: leave.Days(10)},
		{EmployeeID: "emp-eleni", From: leave.NewDate(year, time.December, 24), To: leave.NewDate(year, time.December, 24), Days: leave.DecimalDays(decimal.NewFromFloat(0.5))},
		{EmployeeID: "emp-former", From: leave.NewDate(year, time.February, 3), To: leave.NewDate(year, time.February, 4), Days: leave.Days(2)},
	}
	return addBookings(ctx, h, bookings)
}

func loadYearBoundary(ctx context.Context, h *Handler, year int) error {
	fifteen := decimal.NewFromInt(15)
	twenty := decimal.NewFromInt(20)

	if _, err := h.Roster.AddEmployee(ctx, leave.NewEmployee{ID: "emp-maria", Name: "Maria", Year: year - 1, Days: &fifteen}); err != nil {
		return err
	}
	if err := h.Roster.UpdateEmployee(ctx, "emp-maria", "Maria", year, &twenty); err != nil {
		return err
	}

	bookings := []leave.NewBooking{
		{EmployeeID: "emp-maria", From: leave.NewDate(year-1, time.December, 29), To: leave.NewDate(year, time.January, 2), Days: leave.Days(4)},
		{EmployeeID: "emp-maria", From: leave.NewDate(year, time.January, 15), To: leave.NewDate(year, time.January, 16), Days: leave.Days(2)},
	}
	return addBookings(ctx, h, bookings)
}

func addBookings(ctx context.Context, h *Handler, bookings []leave.NewBooking) error {
	for _, b := range bookings {
		if _, err := h.Ledger.AddLeave(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
