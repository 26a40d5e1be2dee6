/*
handlers.go - HTTP API handlers for the leave tracker

PURPOSE:
  Exposes the roster, the ledger and the aggregator via a JSON API.
  Handles HTTP request/response and delegates to the leave package.

ENDPOINTS:
  Data:
    GET    /api/data?year=                 Year view (totals + leaves)
    GET    /api/employees?year=            Employees with quota history

  Employees:
    POST   /api/add-employee               Create employee
    PUT    /api/update-employee            Rename + upsert year quota
    DELETE /api/delete-employee/{id}       Delete (cascades leaves)

  Leaves:
    POST   /api/add-leave                  Record booking
    PUT    /api/update-leave               Replace from/to/days
    DELETE /api/delete-leave/{id}          Delete booking

  Export (export.go), dev tools (scenarios.go).

YEAR PARAMETER:
  Missing, non-numeric or zero ?year= means the current calendar year.

ERROR HANDLING:
  Errors are returned as JSON {"error": "..."}:
  - 400: leave.ValidationError, malformed body or dates
  - 404: leave.NotFoundError
  - 500: Store / export failures (details logged, not returned)

SECURITY NOTE:
  No authentication or authorization. Intended for a trusted office
  network only.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/warp/leave-quota/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      leave.Store
	Roster     *leave.Roster
	Ledger     *leave.Ledger
	Aggregator *leave.Aggregator
	Log        logrus.FieldLogger
	Metrics    *Metrics // nil disables metrics

	// ExportDir, when set, receives a copy of every detail export.
	ExportDir string
	Now       func() time.Time

	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store leave.Store, log logrus.FieldLogger) *Handler {
	return &Handler{
		Store:      store,
		Roster:     leave.NewRoster(store),
		Ledger:     leave.NewLedger(store),
		Aggregator: leave.NewAggregator(store, store),
		Log:        log,
		Now:        time.Now,
	}
}

// =============================================================================
// DATA HANDLERS
// =============================================================================

// GetYearData returns every employee's totals for the year and the year's
// leaves.
func (h *Handler) GetYearData(w http.ResponseWriter, r *http.Request) {
	year := h.yearParam(r)

	view, err := h.Aggregator.YearView(r.Context(), year)
	if err != nil {
		h.fail(w, r, err, "Failed to load data")
		return
	}

	resp := YearDataResponse{
		Year:      year,
		Employees: make([]EmployeeSummaryDTO, 0, len(view.Summaries)),
		Leaves:    make([]LeaveDTO, 0, len(view.Bookings)),
	}
	for _, s := range view.Summaries {
		resp.Employees = append(resp.Employees, toEmployeeSummaryDTO(s))
	}
	for _, b := range view.Bookings {
		resp.Leaves = append(resp.Leaves, toLeaveDTO(b))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListEmployees returns all employees with the quota for the year.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	year := h.yearParam(r)

	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to list employees")
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e, year))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// AddEmployee creates an employee with an optional quota for one year.
func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var req AddEmployeeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	year, _ := req.Year.Int()
	emp, err := h.Roster.AddEmployee(r.Context(), leave.NewEmployee{
		ID:   leave.EmployeeID(strings.TrimSpace(req.ID)),
		Name: req.Name,
		Year: year,
		Days: req.Days.QuotaDays(),
	})
	if err != nil {
		h.fail(w, r, err, "Failed to add employee")
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true, ID: string(emp.ID)})
}

// UpdateEmployee renames an employee and sets the quota for a year.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req UpdateEmployeeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	year, _ := req.Year.Int()
	err := h.Roster.UpdateEmployee(r.Context(), leave.EmployeeID(req.ID), req.Name, year, req.Days.QuotaDays())
	if err != nil {
		h.fail(w, r, err, "Failed to update employee")
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true, ID: req.ID})
}

// DeleteEmployee removes an employee and their leaves.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Roster.DeleteEmployee(r.Context(), leave.EmployeeID(id)); err != nil {
		h.fail(w, r, err, "Failed to delete employee")
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// AddLeave records a booking.
func (h *Handler) AddLeave(w http.ResponseWriter, r *http.Request) {
	var req AddLeaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := leave.NewBooking{
		ID:         leave.BookingID(strings.TrimSpace(req.ID)),
		EmployeeID: leave.EmployeeID(req.EmployeeID),
	}

	if len(req.Dates) > 0 {
		dates := make([]leave.Date, 0, len(req.Dates))
		for _, s := range req.Dates {
			d, err := leave.ParseDate(s)
			if err != nil {
				h.fail(w, r, &leave.ValidationError{Field: "dates", Message: err.Error()}, "")
				return
			}
			dates = append(dates, d)
		}
		from, to, days, _ := leave.SpanOf(dates)
		in.From, in.To, in.Days = from, to, leave.Days(days)
	} else {
		from, to, err := parseRange(req.From, req.To)
		if err != nil {
			h.fail(w, r, err, "")
			return
		}
		in.From, in.To, in.Days = from, to, daysOrInclusive(req.Days, from, to)
	}

	b, err := h.Ledger.AddLeave(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, "Failed to add leave")
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true, ID: string(b.ID)})
}

// UpdateLeave replaces a booking's dates and day count.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	err = h.Ledger.UpdateLeave(r.Context(), leave.BookingID(req.ID), from, to, daysOrInclusive(req.Days, from, to))
	if err != nil {
		h.fail(w, r, err, "Failed to update leave")
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true, ID: req.ID})
}

// DeleteLeave removes a booking.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Ledger.DeleteLeave(r.Context(), leave.BookingID(id)); err != nil {
		h.fail(w, r, err, "Failed to delete leave")
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) yearParam(r *http.Request) int {
	if year, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("year"))); err == nil && year >= leave.MinYear && year <= leave.MaxYear {
		return year
	}
	return h.Now().Year()
}

func parseRange(fromStr, toStr string) (leave.Date, leave.Date, error) {
	from, err := leave.ParseDate(fromStr)
	if err != nil {
		return leave.Date{}, leave.Date{}, &leave.ValidationError{Field: "from", Message: err.Error()}
	}
	to, err := leave.ParseDate(toStr)
	if err != nil {
		return leave.Date{}, leave.Date{}, &leave.ValidationError{Field: "to", Message: err.Error()}
	}
	return from, to, nil
}

// daysOrInclusive keeps a supplied day count as is and otherwise counts
// the days in [from, to].
func daysOrInclusive(days leave.DayCount, from, to leave.Date) leave.DayCount {
	if !days.IsEmpty() {
		return days
	}
	return leave.Days(leave.InclusiveDays(from, to))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// fail maps domain errors to HTTP statuses. Internal errors are logged and
// answered with message only.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case leave.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	default:
		h.Log.WithError(err).
			WithField("request_id", middleware.GetReqID(r.Context())).
			WithField("path", r.URL.Path).
			Error(message)
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

// writeJSON encodes before sending the header so an unencodable value
// becomes a 500 rather than an empty 200.
func writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		json.NewEncoder(&buf).Encode(ErrorResponse{Error: "Failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
