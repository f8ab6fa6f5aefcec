/*
handlers.go - HTTP API handlers for the leave tracker

PURPOSE:
  Exposes the leave request engine via REST API. Handles HTTP
  request/response and JSON serialization, and delegates to
  timeoff.RequestService for every rule.

ENDPOINTS:
  Employees:
    GET    /api/employees                List the team directory
    POST   /api/employees/{id}/requests  Submit a leave request
    GET    /api/employees/{id}/balance   Current-period balance snapshot

  Requests:
    GET    /api/requests                 List, newest first (?status=&employee_id=)
    GET    /api/requests/{id}            Get one request
    POST   /api/requests/{id}/approve    Pending -> Approved (debits balance)
    POST   /api/requests/{id}/reject     Pending -> Rejected
    POST   /api/requests/{id}/cancel     Pending -> Cancelled, body {"confirm": true}

  Calendar:
    GET    /api/calendar                 Team availability (?from=&to=&limit=), up to 366 days
    GET    /api/holidays                 Company-wide holidays (?from=&to=)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input, invalid or oversized date range, unconfirmed cancel
  - 404: Unknown request or employee
  - 409: Transition from a terminal status, insufficient balance
  - 422: Submission validation, "fields" maps each field to its message
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - timeoff/request.go: RequestService
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/leave-tracker/generic"
	"github.com/warp/leave-tracker/timeoff"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service   *timeoff.RequestService
	Directory timeoff.Directory
	Holidays  timeoff.HolidayStore
	Locale    generic.Locale
	Logger    *zap.Logger

	// Today anchors default calendar windows. Nil means generic.Today.
	Today func() generic.TimePoint
}

func (h *Handler) today() generic.TimePoint {
	if h.Today != nil {
		return h.Today()
	}
	return generic.Today()
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return zap.NewNop()
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the team directory sorted by name.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	var employees []timeoff.Employee
	if h.Directory != nil {
		employees = h.Directory.Employees()
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeDTO{ID: e.ID, Name: e.Name, Department: e.Department}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitRequest records a new pending leave request for the employee in the path.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var body SubmitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := parseOptionalDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	end, err := parseOptionalDate(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}

	// Unknown categories pass through so validation reports them per field.
	category, err := timeoff.ParseCategory(body.Category)
	if err != nil {
		category = timeoff.Category(body.Category)
	}

	req, err := h.Service.Submit(r.Context(), timeoff.Submission{
		EmployeeID: employeeID,
		Category:   category,
		StartDate:  start,
		EndDate:    end,
		Reason:     body.Reason,
		Attachment: body.Attachment,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to submit request", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toRequestDTO(req))
}

// GetBalance returns the employee's balances for the current accounting period.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	if h.Directory != nil {
		if _, ok := h.Directory.Lookup(employeeID); !ok {
			writeError(w, http.StatusNotFound, "Employee not found", generic.ErrEmployeeNotFound)
			return
		}
	}
	writeJSON(w, http.StatusOK, toBalanceSummaryDTO(employeeID, h.Service.BalanceSnapshot(employeeID)))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListRequests returns requests newest first, optionally filtered.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	var filter timeoff.ListFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := timeoff.ParseStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err)
			return
		}
		filter.Status = status
	}
	filter.EmployeeID = r.URL.Query().Get("employee_id")

	dtos := []RequestDTO{}
	for req, err := range h.Service.List(r.Context(), filter) {
		if err != nil {
			h.writeServiceError(w, "Failed to list requests", err)
			return
		}
		dtos = append(dtos, h.toRequestDTO(req))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get request", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(req))
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(req))
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to reject request", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(req))
}

// CancelRequest withdraws a pending request. The client must send
// {"confirm": true}; anything else is refused before the service is called.
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	var body CancelBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !body.Confirm {
		writeError(w, http.StatusBadRequest, "Cancellation must be confirmed", nil)
		return
	}

	req, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "Failed to cancel request", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRequestDTO(req))
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// MaxCalendarDays bounds the window GetCalendar projects.
const MaxCalendarDays = 366

// GetCalendar projects team availability. The window defaults to the current
// month and spans at most MaxCalendarDays; limit caps the absentees listed per
// day (0 = no cap).
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	from, to, ok := parseWindow(w, r,
		generic.StartOfMonth(today.Year(), today.Month()),
		generic.EndOfMonth(today.Year(), today.Month()))
	if !ok {
		return
	}
	if to.After(from.AddDays(MaxCalendarDays - 1)) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Calendar window cannot exceed %d days", MaxCalendarDays), nil)
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	entries, err := h.Service.Project(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, "Failed to build calendar", err)
		return
	}

	resp := CalendarResponse{From: from.String(), To: to.String(), Days: make([]CalendarDayDTO, len(entries))}
	for i, e := range entries {
		resp.Days[i] = toCalendarDayDTO(e, limit)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListHolidays returns company-wide holidays. The window defaults to the current year.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	from, to, ok := parseWindow(w, r, generic.StartOfYear(today.Year()), generic.EndOfYear(today.Year()))
	if !ok {
		return
	}

	dtos := []HolidayDTO{}
	if h.Holidays != nil {
		holidays, err := h.Holidays.ListHolidays(r.Context(), "", from, to)
		if err != nil {
			h.writeServiceError(w, "Failed to list holidays", err)
			return
		}
		for _, hol := range holidays {
			dtos = append(dtos, toHolidayDTO(hol))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseOptionalDate(s string) (generic.TimePoint, error) {
	if strings.TrimSpace(s) == "" {
		return generic.TimePoint{}, nil
	}
	return generic.ParseDate(strings.TrimSpace(s))
}

// parseWindow reads ?from= and ?to=, writing a 400 and returning false on bad input.
func parseWindow(w http.ResponseWriter, r *http.Request, defFrom, defTo generic.TimePoint) (generic.TimePoint, generic.TimePoint, bool) {
	from, to := defFrom, defTo
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return from, to, false
		}
		from = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return from, to, false
		}
		to = d
	}
	window, err := generic.NewPeriod(from, to)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return from, to, false
	}
	return window.Start, window.End, true
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	var fields timeoff.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Validation failed",
			Details: err.Error(),
			Fields:  fields,
		})
	case timeoff.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, timeoff.ErrInvalidTransition), errors.Is(err, timeoff.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, generic.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.logger().Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
