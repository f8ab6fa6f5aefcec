/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the timeoff domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Body: Request body types from clients
  - *Response: Complex response wrappers

FIELD NAMES:
  JSON keys are camelCase so that submission field errors ("startDate",
  "reason", ...) name the same keys the client sent.

DATES:
  Every date is "2006-01-02". Ranges additionally carry a display string
  formatted for the configured locale ("Jun 3 – Jun 5").

SEE ALSO:
  - handlers.go: Uses these types
  - timeoff/types.go: Domain types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/leave-tracker/generic"
	"github.com/warp/leave-tracker/timeoff"
)

// =============================================================================
// REQUEST BODIES
// =============================================================================

// SubmitRequestBody is the body of POST /api/employees/{id}/requests.
type SubmitRequestBody struct {
	Category   string              `json:"category"`
	StartDate  string              `json:"startDate"`
	EndDate    string              `json:"endDate"`
	Reason     string              `json:"reason"`
	Attachment *timeoff.Attachment `json:"attachment,omitempty"`
}

// CancelBody is the body of POST /api/requests/{id}/cancel.
type CancelBody struct {
	Confirm bool `json:"confirm"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// RequestDTO represents a leave request in API responses.
type RequestDTO struct {
	ID             string              `json:"id"`
	EmployeeID     string              `json:"employeeId"`
	EmployeeName   string              `json:"employeeName"`
	Category       timeoff.Category    `json:"category"`
	CategoryLabel  string              `json:"categoryLabel"`
	StartDate      string              `json:"startDate"`
	EndDate        string              `json:"endDate"`
	Range          string              `json:"range"`
	Reason         string              `json:"reason"`
	Attachment     *timeoff.Attachment `json:"attachment,omitempty"`
	Status         string              `json:"status"`
	AppliedOn      string              `json:"appliedOn"`
	DecidedOn      string              `json:"decidedOn,omitempty"`
	WorkingDays    int                 `json:"workingDays"`
	ExceedsBalance bool                `json:"exceedsBalance"`
}

// BalanceDTO is one category of a balance snapshot.
type BalanceDTO struct {
	Category         timeoff.Category `json:"category"`
	Label            string           `json:"label"`
	PeriodStart      string           `json:"periodStart"`
	PeriodEnd        string           `json:"periodEnd"`
	Allocated        int              `json:"allocated"`
	Used             int              `json:"used"`
	Remaining        int              `json:"remaining"`
	RemainingPercent decimal.Decimal  `json:"remainingPercent"`
	Overdrawn        bool             `json:"overdrawn"`
}

type BalanceSummaryDTO struct {
	EmployeeID string       `json:"employeeId"`
	Balances   []BalanceDTO `json:"balances"`
}

type AbsenteeDTO struct {
	EmployeeID string           `json:"employeeId"`
	Name       string           `json:"name"`
	Category   timeoff.Category `json:"category"`
	RequestID  string           `json:"requestId"`
	Tentative  bool             `json:"tentative"`
}

// CalendarDayDTO is one date of the team calendar. Overflow counts the
// absentees hidden by the limit query parameter.
type CalendarDayDTO struct {
	Date      string        `json:"date"`
	Weekend   bool          `json:"weekend"`
	Holiday   bool          `json:"holiday"`
	Absentees []AbsenteeDTO `json:"absentees"`
	Overflow  int           `json:"overflow"`
}

type CalendarResponse struct {
	From string           `json:"from"`
	To   string           `json:"to"`
	Days []CalendarDayDTO `json:"days"`
}

type HolidayDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId,omitempty"`
	Date       string `json:"date"`
	Name       string `json:"name"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func (h *Handler) toRequestDTO(r timeoff.LeaveRequest) RequestDTO {
	name := r.EmployeeID
	if h.Directory != nil {
		if e, ok := h.Directory.Lookup(r.EmployeeID); ok {
			name = e.Name
		}
	}
	return RequestDTO{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		EmployeeName:   name,
		Category:       r.Category,
		CategoryLabel:  r.Category.Label(),
		StartDate:      r.StartDate.String(),
		EndDate:        r.EndDate.String(),
		Range:          generic.FormatRange(r.StartDate, r.EndDate, h.Locale),
		Reason:         r.Reason,
		Attachment:     r.Attachment,
		Status:         string(r.Status),
		AppliedOn:      r.AppliedOn.String(),
		DecidedOn:      r.DecidedOn.String(),
		WorkingDays:    r.WorkingDays,
		ExceedsBalance: r.ExceedsBalance,
	}
}

func toBalanceSummaryDTO(employeeID string, snapshot map[timeoff.Category]timeoff.Balance) BalanceSummaryDTO {
	out := BalanceSummaryDTO{EmployeeID: employeeID, Balances: make([]BalanceDTO, 0, len(snapshot))}
	for _, c := range timeoff.Categories {
		b, ok := snapshot[c]
		if !ok {
			continue
		}
		out.Balances = append(out.Balances, BalanceDTO{
			Category:         c,
			Label:            c.Label(),
			PeriodStart:      b.Period.Start.String(),
			PeriodEnd:        b.Period.End.String(),
			Allocated:        b.Allocated,
			Used:             b.Used,
			Remaining:        b.Remaining,
			RemainingPercent: b.RemainingPercent(),
			Overdrawn:        b.Overdrawn(),
		})
	}
	return out
}

func toCalendarDayDTO(e timeoff.AvailabilityEntry, limit int) CalendarDayDTO {
	shown, overflow := e.Visible(limit)
	absentees := make([]AbsenteeDTO, len(shown))
	for i, a := range shown {
		absentees[i] = AbsenteeDTO{
			EmployeeID: a.EmployeeID,
			Name:       a.DisplayName,
			Category:   a.Category,
			RequestID:  a.RequestID,
			Tentative:  a.Tentative,
		}
	}
	return CalendarDayDTO{
		Date:      e.Date.String(),
		Weekend:   e.Weekend,
		Holiday:   e.Holiday,
		Absentees: absentees,
		Overflow:  overflow,
	}
}

func toHolidayDTO(hol generic.Holiday) HolidayDTO {
	return HolidayDTO{ID: hol.ID, EmployeeID: hol.EmployeeID, Date: hol.Date.String(), Name: hol.Name}
}
