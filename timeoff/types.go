// Package timeoff implements the leave request lifecycle, per-category leave
// balances and the team availability projection.
package timeoff

import (
	"fmt"
	"strings"

	"github.com/warp/leave-tracker/generic"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category is the leave type a request draws from.
type Category string

const (
	CategoryCasual   Category = "casual"
	CategorySick     Category = "sick"
	CategoryVacation Category = "vacation"
	CategoryOptional Category = "optional"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryCasual, CategorySick, CategoryVacation, CategoryOptional}

// ParseCategory accepts the canonical value case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unknown leave category %q", s)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryCasual, CategorySick, CategoryVacation, CategoryOptional:
		return true
	}
	return false
}

// Label is the human-readable name shown on balance cards.
func (c Category) Label() string {
	switch c {
	case CategoryCasual:
		return "Casual Leave"
	case CategorySick:
		return "Sick Leave"
	case CategoryVacation:
		return "Vacation"
	case CategoryOptional:
		return "Optional Holidays"
	}
	return string(c)
}

// =============================================================================
// STATUS
// =============================================================================

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

func ParseStatus(s string) (RequestStatus, error) {
	st := RequestStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// Terminal reports whether no transition leaves this status.
func (s RequestStatus) Terminal() bool {
	return s != StatusPending
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

// Attachment references a supporting document. The engine never stores the
// file itself.
type Attachment struct {
	Name        string `json:"name" validate:"required,attachext"`
	ContentType string `json:"contentType" validate:"required,oneof=application/pdf image/png image/jpeg image/jpg"`
	Size        int64  `json:"size" validate:"min=0,max=2097152"`
}

// LeaveRequest is a time-off request. Values handed out by RequestService are
// copies; state only changes through its transition methods.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	Category   Category
	StartDate  generic.TimePoint
	EndDate    generic.TimePoint
	Reason     string
	Attachment *Attachment
	Status     RequestStatus
	AppliedOn  generic.TimePoint
	DecidedOn  generic.TimePoint

	// WorkingDays is the balance cost of the request, fixed at submission.
	WorkingDays int
	// ExceedsBalance flags a submission asking for more than was remaining.
	ExceedsBalance bool
}

// Covers reports whether day lies within [StartDate, EndDate].
func (r LeaveRequest) Covers(day generic.TimePoint) bool {
	return day.AfterOrEqual(r.StartDate) && day.BeforeOrEqual(r.EndDate)
}

// Range returns the request dates as a period.
func (r LeaveRequest) Range() generic.Period {
	return generic.Period{Start: r.StartDate, End: r.EndDate}
}

// Submission is the user's input for a new request. Dates are checked by
// validateSubmission directly; the tags cover the remaining fields.
type Submission struct {
	EmployeeID string            `json:"employeeId" validate:"required"`
	Category   Category          `json:"category" validate:"required,category"`
	StartDate  generic.TimePoint `json:"startDate"`
	EndDate    generic.TimePoint `json:"endDate"`
	Reason     string            `json:"reason" validate:"trimmin=5"`
	Attachment *Attachment       `json:"attachment"`
}

// =============================================================================
// EVENTS
// =============================================================================

type EventType string

const (
	EventSubmitted EventType = "submitted"
	EventApproved  EventType = "approved"
	EventRejected  EventType = "rejected"
	EventCancelled EventType = "cancelled"
)

// Event is delivered to subscribers after a mutation has been applied.
type Event struct {
	Type    EventType
	Request LeaveRequest
}
