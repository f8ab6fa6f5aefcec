/*
request.go - Leave request lifecycle

PURPOSE:
  RequestService is the only way to create or change a leave request. It owns
  validation, the status state machine, the balance side effect of approval
  and change notification.

STATE MACHINE:
  ┌─────────┐  Approve   ┌──────────┐
  │         │ ─────────▶ │ Approved │──▶ BalanceLedger.DebitAt
  │         │            └──────────┘
  │ Pending │  Reject    ┌──────────┐
  │         │ ─────────▶ │ Rejected │
  │         │            └──────────┘
  │         │  Cancel    ┌───────────┐
  │         │ ─────────▶ │ Cancelled │
  └─────────┘            └───────────┘

  Approved, Rejected and Cancelled are terminal. Any transition attempted
  from them fails with InvalidTransitionError and changes nothing.

BALANCE EFFECT:
  Approve debits the request category by the working days of its range,
  counted against the employee's holiday calendar. A range that crosses an
  accounting period boundary is debited piecewise into each period.
  Reject and Cancel never touch the ledger: nothing was debited while pending.

ORDERING:
  Mutations are serialised; they apply in the order callers invoke them.
  Subscribers run synchronously after the mutation, outside the lock.

RESTART:
  The ledger lives in memory. Rebuild replays approved requests from a
  persistent repository so Used again matches what was approved.

SEE ALSO:
  - validate.go: Submission validation
  - ledger.go: BalanceLedger
  - availability.go: Projector
*/
package timeoff

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/leave-tracker/generic"
	"go.uber.org/zap"
)

// =============================================================================
// REQUEST SERVICE
// =============================================================================

// RequestServiceConfig wires a RequestService. Repository and Ledger are
// required; everything else has a default.
type RequestServiceConfig struct {
	Repository Repository
	Ledger     *BalanceLedger
	Holidays   generic.HolidayCalendar // default: weekends only
	Directory  Directory               // optional; enables the unknown-employee check
	Today      func() generic.TimePoint
	NewID      func() string
	Overdraw   OverdrawPolicy
	// IncludePending shows pending requests as tentative absences in Project.
	IncludePending bool
	Logger         *zap.Logger
}

type RequestService struct {
	mu        sync.Mutex
	repo      Repository
	ledger    *BalanceLedger
	holidays  generic.HolidayCalendar
	directory Directory
	today     func() generic.TimePoint
	newID     func() string
	overdraw  OverdrawPolicy
	pending   bool
	validate  *validator.Validate
	log       *zap.Logger

	subMu   sync.RWMutex
	subs    map[int]func(Event)
	nextSub int
}

func NewRequestService(cfg RequestServiceConfig) *RequestService {
	rs := &RequestService{
		repo:      cfg.Repository,
		ledger:    cfg.Ledger,
		holidays:  cfg.Holidays,
		directory: cfg.Directory,
		today:     cfg.Today,
		newID:     cfg.NewID,
		overdraw:  cfg.Overdraw,
		pending:   cfg.IncludePending,
		validate:  newValidator(),
		log:       cfg.Logger,
		subs:      make(map[int]func(Event)),
	}
	if rs.holidays == nil {
		rs.holidays = generic.NoHolidays{}
	}
	if rs.today == nil {
		rs.today = generic.Today
	}
	if rs.newID == nil {
		rs.newID = uuid.NewString
	}
	if rs.overdraw == "" {
		rs.overdraw = OverdrawAllow
	}
	if rs.log == nil {
		rs.log = zap.NewNop()
	}
	return rs
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit validates and records a new pending request. On invalid input it
// returns FieldErrors listing every violated field and stores nothing.
func (rs *RequestService) Submit(ctx context.Context, sub Submission) (LeaveRequest, error) {
	errs := validateSubmission(rs.validate, sub)
	if rs.directory != nil && sub.EmployeeID != "" {
		if _, ok := rs.directory.Lookup(sub.EmployeeID); !ok {
			if errs == nil {
				errs = FieldErrors{}
			}
			errs[FieldEmployee] = msgEmployeeUnknown
		}
	}
	if errs != nil {
		rs.log.Debug("leave submission rejected",
			zap.String("employee_id", sub.EmployeeID),
			zap.Any("fields", map[string]string(errs)))
		return LeaveRequest{}, errs
	}

	req := LeaveRequest{
		EmployeeID: sub.EmployeeID,
		Category:   sub.Category,
		StartDate:  sub.StartDate,
		EndDate:    sub.EndDate,
		Reason:     strings.TrimSpace(sub.Reason),
		Status:     StatusPending,
	}
	if sub.Attachment != nil {
		a := *sub.Attachment
		req.Attachment = &a
	}

	rs.mu.Lock()
	costs, err := rs.costByPeriod(ctx, req)
	if err != nil {
		rs.mu.Unlock()
		return LeaveRequest{}, err
	}
	for _, c := range costs {
		req.WorkingDays += c.Days
		if rs.ledger.BalanceAt(req.EmployeeID, req.Category, c.Period.Start).Remaining < c.Days {
			req.ExceedsBalance = true
		}
	}
	req.ID = rs.newID()
	req.AppliedOn = rs.today()

	if err := rs.repo.Insert(ctx, req); err != nil {
		rs.mu.Unlock()
		return LeaveRequest{}, fmt.Errorf("failed to store leave request: %w", err)
	}
	rs.mu.Unlock()

	rs.log.Info("leave request submitted",
		zap.String("request_id", req.ID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("category", string(req.Category)),
		zap.Int("working_days", req.WorkingDays),
		zap.Bool("exceeds_balance", req.ExceedsBalance))
	rs.publish(Event{Type: EventSubmitted, Request: req})
	return req, nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Approve moves a pending request to approved and debits the ledger.
func (rs *RequestService) Approve(ctx context.Context, id string) (LeaveRequest, error) {
	rs.mu.Lock()
	req, err := rs.pendingRequest(ctx, id, StatusApproved)
	if err != nil {
		rs.mu.Unlock()
		return LeaveRequest{}, err
	}

	costs, err := rs.costByPeriod(ctx, req)
	if err != nil {
		rs.mu.Unlock()
		return LeaveRequest{}, err
	}
	if rs.overdraw == OverdrawBlock {
		for _, c := range costs {
			bal := rs.ledger.BalanceAt(req.EmployeeID, req.Category, c.Period.Start)
			if bal.Remaining < c.Days {
				rs.mu.Unlock()
				return LeaveRequest{}, &InsufficientBalanceError{
					EmployeeID: req.EmployeeID,
					Category:   req.Category,
					Period:     bal.Period,
					Remaining:  bal.Remaining,
					Requested:  c.Days,
				}
			}
		}
	}

	req.Status = StatusApproved
	req.DecidedOn = rs.today()
	req.WorkingDays = 0
	for _, c := range costs {
		req.WorkingDays += c.Days
	}
	if err := rs.repo.Update(ctx, req); err != nil {
		rs.mu.Unlock()
		return LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	for _, c := range costs {
		rs.ledger.DebitAt(req.EmployeeID, req.Category, c.Period.Start, c.Days)
	}
	rs.mu.Unlock()

	rs.log.Info("leave request approved",
		zap.String("request_id", req.ID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("category", string(req.Category)),
		zap.Int("debited_days", req.WorkingDays))
	rs.publish(Event{Type: EventApproved, Request: req})
	return req, nil
}

// Reject moves a pending request to rejected. Balances are untouched.
func (rs *RequestService) Reject(ctx context.Context, id string) (LeaveRequest, error) {
	return rs.close(ctx, id, StatusRejected, EventRejected)
}

// Cancel withdraws a pending request. Asking the user to confirm is the
// caller's job; by the time Cancel runs the decision is final.
func (rs *RequestService) Cancel(ctx context.Context, id string) (LeaveRequest, error) {
	return rs.close(ctx, id, StatusCancelled, EventCancelled)
}

func (rs *RequestService) close(ctx context.Context, id string, to RequestStatus, ev EventType) (LeaveRequest, error) {
	rs.mu.Lock()
	req, err := rs.pendingRequest(ctx, id, to)
	if err != nil {
		rs.mu.Unlock()
		return LeaveRequest{}, err
	}
	req.Status = to
	req.DecidedOn = rs.today()
	if err := rs.repo.Update(ctx, req); err != nil {
		rs.mu.Unlock()
		return LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	rs.mu.Unlock()

	rs.log.Info("leave request "+string(to),
		zap.String("request_id", req.ID),
		zap.String("employee_id", req.EmployeeID))
	rs.publish(Event{Type: ev, Request: req})
	return req, nil
}

// pendingRequest loads id and checks it can move to `to`. Caller holds rs.mu.
func (rs *RequestService) pendingRequest(ctx context.Context, id string, to RequestStatus) (LeaveRequest, error) {
	req, err := rs.repo.Get(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.Status != StatusPending {
		rs.log.Debug("leave request transition refused",
			zap.String("request_id", id),
			zap.String("from", string(req.Status)),
			zap.String("to", string(to)))
		return LeaveRequest{}, &InvalidTransitionError{ID: id, From: req.Status, To: to}
	}
	return req, nil
}

// =============================================================================
// READS
// =============================================================================

// Get returns a single request.
func (rs *RequestService) Get(ctx context.Context, id string) (LeaveRequest, error) {
	return rs.repo.Get(ctx, id)
}

// ListFilter narrows List. Zero fields match everything.
type ListFilter struct {
	Status     RequestStatus
	EmployeeID string
}

func (f ListFilter) matches(r LeaveRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	return true
}

// List yields requests newest first. Nothing is read until the sequence is
// ranged over, and every range reads the repository afresh. A repository
// failure is yielded once as the error and ends the sequence.
func (rs *RequestService) List(ctx context.Context, filter ListFilter) iter.Seq2[LeaveRequest, error] {
	return func(yield func(LeaveRequest, error) bool) {
		all, err := rs.repo.All(ctx)
		if err != nil {
			yield(LeaveRequest{}, fmt.Errorf("failed to list leave requests: %w", err))
			return
		}
		for i := len(all) - 1; i >= 0; i-- {
			if !filter.matches(all[i]) {
				continue
			}
			if !yield(all[i], nil) {
				return
			}
		}
	}
}

// Collect drains a List sequence.
func Collect(seq iter.Seq2[LeaveRequest, error]) ([]LeaveRequest, error) {
	var out []LeaveRequest
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// BalanceSnapshot returns the employee's balances for the current period.
func (rs *RequestService) BalanceSnapshot(employeeID string) map[Category]Balance {
	return rs.ledger.Snapshot(employeeID)
}

// Project computes team availability for [from, to] from every stored request.
func (rs *RequestService) Project(ctx context.Context, from, to generic.TimePoint) ([]AvailabilityEntry, error) {
	all, err := rs.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave requests: %w", err)
	}
	p := Projector{Directory: rs.directory, Holidays: rs.holidays, IncludePending: rs.pending}
	return p.Project(all, from, to)
}

// =============================================================================
// REBUILD
// =============================================================================

// Rebuild replays every approved request into the ledger and returns how
// many were replayed. Call it once at startup, before serving, when the
// repository outlives the process. The ledger must not hold debits yet.
func (rs *RequestService) Rebuild(ctx context.Context) (int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	all, err := rs.repo.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load leave requests: %w", err)
	}
	replayed := 0
	for _, req := range all {
		if req.Status != StatusApproved {
			continue
		}
		costs, err := rs.costByPeriod(ctx, req)
		if err != nil {
			return replayed, fmt.Errorf("failed to cost leave request %s: %w", req.ID, err)
		}
		total := 0
		for _, c := range costs {
			total += c.Days
		}
		if total != req.WorkingDays {
			// Holidays changed since approval; the stored count is what was debited.
			rs.log.Warn("leave request cost changed since approval",
				zap.String("request_id", req.ID),
				zap.Int("approved_days", req.WorkingDays),
				zap.Int("current_days", total))
			costs = []periodCost{{Period: rs.ledger.PeriodFor(req.StartDate), Days: req.WorkingDays}}
		}
		for _, c := range costs {
			rs.ledger.DebitAt(req.EmployeeID, req.Category, c.Period.Start, c.Days)
		}
		replayed++
	}
	rs.log.Info("leave ledger rebuilt", zap.Int("approved_requests", replayed))
	return replayed, nil
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn for every applied mutation. The returned func removes it.
func (rs *RequestService) Subscribe(fn func(Event)) (unsubscribe func()) {
	rs.subMu.Lock()
	defer rs.subMu.Unlock()

	id := rs.nextSub
	rs.nextSub++
	rs.subs[id] = fn
	return func() {
		rs.subMu.Lock()
		defer rs.subMu.Unlock()
		delete(rs.subs, id)
	}
}

func (rs *RequestService) publish(ev Event) {
	rs.subMu.RLock()
	fns := make([]func(Event), 0, len(rs.subs))
	for i := 0; i < rs.nextSub; i++ {
		if fn, ok := rs.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	rs.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// =============================================================================
// COST
// =============================================================================

type periodCost struct {
	Period generic.Period // the piece of the request inside one accounting period
	Days   int
}

// costByPeriod counts the working days of r within each accounting period it touches.
func (rs *RequestService) costByPeriod(ctx context.Context, r LeaveRequest) ([]periodCost, error) {
	pieces, err := rs.ledger.Periods().Split(r.StartDate, r.EndDate)
	if err != nil {
		return nil, err
	}
	costs := make([]periodCost, 0, len(pieces))
	for _, piece := range pieces {
		holidays, err := rs.holidayDates(ctx, r.EmployeeID, piece)
		if err != nil {
			return nil, err
		}
		days, err := generic.WorkingDaysBetween(piece.Start, piece.End, holidays)
		if err != nil {
			return nil, err
		}
		costs = append(costs, periodCost{Period: piece, Days: days})
	}
	return costs, nil
}

// holidayLister is the error-reporting lookup a HolidayStore offers.
type holidayLister interface {
	ListHolidays(ctx context.Context, employeeID string, from, to generic.TimePoint) ([]generic.Holiday, error)
}

// holidayDates uses ListHolidays when the calendar has it, so lookup
// failures reach the caller.
func (rs *RequestService) holidayDates(ctx context.Context, employeeID string, piece generic.Period) ([]generic.TimePoint, error) {
	lister, ok := rs.holidays.(holidayLister)
	if !ok {
		return rs.holidays.HolidaysBetween(employeeID, piece.Start, piece.End), nil
	}
	hs, err := lister.ListHolidays(ctx, employeeID, piece.Start, piece.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	dates := make([]generic.TimePoint, 0, len(hs))
	for _, h := range hs {
		dates = append(dates, h.Date)
	}
	return dates, nil
}
