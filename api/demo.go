/*
demo.go - Demo team loader

PURPOSE:
  Populates a fresh process with the sample team calendar: eight people,
  four leave requests around the current month and one company holiday.
  Loaded at startup when SEED_DEMO is set.

WHAT GETS CREATED:
  Team:      8 employees across Engineering, Marketing, Design, Product,
             HR and Finance
  Requests:  Sarah Johnson    vacation  days 5-10 this month    approved
             Michael Brown    sick      days 15-16 this month   approved
             Emily Davis      casual    days 20-21 this month   pending
             David Wilson     vacation  days 3-14 next month    approved
  Holiday:   "Team Building Day" on day 25 of this month

HOW:
  Requests go through RequestService.Submit and Approve like any client
  request, so balances, events and metrics reflect the seed.

RESTARTS:
  The team is registered on every call because the directory lives in
  memory. Holidays and requests are only written when the store holds no
  requests yet, so a file-backed store is seeded once.

SEE ALSO:
  - cmd/server/main.go: Calls SeedDemo
*/
package api

import (
	"context"
	"fmt"

	"github.com/warp/leave-tracker/generic"
	"github.com/warp/leave-tracker/timeoff"
)

// DemoTeam is the sample directory.
var DemoTeam = []timeoff.Employee{
	{ID: "emp-1", Name: "Sarah Johnson", Department: "Engineering"},
	{ID: "emp-2", Name: "Michael Brown", Department: "Marketing"},
	{ID: "emp-3", Name: "Emily Davis", Department: "Design"},
	{ID: "emp-4", Name: "David Wilson", Department: "Product"},
	{ID: "emp-5", Name: "Jennifer Taylor", Department: "HR"},
	{ID: "emp-6", Name: "Robert Miller", Department: "Engineering"},
	{ID: "emp-7", Name: "Jessica Anderson", Department: "Finance"},
	{ID: "emp-8", Name: "Christopher Martinez", Department: "Engineering"},
}

type demoLeave struct {
	employeeID string
	category   timeoff.Category
	monthShift int
	fromDay    int
	toDay      int
	reason     string
	approve    bool
}

var demoLeaves = []demoLeave{
	{"emp-1", timeoff.CategoryVacation, 0, 5, 10, "Family vacation", true},
	{"emp-2", timeoff.CategorySick, 0, 15, 16, "Flu recovery", true},
	{"emp-3", timeoff.CategoryCasual, 0, 20, 21, "Moving apartments", false},
	{"emp-4", timeoff.CategoryVacation, 1, 3, 14, "Trip abroad", true},
}

// DemoSeed names the collaborators SeedDemo writes into.
type DemoSeed struct {
	Service   *timeoff.RequestService
	Directory *timeoff.StaticDirectory
	Holidays  timeoff.HolidayStore
	Today     generic.TimePoint
}

// SeedDemo loads the demo team, holiday and requests. It returns the created
// requests in submission order, or none when the store already had requests.
func SeedDemo(ctx context.Context, seed DemoSeed) ([]timeoff.LeaveRequest, error) {
	for _, e := range DemoTeam {
		seed.Directory.Add(e)
	}

	for _, err := range seed.Service.List(ctx, timeoff.ListFilter{}) {
		if err != nil {
			return nil, fmt.Errorf("failed to inspect store before seeding: %w", err)
		}
		return nil, nil
	}

	month := generic.StartOfMonth(seed.Today.Year(), seed.Today.Month())

	if seed.Holidays != nil {
		hol := generic.Holiday{
			ID:   "hol-team-building-" + month.String(),
			Date: dayOf(month, 25),
			Name: "Team Building Day",
		}
		if err := seed.Holidays.SaveHoliday(ctx, hol); err != nil {
			return nil, fmt.Errorf("failed to seed holiday: %w", err)
		}
	}

	created := make([]timeoff.LeaveRequest, 0, len(demoLeaves))
	for _, l := range demoLeaves {
		base := month.AddMonths(l.monthShift)
		req, err := seed.Service.Submit(ctx, timeoff.Submission{
			EmployeeID: l.employeeID,
			Category:   l.category,
			StartDate:  dayOf(base, l.fromDay),
			EndDate:    dayOf(base, l.toDay),
			Reason:     l.reason,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed request for %s: %w", l.employeeID, err)
		}
		if l.approve {
			id := req.ID
			if req, err = seed.Service.Approve(ctx, id); err != nil {
				return nil, fmt.Errorf("failed to approve seeded request %s: %w", id, err)
			}
		}
		created = append(created, req)
	}
	return created, nil
}

// dayOf returns day d of the month starting at first.
func dayOf(first generic.TimePoint, d int) generic.TimePoint {
	return first.AddDays(d - 1)
}
