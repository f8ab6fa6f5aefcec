/*
availability.go - Team calendar projection

PURPOSE:
  Turns a set of leave requests into "who is away on which day" for a
  window of dates. The result drives the shared team calendar.

RULES:
  1. One AvailabilityEntry per date in [from, to], in date order, even when
     nobody is away (Absentees is then empty, never nil).
  2. Approved requests always count. Pending requests count only when
     IncludePending is set, and are marked Tentative.
  3. A request appears on every date its inclusive range covers; a one-day
     request appears on exactly one date.
  4. The projector never truncates. Capping per date is Visible's job.

COMPLEXITY:
  Plain days × requests scan. A team calendar holds tens of requests.

SEE ALSO:
  - request.go: RequestService.Project feeds the repository contents here
*/
package timeoff

import "github.com/warp/leave-tracker/generic"

// Absentee is one person away on a date.
type Absentee struct {
	EmployeeID  string
	DisplayName string
	Category    Category
	RequestID   string
	Tentative   bool // pending, not yet approved
}

type AvailabilityEntry struct {
	Date      generic.TimePoint
	Absentees []Absentee
	Weekend   bool
	Holiday   bool // company-wide holiday
}

// Visible caps the absentees shown for a date and reports how many were hidden.
// A limit <= 0 shows everyone.
func (e AvailabilityEntry) Visible(limit int) ([]Absentee, int) {
	if limit <= 0 || len(e.Absentees) <= limit {
		return e.Absentees, 0
	}
	return e.Absentees[:limit], len(e.Absentees) - limit
}

// Projector computes availability. The zero value counts approved requests
// only, shows employee ids as names and marks no holidays.
type Projector struct {
	Directory      Directory
	Holidays       generic.HolidayCalendar
	IncludePending bool
}

// Project lists absentees for every date in [from, to]. Requests are
// reported in the order given.
func (p Projector) Project(requests []LeaveRequest, from, to generic.TimePoint) ([]AvailabilityEntry, error) {
	window, err := generic.NewPeriod(from, to)
	if err != nil {
		return nil, err
	}

	var relevant []LeaveRequest
	for _, r := range requests {
		if !p.counts(r.Status) {
			continue
		}
		if _, overlaps := r.Range().Intersect(window); overlaps {
			relevant = append(relevant, r)
		}
	}

	days := window.Days()
	entries := make([]AvailabilityEntry, 0, len(days))
	for _, day := range days {
		entry := AvailabilityEntry{
			Date:      day,
			Absentees: []Absentee{},
			Weekend:   day.IsWeekend(),
		}
		if p.Holidays != nil {
			entry.Holiday = p.Holidays.IsHoliday("", day)
		}
		for _, r := range relevant {
			if !r.Covers(day) {
				continue
			}
			entry.Absentees = append(entry.Absentees, Absentee{
				EmployeeID:  r.EmployeeID,
				DisplayName: displayName(p.Directory, r.EmployeeID),
				Category:    r.Category,
				RequestID:   r.ID,
				Tentative:   r.Status == StatusPending,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p Projector) counts(s RequestStatus) bool {
	return s == StatusApproved || (p.IncludePending && s == StatusPending)
}
