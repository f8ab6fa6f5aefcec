/*
store.go - Collaborator interfaces for the request service

PURPOSE:
  The interfaces RequestService depends on: where requests live, who the
  employees are, and what day it is.

REPOSITORY CONTRACT:
  - Insert appends; list order is insertion order (All returns oldest first)
  - Update replaces an existing request, returns ErrRequestNotFound otherwise
  - NO Delete method exists: rejected and cancelled requests stay for audit

HOLIDAY STORE:
  - SaveHoliday upserts by holiday ID
  - Lookups that fail report "no holiday" rather than an error

IMPLEMENTATIONS:
  - store/memory: In-process slice (default)
  - store/sqlite: go-sqlite3, ":memory:" by default

SEE ALSO:
  - request.go: RequestService
*/
package timeoff

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-tracker/generic"
)

// Repository persists leave requests. Implementations must be safe for
// concurrent use.
type Repository interface {
	Insert(ctx context.Context, r LeaveRequest) error
	Update(ctx context.Context, r LeaveRequest) error
	Get(ctx context.Context, id string) (LeaveRequest, error)

	// All returns every request in insertion order.
	All(ctx context.Context) ([]LeaveRequest, error)
}

// HolidayStore is a HolidayCalendar that can be listed and extended.
type HolidayStore interface {
	generic.HolidayCalendar
	SaveHoliday(ctx context.Context, h generic.Holiday) error

	// ListHolidays returns holidays applying to employeeID in [from, to],
	// date ascending. An empty employeeID means company-wide only.
	ListHolidays(ctx context.Context, employeeID string, from, to generic.TimePoint) ([]generic.Holiday, error)
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

type Employee struct {
	ID         string
	Name       string
	Department string
}

// Directory resolves employee ids for validation and display.
type Directory interface {
	Lookup(employeeID string) (Employee, bool)
	Employees() []Employee
}

// StaticDirectory is an in-process Directory.
type StaticDirectory struct {
	mu    sync.RWMutex
	byID  map[string]Employee
	order []string
}

func NewStaticDirectory(employees ...Employee) *StaticDirectory {
	d := &StaticDirectory{byID: make(map[string]Employee)}
	for _, e := range employees {
		d.Add(e)
	}
	return d
}

// Add inserts or replaces an employee.
func (d *StaticDirectory) Add(e Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byID[e.ID]; !exists {
		d.order = append(d.order, e.ID)
	}
	d.byID[e.ID] = e
}

func (d *StaticDirectory) Lookup(employeeID string) (Employee, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.byID[employeeID]
	return e, ok
}

// Employees returns everyone sorted by name.
func (d *StaticDirectory) Employees() []Employee {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Employee, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// displayName falls back to the id when the directory does not know the employee.
func displayName(dir Directory, employeeID string) string {
	if dir == nil {
		return employeeID
	}
	if e, ok := dir.Lookup(employeeID); ok && e.Name != "" {
		return e.Name
	}
	return employeeID
}
