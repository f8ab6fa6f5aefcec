package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-tracker/generic"
)

// Holidays is an in-process timeoff.HolidayStore.
type Holidays struct {
	mu   sync.RWMutex
	byID map[string]generic.Holiday
}

func NewHolidays(holidays ...generic.Holiday) *Holidays {
	h := &Holidays{byID: make(map[string]generic.Holiday)}
	for _, hol := range holidays {
		h.byID[hol.ID] = hol
	}
	return h
}

// SaveHoliday inserts or replaces the holiday with the same ID.
func (h *Holidays) SaveHoliday(_ context.Context, hol generic.Holiday) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byID[hol.ID] = hol
	return nil
}

func (h *Holidays) ListHolidays(_ context.Context, employeeID string, from, to generic.TimePoint) ([]generic.Holiday, error) {
	return h.list(employeeID, from, to), nil
}

func (h *Holidays) IsHoliday(employeeID string, date generic.TimePoint) bool {
	return len(h.list(employeeID, date, date)) > 0
}

func (h *Holidays) HolidaysBetween(employeeID string, from, to generic.TimePoint) []generic.TimePoint {
	hs := h.list(employeeID, from, to)
	dates := make([]generic.TimePoint, 0, len(hs))
	for _, hol := range hs {
		dates = append(dates, hol.Date)
	}
	return dates
}

func (h *Holidays) list(employeeID string, from, to generic.TimePoint) []generic.Holiday {
	h.mu.RLock()
	all := make([]generic.Holiday, 0, len(h.byID))
	for _, hol := range h.byID {
		all = append(all, hol)
	}
	h.mu.RUnlock()

	// A StaticHolidayCalendar does the filtering and date ordering.
	return generic.NewStaticHolidayCalendar(sortedByID(all)...).Holidays(employeeID, from, to)
}

func sortedByID(hs []generic.Holiday) []generic.Holiday {
	sort.Slice(hs, func(i, j int) bool { return hs[i].ID < hs[j].ID })
	return hs
}
