// Package memory provides an in-process timeoff.Repository.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/leave-tracker/timeoff"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (default, tests)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	requests []timeoff.LeaveRequest
	index    map[string]int // id -> position in requests
}

func New() *Memory {
	return &Memory{index: make(map[string]int)}
}

// Insert appends a request. Ids must be unique.
func (m *Memory) Insert(_ context.Context, r timeoff.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[r.ID]; exists {
		return fmt.Errorf("leave request %q already exists", r.ID)
	}
	m.index[r.ID] = len(m.requests)
	m.requests = append(m.requests, clone(r))
	return nil
}

// Update replaces a stored request in place, keeping its insertion position.
func (m *Memory) Update(_ context.Context, r timeoff.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[r.ID]
	if !ok {
		return &timeoff.NotFoundError{ID: r.ID}
	}
	m.requests[i] = clone(r)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (timeoff.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return timeoff.LeaveRequest{}, &timeoff.NotFoundError{ID: id}
	}
	return clone(m.requests[i]), nil
}

func (m *Memory) All(_ context.Context) ([]timeoff.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]timeoff.LeaveRequest, len(m.requests))
	for i, r := range m.requests {
		out[i] = clone(r)
	}
	return out, nil
}

// clone detaches the attachment pointer so callers cannot edit stored state.
func clone(r timeoff.LeaveRequest) timeoff.LeaveRequest {
	if r.Attachment != nil {
		a := *r.Attachment
		r.Attachment = &a
	}
	return r
}
