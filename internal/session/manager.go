package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Factory builds a controller for a new session. The observer must be
// passed to the controller so the manager can fan snapshots out.
type Factory func(ownerID, tabID string, observer Observer) *Controller

// entry tracks one controller and when it was last used.
type entry struct {
	ctrl     *Controller
	lastUsed time.Time
}

// Manager owns the form sessions of every connected browser tab.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]map[string]*entry // ownerID -> tabID -> entry
	factory  Factory
	clock    Clock
	onChange func(ownerID, tabID string, s Snapshot)
}

// NewManager creates a session manager.
func NewManager(factory Factory, clock Clock) *Manager {
	if clock == nil {
		clock = RealClock()
	}
	return &Manager{
		sessions: make(map[string]map[string]*entry),
		factory:  factory,
		clock:    clock,
	}
}

// OnChange registers a callback invoked with every snapshot published by a
// managed controller. It must be set before the first Get.
func (m *Manager) OnChange(fn func(ownerID, tabID string, s Snapshot)) {
	m.onChange = fn
}

// Get returns the controller for an owner/tab, creating it on first use.
func (m *Manager) Get(ownerID, tabID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	tabs, ok := m.sessions[ownerID]
	if !ok {
		tabs = make(map[string]*entry)
		m.sessions[ownerID] = tabs
	}

	now := m.clock.Now()
	if e, ok := tabs[tabID]; ok {
		e.lastUsed = now
		return e.ctrl
	}

	observer := func(s Snapshot) {
		if m.onChange != nil {
			m.onChange(ownerID, tabID, s)
		}
	}
	ctrl := m.factory(ownerID, tabID, observer)
	tabs[tabID] = &entry{ctrl: ctrl, lastUsed: now}
	slog.Info("Form session created", "owner_id", ownerID, "session_id", tabID)
	return ctrl
}

// Lookup returns an existing controller without creating one.
func (m *Manager) Lookup(ownerID, tabID string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tabs, ok := m.sessions[ownerID]; ok {
		if e, ok := tabs[tabID]; ok {
			return e.ctrl, true
		}
	}
	return nil, false
}

// Touch marks a session as used now.
func (m *Manager) Touch(ownerID, tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tabs, ok := m.sessions[ownerID]; ok {
		if e, ok := tabs[tabID]; ok {
			e.lastUsed = m.clock.Now()
		}
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, tabs := range m.sessions {
		n += len(tabs)
	}
	return n
}

// Remove closes and forgets one session.
func (m *Manager) Remove(ownerID, tabID string) {
	m.mu.Lock()
	var ctrl *Controller
	if tabs, ok := m.sessions[ownerID]; ok {
		if e, ok := tabs[tabID]; ok {
			ctrl = e.ctrl
			delete(tabs, tabID)
			if len(tabs) == 0 {
				delete(m.sessions, ownerID)
			}
		}
	}
	m.mu.Unlock()

	if ctrl != nil {
		ctrl.Close()
		slog.Info("Form session closed", "owner_id", ownerID, "session_id", tabID)
	}
}

// Sweep closes sessions idle for longer than ttl and returns how many were
// removed.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.clock.Now().Add(-ttl)

	m.mu.Lock()
	var expired []*Controller
	for ownerID, tabs := range m.sessions {
		for tabID, e := range tabs {
			if e.lastUsed.Before(cutoff) {
				expired = append(expired, e.ctrl)
				delete(tabs, tabID)
			}
		}
		if len(tabs) == 0 {
			delete(m.sessions, ownerID)
		}
	}
	m.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(ttl); n > 0 {
					slog.Info("Expired form sessions closed", "count", n)
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	var all []*Controller
	for _, tabs := range m.sessions {
		for _, e := range tabs {
			all = append(all, e.ctrl)
		}
	}
	m.sessions = make(map[string]map[string]*entry)
	m.mu.Unlock()

	for _, ctrl := range all {
		ctrl.Close()
	}
}
