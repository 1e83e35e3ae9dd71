package monitoring

import (
	"sync"
	"time"
)

// Diagnostics is the process-local state shared by all reconciliations and
// the HTTP server. It is the single owner of that state; callers never lock
// it themselves.
type Diagnostics struct {
	mu        sync.RWMutex
	lastEvent time.Time
	reporter  string
}

// DiagnosticsSnapshot is a point-in-time copy of Diagnostics.
type DiagnosticsSnapshot struct {
	LastEvent time.Time `json:"last_event"`
	Reporter  string    `json:"reporter"`
}

// NewDiagnostics returns Diagnostics for the given event reporter name, with
// the last event set to now.
func NewDiagnostics(reporter string, now time.Time) *Diagnostics {
	return &Diagnostics{
		lastEvent: now,
		reporter:  reporter,
	}
}

// MarkEvent records t as the time of the last reconciliation event.
func (d *Diagnostics) MarkEvent(t time.Time) {
	d.mu.Lock()
	d.lastEvent = t
	d.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (d *Diagnostics) Snapshot() DiagnosticsSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DiagnosticsSnapshot{
		LastEvent: d.lastEvent,
		Reporter:  d.reporter,
	}
}
