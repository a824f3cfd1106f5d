// Package status summarises the health of the running site for /healthz.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

const (
	StateOperational = "operational"
	StateDegraded    = "degraded"
)

// Summary captures an overview of the site status.
type Summary struct {
	State      string      `json:"status"`
	Uptime     string      `json:"uptime"`
	UpdatedAt  time.Time   `json:"timestamp"`
	Components []Component `json:"components"`
}

// Component represents the status of an individual subsystem.
type Component struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Check reports a component's detail, or an error when it is degraded.
type Check func(ctx context.Context) (detail string, err error)

// Board collects named checks.
type Board struct {
	mu      sync.RWMutex
	checks  map[string]Check
	started time.Time
	now     func() time.Time
}

// NewBoard returns an empty Board.
func NewBoard() *Board {
	now := func() time.Time { return time.Now().UTC() }
	return &Board{checks: map[string]Check{}, started: now(), now: now}
}

// Register adds or replaces a check.
func (b *Board) Register(name string, check Check) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checks[name] = check
}

// Summary runs every check. Any failing check degrades the overall state.
func (b *Board) Summary(ctx context.Context) Summary {
	b.mu.RLock()
	names := make([]string, 0, len(b.checks))
	for name := range b.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(b.checks))
	for k, v := range b.checks {
		checks[k] = v
	}
	b.mu.RUnlock()
	sort.Strings(names)

	now := b.now()
	s := Summary{
		State:     StateOperational,
		Uptime:    now.Sub(b.started).Round(time.Second).String(),
		UpdatedAt: now,
	}
	for _, name := range names {
		detail, err := checks[name](ctx)
		c := Component{Name: name, Status: StateOperational, Detail: detail}
		if err != nil {
			c.Status = StateDegraded
			c.Detail = err.Error()
			s.State = StateDegraded
		}
		s.Components = append(s.Components, c)
	}
	return s
}

// Handler serves the summary as JSON; a degraded state answers 503.
func (b *Board) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := b.Summary(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if s.State != StateOperational {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(s); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
