// Package ratelimit implements the sliding-window install ledger. It
// intentionally does not reach for golang.org/x/time/rate's token bucket:
// the rule ("reset the whole window after 1 hour, allow up to 5, otherwise
// refuse") is a fixed-window counter, not a bucket, and forcing the bucket
// abstraction onto it would only obscure the rule. The HTTP-wide request
// throttle in internal/api does use x/time/rate, where a token bucket is in
// fact the right primitive.
package ratelimit

import (
	"sync"
	"time"

	"github.com/aureuma/skillregistry/internal/model"
)

type key struct {
	caller  model.Identity
	skillID string
}

type window struct {
	count       int
	windowStart time.Time
}

// Ledger is keyed by (caller, skill_id) and enforces an install rate limit.
type Ledger struct {
	mu      sync.Mutex
	windows map[key]window

	limit      int
	windowSize time.Duration
}

// New constructs a Ledger with the given per-window limit and window size.
func New(limit int, windowSize time.Duration) *Ledger {
	return &Ledger{
		windows:    make(map[key]window),
		limit:      limit,
		windowSize: windowSize,
	}
}

// Allow records one attempt for (caller, skillID) and reports whether it is
// permitted. Anonymous callers all present model.Anonymous and therefore
// share a single bucket per skill.
func (l *Ledger) Allow(caller model.Identity, skillID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	k := key{caller: caller, skillID: skillID}
	w, ok := l.windows[k]
	if !ok || now.Sub(w.windowStart) > l.windowSize {
		w = window{count: 0, windowStart: now}
	}
	if w.count >= l.limit {
		l.windows[k] = w
		return false
	}
	w.count++
	l.windows[k] = w
	return true
}

// Sweep removes ledger entries whose window started before cutoff, per the
// retention sweep.
func (l *Ledger) Sweep(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for k, w := range l.windows {
		if w.windowStart.Before(cutoff) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

// Len reports the current number of tracked (caller, skill) windows, used
// by the query surface's memory stats.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Snapshot and Restore support the persisted-state migration path.

type Entry struct {
	Caller      model.Identity `json:"caller"`
	SkillID     string         `json:"skill_id"`
	Count       int            `json:"count"`
	WindowStart time.Time      `json:"window_start"`
}

func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.windows))
	for k, w := range l.windows {
		out = append(out, Entry{Caller: k.caller, SkillID: k.skillID, Count: w.count, WindowStart: w.windowStart})
	}
	return out
}

func (l *Ledger) Restore(entries []Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[key]window, len(entries))
	for _, e := range entries {
		l.windows[key{caller: e.Caller, skillID: e.SkillID}] = window{count: e.Count, windowStart: e.WindowStart}
	}
}
