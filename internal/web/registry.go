package web

import (
	"sync"
	"time"

	"teacherdash/internal/app"
)

// sweepEvery bounds how often idle controllers are looked for.
const sweepEvery = time.Minute

type entry struct {
	ctrl *app.Controller
	seen time.Time
}

// registry maps browser session ids to their controllers and forgets the ones
// idle for longer than maxAge.
type registry struct {
	mu        sync.Mutex
	entries   map[string]*entry
	maxAge    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newRegistry(maxAge time.Duration) *registry {
	return &registry{entries: make(map[string]*entry), maxAge: maxAge, now: time.Now}
}

// get returns the controller for sid, building it with create when missing.
// fresh is true only for the caller that created it.
func (r *registry) get(sid string, create func() *app.Controller) (ctrl *app.Controller, fresh bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweepLocked(now)
	if e, ok := r.entries[sid]; ok {
		e.seen = now
		return e.ctrl, false
	}
	e := &entry{ctrl: create(), seen: now}
	r.entries[sid] = e
	return e.ctrl, true
}

func (r *registry) sweepLocked(now time.Time) {
	if r.maxAge <= 0 || now.Sub(r.lastSweep) < sweepEvery {
		return
	}
	r.lastSweep = now
	for sid, e := range r.entries {
		if now.Sub(e.seen) > r.maxAge {
			delete(r.entries, sid)
		}
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
