package estimate

import (
	"sync"
	"time"

	"paystub/internal/domain/paycalc"
)

// Coordinator enforces latest-request-wins for one worker's estimation
// calls. Begin bumps the generation and clears any published breakdown so a
// stale estimate is never shown against updated inputs; Apply publishes a
// result only while its generation is still current. Cancellation is
// cooperative: a superseded call simply fails to apply.
type Coordinator struct {
	mu     sync.Mutex
	gen    uint64
	fields paycalc.TaxFieldMap
	valid  bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Begin starts a new estimation generation and invalidates the published
// result. The returned token must be passed back to Apply.
func (c *Coordinator) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.fields = nil
	c.valid = false
	return c.gen
}

// Apply publishes a result for the given generation. It reports false, and
// discards the result, when a newer call has begun since.
func (c *Coordinator) Apply(gen uint64, fields paycalc.TaxFieldMap) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.fields = fields
	c.valid = true
	return true
}

// Latest returns the currently published field map, if any.
func (c *Coordinator) Latest() (paycalc.TaxFieldMap, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields, c.valid
}

// Registry hands out one coordinator per worker session. Each handout stamps
// the entry with the current time so idle coordinators can be evicted instead
// of accumulating for every worker ever seen.
type Registry struct {
	mu      sync.Mutex
	workers map[string]*registryEntry
}

type registryEntry struct {
	coordinator *Coordinator
	seen        time.Time
}

func NewRegistry() *Registry {
	return &Registry{workers: map[string]*registryEntry{}}
}

func (r *Registry) For(workerID string) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.workers[workerID]
	if !ok {
		e = &registryEntry{coordinator: NewCoordinator()}
		r.workers[workerID] = e
	}
	e.seen = time.Now()
	return e.coordinator
}

// Evict drops coordinators that have not been handed out within the window
// and reports how many were removed. A worker that shows up again just gets a
// fresh coordinator at generation zero.
func (r *Registry) Evict(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.workers {
		if e.seen.Before(cutoff) {
			delete(r.workers, id)
			evicted++
		}
	}
	return evicted
}
