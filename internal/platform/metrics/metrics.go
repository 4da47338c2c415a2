package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts requests and estimation outcomes in-process. Snapshot is
// served from the /metrics endpoint.
type Collector struct {
	totalRequests      uint64
	errorRequests      uint64
	rateLimited        uint64
	totalDurationMs    uint64
	estimationCalls    uint64
	estimationFailures uint64
	staleEstimates     uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordEstimation(failed bool) {
	atomic.AddUint64(&c.estimationCalls, 1)
	if failed {
		atomic.AddUint64(&c.estimationFailures, 1)
	}
}

func (c *Collector) RecordStaleEstimate() {
	atomic.AddUint64(&c.staleEstimates, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":           total,
		"errorsTotal":             atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":        atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":           avg,
		"estimationCallsTotal":    atomic.LoadUint64(&c.estimationCalls),
		"estimationFailuresTotal": atomic.LoadUint64(&c.estimationFailures),
		"staleEstimatesTotal":     atomic.LoadUint64(&c.staleEstimates),
	}
}
