package application

import (
	"sync"
	"time"
)

// reportCache keeps the last reconciliation report until it expires or a
// booking invalidates it.
type reportCache struct {
	mu        sync.RWMutex
	now       func() time.Time
	ttl       time.Duration
	report    *ReconciliationReport
	expiresAt time.Time
}

func newReportCache(ttl time.Duration, now func() time.Time) *reportCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &reportCache{now: now, ttl: ttl}
}

func (c *reportCache) Get() (ReconciliationReport, bool) {
	if c == nil {
		return ReconciliationReport{}, false
	}
	c.mu.RLock()
	report, expiresAt := c.report, c.expiresAt
	c.mu.RUnlock()

	if report == nil {
		return ReconciliationReport{}, false
	}
	if c.now().After(expiresAt) {
		c.Invalidate()
		return ReconciliationReport{}, false
	}
	return report.clone(), true
}

func (c *reportCache) Store(report ReconciliationReport) {
	if c == nil {
		return
	}
	cloned := report.clone()
	c.mu.Lock()
	c.report = &cloned
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
}

func (c *reportCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.report = nil
	c.mu.Unlock()
}
