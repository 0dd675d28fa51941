// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters for the echo server and client.
// Counters are created on first use and updated lock-free afterwards.

package control

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter names used by the server and client.
const (
	SessionsAccepted   = "sessions_accepted"
	SessionsActive     = "sessions_active"
	SessionsFailed     = "sessions_failed"
	MessagesEchoed     = "messages_echoed"
	AcceptErrors       = "accept_errors"
	SupervisorRestarts = "supervisor_restarts"
	RoundTrips         = "round_trips"
)

// MetricsRegistry holds named counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
	updated  atomic.Int64 // unix nanos of the last update
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*atomic.Int64),
	}
}

// Counter returns the counter for key, creating it if needed. The pointer
// stays valid for the lifetime of the registry, so hot paths can keep it.
func (mr *MetricsRegistry) Counter(key string) *atomic.Int64 {
	mr.mu.RLock()
	c, ok := mr.counters[key]
	mr.mu.RUnlock()
	if ok {
		return c
	}
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if c, ok = mr.counters[key]; !ok {
		c = new(atomic.Int64)
		mr.counters[key] = c
	}
	return c
}

// Add adds delta to key.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.Counter(key).Add(delta)
	mr.updated.Store(time.Now().UnixNano())
}

// Set sets key to value.
func (mr *MetricsRegistry) Set(key string, value int64) {
	mr.Counter(key).Store(value)
	mr.updated.Store(time.Now().UnixNano())
}

// Get returns the value of key, 0 if it was never touched.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	if c, ok := mr.counters[key]; ok {
		return c.Load()
	}
	return 0
}

// Updated returns the time of the last Add or Set.
func (mr *MetricsRegistry) Updated() time.Time {
	ns := mr.updated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// GetSnapshot returns the current value of every counter.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, c := range mr.counters {
		out[k] = c.Load()
	}
	return out
}
