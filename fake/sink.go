// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-wsbench/api"
)

// Failure is one recorded FailureSink call.
type Failure struct {
	Op  string
	Err error
}

// Sink records failures for inspection in tests.
type Sink struct {
	mu       sync.Mutex
	failures []Failure
	notify   chan struct{}
}

var _ api.FailureSink = (*Sink)(nil)

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{notify: make(chan struct{}, 1)}
}

// Fail implements api.FailureSink.
func (s *Sink) Fail(op string, err error) {
	s.mu.Lock()
	s.failures = append(s.failures, Failure{Op: op, Err: err})
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Failures returns a copy of everything recorded so far.
func (s *Sink) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Failure(nil), s.failures...)
}

// Notify is signalled after each recorded failure.
func (s *Sink) Notify() <-chan struct{} { return s.notify }
