// File: server/supervisor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Supervise keeps a serving function alive across panics.

package server

import (
	"context"
	"log"
	"runtime/debug"
	"time"
)

// Supervisor restarts a function that panics. There is no restart limit:
// a persistent fault restarts forever, throttled only by the backoff.
type Supervisor struct {
	Name       string
	Logger     *log.Logger
	MinBackoff time.Duration
	MaxBackoff time.Duration
	// OnRestart, if set, is called before each restart.
	OnRestart func(recovered any)
}

// Run calls fn until it returns normally or ctx is done. After a panic the
// fault is logged and fn is restarted after an exponential backoff, which
// resets once a run outlives MaxBackoff.
func (s *Supervisor) Run(ctx context.Context, fn func(context.Context) error) error {
	minB, maxB := s.MinBackoff, s.MaxBackoff
	if minB <= 0 {
		minB = time.Millisecond
	}
	if maxB < minB {
		maxB = minB
	}
	backoff := minB
	for {
		started := time.Now()
		recovered, stack, err := s.once(ctx, fn)
		if recovered == nil {
			return err
		}
		if s.Logger != nil {
			s.Logger.Printf("%s: run exception %v\n%s", s.Name, recovered, stack)
		}
		if s.OnRestart != nil {
			s.OnRestart(recovered)
		}

		if time.Since(started) > maxB {
			backoff = minB
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxB {
			backoff = maxB
		}
	}
}

func (s *Supervisor) once(ctx context.Context, fn func(context.Context) error) (recovered any, stack []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			recovered, stack = r, debug.Stack()
		}
	}()
	return nil, nil, fn(ctx)
}
