// File: reactor/loop.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Loop is a completion run-loop. Continuations are queued FIFO and executed
// sequentially by Run; Run returns when nothing is queued and no submitted
// operation is still outstanding.

package reactor

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

var (
	// ErrLoopRunning is returned by Run when the loop is already running.
	ErrLoopRunning = errors.New("reactor: loop already running")
	// ErrLoopStopped is returned by Run after Stop without an error.
	ErrLoopStopped = errors.New("reactor: loop stopped")
)

// Loop dispatches continuations on a single goroutine. Push, Submit and
// Stop are safe for concurrent use; Run must not be called concurrently.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	ready   *queue.Queue // of func()
	pending int          // submitted operations not yet completed
	err     error        // sticky once set by Stop

	running    atomic.Bool
	dispatched atomic.Int64
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	l := &Loop{ready: queue.New()}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Push queues fn for execution on the loop goroutine.
func (l *Loop) Push(fn func()) {
	l.mu.Lock()
	l.ready.Add(fn)
	l.mu.Unlock()
	l.cond.Signal()
}

// Submit runs op on a helper goroutine and queues done(err) once op
// returns. The loop counts op as outstanding work until then, so Run
// does not return while op is in flight.
func (l *Loop) Submit(op func() error, done func(error)) {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	go func() {
		err := op()
		l.mu.Lock()
		l.pending--
		l.ready.Add(func() { done(err) })
		l.mu.Unlock()
		l.cond.Signal()
	}()
}

// Stop aborts the loop. Run returns err (ErrLoopStopped if nil) after the
// continuation currently executing, and every later Run returns it too.
// Completions of operations still in flight are discarded.
func (l *Loop) Stop(err error) {
	if err == nil {
		err = ErrLoopStopped
	}
	l.mu.Lock()
	if l.err == nil {
		l.err = err
	}
	l.mu.Unlock()
	l.cond.Broadcast()
}

// Pending returns the number of queued continuations plus outstanding
// operations.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready.Length() + l.pending
}

// Dispatched returns how many continuations Run has executed.
func (l *Loop) Dispatched() int64 {
	return l.dispatched.Load()
}

// Run executes queued continuations until no work remains or the loop is
// stopped.
func (l *Loop) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	l.mu.Lock()
	for {
		for l.err == nil && l.ready.Length() == 0 && l.pending > 0 {
			l.cond.Wait()
		}
		if l.err != nil {
			err := l.err
			for l.ready.Length() > 0 {
				l.ready.Remove()
			}
			l.mu.Unlock()
			return err
		}
		if l.ready.Length() == 0 {
			l.mu.Unlock()
			return nil
		}
		fn := l.ready.Remove().(func())
		l.mu.Unlock()

		fn()
		l.dispatched.Add(1)

		l.mu.Lock()
	}
}
