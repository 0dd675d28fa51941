// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// WriteBufferPool shares frame write buffers between sessions. A session
// borrows a buffer only while it writes a message.
type WriteBufferPool struct {
	p      sync.Pool
	gets   atomic.Int64
	misses atomic.Int64
	puts   atomic.Int64
}

var _ websocket.BufferPool = (*WriteBufferPool)(nil)

// NewWriteBufferPool creates an empty pool.
func NewWriteBufferPool() *WriteBufferPool {
	return &WriteBufferPool{}
}

// Get returns a pooled buffer, or nil when the pool is empty and the
// caller must allocate.
func (wp *WriteBufferPool) Get() any {
	wp.gets.Add(1)
	v := wp.p.Get()
	if v == nil {
		wp.misses.Add(1)
	}
	return v
}

// Put returns a buffer to the pool.
func (wp *WriteBufferPool) Put(v any) {
	wp.puts.Add(1)
	wp.p.Put(v)
}

// Stats is a point-in-time view of pool usage.
type Stats struct {
	Gets   int64
	Misses int64
	Puts   int64
}

// Stats returns the current counters.
func (wp *WriteBufferPool) Stats() Stats {
	return Stats{
		Gets:   wp.gets.Load(),
		Misses: wp.misses.Load(),
		Puts:   wp.puts.Load(),
	}
}
