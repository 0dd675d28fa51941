// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the core interfaces.

package fake

import (
	"context"
	"net"
	"sync"

	"github.com/momentics/hioload-wsbench/api"
)

// Transport is an in-memory api.Transport backed by one end of net.Pipe.
// It is always plain; SecureHandshake only records the call.
type Transport struct {
	conn net.Conn

	mu         sync.Mutex
	handshakes []api.Role
	closed     bool
	closeError error
}

var _ api.Transport = (*Transport)(nil)

// Pipe returns two connected transports.
func Pipe() (*Transport, *Transport) {
	a, b := net.Pipe()
	return &Transport{conn: a}, &Transport{conn: b}
}

// Conn implements api.Transport.
func (t *Transport) Conn() net.Conn { return t.conn }

// Mode implements api.Transport.
func (t *Transport) Mode() api.Mode { return api.ModePlain }

// RemoteAddr implements api.Transport.
func (t *Transport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

// SecureHandshake implements api.Transport.
func (t *Transport) SecureHandshake(_ context.Context, role api.Role) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return api.ErrTransportClosed
	}
	t.handshakes = append(t.handshakes, role)
	return nil
}

// Handshakes returns the roles SecureHandshake was called with.
func (t *Transport) Handshakes() []api.Role {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]api.Role(nil), t.handshakes...)
}

// SetCloseError makes Close return err.
func (t *Transport) SetCloseError(err error) {
	t.mu.Lock()
	t.closeError = err
	t.mu.Unlock()
}

// Close implements api.Transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		t.conn.Close()
	}
	return t.closeError
}

// IsClosed reports whether Close has been called.
func (t *Transport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
