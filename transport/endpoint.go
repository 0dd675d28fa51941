// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/momentics/hioload-wsbench/api"
)

// Endpoint is a plain or TLS-secured byte stream. The mode never changes
// after construction.
type Endpoint struct {
	raw     net.Conn
	mode    api.Mode
	tlsConf *tls.Config

	mu      sync.Mutex
	secured *tls.Conn
	closed  bool
}

var _ api.Transport = (*Endpoint)(nil)

// NewEndpoint wraps conn. tlsConf is required for api.ModeSecured and
// ignored otherwise.
func NewEndpoint(conn net.Conn, mode api.Mode, tlsConf *tls.Config) *Endpoint {
	return &Endpoint{raw: conn, mode: mode, tlsConf: tlsConf}
}

// Conn returns the TLS layer once the secure handshake has completed,
// the raw connection otherwise.
func (e *Endpoint) Conn() net.Conn {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.secured != nil {
		return e.secured
	}
	return e.raw
}

// Mode reports the transport-security mode.
func (e *Endpoint) Mode() api.Mode { return e.mode }

// RemoteAddr returns the peer address.
func (e *Endpoint) RemoteAddr() net.Addr { return e.raw.RemoteAddr() }

// LocalAddr returns the local address.
func (e *Endpoint) LocalAddr() net.Addr { return e.raw.LocalAddr() }

// RemotePort returns the peer port, or 0 when the peer is not a TCP address.
func (e *Endpoint) RemotePort() int {
	if a, ok := e.raw.RemoteAddr().(*net.TCPAddr); ok {
		return a.Port
	}
	return 0
}

// SecureHandshake performs the TLS handshake for role. Plain endpoints
// return immediately. A second call on a secured endpoint fails.
func (e *Endpoint) SecureHandshake(ctx context.Context, role api.Role) error {
	if e.mode == api.ModePlain {
		return nil
	}
	e.mu.Lock()
	if e.secured != nil {
		e.mu.Unlock()
		return api.NewError(api.ErrCodeHandshake, "handshake", api.ErrAlreadyHandshaked)
	}
	if e.tlsConf == nil {
		e.mu.Unlock()
		return api.NewError(api.ErrCodeHandshake, "handshake",
			fmt.Errorf("secured endpoint without security context: %w", api.ErrInvalidArgument))
	}
	var tc *tls.Conn
	if role == api.RoleServer {
		tc = tls.Server(e.raw, e.tlsConf)
	} else {
		tc = tls.Client(e.raw, e.tlsConf)
	}
	e.mu.Unlock()

	if err := tc.HandshakeContext(ctx); err != nil {
		return api.NewError(api.ErrCodeHandshake, "handshake", fmt.Errorf("tls %s handshake: %w", role, err))
	}

	e.mu.Lock()
	e.secured = tc
	e.mu.Unlock()
	return nil
}

// Close closes the connection. Safe to call more than once.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	secured := e.secured
	e.mu.Unlock()
	if secured != nil {
		return secured.Close()
	}
	return e.raw.Close()
}
