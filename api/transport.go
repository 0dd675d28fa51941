// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Transport endpoint abstraction shared by the echo server and client.
// The state machines are written once against Transport; plain and
// secured endpoints are selected at construction.

package api

import (
	"context"
	"net"
)

// Mode is the transport-security mode of an endpoint. Fixed at construction.
type Mode int

const (
	ModePlain Mode = iota
	ModeSecured
)

// String returns the short name used in reports ("plain" or "ssl").
func (m Mode) String() string {
	if m == ModeSecured {
		return "ssl"
	}
	return "plain"
}

// Role selects the side of a handshake.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// Transport is a byte-stream connection that is either plain or secured.
type Transport interface {
	// Conn returns the stream to use for I/O. For secured endpoints this
	// is the TLS layer once SecureHandshake has succeeded.
	Conn() net.Conn

	// Mode reports the transport-security mode.
	Mode() Mode

	// RemoteAddr returns the peer address.
	RemoteAddr() net.Addr

	// SecureHandshake runs the transport-security handshake for role.
	// No-op for plain endpoints.
	SecureHandshake(ctx context.Context, role Role) error

	// Close tears down the connection.
	Close() error
}

// FailureSink receives per-session failures tagged with the originating
// operation ("handshake", "read", "write", "accept", ...).
type FailureSink interface {
	Fail(op string, err error)
}

// FailureFunc adapts a function to FailureSink.
type FailureFunc func(op string, err error)

// Fail implements FailureSink.
func (f FailureFunc) Fail(op string, err error) { f(op, err) }
