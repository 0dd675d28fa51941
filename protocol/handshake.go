// File: protocol/handshake.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Client and server sides of the HTTP upgrade handshake. Each session
// performs at most one handshake, before any message is exchanged.

package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/momentics/hioload-wsbench/api"
)

// Identifiers advertised during the upgrade handshake.
const (
	ClientIdentifier = "hioload-wsbench websocket-client"
	ServerIdentifier = "hioload-wsbench websocket-server-async"
)

const (
	// MaxHandshakeHeadersSize caps the combined length of upgrade request headers.
	MaxHandshakeHeadersSize = 8192

	// SuggestedServerHandshakeTimeout and SuggestedServerIdleTimeout are
	// the protocol layer's timeouts for a server role. Server sessions ping
	// the peer every half idle period.
	SuggestedServerHandshakeTimeout = 30 * time.Second
	SuggestedServerIdleTimeout      = 300 * time.Second

	// ServerWriteBufferSize is the write buffer of server sessions.
	ServerWriteBufferSize = 128 * 1024

	minClientWriteBuffer = 4096
)

// ErrHeadersTooLarge is returned when the upgrade request headers exceed
// MaxHandshakeHeadersSize.
var ErrHeadersTooLarge = errors.New("handshake headers too large")

// ClientOptions configures the client side of the handshake.
type ClientOptions struct {
	Host             string // host as given by the user, without port
	Port             int    // resolved peer port, always sent in Host
	Path             string
	UserAgent        string
	MessageSize      int // largest message the client will send
	HandshakeTimeout time.Duration
}

// ClientWriteBufferSize returns a write buffer large enough that a message
// of size bytes always leaves in a single frame.
func ClientWriteBufferSize(size int) int {
	if size < minClientWriteBuffer {
		return minClientWriteBuffer
	}
	return size
}

// DialSession performs the client upgrade handshake over ep, which must
// already be connected and, when secured, past its TLS handshake.
// After the handshake framing is binary and compression is off.
func DialSession(ctx context.Context, ep api.Transport, opts ClientOptions) (*Session, error) {
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = ClientIdentifier
	}
	conn := ep.Conn()
	d := websocket.Dialer{
		NetDialContext: func(context.Context, string, string) (net.Conn, error) {
			return conn, nil
		},
		HandshakeTimeout:  opts.HandshakeTimeout,
		ReadBufferSize:    ClientWriteBufferSize(opts.MessageSize),
		WriteBufferSize:   ClientWriteBufferSize(opts.MessageSize),
		EnableCompression: false,
	}
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Path:   opts.Path,
	}
	hdr := http.Header{"User-Agent": []string{opts.UserAgent}}

	ws, resp, err := d.DialContext(ctx, u.String(), hdr)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %s)", err, resp.Status)
		}
		return nil, api.NewError(api.ErrCodeHandshake, "handshake", err)
	}
	s := newSession(ws, ep, api.RoleClient, 0)
	s.SetBinary(true)
	return s, nil
}

// ServerOptions configures the server side of the handshake.
type ServerOptions struct {
	ServerName       string
	HandshakeTimeout time.Duration
	IdleTimeout      time.Duration
	WriteBufferSize  int

	// WriteBufferPool, if set, lends write buffers to sessions while they
	// write instead of each session owning one.
	WriteBufferPool websocket.BufferPool
}

// DefaultServerOptions returns the suggested server settings.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		ServerName:       ServerIdentifier,
		HandshakeTimeout: SuggestedServerHandshakeTimeout,
		IdleTimeout:      SuggestedServerIdleTimeout,
		WriteBufferSize:  ServerWriteBufferSize,
	}
}

// AcceptSession reads the upgrade request from ep and answers it.
// On failure an HTTP error response is written when possible and the
// returned error is a handshake error; the caller owns closing ep.
func AcceptSession(ep api.Transport, opts ServerOptions) (*Session, error) {
	conn := ep.Conn()
	if opts.HandshakeTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(opts.HandshakeTimeout)); err != nil {
			return nil, api.NewError(api.ErrCodeHandshake, "handshake", err)
		}
	}

	br := bufio.NewReaderSize(conn, 4096)
	req, err := http.ReadRequest(br)
	if err != nil {
		return nil, api.NewError(api.ErrCodeHandshake, "handshake", fmt.Errorf("read request: %w", err))
	}
	rw := newResponder(conn, br)
	if headersSize(req.Header) > MaxHandshakeHeadersSize {
		http.Error(rw, http.StatusText(http.StatusRequestHeaderFieldsTooLarge), http.StatusRequestHeaderFieldsTooLarge)
		return nil, api.NewError(api.ErrCodeHandshake, "handshake", ErrHeadersTooLarge)
	}

	up := websocket.Upgrader{
		HandshakeTimeout:  opts.HandshakeTimeout,
		ReadBufferSize:    4096,
		WriteBufferSize:   opts.WriteBufferSize,
		WriteBufferPool:   opts.WriteBufferPool,
		EnableCompression: false,
		CheckOrigin:       func(*http.Request) bool { return true },
	}
	respHdr := http.Header{}
	if opts.ServerName != "" {
		respHdr.Set("Server", opts.ServerName)
	}
	ws, err := up.Upgrade(rw, req, respHdr)
	if err != nil {
		return nil, api.NewError(api.ErrCodeHandshake, "handshake", err)
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		ws.Close()
		return nil, api.NewError(api.ErrCodeHandshake, "handshake", err)
	}
	sess := newSession(ws, ep, api.RoleServer, opts.IdleTimeout)
	sess.keepAlive()
	return sess, nil
}

func headersSize(h http.Header) int {
	total := 0
	for k, vs := range h {
		total += len(k)
		for _, v := range vs {
			total += len(v)
		}
	}
	return total
}
