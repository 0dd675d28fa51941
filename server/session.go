// File: server/session.go
// Package server implements the echo server: per-connection session state
// machines, listeners and the supervisor that keeps them serving.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/control"
	"github.com/momentics/hioload-wsbench/protocol"
)

// sessionConfig is shared read-only by all sessions of one listener.
type sessionConfig struct {
	secureTimeout time.Duration
	protocol      protocol.ServerOptions
	sink          api.FailureSink

	failed *atomic.Int64
	echoed *atomic.Int64
}

func newSessionConfig(cfg *Config, mode api.Mode, sink api.FailureSink, m *control.MetricsRegistry) *sessionConfig {
	popts := cfg.Protocol
	if mode == api.ModeSecured && popts.ServerName != "" {
		popts.ServerName += "-ssl"
	}
	return &sessionConfig{
		secureTimeout: cfg.SecureHandshakeTimeout,
		protocol:      popts,
		sink:          sink,
		failed:        m.Counter(control.SessionsFailed),
		echoed:        m.Counter(control.MessagesEchoed),
	}
}

// session owns one accepted endpoint from accept to close. It is driven by
// a single goroutine, so reads and writes never overlap.
type session struct {
	id    uint64
	ep    api.Transport
	cfg   *sessionConfig
	ws    *protocol.Session
	state atomic.Int32

	aborted atomic.Bool
}

func newSession(id uint64, ep api.Transport, cfg *sessionConfig) *session {
	return &session{id: id, ep: ep, cfg: cfg}
}

// State returns the current state.
func (s *session) State() State { return State(s.state.Load()) }

// run drives the state machine until StateClosed.
func (s *session) run() {
	defer s.release()
	defer func() {
		if r := recover(); r != nil {
			s.fail("session", fmt.Errorf("panic: %v", r))
		}
	}()

	st := StateAccepted
	for st != StateClosed {
		s.state.Store(int32(st))
		st = s.step(st)
	}
}

func (s *session) step(st State) State {
	switch st {
	case StateAccepted:
		if s.ep.Mode() == api.ModeSecured {
			return StateAwaitingSecureHandshake
		}
		return StateAwaitingProtocolHandshake

	case StateAwaitingSecureHandshake:
		return s.secureHandshake()

	case StateAwaitingProtocolHandshake:
		ws, err := protocol.AcceptSession(s.ep, s.cfg.protocol)
		if err != nil {
			return s.fail("handshake", err)
		}
		s.ws = ws
		return StateReading

	case StateReading:
		if _, err := s.ws.Read(); err != nil {
			if protocol.IsClosed(err) {
				return StateClosed
			}
			return s.fail("read", err)
		}
		return StateWriting

	case StateWriting:
		if err := s.ws.Echo(); err != nil {
			return s.fail("write", err)
		}
		s.cfg.echoed.Add(1)
		return StateReading
	}
	return StateClosed
}

// secureHandshake runs the TLS handshake under a bounded deadline, then
// clears the deadline so only the protocol layer's timeouts apply.
func (s *session) secureHandshake() State {
	timeout := s.cfg.secureTimeout
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		_ = s.ep.Conn().SetDeadline(time.Now().Add(timeout))
	}
	if err := s.ep.SecureHandshake(ctx, api.RoleServer); err != nil {
		return s.fail("handshake", err)
	}
	if err := s.ep.Conn().SetDeadline(time.Time{}); err != nil {
		return s.fail("handshake", err)
	}
	return StateAwaitingProtocolHandshake
}

func (s *session) fail(op string, err error) State {
	if s.aborted.Load() {
		return StateClosed
	}
	s.cfg.failed.Add(1)
	s.cfg.sink.Fail(op, err)
	return StateClosed
}

func (s *session) release() {
	s.state.Store(int32(StateClosed))
	if s.ws != nil {
		_ = s.ws.Close()
		return
	}
	_ = s.ep.Close()
}

// abort closes the endpoint underneath a running session, unblocking any
// pending read. The resulting error is not reported.
func (s *session) abort() {
	s.aborted.Store(true)
	_ = s.ep.Close()
}
