// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server runs the plain and the TLS listener side by side. Both share one
// read-only security context and one metrics registry, and own disjoint
// accepting sockets.

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net"
	"sync"

	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/control"
	"github.com/momentics/hioload-wsbench/pool"
	"github.com/momentics/hioload-wsbench/transport"
)

// ErrAlreadyRunning is returned by Run when called twice.
var ErrAlreadyRunning = errors.New("server already running")

// Server is the dual-listener echo server.
type Server struct {
	cfg     *Config
	tlsConf *tls.Config
	logger  *log.Logger
	sink    api.FailureSink
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes

	plain  *Listener
	secure *Listener

	mu      sync.Mutex
	running bool
	closed  bool
}

// New loads the security context and binds both listeners.
//
// A certificate that cannot be loaded is fatal and returned as a
// certificate-load error. A listener that cannot be bound is reported to the
// failure sink and stays inert; the other listener is unaffected.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	o := buildOptions(opts)

	var wp *pool.WriteBufferPool
	if cfg.Protocol.WriteBufferPool == nil {
		c := *cfg
		wp = pool.NewWriteBufferPool()
		c.Protocol.WriteBufferPool = wp
		cfg = &c
	}

	s := &Server{
		cfg:     cfg,
		logger:  o.logger,
		sink:    o.sink,
		metrics: o.metrics,
		probes:  control.NewDebugProbes(),
	}
	s.probes.RegisterMetrics("metrics", s.metrics)
	if wp != nil {
		s.probes.RegisterProbe("write_buffers", func() any { return wp.Stats() })
	}

	if cfg.SecurePort >= 0 {
		s.tlsConf = o.tlsConf
		if s.tlsConf == nil {
			tc, err := transport.LoadServerTLSConfig(cfg.CertFile, cfg.KeyFile)
			if err != nil {
				return nil, err
			}
			s.tlsConf = tc
		}
	}

	shared := []Option{
		WithFailureSink(s.sink),
		WithMetrics(s.metrics),
		WithLogger(s.logger),
		WithTLSConfig(s.tlsConf),
	}
	if cfg.PlainPort >= 0 {
		ln, err := Bind(ctx, cfg.Address, cfg.PlainPort, api.ModePlain, cfg, shared...)
		if err != nil {
			s.sink.Fail(api.OpOf(err), err)
		}
		s.plain = ln
	}
	if cfg.SecurePort >= 0 {
		ln, err := Bind(ctx, cfg.Address, cfg.SecurePort, api.ModeSecured, cfg, shared...)
		if err != nil {
			s.sink.Fail(api.OpOf(err), err)
		}
		s.secure = ln
	}
	for _, ln := range []*Listener{s.plain, s.secure} {
		if ln != nil {
			s.probes.RegisterProbe(ln.Mode().String()+".live", func() any { return ln.Live() })
		}
	}
	return s, nil
}

// PlainAddr returns the plain listener address, nil if it is inert.
func (s *Server) PlainAddr() net.Addr {
	if s.plain == nil {
		return nil
	}
	return s.plain.Addr()
}

// SecureAddr returns the TLS listener address, nil if it is inert.
func (s *Server) SecureAddr() net.Addr {
	if s.secure == nil {
		return nil
	}
	return s.secure.Addr()
}

// Metrics exposes the server counters.
func (s *Server) Metrics() *control.MetricsRegistry { return s.metrics }

// Probes exposes live listener state and the counters.
func (s *Server) Probes() *control.DebugProbes { return s.probes }

// Run serves both listeners, each under its own supervisor, and blocks
// until ctx is done. The listeners are closed before Run returns.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, ln := range []*Listener{s.plain, s.secure} {
		if ln == nil {
			continue
		}
		sup := &Supervisor{
			Name:       ln.Mode().String() + " listener",
			Logger:     s.logger,
			MinBackoff: s.cfg.RestartMinBackoff,
			MaxBackoff: s.cfg.RestartMaxBackoff,
			OnRestart: func(any) {
				s.metrics.Add(control.SupervisorRestarts, 1)
			},
		}
		wg.Add(1)
		go func(ln *Listener) {
			defer wg.Done()
			_ = sup.Run(ctx, func(context.Context) error {
				return ln.Serve()
			})
		}(ln)
	}

	<-ctx.Done()
	err := s.Close()
	wg.Wait()
	return err
}

// Close shuts both listeners down and waits for their sessions.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for _, ln := range []*Listener{s.plain, s.secure} {
		if ln != nil {
			if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
