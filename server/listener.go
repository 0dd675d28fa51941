// File: server/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Listener owns one accepting socket for one transport mode and spawns a
// session per accepted connection.

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/control"
	"github.com/momentics/hioload-wsbench/transport"
)

// ErrListenerClosed is returned by Serve once Close has been called.
var ErrListenerClosed = errors.New("listener closed")

// Listener accepts connections for one (address, port, mode) triple.
type Listener struct {
	address string
	mode    api.Mode
	ln      net.Listener
	tlsConf *tls.Config

	sessCfg  *sessionConfig
	sink     api.FailureSink
	accepted *atomic.Int64
	active   *atomic.Int64
	acceptEr *atomic.Int64

	closed atomic.Bool
	mu     sync.Mutex
	nextID uint64
	live   map[uint64]*session
	wg     sync.WaitGroup
}

// Bind opens the listening socket. tlsConf is required for api.ModeSecured.
// Failures are bind errors tagged with the failing step.
func Bind(ctx context.Context, address string, port int, mode api.Mode, cfg *Config, opts ...Option) (*Listener, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	o := buildOptions(opts)
	if mode == api.ModeSecured && o.tlsConf == nil {
		return nil, api.NewError(api.ErrCodeBind, "open", errors.New("secured listener without security context"))
	}
	ln, err := transport.Listen(ctx, address, port)
	if err != nil {
		return nil, err
	}
	return &Listener{
		address:  address,
		mode:     mode,
		ln:       ln,
		tlsConf:  o.tlsConf,
		sessCfg:  newSessionConfig(cfg, mode, o.sink, o.metrics),
		sink:     o.sink,
		accepted: o.metrics.Counter(control.SessionsAccepted),
		active:   o.metrics.Counter(control.SessionsActive),
		acceptEr: o.metrics.Counter(control.AcceptErrors),
		live:     make(map[uint64]*session),
	}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Mode returns the transport mode served by this listener.
func (l *Listener) Mode() api.Mode { return l.mode }

// Serve accepts connections until Close. A failed accept is reported and
// the next accept is issued right away.
func (l *Listener) Serve() error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if l.closed.Load() || errors.Is(err, net.ErrClosed) {
				return ErrListenerClosed
			}
			l.acceptEr.Add(1)
			l.sink.Fail("accept", err)
			continue
		}
		l.spawn(conn)
	}
}

func (l *Listener) spawn(conn net.Conn) {
	if err := transport.TuneServerConn(conn); err != nil {
		l.sink.Fail("set_option", err)
	}
	ep := transport.NewEndpoint(conn, l.mode, l.tlsConf)

	l.mu.Lock()
	if l.closed.Load() {
		l.mu.Unlock()
		ep.Close()
		return
	}
	l.nextID++
	s := newSession(l.nextID, ep, l.sessCfg)
	l.live[s.id] = s
	l.wg.Add(1)
	l.mu.Unlock()

	l.accepted.Add(1)
	l.active.Add(1)
	go func() {
		defer func() {
			l.active.Add(-1)
			l.mu.Lock()
			delete(l.live, s.id)
			l.mu.Unlock()
			l.wg.Done()
		}()
		s.run()
	}()
}

// Live returns the number of sessions currently running.
func (l *Listener) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// Close stops accepting, aborts live sessions and waits for them to end.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.ln.Close()

	l.mu.Lock()
	for _, s := range l.live {
		s.abort()
	}
	l.mu.Unlock()

	l.wg.Wait()
	return err
}
