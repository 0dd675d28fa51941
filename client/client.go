// File: client/client.go
// Package client provides the echo benchmark client.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EchoClient opens one session to an echo server and keeps exactly one
// fixed-size message in flight for a fixed wall-clock duration, counting
// completed round trips. Two interchangeable loops are provided:
// - sync: write, block for the echo, repeat
// - async: each echo completes on the reactor loop, whose continuation
//   issues the next write and read until the duration has elapsed

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/control"
	"github.com/momentics/hioload-wsbench/protocol"
	"github.com/momentics/hioload-wsbench/reactor"
	"github.com/momentics/hioload-wsbench/transport"
)

// ErrEchoMismatch is returned when VerifyEcho is set and the echoed
// message differs from the payload.
var ErrEchoMismatch = errors.New("echo does not match payload")

// ExecMode selects the round-trip loop.
type ExecMode int

const (
	ModeSync ExecMode = iota
	ModeAsync
)

func (m ExecMode) String() string {
	if m == ModeAsync {
		return "async"
	}
	return "sync"
}

// Config holds all configurable parameters for the echo client.
type Config struct {
	Host        string        // server host name or address
	Port        string        // server port or service name
	Secure      bool          // run over TLS
	MessageSize int           // payload size in bytes
	Duration    time.Duration // wall-clock run time
	Mode        ExecMode

	// InsecureSkipVerify accepts any server certificate. On by default.
	InsecureSkipVerify bool
	HandshakeTimeout   time.Duration
	Filler             byte // payload fill byte
	VerifyEcho         bool // compare every echo with the payload

	Metrics *control.MetricsRegistry // optional; receives round_trips
}

// DefaultConfig returns the defaults used by the benchmark driver.
func DefaultConfig() Config {
	return Config{
		Host:               "127.0.0.1",
		Port:               "9001",
		MessageSize:        256,
		Duration:           10 * time.Second,
		Mode:               ModeAsync,
		InsecureSkipVerify: true,
		HandshakeTimeout:   30 * time.Second,
		Filler:             'a',
	}
}

// EchoClient runs one benchmark over one session.
type EchoClient struct {
	cfg     Config
	ep      *transport.Endpoint
	sess    *protocol.Session
	payload []byte

	start  time.Time
	trips  int64
	loop   *reactor.Loop
	closed bool
}

// New connects, performs the secure handshake when configured and then
// the protocol handshake. The three steps together are bounded by
// HandshakeTimeout. Any failure is returned and nothing stays open.
func New(ctx context.Context, cfg Config) (*EchoClient, error) {
	if cfg.MessageSize < 0 {
		return nil, fmt.Errorf("message size %d: %w", cfg.MessageSize, api.ErrInvalidArgument)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration %v: %w", cfg.Duration, api.ErrInvalidArgument)
	}
	if cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.HandshakeTimeout)
		defer cancel()
	}

	mode := api.ModePlain
	var tlsConf *tls.Config
	if cfg.Secure {
		mode = api.ModeSecured
		tlsConf = transport.ClientTLSConfig(cfg.Host, cfg.InsecureSkipVerify)
	}

	ep, err := transport.Connect(ctx, cfg.Host, cfg.Port, mode, tlsConf)
	if err != nil {
		return nil, err
	}
	if err := ep.SecureHandshake(ctx, api.RoleClient); err != nil {
		ep.Close()
		return nil, err
	}
	sess, err := protocol.DialSession(ctx, ep, protocol.ClientOptions{
		Host:             cfg.Host,
		Port:             ep.RemotePort(),
		Path:             "/",
		UserAgent:        protocol.ClientIdentifier,
		MessageSize:      cfg.MessageSize,
		HandshakeTimeout: cfg.HandshakeTimeout,
	})
	if err != nil {
		ep.Close()
		return nil, err
	}

	return &EchoClient{
		cfg:     cfg,
		ep:      ep,
		sess:    sess,
		payload: bytes.Repeat([]byte{cfg.Filler}, cfg.MessageSize),
	}, nil
}

// Mode reports the transport mode of the session.
func (c *EchoClient) Mode() api.Mode { return c.ep.Mode() }

// RoundTrips returns the number of completed round trips.
func (c *EchoClient) RoundTrips() int64 { return c.trips }

// Run executes the configured loop, then closes the session with a
// normal-closure frame. Any handshake, read or write failure ends the run;
// there is no partial result on error.
func (c *EchoClient) Run() (int64, error) {
	if c.closed {
		return 0, api.ErrTransportClosed
	}
	c.start = time.Now()

	var err error
	if c.cfg.Mode == ModeAsync {
		err = c.asyncLoop()
	} else {
		err = c.syncLoop()
	}

	c.closed = true
	cerr := c.sess.Close()
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.Add(control.RoundTrips, c.trips)
	}
	if err != nil {
		return c.trips, err
	}
	return c.trips, cerr
}

// Close releases the session without running. Safe after Run.
func (c *EchoClient) Close() error {
	c.closed = true
	return c.sess.Close()
}

func (c *EchoClient) elapsed() bool {
	return time.Since(c.start) >= c.cfg.Duration
}

func (c *EchoClient) syncLoop() error {
	for !c.elapsed() {
		if err := c.sess.Write(c.payload); err != nil {
			return err
		}
		if _, err := c.sess.Read(); err != nil {
			return err
		}
		if err := c.verify(); err != nil {
			return err
		}
		c.sess.Reset()
		c.trips++
	}
	return nil
}

func (c *EchoClient) asyncLoop() error {
	c.loop = reactor.NewLoop()
	if err := c.sess.Write(c.payload); err != nil {
		return err
	}
	c.asyncRead()
	return c.loop.Run()
}

func (c *EchoClient) asyncRead() {
	c.loop.Submit(func() error {
		_, err := c.sess.Read()
		return err
	}, c.onRead)
}

// onRead runs on the loop goroutine. When the duration has elapsed it
// schedules nothing, and Run returns once the loop is empty.
func (c *EchoClient) onRead(err error) {
	if err == nil {
		err = c.verify()
	}
	if err != nil {
		c.loop.Stop(err)
		return
	}
	c.trips++
	c.sess.Reset()

	if c.elapsed() {
		return
	}
	if err := c.sess.Write(c.payload); err != nil {
		c.loop.Stop(err)
		return
	}
	c.asyncRead()
}

func (c *EchoClient) verify() error {
	if !c.cfg.VerifyEcho {
		return nil
	}
	if !bytes.Equal(c.sess.Bytes(), c.payload) || c.sess.GotText() {
		return api.NewError(api.ErrCodeRead, "read", ErrEchoMismatch)
	}
	return nil
}
