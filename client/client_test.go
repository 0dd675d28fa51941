package client_test

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/client"
	"github.com/momentics/hioload-wsbench/control"
	"github.com/momentics/hioload-wsbench/fake"
	"github.com/momentics/hioload-wsbench/server"
)

func startServer(t *testing.T) (*server.Server, *fake.Sink) {
	t.Helper()
	tc, err := fake.ServerTLSConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg := server.DefaultConfig()
	cfg.PlainPort, cfg.SecurePort = 0, 0
	sink := fake.NewSink()
	srv, err := server.New(context.Background(), cfg,
		server.WithTLSConfig(tc),
		server.WithFailureSink(sink),
		server.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv, sink
}

func portOf(a net.Addr) string {
	return strconv.Itoa(a.(*net.TCPAddr).Port)
}

func TestRunAllModes(t *testing.T) {
	srv, sink := startServer(t)

	for _, secure := range []bool{false, true} {
		for _, mode := range []client.ExecMode{client.ModeSync, client.ModeAsync} {
			addr := srv.PlainAddr()
			if secure {
				addr = srv.SecureAddr()
			}
			cfg := client.DefaultConfig()
			cfg.Port = portOf(addr)
			cfg.Secure = secure
			cfg.Mode = mode
			cfg.Duration = 200 * time.Millisecond
			cfg.MessageSize = 1024
			cfg.VerifyEcho = true
			cfg.Metrics = control.NewMetricsRegistry()

			c, err := client.New(context.Background(), cfg)
			if err != nil {
				t.Fatalf("secure=%v %s: New: %v", secure, mode, err)
			}
			wantMode := api.ModePlain
			if secure {
				wantMode = api.ModeSecured
			}
			if c.Mode() != wantMode {
				t.Fatalf("Mode = %v, want %v", c.Mode(), wantMode)
			}
			started := time.Now()
			trips, err := c.Run()
			if err != nil {
				t.Fatalf("secure=%v %s: Run: %v", secure, mode, err)
			}
			if trips < 1 {
				t.Fatalf("secure=%v %s: no round trips", secure, mode)
			}
			if el := time.Since(started); el < cfg.Duration {
				t.Fatalf("Run returned after %v, before the duration", el)
			}
			if got := cfg.Metrics.Get(control.RoundTrips); got != trips {
				t.Fatalf("round_trips = %d, want %d", got, trips)
			}
			if c.RoundTrips() != trips {
				t.Fatalf("RoundTrips = %d, want %d", c.RoundTrips(), trips)
			}
			if _, err := c.Run(); !errors.Is(err, api.ErrTransportClosed) {
				t.Fatalf("second Run = %v", err)
			}
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for srv.Metrics().Get(control.SessionsActive) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f := sink.Failures(); len(f) != 0 {
		t.Fatalf("client close must be clean for the server, got %v", f)
	}
}

func TestZeroSizeMessage(t *testing.T) {
	srv, _ := startServer(t)
	cfg := client.DefaultConfig()
	cfg.Port = portOf(srv.PlainAddr())
	cfg.MessageSize = 0
	cfg.Duration = 50 * time.Millisecond
	c, err := client.New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if trips, err := c.Run(); err != nil || trips < 1 {
		t.Fatalf("Run = %d, %v", trips, err)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := client.DefaultConfig()
	cfg.MessageSize = -1
	if _, err := client.New(context.Background(), cfg); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("negative size: %v", err)
	}
	cfg = client.DefaultConfig()
	cfg.Duration = 0
	if _, err := client.New(context.Background(), cfg); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("zero duration: %v", err)
	}
}

func TestConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := portOf(ln.Addr())
	ln.Close()

	cfg := client.DefaultConfig()
	cfg.Port = port
	if _, err := client.New(context.Background(), cfg); !errors.Is(err, api.ErrConnect) {
		t.Fatalf("err = %v, want connect error", err)
	}
}

func TestSecureClientOnPlainPort(t *testing.T) {
	srv, _ := startServer(t)
	cfg := client.DefaultConfig()
	cfg.Port = portOf(srv.PlainAddr())
	cfg.Secure = true
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.New(ctx, cfg); !errors.Is(err, api.ErrHandshake) {
		t.Fatalf("err = %v, want handshake error", err)
	}
}

func TestVerifyEchoDetectsMismatch(t *testing.T) {
	up := websocket.Upgrader{}
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			mt, p, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if len(p) > 0 {
				p[0] ^= 0xff
			}
			if err := ws.WriteMessage(mt, p); err != nil {
				return
			}
		}
	}))
	defer hs.Close()

	cfg := client.DefaultConfig()
	cfg.Port = portOf(hs.Listener.Addr())
	cfg.Duration = time.Second
	cfg.VerifyEcho = true
	for _, mode := range []client.ExecMode{client.ModeSync, client.ModeAsync} {
		cfg.Mode = mode
		c, err := client.New(context.Background(), cfg)
		if err != nil {
			t.Fatal(err)
		}
		trips, err := c.Run()
		if !errors.Is(err, client.ErrEchoMismatch) {
			t.Fatalf("%s: Run = %v, want echo mismatch", mode, err)
		}
		if trips != 0 {
			t.Fatalf("%s: trips = %d", mode, trips)
		}
	}
}

func TestThroughputAndReport(t *testing.T) {
	if got := client.Throughput(100, 10*time.Second); got != 10 {
		t.Errorf("Throughput(100, 10s) = %d", got)
	}
	if got := client.Throughput(99, 10*time.Second); got != 9 {
		t.Errorf("Throughput(99, 10s) = %d, want integer division", got)
	}
	if got := client.Throughput(50, 500*time.Millisecond); got != 100 {
		t.Errorf("Throughput(50, 500ms) = %d", got)
	}
	if got := client.Throughput(5, 0); got != 0 {
		t.Errorf("Throughput(5, 0) = %d", got)
	}
	if got := client.Report(api.ModePlain, 41250); got != "plain client:41250" {
		t.Errorf("Report = %q", got)
	}
	if got := client.Report(api.ModeSecured, 7); got != "ssl client:7" {
		t.Errorf("Report = %q", got)
	}
}

func TestSyncAndAsyncThroughputComparable(t *testing.T) {
	srv, _ := startServer(t)
	rps := map[client.ExecMode]int64{}
	for _, mode := range []client.ExecMode{client.ModeSync, client.ModeAsync} {
		cfg := client.DefaultConfig()
		cfg.Port = portOf(srv.PlainAddr())
		cfg.Mode = mode
		cfg.Duration = 500 * time.Millisecond
		c, err := client.New(context.Background(), cfg)
		if err != nil {
			t.Fatal(err)
		}
		trips, err := c.Run()
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		rps[mode] = client.Throughput(trips, cfg.Duration)
	}
	s, a := rps[client.ModeSync], rps[client.ModeAsync]
	if s < 1 || a < 1 {
		t.Fatalf("sync = %d, async = %d", s, a)
	}
	// both keep exactly one message in flight, so neither can be far ahead
	if s > 10*a || a > 10*s {
		t.Fatalf("sync = %d rps, async = %d rps, want the same order of magnitude", s, a)
	}
}

func TestSetupBoundedByHandshakeTimeout(t *testing.T) {
	// accepts at the kernel level but never answers
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	for _, secure := range []bool{false, true} {
		cfg := client.DefaultConfig()
		cfg.Port = portOf(ln.Addr())
		cfg.Secure = secure
		cfg.HandshakeTimeout = 200 * time.Millisecond

		started := time.Now()
		_, err := client.New(context.Background(), cfg)
		if !errors.Is(err, api.ErrHandshake) {
			t.Fatalf("secure=%v: err = %v, want handshake error", secure, err)
		}
		if d := time.Since(started); d > 3*time.Second {
			t.Fatalf("secure=%v: New took %v", secure, d)
		}
	}
}
