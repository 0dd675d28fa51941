package client_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/client"
)

func benchConfig(t *testing.T) client.BenchConfig {
	t.Helper()
	srv, _ := startServer(t)
	bc := client.DefaultBenchConfig()
	bc.Client.Duration = 100 * time.Millisecond
	bc.PlainPort = portOf(srv.PlainAddr())
	bc.SecurePort = portOf(srv.SecureAddr())
	return bc
}

func TestBenchFullMatrix(t *testing.T) {
	bc := benchConfig(t)
	var progress bytes.Buffer
	bc.Progress = &progress

	results, err := client.Bench(context.Background(), bc)
	if err != nil {
		t.Fatalf("Bench: %v", err)
	}
	want := []string{"ssl-sync", "ssl-async", "tcp-sync", "tcp-async"}
	if len(results) != len(want) {
		t.Fatalf("results = %+v", results)
	}
	for i, r := range results {
		if r.Column() != want[i] {
			t.Errorf("column %d = %s, want %s", i, r.Column(), want[i])
		}
		if r.RoundTrips < 1 || r.PerSecond < 1 {
			t.Errorf("%s: trips = %d rps = %d", r.Column(), r.RoundTrips, r.PerSecond)
		}
	}
	if got := strings.Count(progress.String(), "\n"); got != 4 {
		t.Errorf("progress lines = %d, want 4:\n%s", got, progress.String())
	}
	if !strings.HasPrefix(progress.String(), "Run hioload-wsbench ssl 256 bytes sync test\n") {
		t.Errorf("progress = %q", progress.String())
	}

	var table bytes.Buffer
	if err := client.WriteTable(&table, results); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "client") || !strings.Contains(lines[0], "tcp-async") {
		t.Fatalf("table = %q", table.String())
	}

	var out bytes.Buffer
	if err := client.WriteCSV(&out, results); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "client" || rows[1][0] != client.ClientName || len(rows[1]) != 5 {
		t.Fatalf("csv rows = %v", rows)
	}
}

func TestBenchSkipTargets(t *testing.T) {
	bc := benchConfig(t)
	bc.SkipSecure = true
	results, err := client.Bench(context.Background(), bc)
	if err != nil {
		t.Fatalf("Bench: %v", err)
	}
	if len(results) != 2 || results[0].Target != client.TargetPlain || results[1].Target != client.TargetPlain {
		t.Fatalf("skip ssl: %+v", results)
	}

	bc.SkipSecure, bc.SkipPlain = false, true
	bc.Modes = []client.ExecMode{client.ModeAsync}
	results, err = client.Bench(context.Background(), bc)
	if err != nil {
		t.Fatalf("Bench: %v", err)
	}
	if len(results) != 1 || results[0].Column() != "ssl-async" {
		t.Fatalf("skip tcp: %+v", results)
	}
}

func TestBenchStopsOnFailure(t *testing.T) {
	bc := benchConfig(t)
	bc.Modes = []client.ExecMode{client.ModeSync}
	bc.PlainPort = bc.SecurePort // tcp run against the TLS port
	results, err := client.Bench(context.Background(), bc)
	if err == nil {
		t.Fatal("plain run against the TLS port must fail")
	}
	if !strings.HasPrefix(err.Error(), "tcp-sync: ") || !errors.Is(err, api.ErrHandshake) {
		t.Fatalf("err = %v", err)
	}
	if len(results) != 1 || results[0].Column() != "ssl-sync" {
		t.Fatalf("partial results = %+v", results)
	}
}
