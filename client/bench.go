// File: client/bench.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bench runs the echo client over every selected (target, mode) pair and
// collects round trips per second into one result row.

package client

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"
)

// Target names used as column prefixes.
const (
	TargetPlain  = "tcp"
	TargetSecure = "ssl"
)

// ClientName labels the result row.
const ClientName = "hioload-wsbench"

// BenchConfig selects the benchmark matrix. Client carries the settings
// shared by every run; its Port, Secure and Mode are set per run.
type BenchConfig struct {
	Client     Config
	PlainPort  string
	SecurePort string
	Modes      []ExecMode
	SkipPlain  bool
	SkipSecure bool

	// Progress, if set, receives one line before each run.
	Progress io.Writer
}

// DefaultBenchConfig returns the matrix {ssl, tcp} x {sync, async}
// against the default ports.
func DefaultBenchConfig() BenchConfig {
	c := DefaultConfig()
	c.Duration = 5 * time.Second
	return BenchConfig{
		Client:     c,
		PlainPort:  "9001",
		SecurePort: "9002",
		Modes:      []ExecMode{ModeSync, ModeAsync},
	}
}

// Result is the outcome of one run.
type Result struct {
	Target     string
	Mode       ExecMode
	RoundTrips int64
	PerSecond  int64
}

// Column returns the table column name, e.g. "ssl-async".
func (r Result) Column() string {
	return r.Target + "-" + r.Mode.String()
}

// Bench runs the secured target before the plain one, each in every mode,
// one run at a time. The first failing run ends the benchmark; the results
// gathered so far are returned with its error.
func Bench(ctx context.Context, bc BenchConfig) ([]Result, error) {
	type target struct {
		name   string
		port   string
		secure bool
	}
	var targets []target
	if !bc.SkipSecure {
		targets = append(targets, target{TargetSecure, bc.SecurePort, true})
	}
	if !bc.SkipPlain {
		targets = append(targets, target{TargetPlain, bc.PlainPort, false})
	}

	var results []Result
	for _, tg := range targets {
		for _, mode := range bc.Modes {
			cfg := bc.Client
			cfg.Port = tg.port
			cfg.Secure = tg.secure
			cfg.Mode = mode
			if bc.Progress != nil {
				fmt.Fprintf(bc.Progress, "Run %s %s %d bytes %s test\n", ClientName, tg.name, cfg.MessageSize, mode)
			}
			trips, err := runOnce(ctx, cfg)
			if err != nil {
				return results, fmt.Errorf("%s-%s: %w", tg.name, mode, err)
			}
			results = append(results, Result{
				Target:     tg.name,
				Mode:       mode,
				RoundTrips: trips,
				PerSecond:  Throughput(trips, cfg.Duration),
			})
		}
	}
	return results, nil
}

func runOnce(ctx context.Context, cfg Config) (int64, error) {
	c, err := New(ctx, cfg)
	if err != nil {
		return 0, err
	}
	return c.Run()
}

func tableRows(results []Result) [][]string {
	header := []string{"client"}
	row := []string{ClientName}
	for _, r := range results {
		header = append(header, r.Column())
		row = append(row, strconv.FormatInt(r.PerSecond, 10))
	}
	return [][]string{header, row}
}

// WriteTable prints requests per second as an aligned table.
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, row := range tableRows(results) {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprint(tw, "\n")
	}
	return tw.Flush()
}

// WriteCSV writes the same table as CSV.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(tableRows(results)); err != nil {
		return err
	}
	return cw.Error()
}
