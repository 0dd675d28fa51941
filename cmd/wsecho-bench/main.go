// File: cmd/wsecho-bench/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Benchmark driver. Runs the echo client against the plain and the TLS
// port of one server in sync and async mode and prints requests per
// second per run, optionally saved as CSV.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/momentics/hioload-wsbench/client"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wsecho-bench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	bc := client.DefaultBenchConfig()

	host := fs.String("host", bc.Client.Host, "server host")
	fs.StringVar(&bc.PlainPort, "tcp-port", bc.PlainPort, "server port with plain websockets")
	fs.StringVar(&bc.SecurePort, "ssl-port", bc.SecurePort, "server port with ssl websockets")
	size := fs.Int("msg-size", bc.Client.MessageSize, "message size in bytes")
	secs := fs.Int("duration", int(bc.Client.Duration/time.Second), "duration of each run in seconds")
	modes := fs.String("modes", "sync,async", "comma separated list of client modes")
	fs.BoolVar(&bc.SkipPlain, "skip-tcp", false, "disable the plain websocket runs")
	fs.BoolVar(&bc.SkipSecure, "skip-ssl", false, "disable the ssl websocket runs")
	csvDir := fs.String("save", "", "directory to save benchmark-<msg_size>.csv into")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	bc.Client.Host = *host
	bc.Client.MessageSize = *size
	bc.Client.Duration = time.Duration(*secs) * time.Second
	var err error
	if bc.Modes, err = parseModes(*modes); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	bc.Progress = stdout

	results, err := client.Bench(context.Background(), bc)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := client.WriteTable(stdout, results); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *csvDir != "" {
		if err := saveCSV(*csvDir, *size, results); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func parseModes(s string) ([]client.ExecMode, error) {
	var out []client.ExecMode
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "sync":
			out = append(out, client.ModeSync)
		case "async":
			out = append(out, client.ModeAsync)
		default:
			return nil, fmt.Errorf("unknown mode %q", name)
		}
	}
	return out, nil
}

func saveCSV(dir string, size int, results []client.Result) error {
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("benchmark-%d.csv", size)))
	if err != nil {
		return err
	}
	if err := client.WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
