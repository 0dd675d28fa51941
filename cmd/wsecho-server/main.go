// File: cmd/wsecho-server/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Echo server for the benchmark: one plain and one TLS listener, each
// echoing every message back with the same framing. Runs until killed.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/momentics/hioload-wsbench/server"
)

const usage = `Usage: wsecho-server <address> <plain_port> <ssl_port>
Example:
    wsecho-server 127.0.0.1 9001 9002
`

func main() {
	if len(os.Args) != 4 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	logger := server.DefaultLogger()
	logger.SetPrefix("wsecho-server ")

	cfg := server.DefaultConfig()
	cfg.Address = os.Args[1]
	plain, err := strconv.Atoi(os.Args[2])
	if err != nil {
		logger.Fatalf("plain_port: %v", err)
	}
	secure, err := strconv.Atoi(os.Args[3])
	if err != nil {
		logger.Fatalf("ssl_port: %v", err)
	}
	cfg.PlainPort = plain
	cfg.SecurePort = secure
	if f := os.Getenv("WSECHO_CERT_FILE"); f != "" {
		cfg.CertFile = f
	}
	if f := os.Getenv("WSECHO_KEY_FILE"); f != "" {
		cfg.KeyFile = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, server.WithLogger(logger))
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if a := srv.PlainAddr(); a != nil {
		logger.Printf("plain listener on %s", a)
	}
	if a := srv.SecureAddr(); a != nil {
		logger.Printf("ssl listener on %s", a)
	}
	if err := srv.Run(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	logger.Printf("final state: %s", srv.Probes())
}
