// File: cmd/wsecho-client/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Echo benchmark client. Keeps one message in flight against an echo
// server for the given duration and prints round trips per second.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/momentics/hioload-wsbench/client"
)

const usage = `Usage: wsecho-client <is_async{1|0}> <is_secure{1|0}> <host> <port> <msg_size> <duration_sec>
Example:
    wsecho-client 1 0 127.0.0.1 9001 256 10
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 6 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	cfg, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	c, err := client.New(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	trips, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(client.Report(c.Mode(), client.Throughput(trips, cfg.Duration)))
	return 0
}

func parseArgs(args []string) (client.Config, error) {
	cfg := client.DefaultConfig()

	async, err := strconv.Atoi(args[0])
	if err != nil {
		return cfg, fmt.Errorf("is_async: %w", err)
	}
	secure, err := strconv.Atoi(args[1])
	if err != nil {
		return cfg, fmt.Errorf("is_secure: %w", err)
	}
	size, err := strconv.Atoi(args[4])
	if err != nil {
		return cfg, fmt.Errorf("msg_size: %w", err)
	}
	secs, err := strconv.Atoi(args[5])
	if err != nil {
		return cfg, fmt.Errorf("duration_sec: %w", err)
	}

	cfg.Mode = client.ModeSync
	if async != 0 {
		cfg.Mode = client.ModeAsync
	}
	cfg.Secure = secure != 0
	cfg.Host = args[2]
	cfg.Port = args[3]
	cfg.MessageSize = size
	cfg.Duration = time.Duration(secs) * time.Second
	return cfg, nil
}
