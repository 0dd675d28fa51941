package main

import (
	"testing"
	"time"

	"github.com/momentics/hioload-wsbench/client"
)

func TestParseArgs(t *testing.T) {
	cfg, err := parseArgs([]string{"0", "1", "localhost", "9002", "512", "3"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.Mode != client.ModeSync || !cfg.Secure {
		t.Fatalf("mode = %v secure = %v", cfg.Mode, cfg.Secure)
	}
	if cfg.Host != "localhost" || cfg.Port != "9002" {
		t.Fatalf("endpoint = %s:%s", cfg.Host, cfg.Port)
	}
	if cfg.MessageSize != 512 || cfg.Duration != 3*time.Second {
		t.Fatalf("size = %d duration = %v", cfg.MessageSize, cfg.Duration)
	}

	cfg, err = parseArgs([]string{"1", "0", "127.0.0.1", "9001", "256", "10"})
	if err != nil || cfg.Mode != client.ModeAsync || cfg.Secure {
		t.Fatalf("async plain: %+v, %v", cfg, err)
	}
}

func TestParseArgsRejectsNonNumeric(t *testing.T) {
	bad := [][]string{
		{"x", "0", "h", "1", "1", "1"},
		{"1", "x", "h", "1", "1", "1"},
		{"1", "0", "h", "1", "big", "1"},
		{"1", "0", "h", "1", "1", "soon"},
	}
	for _, args := range bad {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%v) succeeded", args)
		}
	}
}

func TestRunUsage(t *testing.T) {
	if code := run([]string{"1", "0"}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
