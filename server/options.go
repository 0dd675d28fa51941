// File: server/options.go
// Package server defines functional options for the echo server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"crypto/tls"
	"log"

	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/control"
)

// Option customizes server and listener initialization.
type Option func(*options)

type options struct {
	sink    api.FailureSink
	metrics *control.MetricsRegistry
	logger  *log.Logger
	tlsConf *tls.Config
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, fn := range opts {
		fn(o)
	}
	if o.logger == nil {
		o.logger = DefaultLogger()
	}
	if o.sink == nil {
		o.sink = &LogSink{Logger: o.logger}
	}
	if o.metrics == nil {
		o.metrics = control.NewMetricsRegistry()
	}
	return o
}

// WithFailureSink routes per-session and listener failures to sink.
func WithFailureSink(sink api.FailureSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithMetrics shares a metrics registry with the caller.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger used for supervisor messages and the default
// failure sink.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTLSConfig supplies a ready security context instead of loading the
// configured certificate files.
func WithTLSConfig(c *tls.Config) Option {
	return func(o *options) {
		o.tlsConf = c
	}
}
