// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package server

import (
	"errors"
	"log"
	"os"

	"github.com/momentics/hioload-wsbench/api"
)

// DefaultLogger writes to standard error.
func DefaultLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

// LogSink reports failures as "<op>: <error>" lines.
type LogSink struct {
	Logger *log.Logger
}

var _ api.FailureSink = (*LogSink)(nil)

// Fail implements api.FailureSink.
func (s *LogSink) Fail(op string, err error) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	var e *api.Error
	if errors.As(err, &e) && e.Op == op && e.Err != nil {
		err = e.Err
	}
	l.Printf("%s: %v", op, err)
}
