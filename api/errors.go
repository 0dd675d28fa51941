// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-wsbench.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrTransportClosed   = errors.New("transport is closed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrOperationInFlight = errors.New("operation already in flight")
	ErrAlreadyHandshaked = errors.New("handshake already performed")
	ErrNotHandshaked     = errors.New("handshake not performed")
)

// ErrorCode classifies failures of the benchmark harness.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeResolve
	ErrCodeConnect
	ErrCodeBind
	ErrCodeHandshake
	ErrCodeRead
	ErrCodeWrite
	ErrCodeCertificateLoad
)

// Sentinels matched by errors.Is against any *Error of the same code.
var (
	ErrResolve         = &Error{Code: ErrCodeResolve}
	ErrConnect         = &Error{Code: ErrCodeConnect}
	ErrBind            = &Error{Code: ErrCodeBind}
	ErrHandshake       = &Error{Code: ErrCodeHandshake}
	ErrRead            = &Error{Code: ErrCodeRead}
	ErrWrite           = &Error{Code: ErrCodeWrite}
	ErrCertificateLoad = &Error{Code: ErrCodeCertificateLoad}
)

var codeNames = map[ErrorCode]string{
	ErrCodeOK:              "ok",
	ErrCodeResolve:         "resolve",
	ErrCodeConnect:         "connect",
	ErrCodeBind:            "bind",
	ErrCodeHandshake:       "handshake",
	ErrCodeRead:            "read",
	ErrCodeWrite:           "write",
	ErrCodeCertificateLoad: "certificate load",
}

// String returns the lowercase name of the code.
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a classified failure tagged with the operation that produced it.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Err == nil && e.Op == "":
		return e.Code.String() + " error"
	case e.Err == nil:
		return e.Op + ": " + e.Code.String() + " error"
	case e.Op == "":
		return e.Err.Error()
	default:
		return e.Op + ": " + e.Err.Error()
	}
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error sentinel with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Code == e.Code
}

// NewError wraps err with a code and operation tag.
func NewError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeOK
}

// OpOf returns the operation tag of the first *Error in err's chain.
func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
