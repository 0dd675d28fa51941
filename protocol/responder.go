// File: protocol/responder.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// responder is a one-shot http.ResponseWriter over a raw connection. It lets
// the upgrader run on sockets accepted outside net/http: a successful
// upgrade hijacks the connection, a rejected one gets a plain HTTP error.

package protocol

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

type responder struct {
	conn        net.Conn
	brw         *bufio.ReadWriter
	header      http.Header
	wroteHeader bool
	hijacked    bool
}

func newResponder(conn net.Conn, br *bufio.Reader) *responder {
	return &responder{
		conn:   conn,
		brw:    bufio.NewReadWriter(br, bufio.NewWriter(conn)),
		header: make(http.Header),
	}
}

func (r *responder) Header() http.Header { return r.header }

// WriteHeader writes the status line and headers. Non-upgrade responses
// always close the connection.
func (r *responder) WriteHeader(code int) {
	if r.wroteHeader || r.hijacked {
		return
	}
	r.wroteHeader = true
	r.header.Set("Connection", "close")
	fmt.Fprintf(r.brw, "HTTP/1.1 %03d %s\r\n", code, http.StatusText(code))
	_ = r.header.Write(r.brw)
	fmt.Fprint(r.brw, "\r\n")
}

func (r *responder) Write(p []byte) (int, error) {
	if r.hijacked {
		return 0, http.ErrHijacked
	}
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.brw.Write(p)
	if err != nil {
		return n, err
	}
	return n, r.brw.Flush()
}

// Hijack hands the connection to the upgrader.
func (r *responder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if r.hijacked {
		return nil, nil, http.ErrHijacked
	}
	r.hijacked = true
	return r.conn, r.brw, nil
}
