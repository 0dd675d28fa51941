//go:build !linux
// +build !linux

// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import "net"

// TuneServerConn disables Nagle coalescing and enlarges the receive buffer
// of an accepted connection.
func TuneServerConn(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tc.SetNoDelay(true); err != nil {
		return err
	}
	return tc.SetReadBuffer(ServerReceiveBufferSize)
}
