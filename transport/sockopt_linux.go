//go:build linux
// +build linux

// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// TuneServerConn disables Nagle coalescing and enlarges the kernel receive
// buffer of an accepted connection.
func TuneServerConn(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	err = raw.Control(func(fd uintptr) {
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); e != nil {
			serr = os.NewSyscallError("setsockopt TCP_NODELAY", e)
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, ServerReceiveBufferSize); e != nil {
			serr = os.NewSyscallError("setsockopt SO_RCVBUF", e)
		}
	})
	if err != nil {
		return err
	}
	return serr
}
