//go:build linux
// +build linux

// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"net"
	"os"

	"github.com/momentics/hioload-wsbench/api"
	"golang.org/x/sys/unix"
)

// listenTCP performs the acceptor sequence explicitly: open a socket of the
// address family, allow address reuse, bind and listen with the platform
// maximum backlog. The descriptor is then handed to the runtime poller.
func listenTCP(addr *net.TCPAddr) (net.Listener, error) {
	family, sa := sockaddr(addr)

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, api.NewError(api.ErrCodeBind, "open", os.NewSyscallError("socket", err))
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, api.NewError(api.ErrCodeBind, "set_option", os.NewSyscallError("setsockopt SO_REUSEADDR", err))
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, api.NewError(api.ErrCodeBind, "bind", os.NewSyscallError("bind "+addr.String(), err))
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, api.NewError(api.ErrCodeBind, "listen", os.NewSyscallError("listen", err))
	}

	f := os.NewFile(uintptr(fd), "tcp:"+addr.String())
	ln, err := net.FileListener(f)
	// FileListener dups the descriptor.
	f.Close()
	if err != nil {
		return nil, api.NewError(api.ErrCodeBind, "listen", err)
	}
	return ln, nil
}

func sockaddr(addr *net.TCPAddr) (int, unix.Sockaddr) {
	if ip4 := addr.IP.To4(); ip4 != nil || len(addr.IP) == 0 {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa
	}
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		if ifi, err := net.InterfaceByName(addr.Zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return unix.AF_INET6, sa
}
