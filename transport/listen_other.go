//go:build !linux
// +build !linux

// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"net"

	"github.com/momentics/hioload-wsbench/api"
)

func listenTCP(addr *net.TCPAddr) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", addr.String())
	if err != nil {
		return nil, api.NewError(api.ErrCodeBind, "bind", err)
	}
	return ln, nil
}
