// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"errors"
	"net"
	"strconv"

	"github.com/momentics/hioload-wsbench/api"
)

// ServerReceiveBufferSize is the SO_RCVBUF requested for accepted sockets.
const ServerReceiveBufferSize = 256 * 1024

// Listen resolves address and opens a listening socket on port.
// Every failing step is returned as a bind error tagged with the step name:
// "resolve", "open", "set_option", "bind" or "listen".
func Listen(ctx context.Context, address string, port int) (net.Listener, error) {
	addrs, err := Resolve(ctx, address, strconv.Itoa(port))
	if err != nil {
		return nil, api.NewError(api.ErrCodeBind, "resolve", errors.Unwrap(err))
	}
	return listenTCP(addrs[0])
}
