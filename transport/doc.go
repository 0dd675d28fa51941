// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport implements the byte-stream endpoints of hioload-wsbench:
// outbound connect, accepted server sockets, the optional TLS layer and the
// listener bind sequence. Sockets are tuned for per-message latency
// (TCP_NODELAY everywhere, enlarged receive buffers on the server side).
package transport
