// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"

	"github.com/momentics/hioload-wsbench/api"
)

// Resolve looks up host and port and returns the candidate TCP addresses
// in resolver order.
func Resolve(ctx context.Context, host, port string) ([]*net.TCPAddr, error) {
	p, err := net.DefaultResolver.LookupPort(ctx, "tcp", port)
	if err != nil {
		return nil, api.NewError(api.ErrCodeResolve, "resolve", err)
	}
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, api.NewError(api.ErrCodeResolve, "resolve", err)
	}
	if len(ips) == 0 {
		return nil, api.NewError(api.ErrCodeResolve, "resolve", fmt.Errorf("no addresses for %q", host))
	}
	out := make([]*net.TCPAddr, 0, len(ips))
	for _, ip := range ips {
		out = append(out, &net.TCPAddr{IP: ip.IP, Port: p, Zone: ip.Zone})
	}
	return out, nil
}

// Connect resolves host:port, connects to the first reachable address and
// disables Nagle coalescing on the new socket. The secure handshake is not
// performed here; call SecureHandshake on the result.
func Connect(ctx context.Context, host, port string, mode api.Mode, tlsConf *tls.Config) (*Endpoint, error) {
	addrs, err := Resolve(ctx, host, port)
	if err != nil {
		return nil, err
	}
	var d net.Dialer
	var errs []error
	for _, addr := range addrs {
		conn, err := d.DialContext(ctx, "tcp", addr.String())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := setNoDelay(conn); err != nil {
			conn.Close()
			return nil, api.NewError(api.ErrCodeConnect, "set_option", err)
		}
		return NewEndpoint(conn, mode, tlsConf), nil
	}
	return nil, api.NewError(api.ErrCodeConnect, "connect", errors.Join(errs...))
}

// setNoDelay turns off Nagle's algorithm on TCP connections.
func setNoDelay(conn net.Conn) error {
	if tc, ok := conn.(*net.TCPConn); ok {
		return tc.SetNoDelay(true)
	}
	return nil
}
