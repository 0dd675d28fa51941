// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"time"

	"github.com/momentics/hioload-wsbench/protocol"
	"github.com/momentics/hioload-wsbench/transport"
)

// Config holds all server-side configuration parameters.
type Config struct {
	Address    string // bind address, e.g. "127.0.0.1"
	PlainPort  int    // port of the plain listener (0 = ephemeral)
	SecurePort int    // port of the TLS listener (0 = ephemeral, <0 = disabled)

	CertFile string // PEM certificate, required when SecurePort >= 0
	KeyFile  string // PEM private key

	SecureHandshakeTimeout time.Duration // bound on the TLS handshake
	Protocol               protocol.ServerOptions

	RestartMinBackoff time.Duration // supervisor backoff after a crash
	RestartMaxBackoff time.Duration
}

// DefaultConfig returns the benchmark defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:                "127.0.0.1",
		PlainPort:              9001,
		SecurePort:             9002,
		CertFile:               transport.DefaultCertFile,
		KeyFile:                transport.DefaultKeyFile,
		SecureHandshakeTimeout: 5 * time.Second,
		Protocol:               protocol.DefaultServerOptions(),
		RestartMinBackoff:      time.Millisecond,
		RestartMaxBackoff:      time.Second,
	}
}

// State is the lifecycle state of a server session.
type State int32

const (
	StateAccepted State = iota
	StateAwaitingSecureHandshake
	StateAwaitingProtocolHandshake
	StateReading
	StateWriting
	StateClosed
)

var stateNames = [...]string{
	StateAccepted:                  "accepted",
	StateAwaitingSecureHandshake:   "awaiting-secure-handshake",
	StateAwaitingProtocolHandshake: "awaiting-protocol-handshake",
	StateReading:                   "reading",
	StateWriting:                   "writing",
	StateClosed:                    "closed",
}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
