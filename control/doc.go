// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for hioload-wsbench: session lifecycle counters on the
// server, round-trip counters on the client and supervisor restarts,
// plus named debug probes over live state.
// All types are safe for concurrent use.
package control
