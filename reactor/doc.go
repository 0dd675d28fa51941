// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the single-threaded run-loop that drives the
// asynchronous echo client: blocking operations complete on helper
// goroutines, and their continuations are dispatched one at a time, in
// completion order, on the goroutine that called Run.
package reactor
