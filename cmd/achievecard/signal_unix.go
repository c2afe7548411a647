// Unix/Darwin signal handling for stopping `render --watch`.
//
// This file is compiled on all non-Windows platforms (Linux, macOS, *BSD).
// SIGTERM is included so a process manager or container runtime can stop a
// watching render cleanly.

//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
