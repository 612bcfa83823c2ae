//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals cancel the command context for graceful shutdown.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
