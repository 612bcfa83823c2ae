//go:build windows

package main

import "os"

// shutdownSignals cancel the command context for graceful shutdown.
// Windows does not deliver SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}
