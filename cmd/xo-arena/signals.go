package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals end the program the same way quitting the UI does, so the
// live session still gets its end notice. SIGHUP arrives when the terminal
// window is closed.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

func notifyShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
