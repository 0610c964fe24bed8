//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop the run after the countries in flight finish.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// Unix terminals understand ANSI colors without setup.
func enableANSI() {}
