//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// Only Ctrl+C is delivered to console programs on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}

// enableANSI turns on virtual terminal processing so the report colors render
// on Windows 10 and later consoles.
func enableANSI() {
	out := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(out, &mode); err != nil {
		noColor = true
		return
	}
	if err := windows.SetConsoleMode(out, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		noColor = true
	}
}
