//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableBinaryStreams forces stdin/stdout into binary mode on Windows so
// the console driver does not rewrite \n to \r\n inside the JSON line
// protocol, per SPEC_FULL.md §4.H.
func enableBinaryStreams() error {
	for _, f := range []*os.File{os.Stdin, os.Stdout} {
		var mode uint32
		h := windows.Handle(f.Fd())
		if err := windows.GetConsoleMode(h, &mode); err != nil {
			// Not a console (e.g. redirected to a file or pipe): nothing to set.
			continue
		}
		if err := windows.SetConsoleMode(h, mode&^windows.ENABLE_PROCESSED_OUTPUT); err != nil {
			return err
		}
	}
	return nil
}
