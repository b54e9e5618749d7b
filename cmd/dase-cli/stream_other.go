//go:build !windows

package main

// enableBinaryStreams is a no-op outside Windows: POSIX terminals and
// pipes never rewrite newlines.
func enableBinaryStreams() error {
	return nil
}
