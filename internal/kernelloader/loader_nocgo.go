//go:build !cgo

package kernelloader

// Open always fails without cgo: dlopen is unavailable, so the phase4b
// engine type is reported unavailable while every other engine type
// remains usable, per SPEC_FULL.md §4.B.
func Open(path string) (Loader, error) {
	return nil, ErrUnavailable
}
