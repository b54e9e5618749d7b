// Package caps probes the host CPU's feature set once at startup and
// caches the result for get_capabilities.
package caps

// Set is the closed boolean capability set reported by get_capabilities.
type Set struct {
	AVX2   bool `json:"avx2"`
	FMA    bool `json:"fma"`
	AVX512 bool `json:"avx512"`
}

// Detect reports the current host's relevant SIMD capabilities. On
// architectures other than 386/amd64/amd64p32, every field is false
// rather than an error — golang.org/x/sys/cpu only declares the X86
// feature struct on those architectures (see caps_x86.go/caps_other.go),
// and the Phase 4C kernel still runs its multi-lane algorithm without
// claiming hardware vector support.
func Detect() Set {
	return detect()
}
