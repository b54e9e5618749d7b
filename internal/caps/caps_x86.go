//go:build 386 || amd64 || amd64p32

package caps

import "golang.org/x/sys/cpu"

// detect reads the x86-specific feature flags golang.org/x/sys/cpu
// exposes only on 386/amd64/amd64p32 builds.
func detect() Set {
	return Set{
		AVX2:   cpu.X86.HasAVX2,
		FMA:    cpu.X86.HasFMA,
		AVX512: cpu.X86.HasAVX512F,
	}
}
