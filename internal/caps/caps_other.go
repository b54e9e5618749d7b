//go:build !(386 || amd64 || amd64p32)

package caps

// detect reports every capability false: golang.org/x/sys/cpu's X86
// feature struct only exists on 386/amd64/amd64p32 builds.
func detect() Set {
	return Set{}
}
