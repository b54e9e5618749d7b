// Command dase-kernelabi builds the Phase 4C shared library documented in
// SPEC_FULL.md §6: `go build -buildmode=c-shared -o libdase_kernelabi.so
// ./cmd/dase-kernelabi`. The exported symbols are resolved at runtime by
// internal/kernelloader.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/jihwan-dase/dase-core/internal/kernelabi"
)

var registry = kernelabi.NewRegistry()

//export dase_create_engine
func dase_create_engine(numNodes C.int64_t) C.int64_t {
	return C.int64_t(registry.CreateEngine(int64(numNodes)))
}

//export dase_destroy_engine
func dase_destroy_engine(handle C.int64_t) {
	registry.DestroyEngine(int64(handle))
}

//export dase_run_mission_optimized_phase4c
func dase_run_mission_optimized_phase4c(handle C.int64_t, input *C.double, control *C.double, numSteps C.int64_t, iters C.int64_t) C.int {
	n := int(numSteps)
	in := cDoublesToGo(input, n)
	ctrl := cDoublesToGo(control, n)
	if registry.RunMissionOptimizedPhase4C(int64(handle), in, ctrl, int64(numSteps), int64(iters)) {
		return 0
	}
	return -1
}

//export dase_get_metrics
func dase_get_metrics(handle C.int64_t, nsPerOp *C.double, opsPerSec *C.double, speedup *C.double, totalOps *C.int64_t) {
	m := registry.GetMetrics(int64(handle))
	if nsPerOp != nil {
		*nsPerOp = C.double(m.NsPerOp)
	}
	if opsPerSec != nil {
		*opsPerSec = C.double(m.OpsPerSec)
	}
	if speedup != nil {
		*speedup = C.double(m.Speedup)
	}
	if totalOps != nil {
		*totalOps = C.int64_t(m.TotalOps)
	}
}

func cDoublesToGo(p *C.double, n int) []float64 {
	out := make([]float64, n)
	if p == nil || n <= 0 {
		return out
	}
	src := (*[1 << 30]C.double)(unsafe.Pointer(p))[:n:n]
	for i := 0; i < n; i++ {
		out[i] = float64(src[i])
	}
	return out
}

func main() {}
