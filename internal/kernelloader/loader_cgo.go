//go:build cgo

package kernelloader

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef int64_t (*dase_create_engine_fn)(int64_t);
typedef void (*dase_destroy_engine_fn)(int64_t);
typedef int (*dase_run_mission_fn)(int64_t, double*, double*, int64_t, int64_t);
typedef void (*dase_get_metrics_fn)(int64_t, double*, double*, double*, int64_t*);

static int64_t call_create(void *fn, int64_t n) {
	return ((dase_create_engine_fn)fn)(n);
}
static void call_destroy(void *fn, int64_t h) {
	((dase_destroy_engine_fn)fn)(h);
}
static int call_run(void *fn, int64_t h, double *in, double *ctrl, int64_t steps, int64_t iters) {
	return ((dase_run_mission_fn)fn)(h, in, ctrl, steps, iters);
}
static void call_metrics(void *fn, int64_t h, double *ns, double *ops, double *speedup, int64_t *total) {
	((dase_get_metrics_fn)fn)(h, ns, ops, speedup, total);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// cgoLoader resolves the Phase 4C shared library via dlopen/dlsym. This is
// the idiomatic Go mechanism for dynamic library loading; no third-party
// library in the retrieved example corpus offers this capability.
type cgoLoader struct {
	mu      sync.Mutex
	handle  unsafe.Pointer
	create  unsafe.Pointer
	destroy unsafe.Pointer
	run     unsafe.Pointer
	metrics unsafe.Pointer
	closed  bool
}

// Open resolves path and probes symbolNames in priority order for the
// mission runner entry point. create/destroy/metrics symbols use their
// fixed names regardless of which mission symbol matched.
func Open(path string) (Loader, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	h := C.dlopen(cpath, C.RTLD_NOW)
	if h == nil {
		return nil, fmt.Errorf("%w: dlopen %s failed", ErrUnavailable, path)
	}

	l := &cgoLoader{handle: h}

	var runSym unsafe.Pointer
	for _, name := range symbolNames {
		csym := C.CString(name)
		sym := C.dlsym(h, csym)
		C.free(unsafe.Pointer(csym))
		if sym != nil {
			runSym = sym
			break
		}
	}
	if runSym == nil {
		C.dlclose(h)
		return nil, fmt.Errorf("%w: no mission symbol found in %s", ErrUnavailable, path)
	}
	l.run = runSym

	l.create = mustSym(h, "dase_create_engine")
	l.destroy = mustSym(h, "dase_destroy_engine")
	l.metrics = mustSym(h, "dase_get_metrics")
	if l.create == nil || l.destroy == nil || l.metrics == nil {
		C.dlclose(h)
		return nil, fmt.Errorf("%w: required symbol missing in %s", ErrUnavailable, path)
	}

	return l, nil
}

func mustSym(h unsafe.Pointer, name string) unsafe.Pointer {
	csym := C.CString(name)
	defer C.free(unsafe.Pointer(csym))
	return C.dlsym(h, csym)
}

func (l *cgoLoader) CreateEngine(numNodes int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return -1
	}
	return int64(C.call_create(l.create, C.int64_t(numNodes)))
}

func (l *cgoLoader) DestroyEngine(handle int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	C.call_destroy(l.destroy, C.int64_t(handle))
}

func (l *cgoLoader) RunMission(handle int64, input, control []float64, numSteps, iters int64) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return -1
	}
	var inPtr, ctrlPtr *C.double
	if len(input) > 0 {
		inPtr = (*C.double)(unsafe.Pointer(&input[0]))
	}
	if len(control) > 0 {
		ctrlPtr = (*C.double)(unsafe.Pointer(&control[0]))
	}
	return int32(C.call_run(l.run, C.int64_t(handle), inPtr, ctrlPtr, C.int64_t(numSteps), C.int64_t(iters)))
}

func (l *cgoLoader) GetMetrics(handle int64) (nsPerOp, opsPerSec, speedup float64, totalOps int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, 0, 0, 0
	}
	var ns, ops, sp C.double
	var total C.int64_t
	C.call_metrics(l.metrics, C.int64_t(handle), &ns, &ops, &sp, &total)
	return float64(ns), float64(ops), float64(sp), int64(total)
}

// Close unloads the shared library and nils the resolved function
// pointers, preventing any dangling reference from being invoked again.
// It is idempotent.
func (l *cgoLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.create, l.destroy, l.run, l.metrics = nil, nil, nil, nil
	if l.handle != nil {
		C.dlclose(l.handle)
		l.handle = nil
	}
	return nil
}
