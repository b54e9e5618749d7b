// Package kernelabi holds the pure-Go registry and dispatch logic behind
// the Phase 4C C-ABI surface documented in SPEC_FULL.md §4.B / §6. The
// cgo export shims that expose this registry as a C-callable shared
// library live in cmd/dase-kernelabi, kept separate so this package stays
// unit-testable without a cgo build.
package kernelabi

import (
	"sync"

	"github.com/jihwan-dase/dase-core/internal/cellular"
)

// Registry is a process-wide table of live cellular engines keyed by an
// opaque int64 handle, matching the C-ABI's handle type.
type Registry struct {
	mu      sync.Mutex
	engines map[int64]*cellular.Engine
	nextID  int64
}

// NewRegistry returns an empty registry with handle minting starting at 1
// (0 and negative values are reserved for "no handle"/error returns).
func NewRegistry() *Registry {
	return &Registry{engines: make(map[int64]*cellular.Engine), nextID: 1}
}

// CreateEngine mirrors dase_create_engine: returns -1 on invalid num_nodes.
func (r *Registry) CreateEngine(numNodes int64) int64 {
	eng, err := cellular.New(int(numNodes))
	if err != nil {
		return -1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.engines[id] = eng
	return id
}

// DestroyEngine mirrors dase_destroy_engine: destroying an unknown handle
// is a silent no-op, never a crash.
func (r *Registry) DestroyEngine(handle int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, handle)
}

// RunMissionOptimizedPhase4C mirrors
// dase_run_mission_optimized_phase4c: returns false on an unknown handle
// or a rejected mission.
func (r *Registry) RunMissionOptimizedPhase4C(handle int64, input, control []float64, numSteps, iters int64) bool {
	r.mu.Lock()
	eng, ok := r.engines[handle]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return eng.RunMissionOptimizedPhase4C(int(numSteps), input, control, int(iters)) == nil
}

// GetMetrics mirrors dase_get_metrics: an unknown handle yields the
// neutral zero Metrics rather than an error.
func (r *Registry) GetMetrics(handle int64) cellular.Metrics {
	r.mu.Lock()
	eng, ok := r.engines[handle]
	r.mu.Unlock()
	if !ok {
		return cellular.Metrics{}
	}
	return eng.Metrics()
}
