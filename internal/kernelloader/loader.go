// Package kernelloader resolves the Phase 4C shared library at process
// startup and exposes its four C-ABI symbols through the Loader
// interface. SPEC_FULL.md's C-ABI symbol priority
// (..._phase4c -> ..._phase4b -> ..._optimized) is implemented by
// Open in loader_cgo.go; this file holds the platform-neutral
// interface and the shared error values.
package kernelloader

import "errors"

// ErrUnavailable is returned by Open when no kernel library could be
// resolved. Callers must treat this as "the phase4b engine type is
// unavailable", not as a fatal condition.
var ErrUnavailable = errors.New("kernelloader: phase 4C shared library unavailable")

// MissionFunc matches dase_run_mission_optimized_phase4c.
type MissionFunc func(handle int64, input, control []float64, numSteps, iters int64) int32

// MetricsFunc matches dase_get_metrics.
type MetricsFunc func(handle int64) (nsPerOp, opsPerSec, speedup float64, totalOps int64)

// Loader is the resolved symbol set from the Phase 4C shared library.
// Implementations must be safe to call from a single goroutine; the
// engine manager never calls a Loader concurrently with itself.
type Loader interface {
	CreateEngine(numNodes int64) int64
	DestroyEngine(handle int64)
	RunMission(handle int64, input, control []float64, numSteps, iters int64) int32
	GetMetrics(handle int64) (nsPerOp, opsPerSec, speedup float64, totalOps int64)
	// Close unloads the shared library and nils the resolved function
	// pointers. It must be idempotent.
	Close() error
}

// symbolNames lists the exported-name candidates tried, in priority
// order, for the mission-runner entry point, per SPEC_FULL.md §6.
var symbolNames = []string{
	"dase_run_mission_optimized_phase4c",
	"dase_run_mission_phase4b",
	"dase_run_mission_optimized",
}
