// Package cellular implements the Phase 4B/4C cellular engine: a pool of
// node.Node cells advanced by a single parallel region spanning the whole
// mission, with per-instance performance accounting.
package cellular

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jihwan-dase/dase-core/internal/node"
)

// MaxNodes is the hard cap on a single engine's node population.
const MaxNodes = 1 << 20 // 1,048,576

var (
	ErrInvalidNodeCount = errors.New("num_nodes must be in (0, 1048576]")
	ErrInvalidMission   = errors.New("num_steps must be > 0")
)

// Metrics is the four-tuple performance report shared by every engine
// family in this repository.
type Metrics struct {
	NsPerOp      float64
	OpsPerSec    float64
	Speedup      float64
	TotalOps     int64
}

// baselineNsPerOp is the reference scalar cost used to derive Speedup.
const baselineNsPerOp = 15500.0

// Engine owns a contiguous node population and the last mission's metrics.
type Engine struct {
	nodes   []node.Node
	metrics Metrics
}

// New creates an engine with the given node count. Out-of-range counts are
// refused without allocating any state.
func New(numNodes int) (*Engine, error) {
	if numNodes <= 0 || numNodes > MaxNodes {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNodeCount, numNodes)
	}
	nodes := make([]node.Node, numNodes)
	for i := range nodes {
		nodes[i] = node.New(int16(i), 0, 0, uint32(i), 0)
	}
	return &Engine{nodes: nodes}, nil
}

// NumNodes returns the size of the node population.
func (e *Engine) NumNodes() int { return len(e.nodes) }

// Metrics returns the metrics recorded by the last mission run. Calling
// this on a fresh engine returns the zero value, never an error.
func (e *Engine) Metrics() Metrics { return e.metrics }

// RunMission is the Phase 4B entry point: a single parallel region spans
// every step; each worker owns a contiguous slice of the node array and
// walks every step without re-entering the parallel region.
func (e *Engine) RunMission(numSteps int, inputSignals, controlPatterns []float64, itersPerNode int) error {
	return e.runMission(numSteps, inputSignals, controlPatterns, itersPerNode, e.stepScalar)
}

// RunMissionOptimizedPhase4C is the SIMD-batched variant; semantics are
// otherwise identical to RunMission.
func (e *Engine) RunMissionOptimizedPhase4C(numSteps int, inputSignals, controlPatterns []float64, itersPerNode int) error {
	return e.runMission(numSteps, inputSignals, controlPatterns, itersPerNode, e.stepVectorized)
}

type stepFunc func(slice []node.Node, input, control float64, iters int)

func (e *Engine) runMission(numSteps int, inputSignals, controlPatterns []float64, itersPerNode int, step stepFunc) error {
	if numSteps <= 0 {
		return ErrInvalidMission
	}
	if itersPerNode <= 0 {
		itersPerNode = 1
	}
	if len(inputSignals) < numSteps || len(controlPatterns) < numSteps {
		return fmt.Errorf("input/control arrays must have at least num_steps=%d entries", numSteps)
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(e.nodes) {
		numWorkers = len(e.nodes)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	chunk := (len(e.nodes) + numWorkers - 1) / numWorkers

	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if lo >= len(e.nodes) {
			break
		}
		if hi > len(e.nodes) {
			hi = len(e.nodes)
		}
		wg.Add(1)
		go func(slice []node.Node) {
			defer wg.Done()
			for s := 0; s < numSteps; s++ {
				step(slice, inputSignals[s], controlPatterns[s], itersPerNode)
			}
		}(e.nodes[lo:hi])
	}
	wg.Wait()

	elapsed := time.Since(start)
	totalOps := int64(numSteps) * int64(len(e.nodes)) * int64(itersPerNode)
	e.metrics = computeMetrics(elapsed, totalOps)
	return nil
}

func computeMetrics(elapsed time.Duration, totalOps int64) Metrics {
	if totalOps <= 0 {
		return Metrics{}
	}
	nsPerOp := float64(elapsed.Nanoseconds()) / float64(totalOps)
	var opsPerSec, speedup float64
	if nsPerOp > 0 {
		opsPerSec = 1e9 / nsPerOp
		speedup = baselineNsPerOp / nsPerOp
	}
	return Metrics{
		NsPerOp:   nsPerOp,
		OpsPerSec: opsPerSec,
		Speedup:   speedup,
		TotalOps:  totalOps,
	}
}

func (e *Engine) stepScalar(slice []node.Node, input, control float64, iters int) {
	for it := 0; it < iters; it++ {
		for i := range slice {
			slice[i].ProcessSignalHot(input, control, 0)
		}
	}
}

func (e *Engine) stepVectorized(slice []node.Node, input, control float64, iters int) {
	var inArr, ctrlArr, auxArr [4]float64
	for it := 0; it < iters; it++ {
		i := 0
		for ; i+4 <= len(slice); i += 4 {
			var lanes [4]node.Node
			copy(lanes[:], slice[i:i+4])
			for l := 0; l < 4; l++ {
				inArr[l] = input
				ctrlArr[l] = control
				auxArr[l] = 0
			}
			node.ProcessBatch4(&lanes, &inArr, &ctrlArr, &auxArr)
			copy(slice[i:i+4], lanes[:])
		}
		if i < len(slice) {
			rem := slice[i:]
			inRem := make([]float64, len(rem))
			ctrlRem := make([]float64, len(rem))
			auxRem := make([]float64, len(rem))
			for j := range rem {
				inRem[j] = input
				ctrlRem[j] = control
			}
			node.ProcessBatchRemainder(rem, inRem, ctrlRem, auxRem)
		}
	}
}
