// Package node implements the per-cell state record and step kernel that
// underlies the Phase 4B/4C cellular engine.
package node

import "math"

const (
	// tau is the integrator time constant used by ProcessSignal.
	tau = 0.1
	// dt is the fixed sample period (48kHz).
	dt = 1.0 / 48000.0
	// decay is the integrator leak factor applied every step.
	decay = 0.999999

	integratorMin = -1e6
	integratorMax = 1e6
	outputMin     = -10.0
	outputMax     = 10.0
	feedbackMin   = -2.0
	feedbackMax   = 2.0
)

// freqMultipliers are the eight fixed frequencies used by the deterministic
// spectral mixing step. This is not a real FFT.
var freqMultipliers = [8]float64{0.3, 0.7, 0.9, 1.2, 1.4, 1.8, 2.1, 2.7}

// Node is a single cell of simulation state. It owns no heap-allocated
// fields; the engine that holds a slice of Node is the sole owner of the
// backing memory.
type Node struct {
	X, Y, Z int16
	ID      uint32

	Integrator     float64
	PreviousInput  float64
	Output         float64
	FeedbackGain   float64 // invariant: clamp(-2, 2)
}

// New returns a zeroed node at the given coordinate with the given id and
// feedback gain, clamped to the node's invariant range.
func New(x, y, z int16, id uint32, feedbackGain float64) Node {
	return Node{
		X:            x,
		Y:            y,
		Z:            z,
		ID:           id,
		FeedbackGain: clamp(feedbackGain, feedbackMin, feedbackMax),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StepCounters accumulates per-call instrumentation for ProcessSignal. It is
// optional; ProcessSignalHot performs identical arithmetic without touching
// a StepCounters, for use on the hot path where counter writes would be
// measurable overhead.
type StepCounters struct {
	Calls uint64
}

// ProcessSignal runs the 7-step per-node contract:
//  1. amplified = input * control
//  2. integrator = clamp(integrator*decay + amplified*tau*dt, -1e6, 1e6)
//  3. auxBlended = amplified + aux
//  4. spectral = mean_k sin(auxBlended * m_k) over 8 fixed multipliers
//  5. feedback = integrator + integrator*gain
//  6. output = clamp(feedback + spectral, -10, 10)
//  7. previousInput = input
func (n *Node) ProcessSignal(input, control, aux float64, counters *StepCounters) float64 {
	out := n.step(input, control, aux)
	if counters != nil {
		counters.Calls++
	}
	return out
}

// ProcessSignalHot is semantically identical to ProcessSignal but never
// writes to a counter; it is the variant the mission loop uses internally.
func (n *Node) ProcessSignalHot(input, control, aux float64) float64 {
	return n.step(input, control, aux)
}

func (n *Node) step(input, control, aux float64) float64 {
	amplified := input * control

	n.Integrator = clamp(n.Integrator*decay+amplified*tau*dt, integratorMin, integratorMax)

	auxBlended := amplified + aux
	spectral := spectralMix(auxBlended)

	feedback := n.Integrator + n.Integrator*n.FeedbackGain
	n.Output = clamp(feedback+spectral, outputMin, outputMax)

	n.PreviousInput = input
	return n.Output
}

func spectralMix(x float64) float64 {
	var sum float64
	for _, m := range freqMultipliers {
		sum += math.Sin(x * m)
	}
	return sum / float64(len(freqMultipliers))
}
