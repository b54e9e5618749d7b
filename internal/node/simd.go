package node

// ProcessBatch4 advances four nodes by one step using the Phase 4C kernel
// variant. Go's standard toolchain has no portable 256-bit vector
// intrinsic reachable without hand-written assembly, so the "vector
// register" framing of the C original is honored at the algorithmic level
// instead: four independent lanes, no cross-lane dependency, processed
// with the same instruction sequence. This is the behavior that matters
// for the C-ABI contract — lane independence, not the specific ISA used
// to execute it.
//
// Phase 4C replaces the scalar 8-term spectral mix with a coarser
// approximation (amplified*0.01). This is an intentional, documented
// divergence from Phase 4B's output: the two kernels are not expected to
// agree bit-for-bit, only to individually satisfy the node invariants.
func ProcessBatch4(lanes *[4]Node, input, control, aux *[4]float64) (out [4]float64) {
	for lane := 0; lane < 4; lane++ {
		n := &lanes[lane]
		amplified := input[lane] * control[lane]

		n.Integrator = clamp(n.Integrator*decay+amplified*tau*dt, integratorMin, integratorMax)

		spectral := amplified * 0.01 // Phase 4C approximation, see doc comment above

		feedback := n.Integrator + n.Integrator*n.FeedbackGain
		n.Output = clamp(feedback+spectral, outputMin, outputMax)

		n.PreviousInput = input[lane]
		out[lane] = n.Output
	}
	return out
}

// ProcessBatchRemainder runs the same Phase 4C per-node arithmetic as
// ProcessBatch4 (including the amplified*0.01 spectral approximation), one
// node at a time, over nodes that do not fill a complete 4-lane block.
func ProcessBatchRemainder(nodes []Node, input, control, aux []float64) []float64 {
	out := make([]float64, len(nodes))
	for i := range nodes {
		amplified := input[i] * control[i]
		n := &nodes[i]
		n.Integrator = clamp(n.Integrator*decay+amplified*tau*dt, integratorMin, integratorMax)
		spectral := amplified * 0.01
		feedback := n.Integrator + n.Integrator*n.FeedbackGain
		n.Output = clamp(feedback+spectral, outputMin, outputMax)
		n.PreviousInput = input[i]
		out[i] = n.Output
	}
	return out
}
