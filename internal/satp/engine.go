package satp

import (
	"math"
	"time"

	"github.com/jihwan-dase/dase-core/internal/numerics"
)

var neighborOffsets = [6]struct{ dx, dy, dz int }{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// laplacian computes the unnormalized nearest-neighbor Laplacian of
// field at idx: sum(neighbor - center) over in-bounds neighbors.
func (e *Engine) laplacian(field []float64, idx int) float64 {
	x, y, z := e.coord(idx)
	var lap float64
	for _, off := range neighborOffsets {
		nx, ny, nz := x+off.dx, y+off.dy, z+off.dz
		if !e.inBounds(nx, ny, nz) {
			continue
		}
		lap += field[e.index(nx, ny, nz)] - field[idx]
	}
	return lap / (e.params.Dx * e.params.Dx)
}

// Evolve advances the fields numSteps times. iterations_per_node is
// accepted by the router but ignored here, per spec.
func (e *Engine) Evolve(numSteps int) error {
	if numSteps < 0 {
		return ErrInvalidMission
	}

	start := time.Now()
	var totalOps int64
	v2 := e.params.v2()
	c2 := e.params.C * e.params.C
	dt := e.params.Dt

	for s := 0; s < numSteps; s++ {
		e.applySources()

		for idx := range e.phi {
			phiAccel := c2*e.laplacian(e.phi, idx) - e.params.GammaPhi*e.phiDot[idx] - e.params.Lambda*e.h[idx]*e.h[idx]*e.phi[idx]
			if idx < len(e.activeSourceBuf) {
				phiAccel += e.activeSourceBuf[idx]
			}
			hAccel := c2*e.laplacian(e.h, idx) - e.params.GammaH*e.hDot[idx] -
				4*e.params.LambdaH*e.h[idx]*(e.h[idx]*e.h[idx]-v2) -
				2*e.params.Lambda*e.phi[idx]*e.phi[idx]*e.h[idx]

			e.phiDot[idx] += dt * phiAccel
			e.hDot[idx] += dt * hAccel
		}
		for idx := range e.phi {
			e.phi[idx] += dt * e.phiDot[idx]
			e.h[idx] += dt * e.hDot[idx]
		}

		e.currentTime += dt
		totalOps += int64(len(e.phi))
	}

	elapsed := time.Since(start)
	e.lastMetrics = computeMetrics(elapsed, totalOps)
	return nil
}

// applySources recomputes e.activeSourceBuf for the current time step;
// it is nil on engines with no registered three_zone_source zones.
func (e *Engine) applySources() {
	if len(e.sources) == 0 {
		e.activeSourceBuf = nil
		return
	}
	if e.activeSourceBuf == nil || len(e.activeSourceBuf) != len(e.phi) {
		e.activeSourceBuf = make([]float64, len(e.phi))
	}
	for i := range e.activeSourceBuf {
		e.activeSourceBuf[i] = 0
	}
	for _, src := range e.sources {
		if e.currentTime < src.tStart || e.currentTime >= src.tEnd {
			continue
		}
		phase := 2 * math.Pi * src.frequency * e.currentTime
		val := src.amplitude * math.Sin(phase)
		half := src.width / 2
		for x := 0; x < e.nx; x++ {
			if math.Abs(float64(x)-src.center) <= half {
				e.activeSourceBuf[x] += val
			}
		}
	}
}

func computeMetrics(elapsed time.Duration, totalOps int64) Metrics {
	if totalOps == 0 {
		return Metrics{}
	}
	nsPerOp := float64(elapsed.Nanoseconds()) / float64(totalOps)
	if nsPerOp <= 0 {
		nsPerOp = 1
	}
	opsPerSec := 1e9 / nsPerOp
	return Metrics{
		NsPerOp:   nsPerOp,
		OpsPerSec: opsPerSec,
		Speedup:   baselineNsPerOp / nsPerOp,
		TotalOps:  totalOps,
	}
}

// State is the flattened observable view returned by get_satp_state.
type State struct {
	Dim        int
	Nx, Ny, Nz int
	Phi        []float64
	PhiDot     []float64
	H          []float64
	HDot       []float64
	PhiRMS     float64
	HRMS       float64
}

// GetSatpState flattens the fields and reports guarded RMS scalars: a
// zero-node engine (impossible via New*, reachable only via a future
// zero-length construction path) reports 0 rather than dividing by zero.
func (e *Engine) GetSatpState() State {
	st := State{
		Dim: int(e.dim), Nx: e.nx, Ny: e.ny, Nz: e.nz,
		Phi: append([]float64(nil), e.phi...), PhiDot: append([]float64(nil), e.phiDot...),
		H: append([]float64(nil), e.h...), HDot: append([]float64(nil), e.hDot...),
	}
	if len(e.phi) == 0 {
		return st
	}
	st.PhiRMS = numerics.RMS(e.phi)
	st.HRMS = numerics.RMS(e.h)
	return st
}
