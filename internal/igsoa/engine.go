package igsoa

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/jihwan-dase/dase-core/internal/numerics"
)

// DefaultIterationsPerNode is applied when a mission request omits
// iterations_per_node.
const DefaultIterationsPerNode = 30

// neighborOffsets enumerates the nearest-neighbor directions used by the
// Laplacian coupling, trimmed to the engine's actual dimensionality by
// microStep's bounds check (Dy/Dz offsets are simply never reached on a 1D/2D lattice
// since ny==nz==1 keeps every such neighbor out of bounds).
type offset struct{ dx, dy, dz int }

var neighborOffsets = [6]offset{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// RunMission advances the lattice numSteps times, each step made of
// itersPerNode PDE micro-iterations (itersPerNode <= 0 uses
// DefaultIterationsPerNode). numSteps == 0 is a valid no-op that still
// refreshes metrics to reflect zero work done.
func (e *Engine) RunMission(numSteps, itersPerNode int) error {
	if numSteps < 0 {
		return ErrInvalidMission
	}
	if itersPerNode <= 0 {
		itersPerNode = DefaultIterationsPerNode
	}

	start := time.Now()
	var totalOps int64

	scratchPsi := make([]complex128, len(e.psi))
	scratchPhi := make([]float64, len(e.phi))

	for s := 0; s < numSteps; s++ {
		for it := 0; it < itersPerNode; it++ {
			e.microStep(scratchPsi, scratchPhi)
			totalOps += int64(len(e.psi))
		}
	}

	elapsed := time.Since(start)
	e.lastMetrics = computeMetrics(elapsed, totalOps)
	return nil
}

// microStep applies one nearest-neighbor Laplacian-coupled update: psi
// diffuses and decays, phi relaxes toward |psi|^2 at rate Rc. scratchPsi
// and scratchPhi are caller-owned buffers reused across iterations to
// avoid per-iteration allocation.
func (e *Engine) microStep(scratchPsi []complex128, scratchPhi []float64) {
	rc := e.params.Rc
	kappa := e.params.Kappa
	gamma := e.params.Gamma
	dt := e.params.Dt

	for idx := 0; idx < len(e.psi); idx++ {
		x, y, z := e.coord(idx)
		var lap complex128
		var n int
		for _, off := range neighborOffsets {
			nx, ny, nz := x+off.dx, y+off.dy, z+off.dz
			if !e.inBounds(nx, ny, nz) {
				continue
			}
			lap += e.psi[e.index(nx, ny, nz)] - e.psi[idx]
			n++
		}
		_ = n
		dpsi := complex(0, 1)*complex(kappa, 0)*lap - complex(gamma, 0)*e.psi[idx]
		scratchPsi[idx] = e.psi[idx] + complex(dt, 0)*dpsi

		intensity := real(e.psi[idx])*real(e.psi[idx]) + imag(e.psi[idx])*imag(e.psi[idx])
		scratchPhi[idx] = e.phi[idx] + dt*rc*(intensity-e.phi[idx])
	}
	copy(e.psi, scratchPsi)
	copy(e.phi, scratchPhi)
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

// State is the flattened observable view returned by get_state.
type State struct {
	Dim        int
	Nx, Ny, Nz int
	PsiReal    []float64
	PsiImag    []float64
	Phi        []float64
}

// GetState flattens the lattice into the wire-level observable shape.
func (e *Engine) GetState() State {
	n := len(e.psi)
	st := State{
		Dim: int(e.dim), Nx: e.nx, Ny: e.ny, Nz: e.nz,
		PsiReal: make([]float64, n),
		PsiImag: make([]float64, n),
		Phi:     make([]float64, n),
	}
	for i, p := range e.psi {
		st.PsiReal[i] = real(p)
		st.PsiImag[i] = imag(p)
	}
	copy(st.Phi, e.phi)
	return st
}

// ComputeCenterOfMass returns the |psi|^2-weighted centroid, defined for
// 2D and 3D lattices only. A lattice with zero total mass returns the
// geometric center rather than dividing by zero.
func (e *Engine) ComputeCenterOfMass() (cx, cy, cz float64, err error) {
	if e.dim == Dim1D {
		return 0, 0, 0, ErrWrongDim
	}
	wx := make([]float64, e.nx)
	wy := make([]float64, e.ny)
	wz := make([]float64, e.nz)
	var total float64
	for idx := 0; idx < len(e.psi); idx++ {
		x, y, z := e.coord(idx)
		w := cmplx.Abs(e.psi[idx])
		w *= w
		wx[x] += w
		wy[y] += w
		wz[z] += w
		total += w
	}
	if total == 0 || math.IsNaN(total) {
		return float64(e.nx-1) / 2, float64(e.ny-1) / 2, float64(e.nz-1) / 2, nil
	}
	return numerics.WeightedCentroid1D(wx), numerics.WeightedCentroid1D(wy), numerics.WeightedCentroid1D(wz), nil
}
