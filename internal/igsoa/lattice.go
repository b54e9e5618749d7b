// Package igsoa implements the IGSOA complex-field lattice engines
// (1D/2D/3D), sharing one evolving-mesh representation parameterized by
// dimensionality.
package igsoa

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MaxCells is the hard cap on Nx*Ny*Nz, shared across 1D/2D/3D engines.
const MaxCells = 1 << 20

// Dim identifies which lattice dimensionality an Engine was created as.
// The engine_type string surfaced by the router is derived from Dim, not
// stored redundantly.
type Dim int

const (
	Dim1D Dim = 1
	Dim2D Dim = 2
	Dim3D Dim = 3
)

var (
	ErrInvalidDims      = errors.New("igsoa: lattice dimensions must be positive and within the cell cap")
	ErrInvalidParameter = errors.New("igsoa: physics parameter must be finite and within its domain")
	ErrInvalidMission   = errors.New("igsoa: num_steps must be >= 0")
	ErrUnknownProfile   = errors.New("igsoa: unknown profile")
	ErrUnknownMode      = errors.New("igsoa: unknown mode")
	ErrWrongDim         = errors.New("igsoa: operation not supported at this lattice dimensionality")
)

// Params holds the physics constants shared by every IGSOA engine.
type Params struct {
	Rc    float64 // coupling radius, > 0
	Kappa float64 // coupling strength, > 0
	Gamma float64 // damping, >= 0
	Dt    float64 // time step, > 0
}

// DefaultParams returns the spec-default physics constants.
func DefaultParams() Params {
	return Params{Rc: 4.0, Kappa: 1.0, Gamma: 0.1, Dt: 0.01}
}

// Validate checks the finiteness/domain constraints from SPEC_FULL.md
// §4.C.
func (p Params) Validate() error {
	if !isPositiveFinite(p.Rc) {
		return fmt.Errorf("%w: R_c must be positive and finite, got %v", ErrInvalidParameter, p.Rc)
	}
	if !isPositiveFinite(p.Kappa) {
		return fmt.Errorf("%w: kappa must be positive and finite, got %v", ErrInvalidParameter, p.Kappa)
	}
	if !isNonNegativeFinite(p.Gamma) {
		return fmt.Errorf("%w: gamma must be non-negative and finite, got %v", ErrInvalidParameter, p.Gamma)
	}
	if !isPositiveFinite(p.Dt) {
		return fmt.Errorf("%w: dt must be positive and finite, got %v", ErrInvalidParameter, p.Dt)
	}
	return nil
}

func isPositiveFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 }
func isNonNegativeFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Engine is the IGSOA lattice engine, shared across 1D/2D/3D.
type Engine struct {
	dim            Dim
	nx, ny, nz     int
	params         Params
	psi            []complex128
	phi            []float64
	lastMetrics    Metrics
	createdAt      time.Time
}

// Metrics mirrors the four-tuple shape shared across every engine family.
type Metrics struct {
	NsPerOp   float64
	OpsPerSec float64
	Speedup   float64
	TotalOps  int64
}

const baselineNsPerOp = 15500.0

// New1D creates a 1D lattice of num_nodes cells.
func New1D(numNodes int, p Params) (*Engine, error) {
	return newEngine(Dim1D, numNodes, 1, 1, p)
}

// New2D creates an Nx by Ny lattice.
func New2D(nx, ny int, p Params) (*Engine, error) {
	return newEngine(Dim2D, nx, ny, 1, p)
}

// New3D creates an Nx by Ny by Nz lattice.
func New3D(nx, ny, nz int, p Params) (*Engine, error) {
	return newEngine(Dim3D, nx, ny, nz, p)
}

func newEngine(dim Dim, nx, ny, nz int, p Params) (*Engine, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: got (%d,%d,%d)", ErrInvalidDims, nx, ny, nz)
	}
	total := nx * ny * nz
	if total > MaxCells {
		return nil, fmt.Errorf("%w: %d cells exceeds cap %d", ErrInvalidDims, total, MaxCells)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		dim: dim, nx: nx, ny: ny, nz: nz, params: p,
		psi: make([]complex128, total), phi: make([]float64, total),
		createdAt: time.Now(),
	}, nil
}

// Dim returns the engine's lattice dimensionality.
func (e *Engine) Dim() Dim { return e.dim }

// Dims returns (Nx, Ny, Nz); Ny/Nz are 1 for lower-dimensional engines.
func (e *Engine) Dims() (int, int, int) { return e.nx, e.ny, e.nz }

// NumCells returns the total lattice cell count.
func (e *Engine) NumCells() int { return len(e.psi) }

// index converts a coordinate to a flat row-major index. coord must be in
// range; callers validate bounds before calling.
func (e *Engine) index(x, y, z int) int {
	return x + e.nx*(y+e.ny*z)
}

// coord converts a flat row-major index back to a coordinate.
func (e *Engine) coord(idx int) (x, y, z int) {
	x = idx % e.nx
	rest := idx / e.nx
	y = rest % e.ny
	z = rest / e.ny
	return
}

// inBounds reports whether (x,y,z) is a valid coordinate for this
// lattice's dimensionality.
func (e *Engine) inBounds(x, y, z int) bool {
	return x >= 0 && x < e.nx && y >= 0 && y < e.ny && z >= 0 && z < e.nz
}

// SetNodePsi sets psi at a coordinate, rejecting out-of-range indices
// without mutating state.
func (e *Engine) SetNodePsi(x, y, z int, psi complex128) error {
	if !e.inBounds(x, y, z) {
		return fmt.Errorf("igsoa: coordinate (%d,%d,%d) out of range", x, y, z)
	}
	e.psi[e.index(x, y, z)] = psi
	return nil
}

// GetNodePsi reads psi at a coordinate.
func (e *Engine) GetNodePsi(x, y, z int) (complex128, error) {
	if !e.inBounds(x, y, z) {
		return 0, fmt.Errorf("igsoa: coordinate (%d,%d,%d) out of range", x, y, z)
	}
	return e.psi[e.index(x, y, z)], nil
}

// GetMetrics returns the metrics recorded by the last RunMission call.
func (e *Engine) GetMetrics() Metrics { return e.lastMetrics }
