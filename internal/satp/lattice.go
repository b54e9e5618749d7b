// Package satp implements the SATP+Higgs coupled scalar-field lattice
// engines (1D/2D/3D), mirroring the IGSOA engine's creation/state/metrics
// contract but evolving two coupled real fields instead of one complex
// field.
package satp

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MaxCells mirrors the IGSOA cell cap; both families share a
// process-wide node budget.
const MaxCells = 1 << 20

type Dim int

const (
	Dim1D Dim = 1
	Dim2D Dim = 2
	Dim3D Dim = 3
)

var (
	ErrInvalidDims      = errors.New("satp: lattice dimensions must be positive and within the cell cap")
	ErrInvalidParameter = errors.New("satp: physics parameter must be finite")
	ErrInvalidMission   = errors.New("satp: num_steps must be >= 0")
	ErrUnknownProfile   = errors.New("satp: unknown profile")
	ErrUnknownMode      = errors.New("satp: unknown mode")
	ErrWrongDim         = errors.New("satp: operation not supported at this lattice dimensionality")
)

// Params holds the physics constants shared by every SATP engine. HVev
// is derived, never set directly.
type Params struct {
	C        float64 // wave speed
	GammaPhi float64 // phi dissipation, >= 0
	GammaH   float64 // h dissipation, >= 0
	Lambda   float64 // phi-h coupling
	Mu2      float64 // Higgs mass^2, may be negative
	LambdaH  float64 // Higgs self-coupling, > 0
	Dx       float64 // lattice spacing, > 0
	Dt       float64 // time step, > 0
}

// DefaultParams applies the spec defaults: dx=0.1, dt=0.001, with a
// symmetry-broken Higgs sector (Mu2 < 0) so HVev is non-zero.
func DefaultParams() Params {
	return Params{
		C: 1.0, GammaPhi: 0.01, GammaH: 0.01, Lambda: 0.1,
		Mu2: -1.0, LambdaH: 1.0, Dx: 0.1, Dt: 0.001,
	}
}

// HVev returns the Higgs vacuum expectation value derived from (Mu2,
// LambdaH): sqrt(-Mu2/LambdaH) when Mu2 < 0, else 0.
func (p Params) HVev() float64 {
	if p.Mu2 < 0 {
		return math.Sqrt(-p.Mu2 / p.LambdaH)
	}
	return 0
}

func (p Params) v2() float64 {
	if p.Mu2 < 0 {
		return -p.Mu2 / p.LambdaH
	}
	return 0
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Validate checks finiteness and the positivity constraints on
// dissipation, self-coupling, spacing, and time step.
func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"c": p.C, "gamma_phi": p.GammaPhi, "gamma_h": p.GammaH,
		"lambda": p.Lambda, "mu2": p.Mu2, "lambda_h": p.LambdaH,
		"dx": p.Dx, "dt": p.Dt,
	} {
		if !isFinite(v) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, name, v)
		}
	}
	if p.GammaPhi < 0 {
		return fmt.Errorf("%w: gamma_phi must be >= 0, got %v", ErrInvalidParameter, p.GammaPhi)
	}
	if p.GammaH < 0 {
		return fmt.Errorf("%w: gamma_h must be >= 0, got %v", ErrInvalidParameter, p.GammaH)
	}
	if p.LambdaH <= 0 {
		return fmt.Errorf("%w: lambda_h must be > 0, got %v", ErrInvalidParameter, p.LambdaH)
	}
	if p.Dx <= 0 {
		return fmt.Errorf("%w: dx must be > 0, got %v", ErrInvalidParameter, p.Dx)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be > 0, got %v", ErrInvalidParameter, p.Dt)
	}
	return nil
}

// sourceTerm is a single rectangular zone of a three_zone_source
// profile, 1D only.
type sourceTerm struct {
	center     float64
	width      float64
	amplitude  float64
	frequency  float64
	tStart     float64
	tEnd       float64
}

// Engine is the SATP lattice engine, shared across 1D/2D/3D.
type Engine struct {
	dim        Dim
	nx, ny, nz int
	params     Params

	phi, phiDot []float64
	h, hDot     []float64

	sources         []sourceTerm // 1D only
	activeSourceBuf []float64    // per-step accel contribution, reused across Evolve calls
	currentTime     float64

	lastMetrics Metrics
	createdAt   time.Time
}

// Metrics mirrors the four-tuple shape shared across every engine family.
type Metrics struct {
	NsPerOp   float64
	OpsPerSec float64
	Speedup   float64
	TotalOps  int64
}

const baselineNsPerOp = 15500.0

func New1D(numNodes int, p Params) (*Engine, error) { return newEngine(Dim1D, numNodes, 1, 1, p) }
func New2D(nx, ny int, p Params) (*Engine, error)   { return newEngine(Dim2D, nx, ny, 1, p) }
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
	h := make([]float64, total)
	vev := p.HVev()
	for i := range h {
		h[i] = vev
	}
	return &Engine{
		dim: dim, nx: nx, ny: ny, nz: nz, params: p,
		phi: make([]float64, total), phiDot: make([]float64, total),
		h: h, hDot: make([]float64, total),
		createdAt: time.Now(),
	}, nil
}

func (e *Engine) Dim() Dim                    { return e.dim }
func (e *Engine) Dims() (int, int, int)       { return e.nx, e.ny, e.nz }
func (e *Engine) NumCells() int               { return len(e.phi) }
func (e *Engine) Params() Params              { return e.params }
func (e *Engine) GetMetrics() Metrics         { return e.lastMetrics }

func (e *Engine) index(x, y, z int) int { return x + e.nx*(y+e.ny*z) }

func (e *Engine) coord(idx int) (x, y, z int) {
	x = idx % e.nx
	rest := idx / e.nx
	y = rest % e.ny
	z = rest / e.ny
	return
}

func (e *Engine) inBounds(x, y, z int) bool {
	return x >= 0 && x < e.nx && y >= 0 && y < e.ny && z >= 0 && z < e.nz
}
