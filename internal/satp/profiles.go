package satp

import (
	"fmt"
	"math"

	"github.com/jihwan-dase/dase-core/internal/numerics"
)

type Mode string

const (
	ModeOverwrite Mode = "overwrite"
	ModeAdd       Mode = "add"
	ModeBlend     Mode = "blend"
)

func validMode(m Mode) bool {
	switch m {
	case ModeOverwrite, ModeAdd, ModeBlend:
		return true
	}
	return false
}

// ProfileArgs is the closed set of arguments a SATP profile may read.
type ProfileArgs struct {
	Amplitude float64
	Velocity  float64
	CenterX   float64
	CenterY   float64
	CenterZ   float64
	Sigma     float64
	Mode      Mode
	Beta      float64

	Phi, PhiDot, H, HDot float64

	PhiAmplitude float64
	HAmplitude   float64
	Seed         int64

	Zones []ThreeZone
}

// ThreeZone is one rectangular zone of a three_zone_source profile.
type ThreeZone struct {
	Center    float64
	Width     float64
	Amplitude float64
	Frequency float64
	TStart    float64
	TEnd      float64
}

type profileFunc func(e *Engine, a ProfileArgs) error

var profiles = map[string]profileFunc{
	"vacuum":                   vacuumProfile,
	"phi_gaussian":             phiGaussianProfile,
	"phi_circular_gaussian":    phiGaussianProfile,
	"phi_spherical_gaussian":   phiGaussianProfile,
	"higgs_gaussian":           higgsGaussianProfile,
	"higgs_circular_gaussian":  higgsGaussianProfile,
	"higgs_spherical_gaussian": higgsGaussianProfile,
	"three_zone_source":        threeZoneSourceProfile,
	"uniform":                  uniformProfile,
	"random_perturbation":      randomPerturbationProfile,
}

// SetState applies the named profile under the given mode.
func (e *Engine) SetState(profile string, a ProfileArgs) error {
	fn, ok := profiles[profile]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	if a.Mode == "" {
		a.Mode = ModeOverwrite
	}
	if !validMode(a.Mode) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, a.Mode)
	}
	if a.Mode == ModeBlend && (a.Beta < 0 || a.Beta > 1) {
		return fmt.Errorf("satp: blend beta must be in [0,1], got %v: %w", a.Beta, ErrInvalidParameter)
	}
	return fn(e, a)
}

func blend1(cur, next float64, a ProfileArgs) float64 {
	switch a.Mode {
	case ModeAdd:
		return cur + next
	case ModeBlend:
		return (1-a.Beta)*cur + a.Beta*next
	default:
		return next
	}
}

func vacuumProfile(e *Engine, a ProfileArgs) error {
	vev := e.params.HVev()
	for i := range e.phi {
		e.phi[i] = blend1(e.phi[i], 0, a)
		e.phiDot[i] = blend1(e.phiDot[i], 0, a)
		e.h[i] = blend1(e.h[i], vev, a)
		e.hDot[i] = blend1(e.hDot[i], 0, a)
	}
	return nil
}

func gaussianAt(e *Engine, idx int, amplitude, sigma float64, a ProfileArgs) float64 {
	if sigma <= 0 {
		sigma = 1
	}
	x, y, z := e.coord(idx)
	dx := float64(x) - a.CenterX
	dy := float64(y) - a.CenterY
	dz := float64(z) - a.CenterZ
	r2 := dx * dx
	if e.dim >= Dim2D {
		r2 += dy * dy
	}
	if e.dim == Dim3D {
		r2 += dz * dz
	}
	return amplitude * math.Exp(-0.5*r2/(sigma*sigma))
}

func phiGaussianProfile(e *Engine, a ProfileArgs) error {
	for idx := range e.phi {
		g := gaussianAt(e, idx, a.Amplitude, a.Sigma, a)
		e.phi[idx] = blend1(e.phi[idx], g, a)
		e.phiDot[idx] = blend1(e.phiDot[idx], a.Velocity, a)
	}
	return nil
}

func higgsGaussianProfile(e *Engine, a ProfileArgs) error {
	vev := e.params.HVev()
	for idx := range e.h {
		g := gaussianAt(e, idx, a.Amplitude, a.Sigma, a)
		e.h[idx] = blend1(e.h[idx], vev+g, a)
		e.hDot[idx] = blend1(e.hDot[idx], a.Velocity, a)
	}
	return nil
}

func uniformProfile(e *Engine, a ProfileArgs) error {
	for idx := range e.phi {
		e.phi[idx] = blend1(e.phi[idx], a.Phi, a)
		e.phiDot[idx] = blend1(e.phiDot[idx], a.PhiDot, a)
		e.h[idx] = blend1(e.h[idx], a.H, a)
		e.hDot[idx] = blend1(e.hDot[idx], a.HDot, a)
	}
	return nil
}

func randomPerturbationProfile(e *Engine, a ProfileArgs) error {
	phiGen := numerics.SeededNormal(0, a.PhiAmplitude, a.Seed)
	hGen := numerics.SeededNormal(0, a.HAmplitude, a.Seed+1)
	vev := e.params.HVev()
	for idx := range e.phi {
		e.phi[idx] = blend1(e.phi[idx], phiGen(), a)
		e.h[idx] = blend1(e.h[idx], vev+hGen(), a)
	}
	return nil
}

// threeZoneSourceProfile registers a set of activation-windowed source
// zones; 1D only, per spec.
func threeZoneSourceProfile(e *Engine, a ProfileArgs) error {
	if e.dim != Dim1D {
		return fmt.Errorf("%w: three_zone_source is 1D only", ErrWrongDim)
	}
	zones := make([]sourceTerm, 0, len(a.Zones))
	for _, z := range a.Zones {
		zones = append(zones, sourceTerm{
			center: z.Center, width: z.Width, amplitude: z.Amplitude,
			frequency: z.Frequency, tStart: z.TStart, tEnd: z.TEnd,
		})
	}
	if a.Mode == ModeAdd {
		e.sources = append(e.sources, zones...)
	} else {
		e.sources = zones
	}
	return nil
}
