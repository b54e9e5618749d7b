package satp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvolveRejectsNegativeSteps(t *testing.T) {
	e, err := New1D(8, DefaultParams())
	require.NoError(t, err)
	assert.ErrorIs(t, e.Evolve(-1), ErrInvalidMission)
}

// S4: a vacuum-profile 1D engine evolved under its own equations of
// motion stays at the fixed point: phi_rms == 0, h_rms == h_vev.
func TestVacuumScenario(t *testing.T) {
	e, err := New1D(1024, DefaultParams())
	require.NoError(t, err)
	require.NoError(t, e.SetState("vacuum", ProfileArgs{}))
	require.NoError(t, e.Evolve(50))

	st := e.GetSatpState()
	assert.InDelta(t, 0.0, st.PhiRMS, 1e-12)
	assert.InDelta(t, e.params.HVev(), st.HRMS, 1e-12)
}

func TestGetSatpStateGuardsEmptyRMS(t *testing.T) {
	e, err := New1D(4, DefaultParams())
	require.NoError(t, err)
	e.phi = nil
	e.h = nil
	st := e.GetSatpState()
	assert.Equal(t, 0.0, st.PhiRMS)
	assert.Equal(t, 0.0, st.HRMS)
}

func TestEvolveProducesFiniteFields(t *testing.T) {
	e, err := New2D(8, 8, DefaultParams())
	require.NoError(t, err)
	require.NoError(t, e.SetState("phi_circular_gaussian", ProfileArgs{Amplitude: 0.5, CenterX: 4, CenterY: 4, Sigma: 1.5}))
	require.NoError(t, e.Evolve(10))

	st := e.GetSatpState()
	for i := range st.Phi {
		assert.False(t, st.Phi[i] != st.Phi[i])
		assert.False(t, st.H[i] != st.H[i])
	}
}

func TestThreeZoneSourceRejectsNon1D(t *testing.T) {
	e, err := New2D(8, 8, DefaultParams())
	require.NoError(t, err)
	err = e.SetState("three_zone_source", ProfileArgs{Zones: []ThreeZone{{Center: 4, Width: 1, Amplitude: 1, TStart: 0, TEnd: 1}}})
	assert.ErrorIs(t, err, ErrWrongDim)
}

func TestThreeZoneSourceActivatesWithinWindow(t *testing.T) {
	e, err := New1D(16, DefaultParams())
	require.NoError(t, err)
	require.NoError(t, e.SetState("three_zone_source", ProfileArgs{Zones: []ThreeZone{
		{Center: 8, Width: 3, Amplitude: 10, Frequency: 50, TStart: 0, TEnd: 1},
	}}))

	before := e.GetSatpState().Phi[8]
	require.NoError(t, e.Evolve(5))
	after := e.GetSatpState().Phi[8]
	assert.NotEqual(t, before, after)
}

func TestRandomPerturbationDeterministic(t *testing.T) {
	e1, err := New1D(16, DefaultParams())
	require.NoError(t, err)
	e2, err := New1D(16, DefaultParams())
	require.NoError(t, err)

	require.NoError(t, e1.SetState("random_perturbation", ProfileArgs{PhiAmplitude: 1, HAmplitude: 1, Seed: 7}))
	require.NoError(t, e2.SetState("random_perturbation", ProfileArgs{PhiAmplitude: 1, HAmplitude: 1, Seed: 7}))

	assert.Equal(t, e1.GetSatpState().Phi, e2.GetSatpState().Phi)
	assert.Equal(t, e1.GetSatpState().H, e2.GetSatpState().H)
}
