package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMixerRejectsNegativeCapacity(t *testing.T) {
	_, err := NewMixer(4, -1, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestFirstStepInitializesReferencesAndIsNotTransportReady(t *testing.T) {
	m, err := NewMixer(4, 1.0, 1e-9, 1e-6)
	require.NoError(t, err)
	m.U.Values = []float64{0.25, 0.25, 0.25, 0.25}

	require.NoError(t, m.Step(0.1))
	assert.False(t, m.Metrics().TransportReady)
}

// S5: a single uniform collapse applied to U leaves the triple
// conserved within tolerance, and transport_ready is false on the
// first committed step.
func TestConservationUnderCollapseScenario(t *testing.T) {
	m, err := NewMixer(4, 1.0, 1e-9, 1e-6)
	require.NoError(t, err)
	m.U.Values = []float64{0.25, 0.25, 0.25, 0.25}

	require.NoError(t, m.U.ApplyCollapse([]float64{1, 1, 1, 1}, 0.1))
	require.NoError(t, m.Step(0.1))

	assert.True(t, m.IsConserved(1e-9))
	assert.False(t, m.Metrics().TransportReady)
}

func TestStepRescalesUnderCapacityDeficit(t *testing.T) {
	m, err := NewMixer(2, 1.0, 1e-9, 1e-6)
	require.NoError(t, err)
	m.U.Values = []float64{0.1, 0.1}

	require.NoError(t, m.Step(0))
	assert.True(t, m.IsConserved(1e-9))
}

func TestStepDrainsExcessFromU(t *testing.T) {
	m, err := NewMixer(2, 1.0, 1e-9, 1e-6)
	require.NoError(t, err)
	m.I.Values = []float64{0.5, 0.5}
	m.U.Values = []float64{0.6, 0.6}

	require.NoError(t, m.Step(0))
	assert.True(t, m.IsConserved(1e-9))
}

func TestStepDistributesDeficitWhenUIsZero(t *testing.T) {
	m, err := NewMixer(2, 1.0, 1e-9, 1e-6)
	require.NoError(t, err)
	m.I.Values = []float64{0.2, 0.2}

	require.NoError(t, m.Step(0))
	assert.True(t, m.IsConserved(1e-9))
	assert.Greater(t, m.U.Total(), 0.0)
}

func TestStepRejectsScaleAboveCap(t *testing.T) {
	m, err := NewMixer(2, 100.0, 1e-9, 1e-6)
	require.NoError(t, err)
	m.U.Values = []float64{0.001, 0.001}

	err = m.Step(0)
	assert.ErrorIs(t, err, ErrScaleCapExceeded)
}

func TestTransportReadyLatchesAfterKStableSteps(t *testing.T) {
	m, err := NewMixer(4, 1.0, 1e-3, 1e-2)
	require.NoError(t, err)
	m.I.Values = []float64{0.25, 0.25, 0.25, 0.25}

	for i := 0; i < DefaultRequiredConsecutive+1; i++ {
		require.NoError(t, m.Step(0))
	}
	assert.True(t, m.Metrics().TransportReady)
}
