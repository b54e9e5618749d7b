package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCollapseClampsPerCell(t *testing.T) {
	f := Field{Values: []float64{1, 0.05, 0}}
	require.NoError(t, f.ApplyCollapse([]float64{1, 1, 1}, 0.5))
	assert.Equal(t, []float64{0.5, 0, 0}, f.Values)
}

func TestApplyCollapseRejectsMaskOutOfRange(t *testing.T) {
	f := Field{Values: []float64{1, 1}}
	err := f.ApplyCollapse([]float64{1, 1.5}, 0.1)
	assert.ErrorIs(t, err, ErrMaskOutOfRange)
	assert.Equal(t, []float64{1, 1}, f.Values)
}

func TestApplyCollapseMaskRejectsExceededDual(t *testing.T) {
	f := Field{Values: []float64{1, 1}}
	err := f.ApplyCollapseMask([]float64{0.6}, []float64{0.6}, 0.5)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	err = f.ApplyCollapseMask([]float64{0.6, 0}, []float64{0.6, 0}, 0.5)
	assert.ErrorIs(t, err, ErrDualMaskExceeded)
}

func TestApplyCollapseMaskSubtracts(t *testing.T) {
	f := Field{Values: []float64{1, 1}}
	require.NoError(t, f.ApplyCollapseMask([]float64{0.5, 0}, []float64{0, 0.5}, 1.0))
	assert.Equal(t, []float64{0.5, 0.5}, f.Values)
}

func TestRouteFromFieldRejectsNegativeAlpha(t *testing.T) {
	f := Field{Values: []float64{0, 0}}
	src := Field{Values: []float64{1, 1}}
	err := f.RouteFromField(src, []float64{1, 1}, -0.1)
	assert.ErrorIs(t, err, ErrNegativeScalar)
}

func TestRouteFromFieldAdds(t *testing.T) {
	f := Field{Values: []float64{0, 0}}
	src := Field{Values: []float64{2, 4}}
	require.NoError(t, f.RouteFromField(src, []float64{0.5, 1}, 0.5))
	assert.Equal(t, []float64{0.5, 2}, f.Values)
}

func TestScaleAllAndAddUniformRejectNegative(t *testing.T) {
	f := Field{Values: []float64{1}}
	assert.ErrorIs(t, f.ScaleAll(-1), ErrNegativeScalar)
	assert.ErrorIs(t, f.AddUniform(-1), ErrNegativeScalar)
}

func TestStabilityCoherenceDivergence(t *testing.T) {
	f := Field{Values: []float64{1, 1, 1, 1}}
	assert.InDelta(t, 1.0, f.Coherence(), 1e-9)
	assert.Equal(t, 0.0, f.Divergence())
	assert.InDelta(t, 0.6, f.Stability(10), 1e-9)
}

func TestStabilityGuardsZeroCapacity(t *testing.T) {
	f := Field{Values: []float64{1}}
	assert.Equal(t, 1.0, f.Stability(0))
}
