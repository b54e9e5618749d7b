package igsoa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidDims(t *testing.T) {
	_, err := New2D(0, 10, DefaultParams())
	assert.ErrorIs(t, err, ErrInvalidDims)

	_, err = New3D(200, 200, 200, DefaultParams())
	assert.ErrorIs(t, err, ErrInvalidDims)
}

func TestNewRejectsInvalidParams(t *testing.T) {
	bad := DefaultParams()
	bad.Rc = -1
	_, err := New1D(10, bad)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	bad = DefaultParams()
	bad.Gamma = -0.1
	_, err = New1D(10, bad)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestCoordIndexRoundTrip(t *testing.T) {
	e, err := New3D(4, 5, 6, DefaultParams())
	require.NoError(t, err)

	for z := 0; z < 6; z++ {
		for y := 0; y < 5; y++ {
			for x := 0; x < 4; x++ {
				idx := e.index(x, y, z)
				gx, gy, gz := e.coord(idx)
				assert.Equal(t, x, gx)
				assert.Equal(t, y, gy)
				assert.Equal(t, z, gz)
			}
		}
	}
}

func TestSetGetNodePsiRejectsOutOfRange(t *testing.T) {
	e, err := New2D(4, 4, DefaultParams())
	require.NoError(t, err)

	require.NoError(t, e.SetNodePsi(1, 1, 0, complex(1, 2)))
	got, err := e.GetNodePsi(1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, complex(1, 2), got)

	_, err = e.GetNodePsi(10, 10, 0)
	assert.Error(t, err)
	err = e.SetNodePsi(-1, 0, 0, 0)
	assert.Error(t, err)
}
