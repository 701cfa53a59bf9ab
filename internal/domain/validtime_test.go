package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddValidTime(t *testing.T) {
	ds := gefsDataset(t)

	out, err := AddValidTime(ds)
	require.NoError(t, err)

	vt, ok := out.Coords[ValidTimeCoord]
	require.True(t, ok)
	assert.Equal(t, []string{"init_time", "lead_time"}, vt.Dims)
	assert.Equal(t, []int{1, 4}, vt.Shape)

	want := []time.Time{
		testInit.Add(3 * time.Hour),
		testInit.Add(6 * time.Hour),
		testInit.Add(9 * time.Hour),
		testInit.Add(12 * time.Hour),
	}
	require.Len(t, vt.Times, len(want))
	for i, w := range want {
		assert.True(t, vt.Times[i].Equal(w), "valid_time[%d] = %v, want %v", i, vt.Times[i], w)
	}

	// Input is left untouched.
	_, ok = ds.Coords[ValidTimeCoord]
	assert.False(t, ok)
}

func TestAddValidTimeIdempotent(t *testing.T) {
	ds := gefsDataset(t)

	once, err := AddValidTime(ds)
	require.NoError(t, err)
	twice, err := AddValidTime(once)
	require.NoError(t, err)

	assert.Same(t, once, twice)
}

func TestAddValidTimeGenericNames(t *testing.T) {
	ds := genericDataset(t)

	out, err := AddValidTime(ds)
	require.NoError(t, err)

	vt := out.Coords[ValidTimeCoord]
	assert.Equal(t, []string{"time", "step"}, vt.Dims)
	assert.True(t, vt.Times[0].Equal(testInit.Add(3*time.Hour)))
}

func TestAddValidTimeMissingStepAxis(t *testing.T) {
	ds := NewDataset()
	ds.SetCoord("init_time", Coord{Kind: CoordTime, Dims: []string{"init_time"}, Shape: []int{1}, Times: []time.Time{testInit}})

	_, err := AddValidTime(ds)
	var axisErr *AxisNotFoundError
	require.ErrorAs(t, err, &axisErr)
	assert.Equal(t, RoleStep, axisErr.Role)
}
