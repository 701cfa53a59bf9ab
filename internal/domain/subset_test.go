package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertContained(t *testing.T, ds *Dataset, latMin, latMax, lonMin, lonMax float64) {
	t.Helper()
	for _, v := range ds.Coords["latitude"].Floats {
		assert.GreaterOrEqual(t, v, latMin)
		assert.LessOrEqual(t, v, latMax)
	}
	for _, v := range ds.Coords["longitude"].Floats {
		assert.GreaterOrEqual(t, v, lonMin)
		assert.LessOrEqual(t, v, lonMax)
	}
}

func TestSubsetBBoxAscending(t *testing.T) {
	ds := gefsDataset(t)

	sub, err := SubsetBBox(ds, 42, 48, -118, -112)
	require.NoError(t, err)

	assertContained(t, sub, 42, 48, -118, -112)
	assert.NotEmpty(t, sub.Coords["latitude"].Floats)
	assert.NotEmpty(t, sub.Coords["longitude"].Floats)
}

func TestSubsetBBoxDescending(t *testing.T) {
	ds := descendingDataset(t)

	sub, err := SubsetBBox(ds, 42, 48, -118, -112)
	require.NoError(t, err)

	assertContained(t, sub, 42, 48, -118, -112)
	lats := sub.Coords["latitude"].Floats
	require.NotEmpty(t, lats)
	// Ordering is preserved, only the range shrinks.
	assert.Greater(t, lats[0], lats[len(lats)-1])
}

func TestSubsetBBoxPreservesStructure(t *testing.T) {
	ds := gefsDataset(t)

	sub, err := SubsetBBox(ds, 42, 48, -118, -112)
	require.NoError(t, err)

	assert.ElementsMatch(t, ds.VarNames(), sub.VarNames())
	for _, name := range []string{"init_time", "lead_time", "ensemble_member"} {
		assert.Equal(t, ds.Coords[name].Len(), sub.Coords[name].Len(), "coord %s", name)
	}

	temp, ok := sub.Var("temperature_2m")
	require.True(t, ok)
	assert.Equal(t, []string{"init_time", "lead_time", "ensemble_member", "latitude", "longitude"}, temp.Dims)
	assert.Equal(t, 1, temp.Shape[0])
	assert.Equal(t, 4, temp.Shape[1])
	assert.Equal(t, 3, temp.Shape[2])
	assert.Equal(t, len(sub.Coords["latitude"].Floats), temp.Shape[3])
	assert.Equal(t, len(sub.Coords["longitude"].Floats), temp.Shape[4])
}

func TestSubsetBBoxValuesFollowCoords(t *testing.T) {
	ds := gefsDataset(t)

	sub, err := SubsetBBox(ds, 42, 48, -118, -112)
	require.NoError(t, err)

	// Temperature encodes latitude; a point pick must agree with it.
	temp, _ := sub.Var("temperature_2m")
	point, err := temp.SelNearest("latitude", 44)
	require.NoError(t, err)
	point, err = point.SelNearest("longitude", -115)
	require.NoError(t, err)

	lat := point.Coords["latitude"].Floats[0]
	lon := point.Coords["longitude"].Floats[0]
	lonIdx := nearestIndex(ds.Coords["longitude"].Floats, lon)
	want := 10 + 0.5*lat + 0 - 0 + 0.01*float64(lonIdx)
	assert.InDelta(t, want, point.Data[0], 1e-9)
}

func TestSubsetBBoxMissingSpatialAxis(t *testing.T) {
	ds := NewDataset()
	ds.SetCoord("init_time", Coord{Kind: CoordTime, Dims: []string{"init_time"}, Shape: []int{1}, Times: []time.Time{testInit}})

	_, err := SubsetBBox(ds, 40, 50, -120, -110)
	var axisErr *AxisNotFoundError
	require.ErrorAs(t, err, &axisErr)
	assert.Equal(t, RoleLat, axisErr.Role)
}
