package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memberField builds an (ensemble_member x latitude) field where member m at
// latitude index la holds base[la] + m.
func memberField(t *testing.T, members int, base []float64) *Array {
	t.Helper()
	data := make([]float64, 0, members*len(base))
	ids := make([]float64, members)
	for m := 0; m < members; m++ {
		ids[m] = float64(m)
		for _, b := range base {
			data = append(data, b+float64(m))
		}
	}
	a, err := NewArray("temperature_2m", []string{"ensemble_member", "latitude"}, []int{members, len(base)}, data)
	require.NoError(t, err)
	a.Coords["ensemble_member"] = Coord{Kind: CoordFloat, Dims: []string{"ensemble_member"}, Shape: []int{members}, Floats: ids}
	lats := linspace(40, 44, len(base))
	a.Coords["latitude"] = Coord{Kind: CoordFloat, Dims: []string{"latitude"}, Shape: []int{len(base)}, Floats: lats}
	return a
}

func TestSummarizePercentileOrder(t *testing.T) {
	field := memberField(t, 5, []float64{0, 10, 20})

	out, err := Summarize(field, SummaryPercentiles)
	require.NoError(t, err)

	p10, ok := out.Var("p10")
	require.True(t, ok)
	p50, ok := out.Var("p50")
	require.True(t, ok)
	p90, ok := out.Var("p90")
	require.True(t, ok)

	for i := range p50.Data {
		assert.LessOrEqual(t, p10.Data[i], p50.Data[i], "cell %d", i)
		assert.LessOrEqual(t, p50.Data[i], p90.Data[i], "cell %d", i)
	}
}

func TestSummarizeMedianExact(t *testing.T) {
	// Members at base+{0..4}: the median is base+2, and the linear-
	// interpolation percentiles are base+0.4 (p10) and base+3.6 (p90).
	field := memberField(t, 5, []float64{0, 10})

	out, err := Summarize(field, SummaryPercentiles)
	require.NoError(t, err)

	p10, _ := out.Var("p10")
	p50, _ := out.Var("p50")
	p90, _ := out.Var("p90")
	assert.InDelta(t, 2.0, p50.Data[0], 1e-9)
	assert.InDelta(t, 12.0, p50.Data[1], 1e-9)
	assert.InDelta(t, 0.4, p10.Data[0], 1e-9)
	assert.InDelta(t, 3.6, p90.Data[0], 1e-9)
}

func TestSummarizePreservesCoordinates(t *testing.T) {
	ds := gefsDataset(t)
	field, _ := ds.Var("temperature_2m")

	out, err := Summarize(field, SummaryPercentiles)
	require.NoError(t, err)

	for _, name := range []string{"latitude", "longitude", "init_time", "lead_time"} {
		_, ok := out.Coords[name]
		assert.True(t, ok, "coordinate %s dropped by reduction", name)
	}
	_, ok := out.Coords["ensemble_member"]
	assert.False(t, ok, "ensemble coordinate must be reduced away")

	// Nearest-neighbor point selection still works on the summary.
	point, err := out.SelNearest("latitude", 43.6)
	require.NoError(t, err)
	point, err = point.SelNearest("longitude", -116.2)
	require.NoError(t, err)

	p50, ok := point.Var("p50")
	require.True(t, ok)
	assert.Equal(t, []string{"init_time", "lead_time"}, p50.Dims)
}

func TestSummarizeMeanStd(t *testing.T) {
	field := memberField(t, 5, []float64{0})

	out, err := Summarize(field, SummaryMeanStd)
	require.NoError(t, err)

	mean, ok := out.Var("mean")
	require.True(t, ok)
	std, ok := out.Var("std")
	require.True(t, ok)

	// Members 0..4: mean 2, population std sqrt(2).
	assert.InDelta(t, 2.0, mean.Data[0], 1e-9)
	assert.InDelta(t, math.Sqrt2, std.Data[0], 1e-9)
}

func TestSummarizeSkipsMissingMembers(t *testing.T) {
	field := memberField(t, 5, []float64{0})
	field.Data[0] = math.NaN() // member 0
	field.Data[4] = math.NaN() // member 4

	out, err := Summarize(field, SummaryPercentiles)
	require.NoError(t, err)

	p50, _ := out.Var("p50")
	assert.InDelta(t, 2.0, p50.Data[0], 1e-9)
}

func TestSummarizeAllMissing(t *testing.T) {
	field := memberField(t, 3, []float64{0})
	for i := range field.Data {
		field.Data[i] = math.NaN()
	}

	out, err := Summarize(field, SummaryPercentiles)
	require.NoError(t, err)

	p50, _ := out.Var("p50")
	assert.True(t, math.IsNaN(p50.Data[0]))
}

func TestSummarizeMissingEnsembleAxis(t *testing.T) {
	a, err := NewArray("p50", []string{"latitude"}, []int{2}, []float64{1, 2})
	require.NoError(t, err)
	a.Coords["latitude"] = Coord{Kind: CoordFloat, Dims: []string{"latitude"}, Shape: []int{2}, Floats: []float64{40, 41}}

	_, err = Summarize(a, SummaryPercentiles)
	var axisErr *AxisNotFoundError
	require.ErrorAs(t, err, &axisErr)
	assert.Equal(t, RoleEnsemble, axisErr.Role)
}

func TestSummarizeGenericEnsembleName(t *testing.T) {
	ds := genericDataset(t)
	field, _ := ds.Var("temperature_2m")

	out, err := Summarize(field, SummaryPercentiles)
	require.NoError(t, err)

	p50, ok := out.Var("p50")
	require.True(t, ok)
	assert.Equal(t, []string{"time", "step", "latitude", "longitude"}, p50.Dims)
}
