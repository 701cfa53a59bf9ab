package domain

import (
	"math"
	"testing"
	"time"
)

// testInit is the initialization time used by the synthetic datasets.
var testInit = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

// gefsDataset builds a synthetic dataset mimicking the GEFS naming
// convention: init_time x lead_time x ensemble_member x latitude x longitude.
// Temperature ramps with latitude; precipitation rate is a constant 0.1 mm/s.
func gefsDataset(t *testing.T) *Dataset {
	t.Helper()
	return syntheticDataset(t, "init_time", "lead_time", "ensemble_member", false)
}

// genericDataset uses the generic convention: time x step x ensemble.
func genericDataset(t *testing.T) *Dataset {
	t.Helper()
	return syntheticDataset(t, "time", "step", "ensemble", false)
}

// descendingDataset has a north-to-south latitude axis, as GEFS publishes.
func descendingDataset(t *testing.T) *Dataset {
	t.Helper()
	return syntheticDataset(t, "init_time", "lead_time", "ensemble_member", true)
}

func syntheticDataset(t *testing.T, timeDim, stepDim, ensDim string, latDescending bool) *Dataset {
	t.Helper()

	steps := []time.Duration{3 * time.Hour, 6 * time.Hour, 9 * time.Hour, 12 * time.Hour}
	members := []float64{0, 1, 2}
	lats := linspace(40, 52, 25)
	if latDescending {
		lats = reverse(lats)
	}
	lons := linspace(-120, -110, 21)

	dims := []string{timeDim, stepDim, ensDim, "latitude", "longitude"}
	shape := []int{1, len(steps), len(members), len(lats), len(lons)}
	size := 1
	for _, s := range shape {
		size *= s
	}

	temp := make([]float64, size)
	rate := make([]float64, size)
	i := 0
	for s := 0; s < len(steps); s++ {
		for m := range members {
			for la := range lats {
				for lo := range lons {
					temp[i] = 10 + 0.5*lats[la] + float64(m) - 0.1*float64(s) + 0.01*float64(lo)
					rate[i] = 0.1
					i++
				}
			}
		}
	}

	ds := NewDataset()
	ds.SetCoord(timeDim, Coord{Kind: CoordTime, Dims: []string{timeDim}, Shape: []int{1}, Times: []time.Time{testInit}})
	ds.SetCoord(stepDim, Coord{Kind: CoordDuration, Dims: []string{stepDim}, Shape: []int{len(steps)}, Durs: steps})
	ds.SetCoord(ensDim, Coord{Kind: CoordFloat, Dims: []string{ensDim}, Shape: []int{len(members)}, Floats: members})
	ds.SetCoord("latitude", Coord{Kind: CoordFloat, Dims: []string{"latitude"}, Shape: []int{len(lats)}, Floats: lats})
	ds.SetCoord("longitude", Coord{Kind: CoordFloat, Dims: []string{"longitude"}, Shape: []int{len(lons)}, Floats: lons})

	tv, err := NewArray("temperature_2m", dims, shape, temp)
	if err != nil {
		t.Fatalf("build temperature: %v", err)
	}
	tv.Units = "C"
	pv, err := NewArray("precipitation_surface", dims, shape, rate)
	if err != nil {
		t.Fatalf("build precipitation: %v", err)
	}
	pv.Units = "kg m-2 s-1"

	ds.AddVar(tv)
	ds.AddVar(pv)
	return ds
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func reverse(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[len(vals)-1-i] = v
	}
	return out
}

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}
