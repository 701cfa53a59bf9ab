package domain

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SummaryMode selects the ensemble reduction.
type SummaryMode int

const (
	// SummaryPercentiles reduces the ensemble axis to p10/p50/p90.
	SummaryPercentiles SummaryMode = iota
	// SummaryMeanStd reduces the ensemble axis to mean and population
	// standard deviation.
	SummaryMeanStd
)

// DefaultPercentiles are the percentiles produced by SummaryPercentiles.
var DefaultPercentiles = []float64{10, 50, 90}

// Summarize reduces the ensemble-member axis of field to summary statistics.
// Every coordinate not varying along the ensemble axis is preserved in the
// output, so point selection on latitude/longitude still works afterward.
func Summarize(field *Array, mode SummaryMode) (*Dataset, error) {
	switch mode {
	case SummaryMeanStd:
		return SummarizeMeanStd(field)
	default:
		return SummarizePercentiles(field, DefaultPercentiles)
	}
}

// SummarizePercentiles reduces the ensemble axis to one variable per
// requested percentile, named p{int(p)}. Percentiles use the standard
// linear-interpolation definition over the sorted finite member values;
// missing members are skipped and an all-missing cell yields NaN.
func SummarizePercentiles(field *Array, percentiles []float64) (*Dataset, error) {
	red, err := newEnsembleReduction(field)
	if err != nil {
		return nil, err
	}

	out := NewDataset()
	for _, p := range percentiles {
		name := fmt.Sprintf("p%d", int(p))
		pv := p
		out.Vars[name] = red.reduce(name, func(members []float64) float64 {
			return percentile(members, pv)
		})
	}
	red.attachCoords(out)
	return out, nil
}

// SummarizeMeanStd reduces the ensemble axis to mean and std variables.
// The standard deviation is the population form (divisor n), matching the
// upstream product definition.
func SummarizeMeanStd(field *Array) (*Dataset, error) {
	red, err := newEnsembleReduction(field)
	if err != nil {
		return nil, err
	}

	out := NewDataset()
	out.Vars["mean"] = red.reduce("mean", func(members []float64) float64 {
		return stat.Mean(members, nil)
	})
	out.Vars["std"] = red.reduce("std", func(members []float64) float64 {
		return stat.PopStdDev(members, nil)
	})
	red.attachCoords(out)
	return out, nil
}

// ensembleReduction precomputes the index bookkeeping for collapsing the
// ensemble axis of one field.
type ensembleReduction struct {
	field    *Array
	ensDim   string
	axis     int
	members  int
	outDims  []string
	outShape []int
}

func newEnsembleReduction(field *Array) (*ensembleReduction, error) {
	ensName, err := Resolve(field, RoleEnsemble)
	if err != nil {
		return nil, err
	}
	ensDim := ensName
	if c, ok := field.Coords[ensName]; ok && len(c.Dims) == 1 {
		ensDim = c.Dims[0]
	}
	axis, ok := field.AxisIndex(ensDim)
	if !ok {
		return nil, fmt.Errorf("array %s has no dimension %q", field.Name, ensDim)
	}
	return &ensembleReduction{
		field:    field,
		ensDim:   ensDim,
		axis:     axis,
		members:  field.Shape[axis],
		outDims:  removeAt(field.Dims, axis),
		outShape: removeAt(field.Shape, axis),
	}, nil
}

// reduce applies fn to the sorted finite member values at every non-ensemble
// position. Positions with no finite member yield NaN.
func (r *ensembleReduction) reduce(name string, fn func(members []float64) float64) *Array {
	st := strides(r.field.Shape)
	memberStride := st[r.axis]
	outer := 1
	for i := 0; i < r.axis; i++ {
		outer *= r.field.Shape[i]
	}

	outSize := outer * memberStride
	data := make([]float64, outSize)
	members := make([]float64, 0, r.members)

	pos := 0
	for o := 0; o < outer; o++ {
		for in := 0; in < memberStride; in++ {
			base := o*r.members*memberStride + in
			members = members[:0]
			for m := 0; m < r.members; m++ {
				if v := r.field.Data[base+m*memberStride]; !math.IsNaN(v) {
					members = append(members, v)
				}
			}
			if len(members) == 0 {
				data[pos] = math.NaN()
			} else {
				sort.Float64s(members)
				data[pos] = fn(members)
			}
			pos++
		}
	}

	return &Array{
		Name:   name,
		Dims:   append([]string(nil), r.outDims...),
		Shape:  append([]int(nil), r.outShape...),
		Data:   data,
		Coords: map[string]Coord{},
		Units:  r.field.Units,
	}
}

// attachCoords re-attaches every input coordinate that does not vary along
// the ensemble axis. Done explicitly: the reduction itself builds bare
// arrays and must not be trusted to propagate coordinates.
func (r *ensembleReduction) attachCoords(out *Dataset) {
	for name, c := range r.field.Coords {
		if c.hasDim(r.ensDim) {
			continue
		}
		out.SetCoord(name, c)
	}
}

// percentile computes the p-th percentile of sorted values using the
// standard linear-interpolation definition: rank h = (n-1)*p/100 with
// interpolation between the surrounding order statistics.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= n {
		return sorted[n-1]
	}
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
