// Package domain implements the forecast data model: labeled arrays,
// semantic axis resolution, and the derived products (valid time,
// precipitation accumulation, ensemble statistics) served by the API.
package domain

import (
	"fmt"
	"math"
	"time"
)

// CoordKind identifies the value type carried by a coordinate.
type CoordKind int

const (
	CoordFloat CoordKind = iota
	CoordTime
	CoordDuration
)

// Coord holds coordinate values for one or more dimensions. Exactly one of
// Floats, Times, or Durs is populated, according to Kind. Most coordinates
// are 1-D; valid_time spans (init time, lead time).
type Coord struct {
	Kind   CoordKind
	Dims   []string
	Shape  []int
	Floats []float64
	Times  []time.Time
	Durs   []time.Duration
}

// Len returns the total number of coordinate values.
func (c Coord) Len() int {
	n := 1
	for _, s := range c.Shape {
		n *= s
	}
	return n
}

func (c Coord) hasDim(dim string) bool {
	for _, d := range c.Dims {
		if d == dim {
			return true
		}
	}
	return false
}

// selRange returns the coordinate restricted to [lo, hi) along dim.
// Coordinates that do not span dim are returned unchanged.
func (c Coord) selRange(dim string, lo, hi int) Coord {
	axis := -1
	for i, d := range c.Dims {
		if d == dim {
			axis = i
		}
	}
	if axis < 0 {
		return c
	}
	out := c
	out.Shape = append([]int(nil), c.Shape...)
	out.Shape[axis] = hi - lo
	switch c.Kind {
	case CoordFloat:
		out.Floats = selectAxis(c.Floats, c.Shape, axis, lo, hi)
	case CoordTime:
		out.Times = selectAxis(c.Times, c.Shape, axis, lo, hi)
	case CoordDuration:
		out.Durs = selectAxis(c.Durs, c.Shape, axis, lo, hi)
	}
	return out
}

// selIndex returns the coordinate with dim dropped at position i.
func (c Coord) selIndex(dim string, i int) Coord {
	axis := -1
	for j, d := range c.Dims {
		if d == dim {
			axis = j
		}
	}
	if axis < 0 {
		return c
	}
	out := c
	out.Dims = removeAt(c.Dims, axis)
	out.Shape = removeAt(c.Shape, axis)
	switch c.Kind {
	case CoordFloat:
		out.Floats = dropAxis(c.Floats, c.Shape, axis, i)
	case CoordTime:
		out.Times = dropAxis(c.Times, c.Shape, axis, i)
	case CoordDuration:
		out.Durs = dropAxis(c.Durs, c.Shape, axis, i)
	}
	return out
}

// Array is a labeled n-dimensional array: row-major float64 data with named
// dimensions and per-dimension coordinate values.
type Array struct {
	Name   string
	Dims   []string
	Shape  []int
	Data   []float64
	Coords map[string]Coord
	Units  string
}

// NewArray builds an array after checking that the data length matches the
// declared shape.
func NewArray(name string, dims []string, shape []int, data []float64) (*Array, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("array %s: %d dims but %d shape entries", name, len(dims), len(shape))
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(data) {
		return nil, fmt.Errorf("array %s: shape %v implies %d values, got %d", name, shape, n, len(data))
	}
	return &Array{
		Name:   name,
		Dims:   append([]string(nil), dims...),
		Shape:  append([]int(nil), shape...),
		Data:   data,
		Coords: map[string]Coord{},
	}, nil
}

// Size returns the total number of elements.
func (a *Array) Size() int {
	n := 1
	for _, s := range a.Shape {
		n *= s
	}
	return n
}

// AxisIndex returns the position of dim in the array's dimension list.
func (a *Array) AxisIndex(dim string) (int, bool) {
	for i, d := range a.Dims {
		if d == dim {
			return i, true
		}
	}
	return -1, false
}

// CoordNames lists the array's coordinate names.
func (a *Array) CoordNames() []string {
	names := make([]string, 0, len(a.Coords))
	for name := range a.Coords {
		names = append(names, name)
	}
	return names
}

// DimNames lists the array's dimension names.
func (a *Array) DimNames() []string {
	return append([]string(nil), a.Dims...)
}

// HasAxis reports whether name is a coordinate or dimension of the array.
func (a *Array) HasAxis(name string) bool {
	if _, ok := a.Coords[name]; ok {
		return true
	}
	_, ok := a.AxisIndex(name)
	return ok
}

// shallowCopy duplicates the array header and coordinate map; data is shared.
func (a *Array) shallowCopy() *Array {
	coords := make(map[string]Coord, len(a.Coords))
	for name, c := range a.Coords {
		coords[name] = c
	}
	return &Array{
		Name:   a.Name,
		Dims:   append([]string(nil), a.Dims...),
		Shape:  append([]int(nil), a.Shape...),
		Data:   a.Data,
		Coords: coords,
		Units:  a.Units,
	}
}

// Isel restricts the array to index range [lo, hi) along dim. Coordinates
// spanning dim are restricted to the same range.
func (a *Array) Isel(dim string, lo, hi int) (*Array, error) {
	axis, ok := a.AxisIndex(dim)
	if !ok {
		return nil, fmt.Errorf("array %s has no dimension %q", a.Name, dim)
	}
	if lo < 0 || hi > a.Shape[axis] || lo > hi {
		return nil, fmt.Errorf("array %s: range [%d,%d) out of bounds for %q (length %d)", a.Name, lo, hi, dim, a.Shape[axis])
	}
	out := a.shallowCopy()
	out.Shape[axis] = hi - lo
	out.Data = selectAxis(a.Data, a.Shape, axis, lo, hi)
	for name, c := range out.Coords {
		out.Coords[name] = c.selRange(dim, lo, hi)
	}
	return out, nil
}

// IselIndex drops dim at position i. Coordinates spanning dim lose that
// dimension; coordinates solely on dim become scalar.
func (a *Array) IselIndex(dim string, i int) (*Array, error) {
	axis, ok := a.AxisIndex(dim)
	if !ok {
		return nil, fmt.Errorf("array %s has no dimension %q", a.Name, dim)
	}
	if i < 0 || i >= a.Shape[axis] {
		return nil, fmt.Errorf("array %s: index %d out of bounds for %q (length %d)", a.Name, i, dim, a.Shape[axis])
	}
	out := a.shallowCopy()
	out.Dims = removeAt(out.Dims, axis)
	out.Shape = removeAt(out.Shape, axis)
	out.Data = dropAxis(a.Data, a.Shape, axis, i)
	for name, c := range out.Coords {
		out.Coords[name] = c.selIndex(dim, i)
	}
	return out, nil
}

// SelNearest selects the position along coordName closest to value,
// dropping that dimension. The coordinate must be 1-D numeric.
func (a *Array) SelNearest(coordName string, value float64) (*Array, error) {
	c, ok := a.Coords[coordName]
	if !ok {
		return nil, fmt.Errorf("array %s has no coordinate %q", a.Name, coordName)
	}
	if c.Kind != CoordFloat || len(c.Dims) != 1 {
		return nil, fmt.Errorf("coordinate %q is not 1-D numeric", coordName)
	}
	idx := nearestIndex(c.Floats, value)
	return a.IselIndex(c.Dims[0], idx)
}

// nearestIndex returns the position of the value closest to target.
func nearestIndex(vals []float64, target float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range vals {
		if d := math.Abs(v - target); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Dataset is a named mapping from variable name to Array, sharing a common
// coordinate set. Derived statistics may omit axes they do not vary over.
type Dataset struct {
	Vars   map[string]*Array
	Coords map[string]Coord
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{Vars: map[string]*Array{}, Coords: map[string]Coord{}}
}

// AddVar attaches a variable and propagates dataset coordinates that fit
// within the variable's dimensions.
func (d *Dataset) AddVar(a *Array) {
	if a.Coords == nil {
		a.Coords = map[string]Coord{}
	}
	for name, c := range d.Coords {
		if _, ok := a.Coords[name]; ok {
			continue
		}
		if dimsSubset(c.Dims, a.Dims) {
			a.Coords[name] = c
		}
	}
	d.Vars[a.Name] = a
}

// SetCoord attaches a coordinate to the dataset and to every variable whose
// dimensions cover it.
func (d *Dataset) SetCoord(name string, c Coord) {
	d.Coords[name] = c
	for _, v := range d.Vars {
		if dimsSubset(c.Dims, v.Dims) {
			v.Coords[name] = c
		}
	}
}

// Var returns the named variable.
func (d *Dataset) Var(name string) (*Array, bool) {
	a, ok := d.Vars[name]
	return a, ok
}

// VarNames lists variable names.
func (d *Dataset) VarNames() []string {
	names := make([]string, 0, len(d.Vars))
	for name := range d.Vars {
		names = append(names, name)
	}
	return names
}

// CoordNames lists the dataset's coordinate names.
func (d *Dataset) CoordNames() []string {
	names := make([]string, 0, len(d.Coords))
	for name := range d.Coords {
		names = append(names, name)
	}
	return names
}

// DimNames lists every dimension appearing in the dataset's variables.
func (d *Dataset) DimNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, v := range d.Vars {
		for _, dim := range v.Dims {
			if !seen[dim] {
				seen[dim] = true
				names = append(names, dim)
			}
		}
	}
	return names
}

// HasAxis reports whether name is a coordinate or dimension of the dataset.
func (d *Dataset) HasAxis(name string) bool {
	if _, ok := d.Coords[name]; ok {
		return true
	}
	for _, v := range d.Vars {
		if _, ok := v.AxisIndex(name); ok {
			return true
		}
	}
	return false
}

// shallowCopy duplicates the dataset's maps; variables and data are shared.
func (d *Dataset) shallowCopy() *Dataset {
	out := NewDataset()
	for name, c := range d.Coords {
		out.Coords[name] = c
	}
	for name, v := range d.Vars {
		out.Vars[name] = v
	}
	return out
}

// IselRange restricts every variable and coordinate spanning dim to [lo, hi).
// Variables without dim are untouched.
func (d *Dataset) IselRange(dim string, lo, hi int) (*Dataset, error) {
	out := NewDataset()
	for name, c := range d.Coords {
		out.Coords[name] = c.selRange(dim, lo, hi)
	}
	for name, v := range d.Vars {
		if _, ok := v.AxisIndex(dim); !ok {
			out.Vars[name] = v
			continue
		}
		sub, err := v.Isel(dim, lo, hi)
		if err != nil {
			return nil, err
		}
		out.Vars[name] = sub
	}
	return out, nil
}

// SelNearest selects the position along coordName closest to value across
// every variable, dropping that dimension.
func (d *Dataset) SelNearest(coordName string, value float64) (*Dataset, error) {
	c, ok := d.Coords[coordName]
	if !ok {
		return nil, fmt.Errorf("dataset has no coordinate %q", coordName)
	}
	if c.Kind != CoordFloat || len(c.Dims) != 1 {
		return nil, fmt.Errorf("coordinate %q is not 1-D numeric", coordName)
	}
	idx := nearestIndex(c.Floats, value)
	dim := c.Dims[0]

	out := NewDataset()
	for name, cc := range d.Coords {
		out.Coords[name] = cc.selIndex(dim, idx)
	}
	for name, v := range d.Vars {
		if _, ok := v.AxisIndex(dim); !ok {
			out.Vars[name] = v
			continue
		}
		sub, err := v.IselIndex(dim, idx)
		if err != nil {
			return nil, err
		}
		out.Vars[name] = sub
	}
	return out, nil
}

// dimsSubset reports whether every dim in sub appears in super.
func dimsSubset(sub, super []string) bool {
	for _, d := range sub {
		found := false
		for _, s := range super {
			if s == d {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// strides returns row-major strides for shape.
func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

// selectAxis copies the elements of a row-major buffer whose index along
// axis lies in [lo, hi).
func selectAxis[T any](data []T, shape []int, axis, lo, hi int) []T {
	st := strides(shape)
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	inner := st[axis] // product of dims after axis
	out := make([]T, 0, outer*(hi-lo)*inner)
	for o := 0; o < outer; o++ {
		base := o * shape[axis] * inner
		out = append(out, data[base+lo*inner:base+hi*inner]...)
	}
	return out
}

// dropAxis copies the elements of a row-major buffer at position i along
// axis, removing that axis.
func dropAxis[T any](data []T, shape []int, axis, i int) []T {
	st := strides(shape)
	outer := 1
	for j := 0; j < axis; j++ {
		outer *= shape[j]
	}
	inner := st[axis]
	out := make([]T, 0, outer*inner)
	for o := 0; o < outer; o++ {
		base := o*shape[axis]*inner + i*inner
		out = append(out, data[base:base+inner]...)
	}
	return out
}
