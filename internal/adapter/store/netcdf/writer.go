package netcdf

import (
	"fmt"
	"sort"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/gefs-api/internal/domain"
)

// WriteFile writes a dataset to a NetCDF file using this package's file
// convention: each 1-D coordinate sharing its dimension's name becomes a
// DOUBLE variable, with times as Unix seconds and lead times as seconds.
// Multi-dimensional coordinates such as valid_time are derived on load and
// not written.
func WriteFile(path string, ds *domain.Dataset) error {
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Dimension lengths come from the variables that span them.
	sizes := map[string]int{}
	for _, v := range ds.Vars {
		for i, d := range v.Dims {
			sizes[d] = v.Shape[i]
		}
	}
	dimNames := make([]string, 0, len(sizes))
	for name := range sizes {
		dimNames = append(dimNames, name)
	}
	sort.Strings(dimNames)

	dims := map[string]netcdf.Dim{}
	for _, name := range dimNames {
		d, err := f.AddDim(name, uint64(sizes[name]))
		if err != nil {
			return fmt.Errorf("failed to add dimension %s: %w", name, err)
		}
		dims[name] = d
	}

	type pending struct {
		v    netcdf.Var
		vals []float64
	}
	var writes []pending

	coordNames := ds.CoordNames()
	sort.Strings(coordNames)
	for _, name := range coordNames {
		c := ds.Coords[name]
		if len(c.Dims) != 1 || c.Dims[0] != name {
			continue
		}
		dim, ok := dims[name]
		if !ok {
			continue
		}
		v, err := f.AddVar(name, netcdf.DOUBLE, []netcdf.Dim{dim})
		if err != nil {
			return fmt.Errorf("failed to add coordinate %s: %w", name, err)
		}
		writes = append(writes, pending{v: v, vals: encodeCoord(c)})
	}

	varNames := ds.VarNames()
	sort.Strings(varNames)
	for _, name := range varNames {
		a := ds.Vars[name]
		varDims := make([]netcdf.Dim, len(a.Dims))
		for i, d := range a.Dims {
			varDims[i] = dims[d]
		}
		v, err := f.AddVar(name, netcdf.DOUBLE, varDims)
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", name, err)
		}
		writes = append(writes, pending{v: v, vals: a.Data})
	}

	if err := f.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	for _, w := range writes {
		name, _ := w.v.Name()
		if err := w.v.WriteFloat64s(w.vals); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// encodeCoord flattens a coordinate to the on-disk float encoding.
func encodeCoord(c domain.Coord) []float64 {
	switch c.Kind {
	case domain.CoordTime:
		out := make([]float64, len(c.Times))
		for i, t := range c.Times {
			out[i] = float64(t.Unix())
		}
		return out
	case domain.CoordDuration:
		out := make([]float64, len(c.Durs))
		for i, d := range c.Durs {
			out[i] = d.Seconds()
		}
		return out
	default:
		return c.Floats
	}
}
