// Package netcdf loads regional GEFS forecast subsets from NetCDF files.
//
// File convention (written by cmd/subset-cache): coordinate variables are
// 1-D and share their dimension's name; init_time holds seconds since the
// Unix epoch, lead_time holds seconds, latitude/longitude hold degrees, and
// ensemble_member holds member identifiers. Every other numeric variable
// with two or more dimensions is loaded as a forecast variable.
package netcdf

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
	"go.uber.org/zap"

	"go.ngs.io/gefs-api/internal/domain"
)

// BBox is a geographic bounding box in degrees.
type BBox struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Store loads a forecast dataset from a regional NetCDF subset file.
type Store struct {
	path string
	bbox BBox
	log  *zap.SugaredLogger
}

// NewStore creates a NetCDF-backed forecast store. The bounding box is
// applied on load; it is a no-op when the file is already regional.
func NewStore(path string, bbox BBox, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{path: path, bbox: bbox, log: log}
}

// Key identifies the store's source and subset parameters.
func (s *Store) Key() string {
	return fmt.Sprintf("%s|%.2f,%.2f,%.2f,%.2f", s.path, s.bbox.LatMin, s.bbox.LatMax, s.bbox.LonMin, s.bbox.LonMax)
}

// Load reads the file, subsets it to the configured bounding box, drops the
// initial lead step, and attaches the valid_time coordinate.
func (s *Store) Load(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t0 := time.Now()
	ds, err := ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast file %s: %w", s.path, err)
	}
	s.log.Infow("forecast file read", "path", s.path, "elapsed", time.Since(t0))

	ds, err = domain.SubsetBBox(ds, s.bbox.LatMin, s.bbox.LatMax, s.bbox.LonMin, s.bbox.LonMax)
	if err != nil {
		return nil, err
	}

	ds, err = filterInitialLeadStep(ds, s.log)
	if err != nil {
		return nil, err
	}

	ds, err = domain.AddValidTime(ds)
	if err != nil {
		return nil, err
	}

	s.validatePrecipitation(ds)
	return ds, nil
}

// ReadFile reads a NetCDF forecast file into a labeled dataset.
func ReadFile(path string) (*domain.Dataset, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	nvars, err := nc.NVars()
	if err != nil {
		return nil, fmt.Errorf("failed to count variables: %w", err)
	}

	ds := domain.NewDataset()

	// First pass: 1-D coordinate variables.
	for i := 0; i < nvars; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return nil, err
		}
		dims, err := v.Dims()
		if err != nil {
			return nil, err
		}
		if len(dims) != 1 {
			continue
		}
		dimName, err := dims[0].Name()
		if err != nil {
			return nil, err
		}
		if dimName != name {
			continue
		}
		vals, err := netcdf.GetFloat64s(v)
		if err != nil {
			return nil, fmt.Errorf("failed to read coordinate %s: %w", name, err)
		}
		ds.SetCoord(name, decodeCoord(name, vals))
	}

	// Second pass: data variables.
	for i := 0; i < nvars; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return nil, err
		}
		dims, err := v.Dims()
		if err != nil {
			return nil, err
		}
		if len(dims) < 2 {
			continue
		}
		dimNames := make([]string, len(dims))
		shape := make([]int, len(dims))
		for j, d := range dims {
			if dimNames[j], err = d.Name(); err != nil {
				return nil, err
			}
			n, err := d.Len()
			if err != nil {
				return nil, err
			}
			shape[j] = int(n)
		}
		data, err := netcdf.GetFloat64s(v)
		if err != nil {
			return nil, fmt.Errorf("failed to read variable %s: %w", name, err)
		}
		arr, err := domain.NewArray(name, dimNames, shape, data)
		if err != nil {
			return nil, err
		}
		ds.AddVar(arr)
	}

	if len(ds.Vars) == 0 {
		return nil, fmt.Errorf("no forecast variables found in %s", path)
	}
	return ds, nil
}

// decodeCoord maps a raw coordinate to its typed form. Time and lead axes
// are recognized by name so that naming-convention differences between
// sources still produce typed coordinates.
func decodeCoord(name string, vals []float64) domain.Coord {
	c := domain.Coord{Dims: []string{name}, Shape: []int{len(vals)}}
	switch {
	case matchesRole(name, domain.RoleTime):
		c.Kind = domain.CoordTime
		c.Times = make([]time.Time, len(vals))
		for i, v := range vals {
			c.Times[i] = time.Unix(int64(v), 0).UTC()
		}
	case matchesRole(name, domain.RoleStep):
		c.Kind = domain.CoordDuration
		c.Durs = make([]time.Duration, len(vals))
		for i, v := range vals {
			c.Durs[i] = time.Duration(v * float64(time.Second))
		}
	default:
		c.Kind = domain.CoordFloat
		c.Floats = vals
	}
	return c
}

func matchesRole(name string, role domain.Role) bool {
	for _, cand := range domain.Candidates(role) {
		if name == cand {
			return true
		}
	}
	return false
}

// filterInitialLeadStep drops the first lead step. GEFS precipitation is a
// forecast variable, not an analysis variable; the first step never carries
// valid precipitation data.
func filterInitialLeadStep(ds *domain.Dataset, log *zap.SugaredLogger) (*domain.Dataset, error) {
	stepName, err := domain.Resolve(ds, domain.RoleStep)
	if err != nil {
		return nil, err
	}
	step := ds.Coords[stepName]
	if step.Len() < 2 {
		return ds, nil
	}
	out, err := ds.IselRange(step.Dims[0], 1, step.Len())
	if err != nil {
		return nil, err
	}
	log.Infow("dropped initial lead step", "axis", stepName)
	return out, nil
}

// validatePrecipitation samples the precipitation field and warns when the
// sample is entirely missing. That happens when the latest GEFS cycle has
// not propagated to the source yet; it is a data-latency condition, not a
// load failure.
func (s *Store) validatePrecipitation(ds *domain.Dataset) {
	precip, ok := ds.Var("precipitation_surface")
	if !ok {
		return
	}
	sample := precip.Data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	finite := 0
	for _, v := range sample {
		if !math.IsNaN(v) {
			finite++
		}
	}
	if finite == 0 {
		s.log.Warnw("all sampled precipitation values are missing; the latest GEFS cycle may not be available yet",
			"path", s.path)
		return
	}
	s.log.Infow("precipitation data validated",
		"valid_fraction", float64(finite)/float64(len(sample)))
}
