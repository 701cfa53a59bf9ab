package domain

import "time"

// ValidTimeCoord is the derived coordinate naming the real-world timestamp
// each forecast value applies to.
const ValidTimeCoord = "valid_time"

// AddValidTime attaches valid_time = init time + lead time as a coordinate
// spanning both axes. Returns ds unchanged when the coordinate already
// exists, so repeated calls are no-ops.
func AddValidTime(ds *Dataset) (*Dataset, error) {
	if _, ok := ds.Coords[ValidTimeCoord]; ok {
		return ds, nil
	}

	timeName, err := Resolve(ds, RoleTime)
	if err != nil {
		return nil, err
	}
	stepName, err := Resolve(ds, RoleStep)
	if err != nil {
		return nil, err
	}

	times := ds.Coords[timeName]
	steps := ds.Coords[stepName]

	vt := make([]time.Time, 0, len(times.Times)*len(steps.Durs))
	for _, t0 := range times.Times {
		for _, lead := range steps.Durs {
			vt = append(vt, t0.Add(lead))
		}
	}

	out := ds.shallowCopy()
	out.SetCoord(ValidTimeCoord, Coord{
		Kind:  CoordTime,
		Dims:  []string{times.Dims[0], steps.Dims[0]},
		Shape: []int{len(times.Times), len(steps.Durs)},
		Times: vt,
	})
	return out, nil
}
