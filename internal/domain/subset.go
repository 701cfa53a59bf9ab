package domain

// SubsetBBox restricts ds to the inclusive bounding box on its latitude and
// longitude axes. Latitude ordering is detected: GEFS grids are published
// north-to-south, so a descending axis is sliced with the bounds reversed.
// Longitude is assumed ascending in the -180..180 convention; that holds for
// every source this service reads and is not auto-detected.
//
// All other axes and the variable set are unchanged.
func SubsetBBox(ds *Dataset, latMin, latMax, lonMin, lonMax float64) (*Dataset, error) {
	latName, err := Resolve(ds, RoleLat)
	if err != nil {
		return nil, err
	}
	lonName, err := Resolve(ds, RoleLon)
	if err != nil {
		return nil, err
	}

	lat := ds.Coords[latName]
	lon := ds.Coords[lonName]

	descending := len(lat.Floats) > 1 && lat.Floats[0] > lat.Floats[len(lat.Floats)-1]
	latLo, latHi := boundsRange(lat.Floats, latMin, latMax, descending)
	lonLo, lonHi := boundsRange(lon.Floats, lonMin, lonMax, false)

	out, err := ds.IselRange(lat.Dims[0], latLo, latHi)
	if err != nil {
		return nil, err
	}
	return out.IselRange(lon.Dims[0], lonLo, lonHi)
}

// boundsRange finds the index range [lo, hi) of a monotonic coordinate whose
// values lie in [min, max] inclusive.
func boundsRange(vals []float64, min, max float64, descending bool) (int, int) {
	lo := len(vals)
	hi := 0
	if descending {
		for i, v := range vals {
			if v <= max && i < lo {
				lo = i
			}
			if v >= min {
				hi = i + 1
			}
		}
	} else {
		for i, v := range vals {
			if v >= min && i < lo {
				lo = i
			}
			if v <= max {
				hi = i + 1
			}
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
