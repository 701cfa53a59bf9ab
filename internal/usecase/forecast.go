// Package usecase orchestrates forecast views: point time-series and
// map grids derived from the regional ensemble dataset.
package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"go.ngs.io/gefs-api/internal/adapter/geocode"
	"go.ngs.io/gefs-api/internal/adapter/store"
	"go.ngs.io/gefs-api/internal/domain"
)

// PrecipitationVar is the rate variable the accumulation window applies to.
const PrecipitationVar = "precipitation_surface"

// VariableInfo describes a forecast variable exposed by the API.
type VariableInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Units string `json:"units"`
}

// Variables lists the variables the dashboard offers.
var Variables = []VariableInfo{
	{Name: "temperature_2m", Label: "2m temperature", Units: "degC"},
	{Name: PrecipitationVar, Label: "Accumulated precipitation", Units: "mm"},
}

// UnknownVariableError reports a request for a variable the dataset does not
// carry.
type UnknownVariableError struct {
	Variable  string
	Available []string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q, available: %v", e.Variable, e.Available)
}

// ValidationError reports a malformed request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ForecastService computes forecast views over a cached regional dataset.
type ForecastService struct {
	loader store.Loader
	cities *geocode.Index
	log    *zap.SugaredLogger
}

// NewForecastService creates the service.
func NewForecastService(loader store.Loader, cities *geocode.Index, log *zap.SugaredLogger) *ForecastService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ForecastService{loader: loader, cities: cities, log: log}
}

// Cities lists the known point locations.
func (s *ForecastService) Cities() []geocode.City {
	return s.cities.Cities()
}

// TimeSeriesRequest asks for an ensemble summary at one point.
type TimeSeriesRequest struct {
	Variable string
	Location string   // named city; mutually exclusive with Lat/Lon
	Lat, Lon *float64 // raw coordinates
	Window   string   // precipitation accumulation window; empty means stepwise
	Mode     string   // "percentiles" (default) or "meanstd"
}

// Validate checks the request.
func (r *TimeSeriesRequest) Validate() error {
	if r.Variable == "" {
		return &ValidationError{Msg: "variable is required"}
	}
	hasLatLon := r.Lat != nil && r.Lon != nil
	hasLocation := r.Location != ""
	if !hasLatLon && !hasLocation {
		return &ValidationError{Msg: "either location or lat/lon must be provided"}
	}
	if hasLatLon && hasLocation {
		return &ValidationError{Msg: "location and lat/lon are mutually exclusive"}
	}
	if hasLatLon {
		if *r.Lat < -90 || *r.Lat > 90 {
			return &ValidationError{Msg: "latitude must be between -90 and 90"}
		}
		if *r.Lon < -180 || *r.Lon > 180 {
			return &ValidationError{Msg: "longitude must be between -180 and 180"}
		}
	}
	if _, err := parseMode(r.Mode); err != nil {
		return err
	}
	return nil
}

// TimeSeriesResponse carries the summarized point series.
type TimeSeriesResponse struct {
	Variable   string               `json:"variable"`
	Units      string               `json:"units"`
	Window     string               `json:"window,omitempty"`
	Location   string               `json:"location,omitempty"`
	GridLat    float64              `json:"grid_lat"`
	GridLon    float64              `json:"grid_lon"`
	InitTime   string               `json:"init_time"`
	ValidTimes []string             `json:"valid_times"`
	Series     map[string][]float64 `json:"series"`
}

// TimeSeries computes the ensemble summary series at the nearest grid point.
// The spatial point is selected before the ensemble reduction so the
// expensive reduction runs on a time series, not the full grid.
func (s *ForecastService) TimeSeries(ctx context.Context, req TimeSeriesRequest) (*TimeSeriesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lat, lon := 0.0, 0.0
	if req.Location != "" {
		city, err := s.cities.Lookup(req.Location)
		if err != nil {
			return nil, err
		}
		lat, lon = city.Lat, city.Lon
	} else {
		lat, lon = *req.Lat, *req.Lon
	}

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	field, err := s.selectVariable(ds, req.Variable, req.Window)
	if err != nil {
		return nil, err
	}

	field, initTime, err := selectLatestInit(field)
	if err != nil {
		return nil, err
	}

	latName, err := domain.Resolve(field, domain.RoleLat)
	if err != nil {
		return nil, err
	}
	lonName, err := domain.Resolve(field, domain.RoleLon)
	if err != nil {
		return nil, err
	}
	point, err := field.SelNearest(latName, lat)
	if err != nil {
		return nil, err
	}
	point, err = point.SelNearest(lonName, lon)
	if err != nil {
		return nil, err
	}

	mode, err := parseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	summary, err := domain.Summarize(point, mode)
	if err != nil {
		return nil, err
	}

	resp := &TimeSeriesResponse{
		Variable:   req.Variable,
		Units:      point.Units,
		Window:     req.Window,
		Location:   req.Location,
		GridLat:    scalarCoord(point, latName),
		GridLon:    scalarCoord(point, lonName),
		InitTime:   initTime.Format(time.RFC3339),
		ValidTimes: validTimeLabels(summary),
		Series:     map[string][]float64{},
	}
	names := summary.VarNames()
	sort.Strings(names)
	for _, name := range names {
		v, _ := summary.Var(name)
		resp.Series[name] = sanitize(v.Data)
	}
	return resp, nil
}

// GridRequest asks for an ensemble statistic over the map at one lead step.
type GridRequest struct {
	Variable string
	Step     int    // lead-step index into the dataset's step axis
	Window   string // precipitation accumulation window
	Stat     string // p10, p50 (default), p90, mean, or std
}

// Validate checks the request.
func (r *GridRequest) Validate() error {
	if r.Variable == "" {
		return &ValidationError{Msg: "variable is required"}
	}
	if r.Step < 0 {
		return &ValidationError{Msg: "step must not be negative"}
	}
	switch r.Stat {
	case "", "p10", "p50", "p90", "mean", "std":
		return nil
	}
	return &ValidationError{Msg: fmt.Sprintf("unknown statistic %q: use p10, p50, p90, mean, or std", r.Stat)}
}

// GridResponse carries one summary statistic over the regional grid.
type GridResponse struct {
	Variable   string      `json:"variable"`
	Units      string      `json:"units"`
	Window     string      `json:"window,omitempty"`
	Stat       string      `json:"stat"`
	Step       int         `json:"step"`
	InitTime   string      `json:"init_time"`
	ValidTime  string      `json:"valid_time"`
	Latitudes  []float64   `json:"latitudes"`
	Longitudes []float64   `json:"longitudes"`
	Values     [][]float64 `json:"values"` // [lat][lon]
}

// Grid computes one summary statistic over the map at a single lead step.
// The step is selected before the ensemble reduction so the reduction runs
// on one time slice, not the whole forecast horizon.
func (s *ForecastService) Grid(ctx context.Context, req GridRequest) (*GridResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	field, err := s.selectVariable(ds, req.Variable, req.Window)
	if err != nil {
		return nil, err
	}

	field, initTime, err := selectLatestInit(field)
	if err != nil {
		return nil, err
	}

	stepName, err := domain.Resolve(field, domain.RoleStep)
	if err != nil {
		return nil, err
	}
	stepDim := field.Coords[stepName].Dims[0]
	axis, _ := field.AxisIndex(stepDim)
	if req.Step >= field.Shape[axis] {
		return nil, &ValidationError{Msg: fmt.Sprintf("step %d out of range (0-%d)", req.Step, field.Shape[axis]-1)}
	}
	slice, err := field.IselIndex(stepDim, req.Step)
	if err != nil {
		return nil, err
	}

	stat := req.Stat
	if stat == "" {
		stat = "p50"
	}
	mode := domain.SummaryPercentiles
	if stat == "mean" || stat == "std" {
		mode = domain.SummaryMeanStd
	}
	summary, err := domain.Summarize(slice, mode)
	if err != nil {
		return nil, err
	}
	out, ok := summary.Var(stat)
	if !ok {
		return nil, fmt.Errorf("statistic %q missing from summary", stat)
	}

	latName, err := domain.Resolve(summary, domain.RoleLat)
	if err != nil {
		return nil, err
	}
	lonName, err := domain.Resolve(summary, domain.RoleLon)
	if err != nil {
		return nil, err
	}
	lats := summary.Coords[latName].Floats
	lons := summary.Coords[lonName].Floats

	values := make([][]float64, len(lats))
	for i := range lats {
		row := out.Data[i*len(lons) : (i+1)*len(lons)]
		values[i] = sanitize(row)
	}

	resp := &GridResponse{
		Variable:   req.Variable,
		Units:      slice.Units,
		Window:     req.Window,
		Stat:       stat,
		Step:       req.Step,
		InitTime:   initTime.Format(time.RFC3339),
		Latitudes:  lats,
		Longitudes: lons,
		Values:     values,
	}
	if vt, ok := slice.Coords[domain.ValidTimeCoord]; ok && len(vt.Times) > 0 {
		resp.ValidTime = vt.Times[0].Format(time.RFC3339)
	}
	return resp, nil
}

// selectVariable extracts the requested variable, applying the accumulation
// window to the precipitation rate.
func (s *ForecastService) selectVariable(ds *domain.Dataset, variable, window string) (*domain.Array, error) {
	field, ok := ds.Var(variable)
	if !ok {
		avail := ds.VarNames()
		sort.Strings(avail)
		return nil, &UnknownVariableError{Variable: variable, Available: avail}
	}
	if variable != PrecipitationVar {
		return field, nil
	}
	return domain.Accumulate(field, window)
}

// selectLatestInit reduces the field to its most recent initialization
// cycle; the dashboard always shows the latest forecast.
func selectLatestInit(field *domain.Array) (*domain.Array, time.Time, error) {
	timeName, err := domain.Resolve(field, domain.RoleTime)
	if err != nil {
		return nil, time.Time{}, err
	}
	c := field.Coords[timeName]
	last := len(c.Times) - 1
	out, err := field.IselIndex(c.Dims[0], last)
	if err != nil {
		return nil, time.Time{}, err
	}
	return out, c.Times[last], nil
}

// scalarCoord reads a coordinate reduced to a single value by a point
// selection.
func scalarCoord(a *domain.Array, name string) float64 {
	c, ok := a.Coords[name]
	if !ok || len(c.Floats) == 0 {
		return math.NaN()
	}
	return c.Floats[0]
}

func parseMode(mode string) (domain.SummaryMode, error) {
	switch mode {
	case "", "percentiles":
		return domain.SummaryPercentiles, nil
	case "meanstd", "mean_std":
		return domain.SummaryMeanStd, nil
	}
	return 0, &ValidationError{Msg: fmt.Sprintf("unknown mode %q: use percentiles or meanstd", mode)}
}

// validTimeLabels flattens the summary's valid_time coordinate, falling back
// to lead-time offsets when the coordinate is absent.
func validTimeLabels(summary *domain.Dataset) []string {
	if vt, ok := summary.Coords[domain.ValidTimeCoord]; ok {
		out := make([]string, len(vt.Times))
		for i, t := range vt.Times {
			out[i] = t.Format(time.RFC3339)
		}
		return out
	}
	for _, cand := range domain.Candidates(domain.RoleStep) {
		if c, ok := summary.Coords[cand]; ok && c.Kind == domain.CoordDuration {
			out := make([]string, len(c.Durs))
			for i, d := range c.Durs {
				out[i] = d.String()
			}
			return out
		}
	}
	return nil
}

// sanitize copies a series with NaN replaced by null-safe NaN markers for
// JSON encoding: NaN is not representable in JSON, so missing values are
// encoded as -9999.
func sanitize(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = MissingValue
		} else {
			out[i] = v
		}
	}
	return out
}

// MissingValue marks missing data in JSON responses.
const MissingValue = -9999
