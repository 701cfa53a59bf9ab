// Package geocode maps location names to coordinates for point time-series
// requests.
package geocode

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// City is a named point location in degrees.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// NotFoundError reports an unknown location name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown location %q", e.Name)
}

// defaultCities covers the dashboard's stock Idaho locations.
var defaultCities = []City{
	{Name: "Boise", Lat: 43.6150, Lon: -116.2023},
	{Name: "Twin Falls", Lat: 42.5630, Lon: -114.4608},
	{Name: "Idaho Falls", Lat: 43.4916, Lon: -112.0339},
	{Name: "Coeur d'Alene", Lat: 47.6777, Lon: -116.7805},
}

// Index resolves location names case-insensitively.
type Index struct {
	byName map[string]City
	names  []string
}

// NewIndex returns an index holding the built-in city set.
func NewIndex() *Index {
	idx := &Index{byName: map[string]City{}}
	for _, c := range defaultCities {
		idx.add(c)
	}
	return idx
}

// LoadCSV returns an index built from a name,lat,lon CSV file, replacing the
// built-in set.
func LoadCSV(path string) (*Index, error) {
	//nolint:gosec // G304: path comes from service configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cities file: %w", err)
	}
	defer func() { _ = file.Close() }()

	idx := &Index{byName: map[string]City{}}
	if err := idx.readCSV(file); err != nil {
		return nil, fmt.Errorf("failed to parse cities file %s: %w", path, err)
	}
	if len(idx.byName) == 0 {
		return nil, fmt.Errorf("cities file %s has no entries", path)
	}
	return idx, nil
}

func (idx *Index) readCSV(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	expected := []string{"name", "lat", "lon"}
	if len(header) != len(expected) {
		return fmt.Errorf("invalid header: expected %v, got %v", expected, header)
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expected[i] {
			return fmt.Errorf("invalid header: expected column %d to be %s, got %s", i, expected[i], h)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: %w", record[1], err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: %w", record[2], err)
		}
		idx.add(City{Name: strings.TrimSpace(record[0]), Lat: lat, Lon: lon})
	}
	return nil
}

func (idx *Index) add(c City) {
	key := strings.ToLower(c.Name)
	if _, exists := idx.byName[key]; !exists {
		idx.names = append(idx.names, c.Name)
	}
	idx.byName[key] = c
}

// Lookup resolves a location name to coordinates.
func (idx *Index) Lookup(name string) (City, error) {
	c, ok := idx.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return City{}, &NotFoundError{Name: name}
	}
	return c, nil
}

// Cities lists the known locations sorted by name.
func (idx *Index) Cities() []City {
	names := append([]string(nil), idx.names...)
	sort.Strings(names)
	out := make([]City, 0, len(names))
	for _, n := range names {
		out = append(out, idx.byName[strings.ToLower(n)])
	}
	return out
}
