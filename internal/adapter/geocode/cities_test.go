package geocode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupBuiltin(t *testing.T) {
	idx := NewIndex()

	c, err := idx.Lookup("Boise")
	require.NoError(t, err)
	assert.InDelta(t, 43.6150, c.Lat, 1e-6)
	assert.InDelta(t, -116.2023, c.Lon, 1e-6)
}

func TestLookupCaseInsensitive(t *testing.T) {
	idx := NewIndex()

	c, err := idx.Lookup("  coeur d'alene ")
	require.NoError(t, err)
	assert.Equal(t, "Coeur d'Alene", c.Name)
}

func TestLookupUnknown(t *testing.T) {
	idx := NewIndex()

	_, err := idx.Lookup("Atlantis")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Atlantis", notFound.Name)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	content := "name,lat,lon\nMcCall,44.9110,-116.0990\nSalmon,45.1760,-113.8960\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	idx, err := LoadCSV(path)
	require.NoError(t, err)

	c, err := idx.Lookup("mccall")
	require.NoError(t, err)
	assert.InDelta(t, 44.9110, c.Lat, 1e-6)

	// The CSV replaces the built-in set.
	_, err = idx.Lookup("Boise")
	require.Error(t, err)

	cities := idx.Cities()
	require.Len(t, cities, 2)
	assert.Equal(t, "McCall", cities[0].Name)
	assert.Equal(t, "Salmon", cities[1].Name)
}

func TestLoadCSVBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte("city,latitude\nBoise,43.6\n"), 0o644))

	_, err := LoadCSV(path)
	require.Error(t, err)
}
