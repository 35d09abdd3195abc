package layer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeatureCollection = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"NAME": "Alpha", "GEOID": "001"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]
			}
		},
		{
			"type": "Feature",
			"properties": {"NAME": "Beta", "GEOID": "002"},
			"geometry": {
				"type": "MultiPolygon",
				"coordinates": [[[[2, 0], [3, 0], [3, 1], [2, 1], [2, 0]]]]
			}
		},
		{
			"type": "Feature",
			"properties": {"NAME": "Skippy"},
			"geometry": {"type": "Point", "coordinates": [5, 5]}
		}
	]
}`

func writeTempGeoJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.geojson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGeoJSON(t *testing.T) {
	path := writeTempGeoJSON(t, testFeatureCollection)

	l, err := LoadGeoJSON(path, FieldMapping{NameField: "NAME", CodeField: "GEOID"})
	require.NoError(t, err)

	// The point feature is skipped; polygons are promoted to multipolygons.
	require.Equal(t, 2, l.Len())
	assert.Equal(t, 4326, l.SRID)
	assert.Equal(t, "Alpha", l.Regions[0].Name)
	assert.Equal(t, "001", l.Regions[0].Code)
	assert.Equal(t, 1, l.Regions[0].Geom.NumPolygons())
	assert.Equal(t, "Beta", l.Regions[1].Name)
}

func TestLoadGeoJSONExplicitSRID(t *testing.T) {
	path := writeTempGeoJSON(t, testFeatureCollection)

	l, err := LoadGeoJSON(path, FieldMapping{NameField: "NAME", SRID: 3857})
	require.NoError(t, err)
	assert.Equal(t, 3857, l.SRID)
}

func TestLoadGeoJSONErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadGeoJSON(filepath.Join(t.TempDir(), "absent.geojson"), FieldMapping{})
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeTempGeoJSON(t, "{not json")
		_, err := LoadGeoJSON(path, FieldMapping{})
		assert.Error(t, err)
	})

	t.Run("no polygon features", func(t *testing.T) {
		path := writeTempGeoJSON(t, `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0]}}
		]}`)
		_, err := LoadGeoJSON(path, FieldMapping{})
		assert.Error(t, err)
	})
}

func TestPropertyString(t *testing.T) {
	props := map[string]any{"name": "Alpha", "pop": 1234.0, "empty": nil}

	assert.Equal(t, "Alpha", propertyString(props, "name"))
	assert.Equal(t, "1234", propertyString(props, "pop"))
	assert.Equal(t, "", propertyString(props, "empty"))
	assert.Equal(t, "", propertyString(props, "missing"))
	assert.Equal(t, "", propertyString(props, ""))
	assert.Equal(t, "", propertyString(nil, "name"))
}
