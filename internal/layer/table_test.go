package layer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPointsCSV(t *testing.T) {
	path := writeTempCSV(t, "id,longitude,latitude,value\n1,-71.06,42.36,3.5\n2,-87.63,41.88,1.2\n")

	l, err := LoadPointsCSV(path, TableMapping{XColumn: "longitude", YColumn: "latitude"})
	require.NoError(t, err)

	require.Equal(t, 2, l.Len())
	assert.Equal(t, 0, l.SRID)
	assert.Equal(t, []string{"id", "longitude", "latitude", "value"}, l.Columns)

	assert.InDelta(t, -71.06, l.Points[0].X, 1e-9)
	assert.InDelta(t, 42.36, l.Points[0].Y, 1e-9)
	assert.Equal(t, "1", l.Points[0].Attrs["id"])
	assert.Equal(t, "3.5", l.Points[0].Attrs["value"])
}

func TestLoadPointsCSVColumnMatchingIsCaseInsensitive(t *testing.T) {
	path := writeTempCSV(t, "ID,Longitude,Latitude\n1,-71.06,42.36\n")

	l, err := LoadPointsCSV(path, TableMapping{XColumn: "longitude", YColumn: "latitude"})
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
}

func TestLoadPointsCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		mapping TableMapping
	}{
		{
			name:    "missing coordinate column",
			content: "id,lon,lat\n1,-71,42\n",
			mapping: TableMapping{XColumn: "longitude", YColumn: "latitude"},
		},
		{
			name:    "unparseable coordinate",
			content: "id,longitude,latitude\n1,not-a-number,42\n",
			mapping: TableMapping{XColumn: "longitude", YColumn: "latitude"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempCSV(t, tt.content)
			_, err := LoadPointsCSV(path, tt.mapping)
			assert.Error(t, err)
		})
	}
}

func TestLoadPointsCSVMissingFile(t *testing.T) {
	_, err := LoadPointsCSV(filepath.Join(t.TempDir(), "absent.csv"), TableMapping{XColumn: "x", YColumn: "y"})
	assert.Error(t, err)
}

func TestPointsFromRowsKeepsDeclaredSRID(t *testing.T) {
	l, err := pointsFromRows(
		[]string{"x", "y"},
		[][]string{{"1.5", "2.5"}},
		TableMapping{XColumn: "x", YColumn: "y", SRID: 3857},
	)
	require.NoError(t, err)
	assert.Equal(t, 3857, l.SRID)
}

func TestPointsFromRowsShortRow(t *testing.T) {
	_, err := pointsFromRows(
		[]string{"x", "y", "v"},
		[][]string{{"1.0"}},
		TableMapping{XColumn: "x", YColumn: "y"},
	)
	assert.Error(t, err)
}
