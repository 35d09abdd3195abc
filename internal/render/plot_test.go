package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/spatial-cli/internal/layer"
	"github.com/sells-group/spatial-cli/internal/match"
	"github.com/sells-group/spatial-cli/internal/neighbor"
)

func squareRegion(t *testing.T, name string, minX, minY float64) layer.Region {
	t.Helper()
	ring := geom.NewLinearRing(geom.XY).MustSetCoords([]geom.Coord{
		{minX, minY}, {minX + 1, minY}, {minX + 1, minY + 1}, {minX, minY + 1}, {minX, minY},
	})
	poly := geom.NewPolygon(geom.XY)
	poly.Push(ring)
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(poly))
	return layer.Region{Name: name, Code: name, Geom: mp}
}

func testRegions(t *testing.T) *layer.RegionLayer {
	t.Helper()
	return &layer.RegionLayer{
		SRID: 3857,
		Regions: []layer.Region{
			squareRegion(t, "A", 0, 0),
			squareRegion(t, "B", 1, 0),
		},
	}
}

func TestRendererMatch(t *testing.T) {
	base := t.TempDir()
	r, err := New(base, "png", 6, 6)
	require.NoError(t, err)

	points := &layer.PointLayer{
		SRID: 3857,
		Points: []layer.PointRecord{
			{X: 0.5, Y: 0.5},
			{X: 1.5, Y: 0.5},
			{X: 9.0, Y: 9.0},
		},
	}
	res := &match.Result{
		Assignments: []int{0, 1, match.NoRegion},
		Counts:      []int{1, 1},
	}

	path, err := r.Match(testRegions(t), points, res)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, ".png", filepath.Ext(path))
	assert.Equal(t, r.Dir(), filepath.Dir(path))
}

func TestRendererGraphs(t *testing.T) {
	r, err := New(t.TempDir(), "svg", 6, 6)
	require.NoError(t, err)

	regions := testRegions(t)
	cents := []neighbor.Centroid{
		{Index: 0, X: 0.5, Y: 0.5},
		{Index: 1, X: 1.5, Y: 0.5},
	}
	graphs := []*neighbor.Graph{
		{Policy: neighbor.PolicyBorder, Neighbors: [][]int{{1}, {0}}},
		{Policy: neighbor.PolicyKNearest, Neighbors: [][]int{{1}, {0}}},
	}

	paths, err := r.Graphs(context.Background(), regions, cents, graphs)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
		assert.Equal(t, ".svg", filepath.Ext(p))
	}
	assert.NotEqual(t, paths[0], paths[1])
}

func TestNewDefaultsToPNG(t *testing.T) {
	r, err := New(t.TempDir(), "", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "png", r.format)
}
