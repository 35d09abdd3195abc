package neighbor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/spatial-cli/internal/layer"
)

// square builds a single-ring square multipolygon with corners (x0,y0) and
// (x1,y1).
func square(t *testing.T, x0, y0, x1, y1 float64) *geom.MultiPolygon {
	t.Helper()
	ring := geom.NewLinearRingFlat(geom.XY, []float64{
		x0, y0, x1, y0, x1, y1, x0, y1, x0, y0,
	})
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(ring))
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(poly))
	return mp
}

// grid2x2 builds four unit squares sharing edges, in row-major order:
//
//	2 3
//	0 1
func grid2x2(t *testing.T) *layer.RegionLayer {
	t.Helper()
	return &layer.RegionLayer{
		SRID: 3857,
		Regions: []layer.Region{
			{Name: "sw", Code: "00", Geom: square(t, 0, 0, 1, 1)},
			{Name: "se", Code: "01", Geom: square(t, 1, 0, 2, 1)},
			{Name: "nw", Code: "10", Geom: square(t, 0, 1, 1, 2)},
			{Name: "ne", Code: "11", Geom: square(t, 1, 1, 2, 2)},
		},
	}
}
