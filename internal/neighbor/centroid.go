// Package neighbor derives neighbor relationships among polygon regions.
package neighbor

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/spatial-cli/internal/layer"
)

// Centroid is a region's representative point, used as a proxy location for
// distance-based neighbor policies. Centroids are computed once per layer and
// shared between the k-nearest and distance-band builders so both see the
// same representative points.
type Centroid struct {
	Index int
	X     float64
	Y     float64
}

// Centroids computes one centroid per region, in region order.
func Centroids(l *layer.RegionLayer) ([]Centroid, error) {
	out := make([]Centroid, 0, l.Len())
	for i, r := range l.Regions {
		c, err := xy.Centroid(r.Geom)
		if err != nil {
			return nil, eris.Wrapf(err, "neighbor: centroid of region %d (%s)", i, r.Name)
		}
		out = append(out, Centroid{Index: i, X: c[0], Y: c[1]})
	}
	return out, nil
}

// Metric measures the distance between two centroids.
type Metric func(a, b Centroid) float64

// MetricFor selects the distance metric for a layer: great-circle kilometres
// for geographic coordinates, planar Euclidean in layer units otherwise.
func MetricFor(l *layer.RegionLayer) Metric {
	if l.Geographic() {
		return func(a, b Centroid) float64 {
			return haversineKM(a.X, a.Y, b.X, b.Y)
		}
	}
	return func(a, b Centroid) float64 {
		return math.Hypot(a.X-b.X, a.Y-b.Y)
	}
}

// Mean Earth radius in kilometres.
const earthRadiusKM = 6371.0088

// haversineKM returns the great-circle distance between two lon/lat points.
func haversineKM(lon1, lat1, lon2, lat2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
