// Package match assigns point observations to enclosing polygon regions.
package match

import (
	"sort"

	"github.com/flatrtree/flatrtree-go"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/layer"
)

// NoRegion is the assignment sentinel for a point contained in no region.
// It is distinct from every valid region index, including 0.
const NoRegion = -1

// Ambiguity policies. A point claimed by more than one region indicates a
// data or tolerance problem and is always reported; the policy only decides
// whether the run survives it.
const (
	AmbiguousFail  = "fail"
	AmbiguousFirst = "first"
)

// ErrAmbiguous is returned under the fail policy when any point is claimed
// by more than one region.
var ErrAmbiguous = eris.New("match: point claimed by multiple regions")

// Options configures a match run.
type Options struct {
	Ambiguous string
}

// Ambiguity records a point claimed by more than one region.
type Ambiguity struct {
	Point   int
	Regions []int
}

// Result holds the outcome of matching a point layer against a region layer.
type Result struct {
	// Assignments maps each point index to its containing region index,
	// or NoRegion.
	Assignments []int
	// Counts holds the number of contained points per region.
	Counts []int
	// Ambiguous lists every point claimed by more than one region.
	Ambiguous []Ambiguity
}

// Match computes the containment relation between regions and points. Both
// layers must already share an SRID (see layer.AlignSRID); mismatched layers
// are rejected rather than producing silently wrong geometry.
func Match(regions *layer.RegionLayer, points *layer.PointLayer, opts Options) (*Result, error) {
	if regions.SRID != points.SRID {
		return nil, eris.Wrapf(layer.ErrSRIDMismatch, "points SRID %d, regions SRID %d", points.SRID, regions.SRID)
	}
	switch opts.Ambiguous {
	case "", AmbiguousFail, AmbiguousFirst:
	default:
		return nil, eris.Errorf("match: unknown ambiguity policy %q", opts.Ambiguous)
	}

	index, err := buildIndex(regions)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Assignments: make([]int, points.Len()),
		Counts:      make([]int, regions.Len()),
	}

	for i, p := range points.Points {
		var claims []int
		index.Search(p.X, p.Y, p.X, p.Y, func(ref int64) bool {
			if pointInMultiPolygon(regions.Regions[ref].Geom, p.X, p.Y) {
				claims = append(claims, int(ref))
			}
			return true
		})

		switch len(claims) {
		case 0:
			res.Assignments[i] = NoRegion
		case 1:
			res.Assignments[i] = claims[0]
			res.Counts[claims[0]]++
		default:
			sort.Ints(claims)
			res.Ambiguous = append(res.Ambiguous, Ambiguity{Point: i, Regions: claims})
			if opts.Ambiguous == AmbiguousFirst {
				res.Assignments[i] = claims[0]
				res.Counts[claims[0]]++
			} else {
				res.Assignments[i] = NoRegion
			}
		}
	}

	if len(res.Ambiguous) > 0 {
		zap.L().Warn("match: ambiguous containment",
			zap.Int("points", len(res.Ambiguous)),
			zap.String("policy", policyName(opts.Ambiguous)),
		)
		if opts.Ambiguous != AmbiguousFirst {
			return nil, eris.Wrapf(ErrAmbiguous, "%d point(s) affected, first at index %d", len(res.Ambiguous), res.Ambiguous[0].Point)
		}
	}

	// Consistency assertion over the derived array lengths.
	if len(res.Assignments) != points.Len() || len(res.Counts) != regions.Len() {
		return nil, eris.Errorf("match: result shape %dx%d does not match input %dx%d",
			len(res.Assignments), len(res.Counts), points.Len(), regions.Len())
	}

	return res, nil
}

// Assigned returns the number of points contained in exactly one region
// (plus, under the first policy, ambiguous points resolved to one). It always
// equals the sum of Counts.
func (r *Result) Assigned() int {
	var n int
	for _, c := range r.Counts {
		n += c
	}
	return n
}

func policyName(p string) string {
	if p == "" {
		return AmbiguousFail
	}
	return p
}

// buildIndex packs region bounding boxes into an R-tree for the per-point
// candidate prefilter.
func buildIndex(regions *layer.RegionLayer) (*flatrtree.RTree, error) {
	builder := flatrtree.NewOMTBuilder()
	for i, r := range regions.Regions {
		b := r.Geom.Bounds()
		builder.Add(int64(i), b.Min(0), b.Min(1), b.Max(0), b.Max(1))
	}
	index, err := builder.Finish(64)
	if err != nil {
		return nil, eris.Wrap(err, "match: build region index")
	}
	return index, nil
}

// pointInMultiPolygon tests exact containment: inside some polygon's exterior
// ring and outside all of that polygon's holes.
func pointInMultiPolygon(mp *geom.MultiPolygon, x, y float64) bool {
	p := geom.Coord{x, y}
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for j := 1; j < poly.NumLinearRings(); j++ {
			if xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(j).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}
