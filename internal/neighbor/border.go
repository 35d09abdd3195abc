package neighbor

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/spatial-cli/internal/layer"
)

// Contiguity rules for border adjacency.
const (
	// Queen treats regions sharing at least one boundary point as neighbors.
	Queen = "queen"
	// Rook requires a shared boundary edge, not just a corner point.
	Rook = "rook"
)

// BorderOptions configures the border adjacency builder.
type BorderOptions struct {
	Contiguity string
	// IncludeSelf switches to the looser intersects-style relation, which
	// counts every region as intersecting itself. Illustrative only.
	IncludeSelf bool
}

// Coordinates are snapped to this precision when hashing boundary points, so
// that vertices written with float jitter still collide. 1e-7 degrees is
// about a centimetre at the equator.
const snapScale = 1e7

type vertexKey struct{ x, y int64 }

type edgeKey struct{ a, b vertexKey }

func snap(x, y float64) vertexKey {
	return vertexKey{int64(math.Round(x * snapScale)), int64(math.Round(y * snapScale))}
}

// Border builds the shared-border adjacency graph. Regions are neighbors iff
// their boundaries share a point (queen) or an edge (rook). The relation is
// symmetric and, unless IncludeSelf is set, irreflexive.
func Border(l *layer.RegionLayer, opts BorderOptions) (*Graph, error) {
	switch opts.Contiguity {
	case "", Queen, Rook:
	default:
		return nil, eris.Errorf("neighbor: unknown contiguity rule %q", opts.Contiguity)
	}

	sets := make([]map[int]struct{}, l.Len())
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}

	if opts.Contiguity == Rook {
		byEdge := make(map[edgeKey][]int)
		for i, r := range l.Regions {
			for _, e := range boundaryEdges(r.Geom) {
				byEdge[e] = appendUnique(byEdge[e], i)
			}
		}
		for _, regions := range byEdge {
			linkAll(sets, regions)
		}
	} else {
		byVertex := make(map[vertexKey][]int)
		for i, r := range l.Regions {
			for _, v := range boundaryVertices(r.Geom) {
				byVertex[v] = appendUnique(byVertex[v], i)
			}
		}
		for _, regions := range byVertex {
			linkAll(sets, regions)
		}
	}

	g := &Graph{Policy: PolicyBorder, Neighbors: make([][]int, l.Len())}
	for i, set := range sets {
		if opts.IncludeSelf {
			set[i] = struct{}{}
		}
		ns := make([]int, 0, len(set))
		for j := range set {
			ns = append(ns, j)
		}
		sort.Ints(ns)
		g.Neighbors[i] = ns
	}
	return g, nil
}

// linkAll marks every pair of distinct regions in the slice as neighbors.
func linkAll(sets []map[int]struct{}, regions []int) {
	for _, i := range regions {
		for _, j := range regions {
			if i != j {
				sets[i][j] = struct{}{}
			}
		}
	}
}

// appendUnique appends v unless it is already the last element. Region loops
// visit vertices in order, so a ring revisiting a vertex for the same region
// is caught by scanning the short existing slice.
func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// boundaryVertices returns the snapped vertices of every ring, holes included.
func boundaryVertices(mp *geom.MultiPolygon) []vertexKey {
	var out []vertexKey
	eachRing(mp, func(flat []float64) {
		for k := 0; k+1 < len(flat); k += 2 {
			out = append(out, snap(flat[k], flat[k+1]))
		}
	})
	return out
}

// boundaryEdges returns the snapped, direction-normalized edges of every ring.
func boundaryEdges(mp *geom.MultiPolygon) []edgeKey {
	var out []edgeKey
	eachRing(mp, func(flat []float64) {
		for k := 0; k+3 < len(flat); k += 2 {
			a := snap(flat[k], flat[k+1])
			b := snap(flat[k+2], flat[k+3])
			if a == b {
				continue
			}
			if b.x < a.x || (b.x == a.x && b.y < a.y) {
				a, b = b, a
			}
			out = append(out, edgeKey{a, b})
		}
	})
	return out
}

func eachRing(mp *geom.MultiPolygon, fn func(flat []float64)) {
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			fn(poly.LinearRing(j).FlatCoords())
		}
	}
}
