package neighbor

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/spatial/vptree"
)

// DistanceBand builds the distance-band adjacency graph: regions i and j are
// neighbors iff d1 <= distance(centroid_i, centroid_j) <= d2, both bounds
// inclusive, i != j. Symmetric by construction.
func DistanceBand(cents []Centroid, metric Metric, d1, d2 float64) (*Graph, error) {
	if d1 < 0 || d2 < d1 {
		return nil, eris.Errorf("neighbor: invalid distance band [%v, %v]", d1, d2)
	}

	t, items, err := buildTree(cents, metric)
	if err != nil {
		return nil, err
	}

	g := &Graph{Policy: PolicyDistanceBand, Neighbors: make([][]int, len(cents))}
	for i, q := range items {
		keeper := vptree.NewDistKeeper(d2)
		t.NearestSet(keeper, q)

		ns := make([]int, 0, keeper.Heap.Len())
		for _, cd := range keeper.Heap {
			if cd.Comparable == nil {
				continue
			}
			idx := cd.Comparable.(vpCentroid).c.Index
			if idx == cents[i].Index || cd.Dist < d1 {
				continue
			}
			ns = append(ns, idx)
		}
		sort.Ints(ns)
		g.Neighbors[i] = ns
	}
	return g, nil
}
