package neighbor

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/vptree"
)

// vpCentroid adapts a Centroid to the vantage-point tree's Comparable
// interface under a given metric.
type vpCentroid struct {
	c      Centroid
	metric Metric
}

func (p vpCentroid) Distance(q vptree.Comparable) float64 {
	return p.metric(p.c, q.(vpCentroid).c)
}

func buildTree(cents []Centroid, metric Metric) (*vptree.Tree, []vpCentroid, error) {
	items := make([]vpCentroid, len(cents))
	comparables := make([]vptree.Comparable, len(cents))
	for i, c := range cents {
		items[i] = vpCentroid{c: c, metric: metric}
		comparables[i] = items[i]
	}
	// Fixed seed keeps vantage-point selection, and therefore tie ordering,
	// reproducible across runs.
	t, err := vptree.New(comparables, 0, rand.NewSource(1))
	if err != nil {
		return nil, nil, eris.Wrap(err, "neighbor: build vantage-point tree")
	}
	return t, items, nil
}

// KNearest builds the k-nearest-centroid adjacency graph: each region's
// neighbor set is the k closest other centroids. The relation is not
// guaranteed symmetric. Requires more regions than k.
func KNearest(cents []Centroid, metric Metric, k int) (*Graph, error) {
	if k <= 0 {
		return nil, eris.Errorf("neighbor: k must be positive, got %d", k)
	}
	if len(cents) <= k {
		return nil, eris.Errorf("neighbor: need more than %d regions for k=%d, got %d", k, k, len(cents))
	}

	t, items, err := buildTree(cents, metric)
	if err != nil {
		return nil, err
	}

	g := &Graph{Policy: PolicyKNearest, Neighbors: make([][]int, len(cents))}
	for i, q := range items {
		// k+1 because the query centroid itself sits in the tree at distance 0.
		keeper := vptree.NewNKeeper(k + 1)
		t.NearestSet(keeper, q)

		found := make([]vptree.ComparableDist, 0, keeper.Heap.Len())
		for _, cd := range keeper.Heap {
			if cd.Comparable == nil || math.IsInf(cd.Dist, 1) {
				continue
			}
			found = append(found, cd)
		}
		sort.Slice(found, func(a, b int) bool { return found[a].Dist < found[b].Dist })

		ns := make([]int, 0, k)
		for _, cd := range found {
			idx := cd.Comparable.(vpCentroid).c.Index
			if idx == cents[i].Index {
				continue
			}
			ns = append(ns, idx)
			if len(ns) == k {
				break
			}
		}
		sort.Ints(ns)
		g.Neighbors[i] = ns
	}
	return g, nil
}
