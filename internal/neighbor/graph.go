package neighbor

import (
	"gonum.org/v1/gonum/stat"
)

// Graph policies.
const (
	PolicyBorder       = "border"
	PolicyKNearest     = "knn"
	PolicyDistanceBand = "band"
)

// Graph is an adjacency relation over region indices: one sorted neighbor
// set per region, tagged with the policy that produced it.
type Graph struct {
	Policy    string
	Neighbors [][]int
}

// Stats summarizes a graph for verification output.
type Stats struct {
	Regions   int
	Links     int // directed link count
	AvgLinks  float64
	MinDegree int
	MaxDegree int
}

// Stats computes descriptive statistics over the graph's degree sequence.
func (g *Graph) Stats() Stats {
	s := Stats{Regions: len(g.Neighbors)}
	if s.Regions == 0 {
		return s
	}
	degrees := make([]float64, len(g.Neighbors))
	s.MinDegree = len(g.Neighbors[0])
	for i, ns := range g.Neighbors {
		d := len(ns)
		degrees[i] = float64(d)
		s.Links += d
		if d < s.MinDegree {
			s.MinDegree = d
		}
		if d > s.MaxDegree {
			s.MaxDegree = d
		}
	}
	s.AvgLinks = stat.Mean(degrees, nil)
	return s
}

// Symmetric reports whether j in neighbors(i) implies i in neighbors(j).
func (g *Graph) Symmetric() bool {
	for i, ns := range g.Neighbors {
		for _, j := range ns {
			if !contains(g.Neighbors[j], i) {
				return false
			}
		}
	}
	return true
}

func contains(sorted []int, v int) bool {
	for _, x := range sorted {
		if x == v {
			return true
		}
		if x > v {
			return false
		}
	}
	return false
}
