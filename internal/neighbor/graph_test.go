package neighbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphStats(t *testing.T) {
	g := &Graph{
		Policy: PolicyBorder,
		Neighbors: [][]int{
			{1, 2},
			{0},
			{0},
			{},
		},
	}

	s := g.Stats()
	assert.Equal(t, 4, s.Regions)
	assert.Equal(t, 4, s.Links)
	assert.InDelta(t, 1.0, s.AvgLinks, 1e-9)
	assert.Equal(t, 0, s.MinDegree)
	assert.Equal(t, 2, s.MaxDegree)
}

func TestGraphStatsEmpty(t *testing.T) {
	g := &Graph{Policy: PolicyKNearest}
	s := g.Stats()
	assert.Equal(t, 0, s.Regions)
	assert.Equal(t, 0, s.Links)
	assert.Equal(t, 0.0, s.AvgLinks)
}

func TestGraphSymmetric(t *testing.T) {
	tests := []struct {
		name      string
		neighbors [][]int
		want      bool
	}{
		{
			name:      "symmetric",
			neighbors: [][]int{{1}, {0, 2}, {1}},
			want:      true,
		},
		{
			name:      "asymmetric",
			neighbors: [][]int{{1}, {2}, {1}},
			want:      false,
		},
		{
			name:      "no links",
			neighbors: [][]int{{}, {}},
			want:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Graph{Neighbors: tt.neighbors}
			assert.Equal(t, tt.want, g.Symmetric())
		})
	}
}
