//go:build unit
// +build unit

package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeNormalize(t *testing.T) {
	assert.Equal(t, Edge{1, 4}, Edge{4, 1}.Normalize())
	assert.Equal(t, Edge{1, 4}, Edge{1, 4}.Normalize())
}

func TestNewArchitectureCollectsNodes(t *testing.T) {
	a := NewArchitecture([]int{5}, []Edge{{2, 0}, {0, 1}})
	assert.ElementsMatch(t, []int{0, 1, 2, 5}, a.Nodes)
	assert.Equal(t, []Edge{{0, 2}, {0, 1}}, a.Edges)
}

func TestHasEdgeIsUndirected(t *testing.T) {
	a := NewArchitecture(nil, []Edge{{0, 1}})
	assert.True(t, a.HasEdge(0, 1))
	assert.True(t, a.HasEdge(1, 0))
	assert.False(t, a.HasEdge(0, 2))
}

func TestNeighbors(t *testing.T) {
	a := NewArchitecture(nil, []Edge{{0, 1}, {1, 2}, {1, 3}})
	assert.ElementsMatch(t, []int{0, 2, 3}, a.Neighbors(1))
	assert.ElementsMatch(t, []int{1}, a.Neighbors(0))
	assert.Empty(t, a.Neighbors(9))
}

func TestShortestPath(t *testing.T) {
	// 0-1-2-3 line plus a 0-4 stub
	a := NewArchitecture(nil, []Edge{{0, 1}, {1, 2}, {2, 3}, {0, 4}})

	assert.Equal(t, []int{0}, a.ShortestPath(0, 0))
	assert.Equal(t, []int{0, 1, 2, 3}, a.ShortestPath(0, 3))
	assert.Equal(t, []int{4, 0, 1}, a.ShortestPath(4, 1))
}

func TestShortestPathDisconnected(t *testing.T) {
	a := NewArchitecture([]int{0, 1, 2}, []Edge{{0, 1}})
	assert.Nil(t, a.ShortestPath(0, 2))
}
