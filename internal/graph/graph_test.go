package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nela-research/citegraph/internal/model"
)

func TestGraph_AddEdgeRejectsSelfLoop(t *testing.T) {
	g := New()
	err := g.AddEdge("a", "a", 1)
	require.Error(t, err)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_UndirectedWeight(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge("a", "b", 0.5))

	w, ok := g.Weight("b", "a")
	require.True(t, ok)
	assert.Equal(t, 0.5, w)
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1, g.Degree("a"))
}

func TestGraph_RemoveNodeDropsIncidentEdges(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge("a", "b", 1))
	require.NoError(t, g.AddEdge("a", "c", 1))

	g.RemoveNode("a")
	assert.False(t, g.HasNode("a"))
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 0, g.Degree("b"))
}

func TestGraph_NodeAttrs(t *testing.T) {
	g := New()
	g.AddNode("cnn", NodeAttrs{Class: ClassNews, Credibility: model.CredibilityReliable, Bias: "L"})

	attrs, ok := g.Attrs("cnn")
	require.True(t, ok)
	assert.Equal(t, ClassNews, attrs.Class)
	assert.Equal(t, model.CredibilityReliable, attrs.Credibility)

	assert.Error(t, g.SetAttrs("missing", NodeAttrs{}))
}

func TestGraph_EdgesSortedAndUnique(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge("c", "a", 1))
	require.NoError(t, g.AddEdge("b", "a", 2))

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{U: "a", V: "b", Weight: 2}, edges[0])
	assert.Equal(t, Edge{U: "a", V: "c", Weight: 1}, edges[1])
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, std, 1e-9)

	mean, std = meanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}
