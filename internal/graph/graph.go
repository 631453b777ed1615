// Package graph builds attributed similarity graphs between news sources
// and cited tweet authors, and exports them in GML interchange format.
package graph

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/nela-research/citegraph/internal/model"
)

// NodeClass distinguishes news-source nodes from Twitter-account nodes.
type NodeClass string

const (
	ClassNews    NodeClass = "news"
	ClassTwitter NodeClass = "twitter"
)

// NodeAttrs holds the attributes attached to a node. Credibility and
// Bias apply to news nodes; the counters apply to twitter nodes.
type NodeAttrs struct {
	Class       NodeClass
	Credibility model.Credibility
	Bias        string
	Followers   int
	Following   int
	TweetCount  int
}

// Edge is one undirected weighted edge.
type Edge struct {
	U, V   string
	Weight float64
}

// Graph is an undirected graph with string node IDs, per-node attributes
// and weighted edges. Self-loops are rejected.
type Graph struct {
	nodes map[string]NodeAttrs
	adj   map[string]map[string]float64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]NodeAttrs),
		adj:   make(map[string]map[string]float64),
	}
}

// AddNode inserts or replaces a node with the given attributes.
func (g *Graph) AddNode(id string, attrs NodeAttrs) {
	g.nodes[id] = attrs
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Attrs returns the attributes of a node.
func (g *Graph) Attrs(id string) (NodeAttrs, bool) {
	a, ok := g.nodes[id]
	return a, ok
}

// SetAttrs updates the attributes of an existing node.
func (g *Graph) SetAttrs(id string, attrs NodeAttrs) error {
	if !g.HasNode(id) {
		return eris.Errorf("graph: unknown node %q", id)
	}
	g.nodes[id] = attrs
	return nil
}

// AddEdge adds an undirected edge between u and v, implicitly creating
// missing endpoints with zero-value attributes. Self-loops are an error.
func (g *Graph) AddEdge(u, v string, weight float64) error {
	if u == v {
		return eris.Errorf("graph: self-loop on %q", u)
	}
	for _, id := range []string{u, v} {
		if !g.HasNode(id) {
			g.nodes[id] = NodeAttrs{}
		}
		if g.adj[id] == nil {
			g.adj[id] = make(map[string]float64)
		}
	}
	g.adj[u][v] = weight
	g.adj[v][u] = weight
	return nil
}

// Weight returns the weight of edge (u, v), if present.
func (g *Graph) Weight(u, v string) (float64, bool) {
	w, ok := g.adj[u][v]
	return w, ok
}

// Degree returns the number of edges incident to a node.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// RemoveNode deletes a node and all its incident edges.
func (g *Graph) RemoveNode(id string) {
	for nb := range g.adj[id] {
		delete(g.adj[nb], id)
	}
	delete(g.adj, id)
	delete(g.nodes, id)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, nbs := range g.adj {
		n += len(nbs)
	}
	return n / 2
}

// Nodes returns node IDs in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns all edges once each (U < V), sorted for deterministic
// export.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.EdgeCount())
	for u, nbs := range g.adj {
		for v, w := range nbs {
			if u < v {
				out = append(out, Edge{U: u, V: v, Weight: w})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].U != out[j].U {
			return out[i].U < out[j].U
		}
		return out[i].V < out[j].V
	})
	return out
}
