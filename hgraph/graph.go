// Package hgraph provides the labeled hypergraphs consumed by the parser.
package hgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Node is a graph node with an optional label.
type Node struct {
	ID    string
	Label string
}

// Edge is a labeled hyperedge over an ordered list of nodes. Index is the
// edge's position in its graph and identifies it during parsing.
type Edge struct {
	Index int
	Label string
	Nodes []string
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s(%s)", e.Label, strings.Join(e.Nodes, ","))
}

// Graph is a hypergraph. It is built with AddNode and AddEdge and must not
// be modified while a parse is reading it.
type Graph struct {
	Name string

	nodes    map[string]*Node
	order    []string
	edges    []*Edge
	incident map[string][]*Edge
}

func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		incident: make(map[string][]*Edge),
	}
}

// AddNode adds a node or sets the label of an existing one.
func (g *Graph) AddNode(id, label string) *Node {
	if n, ok := g.nodes[id]; ok {
		if label != "" {
			n.Label = label
		}
		return n
	}
	n := &Node{ID: id, Label: label}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddEdge adds an edge, creating unknown nodes on the fly.
func (g *Graph) AddEdge(label string, nodes ...string) *Edge {
	e := &Edge{Index: len(g.edges), Label: label, Nodes: nodes}
	g.edges = append(g.edges, e)
	seen := make(map[string]bool, len(nodes))
	for _, id := range nodes {
		g.AddNode(id, "")
		if !seen[id] {
			seen[id] = true
			g.incident[id] = append(g.incident[id], e)
		}
	}
	return e
}

func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// NodeLabel returns the label of a node, or "" if it has none.
func (g *Graph) NodeLabel(id string) string {
	if n, ok := g.nodes[id]; ok {
		return n.Label
	}
	return ""
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

func (g *Graph) Edges() []*Edge {
	return g.edges
}

func (g *Graph) Edge(i int) *Edge {
	return g.edges[i]
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// Incident returns the edges touching node id.
func (g *Graph) Incident(id string) []*Edge {
	return g.incident[id]
}

// EdgesByLabel groups edges by label, preserving edge order within each
// group.
func (g *Graph) EdgesByLabel() map[string][]*Edge {
	byLabel := make(map[string][]*Edge)
	for _, e := range g.edges {
		byLabel[e.Label] = append(byLabel[e.Label], e)
	}
	return byLabel
}

func (g *Graph) String() string {
	var b strings.Builder
	ids := append([]string(nil), g.order...)
	sort.Strings(ids)
	for _, id := range ids {
		if label := g.nodes[id].Label; label != "" {
			fmt.Fprintf(&b, "node %s %s\n", id, label)
		}
	}
	for _, e := range g.edges {
		fmt.Fprintf(&b, "%s %s\n", e.Label, strings.Join(e.Nodes, " "))
	}
	return b.String()
}
