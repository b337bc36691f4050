package parse

import (
	"fmt"
	"strings"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/hgraph"
)

// graphInput is the graph being parsed, shared by all graph items of one
// parse call.
type graphInput struct {
	graph      *hgraph.Graph
	nodeLabels bool
}

// GraphItem matches a rule's graph side against a set of input edges.
// mapping binds rule nodes (by index) to input node ids; unbound nodes map
// to "".
type GraphItem struct {
	rule    *grammar.Rule
	in      *graphInput
	dot     int
	shifted edgeSet
	mapping []string
}

func newGraphItem(r *grammar.Rule, in *graphInput) *GraphItem {
	return &GraphItem{
		rule:    r,
		in:      in,
		shifted: newEdgeSet(in.graph.NumEdges()),
		mapping: make([]string, len(r.Graph.Nodes)),
	}
}

func (it *GraphItem) isItem() {}

func (it *GraphItem) Rule() *grammar.Rule {
	return it.rule
}

func (it *GraphItem) Closed() bool {
	return it.dot == len(it.rule.Graph.Edges)
}

// EdgeCount returns the number of input edges consumed.
func (it *GraphItem) EdgeCount() int {
	return it.shifted.count()
}

// Edges returns the indices of the consumed input edges.
func (it *GraphItem) Edges() []int {
	return it.shifted.indices()
}

// Externals returns the input nodes bound to the rule's external nodes.
func (it *GraphItem) Externals() []string {
	ext := make([]string, len(it.rule.Graph.External))
	for i, n := range it.rule.Graph.External {
		ext[i] = it.mapping[n]
	}
	return ext
}

func (it *GraphItem) Outside() Outside {
	if it.Closed() {
		return Outside{}
	}
	e := it.rule.Graph.Edges[it.dot]
	if e.IsNonterminal() {
		return Outside{Kind: OutsideNonterminal, Symbol: e.Symbol, Index: e.Index}
	}
	return Outside{Kind: OutsideEdge, Label: e.Label}
}

// bind extends the node mapping so that rule nodes ruleNodes[i] map to
// graphNodes[i]. Existing bindings must agree, new bindings must keep the
// mapping injective, and under the node-label policy a labeled rule node
// only binds to a graph node with the same label.
// An empty graph node leaves its rule node as it is.
func (it *GraphItem) bind(ruleNodes []int, graphNodes []string) ([]string, bool) {
	if len(ruleNodes) != len(graphNodes) {
		return nil, false
	}
	m := make([]string, len(it.mapping))
	copy(m, it.mapping)
	for i, r := range ruleNodes {
		g := graphNodes[i]
		if g == "" {
			continue
		}
		if m[r] != "" {
			if m[r] != g {
				return nil, false
			}
			continue
		}
		for _, bound := range m {
			if bound == g {
				return nil, false
			}
		}
		if label := it.rule.Graph.Nodes[r].Label; it.in.nodeLabels && label != "" && label != it.in.graph.NodeLabel(g) {
			return nil, false
		}
		m[r] = g
	}
	return m, true
}

// boundaryOK reports whether every input edge touching an internal node of
// the match is part of the match. Only closed items are checked; until then
// the missing edges may still be consumed.
func (it *GraphItem) boundaryOK() bool {
	if !it.Closed() {
		return true
	}
	for r, g := range it.mapping {
		if g == "" || it.rule.Graph.IsExternal(r) {
			continue
		}
		for _, e := range it.in.graph.Incident(g) {
			if !it.shifted.has(e.Index) {
				return false
			}
		}
	}
	return true
}

func (it *GraphItem) tryShift(t Terminal) (*GraphItem, bool) {
	if t.Edge == nil {
		return nil, false
	}
	o := it.Outside()
	if o.Kind != OutsideEdge || o.Label != t.Edge.Label || it.shifted.has(t.Edge.Index) {
		return nil, false
	}
	m, ok := it.bind(it.rule.Graph.Edges[it.dot].Nodes, t.Edge.Nodes)
	if !ok {
		return nil, false
	}
	n := &GraphItem{
		rule:    it.rule,
		in:      it.in,
		dot:     it.dot + 1,
		shifted: it.shifted.with(t.Edge.Index),
		mapping: m,
	}
	return n, n.boundaryOK()
}

func (it *GraphItem) CanShift(t Terminal) bool {
	_, ok := it.tryShift(t)
	return ok
}

func (it *GraphItem) Shift(t Terminal) Item {
	if n, ok := it.tryShift(t); ok {
		return n
	}
	return nil
}

func (it *GraphItem) tryComplete(s *GraphItem) (*GraphItem, bool) {
	if !s.Closed() {
		return nil, false
	}
	o := it.Outside()
	if o.Kind != OutsideNonterminal || o.Symbol != s.rule.Symbol {
		return nil, false
	}
	if it.shifted.overlaps(s.shifted) {
		return nil, false
	}
	m, ok := it.bind(it.rule.Graph.Edges[it.dot].Nodes, s.Externals())
	if !ok {
		return nil, false
	}
	n := &GraphItem{
		rule:    it.rule,
		in:      it.in,
		dot:     it.dot + 1,
		shifted: it.shifted.union(s.shifted),
		mapping: m,
	}
	return n, n.boundaryOK()
}

func (it *GraphItem) CanComplete(sub Item) bool {
	s, ok := sub.(*GraphItem)
	if !ok {
		return false
	}
	_, ok = it.tryComplete(s)
	return ok
}

func (it *GraphItem) Complete(sub Item) Item {
	s, ok := sub.(*GraphItem)
	if !ok {
		return nil
	}
	if n, ok := it.tryComplete(s); ok {
		return n
	}
	return nil
}

func (it *GraphItem) Key() string {
	return fmt.Sprintf("g%d.%d:%s:%s", it.rule.ID, it.dot, it.shifted.key(), strings.Join(it.mapping, "\x1f"))
}

func (it *GraphItem) UniqString() string {
	return fmt.Sprintf("%s_%d_%016x", it.rule.Symbol, it.rule.ID, hashKey(it.Key()))
}

func (it *GraphItem) String() string {
	return fmt.Sprintf("[%d %s •%d edges=%v ext=%v]", it.rule.ID, it.rule.Symbol, it.dot, it.Edges(), it.Externals())
}
