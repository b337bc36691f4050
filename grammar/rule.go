package grammar

import (
	"fmt"
	"strings"
)

// Element is one symbol on the string side of a rule: either a terminal word
// or a nonterminal slot.
type Element struct {
	Word   string // terminal word, empty for nonterminals
	Symbol string // nonterminal symbol, empty for words
	Index  int    // distinguishes repeated nonterminals; links string and graph slots
}

func (e Element) IsNonterminal() bool {
	return e.Symbol != ""
}

func (e Element) String() string {
	if e.IsNonterminal() {
		return fmt.Sprintf("#%s[%d]", e.Symbol, e.Index)
	}
	return e.Word
}

// RuleNode is a node of a rule's right-hand side graph.
type RuleNode struct {
	Name  string
	Label string
}

// RuleEdge is a hyperedge of a rule's right-hand side graph. Nonterminal
// edges carry a Symbol and an Index.
type RuleEdge struct {
	Label  string
	Nodes  []int // indices into RuleGraph.Nodes
	Symbol string
	Index  int
}

func (e RuleEdge) IsNonterminal() bool {
	return e.Symbol != ""
}

// RuleGraph is the hypergraph fragment on the right-hand side of a rule.
// Edges are visited in slice order.
type RuleGraph struct {
	Nodes    []RuleNode
	External []int
	Edges    []RuleEdge
}

// IsExternal reports whether node n is on the boundary of the fragment.
func (g *RuleGraph) IsExternal(n int) bool {
	for _, x := range g.External {
		if x == n {
			return true
		}
	}
	return false
}

func (g *RuleGraph) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, x := range g.External {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(g.nodeString(x))
	}
	b.WriteString(" :")
	for _, e := range g.Edges {
		b.WriteByte(' ')
		if e.IsNonterminal() {
			fmt.Fprintf(&b, "#%s[%d]", e.Symbol, e.Index)
		} else {
			b.WriteString(e.Label)
		}
		b.WriteByte('(')
		for i, n := range e.Nodes {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(g.Nodes[n].Name)
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

func (g *RuleGraph) nodeString(n int) string {
	node := g.Nodes[n]
	if node.Label != "" {
		return node.Name + "/" + node.Label
	}
	return node.Name
}

// Rule is a weighted grammar production. Rules are immutable once the
// grammar has been loaded.
type Rule struct {
	ID      int
	Symbol  string
	Weight  float64
	Words   []Element // string right-hand side
	Graph   *RuleGraph
	Partial bool // intermediate node of a binarized right-hand side
	Pos     Position
}

// HasString reports whether the rule has a string right-hand side. A rule
// with an empty string side (epsilon) still has one.
func (r *Rule) HasString() bool {
	return r.Words != nil
}

func (r *Rule) HasGraph() bool {
	return r.Graph != nil
}

// IsTerminal reports whether the rule has no nonterminal on either side.
func (r *Rule) IsTerminal() bool {
	return len(r.Nonterminals()) == 0
}

// Nonterminals returns the rule's nonterminal slots, in string order when
// the rule has a string side and in graph visit order otherwise.
func (r *Rule) Nonterminals() []Element {
	var nts []Element
	if r.HasString() {
		for _, e := range r.Words {
			if e.IsNonterminal() {
				nts = append(nts, e)
			}
		}
		return nts
	}
	if r.HasGraph() {
		for _, e := range r.Graph.Edges {
			if e.IsNonterminal() {
				nts = append(nts, Element{Symbol: e.Symbol, Index: e.Index})
			}
		}
	}
	return nts
}

func (r *Rule) String() string {
	var parts []string
	if r.HasGraph() {
		parts = append(parts, r.Graph.String())
	}
	if r.HasString() {
		words := make([]string, len(r.Words))
		for i, e := range r.Words {
			words[i] = e.String()
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return fmt.Sprintf("%d: %s -> %s ; %g", r.ID, r.Symbol, strings.Join(parts, " | "), r.Weight)
}

// alignNonterminals reorders the nonterminal edges of a synchronous rule so
// that they are visited in the same order as the string's nonterminals.
// Terminal edges keep their positions.
func (r *Rule) alignNonterminals() {
	if !r.HasString() || !r.HasGraph() {
		return
	}
	order := make(map[Element]int)
	for i, e := range r.Nonterminals() {
		order[e] = i
	}
	var slots []int
	var nts []RuleEdge
	for i, e := range r.Graph.Edges {
		if e.IsNonterminal() {
			slots = append(slots, i)
			nts = append(nts, e)
		}
	}
	sorted := make([]RuleEdge, len(nts))
	for _, e := range nts {
		pos, ok := order[Element{Symbol: e.Symbol, Index: e.Index}]
		if !ok || pos >= len(sorted) {
			return
		}
		sorted[pos] = e
	}
	for i, slot := range slots {
		r.Graph.Edges[slot] = sorted[i]
	}
}
