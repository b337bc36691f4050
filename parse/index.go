package parse

import "github.com/dhamidi/bolinas/hgraph"

// itemSet is an insertion-ordered set of items.
type itemSet struct {
	items []Item
	seen  map[string]bool
}

func (s *itemSet) add(it Item) bool {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	k := it.Key()
	if s.seen[k] {
		return false
	}
	s.seen[k] = true
	s.items = append(s.items, it)
	return true
}

// symbolIndex maps nonterminal symbols to item sets.
type symbolIndex map[string]*itemSet

func (x symbolIndex) add(symbol string, it Item) bool {
	s, ok := x[symbol]
	if !ok {
		s = &itemSet{}
		x[symbol] = s
	}
	return s.add(it)
}

// get returns the items under symbol. The slice must not be retained across
// calls to add.
func (x symbolIndex) get(symbol string) []Item {
	if s, ok := x[symbol]; ok {
		return s.items
	}
	return nil
}

// indexTables give constant-time access to the terminals available for
// shifting and to the items available for completion.
type indexTables struct {
	words     map[string][]int
	edges     map[string][]*hgraph.Edge
	completed symbolIndex // closed items by left-hand symbol
	waiting   symbolIndex // open items by the nonterminal they need next
}

func newIndexTables(words []string, graph *hgraph.Graph) *indexTables {
	x := &indexTables{
		words:     make(map[string][]int),
		edges:     make(map[string][]*hgraph.Edge),
		completed: make(symbolIndex),
		waiting:   make(symbolIndex),
	}
	for i, w := range words {
		x.words[w] = append(x.words[w], i)
	}
	if graph != nil {
		x.edges = graph.EdgesByLabel()
	}
	return x
}

// terminals returns the candidate terminals for an outside word or edge.
func (x *indexTables) terminals(o Outside) []Terminal {
	switch o.Kind {
	case OutsideWord:
		positions := x.words[o.Word]
		ts := make([]Terminal, len(positions))
		for i, pos := range positions {
			ts[i] = WordAt(o.Word, pos)
		}
		return ts
	case OutsideEdge:
		edges := x.edges[o.Label]
		ts := make([]Terminal, len(edges))
		for i, e := range edges {
			ts[i] = EdgeTerminal(e)
		}
		return ts
	}
	return nil
}
