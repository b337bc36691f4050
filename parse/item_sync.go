package parse

import (
	"fmt"

	"github.com/dhamidi/bolinas/grammar"
)

// SyncItem advances a string item and a graph item of the same
// synchronous rule in lockstep. Words are consumed first, then graph edges;
// a nonterminal slot is completed once both sides have reached it.
type SyncItem struct {
	rule  *grammar.Rule
	str   *StringItem
	graph *GraphItem
}

func newSyncItem(r *grammar.Rule, in *graphInput) *SyncItem {
	return &SyncItem{rule: r, str: newStringItem(r), graph: newGraphItem(r, in)}
}

func (it *SyncItem) isItem() {}

func (it *SyncItem) Rule() *grammar.Rule {
	return it.rule
}

// StringItem returns the string half of the item.
func (it *SyncItem) StringItem() *StringItem {
	return it.str
}

// GraphItem returns the graph half of the item.
func (it *SyncItem) GraphItem() *GraphItem {
	return it.graph
}

func (it *SyncItem) Closed() bool {
	return it.str.Closed() && it.graph.Closed()
}

func (it *SyncItem) Outside() Outside {
	so := it.str.Outside()
	if so.Kind == OutsideWord {
		return so
	}
	gro := it.graph.Outside()
	if gro.Kind == OutsideEdge {
		return gro
	}
	if so.Kind == OutsideNonterminal {
		return so
	}
	return gro
}

// atSlot reports whether both halves wait on the same nonterminal slot.
func (it *SyncItem) atSlot() bool {
	so, gro := it.str.Outside(), it.graph.Outside()
	return so.Kind == OutsideNonterminal && gro.Kind == OutsideNonterminal &&
		so.Symbol == gro.Symbol && so.Index == gro.Index
}

func (it *SyncItem) CanShift(t Terminal) bool {
	switch it.Outside().Kind {
	case OutsideWord:
		return it.str.CanShift(t)
	case OutsideEdge:
		return it.graph.CanShift(t)
	}
	return false
}

func (it *SyncItem) Shift(t Terminal) Item {
	switch it.Outside().Kind {
	case OutsideWord:
		if !it.str.CanShift(t) {
			return nil
		}
		return &SyncItem{rule: it.rule, str: it.str.shift(t), graph: it.graph}
	case OutsideEdge:
		n, ok := it.graph.tryShift(t)
		if !ok {
			return nil
		}
		return &SyncItem{rule: it.rule, str: it.str, graph: n}
	}
	return nil
}

func (it *SyncItem) tryComplete(sub Item) (*SyncItem, bool) {
	s, ok := sub.(*SyncItem)
	if !ok || !it.atSlot() {
		return nil, false
	}
	if !it.str.canComplete(s.str) {
		return nil, false
	}
	g, ok := it.graph.tryComplete(s.graph)
	if !ok {
		return nil, false
	}
	return &SyncItem{rule: it.rule, str: it.str.complete(s.str), graph: g}, true
}

func (it *SyncItem) CanComplete(sub Item) bool {
	_, ok := it.tryComplete(sub)
	return ok
}

func (it *SyncItem) Complete(sub Item) Item {
	if n, ok := it.tryComplete(sub); ok {
		return n
	}
	return nil
}

func (it *SyncItem) Key() string {
	return "y" + it.str.Key() + "/" + it.graph.Key()
}

func (it *SyncItem) UniqString() string {
	return fmt.Sprintf("%s_%d_%d_%d_%016x", it.rule.Symbol, it.rule.ID, it.str.I, it.str.J, hashKey(it.graph.Key()))
}

func (it *SyncItem) String() string {
	return fmt.Sprintf("[%d %s %d:%d edges=%v]", it.rule.ID, it.rule.Symbol, it.str.I, it.str.J, it.graph.Edges())
}
