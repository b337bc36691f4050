package parse

import (
	"fmt"
	"hash/fnv"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/hgraph"
)

// OutsideKind classifies the next unmatched element of an item's rule.
type OutsideKind int

const (
	OutsideNone OutsideKind = iota // the item is closed
	OutsideWord
	OutsideEdge
	OutsideNonterminal
)

func (k OutsideKind) String() string {
	switch k {
	case OutsideWord:
		return "word"
	case OutsideEdge:
		return "edge"
	case OutsideNonterminal:
		return "nonterminal"
	default:
		return "none"
	}
}

// Outside describes the next unmatched right-hand side element.
type Outside struct {
	Kind   OutsideKind
	Word   string // OutsideWord
	Label  string // OutsideEdge
	Symbol string // OutsideNonterminal
	Index  int    // OutsideNonterminal
}

func (o Outside) String() string {
	switch o.Kind {
	case OutsideWord:
		return fmt.Sprintf("word %q", o.Word)
	case OutsideEdge:
		return fmt.Sprintf("edge %q", o.Label)
	case OutsideNonterminal:
		return fmt.Sprintf("#%s[%d]", o.Symbol, o.Index)
	default:
		return "none"
	}
}

// Terminal is one unit of input: a word at a string position, or a graph
// edge.
type Terminal struct {
	Word string
	Pos  int
	Edge *hgraph.Edge
}

func WordAt(word string, pos int) Terminal {
	return Terminal{Word: word, Pos: pos}
}

func EdgeTerminal(e *hgraph.Edge) Terminal {
	return Terminal{Pos: -1, Edge: e}
}

// Item is a partial match of one rule against the input. The variants are
// *StringItem, *GraphItem and *SyncItem; no other type implements Item.
//
// Items are values: Shift and Complete return new items and never modify
// the receiver. Two items are the same derivation state iff their keys are
// equal. Shift and Complete may only be called when the corresponding
// CanShift / CanComplete holds; otherwise they return nil.
type Item interface {
	Rule() *grammar.Rule
	Closed() bool
	Outside() Outside
	CanShift(t Terminal) bool
	Shift(t Terminal) Item
	CanComplete(sub Item) bool
	Complete(sub Item) Item
	// Key identifies the derivation state: rule, right-hand side position,
	// consumed span or edge set, and node mapping.
	Key() string
	// UniqString is a short identifier for the item used by serializers.
	UniqString() string
	String() string

	isItem()
}

// Axiom returns the empty item of rule r for the given inputs, or nil if the
// rule cannot take part in such a parse (for example a graph-only rule when
// parsing a string).
func axiom(r *grammar.Rule, words []string, in *graphInput) Item {
	switch {
	case words != nil && in != nil:
		if !r.HasString() || !r.HasGraph() {
			return nil
		}
		return newSyncItem(r, in)
	case words != nil:
		if !r.HasString() {
			return nil
		}
		return newStringItem(r)
	case in != nil:
		if !r.HasGraph() {
			return nil
		}
		return newGraphItem(r, in)
	}
	return nil
}

// hashKey shortens an item key for use in identifiers.
func hashKey(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}
