package parse

import (
	"fmt"

	"github.com/dhamidi/bolinas/grammar"
)

// StringItem matches a rule's string side against a contiguous span
// [I, J) of the input. An item that has consumed nothing yet has no span;
// I and J are then -1.
type StringItem struct {
	rule *grammar.Rule
	dot  int
	I, J int
}

func newStringItem(r *grammar.Rule) *StringItem {
	return &StringItem{rule: r, I: -1, J: -1}
}

func (it *StringItem) isItem() {}

func (it *StringItem) Rule() *grammar.Rule {
	return it.rule
}

func (it *StringItem) Closed() bool {
	return it.dot == len(it.rule.Words)
}

// Len returns the number of words covered.
func (it *StringItem) Len() int {
	if it.I < 0 {
		return 0
	}
	return it.J - it.I
}

func (it *StringItem) anchored() bool {
	return it.I >= 0
}

func (it *StringItem) Outside() Outside {
	if it.Closed() {
		return Outside{}
	}
	e := it.rule.Words[it.dot]
	if e.IsNonterminal() {
		return Outside{Kind: OutsideNonterminal, Symbol: e.Symbol, Index: e.Index}
	}
	return Outside{Kind: OutsideWord, Word: e.Word}
}

func (it *StringItem) CanShift(t Terminal) bool {
	if t.Edge != nil || t.Pos < 0 {
		return false
	}
	o := it.Outside()
	if o.Kind != OutsideWord || o.Word != t.Word {
		return false
	}
	return !it.anchored() || t.Pos == it.J
}

func (it *StringItem) Shift(t Terminal) Item {
	if !it.CanShift(t) {
		return nil
	}
	return it.shift(t)
}

func (it *StringItem) shift(t Terminal) *StringItem {
	n := &StringItem{rule: it.rule, dot: it.dot + 1, I: it.I, J: t.Pos + 1}
	if !it.anchored() {
		n.I = t.Pos
	}
	return n
}

func (it *StringItem) CanComplete(sub Item) bool {
	s, ok := sub.(*StringItem)
	if !ok {
		return false
	}
	return it.canComplete(s)
}

func (it *StringItem) canComplete(s *StringItem) bool {
	if !s.Closed() {
		return false
	}
	o := it.Outside()
	if o.Kind != OutsideNonterminal || o.Symbol != s.rule.Symbol {
		return false
	}
	// Empty sub-items attach anywhere.
	if !s.anchored() || !it.anchored() {
		return true
	}
	return s.I == it.J
}

func (it *StringItem) Complete(sub Item) Item {
	s, ok := sub.(*StringItem)
	if !ok || !it.canComplete(s) {
		return nil
	}
	return it.complete(s)
}

func (it *StringItem) complete(s *StringItem) *StringItem {
	n := &StringItem{rule: it.rule, dot: it.dot + 1, I: it.I, J: it.J}
	switch {
	case !s.anchored():
	case !it.anchored():
		n.I, n.J = s.I, s.J
	default:
		n.J = s.J
	}
	return n
}

func (it *StringItem) Key() string {
	return fmt.Sprintf("s%d.%d:%d-%d", it.rule.ID, it.dot, it.I, it.J)
}

func (it *StringItem) UniqString() string {
	return fmt.Sprintf("%s_%d_%d_%d", it.rule.Symbol, it.rule.ID, it.I, it.J)
}

func (it *StringItem) String() string {
	return fmt.Sprintf("[%d %s •%d %d:%d]", it.rule.ID, it.rule.Symbol, it.dot, it.I, it.J)
}
