// Package grammar holds weighted hyperedge-replacement and context-free
// grammars and reads them from their line-oriented text format.
package grammar

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultStart is used when a grammar file has no %start directive.
const DefaultStart = "S"

var (
	ErrUnknownSymbol = errors.New("unknown nonterminal")
	ErrSlotMismatch  = errors.New("string and graph nonterminals differ")
	ErrUnitCycle     = errors.New("cycle of unit rules")
	ErrDuplicateRule = errors.New("duplicate rule id")
	ErrEmptyGrammar  = errors.New("grammar has no rules")
)

// RuleError attaches a validation failure to the rule that caused it.
type RuleError struct {
	Rule *Rule
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d (%s): %v", e.Rule.ID, e.Rule.Symbol, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Grammar is a set of rules with a designated start symbol. A Grammar is
// read-only once loaded and may be shared between concurrent parses.
type Grammar struct {
	Start string
	// NodeLabels makes graph node labels part of edge matching.
	NodeLabels bool

	rules    []*Rule
	byID     map[int]*Rule
	bySymbol map[string][]*Rule
}

// New returns an empty grammar with the given start symbol.
func New(start string) *Grammar {
	return &Grammar{
		Start:    start,
		byID:     make(map[int]*Rule),
		bySymbol: make(map[string][]*Rule),
	}
}

// Add appends a rule. Rule ids must be unique.
func (g *Grammar) Add(r *Rule) error {
	if _, ok := g.byID[r.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateRule, r.ID)
	}
	r.alignNonterminals()
	g.rules = append(g.rules, r)
	g.byID[r.ID] = r
	g.bySymbol[r.Symbol] = append(g.bySymbol[r.Symbol], r)
	return nil
}

// Rules returns the rules in the order they were added.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

func (g *Grammar) Rule(id int) *Rule {
	return g.byID[id]
}

func (g *Grammar) Len() int {
	return len(g.rules)
}

// RulesFor returns the rules whose left-hand side is symbol.
func (g *Grammar) RulesFor(symbol string) []*Rule {
	return g.bySymbol[symbol]
}

// Symbols returns the left-hand side symbols in sorted order.
func (g *Grammar) Symbols() []string {
	symbols := make([]string, 0, len(g.bySymbol))
	for s := range g.bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// MaxID returns the largest rule id, or -1 for an empty grammar.
func (g *Grammar) MaxID() int {
	max := -1
	for _, r := range g.rules {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}

// Validate checks the grammar for references to undefined nonterminals,
// synchronous rules whose two sides disagree on their nonterminal slots,
// graph nonterminal edges whose arity differs from the referenced rules,
// and cycles of unit rules (counting rules whose other nonterminals are
// nullable), which would make the derivation forest cyclic.
// All problems found are returned joined.
func (g *Grammar) Validate() error {
	if len(g.rules) == 0 {
		return ErrEmptyGrammar
	}
	var errs []error
	if _, ok := g.bySymbol[g.Start]; !ok {
		errs = append(errs, fmt.Errorf("start symbol %q: %w", g.Start, ErrUnknownSymbol))
	}
	for _, r := range g.rules {
		for _, nt := range r.Nonterminals() {
			if _, ok := g.bySymbol[nt.Symbol]; !ok {
				errs = append(errs, &RuleError{Rule: r, Err: fmt.Errorf("%w %q", ErrUnknownSymbol, nt.Symbol)})
			}
		}
		if r.HasString() && r.HasGraph() {
			if err := checkSlots(r); err != nil {
				errs = append(errs, &RuleError{Rule: r, Err: err})
			}
		}
		if r.HasGraph() {
			errs = append(errs, g.checkArity(r)...)
		}
	}
	if cycle := g.unitCycle(); cycle != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrUnitCycle, cycle))
	}
	return errors.Join(errs...)
}

func checkSlots(r *Rule) error {
	str := make(map[Element]int)
	for _, e := range r.Words {
		if e.IsNonterminal() {
			str[e]++
		}
	}
	gr := make(map[Element]int)
	for _, e := range r.Graph.Edges {
		if e.IsNonterminal() {
			gr[Element{Symbol: e.Symbol, Index: e.Index}]++
		}
	}
	if len(str) != len(gr) {
		return ErrSlotMismatch
	}
	for e, n := range str {
		if n != 1 || gr[e] != 1 {
			return fmt.Errorf("%w: %s", ErrSlotMismatch, e)
		}
	}
	return nil
}

func (g *Grammar) checkArity(r *Rule) []error {
	var errs []error
	for _, e := range r.Graph.Edges {
		if !e.IsNonterminal() {
			continue
		}
		for _, sub := range g.bySymbol[e.Symbol] {
			if sub.HasGraph() && len(sub.Graph.External) != len(e.Nodes) {
				errs = append(errs, &RuleError{Rule: r, Err: fmt.Errorf("edge #%s[%d] has %d nodes, rule %d has %d external nodes",
					e.Symbol, e.Index, len(e.Nodes), sub.ID, len(sub.Graph.External))})
			}
		}
	}
	return errs
}

// side returns the rule's string right-hand side, or its graph edges as
// elements when graph is set. ok is false if the rule lacks that side.
func (r *Rule) side(graph bool) (rhs []Element, ok bool) {
	if !graph {
		return r.Words, r.HasString()
	}
	if !r.HasGraph() {
		return nil, false
	}
	rhs = make([]Element, len(r.Graph.Edges))
	for i, e := range r.Graph.Edges {
		rhs[i] = Element{Word: e.Label, Symbol: e.Symbol, Index: e.Index}
	}
	return rhs, true
}

// nullable returns the symbols that derive the empty string, or the empty
// graph when graph is set.
func (g *Grammar) nullable(graph bool) map[string]bool {
	null := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, r := range g.rules {
			if null[r.Symbol] {
				continue
			}
			rhs, ok := r.side(graph)
			if ok && allNullable(rhs, null, -1) {
				null[r.Symbol] = true
				changed = true
			}
		}
	}
	return null
}

// allNullable reports whether every element except the one at skip is a
// nullable nonterminal.
func allNullable(rhs []Element, null map[string]bool, skip int) bool {
	for i, e := range rhs {
		if i != skip && (!e.IsNonterminal() || !null[e.Symbol]) {
			return false
		}
	}
	return true
}

// unitTargets returns the nonterminals a rule side can rewrite its symbol
// to without consuming input: those whose siblings are all nullable.
func unitTargets(rhs []Element, null map[string]bool) []string {
	var out []string
	for i, e := range rhs {
		if e.IsNonterminal() && allNullable(rhs, null, i) {
			out = append(out, e.Symbol)
		}
	}
	return out
}

// unitCycle returns the symbols of a cycle of unit rules, or nil. A rule
// counts as a unit rule on a side where it has no terminals and all but one
// of its nonterminals are nullable.
func (g *Grammar) unitCycle() []string {
	next := make(map[string][]string)
	for _, graph := range []bool{false, true} {
		null := g.nullable(graph)
		for _, r := range g.rules {
			if rhs, ok := r.side(graph); ok {
				next[r.Symbol] = append(next[r.Symbol], unitTargets(rhs, null)...)
			}
		}
	}

	const (
		unseen = iota
		active
		done
	)
	state := make(map[string]int)
	var path []string
	var visit func(s string) []string
	visit = func(s string) []string {
		switch state[s] {
		case active:
			for i, p := range path {
				if p == s {
					return append(append([]string{}, path[i:]...), s)
				}
			}
		case done:
			return nil
		}
		state[s] = active
		path = append(path, s)
		for _, t := range next[s] {
			if c := visit(t); c != nil {
				return c
			}
		}
		path = path[:len(path)-1]
		state[s] = done
		return nil
	}
	for _, s := range g.Symbols() {
		if c := visit(s); c != nil {
			return c
		}
	}
	return nil
}
