package parse

import (
	"fmt"
	"math"
)

// Slot is one nonterminal slot of a rule together with the closed items
// that can fill it.
type Slot struct {
	Symbol  string
	Index   int
	Fillers []Item
}

// Derivation is one way of splitting an item's coverage among its rule's
// nonterminal slots, listed in right-hand side order. Fillers of different
// slots combine freely.
type Derivation struct {
	Slots []Slot
}

// Node is a closed item of the forest with all of its derivations.
type Node struct {
	Item Item
	// Partial marks an intermediate node of a binarized rule. Its chain was
	// not grouped: it has exactly one derivation and every slot one filler.
	Partial     bool
	Derivations []Derivation
}

// Forest is the packed derivation forest of one input: the goal's
// alternatives plus a node for every reachable closed item that has
// nonterminal children. Items without a node are leaves.
type Forest struct {
	Goal  []Item
	nodes map[string]*Node
	keys  []string
}

// Empty reports whether the input had no derivation.
func (f *Forest) Empty() bool {
	return len(f.Goal) == 0
}

// Node returns the node of it, or nil if it is a leaf or not in the forest.
func (f *Forest) Node(it Item) *Node {
	return f.nodes[it.Key()]
}

// Nodes returns the forest nodes in a stable order.
func (f *Forest) Nodes() []*Node {
	nodes := make([]*Node, len(f.keys))
	for i, k := range f.keys {
		nodes[i] = f.nodes[k]
	}
	return nodes
}

func (f *Forest) Len() int {
	return len(f.nodes)
}

// Walk calls fn once for every item reachable from the goal, depth first,
// parents before children. n is nil for leaves.
func (f *Forest) Walk(fn func(it Item, n *Node)) {
	seen := make(map[string]bool)
	var visit func(it Item)
	visit = func(it Item) {
		k := it.Key()
		if seen[k] {
			return
		}
		seen[k] = true
		n := f.nodes[k]
		fn(it, n)
		if n == nil {
			return
		}
		for _, d := range n.Derivations {
			for _, s := range d.Slots {
				for _, c := range s.Fillers {
					visit(c)
				}
			}
		}
	}
	for _, it := range f.Goal {
		visit(it)
	}
}

// Count returns the number of distinct derivation trees in the forest. It
// returns +Inf if the forest is cyclic.
func (f *Forest) Count() float64 {
	const inProgress = -1
	memo := make(map[string]float64)
	var count func(it Item) float64
	count = func(it Item) float64 {
		k := it.Key()
		if c, ok := memo[k]; ok {
			if c == inProgress {
				return math.Inf(1)
			}
			return c
		}
		n := f.nodes[k]
		if n == nil {
			memo[k] = 1
			return 1
		}
		memo[k] = inProgress
		total := 0.0
		for _, d := range n.Derivations {
			ways := 1.0
			for _, s := range d.Slots {
				sum := 0.0
				for _, c := range s.Fillers {
					sum += count(c)
				}
				ways *= sum
			}
			total += ways
		}
		memo[k] = total
		return total
	}
	total := 0.0
	for _, it := range f.Goal {
		total += count(it)
	}
	return total
}

// Extract builds the forest of the goal from a raw chart. Only the goal and
// the closed items reachable from it become nodes; the open items in
// between are folded into the derivations of the closed item they lead to.
//
// Extract fails with a *ConsistencyError if the chart has a shape the
// search cannot produce. A chart without goal productions yields an empty
// forest and no error.
func Extract(c *Chart) (*Forest, error) {
	x := &extractor{
		chart: c,
		memo:  make(map[string][]Derivation),
	}
	f, err := x.extract()
	if err != nil {
		extractionFailures.Inc()
		return nil, err
	}
	return f, nil
}

type extractor struct {
	chart *Chart
	memo  map[string][]Derivation
}

// reachable returns the items reachable from the goal in discovery order.
// Axioms have no chart entry of their own but are reached as antecedents.
func (x *extractor) reachable() []Item {
	var order []Item
	seen := map[string]bool{goalKey: true}
	var stack []Item
	push := func(prods []Production) {
		for i := len(prods) - 1; i >= 0; i-- {
			for j := len(prods[i]) - 1; j >= 0; j-- {
				stack = append(stack, prods[i][j])
			}
		}
	}
	push(x.chart.GoalProductions())
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		k := it.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		order = append(order, it)
		push(x.chart.productions(k))
	}
	return order
}

func (x *extractor) extract() (*Forest, error) {
	f := &Forest{nodes: make(map[string]*Node)}
	for _, p := range x.chart.GoalProductions() {
		f.Goal = append(f.Goal, p...)
	}
	if f.Empty() {
		return f, nil
	}

	for _, it := range x.reachable() {
		if !it.Closed() {
			continue
		}
		k := it.Key()
		if len(x.chart.productions(k)) == 0 {
			continue
		}
		ds, err := x.derivations(it)
		if err != nil {
			return nil, err
		}
		if !hasSlots(ds) {
			continue
		}
		f.nodes[k] = &Node{Item: it, Partial: it.Rule().Partial, Derivations: ds}
		f.keys = append(f.keys, k)
	}
	return f, nil
}

func hasSlots(ds []Derivation) bool {
	for _, d := range ds {
		if len(d.Slots) > 0 {
			return true
		}
	}
	return false
}

// derivations walks back from it along its chain of shifts and completions
// to the rule's axiom. Completions sharing a left antecedent are grouped
// into one slot whose fillers are their right antecedents; every distinct
// left antecedent contributes its own derivations.
func (x *extractor) derivations(it Item) ([]Derivation, error) {
	k := it.Key()
	if ds, ok := x.memo[k]; ok {
		return ds, nil
	}
	prods := x.chart.productions(k)
	if len(prods) == 0 {
		ds := []Derivation{{}}
		x.memo[k] = ds
		return ds, nil
	}

	rule := it.Rule()
	if rule.Partial && len(prods) != 1 {
		return nil, &ConsistencyError{Item: k, Rule: rule,
			Reason: fmt.Sprintf("binarization node has %d productions, want 1", len(prods))}
	}

	arity := len(prods[0])
	for _, p := range prods[1:] {
		if len(p) != arity {
			return nil, &ConsistencyError{Item: k, Rule: rule,
				Reason: fmt.Sprintf("productions of mixed arity %d and %d", arity, len(p))}
		}
	}
	if arity != 1 && arity != 2 {
		return nil, &ConsistencyError{Item: k, Rule: rule,
			Reason: fmt.Sprintf("unexpected split arity %d", arity)}
	}

	var lefts []Item
	fillers := make(map[string][]Item)
	for _, p := range prods {
		lk := p[0].Key()
		if _, ok := fillers[lk]; !ok {
			lefts = append(lefts, p[0])
			fillers[lk] = nil
		}
		if arity == 2 {
			fillers[lk] = append(fillers[lk], p[1])
		}
	}

	var ds []Derivation
	for _, left := range lefts {
		prefix, err := x.derivations(left)
		if err != nil {
			return nil, err
		}
		if arity == 1 {
			ds = append(ds, prefix...)
			continue
		}
		o := left.Outside()
		slot := Slot{Symbol: o.Symbol, Index: o.Index, Fillers: fillers[left.Key()]}
		for _, d := range prefix {
			slots := make([]Slot, len(d.Slots), len(d.Slots)+1)
			copy(slots, d.Slots)
			ds = append(ds, Derivation{Slots: append(slots, slot)})
		}
	}
	x.memo[k] = ds
	return ds, nil
}
