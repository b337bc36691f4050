package parse

import (
	"context"
	"time"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/bolinas/hgraph"
)

// ctxCheckInterval is the number of agenda steps between deadline checks.
const ctxCheckInterval = 256

type itemPair struct {
	item, candidate string
}

// engine is the working set of one parse call. It is owned by a single
// goroutine and discarded when the call returns; only the chart survives.
type engine struct {
	p     *Parser
	words []string
	graph *graphInput
	chart *Chart
	index *indexTables

	queue     []Item
	head      int
	pending   map[string]bool
	visited   map[string]bool
	attempted map[itemPair]bool
}

func newEngine(p *Parser, words []string, graph *hgraph.Graph) *engine {
	e := &engine{
		p:         p,
		words:     words,
		chart:     newChart(),
		index:     newIndexTables(words, graph),
		pending:   make(map[string]bool),
		visited:   make(map[string]bool),
		attempted: make(map[itemPair]bool),
	}
	if graph != nil {
		e.graph = &graphInput{graph: graph, nodeLabels: p.grammar.NodeLabels}
	}
	return e
}

func (e *engine) debug() bool {
	return e.p.log.AllowLevel(commonlog.Debug)
}

func (e *engine) enqueue(it Item) {
	k := it.Key()
	if e.pending[k] {
		return
	}
	e.queue = append(e.queue, it)
	e.pending[k] = true
}

// enqueueNew enqueues an item that has been neither queued nor processed.
func (e *engine) enqueueNew(it Item) {
	k := it.Key()
	if e.pending[k] || e.visited[k] {
		return
	}
	e.queue = append(e.queue, it)
	e.pending[k] = true
}

func (e *engine) pop() Item {
	it := e.queue[e.head]
	e.queue[e.head] = nil
	e.head++
	if e.head > 1024 && e.head*2 > len(e.queue) {
		e.queue = append([]Item(nil), e.queue[e.head:]...)
		e.head = 0
	}
	delete(e.pending, it.Key())
	return it
}

func (e *engine) seed() {
	for _, r := range e.p.grammar.Rules() {
		ax := axiom(r, e.words, e.graph)
		if ax == nil {
			if e.debug() {
				e.p.log.Debugf("rule %d has no side for this input, skipping", r.ID)
			}
			continue
		}
		e.chart.Stats.Axioms++
		e.enqueue(ax)
		if o := ax.Outside(); o.Kind == OutsideNonterminal {
			e.index.waiting.add(o.Symbol, ax)
		}
	}
}

func (e *engine) run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		e.chart.Stats.Duration = time.Since(start)
	}()

	e.seed()
	for e.head < len(e.queue) {
		if e.chart.Stats.Items%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		it := e.pop()
		e.visited[it.Key()] = true
		e.chart.Stats.Items++
		if e.debug() {
			e.p.log.Debugf("handling %s", it)
		}

		if it.Closed() {
			e.closed(it)
			continue
		}
		o := it.Outside()
		if o.Kind == OutsideNonterminal {
			e.complete(it, o)
		} else {
			e.shift(it, o)
		}
	}

	if e.chart.Success() {
		e.p.log.Infof("success: %d goal items", len(e.chart.GoalProductions()))
	}
	e.p.log.Infof("done in %s: %d items, %d chart entries", time.Since(start), e.chart.Stats.Items, e.chart.Len())
	return nil
}

func (e *engine) closed(it Item) {
	if e.successful(it) {
		if e.debug() {
			e.p.log.Debugf("  goal: %s", it)
		}
		e.chart.add(nil, Production{it})
	}

	symbol := it.Rule().Symbol
	e.index.completed.add(symbol, it)

	// An item waiting on this symbol may have found nothing to combine with
	// when it was processed; give it another chance now.
	for _, w := range e.index.waiting.get(symbol) {
		if !e.pending[w.Key()] {
			e.chart.Stats.WakeUps++
			e.enqueue(w)
		}
	}
}

func (e *engine) complete(it Item, o Outside) {
	e.index.waiting.add(o.Symbol, it)

	k := it.Key()
	for _, sub := range e.index.completed.get(o.Symbol) {
		pair := itemPair{k, sub.Key()}
		if e.attempted[pair] {
			continue
		}
		e.attempted[pair] = true
		e.chart.Stats.CompletionChecks++
		if !it.CanComplete(sub) {
			continue
		}
		n := it.Complete(sub)
		e.chart.Stats.Completions++
		if e.debug() {
			e.p.log.Debugf("  complete %s with %s -> %s", it, sub, n)
		}
		e.chart.add(n, Production{it, sub})
		e.enqueueNew(n)
	}
}

func (e *engine) shift(it Item, o Outside) {
	for _, t := range e.index.terminals(o) {
		if !it.CanShift(t) {
			continue
		}
		n := it.Shift(t)
		e.chart.Stats.Shifts++
		if e.debug() {
			e.p.log.Debugf("  shift %s", n)
		}
		e.chart.add(n, Production{it})
		e.enqueueNew(n)
	}
}

// successful reports whether a closed item derives the whole input from the
// start symbol.
func (e *engine) successful(it Item) bool {
	if it.Rule().Symbol != e.p.grammar.Start {
		return false
	}
	switch it := it.(type) {
	case *StringItem:
		return it.Len() == len(e.words)
	case *GraphItem:
		return it.EdgeCount() == e.graph.graph.NumEdges()
	case *SyncItem:
		return it.str.Len() == len(e.words) && it.graph.EdgeCount() == e.graph.graph.NumEdges()
	}
	return false
}
