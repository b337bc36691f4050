// Package parse implements a deductive chart parser for strings, hypergraphs
// and synchronized string/graph pairs, and the extraction of packed
// derivation forests from its charts.
//
// The parser seeds one axiom item per grammar rule and explores the space of
// partial derivations breadth first, shifting terminals (words or edges) and
// completing nonterminal slots with closed items until no new item can be
// derived. Every step is recorded in a Chart; Extract turns the chart into a
// Forest holding only the derivations of the goal.
package parse

import (
	"context"
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/hgraph"
)

const tracerName = "github.com/dhamidi/bolinas/parse"

// Parser parses inputs against one grammar. A Parser holds no per-parse
// state and may be used from several goroutines at once.
type Parser struct {
	grammar *grammar.Grammar
	log     commonlog.Logger
	tracer  trace.Tracer
	timeout time.Duration
}

type Option func(*Parser)

func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(p *Parser) {
		p.tracer = tracer
	}
}

// WithTimeout bounds the running time of every Parse call. Zero means no
// limit beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(p *Parser) {
		p.timeout = d
	}
}

func New(g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{
		grammar: g,
		log:     commonlog.GetLogger("bolinas.parse"),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

// Stats describes one run of the deduction loop.
type Stats struct {
	Axioms           int
	Items            int // items popped from the agenda
	Shifts           int
	CompletionChecks int // pairs tested with CanComplete
	Completions      int
	WakeUps          int
	Duration         time.Duration
}

// Parse runs the deduction loop over words, graph, or both, and returns the
// raw chart of all operations performed. Finding no derivation is not an
// error; check Chart.Success. The search is exhaustive; ctx and the
// parser's timeout only bound its running time.
func (p *Parser) Parse(ctx context.Context, words []string, graph *hgraph.Graph) (*Chart, error) {
	if words == nil && graph == nil {
		return nil, ErrNoInput
	}
	kind := inputKind(words, graph)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ctx, span := p.tracer.Start(ctx, "parse",
		trace.WithAttributes(
			attribute.String("bolinas.input", kind),
			attribute.Int("bolinas.words", len(words)),
			attribute.Int("bolinas.rules", p.grammar.Len()),
		))
	defer span.End()
	if graph != nil {
		span.SetAttributes(attribute.Int("bolinas.edges", graph.NumEdges()))
	}

	e := newEngine(p, words, graph)
	err := e.run(ctx)
	observe(kind, e.chart, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("parse %s: %w", kind, err)
	}
	span.SetAttributes(
		attribute.Int("bolinas.items", e.chart.Stats.Items),
		attribute.Bool("bolinas.success", e.chart.Success()),
	)
	return e.chart, nil
}

func inputKind(words []string, graph *hgraph.Graph) string {
	switch {
	case words != nil && graph != nil:
		return "sync"
	case graph != nil:
		return "graph"
	default:
		return "string"
	}
}
