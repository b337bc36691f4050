package parse

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/bolinas/hgraph"
)

// Input is one object to parse: a string, a graph, or both. An empty but
// non-nil Words is the empty string.
type Input struct {
	Words []string
	Graph *hgraph.Graph
}

// Result is the outcome of parsing one Input. Err is set when the parse of
// that input was aborted; a failed parse has an empty Forest and no error.
type Result struct {
	Forest *Forest
	Chart  *Chart
	Err    error
}

// ParseForest parses one input and extracts its forest.
func (p *Parser) ParseForest(ctx context.Context, in Input) (*Forest, *Chart, error) {
	chart, err := p.Parse(ctx, in.Words, in.Graph)
	if err != nil {
		return nil, nil, err
	}
	forest, err := Extract(chart)
	if err != nil {
		p.log.Errorf("forest extraction: %s", err)
		return nil, chart, err
	}
	return forest, chart, nil
}

// ParseStrings parses each string of seq in turn and yields its forest.
// Parsing happens lazily as the caller iterates.
func (p *Parser) ParseStrings(ctx context.Context, seq iter.Seq[[]string]) iter.Seq2[*Forest, error] {
	return func(yield func(*Forest, error) bool) {
		for words := range seq {
			if words == nil {
				words = []string{}
			}
			f, _, err := p.ParseForest(ctx, Input{Words: words})
			if !yield(f, err) {
				return
			}
		}
	}
}

// ParseGraphs parses each graph of seq in turn and yields its forest.
// Parsing happens lazily as the caller iterates.
func (p *Parser) ParseGraphs(ctx context.Context, seq iter.Seq[*hgraph.Graph]) iter.Seq2[*Forest, error] {
	return func(yield func(*Forest, error) bool) {
		for g := range seq {
			f, _, err := p.ParseForest(ctx, Input{Graph: g})
			if !yield(f, err) {
				return
			}
		}
	}
}

// ParseBatch parses inputs on up to workers goroutines, each with its own
// engine, and returns the results in input order. Errors of individual
// inputs, including their timeouts, are reported in their Result; the
// returned error is only set when ctx ends before all inputs are done.
func (p *Parser) ParseBatch(ctx context.Context, inputs []Input, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			f, c, err := p.ParseForest(gctx, in)
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Forest: f, Chart: c, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
