package parse

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/bolinas/hgraph"
)

func TestParseStrings(t *testing.T) {
	g := mustGrammar(t, pairGrammar)
	p := New(g)
	inputs := [][]string{words("a a"), words("a"), nil, words("a a")}

	var success []bool
	for f, err := range p.ParseStrings(context.Background(), slices.Values(inputs)) {
		require.NoError(t, err)
		success = append(success, !f.Empty())
	}
	assert.Equal(t, []bool{true, false, false, true}, success)
}

func TestParseStringsStopsEarly(t *testing.T) {
	g := mustGrammar(t, pairGrammar)
	parsed := 0
	seq := func(yield func([]string) bool) {
		for range 10 {
			parsed++
			if !yield(words("a a")) {
				return
			}
		}
	}
	for range New(g).ParseStrings(context.Background(), seq) {
		break
	}
	assert.Equal(t, 1, parsed)
}

func TestParseGraphs(t *testing.T) {
	g := mustGrammar(t, `
S -> ( : #A(n))
A -> (n : p(n))
`)
	var graphs []*hgraph.Graph
	for gr, err := range hgraph.NewReader(strings.NewReader("p x\n\np x\nq x\n\np y\n"), "in").All() {
		require.NoError(t, err)
		graphs = append(graphs, gr)
	}
	require.Len(t, graphs, 3)

	var success []bool
	for f, err := range New(g).ParseGraphs(context.Background(), slices.Values(graphs)) {
		require.NoError(t, err)
		success = append(success, !f.Empty())
	}
	assert.Equal(t, []bool{true, false, true}, success)
}

func TestParseBatchKeepsOrder(t *testing.T) {
	g := mustGrammar(t, `
S -> #S #S
S -> a
`)
	var inputs []Input
	var want []float64
	// Catalan numbers: the number of binary bracketings of n words.
	catalan := []float64{1, 1, 2, 5, 14, 42}
	for n := 1; n <= 6; n++ {
		inputs = append(inputs, Input{Words: slices.Repeat([]string{"a"}, n)})
		want = append(want, catalan[n-1])
	}
	inputs = append(inputs, Input{Words: words("b")})
	want = append(want, 0)

	results, err := New(g).ParseBatch(context.Background(), inputs, 3)
	require.NoError(t, err)
	require.Len(t, results, len(inputs))
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, want[i], r.Forest.Count(), "input %d", i)
		assert.NotNil(t, r.Chart)
	}
}

func TestParseBatchReportsInputErrors(t *testing.T) {
	g := mustGrammar(t, pairGrammar)
	results, err := New(g).ParseBatch(context.Background(), []Input{{}, {Words: words("a a")}}, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, ErrNoInput)
	assert.NoError(t, results[1].Err)
	assert.False(t, results[1].Forest.Empty())
}

func TestParseBatchCancelled(t *testing.T) {
	g := mustGrammar(t, pairGrammar)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(g).ParseBatch(ctx, []Input{{Words: words("a a")}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseBatchTimeoutIsPerInput(t *testing.T) {
	g := mustGrammar(t, `
S -> #S #S
S -> a
`)
	inputs := []Input{{Words: slices.Repeat([]string{"a"}, 40)}}
	results, err := New(g, WithTimeout(time.Nanosecond)).ParseBatch(context.Background(), inputs, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.Nil(t, results[0].Forest)

	results, err = New(g, WithTimeout(time.Hour)).ParseBatch(context.Background(), []Input{{Words: words("a a a")}}, 1)
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 2.0, results[0].Forest.Count())
}
