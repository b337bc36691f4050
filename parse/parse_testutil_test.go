package parse

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/hgraph"
)

func mustGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Parse("test", strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	return g
}

func mustGraph(t *testing.T, src string) *hgraph.Graph {
	t.Helper()
	g, err := hgraph.NewReader(strings.NewReader(src), "test").Next()
	require.NoError(t, err)
	return g
}

// words splits s into a non-nil word list, so "" is the empty string.
func words(s string) []string {
	return append([]string{}, strings.Fields(s)...)
}

func parseString(t *testing.T, g *grammar.Grammar, s string) (*Forest, *Chart) {
	t.Helper()
	f, c, err := New(g).ParseForest(context.Background(), Input{Words: words(s)})
	require.NoError(t, err)
	return f, c
}

func parseGraph(t *testing.T, g *grammar.Grammar, src string) (*Forest, *Chart) {
	t.Helper()
	f, c, err := New(g).ParseForest(context.Background(), Input{Graph: mustGraph(t, src)})
	require.NoError(t, err)
	return f, c
}

// slotSpans renders the fillers of one derivation as "Symbol[i]=I-J,..."
// lists per slot, for string forests.
func slotSpans(d Derivation) []string {
	var out []string
	for _, s := range d.Slots {
		var spans []string
		for _, f := range s.Fillers {
			it := f.(*StringItem)
			spans = append(spans, fmt.Sprintf("%d-%d", it.I, it.J))
		}
		out = append(out, fmt.Sprintf("%s[%d]=%s", s.Symbol, s.Index, strings.Join(spans, ",")))
	}
	return out
}
