package parse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringItemShift(t *testing.T) {
	g := mustGrammar(t, "S -> a b\n")
	ax := newStringItem(g.Rules()[0])
	key := ax.Key()

	assert.True(t, ax.CanShift(WordAt("a", 3)), "an empty item may start anywhere")
	assert.False(t, ax.CanShift(WordAt("b", 0)))

	n := ax.Shift(WordAt("a", 3)).(*StringItem)
	assert.Equal(t, key, ax.Key(), "shift must not modify the receiver")
	assert.Equal(t, 3, n.I)
	assert.Equal(t, 4, n.J)

	assert.False(t, n.CanShift(WordAt("b", 5)), "words must be contiguous")
	assert.Nil(t, n.Shift(WordAt("b", 5)))
	closed := n.Shift(WordAt("b", 4))
	require.NotNil(t, closed)
	assert.True(t, closed.Closed())
	assert.Equal(t, Outside{}, closed.Outside())
}

func TestStringItemComplete(t *testing.T) {
	g := mustGrammar(t, `
S -> x #A y
A -> a
E ->
`)
	s := newStringItem(g.Rules()[0]).shift(WordAt("x", 0))
	a := newStringItem(g.Rules()[1])

	assert.False(t, s.CanComplete(a), "open items cannot fill a slot")
	a1 := a.shift(WordAt("a", 1))
	a2 := a.shift(WordAt("a", 2))
	assert.True(t, s.CanComplete(a1))
	assert.False(t, s.CanComplete(a2))

	n := s.Complete(a1).(*StringItem)
	assert.Equal(t, 0, n.I)
	assert.Equal(t, 2, n.J)
	assert.Equal(t, Outside{Kind: OutsideWord, Word: "y"}, n.Outside())

	eps := newStringItem(g.Rules()[2])
	assert.True(t, eps.Closed())
	assert.False(t, s.CanComplete(eps), "wrong symbol")
}

func TestStringItemEpsilonAttachesAnywhere(t *testing.T) {
	g := mustGrammar(t, `
S -> x #E y
E ->
`)
	s := newStringItem(g.Rules()[0]).shift(WordAt("x", 4))
	eps := newStringItem(g.Rules()[1])
	require.True(t, s.CanComplete(eps))

	n := s.Complete(eps).(*StringItem)
	assert.Equal(t, 4, n.I)
	assert.Equal(t, 5, n.J)
}

func graphItemFixture(t *testing.T, grammarSrc, graphSrc string) (*GraphItem, *graphInput) {
	t.Helper()
	g := mustGrammar(t, grammarSrc)
	in := &graphInput{graph: mustGraph(t, graphSrc)}
	return newGraphItem(g.Rules()[0], in), in
}

func TestGraphItemInjective(t *testing.T) {
	it, in := graphItemFixture(t, "S -> ( : p(n) p(m))\n", "p x\np x\n")

	first := it.Shift(EdgeTerminal(in.graph.Edge(0))).(*GraphItem)
	assert.Equal(t, []string{"x"}, first.mapping[:1])
	assert.False(t, first.CanShift(EdgeTerminal(in.graph.Edge(1))), "m cannot map to x as well")
	assert.False(t, first.CanShift(EdgeTerminal(in.graph.Edge(0))), "an edge is consumed once")
}

func TestGraphItemShiftIsPure(t *testing.T) {
	it, in := graphItemFixture(t, "S -> ( : p(n) q(n))\n", "p x\nq x\n")
	key := it.Key()

	n := it.Shift(EdgeTerminal(in.graph.Edge(0))).(*GraphItem)
	assert.Equal(t, key, it.Key())
	assert.Zero(t, it.EdgeCount())
	assert.Equal(t, 1, n.EdgeCount())
	assert.NotEqual(t, key, n.Key())

	assert.False(t, n.CanShift(EdgeTerminal(in.graph.Edge(0))), "label mismatch")
	closed := n.Shift(EdgeTerminal(in.graph.Edge(1)))
	require.NotNil(t, closed)
	assert.True(t, closed.Closed())
	assert.Equal(t, []int{0, 1}, closed.(*GraphItem).Edges())
}

func TestGraphItemCompleteRejectsOverlap(t *testing.T) {
	g := mustGrammar(t, `
S -> ( : p(n) #A(n))
A -> (n : p(n))
`)
	in := &graphInput{graph: mustGraph(t, "p x\n")}
	s := newGraphItem(g.Rules()[0], in).Shift(EdgeTerminal(in.graph.Edge(0))).(*GraphItem)
	a := newGraphItem(g.Rules()[1], in).Shift(EdgeTerminal(in.graph.Edge(0))).(*GraphItem)

	require.True(t, a.Closed())
	assert.Equal(t, []string{"x"}, a.Externals())
	assert.False(t, s.CanComplete(a))
	assert.Nil(t, s.Complete(a))
}

func TestGraphItemCompleteBindsExternals(t *testing.T) {
	g := mustGrammar(t, `
S -> ( : q(n) #A(n))
A -> (n : p(n))
`)
	in := &graphInput{graph: mustGraph(t, "q x\np x\np y\n")}
	s := newGraphItem(g.Rules()[0], in).Shift(EdgeTerminal(in.graph.Edge(0))).(*GraphItem)
	ax := newGraphItem(g.Rules()[1], in)
	ax2 := ax.Shift(EdgeTerminal(in.graph.Edge(2))).(*GraphItem)
	ax1 := ax.Shift(EdgeTerminal(in.graph.Edge(1))).(*GraphItem)

	assert.False(t, s.CanComplete(ax2), "external y disagrees with n=x")
	require.True(t, s.CanComplete(ax1))
	n := s.Complete(ax1).(*GraphItem)
	assert.True(t, n.Closed())
	assert.Equal(t, []int{0, 1}, n.Edges())
}

func TestSyncItemOrder(t *testing.T) {
	g := mustGrammar(t, syncGrammar)
	in := &graphInput{graph: mustGraph(t, "dog d\nsleeps d\n")}

	n := newSyncItem(g.Rules()[1], in)
	assert.Equal(t, Outside{Kind: OutsideWord, Word: "the"}, n.Outside(), "words come first")
	n1 := n.Shift(WordAt("the", 0)).(*SyncItem)
	n2 := n1.Shift(WordAt("dog", 1)).(*SyncItem)
	assert.Equal(t, Outside{Kind: OutsideEdge, Label: "dog"}, n2.Outside())
	closed := n2.Shift(EdgeTerminal(in.graph.Edge(0))).(*SyncItem)
	require.True(t, closed.Closed())

	s := newSyncItem(g.Rules()[0], in)
	assert.Equal(t, Outside{Kind: OutsideNonterminal, Symbol: "N", Index: 1}, s.Outside())
	assert.False(t, s.CanComplete(n2), "open sub-item")
	require.True(t, s.CanComplete(closed))
	filled := s.Complete(closed).(*SyncItem)
	assert.Equal(t, Outside{Kind: OutsideWord, Word: "sleeps"}, filled.Outside())
}

func TestItemKeysDistinguishKinds(t *testing.T) {
	g := mustGrammar(t, syncGrammar)
	in := &graphInput{graph: mustGraph(t, "dog d\nsleeps d\n")}
	r := g.Rules()[1]

	keys := map[string]bool{
		newStringItem(r).Key():    true,
		newGraphItem(r, in).Key(): true,
		newSyncItem(r, in).Key():  true,
	}
	assert.Len(t, keys, 3)
}

func TestAxiom(t *testing.T) {
	g := mustGrammar(t, `
S -> ( : #N[1](x)) | #N[1]
N -> (x : dog(x))
N -> dog
`)
	in := &graphInput{graph: mustGraph(t, "dog d\n")}
	rules := g.Rules()

	assert.IsType(t, &SyncItem{}, axiom(rules[0], []string{"dog"}, in))
	assert.Nil(t, axiom(rules[1], []string{"dog"}, in))
	assert.IsType(t, &GraphItem{}, axiom(rules[1], nil, in))
	assert.Nil(t, axiom(rules[2], nil, in))
	assert.IsType(t, &StringItem{}, axiom(rules[2], []string{"dog"}, nil))
	assert.Nil(t, axiom(rules[1], []string{"dog"}, nil))
}

func TestEdgeSet(t *testing.T) {
	s := newEdgeSet(130)
	a := s.with(0).with(64).with(129)
	b := s.with(1)

	assert.False(t, s.has(0), "with must not modify the receiver")
	assert.True(t, a.has(129))
	assert.Equal(t, 3, a.count())
	assert.Equal(t, []int{0, 64, 129}, a.indices())
	assert.False(t, a.overlaps(b))
	assert.True(t, a.overlaps(s.with(64)))
	assert.Equal(t, []int{0, 1, 64, 129}, a.union(b).indices())
	assert.NotEqual(t, a.key(), b.key())
}

func TestGraphItemUniqStringsAreDistinct(t *testing.T) {
	g := mustGrammar(t, `
S -> ( : #A(n))
A -> (n : p(n, m) #A(m))
A -> (n : p(n, m))
`)
	var src strings.Builder
	for i := range 12 {
		fmt.Fprintf(&src, "p v%d v%d\n", i, i+1)
	}
	_, c := parseGraph(t, g, src.String())
	require.True(t, c.Success())

	byUniq := make(map[string]string)
	for _, it := range c.Items() {
		u := it.UniqString()
		assert.Regexp(t, `_[0-9a-f]{16}$`, u)
		if k, ok := byUniq[u]; ok {
			assert.Equal(t, k, it.Key(), "%s names two items", u)
		}
		byUniq[u] = it.Key()
	}
	assert.Greater(t, len(byUniq), 12)
}
