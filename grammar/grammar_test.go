package grammar

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Grammar {
	t.Helper()
	g, err := Parse("test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return g
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown nonterminal", "S -> #A\n", ErrUnknownSymbol},
		{"missing start", "%start TOP\nS -> a\n", ErrUnknownSymbol},
		{"slot mismatch", "S -> ( : #A(x)) | #B\nA -> a\nB -> b\n", ErrSlotMismatch},
		{"unit cycle", "S -> #A\nA -> #B\nB -> #A\nB -> b\n", ErrUnitCycle},
		{"self loop", "S -> #S\nS -> a\n", ErrUnitCycle},
		{"loop through nullable sibling", "S -> #S #E\nS -> a\nE ->\n", ErrUnitCycle},
		{"cycle through nullable chain", "S -> #A\nA -> #E #S #F\nA -> a\nE ->\nF -> #E #E\n", ErrUnitCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mustParse(t, tt.src).Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate_Empty(t *testing.T) {
	if err := New(DefaultStart).Validate(); !errors.Is(err, ErrEmptyGrammar) {
		t.Errorf("got %v", err)
	}
}

func TestValidate_Arity(t *testing.T) {
	g := mustParse(t, "S -> ( : #A(x, y))\nA -> (x : p(x))\n")
	err := g.Validate()
	var re *RuleError
	if !errors.As(err, &re) {
		t.Fatalf("got %v, want a RuleError", err)
	}
	if re.Rule.ID != 0 || !strings.Contains(re.Error(), "2 nodes") {
		t.Errorf("got %v", re)
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	err := mustParse(t, "S -> #A #B\n").Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	if n := strings.Count(err.Error(), "unknown nonterminal"); n != 2 {
		t.Errorf("got %d unknown symbol errors in %q, want 2", n, err)
	}
}

func TestValidate_NonUnitRecursion(t *testing.T) {
	g := mustParse(t, "S -> #S #S\nS -> a\nS -> (x : #S(x) p(x))\n")
	if err := g.Validate(); err != nil {
		t.Errorf("got %v", err)
	}
}

func TestValidate_NullableWithoutCycle(t *testing.T) {
	for _, src := range []string{
		"S -> #A #E\nA -> a\nE ->\n",
		"S -> #S #E\nS -> a\nE -> e\n",
		"S -> x #S #E\nS -> a\nE ->\n",
	} {
		if err := mustParse(t, src).Validate(); err != nil {
			t.Errorf("%q: got %v", src, err)
		}
	}
}

func TestAlignNonterminals(t *testing.T) {
	g := mustParse(t, "S -> ( : #B(y) p(x, y) #A(x)) | #A #B\nA -> (x : a(x))\nB -> (x : b(x))\n")
	edges := g.Rule(0).Graph.Edges
	var order []string
	for _, e := range edges {
		if e.IsNonterminal() {
			order = append(order, e.Symbol)
		} else {
			order = append(order, e.Label)
		}
	}
	if got := strings.Join(order, " "); got != "A p B" {
		t.Errorf("graph edge order: got %q, want %q", got, "A p B")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestGrammar_Lookup(t *testing.T) {
	g := mustParse(t, "S -> #B #A\nA -> a\nB -> b\nA -> c\n")
	if got := g.Symbols(); strings.Join(got, ",") != "A,B,S" {
		t.Errorf("symbols: got %v", got)
	}
	if n := len(g.RulesFor("A")); n != 2 {
		t.Errorf("rules for A: got %d", n)
	}
	if g.MaxID() != 3 {
		t.Errorf("max id: got %d", g.MaxID())
	}
	if g.Rule(4) != nil {
		t.Error("rule 4 should not exist")
	}
	if g.Rule(1).IsTerminal() != true || g.Rule(0).IsTerminal() {
		t.Error("IsTerminal")
	}
	if err := g.Add(&Rule{ID: 2, Symbol: "C", Words: []Element{}}); !errors.Is(err, ErrDuplicateRule) {
		t.Errorf("duplicate id: got %v", err)
	}
}

func TestRuleString(t *testing.T) {
	g := mustParse(t, "S -> #A #A\nA -> a ; 0.5\n")
	r := g.Rule(0)
	if len(r.Words) != 2 || r.Words[1].Index != 2 {
		t.Fatalf("got words %v", r.Words)
	}
	if got, want := r.String(), "0: S -> #A[1] #A[2] ; 1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := g.Rule(1).String(), "1: A -> a ; 0.5"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
