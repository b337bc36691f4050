package grammar

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SyntaxError reports a malformed line in a grammar file.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList collects the syntax errors of a grammar file. Reading continues
// with the next line after an error.
type ErrorList []*SyntaxError

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Load reads and validates a grammar file.
func Load(filename string) (*Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	g, err := Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validate grammar: %w", err)
	}
	return g, nil
}

// Parse reads a grammar in the line format
//
//	%start S
//	%nodelabels
//	%partial X'
//	S -> #NP[1] #VP[2] ; 0.5
//	NP -> (x : dog(x)) | the dog
//	VP -> (x : #V[1](x)) | #V[1]
//
// Each rule line holds a left-hand symbol, an arrow, a string and/or a graph
// right-hand side separated by '|', and an optional weight after ';'
// (default 1). Rule ids are assigned in line order starting at 0. The
// grammar is not validated; see Validate.
func Parse(filename string, r io.Reader) (*Grammar, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &reader{
		tokens:  NewLexer(input, filename).Tokenize(),
		g:       New(DefaultStart),
		partial: make(map[string]bool),
	}
	p.read()
	for _, rule := range p.g.rules {
		rule.Partial = p.partial[rule.Symbol]
	}
	if len(p.errs) > 0 {
		return p.g, p.errs
	}
	return p.g, nil
}

type reader struct {
	tokens  []Token
	pos     int
	g       *Grammar
	partial map[string]bool
	errs    ErrorList
	nextID  int
}

// bail aborts the current line.
type bail struct{}

func (p *reader) peek() Token {
	return p.tokens[p.pos]
}

func (p *reader) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *reader) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *reader) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *reader) fail(tok Token, format string, args ...any) {
	p.errs = append(p.errs, &SyntaxError{Pos: tok.Position, Msg: fmt.Sprintf(format, args...)})
	panic(bail{})
}

func (p *reader) expect(kind TokenKind) Token {
	tok := p.peek()
	if tok.Kind != kind {
		p.fail(tok, "expected %s, found %s %q", kind, tok.Kind, tok.Literal)
	}
	return p.advance()
}

func (p *reader) read() {
	for !p.check(TokenEOF) {
		if p.match(TokenNewline) {
			continue
		}
		p.line()
	}
}

// line reads one directive or rule, recovering at the next newline on error.
func (p *reader) line() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bail); !ok {
				panic(r)
			}
			for !p.check(TokenEOF) && !p.check(TokenNewline) {
				p.advance()
			}
		}
	}()

	if p.check(TokenDirective) {
		p.directive()
	} else {
		p.rule()
	}
	if !p.check(TokenEOF) {
		p.expect(TokenNewline)
	}
}

func (p *reader) directive() {
	tok := p.advance()
	switch tok.Literal {
	case "start":
		p.g.Start = p.expect(TokenWord).Literal
	case "nodelabels":
		p.g.NodeLabels = true
	case "partial":
		p.partial[p.expect(TokenWord).Literal] = true
		for p.check(TokenWord) {
			p.partial[p.advance().Literal] = true
		}
	default:
		p.fail(tok, "unknown directive %%%s", tok.Literal)
	}
}

func (p *reader) rule() {
	lhs := p.expect(TokenWord)
	p.expect(TokenArrow)

	rule := &Rule{ID: p.nextID, Symbol: lhs.Literal, Weight: 1, Pos: lhs.Position}
	for {
		if p.check(TokenLParen) {
			if rule.Graph != nil {
				p.fail(p.peek(), "rule has two graph right-hand sides")
			}
			rule.Graph = p.graph()
		} else {
			if rule.Words != nil {
				p.fail(p.peek(), "rule has two string right-hand sides")
			}
			rule.Words = p.words()
		}
		if !p.match(TokenPipe) {
			break
		}
	}
	if p.match(TokenSemicolon) {
		tok := p.expect(TokenWord)
		w, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.fail(tok, "invalid weight %q", tok.Literal)
		}
		rule.Weight = w
	}
	if err := p.g.Add(rule); err != nil {
		p.fail(lhs, "%v", err)
	}
	p.nextID++
}

// words reads a string right-hand side, possibly empty.
func (p *reader) words() []Element {
	elems := []Element{}
	counts := make(map[string]int)
	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenWord, TokenQuoted:
			p.advance()
			elems = append(elems, Element{Word: tok.Literal})
		case TokenNonterminal:
			p.advance()
			elems = append(elems, Element{Symbol: tok.Literal, Index: p.index(tok.Literal, counts)})
		default:
			return elems
		}
	}
}

// index reads an optional "[n]" suffix. Without one, the n-th occurrence of a
// symbol on one side of a rule gets index n.
func (p *reader) index(symbol string, counts map[string]int) int {
	counts[symbol]++
	if !p.match(TokenLBracket) {
		return counts[symbol]
	}
	tok := p.expect(TokenWord)
	n, err := strconv.Atoi(tok.Literal)
	if err != nil {
		p.fail(tok, "invalid nonterminal index %q", tok.Literal)
	}
	p.expect(TokenRBracket)
	return n
}

func (p *reader) graph() *RuleGraph {
	g := &RuleGraph{}
	names := make(map[string]int)
	p.expect(TokenLParen)
	for p.check(TokenWord) {
		g.External = append(g.External, p.node(g, names))
	}
	p.expect(TokenColon)
	counts := make(map[string]int)
	for !p.check(TokenRParen) {
		tok := p.advance()
		var edge RuleEdge
		switch tok.Kind {
		case TokenWord, TokenQuoted:
			edge.Label = tok.Literal
		case TokenNonterminal:
			edge.Symbol = tok.Literal
			edge.Label = "#" + tok.Literal
			edge.Index = p.index(tok.Literal, counts)
		default:
			p.fail(tok, "expected edge, found %s %q", tok.Kind, tok.Literal)
		}
		p.expect(TokenLParen)
		if !p.check(TokenRParen) {
			edge.Nodes = append(edge.Nodes, p.node(g, names))
			for p.match(TokenComma) {
				edge.Nodes = append(edge.Nodes, p.node(g, names))
			}
		}
		p.expect(TokenRParen)
		g.Edges = append(g.Edges, edge)
	}
	p.expect(TokenRParen)
	return g
}

// node reads "name" or "name/label" and returns the node's index.
func (p *reader) node(g *RuleGraph, names map[string]int) int {
	tok := p.expect(TokenWord)
	label := ""
	if p.match(TokenSlash) {
		label = p.expect(TokenWord).Literal
	}
	n, ok := names[tok.Literal]
	if !ok {
		n = len(g.Nodes)
		names[tok.Literal] = n
		g.Nodes = append(g.Nodes, RuleNode{Name: tok.Literal, Label: label})
		return n
	}
	switch {
	case label == "":
	case g.Nodes[n].Label == "":
		g.Nodes[n].Label = label
	case g.Nodes[n].Label != label:
		p.fail(tok, "node %s labeled both %q and %q", tok.Literal, g.Nodes[n].Label, label)
	}
	return n
}
