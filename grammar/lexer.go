package grammar

import "fmt"

// Position represents a location in a grammar file.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenNewline
	TokenWord
	TokenQuoted
	TokenNonterminal // #Symbol
	TokenDirective   // %start
	TokenArrow
	TokenPipe
	TokenSemicolon
	TokenColon
	TokenComma
	TokenSlash
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
)

var tokenNames = map[TokenKind]string{
	TokenEOF:         "EOF",
	TokenError:       "ERROR",
	TokenNewline:     "newline",
	TokenWord:        "word",
	TokenQuoted:      "quoted word",
	TokenNonterminal: "nonterminal",
	TokenDirective:   "directive",
	TokenArrow:       "'->'",
	TokenPipe:        "'|'",
	TokenSemicolon:   "';'",
	TokenColon:       "':'",
	TokenComma:       "','",
	TokenSlash:       "'/'",
	TokenLParen:      "'('",
	TokenRParen:      "')'",
	TokenLBracket:    "'['",
	TokenRBracket:    "']'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     TokenKind
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// Lexer splits a grammar file into tokens. Newlines are significant since
// every rule occupies one line; "//" starts a comment running to the end of
// the line.
type Lexer struct {
	input    []byte
	filename string
	pos      int
	line     int
	column   int
}

func NewLexer(input []byte, filename string) *Lexer {
	return &Lexer{
		input:    input,
		filename: filename,
		line:     1,
		column:   1,
	}
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return Position{
		Filename: l.filename,
		Offset:   l.pos,
		Line:     l.line,
		Column:   l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

var punctuation = map[byte]TokenKind{
	'|': TokenPipe,
	';': TokenSemicolon,
	':': TokenColon,
	',': TokenComma,
	'/': TokenSlash,
	'(': TokenLParen,
	')': TokenRParen,
	'[': TokenLBracket,
	']': TokenRBracket,
}

func isWordByte(ch byte) bool {
	if ch == 0 || ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '"' || ch == '#' || ch == '%' {
		return false
	}
	_, special := punctuation[ch]
	return !special
}

// NextToken returns the next token. At the end of input it returns a token
// of kind TokenEOF.
func (l *Lexer) NextToken() Token {
	l.skipSpaceAndComments()
	start := l.Position()
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Position: start}
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		return Token{Kind: TokenNewline, Literal: "\n", Position: start}
	case ch == '-' && l.peekN(1) == '>':
		l.advance()
		l.advance()
		return Token{Kind: TokenArrow, Literal: "->", Position: start}
	case ch == '"':
		return l.scanQuoted(start)
	case ch == '#':
		l.advance()
		name := l.scanWord()
		if name == "" {
			return Token{Kind: TokenError, Literal: "#", Position: start}
		}
		return Token{Kind: TokenNonterminal, Literal: name, Position: start}
	case ch == '%':
		l.advance()
		name := l.scanWord()
		if name == "" {
			return Token{Kind: TokenError, Literal: "%", Position: start}
		}
		return Token{Kind: TokenDirective, Literal: name, Position: start}
	}

	if kind, ok := punctuation[ch]; ok {
		l.advance()
		return Token{Kind: kind, Literal: string(ch), Position: start}
	}
	return Token{Kind: TokenWord, Literal: l.scanWord(), Position: start}
}

func (l *Lexer) scanWord() string {
	begin := l.pos
	for isWordByte(l.peek()) {
		if l.peek() == '-' && l.peekN(1) == '>' {
			break
		}
		l.advance()
	}
	return string(l.input[begin:l.pos])
}

func (l *Lexer) scanQuoted(start Position) Token {
	l.advance()
	begin := l.pos
	for {
		ch := l.peek()
		if ch == 0 || ch == '\n' {
			return Token{Kind: TokenError, Literal: string(l.input[begin-1 : l.pos]), Position: start}
		}
		if ch == '"' {
			lit := string(l.input[begin:l.pos])
			l.advance()
			return Token{Kind: TokenQuoted, Literal: lit, Position: start}
		}
		l.advance()
	}
}

// Tokenize reads all tokens from input, including the final TokenEOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}
