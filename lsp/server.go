// Package lsp implements a language server for grammar files. It reports
// syntax and validation errors as diagnostics and completes nonterminal
// symbols after '#'.
package lsp

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/bolinas/grammar"
)

const lsName = "bolinas"

var log = commonlog.GetLogger("bolinas.lsp")

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu      sync.Mutex
	symbols map[string][]string // last known left-hand symbols by document URI
}

func NewServer(version string) *Server {
	ls := &Server{
		version: version,
		symbols: make(map[string][]string),
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"#"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("client initialized")
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.check(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.check(ctx, params.TextDocument.URI, textChange.Text)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.symbols, params.TextDocument.URI)
	ls.mu.Unlock()
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.check(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	ls.mu.Lock()
	symbols := ls.symbols[params.TextDocument.URI]
	ls.mu.Unlock()

	kind := protocol.CompletionItemKindClass
	items := make([]protocol.CompletionItem, len(symbols))
	for i, s := range symbols {
		items[i] = protocol.CompletionItem{Label: s, Kind: &kind}
	}
	return items, nil
}

// check reads text as a grammar, remembers its symbols and publishes its
// diagnostics. Symbols of a grammar with syntax errors are kept from the
// lines that could be read.
func (ls *Server) check(ctx *glsp.Context, uri, text string) {
	g, diags := Diagnose(uriToPath(uri), text)
	if g != nil {
		ls.mu.Lock()
		ls.symbols[uri] = g.Symbols()
		ls.mu.Unlock()
	}
	log.Debugf("%s: %d diagnostics", uri, len(diags))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// Diagnose reads and validates a grammar and reports every problem found.
// Validation only runs when the grammar has no syntax errors.
func Diagnose(filename, text string) (*grammar.Grammar, []protocol.Diagnostic) {
	diags := []protocol.Diagnostic{}
	g, err := grammar.Parse(filename, strings.NewReader(text))
	if err != nil {
		var list grammar.ErrorList
		if !errors.As(err, &list) {
			return nil, append(diags, diagnostic(grammar.Position{}, err.Error()))
		}
		for _, e := range list {
			diags = append(diags, diagnostic(e.Pos, e.Msg))
		}
		return g, diags
	}
	for _, err := range flatten(g.Validate()) {
		var re *grammar.RuleError
		if errors.As(err, &re) {
			diags = append(diags, diagnostic(re.Rule.Pos, re.Err.Error()))
			continue
		}
		diags = append(diags, diagnostic(grammar.Position{}, err.Error()))
	}
	return g, diags
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// diagnostic marks the token at pos. Positions without a line refer to the
// whole file and are reported at its start.
func diagnostic(pos grammar.Position, msg string) protocol.Diagnostic {
	var line, col protocol.UInteger
	if pos.Line > 0 {
		line = protocol.UInteger(pos.Line - 1)
	}
	if pos.Column > 0 {
		col = protocol.UInteger(pos.Column - 1)
	}
	severity := protocol.DiagnosticSeverityError
	source := lsName
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if parsed, err := url.Parse(uri); err == nil {
			return filepath.Clean(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
