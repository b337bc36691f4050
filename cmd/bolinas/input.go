package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/dhamidi/bolinas/hgraph"
	"github.com/dhamidi/bolinas/parse"
)

const maxLine = 1 << 20

var (
	errMissingGraphs   = errors.New("more sentences than graphs")
	errMissingSentence = errors.New("more graphs than sentences")
)

// inputStream reads parser inputs lazily: sentences one per line (blank
// lines skipped), graphs in blocks, or sentences paired with the graph at
// the same position of a second file. Iteration stops at the first read
// error, which Err reports afterwards.
type inputStream struct {
	sentences *bufio.Scanner // nil when the input holds graphs
	graphs    *hgraph.Reader // graph input, or the paired graphs
	file      *os.File
	err       error
}

func newInputStream(r io.Reader, name string, graphInput bool, graphsPath string) (*inputStream, error) {
	if graphInput {
		return &inputStream{graphs: hgraph.NewReader(r, name)}, nil
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	s := &inputStream{sentences: sc}
	if graphsPath == "" {
		return s, nil
	}
	f, err := os.Open(graphsPath)
	if err != nil {
		return nil, fmt.Errorf("open graphs: %w", err)
	}
	s.file = f
	s.graphs = hgraph.NewReader(f, graphsPath)
	return s, nil
}

// paired reports whether inputs are sentence and graph pairs.
func (s *inputStream) paired() bool {
	return s.sentences != nil && s.graphs != nil
}

func (s *inputStream) Sentences() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		if s.sentences == nil {
			return
		}
		for s.sentences.Scan() {
			fields := strings.Fields(s.sentences.Text())
			if len(fields) == 0 {
				continue
			}
			if !yield(fields) {
				return
			}
		}
		if err := s.sentences.Err(); err != nil {
			s.fail(fmt.Errorf("read sentences: %w", err))
		}
	}
}

func (s *inputStream) Graphs() iter.Seq[*hgraph.Graph] {
	return func(yield func(*hgraph.Graph) bool) {
		if s.graphs == nil {
			return
		}
		for g, err := range s.graphs.All() {
			if err != nil {
				s.fail(err)
				return
			}
			if !yield(g) {
				return
			}
		}
	}
}

// All yields every input as a parse.Input.
func (s *inputStream) All() iter.Seq[parse.Input] {
	return func(yield func(parse.Input) bool) {
		switch {
		case s.paired():
			next, stop := iter.Pull(s.Graphs())
			defer stop()
			for words := range s.Sentences() {
				g, ok := next()
				if !ok {
					s.fail(errMissingGraphs)
					return
				}
				if !yield(parse.Input{Words: words, Graph: g}) {
					return
				}
			}
			if _, ok := next(); ok {
				s.fail(errMissingSentence)
			}
		case s.sentences == nil:
			for g := range s.Graphs() {
				if !yield(parse.Input{Graph: g}) {
					return
				}
			}
		default:
			for words := range s.Sentences() {
				if !yield(parse.Input{Words: words}) {
					return
				}
			}
		}
	}
}

// Forests parses the inputs one at a time as the caller iterates.
func (s *inputStream) Forests(ctx context.Context, p *parse.Parser) iter.Seq2[*parse.Forest, error] {
	switch {
	case s.paired():
		return func(yield func(*parse.Forest, error) bool) {
			for in := range s.All() {
				f, _, err := p.ParseForest(ctx, in)
				if !yield(f, err) {
					return
				}
			}
		}
	case s.sentences == nil:
		return p.ParseGraphs(ctx, s.Graphs())
	default:
		return p.ParseStrings(ctx, s.Sentences())
	}
}

func (s *inputStream) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *inputStream) Err() error {
	return s.err
}

func (s *inputStream) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
