package hgraph

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Reader reads graphs from a text stream. Graphs are separated by blank
// lines; within a graph every line is either
//
//	node <id> <label>
//
// declaring a node label, or
//
//	<label> <node> <node> ...
//
// declaring an edge. Text after "//" is ignored.
type Reader struct {
	scanner *bufio.Scanner
	name    string
	line    int
	count   int
}

func NewReader(r io.Reader, name string) *Reader {
	return &Reader{scanner: bufio.NewScanner(r), name: name}
}

// Next returns the next graph, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (*Graph, error) {
	var g *Graph
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Text()
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if g != nil {
				return g, nil
			}
			continue
		}
		if g == nil {
			g = New()
			g.Name = fmt.Sprintf("%s#%d", r.name, r.count)
			r.count++
		}
		if fields[0] == "node" {
			if len(fields) < 2 || len(fields) > 3 {
				return nil, fmt.Errorf("%s:%d: node declaration needs an id and an optional label", r.name, r.line)
			}
			label := ""
			if len(fields) == 3 {
				label = fields[2]
			}
			g.AddNode(fields[1], label)
			continue
		}
		g.AddEdge(fields[0], fields[1:]...)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if g != nil {
		return g, nil
	}
	return nil, io.EOF
}

// All yields the remaining graphs in order. Iteration stops after the first
// error.
func (r *Reader) All() iter.Seq2[*Graph, error] {
	return func(yield func(*Graph, error) bool) {
		for {
			g, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(g, err) || err != nil {
				return
			}
		}
	}
}
