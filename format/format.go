// Package format writes derivation forests in the formats understood by
// downstream tools: JSON and a line dump for inspection, tiburon for n-best
// graphs, cdec for n-best strings and carmel for forest-em training.
package format

import (
	"encoding"
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/parse"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Encoder writes one forest per call to Encode. MarshalText renders the
// forest of the last Encode call.
type Encoder interface {
	encoding.TextMarshaler
	Encode(f *parse.Forest) error
}

// Names lists the formats accepted by New.
func Names() []string {
	return []string{"json", "line", "tiburon", "cdec", "carmel"}
}

// New returns the encoder for the named format writing to w. The grammar is
// needed by formats that refer to rules the forest does not use.
func New(name string, w io.Writer, g *grammar.Grammar) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	case "tiburon":
		return NewTiburonEncoder(w), nil
	case "cdec":
		return NewCdecEncoder(w), nil
	case "carmel":
		return NewCarmelEncoder(w, g), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, name)
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

// entry is one rewrite of an item in a flattened forest. The start entry
// has a nil item and the goal item as its only child; leaves have no
// children.
type entry struct {
	item     parse.Item
	children []parse.Item
	leaf     bool
}

// entries flattens f into one entry per goal item, one per combination of
// slot fillers of every derivation, and one per leaf, in Walk order.
func entries(f *parse.Forest) []entry {
	var out []entry
	for _, it := range f.Goal {
		out = append(out, entry{children: []parse.Item{it}})
	}
	f.Walk(func(it parse.Item, n *parse.Node) {
		if n == nil {
			out = append(out, entry{item: it, leaf: true})
			return
		}
		for _, children := range expand(n) {
			out = append(out, entry{item: it, children: children})
		}
	})
	return out
}

// expand lists every choice of one filler per slot over all derivations of
// n.
func expand(n *parse.Node) [][]parse.Item {
	var all [][]parse.Item
	for _, d := range n.Derivations {
		combos := [][]parse.Item{nil}
		for _, s := range d.Slots {
			next := make([][]parse.Item, 0, len(combos)*len(s.Fillers))
			for _, c := range combos {
				for _, f := range s.Fillers {
					rhs := make([]parse.Item, len(c), len(c)+1)
					copy(rhs, c)
					next = append(next, append(rhs, f))
				}
			}
			combos = next
		}
		all = append(all, combos...)
	}
	return all
}
