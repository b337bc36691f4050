package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/bolinas/parse"
)

// LineEncoder writes a forest as tab-separated lines, one per goal item,
// derivation and leaf, followed by a blank line:
//
//	goal	<id>
//	node	<id>	<symbol>	<rule>	<slot>...
//	leaf	<id>	<symbol>	<rule>
//
// where each slot is "Symbol[index]=filler|filler". Nodes of binarized
// rules are written as "partial" instead of "node".
type LineEncoder struct {
	w      io.Writer
	forest *parse.Forest
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(f *parse.Forest) error {
	e.forest = f
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	f := e.forest
	if f != nil {
		for _, it := range f.Goal {
			fmt.Fprintf(&sb, "goal\t%s\n", it.UniqString())
		}
		f.Walk(func(it parse.Item, n *parse.Node) {
			r := it.Rule()
			if n == nil {
				fmt.Fprintf(&sb, "leaf\t%s\t%s\t%d\n", it.UniqString(), r.Symbol, r.ID)
				return
			}
			kind := "node"
			if n.Partial {
				kind = "partial"
			}
			for _, d := range n.Derivations {
				fmt.Fprintf(&sb, "%s\t%s\t%s\t%d\t%s\n", kind, it.UniqString(), r.Symbol, r.ID, e.slotsStr(d))
			}
		})
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

func (e *LineEncoder) slotsStr(d parse.Derivation) string {
	slots := make([]string, len(d.Slots))
	for i, s := range d.Slots {
		fillers := make([]string, len(s.Fillers))
		for j, c := range s.Fillers {
			fillers[j] = c.UniqString()
		}
		slots[i] = fmt.Sprintf("%s[%d]=%s", s.Symbol, s.Index, strings.Join(fillers, "|"))
	}
	return strings.Join(slots, "\t")
}
