package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/bolinas/parse"
)

// TiburonEncoder writes a forest as a tiburon regular tree grammar whose
// trees are the derivations of the input. Failed parses produce no output.
type TiburonEncoder struct {
	w      io.Writer
	forest *parse.Forest
}

func NewTiburonEncoder(w io.Writer) *TiburonEncoder {
	return &TiburonEncoder{w: w}
}

func (e *TiburonEncoder) Encode(f *parse.Forest) error {
	e.forest = f
	return write(e.w, e)
}

func (e *TiburonEncoder) MarshalText() ([]byte, error) {
	if e.forest == nil || e.forest.Empty() {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString("START\n")
	for _, en := range entries(e.forest) {
		switch {
		case en.item == nil:
			fmt.Fprintf(&sb, "START -> %s # 1.0\n", en.children[0].UniqString())
		case en.leaf:
			r := en.item.Rule()
			fmt.Fprintf(&sb, "%s -> %s(%d) # %f\n", en.item.UniqString(), r.Symbol, r.ID, r.Weight)
		default:
			r := en.item.Rule()
			ids := make([]string, len(en.children))
			for i, c := range en.children {
				ids[i] = c.UniqString()
			}
			fmt.Fprintf(&sb, "%s -> %s(%d(%s)) # %f\n", en.item.UniqString(), r.Symbol, r.ID, strings.Join(ids, " "), r.Weight)
		}
	}
	return []byte(sb.String()), nil
}
