package format

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/parse"
)

// CdecEncoder writes a forest as a cdec hypergraph grammar over the string
// side of the rules, with log rule weights as the Rule feature.
type CdecEncoder struct {
	w      io.Writer
	forest *parse.Forest
}

func NewCdecEncoder(w io.Writer) *CdecEncoder {
	return &CdecEncoder{w: w}
}

func (e *CdecEncoder) Encode(f *parse.Forest) error {
	e.forest = f
	return write(e.w, e)
}

func (e *CdecEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	sb.WriteString("[S] ||| [START]\n")
	if e.forest == nil {
		return []byte(sb.String()), nil
	}
	for _, en := range entries(e.forest) {
		if en.item == nil {
			fmt.Fprintf(&sb, "[START] ||| [%s] ||| Rule=0.0\n", en.children[0].UniqString())
			continue
		}
		r := en.item.Rule()
		fmt.Fprintf(&sb, "[%s] ||| %s ||| Rule=%f\n", en.item.UniqString(), cdecRHS(r, en.children), math.Log(r.Weight))
	}
	return []byte(sb.String()), nil
}

// cdecRHS renders the string side of r with its nonterminals replaced by
// the children filling them. Rules without a string side render as the
// sequence of their children.
func cdecRHS(r *grammar.Rule, children []parse.Item) string {
	var parts []string
	if !r.HasString() {
		for _, c := range children {
			parts = append(parts, "["+c.UniqString()+"]")
		}
		return strings.Join(parts, " ")
	}
	k := 0
	for _, el := range r.Words {
		if !el.IsNonterminal() {
			parts = append(parts, el.Word)
			continue
		}
		if k < len(children) {
			parts = append(parts, "["+children[k].UniqString()+"]")
		}
		k++
	}
	return strings.Join(parts, " ")
}
