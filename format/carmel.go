package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/parse"
)

// CarmelEncoder writes one forest per line in the derivation forest format
// read by forest-em. Rule ids are shifted by one since forest-em counts
// from 1; the start rule gets the id after the largest rule id. A failed
// parse is written as an empty line so that lines stay aligned with the
// inputs.
type CarmelEncoder struct {
	w       io.Writer
	grammar *grammar.Grammar
	forest  *parse.Forest
}

func NewCarmelEncoder(w io.Writer, g *grammar.Grammar) *CarmelEncoder {
	return &CarmelEncoder{w: w, grammar: g}
}

func (e *CarmelEncoder) startID() int {
	return e.grammar.MaxID() + 2
}

func (e *CarmelEncoder) Encode(f *parse.Forest) error {
	e.forest = f
	return write(e.w, e)
}

func (e *CarmelEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	if e.forest != nil && !e.forest.Empty() {
		c := &carmelChart{
			forest: e.forest,
			start:  e.startID(),
			ids:    make(map[string]int),
			next:   1,
		}
		c.write(&sb, nil)
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

// WriteNorm writes the normalization groups of the grammar: one group per
// left-hand symbol listing its rule ids, plus the start rule's own group.
func (e *CarmelEncoder) WriteNorm(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("( (" + strconv.Itoa(e.startID()) + ")")
	for _, sym := range e.grammar.Symbols() {
		var ids []string
		for _, r := range e.grammar.RulesFor(sym) {
			ids = append(ids, strconv.Itoa(r.ID+1))
		}
		sb.WriteString(" (" + strings.Join(ids, " ") + ")")
	}
	sb.WriteString(" )\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

type carmelChart struct {
	forest *parse.Forest
	start  int
	ids    map[string]int
	next   int
}

// write renders the subforest below it, or below the start rule if it is
// nil. Items already written are referenced by their label.
func (c *carmelChart) write(sb *strings.Builder, it parse.Item) {
	key, sym := "", c.start
	var rhss [][]parse.Item
	if it == nil {
		for _, g := range c.forest.Goal {
			rhss = append(rhss, []parse.Item{g})
		}
	} else {
		key, sym = it.Key(), it.Rule().ID+1
		if n := c.forest.Node(it); n != nil {
			rhss = expand(n)
		}
	}

	if id, ok := c.ids[key]; ok {
		fmt.Fprintf(sb, "#%d", id)
		return
	}
	id := c.next
	c.next++
	c.ids[key] = id

	fmt.Fprintf(sb, "#%d", id)
	if len(rhss) == 0 {
		fmt.Fprintf(sb, "(%d)", sym)
		return
	}
	if len(rhss) > 1 {
		sb.WriteString("(OR ")
	}
	for i, rhs := range rhss {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(sb, "(%d", sym)
		for _, child := range rhs {
			sb.WriteByte(' ')
			c.write(sb, child)
		}
		sb.WriteByte(')')
	}
	if len(rhss) > 1 {
		sb.WriteByte(')')
	}
}
