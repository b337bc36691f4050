package format

import (
	"encoding/json"
	"io"
	"math"

	"github.com/dhamidi/bolinas/parse"
)

// JSONEncoder writes each forest as an indented JSON document.
type JSONEncoder struct {
	w      io.Writer
	forest *parse.Forest
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(f *parse.Forest) error {
	e.forest = f
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildForestData(), "", "  ")
}

type jsonForest struct {
	Success bool       `json:"success"`
	Goal    []string   `json:"goal"`
	Count   *float64   `json:"count,omitempty"` // absent when infinite
	Items   []jsonItem `json:"items"`
}

type jsonItem struct {
	ID          string           `json:"id"`
	Symbol      string           `json:"symbol"`
	Rule        int              `json:"rule"`
	Weight      float64          `json:"weight"`
	Span        []int            `json:"span,omitempty"`
	Edges       []int            `json:"edges,omitempty"`
	Externals   []string         `json:"externals,omitempty"`
	Partial     bool             `json:"partial,omitempty"`
	Derivations []jsonDerivation `json:"derivations,omitempty"`
}

type jsonDerivation []jsonSlot

type jsonSlot struct {
	Symbol  string   `json:"symbol"`
	Index   int      `json:"index"`
	Fillers []string `json:"fillers"`
}

func (e *JSONEncoder) buildForestData() jsonForest {
	f := e.forest
	data := jsonForest{Goal: []string{}, Items: []jsonItem{}}
	if f == nil {
		return data
	}
	data.Success = !f.Empty()
	for _, it := range f.Goal {
		data.Goal = append(data.Goal, it.UniqString())
	}
	if c := f.Count(); !math.IsInf(c, 0) {
		data.Count = &c
	}
	f.Walk(func(it parse.Item, n *parse.Node) {
		data.Items = append(data.Items, buildItem(it, n))
	})
	return data
}

func buildItem(it parse.Item, n *parse.Node) jsonItem {
	r := it.Rule()
	ji := jsonItem{
		ID:     it.UniqString(),
		Symbol: r.Symbol,
		Rule:   r.ID,
		Weight: r.Weight,
	}
	var str *parse.StringItem
	var gr *parse.GraphItem
	switch it := it.(type) {
	case *parse.StringItem:
		str = it
	case *parse.GraphItem:
		gr = it
	case *parse.SyncItem:
		str, gr = it.StringItem(), it.GraphItem()
	}
	if str != nil && str.Len() > 0 {
		ji.Span = []int{str.I, str.J}
	}
	if gr != nil {
		ji.Edges = gr.Edges()
		ji.Externals = gr.Externals()
	}
	if n == nil {
		return ji
	}
	ji.Partial = n.Partial
	for _, d := range n.Derivations {
		jd := make(jsonDerivation, len(d.Slots))
		for i, s := range d.Slots {
			fillers := make([]string, len(s.Fillers))
			for j, c := range s.Fillers {
				fillers[j] = c.UniqString()
			}
			jd[i] = jsonSlot{Symbol: s.Symbol, Index: s.Index, Fillers: fillers}
		}
		ji.Derivations = append(ji.Derivations, jd)
	}
	return ji
}
