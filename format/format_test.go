package format

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/parse"
)

const pairGrammar = `
S -> #A #A ; 0.5
A -> a
`

func forest(t *testing.T, src, input string) (*grammar.Grammar, *parse.Forest) {
	t.Helper()
	g, err := grammar.Parse("test", strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	words := append([]string{}, strings.Fields(input)...)
	f, _, err := parse.New(g).ParseForest(context.Background(), parse.Input{Words: words})
	require.NoError(t, err)
	return g, f
}

func encode(t *testing.T, name string, g *grammar.Grammar, forests ...*parse.Forest) string {
	t.Helper()
	var buf bytes.Buffer
	enc, err := New(name, &buf, g)
	require.NoError(t, err)
	for _, f := range forests {
		require.NoError(t, enc.Encode(f))
	}
	return buf.String()
}

func TestTiburon(t *testing.T) {
	g, f := forest(t, pairGrammar, "a a")
	want := `START
START -> S_0_0_2 # 1.0
S_0_0_2 -> S(0(A_1_0_1 A_1_1_2)) # 0.500000
A_1_0_1 -> A(1) # 1.000000
A_1_1_2 -> A(1) # 1.000000
`
	assert.Equal(t, want, encode(t, "tiburon", g, f))
}

func TestCdec(t *testing.T) {
	g, f := forest(t, pairGrammar, "a a")
	want := `[S] ||| [START]
[START] ||| [S_0_0_2] ||| Rule=0.0
[S_0_0_2] ||| [A_1_0_1] [A_1_1_2] ||| Rule=-0.693147
[A_1_0_1] ||| a ||| Rule=0.000000
[A_1_1_2] ||| a ||| Rule=0.000000
`
	assert.Equal(t, want, encode(t, "cdec", g, f))
}

func TestCdecKeepsWords(t *testing.T) {
	g, f := forest(t, "S -> x #A y\nA -> a\n", "x a y")
	out := encode(t, "cdec", g, f)
	assert.Contains(t, out, "[S_0_0_3] ||| x [A_1_1_2] y ||| Rule=0.000000\n")
}

func TestCarmel(t *testing.T) {
	g, f := forest(t, pairGrammar, "a a")
	_, failed := forest(t, pairGrammar, "a")

	var charts bytes.Buffer
	enc := NewCarmelEncoder(&charts, g)
	require.NoError(t, enc.Encode(f))
	require.NoError(t, enc.Encode(failed))
	assert.Equal(t, "#1(3 #2(1 #3(2) #4(2)))\n\n", charts.String())

	var norm bytes.Buffer
	require.NoError(t, enc.WriteNorm(&norm))
	assert.Equal(t, "( (3) (2) (1) )\n", norm.String())
}

func TestCarmelSharesItems(t *testing.T) {
	g, f := forest(t, "S -> #S #S\nS -> a\n", "a a a")
	out := encode(t, "carmel", g, f)

	assert.Equal(t, 1, strings.Count(out, "(OR "))
	assert.Equal(t, strings.Count(out, "("), strings.Count(out, ")"))
	// The start rule, the goal, two inner S items and three words are
	// written once; the second derivation refers to the three words by
	// label.
	assert.Len(t, regexp.MustCompile(`#\d+\(`).FindAllString(out, -1), 7)
	assert.Len(t, regexp.MustCompile(`#\d+[ )]`).FindAllString(out, -1), 3)
}

func TestJSON(t *testing.T) {
	g, f := forest(t, pairGrammar, "a a")
	out := encode(t, "json", g, f)

	var data struct {
		Success bool
		Goal    []string
		Count   *float64
		Items   []struct {
			ID          string
			Symbol      string
			Span        []int
			Derivations [][]struct {
				Symbol  string
				Index   int
				Fillers []string
			}
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.True(t, data.Success)
	assert.Equal(t, []string{"S_0_0_2"}, data.Goal)
	require.NotNil(t, data.Count)
	assert.Equal(t, 1.0, *data.Count)
	require.Len(t, data.Items, 3)
	assert.Equal(t, []int{0, 2}, data.Items[0].Span)
	require.Len(t, data.Items[0].Derivations, 1)
	assert.Equal(t, []string{"A_1_1_2"}, data.Items[0].Derivations[0][1].Fillers)
	assert.Empty(t, data.Items[1].Derivations)
}

func TestJSONFailedParse(t *testing.T) {
	g, f := forest(t, pairGrammar, "a")
	out := encode(t, "json", g, f)
	assert.JSONEq(t, `{"success": false, "goal": [], "count": 0, "items": []}`, out)
}

func TestLine(t *testing.T) {
	g, f := forest(t, "%partial X\nS -> #X\nX -> #A #A\nA -> a\n", "a a")
	out := encode(t, "line", g, f)
	want := "goal\tS_0_0_2\n" +
		"node\tS_0_0_2\tS\t0\tX[1]=X_1_0_2\n" +
		"partial\tX_1_0_2\tX\t1\tA[1]=A_2_0_1\tA[2]=A_2_1_2\n" +
		"leaf\tA_2_0_1\tA\t2\n" +
		"leaf\tA_2_1_2\tA\t2\n" +
		"\n"
	assert.Equal(t, want, out)
}

func TestEmptyForests(t *testing.T) {
	g, f := forest(t, pairGrammar, "a")
	assert.Empty(t, encode(t, "tiburon", g, f))
	assert.Equal(t, "[S] ||| [START]\n", encode(t, "cdec", g, f))
	assert.Equal(t, "\n", encode(t, "carmel", g, f))
	assert.Equal(t, "\n", encode(t, "line", g, f))
}

func TestNewUnknown(t *testing.T) {
	_, err := New("xml", &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	for _, name := range Names() {
		_, err := New(name, &bytes.Buffer{}, grammar.New("S"))
		assert.NoError(t, err, name)
	}
}
