package parse

import (
	"errors"
	"fmt"

	"github.com/dhamidi/bolinas/grammar"
)

// ErrNoInput is returned when neither a string nor a graph is given.
var ErrNoInput = errors.New("nothing to parse: need a string, a graph, or both")

// ConsistencyError reports a chart whose shape no valid grammar and search
// can produce. It aborts the parse of the input it was found in.
type ConsistencyError struct {
	Item   string // item key
	Rule   *grammar.Rule
	Reason string
}

func (e *ConsistencyError) Error() string {
	if e.Rule != nil {
		return fmt.Sprintf("inconsistent chart at %s (rule %d, %s): %s", e.Item, e.Rule.ID, e.Rule.Symbol, e.Reason)
	}
	return fmt.Sprintf("inconsistent chart at %s: %s", e.Item, e.Reason)
}
