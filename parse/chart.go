package parse

import "strings"

// goalKey is the chart key of the distinguished goal item.
const goalKey = "START"

// Production is the list of antecedents justifying a chart entry: one item
// for a shift or a goal, two for a completion.
type Production []Item

func (p Production) key() string {
	keys := make([]string, len(p))
	for i, it := range p {
		keys[i] = it.Key()
	}
	return strings.Join(keys, "\x00")
}

// Chart records, for every derived item and for the goal, the set of
// productions that derive it. Entries are only ever added. Productions are
// kept in insertion order; the order carries no meaning.
type Chart struct {
	entries map[string]*chartEntry
	keys    []string

	// Stats describes the search that built the chart.
	Stats Stats
}

type chartEntry struct {
	item  Item // nil for the goal
	prods []Production
	seen  map[string]bool
}

func newChart() *Chart {
	return &Chart{entries: make(map[string]*chartEntry)}
}

// add records prod under target and reports whether it was new. A nil
// target means the goal.
func (c *Chart) add(target Item, prod Production) bool {
	key := goalKey
	if target != nil {
		key = target.Key()
	}
	e, ok := c.entries[key]
	if !ok {
		e = &chartEntry{item: target, seen: make(map[string]bool)}
		c.entries[key] = e
		c.keys = append(c.keys, key)
	}
	pk := prod.key()
	if e.seen[pk] {
		return false
	}
	e.seen[pk] = true
	e.prods = append(e.prods, prod)
	return true
}

func (c *Chart) productions(key string) []Production {
	if e, ok := c.entries[key]; ok {
		return e.prods
	}
	return nil
}

// Productions returns the productions recorded for it.
func (c *Chart) Productions(it Item) []Production {
	return c.productions(it.Key())
}

// GoalProductions returns the productions of the goal: each holds one item
// that covers the whole input with the start symbol.
func (c *Chart) GoalProductions() []Production {
	return c.productions(goalKey)
}

// Success reports whether some item satisfied the goal.
func (c *Chart) Success() bool {
	return len(c.GoalProductions()) > 0
}

// Items returns the derived items in the order they were first recorded.
func (c *Chart) Items() []Item {
	items := make([]Item, 0, len(c.keys))
	for _, k := range c.keys {
		if it := c.entries[k].item; it != nil {
			items = append(items, it)
		}
	}
	return items
}

// Len returns the number of chart entries, including the goal.
func (c *Chart) Len() int {
	return len(c.entries)
}
