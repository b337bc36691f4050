package parse

import (
	"math/bits"
	"strconv"
	"strings"
)

// edgeSet is an immutable bit set of graph edge indices.
type edgeSet []uint64

func newEdgeSet(n int) edgeSet {
	return make(edgeSet, (n+63)/64)
}

func (s edgeSet) has(i int) bool {
	w := i / 64
	return w < len(s) && s[w]&(1<<(uint(i)%64)) != 0
}

func (s edgeSet) with(i int) edgeSet {
	n := make(edgeSet, len(s))
	copy(n, s)
	n[i/64] |= 1 << (uint(i) % 64)
	return n
}

func (s edgeSet) union(o edgeSet) edgeSet {
	n := make(edgeSet, len(s))
	for i := range n {
		n[i] = s[i] | o[i]
	}
	return n
}

func (s edgeSet) overlaps(o edgeSet) bool {
	for i := range s {
		if s[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

func (s edgeSet) count() int {
	c := 0
	for _, w := range s {
		c += bits.OnesCount64(w)
	}
	return c
}

// indices returns the members in ascending order.
func (s edgeSet) indices() []int {
	var idx []int
	for w, word := range s {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			idx = append(idx, w*64+b)
			word &^= 1 << uint(b)
		}
	}
	return idx
}

func (s edgeSet) key() string {
	var b strings.Builder
	for i, w := range s {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(w, 16))
	}
	return b.String()
}
