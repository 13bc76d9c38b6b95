package simulate

import (
	"slices"
	"strconv"
	"strings"
)

// Tower is a stack of levels listed bottom to top; each entry is the number
// of blocks on that level.
type Tower []int

// Blocks returns the number of blocks in the tower.
func (t Tower) Blocks() int {
	n := 0
	for _, l := range t {
		n += l
	}
	return n
}

// String renders the tower as its levels joined by "/", e.g. "1/2/1".
func (t Tower) String() string {
	parts := make([]string, len(t))
	for i, l := range t {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, "/")
}

// Set is a collection of towers whose order is irrelevant.
type Set []Tower

// Blocks returns the total number of blocks across all towers.
func (s Set) Blocks() int {
	n := 0
	for _, t := range s {
		n += t.Blocks()
	}
	return n
}

// Canonical returns a string that is equal for two sets exactly when they
// hold the same towers, regardless of tower order.
func Canonical(s Set) string {
	towers := make([]string, len(s))
	for i, t := range s {
		towers[i] = t.String()
	}
	return canonicalStrings(towers)
}

func canonicalStrings(towers []string) string {
	slices.Sort(towers)
	return strings.Join(towers, ",")
}
