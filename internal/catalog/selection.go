package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSelectionLength is returned when the number of enable/disable tokens
// does not match the catalog.
var ErrSelectionLength = errors.New("invalid number of metric state")

// Selection records which catalog metrics are reported during a run.
type Selection struct {
	enabled map[string]bool
}

// AllEnabled returns a selection with every metric in cat turned on.
func AllEnabled(cat *Catalog) Selection {
	s := Selection{enabled: make(map[string]bool, cat.Len())}
	for _, d := range cat.defs {
		s.enabled[d.Name] = true
	}
	return s
}

// ParseSelection reads a comma-separated list of 0/1 tokens, one per catalog
// metric in catalog order. Surrounding double quotes are ignored. An empty
// argument enables everything.
func ParseSelection(cat *Catalog, arg string) (Selection, error) {
	arg = strings.ReplaceAll(arg, `"`, "")
	if strings.TrimSpace(arg) == "" {
		return AllEnabled(cat), nil
	}

	tokens := strings.Split(arg, ",")
	if len(tokens) != cat.Len() {
		return Selection{}, fmt.Errorf("%w: got %d, want %d", ErrSelectionLength, len(tokens), cat.Len())
	}

	s := Selection{enabled: make(map[string]bool, cat.Len())}
	for i, d := range cat.defs {
		s.enabled[d.Name] = tokenEnabled(tokens[i])
	}
	return s, nil
}

// tokenEnabled treats a token that is exactly the integer 1, or "true", as
// on. Anything else is off. Numeric prefixes such as "1abc" are not read as 1.
func tokenEnabled(tok string) bool {
	tok = strings.TrimSpace(tok)
	if n, err := strconv.Atoi(tok); err == nil {
		return n == 1
	}
	return strings.EqualFold(tok, "true")
}

// Enabled reports whether the named metric should be emitted.
func (s Selection) Enabled(name string) bool {
	return s.enabled[name]
}

// Count returns the number of enabled metrics.
func (s Selection) Count() int {
	n := 0
	for _, on := range s.enabled {
		if on {
			n++
		}
	}
	return n
}
