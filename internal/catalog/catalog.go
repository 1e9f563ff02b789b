// Package catalog holds the immutable table of network counters the sampler
// knows how to extract, along with the per-run selection of which of them
// are reported.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogRawData []byte

// RateKind describes how a counter's value is turned into a reported value.
type RateKind int

const (
	// Throughput values are normalized by the elapsed time between samples.
	Throughput RateKind = iota + 1
	// PlainDelta values report the raw increase between samples.
	PlainDelta
	// Instantaneous values are not counters and are reported as read.
	Instantaneous
)

var kindNames = map[RateKind]string{
	Throughput:    "throughput",
	PlainDelta:    "delta",
	Instantaneous: "instantaneous",
}

func (k RateKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RateKind(%d)", int(k))
}

// ParseRateKind converts the catalog file spelling into a RateKind.
func ParseRateKind(s string) (RateKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown rate kind %q", s)
}

// Definition describes one monitored counter.
type Definition struct {
	Name   string
	ID     string
	Kind   RateKind
	Column int
}

// Extract returns the definition's field from a normalized netstat row, or
// an empty string when the row is too short.
func (d Definition) Extract(columns []string) string {
	if d.Column < 0 || d.Column >= len(columns) {
		return ""
	}
	return columns[d.Column]
}

// Catalog is an ordered, read-only set of definitions.
type Catalog struct {
	defs  []Definition
	index map[string]int
}

// catalogFile is the top-level structure of the YAML catalog.
type catalogFile struct {
	Metrics []struct {
		Name   string `yaml:"name"`
		ID     string `yaml:"id"`
		Kind   string `yaml:"kind"`
		Column int    `yaml:"column"`
	} `yaml:"metrics"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded netstat catalog. It is parsed once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(catalogRawData)
	})
	return defaultCat, defaultErr
}

// Parse builds a catalog from YAML. Entry order in the document is the
// enumeration order of the catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}
	if len(f.Metrics) == 0 {
		return nil, errors.New("catalog: no metrics defined")
	}

	defs := make([]Definition, 0, len(f.Metrics))
	for _, m := range f.Metrics {
		kind, err := ParseRateKind(m.Kind)
		if err != nil {
			return nil, fmt.Errorf("catalog: metric %q: %w", m.Name, err)
		}
		defs = append(defs, Definition{Name: m.Name, ID: m.ID, Kind: kind, Column: m.Column})
	}
	return New(defs)
}

// New builds a catalog from definitions, rejecting empty or duplicate names
// and negative columns.
func New(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		defs:  make([]Definition, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	copy(c.defs, defs)

	for i, d := range c.defs {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog: metric %d has no name", i)
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate metric %q", d.Name)
		}
		if d.Column < 0 {
			return nil, fmt.Errorf("catalog: metric %q has negative column %d", d.Name, d.Column)
		}
		if _, ok := kindNames[d.Kind]; !ok {
			return nil, fmt.Errorf("catalog: metric %q has invalid kind %d", d.Name, int(d.Kind))
		}
		c.index[d.Name] = i
	}
	return c, nil
}

// Lookup returns the definition registered under name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	i, ok := c.index[name]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Definitions returns a copy of all definitions in catalog order.
func (c *Catalog) Definitions() []Definition {
	cp := make([]Definition, len(c.defs))
	copy(cp, c.defs)
	return cp
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}
