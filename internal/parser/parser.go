// Package parser turns `netstat -nbid` output into a sample of per-interface
// counter records.
package parser

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/HerbHall/netsampler/internal/catalog"
	"github.com/HerbHall/netsampler/pkg/models"
)

// A link row has 12 columns:
//
//	Name Mtu Network Address Ipkts Ierrs Ibytes Opkts Oerrs Obytes Coll Drop
//
// Interfaces without a hardware address omit the Address column.
const (
	rowColumns      = 12
	shortRowColumns = 11
	addressColumn   = 3
	activityColumn  = 4
	nameColumn      = 0
)

// Stats counts what a parse pass saw.
type Stats struct {
	Lines    int // input lines
	Rows     int // link rows that produced records
	Skipped  int // link rows with an unexpected column count
	Inactive int // link rows with no inbound packets
}

// Parser converts raw statistics output to a sample.
type Parser struct {
	catalog *catalog.Catalog
	marker  string
	now     func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarker sets the substring identifying link-layer rows.
func WithMarker(marker string) Option {
	return func(p *Parser) {
		if marker != "" {
			p.marker = marker
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a parser emitting one record per catalog metric for each
// active link row.
func New(cat *catalog.Catalog, opts ...Option) *Parser {
	p := &Parser{
		catalog: cat,
		marker:  "Link#",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads raw command output. Malformed rows are dropped, never errored.
// Every record shares one timestamp taken at the start of the pass.
func (p *Parser) Parse(raw []byte) (models.Sample, Stats) {
	var (
		stats  Stats
		sample models.Sample
		ts     = p.now().UTC()
		defs   = p.catalog.Definitions()
	)

	for _, b := range splitLines(raw) {
		stats.Lines++
		line := string(b)
		if !strings.Contains(line, p.marker) {
			continue
		}

		cols, ok := normalize(strings.Fields(line))
		if !ok {
			stats.Skipped++
			continue
		}
		if !active(cols[activityColumn]) {
			stats.Inactive++
			continue
		}

		stats.Rows++
		object := cols[nameColumn]
		for _, d := range defs {
			sample = append(sample, models.Record{
				Metric:    d.Name,
				ID:        d.ID,
				Timestamp: ts,
				Value:     d.Extract(cols),
				Object:    object,
			})
		}
	}
	return sample, stats
}

// splitLines splits raw on newlines without any line length limit. A
// trailing newline does not produce an extra empty line.
func splitLines(raw []byte) [][]byte {
	raw = bytes.TrimSuffix(raw, []byte("\n"))
	if len(raw) == 0 {
		return nil
	}
	return bytes.Split(raw, []byte("\n"))
}

// normalize pads a short row with an empty address so both row shapes share
// one column layout.
func normalize(tokens []string) ([]string, bool) {
	switch len(tokens) {
	case rowColumns:
		return tokens, true
	case shortRowColumns:
		cols := make([]string, 0, rowColumns)
		cols = append(cols, tokens[:addressColumn]...)
		cols = append(cols, "")
		cols = append(cols, tokens[addressColumn:]...)
		return cols, true
	default:
		return nil, false
	}
}

func active(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v > 0
}
