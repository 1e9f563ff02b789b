// Package output renders computed values in the pipe-delimited line format
// read by the monitoring agent.
package output

import (
	"bufio"
	"io"

	"github.com/HerbHall/netsampler/internal/catalog"
	"github.com/HerbHall/netsampler/pkg/models"
)

// Separator between fields of an output line.
const Separator = "|"

// Formatter writes enabled records, one per line.
type Formatter struct {
	selection catalog.Selection
}

// NewFormatter returns a formatter that emits only metrics enabled in sel.
func NewFormatter(sel catalog.Selection) *Formatter {
	return &Formatter{selection: sel}
}

// Filter returns the enabled records in their original order.
func (f *Formatter) Filter(recs []models.OutputRecord) []models.OutputRecord {
	out := make([]models.OutputRecord, 0, len(recs))
	for _, r := range recs {
		if f.selection.Enabled(r.Metric) {
			out = append(out, r)
		}
	}
	return out
}

// Line renders a single record as id|value|object.
func Line(r models.OutputRecord) string {
	return r.ID + Separator + r.Value + Separator + r.Object
}

// Write renders the enabled records to w and returns how many lines were
// written.
func (f *Formatter) Write(w io.Writer, recs []models.OutputRecord) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, r := range f.Filter(recs) {
		if _, err := bw.WriteString(Line(r) + "\n"); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}
