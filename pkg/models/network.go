package models

import "time"

// Record is a single counter reading for one network interface.
// The JSON field names are the on-disk snapshot format.
type Record struct {
	Metric    string    `json:"variableName" yaml:"variableName"`
	ID        string    `json:"metricUUID" yaml:"metricUUID"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Value     string    `json:"value" yaml:"value"`
	Object    string    `json:"object" yaml:"object"`
}

// RecordKey identifies a reading across samples.
type RecordKey struct {
	ID     string
	Object string
}

// Key returns the record's identity.
func (r Record) Key() RecordKey {
	return RecordKey{ID: r.ID, Object: r.Object}
}

// Sample is every record captured in one parse pass, in capture order.
type Sample []Record

// Index maps each record key to its first occurrence in the sample.
func (s Sample) Index() map[RecordKey]Record {
	idx := make(map[RecordKey]Record, len(s))
	for _, r := range s {
		if _, seen := idx[r.Key()]; !seen {
			idx[r.Key()] = r
		}
	}
	return idx
}

// Objects returns the distinct interface names in first-seen order.
func (s Sample) Objects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s {
		if !seen[r.Object] {
			seen[r.Object] = true
			out = append(out, r.Object)
		}
	}
	return out
}

// OutputRecord is a computed value ready for formatting.
type OutputRecord struct {
	Metric    string    `json:"variableName"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Value     string    `json:"value"`
	Object    string    `json:"object"`
}
