package model

import (
	"slices"
)

// FrequencyTable maps a string value to the number of times it was seen.
// encoding/json writes map keys in sorted order, which keeps the
// serialized form stable.
type FrequencyTable map[string]int

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() FrequencyTable {
	return make(FrequencyTable)
}

// CountValues builds a table from values, counting each occurrence.
func CountValues(values []string) FrequencyTable {
	ft := make(FrequencyTable, len(values))
	ft.AddAll(values)
	return ft
}

// Add increments the count for value by one.
func (ft FrequencyTable) Add(value string) {
	ft[value]++
}

// AddAll increments the count of every element of values.
func (ft FrequencyTable) AddAll(values []string) {
	for _, v := range values {
		ft[v]++
	}
}

// Total returns the sum of all counts.
func (ft FrequencyTable) Total() int {
	total := 0
	for _, n := range ft {
		total += n
	}
	return total
}

// Entry is one row of a FrequencyTable.
type Entry struct {
	Value string
	Count int
}

// Ranked returns the entries ordered by descending count, ties broken by value.
func (ft FrequencyTable) Ranked() []Entry {
	entries := make([]Entry, 0, len(ft))
	for k, n := range ft {
		entries = append(entries, Entry{Value: k, Count: n})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
	return entries
}
