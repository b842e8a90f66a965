package domain

import "sort"

// InvalidValueEntry records cells of one column that were replaced by the
// column default. Rows are absolute 1-based source row numbers (the header is
// row 1) and Values holds the raw cell text in the same order.
type InvalidValueEntry struct {
	Column string   `json:"column"`
	Rows   []int    `json:"rows"`
	Values []string `json:"values"`
}

// ColumnCount is a per-column total of invalid cells.
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// Ledger accumulates invalid-value entries for a single ingestion run.
// It is not safe for concurrent use.
type Ledger struct {
	entries []InvalidValueEntry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends an entry. Empty row sets and a nil ledger are ignored.
func (l *Ledger) Add(column string, rows []int, values []string) {
	if l == nil || len(rows) == 0 {
		return
	}
	l.entries = append(l.entries, InvalidValueEntry{Column: column, Rows: rows, Values: values})
}

// Entries returns the recorded entries in insertion order.
func (l *Ledger) Entries() []InvalidValueEntry {
	if l == nil {
		return nil
	}
	return l.entries
}

// Len is the number of invalid cells across all entries.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, e := range l.entries {
		n += len(e.Rows)
	}
	return n
}

// Summary folds the entries into one count per column, sorted by column name.
func (l *Ledger) Summary() []ColumnCount {
	if l == nil || len(l.entries) == 0 {
		return []ColumnCount{}
	}
	totals := make(map[string]int)
	for _, e := range l.entries {
		totals[e.Column] += len(e.Rows)
	}
	out := make([]ColumnCount, 0, len(totals))
	for col, n := range totals {
		out = append(out, ColumnCount{Column: col, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}
