// Package report aggregates persisted notes into per-civil-day reports and
// renders them for spreadsheet append and CSV download.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/mportela/qbnotes/internal/note"
)

// Summary holds the derived statistics for one day's notes. It is computed
// from scratch on every call and never persisted.
type Summary struct {
	TotalNotes       int
	TotalAmount      decimal.Decimal
	TransactionTypes map[string]int
}

// Report is a day's notes plus their summary. Date is the civil date
// (YYYY-MM-DD) in the service's configured timezone.
type Report struct {
	Date    string
	Notes   []*note.Note
	Summary Summary
}

func BuildSummary(notes []*note.Note) Summary {
	s := Summary{
		TotalNotes:       len(notes),
		TotalAmount:      decimal.Zero,
		TransactionTypes: make(map[string]int),
	}

	for _, n := range notes {
		s.TotalAmount = s.TotalAmount.Add(n.Amount)

		typ := string(n.TransactionType)
		if typ == "" {
			typ = string(note.TypeUnknown)
		}

		s.TransactionTypes[typ]++
	}

	return s
}
