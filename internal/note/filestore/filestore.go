// Package filestore is the append-only JSONL store used when the primary
// database is unreachable or not configured at all. Records written here
// during an outage are never reconciled back into the database.
package filestore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mportela/qbnotes/internal/note"
)

const dataFile = "transactions.jsonl"

type Store struct {
	dir string

	mu sync.Mutex // serializes appends; readers tolerate a partial last line
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// record is the on-disk line format. Field names match the intake payload
// so a line is readable next to the API traffic it came from.
type record struct {
	ID              string          `json:"id"`
	TransactionURL  string          `json:"transaction_url"`
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	CustomerVendor  string          `json:"customer_vendor"`
	InvoiceNumber   string          `json:"invoice_number"`
	Note            string          `json:"note"`
	CreatedBy       string          `json:"created_by"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toRecord(n *note.Note) record {
	return record{
		ID:              n.ID,
		TransactionURL:  n.TransactionURL,
		TransactionID:   n.TransactionID,
		TransactionType: string(n.TransactionType),
		Date:            n.Date,
		Amount:          n.Amount,
		CustomerVendor:  n.CustomerVendor,
		InvoiceNumber:   n.InvoiceNumber,
		Note:            n.Text,
		CreatedBy:       n.CreatedBy,
		Status:          string(n.Status),
		CreatedAt:       n.CreatedAt,
	}
}

func (r record) toNote() *note.Note {
	return &note.Note{
		ID:              r.ID,
		TransactionURL:  r.TransactionURL,
		TransactionID:   r.TransactionID,
		TransactionType: note.Type(r.TransactionType),
		Date:            r.Date,
		Amount:          r.Amount,
		CustomerVendor:  r.CustomerVendor,
		InvoiceNumber:   r.InvoiceNumber,
		Text:            r.Note,
		CreatedBy:       r.CreatedBy,
		Status:          note.Status(r.Status),
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, dataFile)
}

// CreateNote appends the note as one JSON line, assigning a "file-" id and
// a UTC creation timestamp. Satisfies note.Repository so the service can
// run without a database.
func (s *Store) CreateNote(_ context.Context, n *note.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	n.ID = fmt.Sprintf("file-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	n.CreatedAt = time.Now().UTC()

	line, err := json.Marshal(toRecord(n))
	if err != nil {
		return fmt.Errorf("encoding note: %w", err)
	}

	f, err := os.OpenFile(s.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening storage file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending note: %w", err)
	}

	return nil
}

// ListAll reads every stored note. Malformed lines are skipped with a log
// line, never fatal: a half-written tail must not poison reporting.
func (s *Store) ListAll() ([]*note.Note, error) {
	f, err := os.Open(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("opening storage file: %w", err)
	}
	defer f.Close()

	var notes []*note.Note

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for lineNo := 1; sc.Scan(); lineNo++ {
		text := sc.Bytes()
		if len(text) == 0 {
			continue
		}

		var r record
		if err := json.Unmarshal(text, &r); err != nil {
			slog.Warn("skipping malformed storage line", "line", lineNo, "error", err)
			continue
		}

		notes = append(notes, r.toNote())
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading storage file: %w", err)
	}

	return notes, nil
}

// ListNotesBetween filters stored notes into the half-open instant window
// [start, end). Satisfies note.Repository.
func (s *Store) ListNotesBetween(_ context.Context, start, end time.Time) ([]*note.Note, error) {
	all, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	var notes []*note.Note

	for _, n := range all {
		if !n.CreatedAt.Before(start) && n.CreatedAt.Before(end) {
			notes = append(notes, n)
		}
	}

	return notes, nil
}

// ListForDay returns the notes whose UTC creation timestamp maps to the
// given civil date (YYYY-MM-DD) in loc. Comparison is by civil date string,
// not offset arithmetic, so it holds across daylight-saving transitions.
func (s *Store) ListForDay(date string, loc *time.Location) ([]*note.Note, error) {
	all, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	var notes []*note.Note

	for _, n := range all {
		if n.CreatedAt.In(loc).Format(time.DateOnly) == date {
			notes = append(notes, n)
		}
	}

	return notes, nil
}

type Stats struct {
	TotalNotes int
	FileSizeKB int64
}

func (s *Store) Stats() (Stats, error) {
	info, err := os.Stat(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, nil
		}

		return Stats{}, fmt.Errorf("statting storage file: %w", err)
	}

	notes, err := s.ListAll()
	if err != nil {
		return Stats{}, err
	}

	return Stats{TotalNotes: len(notes), FileSizeKB: info.Size() / 1024}, nil
}

// Clear removes the storage file. Missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing storage file: %w", err)
	}

	return nil
}
