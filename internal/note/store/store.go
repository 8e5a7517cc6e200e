package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mportela/qbnotes/internal/note"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema provisions the notes table on startup so a fresh database
// works without a separate migration step.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS notes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			transaction_url TEXT NOT NULL,
			transaction_id TEXT,
			transaction_type TEXT NOT NULL,
			date TEXT NOT NULL,
			amount NUMERIC(12, 2) NOT NULL,
			customer_vendor TEXT NOT NULL,
			invoice_number TEXT,
			note TEXT NOT NULL,
			created_by TEXT,
			status TEXT NOT NULL DEFAULT 'Open',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes (created_at);
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensuring notes schema: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectNoteColumns = `
	id, transaction_url, transaction_id, transaction_type, date, amount,
	customer_vendor, invoice_number, note, created_by, status, created_at
`

// scanNote reads a note row in selectNoteColumns order.
func scanNote(s scanner) (*note.Note, error) {
	var n note.Note

	var typeStr, statusStr string

	var txnID, invoiceNumber, createdBy sql.NullString

	if err := s.Scan(
		&n.ID, &n.TransactionURL, &txnID, &typeStr, &n.Date, &n.Amount,
		&n.CustomerVendor, &invoiceNumber, &n.Text, &createdBy, &statusStr, &n.CreatedAt,
	); err != nil {
		return nil, err
	}

	n.TransactionType = note.Type(typeStr)
	n.Status = note.Status(statusStr)
	n.TransactionID = txnID.String
	n.InvoiceNumber = invoiceNumber.String
	n.CreatedBy = createdBy.String
	n.CreatedAt = n.CreatedAt.UTC()

	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, n *note.Note) error {
	query := `
		INSERT INTO notes (transaction_url, transaction_id, transaction_type, date, amount,
			customer_vendor, invoice_number, note, created_by, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		n.TransactionURL,
		n.TransactionID,
		n.TransactionType,
		n.Date,
		n.Amount,
		n.CustomerVendor,
		n.InvoiceNumber,
		n.Text,
		n.CreatedBy,
		n.Status,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating note: %w", err)
	}

	n.CreatedAt = n.CreatedAt.UTC()

	return nil
}

func (s *Store) ListNotesBetween(ctx context.Context, start, end time.Time) ([]*note.Note, error) {
	query := `SELECT ` + selectNoteColumns + `
		FROM notes
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []*note.Note

	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}

		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating note rows: %w", err)
	}

	return notes, nil
}
