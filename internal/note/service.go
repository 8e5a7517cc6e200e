package note

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=note
type Repository interface {
	CreateNote(ctx context.Context, n *Note) error

	// ListNotesBetween returns notes whose creation instant falls in the
	// half-open window [start, end), ordered by creation time ascending.
	ListNotesBetween(ctx context.Context, start, end time.Time) ([]*Note, error)
}

// Notifier announces a freshly persisted note to an outside channel.
type Notifier interface {
	NotifyNote(ctx context.Context, n *Note) error
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

type CreateParams struct {
	TransactionURL  string
	TransactionID   string
	TransactionType Type
	Date            string
	Amount          decimal.Decimal
	CustomerVendor  string
	InvoiceNumber   string
	Text            string
	CreatedBy       string
}

// Create persists a new note and then notifies, best effort. A notification
// failure is logged and never surfaces to the caller: persistence succeeds
// or fails independently of delivery.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Note, error) {
	n := &Note{
		TransactionURL:  params.TransactionURL,
		TransactionID:   params.TransactionID,
		TransactionType: params.TransactionType,
		Date:            params.Date,
		Amount:          params.Amount,
		CustomerVendor:  params.CustomerVendor,
		InvoiceNumber:   params.InvoiceNumber,
		Text:            params.Text,
		CreatedBy:       params.CreatedBy,
		Status:          StatusOpen,
	}

	if err := s.repo.CreateNote(ctx, n); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyNote(ctx, n); err != nil {
			slog.Error("slack notification failed", "note_id", n.ID, "error", err)
		}
	}

	return n, nil
}

// ListBetween exposes the repository window query for reporting.
func (s *Service) ListBetween(ctx context.Context, start, end time.Time) ([]*Note, error) {
	return s.repo.ListNotesBetween(ctx, start, end)
}
