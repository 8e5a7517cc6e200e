package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mportela/qbnotes/internal/note"
)

// Lister is the primary (database) read side.
type Lister interface {
	ListNotesBetween(ctx context.Context, start, end time.Time) ([]*note.Note, error)
}

// DayLister is the file-store read side, keyed by civil date.
type DayLister interface {
	ListForDay(date string, loc *time.Location) ([]*note.Note, error)
}

// Appender delivers a generated report to a spreadsheet.
type Appender interface {
	AppendDailyReport(ctx context.Context, r *Report) error
}

// Service generates daily reports. primary may be nil when no database is
// configured; fallback is consulted when the primary is absent or fails.
// The fallback is read-side only here: a record written to the file store
// during a database outage is never migrated into the database.
type Service struct {
	primary  Lister
	fallback DayLister
	appender Appender // nil when Google Sheets is not configured
	loc      *time.Location
}

func NewService(primary Lister, fallback DayLister, appender Appender, loc *time.Location) *Service {
	return &Service{primary: primary, fallback: fallback, appender: appender, loc: loc}
}

// Yesterday is the default report date: the previous civil day in the
// configured zone, not in server-local time or UTC.
func (s *Service) Yesterday() string {
	return time.Now().In(s.loc).AddDate(0, 0, -1).Format(time.DateOnly)
}

// NotesForDate fetches every note created within the civil day. Database
// first; on failure the file store answers instead.
func (s *Service) NotesForDate(ctx context.Context, date string) ([]*note.Note, error) {
	start, end, err := DayWindow(date, s.loc)
	if err != nil {
		return nil, err
	}

	if s.primary != nil {
		notes, err := s.primary.ListNotesBetween(ctx, start, end)
		if err == nil {
			slog.Info("loaded notes from database", "date", date, "count", len(notes))
			return notes, nil
		}

		slog.Warn("database query failed, falling back to file storage", "date", date, "error", err)
	}

	notes, err := s.fallback.ListForDay(date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("file storage fallback for %s: %w", date, err)
	}

	slog.Info("loaded notes from file storage", "date", date, "count", len(notes))

	return notes, nil
}

// Generate builds the report for date, defaulting to yesterday when date is
// empty.
func (s *Service) Generate(ctx context.Context, date string) (*Report, error) {
	if date == "" {
		date = s.Yesterday()
	}

	notes, err := s.NotesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	return &Report{
		Date:    date,
		Notes:   notes,
		Summary: BuildSummary(notes),
	}, nil
}

// Run generates the report and delivers it to the spreadsheet. This is the
// pipeline both the scheduler and the manual trigger invoke.
func (s *Service) Run(ctx context.Context, date string) error {
	r, err := s.Generate(ctx, date)
	if err != nil {
		return fmt.Errorf("generating daily report: %w", err)
	}

	slog.Info("daily report generated",
		"date", r.Date,
		"notes", r.Summary.TotalNotes,
		"total_amount", r.Summary.TotalAmount.StringFixed(2),
	)

	if s.appender == nil {
		slog.Warn("google sheets not configured, skipping report delivery", "date", r.Date)
		return nil
	}

	if err := s.appender.AppendDailyReport(ctx, r); err != nil {
		return fmt.Errorf("appending daily report to sheet: %w", err)
	}

	return nil
}

// Location exposes the report timezone for renderers.
func (s *Service) Location() *time.Location {
	return s.loc
}
