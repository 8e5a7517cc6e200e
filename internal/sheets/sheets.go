// Package sheets appends daily reports to a Google spreadsheet through the
// Sheets v4 API with service-account credentials.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mportela/qbnotes/internal/report"
)

// headerRow mirrors the CSV export's 12-column layout.
var headerRow = []any{
	"Report Date",
	"Created At",
	"Transaction Type",
	"Transaction ID",
	"Date",
	"Amount",
	"Customer/Vendor",
	"Invoice/Bill #",
	"Note",
	"Created By",
	"Status",
	"QuickBooks URL",
}

const createdAtLayout = "Jan 2, 2006, 03:04 PM"

type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
}

func New(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, loc *time.Location) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		loc:           loc,
	}, nil
}

// AppendDailyReport writes one row per note plus a synthetic summary row.
// The header row is written first if the sheet is still empty.
func (c *Client) AppendDailyReport(ctx context.Context, r *report.Report) error {
	if err := c.ensureHeaders(ctx); err != nil {
		return err
	}

	rows := make([][]any, 0, len(r.Notes)+1)

	for _, n := range r.Notes {
		rows = append(rows, []any{
			r.Date,
			n.CreatedAt.In(c.loc).Format(createdAtLayout),
			string(n.TransactionType),
			n.TransactionID,
			n.Date,
			n.Amount.StringFixed(2),
			n.CustomerVendor,
			n.InvoiceNumber,
			n.Text,
			n.CreatedBy,
			string(n.Status),
			n.TransactionURL,
		})
	}

	if len(rows) > 0 {
		rows = append(rows, c.summaryRow(r))
	}

	if len(rows) == 0 {
		slog.Info("no notes for report date, nothing appended", "date", r.Date)
		return nil
	}

	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:L", &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending report rows: %w", err)
	}

	slog.Info("appended report to google sheet", "date", r.Date, "rows", len(rows))

	return nil
}

func (c *Client) summaryRow(r *report.Report) []any {
	types := ""

	for _, typ := range sortedTypeList(r.Summary.TransactionTypes) {
		if types != "" {
			types += ", "
		}

		types += fmt.Sprintf("%s: %d", typ, r.Summary.TransactionTypes[typ])
	}

	return []any{
		r.Date,
		"DAILY SUMMARY",
		fmt.Sprintf("%d transactions", r.Summary.TotalNotes),
		"",
		"",
		r.Summary.TotalAmount.StringFixed(2),
		types,
		"",
		fmt.Sprintf("Daily report for %s", r.Date),
		"SYSTEM",
		"SUMMARY",
		"",
	}
}

func (c *Client) ensureHeaders(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, c.sheetName+"!A1:L1").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("checking sheet headers: %w", err)
	}

	if len(resp.Values) > 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, c.sheetName+"!A1:L1", &sheets.ValueRange{Values: [][]any{headerRow}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing sheet headers: %w", err)
	}

	return nil
}

func sortedTypeList(types map[string]int) []string {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
