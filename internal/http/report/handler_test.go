package report_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reporthttp "github.com/mportela/qbnotes/internal/http/report"
	"github.com/mportela/qbnotes/internal/note"
	"github.com/mportela/qbnotes/internal/report"
	"github.com/mportela/qbnotes/internal/scheduler"
)

type fixedLister struct {
	notes []*note.Note
}

func (f *fixedLister) ListNotesBetween(_ context.Context, _, _ time.Time) ([]*note.Note, error) {
	return f.notes, nil
}

func pacific(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	return loc
}

func newServer(t *testing.T, notes []*note.Note) *httptest.Server {
	t.Helper()

	loc := pacific(t)
	reports := report.NewService(&fixedLister{notes: notes}, nil, nil, loc)
	sched := scheduler.New(reports, loc)

	h := reporthttp.NewHandler(reports, sched, reporthttp.StatusInfo{
		Environment: "test",
		Timezone:    loc.String(),
	})

	r := chi.NewRouter()
	r.Route("/reports", h.Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

func sampleNotes(t *testing.T) []*note.Note {
	t.Helper()

	created, err := time.Parse(time.RFC3339, "2026-08-15T18:30:00Z")
	require.NoError(t, err)

	return []*note.Note{
		{
			ID:              "n1",
			TransactionURL:  "https://app.qbo.intuit.com/app/invoice?txnId=1",
			TransactionID:   "1",
			TransactionType: note.TypeInvoice,
			Date:            "08/15/2026",
			Amount:          decimal.NewFromFloat(1250.50),
			CustomerVendor:  "Acme Corp",
			InvoiceNumber:   "INV-1",
			Text:            "net-60 approved",
			CreatedBy:       "jane@example.com",
			Status:          note.StatusOpen,
			CreatedAt:       created,
		},
		{
			ID:              "n2",
			TransactionURL:  "https://app.qbo.intuit.com/app/expense?txnId=2",
			TransactionID:   "2",
			TransactionType: note.TypeExpense,
			Date:            "08/15/2026",
			Amount:          decimal.NewFromFloat(42.25),
			CustomerVendor:  "Office Depot",
			Text:            "supplies",
			Status:          note.StatusOpen,
			CreatedAt:       created.Add(time.Hour),
		},
	}
}

func TestHandler_Preview(t *testing.T) {
	srv := newServer(t, sampleNotes(t))

	resp, err := http.Get(srv.URL + "/reports/preview/2026-08-15")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Date    string           `json:"date"`
		Notes   []map[string]any `json:"notes"`
		Summary struct {
			TotalTransactions int            `json:"totalTransactions"`
			TotalAmount       float64        `json:"totalAmount"`
			TransactionTypes  map[string]int `json:"transactionTypes"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "2026-08-15", body.Date)
	require.Len(t, body.Notes, 2)
	assert.Equal(t, "Acme Corp", body.Notes[0]["customer_vendor"])
	assert.InDelta(t, 1250.50, body.Notes[0]["amount"], 0.001)
	assert.Equal(t, 2, body.Summary.TotalTransactions)
	assert.InDelta(t, 1292.75, body.Summary.TotalAmount, 0.001)
	assert.Equal(t, map[string]int{"Invoice": 1, "Expense": 1}, body.Summary.TransactionTypes)
}

func TestHandler_Preview_InvalidDate(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/reports/preview/08-15-2026")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_CSVDownload(t *testing.T) {
	srv := newServer(t, sampleNotes(t))

	resp, err := http.Get(srv.URL + "/reports/csv/2026-08-15")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qbo-transactions-2026-08-15.csv"`,
		resp.Header.Get("Content-Disposition"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "DAILY SUMMARY")
	assert.Contains(t, string(raw), "Total Transactions,2")
}

func TestHandler_CSVPreview_Inline(t *testing.T) {
	srv := newServer(t, sampleNotes(t))

	resp, err := http.Get(srv.URL + "/reports/csv-preview/2026-08-15")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Disposition"))
}

func TestHandler_Manual(t *testing.T) {
	srv := newServer(t, sampleNotes(t))

	resp, err := http.Post(srv.URL+"/reports/manual", "application/json",
		strings.NewReader(`{"date":"2026-08-15"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Date    string `json:"date"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "2026-08-15", body.Date)
}

func TestHandler_Status(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/reports/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Scheduler struct {
			IsRunning bool   `json:"isRunning"`
			Timezone  string `json:"timezone"`
		} `json:"scheduler"`
		GoogleSheets    string            `json:"googleSheets"`
		Environment     string            `json:"environment"`
		CommonSchedules map[string]string `json:"commonSchedules"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.False(t, body.Scheduler.IsRunning)
	assert.Equal(t, "America/Los_Angeles", body.Scheduler.Timezone)
	assert.Equal(t, "NOT SET", body.GoogleSheets)
	assert.Equal(t, "test", body.Environment)
	assert.NotEmpty(t, body.CommonSchedules)
}

func TestHandler_SchedulerStartStop(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Post(srv.URL+"/reports/scheduler/start", "application/json",
		strings.NewReader(`{"cron_expression":"0 9 * * *"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/reports/scheduler/start", "application/json",
		strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error    string            `json:"error"`
		Examples map[string]string `json:"examples"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "cron_expression is required", body.Error)
	assert.NotEmpty(t, body.Examples)

	resp, err = http.Post(srv.URL+"/reports/scheduler/stop", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_SchedulerStart_InvalidExpression(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Post(srv.URL+"/reports/scheduler/start", "application/json",
		strings.NewReader(`{"cron_expression":"not cron"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
