package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mportela/qbnotes/internal/note"
	"github.com/mportela/qbnotes/internal/report"
	"github.com/mportela/qbnotes/internal/scheduler"
)

// StatusInfo is the static deployment context surfaced by GET /status.
type StatusInfo struct {
	Environment  string
	SheetsActive bool
	Timezone     string
}

type Handler struct {
	reports *report.Service
	sched   *scheduler.Scheduler
	info    StatusInfo
}

func NewHandler(reports *report.Service, sched *scheduler.Scheduler, info StatusInfo) *Handler {
	return &Handler{reports: reports, sched: sched, info: info}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/preview", h.preview)
	r.Get("/preview/{date}", h.preview)
	r.Get("/csv", h.csvDownload)
	r.Get("/csv/{date}", h.csvDownload)
	r.Get("/csv-preview", h.csvPreview)
	r.Get("/csv-preview/{date}", h.csvPreview)
	r.Post("/manual", h.manual)
	r.Get("/status", h.status)
	r.Post("/scheduler/start", h.startScheduler)
	r.Post("/scheduler/stop", h.stopScheduler)
}

// requestedDate resolves the report date from the URL, defaulting to
// yesterday. A malformed date is reported to the client rather than letting
// it reach the window math.
func (h *Handler) requestedDate(r *http.Request) (string, error) {
	date := chi.URLParam(r, "date")
	if date == "" {
		return h.reports.Yesterday(), nil
	}

	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	return date, nil
}

type noteResponse struct {
	ID              string  `json:"id"`
	TransactionURL  string  `json:"transaction_url"`
	TransactionID   string  `json:"transaction_id"`
	TransactionType string  `json:"transaction_type"`
	Date            string  `json:"date"`
	Amount          float64 `json:"amount"`
	CustomerVendor  string  `json:"customer_vendor"`
	InvoiceNumber   string  `json:"invoice_number"`
	Note            string  `json:"note"`
	CreatedBy       string  `json:"created_by"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

type summaryResponse struct {
	TotalTransactions int            `json:"totalTransactions"`
	TotalAmount       float64        `json:"totalAmount"`
	TransactionTypes  map[string]int `json:"transactionTypes"`
}

type previewResponse struct {
	Date    string          `json:"date"`
	Notes   []noteResponse  `json:"notes"`
	Summary summaryResponse `json:"summary"`
}

func toPreview(rep *report.Report, loc *time.Location) previewResponse {
	notes := make([]noteResponse, 0, len(rep.Notes))
	for _, n := range rep.Notes {
		notes = append(notes, toNoteResponse(n, loc))
	}

	return previewResponse{
		Date:  rep.Date,
		Notes: notes,
		Summary: summaryResponse{
			TotalTransactions: rep.Summary.TotalNotes,
			TotalAmount:       rep.Summary.TotalAmount.InexactFloat64(),
			TransactionTypes:  rep.Summary.TransactionTypes,
		},
	}
}

func toNoteResponse(n *note.Note, loc *time.Location) noteResponse {
	return noteResponse{
		ID:              n.ID,
		TransactionURL:  n.TransactionURL,
		TransactionID:   n.TransactionID,
		TransactionType: string(n.TransactionType),
		Date:            n.Date,
		Amount:          n.Amount.InexactFloat64(),
		CustomerVendor:  n.CustomerVendor,
		InvoiceNumber:   n.InvoiceNumber,
		Note:            n.Text,
		CreatedBy:       n.CreatedBy,
		Status:          string(n.Status),
		CreatedAt:       n.CreatedAt.In(loc).Format(time.RFC3339),
	}
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	date, err := h.requestedDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.reports.Generate(r.Context(), date)
	if err != nil {
		slog.Error("report preview failed", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toPreview(rep, h.reports.Location()))
}

func (h *Handler) csvDownload(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, true)
}

func (h *Handler) csvPreview(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, false)
}

func (h *Handler) writeCSV(w http.ResponseWriter, r *http.Request, download bool) {
	date, err := h.requestedDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.reports.Generate(r.Context(), date)
	if err != nil {
		slog.Error("csv export failed", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if download {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", report.CSVFilename(date)))
	}

	if err := report.WriteCSV(w, rep, h.reports.Location()); err != nil {
		slog.Error("failed to write csv", "date", date, "error", err)
	}
}

type manualRequest struct {
	Date string `json:"date"`
}

func (h *Handler) manual(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	date := req.Date
	if date == "" {
		date = h.reports.Yesterday()
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
		return
	}

	if err := h.sched.TriggerManual(r.Context(), date); err != nil {
		slog.Error("manual report run failed", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Report for %s generated and delivered", date),
		"date":    date,
	})
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	running, expression := h.sched.Status()

	sheets := "NOT SET"
	if h.info.SheetsActive {
		sheets = "SET"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scheduler": map[string]any{
			"isRunning":      running,
			"cronExpression": expression,
			"timezone":       h.info.Timezone,
		},
		"googleSheets":    sheets,
		"environment":     h.info.Environment,
		"commonSchedules": scheduler.CommonSchedules(),
	})
}

type startSchedulerRequest struct {
	CronExpression string `json:"cron_expression"`
}

func (h *Handler) startScheduler(w http.ResponseWriter, r *http.Request) {
	var req startSchedulerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CronExpression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "cron_expression is required",
			"examples": scheduler.CommonSchedules(),
		})
		return
	}

	if err := h.sched.Start(req.CronExpression); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    err.Error(),
			"examples": scheduler.CommonSchedules(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("Scheduler started with expression %s", req.CronExpression),
		"timezone": h.info.Timezone,
	})
}

func (h *Handler) stopScheduler(w http.ResponseWriter, _ *http.Request) {
	h.sched.Stop()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Scheduler stopped",
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
