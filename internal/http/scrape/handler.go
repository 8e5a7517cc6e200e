package scrape

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mportela/qbnotes/internal/scrape"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.scrape)
}

type scrapeRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// scrapeResponse carries every field explicitly so a miss serializes as
// null rather than disappearing; the extension treats null as "ask the
// user".
type scrapeResponse struct {
	TransactionURL    string   `json:"transaction_url"`
	TransactionType   string   `json:"transaction_type"`
	IsTransactionPage bool     `json:"is_transaction_page"`
	TransactionID     *string  `json:"transaction_id"`
	Date              *string  `json:"date"`
	Amount            *float64 `json:"amount"`
	CustomerVendor    *string  `json:"customer_vendor"`
	InvoiceNumber     *string  `json:"invoice_number"`
	CreatedBy         *string  `json:"created_by"`
}

func (h *Handler) scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.URL == "" || req.HTML == "" {
		writeError(w, http.StatusBadRequest, "url and html are required")
		return
	}

	fields, err := scrape.Parse(strings.NewReader(req.HTML), req.URL)
	if err != nil {
		slog.Error("page scrape failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := scrapeResponse{
		TransactionURL:    fields.TransactionURL,
		TransactionType:   string(fields.TransactionType),
		IsTransactionPage: scrape.IsTransactionPage(req.URL),
		TransactionID:     fields.TransactionID,
		Date:              fields.Date,
		CustomerVendor:    fields.CustomerVendor,
		InvoiceNumber:     fields.InvoiceNumber,
		CreatedBy:         fields.CreatedBy,
	}

	if fields.Amount != nil {
		amount := fields.Amount.InexactFloat64()
		resp.Amount = &amount
	}

	writeJSON(w, http.StatusOK, resp)
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
