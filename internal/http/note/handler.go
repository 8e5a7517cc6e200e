package note

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mportela/qbnotes/internal/note"
)

type Handler struct {
	svc      *note.Service
	validate *validator.Validate
}

func NewHandler(svc *note.Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors against the wire field names, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &Handler{svc: svc, validate: v}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
}

// createNoteRequest mirrors the extension payload. Pointer fields
// distinguish an absent key from an empty value: presence is required for
// every field except invoice_number and created_by.
type createNoteRequest struct {
	TransactionURL  *string          `json:"transaction_url" validate:"required,url"`
	TransactionID   *string          `json:"transaction_id" validate:"required"`
	TransactionType *string          `json:"transaction_type" validate:"required"`
	Date            *string          `json:"date" validate:"required"`
	Amount          *decimal.Decimal `json:"amount" validate:"required"`
	CustomerVendor  *string          `json:"customer_vendor" validate:"required"`
	InvoiceNumber   string           `json:"invoice_number"`
	Note            *string          `json:"note" validate:"required"`
	CreatedBy       string           `json:"created_by"`
}

func (r *createNoteRequest) details() []string {
	var details []string

	if r.Note != nil && strings.TrimSpace(*r.Note) == "" {
		details = append(details, "note: Note cannot be empty")
	}

	if r.Amount != nil && r.Amount.IsNegative() {
		details = append(details, "amount: Amount must be non-negative")
	}

	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "url":
		return "Invalid URL"
	default:
		return "Invalid value"
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type createNoteResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: "invalid JSON body",
		})
		return
	}

	details := req.details()

	if err := h.validate.Struct(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details = append(details, fmt.Sprintf("%s: %s", fe.Field(), validationMessage(fe)))
			}
		} else {
			details = append(details, "invalid payload format")
		}
	}

	if len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: strings.Join(details, ", "),
		})
		return
	}

	n, err := h.svc.Create(r.Context(), note.CreateParams{
		TransactionURL:  *req.TransactionURL,
		TransactionID:   *req.TransactionID,
		TransactionType: note.Type(*req.TransactionType),
		Date:            *req.Date,
		Amount:          *req.Amount,
		CustomerVendor:  *req.CustomerVendor,
		InvoiceNumber:   req.InvoiceNumber,
		Text:            *req.Note,
		CreatedBy:       req.CreatedBy,
	})
	if err != nil {
		slog.Error("failed to create note", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, createNoteResponse{ID: n.ID, Success: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
