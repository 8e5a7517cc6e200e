package note_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mportela/qbnotes/internal/http/note"
	notedomain "github.com/mportela/qbnotes/internal/note"
)

func newServer(t *testing.T, repo notedomain.Repository) *httptest.Server {
	t.Helper()

	svc := notedomain.NewService(repo, nil)
	h := note.NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/notes", h.Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

const validBody = `{
	"transaction_url": "https://app.qbo.intuit.com/app/invoice?txnId=123",
	"transaction_id": "123",
	"transaction_type": "Invoice",
	"date": "08/15/2026",
	"amount": 1250.50,
	"customer_vendor": "Acme Corp",
	"invoice_number": "INV-1042",
	"note": "Customer requested net-60 terms",
	"created_by": "jane@example.com"
}`

func TestHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notedomain.NewMockRepository(ctrl)

	repo.EXPECT().
		CreateNote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, n *notedomain.Note) error {
			assert.Equal(t, "123", n.TransactionID)
			assert.Equal(t, notedomain.TypeInvoice, n.TransactionType)
			assert.Equal(t, "Acme Corp", n.CustomerVendor)
			assert.True(t, n.Amount.Equal(decimal.NewFromFloat(1250.50)))

			n.ID = "note-1"
			return nil
		})

	srv := newServer(t, repo)

	resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		ID      string `json:"id"`
		Success bool   `json:"success"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "note-1", body.ID)
	assert.True(t, body.Success)
}

func TestHandler_Create_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notedomain.NewMockRepository(ctrl)

	srv := newServer(t, repo)

	resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(`{"note":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Validation failed", body.Error)
	assert.Contains(t, body.Details, "transaction_url: Required")
	assert.Contains(t, body.Details, "amount: Required")
}

func TestHandler_Create_BlankNoteRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notedomain.NewMockRepository(ctrl)

	srv := newServer(t, repo)

	body := strings.Replace(validBody, "Customer requested net-60 terms", "   ", 1)

	resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Note cannot be empty")
}

func TestHandler_Create_InvalidURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notedomain.NewMockRepository(ctrl)

	srv := newServer(t, repo)

	body := strings.Replace(validBody, "https://app.qbo.intuit.com/app/invoice?txnId=123", "not a url", 1)

	resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "transaction_url: Invalid URL")
}

func TestHandler_Create_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notedomain.NewMockRepository(ctrl)

	repo.EXPECT().
		CreateNote(gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	srv := newServer(t, repo)

	resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Internal server error")
}
