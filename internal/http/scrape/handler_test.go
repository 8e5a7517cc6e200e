package scrape_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scrapehttp "github.com/mportela/qbnotes/internal/http/scrape"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/scrape", scrapehttp.NewHandler().Routes)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv
}

const invoicePage = `<html><body>
	<input data-automation-id="invoiceNumber" value="INV-1042">
	<input name="transaction_date" value="08/15/2026">
	<input name="customer_name" value="Acme Corp">
	<input data-automation-id="total-amount" value="$1,250.50">
</body></html>`

func post(t *testing.T, srv *httptest.Server, url, html string) *http.Response {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"url": url, "html": html})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/scrape", "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestHandler_Scrape_Invoice(t *testing.T) {
	srv := newServer(t)

	pageURL := "https://app.qbo.intuit.com/app/invoice?txnId=9981"
	resp := post(t, srv, pageURL, invoicePage)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		TransactionURL    string   `json:"transaction_url"`
		TransactionType   string   `json:"transaction_type"`
		IsTransactionPage bool     `json:"is_transaction_page"`
		TransactionID     *string  `json:"transaction_id"`
		Date              *string  `json:"date"`
		Amount            *float64 `json:"amount"`
		CustomerVendor    *string  `json:"customer_vendor"`
		InvoiceNumber     *string  `json:"invoice_number"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, pageURL, body.TransactionURL)
	assert.Equal(t, "Invoice", body.TransactionType)
	assert.True(t, body.IsTransactionPage)
	require.NotNil(t, body.TransactionID)
	assert.Equal(t, "9981", *body.TransactionID)
	require.NotNil(t, body.Amount)
	assert.InDelta(t, 1250.50, *body.Amount, 0.001)
	require.NotNil(t, body.CustomerVendor)
	assert.Equal(t, "Acme Corp", *body.CustomerVendor)
	require.NotNil(t, body.InvoiceNumber)
	assert.Equal(t, "INV-1042", *body.InvoiceNumber)
}

func TestHandler_Scrape_MissesSerializeAsNull(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "https://app.qbo.intuit.com/app/expense?txnId=5", "<html><body></body></html>")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	for _, key := range []string{"date", "amount", "customer_vendor", "invoice_number", "created_by"} {
		val, ok := body[key]
		require.True(t, ok, fmt.Sprintf("key %s absent from response", key))
		assert.Nil(t, val, key)
	}
}

func TestHandler_Scrape_MissingFields(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
