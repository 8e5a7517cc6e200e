// Package scrape classifies accounting-app pages by URL and pulls
// transaction fields out of captured page markup. Everything here is
// best-effort pattern matching over a third-party UI the service does not
// control: a miss yields nil, never an error.
package scrape

import (
	"regexp"
	"strings"

	"github.com/mportela/qbnotes/internal/note"
)

// detailMarkers identify single-entity edit/create pages. Substring
// semantics, checked against the lowercased URL.
var detailMarkers = []string{
	"/invoice",
	"/bill",
	"/expense",
	"/journal",
	"/payment",
	"/transaction/",
	"create",
	"edit",
}

// listMarkers identify list/report pages and veto a detail match: a URL
// containing "/invoices" also contains "/invoice", so the blacklist is what
// separates a single invoice from the invoice list.
var listMarkers = []string{
	"/invoices",
	"/bills",
	"/expenses",
	"/journals",
	"/payments",
	"/customers",
	"/vendors",
	"/items",
	"/reports",
}

var txnIDPattern = regexp.MustCompile(`(?i)[?&]txnid=([^&]+)`)

// IsTransactionPage reports whether the URL points at a single-transaction
// edit/create page. A txnId query parameter is accepted regardless of path;
// otherwise a detail marker must match and no list marker may.
func IsTransactionPage(rawURL string) bool {
	u := strings.ToLower(rawURL)

	if txnIDPattern.MatchString(u) {
		return true
	}

	detail := false

	for _, m := range detailMarkers {
		if strings.Contains(u, m) {
			detail = true
			break
		}
	}

	if !detail {
		return false
	}

	for _, m := range listMarkers {
		if strings.Contains(u, m) {
			return false
		}
	}

	return true
}

// TypeFromURL derives the transaction type from the URL path. First match
// wins; anything unrecognized is Unknown.
func TypeFromURL(rawURL string) note.Type {
	u := strings.ToLower(rawURL)

	switch {
	case strings.Contains(u, "/invoice"):
		return note.TypeInvoice
	case strings.Contains(u, "/bill"):
		return note.TypeBill
	case strings.Contains(u, "/expense"):
		return note.TypeExpense
	case strings.Contains(u, "/journal"):
		return note.TypeJournalEntry
	case strings.Contains(u, "/payment"):
		return note.TypePayment
	case strings.Contains(u, "/deposit"):
		return note.TypeBankDeposit
	default:
		return note.TypeUnknown
	}
}

// IDFromURL extracts the txnId query parameter, or "" when absent.
func IDFromURL(rawURL string) string {
	m := txnIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}

	return m[1]
}
