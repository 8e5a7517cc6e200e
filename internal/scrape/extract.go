package scrape

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/mportela/qbnotes/internal/encoding"
	"github.com/mportela/qbnotes/internal/note"
)

// Fields is the best-effort result of scraping one transaction page. A nil
// pointer means no plausible value was found; the composer pushes those to
// the user for manual entry.
type Fields struct {
	TransactionURL  string
	TransactionID   *string
	TransactionType note.Type
	Date            *string
	Amount          *decimal.Decimal
	CustomerVendor  *string
	InvoiceNumber   *string
	CreatedBy       *string
}

// Parse normalizes raw page bytes to UTF-8, parses the markup, and extracts
// transaction fields.
func Parse(r io.Reader, pageURL string) (*Fields, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("normalizing page encoding: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8r)
	if err != nil {
		return nil, fmt.Errorf("parsing page markup: %w", err)
	}

	return Extract(doc, pageURL), nil
}

// Extract runs the per-field selector cascades over an already parsed page.
func Extract(doc *goquery.Document, pageURL string) *Fields {
	txType := TypeFromURL(pageURL)

	f := &Fields{
		TransactionURL:  pageURL,
		TransactionType: txType,
		Date:            extractDate(doc),
		Amount:          extractAmount(doc),
		CustomerVendor:  extractCustomerVendor(doc, txType),
		InvoiceNumber:   extractInvoiceNumber(doc, txType),
		CreatedBy:       extractCreatedBy(doc),
	}

	if id := IDFromURL(pageURL); id != "" {
		f.TransactionID = &id
	}

	return f
}

// elementValue reads an element's user-visible value: the value attribute
// for form inputs, text content otherwise.
func elementValue(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "input", "textarea":
		v, _ := s.Attr("value")
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(s.Text())
	}
}

// insideList reports whether the element sits in a table/grid/list
// ancestor. Values there belong to some row of a list page, not to the
// transaction being edited.
func insideList(s *goquery.Selection) bool {
	for _, ancestor := range []string{
		"table",
		"[data-automation-id*=list]",
		"[data-automation-id*=table]",
		".list-item",
		".grid-row",
		"[role=grid]",
	} {
		if s.Closest(ancestor).Length() > 0 {
			return true
		}
	}

	return false
}

var amountFloor = decimal.NewFromFloat(0.01)

// parseAmount strips currency formatting and accepts values of at least
// one cent. The floor filters out the zeros that placeholder and template
// cells render.
func parseAmount(text string) *decimal.Decimal {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, text)

	d, err := decimal.NewFromString(clean)
	if err != nil || d.LessThan(amountFloor) {
		return nil
	}

	return &d
}

// Containers a transaction form plausibly lives in, tried before falling
// back to a document-wide sweep.
var amountContainers = []string{
	"[data-automation-id*=transaction]",
	"[data-automation-id*=expense]",
	"[data-automation-id*=invoice]",
	".transaction-form",
	".expense-form",
	".invoice-form",
	"form[data-automation-id*=form]",
	"[role=main]",
	".main-content",
}

// Amount selectors in priority order: inputs first, then specific display
// elements, table cells excluded.
var amountSelectors = []string{
	"input[data-automation-id*=amount]",
	"input[name*=amount]",
	"input[data-automation-id*=total]",
	"input[name*=total]",
	".currency-input input",
	"input[type=number]",

	"[data-automation-id*=totalAmount]",
	"[data-automation-id*=lineAmount]",
	"[data-automation-id*=transactionAmount]",
	".amount-field input",
	".total-amount input",

	"[data-automation-id*=total]:not(td)",
	"[data-automation-id*=amount]:not(td)",
	"[data-testid*=amount]:not(td)",
	"span[data-automation-id*=total]",
	".amount-field",
	".total-amount",
}

var amountFallbackSelectors = []string{
	"[data-automation-id*=total]",
	"[data-automation-id*=amount]",
	".amount-field",
	".total-amount",
	"input[name*=amount]",
	"input[type=number]",
}

func firstAmount(sel *goquery.Selection, inputsOnly bool) *decimal.Decimal {
	var found *decimal.Decimal

	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if inputsOnly && goquery.NodeName(s) != "input" {
			return true
		}

		if insideList(s) {
			return true
		}

		if d := parseAmount(elementValue(s)); d != nil {
			found = d
			return false
		}

		return true
	})

	return found
}

func extractAmount(doc *goquery.Document) *decimal.Decimal {
	// Pass 1: scoped to a transaction container.
	for _, container := range amountContainers {
		c := doc.Find(container).First()
		if c.Length() == 0 {
			continue
		}

		for _, sel := range amountSelectors {
			if d := firstAmount(c.Find(sel), false); d != nil {
				return d
			}
		}
	}

	// Pass 2: document-wide, preferring input elements.
	for _, sel := range amountSelectors {
		matches := doc.Find(sel)

		if d := firstAmount(matches, true); d != nil {
			return d
		}

		if d := firstAmount(matches, false); d != nil {
			return d
		}
	}

	// Pass 3: permissive fallback, still excluding list cells.
	for _, sel := range amountFallbackSelectors {
		if d := firstAmount(doc.Find(sel), false); d != nil {
			return d
		}
	}

	return nil
}

var dateSelectors = []string{
	"input[data-automation-id*=date]",
	"input[name*=date]",
	".date-field",
	"[data-automation-id=transaction-date]",
	"td[data-col=date]",
	"[data-testid*=date]",
	"input[type=date]",
	".date-picker input",
	"span[data-automation-id*=date]",
}

func extractDate(doc *goquery.Document) *string {
	for _, sel := range dateSelectors {
		e := doc.Find(sel).First()
		if e.Length() == 0 {
			continue
		}

		text := elementValue(e)
		if text != "" && text != "Date" && text != "Select date" {
			return &text
		}
	}

	return nil
}

// Exact filler values a combo box renders before anything is picked.
var fillerValues = map[string]struct{}{
	"Select...":         {},
	"Choose a customer": {},
	"Choose a vendor":   {},
	"Choose a payee":    {},
	"Invoice":           {},
	"Expense":           {},
	"Bill":              {},
	"Payee":             {},
	"Vendor":            {},
	"Customer":          {},
	"payee":             {},
	"vendor":            {},
	"customer":          {},
}

func isFillerName(text string) bool {
	if len(text) <= 1 {
		return true
	}

	if _, ok := fillerValues[text]; ok {
		return true
	}

	lower := strings.ToLower(text)

	return strings.Contains(lower, "select") ||
		strings.Contains(lower, "choose") ||
		strings.Contains(lower, "label")
}

var invoiceCustomerSelectors = []string{
	"[data-automation-id*=customer]",
	"input[name*=customer]",
	".customer-field",
	"[data-automation-id=nameAddressComboBox] input",
	"[data-testid*=customer]",
	"span[data-automation-id*=customer]",
	"[data-automation-id=customerName]",
	".bill-to input",
	".customer-name input",
	"input[placeholder*=customer]",
	"input[placeholder*=Customer]",
}

var payeeVendorSelectors = []string{
	"input[data-automation-id*=payee]:not([data-automation-id*=payeeLabel])",
	"input[data-automation-id*=vendor]:not([data-automation-id*=vendorLabel])",
	"input[name*=vendor]",
	"input[name*=payee]",
	"input[placeholder*=payee]",
	"input[placeholder*=vendor]",
	"input[placeholder*=Payee]",
	"input[placeholder*=Vendor]",

	"[data-automation-id=nameAddressComboBox] input",
	"[data-automation-id*=payeeComboBox] input",
	"[data-automation-id*=vendorComboBox] input",
	".vendor-field input",
	".payee-field input",
	".vendor-name input",
	".payee-name input",

	"[data-automation-id=vendorName]",
	"[data-automation-id=payeeName]",

	"input[data-testid*=vendor]",
	"input[data-testid*=payee]",

	"span[data-automation-id*=vendor]:not([data-automation-id*=vendorLabel]):not([data-automation-id*=label])",
	"span[data-automation-id*=payee]:not([data-automation-id*=payeeLabel]):not([data-automation-id*=label])",
}

var genericNameSelectors = []string{
	"[data-automation-id*=customer]",
	"[data-automation-id*=vendor]",
	"[data-automation-id*=payee]",
	"input[name*=customer]",
	"input[name*=vendor]",
	".customer-field",
	".vendor-field",
	"[data-automation-id=nameAddressComboBox] input",
	"[data-testid*=customer]",
	"[data-testid*=vendor]",
	"span[data-automation-id*=customer]",
	"span[data-automation-id*=vendor]",
}

// Selectors worth trying for any transaction type.
var commonNameSelectors = []string{
	"td[data-col=name]",
	".name-field input",
	".entity-name",
}

func extractCustomerVendor(doc *goquery.Document, txType note.Type) *string {
	var selectors []string

	switch txType {
	case note.TypeInvoice:
		selectors = invoiceCustomerSelectors
	case note.TypeExpense, note.TypeBill:
		selectors = payeeVendorSelectors
	default:
		selectors = genericNameSelectors
	}

	selectors = append(append([]string{}, selectors...), commonNameSelectors...)

	for _, sel := range selectors {
		e := doc.Find(sel).First()
		if e.Length() == 0 {
			continue
		}

		text := elementValue(e)
		if text != "" && !isFillerName(text) {
			return &text
		}
	}

	return nil
}

var invoiceNumberSelectors = []string{
	"input[data-automation-id*=invoiceNumber]",
	"input[data-automation-id*=invoice_number]",
	"input[name*=invoiceNumber]",
	"input[name*=invoice_number]",
	"[data-automation-id*=invoiceNumber] input",
	".invoice-number input",
	".invoice-field input",
	"span[data-automation-id*=invoiceNumber]",
	".invoice-number",
	"[data-testid*=invoice-number]",
}

var billNumberSelectors = []string{
	"input[data-automation-id*=billNumber]",
	"input[data-automation-id*=bill_number]",
	"input[data-automation-id*=refNumber]",
	"input[data-automation-id*=ref_number]",
	"input[data-automation-id*=referenceNumber]",
	"input[name*=billNumber]",
	"input[name*=bill_number]",
	"input[name*=refNumber]",
	"input[name*=ref_number]",
	"input[name*=referenceNumber]",
	"[data-automation-id*=billNumber] input",
	"[data-automation-id*=refNumber] input",
	"[data-automation-id*=referenceNumber] input",
	".bill-number input",
	".ref-number input",
	".reference-number input",
	"span[data-automation-id*=billNumber]",
	"span[data-automation-id*=refNumber]",
	"span[data-automation-id*=referenceNumber]",
	".bill-number",
	".ref-number",
	".reference-number",
	"[data-testid*=bill-number]",
	"[data-testid*=ref-number]",
	"[data-testid*=reference-number]",
}

var genericNumberSelectors = []string{
	"input[data-automation-id*=number]",
	"input[name*=number]",
	".number-field input",
	".document-number input",
}

// Labels the number field renders when empty.
var numberLabels = map[string]struct{}{
	"Enter number":     {},
	"Number":           {},
	"Invoice Number":   {},
	"Bill Number":      {},
	"Reference Number": {},
	"Ref Number":       {},
	"Ref #":            {},
	"Invoice #":        {},
	"Bill #":           {},
}

func extractInvoiceNumber(doc *goquery.Document, txType note.Type) *string {
	var selectors []string

	switch txType {
	case note.TypeInvoice:
		selectors = invoiceNumberSelectors
	case note.TypeExpense, note.TypeBill:
		selectors = billNumberSelectors
	default:
		selectors = genericNumberSelectors
	}

	for _, sel := range selectors {
		e := doc.Find(sel).First()
		if e.Length() == 0 || insideList(e) {
			continue
		}

		text := elementValue(e)
		if text == "" {
			continue
		}

		if _, label := numberLabels[text]; label {
			continue
		}

		lower := strings.ToLower(text)
		if strings.Contains(lower, "select") ||
			strings.Contains(lower, "choose") ||
			strings.Contains(lower, "label") {
			continue
		}

		return &text
	}

	return nil
}

var createdBySelectors = []string{
	".user-name",
	".current-user",
	"[data-automation-id*=user]",
	".user-badge",
}

func extractCreatedBy(doc *goquery.Document) *string {
	for _, sel := range createdBySelectors {
		e := doc.Find(sel).First()
		if e.Length() == 0 {
			continue
		}

		if text := elementValue(e); text != "" {
			return &text
		}
	}

	return nil
}
