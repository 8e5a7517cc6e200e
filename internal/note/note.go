package note

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type describes the kind of accounting document a note is attached to.
// The set is open ended: the value comes from URL classification on the
// client side and unknown kinds are stored as-is.
type Type string

const (
	TypeInvoice      Type = "Invoice"
	TypeBill         Type = "Bill"
	TypeExpense      Type = "Expense"
	TypeJournalEntry Type = "JournalEntry"
	TypePayment      Type = "Payment"
	TypeBankDeposit  Type = "Bank Deposit"
	TypeUnknown      Type = "Unknown"
)

// Status is the lifecycle state of a note. Notes are created Open and are
// never updated or deleted through this service.
type Status string

const StatusOpen Status = "Open"

// Note is a free-text annotation attached to a transaction in the
// accounting application. IDs are server issued: a UUID when the record
// lives in Postgres, a "file-" prefixed id when it lives in the JSONL
// fallback store.
type Note struct {
	ID              string
	TransactionURL  string
	TransactionID   string
	TransactionType Type
	Date            string // free text as scraped, not validated
	Amount          decimal.Decimal
	CustomerVendor  string
	InvoiceNumber   string
	Text            string
	CreatedBy       string
	Status          Status
	CreatedAt       time.Time // UTC, server assigned
}
