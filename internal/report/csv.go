package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"
)

// csvColumns is the fixed 12-column layout shared with the spreadsheet
// appender.
var csvColumns = []string{
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

// WriteCSV renders the report: header row, one row per note, a blank
// separator, the DAILY SUMMARY block, another separator, and the per-type
// breakdown. Created-at timestamps are formatted in loc.
func WriteCSV(w io.Writer, r *Report, loc *time.Location) error {
	cw := csv.NewWriter(w)

	write := func(fields ...string) {
		cw.Write(pad(fields))
	}

	write(csvColumns...)

	for _, n := range r.Notes {
		write(
			r.Date,
			n.CreatedAt.In(loc).Format(createdAtLayout),
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
		)
	}

	cw.Write([]string{""})
	write("DAILY SUMMARY")
	write("Total Transactions", fmt.Sprintf("%d", r.Summary.TotalNotes))
	write("Total Amount", "$"+r.Summary.TotalAmount.StringFixed(2))
	cw.Write([]string{""})
	write("Transaction Types")

	for _, typ := range sortedTypes(r.Summary.TransactionTypes) {
		write(typ, fmt.Sprintf("%d", r.Summary.TransactionTypes[typ]))
	}

	cw.Flush()

	return cw.Error()
}

// CSVFilename names the download after the report date.
func CSVFilename(date string) string {
	return fmt.Sprintf("qbo-transactions-%s.csv", date)
}

func pad(fields []string) []string {
	if len(fields) >= len(csvColumns) {
		return fields
	}

	padded := make([]string, len(csvColumns))
	copy(padded, fields)

	return padded
}

func sortedTypes(types map[string]int) []string {
	keys := make([]string, 0, len(types))
	for k := range types {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
