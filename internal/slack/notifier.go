// Package slack posts Block Kit messages about freshly created notes to an
// incoming webhook. Delivery is best effort: the intake request never fails
// because Slack did.
package slack

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	slackapi "github.com/slack-go/slack"

	"github.com/mportela/qbnotes/internal/note"
)

type Notifier struct {
	webhookURL string
	client     *http.Client
	loc        *time.Location

	now func() time.Time // stubbed in tests
}

func New(webhookURL string, loc *time.Location) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		loc:        loc,
		now:        time.Now,
	}
}

func (n *Notifier) IsConfigured() bool {
	return n.webhookURL != ""
}

// NotifyNote posts the note to the webhook. Unconfigured webhook is a
// logged no-op.
func (n *Notifier) NotifyNote(ctx context.Context, nt *note.Note) error {
	if !n.IsConfigured() {
		slog.Warn("slack webhook not configured, skipping notification")
		return nil
	}

	msg := n.buildMessage(nt)

	if err := slackapi.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, msg); err != nil {
		return fmt.Errorf("posting slack webhook: %w", err)
	}

	return nil
}

func (n *Notifier) buildMessage(nt *note.Note) *slackapi.WebhookMessage {
	amount := formatUSD(nt.Amount)

	mrkdwn := func(text string) *slackapi.TextBlockObject {
		return slackapi.NewTextBlockObject(slackapi.MarkdownType, text, false, false)
	}

	field := func(label, value string) *slackapi.TextBlockObject {
		if value == "" {
			value = "Not specified"
		}

		return mrkdwn(fmt.Sprintf("*%s:*\n%s", label, value))
	}

	blocks := []slackapi.Block{
		slackapi.NewSectionBlock(
			mrkdwn(fmt.Sprintf("%s *New Transaction Note Added*", typeEmoji(nt.TransactionType))),
			nil, nil,
		),
		slackapi.NewSectionBlock(nil, []*slackapi.TextBlockObject{
			field("Transaction Type", string(nt.TransactionType)),
			field("Amount", amount),
			field(counterpartyLabel(nt.TransactionType), nt.CustomerVendor),
			field("Date", nt.Date),
		}, nil),
		slackapi.NewSectionBlock(nil, []*slackapi.TextBlockObject{
			field(numberLabel(nt.TransactionType), nt.InvoiceNumber),
			field("Created By", orUnknown(nt.CreatedBy)),
		}, nil),
	}

	if nt.TransactionID != "" {
		blocks = append(blocks, slackapi.NewSectionBlock(nil, []*slackapi.TextBlockObject{
			field("Transaction ID", nt.TransactionID),
		}, nil))
	}

	blocks = append(blocks,
		slackapi.NewSectionBlock(mrkdwn(fmt.Sprintf("*Note:*\n_\"%s\"_", nt.Text)), nil, nil),
		slackapi.NewSectionBlock(mrkdwn(fmt.Sprintf("<%s|🔗 View in QuickBooks Online>", nt.TransactionURL)), nil, nil),
		slackapi.NewContextBlock("",
			mrkdwn("📅 Submitted: "+n.now().In(n.loc).Format("Jan 2, 2006, 03:04 PM MST")),
		),
	)

	return &slackapi.WebhookMessage{
		Text:   fmt.Sprintf("New Transaction Note: %s - %s", nt.TransactionType, amount),
		Blocks: &slackapi.Blocks{BlockSet: blocks},
	}
}

func typeEmoji(t note.Type) string {
	switch strings.ToLower(string(t)) {
	case "invoice":
		return "📄"
	case "expense":
		return "💸"
	case "bill":
		return "🧾"
	case "payment":
		return "💳"
	case "journalentry":
		return "📝"
	default:
		return "📋"
	}
}

func counterpartyLabel(t note.Type) string {
	if t == note.TypeInvoice {
		return "Customer"
	}

	return "Vendor/Payee"
}

func numberLabel(t note.Type) string {
	switch strings.ToLower(string(t)) {
	case "invoice":
		return "Invoice Number"
	case "expense", "bill":
		return "Bill/Ref Number"
	default:
		return "Number"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}

	return s
}

// formatUSD renders an amount as $1,234.56.
func formatUSD(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder

	if d.IsNegative() {
		b.WriteByte('-')
	}

	b.WriteByte('$')

	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	b.WriteByte('.')
	b.WriteString(frac)

	return b.String()
}
