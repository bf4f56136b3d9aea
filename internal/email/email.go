// email.go

package email

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/resendlabs/resend-go"

	"github.com/dukalabs/duka-server/internal/config"
)

// Mailer sends transactional mail. A nil-API-key configuration yields
// a no-op mailer so local development works without credentials.
type Mailer interface {
	SendOrderReceipt(to string, receipt OrderReceipt) error
}

type OrderReceipt struct {
	OrderID      int
	CustomerName string
	Lines        []ReceiptLine
	TotalCents   int64
	Currency     string
}

type ReceiptLine struct {
	Name       string
	Quantity   int
	PriceCents int64
}

func NewMailer(cfg config.EmailConfig) Mailer {
	if cfg.ResendAPIKey == "" {
		slog.Warn("email disabled, no resend api key configured")
		return noopMailer{}
	}
	return &resendMailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromAddress,
	}
}

type resendMailer struct {
	client *resend.Client
	from   string
}

func (m *resendMailer) SendOrderReceipt(to string, receipt OrderReceipt) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Order #%d confirmed", receipt.OrderID),
		Html:    renderReceipt(receipt),
	}

	if _, err := m.client.Emails.Send(params); err != nil {
		return fmt.Errorf("send receipt email: %w", err)
	}
	return nil
}

func renderReceipt(receipt OrderReceipt) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Thanks for your order, %s!</h2>", receipt.CustomerName)
	fmt.Fprintf(&b, "<p>Order #%d</p><table>", receipt.OrderID)
	for _, line := range receipt.Lines {
		fmt.Fprintf(&b,
			"<tr><td>%s</td><td>x%d</td><td>%s</td></tr>",
			line.Name, line.Quantity,
			formatAmount(line.PriceCents, receipt.Currency),
		)
	}
	fmt.Fprintf(&b,
		"</table><p><strong>Total: %s</strong></p>",
		formatAmount(receipt.TotalCents, receipt.Currency),
	)

	return b.String()
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, cents/100, cents%100)
}

type noopMailer struct{}

func (noopMailer) SendOrderReceipt(string, OrderReceipt) error {
	return nil
}
