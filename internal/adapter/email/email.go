// Package email provides an SMTP-based notifier for order confirmations
// and offer notices.
package email

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/waveforge/waveforge/internal/config"
	"github.com/waveforge/waveforge/internal/port/notifier"
)

// Notifier sends email via SMTP.
type Notifier struct {
	cfg config.SMTP
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg config.SMTP) *Notifier {
	return &Notifier{cfg: cfg}
}

// SendOrderConfirmation emails the customer their receipt and download link.
func (n *Notifier) SendOrderConfirmation(ctx context.Context, c notifier.OrderConfirmation) error {
	var lines strings.Builder
	for _, it := range c.Items {
		label := html.EscapeString(it.Title)
		if it.LicenseName != "" {
			label += " (" + html.EscapeString(it.LicenseName) + ")"
		}
		fmt.Fprintf(&lines, "<li>%s &ndash; $%.2f</li>\n", label, it.Price)
	}

	var docs strings.Builder
	for _, a := range c.Artifacts {
		if a.URL != "" {
			fmt.Fprintf(&docs, `<p><a href="%s">License agreement</a></p>`+"\n", a.URL)
		}
	}

	body := fmt.Sprintf(`<h2>Thanks for your purchase</h2>
<p>Order <strong>%s</strong></p>
<ul>
%s</ul>
<p><strong>Total:</strong> $%.2f</p>
<p><a href="%s" style="background:#1a1a2e;color:white;padding:8px 16px;text-decoration:none;border-radius:4px;">Download your files</a></p>
<p>The download link stays valid until %s.</p>
%s`,
		c.Order.ID, lines.String(), c.Order.Total, c.DownloadURL,
		c.ExpiresAt.Format("Jan 2, 2006 15:04 MST"), docs.String())

	subject := fmt.Sprintf("Your order %s is ready", c.Order.ID)
	return n.send(ctx, c.Order.CustomerEmail, subject, body)
}

// SendOfferNotice relays a buyer offer to the producer.
func (n *Notifier) SendOfferNotice(ctx context.Context, o notifier.OfferNotice) error {
	from := html.EscapeString(o.Email)
	if o.Name != "" {
		from = html.EscapeString(o.Name) + " &lt;" + from + "&gt;"
	}
	body := fmt.Sprintf(`<h2>New offer on %s</h2>
<p><strong>From:</strong> %s</p>
<p><strong>Offer:</strong> $%.2f</p>
<p>%s</p>`,
		html.EscapeString(o.BeatTitle), from, o.Amount, html.EscapeString(o.Message))

	subject := fmt.Sprintf("Offer received: %s", o.BeatTitle)
	return n.send(ctx, o.To, subject, body)
}

func (n *Notifier) send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		n.cfg.From, to, subject, body)

	var auth smtp.Auth
	if n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Host)
	}

	return smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg))
}
