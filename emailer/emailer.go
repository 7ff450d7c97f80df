package emailer

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"roamly/models"
)

// Mailer is what the webhook reconciler and auth flows depend on,
// so tests can swap in a fake.
type Mailer interface {
	Send(to, subject, body string) error
	SendBookingConfirmation(b *models.Booking) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
	bcc  string
}

func NewSMTPMailer() *SMTPMailer {
	m := &SMTPMailer{
		host: os.Getenv("SMTP_HOST"),
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: os.Getenv("EMAIL_FROM"),
		bcc:  os.Getenv("EMAIL_BCC"),
	}
	if m.port == "" {
		m.port = "587"
	}
	if m.from == "" {
		m.from = m.user
	}
	return m
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.host == "" {
		return fmt.Errorf("smtp not configured")
	}

	recipients := []string{to}
	if m.bcc != "" {
		recipients = append(recipients, m.bcc)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", subject)
	msg.WriteString(body)

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, recipients, []byte(msg.String()))
}

func (m *SMTPMailer) SendBookingConfirmation(b *models.Booking) error {
	subject := fmt.Sprintf("Booking confirmed: %s", b.Item.TourName)

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", displayName(b))
	fmt.Fprintf(&body, "Your booking is confirmed.\n\n")
	fmt.Fprintf(&body, "Tour: %s\n", b.Item.TourName)
	if b.Item.Date != "" {
		fmt.Fprintf(&body, "Date: %s\n", b.Item.Date)
	}
	fmt.Fprintf(&body, "Guests: %d\n", b.Item.Quantity)
	fmt.Fprintf(&body, "Amount: %s\n", FormatAmount(b.Amount, b.Currency))
	fmt.Fprintf(&body, "Reference: %s\n\n", b.SessionID)
	body.WriteString("See you there!\n")

	return m.Send(b.Customer.Email, subject, body.String())
}

func displayName(b *models.Booking) string {
	if b.Customer.Name != "" {
		return b.Customer.Name
	}
	return "traveler"
}

// FormatAmount renders a minor-unit amount as "12.50 USD".
func FormatAmount(amount int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, strings.ToUpper(currency))
}
