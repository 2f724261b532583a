package mailer

import (
	"fmt"

	"github.com/pkg/errors"
	gomail "gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP (Gmail app-password setup).
type Mailer struct {
	host     string
	port     int
	username string
	password string
}

func New(host string, port int, username, password string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password}
}

func (m *Mailer) configured() bool {
	return m.username != "" && m.password != ""
}

// SendReceipt mails the receipt PDF as an attachment.
func (m *Mailer) SendReceipt(toEmail string, orderID int, pdfPath string) error {
	if !m.configured() {
		return errors.New("mailer not configured: missing GMAIL_USER or GMAIL_APP_PASSWORD")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.username, "Supermarket Receipts")
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Your Supermarket Receipt (Order #%d)", orderID))
	msg.SetBody("text/plain", "Thank you for your order! Attached is your receipt.")
	msg.Attach(pdfPath, gomail.Rename(fmt.Sprintf("receipt-%d.pdf", orderID)))

	return gomail.NewDialer(m.host, m.port, m.username, m.password).DialAndSend(msg)
}

// SendRefundApproved notifies the customer that their refund went through.
func (m *Mailer) SendRefundApproved(toEmail, username string, orderID, refundRequestID int) error {
	if toEmail == "" {
		return nil
	}
	if !m.configured() {
		return errors.New("mailer not configured: missing GMAIL_USER or GMAIL_APP_PASSWORD")
	}
	if username == "" {
		username = "Customer"
	}

	body := fmt.Sprintf("Hi %s,\n\n"+
		"Your refund request (Request #%d) has been approved for Order #%d.\n"+
		"The refund will be processed within 3 working days.\n\n"+
		"Thank you,\nSupermarket Support", username, refundRequestID, orderID)

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.username, "Supermarket Support")
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Refund approved (Order #%d)", orderID))
	msg.SetBody("text/plain", body)

	return gomail.NewDialer(m.host, m.port, m.username, m.password).DialAndSend(msg)
}
