package infra

import (
	"fmt"
	"net/smtp"

	"github.com/H-Riv/mundo-cartas/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends store mail: boletas to customers and the low-stock digest to
// the administrator.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     fmt.Sprintf("Mundo Cartas <%s>", cfg.SMTPUser),
	}
}

// Send delivers a plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	return m.send(to, subject, body, "")
}

// SendComprobante delivers the purchase receipt with the boleta PDF attached.
func (m *Mailer) SendComprobante(to, subject, body, pdfPath string) error {
	return m.send(to, subject, body, pdfPath)
}

func (m *Mailer) send(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: adjuntando boleta: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
