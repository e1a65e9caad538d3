package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
	"strings"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	apiURL   string
}

func New(host string, port int, username, password, from, apiURL string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		apiURL:   apiURL,
	}
}

// SendVerification mails the confirmation link for a freshly issued token.
func (m *Mailer) SendVerification(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/auth/verify?token=%s", m.apiURL, url.QueryEscape(token))

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Verifica tu correo\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, `<div style="font-family:system-ui,Segoe UI,Arial">
  <h2>Confirma tu correo</h2>
  <p>Gracias por registrarte en Figaros. Haz clic para activar tu cuenta:</p>
  <p><a href="%s" style="background:#2563eb;color:#fff;padding:10px 14px;border-radius:8px;text-decoration:none">Verificar mi correo</a></p>
  <p>Si no ves el botón, copia este enlace:<br><code>%s</code></p>
  <p>Caduca en 24 horas.</p>
</div>`, link, link)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send verification mail to %s: %w", to, err)
	}
	return nil
}
