// Package notify sends email alerts when research turns up changes on a
// tracked case.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"

	"github.com/vrsandeep/casetrack-go/internal/config"
	"github.com/vrsandeep/casetrack-go/internal/models"
)

var alertTemplate = template.Must(template.New("alert").Parse(`<html>
<body style="font-family: sans-serif;">
<h2>Case Update: {{.Case.CaseName}}</h2>
<p>The following changes were detected:</p>
<ul>
{{range .Changes}}<li>{{.}}</li>
{{end}}</ul>
<table cellpadding="4">
<tr><td><b>Status</b></td><td>{{.Verdict.CaseStatus}}</td></tr>
<tr><td><b>Next hearing</b></td><td>{{.Verdict.NextHearingDate}}</td></tr>
<tr><td><b>Last hearing</b></td><td>{{.Verdict.LastHearingDate}}</td></tr>
<tr><td><b>Confidence</b></td><td>{{.Verdict.Confidence}}</td></tr>
</table>
{{if .Verdict.RequiresManualReview}}<p><b>This result requires manual review.</b></p>{{end}}
<p>{{.Verdict.Notes}}</p>
</body>
</html>`))

type alertData struct {
	Case    *models.Case
	Changes []string
	Verdict models.Verdict
}

// sendFunc matches smtp.SendMail; swapped out in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers case alerts over SMTP. A Mailer with incomplete
// configuration logs and drops alerts instead of failing research jobs.
type Mailer struct {
	cfg  config.EmailConfig
	send sendFunc
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// Configured reports whether the mailer has everything it needs to
// actually deliver mail.
func (m *Mailer) Configured() bool {
	return m.cfg.SMTPHost != "" && m.cfg.Sender != "" && m.cfg.Password != "" && m.cfg.Recipient != ""
}

// SendCaseAlert emails the recipient about detected changes on a case.
func (m *Mailer) SendCaseAlert(c *models.Case, changes []string, v models.Verdict) error {
	if !m.Configured() {
		log.Printf("Email not configured; skipping alert for case %d (%s)", c.ID, c.CaseName)
		return nil
	}

	body, err := renderAlert(c, changes, v)
	if err != nil {
		return fmt.Errorf("could not render alert: %w", err)
	}

	subject := fmt.Sprintf("Case Update: %s", c.CaseName)
	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(&msg, "To: %s\r\n", m.cfg.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.SMTPHost)
	if err := m.send(addr, auth, m.cfg.Sender, []string{m.cfg.Recipient}, msg.Bytes()); err != nil {
		return fmt.Errorf("could not send alert: %w", err)
	}
	log.Printf("Alert sent for case %d (%s)", c.ID, c.CaseName)
	return nil
}

func renderAlert(c *models.Case, changes []string, v models.Verdict) ([]byte, error) {
	var buf bytes.Buffer
	err := alertTemplate.Execute(&buf, alertData{Case: c, Changes: changes, Verdict: v})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
