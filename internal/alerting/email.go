package alerting

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/samlafell/mlbcore/pkg/models"
)

// EmailSink sends an alert as a plain-text email via SMTP. No example repo
// in the corpus sends email, so this is built on net/smtp directly rather
// than on a teacher pattern; justified in DESIGN.md as a stdlib exception.
type EmailSink struct {
	smtpHost string
	fromAddr string
	toAddr   string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSink builds an EmailSink relaying through smtpHost, which is used
// verbatim as the host:port address, unauthenticated (an internal relay, the
// common case for server-to-operator alerting).
func NewEmailSink(smtpHost, fromAddr, toAddr string) *EmailSink {
	return &EmailSink{smtpHost: smtpHost, fromAddr: fromAddr, toAddr: toAddr, sendMail: smtp.SendMail}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(ctx context.Context, alert models.Alert) error {
	subject := fmt.Sprintf("[%s] %s: %s", alert.Severity, alert.AlertType, alert.Collector)
	body := fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n\ncorrelation_id: %s\n",
		s.toAddr, subject, alert.Message, alert.CorrelationID)

	addr := s.smtpHost
	if err := s.sendMail(addr, nil, s.fromAddr, []string{s.toAddr}, []byte(body)); err != nil {
		return fmt.Errorf("alerting: send email: %w", err)
	}
	return nil
}
