package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jmcamacho/auth-portal/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending alert emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether alerting is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.AlertEmail != "" && s.cfg.SenderEmail != ""
}

// SendErrorAlert notifies operators of an ERROR-state transaction
// event. The message has already been sanitized by the logger.
func (s *Sender) SendErrorAlert(transactionID, component, operation, message string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.AlertEmail}
	e.Subject = fmt.Sprintf("Transaction error: %s.%s", component, operation)

	body := fmt.Sprintf(
		"Transaction %s failed.\n\n"+
			"Component: %s\n"+
			"Operation: %s\n"+
			"Time: %s\n"+
			"Details: %s\n",
		transactionID, component, operation,
		time.Now().Format("2006-01-02 15:04:05"), message,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send alert email for %s: %v", transactionID, err)
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	s.logger.Infof("Alert email sent for transaction %s", transactionID)
	return nil
}
