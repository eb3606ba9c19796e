// Package email delivers transactional mail for the engine. Only assignment
// notifications exist today.
package email

import (
	"context"

	"homematch_backend/platform/config"
)

// Sender delivers notification emails.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail string, data LeadAssignedData) error
}

// LeadAssignedData is the template payload for the assignment notification.
type LeadAssignedData struct {
	RealtorName string
	BuyerName   string
	City        string
	State       string
	Phone       string
	MatchReason string
}

// NewSender picks the sender implementation from configuration. Without SMTP
// settings email is a no-op so local and test environments never try to dial
// a mail server.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

// NoopSender drops all mail.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(context.Context, string, LeadAssignedData) error {
	return nil
}
