package noop

import (
	"context"
	"log"

	"clientportal/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs messages to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendPasswordResetEmail(_ context.Context, toEmail, toName, resetURL string) error {
	log.Printf("[NOOP EMAIL] Password reset for %s (%s): %s", toName, toEmail, resetURL)
	return nil
}

func (s *noopSender) SendDocumentStatusEmail(_ context.Context, toEmail, toName, documentTitle, status, comments string) error {
	log.Printf("[NOOP EMAIL] %s is now %s for %s (%s) %s", documentTitle, status, toName, toEmail, comments)
	return nil
}
