package port

import "context"

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetURL string) error
	SendDocumentStatusEmail(ctx context.Context, toEmail, toName, documentTitle, status, comments string) error
}
