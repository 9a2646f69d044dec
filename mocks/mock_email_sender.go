package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetURL string) error {
	args := m.Called(ctx, toEmail, toName, resetURL)
	return args.Error(0)
}

func (m *MockEmailSender) SendDocumentStatusEmail(ctx context.Context, toEmail, toName, documentTitle, status, comments string) error {
	args := m.Called(ctx, toEmail, toName, documentTitle, status, comments)
	return args.Error(0)
}
