package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"clientportal/internal/domain"
)

// MockProfileRepo is a mock implementation of port.ProfileRepository.
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockProfileRepo) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockFinancialDataRepo is a mock implementation of port.FinancialDataRepository.
type MockFinancialDataRepo struct {
	mock.Mock
}

func (m *MockFinancialDataRepo) GetByClient(ctx context.Context, clientID uuid.UUID) (*domain.FinancialMetrics, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialMetrics), args.Error(1)
}

func (m *MockFinancialDataRepo) Upsert(ctx context.Context, metrics *domain.FinancialMetrics) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) ListVisible(ctx context.Context, clientEmail string) ([]domain.Invoice, error) {
	args := m.Called(ctx, clientEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}
