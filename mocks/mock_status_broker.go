package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"clientportal/internal/domain"
	"clientportal/internal/port"
)

// MockStatusBroker is a mock implementation of port.StatusBroker.
type MockStatusBroker struct {
	mock.Mock
}

func (m *MockStatusBroker) Publish(ctx context.Context, event domain.StatusEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStatusBroker) Subscribe(ctx context.Context, ownerID uuid.UUID) (port.Subscription, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Subscription), args.Error(1)
}

// MockTokenRevocationList is a mock implementation of port.TokenRevocationList.
type MockTokenRevocationList struct {
	mock.Mock
}

func (m *MockTokenRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

func (m *MockTokenRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}
