package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"clientportal/internal/domain"
)

// MockDocumentRepo is a mock implementation of port.DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, ownerID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) Save(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, ownerID, docID uuid.UUID) error {
	args := m.Called(ctx, ownerID, docID)
	return args.Error(0)
}

func (m *MockDocumentRepo) DeleteByPath(ctx context.Context, ownerID uuid.UUID, filePath string) (int64, error) {
	args := m.Called(ctx, ownerID, filePath)
	return args.Get(0).(int64), args.Error(1)
}

// MockKYCDocumentRepo is a mock implementation of port.KYCDocumentRepository.
type MockKYCDocumentRepo struct {
	MockDocumentRepo
}

func (m *MockKYCDocumentRepo) GetBySlot(ctx context.Context, ownerID uuid.UUID, slot string) (*domain.Document, error) {
	args := m.Called(ctx, ownerID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockKYCDocumentRepo) UpdateStatus(ctx context.Context, ownerID uuid.UUID, slot string, status domain.DocumentStatus, comments string) (*domain.Document, error) {
	args := m.Called(ctx, ownerID, slot, status, comments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockKYCDocumentRepo) ListPending(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}
