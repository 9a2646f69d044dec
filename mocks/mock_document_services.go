package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/port"
	"clientportal/internal/service"
	"clientportal/internal/workflow"
)

// MockKYCService is a mock implementation of service.KYCService.
type MockKYCService struct {
	mock.Mock
}

func (m *MockKYCService) Checklist(ctx context.Context, ownerID uuid.UUID) (*service.KYCChecklist, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.KYCChecklist), args.Error(1)
}

func (m *MockKYCService) StageUpload(ctx context.Context, input service.KYCUploadInput) (*workflow.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ticket), args.Error(1)
}

func (m *MockKYCService) StageDelete(ctx context.Context, ownerID uuid.UUID, slot string) (*workflow.Ticket, error) {
	args := m.Called(ctx, ownerID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ticket), args.Error(1)
}

func (m *MockKYCService) Subscribe(ctx context.Context, ownerID uuid.UUID) (port.Subscription, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Subscription), args.Error(1)
}

// MockFinancialService is a mock implementation of service.FinancialService.
type MockFinancialService struct {
	mock.Mock
}

func (m *MockFinancialService) List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockFinancialService) Categories() []catalog.CategoryInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]catalog.CategoryInfo)
}

func (m *MockFinancialService) Years() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockFinancialService) StageUpload(ctx context.Context, input service.FinancialUploadInput) (*workflow.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ticket), args.Error(1)
}

func (m *MockFinancialService) StageDelete(ctx context.Context, input service.FinancialDeleteInput) (*workflow.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ticket), args.Error(1)
}

// MockTicketService is a mock implementation of service.TicketService.
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Confirm(ctx context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error) {
	args := m.Called(ctx, ownerID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ticket), args.Error(1)
}

func (m *MockTicketService) Cancel(ctx context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error) {
	args := m.Called(ctx, ownerID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ticket), args.Error(1)
}

func (m *MockTicketService) Get(ctx context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error) {
	args := m.Called(ctx, ownerID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ticket), args.Error(1)
}

// MockReviewService is a mock implementation of service.ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListPending(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockReviewService) UpdateKYCStatus(ctx context.Context, ownerID uuid.UUID, slot string, input service.ReviewInput) (*domain.Document, error) {
	args := m.Called(ctx, ownerID, slot, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
