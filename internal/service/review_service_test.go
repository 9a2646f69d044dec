package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/events/memory"
	"clientportal/internal/service"
	"clientportal/mocks"
)

func TestReviewService_UpdateKYCStatus_RejectPushesEventAndEmails(t *testing.T) {
	repo := new(mocks.MockKYCDocumentRepo)
	userRepo := new(mocks.MockUserRepo)
	sender := new(mocks.MockEmailSender)
	broker := memory.NewBroker()
	svc := service.NewReviewService(repo, userRepo, broker, sender, catalog.Default())
	user := testUser()

	sub, err := broker.Subscribe(context.Background(), user.ID)
	require.NoError(t, err)
	defer sub.Close()

	repo.On("GetBySlot", mock.Anything, user.ID, catalog.SlotPassport).
		Return(&domain.Document{DocType: catalog.SlotPassport, Status: domain.StatusPending}, nil)
	repo.On("UpdateStatus", mock.Anything, user.ID, catalog.SlotPassport, domain.StatusRejected, "Expired document").
		Return(&domain.Document{DocType: catalog.SlotPassport, Status: domain.StatusRejected, Comments: "Expired document"}, nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	sender.On("SendDocumentStatusEmail", mock.Anything, user.Email, user.FullName, "Passport", "rejected", "Expired document").Return(nil)

	doc, err := svc.UpdateKYCStatus(context.Background(), user.ID, catalog.SlotPassport,
		service.ReviewInput{Status: domain.StatusRejected, Comments: "Expired document"})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, doc.Status)
	ev := <-sub.Events()
	assert.Equal(t, catalog.SlotPassport, ev.DocType)
	assert.Equal(t, domain.StatusRejected, ev.Status)
	assert.Equal(t, "Expired document", ev.Comments)
	sender.AssertExpectations(t)
}

func TestReviewService_UpdateKYCStatus_ApprovalDropsComments(t *testing.T) {
	repo := new(mocks.MockKYCDocumentRepo)
	userRepo := new(mocks.MockUserRepo)
	sender := new(mocks.MockEmailSender)
	svc := service.NewReviewService(repo, userRepo, memory.NewBroker(), sender, catalog.Default())
	owner := uuid.New()

	repo.On("GetBySlot", mock.Anything, owner, catalog.SlotUtilityBill).
		Return(&domain.Document{DocType: catalog.SlotUtilityBill, Status: domain.StatusPending}, nil)
	repo.On("UpdateStatus", mock.Anything, owner, catalog.SlotUtilityBill, domain.StatusApproved, "").
		Return(&domain.Document{DocType: catalog.SlotUtilityBill, Status: domain.StatusApproved}, nil)
	userRepo.On("GetByID", mock.Anything, owner).Return(nil, errors.New("lookup failed"))

	_, err := svc.UpdateKYCStatus(context.Background(), owner, catalog.SlotUtilityBill,
		service.ReviewInput{Status: domain.StatusApproved, Comments: "looks fine"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
	sender.AssertNotCalled(t, "SendDocumentStatusEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewService_UpdateKYCStatus_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(mocks.MockKYCDocumentRepo)
	userRepo := new(mocks.MockUserRepo)
	sender := new(mocks.MockEmailSender)
	broker := new(mocks.MockStatusBroker)
	svc := service.NewReviewService(repo, userRepo, broker, sender, catalog.Default())
	user := testUser()

	repo.On("GetBySlot", mock.Anything, user.ID, catalog.SlotPassport).
		Return(&domain.Document{Status: domain.StatusPending}, nil)
	repo.On("UpdateStatus", mock.Anything, user.ID, catalog.SlotPassport, domain.StatusApproved, "").
		Return(&domain.Document{Status: domain.StatusApproved}, nil)
	broker.On("Publish", mock.Anything, mock.AnythingOfType("domain.StatusEvent")).Return(errors.New("redis down"))
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	sender.On("SendDocumentStatusEmail", mock.Anything, user.Email, user.FullName, "Passport", "approved", "").Return(errors.New("ses throttled"))

	doc, err := svc.UpdateKYCStatus(context.Background(), user.ID, catalog.SlotPassport, service.ReviewInput{Status: domain.StatusApproved})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, doc.Status)
	broker.AssertExpectations(t)
}

func TestReviewService_UpdateKYCStatus_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		slot    string
		status  domain.DocumentStatus
		current *domain.Document
		lookup  error
		wantErr error
	}{
		{"unknown slot", "birth_certificate", domain.StatusApproved, nil, nil, domain.ErrValidation},
		{"unknown status", catalog.SlotPassport, "archived", nil, nil, domain.ErrValidation},
		{"nothing uploaded", catalog.SlotPassport, domain.StatusApproved, nil, domain.ErrNotFound, domain.ErrNotFound},
		{"already approved", catalog.SlotPassport, domain.StatusRejected,
			&domain.Document{Status: domain.StatusApproved}, nil, domain.ErrInvalidTransition},
		{"rejected cannot be approved", catalog.SlotPassport, domain.StatusApproved,
			&domain.Document{Status: domain.StatusRejected}, nil, domain.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockKYCDocumentRepo)
			svc := service.NewReviewService(repo, new(mocks.MockUserRepo), memory.NewBroker(), new(mocks.MockEmailSender), catalog.Default())
			owner := uuid.New()
			if tt.current != nil || tt.lookup != nil {
				repo.On("GetBySlot", mock.Anything, owner, tt.slot).Return(tt.current, tt.lookup)
			}

			_, err := svc.UpdateKYCStatus(context.Background(), owner, tt.slot, service.ReviewInput{Status: tt.status})

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReviewService_ListPending(t *testing.T) {
	repo := new(mocks.MockKYCDocumentRepo)
	svc := service.NewReviewService(repo, new(mocks.MockUserRepo), memory.NewBroker(), new(mocks.MockEmailSender), catalog.Default())

	repo.On("ListPending", mock.Anything, 0, 20).Return([]domain.Document{
		{DocType: catalog.SlotDrivingLicense, Status: domain.StatusPending},
	}, 1, nil)

	docs, total, err := svc.ListPending(context.Background(), 0, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Driving License", docs[0].CategoryName)
}
