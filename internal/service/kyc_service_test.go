package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/port"
	"clientportal/internal/service"
	"clientportal/internal/workflow"
	"clientportal/mocks"
)

const maxKYCBytes = 5 << 20

type kycFixture struct {
	repo    *mocks.MockKYCDocumentRepo
	storage *mocks.MockObjectStorage
	gate    *workflow.Gate
	svc     service.KYCService
	tickets service.TicketService
}

func newKYCFixture() *kycFixture {
	f := &kycFixture{
		repo:    new(mocks.MockKYCDocumentRepo),
		storage: new(mocks.MockObjectStorage),
		gate:    workflow.NewGate(time.Minute),
	}
	adapter := newAdapter(domain.DomainKYC, f.repo, f.storage)
	f.svc = service.NewKYCService(adapter, f.repo, f.gate, catalog.Default(), maxKYCBytes)
	f.tickets = service.NewTicketService(f.gate)
	return f
}

func (f *kycFixture) expectInsert(owner uuid.UUID, slot string) {
	f.repo.On("List", mock.Anything, owner, domain.DocumentFilter{DocType: slot}).Return(nil, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Document")).Run(func(args mock.Arguments) {
		doc := args.Get(1).(*domain.Document)
		doc.ID = uuid.New()
		doc.Status = domain.StatusPending
	}).Return(nil)
	f.storage.On("Exists", mock.Anything, kycBucket, mock.Anything).Return(true, nil)
	f.storage.On("GetPresignedURL", mock.Anything, kycBucket, mock.Anything, int64(3600)).Return("https://signed/doc", nil)
}

func TestKYCService_StageUpload_ExactLimitAccepted(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()
	body := bytes.Repeat([]byte{0x25}, maxKYCBytes)

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotPassport).Return(nil, domain.ErrNotFound)
	f.expectInsert(owner, catalog.SlotPassport)

	ticket, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{
		OwnerID: owner,
		Slot:    catalog.SlotPassport,
		File:    service.UploadFile{FileName: "passport.pdf", Size: int64(len(body)), Body: bytes.NewReader(body)},
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateAwaitingConfirmation, ticket.State)
	assert.Equal(t, workflow.KindUpload, ticket.Kind)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)

	done, err := f.tickets.Confirm(context.Background(), owner, ticket.ID)

	require.NoError(t, err)
	assert.Equal(t, workflow.StateSuccess, done.State)
	result, ok := done.Result.(*service.ActionResult)
	require.True(t, ok)
	assert.Equal(t, "Passport uploaded successfully! Awaiting verification.", result.Message)
	assert.Equal(t, int64(maxKYCBytes), result.Document.FileSize)
	assert.Equal(t, domain.StatusPending, result.Slot.Status)
	f.storage.AssertCalled(t, "Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.ContentType == "application/pdf" && in.Size == maxKYCBytes
	}))
}

func TestKYCService_StageUpload_OneByteOverLimit(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()
	body := bytes.Repeat([]byte{0x25}, maxKYCBytes+1)

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotUtilityBill).Return(nil, domain.ErrNotFound)

	_, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{
		OwnerID: owner,
		Slot:    catalog.SlotUtilityBill,
		File:    service.UploadFile{FileName: "bill.png", Size: int64(len(body)), Body: bytes.NewReader(body)},
	})

	require.ErrorIs(t, err, domain.ErrFileTooLarge)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "File size exceeds 5MB limit.", ve.Message)
}

func TestKYCService_StageUpload_UnderreportedSizeStillChecked(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()
	body := bytes.Repeat([]byte{0x25}, maxKYCBytes+10)

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotPassport).Return(nil, domain.ErrNotFound)

	_, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{
		OwnerID: owner,
		Slot:    catalog.SlotPassport,
		File:    service.UploadFile{FileName: "p.jpg", Size: 10, Body: bytes.NewReader(body)},
	})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestKYCService_StageUpload_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		slot    string
		file    service.UploadFile
		wantErr error
	}{
		{"unknown slot", "birth_certificate", service.UploadFile{FileName: "a.pdf", Size: 1, Body: bytes.NewReader([]byte("a"))}, domain.ErrValidation},
		{"unsupported type", catalog.SlotPassport, service.UploadFile{FileName: "a.docx", Size: 1, Body: bytes.NewReader([]byte("a"))}, domain.ErrUnsupportedFileType},
		{"no file", catalog.SlotPassport, service.UploadFile{}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newKYCFixture()
			owner := uuid.New()
			f.repo.On("GetBySlot", mock.Anything, owner, mock.Anything).Return(nil, domain.ErrNotFound)

			_, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{OwnerID: owner, Slot: tt.slot, File: tt.file})

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestKYCService_StageUpload_ApprovedSlotIsLocked(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotPassport).
		Return(&domain.Document{ID: uuid.New(), DocType: catalog.SlotPassport, Status: domain.StatusApproved}, nil)

	_, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{
		OwnerID: owner,
		Slot:    catalog.SlotPassport,
		File:    service.UploadFile{FileName: "p.pdf", Size: 1, Body: bytes.NewReader([]byte("a"))},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestKYCService_StageUpload_ReviewedBeforeConfirm(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotAddressProof).Return(nil, domain.ErrNotFound).Once()
	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotAddressProof).
		Return(&domain.Document{DocType: catalog.SlotAddressProof, Status: domain.StatusApproved}, nil).Once()

	ticket, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{
		OwnerID: owner,
		Slot:    catalog.SlotAddressProof,
		File:    service.UploadFile{FileName: "lease.pdf", Size: 1, Body: bytes.NewReader([]byte("a"))},
	})
	require.NoError(t, err)

	done, err := f.tickets.Confirm(context.Background(), owner, ticket.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.NotNil(t, done)
	assert.Equal(t, workflow.StateFailed, done.State)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestKYCService_Cancel_LeavesStorageUntouched(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotPassport).Return(nil, domain.ErrNotFound)

	ticket, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{
		OwnerID: owner,
		Slot:    catalog.SlotPassport,
		File:    service.UploadFile{FileName: "p.pdf", Size: 1, Body: bytes.NewReader([]byte("a"))},
	})
	require.NoError(t, err)

	cancelled, err := f.tickets.Cancel(context.Background(), owner, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StateIdle, cancelled.State)

	_, err = f.tickets.Confirm(context.Background(), owner, ticket.ID)
	assert.Error(t, err)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestKYCService_Confirm_OtherOwnerCannotSeeTicket(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotPassport).Return(nil, domain.ErrNotFound)

	ticket, err := f.svc.StageUpload(context.Background(), service.KYCUploadInput{
		OwnerID: owner,
		Slot:    catalog.SlotPassport,
		File:    service.UploadFile{FileName: "p.pdf", Size: 1, Body: bytes.NewReader([]byte("a"))},
	})
	require.NoError(t, err)

	done, err := f.tickets.Confirm(context.Background(), uuid.New(), ticket.ID)

	assert.Nil(t, done)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKYCService_StageDelete(t *testing.T) {
	f := newKYCFixture()
	owner, id := uuid.New(), uuid.New()
	key := owner.String() + "/driving_license/dl.png"

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotDrivingLicense).
		Return(&domain.Document{ID: id, OwnerID: owner, DocType: catalog.SlotDrivingLicense, FilePath: key, Status: domain.StatusRejected}, nil)
	f.repo.On("GetByID", mock.Anything, owner, id).
		Return(&domain.Document{ID: id, OwnerID: owner, DocType: catalog.SlotDrivingLicense, FilePath: key}, nil)
	f.storage.On("Exists", mock.Anything, kycBucket, key).Return(true, nil)
	f.storage.On("Delete", mock.Anything, kycBucket, key).Return(nil)
	f.repo.On("Delete", mock.Anything, owner, id).Return(nil)

	ticket, err := f.svc.StageDelete(context.Background(), owner, catalog.SlotDrivingLicense)
	require.NoError(t, err)
	assert.Equal(t, workflow.KindDelete, ticket.Kind)

	done, err := f.tickets.Confirm(context.Background(), owner, ticket.ID)

	require.NoError(t, err)
	result := done.Result.(*service.ActionResult)
	assert.Equal(t, "Document deleted successfully!", result.Message)
	assert.Equal(t, domain.StatusRequired, result.Slot.Status)
	assert.Equal(t, service.StrategyID, result.Delete.Strategy)
}

func TestKYCService_StageDelete_EmptySlot(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()

	f.repo.On("GetBySlot", mock.Anything, owner, catalog.SlotPassport).Return(nil, domain.ErrNotFound)

	_, err := f.svc.StageDelete(context.Background(), owner, catalog.SlotPassport)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKYCService_Checklist(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()
	key := owner.String() + "/passport/p.pdf"

	f.repo.On("List", mock.Anything, owner, domain.DocumentFilter{}).Return([]domain.Document{
		{ID: uuid.New(), OwnerID: owner, DocType: catalog.SlotPassport, FilePath: key, FileName: "p.pdf", Status: domain.StatusApproved},
	}, nil)
	f.storage.On("Exists", mock.Anything, kycBucket, key).Return(true, nil)
	f.storage.On("GetPresignedURL", mock.Anything, kycBucket, key, int64(3600)).Return("https://signed/p", nil)

	cl, err := f.svc.Checklist(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, cl.Slots, 4)
	assert.Equal(t, catalog.SlotPassport, cl.Slots[0].Slot)
	assert.Equal(t, domain.StatusApproved, cl.Slots[0].Status)
	require.NotNil(t, cl.Slots[0].Document)
	assert.Equal(t, domain.StatusRequired, cl.Slots[1].Status)
	assert.Nil(t, cl.Slots[1].Document)
	assert.Equal(t, service.KYCProgress{Total: 4, Approved: 1, Required: 3}, cl.Progress())
}

func TestKYCService_Checklist_RowError(t *testing.T) {
	f := newKYCFixture()
	owner := uuid.New()

	f.repo.On("List", mock.Anything, owner, domain.DocumentFilter{}).Return(nil, errors.New("boom"))

	_, err := f.svc.Checklist(context.Background(), owner)

	assert.ErrorIs(t, err, domain.ErrRowRead)
}

func TestKYCChecklist_Apply(t *testing.T) {
	cl := service.NewKYCChecklist(catalog.Default(), []domain.Document{
		{ID: uuid.New(), DocType: catalog.SlotUtilityBill, Status: domain.StatusPending},
	})
	ev := domain.StatusEvent{DocType: catalog.SlotUtilityBill, Status: domain.StatusRejected, Comments: "Blurry"}

	first, ok := cl.Apply(ev)
	require.True(t, ok)
	second, ok := cl.Apply(ev)
	require.True(t, ok)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, domain.StatusRejected, second.Status)
	assert.Equal(t, "Blurry", second.Comments)
	assert.Equal(t, domain.StatusRejected, second.Document.Status)
	assert.Equal(t, 1, cl.Progress().Rejected)

	_, ok = cl.Apply(domain.StatusEvent{DocType: "birth_certificate", Status: domain.StatusApproved})
	assert.False(t, ok)
}

func TestKYCChecklist_NewestRowWins(t *testing.T) {
	newest := domain.Document{ID: uuid.New(), DocType: catalog.SlotPassport, Status: domain.StatusPending}
	older := domain.Document{ID: uuid.New(), DocType: catalog.SlotPassport, Status: domain.StatusRejected}

	cl := service.NewKYCChecklist(catalog.Default(), []domain.Document{newest, older})

	assert.Equal(t, domain.StatusPending, cl.Slots[0].Status)
	assert.Equal(t, newest.ID, cl.Slots[0].Document.ID)
}

func TestStatusNotice(t *testing.T) {
	tests := []struct {
		name      string
		status    domain.DocumentStatus
		comments  string
		wantLevel domain.NoticeLevel
		wantMsg   string
		wantOK    bool
	}{
		{"approved", domain.StatusApproved, "", domain.NoticeSuccess, "Your Passport has been approved!", true},
		{"rejected with reason", domain.StatusRejected, "Expired document",
			domain.NoticeError, "Your Passport was rejected. Reason: Expired document. Please upload a new document.", true},
		{"rejected without reason", domain.StatusRejected, "",
			domain.NoticeError, "Your Passport was rejected. Reason: No reason provided. Please upload a new document.", true},
		{"pending", domain.StatusPending, "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, msg, ok := service.StatusNotice("Passport", tt.status, tt.comments)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
