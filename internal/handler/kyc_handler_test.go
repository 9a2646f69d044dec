package handler_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/events/memory"
	"clientportal/internal/handler"
	"clientportal/internal/service"
	"clientportal/internal/workflow"
	"clientportal/mocks"
)

// stubSubscription replays a fixed list of events, then ends the stream.
type stubSubscription struct {
	ch     chan domain.StatusEvent
	mu     sync.Mutex
	closed int
}

func newStubSubscription(events ...domain.StatusEvent) *stubSubscription {
	ch := make(chan domain.StatusEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return &stubSubscription{ch: ch}
}

func (s *stubSubscription) Events() <-chan domain.StatusEvent { return s.ch }

func (s *stubSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// gaugeValue reads a registered gauge through the default gatherer.
func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("gauge %s not registered", name)
	return 0
}

func stagedTicket(kind workflow.Kind) *workflow.Ticket {
	now := time.Now()
	return &workflow.Ticket{
		ID:        uuid.New(),
		Kind:      kind,
		Summary:   "Upload passport.pdf as Passport",
		State:     workflow.StateAwaitingConfirmation,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}

func TestKYCHandler_Checklist(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	checklist := service.NewKYCChecklist(catalog.Default(), []domain.Document{
		{ID: uuid.New(), OwnerID: userID, DocType: "passport", Status: domain.StatusApproved},
	})
	mockKYC.On("Checklist", mock.Anything, userID).Return(checklist, nil)

	r := newRouter(userID, http.MethodGet, "/kyc-documents", h.Checklist)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	slots := data["slots"].([]interface{})
	assert.Len(t, slots, 4)
	first := slots[0].(map[string]interface{})
	assert.Equal(t, "passport", first["slot"])
	assert.Equal(t, "approved", first["status"])
	progress := data["progress"].(map[string]interface{})
	assert.EqualValues(t, 1, progress["approved"])
	assert.EqualValues(t, 3, progress["required"])
	mockKYC.AssertExpectations(t)
}

func TestKYCHandler_Checklist_NoSession(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)

	r := newRouter(uuid.Nil, http.MethodGet, "/kyc-documents", h.Checklist)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_REQUIRED", errorCode(t, w))
	mockKYC.AssertNotCalled(t, "Checklist", mock.Anything, mock.Anything)
}

func TestKYCHandler_Checklist_ReadFailure(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	mockKYC.On("Checklist", mock.Anything, userID).Return(nil, domain.ErrRowRead)

	r := newRouter(userID, http.MethodGet, "/kyc-documents", h.Checklist)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ROW_READ_FAILED", errorCode(t, w))
}

func TestKYCHandler_Upload_StagesTicket(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()
	content := []byte("%PDF-1.4 passport")
	ticket := stagedTicket(workflow.KindUpload)

	mockKYC.On("StageUpload", mock.Anything, mock.MatchedBy(func(in service.KYCUploadInput) bool {
		return in.OwnerID == userID &&
			in.Slot == "passport" &&
			in.File.FileName == "passport.pdf" &&
			in.File.Size == int64(len(content))
	})).Return(ticket, nil)

	r := newRouter(userID, http.MethodPost, "/kyc-documents/:slot/uploads", h.Upload)
	w := serve(r, multipartRequest(t, "/kyc-documents/passport/uploads", "passport.pdf", content, nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, ticket.ID.String(), data["id"])
	assert.Equal(t, "awaiting_confirmation", data["state"])
	mockKYC.AssertExpectations(t)
}

func TestKYCHandler_Upload_MissingFile(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)

	r := newRouter(uuid.New(), http.MethodPost, "/kyc-documents/:slot/uploads", h.Upload)
	w := serve(r, multipartRequest(t, "/kyc-documents/passport/uploads", "", nil, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", errorCode(t, w))
	mockKYC.AssertNotCalled(t, "StageUpload", mock.Anything, mock.Anything)
}

func TestKYCHandler_Upload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "too large",
			err:        domain.NewFileTooLargeError(5 << 20),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "FILE_TOO_LARGE",
			wantMsg:    "File size exceeds 5MB limit.",
		},
		{
			name: "unsupported type",
			err: &domain.ValidationError{
				Field:   "file",
				Message: "Unsupported file type. Allowed: PDF, JPG, JPEG, PNG.",
				Err:     domain.ErrUnsupportedFileType,
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNSUPPORTED_FILE_TYPE",
			wantMsg:    "Unsupported file type. Allowed: PDF, JPG, JPEG, PNG.",
		},
		{
			name:       "approved slot",
			err:        domain.ErrInvalidTransition,
			wantStatus: http.StatusConflict,
			wantCode:   "INVALID_TRANSITION",
		},
		{
			name:       "in flight",
			err:        domain.ErrSlotBusy,
			wantStatus: http.StatusConflict,
			wantCode:   "SLOT_BUSY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockKYC := new(mocks.MockKYCService)
			h := handler.NewKYCHandler(mockKYC)
			mockKYC.On("StageUpload", mock.Anything, mock.Anything).Return(nil, tt.err)

			r := newRouter(uuid.New(), http.MethodPost, "/kyc-documents/:slot/uploads", h.Upload)
			w := serve(r, multipartRequest(t, "/kyc-documents/passport/uploads", "scan.pdf", []byte("x"), nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, notice(t, w)["message"])
			}
		})
	}
}

func TestKYCHandler_Delete(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	mockKYC.On("StageDelete", mock.Anything, userID, "utility_bill").Return(stagedTicket(workflow.KindDelete), nil)

	r := newRouter(userID, http.MethodDelete, "/kyc-documents/:slot", h.Delete)
	w := serve(r, jsonRequest(t, http.MethodDelete, "/kyc-documents/utility_bill", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	mockKYC.AssertExpectations(t)
}

func TestKYCHandler_Delete_NotFound(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	mockKYC.On("StageDelete", mock.Anything, userID, "passport").Return(nil, domain.ErrNotFound)

	r := newRouter(userID, http.MethodDelete, "/kyc-documents/:slot", h.Delete)
	w := serve(r, jsonRequest(t, http.MethodDelete, "/kyc-documents/passport", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKYCHandler_Events_StreamsStatusChanges(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	checklist := service.NewKYCChecklist(catalog.Default(), []domain.Document{
		{ID: uuid.New(), OwnerID: userID, DocType: "passport", Status: domain.StatusPending},
		{ID: uuid.New(), OwnerID: userID, DocType: "utility_bill", Status: domain.StatusPending},
	})
	sub := newStubSubscription(
		domain.StatusEvent{OwnerID: userID, DocType: "passport", Status: domain.StatusApproved},
		domain.StatusEvent{OwnerID: userID, DocType: "tax_return", Status: domain.StatusApproved},
		domain.StatusEvent{OwnerID: userID, DocType: "utility_bill", Status: domain.StatusRejected},
	)
	mockKYC.On("Checklist", mock.Anything, userID).Return(checklist, nil)
	mockKYC.On("Subscribe", mock.Anything, userID).Return(sub, nil)

	r := newRouter(userID, http.MethodGet, "/kyc-documents/events", h.Events)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents/events", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event:checklist"))
	// the event for an unknown slot is dropped
	assert.Equal(t, 2, strings.Count(body, "event:status"))
	assert.Contains(t, body, "Your Passport has been approved!")
	assert.Contains(t, body, "Your Utility Bill was rejected. Reason: No reason provided. Please upload a new document.")
	assert.Equal(t, 1, sub.closed)
	mockKYC.AssertExpectations(t)
}

func TestKYCHandler_Events_ClosesOnClientDisconnect(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	open := &stubSubscription{ch: make(chan domain.StatusEvent)}
	mockKYC.On("Checklist", mock.Anything, userID).Return(service.NewKYCChecklist(catalog.Default(), nil), nil)
	mockKYC.On("Subscribe", mock.Anything, userID).Return(open, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := jsonRequest(t, http.MethodGet, "/kyc-documents/events", nil).WithContext(ctx)
	r := newRouter(userID, http.MethodGet, "/kyc-documents/events", h.Events)

	done := make(chan struct{})
	go func() {
		defer close(done)
		serve(r, req)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after the client went away")
	}
	open.mu.Lock()
	defer open.mu.Unlock()
	assert.Equal(t, 1, open.closed)
}

func TestKYCHandler_Events_SubscribeFailure(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	mockKYC.On("Checklist", mock.Anything, userID).Return(service.NewKYCChecklist(catalog.Default(), nil), nil)
	mockKYC.On("Subscribe", mock.Anything, userID).Return(nil, errors.New("redis down"))

	r := newRouter(userID, http.MethodGet, "/kyc-documents/events", h.Events)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents/events", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
}

func TestKYCHandler_Events_StatusPublishedDuringSnapshotIsStreamed(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()
	broker := memory.NewBroker()

	sub, err := broker.Subscribe(context.Background(), userID)
	require.NoError(t, err)
	checklist := service.NewKYCChecklist(catalog.Default(), []domain.Document{
		{ID: uuid.New(), OwnerID: userID, DocType: "passport", Status: domain.StatusPending},
	})
	mockKYC.On("Subscribe", mock.Anything, userID).Return(sub, nil)
	// a reviewer approves the passport right after the snapshot was read
	mockKYC.On("Checklist", mock.Anything, userID).Return(checklist, nil).Run(func(mock.Arguments) {
		require.NoError(t, broker.Publish(context.Background(), domain.StatusEvent{OwnerID: userID, DocType: "passport", Status: domain.StatusApproved}))
		_ = sub.Close()
	})

	r := newRouter(userID, http.MethodGet, "/kyc-documents/events", h.Events)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents/events", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event:checklist"))
	assert.Equal(t, 1, strings.Count(body, "event:status"))
	assert.Contains(t, body, "Your Passport has been approved!")
	mockKYC.AssertExpectations(t)
}

func TestKYCHandler_Events_ChecklistFailureClosesSubscription(t *testing.T) {
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()

	open := &stubSubscription{ch: make(chan domain.StatusEvent)}
	mockKYC.On("Subscribe", mock.Anything, userID).Return(open, nil)
	mockKYC.On("Checklist", mock.Anything, userID).Return(nil, errors.New("db down"))

	r := newRouter(userID, http.MethodGet, "/kyc-documents/events", h.Events)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents/events", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, open.closed)
}

func TestKYCHandler_Events_CountsOneSubscriptionPerStream(t *testing.T) {
	const gauge = "portal_status_subscriptions_active"
	mockKYC := new(mocks.MockKYCService)
	h := handler.NewKYCHandler(mockKYC)
	userID := uuid.New()
	broker := memory.NewBroker()

	before := gaugeValue(t, gauge)
	sub, err := broker.Subscribe(context.Background(), userID)
	require.NoError(t, err)

	var during float64
	mockKYC.On("Subscribe", mock.Anything, userID).Return(sub, nil)
	mockKYC.On("Checklist", mock.Anything, userID).Return(service.NewKYCChecklist(catalog.Default(), nil), nil).Run(func(mock.Arguments) {
		during = gaugeValue(t, gauge)
		_ = sub.Close()
	})

	r := newRouter(userID, http.MethodGet, "/kyc-documents/events", h.Events)
	w := serve(r, jsonRequest(t, http.MethodGet, "/kyc-documents/events", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, during)
	assert.Equal(t, before, gaugeValue(t, gauge))
}
