package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"clientportal/internal/domain"
	"clientportal/internal/handler"
	"clientportal/internal/service"
	"clientportal/mocks"
)

func TestReviewHandler_ListPending_Paginates(t *testing.T) {
	mockReview := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockReview)

	docs := []domain.Document{{ID: uuid.New(), DocType: "passport", Status: domain.StatusPending}}
	mockReview.On("ListPending", mock.Anything, 10, 5).Return(docs, 11, nil)

	r := newRouter(uuid.New(), http.MethodGet, "/review/kyc-documents", h.ListPending)
	w := serve(r, jsonRequest(t, http.MethodGet, "/review/kyc-documents?offset=10&limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	meta := decode(t, w)["meta"].(map[string]interface{})
	assert.EqualValues(t, 11, meta["total"])
	assert.EqualValues(t, 10, meta["offset"])
	assert.EqualValues(t, 5, meta["limit"])
}

func TestReviewHandler_ListPending_ClampsLimit(t *testing.T) {
	mockReview := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockReview)

	mockReview.On("ListPending", mock.Anything, 0, 20).Return([]domain.Document{}, 0, nil)

	r := newRouter(uuid.New(), http.MethodGet, "/review/kyc-documents", h.ListPending)
	w := serve(r, jsonRequest(t, http.MethodGet, "/review/kyc-documents?offset=-3&limit=500", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	mockReview.AssertExpectations(t)
}

func TestReviewHandler_UpdateStatus(t *testing.T) {
	mockReview := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockReview)
	ownerID := uuid.New()

	input := service.ReviewInput{Status: domain.StatusRejected, Comments: "Blurry scan"}
	mockReview.On("UpdateKYCStatus", mock.Anything, ownerID, "passport", input).Return(&domain.Document{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		DocType:  "passport",
		Status:   domain.StatusRejected,
		Comments: "Blurry scan",
	}, nil)

	r := newRouter(uuid.New(), http.MethodPut, "/review/kyc-documents/:owner_id/:slot", h.UpdateStatus)
	w := serve(r, jsonRequest(t, http.MethodPut, "/review/kyc-documents/"+ownerID.String()+"/passport",
		map[string]string{"status": "rejected", "comments": "Blurry scan"}))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "rejected", data["status"])
	mockReview.AssertExpectations(t)
}

func TestReviewHandler_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	mockReview := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockReview)

	r := newRouter(uuid.New(), http.MethodPut, "/review/kyc-documents/:owner_id/:slot", h.UpdateStatus)
	w := serve(r, jsonRequest(t, http.MethodPut, "/review/kyc-documents/"+uuid.NewString()+"/passport",
		map[string]string{"status": "maybe"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReview.AssertNotCalled(t, "UpdateKYCStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	mockReview := new(mocks.MockReviewService)
	h := handler.NewReviewHandler(mockReview)
	ownerID := uuid.New()

	mockReview.On("UpdateKYCStatus", mock.Anything, ownerID, "passport", mock.Anything).
		Return(nil, domain.ErrInvalidTransition)

	r := newRouter(uuid.New(), http.MethodPut, "/review/kyc-documents/:owner_id/:slot", h.UpdateStatus)
	w := serve(r, jsonRequest(t, http.MethodPut, "/review/kyc-documents/"+ownerID.String()+"/passport",
		map[string]string{"status": "approved"}))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewHandler_UpdateStatus_InvalidOwner(t *testing.T) {
	h := handler.NewReviewHandler(new(mocks.MockReviewService))

	r := newRouter(uuid.New(), http.MethodPut, "/review/kyc-documents/:owner_id/:slot", h.UpdateStatus)
	w := serve(r, jsonRequest(t, http.MethodPut, "/review/kyc-documents/xyz/passport",
		map[string]string{"status": "approved"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
}
