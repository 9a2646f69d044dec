package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/handler"
	"clientportal/internal/service"
	"clientportal/internal/workflow"
	"clientportal/mocks"
)

func TestFinancialHandler_List_PassesFilter(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)
	userID := uuid.New()

	url := "https://storage.example.com/signed"
	docs := []domain.Document{{
		ID:        uuid.New(),
		OwnerID:   userID,
		DocType:   "Balance Sheet",
		Year:      "2024",
		Category:  "financial_statements",
		Status:    domain.StatusPending,
		SignedURL: &url,
	}}
	mockFin.On("List", mock.Anything, userID, domain.DocumentFilter{
		Year:     "2024",
		Category: "financial_statements",
		DocType:  "Balance Sheet",
	}).Return(docs, nil)

	r := newRouter(userID, http.MethodGet, "/financial-documents", h.List)
	w := serve(r, jsonRequest(t, http.MethodGet,
		"/financial-documents?year=2024&category=financial_statements&type=Balance+Sheet", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	assert.Len(t, data, 1)
	mockFin.AssertExpectations(t)
}

func TestFinancialHandler_List_UnknownCategory(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)
	userID := uuid.New()

	mockFin.On("List", mock.Anything, userID, domain.DocumentFilter{Category: "bogus"}).
		Return(nil, domain.NewValidationError("category", `unknown category "bogus"`))

	r := newRouter(userID, http.MethodGet, "/financial-documents", h.List)
	w := serve(r, jsonRequest(t, http.MethodGet, "/financial-documents?category=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	assert.Equal(t, `unknown category "bogus"`, notice(t, w)["message"])
}

func TestFinancialHandler_Categories(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)

	mockFin.On("Categories").Return(catalog.Default().Categories())
	mockFin.On("Years").Return([]string{"2025", "2024"})

	r := newRouter(uuid.New(), http.MethodGet, "/financial-documents/categories", h.Categories)
	w := serve(r, jsonRequest(t, http.MethodGet, "/financial-documents/categories", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["categories"], len(catalog.Default().Categories()))
	assert.Equal(t, []interface{}{"2025", "2024"}, data["years"])
}

func TestFinancialHandler_Upload_ReadsFormFields(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)
	userID := uuid.New()

	mockFin.On("StageUpload", mock.Anything, mock.MatchedBy(func(in service.FinancialUploadInput) bool {
		return in.OwnerID == userID &&
			in.Year == "2024" &&
			in.Category == "tax_compliance" &&
			in.DocType == "GST Return" &&
			in.File.FileName == "gst.pdf"
	})).Return(stagedTicket(workflow.KindUpload), nil)

	r := newRouter(userID, http.MethodPost, "/financial-documents/uploads", h.Upload)
	w := serve(r, multipartRequest(t, "/financial-documents/uploads", "gst.pdf", []byte("%PDF"), map[string]string{
		"year":     "2024",
		"category": "tax_compliance",
		"doc_type": "GST Return",
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	mockFin.AssertExpectations(t)
}

func TestFinancialHandler_Upload_MissingFile(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)

	r := newRouter(uuid.New(), http.MethodPost, "/financial-documents/uploads", h.Upload)
	w := serve(r, multipartRequest(t, "/financial-documents/uploads", "", nil, map[string]string{"year": "2024"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockFin.AssertNotCalled(t, "StageUpload", mock.Anything, mock.Anything)
}

func TestFinancialHandler_Delete_WithFilePath(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)
	userID := uuid.New()
	docID := uuid.New()
	path := userID.String() + "/2024/accounts/ledger.pdf"

	mockFin.On("StageDelete", mock.Anything, service.FinancialDeleteInput{
		OwnerID:  userID,
		DocID:    docID,
		FilePath: path,
	}).Return(stagedTicket(workflow.KindDelete), nil)

	r := newRouter(userID, http.MethodDelete, "/financial-documents/:id", h.Delete)
	w := serve(r, jsonRequest(t, http.MethodDelete, "/financial-documents/"+docID.String()+"?file_path="+path, nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	mockFin.AssertExpectations(t)
}

func TestFinancialHandler_Delete_InvalidID(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)

	r := newRouter(uuid.New(), http.MethodDelete, "/financial-documents/:id", h.Delete)
	w := serve(r, jsonRequest(t, http.MethodDelete, "/financial-documents/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
}

func TestFinancialHandler_Export(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)
	userID := uuid.New()

	docs := []domain.Document{{
		ID:          uuid.New(),
		OwnerID:     userID,
		DocType:     "Balance Sheet",
		DisplayName: "balance.pdf",
		Year:        "2024",
		Status:      domain.StatusPending,
	}}
	mockFin.On("List", mock.Anything, userID, domain.DocumentFilter{Year: "2024"}).Return(docs, nil)

	r := newRouter(userID, http.MethodGet, "/financial-documents/export", h.Export)
	w := serve(r, jsonRequest(t, http.MethodGet, "/financial-documents/export?year=2024", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "financial_documents_2024_")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBFDocument Name,"))
	assert.Contains(t, body, "balance.pdf,Balance Sheet")
}

func TestFinancialHandler_Export_ServiceError(t *testing.T) {
	mockFin := new(mocks.MockFinancialService)
	h := handler.NewFinancialHandler(mockFin)
	userID := uuid.New()

	mockFin.On("List", mock.Anything, userID, domain.DocumentFilter{Year: "19"}).
		Return(nil, domain.NewValidationError("year", "year must have four digits"))

	r := newRouter(userID, http.MethodGet, "/financial-documents/export", h.Export)
	w := serve(r, jsonRequest(t, http.MethodGet, "/financial-documents/export?year=19", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
