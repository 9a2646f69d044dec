package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientportal/internal/csvexport"
	"clientportal/internal/domain"
	"clientportal/internal/service"
)

// FinancialHandler serves financial document listings and uploads.
type FinancialHandler struct {
	financialService service.FinancialService
}

// NewFinancialHandler creates a new FinancialHandler.
func NewFinancialHandler(financialService service.FinancialService) *FinancialHandler {
	return &FinancialHandler{financialService: financialService}
}

// List handles GET /api/v1/financial-documents
// @Summary List financial documents
// @Description Newest first. Each document carries a signed URL valid for one hour.
// @Tags financial
// @Produce json
// @Param year query string false "Four-digit year"
// @Param category query string false "Category key, or 'all'"
// @Param type query string false "Document type"
// @Success 200 {object} Response{data=[]domain.Document}
// @Failure 400 {object} ErrorResponseBody
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /financial-documents [get]
func (h *FinancialHandler) List(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	docs, err := h.financialService.List(c.Request.Context(), session.UserID, domain.DocumentFilter{
		Year:     c.Query("year"),
		Category: c.Query("category"),
		DocType:  c.Query("type"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, docs)
}

// Export handles GET /api/v1/financial-documents/export
// @Summary Export financial documents as CSV
// @Description Same filters as the listing. The file starts with a UTF-8 BOM so spreadsheet applications detect the encoding.
// @Tags financial
// @Produce text/csv
// @Param year query string false "Four-digit year"
// @Param category query string false "Category key, or 'all'"
// @Param type query string false "Document type"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /financial-documents/export [get]
func (h *FinancialHandler) Export(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	filter := domain.DocumentFilter{
		Year:     c.Query("year"),
		Category: c.Query("category"),
		DocType:  c.Query("type"),
	}
	docs, err := h.financialService.List(c.Request.Context(), session.UserID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	name := "financial documents"
	if filter.Year != "" {
		name += " " + filter.Year
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvexport.BuildFilename(name, time.Now())))
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		log.Printf("financialHandler.Export: writing BOM: %v", err)
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		log.Printf("financialHandler.Export: writing header: %v", err)
		return
	}
	if err := w.WriteDocuments(docs); err != nil {
		log.Printf("financialHandler.Export: writing rows: %v", err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("financialHandler.Export: flushing: %v", err)
	}
}

// Categories handles GET /api/v1/financial-documents/categories
// @Summary Financial document categories and selectable years
// @Tags financial
// @Produce json
// @Success 200 {object} Response{data=FinancialCategoriesResponse}
// @Security BearerAuth
// @Router /financial-documents/categories [get]
func (h *FinancialHandler) Categories(c *gin.Context) {
	RespondOK(c, FinancialCategoriesResponse{
		Categories: h.financialService.Categories(),
		Years:      h.financialService.Years(),
	})
}

// Upload handles POST /api/v1/financial-documents/uploads
// @Summary Stage a financial document upload
// @Tags financial
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF, image, spreadsheet (xlsx, xls, csv) or Word file, at most 10MB"
// @Param year formData string true "Four-digit year"
// @Param category formData string true "Category key"
// @Param doc_type formData string true "Document type"
// @Success 201 {object} Response{data=workflow.Ticket}
// @Failure 400 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Failure 413 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /financial-documents/uploads [post]
func (h *FinancialHandler) Upload(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	file, ok := formFile(c)
	if !ok {
		return
	}
	defer file.close()

	ticket, err := h.financialService.StageUpload(c.Request.Context(), service.FinancialUploadInput{
		OwnerID:  session.UserID,
		Year:     c.PostForm("year"),
		Category: c.PostForm("category"),
		DocType:  c.PostForm("doc_type"),
		File:     file.UploadFile,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, ticket)
}

// Delete handles DELETE /api/v1/financial-documents/:id
// @Summary Stage removal of a financial document
// @Tags financial
// @Produce json
// @Param id path string true "Document ID"
// @Param file_path query string false "Storage path shown in the listing"
// @Success 201 {object} Response{data=workflow.Ticket}
// @Failure 400 {object} ErrorResponseBody
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /financial-documents/{id} [delete]
func (h *FinancialHandler) Delete(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	ticket, err := h.financialService.StageDelete(c.Request.Context(), service.FinancialDeleteInput{
		OwnerID:  session.UserID,
		DocID:    docID,
		FilePath: c.Query("file_path"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, ticket)
}
