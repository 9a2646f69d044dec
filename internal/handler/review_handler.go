package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientportal/internal/service"
)

// ReviewHandler lets reviewers decide on KYC documents.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ListPending handles GET /api/v1/review/kyc-documents
// @Summary List KYC documents awaiting review
// @Tags review
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} Response{data=[]domain.Document}
// @Failure 403 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /review/kyc-documents [get]
func (h *ReviewHandler) ListPending(c *gin.Context) {
	offset, limit := parsePagination(c)

	docs, total, err := h.reviewService.ListPending(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// UpdateStatus handles PUT /api/v1/review/kyc-documents/:owner_id/:slot
// @Summary Approve or reject a KYC document
// @Description The decision is pushed to the owner's open sessions and emailed. Comments are kept only on rejection.
// @Tags review
// @Accept json
// @Produce json
// @Param owner_id path string true "Owner user ID"
// @Param slot path string true "KYC slot"
// @Param body body service.ReviewInput true "Decision"
// @Success 200 {object} Response{data=domain.Document}
// @Failure 400 {object} ErrorResponseBody
// @Failure 404 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /review/kyc-documents/{owner_id}/{slot} [put]
func (h *ReviewHandler) UpdateStatus(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("owner_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid owner ID")
		return
	}

	var input service.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	doc, err := h.reviewService.UpdateKYCStatus(c.Request.Context(), ownerID, c.Param("slot"), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
