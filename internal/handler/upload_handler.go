package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clientportal/internal/domain"
	"clientportal/internal/service"
	"clientportal/internal/workflow"
)

// UploadHandler confirms, cancels and reports staged uploads and deletes.
type UploadHandler struct {
	ticketService service.TicketService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(ticketService service.TicketService) *UploadHandler {
	return &UploadHandler{ticketService: ticketService}
}

// Confirm handles POST /api/v1/uploads/:ticket/confirm
// @Summary Confirm a staged upload or delete
// @Description Runs the staged action. The response carries the finished ticket and a notice.
// @Tags uploads
// @Produce json
// @Param ticket path string true "Ticket ID"
// @Success 200 {object} Response{data=workflow.Ticket}
// @Failure 404 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Failure 502 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /uploads/{ticket}/confirm [post]
func (h *UploadHandler) Confirm(c *gin.Context) {
	session, ticketID, ok := h.ticketParams(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.Confirm(c.Request.Context(), session.UserID, ticketID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondWithNotice(c, http.StatusOK, ticket, confirmNotice(ticket))
}

// Cancel handles DELETE /api/v1/uploads/:ticket
// @Summary Cancel a staged upload or delete
// @Tags uploads
// @Produce json
// @Param ticket path string true "Ticket ID"
// @Success 200 {object} Response{data=workflow.Ticket}
// @Failure 404 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /uploads/{ticket} [delete]
func (h *UploadHandler) Cancel(c *gin.Context) {
	session, ticketID, ok := h.ticketParams(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.Cancel(c.Request.Context(), session.UserID, ticketID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ticket)
}

// Get handles GET /api/v1/uploads/:ticket
// @Summary Get the state of a staged or finished action
// @Tags uploads
// @Produce json
// @Param ticket path string true "Ticket ID"
// @Success 200 {object} Response{data=workflow.Ticket}
// @Failure 404 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /uploads/{ticket} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	session, ticketID, ok := h.ticketParams(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.Get(c.Request.Context(), session.UserID, ticketID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ticket)
}

func (h *UploadHandler) ticketParams(c *gin.Context) (domain.Session, uuid.UUID, bool) {
	session, ok := requireSession(c)
	if !ok {
		return domain.Session{}, uuid.Nil, false
	}
	ticketID, err := uuid.Parse(c.Param("ticket"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid ticket ID")
		return domain.Session{}, uuid.Nil, false
	}
	return session, ticketID, true
}

// confirmNotice picks the notice for a finished action. A delete that left
// its stored file behind is reported as a warning.
func confirmNotice(t *workflow.Ticket) *domain.Notice {
	res, ok := t.Result.(*service.ActionResult)
	if !ok || res == nil {
		return domain.NewNotice(domain.NoticeSuccess, "Done!")
	}
	if res.Delete != nil && res.Delete.Orphaned {
		return domain.NewNotice(domain.NoticeWarning, "Document removed, but its stored file could not be deleted.")
	}
	return domain.NewNotice(domain.NoticeSuccess, res.Message)
}

// openedFile is a multipart file ready to hand to a service.
type openedFile struct {
	service.UploadFile
	src multipart.File
}

func (f openedFile) close() {
	if f.src != nil {
		_ = f.src.Close()
	}
}

// formFile opens the "file" part of a multipart request. Returns false if it
// is missing (error response already written).
func formFile(c *gin.Context) (openedFile, bool) {
	src, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "Please select a file to upload")
		return openedFile{}, false
	}
	return openedFile{
		UploadFile: service.UploadFile{FileName: header.Filename, Size: header.Size, Body: src},
		src:        src,
	}, true
}
