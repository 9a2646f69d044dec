package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clientportal/internal/domain"
	"clientportal/internal/service"
)

// sseKeepAlive is how often an idle event stream receives a ping.
const sseKeepAlive = 25 * time.Second

// KYCHandler serves the KYC checklist, its uploads and the status stream.
type KYCHandler struct {
	kycService service.KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycService service.KYCService) *KYCHandler {
	return &KYCHandler{kycService: kycService}
}

// KYCStreamEvent is one message on the KYC status stream.
type KYCStreamEvent struct {
	Slot     *service.KYCSlotView  `json:"slot,omitempty"`
	Slots    []service.KYCSlotView `json:"slots,omitempty"`
	Progress service.KYCProgress   `json:"progress"`
	Notice   *domain.Notice        `json:"notice,omitempty"`
}

// Checklist handles GET /api/v1/kyc-documents
// @Summary KYC checklist
// @Description Every KYC slot with the status of the document it holds.
// @Tags kyc
// @Produce json
// @Success 200 {object} Response{data=KYCChecklistResponse}
// @Failure 401 {object} ErrorResponseBody
// @Failure 500 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /kyc-documents [get]
func (h *KYCHandler) Checklist(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	checklist, err := h.kycService.Checklist(c.Request.Context(), session.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, KYCChecklistResponse{Slots: checklist.Slots, Progress: checklist.Progress()})
}

// Upload handles POST /api/v1/kyc-documents/:slot/uploads
// @Summary Stage a KYC document upload
// @Description Validates the file and returns a ticket. Nothing is stored until the ticket is confirmed.
// @Tags kyc
// @Accept multipart/form-data
// @Produce json
// @Param slot path string true "KYC slot" Enums(passport, address_proof, utility_bill, driving_license)
// @Param file formData file true "PDF, JPG or PNG, at most 5MB"
// @Success 201 {object} Response{data=workflow.Ticket}
// @Failure 400 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Failure 413 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /kyc-documents/{slot}/uploads [post]
func (h *KYCHandler) Upload(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	file, ok := formFile(c)
	if !ok {
		return
	}
	defer file.close()

	ticket, err := h.kycService.StageUpload(c.Request.Context(), service.KYCUploadInput{
		OwnerID: session.UserID,
		Slot:    c.Param("slot"),
		File:    file.UploadFile,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, ticket)
}

// Delete handles DELETE /api/v1/kyc-documents/:slot
// @Summary Stage removal of a KYC document
// @Tags kyc
// @Produce json
// @Param slot path string true "KYC slot"
// @Success 201 {object} Response{data=workflow.Ticket}
// @Failure 404 {object} ErrorResponseBody
// @Failure 409 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /kyc-documents/{slot} [delete]
func (h *KYCHandler) Delete(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	ticket, err := h.kycService.StageDelete(c.Request.Context(), session.UserID, c.Param("slot"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, ticket)
}

// Events handles GET /api/v1/kyc-documents/events
// @Summary Stream KYC status changes
// @Description Server-Sent Events. The first "checklist" event carries the full checklist; each "status" event carries the changed slot and a notice.
// @Tags kyc
// @Produce text/event-stream
// @Param access_token query string false "Access token for clients that cannot set headers"
// @Success 200 {object} KYCStreamEvent
// @Failure 401 {object} ErrorResponseBody
// @Security BearerAuth
// @Router /kyc-documents/events [get]
func (h *KYCHandler) Events(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Subscribe before the snapshot: an event published in between is then
	// replayed onto the checklist instead of lost.
	sub, err := h.kycService.Subscribe(ctx, session.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer sub.Close()

	checklist, err := h.kycService.Checklist(ctx, session.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	// the server write timeout would otherwise cut the stream
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.SSEvent("checklist", KYCStreamEvent{Slots: checklist.Slots, Progress: checklist.Progress()})
	c.Writer.Flush()

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			c.Writer.Flush()
		case ev, open := <-sub.Events():
			if !open {
				log.Printf("kycHandler.Events: subscription for user %s closed", session.UserID)
				return
			}
			view, known := checklist.Apply(ev)
			if !known {
				continue
			}
			msg := KYCStreamEvent{Slot: &view, Progress: checklist.Progress()}
			if level, text, ok := service.StatusNotice(view.Title, view.Status, view.Comments); ok {
				msg.Notice = domain.NewNotice(level, text)
			}
			c.SSEvent("status", msg)
			c.Writer.Flush()
		}
	}
}
