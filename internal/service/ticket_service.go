package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"clientportal/internal/domain"
	"clientportal/internal/workflow"
)

// ActionResult is what a confirmed upload or delete leaves on its ticket.
type ActionResult struct {
	Document *domain.Document `json:"document,omitempty"`
	Slot     *KYCSlotView     `json:"slot,omitempty"`
	Delete   *DeleteOutcome   `json:"delete,omitempty"`
	Message  string           `json:"message"`
}

// UploadFile is a file received from the client, not yet read.
type UploadFile struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// TicketService confirms, cancels and reports staged uploads and deletes.
type TicketService interface {
	Confirm(ctx context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error)
	Cancel(ctx context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error)
	Get(ctx context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error)
}

type ticketService struct {
	gate *workflow.Gate
}

// NewTicketService creates a TicketService over gate.
func NewTicketService(gate *workflow.Gate) TicketService {
	return &ticketService{gate: gate}
}

// Confirm runs the staged action. When the action itself fails the finished
// ticket is returned together with the error.
func (s *ticketService) Confirm(ctx context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error) {
	t, err := s.gate.Confirm(ctx, ownerID, ticketID)
	if t.ID == uuid.Nil {
		return nil, err
	}
	return &t, err
}

func (s *ticketService) Cancel(_ context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error) {
	t, err := s.gate.Cancel(ownerID, ticketID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ticketService) Get(_ context.Context, ownerID, ticketID uuid.UUID) (*workflow.Ticket, error) {
	t, err := s.gate.Get(ownerID, ticketID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// readUpload checks the extension against allowed and the size ceiling, then
// reads the whole file so the staged action owns its bytes. A file of exactly
// maxBytes is accepted.
func readUpload(f UploadFile, maxBytes int64, allowed []string) (data []byte, contentType string, err error) {
	if strings.TrimSpace(f.FileName) == "" {
		return nil, "", domain.NewValidationError("file", "Please select a file to upload")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.FileName), "."))
	if !slices.Contains(allowed, ext) {
		return nil, "", &domain.ValidationError{
			Field:   "file",
			Message: domain.UnsupportedFileMessage(allowed),
			Err:     domain.ErrUnsupportedFileType,
		}
	}
	if f.Size > maxBytes {
		return nil, "", domain.NewFileTooLargeError(maxBytes)
	}
	if f.Body == nil {
		return nil, "", domain.NewValidationError("file", "Please select a file to upload")
	}

	data, err = io.ReadAll(io.LimitReader(f.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", domain.NewFileTooLargeError(maxBytes)
	}
	return data, domain.ContentTypeFor(ext), nil
}
