package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/port"
)

// ReviewInput is the DTO for a reviewer's decision on a KYC document.
type ReviewInput struct {
	Status   domain.DocumentStatus `json:"status" binding:"required,oneof=approved rejected"`
	Comments string                `json:"comments"`
}

// ReviewService lets reviewers decide on pending KYC documents.
type ReviewService interface {
	ListPending(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	UpdateKYCStatus(ctx context.Context, ownerID uuid.UUID, slot string, input ReviewInput) (*domain.Document, error)
}

type reviewService struct {
	repo        port.KYCDocumentRepository
	userRepo    port.UserRepository
	broker      port.StatusBroker
	emailSender port.EmailSender
	catalog     *catalog.Catalog
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(
	repo port.KYCDocumentRepository,
	userRepo port.UserRepository,
	broker port.StatusBroker,
	emailSender port.EmailSender,
	cat *catalog.Catalog,
) ReviewService {
	return &reviewService{
		repo:        repo,
		userRepo:    userRepo,
		broker:      broker,
		emailSender: emailSender,
		catalog:     cat,
	}
}

func (s *reviewService) ListPending(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	docs, total, err := s.repo.ListPending(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrRowRead, err)
	}
	for i := range docs {
		docs[i].CategoryName = s.catalog.Slot(docs[i].DocType).Title
	}
	return docs, total, nil
}

// UpdateKYCStatus records the decision, pushes it to the owner's open
// sessions and emails the owner. Comments are kept only on rejection.
// Push and email failures are logged, not returned.
func (s *reviewService) UpdateKYCStatus(ctx context.Context, ownerID uuid.UUID, slot string, input ReviewInput) (*domain.Document, error) {
	if !s.catalog.IsKYCSlot(slot) {
		return nil, domain.NewValidationError("slot", fmt.Sprintf("unknown KYC document %q", slot))
	}
	if !input.Status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", input.Status))
	}

	current, err := s.repo.GetBySlot(ctx, ownerID, slot)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(input.Status) {
		return nil, fmt.Errorf("%s -> %s: %w", current.Status, input.Status, domain.ErrInvalidTransition)
	}

	comments := ""
	if input.Status == domain.StatusRejected {
		comments = input.Comments
	}

	doc, err := s.repo.UpdateStatus(ctx, ownerID, slot, input.Status, comments)
	if err != nil {
		return nil, err
	}
	log.Printf("reviewService.UpdateKYCStatus: %s for user %s is now %s", slot, ownerID, input.Status)

	event := domain.StatusEvent{
		OwnerID:  ownerID,
		DocType:  slot,
		Status:   input.Status,
		Comments: comments,
		At:       time.Now().UTC(),
	}
	if err := s.broker.Publish(ctx, event); err != nil {
		log.Printf("WARNING: reviewService.UpdateKYCStatus: publishing status event for user %s: %v", ownerID, err)
	}

	s.notifyOwner(ctx, ownerID, slot, input.Status, comments)
	return doc, nil
}

func (s *reviewService) notifyOwner(ctx context.Context, ownerID uuid.UUID, slot string, status domain.DocumentStatus, comments string) {
	user, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		log.Printf("WARNING: reviewService.notifyOwner: user lookup for %s: %v", ownerID, err)
		return
	}
	title := s.catalog.Slot(slot).Title
	if err := s.emailSender.SendDocumentStatusEmail(ctx, user.Email, user.FullName, title, string(status), comments); err != nil {
		log.Printf("WARNING: reviewService.notifyOwner: sending status email to %s: %v", user.Email, err)
	}
}
