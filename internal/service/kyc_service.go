package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/port"
	"clientportal/internal/workflow"
)

// KYCSlotView is one row of the KYC checklist.
type KYCSlotView struct {
	Slot        string                `json:"slot"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.DocumentStatus `json:"status"`
	Comments    string                `json:"comments,omitempty"`
	Document    *domain.Document      `json:"document,omitempty"`
}

// KYCProgress counts checklist slots by status.
type KYCProgress struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
	Required int `json:"required"`
}

// KYCChecklist lists every KYC slot in display order. Slots without a
// document are "required".
type KYCChecklist struct {
	Slots []KYCSlotView `json:"slots"`
}

// NewKYCChecklist builds the checklist for docs. When a slot holds several
// rows the first, newest, one wins.
func NewKYCChecklist(cat *catalog.Catalog, docs []domain.Document) *KYCChecklist {
	bySlot := make(map[string]*domain.Document, len(docs))
	for i := range docs {
		if _, seen := bySlot[docs[i].DocType]; !seen {
			bySlot[docs[i].DocType] = &docs[i]
		}
	}

	cl := &KYCChecklist{Slots: make([]KYCSlotView, 0, len(cat.KYCSlots()))}
	for _, slot := range cat.KYCSlots() {
		view := KYCSlotView{
			Slot:        slot.Key,
			Title:       slot.Title,
			Description: slot.Description,
			Status:      domain.StatusRequired,
		}
		if doc, ok := bySlot[slot.Key]; ok {
			view.Status = doc.Status
			view.Comments = doc.Comments
			view.Document = doc
		}
		cl.Slots = append(cl.Slots, view)
	}
	return cl
}

// Apply folds a status event into the checklist and returns the updated slot.
// The event's status is applied as is; applying the same event twice leaves
// the same result. Events for unknown slots are ignored.
func (c *KYCChecklist) Apply(ev domain.StatusEvent) (KYCSlotView, bool) {
	for i := range c.Slots {
		if c.Slots[i].Slot != ev.DocType {
			continue
		}
		s := &c.Slots[i]
		s.Status = ev.Status
		s.Comments = ev.Comments
		if s.Document != nil {
			s.Document.Status = ev.Status
			s.Document.Comments = ev.Comments
		}
		return *s, true
	}
	return KYCSlotView{}, false
}

// Progress counts the slots by status.
func (c *KYCChecklist) Progress() KYCProgress {
	p := KYCProgress{Total: len(c.Slots)}
	for _, s := range c.Slots {
		switch s.Status {
		case domain.StatusApproved:
			p.Approved++
		case domain.StatusPending:
			p.Pending++
		case domain.StatusRejected:
			p.Rejected++
		default:
			p.Required++
		}
	}
	return p
}

// StatusNotice returns the message shown when a reviewer decides on a slot.
// Statuses other than approved and rejected produce no notice.
func StatusNotice(title string, status domain.DocumentStatus, comments string) (domain.NoticeLevel, string, bool) {
	switch status {
	case domain.StatusApproved:
		return domain.NoticeSuccess, fmt.Sprintf("Your %s has been approved!", title), true
	case domain.StatusRejected:
		reason := comments
		if reason == "" {
			reason = "No reason provided"
		}
		return domain.NoticeError, fmt.Sprintf("Your %s was rejected. Reason: %s. Please upload a new document.", title, reason), true
	}
	return "", "", false
}

// KYCUploadInput is the DTO for staging a KYC upload.
type KYCUploadInput struct {
	OwnerID uuid.UUID
	Slot    string
	File    UploadFile
}

// KYCService defines the KYC checklist contract.
type KYCService interface {
	Checklist(ctx context.Context, ownerID uuid.UUID) (*KYCChecklist, error)
	StageUpload(ctx context.Context, input KYCUploadInput) (*workflow.Ticket, error)
	StageDelete(ctx context.Context, ownerID uuid.UUID, slot string) (*workflow.Ticket, error)
	Subscribe(ctx context.Context, ownerID uuid.UUID) (port.Subscription, error)
}

type kycService struct {
	adapter  *DocumentAdapter
	repo     port.KYCDocumentRepository
	gate     *workflow.Gate
	catalog  *catalog.Catalog
	maxBytes int64
}

// NewKYCService creates a new KYCService implementation.
func NewKYCService(
	adapter *DocumentAdapter,
	repo port.KYCDocumentRepository,
	gate *workflow.Gate,
	cat *catalog.Catalog,
	maxBytes int64,
) KYCService {
	return &kycService{
		adapter:  adapter,
		repo:     repo,
		gate:     gate,
		catalog:  cat,
		maxBytes: maxBytes,
	}
}

func (s *kycService) Checklist(ctx context.Context, ownerID uuid.UUID) (*KYCChecklist, error) {
	docs, err := s.adapter.List(ctx, ownerID, domain.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("kyc.Checklist: %w", err)
	}
	return NewKYCChecklist(s.catalog, docs), nil
}

func (s *kycService) StageUpload(ctx context.Context, input KYCUploadInput) (*workflow.Ticket, error) {
	if !s.catalog.IsKYCSlot(input.Slot) {
		return nil, domain.NewValidationError("slot", fmt.Sprintf("unknown KYC document %q", input.Slot))
	}
	if err := s.checkAcceptsUpload(ctx, input.OwnerID, input.Slot); err != nil {
		return nil, err
	}

	data, contentType, err := readUpload(input.File, s.maxBytes, domain.KYCExtensions)
	if err != nil {
		return nil, err
	}

	slot := s.catalog.Slot(input.Slot)
	ownerID := input.OwnerID
	fileName := input.File.FileName

	run := func(ctx context.Context) (any, error) {
		// the slot may have been reviewed since staging
		if err := s.checkAcceptsUpload(ctx, ownerID, slot.Key); err != nil {
			return nil, err
		}
		doc, err := s.adapter.Insert(ctx, &domain.Document{
			OwnerID:     ownerID,
			DocType:     slot.Key,
			FileName:    fileName,
			FileSize:    int64(len(data)),
			ContentType: contentType,
		}, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		view := KYCSlotView{
			Slot:        slot.Key,
			Title:       slot.Title,
			Description: slot.Description,
			Status:      doc.Status,
			Document:    doc,
		}
		return &ActionResult{
			Document: doc,
			Slot:     &view,
			Message:  fmt.Sprintf("%s uploaded successfully! Awaiting verification.", slot.Title),
		}, nil
	}

	summary := fmt.Sprintf("Upload %s as %s", fileName, slot.Title)
	t, err := s.gate.Stage(ownerID, workflow.KindUpload, workflow.KYCSlotKey(ownerID, slot.Key), summary, run)
	if err != nil {
		return nil, err
	}
	log.Printf("kycService.StageUpload: staged %s for user %s slot %s (%d bytes)", t.ID, ownerID, slot.Key, len(data))
	return &t, nil
}

// StageDelete stages removal of the document held in slot. Deletes share
// the slot key with uploads so the two never run at once.
func (s *kycService) StageDelete(ctx context.Context, ownerID uuid.UUID, slotKey string) (*workflow.Ticket, error) {
	if !s.catalog.IsKYCSlot(slotKey) {
		return nil, domain.NewValidationError("slot", fmt.Sprintf("unknown KYC document %q", slotKey))
	}
	doc, err := s.repo.GetBySlot(ctx, ownerID, slotKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRowRead, err)
	}

	target := DeleteTarget{OwnerID: ownerID, DocID: doc.ID, FilePath: doc.FilePath}
	slot := s.catalog.Slot(slotKey)
	run := func(ctx context.Context) (any, error) {
		outcome, err := s.adapter.Delete(ctx, target)
		if err != nil {
			return nil, err
		}
		view := KYCSlotView{
			Slot:        slot.Key,
			Title:       slot.Title,
			Description: slot.Description,
			Status:      domain.StatusRequired,
		}
		return &ActionResult{Slot: &view, Delete: outcome, Message: "Document deleted successfully!"}, nil
	}

	t, err := s.gate.Stage(ownerID, workflow.KindDelete, workflow.KYCSlotKey(ownerID, slotKey),
		fmt.Sprintf("Delete %s", slot.Title), run)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *kycService) Subscribe(ctx context.Context, ownerID uuid.UUID) (port.Subscription, error) {
	return s.adapter.Subscribe(ctx, ownerID)
}

// checkAcceptsUpload rejects a replacement of an approved document.
func (s *kycService) checkAcceptsUpload(ctx context.Context, ownerID uuid.UUID, slot string) error {
	current, err := s.repo.GetBySlot(ctx, ownerID, slot)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %v", domain.ErrRowRead, err)
	}
	if !current.Status.AcceptsUpload() {
		return fmt.Errorf("%s is %s: %w", slot, current.Status, domain.ErrInvalidTransition)
	}
	return nil
}
