package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/workflow"
)

// FinancialUploadInput is the DTO for staging a financial document upload.
type FinancialUploadInput struct {
	OwnerID  uuid.UUID
	Year     string
	Category string
	DocType  string
	File     UploadFile
}

// FinancialDeleteInput identifies a financial document to delete. FilePath
// is optional and lets the delete find an object whose row path drifted.
type FinancialDeleteInput struct {
	OwnerID  uuid.UUID
	DocID    uuid.UUID
	FilePath string
}

// FinancialService defines the financial documents contract.
type FinancialService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error)
	Categories() []catalog.CategoryInfo
	Years() []string
	StageUpload(ctx context.Context, input FinancialUploadInput) (*workflow.Ticket, error)
	StageDelete(ctx context.Context, input FinancialDeleteInput) (*workflow.Ticket, error)
}

type financialService struct {
	adapter  *DocumentAdapter
	gate     *workflow.Gate
	catalog  *catalog.Catalog
	maxBytes int64
	years    []string
}

// NewFinancialService creates a new FinancialService implementation. An
// empty years list accepts any four-digit year.
func NewFinancialService(
	adapter *DocumentAdapter,
	gate *workflow.Gate,
	cat *catalog.Catalog,
	maxBytes int64,
	years []string,
) FinancialService {
	return &financialService{
		adapter:  adapter,
		gate:     gate,
		catalog:  cat,
		maxBytes: maxBytes,
		years:    append([]string(nil), years...),
	}
}

func (s *financialService) List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error) {
	if filter.Category != "" && filter.Category != catalog.AllCategories && !s.catalog.HasCategory(filter.Category) {
		return nil, domain.NewValidationError("category", fmt.Sprintf("unknown category %q", filter.Category))
	}
	docs, err := s.adapter.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("financial.List: %w", err)
	}
	return docs, nil
}

func (s *financialService) Categories() []catalog.CategoryInfo {
	return s.catalog.Categories()
}

func (s *financialService) Years() []string {
	return append([]string(nil), s.years...)
}

func (s *financialService) StageUpload(ctx context.Context, input FinancialUploadInput) (*workflow.Ticket, error) {
	docType, err := s.validateUpload(&input)
	if err != nil {
		return nil, err
	}

	data, contentType, err := readUpload(input.File, s.maxBytes, domain.FinancialExtensions)
	if err != nil {
		return nil, err
	}

	ownerID, year, category := input.OwnerID, input.Year, input.Category
	fileName := input.File.FileName

	run := func(ctx context.Context) (any, error) {
		doc, err := s.adapter.Insert(ctx, &domain.Document{
			OwnerID:     ownerID,
			Year:        year,
			Category:    category,
			DocType:     docType,
			FileName:    fileName,
			FileSize:    int64(len(data)),
			ContentType: contentType,
		}, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &ActionResult{Document: doc, Message: "Document uploaded successfully!"}, nil
	}

	summary := fmt.Sprintf("Upload %s as %s (%s)", fileName, docType, year)
	t, err := s.gate.Stage(ownerID, workflow.KindUpload, workflow.FinancialSlotKey(ownerID, year, docType), summary, run)
	if err != nil {
		return nil, err
	}
	log.Printf("financialService.StageUpload: staged %s for user %s %s/%s (%d bytes)", t.ID, ownerID, year, docType, len(data))
	return &t, nil
}

func (s *financialService) StageDelete(ctx context.Context, input FinancialDeleteInput) (*workflow.Ticket, error) {
	if input.DocID == uuid.Nil {
		return nil, domain.NewValidationError("id", "document id is required")
	}

	summary := "Delete document"
	doc, err := s.adapter.Lookup(ctx, input.OwnerID, input.DocID)
	switch {
	case err == nil:
		summary = fmt.Sprintf("Delete %s", doc.DisplayName)
	case !errors.Is(err, domain.ErrNotFound), input.FilePath == "":
		return nil, err
	}

	target := DeleteTarget{OwnerID: input.OwnerID, DocID: input.DocID, FilePath: input.FilePath}
	run := func(ctx context.Context) (any, error) {
		outcome, err := s.adapter.Delete(ctx, target)
		if err != nil {
			return nil, err
		}
		return &ActionResult{Delete: outcome, Message: "Document deleted successfully!"}, nil
	}

	key := workflow.DocumentKey(string(domain.DomainFinancial), input.OwnerID, input.DocID)
	t, err := s.gate.Stage(input.OwnerID, workflow.KindDelete, key, summary, run)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// validateUpload checks year, category and type, and returns the type label
// to store. Types of a fixed category are stored in catalog spelling.
func (s *financialService) validateUpload(input *FinancialUploadInput) (string, error) {
	input.Year = strings.TrimSpace(input.Year)
	if !yearPattern.MatchString(input.Year) {
		return "", domain.NewValidationError("year", "year must have four digits")
	}
	if len(s.years) > 0 && !contains(s.years, input.Year) {
		return "", domain.NewValidationError("year", fmt.Sprintf("uploads for %s are not accepted", input.Year))
	}

	if input.Category == "" || input.Category == catalog.AllCategories || !s.catalog.HasCategory(input.Category) {
		return "", domain.NewValidationError("category", "select a document category")
	}

	docType := strings.TrimSpace(input.DocType)
	if docType == "" {
		return "", domain.NewValidationError("doc_type", "Please enter a document type before uploading")
	}
	if !s.catalog.AllowsType(input.Category, docType) {
		return "", domain.NewValidationError("doc_type",
			fmt.Sprintf("%q is not a %s document", docType, s.catalog.Category(input.Category).DisplayName))
	}
	if canonical, ok := s.catalog.CanonicalType(docType); ok && s.catalog.CategoryForType(canonical) == input.Category {
		docType = canonical
	}
	return docType, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
