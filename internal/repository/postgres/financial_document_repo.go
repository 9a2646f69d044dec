package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clientportal/internal/domain"
	"clientportal/internal/port"
)

type financialDocumentRepo struct {
	db *sqlx.DB
}

// NewFinancialDocumentRepo creates a new PostgreSQL-backed DocumentRepository
// for financial documents.
func NewFinancialDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &financialDocumentRepo{db: db}
}

const financialColumns = `id, user_id, year, category, doc_type, file_path, file_name, file_size,
	content_type, status, comments, upload_date, updated_at`

// buildFinancialWhere constructs the WHERE clause for an owner's listing.
// Category "all" does not filter.
func buildFinancialWhere(ownerID uuid.UUID, filter domain.DocumentFilter) (clause string, args []interface{}) {
	args = []interface{}{ownerID}
	clause = "WHERE user_id = $1"
	argN := 2

	if filter.Year != "" {
		clause += fmt.Sprintf(" AND year = $%d", argN)
		args = append(args, filter.Year)
		argN++
	}
	if filter.Category != "" && filter.Category != "all" {
		clause += fmt.Sprintf(" AND category = $%d", argN)
		args = append(args, filter.Category)
		argN++
	}
	if filter.DocType != "" {
		clause += fmt.Sprintf(" AND doc_type = $%d", argN)
		args = append(args, filter.DocType)
		argN++ //nolint:ineffassign // argN kept incremented for consistency
	}
	return clause, args
}

func (r *financialDocumentRepo) List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error) {
	where, args := buildFinancialWhere(ownerID, filter)

	docs := []domain.Document{}
	err := r.db.SelectContext(ctx, &docs,
		"SELECT "+financialColumns+" FROM financial_documents "+where+" ORDER BY upload_date DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("financialDocumentRepo.List: %w", err)
	}
	return withDomain(docs, domain.DomainFinancial), nil
}

func (r *financialDocumentRepo) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT "+financialColumns+" FROM financial_documents WHERE id = $1 AND user_id = $2", docID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("financialDocumentRepo.GetByID: %w", err)
	}
	doc.Domain = domain.DomainFinancial
	return &doc, nil
}

func (r *financialDocumentRepo) Save(ctx context.Context, doc *domain.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}
	doc.Domain = domain.DomainFinancial

	query := `INSERT INTO financial_documents (
		id, user_id, year, category, doc_type, file_path, file_name, file_size,
		content_type, status, comments, upload_date, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.OwnerID, doc.Year, doc.Category, doc.DocType, doc.FilePath, doc.FileName, doc.FileSize,
		doc.ContentType, doc.Status, doc.Comments, doc.UploadDate, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("financialDocumentRepo.Save: %w", err)
	}
	return nil
}

func (r *financialDocumentRepo) Delete(ctx context.Context, ownerID, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM financial_documents WHERE id = $1 AND user_id = $2", docID, ownerID)
	if err != nil {
		return fmt.Errorf("financialDocumentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *financialDocumentRepo) DeleteByPath(ctx context.Context, ownerID uuid.UUID, filePath string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM financial_documents WHERE user_id = $1 AND file_path = $2", ownerID, filePath)
	if err != nil {
		return 0, fmt.Errorf("financialDocumentRepo.DeleteByPath: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
