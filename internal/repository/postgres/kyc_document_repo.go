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

type kycDocumentRepo struct {
	db *sqlx.DB
}

// NewKYCDocumentRepo creates a new PostgreSQL-backed KYCDocumentRepository.
func NewKYCDocumentRepo(db *sqlx.DB) port.KYCDocumentRepository {
	return &kycDocumentRepo{db: db}
}

// The slot is both the category and the type of a KYC document.
const kycColumns = `id, user_id, doc_type, doc_type AS category, file_path, file_name, file_size,
	content_type, status, comments, upload_date, updated_at`

func (r *kycDocumentRepo) List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error) {
	query := "SELECT " + kycColumns + " FROM kyc_documents WHERE user_id = $1"
	args := []interface{}{ownerID}

	slot := filter.DocType
	if slot == "" && filter.Category != "" && filter.Category != "all" {
		slot = filter.Category
	}
	if slot != "" {
		query += " AND doc_type = $2"
		args = append(args, slot)
	}
	query += " ORDER BY upload_date DESC"

	docs := []domain.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("kycDocumentRepo.List: %w", err)
	}
	return withDomain(docs, domain.DomainKYC), nil
}

func (r *kycDocumentRepo) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT "+kycColumns+" FROM kyc_documents WHERE id = $1 AND user_id = $2", docID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("kycDocumentRepo.GetByID: %w", err)
	}
	doc.Domain = domain.DomainKYC
	return &doc, nil
}

func (r *kycDocumentRepo) GetBySlot(ctx context.Context, ownerID uuid.UUID, slot string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT "+kycColumns+" FROM kyc_documents WHERE user_id = $1 AND doc_type = $2", ownerID, slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("kycDocumentRepo.GetBySlot: %w", err)
	}
	doc.Domain = domain.DomainKYC
	return &doc, nil
}

// Save upserts on (user_id, doc_type). A second upload to the same slot
// replaces the file, resets the status to pending and clears comments.
func (r *kycDocumentRepo) Save(ctx context.Context, doc *domain.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	doc.UpdatedAt = now
	doc.Status = domain.StatusPending
	doc.Comments = ""
	doc.Category = doc.DocType
	doc.Domain = domain.DomainKYC

	query := `INSERT INTO kyc_documents (
		id, user_id, doc_type, file_path, file_name, file_size, content_type,
		status, comments, upload_date, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (user_id, doc_type) DO UPDATE SET
		file_path = EXCLUDED.file_path,
		file_name = EXCLUDED.file_name,
		file_size = EXCLUDED.file_size,
		content_type = EXCLUDED.content_type,
		status = EXCLUDED.status,
		comments = EXCLUDED.comments,
		upload_date = EXCLUDED.upload_date,
		updated_at = EXCLUDED.updated_at
	RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		doc.ID, doc.OwnerID, doc.DocType, doc.FilePath, doc.FileName, doc.FileSize, doc.ContentType,
		doc.Status, doc.Comments, doc.UploadDate, doc.UpdatedAt).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("kycDocumentRepo.Save: %w", err)
	}
	return nil
}

func (r *kycDocumentRepo) Delete(ctx context.Context, ownerID, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM kyc_documents WHERE id = $1 AND user_id = $2", docID, ownerID)
	if err != nil {
		return fmt.Errorf("kycDocumentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *kycDocumentRepo) DeleteByPath(ctx context.Context, ownerID uuid.UUID, filePath string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM kyc_documents WHERE user_id = $1 AND file_path = $2", ownerID, filePath)
	if err != nil {
		return 0, fmt.Errorf("kycDocumentRepo.DeleteByPath: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *kycDocumentRepo) UpdateStatus(ctx context.Context, ownerID uuid.UUID, slot string, status domain.DocumentStatus, comments string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		`UPDATE kyc_documents SET status = $1, comments = $2, updated_at = NOW()
		 WHERE user_id = $3 AND doc_type = $4
		 RETURNING `+kycColumns,
		status, comments, ownerID, slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("kycDocumentRepo.UpdateStatus: %w", err)
	}
	doc.Domain = domain.DomainKYC
	return &doc, nil
}

func (r *kycDocumentRepo) ListPending(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM kyc_documents WHERE status = $1", domain.StatusPending)
	if err != nil {
		return nil, 0, fmt.Errorf("kycDocumentRepo.ListPending count: %w", err)
	}

	docs := []domain.Document{}
	err = r.db.SelectContext(ctx, &docs,
		"SELECT "+kycColumns+" FROM kyc_documents WHERE status = $1 ORDER BY upload_date ASC LIMIT $2 OFFSET $3",
		domain.StatusPending, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("kycDocumentRepo.ListPending: %w", err)
	}
	return withDomain(docs, domain.DomainKYC), total, nil
}

func withDomain(docs []domain.Document, d domain.DocumentDomain) []domain.Document {
	for i := range docs {
		docs[i].Domain = d
	}
	return docs
}
