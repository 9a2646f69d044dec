package port

import (
	"context"

	"github.com/google/uuid"

	"clientportal/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetPasswordResetToken(ctx context.Context, userID uuid.UUID, tokenID string) error
	ResetPassword(ctx context.Context, userID uuid.UUID, passwordHash, expectedTokenID string) error
}

// DocumentRepository defines the contract for document rows of one domain.
// Every method is scoped to the owning user.
type DocumentRepository interface {
	// List returns the owner's rows newest first. Zero rows is not an error.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.DocumentFilter) ([]domain.Document, error)
	GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error)
	// Save inserts the row. KYC rows upsert on (user_id, doc_type).
	Save(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, ownerID, docID uuid.UUID) error
	DeleteByPath(ctx context.Context, ownerID uuid.UUID, filePath string) (int64, error)
}

// KYCDocumentRepository adds slot lookups and reviewer status updates.
type KYCDocumentRepository interface {
	DocumentRepository
	GetBySlot(ctx context.Context, ownerID uuid.UUID, slot string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, ownerID uuid.UUID, slot string, status domain.DocumentStatus, comments string) (*domain.Document, error)
	ListPending(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
}

// ProfileRepository persists client contact details.
type ProfileRepository interface {
	// Get returns nil, nil when the user has no profile yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) error
}

// FinancialDataRepository persists headline financial metrics per client.
type FinancialDataRepository interface {
	// GetByClient returns nil, nil when no metrics were loaded for the client.
	GetByClient(ctx context.Context, clientID uuid.UUID) (*domain.FinancialMetrics, error)
	Upsert(ctx context.Context, metrics *domain.FinancialMetrics) error
}

// InvoiceRepository reads invoices issued to clients.
type InvoiceRepository interface {
	// ListVisible returns approved, client-visible invoices for email, newest first.
	ListVisible(ctx context.Context, clientEmail string) ([]domain.Invoice, error)
}
