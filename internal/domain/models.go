package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a portal account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	ResetTokenID *string   `db:"password_reset_token_id" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Session is the identity attached to an authenticated request.
type Session struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   UserRole  `json:"role"`
}

// Document is a stored KYC or financial document. Rows are always scoped to OwnerID.
type Document struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	OwnerID     uuid.UUID      `db:"user_id" json:"user_id"`
	Domain      DocumentDomain `db:"-" json:"domain"`
	DocType     string         `db:"doc_type" json:"doc_type"`
	Category    string         `db:"category" json:"category"`
	Year        string         `db:"year" json:"year,omitempty"`
	FilePath    string         `db:"file_path" json:"file_path"`
	FileName    string         `db:"file_name" json:"file_name"`
	FileSize    int64          `db:"file_size" json:"file_size"`
	ContentType string         `db:"content_type" json:"content_type"`
	Status      DocumentStatus `db:"status" json:"status"`
	Comments    string         `db:"comments" json:"comments,omitempty"`
	UploadDate  time.Time      `db:"upload_date" json:"upload_date"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`

	// Derived at read time, never persisted.
	SignedURL    *string `db:"-" json:"signed_url"`
	DisplayName  string  `db:"-" json:"display_name,omitempty"`
	CategoryName string  `db:"-" json:"category_name,omitempty"`
	CategoryIcon string  `db:"-" json:"category_icon,omitempty"`
}

// DocumentFilter narrows a document listing. Empty fields do not filter.
type DocumentFilter struct {
	Year     string
	Category string
	DocType  string
}

// StatusEvent is pushed to subscribers when a reviewer changes a KYC document.
type StatusEvent struct {
	OwnerID  uuid.UUID      `json:"user_id"`
	DocType  string         `json:"doc_type"`
	Status   DocumentStatus `json:"status"`
	Comments string         `json:"comments,omitempty"`
	At       time.Time      `json:"at"`
}

// Notice is a transient message the client shows and dismisses after DismissAfterMS.
type Notice struct {
	Level          NoticeLevel `json:"level"`
	Message        string      `json:"message"`
	DismissAfterMS int64       `json:"dismiss_after_ms"`
}

// NoticeDismissMS is the auto-dismiss hint attached to every notice.
var NoticeDismissMS int64 = 5000

// NewNotice returns a notice carrying the configured dismiss hint.
func NewNotice(level NoticeLevel, msg string) *Notice {
	return &Notice{Level: level, Message: msg, DismissAfterMS: NoticeDismissMS}
}

// UserProfile holds the client's contact details.
type UserProfile struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Address     string    `db:"address" json:"address"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FinancialMetrics are the headline numbers shown on the dashboard.
type FinancialMetrics struct {
	ClientID    uuid.UUID `db:"client_id" json:"client_id"`
	CashBalance float64   `db:"cash_balance" json:"cash_balance"`
	Revenue     float64   `db:"revenue" json:"revenue"`
	Expenses    float64   `db:"expenses" json:"expenses"`
	NetBurn     float64   `db:"net_burn" json:"net_burn"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice is an invoice issued to a client, addressed by email.
type Invoice struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ClientEmail     string     `db:"client_email" json:"client_email"`
	InvoiceNumber   string     `db:"invoice_number" json:"invoice_number"`
	Amount          float64    `db:"amount" json:"amount"`
	Currency        string     `db:"currency" json:"currency"`
	Status          string     `db:"status" json:"status"`
	DueDate         *time.Time `db:"due_date" json:"due_date"`
	PDFPath         string     `db:"pdf_path" json:"-"`
	Approved        bool       `db:"approved" json:"-"`
	VisibleToClient bool       `db:"visible_to_client" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`

	SignedPDFURL *string `db:"-" json:"signed_pdf_url"`
}
