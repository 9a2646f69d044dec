package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"clientportal/internal/domain"
	"clientportal/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) ListVisible(ctx context.Context, clientEmail string) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	err := r.db.SelectContext(ctx, &invoices,
		`SELECT id, client_email, invoice_number, amount, currency, COALESCE(NULLIF(status, ''), 'paid') AS status,
			due_date, pdf_path, approved, visible_to_client, created_at
		 FROM invoices
		 WHERE lower(client_email) = lower($1) AND approved = TRUE AND visible_to_client = TRUE
		 ORDER BY created_at DESC`, clientEmail)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListVisible: %w", err)
	}
	return invoices, nil
}
