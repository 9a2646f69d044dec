package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"clientportal/internal/domain"
	"clientportal/internal/metrics"
	"clientportal/internal/port"
)

// InvoiceService defines the client invoice listing contract.
type InvoiceService interface {
	List(ctx context.Context, clientEmail string) ([]domain.Invoice, error)
}

type invoiceService struct {
	repo            port.InvoiceRepository
	storage         port.ObjectStorage
	bucket          string
	presignExpiry   int64
	signConcurrency int
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	repo port.InvoiceRepository,
	storage port.ObjectStorage,
	bucket string,
	presignExpiry int64,
	signConcurrency int,
) InvoiceService {
	if signConcurrency <= 0 {
		signConcurrency = 1
	}
	return &invoiceService{
		repo:            repo,
		storage:         storage,
		bucket:          bucket,
		presignExpiry:   presignExpiry,
		signConcurrency: signConcurrency,
	}
}

// List returns the approved, client-visible invoices addressed to
// clientEmail. Each carries a signed PDF URL when its PDF exists.
func (s *invoiceService) List(ctx context.Context, clientEmail string) ([]domain.Invoice, error) {
	invoices, err := s.repo.ListVisible(ctx, clientEmail)
	if err != nil {
		return nil, fmt.Errorf("invoice.List: %w", err)
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.signConcurrency)
	for i := range invoices {
		inv := &invoices[i]
		if inv.PDFPath == "" {
			continue
		}
		g.Go(func() error {
			s.signPDF(gctx, inv)
			return nil
		})
	}
	_ = g.Wait()

	return invoices, nil
}

func (s *invoiceService) signPDF(ctx context.Context, inv *domain.Invoice) {
	exists, err := s.storage.Exists(ctx, s.bucket, inv.PDFPath)
	if err != nil || !exists {
		log.Printf("invoiceService.signPDF: WARNING: pdf for invoice %s unavailable (%s): %v", inv.InvoiceNumber, inv.PDFPath, err)
		metrics.RecordSignedURLFailure("invoice", "missing")
		return
	}
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, inv.PDFPath, s.presignExpiry)
	if err != nil {
		log.Printf("invoiceService.signPDF: WARNING: signing %s: %v", inv.PDFPath, err)
		metrics.RecordSignedURLFailure("invoice", "sign_error")
		return
	}
	inv.SignedPDFURL = &url
}
