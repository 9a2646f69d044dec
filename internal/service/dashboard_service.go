package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clientportal/internal/catalog"
	"clientportal/internal/domain"
	"clientportal/internal/port"
)

// Dashboard is the landing view of a signed-in client. Metrics and Profile
// are nil when nothing was recorded yet.
type Dashboard struct {
	Email   string                   `json:"email"`
	Metrics *domain.FinancialMetrics `json:"metrics"`
	Profile *domain.UserProfile      `json:"profile"`
	KYC     KYCProgress              `json:"kyc"`
}

// DashboardService defines the dashboard and financial overview contract.
type DashboardService interface {
	Get(ctx context.Context, session domain.Session) (*Dashboard, error)
	FinancialOverview(ctx context.Context, userID uuid.UUID) (*domain.FinancialMetrics, error)
}

type dashboardService struct {
	metricsRepo port.FinancialDataRepository
	profileRepo port.ProfileRepository
	kycRepo     port.KYCDocumentRepository
	catalog     *catalog.Catalog
}

// NewDashboardService creates a new DashboardService implementation.
func NewDashboardService(
	metricsRepo port.FinancialDataRepository,
	profileRepo port.ProfileRepository,
	kycRepo port.KYCDocumentRepository,
	cat *catalog.Catalog,
) DashboardService {
	return &dashboardService{
		metricsRepo: metricsRepo,
		profileRepo: profileRepo,
		kycRepo:     kycRepo,
		catalog:     cat,
	}
}

func (s *dashboardService) Get(ctx context.Context, session domain.Session) (*Dashboard, error) {
	d := &Dashboard{Email: session.Email}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.metricsRepo.GetByClient(gctx, session.UserID)
		if err != nil {
			return fmt.Errorf("loading financial metrics: %w", err)
		}
		d.Metrics = m
		return nil
	})
	g.Go(func() error {
		p, err := s.profileRepo.Get(gctx, session.UserID)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		d.Profile = p
		return nil
	})
	g.Go(func() error {
		docs, err := s.kycRepo.List(gctx, session.UserID, domain.DocumentFilter{})
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRowRead, err)
		}
		d.KYC = NewKYCChecklist(s.catalog, docs).Progress()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard.Get: %w", err)
	}
	return d, nil
}

func (s *dashboardService) FinancialOverview(ctx context.Context, userID uuid.UUID) (*domain.FinancialMetrics, error) {
	m, err := s.metricsRepo.GetByClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dashboard.FinancialOverview: %w", err)
	}
	return m, nil
}
