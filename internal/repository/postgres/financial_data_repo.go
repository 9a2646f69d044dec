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

type financialDataRepo struct {
	db *sqlx.DB
}

// NewFinancialDataRepo creates a new PostgreSQL-backed FinancialDataRepository.
func NewFinancialDataRepo(db *sqlx.DB) port.FinancialDataRepository {
	return &financialDataRepo{db: db}
}

func (r *financialDataRepo) GetByClient(ctx context.Context, clientID uuid.UUID) (*domain.FinancialMetrics, error) {
	var m domain.FinancialMetrics
	err := r.db.GetContext(ctx, &m,
		`SELECT client_id, cash_balance, revenue, expenses, net_burn, updated_at
		 FROM financial_data WHERE client_id = $1`, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("financialDataRepo.GetByClient: %w", err)
	}
	return &m, nil
}

func (r *financialDataRepo) Upsert(ctx context.Context, m *domain.FinancialMetrics) error {
	m.UpdatedAt = time.Now().UTC()

	query := `INSERT INTO financial_data (client_id, cash_balance, revenue, expenses, net_burn, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_id) DO UPDATE SET
			cash_balance = EXCLUDED.cash_balance,
			revenue = EXCLUDED.revenue,
			expenses = EXCLUDED.expenses,
			net_burn = EXCLUDED.net_burn,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		m.ClientID, m.CashBalance, m.Revenue, m.Expenses, m.NetBurn, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("financialDataRepo.Upsert: %w", err)
	}
	return nil
}
