package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/metrics"
)

// FinanceRepo reads sale and cost rows for the dashboard aggregation.
type FinanceRepo struct{ db *sql.DB }

// NewFinanceRepo creates a Postgres-backed finance repository.
func NewFinanceRepo(db *sql.DB) *FinanceRepo { return &FinanceRepo{db: db} }

func (r *FinanceRepo) listMoneyRows(ctx context.Context, table string, f domain.DashboardFilters) ([]domain.Sale, error) {
	var (
		conds []string
		args  []interface{}
		idx   = 1
	)
	if len(f.ClinicIDs) > 0 {
		conds = append(conds, fmt.Sprintf("clinic_id = ANY($%d)", idx))
		args = append(args, pq.Array(f.ClinicIDs))
		idx++
	}
	windows := metrics.BuildDateWindows(f.SelectedMonths, f.Year)
	if cond := windowPredicate("created_at", windows, &args, &idx); cond != "" {
		conds = append(conds, cond)
	}

	q := `SELECT id, clinic_id, COALESCE(product_id,''), amount, created_at FROM ` + table
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []domain.Sale
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.ID, &s.ClinicID, &s.ProductID, &s.Amount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSales returns sale rows matching the dashboard filter.
func (r *FinanceRepo) ListSales(ctx context.Context, f domain.DashboardFilters) ([]domain.Sale, error) {
	return r.listMoneyRows(ctx, "sales", f)
}

// ListCosts returns cost rows matching the dashboard filter.
func (r *FinanceRepo) ListCosts(ctx context.Context, f domain.DashboardFilters) ([]domain.Cost, error) {
	rows, err := r.listMoneyRows(ctx, "costs", f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Cost, len(rows))
	for i, s := range rows {
		out[i] = domain.Cost(s)
	}
	return out, nil
}
