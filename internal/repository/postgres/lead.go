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

// LeadRepo implements the dedup and leadimport repository contracts plus the
// filtered dashboard fetch, against PostgreSQL.
type LeadRepo struct{ db *sql.DB }

// NewLeadRepo creates a Postgres-backed lead repository.
func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

const leadColumns = `id, clinic_id, COALESCE(product_id,''), COALESCE(client_name,''),
	       COALESCE(email,''), COALESCE(phone,''), lead, engaged, booked,
	       COALESCE(automation,''), COALESCE(old_user_id,''), created_at`

func scanLead(rows *sql.Rows) (domain.Lead, error) {
	var l domain.Lead
	err := rows.Scan(
		&l.ID, &l.ClinicID, &l.ProductID, &l.ClientName,
		&l.Email, &l.Phone, &l.IsLead, &l.Engaged, &l.Booked,
		&l.Automation, &l.OldUserID, &l.CreatedAt,
	)
	return l, err
}

// ListLeads returns every lead in the tenant scope (all rows when scope is
// empty). Used to seed dedup runs and the import identity index.
func (r *LeadRepo) ListLeads(ctx context.Context, scope string) ([]domain.Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads`
	var args []interface{}
	if scope != "" {
		q += ` WHERE clinic_id = $1`
		args = append(args, scope)
	}
	q += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListFiltered returns leads restricted to the dashboard filter: clinic
// membership plus the date windows implied by the month/year selection.
func (r *LeadRepo) ListFiltered(ctx context.Context, f domain.DashboardFilters) ([]domain.Lead, error) {
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

	q := `SELECT ` + leadColumns + ` FROM leads`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list filtered leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// BulkInsertLeads inserts the rows as one multi-VALUES write.
func (r *LeadRepo) BulkInsertLeads(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, l := range leads {
		base := i * 12
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12))
		args = append(args,
			l.ID, l.ClinicID, nullable(l.ProductID), nullable(l.ClientName),
			nullable(l.Email), nullable(l.Phone), l.IsLead, l.Engaged, l.Booked,
			nullable(l.Automation), nullable(l.OldUserID), l.CreatedAt)
	}

	q := `INSERT INTO leads
			(id, clinic_id, product_id, client_name, email, phone,
			 lead, engaged, booked, automation, old_user_id, created_at)
		VALUES ` + strings.Join(placeholders, ", ")

	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("bulk insert %d leads: %w", len(leads), err)
	}
	return nil
}

// UpdateLead overwrites the mapped fields of one lead row.
func (r *LeadRepo) UpdateLead(ctx context.Context, id string, l domain.Lead) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE leads
		SET clinic_id = $2, product_id = $3, client_name = $4, email = $5,
		    phone = $6, lead = $7, engaged = $8, booked = $9,
		    automation = $10, old_user_id = $11
		WHERE id = $1
	`, id, l.ClinicID, nullable(l.ProductID), nullable(l.ClientName),
		nullable(l.Email), nullable(l.Phone), l.IsLead, l.Engaged, l.Booked,
		nullable(l.Automation), nullable(l.OldUserID))
	if err != nil {
		return fmt.Errorf("update lead %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update lead %s: no such row", id)
	}
	return nil
}

// DeleteLead removes one lead row.
func (r *LeadRepo) DeleteLead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	return nil
}

// nullable maps empty strings to SQL NULL so completeness queries and the
// COALESCE reads stay symmetrical.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
