package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/clinichq/admin-api/internal/domain"
)

// CatalogRepo reads clinics, products, and FAQs for the dashboard.
type CatalogRepo struct{ db *sql.DB }

// NewCatalogRepo creates a Postgres-backed catalog repository.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// ListClinics returns all clinics, or only those owned by ownerID when set.
func (r *CatalogRepo) ListClinics(ctx context.Context, ownerID string) ([]domain.Clinic, error) {
	q := `SELECT id, name, owner_id, COALESCE(contact_name,''), COALESCE(email,''),
	             COALESCE(phone,''), COALESCE(address,''), created_at, updated_at
	      FROM clinics`
	var args []interface{}
	if ownerID != "" {
		q += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	q += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}
	defer rows.Close()

	var out []domain.Clinic
	for rows.Next() {
		var c domain.Clinic
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.ContactName, &c.Email,
			&c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan clinic: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProducts returns product descriptors, restricted to the given clinics
// when the set is non-empty. Legacy ids and automation codes come back as
// arrays so the matcher needs no further joins.
func (r *CatalogRepo) ListProducts(ctx context.Context, clinicIDs []string) ([]domain.Product, error) {
	q := `SELECT id, clinic_id, category_name, price, COALESCE(month, 0),
	             COALESCE(legacy_ids, '{}'), COALESCE(automation_codes, '{}'),
	             created_at, updated_at
	      FROM products`
	var args []interface{}
	if len(clinicIDs) > 0 {
		q += ` WHERE clinic_id = ANY($1)`
		args = append(args, pq.Array(clinicIDs))
	}
	q += ` ORDER BY clinic_id, category_name, month`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.ClinicID, &p.CategoryName, &p.Price, &p.Month,
			pq.Array(&p.LegacyIDs), pq.Array(&p.AutomationCodes),
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListFAQs returns FAQs for the given clinics (all clinics when empty),
// most-asked first.
func (r *CatalogRepo) ListFAQs(ctx context.Context, clinicIDs []string) ([]domain.FAQ, error) {
	q := `SELECT id, clinic_id, question, asked_count, created_at FROM faqs`
	var args []interface{}
	if len(clinicIDs) > 0 {
		q += ` WHERE clinic_id = ANY($1)`
		args = append(args, pq.Array(clinicIDs))
	}
	q += ` ORDER BY asked_count DESC, question`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer rows.Close()

	var out []domain.FAQ
	for rows.Next() {
		var f domain.FAQ
		if err := rows.Scan(&f.ID, &f.ClinicID, &f.Question, &f.AskedCount, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
