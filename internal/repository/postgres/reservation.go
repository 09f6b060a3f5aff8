package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/clinichq/admin-api/internal/domain"
)

// ReservationRepo reads the two parallel booking representations and
// normalizes them to one shape. The legacy bookings table is keyed by
// clinic/product with a free-standing booking time; the newer appointments
// table is keyed by lead. Both feed the same dashboard view.
type ReservationRepo struct{ db *sql.DB }

// NewReservationRepo creates a Postgres-backed reservation repository.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ListReservations returns both booking kinds for the given clinics (all
// clinics when empty), ordered by start time. An optional time sub-range
// restricts on the reservation start.
func (r *ReservationRepo) ListReservations(ctx context.Context, f domain.DashboardFilters) ([]domain.Reservation, error) {
	q := `
		SELECT 'legacy_booking' AS kind, id, COALESCE(clinic_id,''), COALESCE(product_id,''),
		       '' AS lead_id, booking_time AS starts_at, created_at
		FROM bookings
		WHERE ($1::text[] IS NULL OR clinic_id = ANY($1))
		  AND ($2::timestamptz IS NULL OR booking_time >= $2)
		  AND ($3::timestamptz IS NULL OR booking_time <= $3)
		UNION ALL
		SELECT 'appointment' AS kind, a.id, COALESCE(l.clinic_id,''), COALESCE(l.product_id,''),
		       a.lead_id, a.starts_at, a.created_at
		FROM appointments a
		LEFT JOIN leads l ON l.id = a.lead_id
		WHERE ($1::text[] IS NULL OR l.clinic_id = ANY($1))
		  AND ($2::timestamptz IS NULL OR a.starts_at >= $2)
		  AND ($3::timestamptz IS NULL OR a.starts_at <= $3)
		ORDER BY starts_at`

	var clinicArg interface{}
	if len(f.ClinicIDs) > 0 {
		clinicArg = pq.Array(f.ClinicIDs)
	}
	var fromArg, toArg interface{}
	if f.BookingFrom != nil {
		fromArg = *f.BookingFrom
	}
	if f.BookingTo != nil {
		toArg = *f.BookingTo
	}

	rows, err := r.db.QueryContext(ctx, q, clinicArg, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.Kind, &res.ID, &res.ClinicID, &res.ProductID,
			&res.LeadID, &res.StartsAt, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
