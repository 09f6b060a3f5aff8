package domain

import "time"

// ReservationKind tags which underlying table a reservation row came from.
type ReservationKind string

const (
	// ReservationLegacyBooking rows come from the original bookings table,
	// keyed by clinic/product with a free-standing booking time.
	ReservationLegacyBooking ReservationKind = "legacy_booking"
	// ReservationAppointment rows come from the newer appointments table,
	// keyed by the lead that converted.
	ReservationAppointment ReservationKind = "appointment"
)

// Reservation is the normalized shape for the two parallel booking
// representations the system tolerates. Data access reads both tables and
// converts to this one type so the duality never reaches the metrics layer.
type Reservation struct {
	Kind      ReservationKind `json:"kind" db:"kind"`
	ID        string          `json:"id" db:"id"`
	ClinicID  string          `json:"clinic_id" db:"clinic_id"`
	ProductID string          `json:"product_id" db:"product_id"`
	LeadID    string          `json:"lead_id" db:"lead_id"`
	StartsAt  time.Time       `json:"starts_at" db:"starts_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
