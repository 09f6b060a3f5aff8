package domain

import "time"

// Sale is a clinic+product-scoped revenue row.
type Sale struct {
	ID        string    `json:"id" db:"id"`
	ClinicID  string    `json:"clinic_id" db:"clinic_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Cost is a clinic+product-scoped spend row (ad spend, channel fees).
type Cost struct {
	ID        string    `json:"id" db:"id"`
	ClinicID  string    `json:"clinic_id" db:"clinic_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
