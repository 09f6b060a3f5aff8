package domain

import "time"

// Clinic is a tenant: a physical practice owned by a dashboard user.
type Clinic struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	ContactName string    `json:"contact_name" db:"contact_name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	Address     string    `json:"address" db:"address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FAQ is a clinic-scoped frequently asked question with a popularity counter.
type FAQ struct {
	ID         string    `json:"id" db:"id"`
	ClinicID   string    `json:"clinic_id" db:"clinic_id"`
	Question   string    `json:"question" db:"question"`
	AskedCount int       `json:"asked_count" db:"asked_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
