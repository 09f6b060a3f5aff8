package domain

import "time"

// EmailType selects which template a queued notification renders with.
type EmailType string

const (
	EmailNewUser     EmailType = "new_user"
	EmailClinicAdded EmailType = "clinic_added"
)

// EmailNotification is a row in the outbound notification queue. Rows are
// appended when a user or clinic is created and drained by the worker, which
// renders the template for EmailType, sends, and marks Processed. Delivery is
// at-least-once; a failing row is retried on the next drain pass and never
// blocks the rest of the queue.
type EmailNotification struct {
	ID         string    `json:"id" db:"id"`
	EmailType  EmailType `json:"email_type" db:"email_type"`
	UserID     string    `json:"user_id" db:"user_id"`
	UserEmail  string    `json:"user_email" db:"user_email"`
	UserName   string    `json:"user_name" db:"user_name"`
	ClinicName string    `json:"clinic_name" db:"clinic_name"`
	Password   string    `json:"password" db:"password"`
	Processed  bool      `json:"processed" db:"processed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
