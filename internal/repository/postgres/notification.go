package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinichq/admin-api/internal/domain"
)

// NotificationRepo manages the outbound email-notification queue table.
type NotificationRepo struct{ db *sql.DB }

// NewNotificationRepo creates a Postgres-backed notification queue.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Enqueue appends one notification row. Called when a user or clinic is
// created; the worker drains it later.
func (r *NotificationRepo) Enqueue(ctx context.Context, n *domain.EmailNotification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_notifications
			(id, email_type, user_id, user_email, user_name, clinic_name, password, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW())
	`, n.ID, n.EmailType, n.UserID, n.UserEmail, n.UserName,
		nullable(n.ClinicName), nullable(n.Password))
	if err != nil {
		return "", fmt.Errorf("enqueue notification: %w", err)
	}
	return n.ID, nil
}

// ListUnprocessed returns up to limit queued rows, oldest first.
func (r *NotificationRepo) ListUnprocessed(ctx context.Context, limit int) ([]domain.EmailNotification, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email_type, user_id, user_email, user_name,
		       COALESCE(clinic_name,''), COALESCE(password,''), processed, created_at
		FROM email_notifications
		WHERE processed = FALSE
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.EmailNotification
	for rows.Next() {
		var n domain.EmailNotification
		if err := rows.Scan(&n.ID, &n.EmailType, &n.UserID, &n.UserEmail, &n.UserName,
			&n.ClinicName, &n.Password, &n.Processed, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkProcessed flags one row as delivered.
func (r *NotificationRepo) MarkProcessed(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE email_notifications SET processed = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark notification %s processed: %w", id, err)
	}
	return nil
}
