package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinichq/admin-api/internal/domain"
)

func TestEnqueueAssignsIDAndNullsOptionalFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No clinic name or password on a plain welcome mail; both go in as NULL.
	mock.ExpectExec(`INSERT INTO email_notifications`).
		WithArgs(sqlmock.AnyArg(), "new_user", "u1", "a@x.com", "Alice", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewNotificationRepo(db)
	id, err := repo.Enqueue(context.Background(), &domain.EmailNotification{
		EmailType: domain.EmailNewUser,
		UserID:    "u1",
		UserEmail: "a@x.com",
		UserName:  "Alice",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated id must be a UUID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueKeepsCallerID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO email_notifications`).
		WithArgs("n-42", "clinic_added", "u1", "a@x.com", "Alice", "North Vet", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewNotificationRepo(db)
	id, err := repo.Enqueue(context.Background(), &domain.EmailNotification{
		ID:         "n-42",
		EmailType:  domain.EmailClinicAdded,
		UserID:     "u1",
		UserEmail:  "a@x.com",
		UserName:   "Alice",
		ClinicName: "North Vet",
	})
	require.NoError(t, err)
	assert.Equal(t, "n-42", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnprocessedOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE processed = FALSE\s+ORDER BY created_at\s+LIMIT \$1`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email_type", "user_id", "user_email", "user_name",
			"clinic_name", "password", "processed", "created_at",
		}).
			AddRow("n1", "new_user", "u1", "a@x.com", "Alice", "", "tmp-1", false, created).
			AddRow("n2", "clinic_added", "u2", "b@x.com", "Bob", "North Vet", "", false, created.Add(time.Minute)))

	repo := NewNotificationRepo(db)
	rows, err := repo.ListUnprocessed(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.EmailNewUser, rows[0].EmailType)
	assert.Equal(t, "North Vet", rows[1].ClinicName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE email_notifications SET processed = TRUE WHERE id = \$1`).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewNotificationRepo(db)
	require.NoError(t, repo.MarkProcessed(context.Background(), "n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
