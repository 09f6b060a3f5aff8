package leadimport

import (
	"context"

	"github.com/clinichq/admin-api/internal/domain"
)

// Repository defines the data access contract for import runs.
// Implementations must be safe for concurrent use: updates within a batch
// are issued from multiple goroutines.
type Repository interface {
	// ListLeads returns every lead row in the tenant scope, used to build
	// the identity lookup index once per run. An empty scope means the
	// whole store.
	ListLeads(ctx context.Context, scope string) ([]domain.Lead, error)

	// BulkInsertLeads inserts the given rows in one write.
	BulkInsertLeads(ctx context.Context, leads []domain.Lead) error

	// UpdateLead overwrites the mapped fields of the lead with the given id.
	UpdateLead(ctx context.Context, id string, l domain.Lead) error
}
