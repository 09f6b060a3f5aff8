package leadimport_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/pkg/distlock"
	"github.com/clinichq/admin-api/internal/service/leadimport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory lead repository for unit testing.
type memRepo struct {
	mu      sync.Mutex
	leads   map[string]domain.Lead
	listErr error
	updErr  map[string]error // lead id -> forced update failure
}

func newMemRepo() *memRepo {
	return &memRepo{leads: make(map[string]domain.Lead), updErr: make(map[string]error)}
}

func (m *memRepo) ListLeads(_ context.Context, scope string) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Lead
	for _, l := range m.leads {
		if scope != "" && l.ClinicID != scope {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memRepo) BulkInsertLeads(_ context.Context, leads []domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range leads {
		m.leads[l.ID] = l
	}
	return nil
}

func (m *memRepo) UpdateLead(_ context.Context, id string, l domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updErr[id]; err != nil {
		return err
	}
	if _, ok := m.leads[id]; !ok {
		return fmt.Errorf("lead %s not found", id)
	}
	l.ID = id
	m.leads[id] = l
	return nil
}

var testClinic = uuid.New().String()

func record(name, email, oldID string) leadimport.Record {
	return leadimport.Record{
		Name:      name,
		Email:     email,
		OldUserID: oldID,
		ClinicID:  testClinic,
	}
}

func newService(repo *memRepo) *leadimport.Service {
	// Tiny batches and no meaningful delay keep the tests fast while still
	// exercising the batch boundaries.
	return leadimport.NewService(repo, nil, 2, time.Millisecond)
}

func TestRunImportIdempotence(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	records := []leadimport.Record{
		record("Alice", "alice@x.com", "old-1"),
		record("Bob", "bob@x.com", ""),
		record("Carol", "carol@x.com", "old-3"),
	}

	res, err := svc.Run(context.Background(), testClinic, records)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.NewLeads)
	assert.Equal(t, 0, res.UpdatedLeads)

	// Same payload again: every record matches now, nothing is created.
	res2, err := svc.Run(context.Background(), testClinic, records)
	require.NoError(t, err)
	assert.True(t, res2.Success)
	assert.Equal(t, 0, res2.NewLeads)
	assert.Equal(t, 3, res2.UpdatedLeads)
	assert.Len(t, repo.leads, 3)
}

func TestRunOldUserIDLookupBeatsEmail(t *testing.T) {
	repo := newMemRepo()
	byOld := domain.Lead{ID: "id-old", ClinicID: testClinic, OldUserID: "old-7", Email: "other@x.com"}
	byEmail := domain.Lead{ID: "id-email", ClinicID: testClinic, Email: "shared@x.com"}
	repo.leads[byOld.ID] = byOld
	repo.leads[byEmail.ID] = byEmail

	svc := newService(repo)
	// The record matches id-old via old_user_id AND id-email via email;
	// the legacy-id lookup must win.
	rec := record("Dana", "shared@x.com", "old-7")
	res, err := svc.Run(context.Background(), testClinic, []leadimport.Record{rec})
	require.NoError(t, err)

	assert.Equal(t, 1, res.UpdatedLeads)
	assert.Equal(t, "Dana", repo.leads["id-old"].ClientName)
	assert.Empty(t, repo.leads["id-email"].ClientName)
}

func TestRunBatchPartialFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	records := []leadimport.Record{
		record("R1", "r1@x.com", ""),
		record("R2", "r2@x.com", ""),
		{Name: "R3", Email: "r3@x.com", ClinicID: "not-a-uuid"},
		record("R4", "r4@x.com", ""),
		record("R5", "r5@x.com", ""),
	}

	res, err := svc.Run(context.Background(), testClinic, records)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 4, res.NewLeads)
	require.Len(t, res.Errors, 1)

	var errDetails []leadimport.RecordDetail
	for _, d := range res.Details {
		if d.Status == leadimport.StatusError {
			errDetails = append(errDetails, d)
		}
	}
	require.Len(t, errDetails, 1)
	assert.Equal(t, "R3", errDetails[0].Name)
	assert.Contains(t, errDetails[0].Message, "clinic_id")

	// The other four records were still persisted.
	assert.Len(t, repo.leads, 4)
}

func TestRunValidationRules(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	records := []leadimport.Record{
		{Email: "noname@x.com", ClinicID: testClinic},          // missing name
		{Name: "NoIdentity", ClinicID: testClinic},             // no identity field
		{Name: "NoClinic", Email: "n@x.com"},                   // missing clinic
		{Name: "BadProduct", Email: "b@x.com", ClinicID: testClinic, ProductID: "xyz"},
	}

	res, err := svc.Run(context.Background(), "", records)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.NewLeads)
	assert.Len(t, res.Errors, 4)
}

func TestRunNormalizesAbsentFlags(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	yes := true
	rec := record("Flagged", "f@x.com", "")
	rec.Lead = &yes

	res, err := svc.Run(context.Background(), testClinic, []leadimport.Record{rec})
	require.NoError(t, err)
	require.Equal(t, 1, res.NewLeads)

	for _, l := range repo.leads {
		assert.True(t, l.IsLead)
		assert.False(t, l.Engaged)
		assert.False(t, l.Booked)
	}
}

func TestRunUpdateFailureIsPerRecord(t *testing.T) {
	repo := newMemRepo()
	existing := domain.Lead{ID: "id-1", ClinicID: testClinic, Email: "a@x.com"}
	repo.leads[existing.ID] = existing
	repo.updErr["id-1"] = fmt.Errorf("deadlock detected")

	svc := newService(repo)
	records := []leadimport.Record{
		record("Existing", "a@x.com", ""),
		record("Fresh", "new@x.com", ""),
	}

	res, err := svc.Run(context.Background(), testClinic, records)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.NewLeads)
	assert.Equal(t, 0, res.UpdatedLeads)
	assert.Len(t, res.Errors, 1)
}

// heldLock always reports the lock as taken.
type heldLock struct{}

func (heldLock) Acquire(context.Context) (bool, error) { return false, nil }
func (heldLock) Release(context.Context) error         { return nil }

func TestRunLockedTenant(t *testing.T) {
	repo := newMemRepo()
	svc := leadimport.NewService(repo, func(string) distlock.DistLock { return heldLock{} }, 10, time.Millisecond)

	res, err := svc.Run(context.Background(), testClinic, []leadimport.Record{record("A", "a@x.com", "")})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, leadimport.ErrLocked)
	assert.Empty(t, repo.leads)
}
