package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinichq/admin-api/internal/auth"
	"github.com/clinichq/admin-api/internal/cache"
	"github.com/clinichq/admin-api/internal/config"
	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/metrics"
	"github.com/clinichq/admin-api/internal/service/dedup"
	"github.com/clinichq/admin-api/internal/service/leadimport"
)

type fakeLeads struct {
	leads []domain.Lead
	err   error
}

func (f *fakeLeads) ListFiltered(context.Context, domain.DashboardFilters) ([]domain.Lead, error) {
	return f.leads, f.err
}

type fakeCatalog struct {
	clinics  []domain.Clinic
	products []domain.Product
	faqs     []domain.FAQ
}

func (f *fakeCatalog) ListClinics(context.Context, string) ([]domain.Clinic, error) {
	return f.clinics, nil
}
func (f *fakeCatalog) ListProducts(context.Context, []string) ([]domain.Product, error) {
	return f.products, nil
}
func (f *fakeCatalog) ListFAQs(context.Context, []string) ([]domain.FAQ, error) {
	return f.faqs, nil
}

type fakeFinance struct {
	sales []domain.Sale
	costs []domain.Cost
}

func (f *fakeFinance) ListSales(context.Context, domain.DashboardFilters) ([]domain.Sale, error) {
	return f.sales, nil
}
func (f *fakeFinance) ListCosts(context.Context, domain.DashboardFilters) ([]domain.Cost, error) {
	return f.costs, nil
}

type fakeReservations struct{ rows []domain.Reservation }

func (f *fakeReservations) ListReservations(context.Context, domain.DashboardFilters) ([]domain.Reservation, error) {
	return f.rows, nil
}

type fakeImporter struct {
	result   *leadimport.Result
	err      error
	gotScope string
	gotCount int
}

func (f *fakeImporter) Run(_ context.Context, scope string, records []leadimport.Record) (*leadimport.Result, error) {
	f.gotScope = scope
	f.gotCount = len(records)
	return f.result, f.err
}

type fakeDeduper struct {
	result   *dedup.Result
	err      error
	gotScope string
}

func (f *fakeDeduper) Run(_ context.Context, scope string) (*dedup.Result, error) {
	f.gotScope = scope
	return f.result, f.err
}

type fakePuller struct {
	records []leadimport.Record
	err     error
}

func (f *fakePuller) FetchLeads(context.Context) ([]leadimport.Record, error) {
	return f.records, f.err
}

type serverDeps struct {
	leads    *fakeLeads
	catalog  *fakeCatalog
	finance  *fakeFinance
	importer *fakeImporter
	deduper  *fakeDeduper
	puller   *fakePuller
}

func newTestServer(d serverDeps) http.Handler {
	if d.leads == nil {
		d.leads = &fakeLeads{}
	}
	if d.catalog == nil {
		d.catalog = &fakeCatalog{}
	}
	if d.finance == nil {
		d.finance = &fakeFinance{}
	}
	if d.importer == nil {
		d.importer = &fakeImporter{result: &leadimport.Result{Success: true}}
	}
	if d.deduper == nil {
		d.deduper = &fakeDeduper{result: &dedup.Result{Success: true}}
	}

	authMgr := auth.NewManager(config.AuthConfig{
		CookieName:   "clinichq_session",
		CookieMaxAge: 3600,
		ServiceTokens: map[string]string{
			"tok-super":   auth.RoleSuperAdmin,
			"tok-service": auth.RoleService,
		},
		ImportSecret: "hook-secret",
	}, "http://localhost:8080")
	authMgr.AddSession("sess-admin", &auth.Session{
		UserID: "u1", Email: "owner@x.com", Role: auth.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	var puller FeedPuller
	if d.puller != nil {
		puller = d.puller
	}

	srv := NewServer(
		d.leads, d.catalog, d.finance, &fakeReservations{},
		d.importer, d.deduper, puller,
		cache.NewMetricsCache(nil, time.Minute), nil, authMgr, nil,
	)
	return srv.Router()
}

func asAdmin(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "clinichq_session", Value: "sess-admin"})
	return req
}

func TestHealthIsPublic(t *testing.T) {
	router := newTestServer(serverDeps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDashboardRequiresAuth(t *testing.T) {
	router := newTestServer(serverDeps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardMetricsAggregates(t *testing.T) {
	created := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	deps := serverDeps{
		leads: &fakeLeads{leads: []domain.Lead{
			{ID: "l1", ClinicID: "c1", ProductID: "p1", IsLead: true, Booked: true, CreatedAt: created},
			{ID: "l2", ClinicID: "c1", ProductID: "p1", IsLead: true, Engaged: true, CreatedAt: created},
		}},
		catalog: &fakeCatalog{products: []domain.Product{
			{ID: "p1", ClinicID: "c1", CategoryName: "Spay"},
		}},
		finance: &fakeFinance{
			sales: []domain.Sale{{ID: "s1", ClinicID: "c1", Amount: 500, CreatedAt: created}},
			costs: []domain.Cost{{ID: "x1", ClinicID: "c1", Amount: 100, CreatedAt: created}},
		},
	}
	router := newTestServer(deps)

	req := asAdmin(httptest.NewRequest(http.MethodGet,
		"/api/dashboard/metrics?clinic_ids=c1&months=3&year=2024", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report metrics.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Totals.TotalLeads)
	assert.Equal(t, 1, report.Totals.TotalBookings)
	assert.Equal(t, 500.0, report.Totals.TotalRevenue)
	assert.Equal(t, 100.0, report.Totals.TotalCost)
	require.Len(t, report.Products, 1)
	assert.Equal(t, 2, report.Products[0].LeadCount)
}

func TestDashboardMetricsRejectsBadMonth(t *testing.T) {
	router := newTestServer(serverDeps{})
	req := asAdmin(httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics?months=13", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportWebhookSecretPath(t *testing.T) {
	importer := &fakeImporter{result: &leadimport.Result{Success: true, NewLeads: 1}}
	router := newTestServer(serverDeps{importer: importer})

	body := `{"webhookSecret":"hook-secret","clinicId":"c1",
		"airtableData":[{"name":"Alice","email":"a@x.com","clinic_id":"3b9e4a6e-8df0-4f3a-9a3e-111111111111"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", importer.gotScope)
	assert.Equal(t, 1, importer.gotCount)
}

func TestImportWebhookWrongSecret(t *testing.T) {
	router := newTestServer(serverDeps{})
	body := `{"webhookSecret":"nope","airtableData":[{"name":"A"}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImportWebhookTokenPath(t *testing.T) {
	router := newTestServer(serverDeps{})
	body := `{"airtableData":[{"name":"A"}]}`

	// No credentials at all.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A lesser service token is not enough.
	req := httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok-service")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok-super")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportWebhookMalformedJSON(t *testing.T) {
	router := newTestServer(serverDeps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportWebhookEmptyData(t *testing.T) {
	router := newTestServer(serverDeps{})
	body := `{"webhookSecret":"hook-secret","airtableData":[]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportWebhookLockContention(t *testing.T) {
	router := newTestServer(serverDeps{importer: &fakeImporter{err: leadimport.ErrLocked}})
	body := `{"webhookSecret":"hook-secret","airtableData":[{"name":"A"}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestImportPartialFailureIsStill200(t *testing.T) {
	importer := &fakeImporter{result: &leadimport.Result{
		Success:  false,
		NewLeads: 1,
		Errors:   []string{"Bob: malformed clinic_id \"zzz\""},
	}}
	router := newTestServer(serverDeps{importer: importer})

	body := `{"webhookSecret":"hook-secret","airtableData":[{"name":"A"},{"name":"Bob"}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var result leadimport.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 1)
}

func TestDedupRunRequiresSuperAdmin(t *testing.T) {
	router := newTestServer(serverDeps{})

	// Dashboard admins cannot trigger dedup.
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/api/dedup/run", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/dedup/run", nil)
	req.Header.Set("Authorization", "Bearer tok-super")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDedupRunScopedToClinic(t *testing.T) {
	deduper := &fakeDeduper{result: &dedup.Result{Success: true}}
	router := newTestServer(serverDeps{deduper: deduper})

	req := httptest.NewRequest(http.MethodPost, "/api/dedup/run", strings.NewReader(`{"clinicId":"c7"}`))
	req.Header.Set("Authorization", "Bearer tok-super")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c7", deduper.gotScope)
}

func TestDedupRunLockContention(t *testing.T) {
	router := newTestServer(serverDeps{deduper: &fakeDeduper{err: dedup.ErrLocked}})
	req := httptest.NewRequest(http.MethodPost, "/api/dedup/run", nil)
	req.Header.Set("Authorization", "Bearer tok-super")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestImportPullUnconfigured(t *testing.T) {
	router := newTestServer(serverDeps{})
	req := httptest.NewRequest(http.MethodPost, "/api/import/pull", nil)
	req.Header.Set("Authorization", "Bearer tok-super")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportPullRunsFeed(t *testing.T) {
	importer := &fakeImporter{result: &leadimport.Result{Success: true, NewLeads: 2}}
	puller := &fakePuller{records: []leadimport.Record{{Name: "A"}, {Name: "B"}}}
	router := newTestServer(serverDeps{importer: importer, puller: puller})

	req := httptest.NewRequest(http.MethodPost, "/api/import/pull", nil)
	req.Header.Set("Authorization", "Bearer tok-super")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, importer.gotCount)
}

func TestClinicsEndpoint(t *testing.T) {
	router := newTestServer(serverDeps{catalog: &fakeCatalog{clinics: []domain.Clinic{
		{ID: "c1", Name: "North Vet"},
	}}})

	req := asAdmin(httptest.NewRequest(http.MethodGet, "/api/clinics", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var clinics []domain.Clinic
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clinics))
	require.Len(t, clinics, 1)
	assert.Equal(t, "North Vet", clinics[0].Name)
}
