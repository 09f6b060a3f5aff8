// Package api wires the HTTP surface: dashboard reads, the import webhook
// and pull endpoints, and the dedup trigger.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clinichq/admin-api/internal/archive"
	"github.com/clinichq/admin-api/internal/auth"
	"github.com/clinichq/admin-api/internal/cache"
	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/service/dedup"
	"github.com/clinichq/admin-api/internal/service/leadimport"
)

// LeadReader serves filtered lead rows for the dashboard.
type LeadReader interface {
	ListFiltered(ctx context.Context, f domain.DashboardFilters) ([]domain.Lead, error)
}

// CatalogReader serves clinics, products, and FAQs.
type CatalogReader interface {
	ListClinics(ctx context.Context, ownerID string) ([]domain.Clinic, error)
	ListProducts(ctx context.Context, clinicIDs []string) ([]domain.Product, error)
	ListFAQs(ctx context.Context, clinicIDs []string) ([]domain.FAQ, error)
}

// FinanceReader serves sale and cost rows.
type FinanceReader interface {
	ListSales(ctx context.Context, f domain.DashboardFilters) ([]domain.Sale, error)
	ListCosts(ctx context.Context, f domain.DashboardFilters) ([]domain.Cost, error)
}

// ReservationReader serves both booking representations.
type ReservationReader interface {
	ListReservations(ctx context.Context, f domain.DashboardFilters) ([]domain.Reservation, error)
}

// Importer reconciles external lead records.
type Importer interface {
	Run(ctx context.Context, scope string, records []leadimport.Record) (*leadimport.Result, error)
}

// Deduper removes duplicate leads.
type Deduper interface {
	Run(ctx context.Context, scope string) (*dedup.Result, error)
}

// FeedPuller fetches lead records from the external feed.
type FeedPuller interface {
	FetchLeads(ctx context.Context) ([]leadimport.Record, error)
}

// Server holds every dependency the HTTP handlers use.
type Server struct {
	leads        LeadReader
	catalog      CatalogReader
	finance      FinanceReader
	reservations ReservationReader
	importer     Importer
	deduper      Deduper
	puller       FeedPuller
	cache        *cache.MetricsCache
	archiver     *archive.Archiver
	auth         *auth.Manager
	origins      []string
}

// NewServer creates the API server. puller and archiver may be nil when the
// pull feed or payload archival is not configured.
func NewServer(
	leads LeadReader,
	catalog CatalogReader,
	finance FinanceReader,
	reservations ReservationReader,
	importer Importer,
	deduper Deduper,
	puller FeedPuller,
	metricsCache *cache.MetricsCache,
	archiver *archive.Archiver,
	authManager *auth.Manager,
	allowedOrigins []string,
) *Server {
	return &Server{
		leads:        leads,
		catalog:      catalog,
		finance:      finance,
		reservations: reservations,
		importer:     importer,
		deduper:      deduper,
		puller:       puller,
		cache:        metricsCache,
		archiver:     archiver,
		auth:         authManager,
		origins:      allowedOrigins,
	}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", s.auth.HandleLogin)
		r.Get("/callback", s.auth.HandleCallback)
		r.Get("/logout", s.auth.HandleLogout)
		r.Get("/me", s.auth.HandleUserInfo)
	})

	// The webhook authenticates by shared secret inside the handler, so it
	// sits outside the session/token middleware.
	r.Post("/api/import/leads", s.handleImportWebhook)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Require)

		r.Get("/api/dashboard/metrics", s.handleDashboardMetrics)
		r.Get("/api/clinics", s.handleListClinics)
		r.Get("/api/products", s.handleListProducts)
		r.Get("/api/faqs", s.handleListFAQs)
		r.Get("/api/reservations", s.handleListReservations)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleSuperAdmin))
			r.Post("/api/dedup/run", s.handleDedupRun)
			r.Post("/api/import/pull", s.handleImportPull)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
