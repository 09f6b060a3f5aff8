package api

import (
	"net/http"

	"github.com/clinichq/admin-api/internal/metrics"
	"github.com/clinichq/admin-api/internal/pkg/httputil"
)

// handleDashboardMetrics aggregates per-product and total metrics for the
// requested filter selection. Identical selections within the cache TTL are
// served from Redis.
func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	if report, ok := s.cache.Get(ctx, f); ok {
		httputil.OK(w, report)
		return
	}

	leads, err := s.leads.ListFiltered(ctx, f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	sales, err := s.finance.ListSales(ctx, f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	costs, err := s.finance.ListCosts(ctx, f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	products, err := s.catalog.ListProducts(ctx, f.ClinicIDs)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	report := metrics.Aggregate(leads, sales, costs, products, f)
	s.cache.Put(ctx, f, &report)
	httputil.OK(w, report)
}

func (s *Server) handleListClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := s.catalog.ListClinics(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, clinics)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	products, err := s.catalog.ListProducts(r.Context(), f.ClinicIDs)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, products)
}

func (s *Server) handleListFAQs(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	faqs, err := s.catalog.ListFAQs(r.Context(), f.ClinicIDs)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, faqs)
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	reservations, err := s.reservations.ListReservations(r.Context(), f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, reservations)
}
