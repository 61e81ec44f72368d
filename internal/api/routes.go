package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router. Development mode enables a
// permissive CORS policy for local front-end work.
func SetupRoutes(h *Handlers, development bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	corsOptions := cors.Options{
		AllowedOrigins: []string{"https://compliance.setal.sn"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}
	if development {
		corsOptions.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOptions))

	r.Get("/", h.Info)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)
		r.Get("/info", h.Info)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/compliance", h.GetComplianceAnalytics)
			r.Get("/revenue", h.GetRevenueHistory)
			r.Get("/revenue/forecast", h.GetRevenueForecast)
			r.Get("/hotspots", h.GetHotspots)
			r.Get("/hotspots/bounds", h.GetHotspotsInBounds)
			r.Get("/seasonal", h.GetSeasonalPatterns)
			r.Get("/demand/predict", h.PredictDemand)
		})

		r.Route("/risk", func(r chi.Router) {
			r.Get("/landlord/{id}", h.GetLandlordRisk)
			r.Get("/landlords", h.ListLandlordRisks)
			r.Get("/listing/{id}", h.GetListingRisk)
			r.Get("/listings/prioritized", h.ListPrioritizedListings)
			r.Get("/area/{city}", h.GetAreaRisk)
			r.Get("/areas/ranked", h.ListRankedAreas)
			r.Post("/refresh/landlords", h.RefreshLandlordRisks)
			r.Post("/refresh/listings", h.RefreshListingRisks)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/weekly", h.GetWeeklyReport)
			r.Get("/weekly/{id}", h.GetWeeklyReportByID)
			r.Get("/monthly", h.GetMonthlyReport)
			r.Get("/enforcement", h.GetEnforcementReport)
			r.Get("/enforcement/targets", h.GetEnforcementTargets)
			r.Get("/history", h.GetReportHistory)
		})

		r.Route("/intelligence", func(r chi.Router) {
			r.Post("/enrich", h.Enrich)
			r.Post("/verify", h.Verify)
			r.Post("/batch-verify", h.BatchVerify)
			r.Post("/phone-lookup", h.PhoneLookup)
			r.Post("/email-lookup", h.EmailLookup)
			r.Post("/sanctions-check", h.SanctionsCheck)
			r.Post("/watchlist-check", h.WatchlistCheck)
			r.Post("/pep-check", h.PEPCheck)
			r.Get("/interpol/{entityId}", h.GetInterpolNotice)
		})
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.ListJobs)
		r.Post("/{name}/trigger", h.TriggerJob)
		r.Post("/{name}/start", h.StartJob)
		r.Post("/{name}/stop", h.StopJob)
	})

	return r
}
