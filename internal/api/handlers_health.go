package api

import (
	"context"
	"net/http"
	"time"
)

const storeProbeTimeout = 2 * time.Second

// GET /api/health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	storeStatus := "up"
	probeCtx, cancel := context.WithTimeout(r.Context(), storeProbeTimeout)
	defer cancel()
	if _, err := h.store.CountProperties(probeCtx); err != nil {
		storeStatus = "down"
	}

	running := 0
	jobs := h.jobs.List()
	for _, j := range jobs {
		if j.Running {
			running++
		}
	}

	configured, total := 0, 0
	for _, ok := range h.intel.SourceStatus() {
		total++
		if ok {
			configured++
		}
	}

	status := "healthy"
	if storeStatus == "down" {
		status = "degraded"
	}
	respond(w, started, map[string]any{
		"status":      status,
		"environment": h.environment,
		"version":     h.version,
		"uptime":      time.Since(h.startTime).Round(time.Second).String(),
		"store":       storeStatus,
		"jobs": map[string]int{
			"registered": len(jobs),
			"running":    running,
		},
		"providers": map[string]int{
			"configured": configured,
			"total":      total,
		},
	})
}

// GET /api/info and GET /
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respond(w, started, map[string]any{
		"service":     "compliance-intel",
		"version":     h.version,
		"environment": h.environment,
		"uptime":      time.Since(h.startTime).Round(time.Second).String(),
		"endpoints": []string{
			"/api/analytics/compliance",
			"/api/analytics/revenue",
			"/api/analytics/revenue/forecast",
			"/api/analytics/hotspots",
			"/api/analytics/hotspots/bounds",
			"/api/analytics/seasonal",
			"/api/analytics/demand/predict",
			"/api/risk/landlord/{id}",
			"/api/risk/landlords",
			"/api/risk/listing/{id}",
			"/api/risk/listings/prioritized",
			"/api/risk/area/{city}",
			"/api/risk/areas/ranked",
			"/api/risk/refresh/landlords",
			"/api/risk/refresh/listings",
			"/api/reports/weekly",
			"/api/reports/monthly",
			"/api/reports/enforcement",
			"/api/reports/enforcement/targets",
			"/api/reports/history",
			"/api/intelligence/enrich",
			"/api/intelligence/verify",
			"/api/intelligence/batch-verify",
			"/api/intelligence/phone-lookup",
			"/api/intelligence/email-lookup",
			"/api/intelligence/sanctions-check",
			"/api/intelligence/watchlist-check",
			"/api/intelligence/pep-check",
			"/api/intelligence/interpol/{entityId}",
			"/jobs",
			"/api/health",
			"/api/info",
		},
	})
}
