package api

import (
	"net/http"
	"time"
)

// GET /api/analytics/compliance?days=N
func (h *Handlers) GetComplianceAnalytics(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	days := queryInt(r, "days", 30)
	if days <= 0 {
		respondError(w, started, http.StatusBadRequest, "days must be a positive integer")
		return
	}
	snapshot, err := h.compliance.Snapshot(r.Context(), days)
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, snapshot)
}

// GET /api/analytics/revenue
func (h *Handlers) GetRevenueHistory(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	history, err := h.revenue.History(r.Context())
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, map[string]any{"history": history})
}

// GET /api/analytics/revenue/forecast?months=N
func (h *Handlers) GetRevenueForecast(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	months := queryInt(r, "months", 3)
	if months <= 0 || months > 24 {
		respondError(w, started, http.StatusBadRequest, "months must be between 1 and 24")
		return
	}
	forecast, err := h.revenue.Forecast(r.Context(), months)
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, map[string]any{"forecast": forecast})
}

// GET /api/analytics/hotspots?city=&limit=
func (h *Handlers) GetHotspots(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	hotspots, err := h.hotspots.Detect(r.Context())
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	if city := r.URL.Query().Get("city"); city != "" {
		filtered := hotspots[:0]
		for _, hs := range hotspots {
			if hs.PrimaryCity == city {
				filtered = append(filtered, hs)
			}
		}
		hotspots = filtered
	}
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(hotspots) {
		hotspots = hotspots[:limit]
	}
	respond(w, started, map[string]any{"hotspots": hotspots, "count": len(hotspots)})
}

// GET /api/analytics/hotspots/bounds?minLat=&maxLat=&minLon=&maxLon=
func (h *Handlers) GetHotspotsInBounds(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	minLat, ok1 := queryFloat(r, "minLat")
	maxLat, ok2 := queryFloat(r, "maxLat")
	minLon, ok3 := queryFloat(r, "minLon")
	maxLon, ok4 := queryFloat(r, "maxLon")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		respondError(w, started, http.StatusBadRequest, "Missing required bounds parameters")
		return
	}

	hotspots, err := h.hotspots.Detect(r.Context())
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	inBounds := hotspots[:0]
	for _, hs := range hotspots {
		if hs.CentroidLat >= minLat && hs.CentroidLat <= maxLat &&
			hs.CentroidLon >= minLon && hs.CentroidLon <= maxLon {
			inBounds = append(inBounds, hs)
		}
	}
	respond(w, started, map[string]any{"hotspots": inBounds, "count": len(inBounds)})
}

// GET /api/analytics/seasonal?years=N
func (h *Handlers) GetSeasonalPatterns(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	years := queryInt(r, "years", 2)
	patterns, err := h.seasonal.Analyse(r.Context(), years)
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, patterns)
}

// GET /api/analytics/demand/predict?date=YYYY-MM-DD
func (h *Handlers) PredictDemand(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	raw := r.URL.Query().Get("date")
	date := time.Now().UTC()
	if raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, started, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}
	respond(w, started, h.demand.Predict(date))
}
