// Package api exposes the HTTP surface: analytics, risk, reports,
// intelligence, and job management endpoints.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/setal/compliance-intel/internal/analytics"
	"github.com/setal/compliance-intel/internal/domain"
	"github.com/setal/compliance-intel/internal/enrichment"
	"github.com/setal/compliance-intel/internal/scheduler"
	"github.com/setal/compliance-intel/internal/store"
)

// Store is the read surface the handlers need from persistence.
type Store interface {
	CountProperties(ctx context.Context) (int, error)
	ListLandlordRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.LandlordRiskScore, error)
	ListPrioritizedListings(ctx context.Context, limit int) ([]domain.ListingRiskScore, error)
	ListAreaRankings(ctx context.Context, limit int) ([]domain.AreaAssessment, error)
	GetWeeklyReport(ctx context.Context, id string) (*domain.WeeklyReport, error)
	GetLatestWeeklyReport(ctx context.Context) (*domain.WeeklyReport, error)
	GetMonthlyReport(ctx context.Context, id string) (*domain.MonthlyReport, error)
	GetLatestMonthlyReport(ctx context.Context) (*domain.MonthlyReport, error)
	GetLatestEnforcementReport(ctx context.Context) (*domain.EnforcementReport, error)
	ListReportHistory(ctx context.Context, reportType string, limit int) ([]store.ReportSummary, error)
}

// LandlordScorer computes a landlord risk score on demand.
type LandlordScorer interface {
	Score(ctx context.Context, landlordID string) (*domain.LandlordRiskScore, error)
}

// ListingScorer computes a listing risk score on demand.
type ListingScorer interface {
	Score(ctx context.Context, listingID string) (*domain.ListingRiskScore, error)
}

// AreaAssessor computes an area assessment on demand.
type AreaAssessor interface {
	Assess(ctx context.Context, city, neighborhood string) (*domain.AreaAssessment, error)
}

// ComplianceSource serves the compliance analytics endpoint.
type ComplianceSource interface {
	Snapshot(ctx context.Context, windowDays int) (*analytics.ComplianceSnapshot, error)
}

// RevenueSource serves the revenue analytics endpoints.
type RevenueSource interface {
	History(ctx context.Context) ([]analytics.MonthlyTotal, error)
	Forecast(ctx context.Context, horizon int) ([]domain.RevenueForecast, error)
}

// HotspotSource serves the hotspot endpoints.
type HotspotSource interface {
	Detect(ctx context.Context) ([]domain.Hotspot, error)
}

// SeasonalSource serves the seasonal analytics endpoint.
type SeasonalSource interface {
	Analyse(ctx context.Context, years int) (*domain.SeasonalPatterns, error)
}

// DemandSource serves the demand prediction endpoint.
type DemandSource interface {
	Predict(date time.Time) analytics.DemandPrediction
}

// WeeklyReports regenerates the weekly report on demand.
type WeeklyReports interface {
	Generate(ctx context.Context) (*domain.WeeklyReport, error)
}

// MonthlyReports regenerates the monthly report on demand.
type MonthlyReports interface {
	Generate(ctx context.Context, year int, month time.Month) (*domain.MonthlyReport, error)
}

// EnforcementReports regenerates the enforcement report on demand.
type EnforcementReports interface {
	Generate(ctx context.Context) (*domain.EnforcementReport, error)
}

// JobControl is the scheduler surface behind the /jobs endpoints.
type JobControl interface {
	List() []scheduler.JobInfo
	Trigger(ctx context.Context, name string) (*domain.JobResult, error)
	StartJob(name string) error
	StopJob(name string) error
}

// RiskRefresher runs the bulk rescoring pipelines on demand.
type RiskRefresher interface {
	RefreshLandlords(ctx context.Context) *domain.JobResult
	RefreshListings(ctx context.Context) *domain.JobResult
}

// Handlers carries every endpoint's dependencies.
type Handlers struct {
	store       Store
	landlords   LandlordScorer
	listings    ListingScorer
	areas       AreaAssessor
	compliance  ComplianceSource
	revenue     RevenueSource
	hotspots    HotspotSource
	seasonal    SeasonalSource
	demand      DemandSource
	weekly      WeeklyReports
	monthly     MonthlyReports
	enforcement EnforcementReports
	jobs        JobControl
	refresher   RiskRefresher
	intel       *enrichment.Orchestrator

	environment string
	version     string
	startTime   time.Time
}

// HandlerDeps carries the Handlers' collaborators.
type HandlerDeps struct {
	Store       Store
	Landlords   LandlordScorer
	Listings    ListingScorer
	Areas       AreaAssessor
	Compliance  ComplianceSource
	Revenue     RevenueSource
	Hotspots    HotspotSource
	Seasonal    SeasonalSource
	Demand      DemandSource
	Weekly      WeeklyReports
	Monthly     MonthlyReports
	Enforcement EnforcementReports
	Jobs        JobControl
	Refresher   RiskRefresher
	Intel       *enrichment.Orchestrator
	Environment string
	Version     string
}

// NewHandlers creates the handler set.
func NewHandlers(deps HandlerDeps) *Handlers {
	return &Handlers{
		store:       deps.Store,
		landlords:   deps.Landlords,
		listings:    deps.Listings,
		areas:       deps.Areas,
		compliance:  deps.Compliance,
		revenue:     deps.Revenue,
		hotspots:    deps.Hotspots,
		seasonal:    deps.Seasonal,
		demand:      deps.Demand,
		weekly:      deps.Weekly,
		monthly:     deps.Monthly,
		enforcement: deps.Enforcement,
		jobs:        deps.Jobs,
		refresher:   deps.Refresher,
		intel:       deps.Intel,
		environment: deps.Environment,
		version:     deps.Version,
		startTime:   time.Now(),
	}
}

// queryInt reads an integer query parameter, falling back to def when
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryFloat(r *http.Request, name string) (float64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
