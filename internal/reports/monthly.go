package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/setal/compliance-intel/internal/domain"
)

// riskCountLimit bounds the risk-score listings used for the monthly
// risk summary counts.
const riskCountLimit = 1000

// topHotspotLimit caps how many hotspots the monthly report embeds.
const topHotspotLimit = 5

// MonthlyStore is the persistence surface the monthly generator needs.
type MonthlyStore interface {
	ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error)
	ListCompletedPayments(ctx context.Context) ([]domain.TptPayment, error)
	ListLandlordRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.LandlordRiskScore, error)
	ListListingRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.ListingRiskScore, error)
	UpsertMonthlyReport(ctx context.Context, r *domain.MonthlyReport) error
}

// HotspotSource yields the current unregistered-listing clusters.
type HotspotSource interface {
	Detect(ctx context.Context) ([]domain.Hotspot, error)
}

// SeasonalSource yields the seasonal booking profile.
type SeasonalSource interface {
	Analyse(ctx context.Context, years int) (*domain.SeasonalPatterns, error)
}

// MonthlyGenerator assembles and persists the monthly intelligence report.
type MonthlyGenerator struct {
	store    MonthlyStore
	hotspots HotspotSource
	seasonal SeasonalSource
	narrator *Narrator
	now      func() time.Time
}

func NewMonthlyGenerator(s MonthlyStore, hotspots HotspotSource, seasonal SeasonalSource) *MonthlyGenerator {
	return &MonthlyGenerator{
		store:    s,
		hotspots: hotspots,
		seasonal: seasonal,
		narrator: NewNarrator(),
		now:      time.Now,
	}
}

// Generate builds the report for the given calendar month and upserts
// it. A zero year targets the current month.
func (g *MonthlyGenerator) Generate(ctx context.Context, year int, month time.Month) (*domain.MonthlyReport, error) {
	now := g.now().UTC()
	if year == 0 {
		year, month = now.Year(), now.Month()
	}
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthKey := monthStart.Format("2006-01")

	props, err := g.store.ListProperties(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("monthly report: list properties: %w", err)
	}
	registered := 0
	for _, p := range props {
		if p.RegistrationStatus == domain.PropertyRegistered {
			registered++
		}
	}
	complianceRate := 0.0
	if len(props) > 0 {
		complianceRate = round2(float64(registered) / float64(len(props)) * 100)
	}

	payments, err := g.store.ListCompletedPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly report: list payments: %w", err)
	}
	revenueTotal := monthRevenue(payments, monthStart)
	prevRevenue := monthRevenue(payments, monthStart.AddDate(0, -1, 0))
	growthPct := 0.0
	if prevRevenue > 0 {
		growthPct = round2((revenueTotal - prevRevenue) / prevRevenue * 100)
	}

	hotspots, err := g.hotspots.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly report: detect hotspots: %w", err)
	}
	if len(hotspots) > topHotspotLimit {
		hotspots = hotspots[:topHotspotLimit]
	}

	seasonal, err := g.seasonal.Analyse(ctx, 2)
	if err != nil {
		return nil, fmt.Errorf("monthly report: seasonal analysis: %w", err)
	}

	riskSummary, err := g.riskSummary(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.MonthlyReport{
		ID:               "monthly-" + monthKey,
		Month:            monthKey,
		Headline:         fmt.Sprintf("Monthly compliance intelligence report for %s", monthStart.Format("January 2006")),
		ComplianceRate:   complianceRate,
		RevenueTotal:     round2(revenueTotal),
		RevenueGrowthPct: growthPct,
		TopHotspots:      hotspots,
		Seasonal:         seasonal,
		RiskSummary:      riskSummary,
		GeneratedAt:      now,
	}
	report.Alerts = monthlyAlerts(report)
	report.Recommendations = monthlyRecommendations(report)
	report.Metrics = []domain.ReportMetric{
		{Name: "compliance_rate", Value: complianceRate, Unit: "%", Trend: trendOf(0)},
		{Name: "revenue_total", Value: report.RevenueTotal, Unit: "XOF", ChangePct: growthPct, Trend: trendOf(growthPct)},
		{Name: "active_hotspots", Value: float64(len(hotspots)), Trend: trendOf(0)},
		{Name: "high_risk_landlords", Value: float64(riskSummary.LandlordsHighRisk + riskSummary.LandlordsCritical), Trend: trendOf(0)},
		{Name: "high_risk_listings", Value: float64(riskSummary.ListingsHighRisk + riskSummary.ListingsCritical), Trend: trendOf(0)},
	}
	report.Summary = g.narrator.MonthlySummary(report)

	if err := g.store.UpsertMonthlyReport(ctx, report); err != nil {
		return nil, fmt.Errorf("monthly report: upsert: %w", err)
	}
	return report, nil
}

func (g *MonthlyGenerator) riskSummary(ctx context.Context) (domain.RiskSummary, error) {
	var s domain.RiskSummary
	highLandlords, err := g.store.ListLandlordRiskScores(ctx, domain.RiskHigh, riskCountLimit)
	if err != nil {
		return s, fmt.Errorf("monthly report: landlord risk scores: %w", err)
	}
	criticalLandlords, err := g.store.ListLandlordRiskScores(ctx, domain.RiskCritical, riskCountLimit)
	if err != nil {
		return s, fmt.Errorf("monthly report: landlord risk scores: %w", err)
	}
	highListings, err := g.store.ListListingRiskScores(ctx, domain.RiskHigh, riskCountLimit)
	if err != nil {
		return s, fmt.Errorf("monthly report: listing risk scores: %w", err)
	}
	criticalListings, err := g.store.ListListingRiskScores(ctx, domain.RiskCritical, riskCountLimit)
	if err != nil {
		return s, fmt.Errorf("monthly report: listing risk scores: %w", err)
	}
	s.LandlordsHighRisk = len(highLandlords)
	s.LandlordsCritical = len(criticalLandlords)
	s.ListingsHighRisk = len(highListings)
	s.ListingsCritical = len(criticalListings)
	return s, nil
}

func monthRevenue(payments []domain.TptPayment, monthStart time.Time) float64 {
	monthEnd := monthStart.AddDate(0, 1, 0)
	total := 0.0
	for _, p := range payments {
		if p.PaidDate == nil {
			continue
		}
		if !p.PaidDate.Before(monthStart) && p.PaidDate.Before(monthEnd) {
			total += p.Amount
		}
	}
	return total
}

func monthlyAlerts(r *domain.MonthlyReport) []domain.Alert {
	var alerts []domain.Alert
	if r.ComplianceRate < 70 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertCritical,
			Message:  fmt.Sprintf("Compliance rate %.1f%% is below the 70%% threshold", r.ComplianceRate),
		})
	}
	if r.RevenueGrowthPct < 0 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertWarning,
			Message:  fmt.Sprintf("Revenue declined %.1f%% month over month", -r.RevenueGrowthPct),
		})
	}
	if r.RiskSummary.LandlordsCritical > 0 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertWarning,
			Message:  fmt.Sprintf("%d landlords are in the critical risk band", r.RiskSummary.LandlordsCritical),
		})
	}
	return alerts
}

func monthlyRecommendations(r *domain.MonthlyReport) []string {
	var recs []string
	if r.ComplianceRate < 75 {
		recs = append(recs, "Launch a registration campaign to lift the compliance rate above 75%")
	}
	if r.RevenueGrowthPct < 0 {
		recs = append(recs, "Investigate the collections pipeline behind the revenue decline")
	}
	if len(r.TopHotspots) > 0 {
		recs = append(recs, fmt.Sprintf("Focus field enforcement on %s, the largest unregistered-listing hotspot", r.TopHotspots[0].PrimaryCity))
	}
	if r.RiskSummary.LandlordsHighRisk+r.RiskSummary.LandlordsCritical > 10 {
		recs = append(recs, "Place high-risk landlords under enhanced monitoring")
	}
	if r.RiskSummary.ListingsHighRisk+r.RiskSummary.ListingsCritical > 50 {
		recs = append(recs, "Prioritise investigations of high-risk listings")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required; continue routine monitoring")
	}
	return recs
}
