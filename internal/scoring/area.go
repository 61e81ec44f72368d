package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

// AreaStore is the slice of the query layer the area assessor needs.
type AreaStore interface {
	ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error)
	ListListingsByCity(ctx context.Context, city string) ([]domain.ScrapedListing, error)
	ListEnforcementActions(ctx context.Context, city string, since time.Time) ([]domain.EnforcementAction, error)
}

// AreaAssessor computes city and neighborhood compliance assessments.
// Unlike the entity scorers, the area overall score is a risk score:
// higher means worse.
type AreaAssessor struct {
	store   AreaStore
	weights config.AreaWeights
	levels  config.ScoringConfig
	now     func() time.Time
}

// NewAreaAssessor creates an area assessor.
func NewAreaAssessor(store AreaStore, cfg config.ScoringConfig) *AreaAssessor {
	return &AreaAssessor{store: store, weights: cfg.Area, levels: cfg, now: time.Now}
}

// Assess computes the risk assessment for a city, optionally narrowed
// to one neighborhood.
func (a *AreaAssessor) Assess(ctx context.Context, city, neighborhood string) (*domain.AreaAssessment, error) {
	properties, err := a.store.ListProperties(ctx, city, neighborhood)
	if err != nil {
		return nil, fmt.Errorf("assess area %s: %w", city, err)
	}
	listings, err := a.store.ListListingsByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("assess area %s: %w", city, err)
	}
	if neighborhood != "" {
		filtered := listings[:0]
		for _, l := range listings {
			if l.Neighborhood == neighborhood {
				filtered = append(filtered, l)
			}
		}
		listings = filtered
	}

	now := a.now().UTC()
	actions, err := a.store.ListEnforcementActions(ctx, city, now.AddDate(0, -6, 0))
	if err != nil {
		return nil, fmt.Errorf("assess area %s: %w", city, err)
	}

	registered := 0
	for _, p := range properties {
		if p.RegistrationStatus == domain.PropertyRegistered {
			registered++
		}
	}
	complianceRate := 0.0
	if len(properties) > 0 {
		complianceRate = round2(float64(registered) / float64(len(properties)) * 100)
	}

	var unmatched []domain.ScrapedListing
	unmatchedThreeMonthsAgo := 0
	lostRevenue := 0.0
	cutoff := now.AddDate(0, -3, 0)
	for i := range listings {
		l := &listings[i]
		if l.MatchedRegistration {
			continue
		}
		unmatched = append(unmatched, *l)
		lostRevenue += l.EstimatedAnnualRevenue()
		if !l.FirstScrapedAt.After(cutoff) {
			unmatchedThreeMonthsAgo++
		}
	}

	factors := []domain.RiskFactor{
		{
			Name:        "compliance_rate",
			Weight:      a.weights.ComplianceRate,
			Score:       complianceRate,
			Description: fmt.Sprintf("%d of %d properties registered", registered, len(properties)),
		},
		{
			Name:        "unregistered_density",
			Weight:      a.weights.UnregisteredDensity,
			Score:       scoreUnregisteredDensity(len(unmatched), len(properties)),
			Description: fmt.Sprintf("%d unmatched listings against %d known properties", len(unmatched), len(properties)),
		},
		{
			Name:        "revenue_impact",
			Weight:      a.weights.RevenueImpact,
			Score:       scoreRevenueImpact(lostRevenue),
			Description: fmt.Sprintf("Estimated untaxed revenue %.0f per year", lostRevenue),
		},
		{
			Name:        "enforcement_history",
			Weight:      a.weights.EnforcementHistory,
			Score:       scoreEnforcementHistory(actions),
			Description: fmt.Sprintf("%d enforcement actions in the last 6 months", len(actions)),
		},
		{
			Name:        "growth_trend",
			Weight:      a.weights.GrowthTrend,
			Score:       scoreGrowthTrend(len(unmatched), unmatchedThreeMonthsAgo),
			Description: "Change in unmatched listings over 3 months",
		},
	}

	goodness := 0.0
	for _, f := range factors {
		goodness += f.Weight * f.Score
	}
	overall := round2(100 - goodness)
	priority := math.Min(100, overall+math.Min(20, float64(len(unmatched))/5))

	assessment := &domain.AreaAssessment{
		City:                 city,
		Neighborhood:         neighborhood,
		OverallScore:         overall,
		RiskLevel:            invertedRiskLevel(a.levels, overall),
		ComplianceRate:       complianceRate,
		UnregisteredEstimate: len(unmatched),
		EnforcementPriority:  round2(priority),
		Factors:              factors,
		Trends:               complianceTrends(properties, now),
		UpdatedAt:            now,
	}
	assessment.Recommendations = areaRecommendations(assessment)
	return assessment, nil
}

func scoreUnregisteredDensity(unmatched, totalProperties int) float64 {
	ratio := float64(unmatched) / math.Max(1, float64(totalProperties))
	switch {
	case ratio >= 0.5:
		return 10
	case ratio >= 0.3:
		return 30
	case ratio >= 0.15:
		return 50
	case ratio >= 0.05:
		return 70
	default:
		return 90
	}
}

func scoreRevenueImpact(lostRevenue float64) float64 {
	switch {
	case lostRevenue >= 500000:
		return 10
	case lostRevenue >= 200000:
		return 30
	case lostRevenue >= 100000:
		return 50
	case lostRevenue >= 25000:
		return 70
	default:
		return 90
	}
}

func scoreEnforcementHistory(actions []domain.EnforcementAction) float64 {
	if len(actions) == 0 {
		return 50
	}
	resolved := 0
	for _, act := range actions {
		if act.Status == "completed" || act.Outcome == "resolved" {
			resolved++
		}
	}
	ratio := float64(resolved) / float64(len(actions))
	switch {
	case ratio >= 0.7:
		return 85
	case ratio >= 0.4:
		return 65
	default:
		return 40
	}
}

func scoreGrowthTrend(current, threeMonthsAgo int) float64 {
	growth := float64(current-threeMonthsAgo) / math.Max(1, float64(threeMonthsAgo))
	switch {
	case growth >= 0.5:
		return 10
	case growth >= 0.25:
		return 30
	case growth >= 0.1:
		return 50
	case growth > 0:
		return 70
	default:
		return 90
	}
}

// complianceTrends reconstructs the compliance rate at the end of each
// of the previous six months from property creation dates. Properties
// created after a month's end did not exist in that month's denominator.
func complianceTrends(properties []domain.Property, now time.Time) []domain.AreaTrend {
	trends := make([]domain.AreaTrend, 0, 6)
	for i := 5; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)
		total, registered := 0, 0
		for _, p := range properties {
			if p.CreatedAt.Before(monthEnd) {
				total++
				if p.RegistrationStatus == domain.PropertyRegistered {
					registered++
				}
			}
		}
		rate := 0.0
		if total > 0 {
			rate = round2(float64(registered) / float64(total) * 100)
		}
		trends = append(trends, domain.AreaTrend{
			Month:          monthStart.Format("2006-01"),
			ComplianceRate: rate,
		})
	}
	return trends
}

func areaRecommendations(a *domain.AreaAssessment) []string {
	var recs []string
	if a.ComplianceRate < 70 {
		recs = append(recs, fmt.Sprintf("Run a registration outreach campaign in %s", a.City))
	}
	if a.UnregisteredEstimate >= 20 {
		recs = append(recs, "Allocate a dedicated inspection team for unmatched listings")
	}
	switch a.RiskLevel {
	case domain.RiskCritical:
		recs = append(recs, "Escalate to the enforcement directorate; area exceeds critical thresholds")
	case domain.RiskHigh:
		recs = append(recs, "Schedule monthly compliance sweeps")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required; continue routine monitoring")
	}
	return recs
}
