package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/setal/compliance-intel/internal/domain"
)

const (
	// One inspector covers ten targets; each target takes two field hours.
	targetsPerInspector = 10
	hoursPerTarget      = 2

	// Share of a target's estimated revenue expected to be recovered.
	recoveryRate = 0.6

	prioritizedListingLimit = 50
	areaRankingLimit        = 20
)

// EnforcementStore is the persistence surface the enforcement
// generator needs.
type EnforcementStore interface {
	ListLandlordRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.LandlordRiskScore, error)
	ListPrioritizedListings(ctx context.Context, limit int) ([]domain.ListingRiskScore, error)
	GetListing(ctx context.Context, id string) (*domain.ScrapedListing, error)
	ListAreaRankings(ctx context.Context, limit int) ([]domain.AreaAssessment, error)
	ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error)
	CountProperties(ctx context.Context) (int, error)
	UpsertEnforcementReport(ctx context.Context, r *domain.EnforcementReport) error
}

// EnforcementGenerator ranks enforcement targets across landlords,
// listings, and areas, and sizes the field resources they need.
type EnforcementGenerator struct {
	store    EnforcementStore
	narrator *Narrator
	now      func() time.Time
}

func NewEnforcementGenerator(s EnforcementStore) *EnforcementGenerator {
	return &EnforcementGenerator{store: s, narrator: NewNarrator(), now: time.Now}
}

// targetPriority combines risk with the tax revenue at stake.
func targetPriority(risk, estRevenue float64) float64 {
	impact := math.Min(100, estRevenue/50000*100)
	return round2(0.6*risk + 0.4*impact)
}

// Generate builds today's enforcement action plan and upserts it.
func (g *EnforcementGenerator) Generate(ctx context.Context) (*domain.EnforcementReport, error) {
	now := g.now().UTC()

	targets, err := g.collectTargets(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Priority > targets[j].Priority
	})

	var outcome float64
	for _, t := range targets {
		outcome += t.EstimatedRevenue * recoveryRate
	}

	complianceRate, err := g.complianceRate(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.EnforcementReport{
		ID:               "enforcement-" + now.Format("2006-01-02"),
		Headline:         fmt.Sprintf("Enforcement action plan for %s", now.Format("2006-01-02")),
		Targets:          targets,
		CityGroups:       groupByCity(targets),
		TotalTargets:     len(targets),
		InspectorsNeeded: inspectorsFor(len(targets)),
		EstimatedHours:   len(targets) * hoursPerTarget,
		EstimatedOutcome: round2(outcome),
		ComplianceRate:   complianceRate,
		GeneratedAt:      now,
	}
	report.Summary = g.narrator.EnforcementSummary(report)

	if err := g.store.UpsertEnforcementReport(ctx, report); err != nil {
		return nil, fmt.Errorf("enforcement report: upsert: %w", err)
	}
	return report, nil
}

func (g *EnforcementGenerator) collectTargets(ctx context.Context) ([]domain.EnforcementTarget, error) {
	var targets []domain.EnforcementTarget

	for _, level := range []domain.RiskLevel{domain.RiskCritical, domain.RiskHigh} {
		landlords, err := g.store.ListLandlordRiskScores(ctx, level, riskCountLimit)
		if err != nil {
			return nil, fmt.Errorf("enforcement report: landlord scores: %w", err)
		}
		for _, l := range landlords {
			risk := 100 - l.OverallScore
			targets = append(targets, domain.EnforcementTarget{
				TargetID:   l.LandlordID,
				TargetType: "landlord",
				RiskScore:  round2(risk),
				Priority:   targetPriority(risk, 0),
				RiskLevel:  l.RiskLevel,
				Reason:     fmt.Sprintf("Landlord in the %s risk band (score %.1f)", l.RiskLevel, l.OverallScore),
			})
		}
	}

	listings, err := g.store.ListPrioritizedListings(ctx, prioritizedListingLimit)
	if err != nil {
		return nil, fmt.Errorf("enforcement report: prioritized listings: %w", err)
	}
	for _, l := range listings {
		if l.RiskLevel != domain.RiskHigh && l.RiskLevel != domain.RiskCritical {
			continue
		}
		risk := 100 - l.OverallScore
		city := ""
		if listing, err := g.store.GetListing(ctx, l.ListingID); err == nil {
			city = listing.City
		}
		targets = append(targets, domain.EnforcementTarget{
			TargetID:         l.ListingID,
			TargetType:       "listing",
			City:             city,
			RiskScore:        round2(risk),
			EstimatedRevenue: l.EstimatedRevenue,
			Priority:         targetPriority(risk, l.EstimatedRevenue),
			RiskLevel:        l.RiskLevel,
			Reason:           fmt.Sprintf("Listing at investigation priority %d with %.0f XOF estimated annual revenue", l.InvestigationPriority, l.EstimatedRevenue),
		})
	}

	areas, err := g.store.ListAreaRankings(ctx, areaRankingLimit)
	if err != nil {
		return nil, fmt.Errorf("enforcement report: area rankings: %w", err)
	}
	for _, a := range areas {
		if a.RiskLevel != domain.RiskHigh && a.RiskLevel != domain.RiskCritical {
			continue
		}
		targets = append(targets, domain.EnforcementTarget{
			TargetID:   a.City,
			TargetType: "area",
			City:       a.City,
			RiskScore:  a.OverallScore,
			Priority:   targetPriority(a.OverallScore, 0),
			RiskLevel:  a.RiskLevel,
			Reason:     fmt.Sprintf("High-risk area with an estimated %d unregistered listings", a.UnregisteredEstimate),
		})
	}

	return targets, nil
}

// complianceRate derives the current rate from the real property
// counts rather than a fixed denominator.
func (g *EnforcementGenerator) complianceRate(ctx context.Context) (float64, error) {
	total, err := g.store.CountProperties(ctx)
	if err != nil {
		return 0, fmt.Errorf("enforcement report: count properties: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	props, err := g.store.ListProperties(ctx, "", "")
	if err != nil {
		return 0, fmt.Errorf("enforcement report: list properties: %w", err)
	}
	registered := 0
	for _, p := range props {
		if p.RegistrationStatus == domain.PropertyRegistered {
			registered++
		}
	}
	return round2(float64(registered) / float64(total) * 100), nil
}

func inspectorsFor(targetCount int) int {
	if targetCount == 0 {
		return 0
	}
	return (targetCount + targetsPerInspector - 1) / targetsPerInspector
}

func groupByCity(targets []domain.EnforcementTarget) []domain.CityTargetGroup {
	byCity := map[string]*domain.CityTargetGroup{}
	for _, t := range targets {
		city := t.City
		if city == "" {
			city = "unattributed"
		}
		group, ok := byCity[city]
		if !ok {
			group = &domain.CityTargetGroup{City: city}
			byCity[city] = group
		}
		group.TargetCount++
		group.EstimatedRevenue += t.EstimatedRevenue
	}
	groups := make([]domain.CityTargetGroup, 0, len(byCity))
	for _, g := range byCity {
		g.InspectorsNeeded = inspectorsFor(g.TargetCount)
		g.EstimatedHours = g.TargetCount * hoursPerTarget
		g.EstimatedRevenue = round2(g.EstimatedRevenue)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TargetCount != groups[j].TargetCount {
			return groups[i].TargetCount > groups[j].TargetCount
		}
		return groups[i].City < groups[j].City
	})
	return groups
}
