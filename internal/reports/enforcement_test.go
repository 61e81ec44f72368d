package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/domain"
	"github.com/setal/compliance-intel/internal/store"
)

type fakeEnforcementStore struct {
	landlordsByLevel map[domain.RiskLevel][]domain.LandlordRiskScore
	prioritized      []domain.ListingRiskScore
	listings         map[string]*domain.ScrapedListing
	areas            []domain.AreaAssessment
	properties       []domain.Property
	propertyCount    int
	saved            *domain.EnforcementReport
}

func (f *fakeEnforcementStore) ListLandlordRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.LandlordRiskScore, error) {
	return f.landlordsByLevel[level], nil
}

func (f *fakeEnforcementStore) ListPrioritizedListings(ctx context.Context, limit int) ([]domain.ListingRiskScore, error) {
	return f.prioritized, nil
}

func (f *fakeEnforcementStore) GetListing(ctx context.Context, id string) (*domain.ScrapedListing, error) {
	if l, ok := f.listings[id]; ok {
		return l, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeEnforcementStore) ListAreaRankings(ctx context.Context, limit int) ([]domain.AreaAssessment, error) {
	return f.areas, nil
}

func (f *fakeEnforcementStore) ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error) {
	return f.properties, nil
}

func (f *fakeEnforcementStore) CountProperties(ctx context.Context) (int, error) {
	return f.propertyCount, nil
}

func (f *fakeEnforcementStore) UpsertEnforcementReport(ctx context.Context, r *domain.EnforcementReport) error {
	f.saved = r
	return nil
}

func TestTargetPriority(t *testing.T) {
	// Revenue impact saturates at 50k XOF estimated revenue.
	assert.Equal(t, 79.0, targetPriority(65, 120000))
	assert.Equal(t, 42.0, targetPriority(70, 0))
	assert.InDelta(t, 0.6*50+0.4*40, targetPriority(50, 20000), 0.01)
}

func TestEnforcementGenerate(t *testing.T) {
	fs := &fakeEnforcementStore{
		landlordsByLevel: map[domain.RiskLevel][]domain.LandlordRiskScore{
			domain.RiskCritical: {
				{LandlordID: "ll-1", OverallScore: 30, RiskLevel: domain.RiskCritical},
			},
		},
		prioritized: []domain.ListingRiskScore{
			{ListingID: "li-1", OverallScore: 35, RiskLevel: domain.RiskHigh,
				InvestigationPriority: 81, EstimatedRevenue: 120000},
			{ListingID: "li-2", OverallScore: 75, RiskLevel: domain.RiskLow},
		},
		listings: map[string]*domain.ScrapedListing{
			"li-1": {ID: "li-1", City: "Dakar"},
		},
		areas: []domain.AreaAssessment{
			{City: "Saly", OverallScore: 75, RiskLevel: domain.RiskHigh, UnregisteredEstimate: 40},
			{City: "Thies", OverallScore: 35, RiskLevel: domain.RiskLow},
		},
		properties:    properties(2, 2),
		propertyCount: 4,
	}
	g := NewEnforcementGenerator(fs)
	g.now = func() time.Time { return time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC) }

	report, err := g.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, fs.saved)

	assert.Equal(t, "enforcement-2026-08-24", report.ID)
	require.Equal(t, 3, report.TotalTargets, "low-risk entries are excluded")

	// The revenue-heavy listing outranks the pure-risk targets.
	assert.Equal(t, "li-1", report.Targets[0].TargetID)
	assert.Equal(t, 79.0, report.Targets[0].Priority)
	assert.Equal(t, "Dakar", report.Targets[0].City)

	assert.Equal(t, 1, report.InspectorsNeeded)
	assert.Equal(t, 6, report.EstimatedHours)
	assert.Equal(t, 72000.0, report.EstimatedOutcome)
	assert.Equal(t, 50.0, report.ComplianceRate)
	assert.NotEmpty(t, report.Summary)

	cities := map[string]domain.CityTargetGroup{}
	for _, g := range report.CityGroups {
		cities[g.City] = g
	}
	assert.Equal(t, 120000.0, cities["Dakar"].EstimatedRevenue)
	assert.Equal(t, 1, cities["Saly"].TargetCount)
	assert.Equal(t, 1, cities["unattributed"].TargetCount, "landlords carry no city")
}

func TestInspectorsFor(t *testing.T) {
	assert.Equal(t, 0, inspectorsFor(0))
	assert.Equal(t, 1, inspectorsFor(10))
	assert.Equal(t, 2, inspectorsFor(11))
}
