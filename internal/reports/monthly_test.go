package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/domain"
)

type fakeMonthlyStore struct {
	properties       []domain.Property
	payments         []domain.TptPayment
	landlordsByLevel map[domain.RiskLevel]int
	listingsByLevel  map[domain.RiskLevel]int
	saved            *domain.MonthlyReport
}

func (f *fakeMonthlyStore) ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error) {
	return f.properties, nil
}

func (f *fakeMonthlyStore) ListCompletedPayments(ctx context.Context) ([]domain.TptPayment, error) {
	return f.payments, nil
}

func (f *fakeMonthlyStore) ListLandlordRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.LandlordRiskScore, error) {
	return make([]domain.LandlordRiskScore, f.landlordsByLevel[level]), nil
}

func (f *fakeMonthlyStore) ListListingRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.ListingRiskScore, error) {
	return make([]domain.ListingRiskScore, f.listingsByLevel[level]), nil
}

func (f *fakeMonthlyStore) UpsertMonthlyReport(ctx context.Context, r *domain.MonthlyReport) error {
	f.saved = r
	return nil
}

type fakeHotspotSource struct{ hotspots []domain.Hotspot }

func (f *fakeHotspotSource) Detect(ctx context.Context) ([]domain.Hotspot, error) {
	return f.hotspots, nil
}

type fakeSeasonalSource struct{ patterns *domain.SeasonalPatterns }

func (f *fakeSeasonalSource) Analyse(ctx context.Context, years int) (*domain.SeasonalPatterns, error) {
	return f.patterns, nil
}

func paid(amount float64, year int, month time.Month) domain.TptPayment {
	d := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
	return domain.TptPayment{Amount: amount, Status: domain.PaymentCompleted, PaidDate: &d}
}

func TestMonthlyGenerateAggregates(t *testing.T) {
	fs := &fakeMonthlyStore{
		properties: properties(7, 3),
		payments: []domain.TptPayment{
			paid(5000, 2026, time.June),
			paid(3000, 2026, time.July),
			paid(1000, 2026, time.July),
		},
		landlordsByLevel: map[domain.RiskLevel]int{domain.RiskHigh: 8, domain.RiskCritical: 4},
		listingsByLevel:  map[domain.RiskLevel]int{domain.RiskHigh: 40, domain.RiskCritical: 15},
	}
	hotspots := &fakeHotspotSource{hotspots: []domain.Hotspot{
		{PrimaryCity: "Dakar", UnregisteredCount: 12, EstimatedLostRevenue: 300000},
	}}
	seasonal := &fakeSeasonalSource{patterns: &domain.SeasonalPatterns{PeakMonths: []int{7, 8}}}

	g := NewMonthlyGenerator(fs, hotspots, seasonal)
	g.now = func() time.Time { return time.Date(2026, 8, 1, 4, 0, 0, 0, time.UTC) }

	report, err := g.Generate(context.Background(), 2026, time.July)
	require.NoError(t, err)
	require.NotNil(t, fs.saved)

	assert.Equal(t, "monthly-2026-07", report.ID)
	assert.Equal(t, "2026-07", report.Month)
	assert.Equal(t, 70.0, report.ComplianceRate)
	assert.Equal(t, 4000.0, report.RevenueTotal)
	assert.Equal(t, -20.0, report.RevenueGrowthPct, "4000 against 5000 in June")
	assert.Len(t, report.TopHotspots, 1)
	assert.Equal(t, domain.RiskSummary{
		LandlordsHighRisk: 8, LandlordsCritical: 4,
		ListingsHighRisk: 40, ListingsCritical: 15,
	}, report.RiskSummary)
	assert.NotEmpty(t, report.Summary)
}

func TestMonthlyRecommendationsAllRulesFire(t *testing.T) {
	report := &domain.MonthlyReport{
		ComplianceRate:   60,
		RevenueGrowthPct: -5,
		TopHotspots:      []domain.Hotspot{{PrimaryCity: "Saly"}},
		RiskSummary: domain.RiskSummary{
			LandlordsHighRisk: 9, LandlordsCritical: 3,
			ListingsHighRisk: 45, ListingsCritical: 10,
		},
	}
	recs := monthlyRecommendations(report)
	assert.Len(t, recs, 5)
	assert.Contains(t, recs[2], "Saly")
}

func TestMonthlyRecommendationsQuietMonth(t *testing.T) {
	recs := monthlyRecommendations(&domain.MonthlyReport{ComplianceRate: 90, RevenueGrowthPct: 2})
	assert.Equal(t, []string{"No action required; continue routine monitoring"}, recs)
}

func TestMonthlyDefaultsToCurrentMonth(t *testing.T) {
	fs := &fakeMonthlyStore{properties: properties(1, 0)}
	g := NewMonthlyGenerator(fs, &fakeHotspotSource{}, &fakeSeasonalSource{patterns: &domain.SeasonalPatterns{}})
	g.now = func() time.Time { return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) }

	report, err := g.Generate(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "monthly-2026-08", report.ID)
}
