package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/domain"
)

type fakeTrendStore struct {
	properties []domain.Property
	payments   []domain.TptPayment
	listings   []domain.ScrapedListing
	trends     []domain.LongTermTrend
	insights   []domain.MonthlyInsight
}

func (f *fakeTrendStore) ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error) {
	return f.properties, nil
}

func (f *fakeTrendStore) ListCompletedPayments(ctx context.Context) ([]domain.TptPayment, error) {
	return f.payments, nil
}

func (f *fakeTrendStore) ListListings(ctx context.Context) ([]domain.ScrapedListing, error) {
	return f.listings, nil
}

func (f *fakeTrendStore) InsertLongTermTrend(ctx context.Context, t *domain.LongTermTrend) error {
	f.trends = append(f.trends, *t)
	return nil
}

func (f *fakeTrendStore) InsertMonthlyInsight(ctx context.Context, in *domain.MonthlyInsight) error {
	f.insights = append(f.insights, *in)
	return nil
}

func TestRecordTrendSnapshotsCurrentPeriod(t *testing.T) {
	fs := &fakeTrendStore{
		properties: properties(8, 2),
		payments: []domain.TptPayment{
			paid(2000, 2026, time.August),
			paid(9000, 2026, time.July), // outside the current period
		},
		listings: make([]domain.ScrapedListing, 42),
	}
	r := NewTrendRecorder(fs)
	r.now = func() time.Time { return time.Date(2026, 8, 24, 4, 0, 0, 0, time.UTC) }

	trend, err := r.RecordTrend(context.Background())
	require.NoError(t, err)
	require.Len(t, fs.trends, 1)

	assert.Equal(t, "2026-08", trend.Period)
	assert.Equal(t, 80.0, trend.ComplianceRate)
	assert.Equal(t, 2000.0, trend.RevenueTotal)
	assert.Equal(t, 42, trend.ListingsTotal)
}

func TestRecordInsightsCoverCategories(t *testing.T) {
	fs := &fakeTrendStore{}
	r := NewTrendRecorder(fs)
	r.now = func() time.Time { return time.Date(2026, 8, 24, 4, 0, 0, 0, time.UTC) }

	report := &domain.MonthlyReport{
		Month:            "2026-07",
		ComplianceRate:   65,
		RevenueGrowthPct: -4,
		TopHotspots:      []domain.Hotspot{{PrimaryCity: "Dakar", UnregisteredCount: 12, EstimatedLostRevenue: 250000}},
		Seasonal:         &domain.SeasonalPatterns{PeakMonths: []int{7, 8}},
	}
	n, err := r.RecordInsights(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	categories := map[string]bool{}
	for _, in := range fs.insights {
		categories[in.Category] = true
		assert.Equal(t, "2026-07", in.Month)
		assert.NotEmpty(t, in.Insight)
	}
	assert.True(t, categories["compliance"])
	assert.True(t, categories["revenue"])
	assert.True(t, categories["hotspots"])
	assert.True(t, categories["seasonality"])
}
