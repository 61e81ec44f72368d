package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/domain"
	"github.com/setal/compliance-intel/internal/store"
)

type fakeListingStore struct {
	listing  *domain.ScrapedListing
	siblings []domain.ScrapedListing
	area     *domain.AreaAssessment
}

func (f *fakeListingStore) GetListing(ctx context.Context, id string) (*domain.ScrapedListing, error) {
	return f.listing, nil
}

func (f *fakeListingStore) ListListingsByHost(ctx context.Context, hostID string) ([]domain.ScrapedListing, error) {
	return f.siblings, nil
}

func (f *fakeListingStore) GetAreaRanking(ctx context.Context, city string) (*domain.AreaAssessment, error) {
	if f.area == nil {
		return nil, store.ErrNotFound
	}
	return f.area, nil
}

func listingAt(price float64, reviews int, firstScraped time.Time, matched bool) *domain.ScrapedListing {
	return &domain.ScrapedListing{
		ID:                  "li-1",
		City:                "Dakar",
		PricePerNight:       &price,
		ReviewCount:         &reviews,
		FirstScrapedAt:      firstScraped,
		MatchedRegistration: matched,
	}
}

func TestListingScorerUnmatchedHighRevenue(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	st := &fakeListingStore{
		listing: listingAt(400, 80, now.AddDate(-2, 0, 0), false),
	}

	scorer := NewListingScorer(st, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	score, err := scorer.Score(context.Background(), "li-1")
	require.NoError(t, err)

	// 400 a night at the 25-night cap is 120k a year.
	assert.Equal(t, 120000.0, score.EstimatedRevenue)
	assert.GreaterOrEqual(t, score.InvestigationPriority, 0)
	assert.LessOrEqual(t, score.InvestigationPriority, 100)
	assert.Contains(t, []domain.RiskLevel{domain.RiskHigh, domain.RiskCritical}, score.RiskLevel)

	byName := map[string]float64{}
	for _, f := range score.Factors {
		byName[f.Name] = f.Score
	}
	assert.Equal(t, 0.0, byName["match_status"])
	assert.Equal(t, 5.0, byName["revenue_estimate"])
	assert.Equal(t, 20.0, byName["listing_age"])
	assert.Equal(t, 30.0, byName["host_profile"], "missing host id")
	assert.Equal(t, 70.0, byName["location_risk"], "no area assessment on file")
}

func TestListingScorerMatchedIsLowRisk(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	st := &fakeListingStore{
		listing: listingAt(30, 1, now.AddDate(0, 0, -10), true),
	}
	st.listing.HostID = "host-1"
	st.siblings = []domain.ScrapedListing{*st.listing}

	scorer := NewListingScorer(st, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	score, err := scorer.Score(context.Background(), "li-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, score.RiskLevel)
	assert.NotEmpty(t, score.Recommendations)
}

func TestListingPriorityMonotonicInRevenue(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	scorer := NewListingScorer(&fakeListingStore{}, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	prev := -1
	for _, price := range []float64{50, 150, 300, 500} {
		listing := listingAt(price, 50, now.AddDate(-1, 0, 0), false)
		score, err := scorer.ScoreListing(context.Background(), listing)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score.InvestigationPriority, prev,
			"priority must not decrease as estimated revenue grows")
		prev = score.InvestigationPriority
	}
}

func TestListingHostProfileBuckets(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	listing := listingAt(100, 10, now.AddDate(0, -6, 0), false)
	listing.HostID = "host-9"

	siblings := make([]domain.ScrapedListing, 0, 6)
	for i := 0; i < 6; i++ {
		siblings = append(siblings, domain.ScrapedListing{ID: "s", HostID: "host-9"})
	}
	st := &fakeListingStore{listing: listing, siblings: siblings}

	scorer := NewListingScorer(st, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	score, err := scorer.Score(context.Background(), "li-1")
	require.NoError(t, err)

	for _, f := range score.Factors {
		if f.Name == "host_profile" {
			// 6 listings, all unmatched: the worst bucket.
			assert.Equal(t, 10.0, f.Score)
		}
	}
}

func TestListingLocationRiskFollowsAreaLevel(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	st := &fakeListingStore{
		listing: listingAt(100, 10, now.AddDate(0, -6, 0), false),
		area:    &domain.AreaAssessment{City: "Dakar", RiskLevel: domain.RiskCritical},
	}

	scorer := NewListingScorer(st, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	score, err := scorer.Score(context.Background(), "li-1")
	require.NoError(t, err)
	for _, f := range score.Factors {
		if f.Name == "location_risk" {
			assert.Equal(t, 15.0, f.Score)
		}
	}
}
