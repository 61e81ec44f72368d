package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

type fakeLandlordStore struct {
	landlord *domain.Landlord
	payments []domain.TptPayment
	events   []domain.ComplianceEvent
	samples  []domain.ResponseSample
	count    int
}

func (f *fakeLandlordStore) GetLandlord(ctx context.Context, id string) (*domain.Landlord, error) {
	return f.landlord, nil
}

func (f *fakeLandlordStore) ListPaymentsByLandlord(ctx context.Context, id string, limit int) ([]domain.TptPayment, error) {
	return f.payments, nil
}

func (f *fakeLandlordStore) ListComplianceEvents(ctx context.Context, id string) ([]domain.ComplianceEvent, error) {
	return f.events, nil
}

func (f *fakeLandlordStore) ListResponseSamples(ctx context.Context, id string, limit int) ([]domain.ResponseSample, error) {
	return f.samples, nil
}

func (f *fakeLandlordStore) CountPropertiesByLandlord(ctx context.Context, id string) (int, error) {
	return f.count, nil
}

func testScoringConfig(t *testing.T) config.ScoringConfig {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg.Scoring
}

func TestLandlordScorerDelinquentProfile(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	overdueDue := now.AddDate(0, 0, -100)

	store := &fakeLandlordStore{
		landlord: &domain.Landlord{
			ID:                 "ll-1",
			Name:               "Test Landlord",
			CreatedAt:          now.AddDate(0, 0, -30),
			RegistrationStatus: domain.RegistrationNonCompliant,
		},
		payments: []domain.TptPayment{
			{Status: domain.PaymentOverdue, DueDate: overdueDue},
			{Status: domain.PaymentOverdue, DueDate: overdueDue},
			{Status: domain.PaymentOverdue, DueDate: overdueDue},
			{Status: domain.PaymentLate, DueDate: now.AddDate(0, 0, -10)},
			{Status: domain.PaymentLate, DueDate: now.AddDate(0, 0, -40)},
		},
		events: []domain.ComplianceEvent{
			{EventType: domain.EventViolation, EventDate: now.AddDate(0, 0, -15)},
		},
		count: 2,
	}

	scorer := NewLandlordScorer(store, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	score, err := scorer.Score(context.Background(), "ll-1")
	require.NoError(t, err)

	byName := map[string]domain.RiskFactor{}
	for _, f := range score.Factors {
		byName[f.Name] = f
	}
	assert.Equal(t, 34.0, byName["payment_history"].Score)
	assert.Equal(t, 10.0, byName["registration_compliance"].Score)
	assert.Equal(t, 85.0, byName["portfolio_size"].Score)
	assert.Equal(t, 35.0, byName["account_age"].Score)
	assert.Equal(t, 85.0, byName["compliance_history"].Score)
	assert.Equal(t, 70.0, byName["response_time"].Score)

	assert.Equal(t, domain.RiskHigh, score.RiskLevel)
	assert.NotEmpty(t, score.Recommendations)
}

func TestLandlordScorerWeightsAndBounds(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeLandlordStore{
		landlord: &domain.Landlord{
			ID:                 "ll-2",
			CreatedAt:          now.AddDate(-3, 0, 0),
			RegistrationStatus: domain.RegistrationFullyCompliant,
		},
		count: 1,
	}

	scorer := NewLandlordScorer(store, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	score, err := scorer.Score(context.Background(), "ll-2")
	require.NoError(t, err)

	weightSum := 0.0
	for _, f := range score.Factors {
		weightSum += f.Weight
		assert.GreaterOrEqual(t, f.Score, 0.0)
		assert.LessOrEqual(t, f.Score, 100.0)
	}
	assert.InDelta(t, 1.0, weightSum, 0.001)
	assert.GreaterOrEqual(t, score.OverallScore, 0.0)
	assert.LessOrEqual(t, score.OverallScore, 100.0)
}

func TestLandlordScorerNoHistoryDefaults(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeLandlordStore{
		landlord: &domain.Landlord{ID: "ll-3", CreatedAt: now.AddDate(-2, -1, 0)},
	}

	scorer := NewLandlordScorer(store, testScoringConfig(t))
	scorer.now = func() time.Time { return now }

	score, err := scorer.Score(context.Background(), "ll-3")
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, f := range score.Factors {
		byName[f.Name] = f.Score
	}
	assert.Equal(t, 50.0, byName["payment_history"], "no payments defaults to 50")
	assert.Equal(t, 50.0, byName["registration_compliance"], "unknown status defaults to 50")
	assert.Equal(t, 100.0, byName["portfolio_size"], "zero properties scores 100")
	assert.Equal(t, 70.0, byName["compliance_history"], "no events defaults to 70")
	assert.Equal(t, 70.0, byName["response_time"], "no samples defaults to 70")
}

func TestScoreResponseTimeBuckets(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sample := func(d time.Duration) domain.ResponseSample {
		responded := base.Add(d)
		return domain.ResponseSample{SentAt: base, RespondedAt: &responded}
	}

	assert.Equal(t, 95.0, scoreResponseTime([]domain.ResponseSample{sample(10 * time.Hour)}))
	assert.Equal(t, 85.0, scoreResponseTime([]domain.ResponseSample{sample(40 * time.Hour)}))
	assert.Equal(t, 70.0, scoreResponseTime([]domain.ResponseSample{sample(60 * time.Hour)}))
	assert.Equal(t, 50.0, scoreResponseTime([]domain.ResponseSample{sample(120 * time.Hour)}))
	assert.Equal(t, 30.0, scoreResponseTime([]domain.ResponseSample{sample(200 * time.Hour)}))

	// Unanswered requests do not count toward the mean.
	assert.Equal(t, 70.0, scoreResponseTime([]domain.ResponseSample{{SentAt: base}}))
}
