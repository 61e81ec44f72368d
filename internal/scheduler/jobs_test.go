package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

type fakeJobStore struct {
	landlords  []domain.Landlord
	listings   []domain.ScrapedListing
	properties []domain.Property

	landlordScores int
	listingScores  int
	areaRankings   int
	seasonalSaves  int
	notifications  []domain.Notification
	history        []domain.JobHistory
}

func (f *fakeJobStore) ListLandlords(ctx context.Context) ([]domain.Landlord, error) {
	return f.landlords, nil
}

func (f *fakeJobStore) ListListings(ctx context.Context) ([]domain.ScrapedListing, error) {
	return f.listings, nil
}

func (f *fakeJobStore) ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error) {
	return f.properties, nil
}

func (f *fakeJobStore) UpsertLandlordRiskScore(ctx context.Context, score *domain.LandlordRiskScore) error {
	f.landlordScores++
	return nil
}

func (f *fakeJobStore) UpsertListingRiskScore(ctx context.Context, score *domain.ListingRiskScore) error {
	f.listingScores++
	return nil
}

func (f *fakeJobStore) UpsertAreaRanking(ctx context.Context, a *domain.AreaAssessment) error {
	f.areaRankings++
	return nil
}

func (f *fakeJobStore) UpsertSeasonalPatterns(ctx context.Context, p *domain.SeasonalPatterns) error {
	f.seasonalSaves++
	return nil
}

func (f *fakeJobStore) InsertNotification(ctx context.Context, n *domain.Notification) error {
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeJobStore) InsertJobHistory(ctx context.Context, h *domain.JobHistory) error {
	f.history = append(f.history, *h)
	return nil
}

type fakeLandlordScorer struct{ failID string }

func (f *fakeLandlordScorer) Score(ctx context.Context, landlordID string) (*domain.LandlordRiskScore, error) {
	if landlordID == f.failID {
		return nil, errors.New("no payment history row")
	}
	return &domain.LandlordRiskScore{LandlordID: landlordID}, nil
}

type fakeListingScorer struct{}

func (f *fakeListingScorer) ScoreListing(ctx context.Context, listing *domain.ScrapedListing) (*domain.ListingRiskScore, error) {
	return &domain.ListingRiskScore{ListingID: listing.ID}, nil
}

type fakeAreaAssessor struct{}

func (f *fakeAreaAssessor) Assess(ctx context.Context, city, neighborhood string) (*domain.AreaAssessment, error) {
	return &domain.AreaAssessment{City: city}, nil
}

type fakeSeasonal struct{}

func (f *fakeSeasonal) Analyse(ctx context.Context, years int) (*domain.SeasonalPatterns, error) {
	return &domain.SeasonalPatterns{}, nil
}

type fakeWeekly struct{ report *domain.WeeklyReport }

func (f *fakeWeekly) Generate(ctx context.Context) (*domain.WeeklyReport, error) {
	return f.report, nil
}

type fakeMonthly struct{}

func (f *fakeMonthly) Generate(ctx context.Context, year int, month time.Month) (*domain.MonthlyReport, error) {
	return &domain.MonthlyReport{Month: "2026-08"}, nil
}

type fakeEnforcement struct{}

func (f *fakeEnforcement) Generate(ctx context.Context) (*domain.EnforcementReport, error) {
	return &domain.EnforcementReport{}, nil
}

type fakeTrends struct{ insights int }

func (f *fakeTrends) RecordTrend(ctx context.Context) (*domain.LongTermTrend, error) {
	return &domain.LongTermTrend{}, nil
}

func (f *fakeTrends) RecordInsights(ctx context.Context, report *domain.MonthlyReport) (int, error) {
	return f.insights, nil
}

func newTestRunner(store *fakeJobStore, rdb *redis.Client) *Runner {
	return NewRunner(RunnerDeps{
		Store:     store,
		Landlords: &fakeLandlordScorer{failID: "ll-bad"},
		Listings:  &fakeListingScorer{},
		Areas:     &fakeAreaAssessor{},
		Seasonal:  &fakeSeasonal{},
		Weekly: &fakeWeekly{report: &domain.WeeklyReport{
			WeekStart: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			Alerts: []domain.Alert{
				{Severity: domain.AlertCritical, Message: "compliance below threshold"},
				{Severity: domain.AlertWarning, Message: "collection rate slipping"},
			},
		}},
		Monthly:     &fakeMonthly{},
		Enforcement: &fakeEnforcement{},
		Trends:      &fakeTrends{insights: 2},
		Redis:       rdb,
	}, config.JobsConfig{BulkConcurrency: 4})
}

func TestDailyRiskUpdateScoresEverything(t *testing.T) {
	store := &fakeJobStore{
		landlords: []domain.Landlord{{ID: "ll-1"}, {ID: "ll-2"}, {ID: "ll-bad"}},
		listings:  []domain.ScrapedListing{{ID: "li-1"}, {ID: "li-2"}},
	}
	r := newTestRunner(store, nil)

	result := r.run(context.Background(), JobDailyRiskUpdate, r.dailyRiskUpdate)
	require.NotNil(t, result)

	assert.Equal(t, domain.JobPartial, result.Status)
	assert.Equal(t, 4, result.RecordsProcessed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "landlord ll-bad", result.Errors[0].Context)

	assert.Equal(t, 2, store.landlordScores)
	assert.Equal(t, 2, store.listingScores)
	require.Len(t, store.history, 1)
	assert.Equal(t, JobDailyRiskUpdate, store.history[0].JobName)
	assert.NotEmpty(t, store.history[0].JobID)
}

func TestWeeklyReportJobQueuesCriticalNotifications(t *testing.T) {
	store := &fakeJobStore{}
	r := newTestRunner(store, nil)

	result := r.run(context.Background(), JobWeeklyReport, r.weeklyReport)
	require.NotNil(t, result)

	assert.Equal(t, domain.JobSuccess, result.Status)
	assert.Equal(t, 2, result.RecordsProcessed, "weekly and enforcement reports")
	require.Len(t, store.notifications, 1, "only critical alerts notify")
	assert.Equal(t, domain.AlertCritical, store.notifications[0].Severity)
	assert.Contains(t, store.notifications[0].Subject, "2026-08-24")
}

func TestWeeklyReportJobPushesPendingQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &fakeJobStore{}
	r := newTestRunner(store, rdb)

	result := r.run(context.Background(), JobWeeklyReport, r.weeklyReport)
	require.NotNil(t, result)
	require.Len(t, store.notifications, 1)

	queued, err := rdb.LRange(context.Background(), notificationsQueue, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, queued, 1, "each stored notification is mirrored onto the pending list")

	var pushed domain.Notification
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &pushed))
	assert.Equal(t, domain.AlertCritical, pushed.Severity)
	assert.Equal(t, store.notifications[0].Subject, pushed.Subject)
}

func TestWeeklyReportJobWithoutRedisStillStoresNotification(t *testing.T) {
	store := &fakeJobStore{}
	r := newTestRunner(store, nil)

	result := r.run(context.Background(), JobWeeklyReport, r.weeklyReport)
	require.NotNil(t, result)
	assert.Equal(t, domain.JobSuccess, result.Status)
	require.Len(t, store.notifications, 1)
}

func TestMonthlyTrendAnalysisRecomputesEverything(t *testing.T) {
	store := &fakeJobStore{
		properties: []domain.Property{{City: "Dakar"}, {City: "Saly"}, {City: "Dakar"}},
	}
	r := newTestRunner(store, nil)

	result := r.run(context.Background(), JobMonthlyTrendAnalysis, r.monthlyTrendAnalysis)
	require.NotNil(t, result)

	assert.Equal(t, domain.JobSuccess, result.Status)
	// report + seasonal + 2 areas + trend + 2 insights.
	assert.Equal(t, 7, result.RecordsProcessed)
	assert.Equal(t, 1, store.seasonalSaves)
	assert.Equal(t, 2, store.areaRankings)
}

func TestRunSkipsWhenLockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &fakeJobStore{}
	r := newTestRunner(store, rdb)

	require.NoError(t, mr.Set("jobs:"+JobWeeklyReport, "other-run"))
	result := r.run(context.Background(), JobWeeklyReport, r.weeklyReport)
	assert.Nil(t, result)
	assert.Empty(t, store.history, "skipped runs leave no history row")
}

func TestRunReleasesLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &fakeJobStore{}
	r := newTestRunner(store, rdb)

	result := r.run(context.Background(), JobWeeklyReport, r.weeklyReport)
	require.NotNil(t, result)
	assert.False(t, mr.Exists("jobs:"+JobWeeklyReport))
}

func TestRunRecoversFromPanic(t *testing.T) {
	store := &fakeJobStore{}
	r := newTestRunner(store, nil)

	result := r.run(context.Background(), "exploding", func(ctx context.Context, res *domain.JobResult) {
		panic("boom")
	})
	require.NotNil(t, result)
	assert.Equal(t, domain.JobFailed, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "boom")
	require.Len(t, store.history, 1)
}

func TestRefreshLandlordsOnDemand(t *testing.T) {
	store := &fakeJobStore{landlords: []domain.Landlord{{ID: "ll-1"}, {ID: "ll-2"}}}
	r := newTestRunner(store, nil)

	result := r.RefreshLandlords(context.Background())
	assert.Equal(t, domain.JobSuccess, result.Status)
	assert.Equal(t, 2, result.RecordsProcessed)
	assert.Equal(t, 2, store.landlordScores)
	assert.Empty(t, store.history, "on-demand refreshes are not job runs")
}

func TestRunnerJobsCarrySchedules(t *testing.T) {
	r := newTestRunner(&fakeJobStore{}, nil)
	jobs := r.Jobs(config.JobsConfig{
		DailyRiskUpdate:      "0 2 * * *",
		WeeklyReport:         "0 6 * * 1",
		MonthlyTrendAnalysis: "0 4 1 * *",
	})
	require.Len(t, jobs, 3)
	assert.Equal(t, JobDailyRiskUpdate, jobs[0].Name)
	assert.Equal(t, "0 6 * * 1", jobs[1].Schedule)
	assert.Equal(t, JobMonthlyTrendAnalysis, jobs[2].Name)
}
