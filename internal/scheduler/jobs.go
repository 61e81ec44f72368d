package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

// Job names, matched by the HTTP trigger endpoints.
const (
	JobDailyRiskUpdate      = "daily-risk-update"
	JobWeeklyReport         = "weekly-report"
	JobMonthlyTrendAnalysis = "monthly-trend-analysis"
)

const (
	jobLockTTL        = 30 * time.Minute
	historyCtxTimeout = 10 * time.Second

	// notificationsQueue is the Redis list the external notifier drains.
	notificationsQueue = "notifications:pending"
)

// JobStore is the persistence surface the pipeline jobs need.
type JobStore interface {
	ListLandlords(ctx context.Context) ([]domain.Landlord, error)
	ListListings(ctx context.Context) ([]domain.ScrapedListing, error)
	ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error)
	UpsertLandlordRiskScore(ctx context.Context, score *domain.LandlordRiskScore) error
	UpsertListingRiskScore(ctx context.Context, score *domain.ListingRiskScore) error
	UpsertAreaRanking(ctx context.Context, a *domain.AreaAssessment) error
	UpsertSeasonalPatterns(ctx context.Context, p *domain.SeasonalPatterns) error
	InsertNotification(ctx context.Context, n *domain.Notification) error
	InsertJobHistory(ctx context.Context, h *domain.JobHistory) error
}

// LandlordScorer scores one landlord by id.
type LandlordScorer interface {
	Score(ctx context.Context, landlordID string) (*domain.LandlordRiskScore, error)
}

// ListingScorer scores one already-loaded listing.
type ListingScorer interface {
	ScoreListing(ctx context.Context, listing *domain.ScrapedListing) (*domain.ListingRiskScore, error)
}

// AreaAssessor scores one city.
type AreaAssessor interface {
	Assess(ctx context.Context, city, neighborhood string) (*domain.AreaAssessment, error)
}

// SeasonalSource recomputes the seasonal booking profile.
type SeasonalSource interface {
	Analyse(ctx context.Context, years int) (*domain.SeasonalPatterns, error)
}

// WeeklySource generates the weekly report.
type WeeklySource interface {
	Generate(ctx context.Context) (*domain.WeeklyReport, error)
}

// EnforcementSource generates the enforcement report.
type EnforcementSource interface {
	Generate(ctx context.Context) (*domain.EnforcementReport, error)
}

// MonthlySource generates the monthly report.
type MonthlySource interface {
	Generate(ctx context.Context, year int, month time.Month) (*domain.MonthlyReport, error)
}

// TrendSource records long-term trends and monthly insights.
type TrendSource interface {
	RecordTrend(ctx context.Context) (*domain.LongTermTrend, error)
	RecordInsights(ctx context.Context, report *domain.MonthlyReport) (int, error)
}

// Runner wires the pipeline jobs to their dependencies and wraps each
// run with locking, panic recovery, and job-history persistence.
type Runner struct {
	store       JobStore
	landlords   LandlordScorer
	listings    ListingScorer
	areas       AreaAssessor
	seasonal    SeasonalSource
	weekly      WeeklySource
	monthly     MonthlySource
	enforcement EnforcementSource
	trends      TrendSource

	redis       *redis.Client // nil disables the distributed lock
	concurrency int
	now         func() time.Time
}

// RunnerDeps carries the Runner's collaborators.
type RunnerDeps struct {
	Store       JobStore
	Landlords   LandlordScorer
	Listings    ListingScorer
	Areas       AreaAssessor
	Seasonal    SeasonalSource
	Weekly      WeeklySource
	Monthly     MonthlySource
	Enforcement EnforcementSource
	Trends      TrendSource
	Redis       *redis.Client
}

func NewRunner(deps RunnerDeps, jobs config.JobsConfig) *Runner {
	concurrency := jobs.BulkConcurrency
	if concurrency <= 0 {
		concurrency = 16
	}
	return &Runner{
		store:       deps.Store,
		landlords:   deps.Landlords,
		listings:    deps.Listings,
		areas:       deps.Areas,
		seasonal:    deps.Seasonal,
		weekly:      deps.Weekly,
		monthly:     deps.Monthly,
		enforcement: deps.Enforcement,
		trends:      deps.Trends,
		redis:       deps.Redis,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Jobs returns the three pipeline jobs with their configured schedules,
// ready for Scheduler.Register.
func (r *Runner) Jobs(cfg config.JobsConfig) []Job {
	return []Job{
		{Name: JobDailyRiskUpdate, Schedule: cfg.DailyRiskUpdate, Run: func(ctx context.Context) *domain.JobResult {
			return r.run(ctx, JobDailyRiskUpdate, r.dailyRiskUpdate)
		}},
		{Name: JobWeeklyReport, Schedule: cfg.WeeklyReport, Run: func(ctx context.Context) *domain.JobResult {
			return r.run(ctx, JobWeeklyReport, r.weeklyReport)
		}},
		{Name: JobMonthlyTrendAnalysis, Schedule: cfg.MonthlyTrendAnalysis, Run: func(ctx context.Context) *domain.JobResult {
			return r.run(ctx, JobMonthlyTrendAnalysis, r.monthlyTrendAnalysis)
		}},
	}
}

// run executes one job body under the shared run contract: a uuid run
// id, a Redis lock so only one instance works a job at a time, panic
// recovery, and an unconditional job_history row. Returns nil when the
// lock is held elsewhere.
func (r *Runner) run(ctx context.Context, name string, body func(ctx context.Context, res *domain.JobResult)) *domain.JobResult {
	result := &domain.JobResult{
		JobID:     uuid.NewString(),
		JobName:   name,
		StartTime: r.now().UTC(),
	}

	if !r.acquireLock(ctx, name, result.JobID) {
		log.Printf("[Jobs] %s skipped: lock held elsewhere", name)
		return nil
	}
	defer r.releaseLock(name)

	started := time.Now()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				result.Errors = append(result.Errors, domain.JobError{
					Timestamp: r.now().UTC(),
					Message:   fmt.Sprintf("panic: %v", rec),
				})
				result.RecordsProcessed = 0
			}
		}()
		body(ctx, result)
	}()

	result.EndTime = r.now().UTC()
	result.DurationMs = time.Since(started).Milliseconds()
	result.Resolve()

	// History is written on its own deadline so a cancelled job run
	// still leaves its trail.
	hctx, cancel := context.WithTimeout(context.Background(), historyCtxTimeout)
	defer cancel()
	if err := r.store.InsertJobHistory(hctx, &domain.JobHistory{
		JobID:            result.JobID,
		JobName:          result.JobName,
		Status:           result.Status,
		StartTime:        result.StartTime,
		EndTime:          result.EndTime,
		DurationMs:       result.DurationMs,
		RecordsProcessed: result.RecordsProcessed,
		Errors:           result.Errors,
	}); err != nil {
		log.Printf("[Jobs] %s: job history insert failed: %v", name, err)
	}

	log.Printf("[Jobs] %s finished status=%s processed=%d errors=%d in %dms",
		name, result.Status, result.RecordsProcessed, len(result.Errors), result.DurationMs)
	return result
}

func (r *Runner) acquireLock(ctx context.Context, name, runID string) bool {
	if r.redis == nil {
		return true
	}
	ok, err := r.redis.SetNX(ctx, "jobs:"+name, runID, jobLockTTL).Result()
	if err != nil {
		// A broken lock backend must not stall the pipeline.
		log.Printf("[Jobs] %s: lock acquire failed, proceeding: %v", name, err)
		return true
	}
	return ok
}

// queueNotification pushes a stored notification onto the pending list
// for the external notifier. Without Redis the row alone carries it; a
// push failure is logged, not fatal, since the row is already persisted.
func (r *Runner) queueNotification(ctx context.Context, n *domain.Notification) {
	if r.redis == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("[Jobs] notification encode failed: %v", err)
		return
	}
	if err := r.redis.LPush(ctx, notificationsQueue, payload).Err(); err != nil {
		log.Printf("[Jobs] notification queue push failed: %v", err)
	}
}

func (r *Runner) releaseLock(name string) {
	if r.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.redis.Del(ctx, "jobs:"+name).Err(); err != nil {
		log.Printf("[Jobs] %s: lock release failed: %v", name, err)
	}
}

func jobError(res *domain.JobResult, at time.Time, where string, err error) {
	res.Errors = append(res.Errors, domain.JobError{
		Timestamp: at,
		Message:   err.Error(),
		Context:   where,
	})
}

// dailyRiskUpdate rescores every landlord and listing with bounded
// concurrency. Per-record failures are collected, not fatal.
func (r *Runner) dailyRiskUpdate(ctx context.Context, res *domain.JobResult) {
	r.refreshLandlords(ctx, res)
	r.refreshListings(ctx, res)
}

// RefreshLandlords rescores every landlord on demand, outside the
// scheduled job (no lock, no history row).
func (r *Runner) RefreshLandlords(ctx context.Context) *domain.JobResult {
	res := &domain.JobResult{
		JobID:     uuid.NewString(),
		JobName:   "refresh-landlords",
		StartTime: r.now().UTC(),
	}
	r.refreshLandlords(ctx, res)
	res.EndTime = r.now().UTC()
	res.DurationMs = res.EndTime.Sub(res.StartTime).Milliseconds()
	res.Resolve()
	return res
}

// RefreshListings rescores every scraped listing on demand.
func (r *Runner) RefreshListings(ctx context.Context) *domain.JobResult {
	res := &domain.JobResult{
		JobID:     uuid.NewString(),
		JobName:   "refresh-listings",
		StartTime: r.now().UTC(),
	}
	r.refreshListings(ctx, res)
	res.EndTime = r.now().UTC()
	res.DurationMs = res.EndTime.Sub(res.StartTime).Milliseconds()
	res.Resolve()
	return res
}

func (r *Runner) refreshLandlords(ctx context.Context, res *domain.JobResult) {
	landlords, err := r.store.ListLandlords(ctx)
	if err != nil {
		jobError(res, r.now().UTC(), "list landlords", err)
		return
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, l := range landlords {
		l := l
		g.Go(func() error {
			score, err := r.landlords.Score(gctx, l.ID)
			if err == nil {
				err = r.store.UpsertLandlordRiskScore(gctx, score)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				jobError(res, r.now().UTC(), "landlord "+l.ID, err)
			} else {
				res.RecordsProcessed++
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) refreshListings(ctx context.Context, res *domain.JobResult) {
	listings, err := r.store.ListListings(ctx)
	if err != nil {
		jobError(res, r.now().UTC(), "list listings", err)
		return
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range listings {
		listing := &listings[i]
		g.Go(func() error {
			score, err := r.listings.ScoreListing(gctx, listing)
			if err == nil {
				err = r.store.UpsertListingRiskScore(gctx, score)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				jobError(res, r.now().UTC(), "listing "+listing.ID, err)
			} else {
				res.RecordsProcessed++
			}
			return nil
		})
	}
	_ = g.Wait()
}

// weeklyReport generates the weekly digest and the enforcement plan,
// then queues a notification per critical alert.
func (r *Runner) weeklyReport(ctx context.Context, res *domain.JobResult) {
	weekly, err := r.weekly.Generate(ctx)
	if err != nil {
		jobError(res, r.now().UTC(), "weekly report", err)
	} else {
		res.RecordsProcessed++
		for _, alert := range weekly.Alerts {
			if alert.Severity != domain.AlertCritical {
				continue
			}
			n := &domain.Notification{
				Severity:  alert.Severity,
				Channel:   "email",
				Subject:   "Critical compliance alert: week of " + weekly.WeekStart.Format("2006-01-02"),
				Body:      alert.Message,
				CreatedAt: r.now().UTC(),
			}
			if err := r.store.InsertNotification(ctx, n); err != nil {
				jobError(res, r.now().UTC(), "notification", err)
				continue
			}
			r.queueNotification(ctx, n)
		}
	}

	if _, err := r.enforcement.Generate(ctx); err != nil {
		jobError(res, r.now().UTC(), "enforcement report", err)
	} else {
		res.RecordsProcessed++
	}
}

// monthlyTrendAnalysis regenerates the monthly report and all the
// long-horizon materialised analytics.
func (r *Runner) monthlyTrendAnalysis(ctx context.Context, res *domain.JobResult) {
	report, err := r.monthly.Generate(ctx, 0, 0)
	if err != nil {
		jobError(res, r.now().UTC(), "monthly report", err)
	} else {
		res.RecordsProcessed++
	}

	patterns, err := r.seasonal.Analyse(ctx, 2)
	if err == nil {
		err = r.store.UpsertSeasonalPatterns(ctx, patterns)
	}
	if err != nil {
		jobError(res, r.now().UTC(), "seasonal patterns", err)
	} else {
		res.RecordsProcessed++
	}

	for _, city := range r.cities(ctx, res) {
		assessment, err := r.areas.Assess(ctx, city, "")
		if err == nil {
			err = r.store.UpsertAreaRanking(ctx, assessment)
		}
		if err != nil {
			jobError(res, r.now().UTC(), "area "+city, err)
			continue
		}
		res.RecordsProcessed++
	}

	if _, err := r.trends.RecordTrend(ctx); err != nil {
		jobError(res, r.now().UTC(), "long-term trend", err)
	} else {
		res.RecordsProcessed++
	}

	if report != nil {
		n, err := r.trends.RecordInsights(ctx, report)
		if err != nil {
			jobError(res, r.now().UTC(), "monthly insights", err)
		}
		res.RecordsProcessed += n
	}
}

func (r *Runner) cities(ctx context.Context, res *domain.JobResult) []string {
	props, err := r.store.ListProperties(ctx, "", "")
	if err != nil {
		jobError(res, r.now().UTC(), "list properties", err)
		return nil
	}
	seen := map[string]bool{}
	var cities []string
	for _, p := range props {
		if p.City == "" || seen[p.City] {
			continue
		}
		seen[p.City] = true
		cities = append(cities, p.City)
	}
	sort.Strings(cities)
	return cities
}
