package store

import (
	"context"
	"fmt"
	"time"

	"github.com/setal/compliance-intel/internal/domain"
)

// UpsertLandlordRiskScore writes a landlord risk score keyed by landlord_id.
func (s *Supabase) UpsertLandlordRiskScore(ctx context.Context, score *domain.LandlordRiskScore) error {
	var out []domain.LandlordRiskScore
	_, err := s.client.From("landlord_risk_scores").
		Upsert(score, "landlord_id", "", "").
		ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("upsert landlord risk score %s: %w", score.LandlordID, err)
	}
	return nil
}

// GetLandlordRiskScore returns the stored score for a landlord or ErrNotFound.
func (s *Supabase) GetLandlordRiskScore(ctx context.Context, landlordID string) (*domain.LandlordRiskScore, error) {
	var rows []domain.LandlordRiskScore
	_, err := s.client.From("landlord_risk_scores").
		Select("*", "", false).
		Eq("landlord_id", landlordID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get landlord risk score %s: %w", landlordID, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListLandlordRiskScores returns stored landlord scores, optionally
// filtered by risk level, worst first.
func (s *Supabase) ListLandlordRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.LandlordRiskScore, error) {
	q := s.client.From("landlord_risk_scores").Select("*", "", false)
	if level != "" {
		q = q.Eq("risk_level", string(level))
	}
	var rows []domain.LandlordRiskScore
	_, err := q.Order("overall_score", nil).Limit(limit, "").ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list landlord risk scores: %w", err)
	}
	return rows, nil
}

// UpsertListingRiskScore writes a listing risk score keyed by listing_id.
func (s *Supabase) UpsertListingRiskScore(ctx context.Context, score *domain.ListingRiskScore) error {
	var out []domain.ListingRiskScore
	_, err := s.client.From("listing_risk_scores").
		Upsert(score, "listing_id", "", "").
		ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("upsert listing risk score %s: %w", score.ListingID, err)
	}
	return nil
}

// GetListingRiskScore returns the stored score for a listing or ErrNotFound.
func (s *Supabase) GetListingRiskScore(ctx context.Context, listingID string) (*domain.ListingRiskScore, error) {
	var rows []domain.ListingRiskScore
	_, err := s.client.From("listing_risk_scores").
		Select("*", "", false).
		Eq("listing_id", listingID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get listing risk score %s: %w", listingID, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListPrioritizedListings returns stored listing scores ordered by
// investigation priority, highest first.
func (s *Supabase) ListPrioritizedListings(ctx context.Context, limit int) ([]domain.ListingRiskScore, error) {
	var rows []domain.ListingRiskScore
	_, err := s.client.From("listing_risk_scores").
		Select("*", "", false).
		Order("investigation_priority", descending).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list prioritized listings: %w", err)
	}
	return rows, nil
}

// ListListingRiskScores returns stored listing scores filtered by level.
func (s *Supabase) ListListingRiskScores(ctx context.Context, level domain.RiskLevel, limit int) ([]domain.ListingRiskScore, error) {
	q := s.client.From("listing_risk_scores").Select("*", "", false)
	if level != "" {
		q = q.Eq("risk_level", string(level))
	}
	var rows []domain.ListingRiskScore
	_, err := q.Order("investigation_priority", descending).Limit(limit, "").ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list listing risk scores: %w", err)
	}
	return rows, nil
}

// UpsertAreaRanking writes an area assessment keyed by city.
func (s *Supabase) UpsertAreaRanking(ctx context.Context, a *domain.AreaAssessment) error {
	var out []domain.AreaAssessment
	_, err := s.client.From("area_rankings").
		Upsert(a, "city", "", "").
		ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("upsert area ranking %s: %w", a.City, err)
	}
	return nil
}

// GetAreaRanking returns the stored assessment for a city or ErrNotFound.
func (s *Supabase) GetAreaRanking(ctx context.Context, city string) (*domain.AreaAssessment, error) {
	var rows []domain.AreaAssessment
	_, err := s.client.From("area_rankings").
		Select("*", "", false).
		Eq("city", city).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get area ranking %s: %w", city, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ListAreaRankings returns stored area assessments, riskiest first.
func (s *Supabase) ListAreaRankings(ctx context.Context, limit int) ([]domain.AreaAssessment, error) {
	var rows []domain.AreaAssessment
	_, err := s.client.From("area_rankings").
		Select("*", "", false).
		Order("overall_score", descending).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list area rankings: %w", err)
	}
	return rows, nil
}

// UpsertWeeklyReport writes a weekly report keyed by its period id.
func (s *Supabase) UpsertWeeklyReport(ctx context.Context, r *domain.WeeklyReport) error {
	var out []domain.WeeklyReport
	_, err := s.client.From("weekly_reports").Upsert(r, "id", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("upsert weekly report %s: %w", r.ID, err)
	}
	return nil
}

// GetWeeklyReport returns one weekly report or ErrNotFound.
func (s *Supabase) GetWeeklyReport(ctx context.Context, id string) (*domain.WeeklyReport, error) {
	var rows []domain.WeeklyReport
	_, err := s.client.From("weekly_reports").
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get weekly report %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// GetLatestWeeklyReport returns the most recent weekly report or ErrNotFound.
func (s *Supabase) GetLatestWeeklyReport(ctx context.Context) (*domain.WeeklyReport, error) {
	var rows []domain.WeeklyReport
	_, err := s.client.From("weekly_reports").
		Select("*", "", false).
		Order("generated_at", descending).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get latest weekly report: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// UpsertMonthlyReport writes a monthly report keyed by its period id.
func (s *Supabase) UpsertMonthlyReport(ctx context.Context, r *domain.MonthlyReport) error {
	var out []domain.MonthlyReport
	_, err := s.client.From("monthly_reports").Upsert(r, "id", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("upsert monthly report %s: %w", r.ID, err)
	}
	return nil
}

// GetMonthlyReport returns one monthly report or ErrNotFound.
func (s *Supabase) GetMonthlyReport(ctx context.Context, id string) (*domain.MonthlyReport, error) {
	var rows []domain.MonthlyReport
	_, err := s.client.From("monthly_reports").
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get monthly report %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// GetLatestMonthlyReport returns the most recent monthly report or ErrNotFound.
func (s *Supabase) GetLatestMonthlyReport(ctx context.Context) (*domain.MonthlyReport, error) {
	var rows []domain.MonthlyReport
	_, err := s.client.From("monthly_reports").
		Select("*", "", false).
		Order("generated_at", descending).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get latest monthly report: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// UpsertEnforcementReport writes an enforcement report keyed by its id.
func (s *Supabase) UpsertEnforcementReport(ctx context.Context, r *domain.EnforcementReport) error {
	var out []domain.EnforcementReport
	_, err := s.client.From("enforcement_reports").Upsert(r, "id", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("upsert enforcement report %s: %w", r.ID, err)
	}
	return nil
}

// GetLatestEnforcementReport returns the most recent enforcement report
// or ErrNotFound.
func (s *Supabase) GetLatestEnforcementReport(ctx context.Context) (*domain.EnforcementReport, error) {
	var rows []domain.EnforcementReport
	_, err := s.client.From("enforcement_reports").
		Select("*", "", false).
		Order("generated_at", descending).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get latest enforcement report: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ReportSummary is one row in the report history listing.
type ReportSummary struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Headline    string    `json:"headline"`
	GeneratedAt time.Time `json:"generated_at"`
}

var reportTables = map[string]string{
	"weekly":      "weekly_reports",
	"monthly":     "monthly_reports",
	"enforcement": "enforcement_reports",
}

// ListReportHistory returns recent report summaries of one type.
func (s *Supabase) ListReportHistory(ctx context.Context, reportType string, limit int) ([]ReportSummary, error) {
	table, ok := reportTables[reportType]
	if !ok {
		return nil, fmt.Errorf("unknown report type %q", reportType)
	}
	var rows []ReportSummary
	_, err := s.client.From(table).
		Select("id,headline,generated_at", "", false).
		Order("generated_at", descending).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list %s report history: %w", reportType, err)
	}
	for i := range rows {
		rows[i].Type = reportType
	}
	return rows, nil
}

// seasonalRow wraps the singleton seasonal pattern document.
type seasonalRow struct {
	ID          string                  `json:"id"`
	Patterns    domain.SeasonalPatterns `json:"patterns"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// UpsertSeasonalPatterns replaces the singleton 'current' seasonal row.
func (s *Supabase) UpsertSeasonalPatterns(ctx context.Context, p *domain.SeasonalPatterns) error {
	row := seasonalRow{ID: "current", Patterns: *p, GeneratedAt: time.Now().UTC()}
	var out []seasonalRow
	_, err := s.client.From("seasonal_patterns").Upsert(row, "id", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("upsert seasonal patterns: %w", err)
	}
	return nil
}

// GetSeasonalPatterns returns the current seasonal profile or ErrNotFound.
func (s *Supabase) GetSeasonalPatterns(ctx context.Context) (*domain.SeasonalPatterns, error) {
	var rows []seasonalRow
	_, err := s.client.From("seasonal_patterns").
		Select("*", "", false).
		Eq("id", "current").
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("get seasonal patterns: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0].Patterns, nil
}

// InsertLongTermTrend appends a long-term trend row for a period.
func (s *Supabase) InsertLongTermTrend(ctx context.Context, t *domain.LongTermTrend) error {
	var out []domain.LongTermTrend
	_, err := s.client.From("long_term_trends").Insert(t, false, "", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("insert long term trend %s: %w", t.Period, err)
	}
	return nil
}

// InsertMonthlyInsight appends one generated insight row.
func (s *Supabase) InsertMonthlyInsight(ctx context.Context, in *domain.MonthlyInsight) error {
	var out []domain.MonthlyInsight
	_, err := s.client.From("monthly_insights").Insert(in, false, "", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("insert monthly insight: %w", err)
	}
	return nil
}

// InsertNotification enqueues a notification row for the external notifier.
func (s *Supabase) InsertNotification(ctx context.Context, n *domain.Notification) error {
	var out []domain.Notification
	_, err := s.client.From("notifications").Insert(n, false, "", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// InsertJobHistory appends a job run record. Called unconditionally at
// the end of every job run.
func (s *Supabase) InsertJobHistory(ctx context.Context, h *domain.JobHistory) error {
	var out []domain.JobHistory
	_, err := s.client.From("job_history").Insert(h, false, "", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("insert job history %s: %w", h.JobName, err)
	}
	return nil
}

// ListJobHistory returns recent job runs, newest first.
func (s *Supabase) ListJobHistory(ctx context.Context, limit int) ([]domain.JobHistory, error) {
	var rows []domain.JobHistory
	_, err := s.client.From("job_history").
		Select("*", "", false).
		Order("start_time", descending).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list job history: %w", err)
	}
	return rows, nil
}

// InsertEnrichmentLog appends an enrichment audit row.
func (s *Supabase) InsertEnrichmentLog(ctx context.Context, l *domain.EnrichmentLog) error {
	var out []domain.EnrichmentLog
	_, err := s.client.From("enrichment_logs").Insert(l, false, "", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("insert enrichment log: %w", err)
	}
	return nil
}

// InsertVerificationLog appends a verification audit row.
func (s *Supabase) InsertVerificationLog(ctx context.Context, l *domain.VerificationLog) error {
	var out []domain.VerificationLog
	_, err := s.client.From("verification_logs").Insert(l, false, "", "", "").ExecuteTo(&out)
	if err != nil {
		return fmt.Errorf("insert verification log: %w", err)
	}
	return nil
}
