package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/setal/compliance-intel/internal/domain"
)

// TrendStore is the persistence surface for long-term trend rows and
// generated monthly insights.
type TrendStore interface {
	ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error)
	ListCompletedPayments(ctx context.Context) ([]domain.TptPayment, error)
	ListListings(ctx context.Context) ([]domain.ScrapedListing, error)
	InsertLongTermTrend(ctx context.Context, t *domain.LongTermTrend) error
	InsertMonthlyInsight(ctx context.Context, in *domain.MonthlyInsight) error
}

// TrendRecorder appends the monthly long-term trend row and the
// narrative insights derived from the monthly report.
type TrendRecorder struct {
	store TrendStore
	now   func() time.Time
}

func NewTrendRecorder(s TrendStore) *TrendRecorder {
	return &TrendRecorder{store: s, now: time.Now}
}

// RecordTrend snapshots the current period into long_term_trends.
// Rows are append-only; each run adds one entry per period.
func (r *TrendRecorder) RecordTrend(ctx context.Context) (*domain.LongTermTrend, error) {
	now := r.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	props, err := r.store.ListProperties(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("trend snapshot: list properties: %w", err)
	}
	registered := 0
	for _, p := range props {
		if p.RegistrationStatus == domain.PropertyRegistered {
			registered++
		}
	}
	rate := 0.0
	if len(props) > 0 {
		rate = round2(float64(registered) / float64(len(props)) * 100)
	}

	payments, err := r.store.ListCompletedPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("trend snapshot: list payments: %w", err)
	}

	listings, err := r.store.ListListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("trend snapshot: list listings: %w", err)
	}

	trend := &domain.LongTermTrend{
		Period:         monthStart.Format("2006-01"),
		ComplianceRate: rate,
		RevenueTotal:   round2(monthRevenue(payments, monthStart)),
		ListingsTotal:  len(listings),
		GeneratedAt:    now,
	}
	if err := r.store.InsertLongTermTrend(ctx, trend); err != nil {
		return nil, fmt.Errorf("trend snapshot: insert: %w", err)
	}
	return trend, nil
}

// RecordInsights derives narrative insight rows from a monthly report
// and stores them. Returns how many were written.
func (r *TrendRecorder) RecordInsights(ctx context.Context, report *domain.MonthlyReport) (int, error) {
	now := r.now().UTC()
	insights := monthlyInsights(report)
	for i := range insights {
		insights[i].Month = report.Month
		insights[i].CreatedAt = now
		if err := r.store.InsertMonthlyInsight(ctx, &insights[i]); err != nil {
			return i, fmt.Errorf("monthly insights: insert: %w", err)
		}
	}
	return len(insights), nil
}

func monthlyInsights(r *domain.MonthlyReport) []domain.MonthlyInsight {
	var insights []domain.MonthlyInsight

	category := "compliance"
	switch {
	case r.ComplianceRate >= 85:
		insights = append(insights, domain.MonthlyInsight{Category: category,
			Insight: fmt.Sprintf("Compliance is strong at %.1f%%; sustain the current registration process", r.ComplianceRate)})
	case r.ComplianceRate < 70:
		insights = append(insights, domain.MonthlyInsight{Category: category,
			Insight: fmt.Sprintf("Compliance at %.1f%% is below target; outreach capacity should be expanded", r.ComplianceRate)})
	default:
		insights = append(insights, domain.MonthlyInsight{Category: category,
			Insight: fmt.Sprintf("Compliance holds at %.1f%%; incremental gains are available through listing matching", r.ComplianceRate)})
	}

	if r.RevenueGrowthPct > 0 {
		insights = append(insights, domain.MonthlyInsight{Category: "revenue",
			Insight: fmt.Sprintf("Collections grew %.1f%% month over month to %.0f XOF", r.RevenueGrowthPct, r.RevenueTotal)})
	} else if r.RevenueGrowthPct < 0 {
		insights = append(insights, domain.MonthlyInsight{Category: "revenue",
			Insight: fmt.Sprintf("Collections fell %.1f%% month over month; the payment pipeline needs review", -r.RevenueGrowthPct)})
	}

	if len(r.TopHotspots) > 0 {
		top := r.TopHotspots[0]
		insights = append(insights, domain.MonthlyInsight{Category: "hotspots",
			Insight: fmt.Sprintf("%s concentrates %d unregistered listings worth an estimated %.0f XOF in lost revenue", top.PrimaryCity, top.UnregisteredCount, top.EstimatedLostRevenue)})
	}

	if r.Seasonal != nil && len(r.Seasonal.PeakMonths) > 0 {
		insights = append(insights, domain.MonthlyInsight{Category: "seasonality",
			Insight: fmt.Sprintf("Peak season spans months %v; enforcement staffing should anticipate the demand surge", r.Seasonal.PeakMonths)})
	}

	return insights
}
