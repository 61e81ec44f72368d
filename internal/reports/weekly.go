package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/setal/compliance-intel/internal/domain"
	"github.com/setal/compliance-intel/internal/store"
)

// WeeklyStore is the persistence surface the weekly generator needs.
type WeeklyStore interface {
	ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error)
	ListPaymentsSince(ctx context.Context, since time.Time) ([]domain.TptPayment, error)
	ListUnregisteredListings(ctx context.Context) ([]domain.ScrapedListing, error)
	GetWeeklyReport(ctx context.Context, id string) (*domain.WeeklyReport, error)
	UpsertWeeklyReport(ctx context.Context, r *domain.WeeklyReport) error
}

// WeeklyGenerator assembles and persists the weekly compliance digest.
type WeeklyGenerator struct {
	store    WeeklyStore
	narrator *Narrator
	now      func() time.Time
}

func NewWeeklyGenerator(s WeeklyStore) *WeeklyGenerator {
	return &WeeklyGenerator{store: s, narrator: NewNarrator(), now: time.Now}
}

// weekStartOf returns the Monday 00:00 UTC of t's ISO week.
func weekStartOf(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// Generate builds the report for the week containing now, upserts it,
// and returns the stored document. Regeneration overwrites on id.
func (g *WeeklyGenerator) Generate(ctx context.Context) (*domain.WeeklyReport, error) {
	now := g.now()
	weekStart := weekStartOf(now)

	props, err := g.store.ListProperties(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("weekly report: list properties: %w", err)
	}
	registered := 0
	for _, p := range props {
		if p.RegistrationStatus == domain.PropertyRegistered {
			registered++
		}
	}
	complianceRate := 0.0
	if len(props) > 0 {
		complianceRate = round2(float64(registered) / float64(len(props)) * 100)
	}

	payments, err := g.store.ListPaymentsSince(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("weekly report: list payments: %w", err)
	}
	var collected, outstanding float64
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentCompleted:
			collected += p.Amount
		case domain.PaymentPending, domain.PaymentOverdue, domain.PaymentLate:
			outstanding += p.Amount
		}
	}
	collectionRate := 100.0
	if collected+outstanding > 0 {
		collectionRate = round2(collected / (collected + outstanding) * 100)
	}

	unmatched, err := g.store.ListUnregisteredListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("weekly report: list unmatched listings: %w", err)
	}
	newUnmatched := 0
	for _, l := range unmatched {
		if !l.FirstScrapedAt.Before(weekStart) {
			newUnmatched++
		}
	}

	// Change is measured against the previous week's stored report so
	// regeneration stays deterministic.
	changePct := 0.0
	prev, err := g.store.GetWeeklyReport(ctx, weeklyID(weekStart.AddDate(0, 0, -7)))
	switch {
	case err == nil:
		changePct = round2(complianceRate - prev.ComplianceRate)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("weekly report: previous week: %w", err)
	}

	report := &domain.WeeklyReport{
		ID:                   weeklyID(weekStart),
		WeekStart:            weekStart,
		Headline:             fmt.Sprintf("Weekly compliance report for week of %s", weekStart.Format("2006-01-02")),
		ComplianceRate:       complianceRate,
		ComplianceChangePct:  changePct,
		RevenueCollected:     round2(collected),
		RevenueOutstanding:   round2(outstanding),
		CollectionRate:       collectionRate,
		NewUnmatchedListings: newUnmatched,
		GeneratedAt:          now.UTC(),
	}
	report.Alerts = weeklyAlerts(report)
	report.Recommendations = weeklyRecommendations(report)
	report.Metrics = []domain.ReportMetric{
		{Name: "compliance_rate", Value: complianceRate, Unit: "%", ChangePct: changePct, Trend: trendOf(changePct)},
		{Name: "revenue_collected", Value: report.RevenueCollected, Unit: "XOF", Trend: trendOf(0)},
		{Name: "collection_rate", Value: collectionRate, Unit: "%", Trend: trendOf(0)},
		{Name: "new_unmatched_listings", Value: float64(newUnmatched), Trend: trendOf(0)},
	}
	if prev != nil {
		fillMetricChange(report.Metrics, "revenue_collected", report.RevenueCollected, prev.RevenueCollected)
		fillMetricChange(report.Metrics, "collection_rate", collectionRate, prev.CollectionRate)
		fillMetricChange(report.Metrics, "new_unmatched_listings", float64(newUnmatched), float64(prev.NewUnmatchedListings))
	}
	report.Summary = g.narrator.WeeklySummary(report)

	if err := g.store.UpsertWeeklyReport(ctx, report); err != nil {
		return nil, fmt.Errorf("weekly report: upsert: %w", err)
	}
	return report, nil
}

func weeklyID(weekStart time.Time) string {
	return "weekly-" + weekStart.Format("2006-01-02")
}

func weeklyAlerts(r *domain.WeeklyReport) []domain.Alert {
	var alerts []domain.Alert
	if r.ComplianceRate < 70 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertCritical,
			Message:  fmt.Sprintf("Compliance rate %.1f%% is below the 70%% threshold", r.ComplianceRate),
		})
	}
	if r.ComplianceChangePct < -5 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertWarning,
			Message:  fmt.Sprintf("Compliance dropped %.1f points week over week", -r.ComplianceChangePct),
		})
	}
	if r.CollectionRate < 80 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertWarning,
			Message:  fmt.Sprintf("Collection rate %.1f%% is below the 80%% threshold", r.CollectionRate),
		})
	}
	if r.RevenueOutstanding > r.RevenueCollected {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertCritical,
			Message:  fmt.Sprintf("Outstanding revenue (%.0f XOF) exceeds collections (%.0f XOF)", r.RevenueOutstanding, r.RevenueCollected),
		})
	}
	if r.NewUnmatchedListings > 50 {
		alerts = append(alerts, domain.Alert{
			Severity: domain.AlertWarning,
			Message:  fmt.Sprintf("%d new unmatched listings surfaced this week", r.NewUnmatchedListings),
		})
	}
	return alerts
}

func weeklyRecommendations(r *domain.WeeklyReport) []string {
	var recs []string
	if r.ComplianceRate < 70 {
		recs = append(recs, "Launch a registration outreach push to lift the compliance rate")
	}
	if r.ComplianceChangePct < -5 {
		recs = append(recs, "Investigate the week-over-week compliance drop before it compounds")
	}
	if r.CollectionRate < 80 {
		recs = append(recs, "Chase outstanding tax payments with reminder notices")
	}
	if r.RevenueOutstanding > r.RevenueCollected {
		recs = append(recs, "Escalate collections: unpaid balances now exceed receipts")
	}
	if r.NewUnmatchedListings > 50 {
		recs = append(recs, "Assign the new unmatched listings to the matching queue")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required; continue routine monitoring")
	}
	return recs
}

func trendOf(changePct float64) string {
	switch {
	case changePct > 0.5:
		return "up"
	case changePct < -0.5:
		return "down"
	default:
		return "flat"
	}
}

func fillMetricChange(metrics []domain.ReportMetric, name string, cur, prev float64) {
	for i := range metrics {
		if metrics[i].Name != name {
			continue
		}
		change := 0.0
		if prev != 0 {
			change = round2((cur - prev) / math.Abs(prev) * 100)
		}
		metrics[i].ChangePct = change
		metrics[i].Trend = trendOf(change)
		return
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
