package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/setal/compliance-intel/internal/domain"
)

// ComplianceStore is the slice of the query layer compliance analytics needs.
type ComplianceStore interface {
	ListProperties(ctx context.Context, city, neighborhood string) ([]domain.Property, error)
	ListPaymentsSince(ctx context.Context, since time.Time) ([]domain.TptPayment, error)
}

// ComplianceAnalyser tracks territory-wide compliance and its velocity.
type ComplianceAnalyser struct {
	store ComplianceStore
	now   func() time.Time
}

// NewComplianceAnalyser creates a compliance analyser.
func NewComplianceAnalyser(store ComplianceStore) *ComplianceAnalyser {
	return &ComplianceAnalyser{store: store, now: time.Now}
}

// ComplianceSnapshot is the payload of the compliance analytics endpoint.
type ComplianceSnapshot struct {
	WindowDays         int     `json:"window_days"`
	TotalProperties    int     `json:"total_properties"`
	Registered         int     `json:"registered"`
	Pending            int     `json:"pending"`
	ComplianceRate     float64 `json:"compliance_rate"`
	NewRegistrations   int     `json:"new_registrations"`
	PaymentsInWindow   int     `json:"payments_in_window"`
	CollectedInWindow  float64 `json:"collected_in_window"`
	VelocityPerDay     float64 `json:"velocity_per_day"`
	PredictedRate30Day float64 `json:"predicted_rate_30_day"`
}

// Snapshot computes compliance metrics over the trailing window plus a
// linear 30-day projection of the compliance rate.
func (c *ComplianceAnalyser) Snapshot(ctx context.Context, windowDays int) (*ComplianceSnapshot, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	now := c.now().UTC()
	since := now.AddDate(0, 0, -windowDays)

	properties, err := c.store.ListProperties(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("compliance snapshot: %w", err)
	}
	payments, err := c.store.ListPaymentsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("compliance snapshot: %w", err)
	}

	snap := &ComplianceSnapshot{
		WindowDays:      windowDays,
		TotalProperties: len(properties),
	}
	for _, p := range properties {
		switch p.RegistrationStatus {
		case domain.PropertyRegistered:
			snap.Registered++
			if !p.CreatedAt.Before(since) {
				snap.NewRegistrations++
			}
		case domain.PropertyPendingReg:
			snap.Pending++
		}
	}
	if snap.TotalProperties > 0 {
		snap.ComplianceRate = round2f(float64(snap.Registered) / float64(snap.TotalProperties) * 100)
	}

	for _, p := range payments {
		snap.PaymentsInWindow++
		if p.Status == domain.PaymentCompleted {
			snap.CollectedInWindow += p.Amount
		}
	}

	snap.VelocityPerDay = round2f(float64(snap.NewRegistrations) / float64(windowDays))

	// Project the rate forward assuming registration velocity holds
	// and the property base stays flat.
	if snap.TotalProperties > 0 {
		gained := snap.VelocityPerDay * 30 / float64(snap.TotalProperties) * 100
		snap.PredictedRate30Day = round2f(math.Min(100, snap.ComplianceRate+gained))
	}
	return snap, nil
}
