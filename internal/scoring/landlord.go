package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

// LandlordStore is the slice of the query layer the landlord scorer needs.
type LandlordStore interface {
	GetLandlord(ctx context.Context, id string) (*domain.Landlord, error)
	ListPaymentsByLandlord(ctx context.Context, landlordID string, limit int) ([]domain.TptPayment, error)
	ListComplianceEvents(ctx context.Context, landlordID string) ([]domain.ComplianceEvent, error)
	ListResponseSamples(ctx context.Context, landlordID string, limit int) ([]domain.ResponseSample, error)
	CountPropertiesByLandlord(ctx context.Context, landlordID string) (int, error)
}

const (
	paymentHistoryWindow = 24
	responseSampleLimit  = 10
)

// LandlordScorer computes per-landlord risk profiles.
type LandlordScorer struct {
	store   LandlordStore
	weights config.LandlordWeights
	levels  config.ScoringConfig
	now     func() time.Time
}

// NewLandlordScorer creates a landlord scorer.
func NewLandlordScorer(store LandlordStore, cfg config.ScoringConfig) *LandlordScorer {
	return &LandlordScorer{store: store, weights: cfg.Landlord, levels: cfg, now: time.Now}
}

// Score computes the risk profile for one landlord.
func (s *LandlordScorer) Score(ctx context.Context, landlordID string) (*domain.LandlordRiskScore, error) {
	landlord, err := s.store.GetLandlord(ctx, landlordID)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByLandlord(ctx, landlordID, paymentHistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("score landlord %s: %w", landlordID, err)
	}
	events, err := s.store.ListComplianceEvents(ctx, landlordID)
	if err != nil {
		return nil, fmt.Errorf("score landlord %s: %w", landlordID, err)
	}
	samples, err := s.store.ListResponseSamples(ctx, landlordID, responseSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("score landlord %s: %w", landlordID, err)
	}
	propertyCount, err := s.store.CountPropertiesByLandlord(ctx, landlordID)
	if err != nil {
		return nil, fmt.Errorf("score landlord %s: %w", landlordID, err)
	}

	now := s.now().UTC()
	factors := []domain.RiskFactor{
		{
			Name:        "payment_history",
			Weight:      s.weights.PaymentHistory,
			Score:       scorePaymentHistory(payments, now),
			Description: fmt.Sprintf("Based on the last %d tax payments", len(payments)),
		},
		{
			Name:        "registration_compliance",
			Weight:      s.weights.RegistrationCompliance,
			Score:       scoreRegistration(landlord.RegistrationStatus),
			Description: fmt.Sprintf("Registration status: %s", landlord.RegistrationStatus),
		},
		{
			Name:        "portfolio_size",
			Weight:      s.weights.PortfolioSize,
			Score:       scorePortfolio(propertyCount),
			Description: fmt.Sprintf("%d registered properties", propertyCount),
		},
		{
			Name:        "account_age",
			Weight:      s.weights.AccountAge,
			Score:       scoreAccountAge(landlord.CreatedAt, now),
			Description: "Time since first registration",
		},
		{
			Name:        "compliance_history",
			Weight:      s.weights.ComplianceHistory,
			Score:       scoreComplianceHistory(events),
			Description: fmt.Sprintf("%d compliance events on record", len(events)),
		},
		{
			Name:        "response_time",
			Weight:      s.weights.ResponseTime,
			Score:       scoreResponseTime(samples),
			Description: "Responsiveness to official requests",
		},
	}

	overall := 0.0
	for _, f := range factors {
		overall += f.Weight * f.Score
	}
	overall = round2(overall)
	level := riskLevel(s.levels, overall)

	return &domain.LandlordRiskScore{
		LandlordID:      landlordID,
		OverallScore:    overall,
		RiskLevel:       level,
		Factors:         factors,
		Recommendations: landlordRecommendations(factors, level),
		UpdatedAt:       now,
	}, nil
}

func scorePaymentHistory(payments []domain.TptPayment, now time.Time) float64 {
	if len(payments) == 0 {
		return 50
	}
	score := 100.0
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentOverdue:
			days := now.Sub(p.DueDate).Hours() / 24
			switch {
			case days > 90:
				score -= 20
			case days > 60:
				score -= 15
			case days > 30:
				score -= 10
			default:
				score -= 5
			}
		case domain.PaymentLate:
			score -= 3
		}
	}
	return clamp(score)
}

func scoreRegistration(status domain.RegistrationStatus) float64 {
	switch status {
	case domain.RegistrationFullyCompliant:
		return 100
	case domain.RegistrationPartiallyCompliant:
		return 60
	case domain.RegistrationPending:
		return 40
	case domain.RegistrationNonCompliant:
		return 10
	default:
		return 50
	}
}

func scorePortfolio(count int) float64 {
	switch {
	case count == 0:
		return 100
	case count < 5:
		return 85
	case count < 10:
		return 70
	case count < 20:
		return 55
	default:
		return 40
	}
}

func scoreAccountAge(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 50
	}
	days := now.Sub(createdAt).Hours() / 24
	switch {
	case days >= 730:
		return 90
	case days >= 365:
		return 80
	case days >= 180:
		return 65
	case days >= 90:
		return 50
	default:
		return 35
	}
}

func scoreComplianceHistory(events []domain.ComplianceEvent) float64 {
	if len(events) == 0 {
		return 70
	}
	score := 100.0
	for _, e := range events {
		switch e.EventType {
		case domain.EventViolation:
			score -= 15
		case domain.EventWarning:
			score -= 8
		case domain.EventLateRegistration:
			score -= 5
		case domain.EventResolvedIssue:
			score += 3
		case domain.EventAuditPassed:
			score += 5
		}
	}
	return clamp(score)
}

func scoreResponseTime(samples []domain.ResponseSample) float64 {
	var total time.Duration
	var n int
	for _, s := range samples {
		if s.RespondedAt == nil {
			continue
		}
		total += s.RespondedAt.Sub(s.SentAt)
		n++
	}
	if n == 0 {
		return 70
	}
	mean := total / time.Duration(n)
	switch {
	case mean <= 24*time.Hour:
		return 95
	case mean <= 48*time.Hour:
		return 85
	case mean <= 72*time.Hour:
		return 70
	case mean <= 168*time.Hour:
		return 50
	default:
		return 30
	}
}

var landlordFactorAdvice = map[string]string{
	"payment_history":         "Schedule a payment-plan meeting; repeated overdue tax payments detected",
	"registration_compliance": "Require completion of the property registration process",
	"portfolio_size":          "Audit the full property portfolio for undeclared units",
	"account_age":             "Recently created account; verify identity documents",
	"compliance_history":      "Review past violations and confirm corrective actions",
	"response_time":           "Escalate contact channel; landlord is slow to respond to official requests",
}

func landlordRecommendations(factors []domain.RiskFactor, level domain.RiskLevel) []string {
	var recs []string
	for _, f := range factors {
		if f.Score < 50 {
			if advice, ok := landlordFactorAdvice[f.Name]; ok {
				recs = append(recs, advice)
			}
		}
	}
	switch level {
	case domain.RiskCritical:
		recs = append(recs, "Flag for immediate enforcement review", "Suspend new property registrations pending audit")
	case domain.RiskHigh:
		recs = append(recs, "Add to the priority monitoring list")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required; continue routine monitoring")
	}
	return recs
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
