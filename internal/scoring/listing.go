package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

// ListingStore is the slice of the query layer the listing scorer needs.
type ListingStore interface {
	GetListing(ctx context.Context, id string) (*domain.ScrapedListing, error)
	ListListingsByHost(ctx context.Context, hostID string) ([]domain.ScrapedListing, error)
	GetAreaRanking(ctx context.Context, city string) (*domain.AreaAssessment, error)
}

// ListingScorer computes per-listing risk profiles and investigation
// priorities.
type ListingScorer struct {
	store   ListingStore
	weights config.ListingWeights
	levels  config.ScoringConfig
	now     func() time.Time
}

// NewListingScorer creates a listing scorer.
func NewListingScorer(store ListingStore, cfg config.ScoringConfig) *ListingScorer {
	return &ListingScorer{store: store, weights: cfg.Listing, levels: cfg, now: time.Now}
}

// Score computes the risk profile for one scraped listing.
func (s *ListingScorer) Score(ctx context.Context, listingID string) (*domain.ListingRiskScore, error) {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return s.ScoreListing(ctx, listing)
}

// ScoreListing scores an already-loaded listing. The bulk job uses this
// to avoid re-reading each row.
func (s *ListingScorer) ScoreListing(ctx context.Context, listing *domain.ScrapedListing) (*domain.ListingRiskScore, error) {
	now := s.now().UTC()
	estRevenue := listing.EstimatedAnnualRevenue()

	hostScore, hostDesc := s.scoreHostProfile(ctx, listing)
	locScore, locDesc := s.scoreLocation(ctx, listing.City)

	factors := []domain.RiskFactor{
		{
			Name:        "match_status",
			Weight:      s.weights.MatchStatus,
			Score:       scoreMatchStatus(listing),
			Description: matchDescription(listing),
		},
		{
			Name:        "activity_level",
			Weight:      s.weights.ActivityLevel,
			Score:       scoreActivity(listing, now),
			Description: "Review velocity since first observation",
		},
		{
			Name:        "revenue_estimate",
			Weight:      s.weights.RevenueEstimate,
			Score:       scoreRevenueEstimate(estRevenue),
			Description: fmt.Sprintf("Estimated annual revenue %.0f", estRevenue),
		},
		{
			Name:        "listing_age",
			Weight:      s.weights.ListingAge,
			Score:       scoreListingAge(listing, now),
			Description: "Time the listing has been live",
		},
		{
			Name:        "host_profile",
			Weight:      s.weights.HostProfile,
			Score:       hostScore,
			Description: hostDesc,
		},
		{
			Name:        "location_risk",
			Weight:      s.weights.LocationRisk,
			Score:       locScore,
			Description: locDesc,
		},
	}

	overall := 0.0
	for _, f := range factors {
		overall += f.Weight * f.Score
	}
	overall = round2(overall)

	// Priority ranks by inverted risk plus tax impact.
	risk := 100 - overall
	revenueBoost := math.Min(30, estRevenue/100000*30)
	priority := int(math.Round(0.7*risk + revenueBoost))
	if priority > 100 {
		priority = 100
	}
	level := invertedRiskLevel(s.levels, risk)

	return &domain.ListingRiskScore{
		ListingID:             listing.ID,
		OverallScore:          overall,
		RiskLevel:             level,
		Factors:               factors,
		InvestigationPriority: priority,
		EstimatedRevenue:      estRevenue,
		Recommendations:       listingRecommendations(listing, level),
		UpdatedAt:             now,
	}, nil
}

func scoreMatchStatus(l *domain.ScrapedListing) float64 {
	if l.MatchedRegistration {
		return 100
	}
	return 0
}

func matchDescription(l *domain.ScrapedListing) string {
	if l.MatchedRegistration {
		return "Matched to a registered property"
	}
	return "No matching property registration found"
}

func scoreActivity(l *domain.ScrapedListing, now time.Time) float64 {
	reviews := 0.0
	if l.ReviewCount != nil {
		reviews = float64(*l.ReviewCount)
	}
	daysActive := now.Sub(l.FirstScrapedAt).Hours() / 24
	months := math.Max(1, daysActive/30)
	perMonth := reviews / months
	switch {
	case perMonth >= 10:
		return 10
	case perMonth >= 5:
		return 30
	case perMonth >= 2:
		return 50
	case perMonth >= 0.5:
		return 70
	default:
		return 90
	}
}

func scoreRevenueEstimate(estAnnual float64) float64 {
	switch {
	case estAnnual >= 100000:
		return 5
	case estAnnual >= 50000:
		return 20
	case estAnnual >= 25000:
		return 40
	case estAnnual >= 10000:
		return 65
	default:
		return 85
	}
}

func scoreListingAge(l *domain.ScrapedListing, now time.Time) float64 {
	days := now.Sub(l.FirstScrapedAt).Hours() / 24
	switch {
	case days >= 365:
		return 20
	case days >= 180:
		return 35
	case days >= 90:
		return 50
	case days >= 30:
		return 70
	default:
		return 85
	}
}

func (s *ListingScorer) scoreHostProfile(ctx context.Context, l *domain.ScrapedListing) (float64, string) {
	if l.HostID == "" {
		return 30, "Host identity not disclosed"
	}
	siblings, err := s.store.ListListingsByHost(ctx, l.HostID)
	if err != nil {
		// Host lookup failure degrades to the single-listing bucket.
		return 70, "Host portfolio unavailable"
	}
	total := len(siblings)
	unregistered := 0
	for _, sib := range siblings {
		if !sib.MatchedRegistration {
			unregistered++
		}
	}
	desc := fmt.Sprintf("Host operates %d listings, %d unregistered", total, unregistered)
	switch {
	case total >= 5 && unregistered >= 3:
		return 10, desc
	case total >= 3:
		return 30, desc
	case total > 1:
		return 50, desc
	default:
		return 70, desc
	}
}

func (s *ListingScorer) scoreLocation(ctx context.Context, city string) (float64, string) {
	area, err := s.store.GetAreaRanking(ctx, city)
	if err != nil {
		return 70, fmt.Sprintf("No area assessment for %s", city)
	}
	desc := fmt.Sprintf("Area risk for %s: %s", city, area.RiskLevel)
	switch area.RiskLevel {
	case domain.RiskCritical:
		return 15, desc
	case domain.RiskHigh:
		return 30, desc
	case domain.RiskMedium:
		return 50, desc
	default:
		return 70, desc
	}
}

func listingRecommendations(l *domain.ScrapedListing, level domain.RiskLevel) []string {
	var recs []string
	if !l.MatchedRegistration {
		recs = append(recs, "Cross-reference the listing address against the property registry")
	}
	switch level {
	case domain.RiskCritical:
		recs = append(recs, "Open an investigation case; likely unregistered commercial operation")
	case domain.RiskHigh:
		recs = append(recs, "Send a registration notice to the platform host")
	}
	if l.HostID != "" && level != domain.RiskLow {
		recs = append(recs, "Review the host's other listings for the same pattern")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required; continue routine monitoring")
	}
	return recs
}
