package domain

import "time"

// RiskLevel buckets a numeric risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFactor is one weighted component of a risk score.
// Invariant within any scorer: factor weights sum to 1.0 ± ε and
// Score ∈ [0,100].
type RiskFactor struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// LandlordRiskScore is the derived risk profile for one landlord.
// Higher OverallScore means lower risk.
type LandlordRiskScore struct {
	LandlordID      string       `json:"landlord_id"`
	OverallScore    float64      `json:"overall_score"`
	RiskLevel       RiskLevel    `json:"risk_level"`
	Factors         []RiskFactor `json:"factors"`
	Recommendations []string     `json:"recommendations"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ListingRiskScore is the derived risk profile for one scraped listing.
// InvestigationPriority inverts the score: higher priority = higher risk.
type ListingRiskScore struct {
	ListingID             string       `json:"listing_id"`
	OverallScore          float64      `json:"overall_score"`
	RiskLevel             RiskLevel    `json:"risk_level"`
	Factors               []RiskFactor `json:"factors"`
	InvestigationPriority int          `json:"investigation_priority"`
	EstimatedRevenue      float64      `json:"estimated_revenue"`
	Recommendations       []string     `json:"recommendations"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// AreaTrend is one month of compliance history for an area.
type AreaTrend struct {
	Month          string  `json:"month"` // YYYY-MM
	ComplianceRate float64 `json:"compliance_rate"`
}

// AreaAssessment is the derived risk profile for a city or neighborhood.
// OverallScore here is a risk score: higher = worse.
type AreaAssessment struct {
	City                 string       `json:"city"`
	Neighborhood         string       `json:"neighborhood,omitempty"`
	OverallScore         float64      `json:"overall_score"`
	RiskLevel            RiskLevel    `json:"risk_level"`
	ComplianceRate       float64      `json:"compliance_rate"`
	UnregisteredEstimate int          `json:"unregistered_estimate"`
	EnforcementPriority  float64      `json:"enforcement_priority"`
	Factors              []RiskFactor `json:"factors"`
	Trends               []AreaTrend  `json:"trends"`
	Recommendations      []string     `json:"recommendations"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Hotspot is a geographic cluster of unregistered listings.
type Hotspot struct {
	CentroidLat          float64   `json:"centroid_lat"`
	CentroidLon          float64   `json:"centroid_lon"`
	PrimaryCity          string    `json:"primary_city"`
	PrimaryNeighborhood  string    `json:"primary_neighborhood,omitempty"`
	UnregisteredCount    int       `json:"unregistered_count"`
	EstimatedLostRevenue float64   `json:"estimated_lost_revenue"`
	RiskLevel            RiskLevel `json:"risk_level"`
	ListingIDs           []string  `json:"listing_ids"`
}

// RevenueForecast is one forecast month from the revenue forecaster.
type RevenueForecast struct {
	Month      string  `json:"month"` // YYYY-MM
	Predicted  float64 `json:"predicted"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Confidence float64 `json:"confidence"`
}

// MonthPattern aggregates booking behavior for one calendar month
// across all observed years.
type MonthPattern struct {
	Month        int     `json:"month"` // 1..12
	AvgOccupancy float64 `json:"avg_occupancy"`
	AvgBookings  float64 `json:"avg_bookings"`
	AvgRevenue   float64 `json:"avg_revenue"`
	RevenueIndex float64 `json:"revenue_index"`
	IsHighSeason bool    `json:"is_high_season"`
}

// SeasonalPatterns is the full seasonal profile derived from bookings.
type SeasonalPatterns struct {
	Months           []MonthPattern `json:"months"`
	PeakMonths       []int          `json:"peak_months"`
	SeasonalityIndex float64        `json:"seasonality_index"`
	YoYTrendPct      float64        `json:"yoy_trend_pct"`
	GeneratedAt      time.Time      `json:"generated_at"`
}
