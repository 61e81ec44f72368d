package domain

import "time"

// AlertSeverity grades a report alert.
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Alert is one actionable finding attached to a report.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// ReportMetric is one named value in a report's key-metrics block.
type ReportMetric struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit,omitempty"`
	ChangePct float64 `json:"change_pct"`
	Trend     string  `json:"trend"` // up | down | flat
}

// WeeklyReport is the immutable weekly enforcement digest,
// keyed by the ISO date of the week start.
type WeeklyReport struct {
	ID                   string         `json:"id"` // weekly-YYYY-MM-DD
	WeekStart            time.Time      `json:"week_start"`
	Headline             string         `json:"headline"`
	Summary              string         `json:"summary"`
	Metrics              []ReportMetric `json:"metrics"`
	ComplianceRate       float64        `json:"compliance_rate"`
	ComplianceChangePct  float64        `json:"compliance_change_pct"`
	RevenueCollected     float64        `json:"revenue_collected"`
	RevenueOutstanding   float64        `json:"revenue_outstanding"`
	CollectionRate       float64        `json:"collection_rate"`
	NewUnmatchedListings int            `json:"new_unmatched_listings"`
	Alerts               []Alert        `json:"alerts"`
	Recommendations      []string       `json:"recommendations"`
	GeneratedAt          time.Time      `json:"generated_at"`
}

// MonthlyReport aggregates compliance, revenue, hotspot, seasonal and
// risk summaries for one calendar month, keyed monthly-YYYY-MM.
type MonthlyReport struct {
	ID               string            `json:"id"` // monthly-YYYY-MM
	Month            string            `json:"month"`
	Headline         string            `json:"headline"`
	Summary          string            `json:"summary"`
	Metrics          []ReportMetric    `json:"metrics"`
	ComplianceRate   float64           `json:"compliance_rate"`
	RevenueTotal     float64           `json:"revenue_total"`
	RevenueGrowthPct float64           `json:"revenue_growth_pct"`
	TopHotspots      []Hotspot         `json:"top_hotspots"`
	Seasonal         *SeasonalPatterns `json:"seasonal,omitempty"`
	RiskSummary      RiskSummary       `json:"risk_summary"`
	Alerts           []Alert           `json:"alerts"`
	Recommendations  []string          `json:"recommendations"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// RiskSummary counts scored entities per risk level.
type RiskSummary struct {
	LandlordsHighRisk int `json:"landlords_high_risk"`
	LandlordsCritical int `json:"landlords_critical"`
	ListingsHighRisk  int `json:"listings_high_risk"`
	ListingsCritical  int `json:"listings_critical"`
}

// EnforcementTarget is one ranked entry in the enforcement report.
type EnforcementTarget struct {
	TargetID         string    `json:"target_id"`
	TargetType       string    `json:"target_type"` // landlord | listing | area
	City             string    `json:"city"`
	RiskScore        float64   `json:"risk_score"`
	EstimatedRevenue float64   `json:"estimated_revenue"`
	Priority         float64   `json:"priority"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Reason           string    `json:"reason"`
}

// CityTargetGroup groups enforcement targets by city with the
// resources their inspection would need.
type CityTargetGroup struct {
	City             string  `json:"city"`
	TargetCount      int     `json:"target_count"`
	InspectorsNeeded int     `json:"inspectors_needed"`
	EstimatedHours   int     `json:"estimated_hours"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
}

// EnforcementReport ranks enforcement targets across the territory,
// keyed by generation date.
type EnforcementReport struct {
	ID               string              `json:"id"` // enforcement-YYYY-MM-DD
	Headline         string              `json:"headline"`
	Summary          string              `json:"summary"`
	Targets          []EnforcementTarget `json:"targets"`
	CityGroups       []CityTargetGroup   `json:"city_groups"`
	TotalTargets     int                 `json:"total_targets"`
	InspectorsNeeded int                 `json:"inspectors_needed"`
	EstimatedHours   int                 `json:"estimated_hours"`
	EstimatedOutcome float64             `json:"estimated_outcome"`
	ComplianceRate   float64             `json:"compliance_rate"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// LongTermTrend is one stored entry of the monthly trend analysis.
type LongTermTrend struct {
	Period         string    `json:"period"` // YYYY-MM
	ComplianceRate float64   `json:"compliance_rate"`
	RevenueTotal   float64   `json:"revenue_total"`
	ListingsTotal  int       `json:"listings_total"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// MonthlyInsight is one generated narrative insight row.
type MonthlyInsight struct {
	Month     string    `json:"month"`
	Category  string    `json:"category"`
	Insight   string    `json:"insight"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a queued alert for the external notifier.
type Notification struct {
	Severity  AlertSeverity `json:"severity"`
	Channel   string        `json:"channel"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
}
