// Package reports materialises the weekly, monthly, and enforcement
// report documents consumed by enforcement teams.
package reports

import (
	"fmt"
	"log"

	"github.com/osteele/liquid"

	"github.com/setal/compliance-intel/internal/domain"
)

// Narrative templates. Numbers are pre-rounded by the generators so
// the templates only do layout.
const (
	weeklySummaryTmpl = `Compliance stands at {{ compliance_rate }}% ({{ change_direction }} {{ change_abs }} points week over week). ` +
		`Collections reached {{ collected }} XOF against {{ outstanding }} XOF outstanding, a {{ collection_rate }}% collection rate.` +
		`{% if new_listings > 0 %} {{ new_listings }} new unmatched listings surfaced this week.{% endif %}` +
		`{% if alert_count > 0 %} {{ alert_count }} alert{% if alert_count > 1 %}s{% endif %} require attention.{% endif %}`

	monthlySummaryTmpl = `{{ month }} closed at {{ compliance_rate }}% compliance with {{ revenue_total }} XOF collected ` +
		`({% if revenue_growth >= 0 %}up {{ revenue_growth }}%{% else %}down {{ revenue_growth_abs }}%{% endif %} month over month). ` +
		`{% if hotspot_count > 0 %}{{ hotspot_count }} active hotspot{% if hotspot_count > 1 %}s{% endif %} of unregistered activity, led by {{ top_hotspot_city }}. {% endif %}` +
		`{{ high_risk_landlords }} landlords and {{ high_risk_listings }} listings sit in the high or critical risk bands.`

	enforcementSummaryTmpl = `{{ total_targets }} enforcement target{% if total_targets > 1 %}s{% endif %} across {{ city_count }} cit{% if city_count == 1 %}y{% else %}ies{% endif %}, ` +
		`needing {{ inspectors }} inspector{% if inspectors > 1 %}s{% endif %} for an estimated {{ hours }} field hours. ` +
		`Projected recovery if fully executed: {{ outcome }} XOF.`
)

// Narrator renders report prose from templates. A template failure
// falls back to a plain rendering rather than failing the report.
type Narrator struct {
	engine *liquid.Engine
}

// NewNarrator creates the template engine.
func NewNarrator() *Narrator {
	return &Narrator{engine: liquid.NewEngine()}
}

func (n *Narrator) render(tmpl string, bindings liquid.Bindings, fallback string) string {
	out, err := n.engine.ParseAndRenderString(tmpl, bindings)
	if err != nil {
		log.Printf("[Reports] template render failed: %v", err)
		return fallback
	}
	return out
}

// WeeklySummary renders the weekly report prose.
func (n *Narrator) WeeklySummary(r *domain.WeeklyReport) string {
	direction := "up"
	changeAbs := r.ComplianceChangePct
	if changeAbs < 0 {
		direction = "down"
		changeAbs = -changeAbs
	}
	return n.render(weeklySummaryTmpl, liquid.Bindings{
		"compliance_rate":  r.ComplianceRate,
		"change_direction": direction,
		"change_abs":       changeAbs,
		"collected":        r.RevenueCollected,
		"outstanding":      r.RevenueOutstanding,
		"collection_rate":  r.CollectionRate,
		"new_listings":     r.NewUnmatchedListings,
		"alert_count":      len(r.Alerts),
	}, fmt.Sprintf("Compliance at %.1f%%, %.0f XOF collected.", r.ComplianceRate, r.RevenueCollected))
}

// MonthlySummary renders the monthly report prose.
func (n *Narrator) MonthlySummary(r *domain.MonthlyReport) string {
	topCity := ""
	if len(r.TopHotspots) > 0 {
		topCity = r.TopHotspots[0].PrimaryCity
	}
	growthAbs := r.RevenueGrowthPct
	if growthAbs < 0 {
		growthAbs = -growthAbs
	}
	highLandlords := r.RiskSummary.LandlordsHighRisk + r.RiskSummary.LandlordsCritical
	highListings := r.RiskSummary.ListingsHighRisk + r.RiskSummary.ListingsCritical
	return n.render(monthlySummaryTmpl, liquid.Bindings{
		"month":               r.Month,
		"compliance_rate":     r.ComplianceRate,
		"revenue_total":       r.RevenueTotal,
		"revenue_growth":      r.RevenueGrowthPct,
		"revenue_growth_abs":  growthAbs,
		"hotspot_count":       len(r.TopHotspots),
		"top_hotspot_city":    topCity,
		"high_risk_landlords": highLandlords,
		"high_risk_listings":  highListings,
	}, fmt.Sprintf("%s closed at %.1f%% compliance.", r.Month, r.ComplianceRate))
}

// EnforcementSummary renders the enforcement report prose.
func (n *Narrator) EnforcementSummary(r *domain.EnforcementReport) string {
	return n.render(enforcementSummaryTmpl, liquid.Bindings{
		"total_targets": r.TotalTargets,
		"city_count":    len(r.CityGroups),
		"inspectors":    r.InspectorsNeeded,
		"hours":         r.EstimatedHours,
		"outcome":       r.EstimatedOutcome,
	}, fmt.Sprintf("%d enforcement targets identified.", r.TotalTargets))
}
