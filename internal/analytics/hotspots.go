// Package analytics derives aggregate intelligence from the store:
// geographic hotspots of unregistered listings, revenue forecasting,
// seasonal booking patterns, compliance velocity, and demand prediction.
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

const (
	// defaultClusterRadius is the neighborhood radius in coordinate
	// degrees, roughly one kilometre at Senegalese latitudes.
	defaultClusterRadius = 0.01
	// defaultMinClusterSize is the smallest group worth reporting.
	defaultMinClusterSize = 3
)

// HotspotStore is the slice of the query layer the hotspot detector needs.
type HotspotStore interface {
	ListUnregisteredListings(ctx context.Context) ([]domain.ScrapedListing, error)
}

// HotspotDetector clusters unregistered listings by proximity.
type HotspotDetector struct {
	store   HotspotStore
	radius  float64
	minSize int
}

// NewHotspotDetector creates a hotspot detector with the configured
// clustering parameters, falling back to the defaults.
func NewHotspotDetector(store HotspotStore, cfg config.ScoringConfig) *HotspotDetector {
	radius := cfg.HotspotRadius
	if radius <= 0 {
		radius = defaultClusterRadius
	}
	minSize := cfg.HotspotMinSize
	if minSize <= 0 {
		minSize = defaultMinClusterSize
	}
	return &HotspotDetector{store: store, radius: radius, minSize: minSize}
}

// Detect clusters all geolocated unregistered listings and returns the
// resulting hotspots, largest first.
func (d *HotspotDetector) Detect(ctx context.Context) ([]domain.Hotspot, error) {
	listings, err := d.store.ListUnregisteredListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect hotspots: %w", err)
	}

	points := listings[:0]
	for _, l := range listings {
		if l.Latitude == 0 && l.Longitude == 0 {
			continue
		}
		points = append(points, l)
	}

	clusters := clusterPoints(points, d.radius, d.minSize)
	hotspots := make([]domain.Hotspot, 0, len(clusters))
	for _, members := range clusters {
		hotspots = append(hotspots, buildHotspot(members))
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].UnregisteredCount > hotspots[j].UnregisteredCount
	})
	return hotspots, nil
}

// clusterPoints runs fixed-radius density clustering. Expansion is
// iterative with an explicit frontier; dense city-centre clusters can
// reach thousands of points.
func clusterPoints(points []domain.ScrapedListing, radius float64, minSize int) [][]domain.ScrapedListing {
	visited := make([]bool, len(points))
	var clusters [][]domain.ScrapedListing

	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true
		cluster := []domain.ScrapedListing{points[i]}
		frontier := []int{i}

		for len(frontier) > 0 {
			current := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			for j := range points {
				if visited[j] {
					continue
				}
				if withinRadius(&points[current], &points[j], radius) {
					visited[j] = true
					cluster = append(cluster, points[j])
					frontier = append(frontier, j)
				}
			}
		}

		if len(cluster) >= minSize {
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}

func withinRadius(a, b *domain.ScrapedListing, radius float64) bool {
	dLat := a.Latitude - b.Latitude
	dLon := a.Longitude - b.Longitude
	return dLat*dLat+dLon*dLon <= radius*radius
}

func buildHotspot(members []domain.ScrapedListing) domain.Hotspot {
	var latSum, lonSum, revenue float64
	cityCounts := map[string]int{}
	hoodCounts := map[string]int{}
	ids := make([]string, 0, len(members))

	for i := range members {
		m := &members[i]
		latSum += m.Latitude
		lonSum += m.Longitude
		revenue += m.EstimatedAnnualRevenue()
		cityCounts[m.City]++
		if m.Neighborhood != "" {
			hoodCounts[m.Neighborhood]++
		}
		ids = append(ids, m.ID)
	}

	n := float64(len(members))
	return domain.Hotspot{
		CentroidLat:          latSum / n,
		CentroidLon:          lonSum / n,
		PrimaryCity:          mode(cityCounts),
		PrimaryNeighborhood:  mode(hoodCounts),
		UnregisteredCount:    len(members),
		EstimatedLostRevenue: revenue,
		RiskLevel:            hotspotRiskLevel(len(members), revenue),
		ListingIDs:           ids,
	}
}

// mode returns the most frequent key, ties broken lexicographically so
// the result is deterministic.
func mode(counts map[string]int) string {
	best, bestCount := "", 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}

func hotspotRiskLevel(count int, revenue float64) domain.RiskLevel {
	countScore := 1.0
	switch {
	case count >= 20:
		countScore = 4
	case count >= 10:
		countScore = 3
	case count >= 5:
		countScore = 2
	}
	revenueScore := 1.0
	switch {
	case revenue >= 100000:
		revenueScore = 4
	case revenue >= 50000:
		revenueScore = 3
	case revenue >= 20000:
		revenueScore = 2
	}
	avg := (countScore + revenueScore) / 2
	switch {
	case avg >= 3.5:
		return domain.RiskCritical
	case avg >= 2.5:
		return domain.RiskHigh
	case avg >= 1.5:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
