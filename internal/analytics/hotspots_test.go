package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

type fakeHotspotStore struct {
	listings []domain.ScrapedListing
}

func (f *fakeHotspotStore) ListUnregisteredListings(ctx context.Context) ([]domain.ScrapedListing, error) {
	return f.listings, nil
}

func listing(id string, lat, lon float64) domain.ScrapedListing {
	return domain.ScrapedListing{ID: id, City: "Dakar", Latitude: lat, Longitude: lon}
}

func TestDetectSingleClusterRejectsIsolatedPoint(t *testing.T) {
	st := &fakeHotspotStore{listings: []domain.ScrapedListing{
		listing("a", 14.7000, -17.4000),
		listing("b", 14.7005, -17.4005),
		listing("c", 14.7010, -17.4010),
		listing("d", 14.9000, -17.9000),
	}}

	hotspots, err := NewHotspotDetector(st, config.ScoringConfig{}).Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, hotspots, 1)

	h := hotspots[0]
	assert.Equal(t, 3, h.UnregisteredCount)
	assert.InDelta(t, 14.7005, h.CentroidLat, 1e-9)
	assert.InDelta(t, -17.4005, h.CentroidLon, 1e-9)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, h.ListingIDs)
	assert.Equal(t, "Dakar", h.PrimaryCity)
}

func TestDetectSkipsZeroCoordinates(t *testing.T) {
	st := &fakeHotspotStore{listings: []domain.ScrapedListing{
		listing("a", 14.7000, -17.4000),
		listing("b", 14.7001, -17.4001),
		listing("c", 0, 0),
		listing("d", 0, 0),
	}}

	hotspots, err := NewHotspotDetector(st, config.ScoringConfig{}).Detect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hotspots, "two real points never reach the minimum cluster size")
}

func TestDetectDensityReachability(t *testing.T) {
	// A chain: consecutive points are within radius, endpoints are not.
	st := &fakeHotspotStore{listings: []domain.ScrapedListing{
		listing("a", 14.700, -17.400),
		listing("b", 14.708, -17.400),
		listing("c", 14.716, -17.400),
		listing("d", 14.724, -17.400),
	}}

	hotspots, err := NewHotspotDetector(st, config.ScoringConfig{}).Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.Equal(t, 4, hotspots[0].UnregisteredCount)
}

func TestDetectSortsByCountDescending(t *testing.T) {
	var all []domain.ScrapedListing
	for i := 0; i < 3; i++ {
		all = append(all, listing("s", 14.70+float64(i)*0.001, -17.40))
	}
	for i := 0; i < 6; i++ {
		all = append(all, listing("b", 15.20+float64(i)*0.001, -16.90))
	}

	hotspots, err := NewHotspotDetector(&fakeHotspotStore{listings: all}, config.ScoringConfig{}).Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, hotspots, 2)
	assert.Equal(t, 6, hotspots[0].UnregisteredCount)
	assert.Equal(t, 3, hotspots[1].UnregisteredCount)
}

func TestDetectHonoursConfiguredParameters(t *testing.T) {
	// A chain with 0.008-degree gaps: one cluster at the default radius,
	// all isolated at a tighter one.
	st := &fakeHotspotStore{listings: []domain.ScrapedListing{
		listing("a", 14.700, -17.400),
		listing("b", 14.708, -17.400),
		listing("c", 14.716, -17.400),
	}}

	tight, err := NewHotspotDetector(st, config.ScoringConfig{HotspotRadius: 0.005}).Detect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tight)

	pair := &fakeHotspotStore{listings: []domain.ScrapedListing{
		listing("a", 14.700, -17.400),
		listing("b", 14.701, -17.400),
	}}
	small, err := NewHotspotDetector(pair, config.ScoringConfig{HotspotMinSize: 2}).Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, small, 1)
	assert.Equal(t, 2, small[0].UnregisteredCount)
}

func TestHotspotRiskLevelBuckets(t *testing.T) {
	assert.Equal(t, domain.RiskCritical, hotspotRiskLevel(25, 150000))
	assert.Equal(t, domain.RiskHigh, hotspotRiskLevel(12, 60000))
	assert.Equal(t, domain.RiskMedium, hotspotRiskLevel(5, 10000))
	assert.Equal(t, domain.RiskLow, hotspotRiskLevel(3, 5000))
}
