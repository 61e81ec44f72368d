package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

const (
	// monthlyNightCapacity assumes a 30-night month across a nominal
	// 100-unit market when converting nights to occupancy.
	monthlyNightCapacity = 3000
	// highSeasonIndex marks a month as high season once its revenue
	// runs 15% above the yearly average.
	highSeasonIndex = 1.15
)

// SeasonalStore is the slice of the query layer the analyser needs.
type SeasonalStore interface {
	ListBookings(ctx context.Context, since time.Time) ([]domain.Booking, error)
}

// SeasonalAnalyser extracts month-of-year booking patterns.
type SeasonalAnalyser struct {
	store    SeasonalStore
	seasonal config.SeasonalConfig
	now      func() time.Time
}

// NewSeasonalAnalyser creates a seasonal analyser.
func NewSeasonalAnalyser(store SeasonalStore, seasonal config.SeasonalConfig) *SeasonalAnalyser {
	return &SeasonalAnalyser{store: store, seasonal: seasonal, now: time.Now}
}

type monthAgg struct {
	nights   int
	bookings int
	revenue  float64
}

// Analyse aggregates the last years of bookings into a seasonal profile.
// With no booking data it falls back to the configured demand curve.
func (s *SeasonalAnalyser) Analyse(ctx context.Context, years int) (*domain.SeasonalPatterns, error) {
	if years <= 0 {
		years = 2
	}
	now := s.now().UTC()
	bookings, err := s.store.ListBookings(ctx, now.AddDate(-years, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("seasonal analysis: %w", err)
	}
	if len(bookings) == 0 {
		return s.defaultPatterns(now), nil
	}

	// Group by year-month first so multi-year months average rather
	// than accumulate.
	byYearMonth := map[string]*monthAgg{}
	for _, b := range bookings {
		key := b.CheckInDate.UTC().Format("2006-01")
		agg := byYearMonth[key]
		if agg == nil {
			agg = &monthAgg{}
			byYearMonth[key] = agg
		}
		agg.nights += b.TotalNights
		agg.bookings++
		agg.revenue += b.Revenue
	}

	var perMonth [12]struct {
		nights   float64
		bookings float64
		revenue  float64
		samples  int
	}
	for key, agg := range byYearMonth {
		t, err := time.Parse("2006-01", key)
		if err != nil {
			continue
		}
		m := int(t.Month()) - 1
		perMonth[m].nights += float64(agg.nights)
		perMonth[m].bookings += float64(agg.bookings)
		perMonth[m].revenue += agg.revenue
		perMonth[m].samples++
	}

	overallAvg := 0.0
	observed := 0
	monthAvgRevenue := [12]float64{}
	for m := 0; m < 12; m++ {
		if perMonth[m].samples == 0 {
			continue
		}
		monthAvgRevenue[m] = perMonth[m].revenue / float64(perMonth[m].samples)
		overallAvg += monthAvgRevenue[m]
		observed++
	}
	if observed > 0 {
		overallAvg /= float64(observed)
	}

	patterns := &domain.SeasonalPatterns{
		Months:      make([]domain.MonthPattern, 0, 12),
		GeneratedAt: now,
	}
	indices := make([]float64, 0, 12)
	for m := 0; m < 12; m++ {
		samples := float64(perMonth[m].samples)
		mp := domain.MonthPattern{Month: m + 1}
		if samples > 0 {
			mp.AvgBookings = round2f(perMonth[m].bookings / samples)
			mp.AvgOccupancy = round2f(math.Min(100, perMonth[m].nights/samples/monthlyNightCapacity*100))
			mp.AvgRevenue = round2f(monthAvgRevenue[m])
			if overallAvg > 0 {
				mp.RevenueIndex = round2f(monthAvgRevenue[m] / overallAvg)
			}
			mp.IsHighSeason = mp.RevenueIndex >= highSeasonIndex
			indices = append(indices, mp.RevenueIndex)
			if mp.IsHighSeason {
				patterns.PeakMonths = append(patterns.PeakMonths, m+1)
			}
		}
		patterns.Months = append(patterns.Months, mp)
	}

	patterns.SeasonalityIndex = round2f(coefficientOfVariation(indices))
	patterns.YoYTrendPct = round2f(yearOverYearTrend(bookings, now))
	sort.Ints(patterns.PeakMonths)
	return patterns, nil
}

// defaultPatterns synthesises a profile from the configured demand
// curve when booking history is too thin to aggregate.
func (s *SeasonalAnalyser) defaultPatterns(now time.Time) *domain.SeasonalPatterns {
	patterns := &domain.SeasonalPatterns{
		Months:      make([]domain.MonthPattern, 0, 12),
		GeneratedAt: now,
	}
	indices := make([]float64, 0, 12)
	for m := 1; m <= 12; m++ {
		factor := s.seasonal.Factor(time.Month(m))
		mp := domain.MonthPattern{
			Month:        m,
			RevenueIndex: factor,
			IsHighSeason: factor >= highSeasonIndex,
		}
		if mp.IsHighSeason {
			patterns.PeakMonths = append(patterns.PeakMonths, m)
		}
		indices = append(indices, factor)
		patterns.Months = append(patterns.Months, mp)
	}
	patterns.SeasonalityIndex = round2f(coefficientOfVariation(indices))
	return patterns
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	return stddev(values) / mean
}

// yearOverYearTrend compares this-year-to-date revenue against the
// same span one year earlier.
func yearOverYearTrend(bookings []domain.Booking, now time.Time) float64 {
	thisYearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	lastYearStart := thisYearStart.AddDate(-1, 0, 0)
	lastYearCutoff := now.AddDate(-1, 0, 0)

	var thisYTD, lastYTD float64
	for _, b := range bookings {
		d := b.CheckInDate.UTC()
		switch {
		case !d.Before(thisYearStart) && !d.After(now):
			thisYTD += b.Revenue
		case !d.Before(lastYearStart) && !d.After(lastYearCutoff):
			lastYTD += b.Revenue
		}
	}
	if lastYTD == 0 {
		return 0
	}
	return (thisYTD - lastYTD) / lastYTD * 100
}
