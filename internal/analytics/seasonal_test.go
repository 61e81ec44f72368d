package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/domain"
)

type fakeSeasonalStore struct {
	bookings []domain.Booking
}

func (f *fakeSeasonalStore) ListBookings(ctx context.Context, since time.Time) ([]domain.Booking, error) {
	return f.bookings, nil
}

func booking(year int, month time.Month, nights int, revenue float64) domain.Booking {
	checkIn := time.Date(year, month, 10, 0, 0, 0, 0, time.UTC)
	return domain.Booking{
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, nights),
		TotalNights:  nights,
		Revenue:      revenue,
	}
}

func TestAnalyseSpikeMonthIsPeak(t *testing.T) {
	st := &fakeSeasonalStore{}
	// Two years of flat revenue except an August spike.
	for _, year := range []int{2024, 2025} {
		for m := time.January; m <= time.December; m++ {
			revenue := 1000.0
			if m == time.August {
				revenue = 5000.0
			}
			st.bookings = append(st.bookings, booking(year, m, 10, revenue))
		}
	}

	a := NewSeasonalAnalyser(st, testSeasonal(t))
	a.now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }

	patterns, err := a.Analyse(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, patterns.Months, 12)

	assert.Contains(t, patterns.PeakMonths, 8)
	assert.True(t, patterns.Months[7].IsHighSeason)
	assert.Greater(t, patterns.SeasonalityIndex, 0.0)

	// Flat months sit below the high-season cutoff.
	assert.False(t, patterns.Months[0].IsHighSeason)
	assert.Less(t, patterns.Months[0].RevenueIndex, 1.0)
}

func TestAnalyseAveragesAcrossYears(t *testing.T) {
	st := &fakeSeasonalStore{
		bookings: []domain.Booking{
			booking(2024, time.June, 10, 2000),
			booking(2025, time.June, 20, 4000),
		},
	}

	a := NewSeasonalAnalyser(st, testSeasonal(t))
	a.now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }

	patterns, err := a.Analyse(context.Background(), 2)
	require.NoError(t, err)

	june := patterns.Months[5]
	assert.Equal(t, 3000.0, june.AvgRevenue)
	assert.Equal(t, 1.0, june.AvgBookings)
	assert.InDelta(t, 0.5, june.AvgOccupancy, 0.01, "15 nights of a 3000-night capacity")
}

func TestAnalyseFallsBackToConfiguredCurve(t *testing.T) {
	a := NewSeasonalAnalyser(&fakeSeasonalStore{}, testSeasonal(t))
	patterns, err := a.Analyse(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, patterns.Months, 12)
	// The default curve peaks June through September.
	assert.Equal(t, []int{6, 7, 8, 9}, patterns.PeakMonths)
	assert.Greater(t, patterns.SeasonalityIndex, 0.0)
}

func TestYearOverYearTrend(t *testing.T) {
	now := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	bookings := []domain.Booking{
		booking(2025, time.March, 5, 1000),
		booking(2025, time.May, 5, 1000),
		booking(2026, time.March, 5, 1500),
		booking(2026, time.May, 5, 1500),
	}
	assert.InDelta(t, 50.0, yearOverYearTrend(bookings, now), 1e-9)
}
