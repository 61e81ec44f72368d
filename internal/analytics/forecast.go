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

// smoothingAlpha is the exponential smoothing weight for new observations.
const smoothingAlpha = 0.3

// ForecastStore is the slice of the query layer the forecaster needs.
type ForecastStore interface {
	ListCompletedPayments(ctx context.Context) ([]domain.TptPayment, error)
}

// Forecaster projects monthly tax revenue forward from payment history.
type Forecaster struct {
	store    ForecastStore
	seasonal config.SeasonalConfig
	now      func() time.Time
}

// NewForecaster creates a revenue forecaster.
func NewForecaster(store ForecastStore, seasonal config.SeasonalConfig) *Forecaster {
	return &Forecaster{store: store, seasonal: seasonal, now: time.Now}
}

// MonthlyTotal is one month of realised revenue.
type MonthlyTotal struct {
	Month   string  `json:"month"` // YYYY-MM
	Revenue float64 `json:"revenue"`
}

// History returns realised monthly totals of completed payments,
// oldest first.
func (f *Forecaster) History(ctx context.Context) ([]MonthlyTotal, error) {
	payments, err := f.store.ListCompletedPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("revenue history: %w", err)
	}

	byMonth := map[string]float64{}
	for _, p := range payments {
		if p.PaidDate == nil {
			continue
		}
		byMonth[p.PaidDate.UTC().Format("2006-01")] += p.Amount
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	totals := make([]MonthlyTotal, 0, len(months))
	for _, m := range months {
		totals = append(totals, MonthlyTotal{Month: m, Revenue: byMonth[m]})
	}
	return totals, nil
}

// Forecast projects revenue for the next horizon months. Returns an
// empty slice when fewer than 3 months of history exist.
func (f *Forecaster) Forecast(ctx context.Context, horizon int) ([]domain.RevenueForecast, error) {
	history, err := f.History(ctx)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(history))
	for i, h := range history {
		values[i] = h.Revenue
	}
	return f.project(values, horizon), nil
}

func (f *Forecaster) project(values []float64, horizon int) []domain.RevenueForecast {
	if len(values) < 3 || horizon <= 0 {
		return []domain.RevenueForecast{}
	}

	smoothed := values[0]
	for _, v := range values[1:] {
		smoothed = smoothingAlpha*v + (1-smoothingAlpha)*smoothed
	}
	slope := recentSlope(values)
	margin0 := stddev(values) * 1.96

	start := f.now().UTC()
	out := make([]domain.RevenueForecast, 0, horizon)
	for m := 1; m <= horizon; m++ {
		target := start.AddDate(0, m, 0)
		predicted := (smoothed + slope*float64(m)) * f.seasonal.Factor(target.Month())
		if predicted < 0 {
			predicted = 0
		}
		margin := margin0 * (1 + 0.1*float64(m))
		out = append(out, domain.RevenueForecast{
			Month:      target.Format("2006-01"),
			Predicted:  round2f(predicted),
			LowerBound: round2f(math.Max(0, predicted-margin)),
			UpperBound: round2f(predicted + margin),
			Confidence: math.Max(0.5, 0.95-0.05*float64(m)),
		})
	}
	return out
}

// recentSlope is the least-squares slope over the last 6 observations.
func recentSlope(values []float64) float64 {
	window := values
	if len(window) > 6 {
		window = window[len(window)-6:]
	}
	n := float64(len(window))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range window {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func round2f(v float64) float64 {
	return math.Round(v*100) / 100
}
