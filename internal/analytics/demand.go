package analytics

import (
	"math"
	"time"

	"github.com/setal/compliance-intel/internal/config"
)

// DemandPredictor estimates relative booking demand for a calendar date
// from the configured seasonal curve plus weekday effects. Pure
// arithmetic, no store reads.
type DemandPredictor struct {
	seasonal config.SeasonalConfig
}

// NewDemandPredictor creates a demand predictor.
func NewDemandPredictor(seasonal config.SeasonalConfig) *DemandPredictor {
	return &DemandPredictor{seasonal: seasonal}
}

// DemandPrediction is the payload of the demand prediction endpoint.
type DemandPrediction struct {
	Date           string  `json:"date"`
	SeasonalFactor float64 `json:"seasonal_factor"`
	WeekdayFactor  float64 `json:"weekday_factor"`
	DemandIndex    float64 `json:"demand_index"`
	Level          string  `json:"level"` // low | moderate | high | peak
}

// Predict returns the demand estimate for one date.
func (d *DemandPredictor) Predict(date time.Time) DemandPrediction {
	seasonal := d.seasonal.Factor(date.Month())
	weekday := weekdayFactor(date.Weekday())
	index := math.Round(seasonal*weekday*100) / 100

	level := "moderate"
	switch {
	case index >= 1.5:
		level = "peak"
	case index >= 1.15:
		level = "high"
	case index < 0.9:
		level = "low"
	}

	return DemandPrediction{
		Date:           date.Format("2006-01-02"),
		SeasonalFactor: seasonal,
		WeekdayFactor:  weekday,
		DemandIndex:    index,
		Level:          level,
	}
}

// weekdayFactor lifts weekend nights: Friday and Saturday check-ins
// run a quarter above baseline, Sunday a tenth.
func weekdayFactor(day time.Weekday) float64 {
	switch day {
	case time.Friday, time.Saturday:
		return 1.25
	case time.Sunday:
		return 1.10
	default:
		return 1.0
	}
}
