package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/setal/compliance-intel/internal/config"
)

func TestPredictDemandBands(t *testing.T) {
	seasonal := config.SeasonalConfig{Factors: [12]float64{
		0.85, 0.90, 1.00, 1.10, 1.05, 1.20, 1.30, 1.35, 1.15, 1.00, 0.85, 0.95,
	}}
	d := NewDemandPredictor(seasonal)

	cases := []struct {
		name  string
		date  time.Time
		index float64
		level string
	}{
		{"august friday peaks", time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC), 1.69, "peak"},
		{"june midweek is high", time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), 1.20, "high"},
		{"march midweek is moderate", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), 1.00, "moderate"},
		{"january midweek is low", time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), 0.85, "low"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := d.Predict(tc.date)
			assert.InDelta(t, tc.index, p.DemandIndex, 1e-9)
			assert.Equal(t, tc.level, p.Level)
			assert.Equal(t, tc.date.Format("2006-01-02"), p.Date)
		})
	}
}

func TestWeekdayFactor(t *testing.T) {
	assert.Equal(t, 1.25, weekdayFactor(time.Friday))
	assert.Equal(t, 1.25, weekdayFactor(time.Saturday))
	assert.Equal(t, 1.10, weekdayFactor(time.Sunday))
	assert.Equal(t, 1.0, weekdayFactor(time.Tuesday))
}
