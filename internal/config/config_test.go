package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, 3003, cfg.Server.Port)
	assert.Equal(t, "0 2 * * *", cfg.Jobs.DailyRiskUpdate)
	assert.Equal(t, "0 6 * * 1", cfg.Jobs.WeeklyReport)
	assert.Equal(t, "0 4 1 * *", cfg.Jobs.MonthlyTrendAnalysis)
	assert.Equal(t, 16, cfg.Jobs.BulkConcurrency)
	assert.Equal(t, 5, cfg.Providers.TimeoutSeconds)
	assert.Equal(t, 0.01, cfg.Scoring.HotspotRadius)
	assert.Equal(t, 3, cfg.Scoring.HotspotMinSize)
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	lw := cfg.Scoring.Landlord
	sum := lw.PaymentHistory + lw.RegistrationCompliance + lw.PortfolioSize +
		lw.AccountAge + lw.ComplianceHistory + lw.ResponseTime
	assert.InDelta(t, 1.0, sum, 0.001)

	liw := cfg.Scoring.Listing
	sum = liw.MatchStatus + liw.ActivityLevel + liw.RevenueEstimate +
		liw.ListingAge + liw.HostProfile + liw.LocationRisk
	assert.InDelta(t, 1.0, sum, 0.001)

	aw := cfg.Scoring.Area
	sum = aw.ComplianceRate + aw.UnregisteredDensity + aw.RevenueImpact +
		aw.EnforcementHistory + aw.GrowthTrend
	assert.InDelta(t, 1.0, sum, 0.001)
}

func TestSeasonalDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.InDelta(t, 0.85, cfg.Seasonal.Factor(1), 1e-9)  // January
	assert.InDelta(t, 1.35, cfg.Seasonal.Factor(8), 1e-9)  // August peak
	assert.InDelta(t, 0.95, cfg.Seasonal.Factor(12), 1e-9) // December
}

func TestLoadYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
  environment: production
jobs:
  daily_risk_update: "30 1 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "30 1 * * *", cfg.Jobs.DailyRiskUpdate)
	// Untouched settings keep defaults.
	assert.Equal(t, "0 6 * * 1", cfg.Jobs.WeeklyReport)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
	t.Setenv("PORT", "4000")
	t.Setenv("ENABLE_SCHEDULED_JOBS", "false")
	t.Setenv("DAILY_RISK_UPDATE_SCHEDULE", "0 3 * * *")
	t.Setenv("OPENSANCTIONS_API_KEY", "os-key")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.supabase.co", cfg.Store.URL)
	assert.Equal(t, "service-key", cfg.Store.Key())
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.False(t, cfg.Jobs.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Jobs.DailyRiskUpdate)
	assert.Equal(t, "os-key", cfg.Providers.OpenSanctionsAPIKey)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresStore(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	cfg.Store.URL = "https://example.supabase.co"
	assert.Error(t, cfg.Validate())

	cfg.Store.AnonKey = "anon"
	assert.NoError(t, cfg.Validate())
}
