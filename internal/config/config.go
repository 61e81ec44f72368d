// Package config loads service configuration from an optional YAML file,
// a .env file, and environment variables. Env vars win over the file so
// deployments can override everything without shipping a config.yaml.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Providers ProvidersConfig `yaml:"providers"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Seasonal  SeasonalConfig  `yaml:"seasonal"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	Environment string `yaml:"environment"` // development | staging | production
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether permissive CORS and verbose errors apply.
func (c ServerConfig) IsDevelopment() bool { return c.Environment == "development" }

// StoreConfig holds the Supabase connection settings.
type StoreConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
	AnonKey    string `yaml:"anon_key"`
}

// Key returns the credential to use, preferring the service key.
func (c StoreConfig) Key() string {
	if c.ServiceKey != "" {
		return c.ServiceKey
	}
	return c.AnonKey
}

// RedisConfig holds the optional Redis connection used for job locks
// and the notification queue. Empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JobsConfig holds the scheduler settings. Cron expressions use the
// standard 5-field form.
type JobsConfig struct {
	Enabled              bool   `yaml:"enabled"`
	DailyRiskUpdate      string `yaml:"daily_risk_update"`
	WeeklyReport         string `yaml:"weekly_report"`
	MonthlyTrendAnalysis string `yaml:"monthly_trend_analysis"`
	BulkConcurrency      int    `yaml:"bulk_concurrency"`
}

// ProvidersConfig holds external OSINT provider credentials and limits.
// A missing credential disables only that provider.
type ProvidersConfig struct {
	TruecallerInstallationID string `yaml:"truecaller_installation_id"`
	NumverifyAPIKey          string `yaml:"numverify_api_key"`
	FullContactAPIKey        string `yaml:"fullcontact_api_key"`
	HIBPAPIKey               string `yaml:"hibp_api_key"`
	OpenSanctionsAPIKey      string `yaml:"opensanctions_api_key"`
	TimeoutSeconds           int    `yaml:"timeout_seconds"`

	// Base URL overrides, primarily for tests.
	TruecallerBaseURL    string `yaml:"truecaller_base_url"`
	NumverifyBaseURL     string `yaml:"numverify_base_url"`
	FullContactBaseURL   string `yaml:"fullcontact_base_url"`
	EmailRepBaseURL      string `yaml:"emailrep_base_url"`
	HIBPBaseURL          string `yaml:"hibp_base_url"`
	OpenSanctionsBaseURL string `yaml:"opensanctions_base_url"`
	InterpolBaseURL      string `yaml:"interpol_base_url"`
	FBIBaseURL           string `yaml:"fbi_base_url"`
}

// Timeout returns the per-adapter call deadline.
func (c ProvidersConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ScoringConfig externalises every scoring weight and threshold so a
// policy change does not require a code edit.
type ScoringConfig struct {
	Landlord LandlordWeights `yaml:"landlord"`
	Listing  ListingWeights  `yaml:"listing"`
	Area     AreaWeights     `yaml:"area"`

	// Score thresholds for low/medium/high bands (lower score = higher
	// risk for landlords and listings' overall score).
	LevelLow    float64 `yaml:"level_low"`    // >= low
	LevelMedium float64 `yaml:"level_medium"` // >= medium
	LevelHigh   float64 `yaml:"level_high"`   // >= high, below is critical

	// Hotspot clustering: neighborhood radius in coordinate degrees
	// (roughly one kilometre at Senegalese latitudes) and the smallest
	// cluster worth reporting.
	HotspotRadius  float64 `yaml:"hotspot_radius"`
	HotspotMinSize int     `yaml:"hotspot_min_size"`
}

// LandlordWeights are the six landlord factor weights (sum 1.0).
type LandlordWeights struct {
	PaymentHistory         float64 `yaml:"payment_history"`
	RegistrationCompliance float64 `yaml:"registration_compliance"`
	PortfolioSize          float64 `yaml:"portfolio_size"`
	AccountAge             float64 `yaml:"account_age"`
	ComplianceHistory      float64 `yaml:"compliance_history"`
	ResponseTime           float64 `yaml:"response_time"`
}

// ListingWeights are the six listing factor weights (sum 1.0).
type ListingWeights struct {
	MatchStatus     float64 `yaml:"match_status"`
	ActivityLevel   float64 `yaml:"activity_level"`
	RevenueEstimate float64 `yaml:"revenue_estimate"`
	ListingAge      float64 `yaml:"listing_age"`
	HostProfile     float64 `yaml:"host_profile"`
	LocationRisk    float64 `yaml:"location_risk"`
}

// AreaWeights are the five area factor weights (sum 1.0).
type AreaWeights struct {
	ComplianceRate      float64 `yaml:"compliance_rate"`
	UnregisteredDensity float64 `yaml:"unregistered_density"`
	RevenueImpact       float64 `yaml:"revenue_impact"`
	EnforcementHistory  float64 `yaml:"enforcement_history"`
	GrowthTrend         float64 `yaml:"growth_trend"`
}

// SeasonalConfig carries the fixed monthly demand factor table,
// indexed January..December.
type SeasonalConfig struct {
	Factors [12]float64 `yaml:"factors"`
}

// Factor returns the seasonal factor for a calendar month (1..12).
func (c SeasonalConfig) Factor(month time.Month) float64 {
	return c.Factors[int(month)-1]
}

// defaultSeasonalFactors is the Dakar-region demand curve: low season
// January/February and November, peak June through September.
var defaultSeasonalFactors = [12]float64{
	0.85, 0.90, 1.00, 1.10, 1.05, 1.20, 1.30, 1.35, 1.15, 1.00, 0.85, 0.95,
}

// Load reads and parses the configuration file, then applies defaults.
// A missing file is not an error; defaults plus env vars are enough to run.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3003
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Jobs.DailyRiskUpdate == "" {
		cfg.Jobs.DailyRiskUpdate = "0 2 * * *"
	}
	if cfg.Jobs.WeeklyReport == "" {
		cfg.Jobs.WeeklyReport = "0 6 * * 1"
	}
	if cfg.Jobs.MonthlyTrendAnalysis == "" {
		cfg.Jobs.MonthlyTrendAnalysis = "0 4 1 * *"
	}
	if cfg.Jobs.BulkConcurrency == 0 {
		cfg.Jobs.BulkConcurrency = 16
	}
	if cfg.Providers.TimeoutSeconds == 0 {
		cfg.Providers.TimeoutSeconds = 5
	}

	lw := &cfg.Scoring.Landlord
	if lw.PaymentHistory == 0 && lw.RegistrationCompliance == 0 {
		*lw = LandlordWeights{
			PaymentHistory:         0.25,
			RegistrationCompliance: 0.20,
			PortfolioSize:          0.10,
			AccountAge:             0.10,
			ComplianceHistory:      0.20,
			ResponseTime:           0.15,
		}
	}
	liw := &cfg.Scoring.Listing
	if liw.MatchStatus == 0 && liw.ActivityLevel == 0 {
		*liw = ListingWeights{
			MatchStatus:     0.25,
			ActivityLevel:   0.20,
			RevenueEstimate: 0.20,
			ListingAge:      0.10,
			HostProfile:     0.15,
			LocationRisk:    0.10,
		}
	}
	aw := &cfg.Scoring.Area
	if aw.ComplianceRate == 0 && aw.UnregisteredDensity == 0 {
		*aw = AreaWeights{
			ComplianceRate:      0.30,
			UnregisteredDensity: 0.25,
			RevenueImpact:       0.20,
			EnforcementHistory:  0.15,
			GrowthTrend:         0.10,
		}
	}
	if cfg.Scoring.LevelLow == 0 {
		cfg.Scoring.LevelLow = 80
	}
	if cfg.Scoring.LevelMedium == 0 {
		cfg.Scoring.LevelMedium = 60
	}
	if cfg.Scoring.LevelHigh == 0 {
		cfg.Scoring.LevelHigh = 40
	}
	if cfg.Scoring.HotspotRadius == 0 {
		cfg.Scoring.HotspotRadius = 0.01
	}
	if cfg.Scoring.HotspotMinSize == 0 {
		cfg.Scoring.HotspotMinSize = 3
	}

	zero := [12]float64{}
	if cfg.Seasonal.Factors == zero {
		cfg.Seasonal.Factors = defaultSeasonalFactors
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file first (if present), so secrets can live in .env
// locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_KEY"); v != "" {
		cfg.Store.ServiceKey = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Store.AnonKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	// NODE_ENV is what the deployment platform sets; ENVIRONMENT also works.
	if v := os.Getenv("NODE_ENV"); v != "" {
		cfg.Server.Environment = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Server.Environment = v
	}

	cfg.Jobs.Enabled = os.Getenv("ENABLE_SCHEDULED_JOBS") != "false"
	if v := os.Getenv("DAILY_RISK_UPDATE_SCHEDULE"); v != "" {
		cfg.Jobs.DailyRiskUpdate = v
	}
	if v := os.Getenv("WEEKLY_REPORT_SCHEDULE"); v != "" {
		cfg.Jobs.WeeklyReport = v
	}
	if v := os.Getenv("MONTHLY_TREND_ANALYSIS_SCHEDULE"); v != "" {
		cfg.Jobs.MonthlyTrendAnalysis = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("TRUECALLER_INSTALLATION_ID"); v != "" {
		cfg.Providers.TruecallerInstallationID = v
	}
	if v := os.Getenv("NUMVERIFY_API_KEY"); v != "" {
		cfg.Providers.NumverifyAPIKey = v
	}
	if v := os.Getenv("FULLCONTACT_API_KEY"); v != "" {
		cfg.Providers.FullContactAPIKey = v
	}
	if v := os.Getenv("HIBP_API_KEY"); v != "" {
		cfg.Providers.HIBPAPIKey = v
	}
	if v := os.Getenv("OPENSANCTIONS_API_KEY"); v != "" {
		cfg.Providers.OpenSanctionsAPIKey = v
	}

	return cfg, nil
}

// Validate checks that the settings required to start are present.
func (c *Config) Validate() error {
	if c.Store.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Store.Key() == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY or SUPABASE_ANON_KEY is required")
	}
	return nil
}
