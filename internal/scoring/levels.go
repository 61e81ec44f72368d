package scoring

import (
	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/domain"
)

// riskLevel buckets a goodness score (higher = safer) into a level.
func riskLevel(cfg config.ScoringConfig, score float64) domain.RiskLevel {
	switch {
	case score >= cfg.LevelLow:
		return domain.RiskLow
	case score >= cfg.LevelMedium:
		return domain.RiskMedium
	case score >= cfg.LevelHigh:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

// invertedRiskLevel buckets a risk score (higher = worse) into a level.
// The same thresholds apply with the bands reversed.
func invertedRiskLevel(cfg config.ScoringConfig, risk float64) domain.RiskLevel {
	switch {
	case risk >= cfg.LevelLow:
		return domain.RiskCritical
	case risk >= cfg.LevelMedium:
		return domain.RiskHigh
	case risk >= cfg.LevelHigh:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
