package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichmentRiskLevels(t *testing.T) {
	assert.Equal(t, RiskVerdict{Score: 0, Level: VerdictClear}, enrichmentRisk(riskSignals{}))

	// One sanctions match alone lands in medium.
	v := enrichmentRisk(riskSignals{sanctionsMatches: 1})
	assert.Equal(t, 40, v.Score)
	assert.Equal(t, VerdictMedium, v.Level)

	// Sanctions plus watchlist escalates to critical.
	v = enrichmentRisk(riskSignals{sanctionsMatches: 2, watchlistMatches: 1})
	assert.Equal(t, 90, v.Score)
	assert.Equal(t, VerdictCritical, v.Level)

	// Email signals stack: malicious + suspicious + disposable.
	v = enrichmentRisk(riskSignals{malicious: true, suspicious: true, disposable: true})
	assert.Equal(t, 50, v.Score)
	assert.Equal(t, VerdictHigh, v.Level)

	// Breach contribution caps at 20.
	v = enrichmentRisk(riskSignals{breachCount: 50})
	assert.Equal(t, 20, v.Score)
	assert.Equal(t, VerdictLow, v.Level)

	// Total never exceeds 100.
	v = enrichmentRisk(riskSignals{sanctionsMatches: 5, watchlistMatches: 5, malicious: true, breachCount: 50})
	assert.Equal(t, 100, v.Score)
	assert.Equal(t, VerdictCritical, v.Level)
}

func TestVerificationRiskAndStatus(t *testing.T) {
	// Clean subject.
	v := verificationRisk(0, 0, 0, 0, 0, 0)
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, StatusClear, verificationStatus(v, 0, 0, 0))

	// Strong sanctions match blocks outright.
	v = verificationRisk(1, 0.9, 0, 0, 0, 0)
	assert.Equal(t, 95, v.Score)
	assert.Equal(t, StatusBlocked, verificationStatus(v, 1, 0, 0))

	// A single FBI hit flags.
	v = verificationRisk(0, 0, 0, 1, 0, 0)
	assert.Equal(t, 55, v.Score)
	assert.Equal(t, StatusFlagged, verificationStatus(v, 0, 1, 0))

	// INTERPOL presence adds its own 20 on top of the watchlist base.
	v = verificationRisk(0, 0, 1, 0, 0, 0)
	assert.Equal(t, 75, v.Score)
	assert.Equal(t, StatusBlocked, verificationStatus(v, 0, 1, 0))

	// PEP-only goes to review regardless of low score.
	v = verificationRisk(0, 0, 0, 0, 0, 1)
	assert.Equal(t, 20, v.Score)
	assert.Equal(t, StatusReview, verificationStatus(v, 0, 0, 1))
}

func TestRiskFactorStrings(t *testing.T) {
	factors := riskFactorStrings(riskSignals{
		sanctionsMatches: 1,
		spamScore:        8,
		disposable:       true,
		breachCount:      7,
	})
	assert.Len(t, factors, 4)

	// Small breach counts stay below the reporting threshold.
	factors = riskFactorStrings(riskSignals{breachCount: 3})
	assert.Empty(t, factors)
}
