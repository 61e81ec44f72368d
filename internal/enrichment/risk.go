package enrichment

import "fmt"

// Risk verdict levels, ordered. "clear" is below every risk band and
// means no adverse signal at all.
const (
	VerdictClear    = "clear"
	VerdictLow      = "low"
	VerdictMedium   = "medium"
	VerdictHigh     = "high"
	VerdictCritical = "critical"
)

// RiskVerdict is the final risk outcome of an enrichment or
// verification request.
type RiskVerdict struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

// riskSignals are the warning inputs extracted from provider results.
type riskSignals struct {
	sanctionsMatches int
	watchlistMatches int
	spamScore        int
	suspicious       bool
	malicious        bool
	spam             bool
	disposable       bool
	breachCount      int
}

// enrichmentRisk scores the aggregated signals of an enrichment request.
func enrichmentRisk(s riskSignals) RiskVerdict {
	score := 0
	if s.sanctionsMatches > 0 {
		score += 40 + 10*(s.sanctionsMatches-1)
	}
	if s.watchlistMatches > 0 {
		score += 40 + 10*(s.watchlistMatches-1)
	}
	if s.malicious {
		score += 25
	}
	if s.suspicious {
		score += 15
	}
	if s.spam {
		score += 10
	}
	if s.disposable {
		score += 10
	}
	if s.breachCount > 0 {
		breach := s.breachCount * 2
		if breach > 20 {
			breach = 20
		}
		score += breach
	}
	if score > 100 {
		score = 100
	}
	return RiskVerdict{Score: score, Level: verdictLevel(score)}
}

func verdictLevel(score int) string {
	switch {
	case score >= 70:
		return VerdictCritical
	case score >= 50:
		return VerdictHigh
	case score >= 30:
		return VerdictMedium
	case score >= 10:
		return VerdictLow
	default:
		return VerdictClear
	}
}

// riskFactorStrings renders the human-readable warning list that
// accompanies the numeric verdict.
func riskFactorStrings(s riskSignals) []string {
	var factors []string
	if s.sanctionsMatches > 0 {
		factors = append(factors, fmt.Sprintf("%d sanctions list match(es) found", s.sanctionsMatches))
	}
	if s.watchlistMatches > 0 {
		factors = append(factors, fmt.Sprintf("%d law-enforcement watchlist match(es) found", s.watchlistMatches))
	}
	if s.spamScore > 5 {
		factors = append(factors, fmt.Sprintf("Phone number carries a high spam score (%d)", s.spamScore))
	}
	if s.malicious {
		factors = append(factors, "Email address linked to malicious activity")
	}
	if s.suspicious {
		factors = append(factors, "Email address flagged as suspicious")
	}
	if s.spam {
		factors = append(factors, "Email address associated with spam")
	}
	if s.disposable {
		factors = append(factors, "Disposable email address")
	}
	if s.breachCount >= 6 {
		factors = append(factors, fmt.Sprintf("Email appears in %d data breaches", s.breachCount))
	}
	return factors
}

// verificationRisk scores a verification run. The inputs are the match
// counts per check family plus the best sanctions match score (0..1).
func verificationRisk(sanctions int, highestSanctionScore float64, interpol, fbi, europol, pep int) RiskVerdict {
	score := 0
	if sanctions > 0 {
		score += 50 + int(highestSanctionScore*50)
	}
	watchlist := interpol + fbi + europol
	if watchlist > 0 {
		score += 40 + 15*watchlist
		if interpol > 0 {
			score += 20
		}
	}
	if pep > 0 {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return RiskVerdict{Score: score, Level: verdictLevel(score)}
}

// Verification statuses.
const (
	StatusClear   = "clear"
	StatusReview  = "review"
	StatusFlagged = "flagged"
	StatusBlocked = "blocked"
)

// verificationStatus maps a verification verdict onto the
// onboarding decision.
func verificationStatus(risk RiskVerdict, sanctions, watchlist, pep int) string {
	switch {
	case risk.Score >= 70:
		return StatusBlocked
	case risk.Score >= 50:
		return StatusFlagged
	case pep > 0 && sanctions == 0 && watchlist == 0:
		return StatusReview
	case risk.Score >= 20:
		return StatusReview
	default:
		return StatusClear
	}
}
