package enrichment

import (
	"regexp"
	"strings"
	"time"
)

const sourceLocalPhone = "local_phone"

// e164Pattern accepts international numbers with an optional plus.
var e164Pattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// senegalOperators maps the two-digit mobile prefix to its operator.
var senegalOperators = map[string]string{
	"70": "Expresso",
	"75": "Promobile",
	"76": "Free",
	"77": "Orange",
	"78": "Orange",
}

// AnalyzeLocalPhone classifies a phone string against Senegalese
// numbering plans. Pure computation, always succeeds.
func AnalyzeLocalPhone(phone string) Result {
	start := time.Now()

	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, phone)

	data := LocalPhoneData{Valid: e164Pattern.MatchString(cleaned)}
	if !data.Valid {
		return succeed(sourceLocalPhone, start, data)
	}

	national := strings.TrimPrefix(cleaned, "+")
	switch {
	case strings.HasPrefix(national, "221"):
		national = national[3:]
	case len(national) == 9:
		// Bare nine-digit national format.
	default:
		data.Normalized = "+" + national
		return succeed(sourceLocalPhone, start, data)
	}

	if len(national) != 9 {
		data.Normalized = "+" + strings.TrimPrefix(cleaned, "+")
		return succeed(sourceLocalPhone, start, data)
	}

	data.Normalized = "+221" + national
	prefix := national[:2]
	if op, ok := senegalOperators[prefix]; ok {
		data.Senegalese = true
		data.Operator = op
		data.LineType = "mobile"
	} else if prefix == "33" {
		data.Senegalese = true
		data.Operator = "Sonatel"
		data.LineType = "landline"
	}
	return succeed(sourceLocalPhone, start, data)
}
