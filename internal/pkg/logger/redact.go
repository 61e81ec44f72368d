package logger

import (
	"regexp"
	"strings"
)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

var phoneDigits = regexp.MustCompile(`\+?\d[\d\s\-]{6,14}\d`)

// RedactPhone masks a phone number keeping the country/operator prefix.
// "+221771234567" → "+22177*****67"
func RedactPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 8 {
		return "***"
	}
	return digits[:5] + strings.Repeat("*", len(digits)-7) + digits[len(digits)-2:]
}

// redactPhonesIn masks any phone-shaped substrings inside a generic value.
func redactPhonesIn(val string) string {
	return phoneDigits.ReplaceAllStringFunc(val, RedactPhone)
}
