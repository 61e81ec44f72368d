// Package enrichment aggregates OSINT evidence about a person from
// external providers: phone lookups, email reputation, sanctions
// lists, and law-enforcement watchlists.
//
// Every provider call is wrapped into the same Result envelope. A
// provider failing, timing out, or lacking credentials never fails the
// request; it contributes an error entry and the verdict is computed
// from whatever did succeed.
package enrichment

import (
	"time"
)

// ErrNotConfigured is the error string reported by adapters whose
// credentials are absent.
const ErrNotConfigured = "not configured"

// Result is the uniform envelope every provider lookup returns.
type Result struct {
	Success    bool      `json:"success"`
	Source     string    `json:"source"`
	CheckedAt  time.Time `json:"checked_at"`
	DurationMs int64     `json:"duration_ms"`
	Data       any       `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// succeed builds a successful Result for a provider call started at start.
func succeed(source string, start time.Time, data any) Result {
	return Result{
		Success:    true,
		Source:     source,
		CheckedAt:  start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
		Data:       data,
	}
}

// fail builds a failed Result. The error text is what lands in the
// response's errors field.
func fail(source string, start time.Time, errText string) Result {
	return Result{
		Source:     source,
		CheckedAt:  start.UTC(),
		DurationMs: time.Since(start).Milliseconds(),
		Error:      errText,
	}
}

// notConfigured builds the Result for an adapter without credentials.
func notConfigured(source string) Result {
	return Result{Source: source, CheckedAt: time.Now().UTC(), Error: ErrNotConfigured}
}

// TruecallerData is the normalised Truecaller phone lookup payload.
type TruecallerData struct {
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Photo           string   `json:"photo,omitempty"`
	Carrier         string   `json:"carrier,omitempty"`
	LineType        string   `json:"line_type,omitempty"`
	SpamScore       int      `json:"spam_score,omitempty"`
	Addresses       []string `json:"addresses,omitempty"`
	AlternatePhones []string `json:"alternate_phones,omitempty"`
}

// NumverifyData is the normalised Numverify validation payload.
type NumverifyData struct {
	Valid       bool   `json:"valid"`
	Carrier     string `json:"carrier,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	LineType    string `json:"line_type,omitempty"`
	Location    string `json:"location,omitempty"`
}

// LocalPhoneData is the offline Senegalese number analysis payload.
type LocalPhoneData struct {
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized,omitempty"`
	Senegalese bool   `json:"senegalese"`
	Operator   string `json:"operator,omitempty"`
	LineType   string `json:"line_type,omitempty"`
}

// FullContactData is the normalised FullContact person payload.
type FullContactData struct {
	FullName       string   `json:"full_name,omitempty"`
	Phones         []string `json:"phones,omitempty"`
	Photos         []string `json:"photos,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	Employment     []string `json:"employment,omitempty"`
	SocialProfiles []string `json:"social_profiles,omitempty"`
}

// EmailRepData is the normalised EmailRep reputation payload.
type EmailRepData struct {
	Reputation    string   `json:"reputation,omitempty"`
	Suspicious    bool     `json:"suspicious"`
	Malicious     bool     `json:"malicious"`
	Spam          bool     `json:"spam"`
	Disposable    bool     `json:"disposable"`
	ProfilesFound []string `json:"profiles_found,omitempty"`
}

// HIBPData is the normalised Have I Been Pwned payload.
type HIBPData struct {
	Breached    bool     `json:"breached"`
	BreachCount int      `json:"breach_count"`
	Breaches    []string `json:"breaches,omitempty"`
}

// SanctionsMatch is one scored match from a sanctions or PEP query.
type SanctionsMatch struct {
	EntityID    string   `json:"entity_id"`
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	Datasets    []string `json:"datasets,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	BirthDate   string   `json:"birth_date,omitempty"`
	Countries   []string `json:"countries,omitempty"`
}

// SanctionsData carries the matches of one sanctions-family query.
type SanctionsData struct {
	Matches []SanctionsMatch `json:"matches"`
}

// InterpolNotice is one INTERPOL Red Notice hit.
type InterpolNotice struct {
	EntityID      string   `json:"entity_id"`
	Name          string   `json:"name"`
	Charges       []string `json:"charges,omitempty"`
	Nationalities []string `json:"nationalities,omitempty"`
	Photo         string   `json:"photo,omitempty"`
}

// InterpolData carries Red Notice search hits.
type InterpolData struct {
	Notices []InterpolNotice `json:"notices"`
}

// FBIItem is one FBI most-wanted entry matching the subject name.
type FBIItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// FBIData carries FBI wanted-list hits.
type FBIData struct {
	Items []FBIItem `json:"items"`
}
