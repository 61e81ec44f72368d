package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/config"
)

// deadServer returns a base URL that refuses connections, for adapters
// that need no credential and would otherwise hit the real API.
func deadServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func unconfiguredProviders(t *testing.T) config.ProvidersConfig {
	t.Helper()
	dead := deadServer(t)
	return config.ProvidersConfig{
		TimeoutSeconds:  1,
		EmailRepBaseURL: dead,
		InterpolBaseURL: dead,
		FBIBaseURL:      dead,
	}
}

func TestEnrichSucceedsWithoutAnyCredentials(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)

	resp, err := o.Enrich(context.Background(), EnrichmentRequest{
		Phone: "+221771234567",
		Email: "test@example.com",
		Name:  "Jean Dupont",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Risk.Score)
	assert.Equal(t, VerdictClear, resp.Risk.Level)
	assert.Empty(t, resp.RiskFactors)

	errsBySource := map[string]string{}
	for _, e := range resp.Errors {
		errsBySource[e.Source] = e.Error
	}
	for _, source := range []string{sourceTruecaller, sourceNumverify, sourceFullContact, sourceHIBP, sourceSanctions, sourcePEP, sourceEuropol} {
		assert.Equal(t, ErrNotConfigured, errsBySource[source], source)
	}
	// Keyless providers were attempted and failed on transport.
	assert.Contains(t, errsBySource, sourceEmailRep)
	assert.Contains(t, errsBySource, sourceInterpol)
	assert.Contains(t, errsBySource, sourceFBI)

	// The offline analyser and the request inputs still contribute.
	assert.Contains(t, resp.Phones, "+221771234567")
	assert.Contains(t, resp.Names, "Jean Dupont")
}

func TestEnrichRejectsEmptyRequest(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)
	_, err := o.Enrich(context.Background(), EnrichmentRequest{})
	require.Error(t, err)

	_, err = o.Enrich(context.Background(), EnrichmentRequest{Name: "X", Nationality: "senegal"})
	assert.ErrorIs(t, err, errBadNationality)
}

func TestEnrichMergesProviderSignals(t *testing.T) {
	emailrep := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"reputation": "low",
			"suspicious": true,
			"details": map[string]any{
				"malicious_activity": true,
				"disposable":         true,
				"profiles":           []string{"twitter"},
			},
		})
	}))
	defer emailrep.Close()

	hibp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("hibp-api-key"))
		json.NewEncoder(w).Encode([]map[string]string{
			{"Name": "Adobe", "Title": "Adobe"},
			{"Name": "LinkedIn", "Title": "LinkedIn"},
			{"Name": "Dropbox", "Title": "Dropbox"},
		})
	}))
	defer hibp.Close()

	dead := deadServer(t)
	cfg := config.ProvidersConfig{
		TimeoutSeconds:  2,
		HIBPAPIKey:      "k",
		EmailRepBaseURL: emailrep.URL,
		HIBPBaseURL:     hibp.URL,
		InterpolBaseURL: dead,
		FBIBaseURL:      dead,
	}
	o := NewOrchestrator(cfg, nil)

	resp, err := o.Enrich(context.Background(), EnrichmentRequest{
		Email:   "bad@example.com",
		Options: EnrichmentOptions{SkipSanctions: true, SkipWatchlists: true},
	})
	require.NoError(t, err)

	// malicious 25 + suspicious 15 + disposable 10 + breaches 3*2.
	assert.Equal(t, 56, resp.Risk.Score)
	assert.Equal(t, VerdictHigh, resp.Risk.Level)
	assert.Contains(t, resp.SocialProfiles, "twitter")
	assert.NotEmpty(t, resp.RiskFactors)
}

func TestEnrichFindsSanctionsMatches(t *testing.T) {
	sanctions := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/match/"))
		var body struct {
			Queries map[string]struct {
				Properties map[string][]string `json:"properties"`
			} `json:"queries"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		results := []map[string]any{}
		if strings.HasSuffix(r.URL.Path, "/"+datasetDefault) {
			results = append(results, map[string]any{
				"id":       "Q1",
				"caption":  "Jean Dupont",
				"score":    0.82,
				"datasets": []string{"us_ofac_sdn"},
			})
			// Low score and few datasets: filtered out.
			results = append(results, map[string]any{
				"id": "Q2", "caption": "J. Dupond", "score": 0.2,
				"datasets": []string{"other"},
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"responses": map[string]any{"q1": map[string]any{"results": results}},
		})
	}))
	defer sanctions.Close()

	dead := deadServer(t)
	cfg := config.ProvidersConfig{
		TimeoutSeconds:       2,
		OpenSanctionsAPIKey:  "k",
		OpenSanctionsBaseURL: sanctions.URL,
		EmailRepBaseURL:      dead,
		InterpolBaseURL:      dead,
		FBIBaseURL:           dead,
	}
	o := NewOrchestrator(cfg, nil)

	resp, err := o.Enrich(context.Background(), EnrichmentRequest{
		Name:    "Jean Dupont",
		Options: EnrichmentOptions{SkipWatchlists: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 40, resp.Risk.Score, "one kept sanctions match")
	assert.Equal(t, VerdictMedium, resp.Risk.Level)
	assert.NotEmpty(t, resp.RiskFactors)
}

func TestPhoneLookupRunsAllPhoneAdapters(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)
	results := o.PhoneLookup(context.Background(), "+221771234567")
	require.Len(t, results, 3)
	assert.Equal(t, sourceTruecaller, results[0].Source)
	assert.Equal(t, sourceNumverify, results[1].Source)
	assert.Equal(t, sourceLocalPhone, results[2].Source)
	assert.True(t, results[2].Success)
}

func TestSanctionsCheckCoversDatasets(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)
	results := o.SanctionsCheck(context.Background(), SanctionsQuery{Name: "Jean Dupont"})
	require.Len(t, results, 4)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, ErrNotConfigured, r.Error)
	}
}
