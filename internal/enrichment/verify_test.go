package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setal/compliance-intel/internal/config"
)

func TestVerifyClearWithoutCredentials(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)

	resp, err := o.Verify(context.Background(), VerificationRequest{
		FirstName: "Jean",
		LastName:  "Dupont",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jean Dupont", resp.Subject)
	assert.Equal(t, StatusClear, resp.Status)
	assert.Equal(t, VerdictClear, resp.Risk.Level)
	assert.Equal(t, 0, resp.Risk.Score)
	assert.False(t, resp.Sanctions.Checked)
	assert.False(t, resp.PEP.Checked)
	assert.NotEmpty(t, resp.Recommendations)
	assert.NotEmpty(t, resp.Errors, "unavailable sources are reported, not hidden")
}

func TestVerifyValidation(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)

	_, err := o.Verify(context.Background(), VerificationRequest{FirstName: "Jean"})
	assert.ErrorIs(t, err, errNamesRequired)

	_, err = o.Verify(context.Background(), VerificationRequest{FirstName: " ", LastName: "Dupont"})
	assert.ErrorIs(t, err, errNamesRequired)

	_, err = o.Verify(context.Background(), VerificationRequest{
		FirstName: "Jean", LastName: "Dupont", Nationality: "senegal",
	})
	assert.ErrorIs(t, err, errBadNationality)

	f := false
	_, err = o.Verify(context.Background(), VerificationRequest{
		FirstName: "Jean", LastName: "Dupont", Nationality: "SN",
		Options: VerifyOptions{Interpol: &f, FBI: &f},
	})
	assert.NoError(t, err)
}

func TestVerifyBlocksOnInterpolNotice(t *testing.T) {
	interpol := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"_embedded": map[string]any{
				"notices": []map[string]any{
					{"entity_id": "2026/1234", "forename": "Jean", "name": "DUPONT"},
				},
			},
		})
	}))
	defer interpol.Close()

	dead := deadServer(t)
	cfg := config.ProvidersConfig{
		TimeoutSeconds:  2,
		InterpolBaseURL: interpol.URL,
		FBIBaseURL:      dead,
		EmailRepBaseURL: dead,
	}
	o := NewOrchestrator(cfg, nil)

	f := false
	resp, err := o.Verify(context.Background(), VerificationRequest{
		FirstName: "Jean",
		LastName:  "Dupont",
		Options:   VerifyOptions{Sanctions: &f, PEP: &f, FBI: &f, Europol: &f},
	})
	require.NoError(t, err)

	assert.True(t, resp.Interpol.Checked)
	assert.Equal(t, 1, resp.Interpol.Matches)
	// Watchlist base 40 + 15 per match + 20 INTERPOL presence.
	assert.Equal(t, 75, resp.Risk.Score)
	assert.Equal(t, StatusBlocked, resp.Status)
	assert.NotEmpty(t, resp.Recommendations)
}

func TestBatchVerifySummary(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)

	// Keyless network adapters are switched off so the batch runs on
	// the credentialed (and here unconfigured) checks alone.
	f := false
	reqs := make([]VerificationRequest, 0, MaxBatchSize)
	for i := 0; i < MaxBatchSize; i++ {
		reqs = append(reqs, VerificationRequest{
			FirstName: "Person",
			LastName:  fmt.Sprintf("Number%d", i),
			Options:   VerifyOptions{Interpol: &f, FBI: &f},
		})
	}

	results, summary := o.BatchVerify(context.Background(), reqs)
	require.Len(t, results, MaxBatchSize)
	assert.Equal(t, MaxBatchSize, summary.Clear+summary.Review+summary.Flagged+summary.Blocked)
	assert.Equal(t, MaxBatchSize, summary.Clear)
}

func TestBatchVerifyReportsInvalidEntries(t *testing.T) {
	o := NewOrchestrator(unconfiguredProviders(t), nil)
	f := false
	opts := VerifyOptions{Interpol: &f, FBI: &f}
	results, summary := o.BatchVerify(context.Background(), []VerificationRequest{
		{FirstName: "Jean", LastName: "Dupont", Options: opts},
		{FirstName: "", LastName: "Nameless", Options: opts},
	})
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, 1, summary.Clear)
}

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 40, ageFromDOB("1986-01-15", now))
	assert.Equal(t, 39, ageFromDOB("1986-12-01", now))
	assert.Equal(t, 0, ageFromDOB("not-a-date", now))
}
