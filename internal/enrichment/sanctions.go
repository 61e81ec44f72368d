package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/pkg/httpretry"
)

const (
	sourceSanctions = "opensanctions"
	sourceOFAC      = "ofac"
	sourceUN        = "un_sanctions"
	sourceEU        = "eu_sanctions"
	sourcePEP       = "pep"
	sourceEuropol   = "europol"

	defaultOpenSanctionsBaseURL = "https://api.opensanctions.org"

	datasetDefault    = "default"
	datasetOFAC       = "us_ofac_sdn"
	datasetUN         = "un_sc_sanctions"
	datasetEU         = "eu_fsf"
	datasetMostWanted = "eu_most_wanted"

	topicPEP = "role.pep"
)

// SanctionsQuery is the subject of a sanctions-family lookup.
type SanctionsQuery struct {
	Name        string
	DateOfBirth string // YYYY-MM-DD, optional
	Nationality string // ISO-2, optional
}

// OpenSanctionsClient runs entity matching against the OpenSanctions
// API. One client serves the general sanctions check, the
// dataset-scoped checks, the PEP check, and the Europol watchlist.
type OpenSanctionsClient struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewOpenSanctionsClient creates an OpenSanctions adapter.
func NewOpenSanctionsClient(cfg config.ProvidersConfig) *OpenSanctionsClient {
	baseURL := cfg.OpenSanctionsBaseURL
	if baseURL == "" {
		baseURL = defaultOpenSanctionsBaseURL
	}
	return &OpenSanctionsClient{
		baseURL: baseURL,
		apiKey:  cfg.OpenSanctionsAPIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

// Configured reports whether the adapter has a credential.
func (c *OpenSanctionsClient) Configured() bool { return c.apiKey != "" }

type matchRequest struct {
	Queries map[string]matchQuery `json:"queries"`
}

type matchQuery struct {
	Schema     string              `json:"schema"`
	Properties map[string][]string `json:"properties"`
}

type matchResponse struct {
	Responses map[string]struct {
		Results []struct {
			ID         string   `json:"id"`
			Caption    string   `json:"caption"`
			Score      float64  `json:"score"`
			Datasets   []string `json:"datasets"`
			Properties struct {
				Topics      []string `json:"topics"`
				BirthDate   []string `json:"birthDate"`
				Nationality []string `json:"nationality"`
			} `json:"properties"`
		} `json:"results"`
	} `json:"responses"`
}

// match runs one entity-match query against a dataset.
func (c *OpenSanctionsClient) match(ctx context.Context, dataset string, q SanctionsQuery) ([]SanctionsMatch, error) {
	props := map[string][]string{"name": {q.Name}}
	if q.DateOfBirth != "" {
		props["birthDate"] = []string{q.DateOfBirth}
	}
	if q.Nationality != "" {
		props["nationality"] = []string{q.Nationality}
	}

	payload, err := json.Marshal(matchRequest{
		Queries: map[string]matchQuery{
			"q1": {Schema: "Person", Properties: props},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/match/"+dataset, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed matchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var matches []SanctionsMatch
	for _, r := range parsed.Responses["q1"].Results {
		matches = append(matches, SanctionsMatch{
			EntityID:  r.ID,
			Name:      r.Caption,
			Score:     r.Score,
			Datasets:  r.Datasets,
			Topics:    r.Properties.Topics,
			BirthDate: first(r.Properties.BirthDate),
			Countries: r.Properties.Nationality,
		})
	}
	return matches, nil
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// CheckSanctions runs the broad sanctions screen. A match is kept when
// it scores at least 0.5 or appears on three or more datasets.
func (c *OpenSanctionsClient) CheckSanctions(ctx context.Context, q SanctionsQuery) Result {
	return c.check(ctx, sourceSanctions, datasetDefault, q, func(m SanctionsMatch) bool {
		return m.Score >= 0.5 || len(m.Datasets) >= 3
	})
}

// CheckOFAC screens against the OFAC SDN list, keeping scores >= 0.6.
func (c *OpenSanctionsClient) CheckOFAC(ctx context.Context, q SanctionsQuery) Result {
	return c.check(ctx, sourceOFAC, datasetOFAC, q, scoreAtLeast(0.6))
}

// CheckUN screens against the UN Security Council list.
func (c *OpenSanctionsClient) CheckUN(ctx context.Context, q SanctionsQuery) Result {
	return c.check(ctx, sourceUN, datasetUN, q, scoreAtLeast(0.6))
}

// CheckEU screens against the EU financial sanctions list.
func (c *OpenSanctionsClient) CheckEU(ctx context.Context, q SanctionsQuery) Result {
	return c.check(ctx, sourceEU, datasetEU, q, scoreAtLeast(0.6))
}

// CheckPEP screens for politically exposed persons; only confident
// matches carrying the PEP topic are kept.
func (c *OpenSanctionsClient) CheckPEP(ctx context.Context, q SanctionsQuery) Result {
	return c.check(ctx, sourcePEP, datasetDefault, q, func(m SanctionsMatch) bool {
		return m.Score >= 0.7 && hasTopic(m, topicPEP)
	})
}

// CheckEuropol screens against the EU most-wanted dataset.
func (c *OpenSanctionsClient) CheckEuropol(ctx context.Context, q SanctionsQuery) Result {
	return c.check(ctx, sourceEuropol, datasetMostWanted, q, scoreAtLeast(0.6))
}

func (c *OpenSanctionsClient) check(ctx context.Context, source, dataset string, q SanctionsQuery, keep func(SanctionsMatch) bool) Result {
	if c.apiKey == "" {
		return notConfigured(source)
	}
	start := time.Now()

	matches, err := c.match(ctx, dataset, q)
	if err != nil {
		return fail(source, start, adapterError(ctx, err))
	}

	kept := make([]SanctionsMatch, 0, len(matches))
	for _, m := range matches {
		if keep(m) {
			kept = append(kept, m)
		}
	}
	return succeed(source, start, SanctionsData{Matches: kept})
}

func scoreAtLeast(min float64) func(SanctionsMatch) bool {
	return func(m SanctionsMatch) bool { return m.Score >= min }
}

func hasTopic(m SanctionsMatch, topic string) bool {
	for _, t := range m.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
