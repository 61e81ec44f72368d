package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/pkg/httpretry"
)

const (
	sourceEmailRep         = "emailrep"
	defaultEmailRepBaseURL = "https://emailrep.io"
)

// EmailRepClient queries the EmailRep reputation service. The free
// tier needs no credential, so this adapter is always active.
type EmailRepClient struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// NewEmailRepClient creates an EmailRep adapter.
func NewEmailRepClient(cfg config.ProvidersConfig) *EmailRepClient {
	baseURL := cfg.EmailRepBaseURL
	if baseURL == "" {
		baseURL = defaultEmailRepBaseURL
	}
	return &EmailRepClient{
		baseURL: baseURL,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

type emailRepResponse struct {
	Reputation string `json:"reputation"`
	Suspicious bool   `json:"suspicious"`
	Details    struct {
		Malicious     bool     `json:"malicious_activity"`
		Spam          bool     `json:"spam"`
		Disposable    bool     `json:"disposable"`
		ProfilesFound []string `json:"profiles"`
	} `json:"details"`
}

// Lookup fetches the reputation of one email address.
func (c *EmailRepClient) Lookup(ctx context.Context, email string) Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+url.PathEscape(email), nil)
	if err != nil {
		return fail(sourceEmailRep, start, err.Error())
	}
	req.Header.Set("User-Agent", "compliance-intel")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(sourceEmailRep, start, adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(sourceEmailRep, start, fmt.Sprintf("reading response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(sourceEmailRep, start, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed emailRepResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fail(sourceEmailRep, start, fmt.Sprintf("decoding response: %v", err))
	}

	return succeed(sourceEmailRep, start, EmailRepData{
		Reputation:    parsed.Reputation,
		Suspicious:    parsed.Suspicious,
		Malicious:     parsed.Details.Malicious,
		Spam:          parsed.Details.Spam,
		Disposable:    parsed.Details.Disposable,
		ProfilesFound: parsed.Details.ProfilesFound,
	})
}
