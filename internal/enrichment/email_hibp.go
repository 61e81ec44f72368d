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
	sourceHIBP         = "hibp"
	defaultHIBPBaseURL = "https://haveibeenpwned.com/api/v3"
)

// HIBPClient checks an email against the Have I Been Pwned breach corpus.
type HIBPClient struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewHIBPClient creates a Have I Been Pwned adapter.
func NewHIBPClient(cfg config.ProvidersConfig) *HIBPClient {
	baseURL := cfg.HIBPBaseURL
	if baseURL == "" {
		baseURL = defaultHIBPBaseURL
	}
	return &HIBPClient{
		baseURL: baseURL,
		apiKey:  cfg.HIBPAPIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

type hibpBreach struct {
	Name       string `json:"Name"`
	Title      string `json:"Title"`
	BreachDate string `json:"BreachDate"`
}

// Lookup returns the breach history of one email address. A 404 from
// the API means the address is clean.
func (c *HIBPClient) Lookup(ctx context.Context, email string) Result {
	if c.apiKey == "" {
		return notConfigured(sourceHIBP)
	}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/breachedaccount/"+url.PathEscape(email)+"?truncateResponse=false", nil)
	if err != nil {
		return fail(sourceHIBP, start, err.Error())
	}
	req.Header.Set("hibp-api-key", c.apiKey)
	req.Header.Set("User-Agent", "compliance-intel")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(sourceHIBP, start, adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(sourceHIBP, start, fmt.Sprintf("reading response: %v", err))
	}
	if resp.StatusCode == http.StatusNotFound {
		return succeed(sourceHIBP, start, HIBPData{})
	}
	if resp.StatusCode != http.StatusOK {
		return fail(sourceHIBP, start, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var breaches []hibpBreach
	if err := json.Unmarshal(body, &breaches); err != nil {
		return fail(sourceHIBP, start, fmt.Sprintf("decoding response: %v", err))
	}

	data := HIBPData{Breached: len(breaches) > 0, BreachCount: len(breaches)}
	for _, b := range breaches {
		name := b.Title
		if name == "" {
			name = b.Name
		}
		data.Breaches = append(data.Breaches, name)
	}
	return succeed(sourceHIBP, start, data)
}
