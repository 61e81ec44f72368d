package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/pkg/httpretry"
)

const (
	sourceNumverify         = "numverify"
	defaultNumverifyBaseURL = "https://apilayer.net/api"
)

// NumverifyClient validates phone numbers through the Numverify API.
type NumverifyClient struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewNumverifyClient creates a Numverify adapter.
func NewNumverifyClient(cfg config.ProvidersConfig) *NumverifyClient {
	baseURL := cfg.NumverifyBaseURL
	if baseURL == "" {
		baseURL = defaultNumverifyBaseURL
	}
	return &NumverifyClient{
		baseURL: baseURL,
		apiKey:  cfg.NumverifyAPIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

type numverifyResponse struct {
	Valid       bool   `json:"valid"`
	CountryCode string `json:"country_code"`
	Location    string `json:"location"`
	Carrier     string `json:"carrier"`
	LineType    string `json:"line_type"`
	Error       struct {
		Info string `json:"info"`
	} `json:"error"`
}

// Lookup validates one phone number.
func (c *NumverifyClient) Lookup(ctx context.Context, phone string) Result {
	if c.apiKey == "" {
		return notConfigured(sourceNumverify)
	}
	start := time.Now()

	params := url.Values{}
	params.Set("access_key", c.apiKey)
	params.Set("number", strings.TrimPrefix(phone, "+"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/validate?"+params.Encode(), nil)
	if err != nil {
		return fail(sourceNumverify, start, err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(sourceNumverify, start, adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(sourceNumverify, start, fmt.Sprintf("reading response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(sourceNumverify, start, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed numverifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fail(sourceNumverify, start, fmt.Sprintf("decoding response: %v", err))
	}
	if parsed.Error.Info != "" {
		return fail(sourceNumverify, start, parsed.Error.Info)
	}

	return succeed(sourceNumverify, start, NumverifyData{
		Valid:       parsed.Valid,
		Carrier:     parsed.Carrier,
		CountryCode: parsed.CountryCode,
		LineType:    parsed.LineType,
		Location:    parsed.Location,
	})
}
