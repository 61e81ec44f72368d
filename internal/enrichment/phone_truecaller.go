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
	sourceTruecaller          = "truecaller"
	defaultTruecallerBaseURL  = "https://search5-noneu.truecaller.com"
)

// TruecallerClient looks up phone numbers against the Truecaller
// search API using an installation id credential.
type TruecallerClient struct {
	baseURL        string
	installationID string
	httpClient     httpretry.HTTPDoer
}

// NewTruecallerClient creates a Truecaller adapter.
func NewTruecallerClient(cfg config.ProvidersConfig) *TruecallerClient {
	baseURL := cfg.TruecallerBaseURL
	if baseURL == "" {
		baseURL = defaultTruecallerBaseURL
	}
	return &TruecallerClient{
		baseURL:        baseURL,
		installationID: cfg.TruecallerInstallationID,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

type truecallerResponse struct {
	Data []struct {
		Name            string `json:"name"`
		Image           string `json:"image"`
		Score           float64 `json:"score"`
		InternetAddresses []struct {
			ID string `json:"id"`
		} `json:"internetAddresses"`
		Addresses []struct {
			City    string `json:"city"`
			Address string `json:"address"`
		} `json:"addresses"`
		Phones []struct {
			E164Format      string `json:"e164Format"`
			NumberType      string `json:"numberType"`
			Carrier         string `json:"carrier"`
			SpamScore       int    `json:"spamScore"`
		} `json:"phones"`
	} `json:"data"`
}

// Lookup queries Truecaller for one E.164 phone number.
func (c *TruecallerClient) Lookup(ctx context.Context, phone string) Result {
	if c.installationID == "" {
		return notConfigured(sourceTruecaller)
	}
	start := time.Now()

	params := url.Values{}
	params.Set("q", phone)
	params.Set("type", "4")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/search?"+params.Encode(), nil)
	if err != nil {
		return fail(sourceTruecaller, start, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.installationID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(sourceTruecaller, start, adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(sourceTruecaller, start, fmt.Sprintf("reading response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(sourceTruecaller, start, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed truecallerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fail(sourceTruecaller, start, fmt.Sprintf("decoding response: %v", err))
	}
	if len(parsed.Data) == 0 {
		return succeed(sourceTruecaller, start, TruecallerData{})
	}

	entry := parsed.Data[0]
	data := TruecallerData{
		Name:  entry.Name,
		Photo: entry.Image,
	}
	if len(entry.InternetAddresses) > 0 {
		data.Email = entry.InternetAddresses[0].ID
	}
	for _, a := range entry.Addresses {
		if a.Address != "" {
			data.Addresses = append(data.Addresses, a.Address)
		} else if a.City != "" {
			data.Addresses = append(data.Addresses, a.City)
		}
	}
	for i, p := range entry.Phones {
		if i == 0 {
			data.Carrier = p.Carrier
			data.LineType = p.NumberType
			data.SpamScore = p.SpamScore
			continue
		}
		if p.E164Format != "" && p.E164Format != phone {
			data.AlternatePhones = append(data.AlternatePhones, p.E164Format)
		}
	}
	return succeed(sourceTruecaller, start, data)
}

// adapterError maps a transport error onto the wire-visible string,
// collapsing deadline expiry to "timeout".
func adapterError(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return "timeout"
	}
	return err.Error()
}
