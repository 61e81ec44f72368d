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
	sourceFullContact         = "fullcontact"
	defaultFullContactBaseURL = "https://api.fullcontact.com"
)

// FullContactClient enriches an email address into a person profile.
type FullContactClient struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewFullContactClient creates a FullContact adapter.
func NewFullContactClient(cfg config.ProvidersConfig) *FullContactClient {
	baseURL := cfg.FullContactBaseURL
	if baseURL == "" {
		baseURL = defaultFullContactBaseURL
	}
	return &FullContactClient{
		baseURL: baseURL,
		apiKey:  cfg.FullContactAPIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

type fullContactResponse struct {
	FullName string `json:"fullName"`
	Details  struct {
		Phones []struct {
			Value string `json:"value"`
		} `json:"phones"`
		Photos []struct {
			Value string `json:"value"`
		} `json:"photos"`
		Locations []struct {
			City    string `json:"city"`
			Country string `json:"country"`
		} `json:"locations"`
		Employment []struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		} `json:"employment"`
		Profiles map[string]struct {
			URL string `json:"url"`
		} `json:"profiles"`
	} `json:"details"`
}

// Lookup enriches one email address.
func (c *FullContactClient) Lookup(ctx context.Context, email string) Result {
	if c.apiKey == "" {
		return notConfigured(sourceFullContact)
	}
	start := time.Now()

	payload, _ := json.Marshal(map[string]string{"email": email})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v3/person.enrich", bytes.NewReader(payload))
	if err != nil {
		return fail(sourceFullContact, start, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(sourceFullContact, start, adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(sourceFullContact, start, fmt.Sprintf("reading response: %v", err))
	}
	if resp.StatusCode == http.StatusNotFound {
		// No profile behind that address.
		return succeed(sourceFullContact, start, FullContactData{})
	}
	if resp.StatusCode != http.StatusOK {
		return fail(sourceFullContact, start, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed fullContactResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fail(sourceFullContact, start, fmt.Sprintf("decoding response: %v", err))
	}

	data := FullContactData{FullName: parsed.FullName}
	for _, p := range parsed.Details.Phones {
		data.Phones = append(data.Phones, p.Value)
	}
	for _, p := range parsed.Details.Photos {
		data.Photos = append(data.Photos, p.Value)
	}
	for _, l := range parsed.Details.Locations {
		loc := l.City
		if l.Country != "" {
			if loc != "" {
				loc += ", "
			}
			loc += l.Country
		}
		if loc != "" {
			data.Locations = append(data.Locations, loc)
		}
	}
	for _, e := range parsed.Details.Employment {
		entry := e.Name
		if e.Title != "" {
			if entry != "" {
				entry += " - "
			}
			entry += e.Title
		}
		if entry != "" {
			data.Employment = append(data.Employment, entry)
		}
	}
	for _, p := range parsed.Details.Profiles {
		if p.URL != "" {
			data.SocialProfiles = append(data.SocialProfiles, p.URL)
		}
	}
	return succeed(sourceFullContact, start, data)
}
