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
	sourceFBI         = "fbi_wanted"
	defaultFBIBaseURL = "https://api.fbi.gov"
)

// FBIClient searches the public FBI most-wanted API. Open API, no
// credential needed.
type FBIClient struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// NewFBIClient creates an FBI wanted-list adapter.
func NewFBIClient(cfg config.ProvidersConfig) *FBIClient {
	baseURL := cfg.FBIBaseURL
	if baseURL == "" {
		baseURL = defaultFBIBaseURL
	}
	return &FBIClient{
		baseURL: baseURL,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

type fbiListResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"items"`
}

// Search queries the wanted list for a full name. The API's title
// search is fuzzy, so results are re-filtered: an item is kept only if
// its title contains at least one name part longer than two characters.
func (c *FBIClient) Search(ctx context.Context, fullName string) Result {
	start := time.Now()

	params := url.Values{}
	params.Set("title", fullName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/wanted/v1/list?"+params.Encode(), nil)
	if err != nil {
		return fail(sourceFBI, start, err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(sourceFBI, start, adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(sourceFBI, start, fmt.Sprintf("reading response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(sourceFBI, start, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed fbiListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fail(sourceFBI, start, fmt.Sprintf("decoding response: %v", err))
	}

	var parts []string
	for _, p := range strings.Fields(strings.ToLower(fullName)) {
		if len(p) > 2 {
			parts = append(parts, p)
		}
	}

	data := FBIData{Items: []FBIItem{}}
	for _, item := range parsed.Items {
		title := strings.ToLower(item.Title)
		for _, p := range parts {
			if strings.Contains(title, p) {
				data.Items = append(data.Items, FBIItem{
					Title:       item.Title,
					Description: item.Description,
					URL:         item.URL,
				})
				break
			}
		}
	}
	return succeed(sourceFBI, start, data)
}
