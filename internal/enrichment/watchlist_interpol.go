package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/setal/compliance-intel/internal/config"
	"github.com/setal/compliance-intel/internal/pkg/httpretry"
)

// ErrNoticeNotFound reports that no Red Notice exists for the requested
// entity id. Callers map it to a not-found response.
var ErrNoticeNotFound = errors.New("notice not found")

const (
	sourceInterpol         = "interpol_red_notices"
	defaultInterpolBaseURL = "https://ws-public.interpol.int"
)

// InterpolClient searches the public INTERPOL Red Notice API. The API
// is open; no credential needed.
type InterpolClient struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// NewInterpolClient creates an INTERPOL adapter.
func NewInterpolClient(cfg config.ProvidersConfig) *InterpolClient {
	baseURL := cfg.InterpolBaseURL
	if baseURL == "" {
		baseURL = defaultInterpolBaseURL
	}
	return &InterpolClient{
		baseURL: baseURL,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 2),
	}
}

// InterpolQuery is the subject of a Red Notice search.
type InterpolQuery struct {
	Forename    string
	Name        string
	Nationality string // ISO-2, optional
	Age         int    // optional; searched as a +/-5 year band
}

type interpolListResponse struct {
	Embedded struct {
		Notices []struct {
			EntityID      string   `json:"entity_id"`
			Forename      string   `json:"forename"`
			Name          string   `json:"name"`
			Nationalities []string `json:"nationalities"`
			Links         struct {
				Thumbnail struct {
					Href string `json:"href"`
				} `json:"thumbnail"`
			} `json:"_links"`
		} `json:"notices"`
	} `json:"_embedded"`
}

// Search queries Red Notices for a subject.
func (c *InterpolClient) Search(ctx context.Context, q InterpolQuery) Result {
	start := time.Now()

	params := url.Values{}
	if q.Forename != "" {
		params.Set("forename", q.Forename)
	}
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.Nationality != "" {
		params.Set("nationality", q.Nationality)
	}
	if q.Age > 0 {
		params.Set("ageMin", strconv.Itoa(max(0, q.Age-5)))
		params.Set("ageMax", strconv.Itoa(q.Age+5))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/notices/v1/red?"+params.Encode(), nil)
	if err != nil {
		return fail(sourceInterpol, start, err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(sourceInterpol, start, adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(sourceInterpol, start, fmt.Sprintf("reading response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(sourceInterpol, start, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var parsed interpolListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fail(sourceInterpol, start, fmt.Sprintf("decoding response: %v", err))
	}

	data := InterpolData{Notices: []InterpolNotice{}}
	for _, n := range parsed.Embedded.Notices {
		data.Notices = append(data.Notices, InterpolNotice{
			EntityID:      n.EntityID,
			Name:          strings.TrimSpace(n.Forename + " " + n.Name),
			Nationalities: n.Nationalities,
			Photo:         n.Links.Thumbnail.Href,
		})
	}
	return succeed(sourceInterpol, start, data)
}

// NoticeDetail is the full record behind one Red Notice.
type NoticeDetail struct {
	EntityID      string   `json:"entity_id"`
	Name          string   `json:"name"`
	DateOfBirth   string   `json:"date_of_birth,omitempty"`
	Nationalities []string `json:"nationalities,omitempty"`
	Charges       []string `json:"charges,omitempty"`
	Warrants      []string `json:"warrants,omitempty"`
}

type interpolDetailResponse struct {
	EntityID         string   `json:"entity_id"`
	Forename         string   `json:"forename"`
	Name             string   `json:"name"`
	DateOfBirth      string   `json:"date_of_birth"`
	Nationalities    []string `json:"nationalities"`
	ArrestWarrants   []struct {
		Charge              string `json:"charge"`
		IssuingCountryID    string `json:"issuing_country_id"`
	} `json:"arrest_warrants"`
}

// Notice fetches the detail record for one Red Notice entity id. Ids
// arrive as "YYYY/NNNNN"; the API path wants the slash dashed.
func (c *InterpolClient) Notice(ctx context.Context, entityID string) (*NoticeDetail, error) {
	pathID := strings.ReplaceAll(entityID, "/", "-")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/notices/v1/red/"+url.PathEscape(pathID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s", adapterError(ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("notice %s: %w", entityID, ErrNoticeNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed interpolDetailResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	detail := &NoticeDetail{
		EntityID:      parsed.EntityID,
		Name:          strings.TrimSpace(parsed.Forename + " " + parsed.Name),
		DateOfBirth:   parsed.DateOfBirth,
		Nationalities: parsed.Nationalities,
	}
	for _, w := range parsed.ArrestWarrants {
		if w.Charge != "" {
			detail.Charges = append(detail.Charges, w.Charge)
		}
		if w.IssuingCountryID != "" {
			detail.Warrants = append(detail.Warrants, w.IssuingCountryID)
		}
	}
	return detail, nil
}
