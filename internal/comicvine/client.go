package comicvine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"runarr/internal/services"
)

const (
	searchFieldList = "id,name,start_year,publisher,image,site_detail_url"
	volumeFieldList = "id,name,start_year,publisher,description,count_of_issues,image,site_detail_url,first_issue,last_issue," +
		"characters,teams,locations,concepts"
	issueFieldList  = "id,name,issue_number,description,cover_date,store_date,site_detail_url,volume," +
		"person_credits,character_credits,team_credits,location_credits,story_arc_credits,concept_credits"
)

// Doer executes a single HTTP request. The production client wraps the base
// transport in a Throttle; tests substitute a bare http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Catalog defines the remote operations the resolver depends on.
type Catalog interface {
	SearchVolumes(ctx context.Context, query string) ([]Volume, error)
	GetVolume(ctx context.Context, volumeID int64) (*Volume, error)
	ListIssues(ctx context.Context, volumeID int64) (map[string]IssueRef, error)
	GetIssue(ctx context.Context, ref IssueRef, vol *Volume) (*Issue, error)
}

// Client provides access to the Comic Vine API.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	doer      Doer
}

var _ Catalog = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithDoer overrides the transport used for requests.
func WithDoer(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// New creates a Comic Vine client.
func New(apiKey, baseURL, userAgent string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("comicvine api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("comicvine base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("comicvine user agent required")
	}
	client := &Client{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		doer:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Envelope status codes the client distinguishes. Everything else is a
// transport-class failure.
const (
	statusOK             = 1
	statusObjectNotFound = 101
)

// envelope models the Comic Vine response wrapper. Results is a list for
// searches and a single object for detail fetches.
type envelope struct {
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	Results    json.RawMessage `json:"results"`
}

// SearchVolumes searches the catalog for series matching the query. An empty
// slice is a valid result, not an error.
func (c *Client) SearchVolumes(ctx context.Context, query string) ([]Volume, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("resources", "volume")
	params.Set("field_list", searchFieldList)

	raw, err := c.get(ctx, "/search/", params)
	if err != nil {
		return nil, err
	}
	var volumes []Volume
	if err := json.Unmarshal(raw, &volumes); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return volumes, nil
}

// GetVolume fetches full volume detail, richer than a search result.
func (c *Client) GetVolume(ctx context.Context, volumeID int64) (*Volume, error) {
	if volumeID <= 0 {
		return nil, errors.New("volume id must be positive")
	}
	params := url.Values{}
	params.Set("field_list", volumeFieldList)

	raw, err := c.get(ctx, fmt.Sprintf("/volume/4050-%d/", volumeID), params)
	if err != nil {
		return nil, err
	}
	var volume Volume
	if err := json.Unmarshal(raw, &volume); err != nil {
		return nil, fmt.Errorf("decode volume detail: %w", err)
	}
	if volume.ID == 0 {
		return nil, fmt.Errorf("volume %d: empty detail payload", volumeID)
	}
	return &volume, nil
}

// ListIssues fetches the volume's issue list keyed by normalized issue number.
// Duplicate issue numbers are resolved last-seen wins; that keeps reprints and
// variant rows from shadowing the canonical entry the catalog lists last.
func (c *Client) ListIssues(ctx context.Context, volumeID int64) (map[string]IssueRef, error) {
	if volumeID <= 0 {
		return nil, errors.New("volume id must be positive")
	}
	params := url.Values{}
	params.Set("field_list", "issues")

	raw, err := c.get(ctx, fmt.Sprintf("/volume/4050-%d/", volumeID), params)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Issues []IssueRef `json:"issues"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode issue list: %w", err)
	}
	issues := make(map[string]IssueRef, len(payload.Issues))
	for _, ref := range payload.Issues {
		key := NormalizeIssueNumber(ref.IssueNumber)
		if key == "" {
			continue
		}
		issues[key] = ref
	}
	return issues, nil
}

// GetIssue fetches full issue detail and injects vol, since the remote record
// only embeds a truncated volume reference.
func (c *Client) GetIssue(ctx context.Context, ref IssueRef, vol *Volume) (*Issue, error) {
	if ref.ID <= 0 {
		return nil, errors.New("issue id must be positive")
	}
	params := url.Values{}
	params.Set("field_list", issueFieldList)

	raw, err := c.get(ctx, fmt.Sprintf("/issue/4000-%d/", ref.ID), params)
	if err != nil {
		return nil, err
	}
	var issue Issue
	if err := json.Unmarshal(raw, &issue); err != nil {
		return nil, fmt.Errorf("decode issue detail: %w", err)
	}
	if issue.ID == 0 {
		return nil, fmt.Errorf("issue %d: empty detail payload", ref.ID)
	}
	issue.Volume = vol
	return &issue, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse comicvine url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	requestStart := time.Now()
	resp, err := c.doer.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "comicvine", "request",
			fmt.Sprintf("execute %s (latency=%v)", path, latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrTransport
		if isThrottled(resp.StatusCode) {
			marker = services.ErrThrottled
		}
		return nil, services.Wrap(marker, "comicvine", "request",
			fmt.Sprintf("status %d for %s (latency=%v)", resp.StatusCode, path, latency), nil)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, services.Wrap(services.ErrTransport, "comicvine", "decode", path, err)
	}
	if env.StatusCode != statusOK {
		marker := services.ErrTransport
		if env.StatusCode == statusObjectNotFound {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "comicvine", "request",
			fmt.Sprintf("api error %d: %s", env.StatusCode, env.Error), nil)
	}
	return env.Results, nil
}
