package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/chack-ai/chack-tools/pkg/core"
)

const serpAPIEndpoint = "https://serpapi.com/search"

// SerpAPIClient queries SerpAPI engines (Google/Bing web, Google Scholar,
// Google Patents, Google News, forum-filtered Google, YouTube). Several
// comma-separated keys may be configured; on a rate-limited response the
// client fails over to the next key.
type SerpAPIClient struct {
	config *core.ToolsConfig

	BaseURL    string
	HTTPClient *http.Client
}

// NewSerpAPIClient creates a client bound to the given config.
func NewSerpAPIClient(config *core.ToolsConfig) *SerpAPIClient {
	return &SerpAPIClient{
		config:  config,
		BaseURL: serpAPIEndpoint,
	}
}

func (s *SerpAPIClient) maxResults(requested int) int {
	fallback := s.config.SerpAPIWebMaxResults
	if fallback <= 0 {
		fallback = 6
	}
	if requested <= 0 {
		return clamp(fallback, 1, 10)
	}
	return clamp(requested, 1, 10)
}

type serpAPIPayload struct {
	Error          string            `json:"error"`
	OrganicResults []serpAPIResult   `json:"organic_results"`
	NewsResults    []serpAPIResult   `json:"news_results"`
	VideoResults   []serpAPIVideoRes `json:"video_results"`
}

type serpAPIResult struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	TrackingLink string `json:"tracking_link"`
	Snippet      string `json:"snippet"`
	Description  string `json:"description"`
	Source       any    `json:"source"`
	Date         string `json:"date"`
	Position     int    `json:"position"`
}

type serpAPIVideoRes struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Channel   any    `json:"channel"`
	Length    string `json:"length"`
	Views     any    `json:"views"`
	Published string `json:"published_date"`
}

// request performs the SerpAPI call, rotating through the configured keys
// when a key is rate limited. The returned payload is nil when errText is
// non-empty.
func (s *SerpAPIClient) request(ctx context.Context, params url.Values, timeoutSec int) (*serpAPIPayload, string) {
	keys := ShuffledSerpAPIKeys(s.config.SerpAPIKey)
	if len(keys) == 0 {
		return nil, "ERROR: SerpAPI key not configured."
	}
	timeout := timeoutSeconds(timeoutSec)

	lastErr := ""
	for _, key := range keys {
		reqParams := url.Values{}
		for k, v := range params {
			reqParams[k] = v
		}
		reqParams.Set("api_key", key)
		reqParams.Set("output", "json")

		status, body, errText := getJSON(ctx, s.HTTPClient, s.BaseURL, reqParams, nil, timeout)
		if errText != "" {
			if errText == "ERROR: request timed out" {
				return nil, "ERROR: SerpAPI request timed out"
			}
			return nil, "ERROR: Failed to connect to SerpAPI"
		}

		if status >= 400 {
			if IsSerpAPIRateLimited(status, string(body)) {
				lastErr = statusBodyError("SerpAPI", status, string(body))
				continue
			}
			return nil, statusBodyError("SerpAPI", status, string(body))
		}

		var payload serpAPIPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, "ERROR: SerpAPI returned invalid JSON"
		}
		if payload.Error != "" {
			if IsSerpAPIRateLimited(status, payload.Error) {
				lastErr = fmt.Sprintf("ERROR: SerpAPI error (%s)", payload.Error)
				continue
			}
			return nil, fmt.Sprintf("ERROR: SerpAPI error (%s)", payload.Error)
		}
		return &payload, ""
	}
	if lastErr == "" {
		lastErr = "ERROR: all SerpAPI keys are rate limited"
	}
	return nil, lastErr
}

func renderOrganic(engine, query string, results []serpAPIResult, maxShown int) string {
	if len(results) == 0 {
		return fmt.Sprintf("SUCCESS: No SerpAPI results found for '%s'.", query)
	}
	if len(results) > maxShown {
		results = results[:maxShown]
	}
	lines := []string{fmt.Sprintf("SUCCESS: SerpAPI %s results for '%s' (top %d):", engine, query, len(results))}
	for idx, item := range results {
		title := item.Title
		if title == "" {
			title = "(no title)"
		}
		link := item.Link
		if link == "" {
			link = item.TrackingLink
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, title, link))

		var meta []string
		if src := sourceName(item.Source); src != "" {
			meta = append(meta, src)
		}
		if item.Date != "" {
			meta = append(meta, "date: "+item.Date)
		}
		if item.Position > 0 {
			meta = append(meta, "pos: "+strconv.Itoa(item.Position))
		}
		if len(meta) > 0 {
			lines = append(lines, "   "+strings.Join(meta, " | "))
		}
		snippet := item.Snippet
		if snippet == "" {
			snippet = item.Description
		}
		if snippet = normalizeSnippet(snippet, 240); snippet != "" {
			lines = append(lines, "   "+snippet)
		}
	}
	return strings.Join(lines, "\n")
}

// sourceName tolerates SerpAPI's mixed source shapes (string or object with
// a name field).
func sourceName(source any) string {
	switch v := source.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	}
	return ""
}

// SearchGoogleWeb searches Google web results.
func (s *SerpAPIClient) SearchGoogleWeb(ctx context.Context, query string, page, num, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxShown := s.maxResults(num)
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxShown))
	params.Set("start", strconv.Itoa((page-1)*maxShown))
	payload, errText := s.request(ctx, params, timeoutSec)
	if errText != "" {
		return errText
	}
	return renderOrganic("google", query, payload.OrganicResults, maxShown)
}

// SearchBingWeb searches Bing web results.
func (s *SerpAPIClient) SearchBingWeb(ctx context.Context, query string, page, count, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxShown := s.maxResults(count)
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("engine", "bing")
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxShown))
	params.Set("first", strconv.Itoa((page-1)*maxShown+1))
	payload, errText := s.request(ctx, params, timeoutSec)
	if errText != "" {
		return errText
	}
	return renderOrganic("bing", query, payload.OrganicResults, maxShown)
}

// SearchGoogleScholar searches Google Scholar.
func (s *SerpAPIClient) SearchGoogleScholar(ctx context.Context, query string, num int, includePatents bool, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxShown := clamp(num, 1, 20)
	params := url.Values{}
	params.Set("engine", "google_scholar")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxShown))
	if includePatents {
		params.Set("as_sdt", "2007")
	}
	payload, errText := s.request(ctx, params, timeoutSec)
	if errText != "" {
		return errText
	}
	return renderOrganic("google_scholar", query, payload.OrganicResults, maxShown)
}

// SearchGooglePatents searches Google Patents.
func (s *SerpAPIClient) SearchGooglePatents(ctx context.Context, query string, page, num, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxShown := clamp(num, 1, 20)
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("engine", "google_patents")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxShown))
	params.Set("page", strconv.Itoa(page))
	payload, errText := s.request(ctx, params, timeoutSec)
	if errText != "" {
		return errText
	}
	return renderOrganic("google_patents", query, payload.OrganicResults, maxShown)
}

// SearchGoogleNews searches Google News.
func (s *SerpAPIClient) SearchGoogleNews(ctx context.Context, query string, page, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxShown := s.maxResults(0)
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("engine", "google_news")
	params.Set("q", query)
	payload, errText := s.request(ctx, params, timeoutSec)
	if errText != "" {
		return errText
	}
	return renderOrganic("google_news", query, payload.NewsResults, maxShown)
}

// SearchGoogleForums searches Google restricted to forum/discussion results.
func (s *SerpAPIClient) SearchGoogleForums(ctx context.Context, query string, page, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxShown := s.maxResults(0)
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	// udm=18 is Google's discussions-and-forums vertical.
	params.Set("udm", "18")
	params.Set("num", strconv.Itoa(maxShown))
	params.Set("start", strconv.Itoa((page-1)*maxShown))
	payload, errText := s.request(ctx, params, timeoutSec)
	if errText != "" {
		return errText
	}
	return renderOrganic("google forums", query, payload.OrganicResults, maxShown)
}

// SearchYouTube searches YouTube videos.
func (s *SerpAPIClient) SearchYouTube(ctx context.Context, query string, limit int, gl, hl string, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxShown := clamp(limit, 1, 20)
	params := url.Values{}
	params.Set("engine", "youtube")
	params.Set("search_query", query)
	if gl != "" {
		params.Set("gl", gl)
	}
	if hl != "" {
		params.Set("hl", hl)
	}
	payload, errText := s.request(ctx, params, timeoutSec)
	if errText != "" {
		return errText
	}
	videos := payload.VideoResults
	if len(videos) == 0 {
		return fmt.Sprintf("SUCCESS: No YouTube results found for '%s'.", query)
	}
	if len(videos) > maxShown {
		videos = videos[:maxShown]
	}
	lines := []string{fmt.Sprintf("SUCCESS: YouTube results for '%s' (top %d):", query, len(videos))}
	for idx, video := range videos {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, video.Title, video.Link))
		var meta []string
		if name := sourceName(video.Channel); name != "" {
			meta = append(meta, name)
		}
		if video.Length != "" {
			meta = append(meta, "length: "+video.Length)
		}
		if video.Published != "" {
			meta = append(meta, "published: "+video.Published)
		}
		if len(meta) > 0 {
			lines = append(lines, "   "+strings.Join(meta, " | "))
		}
	}
	return strings.Join(lines, "\n")
}
