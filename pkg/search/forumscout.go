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

// ForumScoutClient queries the ForumScout social/forum search API
// (forum, LinkedIn, Instagram, Reddit posts/comments, X).
type ForumScoutClient struct {
	config *core.ToolsConfig

	// BaseURL defaults to the configured ForumScout base URL.
	BaseURL    string
	HTTPClient *http.Client
}

// NewForumScoutClient creates a client bound to the given config.
func NewForumScoutClient(config *core.ToolsConfig) *ForumScoutClient {
	base := strings.TrimSuffix(config.ForumScoutBaseURL, "/")
	if base == "" {
		base = "https://forumscout.app"
	}
	return &ForumScoutClient{
		config:  config,
		BaseURL: base,
	}
}

// HasAPIKey reports whether a ForumScout key is configured.
func (f *ForumScoutClient) HasAPIKey() bool {
	return strings.TrimSpace(f.config.ForumScoutAPIKey) != ""
}

type forumScoutItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Text    string `json:"text"`
	Author  string `json:"author"`
	Source  string `json:"source"`
	Date    string `json:"date"`
}

type forumScoutPayload struct {
	Error   string           `json:"error"`
	Results []forumScoutItem `json:"results"`
	Data    []forumScoutItem `json:"data"`
}

func (f *ForumScoutClient) request(ctx context.Context, endpoint string, params url.Values, timeoutSec int) ([]forumScoutItem, string) {
	apiKey := strings.TrimSpace(f.config.ForumScoutAPIKey)
	if apiKey == "" {
		return nil, "ERROR: ForumScout API key not configured."
	}
	headers := map[string]string{
		"Accept":    "application/json",
		"X-API-Key": apiKey,
	}

	status, body, errText := getJSON(ctx, f.HTTPClient, f.BaseURL+endpoint, params, headers, timeoutSeconds(timeoutSec))
	if errText != "" {
		if errText == "ERROR: request timed out" {
			return nil, "ERROR: ForumScout request timed out"
		}
		return nil, "ERROR: Failed to connect to ForumScout"
	}
	if status >= 400 {
		return nil, statusBodyError("ForumScout", status, string(body))
	}

	// The API returns either a bare array or an object with results/data.
	var items []forumScoutItem
	if err := json.Unmarshal(body, &items); err == nil {
		return items, ""
	}
	var payload forumScoutPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "ERROR: ForumScout returned invalid JSON"
	}
	if payload.Error != "" {
		return nil, fmt.Sprintf("ERROR: ForumScout error (%s)", payload.Error)
	}
	if len(payload.Results) > 0 {
		return payload.Results, ""
	}
	return payload.Data, ""
}

func (f *ForumScoutClient) render(label, query string, items []forumScoutItem) string {
	maxShown := clamp(f.config.ForumScoutMaxResults, 1, 20)
	if len(items) == 0 {
		return fmt.Sprintf("SUCCESS: No %s results found for '%s'.", label, query)
	}
	if len(items) > maxShown {
		items = items[:maxShown]
	}
	lines := []string{fmt.Sprintf("SUCCESS: %s results for '%s' (top %d):", label, query, len(items))}
	for idx, item := range items {
		title := item.Title
		if title == "" {
			title = normalizeSnippet(item.Text, 80)
		}
		if title == "" {
			title = "(no title)"
		}
		link := item.URL
		if link == "" {
			link = item.Link
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, title, link))

		var meta []string
		if item.Source != "" {
			meta = append(meta, item.Source)
		}
		if item.Author != "" {
			meta = append(meta, "by "+item.Author)
		}
		if item.Date != "" {
			meta = append(meta, "date: "+item.Date)
		}
		if len(meta) > 0 {
			lines = append(lines, "   "+strings.Join(meta, " | "))
		}
		snippet := item.Snippet
		if snippet == "" {
			snippet = item.Text
		}
		if snippet = normalizeSnippet(snippet, 240); snippet != "" {
			lines = append(lines, "   "+snippet)
		}
	}
	return strings.Join(lines, "\n")
}

func pageParams(query string, page int, sortKey, sortValue string) url.Values {
	params := url.Values{}
	params.Set("query", query)
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))
	if sortValue != "" {
		params.Set(sortKey, sortValue)
	}
	return params
}

// ForumSearch searches forums across the web.
func (f *ForumScoutClient) ForumSearch(ctx context.Context, query, timeFilter, country string, page, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	params := pageParams(query, page, "", "")
	if timeFilter != "" {
		params.Set("time", timeFilter)
	}
	if country != "" {
		params.Set("country", country)
	}
	items, errText := f.request(ctx, "/api/forum_search", params, timeoutSec)
	if errText != "" {
		return errText
	}
	return f.render("forum", query, items)
}

// LinkedInSearch searches LinkedIn posts.
func (f *ForumScoutClient) LinkedInSearch(ctx context.Context, query string, page int, sortBy string, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if sortBy == "" {
		sortBy = "date_posted"
	}
	items, errText := f.request(ctx, "/api/linkedin_search", pageParams(query, page, "sort_by", sortBy), timeoutSec)
	if errText != "" {
		return errText
	}
	return f.render("LinkedIn", query, items)
}

// InstagramSearch searches Instagram posts.
func (f *ForumScoutClient) InstagramSearch(ctx context.Context, query string, page int, sortBy string, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if sortBy == "" {
		sortBy = "recent"
	}
	items, errText := f.request(ctx, "/api/instagram_search", pageParams(query, page, "sort_by", sortBy), timeoutSec)
	if errText != "" {
		return errText
	}
	return f.render("Instagram", query, items)
}

// RedditPostsSearch searches Reddit posts.
func (f *ForumScoutClient) RedditPostsSearch(ctx context.Context, query string, page int, sortBy string, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if sortBy == "" {
		sortBy = "new"
	}
	items, errText := f.request(ctx, "/api/reddit_search", pageParams(query, page, "sort_by", sortBy), timeoutSec)
	if errText != "" {
		return errText
	}
	return f.render("Reddit post", query, items)
}

// RedditCommentsSearch searches Reddit comments.
func (f *ForumScoutClient) RedditCommentsSearch(ctx context.Context, query string, page int, sortBy string, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if sortBy == "" {
		sortBy = "created_utc"
	}
	items, errText := f.request(ctx, "/api/reddit_comment_search", pageParams(query, page, "sort_by", sortBy), timeoutSec)
	if errText != "" {
		return errText
	}
	return f.render("Reddit comment", query, items)
}

// XSearch searches X (Twitter) posts.
func (f *ForumScoutClient) XSearch(ctx context.Context, query string, page int, sortBy string, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if sortBy == "" {
		sortBy = "Latest"
	}
	items, errText := f.request(ctx, "/api/x_search", pageParams(query, page, "sort_by", sortBy), timeoutSec)
	if errText != "" {
		return errText
	}
	return f.render("X", query, items)
}
