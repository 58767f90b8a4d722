package search

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chack-ai/chack-tools/pkg/core"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

var freshnessRangePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}to\d{4}-\d{2}-\d{2}$`)

// NormalizeFreshness validates a Brave freshness filter: one of pd, pw, pm,
// py or a YYYY-MM-DDtoYYYY-MM-DD range. Returns "" for invalid input.
func NormalizeFreshness(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "":
		return ""
	case "pd", "pw", "pm", "py":
		return value
	}
	if freshnessRangePattern.MatchString(value) {
		return value
	}
	return ""
}

// BraveClient queries the Brave web search API.
type BraveClient struct {
	config *core.ToolsConfig

	// BaseURL and HTTPClient are overridable for tests.
	BaseURL    string
	HTTPClient *http.Client

	// sleep is stubbed in tests; the real client backs off before the
	// single 429 retry.
	sleep func(time.Duration)
}

// BraveQuery carries the optional parameters of a Brave search.
type BraveQuery struct {
	Query          string
	Count          int
	Country        string
	SearchLang     string
	UILang         string
	Freshness      string
	TimeoutSeconds int
}

// NewBraveClient creates a client bound to the given config.
func NewBraveClient(config *core.ToolsConfig) *BraveClient {
	return &BraveClient{
		config:  config,
		BaseURL: braveEndpoint,
		sleep:   time.Sleep,
	}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs a Brave web search and renders the results as a text block.
func (b *BraveClient) Search(ctx context.Context, q BraveQuery) string {
	apiKey := strings.TrimSpace(b.config.BraveAPIKey)
	if apiKey == "" {
		return "ERROR: Brave API key not configured."
	}
	if strings.TrimSpace(q.Query) == "" {
		return "ERROR: Query cannot be empty"
	}

	count := q.Count
	if count == 0 {
		count = b.config.BraveMaxResults
	}
	count = clamp(count, 1, 20)

	freshness := ""
	if q.Freshness != "" {
		freshness = NormalizeFreshness(q.Freshness)
		if freshness == "" {
			return "ERROR: freshness must be one of pd, pw, pm, py, or a range like YYYY-MM-DDtoYYYY-MM-DD"
		}
	}

	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("count", strconv.Itoa(count))
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.SearchLang != "" {
		params.Set("search_lang", q.SearchLang)
	}
	if q.UILang != "" {
		params.Set("ui_lang", q.UILang)
	}
	if freshness != "" {
		params.Set("freshness", freshness)
	}
	headers := map[string]string{
		"Accept":               "application/json",
		"X-Subscription-Token": apiKey,
	}
	timeout := timeoutSeconds(q.TimeoutSeconds)

	status, body, errText := getJSON(ctx, b.HTTPClient, b.BaseURL, params, headers, timeout)
	if errText != "" {
		return errText
	}
	if status == http.StatusTooManyRequests {
		// Sleep a random 0-10s and retry once.
		sleep := b.sleep
		if sleep == nil {
			sleep = time.Sleep
		}
		sleep(time.Duration(rand.Int63n(int64(10 * time.Second))))
		status, body, errText = getJSON(ctx, b.HTTPClient, b.BaseURL, params, headers, timeout)
		if errText != "" {
			return errText
		}
	}
	if status >= 400 {
		return statusBodyError("Brave", status, string(body))
	}

	var payload braveResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "ERROR: Brave returned invalid JSON"
	}

	maxShown := clamp(b.config.BraveMaxResults, 1, 20)
	results := payload.Web.Results
	if len(results) > maxShown {
		results = results[:maxShown]
	}
	if len(results) == 0 {
		return "No results."
	}

	lines := make([]string, 0, len(results))
	for _, entry := range results {
		title := entry.Title
		if title == "" {
			title = "(no title)"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s\n  %s", title, entry.URL, entry.Description))
	}
	return strings.Join(lines, "\n")
}
