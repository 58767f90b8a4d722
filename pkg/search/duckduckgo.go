package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/chack-ai/chack-tools/pkg/core"
)

const duckDuckGoEndpoint = "https://duckduckgo.com/html/"

const (
	duckDuckGoDefaultUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15"
	duckDuckGoRetryUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DuckDuckGoClient scrapes the keyless DuckDuckGo HTML endpoint. It exists
// as the zero-configuration fallback when no search API key is available.
type DuckDuckGoClient struct {
	config *core.ToolsConfig

	BaseURL    string
	HTTPClient *http.Client
}

// NewDuckDuckGoClient creates a client bound to the given config.
func NewDuckDuckGoClient(config *core.ToolsConfig) *DuckDuckGoClient {
	return &DuckDuckGoClient{
		config:  config,
		BaseURL: duckDuckGoEndpoint,
	}
}

type ddgResult struct {
	Title string
	URL   string
}

// Search queries DuckDuckGo and renders a numbered result list. A custom
// userAgent may be supplied when the default one gets blocked; with the
// default one, an empty result set triggers a single retry with an
// alternate UA.
func (d *DuckDuckGoClient) Search(ctx context.Context, query, userAgent string) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	maxResults := clamp(d.config.DuckDuckGoMaxResults, 1, 20)

	ua := userAgent
	if ua == "" {
		ua = duckDuckGoDefaultUA
	}

	results, errText := d.fetch(ctx, query, ua)
	if errText != "" {
		return errText
	}
	if len(results) == 0 && ua == duckDuckGoDefaultUA {
		results, errText = d.fetch(ctx, query, duckDuckGoRetryUA)
		if errText != "" {
			return errText
		}
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if len(results) == 0 {
		return fmt.Sprintf("SUCCESS: No DuckDuckGo results found for '%s'. Try a different user_agent.", query)
	}

	lines := []string{fmt.Sprintf("SUCCESS: DuckDuckGo results for '%s' (top %d):", query, len(results))}
	for idx, result := range results {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, result.Title, result.URL))
	}
	return strings.Join(lines, "\n")
}

func (d *DuckDuckGoClient) fetch(ctx context.Context, query, userAgent string) ([]ddgResult, string) {
	params := url.Values{}
	params.Set("q", query)
	headers := map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}

	status, body, errText := getJSON(ctx, d.HTTPClient, d.BaseURL, params, headers, timeoutSeconds(20))
	if errText != "" {
		if errText == "ERROR: request timed out" {
			return nil, "ERROR: DuckDuckGo search timed out"
		}
		return nil, "ERROR: Failed to connect to DuckDuckGo"
	}
	if status == http.StatusAccepted {
		return nil, "ERROR: DuckDuckGo returned HTTP 202 (likely blocked). Try different network/user_agent."
	}
	if status >= 400 {
		return nil, fmt.Sprintf("ERROR: DuckDuckGo returned HTTP %d", status)
	}
	return parseDuckDuckGoHTML(string(body)), ""
}

// parseDuckDuckGoHTML extracts the result anchors (a.result__a) from the
// HTML endpoint markup.
func parseDuckDuckGoHTML(page string) []ddgResult {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var results []ddgResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			title := strings.TrimSpace(textContent(n))
			href := attrValue(n, "href")
			if title != "" && href != "" {
				results = append(results, ddgResult{
					Title: title,
					URL:   normalizeDuckDuckGoURL(href),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// normalizeDuckDuckGoURL unwraps DuckDuckGo's uddg redirect wrapper and
// fixes protocol-relative links.
func normalizeDuckDuckGoURL(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	} else if strings.HasPrefix(raw, "/") {
		raw = "https://duckduckgo.com" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
