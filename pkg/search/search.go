// Package search implements the outbound HTTP clients for the research
// tools: Brave, SerpAPI, DuckDuckGo, ForumScout and the scientific
// reference APIs (arXiv, Europe PMC, Semantic Scholar, OpenAlex, PLOS).
//
// Clients return agent-facing text blocks prefixed with "SUCCESS:" or
// "ERROR:"; transport failures that the model can act on (timeouts, bad
// status codes) are folded into the text rather than returned as Go errors.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultTimeoutSeconds = 20

var defaultHTTPClient = &http.Client{}

func clamp(value, minimum, maximum int) int {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

// normalizeSnippet collapses whitespace and caps the snippet length.
func normalizeSnippet(text string, maxChars int) string {
	clean := strings.Join(strings.Fields(text), " ")
	if len(clean) <= maxChars {
		return clean
	}
	return strings.TrimRight(clean[:maxChars-3], " ") + "..."
}

func timeoutSeconds(requested int) time.Duration {
	if requested <= 0 {
		requested = defaultTimeoutSeconds
	}
	return time.Duration(requested) * time.Second
}

// getJSON issues a GET with a per-call timeout and classifies failures into
// the agent-facing error strings the callers render. The body is returned
// raw so each client can decode its own payload shape.
func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, headers map[string]string, timeout time.Duration) (statusCode int, body []byte, errText string) {
	if client == nil {
		client = defaultHTTPClient
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := endpoint
	if len(params) > 0 {
		reqURL = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Sprintf("ERROR: invalid request (%v)", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return 0, nil, "ERROR: request timed out"
		}
		return 0, nil, "ERROR: failed to connect"
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return 0, nil, "ERROR: request timed out"
		}
		return 0, nil, "ERROR: failed to read response"
	}
	return resp.StatusCode, body, ""
}

func statusBodyError(service string, statusCode int, body string) string {
	detail := strings.TrimSpace(strings.ReplaceAll(body, "\n", " "))
	if len(detail) > 220 {
		detail = detail[:217] + "..."
	}
	if detail != "" {
		detail = fmt.Sprintf(" (%s)", detail)
	}
	return fmt.Sprintf("ERROR: %s returned HTTP %d%s", service, statusCode, detail)
}
