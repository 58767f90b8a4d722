package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chack-ai/chack-tools/pkg/core"
)

const ddgResultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&rut=x">The Go Programming Language</a>
</div>
<div class="result">
  <a class="result__a" href="https://pkg.go.dev/">Go Packages</a>
</div>
<a href="https://ignored.example">not a result</a>
</body></html>`

func duckDuckGoTestClient(t *testing.T, handler http.HandlerFunc) *DuckDuckGoClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewDuckDuckGoClient(core.NewToolsConfig())
	client.BaseURL = server.URL
	return client
}

func TestDuckDuckGoSearchParsesResults(t *testing.T) {
	client := duckDuckGoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		w.Write([]byte(ddgResultsPage))
	})

	output := client.Search(context.Background(), "golang", "")

	assert.Contains(t, output, "SUCCESS: DuckDuckGo results for 'golang' (top 2):")
	assert.Contains(t, output, "1. The Go Programming Language - https://go.dev/")
	assert.Contains(t, output, "2. Go Packages - https://pkg.go.dev/")
	assert.NotContains(t, output, "ignored.example")
}

func TestDuckDuckGoSearchEmptyQuery(t *testing.T) {
	client := duckDuckGoTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "ERROR: Query cannot be empty", client.Search(context.Background(), "", ""))
}

func TestDuckDuckGoBlockedResponse(t *testing.T) {
	client := duckDuckGoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	output := client.Search(context.Background(), "q", "")
	assert.Contains(t, output, "HTTP 202")
	assert.Contains(t, output, "blocked")
}

func TestDuckDuckGoRetriesWithAlternateUA(t *testing.T) {
	var agents []string
	client := duckDuckGoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		if len(agents) == 1 {
			w.Write([]byte("<html><body></body></html>"))
			return
		}
		w.Write([]byte(ddgResultsPage))
	})

	output := client.Search(context.Background(), "q", "")

	assert.Len(t, agents, 2)
	assert.NotEqual(t, agents[0], agents[1])
	assert.Contains(t, output, "SUCCESS: DuckDuckGo results")
}

func TestDuckDuckGoCustomUANoRetry(t *testing.T) {
	calls := 0
	client := duckDuckGoTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body></body></html>"))
	})

	output := client.Search(context.Background(), "q", "custom-agent")

	assert.Equal(t, 1, calls)
	assert.Contains(t, output, "No DuckDuckGo results")
}

func TestNormalizeDuckDuckGoURL(t *testing.T) {
	assert.Equal(t, "https://go.dev/",
		normalizeDuckDuckGoURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F"))
	assert.Equal(t, "https://duckduckgo.com/l/?x=1",
		normalizeDuckDuckGoURL("/l/?x=1"))
	assert.Equal(t, "https://plain.example/", normalizeDuckDuckGoURL("https://plain.example/"))
	assert.Equal(t, "", normalizeDuckDuckGoURL(""))
}
