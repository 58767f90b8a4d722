package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chack-ai/chack-tools/pkg/core"
)

func serpAPITestClient(t *testing.T, keys string, handler http.HandlerFunc) *SerpAPIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := core.NewToolsConfig().WithSerpAPI(keys)
	client := NewSerpAPIClient(config)
	client.BaseURL = server.URL
	return client
}

func TestSearchGoogleWebRendersResults(t *testing.T) {
	var gotEngine, gotNum, gotStart string
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotEngine = q.Get("engine")
		gotNum = q.Get("num")
		gotStart = q.Get("start")
		assert.Equal(t, "key1", q.Get("api_key"))
		w.Write([]byte(`{"organic_results":[
			{"title":"Result A","link":"https://a.example","snippet":"alpha","position":1},
			{"title":"Result B","link":"https://b.example","snippet":"beta","source":"Example","date":"Jan 1, 2025"}
		]}`))
	})

	output := client.SearchGoogleWeb(context.Background(), "golang testing", 2, 5, 10)

	assert.Equal(t, "google", gotEngine)
	assert.Equal(t, "5", gotNum)
	assert.Equal(t, "5", gotStart)
	assert.Contains(t, output, "SUCCESS: SerpAPI google results for 'golang testing' (top 2):")
	assert.Contains(t, output, "1. Result A - https://a.example")
	assert.Contains(t, output, "pos: 1")
	assert.Contains(t, output, "Example | date: Jan 1, 2025")
	assert.Contains(t, output, "   beta")
}

func TestSearchGoogleWebEmptyQuery(t *testing.T) {
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "ERROR: Query cannot be empty", client.SearchGoogleWeb(context.Background(), "  ", 1, 0, 10))
}

func TestSearchGoogleWebNoKeys(t *testing.T) {
	client := NewSerpAPIClient(core.NewToolsConfig())
	output := client.SearchGoogleWeb(context.Background(), "q", 1, 0, 10)
	assert.Equal(t, "ERROR: SerpAPI key not configured.", output)
}

func TestSearchGoogleWebNoResults(t *testing.T) {
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results":[]}`))
	})
	output := client.SearchGoogleWeb(context.Background(), "nothing", 1, 0, 10)
	assert.Equal(t, "SUCCESS: No SerpAPI results found for 'nothing'.", output)
}

func TestSerpAPIKeyFailover(t *testing.T) {
	var mu sync.Mutex
	seenKeys := map[string]bool{}
	client := serpAPITestClient(t, "key1,key2", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("api_key")
		mu.Lock()
		first := len(seenKeys) == 0
		seenKeys[key] = true
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("rate limit"))
			return
		}
		w.Write([]byte(`{"organic_results":[{"title":"OK","link":"https://ok.example"}]}`))
	})

	output := client.SearchGoogleWeb(context.Background(), "q", 1, 0, 10)

	require.Contains(t, output, "SUCCESS:")
	assert.Len(t, seenKeys, 2)
}

func TestSerpAPIAllKeysRateLimited(t *testing.T) {
	client := serpAPITestClient(t, "key1,key2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limit"))
	})

	output := client.SearchGoogleWeb(context.Background(), "q", 1, 0, 10)
	assert.Contains(t, output, "ERROR:")
	assert.Contains(t, output, "429")
}

func TestSerpAPIPayloadErrorNotRateLimited(t *testing.T) {
	calls := 0
	client := serpAPITestClient(t, "key1,key2", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"error":"Invalid API key"}`))
	})

	output := client.SearchGoogleWeb(context.Background(), "q", 1, 0, 10)

	// A non-quota error must not burn through the remaining keys.
	assert.Equal(t, 1, calls)
	assert.Equal(t, "ERROR: SerpAPI error (Invalid API key)", output)
}

func TestSearchBingWebPaging(t *testing.T) {
	var gotEngine, gotCount, gotFirst string
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotEngine = q.Get("engine")
		gotCount = q.Get("count")
		gotFirst = q.Get("first")
		w.Write([]byte(`{"organic_results":[]}`))
	})

	client.SearchBingWeb(context.Background(), "q", 3, 10, 10)

	assert.Equal(t, "bing", gotEngine)
	assert.Equal(t, "10", gotCount)
	assert.Equal(t, "21", gotFirst)
}

func TestSearchGoogleScholarIncludePatents(t *testing.T) {
	var gotSdt, gotEngine string
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {
		gotEngine = r.URL.Query().Get("engine")
		gotSdt = r.URL.Query().Get("as_sdt")
		w.Write([]byte(`{"organic_results":[]}`))
	})

	client.SearchGoogleScholar(context.Background(), "q", 10, true, 10)
	assert.Equal(t, "google_scholar", gotEngine)
	assert.Equal(t, "2007", gotSdt)

	client.SearchGoogleScholar(context.Background(), "q", 10, false, 10)
	assert.Equal(t, "", gotSdt)
}

func TestSearchGoogleForumsUsesDiscussionsVertical(t *testing.T) {
	var gotUDM string
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {
		gotUDM = r.URL.Query().Get("udm")
		w.Write([]byte(`{"organic_results":[]}`))
	})

	client.SearchGoogleForums(context.Background(), "q", 1, 10)
	assert.Equal(t, "18", gotUDM)
}

func TestSearchGoogleNewsUsesNewsResults(t *testing.T) {
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_news", r.URL.Query().Get("engine"))
		w.Write([]byte(`{"news_results":[{"title":"Headline","link":"https://news.example","source":{"name":"The Paper"}}]}`))
	})

	output := client.SearchGoogleNews(context.Background(), "q", 1, 10)
	assert.Contains(t, output, "1. Headline - https://news.example")
	assert.Contains(t, output, "The Paper")
}

func TestSearchYouTube(t *testing.T) {
	client := serpAPITestClient(t, "key1", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "youtube", q.Get("engine"))
		assert.Equal(t, "cats", q.Get("search_query"))
		w.Write([]byte(`{"video_results":[
			{"title":"Cat video","link":"https://yt.example/1","channel":{"name":"Cats Inc"},"length":"3:12","published_date":"1 year ago"}
		]}`))
	})

	output := client.SearchYouTube(context.Background(), "cats", 5, "", "", 10)
	assert.Contains(t, output, "SUCCESS: YouTube results for 'cats' (top 1):")
	assert.Contains(t, output, "1. Cat video - https://yt.example/1")
	assert.Contains(t, output, "Cats Inc | length: 3:12 | published: 1 year ago")
}
