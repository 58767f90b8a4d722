package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chack-ai/chack-tools/pkg/core"
)

const arxivFeedSample = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Attention Is All You Need</title>
    <summary>We propose a new network architecture.</summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <link href="http://arxiv.org/abs/1706.03762v7" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v7" rel="related" type="application/pdf"/>
  </entry>
</feed>`

func scientificTestClient(t *testing.T, handler http.HandlerFunc) *ScientificClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewScientificClient(core.NewToolsConfig())
	client.ArxivURL = server.URL
	client.EuropePMCURL = server.URL
	client.SemanticScholarURL = server.URL
	client.OpenAlexURL = server.URL
	client.PLOSURL = server.URL
	return client
}

func TestSearchArxivParsesAtomFeed(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "all:transformers", q.Get("search_query"))
		assert.Equal(t, "0", q.Get("start"))
		w.Write([]byte(arxivFeedSample))
	})

	output := client.SearchArxiv(context.Background(), "transformers", 5, 10)

	assert.Contains(t, output, "SUCCESS: arXiv results for 'transformers' (top 1):")
	assert.Contains(t, output, "1. Attention Is All You Need - http://arxiv.org/pdf/1706.03762v7")
	assert.Contains(t, output, "Ashish Vaswani, Noam Shazeer")
	assert.Contains(t, output, "published: 2017-06-12T17:57:34Z")
	assert.Contains(t, output, "pdf: http://arxiv.org/pdf/1706.03762v7")
	assert.Contains(t, output, "We propose a new network architecture.")
}

func TestSearchArxivInvalidXML(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml at all <"))
	})
	output := client.SearchArxiv(context.Background(), "q", 5, 10)
	assert.Equal(t, "ERROR: arXiv returned invalid XML", output)
}

func TestSearchArxivNoResults(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	})
	output := client.SearchArxiv(context.Background(), "nothing", 5, 10)
	assert.Equal(t, "SUCCESS: No arXiv results found for 'nothing'.", output)
}

func TestSearchEuropePMCRendersMeta(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "core", q.Get("resultType"))
		w.Write([]byte(`{"hitCount":42,"resultList":{"result":[
			{"title":"CRISPR screening","authorString":"Doe J, Roe R.","journalTitle":"Nature",
			 "pubYear":"2024","doi":"10.1000/xyz","isOpenAccess":"Y",
			 "fullTextUrlList":{"fullTextUrl":[{"url":"https://pmc.example/full"}]}}
		]}}`))
	})

	output := client.SearchEuropePMC(context.Background(), "crispr", 1, 25, 10)

	assert.Contains(t, output, "SUCCESS: Europe PMC results for 'crispr' (42 hits, top 1):")
	assert.Contains(t, output, "1. CRISPR screening")
	assert.Contains(t, output, "Doe J, Roe R. | Nature | 2024 | doi: 10.1000/xyz | open access")
	assert.Contains(t, output, "full text: https://pmc.example/full")
}

func TestSearchSemanticScholar(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "title,abstract,url,year,authors,openAccessPdf", q.Get("fields"))
		w.Write([]byte(`{"total":7,"data":[
			{"title":"Paper","url":"https://s2.example/p","year":2023,
			 "authors":[{"name":"A"},{"name":"B"},{"name":"C"},{"name":"D"}],
			 "openAccessPdf":{"url":"https://s2.example/p.pdf"},"abstract":"Short abstract."}
		]}`))
	})

	output := client.SearchSemanticScholar(context.Background(), "q", 20, 10)

	assert.Contains(t, output, "SUCCESS: Semantic Scholar results for 'q' (7 total, top 1):")
	assert.Contains(t, output, "1. Paper - https://s2.example/p")
	assert.Contains(t, output, "A, B, C, et al. | 2023 | pdf: https://s2.example/p.pdf")
	assert.Contains(t, output, "Short abstract.")
}

func TestSearchOpenAlexLinkFallbacks(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("search"))
		w.Write([]byte(`{"meta":{"count":2},"results":[
			{"title":"With OA","publication_year":2022,"cited_by_count":5,
			 "open_access":{"oa_url":"https://oa.example"},
			 "authorships":[{"author":{"display_name":"Jane Q"}}]},
			{"title":"Landing only","doi":"https://doi.org/10.1/abc","cited_by_count":0,
			 "primary_location":{"landing_page_url":"https://landing.example"}}
		]}`))
	})

	output := client.SearchOpenAlex(context.Background(), "golang", 1, 10, 10)

	assert.Contains(t, output, "SUCCESS: OpenAlex results for 'golang' (2 total, top 2):")
	assert.Contains(t, output, "1. With OA - https://oa.example")
	assert.Contains(t, output, "Jane Q | 2022 | cited by 5")
	assert.Contains(t, output, "2. Landing only - https://landing.example")
}

func TestSearchPLOSDOILink(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("wt"))
		w.Write([]byte(`{"response":{"numFound":1,"docs":[
			{"id":"10.1371/journal.pone.0000001","title_display":"PLOS paper",
			 "author_display":["One","Two"],"journal":"PLOS ONE",
			 "publication_date":"2021-03-01T00:00:00Z","abstract":["Background text."]}
		]}}`))
	})

	output := client.SearchPLOS(context.Background(), "q", 20, 0, 10)

	assert.Contains(t, output, "1. PLOS paper - https://doi.org/10.1371/journal.pone.0000001")
	assert.Contains(t, output, "One, Two | PLOS ONE | published: 2021-03-01T00:00:00Z")
	assert.Contains(t, output, "Background text.")
}

func TestScientificHTTPError(t *testing.T) {
	client := scientificTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("down for maintenance"))
	})
	output := client.SearchOpenAlex(context.Background(), "q", 1, 10, 10)
	assert.Contains(t, output, "ERROR: OpenAlex returned HTTP 503")
}

func TestYouTubeTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "abc123", q.Get("v"))
		assert.Equal(t, "en", q.Get("lang"))
		w.Write([]byte(`<transcript>
			<text start="0.0">Hello &amp; welcome</text>
			<text start="2.5">to the show</text>
		</transcript>`))
	}))
	defer server.Close()

	client := NewYouTubeTranscriptClient()
	client.BaseURL = server.URL

	output := client.Transcript(context.Background(), "abc123", "", 10)
	assert.Equal(t, "SUCCESS: Transcript for video 'abc123' (en):\nHello & welcome to the show", output)
}

func TestYouTubeTranscriptUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(""))
	}))
	defer server.Close()

	client := NewYouTubeTranscriptClient()
	client.BaseURL = server.URL

	output := client.Transcript(context.Background(), "abc123", "de", 10)
	assert.Equal(t, "SUCCESS: No transcript available for video 'abc123' in language 'de'.", output)
}
