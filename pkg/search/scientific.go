package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/chack-ai/chack-tools/pkg/core"
)

// Default endpoints for the scientific reference APIs. All are public and
// keyless.
const (
	arxivEndpoint           = "http://export.arxiv.org/api/query"
	europePMCEndpoint       = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"
	semanticScholarEndpoint = "https://api.semanticscholar.org/graph/v1/paper/search"
	openAlexEndpoint        = "https://api.openalex.org/works"
	plosEndpoint            = "https://api.plos.org/search"
)

// ScientificClient queries scientific reference APIs: arXiv, Europe PMC,
// Semantic Scholar, OpenAlex and PLOS.
type ScientificClient struct {
	config *core.ToolsConfig

	ArxivURL           string
	EuropePMCURL       string
	SemanticScholarURL string
	OpenAlexURL        string
	PLOSURL            string
	HTTPClient         *http.Client
}

// NewScientificClient creates a client bound to the given config.
func NewScientificClient(config *core.ToolsConfig) *ScientificClient {
	return &ScientificClient{
		config:             config,
		ArxivURL:           arxivEndpoint,
		EuropePMCURL:       europePMCEndpoint,
		SemanticScholarURL: semanticScholarEndpoint,
		OpenAlexURL:        openAlexEndpoint,
		PLOSURL:            plosEndpoint,
	}
}

func (s *ScientificClient) maxResults(requested int) int {
	fallback := s.config.ScientificMaxResults
	if fallback <= 0 {
		fallback = 10
	}
	if requested <= 0 {
		return clamp(fallback, 1, 25)
	}
	return clamp(requested, 1, 25)
}

func (s *ScientificClient) fetch(ctx context.Context, service, endpoint string, params url.Values, timeoutSec int) ([]byte, string) {
	status, body, errText := getJSON(ctx, s.HTTPClient, endpoint, params, map[string]string{"Accept": "application/json"}, timeoutSeconds(timeoutSec))
	if errText != "" {
		if errText == "ERROR: request timed out" {
			return nil, fmt.Sprintf("ERROR: %s request timed out", service)
		}
		return nil, fmt.Sprintf("ERROR: Failed to connect to %s", service)
	}
	if status >= 400 {
		return nil, statusBodyError(service, status, string(body))
	}
	return body, ""
}

// --- arXiv (Atom feed) ---

type arxivFeed struct {
	Entries []struct {
		Title     string `xml:"title"`
		Summary   string `xml:"summary"`
		Published string `xml:"published"`
		Authors   []struct {
			Name string `xml:"name"`
		} `xml:"author"`
		Links []struct {
			Href  string `xml:"href,attr"`
			Title string `xml:"title,attr"`
			Type  string `xml:"type,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

// SearchArxiv queries the arXiv Atom API.
func (s *ScientificClient) SearchArxiv(ctx context.Context, query string, maxResults, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	shown := s.maxResults(maxResults)
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(shown))

	body, errText := s.fetch(ctx, "arXiv", s.ArxivURL, params, timeoutSec)
	if errText != "" {
		return errText
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "ERROR: arXiv returned invalid XML"
	}
	if len(feed.Entries) == 0 {
		return fmt.Sprintf("SUCCESS: No arXiv results found for '%s'.", query)
	}

	lines := []string{fmt.Sprintf("SUCCESS: arXiv results for '%s' (top %d):", query, len(feed.Entries))}
	for idx, entry := range feed.Entries {
		title := normalizeSnippet(entry.Title, 200)
		pdfURL, absURL := "", ""
		for _, link := range entry.Links {
			switch {
			case link.Title == "pdf" || link.Type == "application/pdf":
				pdfURL = link.Href
			case absURL == "":
				absURL = link.Href
			}
		}
		link := pdfURL
		if link == "" {
			link = absURL
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, title, link))

		var authors []string
		for _, a := range entry.Authors {
			authors = append(authors, a.Name)
		}
		var meta []string
		if len(authors) > 0 {
			if len(authors) > 3 {
				authors = append(authors[:3], "et al.")
			}
			meta = append(meta, strings.Join(authors, ", "))
		}
		if entry.Published != "" {
			meta = append(meta, "published: "+entry.Published)
		}
		if pdfURL != "" {
			meta = append(meta, "pdf: "+pdfURL)
		}
		if len(meta) > 0 {
			lines = append(lines, "   "+strings.Join(meta, " | "))
		}
		if summary := normalizeSnippet(entry.Summary, 240); summary != "" {
			lines = append(lines, "   "+summary)
		}
	}
	return strings.Join(lines, "\n")
}

// --- Europe PMC ---

type europePMCResponse struct {
	HitCount   int `json:"hitCount"`
	ResultList struct {
		Result []struct {
			Title           string `json:"title"`
			AuthorString    string `json:"authorString"`
			JournalTitle    string `json:"journalTitle"`
			PubYear         string `json:"pubYear"`
			DOI             string `json:"doi"`
			PMID            string `json:"pmid"`
			IsOpenAccess    string `json:"isOpenAccess"`
			FullTextURLList struct {
				FullTextURL []struct {
					URL          string `json:"url"`
					DocumentType string `json:"documentStyle"`
				} `json:"fullTextUrl"`
			} `json:"fullTextUrlList"`
		} `json:"result"`
	} `json:"resultList"`
}

// SearchEuropePMC queries the Europe PMC REST API.
func (s *ScientificClient) SearchEuropePMC(ctx context.Context, query string, page, pageSize, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 25
	}
	pageSize = clamp(pageSize, 1, 100)

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("cursorMark", "*")
	params.Set("resultType", "core")

	body, errText := s.fetch(ctx, "Europe PMC", s.EuropePMCURL, params, timeoutSec)
	if errText != "" {
		return errText
	}

	var payload europePMCResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "ERROR: Europe PMC returned invalid JSON"
	}
	results := payload.ResultList.Result
	if len(results) == 0 {
		return fmt.Sprintf("SUCCESS: No Europe PMC results found for '%s'.", query)
	}
	shown := s.maxResults(0)
	if len(results) > shown {
		results = results[:shown]
	}

	lines := []string{fmt.Sprintf("SUCCESS: Europe PMC results for '%s' (%d hits, top %d):", query, payload.HitCount, len(results))}
	for idx, item := range results {
		lines = append(lines, fmt.Sprintf("%d. %s", idx+1, normalizeSnippet(item.Title, 200)))
		var meta []string
		if item.AuthorString != "" {
			meta = append(meta, normalizeSnippet(item.AuthorString, 120))
		}
		if item.JournalTitle != "" {
			meta = append(meta, item.JournalTitle)
		}
		if item.PubYear != "" {
			meta = append(meta, item.PubYear)
		}
		if item.DOI != "" {
			meta = append(meta, "doi: "+item.DOI)
		}
		if item.IsOpenAccess == "Y" {
			meta = append(meta, "open access")
		}
		if len(meta) > 0 {
			lines = append(lines, "   "+strings.Join(meta, " | "))
		}
		for _, ft := range item.FullTextURLList.FullTextURL {
			if ft.URL != "" {
				lines = append(lines, "   full text: "+ft.URL)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// --- Semantic Scholar ---

type semanticScholarResponse struct {
	Total int `json:"total"`
	Data  []struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		URL      string `json:"url"`
		Year     int    `json:"year"`
		Authors  []struct {
			Name string `json:"name"`
		} `json:"authors"`
		OpenAccessPdf struct {
			URL string `json:"url"`
		} `json:"openAccessPdf"`
	} `json:"data"`
}

// SearchSemanticScholar queries the Semantic Scholar Graph API.
func (s *ScientificClient) SearchSemanticScholar(ctx context.Context, query string, limit, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if limit <= 0 {
		limit = 20
	}
	limit = clamp(limit, 1, 100)

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "title,abstract,url,year,authors,openAccessPdf")

	body, errText := s.fetch(ctx, "Semantic Scholar", s.SemanticScholarURL, params, timeoutSec)
	if errText != "" {
		return errText
	}

	var payload semanticScholarResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "ERROR: Semantic Scholar returned invalid JSON"
	}
	if len(payload.Data) == 0 {
		return fmt.Sprintf("SUCCESS: No Semantic Scholar results found for '%s'.", query)
	}
	shown := s.maxResults(0)
	results := payload.Data
	if len(results) > shown {
		results = results[:shown]
	}

	lines := []string{fmt.Sprintf("SUCCESS: Semantic Scholar results for '%s' (%d total, top %d):", query, payload.Total, len(results))}
	for idx, item := range results {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, normalizeSnippet(item.Title, 200), item.URL))
		var meta []string
		var authors []string
		for _, a := range item.Authors {
			authors = append(authors, a.Name)
		}
		if len(authors) > 3 {
			authors = append(authors[:3], "et al.")
		}
		if len(authors) > 0 {
			meta = append(meta, strings.Join(authors, ", "))
		}
		if item.Year > 0 {
			meta = append(meta, strconv.Itoa(item.Year))
		}
		if item.OpenAccessPdf.URL != "" {
			meta = append(meta, "pdf: "+item.OpenAccessPdf.URL)
		}
		if len(meta) > 0 {
			lines = append(lines, "   "+strings.Join(meta, " | "))
		}
		if abstract := normalizeSnippet(item.Abstract, 240); abstract != "" {
			lines = append(lines, "   "+abstract)
		}
	}
	return strings.Join(lines, "\n")
}

// --- OpenAlex ---

type openAlexResponse struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Results []struct {
		Title           string `json:"title"`
		DOI             string `json:"doi"`
		PublicationYear int    `json:"publication_year"`
		CitedByCount    int    `json:"cited_by_count"`
		OpenAccess      struct {
			OAURL string `json:"oa_url"`
		} `json:"open_access"`
		PrimaryLocation struct {
			LandingPageURL string `json:"landing_page_url"`
			PDFURL         string `json:"pdf_url"`
		} `json:"primary_location"`
		Authorships []struct {
			Author struct {
				DisplayName string `json:"display_name"`
			} `json:"author"`
		} `json:"authorships"`
	} `json:"results"`
}

// SearchOpenAlex queries the OpenAlex works API.
func (s *ScientificClient) SearchOpenAlex(ctx context.Context, query string, page, perPage, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	perPage = clamp(perPage, 1, 50)

	params := url.Values{}
	params.Set("search", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per-page", strconv.Itoa(perPage))

	body, errText := s.fetch(ctx, "OpenAlex", s.OpenAlexURL, params, timeoutSec)
	if errText != "" {
		return errText
	}

	var payload openAlexResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "ERROR: OpenAlex returned invalid JSON"
	}
	if len(payload.Results) == 0 {
		return fmt.Sprintf("SUCCESS: No OpenAlex results found for '%s'.", query)
	}

	lines := []string{fmt.Sprintf("SUCCESS: OpenAlex results for '%s' (%d total, top %d):", query, payload.Meta.Count, len(payload.Results))}
	for idx, item := range payload.Results {
		link := item.OpenAccess.OAURL
		if link == "" {
			link = item.PrimaryLocation.PDFURL
		}
		if link == "" {
			link = item.PrimaryLocation.LandingPageURL
		}
		if link == "" {
			link = item.DOI
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, normalizeSnippet(item.Title, 200), link))

		var meta []string
		var authors []string
		for _, a := range item.Authorships {
			authors = append(authors, a.Author.DisplayName)
		}
		if len(authors) > 3 {
			authors = append(authors[:3], "et al.")
		}
		if len(authors) > 0 {
			meta = append(meta, strings.Join(authors, ", "))
		}
		if item.PublicationYear > 0 {
			meta = append(meta, strconv.Itoa(item.PublicationYear))
		}
		meta = append(meta, fmt.Sprintf("cited by %d", item.CitedByCount))
		lines = append(lines, "   "+strings.Join(meta, " | "))
	}
	return strings.Join(lines, "\n")
}

// --- PLOS ---

type plosResponse struct {
	Response struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			ID               string   `json:"id"`
			TitleDisplay     string   `json:"title_display"`
			AuthorDisplay    []string `json:"author_display"`
			JournalName      string   `json:"journal"`
			PublicationDate  string   `json:"publication_date"`
			AbstractSections []string `json:"abstract"`
		} `json:"docs"`
	} `json:"response"`
}

// SearchPLOS queries the PLOS Solr search API.
func (s *ScientificClient) SearchPLOS(ctx context.Context, query string, rows, start, timeoutSec int) string {
	if strings.TrimSpace(query) == "" {
		return "ERROR: Query cannot be empty"
	}
	if rows <= 0 {
		rows = 20
	}
	rows = clamp(rows, 1, 100)
	if start < 0 {
		start = 0
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("rows", strconv.Itoa(rows))
	params.Set("start", strconv.Itoa(start))
	params.Set("wt", "json")

	body, errText := s.fetch(ctx, "PLOS", s.PLOSURL, params, timeoutSec)
	if errText != "" {
		return errText
	}

	var payload plosResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "ERROR: PLOS returned invalid JSON"
	}
	docs := payload.Response.Docs
	if len(docs) == 0 {
		return fmt.Sprintf("SUCCESS: No PLOS results found for '%s'.", query)
	}
	shown := s.maxResults(0)
	if len(docs) > shown {
		docs = docs[:shown]
	}

	lines := []string{fmt.Sprintf("SUCCESS: PLOS results for '%s' (%d total, top %d):", query, payload.Response.NumFound, len(docs))}
	for idx, doc := range docs {
		link := doc.ID
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://doi.org/" + link
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", idx+1, normalizeSnippet(doc.TitleDisplay, 200), link))

		var meta []string
		authors := doc.AuthorDisplay
		if len(authors) > 3 {
			authors = append(authors[:3], "et al.")
		}
		if len(authors) > 0 {
			meta = append(meta, strings.Join(authors, ", "))
		}
		if doc.JournalName != "" {
			meta = append(meta, doc.JournalName)
		}
		if doc.PublicationDate != "" {
			meta = append(meta, "published: "+doc.PublicationDate)
		}
		if len(meta) > 0 {
			lines = append(lines, "   "+strings.Join(meta, " | "))
		}
		if len(doc.AbstractSections) > 0 {
			if abstract := normalizeSnippet(doc.AbstractSections[0], 240); abstract != "" {
				lines = append(lines, "   "+abstract)
			}
		}
	}
	return strings.Join(lines, "\n")
}
