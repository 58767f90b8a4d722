package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chack-ai/chack-tools/pkg/core"
)

func pdfTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestPDFDownloadEmptyURL(t *testing.T) {
	tool := NewPDFTextTool(core.NewToolsConfig())
	assert.Equal(t, "ERROR: url cannot be empty", tool.DownloadAsText(context.Background(), " ", 0, 0))
}

func TestPDFDownloadHTTPError(t *testing.T) {
	server := pdfTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tool := NewPDFTextTool(core.NewToolsConfig())
	out := tool.DownloadAsText(context.Background(), server.URL+"/missing.pdf", 0, 5)
	assert.Equal(t, "ERROR: PDF download returned HTTP 404", out)
}

func TestPDFDownloadRejectsNonPDFContentType(t *testing.T) {
	server := pdfTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a pdf</html>"))
	})

	tool := NewPDFTextTool(core.NewToolsConfig())
	out := tool.DownloadAsText(context.Background(), server.URL+"/page", 0, 5)
	assert.Equal(t, "ERROR: URL did not return a PDF content-type. Got: text/html", out)
}

func TestPDFDownloadUnparseableBody(t *testing.T) {
	server := pdfTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("definitely not pdf bytes"))
	})

	tool := NewPDFTextTool(core.NewToolsConfig())
	out := tool.DownloadAsText(context.Background(), server.URL+"/broken.pdf", 0, 5)
	assert.Contains(t, out, "ERROR: Failed to parse PDF")
}

func TestPDFDownloadSendsBrowserUA(t *testing.T) {
	var gotUA string
	server := pdfTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNotFound)
	})

	tool := NewPDFTextTool(core.NewToolsConfig())
	tool.DownloadAsText(context.Background(), server.URL+"/x.pdf", 0, 5)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestPDFFuncToolMetadata(t *testing.T) {
	tool := NewPDFTextFuncTool(core.NewToolsConfig())
	assert.Equal(t, "download_pdf_as_text", tool.Metadata().Name)
	assert.Equal(t, []string{"url"}, tool.Metadata().Required)
}
