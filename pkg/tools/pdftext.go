package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/chack-ai/chack-tools/pkg/core"
)

const pdfDownloadUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

// PDFTextTool downloads a PDF URL and extracts its plain text.
type PDFTextTool struct {
	config *core.ToolsConfig

	HTTPClient *http.Client
}

// NewPDFTextTool creates a PDF helper bound to the given config.
func NewPDFTextTool(config *core.ToolsConfig) *PDFTextTool {
	return &PDFTextTool{config: config}
}

// DownloadAsText fetches url and returns the extracted text, capped at
// maxChars (clamped to 500..100000; 0 uses the configured default).
func (p *PDFTextTool) DownloadAsText(ctx context.Context, rawURL string, maxChars, timeoutSec int) string {
	if strings.TrimSpace(rawURL) == "" {
		return "ERROR: url cannot be empty"
	}
	limit := maxChars
	if limit <= 0 {
		limit = p.config.PDFTextMaxChars
	}
	if limit <= 0 {
		limit = 12000
	}
	if limit < 500 {
		limit = 500
	}
	if limit > 100000 {
		limit = 100000
	}
	if timeoutSec <= 0 {
		timeoutSec = 30
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Sprintf("ERROR: invalid PDF URL (%v)", err)
	}
	req.Header.Set("User-Agent", pdfDownloadUA)

	resp, err := client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return "ERROR: PDF download timed out"
		}
		return "ERROR: Failed to connect while downloading PDF"
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Sprintf("ERROR: PDF download returned HTTP %d", resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "pdf") && !strings.HasSuffix(strings.ToLower(rawURL), ".pdf") {
		if contentType == "" {
			contentType = "unknown"
		}
		return fmt.Sprintf("ERROR: URL did not return a PDF content-type. Got: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "ERROR: failed to read PDF body"
	}

	fullText, err := extractPDFText(data)
	if err != nil {
		return fmt.Sprintf("ERROR: Failed to parse PDF (%v)", err)
	}
	if fullText == "" {
		return "ERROR: No extractable text found in PDF"
	}

	return fmt.Sprintf(
		"SUCCESS: Extracted PDF text.\nURL: %s\nCharacters: %d\n\n%s",
		rawURL, len(fullText), TruncateClean(fullText, limit),
	)
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var chunks []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			chunks = append(chunks, text)
		}
	}
	return strings.TrimSpace(strings.Join(chunks, "\n\n")), nil
}

// NewPDFTextFuncTool exposes DownloadAsText as a core.Tool named
// "download_pdf_as_text".
func NewPDFTextFuncTool(config *core.ToolsConfig) *core.FuncTool {
	helper := NewPDFTextTool(config)
	return core.NewFuncTool(
		&core.ToolMetadata{
			Name:        "download_pdf_as_text",
			Description: "Download a PDF URL and extract readable text.",
			InputSchema: map[string]string{
				"url":             "string",
				"max_chars":       "int",
				"timeout_seconds": "int",
			},
			Required: []string{"url"},
		},
		func(ctx context.Context, params map[string]any) (string, error) {
			return helper.DownloadAsText(
				ctx,
				core.StringParam(params, "url", ""),
				core.IntParam(params, "max_chars", 0),
				core.IntParam(params, "timeout_seconds", 30),
			), nil
		},
	)
}
