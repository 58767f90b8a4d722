package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
)

const youtubeTimedTextEndpoint = "https://video.google.com/timedtext"

// YouTubeTranscriptClient fetches caption tracks from YouTube's public
// timedtext endpoint.
type YouTubeTranscriptClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewYouTubeTranscriptClient creates a transcript client.
func NewYouTubeTranscriptClient() *YouTubeTranscriptClient {
	return &YouTubeTranscriptClient{BaseURL: youtubeTimedTextEndpoint}
}

type timedTextDoc struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// Transcript fetches the caption track for a video. languageCode defaults
// to "en".
func (y *YouTubeTranscriptClient) Transcript(ctx context.Context, videoID, languageCode string, timeoutSec int) string {
	if strings.TrimSpace(videoID) == "" {
		return "ERROR: video_id cannot be empty"
	}
	if languageCode == "" {
		languageCode = "en"
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", languageCode)

	status, body, errText := getJSON(ctx, y.HTTPClient, y.BaseURL, params, nil, timeoutSeconds(timeoutSec))
	if errText != "" {
		if errText == "ERROR: request timed out" {
			return "ERROR: YouTube transcript request timed out"
		}
		return "ERROR: Failed to connect to YouTube"
	}
	if status >= 400 {
		return fmt.Sprintf("ERROR: YouTube returned HTTP %d", status)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Sprintf("SUCCESS: No transcript available for video '%s' in language '%s'.", videoID, languageCode)
	}

	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "ERROR: YouTube returned an unparseable transcript"
	}
	if len(doc.Texts) == 0 {
		return fmt.Sprintf("SUCCESS: No transcript available for video '%s' in language '%s'.", videoID, languageCode)
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return fmt.Sprintf("SUCCESS: Transcript for video '%s' (%s):\n%s", videoID, languageCode, strings.Join(parts, " "))
}
