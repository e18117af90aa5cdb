package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/loreline/loreline/internal/models"
)

// CaptionAPI fetches video transcripts through a hosted caption service.
// The service sits behind an API key and is the most reliable strategy
// against sources that block direct scraping.
type CaptionAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewCaptionAPI builds the strategy. An empty baseURL falls back to the
// default hosted endpoint.
func NewCaptionAPI(baseURL, apiKey string, client *http.Client) *CaptionAPI {
	if baseURL == "" {
		baseURL = "https://api.supadata.ai/v1/youtube/transcript"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &CaptionAPI{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (c *CaptionAPI) Name() string { return "caption_api" }

// Supports limits the strategy to video references.
func (c *CaptionAPI) Supports(t SourceType) bool { return t == SourceVideo }

type captionAPIChunk struct {
	Text     string  `json:"text"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
}

type captionAPIResponse struct {
	Title   string            `json:"title"`
	Content []captionAPIChunk `json:"content"`
}

// Extract fetches the transcript for a video reference.
func (c *CaptionAPI) Extract(ctx context.Context, ref string) (*Result, error) {
	if c.apiKey == "" {
		return nil, Permanent(fmt.Errorf("caption API key not configured"))
	}
	videoID := VideoID(ref)
	if videoID == "" {
		return nil, ErrNotFound
	}

	endpoint := fmt.Sprintf("%s?url=%s", c.baseURL,
		url.QueryEscape("https://www.youtube.com/watch?v="+videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build caption API request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, Transient(fmt.Errorf("caption API request: %w", err))
	}
	defer resp.Body.Close()

	if err := classifyHTTPStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(fmt.Errorf("read caption API response: %w", err))
	}

	var parsed captionAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, Transient(fmt.Errorf("decode caption API response: %w", err))
	}

	segments := make([]models.ContentSegment, 0, len(parsed.Content))
	for _, chunk := range parsed.Content {
		if chunk.Text == "" {
			continue
		}
		start := chunk.Offset / 1000.0
		segments = append(segments, models.ContentSegment{
			Text:      chunk.Text,
			StartTime: start,
			EndTime:   start + chunk.Duration/1000.0,
		})
	}

	return &Result{Segments: segments, Title: parsed.Title}, nil
}

// classifyHTTPStatus maps an upstream status code to a classified error,
// or nil for 2xx.
func classifyHTTPStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Permanent(fmt.Errorf("upstream refused request (HTTP %d)", status))
	case status == http.StatusTooManyRequests || status >= 500:
		return Transient(fmt.Errorf("upstream unavailable (HTTP %d)", status))
	default:
		return Permanent(fmt.Errorf("unexpected upstream status (HTTP %d)", status))
	}
}
