package extract

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/loreline/loreline/internal/models"
)

// Timedtext scrapes a video's watch page for its caption track and
// downloads the timed transcript XML directly. Free, but the first
// strategy to break when the platform tightens its bot checks.
type Timedtext struct {
	watchBase string
	client    *http.Client
}

// NewTimedtext builds the strategy. An empty watchBase falls back to the
// public watch page.
func NewTimedtext(watchBase string, client *http.Client) *Timedtext {
	if watchBase == "" {
		watchBase = "https://www.youtube.com/watch"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Timedtext{watchBase: watchBase, client: client}
}

func (t *Timedtext) Name() string { return "timedtext" }

// Supports limits the strategy to video references.
func (t *Timedtext) Supports(st SourceType) bool { return st == SourceVideo }

var (
	captionTracksPattern = regexp.MustCompile(`"captionTracks":(\[.*?\])`)
	watchTitlePattern    = regexp.MustCompile(`<title[^>]*>(.*?)</title>`)
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedtextXML struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// Extract downloads captions for a video reference.
func (t *Timedtext) Extract(ctx context.Context, ref string) (*Result, error) {
	videoID := VideoID(ref)
	if videoID == "" {
		return nil, ErrNotFound
	}

	page, err := t.fetch(ctx, t.watchBase+"?v="+videoID)
	if err != nil {
		return nil, err
	}

	title := ""
	if m := watchTitlePattern.FindStringSubmatch(page); m != nil {
		title = strings.TrimSuffix(html.UnescapeString(strings.TrimSpace(m[1])), " - YouTube")
	}

	trackJSON := captionTracksPattern.FindStringSubmatch(page)
	if trackJSON == nil {
		// Watch page loaded but carries no caption metadata. Either the
		// video has no captions or the page served is a bot check.
		return &Result{Title: title}, nil
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(trackJSON[1]), &tracks); err != nil {
		return nil, Transient(fmt.Errorf("decode caption tracks: %w", err))
	}
	track := pickTrack(tracks)
	if track == nil {
		return nil, ErrNotFound
	}

	body, err := t.fetch(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	var parsed timedtextXML
	if err := xml.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, Transient(fmt.Errorf("decode timedtext XML: %w", err))
	}

	segments := make([]models.ContentSegment, 0, len(parsed.Texts))
	for _, entry := range parsed.Texts {
		text := strings.TrimSpace(html.UnescapeString(entry.Body))
		if text == "" {
			continue
		}
		segments = append(segments, models.ContentSegment{
			Text:      text,
			StartTime: entry.Start,
			EndTime:   entry.Start + entry.Dur,
		})
	}

	return &Result{Segments: segments, Title: title}, nil
}

func (t *Timedtext) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", Transient(fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if err := classifyHTTPStatus(resp.StatusCode); err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Transient(fmt.Errorf("read response: %w", err))
	}
	return string(body), nil
}

// pickTrack prefers manually written English captions, then any English
// track, then whatever is first.
func pickTrack(tracks []captionTrack) *captionTrack {
	var english *captionTrack
	for i := range tracks {
		track := &tracks[i]
		if !strings.HasPrefix(track.LanguageCode, "en") {
			continue
		}
		if track.Kind != "asr" {
			return track
		}
		if english == nil {
			english = track
		}
	}
	if english != nil {
		return english
	}
	if len(tracks) > 0 {
		return &tracks[0]
	}
	return nil
}
