package extract

import (
	"regexp"
	"strings"

	"github.com/loreline/loreline/internal/models"
)

// SourceType identifies which cascade a source reference belongs to.
type SourceType string

const (
	SourceVideo   SourceType = "video"
	SourcePodcast SourceType = "podcast"
	SourcePDF     SourceType = "pdf"
	SourceArticle SourceType = "article"
)

var (
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	}
	bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	pdfPattern  = regexp.MustCompile(`\.pdf($|\?)`)

	podcastDomains = []string{
		"podcasts.apple.com",
		"open.spotify.com/episode",
		"soundcloud.com",
	}
)

// DetectSourceType guesses the source type from a reference.
func DetectSourceType(ref string) SourceType {
	lower := strings.ToLower(strings.TrimSpace(ref))
	if VideoID(lower) != "" {
		return SourceVideo
	}
	if pdfPattern.MatchString(lower) {
		return SourcePDF
	}
	for _, domain := range podcastDomains {
		if strings.Contains(lower, domain) {
			return SourcePodcast
		}
	}
	return SourceArticle
}

// VideoID pulls the 11-character video ID out of a reference.
// Returns "" when the reference is not a video URL or bare ID.
func VideoID(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(ref); m != nil {
			return m[1]
		}
	}
	if bareVideoID.MatchString(ref) {
		return ref
	}
	return ""
}

const charsPerSegment = 2000

// SegmentsFromText splits untimed text into segments of roughly 2000
// characters, grouped on paragraph boundaries, with one synthetic minute
// per segment so downstream timestamps stay navigable.
func SegmentsFromText(text string) []models.ContentSegment {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var segments []models.ContentSegment
	var current []string
	chars := 0
	idx := 0

	flush := func() {
		segments = append(segments, models.ContentSegment{
			Text:      strings.Join(current, "\n"),
			StartTime: float64(idx * 60),
			EndTime:   float64((idx + 1) * 60),
		})
		current = nil
		chars = 0
		idx++
	}

	for _, para := range paragraphs {
		current = append(current, para)
		chars += len(para)
		if chars >= charsPerSegment {
			flush()
		}
	}
	if len(current) > 0 {
		flush()
	}

	if len(segments) == 0 {
		return []models.ContentSegment{{Text: text}}
	}
	return segments
}
