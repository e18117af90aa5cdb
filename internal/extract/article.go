package extract

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// Article fetches a web page and extracts its readable text. Tag
// stripping only makes sense on HTML, so the strategy handles article
// references and nothing else.
type Article struct {
	client *http.Client
}

// NewArticle builds the strategy.
func NewArticle(client *http.Client) *Article {
	if client == nil {
		client = http.DefaultClient
	}
	return &Article{client: client}
}

func (a *Article) Name() string { return "article" }

func (a *Article) Supports(t SourceType) bool { return t == SourceArticle }

var (
	articleTitlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	paragraphPattern    = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	tagPattern          = regexp.MustCompile(`<[^>]+>`)
	spacePattern        = regexp.MustCompile(`\s+`)

	strippedBlocks = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`),
		regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`),
		regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`),
		regexp.MustCompile(`(?is)<aside[^>]*>.*?</aside>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
	}
)

// Extract downloads the page and converts its main text to segments
// with synthetic timestamps.
func (a *Article) Extract(ctx context.Context, ref string) (*Result, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return nil, ErrNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build article request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, Transient(fmt.Errorf("fetch article: %w", err))
	}
	defer resp.Body.Close()

	if err := classifyHTTPStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(fmt.Errorf("read article: %w", err))
	}

	text, title := extractReadableText(string(body))
	return &Result{Segments: SegmentsFromText(text), Title: title}, nil
}

// extractReadableText pulls paragraph text out of raw HTML, skipping
// boilerplate blocks and fragments too short to be prose.
func extractReadableText(page string) (text, title string) {
	title = "Untitled Article"
	if m := articleTitlePattern.FindStringSubmatch(page); m != nil {
		if t := strings.TrimSpace(tagPattern.ReplaceAllString(m[1], "")); t != "" {
			title = html.UnescapeString(t)
		}
	}

	for _, block := range strippedBlocks {
		page = block.ReplaceAllString(page, "")
	}

	var paragraphs []string
	for _, m := range paragraphPattern.FindAllStringSubmatch(page, -1) {
		p := strings.TrimSpace(tagPattern.ReplaceAllString(m[1], ""))
		if len(p) > 20 {
			paragraphs = append(paragraphs, html.UnescapeString(p))
		}
	}

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n"), title
	}

	// Last resort, take everything and flatten the whitespace.
	stripped := tagPattern.ReplaceAllString(page, " ")
	stripped = spacePattern.ReplaceAllString(stripped, " ")
	return html.UnescapeString(strings.TrimSpace(stripped)), title
}
