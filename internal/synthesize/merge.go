package synthesize

import (
	"strings"

	"github.com/loreline/loreline/internal/models"
)

// Per-field limits applied when merging window documents. Later windows
// still contribute until the limit fills because duplicates from earlier
// windows are dropped first.
const (
	maxTOCEntries = 15
	maxConcepts   = 15
	maxInsights   = 25
	maxNotes      = 12
	maxQuotes     = 12
	maxResources  = 15
	maxActions    = 10
	maxQuestions  = 8

	maxOverviewLen = 300
)

// Merge folds the per-window documents into one, preserving window order.
// The caller's title wins over whatever the windows produced.
func Merge(parts []*models.StructuredDocument, title string) *models.StructuredDocument {
	if len(parts) == 0 {
		return &models.StructuredDocument{
			Title:       orElse(title, "Notes"),
			ContentType: models.ContentTypeGeneral,
			Overview:    "No content available",
		}
	}
	if len(parts) == 1 {
		doc := *parts[0]
		if title != "" {
			doc.Title = title
		}
		return &doc
	}

	merged := &models.StructuredDocument{
		Title:       orElse(title, parts[0].Title),
		ContentType: dominantContentType(parts),
		Overview:    combineOverviews(parts),
	}

	tocSeen := newDedup()
	conceptSeen := newDedup()
	insightSeen := newDedup()
	noteSeen := newDedup()
	quoteSeen := newDedup()
	resourceSeen := newDedup()
	actionSeen := newDedup()
	questionSeen := newDedup()

	for _, part := range parts {
		for _, entry := range part.TableOfContents {
			if len(merged.TableOfContents) < maxTOCEntries && tocSeen.add(entry.Section) {
				merged.TableOfContents = append(merged.TableOfContents, entry)
			}
		}
		for _, concept := range part.MainConcepts {
			if len(merged.MainConcepts) < maxConcepts && conceptSeen.add(concept.Concept) {
				merged.MainConcepts = append(merged.MainConcepts, concept)
			}
		}
		for _, insight := range part.KeyInsights {
			if len(merged.KeyInsights) < maxInsights && insightSeen.add(insight.Insight) {
				merged.KeyInsights = append(merged.KeyInsights, insight)
			}
		}
		for _, note := range part.DetailedNotes {
			if len(merged.DetailedNotes) < maxNotes && noteSeen.add(note.Section) {
				merged.DetailedNotes = append(merged.DetailedNotes, note)
			}
		}
		for _, quote := range part.NotableQuotes {
			if len(merged.NotableQuotes) < maxQuotes && quoteSeen.add(quote.Quote) {
				merged.NotableQuotes = append(merged.NotableQuotes, quote)
			}
		}
		for _, resource := range part.ResourcesMentioned {
			if len(merged.ResourcesMentioned) < maxResources && resourceSeen.add(resource) {
				merged.ResourcesMentioned = append(merged.ResourcesMentioned, resource)
			}
		}
		for _, action := range part.ActionItems {
			if len(merged.ActionItems) < maxActions && actionSeen.add(action) {
				merged.ActionItems = append(merged.ActionItems, action)
			}
		}
		for _, question := range part.QuestionsRaised {
			if len(merged.QuestionsRaised) < maxQuestions && questionSeen.add(question) {
				merged.QuestionsRaised = append(merged.QuestionsRaised, question)
			}
		}
	}

	return merged
}

// dominantContentType is the most frequent content type among the parts.
// Ties go to the type that appeared first.
func dominantContentType(parts []*models.StructuredDocument) models.ContentType {
	counts := make(map[models.ContentType]int)
	var order []models.ContentType
	for _, part := range parts {
		if counts[part.ContentType] == 0 {
			order = append(order, part.ContentType)
		}
		counts[part.ContentType]++
	}

	best := order[0]
	for _, ct := range order[1:] {
		if counts[ct] > counts[best] {
			best = ct
		}
	}
	return best
}

// combineOverviews joins the first three non-empty window overviews and
// caps the result.
func combineOverviews(parts []*models.StructuredDocument) string {
	var overviews []string
	for _, part := range parts {
		if part.Overview != "" {
			overviews = append(overviews, part.Overview)
		}
		if len(overviews) == 3 {
			break
		}
	}
	combined := strings.Join(overviews, " ")
	if len(combined) > maxOverviewLen {
		combined = truncate(combined, maxOverviewLen-3) + "..."
	}
	return combined
}

type dedup map[string]struct{}

func newDedup() dedup { return make(dedup) }

// add returns true the first time a normalized key is seen.
func (d dedup) add(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if _, ok := d[normalized]; ok {
		return false
	}
	d[normalized] = struct{}{}
	return true
}

func orElse(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
