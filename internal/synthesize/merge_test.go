package synthesize

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreline/loreline/internal/models"
)

func TestMergeSinglePartRestoresTitle(t *testing.T) {
	part := &models.StructuredDocument{
		Title:       "Original Talk (Part 1/1)",
		ContentType: models.ContentTypeLecture,
		Overview:    "An overview.",
	}
	merged := Merge([]*models.StructuredDocument{part}, "Original Talk")
	assert.Equal(t, "Original Talk", merged.Title)
	assert.Equal(t, models.ContentTypeLecture, merged.ContentType)
}

func TestMergeDominantContentType(t *testing.T) {
	parts := []*models.StructuredDocument{
		{ContentType: models.ContentTypeLecture},
		{ContentType: models.ContentTypeInterview},
		{ContentType: models.ContentTypeInterview},
	}
	assert.Equal(t, models.ContentTypeInterview, Merge(parts, "t").ContentType)
}

func TestMergeContentTypeTieGoesToFirst(t *testing.T) {
	parts := []*models.StructuredDocument{
		{ContentType: models.ContentTypeTutorial},
		{ContentType: models.ContentTypeLecture},
	}
	assert.Equal(t, models.ContentTypeTutorial, Merge(parts, "t").ContentType)
}

func TestMergeOverviewCapped(t *testing.T) {
	long := strings.Repeat("x", 200)
	parts := []*models.StructuredDocument{
		{Overview: long},
		{Overview: long},
		{Overview: long},
		{Overview: "never included, only first three count"},
	}
	merged := Merge(parts, "t")
	assert.Len(t, merged.Overview, 300)
	assert.True(t, strings.HasSuffix(merged.Overview, "..."))
	assert.NotContains(t, merged.Overview, "never included")
}

func TestMergeOverviewCapRespectsRuneBoundaries(t *testing.T) {
	// Two-byte runes put a rune boundary off the byte cut point.
	long := strings.Repeat("é", 160)
	parts := []*models.StructuredDocument{
		{Overview: long},
		{Overview: long},
	}
	merged := Merge(parts, "t")
	assert.True(t, utf8.ValidString(merged.Overview))
	assert.True(t, strings.HasSuffix(merged.Overview, "..."))
	assert.LessOrEqual(t, len(merged.Overview), 300)
}

func TestMergeDeduplicatesNormalized(t *testing.T) {
	parts := []*models.StructuredDocument{
		{
			KeyInsights:  []models.Insight{{Insight: "Sleep matters", Timestamp: "1:00"}},
			ActionItems:  []string{"Read the paper"},
			MainConcepts: []models.Concept{{Concept: "Spaced Repetition"}},
		},
		{
			KeyInsights:  []models.Insight{{Insight: "  sleep matters ", Timestamp: "31:00"}, {Insight: "Diet matters"}},
			ActionItems:  []string{"read the paper", "Try it out"},
			MainConcepts: []models.Concept{{Concept: "spaced repetition"}},
		},
	}
	merged := Merge(parts, "t")

	require.Len(t, merged.KeyInsights, 2)
	assert.Equal(t, "1:00", merged.KeyInsights[0].Timestamp, "first occurrence wins")
	assert.Equal(t, []string{"Read the paper", "Try it out"}, merged.ActionItems)
	assert.Len(t, merged.MainConcepts, 1)
}

func TestMergeAppliesFieldLimits(t *testing.T) {
	var parts []*models.StructuredDocument
	for p := 0; p < 4; p++ {
		doc := &models.StructuredDocument{}
		for i := 0; i < 10; i++ {
			doc.KeyInsights = append(doc.KeyInsights, models.Insight{Insight: fmt.Sprintf("insight %d-%d", p, i)})
			doc.QuestionsRaised = append(doc.QuestionsRaised, fmt.Sprintf("question %d-%d", p, i))
			doc.DetailedNotes = append(doc.DetailedNotes, models.NoteSection{Section: fmt.Sprintf("section %d-%d", p, i)})
		}
		parts = append(parts, doc)
	}
	merged := Merge(parts, "t")

	assert.Len(t, merged.KeyInsights, maxInsights)
	assert.Len(t, merged.QuestionsRaised, maxQuestions)
	assert.Len(t, merged.DetailedNotes, maxNotes)
	// Order is preserved across windows.
	assert.Equal(t, "insight 0-0", merged.KeyInsights[0].Insight)
	assert.Equal(t, "insight 2-4", merged.KeyInsights[maxInsights-1].Insight)
}

func TestMergeIdempotentOnDuplicateWindows(t *testing.T) {
	window := &models.StructuredDocument{
		ContentType: models.ContentTypeLecture,
		Overview:    "Same overview.",
		KeyInsights: []models.Insight{{Insight: "One"}, {Insight: "Two"}},
	}
	merged := Merge([]*models.StructuredDocument{window, window, window}, "t")
	assert.Len(t, merged.KeyInsights, 2)
}

func TestMergeNoParts(t *testing.T) {
	merged := Merge(nil, "Fallback Title")
	assert.Equal(t, "Fallback Title", merged.Title)
	assert.Equal(t, models.ContentTypeGeneral, merged.ContentType)
	assert.Equal(t, "No content available", merged.Overview)
}
