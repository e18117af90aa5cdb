package synthesize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/loreline/loreline/internal/models"
)

// truncate cuts s to at most max bytes, backing up so a multi-byte rune
// is never split at the cut point.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Content-type detection keyword tables. Checked against the beginning of
// the content and the title, first match wins.
var contentTypeKeywords = []struct {
	contentType models.ContentType
	patterns    []string
}{
	{models.ContentTypeTutorial, []string{
		"step by step", "how to", "tutorial", "let me show you",
		"follow along", "in this video i'll show", "let's build",
		"coding tutorial", "walkthrough",
	}},
	{models.ContentTypeInterview, []string{
		"podcast", "interview", "my guest today", "welcome to the show",
		"thanks for having me", "let's talk about", "conversation with",
		"episode", "q&a",
	}},
	{models.ContentTypeLecture, []string{
		"lecture", "class", "lesson", "today we'll learn", "professor",
		"let's examine", "the concept of", "as we discussed",
		"university", "course", "curriculum",
	}},
	{models.ContentTypeDocumentary, []string{
		"documentary", "the story of", "history of", "investigation",
		"the truth about", "behind the scenes", "untold story",
	}},
}

const detectionWindow = 5000

// DetectContentType guesses the content type from the text opening and
// title using keyword heuristics.
func DetectContentType(text, title string) models.ContentType {
	opening := truncate(strings.ToLower(text), detectionWindow)
	titleLower := strings.ToLower(title)

	for _, entry := range contentTypeKeywords {
		for _, pattern := range entry.patterns {
			if strings.Contains(opening, pattern) || strings.Contains(titleLower, pattern) {
				return entry.contentType
			}
		}
	}
	return models.ContentTypeGeneral
}

const maxPromptLength = 250000

// timestampInterval is how often a [M:SS] marker is injected into the
// formatted transcript.
const timestampInterval = 60.0

// formatTimestamped renders segments as running text with a timestamp
// marker roughly once a minute so the model can anchor its references.
func formatTimestamped(segments []models.ContentSegment) string {
	var b strings.Builder
	lastShown := -timestampInterval

	for _, seg := range segments {
		if seg.StartTime-lastShown >= timestampInterval {
			fmt.Fprintf(&b, "\n[%s] ", seg.Timestamp())
			lastShown = seg.StartTime
		}
		b.WriteString(seg.Text)
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

func instructionsFor(contentType models.ContentType) string {
	switch contentType {
	case models.ContentTypeLecture:
		return `
You are creating comprehensive LECTURE NOTES for a student. Extract:
1. Main concepts with clear definitions, noting WHEN each concept is introduced
2. Examples and case studies mentioned
3. Key formulas, frameworks, or models
4. Connections between concepts
5. Any recommended readings or resources

Think like a diligent student taking notes. Capture everything important with timestamps.`
	case models.ContentTypeInterview, models.ContentTypePodcast:
		return `
You are creating notes from a PODCAST/INTERVIEW. Extract:
1. Key perspectives from each speaker, noting when they make their points
2. Important quotes (verbatim when possible) with timestamps
3. Stories and anecdotes shared
4. Advice or recommendations given
5. Books, people, or resources mentioned

Capture the unique insights with precise timestamps for easy reference.`
	case models.ContentTypeTutorial:
		return `
You are creating a STEP-BY-STEP GUIDE from this tutorial. Extract:
1. Prerequisites or setup required
2. Each step in order with the timestamp when it starts
3. Commands, code snippets, or specific actions
4. Common mistakes or warnings mentioned
5. Tips and best practices

Make these notes actionable with timestamps so readers can jump to each step.`
	case models.ContentTypeDocumentary:
		return `
You are creating notes from a DOCUMENTARY. Extract:
1. Timeline of events or narrative arc with timestamps
2. Key facts and statistics
3. Important people and their roles
4. Sources or evidence cited
5. Main arguments or conclusions

Capture the story with timestamps for key moments.`
	default:
		return `
You are creating comprehensive NOTES from this content. Extract:
1. Main topic and thesis
2. Key points and supporting details, noting when each is discussed
3. Examples and evidence
4. Notable quotes or statements with timestamps
5. Any calls to action or recommendations

Be thorough. Capture all important information with timestamps.`
	}
}

const outputFormat = `
Respond in this EXACT JSON format (no markdown, just raw JSON):
{
  "title": "Clear, descriptive title",
  "contentType": "detected content type",
  "overview": "One comprehensive sentence summarizing the entire content",
  "tableOfContents": [
    {"section": "Section name", "timestamp": "MM:SS", "description": "Brief description"}
  ],
  "mainConcepts": [
    {"concept": "Concept name", "definition": "Clear explanation", "timestamp": "MM:SS", "examples": ["Example 1"]}
  ],
  "keyInsights": [
    {"insight": "The key insight", "timestamp": "MM:SS", "context": "Why this matters"}
  ],
  "detailedNotes": [
    {"section": "Topic/Section", "timestamp": "MM:SS", "points": ["Point 1", "Point 2"]}
  ],
  "notableQuotes": [
    {"quote": "The exact quote", "speaker": "Speaker name", "timestamp": "MM:SS"}
  ],
  "resourcesMentioned": ["Book or resource 1"],
  "actionItems": ["Action 1"],
  "questionsRaised": ["Question 1"]
}

CRITICAL TIMESTAMP INSTRUCTIONS:
- Use the [MM:SS] markers in the transcript to determine timestamps
- Every table of contents section MUST have a timestamp
- Key insights and concepts should have timestamps when they first appear
- Notable quotes MUST have timestamps
- Format: "MM:SS" (e.g., "5:30", "1:15:00" for longer content)
`

// buildPrompt assembles the full synthesis prompt for one window.
// part and totalParts tag the window's place in a chunked run and are
// zero for single-call synthesis.
func buildPrompt(segments []models.ContentSegment, contentType models.ContentType, part, totalParts int) string {
	transcript := formatTimestamped(segments)
	wordCount := len(strings.Fields(transcript))

	var b strings.Builder
	fmt.Fprintf(&b, "CONTENT INFO:\n- Duration: %s\n- Word count: %d words\n- Content type: %s\n",
		models.FormatTimestamp(models.TotalDuration(segments)), wordCount, contentType)
	if totalParts > 1 {
		fmt.Fprintf(&b, "- This is part %d of %d of a longer recording\n", part, totalParts)
	}
	b.WriteString("\nTIMESTAMPED TRANSCRIPT:\nThe transcript below includes [MM:SS] timestamps. Use these to reference when topics appear.\n\n")
	b.WriteString(transcript)
	b.WriteString("\n")
	b.WriteString(instructionsFor(contentType))
	b.WriteString(outputFormat)

	return truncate(b.String(), maxPromptLength)
}

// buildPlainPrompt is the degraded retry prompt. It drops the timestamp
// apparatus and asks for the same JSON shape from flat text.
func buildPlainPrompt(text string, contentType models.ContentType) string {
	text = truncate(text, maxPromptLength-2000)
	return fmt.Sprintf("CONTENT (type: %s):\n\n%s\n%s%s",
		contentType, text, instructionsFor(contentType), outputFormat)
}
