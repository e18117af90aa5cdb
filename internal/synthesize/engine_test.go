package synthesize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreline/loreline/internal/models"
)

// fakeOracle answers each call from a queue, or with a canned function.
type fakeOracle struct {
	responses []string
	prompts   []string
	respond   func(prompt string) string
}

func (f *fakeOracle) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.respond != nil {
		return f.respond(prompt), nil
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("no scripted response left")
	}
	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

func docJSON(title, overview string) string {
	return fmt.Sprintf(`{"title": %q, "contentType": "lecture", "overview": %q, "keyInsights": [{"insight": "from %s"}]}`, title, overview, title)
}

func newTestSynthEngine(o *fakeOracle) *Engine {
	return NewEngine(o, Options{}, slog.New(slog.DiscardHandler))
}

func TestShortContentUsesSingleCall(t *testing.T) {
	o := &fakeOracle{responses: []string{docJSON("Model Title", "One overview.")}}
	engine := newTestSynthEngine(o)

	doc, err := engine.Synthesize(context.Background(), minuteSegments(45), "Given Title")
	require.NoError(t, err)

	assert.Len(t, o.prompts, 1)
	assert.Equal(t, "Given Title", doc.Title)
	assert.Equal(t, "One overview.", doc.Overview)
	assert.NotContains(t, o.prompts[0], "part 1 of")
}

func TestLongContentCallsPerWindowAndMerges(t *testing.T) {
	o := &fakeOracle{respond: func(prompt string) string {
		return docJSON(fmt.Sprintf("Window %d", len(prompt)%97), "Window overview.")
	}}
	engine := newTestSynthEngine(o)

	doc, err := engine.Synthesize(context.Background(), minuteSegments(95), "Long Talk")
	require.NoError(t, err)

	assert.Len(t, o.prompts, 4)
	assert.Contains(t, o.prompts[0], "part 1 of 4")
	assert.Contains(t, o.prompts[3], "part 4 of 4")
	assert.Equal(t, "Long Talk", doc.Title)
}

func TestBoundaryDurationPartitions(t *testing.T) {
	o := &fakeOracle{respond: func(string) string { return docJSON("W", "O") }}
	engine := newTestSynthEngine(o)

	// Exactly at the threshold the content no longer fits one call.
	_, err := engine.Synthesize(context.Background(), minuteSegments(90), "t")
	require.NoError(t, err)
	assert.Len(t, o.prompts, 3)
	assert.Contains(t, o.prompts[0], "part 1 of 3")

	under := &fakeOracle{responses: []string{docJSON("T", "O")}}
	_, err = newTestSynthEngine(under).Synthesize(context.Background(), minuteSegments(89), "t")
	require.NoError(t, err)
	assert.Len(t, under.prompts, 1)
}

func TestParseFailureRetriesDegraded(t *testing.T) {
	o := &fakeOracle{responses: []string{
		"this is not json at all",
		docJSON("Recovered", "Recovered overview."),
	}}
	engine := newTestSynthEngine(o)

	doc, err := engine.Synthesize(context.Background(), minuteSegments(10), "t")
	require.NoError(t, err)

	require.Len(t, o.prompts, 2)
	assert.NotContains(t, o.prompts[1], "TIMESTAMPED TRANSCRIPT", "degraded retry drops the timestamp apparatus")
	assert.Equal(t, "Recovered overview.", doc.Overview)
}

func TestDoubleParseFailureYieldsPlaceholder(t *testing.T) {
	o := &fakeOracle{responses: []string{"garbage", "more garbage"}}
	engine := newTestSynthEngine(o)

	doc, err := engine.Synthesize(context.Background(), minuteSegments(10), "Broken Talk")
	require.NoError(t, err)

	assert.Equal(t, "Broken Talk", doc.Title)
	assert.Equal(t, "Notes generation encountered an error", doc.Overview)
	require.Len(t, doc.KeyInsights, 1)
	assert.Equal(t, "Could not parse model response", doc.KeyInsights[0].Insight)
	assert.NotEmpty(t, doc.KeyInsights[0].Context)
}

func TestEmptySegmentsShortCircuit(t *testing.T) {
	o := &fakeOracle{}
	engine := newTestSynthEngine(o)

	doc, err := engine.Synthesize(context.Background(), nil, "Empty")
	require.NoError(t, err)
	assert.Empty(t, o.prompts)
	assert.Equal(t, "No content available", doc.Overview)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
		want  models.ContentType
	}{
		{"tutorial from text", "today let me show you how to build a parser", "", models.ContentTypeTutorial},
		{"interview from title", "we discuss many things", "Episode 42: A Conversation", models.ContentTypeInterview},
		{"lecture", "welcome to the lecture on graph theory", "", models.ContentTypeLecture},
		{"documentary", "this is the untold story of the deep sea", "", models.ContentTypeDocumentary},
		{"general fallback", "some plain remarks about weather", "Daily Vlog", models.ContentTypeGeneral},
		{"tutorial wins over lecture", "tutorial for the university course", "", models.ContentTypeTutorial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.text, tt.title))
		})
	}
}

func TestFormatTimestampedMarkers(t *testing.T) {
	formatted := formatTimestamped(minuteSegments(3))
	assert.True(t, strings.HasPrefix(formatted, "[0:00]"))
	assert.Contains(t, formatted, "[1:00]")
	assert.Contains(t, formatted, "[2:00]")
}

func TestPromptTruncation(t *testing.T) {
	huge := []models.ContentSegment{{Text: strings.Repeat("w", maxPromptLength+5000), EndTime: 60}}
	prompt := buildPrompt(huge, models.ContentTypeGeneral, 0, 0)
	assert.LessOrEqual(t, len(prompt), maxPromptLength)
}

func TestWindowDurationsRespectOptions(t *testing.T) {
	o := &fakeOracle{respond: func(string) string { return docJSON("T", "O") }}
	engine := NewEngine(o, Options{
		SingleCallThreshold: 10 * time.Minute,
		WindowMax:           5 * time.Minute,
	}, slog.New(slog.DiscardHandler))

	_, err := engine.Synthesize(context.Background(), minuteSegments(20), "t")
	require.NoError(t, err)
	assert.Len(t, o.prompts, 4)
}
