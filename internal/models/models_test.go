package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "0:00"},
		{"under a minute", 42, "0:42"},
		{"minutes", 330, "5:30"},
		{"fraction truncated", 90.7, "1:30"},
		{"exactly an hour", 3600, "1:00:00"},
		{"long video", 4530, "1:15:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestTotalDuration(t *testing.T) {
	if d := TotalDuration(nil); d != 0 {
		t.Errorf("TotalDuration(nil) = %v, want 0", d)
	}
	segs := []ContentSegment{
		{Text: "a", StartTime: 0, EndTime: 4},
		{Text: "b", StartTime: 4, EndTime: 9.5},
	}
	if d := TotalDuration(segs); d != 9.5 {
		t.Errorf("TotalDuration = %v, want 9.5", d)
	}
}

func TestFlatText(t *testing.T) {
	segs := []ContentSegment{
		{Text: "hello   world\n"},
		{Text: ""},
		{Text: " second  segment"},
	}
	want := "hello world second segment"
	if got := FlatText(segs); got != want {
		t.Errorf("FlatText = %q, want %q", got, want)
	}
}

func TestShortRef(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips scheme and query", "https://www.youtube.com/watch?v=abc123", "youtube.com/watch"},
		{"plain host", "example.com/article", "example.com/article"},
		{"no scheme", "youtu.be/abc123", "youtu.be/abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortRef(tt.in); got != tt.want {
				t.Errorf("ShortRef(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseContentType(t *testing.T) {
	if got := ParseContentType("interview"); got != ContentTypeInterview {
		t.Errorf("ParseContentType(interview) = %q", got)
	}
	if got := ParseContentType("unknown-kind"); got != ContentTypeGeneral {
		t.Errorf("ParseContentType fallback = %q, want general", got)
	}
}

func TestJobApply(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job := &Job{ID: "j1", Status: JobStatusPending, Stage: "queued"}

	status := JobStatusProcessing
	progress := 25
	stage := "extracting"
	job.Apply(JobUpdate{Status: &status, Progress: &progress, Stage: &stage}, now)

	if job.Status != JobStatusProcessing || job.Progress != 25 || job.Stage != "extracting" {
		t.Errorf("Apply merged wrong: %+v", job)
	}
	if !job.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", job.UpdatedAt, now)
	}

	// Nil fields untouched.
	errMsg := "boom"
	job.Apply(JobUpdate{Error: &errMsg}, now.Add(time.Second))
	if job.Status != JobStatusProcessing || job.Progress != 25 {
		t.Errorf("Apply overwrote fields it was not given: %+v", job)
	}
	if job.Error != "boom" {
		t.Errorf("Error = %q", job.Error)
	}
}

func TestStructuredDocumentRoundTrip(t *testing.T) {
	doc := StructuredDocument{
		ID:          "d1",
		OwnerID:     "owner-1",
		SourceRef:   "https://youtu.be/abc",
		Title:       "Distributed Systems Lecture 4",
		ContentType: ContentTypeLecture,
		Overview:    "Consensus protocols from first principles.",
		TableOfContents: []TOCEntry{
			{Section: "Intro", Timestamp: "0:00", Description: "Motivation"},
			{Section: "Paxos", Timestamp: "12:30"},
		},
		MainConcepts: []Concept{
			{Concept: "Quorum", Definition: "Majority overlap", Examples: []string{"3 of 5"}},
		},
		KeyInsights: []Insight{
			{Insight: "Safety never depends on timing", Timestamp: "15:02", Context: "FLP"},
		},
		DetailedNotes: []NoteSection{
			{Section: "Paxos phases", Points: []string{"prepare", "accept"}},
		},
		NotableQuotes:      []Quote{{Quote: "Consensus is hard", Speaker: "Lecturer"}},
		ResourcesMentioned: []string{"Paxos Made Simple"},
		ActionItems:        []string{"Read the paper"},
		QuestionsRaised:    []string{"What about Byzantine faults?"},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got StructuredDocument
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(doc, got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestKnowledgeGraphRoundTrip(t *testing.T) {
	graph := KnowledgeGraph{
		Topics: []Topic{
			{
				Name:        "Consensus",
				Description: "Agreement in distributed systems",
				Facts: []TopicFact{
					{Fact: "Paxos tolerates minority failure", SourceID: "d1", SourceTitle: "Lecture 4"},
				},
				RelatedTopics: []string{"Replication"},
				SourceIDs:     []string{"d1", "d2"},
				Importance:    9,
			},
		},
		Connections: []Connection{
			{FromTopic: "Consensus", ToTopic: "Replication", Relationship: "enables"},
		},
		SourceCount: 2,
		Version:     3,
	}

	data, err := json.Marshal(graph)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got KnowledgeGraph
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(graph, got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, graph)
	}
}
