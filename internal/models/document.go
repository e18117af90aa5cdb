package models

import "time"

// ContentType classifies what kind of content a document was synthesized
// from. The type selects prompt instructions during synthesis.
type ContentType string

const (
	ContentTypeLecture     ContentType = "lecture"
	ContentTypeInterview   ContentType = "interview"
	ContentTypeTutorial    ContentType = "tutorial"
	ContentTypeDocumentary ContentType = "documentary"
	ContentTypeArticle     ContentType = "article"
	ContentTypePaper       ContentType = "paper"
	ContentTypePodcast     ContentType = "podcast"
	ContentTypeGeneral     ContentType = "general"
)

// ParseContentType maps a string to a known ContentType, defaulting to general.
func ParseContentType(s string) ContentType {
	switch ContentType(s) {
	case ContentTypeLecture, ContentTypeInterview, ContentTypeTutorial,
		ContentTypeDocumentary, ContentTypeArticle, ContentTypePaper,
		ContentTypePodcast:
		return ContentType(s)
	default:
		return ContentTypeGeneral
	}
}

// TOCEntry is one table-of-contents section.
type TOCEntry struct {
	Section     string `json:"section"`
	Timestamp   string `json:"timestamp,omitempty"`
	Description string `json:"description,omitempty"`
}

// Concept is a named idea with its definition and examples.
type Concept struct {
	Concept    string   `json:"concept"`
	Definition string   `json:"definition,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

// Insight is a key takeaway with optional context.
type Insight struct {
	Insight   string `json:"insight"`
	Timestamp string `json:"timestamp,omitempty"`
	Context   string `json:"context,omitempty"`
}

// NoteSection groups detailed points under one topic.
type NoteSection struct {
	Section   string   `json:"section"`
	Timestamp string   `json:"timestamp,omitempty"`
	Points    []string `json:"points,omitempty"`
}

// Quote is a notable statement, verbatim or paraphrased.
type Quote struct {
	Quote     string `json:"quote"`
	Speaker   string `json:"speaker,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// StructuredDocument is the synthesized output for one content item.
// All list fields preserve the order in which items appeared in the source.
type StructuredDocument struct {
	ID                 string        `json:"id,omitempty"`
	OwnerID            string        `json:"ownerId,omitempty"`
	SourceRef          string        `json:"sourceRef,omitempty"`
	CreatedAt          time.Time     `json:"createdAt,omitempty"`
	Title              string        `json:"title"`
	ContentType        ContentType   `json:"contentType"`
	Overview           string        `json:"overview"`
	TableOfContents    []TOCEntry    `json:"tableOfContents,omitempty"`
	MainConcepts       []Concept     `json:"mainConcepts,omitempty"`
	KeyInsights        []Insight     `json:"keyInsights,omitempty"`
	DetailedNotes      []NoteSection `json:"detailedNotes,omitempty"`
	NotableQuotes      []Quote       `json:"notableQuotes,omitempty"`
	ResourcesMentioned []string      `json:"resourcesMentioned,omitempty"`
	ActionItems        []string      `json:"actionItems,omitempty"`
	QuestionsRaised    []string      `json:"questionsRaised,omitempty"`
}

// Condense reduces a document to the triple sent to knowledge reduction.
func (d *StructuredDocument) Condense() CondensedDocument {
	return CondensedDocument{
		ID:       d.ID,
		Title:    d.Title,
		ShortRef: ShortRef(d.SourceRef),
	}
}

// CondensedDocument is the minimal payload per document used when building
// knowledge graphs, keeping reduction prompts small.
type CondensedDocument struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ShortRef string `json:"shortRef"`
}
