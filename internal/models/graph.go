package models

// TopicFact is one fact traced back to the document it came from.
type TopicFact struct {
	Fact        string `json:"fact"`
	SourceID    string `json:"sourceId,omitempty"`
	SourceTitle string `json:"sourceTitle,omitempty"`
}

// Topic is one node of an owner's knowledge graph.
type Topic struct {
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Facts         []TopicFact `json:"facts,omitempty"`
	RelatedTopics []string    `json:"relatedTopics,omitempty"`
	SourceIDs     []string    `json:"sourceIds,omitempty"`
	Importance    int         `json:"importance"` // 1..10
}

// Connection is a directed, labeled edge between two topics.
type Connection struct {
	FromTopic    string `json:"from"`
	ToTopic      string `json:"to"`
	Relationship string `json:"relationship"`
}

// KnowledgeGraph is the cross-document topic graph for one owner.
// Version strictly increases on every successful rebuild that is persisted.
type KnowledgeGraph struct {
	Topics      []Topic      `json:"topics"`
	Connections []Connection `json:"connections"`
	SourceCount int          `json:"sourceCount"`
	Version     int          `json:"version"`
}

// IsEmpty reports whether the graph carries no topics at all.
func (g *KnowledgeGraph) IsEmpty() bool {
	return g == nil || len(g.Topics) == 0
}
