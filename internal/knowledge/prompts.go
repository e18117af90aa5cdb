package knowledge

import (
	"encoding/json"
	"fmt"

	"github.com/loreline/loreline/internal/models"
)

const systemPrompt = `You are a Knowledge Synthesis Agent. Your job is to analyze a collection of
content summaries and create a structured knowledge graph that reveals the
topics, key information, and connections across all the content.

INPUT: A list of summaries, each containing an id, title, and source reference.

OUTPUT: A JSON object with this EXACT structure (no markdown, no code fences):
{
  "topics": [
    {
      "name": "Topic Name",
      "description": "2-3 sentence description of what this topic covers across the sources",
      "facts": [
        {"fact": "Key fact or insight", "sourceId": "source_id_here", "sourceTitle": "Source Title"}
      ],
      "relatedTopics": ["Other Topic Name"],
      "sourceIds": ["source1", "source2"],
      "importance": 8
    }
  ],
  "connections": [
    {"from": "Topic A", "to": "Topic B", "relationship": "builds on"}
  ]
}

RULES:
1. Extract 5-20 distinct topics depending on the breadth of content
2. Topics should be specific enough to be useful (e.g., "React Server Components" not just "Programming")
3. Each fact MUST trace back to a specific source using its id and title
4. Importance score (1-10): based on how many sources discuss the topic and the depth of coverage
5. Connections should be meaningful relationships (e.g., "builds on", "contrasts with", "prerequisite for", "applies to")
6. Merge near-duplicate topics (e.g., "React" and "React.js" should be one topic)
7. Include both domain-specific topics AND cross-cutting themes
8. If there is only 1 source, create 3-5 topics based on its content
9. Sort topics by importance (highest first)
10. Return ONLY the JSON object, no other text`

// buildPrompt assembles the synthesis prompt for one batch of condensed
// documents. batch and totalBatches are zero for single-call builds.
func buildPrompt(condensed []models.CondensedDocument, batch, totalBatches int) string {
	payload, _ := json.MarshalIndent(condensed, "", "  ")
	if totalBatches > 1 {
		return fmt.Sprintf("%s\n\nHere are %d summaries to analyze (batch %d of %d):\n\n%s",
			systemPrompt, len(condensed), batch, totalBatches, payload)
	}
	return fmt.Sprintf("%s\n\nHere are %d summaries to analyze:\n\n%s",
		systemPrompt, len(condensed), payload)
}

// mergePrompt asks the model to unify two partial graphs.
func mergePrompt(first, second *models.KnowledgeGraph) string {
	a, _ := json.MarshalIndent(first, "", "  ")
	b, _ := json.MarshalIndent(second, "", "  ")
	return fmt.Sprintf(`You are a Knowledge Synthesis Agent. Merge these two partial knowledge graphs into one unified graph.

Partial Graph 1:
%s

Partial Graph 2:
%s

MERGE RULES:
1. Combine duplicate topics (same or very similar names), merging their facts and source lists
2. Keep all unique topics from both graphs
3. Update importance scores based on the combined coverage
4. Merge and deduplicate connections
5. Ensure no duplicate facts
6. Return the unified graph in the same JSON format

Return ONLY the merged JSON object, no other text.`, a, b)
}
