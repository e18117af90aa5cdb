package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON decodes a JSON object from an LLM response into v. Responses
// frequently come wrapped in markdown fences or with slightly malformed
// keys, so the text is cleaned and repaired before decoding.
func ParseJSON(response string, v any) error {
	text := StripFences(response)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	repaired := repairJSON(text)
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("parse response JSON: %w", err)
	}
	return nil
}

// StripFences removes markdown code fences around a response.
func StripFences(s string) string {
	text := strings.TrimSpace(s)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// repairJSON attempts to fix common JSON formatting issues from LLM responses.
// It specifically handles missing opening quotes before keys in JSON objects.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+100)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys
		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
				fixed = append(fixed, result[i])
				i++
			}

			if i < len(result) && result[i] != '"' && isLetter(result[i]) {
				keyStart := i
				for i < len(result) && (isLetter(result[i]) || result[i] == '_' || result[i] == ' ') {
					i++
				}
				keyEnd := i

				// A bare word ending in ": means the opening quote is missing
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					fixed = append(fixed, '"')
					for j := keyStart; j < keyEnd; j++ {
						if result[j] != ' ' || (j > keyStart && j < keyEnd-1) {
							fixed = append(fixed, result[j])
						}
					}
					continue
				}
				for j := keyStart; j < i; j++ {
					fixed = append(fixed, result[j])
				}
			}
		} else {
			fixed = append(fixed, ch)
			i++
		}
	}

	return string(fixed)
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
