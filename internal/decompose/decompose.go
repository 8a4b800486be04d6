// Package decompose turns a model response into an ordered list of subtask
// descriptions.
package decompose

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FallbackDescription is the sentinel subtask used when the decomposition
// response cannot be parsed as a list. A malformed response is a formatting
// problem, not an infrastructure failure, so the task continues with this
// single subtask instead of failing outright.
const FallbackDescription = "Error in processing subtask"

// ParseSubtasks parses a decomposition response into subtask descriptions.
// The response is expected to contain a JSON array of strings, possibly
// wrapped in prose. Returns an error for anything that does not yield at
// least one non-empty description.
func ParseSubtasks(response string) ([]string, error) {
	jsonStart := strings.Index(response, "[")
	jsonEnd := strings.LastIndex(response, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		preview := response
		if len(preview) > 200 {
			preview = preview[:200] + "... (truncated)"
		}
		return nil, fmt.Errorf("no JSON array found in response (got %d chars): %q", len(response), preview)
	}
	jsonStr := response[jsonStart : jsonEnd+1]

	var raw []string
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	descriptions := make([]string, 0, len(raw))
	for _, d := range raw {
		d = strings.TrimSpace(d)
		if d != "" {
			descriptions = append(descriptions, d)
		}
	}

	if len(descriptions) == 0 {
		return nil, fmt.Errorf("empty subtask list returned")
	}

	return descriptions, nil
}
