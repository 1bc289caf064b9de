package remote

import (
	"encoding/json"
	"strings"
)

// ExtractOutValue extracts the __out value from captured remote output if
// present. Remote blocks have no generic variable-export channel, so a block
// that wants to hand structured data back prints a single JSON line with an
// __out key; the runner lifts it out of the visible output.
//
// Returns:
//   - value: the extracted __out value, or nil if not found
//   - remainingOutput: output with the JSON line containing __out removed
//
// Behavior:
//   - Searches each line for valid JSON containing __out
//   - The first occurrence wins; its line is removed from the output
//   - Invalid JSON and lines without __out are preserved unchanged
func ExtractOutValue(output string) (value any, remainingOutput string) {
	if output == "" {
		return nil, ""
	}

	lines := strings.Split(output, "\n")
	var kept []string
	var found any
	foundLine := -1

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, line)
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			if outVal, exists := obj["__out"]; exists && foundLine == -1 {
				found = outVal
				foundLine = i
				continue
			}
		}

		kept = append(kept, line)
	}

	return found, strings.Join(kept, "\n")
}
