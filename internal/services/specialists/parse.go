package specialists

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json|JSON|javascript|js)?\s*\n?(.*?)\n?\s*` + "```" + `\s*$`)

// cleanMarkdownFences removes markdown code fences from a model response
func cleanMarkdownFences(s string) string {
	s = strings.TrimSpace(s)

	if matches := fencePattern.FindStringSubmatch(s); len(matches) > 1 {
		s = matches[1]
	}

	// Fallback: simple prefix/suffix trimming
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```javascript")
	s = strings.TrimPrefix(s, "```js")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// extractJSONObject pulls the outermost JSON object out of a response that
// may carry prose around it
func extractJSONObject(s string) string {
	s = cleanMarkdownFences(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
