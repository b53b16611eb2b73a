package llm

import "strings"

// CleanJSONResponse strips the markdown code fences many providers wrap
// JSON output in: a leading ```json or ``` fence and a trailing ``` fence.
// The result is whitespace-trimmed; bare JSON passes through unchanged.
func CleanJSONResponse(content string) string {
	c := strings.TrimSpace(content)
	if strings.HasPrefix(c, "```json") && strings.HasSuffix(c, "```") && len(c) >= len("```json")+len("```") {
		c = c[len("```json") : len(c)-len("```")]
	} else if strings.HasPrefix(c, "```") && strings.HasSuffix(c, "```") && len(c) >= 2*len("```") {
		c = c[len("```") : len(c)-len("```")]
	}
	return strings.TrimSpace(c)
}
