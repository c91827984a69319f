package utils

import "strings"

// ExtractJSONObject pulls the JSON payload out of a language-model response.
// Models sometimes wrap the payload in a fenced code block or surround it
// with prose, so the cleanup is: drop a leading fence line (and a trailing
// fence), then take everything from the first '{' to the last '}'. When no
// braces are found the trimmed input is returned as a best effort.
func ExtractJSONObject(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.IndexByte(cleaned, '\n'); idx > 0 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cleaned), "```"))
	}

	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}

	return cleaned
}
