package generator

import (
	"regexp"
	"strings"

	"plugdoc/internal/region"
)

// ExtractSection returns the lines after the first line matching begin up to,
// but excluding, the next line matching end. A nil end or a missing end line
// runs to the end of the document. Lines inside fenced code blocks never match
// either pattern, so "# comment" in a shell snippet does not end a section.
func ExtractSection(content string, begin, end *regexp.Regexp) ([]string, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	start := -1
	inFence := false
	for i, line := range lines {
		if isFence(line) {
			inFence = !inFence
			if start >= 0 {
				continue
			}
		}
		if inFence {
			continue
		}
		if start < 0 {
			if begin.MatchString(line) {
				start = i + 1
			}
			continue
		}
		if end != nil && end.MatchString(line) {
			return lines[start:i], nil
		}
	}
	if start < 0 {
		return nil, &region.MarkerError{Pattern: begin.String(), Err: region.ErrBeginMarkerNotFound}
	}
	return lines[start:], nil
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}
