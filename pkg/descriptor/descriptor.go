// Package descriptor parses the markdown-like text files that describe a
// podcast or an episode: first line is the title, an optional trailing
// "keywords:" line carries a comma separated keyword list, everything in
// between is the description.
package descriptor

import (
	"strings"
)

const keywordsPrefix = "keywords:"

// Descriptor is the parsed content of a markdown descriptor file.
type Descriptor struct {
	Title       string
	Description string
	Keywords    []string
}

// Parse splits raw descriptor text into title, description and keywords.
// Carriage returns and surrounding whitespace are stripped before parsing,
// so callers can pass object bytes as is. An empty or title-only descriptor
// is valid and yields empty fields.
func Parse(text string) Descriptor {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSpace(text)

	var d Descriptor
	if text == "" {
		return d
	}

	lines := strings.Split(text, "\n")
	d.Title = parseTitle(lines[0])

	body := lines[1:]
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}

	if len(body) > 0 {
		last := body[len(body)-1]
		if strings.HasPrefix(strings.ToLower(last), keywordsPrefix) {
			d.Keywords = parseKeywords(last[len(keywordsPrefix):])
			body = body[:len(body)-1]
		}
	}

	d.Description = strings.TrimSpace(strings.Join(body, "\n"))
	return d
}

// parseTitle strips a leading markdown heading marker and the whitespace
// that follows it.
func parseTitle(line string) string {
	trimmed := strings.TrimLeft(line, "#")
	if trimmed != line {
		trimmed = strings.TrimLeft(trimmed, " \t")
	}
	return trimmed
}

func parseKeywords(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}

	parts := strings.Split(rest, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		keywords = append(keywords, strings.TrimSpace(p))
	}

	return keywords
}
