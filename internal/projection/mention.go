package projection

import "regexp"

// token = word characters, dot, hyphen, underscore
var mentionRegex = regexp.MustCompile(`@[\w.-]+`)

// Span is a slice of post content. Mention spans carry the matched name
// without the leading @.
type Span struct {
	Text    string
	Mention bool
	Name    string
}

// MentionSpans splits content into plain and mention spans. A token
// counts as a mention only when it exactly matches a known display name,
// case-sensitively; anything else stays plain text. With duplicate or
// missing directory entries the classification is necessarily
// approximate.
func MentionSpans(content string, knownNames map[string]bool) []Span {
	if content == "" {
		return nil
	}
	var spans []Span
	last := 0
	for _, loc := range mentionRegex.FindAllStringIndex(content, -1) {
		name := content[loc[0]+1 : loc[1]]
		if !knownNames[name] {
			continue
		}
		if loc[0] > last {
			spans = append(spans, Span{Text: content[last:loc[0]]})
		}
		spans = append(spans, Span{Text: content[loc[0]:loc[1]], Mention: true, Name: name})
		last = loc[1]
	}
	if last < len(content) {
		spans = append(spans, Span{Text: content[last:]})
	}
	return spans
}
