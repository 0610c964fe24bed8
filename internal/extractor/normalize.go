package extractor

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	annotationPattern = regexp.MustCompile(`\[[^\]]*\]`)
	whitespacePattern = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
)

// Normalize cleans extracted paragraph text: residual tags go first, then
// bracketed annotations such as citation markers, then whitespace runs are
// collapsed and the ends trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = annotationPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Paragraph runs FirstParagraph then Normalize.
func Paragraph(markup string) string {
	return Normalize(FirstParagraph(markup))
}
