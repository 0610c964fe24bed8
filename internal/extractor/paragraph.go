// Package extractor pulls the biographical paragraph out of a reference page.
package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MinParagraphLength is the number of characters a paragraph's text must
// exceed to be taken as the page's first real paragraph.
const MinParagraphLength = 100

// FirstParagraph returns the visible text of the first <p> block, in document
// order, whose text is longer than MinParagraphLength characters. It returns ""
// when no block qualifies or the markup cannot be parsed.
func FirstParagraph(markup string) (text string) {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		if utf8.RuneCountInString(t) > MinParagraphLength {
			text = t
			return false
		}
		return true
	})
	return text
}
