package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var longText = strings.Repeat("Lorem ipsum dolor sit amet. ", 5) // 140 characters

func TestFirstParagraph_ReturnsFirstLongBlock(t *testing.T) {
	markup := `<html><body>
		<p>Too short.</p>
		<p>` + longText + `<b>bold</b></p>
		<p>Another ` + longText + `</p>
	</body></html>`

	got := FirstParagraph(markup)
	assert.Equal(t, longText+"bold", got)
}

func TestFirstParagraph_IndependentOfLaterBlocks(t *testing.T) {
	first := `<p>` + longText + `</p>`
	a := FirstParagraph(first + `<p>` + strings.Repeat("x", 500) + `</p>`)
	b := FirstParagraph(first + `<p><<<broken`)
	assert.Equal(t, a, b)
	assert.Equal(t, longText, a)
}

func TestFirstParagraph_NoBlockLongEnough(t *testing.T) {
	markup := `<p>short</p><p>` + strings.Repeat("a", MinParagraphLength) + `</p><div>` + longText + `</div>`
	assert.Equal(t, "", FirstParagraph(markup))
}

func TestFirstParagraph_LengthCountsCharactersNotBytes(t *testing.T) {
	// 60 two-byte characters: 120 bytes but only 60 characters
	short := strings.Repeat("é", 60)
	assert.Equal(t, "", FirstParagraph("<p>"+short+"</p>"))

	long := strings.Repeat("é", MinParagraphLength+1)
	assert.Equal(t, long, FirstParagraph("<p>"+long+"</p>"))
}

func TestFirstParagraph_FailsSoft(t *testing.T) {
	for _, markup := range []string{
		"",
		"   ",
		"not html at all",
		"<p><p><p></div></span>",
		"\x00\x01\x02<p",
	} {
		require.NotPanics(t, func() {
			assert.Equal(t, "", FirstParagraph(markup))
		})
	}
}

func TestParagraph_NormalizesExtractedText(t *testing.T) {
	markup := `<p>Charles Michel<sup>[1]</sup> (born 21 December 1975)
		is a Belgian politician who served as Prime Minister of Belgium from 2014 to 2019.[2]  </p>`

	got := Paragraph(markup)
	assert.Equal(t, "Charles Michel (born 21 December 1975) is a Belgian politician who served as Prime Minister of Belgium from 2014 to 2019.", got)
}
