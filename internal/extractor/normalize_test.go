package extractor

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hello world", "Hello world"},
		{"tags", "Hello <b>bold</b> <i>world</i>", "Hello bold world"},
		{"citations", "Elected in 2019.[1][note 2] Re-elected.[23]", "Elected in 2019. Re-elected."},
		{"whitespace runs", "  a \n\n\t b  c  ", "a b c"},
		{"tag before bracket", "<span>[1]</span>x", "x"},
		{"bracket inside tag", "a<a href=\"[x]\">b</a>c", "abc"},
		{"unclosed tag kept", "1 < 2 and 3 > 2", "1 2"},
		{"unclosed bracket kept", "see [ above", "see [ above"},
		{"tag removal exposes whitespace", "a <br/>\n<br/> b", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

var (
	leftoverTag     = regexp.MustCompile(`<[^>]*>`)
	leftoverBracket = regexp.MustCompile(`\[[^\]]*\]`)
)

func TestNormalize_Properties(t *testing.T) {
	alphabet := []rune("ab <>[]/\n\t é.")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		n := rng.Intn(40)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		in := b.String()
		out := Normalize(in)

		assert.Equal(t, out, Normalize(out), "not idempotent for %q", in)
		assert.False(t, leftoverTag.MatchString(out), "tag left in %q (from %q)", out, in)
		assert.False(t, leftoverBracket.MatchString(out), "bracket span left in %q (from %q)", out, in)
		assert.NotContains(t, out, "  ", "whitespace run left in %q", out)
		assert.Equal(t, strings.TrimSpace(out), out, "untrimmed %q", out)
	}
}
