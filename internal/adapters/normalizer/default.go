package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/baditaflorin/go_nec_fidelity/internal/ports"
)

const byteOrderMark = "\ufeff"

// DeckNormalizer prepares deck text exported by other tools: it drops a leading
// byte order mark, composes to NFC, folds full-width forms to ASCII and maps
// exotic spaces to a plain space. Tabs and line breaks are kept since they
// carry structure.
type DeckNormalizer struct{}

// NewDeckNormalizer creates a new deck normalizer.
func NewDeckNormalizer() ports.Normalizer {
	return &DeckNormalizer{}
}

// Normalize returns the cleaned text.
func (n *DeckNormalizer) Normalize(text string) string {
	text = strings.TrimPrefix(text, byteOrderMark)
	if isPlainASCII(text) {
		return text
	}
	text = norm.NFC.String(text)
	text = width.Narrow.String(text)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r == '\ufeff':
			return -1
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, text)
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 || (c < 0x20 && c != '\n' && c != '\r' && c != '\t') || c == 0x7f {
			return false
		}
	}
	return true
}

// PassthroughNormalizer returns text unchanged.
type PassthroughNormalizer struct{}

// NewPassthroughNormalizer creates a normalizer that leaves text untouched.
func NewPassthroughNormalizer() ports.Normalizer {
	return PassthroughNormalizer{}
}

// Normalize implements ports.Normalizer.
func (PassthroughNormalizer) Normalize(text string) string { return text }
