package app

import (
	"strings"
	"unicode"
)

// emojiRanges are the pictograph blocks stripped before punctuation cleanup.
// The last range is wide on purpose and also swallows enclosed alphanumerics,
// dingbats and most non-Latin scripts.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols & pictographs
	{0x1F680, 0x1F6FF}, // transport & map
	{0x1F700, 0x1F77F}, // alchemical
	{0x1F780, 0x1F7FF}, // geometric shapes ext
	{0x1F800, 0x1F8FF}, // supplemental arrows-c
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA00, 0x1FA6F}, // chess
	{0x1FA70, 0x1FAFF}, // symbols & pictographs ext-a
	{0x2702, 0x27B0},   // dingbats
	{0x24C2, 0x1F251},
}

func isEmoji(r rune) bool {
	for _, rg := range emojiRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Cleaner normalizes free-text review fields.
type Cleaner struct {
	typos map[string]string
}

// NewCleaner takes ownership of typos; a nil map disables correction.
func NewCleaner(typos map[string]string) *Cleaner {
	return &Cleaner{typos: typos}
}

// Clean strips emoji, replaces anything but ASCII letters, digits and
// whitespace with a space, lowercases, and applies the typo dictionary per
// token. Tokens are rejoined with single spaces.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case isEmoji(r):
			// dropped without a separator
		case isASCIIAlnum(r), unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	words := strings.Fields(strings.ToLower(b.String()))
	for i, w := range words {
		if fix, ok := c.typos[w]; ok {
			words[i] = fix
		}
	}
	return strings.Join(words, " ")
}
