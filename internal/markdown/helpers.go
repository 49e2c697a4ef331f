package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\_*[]()~` + "`" + `>#+-=|{}.!`

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

func EscapeV2(input string) string {
	charsToEscape := 0

	for i := range len(input) {
		if mdV2Lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if mdV2Lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Bold escapes text and wraps it in bold markers.
func Bold(text string) string {
	return "*" + EscapeV2(text) + "*"
}

// SplitV2 escapes text and cuts it into pieces of at most limit characters
// after escaping, preferring line boundaries. Blank pieces are dropped.
func SplitV2(text string, limit int) []string {
	limit = max(limit, 2)
	runes := []rune(text)

	var parts []string
	start := 0

	for start < len(runes) {
		cost := 0
		end := start
		lastNewline := -1

		for end < len(runes) {
			c := escapedLen(runes[end])
			if cost+c > limit {
				break
			}

			cost += c
			if runes[end] == '\n' {
				lastNewline = end
			}
			end++
		}

		if end < len(runes) && lastNewline > start {
			end = lastNewline + 1
		}

		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			parts = append(parts, EscapeV2(piece))
		}

		start = end
	}

	return parts
}

func escapedLen(r rune) int {
	if r < 256 && mdV2Lookup[r] {
		return 2
	}

	return 1
}
