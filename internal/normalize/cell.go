package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var gameDescription = regexp.MustCompile(`(?i)\s+(?:vs\.?|@|at)\s+`)

// CleanCell collapses whitespace and strips the glued condensed repeat some
// responsive layouts append to a team name ("Las Vegas StormLVS").
func CleanCell(text string) string {
	text = spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")
	return stripCondensedRepeat(text)
}

// FirstTeam isolates the first team of a cell that embeds a whole game
// description ("Storm vs Jets at City Arena" -> "Storm").
func FirstTeam(text string) string {
	loc := gameDescription.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return strings.TrimSpace(text[:loc[0]])
}

// stripCondensedRepeat removes the longest glued suffix that is a condensed
// repeat of the text before it. The suffix must start with an upper-case
// letter or digit directly after a non-space, start with the same character
// as the name, and be a subsequence of the name.
func stripCondensedRepeat(s string) string {
	runes := []rune(s)
	for i := 1; i < len(runes)-1; i++ {
		prev, cur := runes[i-1], runes[i]
		if unicode.IsSpace(prev) || !(unicode.IsUpper(cur) || unicode.IsDigit(cur)) {
			continue
		}
		prefix, suffix := string(runes[:i]), string(runes[i:])
		if isCondensedRepeat(prefix, suffix) {
			return strings.TrimSpace(prefix)
		}
	}
	return s
}

func isCondensedRepeat(prefix, suffix string) bool {
	p, q := alnumLower(prefix), alnumLower(suffix)
	if len(q) < 2 || len(q) >= len(p) || q[0] != p[0] {
		return false
	}
	j := 0
	for i := 0; i < len(p) && j < len(q); i++ {
		if p[i] == q[j] {
			j++
		}
	}
	return j == len(q)
}

func alnumLower(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return out
}
