package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeTeamName lowercases, strips punctuation and collapses whitespace.
func NormalizeTeamName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NamesMatch reports whether input names the canonical team, either exactly
// or as a substring ("storm" matches "Las Vegas Storm 12u AA").
func NamesMatch(input, canonical string) bool {
	in := NormalizeTeamName(input)
	if in == "" {
		return false
	}
	canon := NormalizeTeamName(canonical)
	return in == canon || strings.Contains(canon, in)
}

// SeasonYears is the calendar year range of a season
type SeasonYears struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

var seasonPattern = regexp.MustCompile(`\b(\d{4})\s*[-/]\s*(\d{4}|\d{2})\b`)

// ParseSeasonID reads "2025-26" or "2025/26" (also inside a longer label).
// It returns false rather than an error so callers decide what unparseable means.
func ParseSeasonID(text string) (SeasonYears, bool) {
	m := seasonPattern.FindStringSubmatch(text)
	if m == nil {
		return SeasonYears{}, false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		end += start / 100 * 100
		if end < start {
			end += 100
		}
	}
	if end < start || end-start > 1 {
		return SeasonYears{}, false
	}
	return SeasonYears{StartYear: start, EndYear: end}, true
}

var divisionPattern = regexp.MustCompile(`(?i)\b(\d{1,2})u\s*([a-z]{1,3})\b`)

// InferDivision extracts an age/skill token such as "12u AA" from a team name.
// It returns "" when the name carries none.
func InferDivision(name string) string {
	m := divisionPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%su %s", m[1], strings.ToUpper(m[2]))
}

// SplitVenue splits "Arena - Rink 2" style text on sep into venue and rink.
func SplitVenue(text, sep string) (string, string) {
	text = strings.TrimSpace(text)
	idx := strings.Index(text, sep)
	if idx < 0 {
		return text, ""
	}
	venue := strings.TrimSpace(text[:idx])
	rink := strings.TrimSpace(text[idx+len(sep):])
	if venue == "" {
		return rink, ""
	}
	return venue, rink
}
