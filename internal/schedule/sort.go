package schedule

import (
	"sort"
	"strings"
)

// SortGames sorts games ascending by date, then time, then home team.
// Games without a time sort before timed games on the same date.
func SortGames(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		return lessGame(games[i], games[j])
	})
}

func lessGame(a, b Game) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return strings.ToLower(a.Home) < strings.ToLower(b.Home)
}
