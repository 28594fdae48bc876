package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByTeam  SortOrder = "team"
	SortByVenue SortOrder = "venue"
)

// ParseSortOrder validates a sort order name
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortByDate, SortByTeam, SortByVenue:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'team' or 'venue')", s)
	}
}

// sortGames sorts games in place. Ties always fall back to date order.
func sortGames(games []schedule.Game, order SortOrder) {
	switch order {
	case SortByDate:
		schedule.SortGames(games)
	case SortByTeam:
		sort.SliceStable(games, func(i, j int) bool {
			hi, hj := strings.ToLower(games[i].Home), strings.ToLower(games[j].Home)
			if hi != hj {
				return hi < hj
			}
			return compareByDate(games[i], games[j])
		})
	case SortByVenue:
		sort.SliceStable(games, func(i, j int) bool {
			vi, vj := strings.ToLower(games[i].Venue), strings.ToLower(games[j].Venue)
			if vi != vj {
				return vi < vj
			}
			return compareByDate(games[i], games[j])
		})
	}
}

// compareByDate reports whether game i starts before game j.
// Untimed games come first on their date.
func compareByDate(i, j schedule.Game) bool {
	if i.Date != j.Date {
		return i.Date < j.Date
	}
	return i.Time < j.Time
}
