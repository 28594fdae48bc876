// Package filter narrows a game list down to what a caller asked for.
//
// Criteria combine with AND; a criterion with several values (teams,
// venues) matches when any value does:
//   - Date range (from/to, inclusive)
//   - Teams (loose name match against home or away)
//   - Side (home or away only)
//   - Venues (substring matching, case-insensitive)
//   - Weekends only (Saturday/Sunday)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Teams = []string{"Storm 12u"}
//	f.Side = filter.SideHome
//	from, to, _ := filter.ParseDateRange("Sep 1 - Oct 15", season)
//	f.DateFrom, f.DateTo = from, to
//
//	filtered := f.Apply(games)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/normalize"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// Side restricts games to one side of the matchup
type Side string

const (
	SideAny  Side = ""
	SideHome Side = "home"
	SideAway Side = "away"
)

// ParseSide parses "home", "away", or "" / "any"
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return SideAny, nil
	case "home":
		return SideHome, nil
	case "away":
		return SideAway, nil
	default:
		return "", fmt.Errorf("invalid side: %s (must be 'home' or 'away')", s)
	}
}

// Filter represents game filtering criteria
type Filter struct {
	// Date range filtering
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Team filtering (normalized name match, home or away)
	Teams []string `json:"teams,omitempty"`

	// Side keeps only games where the filtered team plays home or away.
	// Without Teams it applies to the game type the feed reports.
	Side Side `json:"side,omitempty"`

	// Venue filtering (case-insensitive substring match)
	Venues []string `json:"venues,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `json:"weekends_only,omitempty"`
}

// NewFilter creates a filter with no active criteria
func NewFilter() *Filter {
	return &Filter{
		Teams:  []string{},
		Venues: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Teams) == 0 &&
		f.Side == SideAny &&
		len(f.Venues) == 0 &&
		!f.WeekendsOnly
}

// Matches checks if a game passes all active criteria.
// A game whose date does not parse fails any date-based criterion.
func (f *Filter) Matches(g schedule.Game) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil || f.DateTo != nil || f.WeekendsOnly {
		date, err := time.Parse("2006-01-02", g.Date)
		if err != nil {
			return false
		}
		if f.DateFrom != nil && date.Before(truncateDay(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && date.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly {
			weekday := date.Weekday()
			if weekday != time.Saturday && weekday != time.Sunday {
				return false
			}
		}
	}

	if len(f.Teams) > 0 {
		if !f.matchesTeam(g) {
			return false
		}
	} else if f.Side != SideAny && g.GameType != string(f.Side) {
		return false
	}

	if len(f.Venues) > 0 {
		matched := false
		venueLower := strings.ToLower(g.Venue + " " + g.Rink)
		for _, venue := range f.Venues {
			if strings.Contains(venueLower, strings.ToLower(strings.TrimSpace(venue))) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func (f *Filter) matchesTeam(g schedule.Game) bool {
	for _, team := range f.Teams {
		home := normalize.NamesMatch(team, g.Home)
		away := normalize.NamesMatch(team, g.Away)
		switch f.Side {
		case SideHome:
			if home {
				return true
			}
		case SideAway:
			if away {
				return true
			}
		default:
			if home || away {
				return true
			}
		}
	}
	return false
}

// Apply returns the games matching the filter.
// An empty filter returns the input unchanged.
func (f *Filter) Apply(games []schedule.Game) []schedule.Game {
	if f.IsEmpty() {
		return games
	}

	filtered := make([]schedule.Game, 0, len(games))
	for _, g := range games {
		if f.Matches(g) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// String returns a human-readable description of the active criteria.
// Format: "From: Sep 1, 2025 | To: Sep 15, 2025 | Teams: Storm 12u | Home only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}

	if len(f.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(f.Teams, ", ")))
	}

	switch f.Side {
	case SideHome:
		parts = append(parts, "Home only")
	case SideAway:
		parts = append(parts, "Away only")
	}

	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := &Filter{
		Side:         f.Side,
		WeekendsOnly: f.WeekendsOnly,
	}

	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}

	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}

	clone.Teams = append([]string{}, f.Teams...)
	clone.Venues = append([]string{}, f.Venues...)

	return clone
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
