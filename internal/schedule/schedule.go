package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Season is a league period spanning two calendar years
type Season struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	StartYear int    `json:"startYear,omitempty"`
	EndYear   int    `json:"endYear,omitempty"`
}

// Division is an age/skill bracket within a season
type Division struct {
	ID         string `json:"id"`
	AgeGroup   string `json:"ageGroup"`
	SkillLevel string `json:"skillLevel"`
	Season     string `json:"season"`
}

// Team is a participant as published by the source
type Team struct {
	Name     string `json:"name"`
	Division string `json:"division"`
	Season   string `json:"season"`
}

// SelectOption is an (id, label) pair exposed by a selection control.
// Selected is a projection set during discovery, not a source of truth.
type SelectOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ScheduleOptions is the progressively populated result of discovery
type ScheduleOptions struct {
	Seasons   []SelectOption `json:"seasons"`
	Divisions []SelectOption `json:"divisions"`
	Teams     []SelectOption `json:"teams"`
}

// NewScheduleOptions returns options with non-nil empty lists so they encode as [] rather than null.
func NewScheduleOptions() ScheduleOptions {
	return ScheduleOptions{
		Seasons:   []SelectOption{},
		Divisions: []SelectOption{},
		Teams:     []SelectOption{},
	}
}

// Game is a single scheduled game in canonical form
type Game struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM, 24h, venue-local
	Home     string `json:"home"`
	Away     string `json:"away"`
	Venue    string `json:"venue"`
	Division string `json:"division"`
	Status   string `json:"status,omitempty"`
	Rink     string `json:"rink,omitempty"`
	GameType string `json:"gameType,omitempty"`
}

// Game types set by the feed parser from the summary delimiter
const (
	GameTypeHome = "home"
	GameTypeAway = "away"
)

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// headerTokens are generic column captions that must never be emitted as team names
var headerTokens = map[string]bool{
	"home":      true,
	"away":      true,
	"team":      true,
	"visitor":   true,
	"home team": true,
	"away team": true,
}

// IsHeaderToken reports whether s is a generic column caption rather than a team name.
func IsHeaderToken(s string) bool {
	return headerTokens[strings.ToLower(strings.TrimSpace(s))]
}

// Validate checks the required fields and formats of a game
func (g Game) Validate() error {
	if _, err := time.Parse("2006-01-02", g.Date); err != nil {
		return fmt.Errorf("invalid date %q", g.Date)
	}
	if g.Time != "" && !timePattern.MatchString(g.Time) {
		return fmt.Errorf("invalid time %q", g.Time)
	}
	if strings.TrimSpace(g.Home) == "" || IsHeaderToken(g.Home) {
		return fmt.Errorf("invalid home team %q", g.Home)
	}
	if strings.TrimSpace(g.Away) == "" || IsHeaderToken(g.Away) {
		return fmt.Errorf("invalid away team %q", g.Away)
	}
	if strings.EqualFold(strings.TrimSpace(g.Home), strings.TrimSpace(g.Away)) {
		return fmt.Errorf("home and away are the same team %q", g.Home)
	}
	if strings.TrimSpace(g.Division) == "" {
		return fmt.Errorf("missing division")
	}
	return nil
}

// Teams returns the distinct team names appearing in games, in first-seen order.
func Teams(games []Game) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, g := range games {
		for _, name := range []string{g.Home, g.Away} {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
