package schedule

import (
	"context"
	"fmt"
	"strings"
)

// Query identifies the schedule to retrieve. The ids drive the source;
// Season and Division are optional human labels used for year anchoring
// and for the Game.Division field.
type Query struct {
	SeasonID   string `json:"seasonId"`
	DivisionID string `json:"divisionId,omitempty"`
	TeamID     string `json:"teamId,omitempty"`
	Season     string `json:"season,omitempty"`
	Division   string `json:"division,omitempty"`
}

// SeasonText returns the label when known and the id otherwise
func (q Query) SeasonText() string {
	if q.Season != "" {
		return q.Season
	}
	return q.SeasonID
}

// DivisionText returns the label when known and the id otherwise
func (q Query) DivisionText() string {
	if q.Division != "" {
		return q.Division
	}
	return q.DivisionID
}

// Source is one acquisition strategy for games. The table and feed paths
// both implement it so the rest of the engine never cares which one ran.
type Source interface {
	FetchGames(ctx context.Context, q Query) ([]Game, error)
}

// Strategy selects a Source
type Strategy string

const (
	StrategyTable Strategy = "table"
	StrategyFeed  Strategy = "feed"
)

// ParseStrategy parses a strategy name, case-insensitively
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyTable:
		return StrategyTable, nil
	case StrategyFeed:
		return StrategyFeed, nil
	default:
		return "", fmt.Errorf("invalid strategy: %s (must be 'table' or 'feed')", s)
	}
}
