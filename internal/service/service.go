// Package service is the produced interface of the engine: option
// discovery, game retrieval by strategy, and per-team schedules.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/lookup"
	"github.com/pfrederiksen/league-schedule/internal/normalize"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// MaxAlternatives caps the suggestions attached to a TeamNotFound error
const MaxAlternatives = 5

// Discoverer enumerates the selection funnel. discovery.Discoverer satisfies it.
type Discoverer interface {
	Discover(ctx context.Context, seasonLabel, divisionLabel string) (schedule.ScheduleOptions, error)
}

// Resolver maps labels to ids and back. *lookup.Table satisfies it.
type Resolver interface {
	Resolve(seasonLabel, divisionLabel string) (seasonID, divisionID string, err error)
	SeasonLabel(id string) string
	DivisionLabel(seasonID, id string) string
}

// Options wires a Service. Any component may be nil; operations that need
// a missing one fail with InvalidRequest.
type Options struct {
	Discoverer      Discoverer
	Table           schedule.Source
	Feed            schedule.Source
	Lookup          Resolver
	DefaultStrategy schedule.Strategy
	Logger          *logger.Logger
}

// Service fronts discovery and the two game sources
type Service struct {
	discoverer      Discoverer
	sources         map[schedule.Strategy]schedule.Source
	lookup          Resolver
	defaultStrategy schedule.Strategy
	log             *logger.Logger
}

// GamesRequest selects a schedule. Ids win over labels; labels alone are
// resolved through the lookup table.
type GamesRequest struct {
	SeasonID   string            `json:"seasonId,omitempty"`
	DivisionID string            `json:"divisionId,omitempty"`
	TeamID     string            `json:"teamId,omitempty"`
	Strategy   schedule.Strategy `json:"strategy,omitempty"`
	Season     string            `json:"season,omitempty"`
	Division   string            `json:"division,omitempty"`
}

// New creates a Service
func New(opts Options) *Service {
	sources := make(map[schedule.Strategy]schedule.Source)
	if opts.Table != nil {
		sources[schedule.StrategyTable] = opts.Table
	}
	if opts.Feed != nil {
		sources[schedule.StrategyFeed] = opts.Feed
	}
	strategy := opts.DefaultStrategy
	if strategy == "" {
		strategy = schedule.StrategyTable
	}
	return &Service{
		discoverer:      opts.Discoverer,
		sources:         sources,
		lookup:          opts.Lookup,
		defaultStrategy: strategy,
		log:             logger.OrDefault(opts.Logger).With(logger.Fields{"component": "service"}),
	}
}

// DiscoverOptions returns the seasons, plus divisions and teams for the
// labels that resolve.
func (s *Service) DiscoverOptions(ctx context.Context, seasonLabel, divisionLabel string) (schedule.ScheduleOptions, error) {
	if s.discoverer == nil {
		return schedule.ScheduleOptions{}, schedule.NewError(schedule.CodeInvalidRequest, "discovery is not configured")
	}
	return s.discoverer.Discover(ctx, seasonLabel, divisionLabel)
}

// ResolveIDs maps season and division labels to ids through the lookup table
func (s *Service) ResolveIDs(seasonLabel, divisionLabel string) (string, string, error) {
	if s.lookup == nil {
		return "", "", schedule.NewError(schedule.CodeInvalidRequest, "no lookup table is configured").
			With("season", seasonLabel).
			With("division", divisionLabel)
	}
	seasonID, divisionID, err := s.lookup.Resolve(seasonLabel, divisionLabel)
	if err != nil {
		e := schedule.NewError(schedule.CodeInvalidRequest, "label lookup failed").
			With("season", seasonLabel).
			With("division", divisionLabel).
			Wrap(err)
		var ambiguous *lookup.AmbiguousError
		if errors.As(err, &ambiguous) {
			e.Alternatives = ambiguous.Seasons
		}
		return "", "", e
	}
	return seasonID, divisionID, nil
}

// GetGames retrieves the schedule with the requested strategy. An empty
// result is NoScheduleData rather than an empty list.
func (s *Service) GetGames(ctx context.Context, req GamesRequest) ([]schedule.Game, error) {
	start := time.Now()
	defer logger.Since("service.get_games", start)

	q, err := s.query(req)
	if err != nil {
		return nil, err
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = s.defaultStrategy
	}
	src, ok := s.sources[strategy]
	if !ok {
		return nil, schedule.NewError(schedule.CodeInvalidRequest, "strategy is not configured").
			With("strategy", string(strategy))
	}

	log := s.log.With(logger.Fields{"strategy": string(strategy), "season_id": q.SeasonID, "division_id": q.DivisionID})
	games, err := src.FetchGames(ctx, q)
	if err != nil {
		log.Error("Fetching games failed", nil, err)
		return nil, err
	}
	if len(games) == 0 {
		return nil, schedule.NewError(schedule.CodeNoScheduleData, "no games found").
			With("seasonId", q.SeasonID).
			With("divisionId", q.DivisionID).
			With("teamId", q.TeamID).
			With("strategy", string(strategy))
	}

	log.Info("Fetched games", logger.Fields{"games": len(games)})
	return games, nil
}

// TeamSchedule returns the games in which teamName plays, matched loosely.
// When nothing matches, the error lists the closest team names.
func (s *Service) TeamSchedule(ctx context.Context, req GamesRequest, teamName string) ([]schedule.Game, error) {
	if strings.TrimSpace(teamName) == "" {
		return nil, schedule.NewError(schedule.CodeInvalidRequest, "team name is required")
	}

	games, err := s.GetGames(ctx, req)
	if err != nil {
		return nil, err
	}

	matched := make([]schedule.Game, 0)
	for _, g := range games {
		if normalize.NamesMatch(teamName, g.Home) || normalize.NamesMatch(teamName, g.Away) {
			matched = append(matched, g)
		}
	}
	if len(matched) == 0 {
		e := schedule.NewError(schedule.CodeTeamNotFound, "no games for team").With("team", teamName)
		e.Alternatives = RankAlternatives(teamName, schedule.Teams(games), MaxAlternatives)
		return nil, e
	}
	return matched, nil
}

func (s *Service) query(req GamesRequest) (schedule.Query, error) {
	q := schedule.Query{
		SeasonID:   strings.TrimSpace(req.SeasonID),
		DivisionID: strings.TrimSpace(req.DivisionID),
		TeamID:     strings.TrimSpace(req.TeamID),
		Season:     strings.TrimSpace(req.Season),
		Division:   strings.TrimSpace(req.Division),
	}

	if (q.SeasonID == "" && q.Season != "") || (q.DivisionID == "" && q.Division != "") {
		seasonLabel := q.SeasonID
		if seasonLabel == "" {
			seasonLabel = q.Season
		}
		divisionLabel := ""
		if q.DivisionID == "" {
			divisionLabel = q.Division
		}
		seasonID, divisionID, err := s.ResolveIDs(seasonLabel, divisionLabel)
		if err != nil {
			return schedule.Query{}, err
		}
		if q.SeasonID == "" {
			q.SeasonID = seasonID
		}
		if q.DivisionID == "" {
			q.DivisionID = divisionID
		}
	}

	if q.SeasonID == "" {
		return schedule.Query{}, schedule.NewError(schedule.CodeInvalidRequest, "a season id or season label is required")
	}

	// sources read the season year range from the label, so id-only
	// requests borrow it from the lookup table when one is configured
	if s.lookup != nil {
		if q.Season == "" {
			q.Season = s.lookup.SeasonLabel(q.SeasonID)
		}
		if q.Division == "" && q.DivisionID != "" {
			q.Division = s.lookup.DivisionLabel(q.SeasonID, q.DivisionID)
		}
	}
	return q, nil
}

// RankAlternatives orders candidates by Jaro-Winkler similarity to name,
// most similar first, keeping at most limit of them.
func RankAlternatives(name string, candidates []string, limit int) []string {
	type scored struct {
		name  string
		score float64
	}
	target := normalize.NormalizeTeamName(name)
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{name: c, score: matchr.JaroWinkler(target, normalize.NormalizeTeamName(c), false)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.name
	}
	return out
}
