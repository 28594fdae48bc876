package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/navigator"
	"github.com/pfrederiksen/league-schedule/internal/normalize"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// PageRunner provides a page for the duration of fn. browser.Manager satisfies it.
type PageRunner interface {
	Run(ctx context.Context, fn func(context.Context, navigator.Page) error) error
}

// TableSource reads games from the rendered results table
type TableSource struct {
	runner PageRunner
	cfg    navigator.Config
	log    *logger.Logger
}

var _ schedule.Source = (*TableSource)(nil)

// ErrTeamWithoutDivision is returned when a team id is given without its division
var ErrTeamWithoutDivision = errors.New("team id requires a division id")

// NewTableSource creates a table source that navigates with cfg
func NewTableSource(runner PageRunner, cfg navigator.Config, log *logger.Logger) *TableSource {
	return &TableSource{
		runner: runner,
		cfg:    cfg,
		log:    logger.OrDefault(log).With(logger.Fields{"component": "scraper"}),
	}
}

// FetchGames loads the season by URL, selects the division and team when
// given, and parses the results table. Games come back sorted by date.
func (s *TableSource) FetchGames(ctx context.Context, q schedule.Query) ([]schedule.Game, error) {
	if q.SeasonID == "" {
		return nil, fmt.Errorf("season id is required")
	}
	if q.TeamID != "" && q.DivisionID == "" {
		return nil, ErrTeamWithoutDivision
	}

	start := time.Now()
	defer logger.Since("scraper.fetch", start)

	var html string
	season, division := q.SeasonText(), q.DivisionText()
	err := s.runner.Run(ctx, func(ctx context.Context, page navigator.Page) error {
		engine := navigator.New(page, s.cfg, s.log)
		if err := engine.Load(ctx, q.SeasonID); err != nil {
			return err
		}
		if _, ok := normalize.ParseSeasonID(season); !ok {
			label, err := s.optionLabel(ctx, engine, navigator.RoleSeason, q.SeasonID)
			if err != nil {
				return err
			}
			if label != "" {
				season = label
			}
		}
		if q.DivisionID != "" {
			if err := engine.SelectDivision(ctx, q.DivisionID); err != nil {
				return err
			}
			if q.Division == "" {
				label, err := s.optionLabel(ctx, engine, navigator.RoleDivision, q.DivisionID)
				if err != nil {
					return err
				}
				if label != "" {
					division = label
				}
			}
			if err := engine.SelectTeam(ctx, q.TeamID); err != nil {
				return err
			}
		}

		var err error
		html, err = engine.HTML(ctx)
		if err != nil {
			return fmt.Errorf("reading rendered page: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	games, err := ParseGames(strings.NewReader(html), division, season, s.log)
	if err != nil {
		return nil, err
	}
	schedule.SortGames(games)

	s.log.Info("Extracted games from table", logger.Fields{
		"season":   q.SeasonID,
		"division": q.DivisionID,
		"team":     q.TeamID,
		"games":    len(games),
	})
	return games, nil
}

// optionLabel reads the label of the loaded value from the role's control:
// the option carrying value, else the selected one. Id-only queries parse
// dates and divisions against these labels.
func (s *TableSource) optionLabel(ctx context.Context, engine *navigator.Engine, role navigator.Role, value string) (string, error) {
	opts, err := engine.Options(ctx, role)
	if err != nil {
		return "", fmt.Errorf("reading %s options: %w", role, err)
	}
	selected := ""
	for _, o := range opts {
		if o.Value == value {
			return o.Label, nil
		}
		if o.Selected && selected == "" {
			selected = o.Label
		}
	}
	if selected == "" {
		s.log.Warn("Control label not found on page", logger.Fields{"role": string(role), "value": value})
	}
	return selected, nil
}
