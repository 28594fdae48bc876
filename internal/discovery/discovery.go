// Package discovery resolves human season and division labels into source
// identifiers and enumerates the options available beneath them.
package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/navigator"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// PageRunner provides one page for the duration of fn and releases it
// afterwards. browser.Manager satisfies it.
type PageRunner interface {
	Run(ctx context.Context, fn func(context.Context, navigator.Page) error) error
}

// Discoverer walks the selection funnel inside a single browser session
type Discoverer struct {
	runner PageRunner
	cfg    navigator.Config
	log    *logger.Logger
}

// New creates a discoverer that navigates with cfg
func New(runner PageRunner, cfg navigator.Config, log *logger.Logger) *Discoverer {
	return &Discoverer{
		runner: runner,
		cfg:    cfg,
		log:    logger.OrDefault(log).With(logger.Fields{"component": "discovery"}),
	}
}

// Discover always returns the season list. When seasonLabel resolves, the
// division list is filled in; when divisionLabel also resolves, the team
// list is too. Unresolved labels are logged and leave the deeper lists empty.
func (d *Discoverer) Discover(ctx context.Context, seasonLabel, divisionLabel string) (schedule.ScheduleOptions, error) {
	start := time.Now()
	defer logger.Since("discovery.discover", start)

	result := schedule.NewScheduleOptions()
	err := d.runner.Run(ctx, func(ctx context.Context, page navigator.Page) error {
		engine := navigator.New(page, d.cfg, d.log)
		if err := engine.Load(ctx, ""); err != nil {
			return err
		}

		seasons, err := engine.Options(ctx, navigator.RoleSeason)
		if err != nil {
			return err
		}
		result.Seasons = seasons
		if seasonLabel == "" {
			return nil
		}

		season, ok := markSelected(result.Seasons, seasonLabel)
		if !ok {
			d.log.Warn("Season label not found", logger.Fields{
				"label":     seasonLabel,
				"available": labels(result.Seasons),
			})
			return nil
		}
		if err := engine.SelectSeason(ctx, season.Value); err != nil {
			return err
		}

		divisions, err := engine.Options(ctx, navigator.RoleDivision)
		if err != nil {
			return err
		}
		result.Divisions = divisions
		if divisionLabel == "" {
			return nil
		}

		division, ok := markSelected(result.Divisions, divisionLabel)
		if !ok {
			d.log.Warn("Division label not found", logger.Fields{
				"label":     divisionLabel,
				"season":    season.Label,
				"available": labels(result.Divisions),
			})
			return nil
		}
		if err := engine.SelectDivision(ctx, division.Value); err != nil {
			return err
		}

		teams, err := engine.Options(ctx, navigator.RoleTeam)
		if err != nil {
			return err
		}
		result.Teams = teams
		return nil
	})
	if err != nil {
		return schedule.ScheduleOptions{}, err
	}

	d.log.Info("Discovery complete", logger.Fields{
		"seasons":   len(result.Seasons),
		"divisions": len(result.Divisions),
		"teams":     len(result.Teams),
	})
	return result, nil
}

// ResolveLabel finds the option whose label equals label case-insensitively,
// falling back to the first label that contains it.
func ResolveLabel(opts []schedule.SelectOption, label string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	if want == "" {
		return -1, false
	}
	for i, o := range opts {
		if strings.ToLower(strings.TrimSpace(o.Label)) == want {
			return i, true
		}
	}
	for i, o := range opts {
		if strings.Contains(strings.ToLower(o.Label), want) {
			return i, true
		}
	}
	return -1, false
}

// markSelected flags the resolved option and clears the rest
func markSelected(opts []schedule.SelectOption, label string) (schedule.SelectOption, bool) {
	idx, ok := ResolveLabel(opts, label)
	if !ok {
		return schedule.SelectOption{}, false
	}
	for i := range opts {
		opts[i].Selected = i == idx
	}
	return opts[idx], true
}

func labels(opts []schedule.SelectOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}
