package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/league-schedule/internal/calendar"
	"github.com/pfrederiksen/league-schedule/internal/filter"
	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/normalize"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
	"github.com/pfrederiksen/league-schedule/internal/service"
)

// requestFlags select a schedule
type requestFlags struct {
	seasonID   string
	divisionID string
	teamID     string
	season     string
	division   string
	strategy   string
}

func (r *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.seasonID, "season-id", "", "Season id")
	cmd.Flags().StringVar(&r.divisionID, "division-id", "", "Division id")
	cmd.Flags().StringVar(&r.teamID, "team-id", "", "Team id (table strategy needs a division)")
	cmd.Flags().StringVar(&r.season, "season", "", "Season label, e.g. '2025-26 Tier 1'")
	cmd.Flags().StringVar(&r.division, "division", "", "Division label, e.g. '12u AA'")
	cmd.Flags().StringVar(&r.strategy, "strategy", "", "Retrieval strategy: table or feed (or env: SCHEDULE_STRATEGY)")
}

func (r *requestFlags) request() (service.GamesRequest, error) {
	req := service.GamesRequest{
		SeasonID:   strings.TrimSpace(r.seasonID),
		DivisionID: strings.TrimSpace(r.divisionID),
		TeamID:     strings.TrimSpace(r.teamID),
		Season:     strings.TrimSpace(r.season),
		Division:   strings.TrimSpace(r.division),
	}
	if r.strategy != "" {
		strategy, err := schedule.ParseStrategy(r.strategy)
		if err != nil {
			return service.GamesRequest{}, err
		}
		req.Strategy = strategy
	}
	return req, nil
}

// filterFlags narrow and order the retrieved games
type filterFlags struct {
	teams    []string
	dates    string
	side     string
	venues   []string
	weekends bool
	sort     string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.teams, "filter-team", nil, "Only games involving these teams (repeatable)")
	cmd.Flags().StringVar(&f.dates, "dates", "", "Date range: 'Sep 1-15', 'Sep 1 - Oct 15' or 'September'")
	cmd.Flags().StringVar(&f.side, "side", "", "Only home or away games of the filtered team")
	cmd.Flags().StringSliceVar(&f.venues, "venue", nil, "Only games at venues containing this text (repeatable)")
	cmd.Flags().BoolVar(&f.weekends, "weekends", false, "Only Saturday and Sunday games")
}

func (f *filterFlags) bindSort(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sort, "sort", string(SortByDate), "Sort order: date, team or venue")
}

// build turns the flags into a filter. Date ranges are anchored to the
// season of the request, or to the season the games fall in.
func (f *filterFlags) build(req service.GamesRequest, games []schedule.Game) (*filter.Filter, error) {
	flt := filter.NewFilter()
	flt.Teams = append(flt.Teams, f.teams...)
	flt.Venues = append(flt.Venues, f.venues...)
	flt.WeekendsOnly = f.weekends

	side, err := filter.ParseSide(f.side)
	if err != nil {
		return nil, err
	}
	flt.Side = side

	if f.dates != "" {
		from, to, err := filter.ParseDateRange(f.dates, seasonYears(req, games))
		if err != nil {
			return nil, err
		}
		flt.DateFrom, flt.DateTo = from, to
	}
	return flt, nil
}

// seasonYears reads the years from the season label or id, falling back to
// the earliest game: a game from July on opens a season, earlier ones close it.
func seasonYears(req service.GamesRequest, games []schedule.Game) normalize.SeasonYears {
	for _, text := range []string{req.Season, req.SeasonID} {
		if years, ok := normalize.ParseSeasonID(text); ok {
			return years
		}
	}

	earliest := ""
	for _, g := range games {
		if earliest == "" || g.Date < earliest {
			earliest = g.Date
		}
	}
	first, err := time.Parse("2006-01-02", earliest)
	if err != nil {
		return normalize.SeasonYears{}
	}
	start := first.Year()
	if first.Month() < time.July {
		start--
	}
	return normalize.SeasonYears{StartYear: start, EndYear: start + 1}
}

func (a *app) discoverCmd() *cobra.Command {
	var season, division string
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the season, division and team options",
		Long: `Lists the seasons offered by the schedule site. With --season the
divisions of that season are listed too, and with --division its teams.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			opts, err := svc.DiscoverOptions(cmd.Context(), season, division)
			if err != nil {
				return err
			}
			return WriteOptions(a.stdout, opts, a.output)
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season label to expand")
	cmd.Flags().StringVar(&division, "division", "", "Division label to expand (needs --season)")
	return cmd
}

func (a *app) gamesCmd() *cobra.Command {
	var req requestFlags
	var flt filterFlags
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Retrieve the games of a season, division or team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGames(cmd, &req, &flt, "")
		},
	}
	req.bind(cmd)
	flt.bind(cmd)
	flt.bindSort(cmd)
	return cmd
}

func (a *app) teamCmd() *cobra.Command {
	var req requestFlags
	var flt filterFlags
	cmd := &cobra.Command{
		Use:   "team <name>",
		Short: "Retrieve the schedule of one team by name",
		Long: `Retrieves the division schedule and keeps the games of the named team.
Names match loosely ("storm 12u" finds "Las Vegas Storm 12u AA"); when
nothing matches, the closest team names are suggested.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGames(cmd, &req, &flt, args[0])
		},
	}
	req.bind(cmd)
	flt.bind(cmd)
	flt.bindSort(cmd)
	return cmd
}

func (a *app) runGames(cmd *cobra.Command, rf *requestFlags, ff *filterFlags, team string) error {
	order, err := ParseSortOrder(ff.sort)
	if err != nil {
		return err
	}
	req, err := rf.request()
	if err != nil {
		return err
	}
	games, err := a.fetch(cmd, req, team)
	if err != nil {
		return err
	}

	flt, err := ff.build(req, games)
	if err != nil {
		return err
	}
	games = flt.Apply(games)
	sortGames(games, order)

	strategy := req.Strategy
	if strategy == "" {
		strategy = a.cfg.Strategy
	}
	result := &GamesResult{
		Query: schedule.Query{
			SeasonID:   req.SeasonID,
			DivisionID: req.DivisionID,
			TeamID:     req.TeamID,
			Season:     req.Season,
			Division:   req.Division,
		},
		Strategy:  string(strategy),
		Team:      team,
		GameCount: len(games),
		Games:     games,
	}
	if !flt.IsEmpty() {
		result.Filter = flt.String()
	}
	return WriteGames(a.stdout, result, a.output, a.verbose)
}

func (a *app) fetch(cmd *cobra.Command, req service.GamesRequest, team string) ([]schedule.Game, error) {
	svc, err := a.service()
	if err != nil {
		return nil, err
	}
	if team != "" {
		return svc.TeamSchedule(cmd.Context(), req, team)
	}
	return svc.GetGames(cmd.Context(), req)
}

func (a *app) exportCmd() *cobra.Command {
	var req requestFlags
	var flt filterFlags
	var team, output, name string
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export games as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := req.request()
			if err != nil {
				return err
			}
			games, err := a.fetch(cmd, r, team)
			if err != nil {
				return err
			}
			f, err := flt.build(r, games)
			if err != nil {
				return err
			}
			games = f.Apply(games)
			if len(games) == 0 {
				return schedule.NewError(schedule.CodeNoScheduleData, "no games left after filtering").With("filter", f.String())
			}
			schedule.SortGames(games)

			loc, err := time.LoadLocation(a.cfg.Feed.Timezone)
			if err != nil {
				return fmt.Errorf("loading timezone %q: %w", a.cfg.Feed.Timezone, err)
			}
			if name == "" {
				name = calendarName(r, team)
			}
			opts := calendar.Options{Name: name, Location: loc, Duration: duration}

			if output == "" || output == "-" {
				return calendar.Encode(a.stdout, games, opts)
			}
			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := calendar.Encode(out, games, opts); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			a.log.Info("Exported calendar", logger.Fields{"file": output, "games": len(games)})
			return nil
		},
	}
	req.bind(cmd)
	flt.bind(cmd)
	cmd.Flags().StringVar(&team, "team", "", "Only export this team's games")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, '-' for stdout")
	cmd.Flags().StringVar(&name, "name", "", "Calendar name")
	cmd.Flags().DurationVar(&duration, "duration", calendar.DefaultDuration, "Length of a timed game")
	return cmd
}

func calendarName(req service.GamesRequest, team string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{team, req.Division, req.Season} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "League Schedule"
	}
	return strings.Join(parts, " - ")
}
