package feed

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/pfrederiksen/league-schedule/internal/logger"
	"github.com/pfrederiksen/league-schedule/internal/normalize"
	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

const locationSeparator = " / "

var (
	awayAtHome     = regexp.MustCompile(`\s+@\s+`)
	awayVersusHome = regexp.MustCompile(`(?i)\s+vs\.?\s+`)
)

// Matchup is the result of splitting an event summary
type Matchup struct {
	Away     string
	Home     string
	GameType string
}

// SplitSummary reads "Away @ Home" (an away game, from the subscriber's
// side) or "Away vs Home" (a home game).
func SplitSummary(summary string) (Matchup, error) {
	summary = strings.TrimSpace(summary)
	if parts := awayAtHome.Split(summary, 2); len(parts) == 2 {
		return matchup(parts, schedule.GameTypeAway)
	}
	if parts := awayVersusHome.Split(summary, 2); len(parts) == 2 {
		return matchup(parts, schedule.GameTypeHome)
	}
	return Matchup{}, fmt.Errorf("summary %q has no @ or vs delimiter", summary)
}

func matchup(parts []string, gameType string) (Matchup, error) {
	m := Matchup{
		Away:     strings.TrimSpace(parts[0]),
		Home:     strings.TrimSpace(parts[1]),
		GameType: gameType,
	}
	if m.Away == "" || m.Home == "" {
		return Matchup{}, fmt.Errorf("summary is missing a team")
	}
	return m, nil
}

// ParseCalendar decodes an iCalendar payload into games sorted by date.
// Start times are converted to loc, the venue timezone.
func ParseCalendar(r io.Reader, q schedule.Query, loc *time.Location, log *logger.Logger) ([]schedule.Game, error) {
	log = logger.OrDefault(log)
	if loc == nil {
		loc = time.UTC
	}

	dec := ical.NewDecoder(r)
	games := make([]schedule.Game, 0)
	calendars := 0
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, schedule.NewError(schedule.CodeFeedUnavailable, "malformed calendar payload").Wrap(err)
		}
		calendars++

		events := cal.Events()
		for i := range events {
			game, err := parseEvent(&events[i], q, loc)
			if err != nil {
				uid, _ := events[i].Props.Text(ical.PropUID)
				logger.IncrCounter("feed.events_skipped")
				log.Warn("Skipping feed event", logger.Fields{
					"uid":    uid,
					"reason": err.Error(),
				})
				continue
			}
			games = append(games, game)
		}
	}
	if calendars == 0 {
		return nil, schedule.NewError(schedule.CodeFeedUnavailable, "feed returned no calendar")
	}

	schedule.SortGames(games)
	return games, nil
}

func parseEvent(ev *ical.Event, q schedule.Query, loc *time.Location) (schedule.Game, error) {
	summary, err := ev.Props.Text(ical.PropSummary)
	if err != nil {
		return schedule.Game{}, fmt.Errorf("reading summary: %w", err)
	}
	m, err := SplitSummary(summary)
	if err != nil {
		return schedule.Game{}, err
	}

	start, err := ev.DateTimeStart(loc)
	if err != nil {
		return schedule.Game{}, fmt.Errorf("reading start: %w", err)
	}
	if start.IsZero() {
		return schedule.Game{}, fmt.Errorf("event has no start")
	}

	// all-day entries carry a venue-local date and no time
	var clock string
	if prop := ev.Props.Get(ical.PropDateTimeStart); prop == nil || prop.ValueType() != ical.ValueDate {
		start = start.In(loc)
		clock = start.Format("15:04")
	}

	location, _ := ev.Props.Text(ical.PropLocation)
	venue, rink := normalize.SplitVenue(location, locationSeparator)

	status, _ := ev.Props.Text(ical.PropStatus)

	game := schedule.Game{
		Date:     start.Format("2006-01-02"),
		Time:     clock,
		Home:     m.Home,
		Away:     m.Away,
		Venue:    venue,
		Rink:     rink,
		Division: eventDivision(ev, m, q),
		Status:   status,
		GameType: m.GameType,
	}
	if err := game.Validate(); err != nil {
		return schedule.Game{}, err
	}
	return game, nil
}

// eventDivision prefers CATEGORIES, then a token in either team name, then the query
func eventDivision(ev *ical.Event, m Matchup, q schedule.Query) string {
	if categories, _ := ev.Props.Text(ical.PropCategories); categories != "" {
		for _, c := range strings.Split(categories, ",") {
			if c = strings.TrimSpace(c); c != "" {
				return c
			}
		}
	}
	for _, team := range []string{m.Home, m.Away} {
		if d := normalize.InferDivision(team); d != "" {
			return d
		}
	}
	return q.DivisionText()
}
