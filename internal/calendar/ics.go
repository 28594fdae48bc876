// Package calendar exports games as an iCalendar (.ics) document.
package calendar

import (
	"crypto/sha1"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

const (
	ProductID       = "-//League Schedule//league-schedule//EN"
	DefaultDuration = 75 * time.Minute
	uidDomain       = "league-schedule"
)

// Options controls how games become events
type Options struct {
	Name     string         // calendar display name
	Location *time.Location // zone the game times are in; nil means UTC
	Duration time.Duration  // length of a timed game
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// GenerateICS renders games as an iCalendar document
func GenerateICS(games []schedule.Game, opts Options) (string, error) {
	var b strings.Builder
	if err := Encode(&b, games, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Encode writes games to w as one VCALENDAR. Games without a time become
// all-day events.
func Encode(w io.Writer, games []schedule.Game, opts Options) error {
	if len(games) == 0 {
		return fmt.Errorf("no games to export")
	}
	opts = opts.withDefaults()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	if opts.Name != "" {
		name := ical.NewProp("X-WR-CALNAME")
		name.Value = opts.Name
		cal.Props.Set(name)
	}

	stamp := opts.Now().UTC()
	for _, g := range games {
		ev, err := gameEvent(g, opts, stamp)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, ev)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func gameEvent(g schedule.Game, opts Options, stamp time.Time) (*ical.Component, error) {
	day, err := time.ParseInLocation("2006-01-02", g.Date, opts.Location)
	if err != nil {
		return nil, fmt.Errorf("game %s vs %s: invalid date %q", g.Away, g.Home, g.Date)
	}

	ev := ical.NewComponent(ical.CompEvent)
	ev.Props.SetText(ical.PropUID, GameUID(g))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ev.Props.SetText(ical.PropSummary, fmt.Sprintf("%s @ %s", g.Away, g.Home))

	if g.Time == "" {
		ev.Props.SetDate(ical.PropDateTimeStart, day)
		ev.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	} else {
		clock, err := time.Parse("15:04", g.Time)
		if err != nil {
			return nil, fmt.Errorf("game %s vs %s: invalid time %q", g.Away, g.Home, g.Time)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, opts.Location)
		ev.Props.SetDateTime(ical.PropDateTimeStart, start)
		ev.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(opts.Duration))
	}

	if loc := location(g); loc != "" {
		ev.Props.SetText(ical.PropLocation, loc)
	}
	ev.Props.SetText(ical.PropDescription, description(g))
	if g.Division != "" {
		ev.Props.SetText(ical.PropCategories, g.Division)
	}
	ev.Props.SetText(ical.PropStatus, eventStatus(g.Status))
	ev.Props.SetText(ical.PropTransparency, "OPAQUE")
	return ev, nil
}

// GameUID is stable for the same matchup at the same slot, so re-exports
// update events instead of duplicating them.
func GameUID(g schedule.Game) string {
	h := sha1.New()
	h.Write([]byte(strings.Join([]string{
		g.Date, g.Time, strings.ToLower(g.Home), strings.ToLower(g.Away),
	}, "|")))
	return fmt.Sprintf("%x@%s", h.Sum(nil)[:8], uidDomain)
}

func location(g schedule.Game) string {
	switch {
	case g.Venue != "" && g.Rink != "":
		return g.Venue + " - " + g.Rink
	default:
		return g.Venue
	}
}

func description(g schedule.Game) string {
	lines := []string{fmt.Sprintf("%s at %s", g.Away, g.Home)}
	if g.Division != "" {
		lines = append(lines, "Division: "+g.Division)
	}
	if g.Status != "" {
		lines = append(lines, "Status: "+g.Status)
	}
	return strings.Join(lines, "\n")
}

// eventStatus maps a source status onto the three values RFC 5545 allows
func eventStatus(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "cancel"):
		return "CANCELLED"
	case strings.Contains(s, "postpone"), strings.Contains(s, "tentative"), strings.Contains(s, "tbd"):
		return "TENTATIVE"
	default:
		return "CONFIRMED"
	}
}
