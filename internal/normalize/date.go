package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// AcceptedDateFormats lists the date shapes ParseDate understands, in match order.
var AcceptedDateFormats = []string{
	"Sat Sep 13",
	"MM/DD/YYYY",
	"M/D/YYYY",
	"YYYY-MM-DD",
}

var (
	weekdayDatePattern = regexp.MustCompile(`(?i)^(mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?$`)
	yearPattern        = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	spacePattern       = regexp.MustCompile(`\s+`)
)

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// ParseDate converts a published date into YYYY-MM-DD.
//
// Formats are tried in order and the first match wins:
//  1. "Sat Sep 13" (weekday, month, day), anchored to the season's start year
//  2. "09/13/2025"
//  3. "9/13/2025"
//  4. "2025-09-13" (passthrough)
//
// For the weekday form the start year is used whenever the weekday agrees with it.
// The end year is only chosen when the weekday is wrong for the start year and
// right for the end year, which places January games of a 2025-26 season in 2026.
func ParseDate(text, season string) (string, error) {
	value := spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")

	if m := weekdayDatePattern.FindStringSubmatch(value); m != nil {
		years, ok := seasonYears(season)
		if !ok {
			return "", dateError(text).With("season", season).With("reason", "season year unknown")
		}
		wd := weekdays[strings.ToLower(m[1])]
		month := months[strings.ToLower(m[2])]
		day, _ := strconv.Atoi(m[3])

		if d, ok := anchorDate(years, month, day, wd); ok {
			return d.Format("2006-01-02"), nil
		}
		return "", dateError(text).With("reason", "day out of range")
	}

	for _, layout := range []string{"01/02/2006", "1/2/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return "", dateError(text)
}

func dateError(text string) *schedule.Error {
	return schedule.NewError(schedule.CodeDateUnparseable, "unrecognized date").
		With("value", text).
		With("accepted", strings.Join(AcceptedDateFormats, ", "))
}

// seasonYears reads the year range from a season label, falling back to
// a lone four-digit year.
func seasonYears(season string) (SeasonYears, bool) {
	if years, ok := ParseSeasonID(season); ok {
		return years, true
	}
	if m := yearPattern.FindStringSubmatch(season); m != nil {
		year, _ := strconv.Atoi(m[1])
		return SeasonYears{StartYear: year, EndYear: year}, true
	}
	return SeasonYears{}, false
}

func anchorDate(years SeasonYears, month time.Month, day int, wd time.Weekday) (time.Time, bool) {
	start, startOK := calendarDate(years.StartYear, month, day)
	if startOK && start.Weekday() == wd {
		return start, true
	}
	if years.EndYear != years.StartYear {
		if end, ok := calendarDate(years.EndYear, month, day); ok && end.Weekday() == wd {
			return end, true
		}
	}
	if startOK {
		return start, true
	}
	// Feb 29 only exists in the end year
	if end, ok := calendarDate(years.EndYear, month, day); ok {
		return end, true
	}
	return time.Time{}, false
}

func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
