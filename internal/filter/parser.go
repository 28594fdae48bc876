package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/league-schedule/internal/normalize"
)

const monthNames = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)`

var (
	sameMonthRange  = regexp.MustCompile(`(?i)^` + monthNames + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRange = regexp.MustCompile(`(?i)^` + monthNames + `\s+(\d{1,2})\s*-\s*` + monthNames + `\s+(\d{1,2})$`)
	wholeMonth      = regexp.MustCompile(`(?i)^` + monthNames + `$`)
)

// seasonTurnover is the first month that belongs to a season's end year.
// Seasons run from late summer to spring.
const seasonTurnover = time.July

// now is replaced in tests
var now = time.Now

// ParseDateRange parses a date range string into start and end times.
//
// Supported formats:
//   - "Sep 1-15" or "September 1-15" - Same month, different days
//   - "Sep 1 - Oct 15" - Different months
//   - "September" - Entire month
//
// With a season, months from July on fall in the start year and earlier
// months in the end year. Without one (zero SeasonYears), a month already
// past this year is taken as next year.
//
// Start time is at 00:00:00, end time is at 23:59:59, both UTC.
func ParseDateRange(input string, season normalize.SeasonYears) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if matches := sameMonthRange.FindStringSubmatch(input); matches != nil {
		month := parseMonth(matches[1])
		day1, err := parseDay(matches[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(matches[3])
		if err != nil {
			return nil, nil, err
		}

		year := yearForMonth(month, season)
		from, err := dayStart(year, month, day1)
		if err != nil {
			return nil, nil, err
		}
		to, err := dayEnd(year, month, day2)
		if err != nil {
			return nil, nil, err
		}
		if from.After(to) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return &from, &to, nil
	}

	if matches := crossMonthRange.FindStringSubmatch(input); matches != nil {
		month1 := parseMonth(matches[1])
		day1, err := parseDay(matches[2])
		if err != nil {
			return nil, nil, err
		}
		month2 := parseMonth(matches[3])
		day2, err := parseDay(matches[4])
		if err != nil {
			return nil, nil, err
		}

		year1 := yearForMonth(month1, season)
		year2 := yearForMonth(month2, season)
		if season.StartYear == 0 && month2 < month1 && year2 == year1 {
			year2++
		}

		from, err := dayStart(year1, month1, day1)
		if err != nil {
			return nil, nil, err
		}
		to, err := dayEnd(year2, month2, day2)
		if err != nil {
			return nil, nil, err
		}
		if from.After(to) {
			return nil, nil, fmt.Errorf("start date must be before end date")
		}
		return &from, &to, nil
	}

	if matches := wholeMonth.FindStringSubmatch(input); matches != nil {
		month := parseMonth(matches[1])
		year := yearForMonth(month, season)
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		// day 0 of the next month is the last day of this one
		to := time.Date(year, month+1, 0, 23, 59, 59, 0, time.UTC)
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use 'Sep 1-15', 'Sep 1 - Oct 15', or 'September'")
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// parseMonth converts a month name to time.Month, 0 when unknown
func parseMonth(name string) time.Month {
	return months[strings.ToLower(strings.TrimSpace(name))]
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("invalid day: %s", s)
	}
	return day, nil
}

// dayStart rejects days the month does not have instead of letting
// time.Date roll them into the next month.
func dayStart(year int, month time.Month, day int) (time.Time, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return time.Time{}, fmt.Errorf("invalid day: %s %d", month, day)
	}
	return t, nil
}

func dayEnd(year int, month time.Month, day int) (time.Time, error) {
	t, err := dayStart(year, month, day)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(24*time.Hour - time.Second), nil
}

func yearForMonth(month time.Month, season normalize.SeasonYears) int {
	if season.StartYear != 0 {
		if month >= seasonTurnover {
			return season.StartYear
		}
		return season.EndYear
	}

	current := now()
	year := current.Year()
	if month < current.Month() {
		year++
	}
	return year
}
