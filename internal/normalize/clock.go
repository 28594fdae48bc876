package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/league-schedule/internal/schedule"
)

// hour:minute, optional seconds, optional AM/PM marker, optional trailing zone abbreviation
var timeShape = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?\s*(?:([AaPp])\.?[Mm]\.?)?(?:\s+[A-Za-z]{2,5})?$`)

var trailingTime = regexp.MustCompile(`^(.*?)[\s,]+(\d{1,2}:\d{2}(?::\d{2})?\s*(?:[AaPp]\.?[Mm]\.?)?(?:\s+[A-Z]{2,5})?)$`)

// ParseTime converts a published time into zero-padded 24-hour HH:MM.
//
// "7:15AM PDT" -> "07:15", "12:00PM" -> "12:00", "12:00AM" -> "00:00", "19:15" -> "19:15".
func ParseTime(text string) (string, error) {
	value := spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")

	m := timeShape.FindStringSubmatch(value)
	if m == nil {
		return "", timeError(text)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return "", timeError(text)
	}

	if marker := strings.ToLower(m[3]); marker != "" {
		if hour < 1 || hour > 12 {
			return "", timeError(text)
		}
		switch {
		case marker == "a" && hour == 12:
			hour = 0
		case marker == "p" && hour != 12:
			hour += 12
		}
	} else if hour > 23 {
		return "", timeError(text)
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func timeError(text string) *schedule.Error {
	return schedule.NewError(schedule.CodeTimeUnparseable, "unrecognized time").
		With("value", text).
		With("accepted", "H:MM, HH:MM, H:MM AM/PM")
}

// SplitDateTime separates a trailing time from a date cell such as
// "Sat Sep 13 7:15 PM". The time is empty when none is present.
func SplitDateTime(text string) (string, string) {
	value := spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")
	if m := trailingTime.FindStringSubmatch(value); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return value, ""
}
