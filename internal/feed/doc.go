// Package feed fetches schedules from the league's calendar-subscription
// endpoint and parses the iCalendar payload into games.
//
// The feed path needs no browser: one bounded GET keyed by the resolved
// season, division and team ids. Events that cannot be parsed are logged
// and skipped.
package feed
