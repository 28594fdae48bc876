// Package cli implements the command-line interface for league-schedule.
//
// The cli package provides the Cobra-based CLI with commands to discover
// season/division/team options, list games (text tables or JSON, with
// filters and sorting), look up one team's schedule, and export games as an
// iCalendar file. Every failure is rendered as a structured error payload
// with a code, message, details and alternatives.
package cli
