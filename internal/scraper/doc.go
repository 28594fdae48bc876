// Package scraper extracts games from the rendered schedule page.
//
// TableSource drives the navigation funnel to the requested season, division
// and team, then hands the page HTML to ParseGames. ParseGames finds the
// results table by its header, maps columns to roles by header text rather
// than position, and parses each row on its own: a bad row is logged and
// skipped, while a missing table or a missing required column aborts.
package scraper
