// Package schedule defines the canonical records produced by the league schedule engine.
//
// Seasons, divisions and teams are discovered from the source site as SelectOption
// triples, and games from either acquisition strategy are normalized into Game values.
// The package also carries the error taxonomy shared by every pipeline so callers can
// map failures to structured payloads with errors.Is and AsError.
package schedule
