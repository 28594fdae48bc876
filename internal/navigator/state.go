package navigator

import (
	"errors"
	"fmt"
)

// State is the position of the engine in the selection funnel
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateSeasonSelected
	StateDivisionSelected
	StateTeamSelected
	StateAllTeams
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "Unloaded"
	case StateLoaded:
		return "Loaded"
	case StateSeasonSelected:
		return "SeasonSelected"
	case StateDivisionSelected:
		return "DivisionSelected"
	case StateTeamSelected:
		return "TeamSelected"
	case StateAllTeams:
		return "AllTeams"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a step is taken out of funnel order
var ErrInvalidTransition = errors.New("invalid navigation transition")

func transitionError(from, to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
