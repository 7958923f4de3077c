package state

import (
	"errors"
	"fmt"
)

var (
	// ErrPlayerNotFound indicates a lookup for an unknown player name.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrArmyNotFound indicates the (player, army) pair does not exist.
	ErrArmyNotFound = errors.New("army not found")
	// ErrUnitNotFound indicates a unit instance id missing from the
	// expected container.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrTerrainNotFound indicates a terrain name absent from game state.
	ErrTerrainNotFound = errors.New("terrain not found")
	// ErrNoActiveArmy indicates no acting army has been chosen for the
	// current march.
	ErrNoActiveArmy = errors.New("no active army chosen")
)

// MissingFieldError reports a required setup field that was absent or empty.
// Setup parsing fails fast on the first missing field rather than defaulting.
type MissingFieldError struct {
	Context string
	Field   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Context, e.Field)
}

// StateMismatchError reports a transition method invoked outside its valid
// (player, phase, step) tuple. The game state is unchanged when it fires.
type StateMismatchError struct {
	Operation string
	Expected  string
	Actual    string
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, currently %s", e.Operation, e.Expected, e.Actual)
}
