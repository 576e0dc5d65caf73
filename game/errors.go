package game

import "errors"

// ErrGameEnded is returned by ProposeMove once remaining turns reach zero.
var ErrGameEnded = errors.New("game: no turns remaining")

// ErrRedrawAlreadyUsed is returned by RequestRedraw when a team has
// already spent its one-time redraw this game. RequestRedraw's exact
// semantics are implementation-defined per the room action taxonomy; this
// repo grants each team a single mulligan on its current hand.
var ErrRedrawAlreadyUsed = errors.New("game: redraw already used")

// InvalidStateError reports a precondition violation that is a bug in the
// caller (e.g. querying a team that was never dealt a deck), not a
// player-triggered validation failure.
type InvalidStateError string

func (e InvalidStateError) Error() string { return "game: invalid state: " + string(e) }
