package room

import "errors"

var (
	// ErrRoomNotFound is returned by the registry when a room code is
	// unknown. The connection handler closes with code 4000 on this error
	// before any room state is touched.
	ErrRoomNotFound = errors.New("room: not found")

	// ErrUserNotRoomOwner is returned by an owner-only action invoked by a
	// non-owner member.
	ErrUserNotRoomOwner = errors.New("room: user is not the room owner")

	// ErrUserNotPlaying is returned by a player-only action invoked by a
	// member who is neither the owner (Alpha) nor the opponent (Bravo).
	ErrUserNotPlaying = errors.New("room: user is not a player in this room")

	// ErrMissingOpponent is returned by StartGame when the room has no
	// opponent yet.
	ErrMissingOpponent = errors.New("room: no opponent present")

	// ErrRoomStarted is returned by StartGame when a game is already
	// underway or finished.
	ErrRoomStarted = errors.New("room: game already started")

	// ErrRoomNotStarted is returned by ProposeMove and RequestRedraw
	// outside InGame (Lobby or PostGame), and by ReturnToRoom in Lobby.
	ErrRoomNotStarted = errors.New("room: game has not started")

	// ErrGameInProgress is returned by ReturnToRoom while the match is
	// still InGame (neither Lobby nor PostGame). Not one of spec.md §6's
	// named error kinds; a natural supplement for an edge case the
	// upstream taxonomy doesn't single out.
	ErrGameInProgress = errors.New("room: game still in progress")

	// ErrDecksNotChosen is returned by StartGame when either player has
	// not submitted a deck.
	ErrDecksNotChosen = errors.New("room: one or both players have not chosen a deck")

	// ErrMapNotFound is returned by SetMap, or by StartGame when the
	// chosen map id has since become invalid.
	ErrMapNotFound = errors.New("room: map not found")

	// ErrIncorrectDeckSize is returned by SetDeck when cards does not
	// contain exactly game.DeckSize entries.
	ErrIncorrectDeckSize = errors.New("room: deck must contain exactly DeckSize cards")

	// ErrCardNotFound is returned by SetDeck when a submitted card name is
	// not in the catalog.
	ErrCardNotFound = errors.New("room: card not found in catalog")

	// ErrRoomFull is returned by Join when the room is already at its
	// configured membership cap.
	ErrRoomFull = errors.New("room: room is full")

	// ErrInvalidConfig is returned by SetConfig for a config that would
	// violate a room invariant (e.g. a cap below 2 members).
	ErrInvalidConfig = errors.New("room: invalid config")
)

// GameError wraps a game package error (move validation, game-state
// precondition) for transport back to the client as {code, detail}.
type GameError struct {
	Err error
}

func (e GameError) Error() string { return "room: game error: " + e.Err.Error() }
func (e GameError) Unwrap() error { return e.Err }
