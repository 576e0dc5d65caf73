package wire

// Position mirrors game.Position for the wire: a signed board coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SetMapArgs is the payload of the SetMap action.
type SetMapArgs struct {
	MapID string `json:"mapId"`
}

// SetConfigArgs is the payload of the SetConfig action. Its shape mirrors
// room.RoomConfig exactly, so it can be decoded straight into one.
type SetConfigArgs struct {
	MaxMembers int `json:"maxMembers"`
}

// SetDeckArgs is the payload of the SetDeck action.
type SetDeckArgs struct {
	ID    string   `json:"id"`
	Cards []string `json:"cards"`
}

// MoveKind tags the PlaceCard/Pass variants of ProposeMoveArgs.
const (
	MoveKindPlaceCard = "PlaceCard"
	MoveKindPass      = "Pass"
)

// ProposeMoveArgs is the payload of the ProposeMove action: a flattened
// tagged union of PlaceCard{card, position, rotation, special} and
// Pass{card}, discriminated by Kind.
type ProposeMoveArgs struct {
	Kind     string   `json:"kind"`
	Card     string   `json:"card"`
	Position Position `json:"position,omitempty"`
	Rotation int      `json:"rotation,omitempty"`
	Special  bool     `json:"special,omitempty"`
}

// StartGame, ReturnToRoom, RequestRedraw and Ping carry no args.
