// Package room implements the named lobby/match container: membership,
// owner/opponent role assignment, and the Lobby -> InGame -> PostGame
// lifecycle wrapped around a game.GameState. A Room holds no mutex or
// background goroutine of its own; RoomRegistry serializes every action
// against it with a single registry-wide lock (see registry.go).
package room

import (
	"math/rand"
	"sort"
	"time"

	"github.com/inkfarer/Tableturfer/catalog"
	"github.com/inkfarer/Tableturfer/game"
	"github.com/inkfarer/Tableturfer/internal/wire"
)

// DefaultMaxMembers is used for a room whose owner never calls SetConfig.
// Two seats for the active players plus headroom for a handful of
// spectators, mirroring the teacher's table.DefaultConfig player cap.
const DefaultMaxMembers = 8

// Phase is the room's position in its Lobby -> InGame -> PostGame lifecycle.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInGame
	PhasePostGame
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "Lobby"
	case PhaseInGame:
		return "InGame"
	case PhasePostGame:
		return "PostGame"
	default:
		return "Unknown"
	}
}

// RoomConfig is the implementation-defined payload of SetConfig/ConfigUpdate
// (spec.md §9 leaves its shape open). MaxMembers caps total room membership,
// not just the two active players.
type RoomConfig struct {
	MaxMembers int `json:"maxMembers"`
}

// Sender delivers one outbound event to a single connected member. The
// registry/gateway supplies one per member at Join time; Room never touches
// a network connection directly.
type Sender func(wire.Outbound)

// Member is one room participant: a seat in membership, not necessarily one
// of the two active players.
type Member struct {
	ID       string
	Username string
	JoinedAt time.Time
	DeckID   string
	Deck     []string
}

func (m *Member) detail() wire.UserDetail {
	return wire.UserDetail{ID: m.ID, Username: m.Username, JoinedAt: m.JoinedAt.UnixMilli()}
}

// Room is one named game lobby/match, keyed by its registry code.
type Room struct {
	Code       string
	OwnerID    string
	OpponentID string
	MapID      string
	Config     RoomConfig

	members map[string]*Member
	senders map[string]Sender

	Game *game.GameState

	cards *catalog.CardCatalog
	maps  *catalog.MapCatalog
	rnd   *rand.Rand
}

// NewRoom builds a fresh Lobby-phase room with owner as its sole member.
func NewRoom(code, ownerID, ownerUsername string, ownerSender Sender, cards *catalog.CardCatalog, maps *catalog.MapCatalog, cfg RoomConfig, rnd *rand.Rand) *Room {
	if cfg.MaxMembers <= 0 {
		cfg.MaxMembers = DefaultMaxMembers
	}
	r := &Room{
		Code:    code,
		OwnerID: ownerID,
		Config:  cfg,
		members: make(map[string]*Member),
		senders: make(map[string]Sender),
		cards:   cards,
		maps:    maps,
		rnd:     rnd,
	}
	r.members[ownerID] = &Member{ID: ownerID, Username: ownerUsername, JoinedAt: time.Now()}
	r.senders[ownerID] = ownerSender
	r.unicast(ownerID, wire.New(wire.EventWelcome, r.Snapshot(ownerID)))
	return r
}

// Phase derives the room's lifecycle phase from its game state.
func (r *Room) Phase() Phase {
	if r.Game == nil {
		return PhaseLobby
	}
	if r.Game.Completed() {
		return PhasePostGame
	}
	return PhaseInGame
}

// MemberCount reports current membership, including spectators.
func (r *Room) MemberCount() int {
	return len(r.members)
}

// Snapshot builds the WelcomeDetail sent to a client immediately after Join.
func (r *Room) Snapshot(selfID string) wire.WelcomeDetail {
	users := make([]wire.UserDetail, 0, len(r.members))
	for _, m := range r.sortedMembers() {
		users = append(users, m.detail())
	}
	return wire.WelcomeDetail{
		ID:       selfID,
		RoomCode: r.Code,
		Users:    users,
		Owner:    r.OwnerID,
		Opponent: r.OpponentID,
		Map:      r.MapID,
		Started:  r.Phase() != PhaseLobby,
		Config:   wire.RoomConfigDetail{MaxMembers: r.Config.MaxMembers},
	}
}

func (r *Room) sortedMembers() []*Member {
	out := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

func (r *Room) oldestMember() *Member {
	members := r.sortedMembers()
	if len(members) == 0 {
		return nil
	}
	return members[0]
}

func (r *Room) oldestNonOwnerMember() *Member {
	for _, m := range r.sortedMembers() {
		if m.ID != r.OwnerID {
			return m
		}
	}
	return nil
}

func (r *Room) teamOf(userID string) (game.Team, bool) {
	switch userID {
	case r.OwnerID:
		return game.TeamAlpha, true
	case r.OpponentID:
		return game.TeamBravo, true
	default:
		return 0, false
	}
}

func (r *Room) isPlayer(userID string) bool {
	_, ok := r.teamOf(userID)
	return ok
}

func (r *Room) userIDForTeam(team game.Team) string {
	if team == game.TeamAlpha {
		return r.OwnerID
	}
	return r.OpponentID
}

func (r *Room) broadcast(out wire.Outbound) {
	for _, s := range r.senders {
		if s != nil {
			s(out)
		}
	}
}

func (r *Room) unicast(userID string, out wire.Outbound) {
	if s, ok := r.senders[userID]; ok && s != nil {
		s(out)
	}
}

// Join adds a member to the room, unrestricted by phase (spec.md §4.5:
// membership changes are legal in any phase). If the room has no opponent
// and the new member is not the owner, they become the opponent.
//
// Welcome is the joining client's own handshake, so it is unicast before the
// UserJoin/OpponentChange broadcasts below reach that same connection: a
// client that initializes its state from Welcome must never be handed a
// RoomEvent first, even though it is also a recipient of those broadcasts.
func (r *Room) Join(userID, username string, sender Sender) error {
	if _, exists := r.members[userID]; exists {
		r.senders[userID] = sender
		r.unicast(userID, wire.New(wire.EventWelcome, r.Snapshot(userID)))
		return nil
	}
	if len(r.members) >= r.Config.MaxMembers {
		return ErrRoomFull
	}
	m := &Member{ID: userID, Username: username, JoinedAt: time.Now()}
	r.members[userID] = m
	r.senders[userID] = sender

	becameOpponent := r.OpponentID == "" && userID != r.OwnerID
	if becameOpponent {
		r.OpponentID = userID
	}

	r.unicast(userID, wire.New(wire.EventWelcome, r.Snapshot(userID)))

	r.broadcast(wire.New(wire.EventUserJoin, wire.UserJoinDetail{User: m.detail()}))
	if becameOpponent {
		r.broadcast(wire.New(wire.EventOpponentChange, wire.OpponentChangeDetail{Opponent: r.OpponentID}))
	}
	return nil
}

// Leave removes a member. Owner departure hands ownership to the oldest
// remaining member; opponent departure (direct, or as a consequence of the
// new owner having been the opponent) hands the role to the oldest
// remaining non-owner member, or clears it if none remain.
func (r *Room) Leave(userID string) {
	if _, ok := r.members[userID]; !ok {
		return
	}
	wasOwner := userID == r.OwnerID
	wasOpponent := userID == r.OpponentID
	delete(r.members, userID)
	delete(r.senders, userID)
	r.broadcast(wire.New(wire.EventUserLeave, wire.UserLeaveDetail{ID: userID}))

	if len(r.members) == 0 {
		return
	}

	if wasOwner {
		newOwner := r.oldestMember()
		r.OwnerID = newOwner.ID
		r.broadcast(wire.New(wire.EventOwnerChange, wire.OwnerChangeDetail{Owner: r.OwnerID}))
		if newOwner.ID == r.OpponentID {
			wasOpponent = true
			r.OpponentID = ""
		}
	}

	if wasOpponent {
		newOpponentID := ""
		if m := r.oldestNonOwnerMember(); m != nil {
			newOpponentID = m.ID
		}
		r.OpponentID = newOpponentID
		r.broadcast(wire.New(wire.EventOpponentChange, wire.OpponentChangeDetail{Opponent: r.OpponentID}))
	}
}

// SetMap is owner-only and legal in any phase (it only takes effect at the
// next StartGame).
func (r *Room) SetMap(userID, mapID string) error {
	if userID != r.OwnerID {
		return ErrUserNotRoomOwner
	}
	if mapID != "" && mapID != catalog.RandomMapName && !r.maps.Exists(mapID) {
		return ErrMapNotFound
	}
	r.MapID = mapID
	r.broadcast(wire.New(wire.EventMapChange, wire.MapChangeDetail{Map: r.MapID}))
	return nil
}

// SetConfig is owner-only.
func (r *Room) SetConfig(userID string, cfg RoomConfig) error {
	if userID != r.OwnerID {
		return ErrUserNotRoomOwner
	}
	if cfg.MaxMembers < 2 {
		return ErrInvalidConfig
	}
	r.Config = cfg
	r.broadcast(wire.New(wire.EventConfigUpdate, wire.ConfigUpdateDetail{Config: wire.RoomConfigDetail{MaxMembers: cfg.MaxMembers}}))
	return nil
}

// SetDeck is player-only (owner or opponent): spectators have no deck to
// submit.
func (r *Room) SetDeck(userID, deckID string, cards []string) error {
	if !r.isPlayer(userID) {
		return ErrUserNotPlaying
	}
	if len(cards) != game.DeckSize {
		return ErrIncorrectDeckSize
	}
	for _, c := range cards {
		if !r.cards.Exists(c) {
			return ErrCardNotFound
		}
	}
	m := r.members[userID]
	m.DeckID = deckID
	m.Deck = append([]string(nil), cards...)
	r.broadcast(wire.New(wire.EventUserUpdate, wire.UserUpdateDetail{User: m.detail()}))
	return nil
}

func (r *Room) resolveMap() (catalog.Map, error) {
	if r.MapID == "" || r.MapID == catalog.RandomMapName {
		m, ok := r.maps.PickRandom(r.rnd)
		if !ok {
			return catalog.Map{}, ErrMapNotFound
		}
		return m, nil
	}
	m, ok := r.maps.Get(r.MapID)
	if !ok {
		return catalog.Map{}, ErrMapNotFound
	}
	return m, nil
}

// StartGame is owner-only: Lobby -> InGame. Both players must have an
// opponent assigned and a submitted deck.
func (r *Room) StartGame(userID string) error {
	if userID != r.OwnerID {
		return ErrUserNotRoomOwner
	}
	if r.Phase() != PhaseLobby {
		return ErrRoomStarted
	}
	if r.OpponentID == "" {
		return ErrMissingOpponent
	}
	owner, opponent := r.members[r.OwnerID], r.members[r.OpponentID]
	if owner == nil || opponent == nil || len(owner.Deck) == 0 || len(opponent.Deck) == 0 {
		return ErrDecksNotChosen
	}

	m, err := r.resolveMap()
	if err != nil {
		return err
	}
	r.MapID = m.Name

	gs, err := game.NewGameState(game.Config{
		Board:     m.Board,
		DeckCards: map[game.Team][]string{game.TeamAlpha: owner.Deck, game.TeamBravo: opponent.Deck},
		Cards:     r.cards,
		Rand:      r.rnd,
	})
	if err != nil {
		return GameError{Err: err}
	}
	r.Game = gs
	hands := gs.AssignInitialHands()

	r.broadcast(wire.New(wire.EventStartGame, wire.MapChangeDetail{Map: r.MapID}))
	r.unicast(r.OwnerID, wire.New(wire.EventHandAssigned, wire.HandAssignedDetail{Hand: hands[game.TeamAlpha]}))
	r.unicast(r.OpponentID, wire.New(wire.EventHandAssigned, wire.HandAssignedDetail{Hand: hands[game.TeamBravo]}))
	return nil
}

// ProposeMove is player-only and legal only InGame.
func (r *Room) ProposeMove(userID string, move game.PlayerMove) error {
	team, ok := r.teamOf(userID)
	if !ok {
		return ErrUserNotPlaying
	}
	if r.Phase() != PhaseInGame {
		return ErrRoomNotStarted
	}
	if err := r.Game.ProposeMove(team, move); err != nil {
		return GameError{Err: err}
	}
	r.broadcast(wire.New(wire.EventMoveReceived, wire.MoveReceivedDetail{
		Team:           team.String(),
		RemainingTurns: r.Game.RemainingTurns(),
	}))

	if !r.Game.AllPlayersHaveMoved() {
		return nil
	}

	result, err := r.Game.ApplyMoves()
	if err != nil {
		return GameError{Err: err}
	}

	moves := make(map[string]wire.MoveDetail, len(result.Moves))
	for t, mv := range result.Moves {
		moves[t.String()] = wire.MoveDetail{
			Kind:     mv.Kind.String(),
			Card:     mv.Card,
			Position: wire.Position{X: mv.Position.X, Y: mv.Position.Y},
			Rotation: mv.Rotation,
			Special:  mv.Special,
		}
	}
	score := make(map[string]int, len(result.Moves))
	for t, s := range r.Game.Score() {
		score[t.String()] = s
	}
	r.broadcast(wire.New(wire.EventMovesApplied, wire.MovesAppliedDetail{Moves: moves, Score: score}))

	for t, card := range result.NextCards {
		if card == "" {
			continue
		}
		uid := r.userIDForTeam(t)
		if uid == "" {
			continue
		}
		r.unicast(uid, wire.New(wire.EventNextCardDrawn, wire.NextCardDrawnDetail{
			NewCard:   card,
			Replacing: result.Moves[t].Card,
		}))
	}

	if r.Game.Completed() {
		r.broadcast(wire.New(wire.EventEndGame, wire.EndGameDetail{Score: score}))
	}
	return nil
}

// RequestRedraw is player-only, InGame, one mulligan per team per game.
func (r *Room) RequestRedraw(userID string) error {
	team, ok := r.teamOf(userID)
	if !ok {
		return ErrUserNotPlaying
	}
	if r.Phase() != PhaseInGame {
		return ErrRoomNotStarted
	}
	hand, err := r.Game.RequestRedraw(team)
	if err != nil {
		return GameError{Err: err}
	}
	r.unicast(userID, wire.New(wire.EventHandAssigned, wire.HandAssignedDetail{Hand: hand}))
	return nil
}

// ReturnToRoom is owner-only, PostGame -> Lobby: clears game state and
// submitted decks so a rematch can be configured from scratch.
func (r *Room) ReturnToRoom(userID string) error {
	if userID != r.OwnerID {
		return ErrUserNotRoomOwner
	}
	switch r.Phase() {
	case PhaseLobby:
		return ErrRoomNotStarted
	case PhaseInGame:
		return ErrGameInProgress
	}
	r.Game = nil
	for _, m := range r.members {
		m.DeckID = ""
		m.Deck = nil
	}
	r.broadcast(wire.New(wire.EventReturnToRoom, nil))
	return nil
}
