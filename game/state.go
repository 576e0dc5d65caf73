package game

import (
	"math/rand"
	"time"

	"github.com/inkfarer/Tableturfer/catalog"
	"github.com/inkfarer/Tableturfer/grid"
)

// Config is everything NewGameState needs to stand up a match: the
// starting board (a copy of the chosen map), each team's 15-card deck, and
// the shared card catalog (the validator is built from it). Rand is an injectable seam for
// deterministic replay and tests; a nil Rand falls back to a time seed.
type Config struct {
	Board     *grid.Grid[catalog.MapSquare]
	DeckCards map[Team][]string
	Cards     *catalog.CardCatalog
	Rand      *rand.Rand
}

// GameState is the match state machine: board, per-team decks, pending
// moves, special-point ledgers, and the turn counter. It holds no mutex of
// its own — callers (the room registry) are expected to serialize access,
// the same departure from per-object locking documented for Room.
type GameState struct {
	board     *grid.Grid[catalog.MapSquare]
	decks     map[Team]*teamDeck
	cards     *catalog.CardCatalog
	validator *MoveValidator
	rnd       *rand.Rand

	pending map[Team]PlayerMove
	earned  map[Team]int
	spent   map[Team]int

	remainingTurns int
	redrawUsed     map[Team]bool
}

// NewGameState builds a GameState per spec.md §4.4: pending-move map
// empty, special-point counters zero, remaining_turns = TurnCount.
func NewGameState(cfg Config) (*GameState, error) {
	decks := make(map[Team]*teamDeck, 2)
	for _, team := range []Team{TeamAlpha, TeamBravo} {
		cards, ok := cfg.DeckCards[team]
		if !ok {
			return nil, InvalidStateError(team.String() + " deck not provided")
		}
		deck, err := newTeamDeck(cards)
		if err != nil {
			return nil, err
		}
		decks[team] = deck
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &GameState{
		board:          cfg.Board.Clone(),
		decks:          decks,
		cards:          cfg.Cards,
		validator:      NewMoveValidator(cfg.Cards),
		rnd:            rnd,
		pending:        make(map[Team]PlayerMove),
		earned:         map[Team]int{TeamAlpha: 0, TeamBravo: 0},
		spent:          map[Team]int{TeamAlpha: 0, TeamBravo: 0},
		remainingTurns: TurnCount,
		redrawUsed:     make(map[Team]bool, 2),
	}, nil
}

// Board returns a defensive copy of the current board.
func (g *GameState) Board() *grid.Grid[catalog.MapSquare] {
	return g.board.Clone()
}

// RemainingTurns reports turns left before Completed.
func (g *GameState) RemainingTurns() int {
	return g.remainingTurns
}

// Hand returns a defensive copy of team's current hand.
func (g *GameState) Hand(team Team) []string {
	deck, ok := g.decks[team]
	if !ok {
		return nil
	}
	return deck.currentHand()
}

// AvailableSpecialPoints is earned(team) - spent(team), saturated at zero.
func (g *GameState) AvailableSpecialPoints(team Team) int {
	available := g.earned[team] - g.spent[team]
	if available < 0 {
		return 0
	}
	return available
}

// AssignInitialHands deals HandSize cards to each team. Callers are
// expected to invoke this exactly once, at StartGame.
func (g *GameState) AssignInitialHands() map[Team][]string {
	hands := make(map[Team][]string, 2)
	for _, team := range []Team{TeamAlpha, TeamBravo} {
		hands[team] = g.decks[team].dealInitialHand(g.rnd)
	}
	return hands
}

// ProposeMove validates move against the current board and the team's
// hand and special-point balance, then stores it as that team's pending
// move for the turn, overwriting any earlier pending move. A validation
// failure never mutates state.
func (g *GameState) ProposeMove(team Team, move PlayerMove) error {
	if g.remainingTurns <= 0 {
		return ErrGameEnded
	}
	deck, ok := g.decks[team]
	if !ok {
		return InvalidStateError(team.String() + " has no deck")
	}
	if err := g.validator.Validate(g.board, g.AvailableSpecialPoints(team), team, move, deck.currentHand()); err != nil {
		return err
	}
	g.pending[team] = move
	return nil
}

// AllPlayersHaveMoved reports whether both teams have a pending move.
func (g *GameState) AllPlayersHaveMoved() bool {
	return len(g.pending) == 2
}

// ApplyMovesResult is the outcome of one turn's resolution.
type ApplyMovesResult struct {
	Moves               map[Team]PlayerMove
	NextCards           map[Team]string // replacement card drawn into hand, "" if none
	EarnedSpecialPoints map[Team]int    // recomputed from scratch on the composed board
	RemainingTurns      int
}

// ApplyMoves consumes both pending moves, runs the simultaneous-move
// resolution algorithm, updates the board, recomputes earned special
// points, advances each team's deck, and decrements remaining_turns.
func (g *GameState) ApplyMoves() (ApplyMovesResult, error) {
	if !g.AllPlayersHaveMoved() {
		return ApplyMovesResult{}, InvalidStateError("not all players have moved")
	}

	moves := g.pending
	g.pending = make(map[Team]PlayerMove)

	g.board = resolveOverlay(g.board, g.cards, moves)
	g.earned = earnedSpecialPoints(g.board)

	nextCards := make(map[Team]string, 2)
	for team, move := range moves {
		deck := g.decks[team]
		if move.Special {
			if card, ok := g.cards.Get(move.Card); ok {
				g.spent[team] += card.SpecialCost
			}
		}
		nextCards[team] = deck.playCard(g.rnd, move.Card)
	}

	g.remainingTurns--

	return ApplyMovesResult{
		Moves:               moves,
		NextCards:           nextCards,
		EarnedSpecialPoints: cloneIntMap(g.earned),
		RemainingTurns:      g.remainingTurns,
	}, nil
}

// RequestRedraw grants a team its one-time mulligan: the current hand is
// returned to the undrawn pool and a fresh hand is dealt. Implementation-
// defined per spec.md §9 (no payload is specified upstream); this repo
// grants exactly one redraw per team per game.
func (g *GameState) RequestRedraw(team Team) ([]string, error) {
	if g.redrawUsed[team] {
		return nil, ErrRedrawAlreadyUsed
	}
	deck, ok := g.decks[team]
	if !ok {
		return nil, InvalidStateError(team.String() + " has no deck")
	}
	g.redrawUsed[team] = true
	return deck.redraw(g.rnd), nil
}

// Score counts FillT+SpecialT cells on the board for each team.
func (g *GameState) Score() map[Team]int {
	score := map[Team]int{TeamAlpha: 0, TeamBravo: 0}
	g.board.Iterate(func(v catalog.MapSquare, _, _ int) {
		switch v {
		case catalog.MapSquareFillAlpha, catalog.MapSquareSpecialAlpha:
			score[TeamAlpha]++
		case catalog.MapSquareFillBravo, catalog.MapSquareSpecialBravo:
			score[TeamBravo]++
		}
	})
	return score
}

// Completed reports whether the match has run out of turns.
func (g *GameState) Completed() bool {
	return g.remainingTurns <= 0
}

func cloneIntMap(m map[Team]int) map[Team]int {
	out := make(map[Team]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
