package game

import (
	"errors"

	"github.com/inkfarer/Tableturfer/catalog"
	"github.com/inkfarer/Tableturfer/grid"
)

// Typed validator errors, returned by Validate and wrapped for transport
// back to the client as GameError{InvalidMove(...)}.
var (
	ErrCardNotInHand             = errors.New("card not in hand")
	ErrCardNotFound              = errors.New("card not found")
	ErrCannotAffordSpecial       = errors.New("cannot afford special")
	ErrCardOutOfBounds           = errors.New("card out of bounds")
	ErrCardOnDisallowedSquares   = errors.New("card on disallowed squares")
	ErrNoExpectedSquaresNearCard = errors.New("no expected squares near card")
)

// MoveValidator is a pure function over (board, available special points,
// team, move, hand): it never mutates its inputs and returns the same
// result for the same inputs every time. It is safe to share across rooms.
type MoveValidator struct {
	Cards *catalog.CardCatalog
}

// NewMoveValidator builds a validator bound to a card catalog.
func NewMoveValidator(cards *catalog.CardCatalog) *MoveValidator {
	return &MoveValidator{Cards: cards}
}

// Validate checks whether move is legal given board, the team's currently
// available special points, and hand. It never mutates board or hand.
func (v *MoveValidator) Validate(board *grid.Grid[catalog.MapSquare], availableSpecial int, team Team, move PlayerMove, hand []string) error {
	if !containsCard(hand, move.Card) {
		return ErrCardNotInHand
	}
	card, ok := v.Cards.Get(move.Card)
	if !ok {
		return ErrCardNotFound
	}

	if move.Kind == MoveKindPass {
		return nil
	}

	if move.Special && card.SpecialCost > availableSpecial {
		return ErrCannotAffordSpecial
	}

	shape := card.Shape.RotateClockwise(move.quarterTurns())
	shapeH, shapeW := shape.Size()
	boardH, boardW := board.Size()

	if move.Position.X < 0 || move.Position.Y < 0 ||
		move.Position.X+shapeW > boardW || move.Position.Y+shapeH > boardH {
		return ErrCardOutOfBounds
	}

	allowed := map[catalog.MapSquare]bool{catalog.MapSquareEmpty: true}
	if move.Special {
		allowed[catalog.MapSquareFillAlpha] = true
		allowed[catalog.MapSquareFillBravo] = true
	}

	var adjacencyWanted func(catalog.MapSquare) bool
	if move.Special {
		special := team.specialSquare()
		adjacencyWanted = func(s catalog.MapSquare) bool { return s == special }
	} else {
		fill, spec := team.fillSquare(), team.specialSquare()
		adjacencyWanted = func(s catalog.MapSquare) bool { return s == fill || s == spec }
	}

	foundAdjacency := false
	var boundsErr error
	shape.Iterate(func(cs catalog.CardSquare, dx, dy int) {
		if cs == catalog.CardSquareEmpty {
			return
		}
		bx, by := move.Position.X+dx, move.Position.Y+dy
		boardSquare, err := board.At(bx, by)
		if err != nil {
			boundsErr = ErrCardOutOfBounds
			return
		}
		if !allowed[boardSquare] {
			boundsErr = ErrCardOnDisallowedSquares
		}
		if !foundAdjacency && hasMatchingNeighbor(board, bx, by, adjacencyWanted) {
			foundAdjacency = true
		}
	})
	if boundsErr != nil {
		return boundsErr
	}
	if !foundAdjacency {
		return ErrNoExpectedSquaresNearCard
	}
	return nil
}

func hasMatchingNeighbor(board *grid.Grid[catalog.MapSquare], x, y int, want func(catalog.MapSquare) bool) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			s, err := board.At(x+dx, y+dy)
			if err != nil {
				continue // clamped to board bounds
			}
			if want(s) {
				return true
			}
		}
	}
	return false
}

func containsCard(hand []string, card string) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}
