package game

import (
	"sort"

	"github.com/inkfarer/Tableturfer/catalog"
	"github.com/inkfarer/Tableturfer/grid"
)

// placedMove is one PlaceCard move paired with its resolved shape and
// square count, ready for overlay composition.
type placedMove struct {
	team        Team
	squareCount int
	shape       *grid.Grid[catalog.CardSquare]
	position    Position
}

type overlayCell struct {
	value       catalog.MapSquare
	squareCount int // square count of the move that most recently wrote here; -1 if untouched
}

// resolveOverlay implements the central simultaneous-move algorithm from
// spec.md §4.4: both moves are translated into team-colored squares on a
// scratch overlay, composed in descending-square-count order so that a
// larger card's specials are committed before a smaller card's fills, and
// the overlay is then stamped onto a copy of board.
func resolveOverlay(board *grid.Grid[catalog.MapSquare], cards *catalog.CardCatalog, moves map[Team]PlayerMove) *grid.Grid[catalog.MapSquare] {
	h, w := board.Size()

	var placed []placedMove
	for team, move := range moves {
		if move.Kind != MoveKindPlaceCard {
			continue // Pass moves contribute nothing to the overlay
		}
		card, ok := cards.Get(move.Card)
		if !ok {
			continue // unreachable once ProposeMove has validated the move
		}
		shape := card.Shape.RotateClockwise(move.quarterTurns())
		placed = append(placed, placedMove{
			team:        team,
			squareCount: card.SquareCount(),
			shape:       shape,
			position:    move.Position,
		})
	}

	// Descending square count; ties broken by team ordinal (Alpha < Bravo)
	// so replays are reproducible given the same RNG seed.
	sort.SliceStable(placed, func(i, j int) bool {
		if placed[i].squareCount != placed[j].squareCount {
			return placed[i].squareCount > placed[j].squareCount
		}
		return placed[i].team < placed[j].team
	})

	overlay := grid.Filled(h, w, overlayCell{value: catalog.MapSquareEmpty, squareCount: -1})
	for _, pm := range placed {
		pm.shape.Iterate(func(cs catalog.CardSquare, dx, dy int) {
			if cs == catalog.CardSquareEmpty {
				return
			}
			x, y := pm.position.X+dx, pm.position.Y+dy
			var n catalog.MapSquare
			if cs == catalog.CardSquareSpecial {
				n = pm.team.specialSquare()
			} else {
				n = pm.team.fillSquare()
			}
			writeOverlay(overlay, x, y, n, pm.squareCount)
		})
	}

	composed := board.Clone()
	overlay.Iterate(func(cell overlayCell, x, y int) {
		if cell.value != catalog.MapSquareEmpty {
			composed.Set(x, y, cell.value)
		}
	})
	return composed
}

func writeOverlay(overlay *grid.Grid[overlayCell], x, y int, n catalog.MapSquare, squareCount int) {
	e, err := overlay.At(x, y)
	if err != nil {
		return
	}
	if e.value.IsSpecial() && n.IsFill() {
		return // special beats fill regardless of team or write order
	}
	if e.squareCount == squareCount && ((e.value.IsFill() && n.IsFill()) || (e.value.IsSpecial() && n.IsSpecial())) {
		overlay.Set(x, y, overlayCell{value: catalog.MapSquareNeutral, squareCount: squareCount})
		return
	}
	overlay.Set(x, y, overlayCell{value: n, squareCount: squareCount})
}

// earnedSpecialPoints recomputes, from scratch, how many special points each
// team earns from the current composed board: one per Special* cell whose
// full 8-neighbourhood (clamped to board bounds) is non-Empty.
func earnedSpecialPoints(board *grid.Grid[catalog.MapSquare]) map[Team]int {
	earned := map[Team]int{TeamAlpha: 0, TeamBravo: 0}
	board.Iterate(func(v catalog.MapSquare, x, y int) {
		var team Team
		switch v {
		case catalog.MapSquareSpecialAlpha:
			team = TeamAlpha
		case catalog.MapSquareSpecialBravo:
			team = TeamBravo
		default:
			return
		}
		if neighborhoodFull(board, x, y) {
			earned[team]++
		}
	})
	return earned
}

func neighborhoodFull(board *grid.Grid[catalog.MapSquare], x, y int) bool {
	h, w := board.Size()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue // clamped: out-of-board neighbours don't block the award
			}
			v, _ := board.At(nx, ny)
			if v == catalog.MapSquareEmpty {
				return false
			}
		}
	}
	return true
}
