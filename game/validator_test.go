package game

import (
	"testing"

	"github.com/inkfarer/Tableturfer/catalog"
	"github.com/inkfarer/Tableturfer/grid"
)

// validatorTestCatalog reproduces card_1..card_4 from the original
// engine's move-validator test fixtures verbatim (shape, special cost).
const validatorTestCatalog = `[
  {"name":"card_1","category":"test_cards","rarity":0,"number":1,"season":1,"specialCost":2,
   "shape":[[0,1],[0,2],[1,1]]},
  {"name":"card_2","category":"test_cards","rarity":1,"number":2,"season":1,"specialCost":1,
   "shape":[[1,1],[1,2]]},
  {"name":"card_3","category":"test_cards","rarity":0,"number":3,"season":1,"specialCost":1,
   "shape":[[1]]},
  {"name":"card_4","category":"test_cards","rarity":2,"number":4,"season":1,"specialCost":3,
   "shape":[[1,1],[2,0]]}
]`

func validatorTestCards(t *testing.T) *catalog.CardCatalog {
	t.Helper()
	cards, err := catalog.LoadCardCatalogJSON([]byte(validatorTestCatalog))
	if err != nil {
		t.Fatalf("load test catalog: %v", err)
	}
	return cards
}

const (
	d  = catalog.MapSquareDisabled
	e  = catalog.MapSquareEmpty
	sa = catalog.MapSquareSpecialAlpha
	sb = catalog.MapSquareSpecialBravo
	fa = catalog.MapSquareFillAlpha
	fb = catalog.MapSquareFillBravo
)

// validatorTestBoard reproduces the 7x7 arena fixture from the original
// engine's move-validator tests: Disabled ring, each team's Special and a
// stray Fill square on its own side.
func validatorTestBoard(t *testing.T) *grid.Grid[catalog.MapSquare] {
	t.Helper()
	rows := [][]catalog.MapSquare{
		{d, d, d, d, d, d, d},
		{d, sa, e, e, e, fa, d},
		{d, e, e, e, e, e, d},
		{d, e, e, e, e, e, d},
		{d, e, e, e, e, e, d},
		{d, sb, e, e, e, fb, d},
		{d, d, d, d, d, d, d},
	}
	g, err := grid.New(rows)
	if err != nil {
		t.Fatalf("build test board: %v", err)
	}
	return g
}

func TestValidateCardNotFound(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	err := v.Validate(validatorTestBoard(t), 0, TeamAlpha, PlaceCard("card_999", Position{0, 0}, 0, false), []string{"card_999"})
	if err != ErrCardNotFound {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestValidateCardNotInHand(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	err := v.Validate(validatorTestBoard(t), 0, TeamAlpha, PlaceCard("card_1", Position{1, 1}, 0, false), []string{"card_2"})
	if err != ErrCardNotInHand {
		t.Fatalf("expected ErrCardNotInHand, got %v", err)
	}
}

func TestValidateOutOfBounds(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_1"}
	cases := []Position{{2, -3}, {2, 15}, {-2, 2}, {12, 2}}
	for _, pos := range cases {
		for _, team := range []Team{TeamAlpha, TeamBravo} {
			err := v.Validate(validatorTestBoard(t), 0, team, PlaceCard("card_1", pos, 0, false), hand)
			if err != ErrCardOutOfBounds {
				t.Fatalf("pos %+v team %v: expected ErrCardOutOfBounds, got %v", pos, team, err)
			}
		}
	}
}

func TestValidateCardOnDisabledTiles(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_1"}
	cases := []Position{{1, 0}, {0, 2}, {5, 2}, {2, 4}}
	for _, pos := range cases {
		for _, team := range []Team{TeamAlpha, TeamBravo} {
			err := v.Validate(validatorTestBoard(t), 0, team, PlaceCard("card_1", pos, 0, false), hand)
			if err != ErrCardOnDisallowedSquares {
				t.Fatalf("pos %+v team %v: expected ErrCardOnDisallowedSquares, got %v", pos, team, err)
			}
		}
	}
}

func TestValidateNoAdjacentTiles(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_3"}
	cases := []Position{{1, 3}, {5, 3}, {3, 1}, {3, 5}, {3, 3}}
	for _, pos := range cases {
		for _, team := range []Team{TeamAlpha, TeamBravo} {
			err := v.Validate(validatorTestBoard(t), 0, team, PlaceCard("card_3", pos, 0, false), hand)
			if err != ErrNoExpectedSquaresNearCard {
				t.Fatalf("pos %+v team %v: expected ErrNoExpectedSquaresNearCard, got %v", pos, team, err)
			}
		}
	}
}

func TestValidateCoversExistingTiles(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_2"}
	cases := []Position{{1, 1}, {4, 1}, {1, 4}, {4, 4}}
	for _, pos := range cases {
		for _, team := range []Team{TeamAlpha, TeamBravo} {
			err := v.Validate(validatorTestBoard(t), 0, team, PlaceCard("card_2", pos, 0, false), hand)
			if err != ErrCardOnDisallowedSquares {
				t.Fatalf("pos %+v team %v: expected ErrCardOnDisallowedSquares, got %v", pos, team, err)
			}
		}
	}
}

func TestValidateSpecialTooExpensive(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_2"}
	for _, team := range []Team{TeamAlpha, TeamBravo} {
		err := v.Validate(validatorTestBoard(t), 0, team, PlaceCard("card_2", Position{0, 0}, 0, true), hand)
		if err != ErrCannotAffordSpecial {
			t.Fatalf("team %v: expected ErrCannotAffordSpecial, got %v", team, err)
		}
	}
}

func TestValidateAlphaNextToOwnSquaresSucceeds(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_1"}
	for _, pos := range []Position{{1, 1}, {3, 1}} {
		if err := v.Validate(validatorTestBoard(t), 0, TeamAlpha, PlaceCard("card_1", pos, 0, false), hand); err != nil {
			t.Fatalf("pos %+v: expected success next to Alpha's own squares, got %v", pos, err)
		}
	}
}

func TestValidateAlphaNextToOpposingSquaresFails(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_1"}
	for _, pos := range []Position{{2, 3}, {3, 3}} {
		if err := v.Validate(validatorTestBoard(t), 0, TeamAlpha, PlaceCard("card_1", pos, 0, false), hand); err != ErrNoExpectedSquaresNearCard {
			t.Fatalf("pos %+v: expected ErrNoExpectedSquaresNearCard, got %v", pos, err)
		}
	}
}

func TestValidateBravoNextToOwnSquaresSucceeds(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_1"}
	for _, pos := range []Position{{2, 3}, {3, 3}} {
		if err := v.Validate(validatorTestBoard(t), 0, TeamBravo, PlaceCard("card_1", pos, 0, false), hand); err != nil {
			t.Fatalf("pos %+v: expected success next to Bravo's own squares, got %v", pos, err)
		}
	}
}

func TestValidateBravoNextToOpposingSquaresFails(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	hand := []string{"card_1"}
	for _, pos := range []Position{{1, 1}, {3, 1}} {
		if err := v.Validate(validatorTestBoard(t), 0, TeamBravo, PlaceCard("card_1", pos, 0, false), hand); err != ErrNoExpectedSquaresNearCard {
			t.Fatalf("pos %+v: expected ErrNoExpectedSquaresNearCard, got %v", pos, err)
		}
	}
}

func TestValidateAlphaCanAffordSpecial(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	board := validatorTestBoard(t)
	board.Set(2, 1, catalog.MapSquareFillAlpha)
	board.Set(2, 2, catalog.MapSquareFillBravo)
	hand := []string{"card_1"}

	if err := v.Validate(board, 2, TeamAlpha, PlaceCard("card_1", Position{1, 1}, 0, true), hand); err != nil {
		t.Fatalf("expected special play to succeed, got %v", err)
	}
}

func TestValidateBravoCanAffordSpecial(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	board := validatorTestBoard(t)
	board.Set(3, 3, catalog.MapSquareFillAlpha)
	board.Set(3, 4, catalog.MapSquareFillBravo)
	hand := []string{"card_1"}

	if err := v.Validate(board, 2, TeamBravo, PlaceCard("card_1", Position{2, 3}, 0, true), hand); err != nil {
		t.Fatalf("expected special play to succeed, got %v", err)
	}
}

func TestValidatePassOnlyChecksHandAndCatalog(t *testing.T) {
	v := NewMoveValidator(validatorTestCards(t))
	board := validatorTestBoard(t)

	if err := v.Validate(board, 0, TeamAlpha, Pass("card_1"), []string{"card_1"}); err != nil {
		t.Fatalf("expected Pass with card in hand to succeed, got %v", err)
	}
	if err := v.Validate(board, 0, TeamAlpha, Pass("card_1"), nil); err != ErrCardNotInHand {
		t.Fatalf("expected ErrCardNotInHand, got %v", err)
	}
	if err := v.Validate(board, 0, TeamAlpha, Pass("missing"), []string{"missing"}); err != ErrCardNotFound {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}
