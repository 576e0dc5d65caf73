package game

import (
	"fmt"
	"math/rand"
)

// HAND_SIZE and DECK_SIZE from spec.md §3. TURN_COUNT = DECK_SIZE -
// HAND_SIZE + 1: a deck is drawn down to exactly empty by the last turn.
const (
	HandSize  = 4
	DeckSize  = 15
	TurnCount = DeckSize - HandSize + 1
)

// teamDeck tracks one team's 15-card deck, its used pile, and its current
// hand, preserving the deck/hand invariants from spec.md §3: deck ∩ used
// is empty before each draw, hand ⊆ deck \ used, |hand| ≤ HandSize.
type teamDeck struct {
	cards []string // the 15 distinct card names, in submitted order
	used  map[string]bool
	hand  []string
}

func newTeamDeck(cards []string) (*teamDeck, error) {
	if len(cards) != DeckSize {
		return nil, fmt.Errorf("deck must contain exactly %d cards, got %d", DeckSize, len(cards))
	}
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return nil, fmt.Errorf("deck contains duplicate card %q", c)
		}
		seen[c] = true
	}
	return &teamDeck{
		cards: append([]string(nil), cards...),
		used:  make(map[string]bool, len(cards)),
	}, nil
}

// available returns the cards still undrawn: deck \ (used ∪ hand).
func (d *teamDeck) available() []string {
	inHand := make(map[string]bool, len(d.hand))
	for _, c := range d.hand {
		inHand[c] = true
	}
	out := make([]string, 0, len(d.cards))
	for _, c := range d.cards {
		if !d.used[c] && !inHand[c] {
			out = append(out, c)
		}
	}
	return out
}

// drawHand replaces the current hand with HandSize distinct cards drawn
// uniformly at random, without replacement, from deck \ used. Any cards
// previously in the hand (if the caller cleared it first) are eligible
// again, since they were never marked used.
func (d *teamDeck) drawHand(rnd *rand.Rand) []string {
	pool := make([]string, 0, len(d.cards))
	for _, c := range d.cards {
		if !d.used[c] {
			pool = append(pool, c)
		}
	}
	rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	n := HandSize
	if n > len(pool) {
		n = len(pool)
	}
	d.hand = append([]string(nil), pool[:n]...)
	return append([]string(nil), d.hand...)
}

// dealInitialHand draws the team's opening hand. Idempotent callers
// should only invoke this once per game, at StartGame.
func (d *teamDeck) dealInitialHand(rnd *rand.Rand) []string {
	return d.drawHand(rnd)
}

// playCard removes card from the hand and moves it to the used pile, then
// draws one replacement uniformly at random from the remaining pool if any
// is left. It returns the replacement card name, or "" if none was drawn.
func (d *teamDeck) playCard(rnd *rand.Rand, card string) (replacement string) {
	for i, c := range d.hand {
		if c == card {
			d.hand = append(d.hand[:i], d.hand[i+1:]...)
			break
		}
	}
	d.used[card] = true

	pool := d.available()
	if len(pool) == 0 {
		return ""
	}
	pick := pool[rnd.Intn(len(pool))]
	d.hand = append(d.hand, pick)
	return pick
}

// redraw discards the current hand back into the undrawn pool and deals a
// fresh hand, supporting the RequestRedraw action (spec.md §9 Open
// Questions — implementation-defined).
func (d *teamDeck) redraw(rnd *rand.Rand) []string {
	d.hand = nil
	return d.drawHand(rnd)
}

func (d *teamDeck) currentHand() []string {
	return append([]string(nil), d.hand...)
}
