package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/inkfarer/Tableturfer/grid"
)

// Card describes one playable card: its catalog metadata and the shape of
// squares it stamps onto the board when played.
type Card struct {
	Name        string
	Category    string
	Rarity      Rarity
	Number      int
	Season      int
	SpecialCost int
	Shape       *grid.Grid[CardSquare]
}

// SquareCount returns the number of non-Empty squares in the card's shape,
// used by the simultaneous-move resolver to order moves.
func (c Card) SquareCount() int {
	count := 0
	c.Shape.Iterate(func(v CardSquare, x, y int) {
		if v != CardSquareEmpty {
			count++
		}
	})
	return count
}

type cardWire struct {
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Rarity      Rarity       `json:"rarity"`
	Number      int          `json:"number"`
	Season      int          `json:"season"`
	SpecialCost int          `json:"specialCost"`
	Shape       [][]CardSquare `json:"shape"`
}

// CardCatalog is a read-only, concurrency-safe id -> Card mapping loaded
// once from a JSON snapshot at startup.
type CardCatalog struct {
	cards map[string]Card
}

// LoadCardCatalogFile reads a JSON array of cards from path.
func LoadCardCatalogFile(path string) (*CardCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card catalog file: %w", err)
	}
	return LoadCardCatalogJSON(data)
}

// LoadCardCatalogJSON parses a JSON array of cards from raw bytes.
func LoadCardCatalogJSON(data []byte) (*CardCatalog, error) {
	var wire []cardWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parse card catalog JSON: %w", err)
	}

	cards := make(map[string]Card, len(wire))
	for _, w := range wire {
		if w.Name == "" {
			continue
		}
		shape, err := grid.New(w.Shape)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", w.Name, err)
		}
		cards[w.Name] = Card{
			Name:        w.Name,
			Category:    w.Category,
			Rarity:      w.Rarity,
			Number:      w.Number,
			Season:      w.Season,
			SpecialCost: w.SpecialCost,
			Shape:       trimCardShape(shape),
		}
	}
	return &CardCatalog{cards: cards}, nil
}

// trimCardShape removes all-Empty border rows/columns so that the stored
// shape matches the catalog's documented invariant even if the source data
// carries a looser bounding box.
func trimCardShape(shape *grid.Grid[CardSquare]) *grid.Grid[CardSquare] {
	h, w := shape.Size()
	if h == 0 || w == 0 {
		return shape
	}

	rowEmpty := func(y int) bool {
		empty := true
		for x := 0; x < w; x++ {
			v, _ := shape.At(x, y)
			if v != CardSquareEmpty {
				empty = false
				break
			}
		}
		return empty
	}
	colEmpty := func(x int) bool {
		empty := true
		for y := 0; y < h; y++ {
			v, _ := shape.At(x, y)
			if v != CardSquareEmpty {
				empty = false
				break
			}
		}
		return empty
	}

	y0, y1 := 0, h
	for y0 < y1 && rowEmpty(y0) {
		y0++
	}
	for y1 > y0 && rowEmpty(y1-1) {
		y1--
	}
	x0, x1 := 0, w
	for x0 < x1 && colEmpty(x0) {
		x0++
	}
	for x1 > x0 && colEmpty(x1-1) {
		x1--
	}
	if y0 == 0 && y1 == h && x0 == 0 && x1 == w {
		return shape
	}
	if y0 >= y1 || x0 >= x1 {
		return grid.Filled(0, 0, CardSquareEmpty)
	}
	trimmed, err := shape.Slice(x0, y0, x1, y1, false)
	if err != nil {
		return shape
	}
	return trimmed
}

// Get returns a cloned copy of the named card.
func (c *CardCatalog) Get(name string) (Card, bool) {
	card, ok := c.cards[name]
	if !ok {
		return Card{}, false
	}
	card.Shape = card.Shape.Clone()
	return card, true
}

// Exists reports whether name is a known card.
func (c *CardCatalog) Exists(name string) bool {
	_, ok := c.cards[name]
	return ok
}

// Count returns the number of cards in the catalog.
func (c *CardCatalog) Count() int {
	return len(c.cards)
}
