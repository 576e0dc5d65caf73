package catalog

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/inkfarer/Tableturfer/grid"
)

// RandomMapName is the reserved map id that resolves to a uniform pick
// over the catalog's keys.
const RandomMapName = "random"

// Map describes a named board layout.
type Map struct {
	Name  string
	Board *grid.Grid[MapSquare]
}

type mapWire struct {
	Name  string        `json:"name"`
	Board [][]MapSquare `json:"board"`
}

// MapCatalog is a read-only, concurrency-safe id -> Map mapping loaded
// once from a JSON snapshot at startup.
type MapCatalog struct {
	maps  map[string]Map
	names []string
}

// LoadMapCatalogFile reads a JSON array of maps from path.
func LoadMapCatalogFile(path string) (*MapCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map catalog file: %w", err)
	}
	return LoadMapCatalogJSON(data)
}

// LoadMapCatalogJSON parses a JSON array of maps from raw bytes.
func LoadMapCatalogJSON(data []byte) (*MapCatalog, error) {
	var wire []mapWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parse map catalog JSON: %w", err)
	}

	maps := make(map[string]Map, len(wire))
	names := make([]string, 0, len(wire))
	for _, w := range wire {
		if w.Name == "" || w.Name == RandomMapName {
			continue
		}
		board, err := grid.New(w.Board)
		if err != nil {
			return nil, fmt.Errorf("map %q: %w", w.Name, err)
		}
		if err := validateBoard(board); err != nil {
			return nil, fmt.Errorf("map %q: %w", w.Name, err)
		}
		maps[w.Name] = Map{Name: w.Name, Board: board}
		names = append(names, w.Name)
	}
	return &MapCatalog{maps: maps, names: names}, nil
}

func validateBoard(board *grid.Grid[MapSquare]) error {
	specialAlpha, specialBravo := 0, 0
	var badSquare error
	board.Iterate(func(v MapSquare, x, y int) {
		switch v {
		case MapSquareSpecialAlpha:
			specialAlpha++
		case MapSquareSpecialBravo:
			specialBravo++
		case MapSquareDisabled, MapSquareEmpty:
		default:
			if badSquare == nil {
				badSquare = fmt.Errorf("square (%d,%d) must be Empty or Disabled at initial placement, got %s", x, y, v)
			}
		}
	})
	if badSquare != nil {
		return badSquare
	}
	if specialAlpha != 1 || specialBravo != 1 {
		return fmt.Errorf("map must contain exactly one SpecialAlpha and one SpecialBravo, got %d/%d", specialAlpha, specialBravo)
	}
	return nil
}

// Get returns a cloned copy of the named map.
func (c *MapCatalog) Get(name string) (Map, bool) {
	m, ok := c.maps[name]
	if !ok {
		return Map{}, false
	}
	m.Board = m.Board.Clone()
	return m, true
}

// Exists reports whether name is a known map, including the reserved
// "random" name.
func (c *MapCatalog) Exists(name string) bool {
	if name == RandomMapName {
		return len(c.names) > 0
	}
	_, ok := c.maps[name]
	return ok
}

// PickRandom uniformly picks one of the catalog's maps using rnd. A nil
// rnd falls back to the package-level source.
func (c *MapCatalog) PickRandom(rnd *rand.Rand) (Map, bool) {
	if len(c.names) == 0 {
		return Map{}, false
	}
	idx := 0
	if rnd != nil {
		idx = rnd.Intn(len(c.names))
	} else {
		idx = rand.Intn(len(c.names))
	}
	return c.Get(c.names[idx])
}

// Count returns the number of maps in the catalog (excluding the "random" alias).
func (c *MapCatalog) Count() int {
	return len(c.maps)
}
