package puzzle

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

const (
	MinSize = 2
	MaxSize = 32
)

// Board is the grid of a sliding puzzle. Exactly one tile, the one numbered
// emptyNumber, is the hidden slot the other tiles slide into. A board is owned
// by a single game session and is not safe for concurrent use.
type Board struct {
	size        int
	tiles       []Tile // tiles[n-1] holds the tile numbered n
	emptyNumber int
}

func validSize(size int) bool {
	return MinSize <= size && size <= MaxSize
}

// NewRandom fills the size×size grid in row-major order, drawing an unused
// number for every cell from r. The tile numbered size² is the empty one.
func NewRandom(size int, r *rand.Rand) (*Board, error) {
	if !validSize(size) {
		return nil, fmt.Errorf(
			"%w: size must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinSize, MaxSize, size,
		)
	}

	count := size * size
	b := &Board{
		size:        size,
		tiles:       make([]Tile, count),
		emptyNumber: count,
	}

	used := make(map[int]struct{}, count)
	for row := range size {
		for col := range size {
			n := r.IntN(count) + 1
			for {
				if _, ok := used[n]; !ok {
					break
				}
				n = r.IntN(count) + 1
			}
			used[n] = struct{}{}
			b.tiles[n-1] = Tile{Row: row, Col: col, Number: n, Visible: true}
		}
	}
	b.tiles[b.emptyNumber-1].Visible = false

	Log.WithFields(logrus.Fields{
		"size":  size,
		"empty": b.emptyNumber,
	}).Debug("generated board")

	return b, nil
}

// FromSaved rebuilds a board from persisted records. The records must cover
// every cell of the grid exactly once with the numbers 1..size².
func FromSaved(size, emptyTileNumber int, records []TileRecord) (*Board, error) {
	if !validSize(size) {
		return nil, fmt.Errorf("%w: bad board size %d", ErrCorruptSaveData, size)
	}

	count := size * size
	if len(records) != count {
		return nil, fmt.Errorf(
			"%w: want %d tiles, got %d", ErrCorruptSaveData, count, len(records),
		)
	}
	if emptyTileNumber < 1 || emptyTileNumber > count {
		return nil, fmt.Errorf(
			"%w: hidden number %d matches no tile", ErrCorruptSaveData, emptyTileNumber,
		)
	}

	b := &Board{
		size:        size,
		tiles:       make([]Tile, count),
		emptyNumber: emptyTileNumber,
	}
	seenNumber := make([]bool, count)
	seenCell := make([]bool, count)
	for _, rec := range records {
		if rec.Number < 1 || rec.Number > count {
			return nil, fmt.Errorf("%w: tile number %d out of range", ErrCorruptSaveData, rec.Number)
		}
		if rec.Row < 0 || rec.Row >= size || rec.Col < 0 || rec.Col >= size {
			return nil, fmt.Errorf(
				"%w: tile %d at (%d, %d) is off the grid",
				ErrCorruptSaveData, rec.Number, rec.Row, rec.Col,
			)
		}
		if seenNumber[rec.Number-1] {
			return nil, fmt.Errorf("%w: duplicate tile number %d", ErrCorruptSaveData, rec.Number)
		}
		cell := rec.Row*size + rec.Col
		if seenCell[cell] {
			return nil, fmt.Errorf(
				"%w: two tiles at (%d, %d)", ErrCorruptSaveData, rec.Row, rec.Col,
			)
		}
		seenNumber[rec.Number-1] = true
		seenCell[cell] = true
		b.tiles[rec.Number-1] = Tile{
			Row:     rec.Row,
			Col:     rec.Col,
			Number:  rec.Number,
			Visible: true,
		}
	}
	b.tiles[b.emptyNumber-1].Visible = b.IsSolved()

	return b, nil
}

// Size is the number of tiles per side.
func (b *Board) Size() int {
	return b.size
}

// EmptyTileNumber is the number of the hidden tile, size² for shuffled boards.
func (b *Board) EmptyTileNumber() int {
	return b.emptyNumber
}

// Clone returns a copy that shares no state with b.
func (b *Board) Clone() *Board {
	return &Board{
		size:        b.size,
		tiles:       b.Tiles(),
		emptyNumber: b.emptyNumber,
	}
}

// Tiles returns a copy of all tiles ordered by number.
func (b *Board) Tiles() []Tile {
	tiles := make([]Tile, len(b.tiles))
	copy(tiles, b.tiles)
	return tiles
}

// Tile looks a tile up by number.
func (b *Board) Tile(number int) (Tile, bool) {
	if number < 1 || number > len(b.tiles) {
		return Tile{}, false
	}
	return b.tiles[number-1], true
}

// TileAt returns the tile occupying the cell at row, col.
func (b *Board) TileAt(row, col int) (Tile, bool) {
	for _, t := range b.tiles {
		if t.Row == row && t.Col == col {
			return t, true
		}
	}
	return Tile{}, false
}

// Records returns the persisted form of every tile, ordered by number.
func (b *Board) Records() []TileRecord {
	records := make([]TileRecord, 0, len(b.tiles))
	for _, t := range b.tiles {
		records = append(records, TileRecord{Row: t.Row, Col: t.Col, Number: t.Number})
	}
	return records
}

// Activate tries to slide the tile numbered number into the empty slot. Tiles
// that are not orthogonally adjacent to the empty slot are rejected and the
// board is left unchanged.
func (b *Board) Activate(number int) MoveResult {
	if number < 1 || number > len(b.tiles) || number == b.emptyNumber {
		return Rejected
	}

	tile := &b.tiles[number-1]
	empty := &b.tiles[b.emptyNumber-1]
	if tile.distance(*empty) != 1 {
		return Rejected
	}

	tile.Row, empty.Row = empty.Row, tile.Row
	tile.Col, empty.Col = empty.Col, tile.Col

	solved := b.IsSolved()
	empty.Visible = solved

	Log.WithFields(logrus.Fields{
		"number": number,
		"row":    tile.Row,
		"col":    tile.Col,
		"solved": solved,
	}).Debug("moved tile")

	if solved {
		return MovedWin
	}
	return Moved
}

// IsSolved scans every tile and reports whether each one is at its home cell.
func (b *Board) IsSolved() bool {
	for _, t := range b.tiles {
		if !t.home(b.size) {
			return false
		}
	}
	return true
}

// Solved reports whether the board has been revealed as won.
func (b *Board) Solved() bool {
	return b.tiles[b.emptyNumber-1].Visible
}

func (b *Board) String() string {
	width := len(strconv.Itoa(len(b.tiles)))
	var sb strings.Builder
	for row := range b.size {
		for col := range b.size {
			if col > 0 {
				sb.WriteByte(' ')
			}
			t, _ := b.TileAt(row, col)
			if t.Visible {
				fmt.Fprintf(&sb, "%*d", width, t.Number)
			} else {
				sb.WriteString(strings.Repeat(".", width))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
