package puzzle

// Tile is a numbered cell occupant. Number identifies the tile for the whole
// lifetime of its board, Row and Col change as tiles are swapped.
type Tile struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	Number  int  `json:"number"`
	Visible bool `json:"visible"`
}

// TileRecord is the persisted form of a tile.
type TileRecord struct {
	Row    int
	Col    int
	Number int
}

func (t Tile) distance(o Tile) int {
	return absDiff(t.Row, o.Row) + absDiff(t.Col, o.Col)
}

// home reports whether the tile sits at the cell its number belongs to.
func (t Tile) home(size int) bool {
	return t.Row == (t.Number-1)/size && t.Col == (t.Number-1)%size
}

func absDiff(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}
