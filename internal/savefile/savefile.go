// Package savefile encodes puzzle boards into the line-oriented save format:
// a header object followed by one object per tile.
//
//	{"BlocksPerLine":4,"HiddenNumber":16}
//	{"CoordX":0,"CoordY":0,"Number":7}
//	...
//
// CoordX is the tile column and CoordY its row.
package savefile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/vancomm/slidingpuzzle-server/internal/puzzle"
)

const FileName = "slidingpuzzle.save"

type header struct {
	BlocksPerLine *integer `json:"BlocksPerLine"`
	HiddenNumber  *integer `json:"HiddenNumber"`
}

type record struct {
	CoordX *integer `json:"CoordX"`
	CoordY *integer `json:"CoordY"`
	Number *integer `json:"Number"`
}

// integer accepts any JSON number with no fractional part, so 3 and 3.0 both
// decode while 3.5 does not.
type integer int

func (i *integer) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return fmt.Errorf("%s is not a number", data)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("%s is not an integer", n)
	}
	*i = integer(f)
	return nil
}

func (i integer) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(i))
}

func ptr(n int) *integer {
	i := integer(n)
	return &i
}

// Encode returns the header line followed by one line per tile.
func Encode(b *puzzle.Board) []string {
	lines := make([]string, 0, len(b.Tiles())+1)
	lines = append(lines, mustMarshal(header{
		BlocksPerLine: ptr(b.Size()),
		HiddenNumber:  ptr(b.EmptyTileNumber()),
	}))
	for _, rec := range b.Records() {
		lines = append(lines, mustMarshal(record{
			CoordX: ptr(rec.Col),
			CoordY: ptr(rec.Row),
			Number: ptr(rec.Number),
		}))
	}
	return lines
}

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// only integers are marshaled
		panic(err)
	}
	return string(b)
}

func decodeStrict(line string, v any) error {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after object")
	}
	return nil
}

// Decode parses the header and the tile lines and rebuilds the board. Blank
// lines are skipped.
func Decode(lines []string) (*puzzle.Board, error) {
	nonBlank := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonBlank = append(nonBlank, line)
		}
	}
	if len(nonBlank) == 0 {
		return nil, fmt.Errorf("%w: missing header", puzzle.ErrCorruptSaveData)
	}

	var h header
	if err := decodeStrict(nonBlank[0], &h); err != nil {
		return nil, fmt.Errorf("%w: malformed header: %v", puzzle.ErrCorruptSaveData, err)
	}
	if h.BlocksPerLine == nil || h.HiddenNumber == nil {
		return nil, fmt.Errorf("%w: header lacks BlocksPerLine or HiddenNumber", puzzle.ErrCorruptSaveData)
	}

	size := int(*h.BlocksPerLine)
	if size < puzzle.MinSize || size > puzzle.MaxSize {
		return nil, fmt.Errorf("%w: bad board size %d", puzzle.ErrCorruptSaveData, size)
	}

	tileLines := nonBlank[1:]
	if len(tileLines) < size*size {
		return nil, fmt.Errorf(
			"%w: want %d tiles, got %d",
			puzzle.ErrIncompleteSaveData, size*size, len(tileLines),
		)
	}

	records := make([]puzzle.TileRecord, 0, len(tileLines))
	for i, line := range tileLines {
		var rec record
		if err := decodeStrict(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: tile line %d: %v", puzzle.ErrCorruptSaveData, i+1, err)
		}
		if rec.CoordX == nil || rec.CoordY == nil || rec.Number == nil {
			return nil, fmt.Errorf("%w: tile line %d lacks a field", puzzle.ErrCorruptSaveData, i+1)
		}
		records = append(records, puzzle.TileRecord{
			Row:    int(*rec.CoordY),
			Col:    int(*rec.CoordX),
			Number: int(*rec.Number),
		})
	}

	return puzzle.FromSaved(size, int(*h.HiddenNumber), records)
}

// Write appends the encoded board to w, one line per record.
func Write(w io.Writer, b *puzzle.Board) error {
	bw := bufio.NewWriter(w)
	for _, line := range Encode(b) {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read consumes r line by line and decodes the board.
func Read(r io.Reader) (*puzzle.Board, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return Decode(lines)
}

func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Join renders lines as a single newline-terminated text blob.
func Join(lines []string) string {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Split is the inverse of Join.
func Split(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
