package blockfall

import (
	"fmt"
)

type Cell int

const (
	CellEmpty Cell = iota
	CellActive
	CellLocked
)

func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellActive:
		return "active"
	case CellLocked:
		return "locked"
	}
	return fmt.Sprintf("Cell(%d)", int(c))
}

const DefaultSize = 12

// Board is a square grid of empty and locked cells. Its size is fixed at
// creation.
type Board struct {
	size  int
	tiles [][]Cell
}

func NewBoard(size int) *Board {
	if size < maxExtent {
		panic(fmt.Errorf("minimal board size is %dx%d", maxExtent, maxExtent))
	}
	return &Board{size: size, tiles: newTiles(size)}
}

func newTiles(size int) [][]Cell {
	tiles := make([][]Cell, size)
	for i := range tiles {
		tiles[i] = make([]Cell, size)
	}
	return tiles
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// Cell returns the cell at (row, col). Coordinates outside the board are a
// programming error and panic.
func (b *Board) Cell(row, col int) Cell {
	b.mustInBounds(row, col)
	return b.tiles[row][col]
}

// SetLocked marks a single cell as locked.
func (b *Board) SetLocked(row, col int) {
	b.mustInBounds(row, col)
	b.tiles[row][col] = CellLocked
}

func (b *Board) mustInBounds(row, col int) {
	if !b.InBounds(row, col) {
		panic(fmt.Errorf("cell (%d, %d) is outside the %dx%d board", row, col, b.size, b.size))
	}
}

// Snapshot renders the board with the active piece on top. Piece cells that
// fall outside the board are skipped. The board itself is left untouched.
func (b *Board) Snapshot(piece ActivePiece) [][]Cell {
	frame := b.Rows()
	for _, offset := range piece.Cells() {
		cell := piece.Anchor.Add(offset)
		if b.InBounds(cell.Row, cell.Col) && frame[cell.Row][cell.Col] == CellEmpty {
			frame[cell.Row][cell.Col] = CellActive
		}
	}
	return frame
}

// Lock writes the piece into the board and returns how many of its cells
// landed on the board. Callers are expected to lock only legal placements;
// cells outside the board are dropped.
func (b *Board) Lock(piece ActivePiece) int {
	written := 0
	for _, offset := range piece.Cells() {
		cell := piece.Anchor.Add(offset)
		if !b.InBounds(cell.Row, cell.Col) {
			continue
		}
		b.tiles[cell.Row][cell.Col] = CellLocked
		written++
	}
	return written
}

func (b *Board) isRowCompleted(row int) bool {
	for col := 0; col < b.size; col++ {
		if b.tiles[row][col] != CellLocked {
			return false
		}
	}
	return true
}

// ClearCompletedRows removes every fully locked row. Rows above a removed row
// move down by one and an empty row enters at the top for each removed row.
// It returns the number of rows removed.
func (b *Board) ClearCompletedRows() int {
	completed := 0
	for row := b.size - 1; row >= 0; row-- {
		if b.isRowCompleted(row) {
			completed++
			continue
		}
		if completed > 0 {
			b.tiles[row+completed] = b.tiles[row]
		}
	}
	for row := 0; row < completed; row++ {
		b.tiles[row] = make([]Cell, b.size)
	}
	return completed
}

// Reset empties every cell.
func (b *Board) Reset() {
	b.tiles = newTiles(b.size)
}

func (b *Board) LockedCount() int {
	count := 0
	for _, row := range b.tiles {
		for _, cell := range row {
			if cell == CellLocked {
				count++
			}
		}
	}
	return count
}

// Rows returns a deep copy of the grid.
func (b *Board) Rows() [][]Cell {
	rows := make([][]Cell, b.size)
	for i, row := range b.tiles {
		rows[i] = make([]Cell, b.size)
		copy(rows[i], row)
	}
	return rows
}

func (b *Board) Clone() *Board {
	return &Board{size: b.size, tiles: b.Rows()}
}

// BoardFromRows builds a board from a square grid. Active cells are treated as
// empty since a board only stores settled cells.
func BoardFromRows(rows [][]Cell) (*Board, error) {
	size := len(rows)
	if size < maxExtent {
		return nil, fmt.Errorf("board must be at least %dx%d, got %d rows", maxExtent, maxExtent, size)
	}
	b := NewBoard(size)
	for i, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), size)
		}
		for j, cell := range row {
			if cell == CellLocked {
				b.tiles[i][j] = CellLocked
			}
		}
	}
	return b, nil
}

func (b *Board) String() string {
	buf := make([]byte, 0, b.size*(b.size+1))
	for _, row := range b.tiles {
		for _, cell := range row {
			if cell == CellLocked {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
