package blockfall

// IsBlocked reports whether placing shape in the given rotation at anchor would
// put any of its cells outside the board or on a locked cell. The check covers
// the whole footprint at once and only looks at locked cells, never at the
// active piece.
func IsBlocked(board *Board, shape Shape, rotation int, anchor Offset) bool {
	for _, offset := range shape.Cells(rotation) {
		cell := anchor.Add(offset)
		if !board.InBounds(cell.Row, cell.Col) {
			return true
		}
		if board.tiles[cell.Row][cell.Col] == CellLocked {
			return true
		}
	}
	return false
}

// Blocked is IsBlocked for the piece's own rotation and anchor.
func (p ActivePiece) Blocked(board *Board) bool {
	return IsBlocked(board, p.Shape, p.Rotation, p.Anchor)
}
