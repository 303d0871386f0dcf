package blockfall_test

import (
	"testing"

	"github.com/jauhararifin/blockfall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, options []blockfall.GameOption, shapes ...blockfall.Shape) *blockfall.Game {
	t.Helper()
	options = append(options, blockfall.WithGetter(blockfall.NewQueueGetter(shapes...)))
	return blockfall.NewGame(options...)
}

func setState(t *testing.T, game *blockfall.Game, board *blockfall.Board, piece blockfall.ActivePiece) {
	t.Helper()
	require.NoError(t, game.SetState(blockfall.State{Board: board.Rows(), Piece: piece}))
}

func TestNewGame(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeAngle)

	assert.Equal(t, blockfall.DefaultSize, game.Size())
	assert.Equal(t, blockfall.ActivePiece{Shape: blockfall.ShapeAngle, Rotation: 0, Anchor: blockfall.SpawnAnchor}, game.Piece())
	assert.Equal(t, 0, game.Board().LockedCount())
}

func TestNewGameWithDefaultGetter(t *testing.T) {
	game := blockfall.NewGame(blockfall.WithSize(16))

	assert.Equal(t, 16, game.Size())
	assert.True(t, game.Piece().Shape.Valid())
	assert.Len(t, game.Render(), 16)
}

func TestMoveDownUntilLocked(t *testing.T) {
	var locked []blockfall.ActivePiece
	var clears []int
	game := newTestGame(t, []blockfall.GameOption{
		blockfall.WithLockHandler(blockfall.LockHandlerFunc(func(piece blockfall.ActivePiece) {
			locked = append(locked, piece)
		})),
		blockfall.WithClearHandler(blockfall.ClearHandlerFunc(func(rows int) {
			clears = append(clears, rows)
		})),
	}, blockfall.ShapeSquare, blockfall.ShapeLine)

	for i := 0; i < 10; i++ {
		game.Apply(blockfall.MoveDown)
		assert.Equal(t, blockfall.Offset{Row: i + 1, Col: 0}, game.Piece().Anchor)
	}
	assert.Empty(t, locked)

	game.Apply(blockfall.MoveDown)

	require.Len(t, locked, 1)
	assert.Equal(t, blockfall.Offset{Row: 10, Col: 0}, locked[0].Anchor)
	assert.Equal(t, []int{0}, clears)

	board := game.Board()
	assert.Equal(t, 4, board.LockedCount())
	for _, cell := range []blockfall.Offset{{10, 0}, {10, 1}, {11, 0}, {11, 1}} {
		assert.Equal(t, blockfall.CellLocked, board.Cell(cell.Row, cell.Col))
	}
	assert.Equal(t, blockfall.ActivePiece{Shape: blockfall.ShapeLine, Rotation: 0, Anchor: blockfall.Offset{Row: 0, Col: 0}}, game.Piece())
	assert.Equal(t, 1, game.State().Locks)
}

func TestLockCompletesRow(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSquare, blockfall.ShapeSpike)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	fillRow(board, 11, 0)
	board.SetLocked(5, 5)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeLine, Rotation: 1})

	cleared := 0
	for game.State().Locks == 0 {
		game.Apply(blockfall.MoveDown)
		cleared = game.State().Cleared
	}

	assert.Equal(t, 1, cleared)
	after := game.Board()
	assert.Equal(t, 4, after.LockedCount())
	for row := 9; row <= 11; row++ {
		assert.Equal(t, blockfall.CellLocked, after.Cell(row, 0))
	}
	assert.Equal(t, blockfall.CellEmpty, after.Cell(8, 0))
	assert.Equal(t, blockfall.CellLocked, after.Cell(6, 5))
	assert.Equal(t, blockfall.CellEmpty, after.Cell(5, 5))
	for col := 1; col < after.Size(); col++ {
		assert.Equal(t, blockfall.CellEmpty, after.Cell(11, col))
	}
	assert.Equal(t, blockfall.ShapeSpike, game.Piece().Shape)
}

func TestMoveLeftAtLeftEdgeIsIgnored(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeAngle)
	before := game.State()

	game.Apply(blockfall.MoveLeft)

	assert.Equal(t, before, game.State())
}

func TestHorizontalMoves(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSpike)

	for i := 0; i < 20; i++ {
		game.Apply(blockfall.MoveRight)
	}
	assert.Equal(t, blockfall.Offset{Row: 0, Col: 9}, game.Piece().Anchor)

	game.Apply(blockfall.MoveLeft)
	assert.Equal(t, blockfall.Offset{Row: 0, Col: 8}, game.Piece().Anchor)
}

func TestHorizontalMoveBlockedByLockedCell(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSquare)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	board.SetLocked(5, 6)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeSquare, Anchor: blockfall.Offset{Row: 4, Col: 4}})

	game.Apply(blockfall.MoveRight)
	assert.Equal(t, blockfall.Offset{Row: 4, Col: 4}, game.Piece().Anchor)
	assert.Equal(t, 1, game.Board().LockedCount())
}

func TestMoveUpIgnoresLockedCells(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSquare)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	board.SetLocked(3, 4)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeSquare, Anchor: blockfall.Offset{Row: 4, Col: 4}})

	game.Apply(blockfall.MoveUp)
	assert.Equal(t, blockfall.Offset{Row: 3, Col: 4}, game.Piece().Anchor)

	for i := 0; i < 10; i++ {
		game.Apply(blockfall.MoveUp)
	}
	assert.Equal(t, blockfall.Offset{Row: 0, Col: 4}, game.Piece().Anchor)
}

func TestStrictMoveUp(t *testing.T) {
	game := newTestGame(t, []blockfall.GameOption{blockfall.WithStrictMoves()}, blockfall.ShapeSquare)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	board.SetLocked(3, 4)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeSquare, Anchor: blockfall.Offset{Row: 4, Col: 4}})

	game.Apply(blockfall.MoveUp)
	assert.Equal(t, blockfall.Offset{Row: 4, Col: 4}, game.Piece().Anchor)
}

func TestRotateCycles(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeAngle)

	for want := 1; want <= 4; want++ {
		game.Apply(blockfall.Rotate)
		assert.Equal(t, want%4, game.Piece().Rotation)
	}
	assert.Equal(t, blockfall.SpawnAnchor, game.Piece().Anchor)

	square := newTestGame(t, nil, blockfall.ShapeSquare)
	square.Apply(blockfall.Rotate)
	assert.Equal(t, 0, square.Piece().Rotation)
}

func TestRotateNearRightEdge(t *testing.T) {
	tests := []struct {
		col     int
		wantCol int
	}{
		{col: 7, wantCol: 7},
		{col: 8, wantCol: 8},
		{col: 9, wantCol: 8},
		{col: 10, wantCol: 8},
		{col: 11, wantCol: 8},
	}
	for _, tt := range tests {
		game := newTestGame(t, nil, blockfall.ShapeLine)
		setState(t, game, blockfall.NewBoard(blockfall.DefaultSize), blockfall.ActivePiece{
			Shape:    blockfall.ShapeLine,
			Rotation: 1,
			Anchor:   blockfall.Offset{Row: 2, Col: tt.col},
		})

		game.Apply(blockfall.Rotate)

		piece := game.Piece()
		assert.Equal(t, tt.wantCol, piece.Anchor.Col, "col %d", tt.col)
		assert.Equal(t, 2, piece.Anchor.Row)
		assert.Equal(t, 0, piece.Rotation)
		assert.False(t, piece.Blocked(game.Board()))
	}
}

func TestRotateAfterMovingRight(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSpike)
	for i := 0; i < 9; i++ {
		game.Apply(blockfall.MoveRight)
	}
	require.Equal(t, 9, game.Piece().Anchor.Col)

	game.Apply(blockfall.Rotate)

	assert.Equal(t, blockfall.ActivePiece{Shape: blockfall.ShapeSpike, Rotation: 1, Anchor: blockfall.Offset{Row: 0, Col: 8}}, game.Piece())
}

func TestRotateDoesNotCheckLockedCells(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeLine)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	board.SetLocked(1, 0)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeLine})

	game.Apply(blockfall.Rotate)

	assert.Equal(t, 1, game.Piece().Rotation)
	assert.True(t, game.Piece().Blocked(game.Board()))
	assert.Equal(t, blockfall.CellLocked, game.Render()[1][0])
}

func TestStrictRotate(t *testing.T) {
	game := newTestGame(t, []blockfall.GameOption{blockfall.WithStrictMoves()}, blockfall.ShapeLine)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	board.SetLocked(1, 0)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeLine})

	game.Apply(blockfall.Rotate)

	assert.Equal(t, blockfall.ActivePiece{Shape: blockfall.ShapeLine}, game.Piece())
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeAngle)
	before := game.State()

	game.Apply(blockfall.Command(42))

	assert.Equal(t, before, game.State())
}

func TestOverflowReset(t *testing.T) {
	game := newTestGame(t, []blockfall.GameOption{blockfall.WithOverflowReset()}, blockfall.ShapeSquare, blockfall.ShapeAngle)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	board.SetLocked(0, 0)
	fillRow(board, 11, 3)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeSquare, Anchor: blockfall.Offset{Row: 9, Col: 4}})

	game.Apply(blockfall.MoveDown)

	assert.Equal(t, 0, game.Board().LockedCount())
	assert.Equal(t, 0, game.State().Locks)
	assert.Equal(t, blockfall.ActivePiece{Shape: blockfall.ShapeAngle, Anchor: blockfall.SpawnAnchor}, game.Piece())
}

func TestWithoutOverflowResetPieceLocks(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSquare, blockfall.ShapeAngle)
	board := blockfall.NewBoard(blockfall.DefaultSize)
	board.SetLocked(0, 0)
	setState(t, game, board, blockfall.ActivePiece{Shape: blockfall.ShapeSquare, Anchor: blockfall.Offset{Row: 10, Col: 4}})

	game.Apply(blockfall.MoveDown)

	assert.Equal(t, 5, game.Board().LockedCount())
	assert.Equal(t, blockfall.ShapeAngle, game.Piece().Shape)
}

func TestRenderShowsActiveAndLocked(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSquare, blockfall.ShapeSquare)
	for game.State().Locks == 0 {
		game.Apply(blockfall.MoveDown)
	}

	frame := game.Render()
	assert.Equal(t, blockfall.CellActive, frame[0][0])
	assert.Equal(t, blockfall.CellActive, frame[1][1])
	assert.Equal(t, blockfall.CellLocked, frame[10][0])
	assert.Equal(t, blockfall.CellLocked, frame[11][1])
	assert.Equal(t, blockfall.CellEmpty, frame[5][5])
}

func TestSetStateValidation(t *testing.T) {
	game := newTestGame(t, nil, blockfall.ShapeSquare)
	rows := blockfall.NewBoard(blockfall.DefaultSize).Rows()

	assert.Error(t, game.SetState(blockfall.State{Board: blockfall.NewBoard(8).Rows()}))
	assert.Error(t, game.SetState(blockfall.State{Board: rows, Piece: blockfall.ActivePiece{Shape: 7}}))
	assert.Error(t, game.SetState(blockfall.State{Board: rows, Piece: blockfall.ActivePiece{Shape: blockfall.ShapeLine, Rotation: 2}}))
	assert.NoError(t, game.SetState(blockfall.State{Board: rows, Piece: blockfall.ActivePiece{Shape: blockfall.ShapeLine, Rotation: 1}}))
}

func TestLockedPlacementsAreLegal(t *testing.T) {
	game := blockfall.NewGame(blockfall.WithGetter(blockfall.NewRandomGetter(11)))
	commands := []blockfall.Command{blockfall.MoveLeft, blockfall.MoveRight, blockfall.MoveDown, blockfall.MoveDown, blockfall.MoveRight, blockfall.MoveDown}

	locks := 0
	for i := 0; i < 2000; i++ {
		board := game.Board()
		piece := game.Piece()
		if piece.Blocked(board) {
			break
		}

		game.Apply(commands[i%len(commands)])

		state := game.State()
		if state.Locks == locks {
			assert.False(t, game.Piece().Blocked(board))
			continue
		}
		locks = state.Locks
		assert.False(t, piece.Blocked(board), "locked %v on an occupied or out of range placement", piece)
		assert.Equal(t, blockfall.SpawnAnchor, game.Piece().Anchor)
		assert.Equal(t, 0, game.Piece().Rotation)
	}
	assert.Greater(t, locks, 2)
}
