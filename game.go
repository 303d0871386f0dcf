package blockfall

import (
	"fmt"
	"sync"
	"time"
)

// ActivePiece is the falling piece: a catalog shape, one of its rotations and
// the anchor its cell offsets are added to.
type ActivePiece struct {
	Shape    Shape
	Rotation int
	Anchor   Offset
}

// SpawnAnchor is where every new piece appears.
var SpawnAnchor = Offset{Row: 0, Col: 0}

func (p ActivePiece) Cells() Rotation {
	return p.Shape.Cells(p.Rotation)
}

// Footprint returns the absolute board cells covered by the piece.
func (p ActivePiece) Footprint() [4]Offset {
	var cells [4]Offset
	for i, offset := range p.Cells() {
		cells[i] = p.Anchor.Add(offset)
	}
	return cells
}

// ClearHandler is told how many rows each lock cleared. Handlers run while the
// game is busy with the command and must not call back into the same Game.
type ClearHandler interface {
	OnCleared(rows int)
}

type ClearHandlerFunc func(rows int)

func (f ClearHandlerFunc) OnCleared(rows int) {
	f(rows)
}

type LockHandler interface {
	OnLocked(piece ActivePiece)
}

type LockHandlerFunc func(piece ActivePiece)

func (f LockHandlerFunc) OnLocked(piece ActivePiece) {
	f(piece)
}

// State is a copy of everything a Game holds apart from its shape source.
type State struct {
	Board   [][]Cell
	Piece   ActivePiece
	Locks   int
	Cleared int
}

// Game holds the board and the active piece and applies commands to them.
// Commands are applied one at a time, each running to completion, so a Game
// may be driven from several goroutines.
type Game struct {
	getter          ShapeGetter
	clearHandler    ClearHandler
	lockHandler     LockHandler
	size            int
	strict          bool
	resetOnOverflow bool

	board   *Board
	piece   ActivePiece
	locks   int
	cleared int

	m sync.Mutex
}

type GameOption func(*Game)

func WithSize(size int) GameOption {
	if size < maxExtent {
		panic(fmt.Errorf("minimal board size is %dx%d", maxExtent, maxExtent))
	}
	return func(game *Game) {
		game.size = size
	}
}

func WithGetter(getter ShapeGetter) GameOption {
	return func(game *Game) {
		game.getter = getter
	}
}

func WithClearHandler(handler ClearHandler) GameOption {
	return func(game *Game) {
		game.clearHandler = handler
	}
}

func WithLockHandler(handler LockHandler) GameOption {
	return func(game *Game) {
		game.lockHandler = handler
	}
}

// WithStrictMoves adds collision checks to MoveUp and Rotate, which otherwise
// move the piece without looking at locked cells.
func WithStrictMoves() GameOption {
	return func(game *Game) {
		game.strict = true
	}
}

// WithOverflowReset wipes the board instead of locking a piece once the spawn
// cell is already locked.
func WithOverflowReset() GameOption {
	return func(game *Game) {
		game.resetOnOverflow = true
	}
}

func NewGame(options ...GameOption) *Game {
	game := &Game{
		size: DefaultSize,
	}
	for _, opt := range options {
		opt(game)
	}
	if game.getter == nil {
		game.getter = NewRandomGetter(time.Now().UnixNano())
	}

	game.board = NewBoard(game.size)
	game.spawn()
	return game
}

func (g *Game) Size() int {
	return g.size
}

func (g *Game) Piece() ActivePiece {
	g.m.Lock()
	defer g.m.Unlock()
	return g.piece
}

// Board returns a copy of the settled cells.
func (g *Game) Board() *Board {
	g.m.Lock()
	defer g.m.Unlock()
	return g.board.Clone()
}

func (g *Game) State() State {
	g.m.Lock()
	defer g.m.Unlock()

	return State{
		Board:   g.board.Rows(),
		Piece:   g.piece,
		Locks:   g.locks,
		Cleared: g.cleared,
	}
}

// SetState replaces the board and the active piece. The board must match the
// game size and the piece must name a catalog shape and rotation.
func (g *Game) SetState(state State) error {
	board, err := BoardFromRows(state.Board)
	if err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	if board.Size() != g.size {
		return fmt.Errorf("board is %dx%d, game is %dx%d", board.Size(), board.Size(), g.size, g.size)
	}
	if !state.Piece.Shape.Valid() {
		return fmt.Errorf("unknown shape %d", int(state.Piece.Shape))
	}
	if state.Piece.Rotation < 0 || state.Piece.Rotation >= state.Piece.Shape.RotationCount() {
		return fmt.Errorf("rotation %d out of range for %s", state.Piece.Rotation, state.Piece.Shape)
	}

	g.m.Lock()
	defer g.m.Unlock()

	g.board = board
	g.piece = state.Piece
	g.locks = state.Locks
	g.cleared = state.Cleared
	return nil
}

// Render returns the board with the active piece drawn on it.
func (g *Game) Render() [][]Cell {
	g.m.Lock()
	defer g.m.Unlock()
	return g.board.Snapshot(g.piece)
}

// Apply runs a single command. Commands that cannot be carried out are
// ignored.
func (g *Game) Apply(command Command) {
	g.m.Lock()
	defer g.m.Unlock()

	switch command {
	case MoveUp:
		g.applyMoveUp()
	case MoveDown:
		g.applyMoveDown()
	case MoveLeft:
		g.shift(Offset{Row: 0, Col: -1})
	case MoveRight:
		g.shift(Offset{Row: 0, Col: 1})
	case Rotate:
		g.applyRotate()
	}
}

func (g *Game) applyMoveDown() {
	if g.shift(Offset{Row: 1, Col: 0}) {
		return
	}
	g.commit()
	g.spawn()
}

// shift moves the piece by delta if the new placement is free.
func (g *Game) shift(delta Offset) bool {
	candidate := g.piece.Anchor.Add(delta)
	if IsBlocked(g.board, g.piece.Shape, g.piece.Rotation, candidate) {
		return false
	}
	g.piece.Anchor = candidate
	return true
}

// Upward movement only stays within the top edge. Locked cells are not
// consulted unless strict moves are on.
func (g *Game) applyMoveUp() {
	candidate := g.piece.Anchor.Add(Offset{Row: -1, Col: 0})
	if candidate.Row < 0 {
		return
	}
	if g.strict && IsBlocked(g.board, g.piece.Shape, g.piece.Rotation, candidate) {
		return
	}
	g.piece.Anchor = candidate
}

// applyRotate pulls the anchor left when a four cell wide footprint would run
// past the right edge, then advances the rotation. The rotated placement is
// not checked unless strict moves are on.
func (g *Game) applyRotate() {
	anchor := g.piece.Anchor
	anchor.Col -= rotateOverflow(anchor.Col, g.size)
	rotation := (g.piece.Rotation + 1) % g.piece.Shape.RotationCount()

	if g.strict && IsBlocked(g.board, g.piece.Shape, rotation, anchor) {
		return
	}
	g.piece.Anchor = anchor
	g.piece.Rotation = rotation
}

// rotateOverflow is how many columns a piece anchored at col sticks out past
// the last column when it is maxExtent cells wide.
func rotateOverflow(col, size int) int {
	if col+maxExtent-1 < size {
		return 0
	}
	return col + maxExtent - 1 - (size - 1)
}

func (g *Game) commit() {
	if g.resetOnOverflow && g.board.tiles[SpawnAnchor.Row][SpawnAnchor.Col] == CellLocked {
		g.board.Reset()
		return
	}

	g.board.Lock(g.piece)
	g.locks++
	if g.lockHandler != nil {
		g.lockHandler.OnLocked(g.piece)
	}

	rows := g.board.ClearCompletedRows()
	g.cleared += rows
	if g.clearHandler != nil {
		g.clearHandler.OnCleared(rows)
	}
}

func (g *Game) spawn() {
	g.piece = ActivePiece{
		Shape:    g.getter.Next(),
		Rotation: 0,
		Anchor:   SpawnAnchor,
	}
}
