// Package termview draws a game board in the terminal with termloop and turns
// key presses into game commands.
package termview

import (
	"sync"

	"github.com/JoelOtter/termloop"
	"github.com/jauhararifin/blockfall"
	"github.com/jauhararifin/blockfall/keymap"
)

// FrameSource supplies the grid to draw. *blockfall.Game is one.
type FrameSource interface {
	Render() [][]blockfall.Cell
}

type CommandSink func(command blockfall.Command)

// FrameBuffer is a FrameSource holding the last frame it was given, for boards
// rendered somewhere else.
type FrameBuffer struct {
	frame [][]blockfall.Cell
	m     sync.RWMutex
}

func NewFrameBuffer(size int) *FrameBuffer {
	return &FrameBuffer{frame: blockfall.NewBoard(size).Rows()}
}

func (f *FrameBuffer) SetFrame(frame [][]blockfall.Cell) {
	f.m.Lock()
	defer f.m.Unlock()
	f.frame = frame
}

func (f *FrameBuffer) Render() [][]blockfall.Cell {
	f.m.RLock()
	defer f.m.RUnlock()
	return f.frame
}

// BoardView is a termloop entity. It paints the frame source inside a border
// at (x, y) with a status line and the key bindings to its right.
type BoardView struct {
	source FrameSource
	keymap *keymap.Keymap
	sink   CommandSink
	x, y   int

	status     *termloop.Text
	statusFunc func() string
	help       []*termloop.Text
}

func NewBoardView(x, y, size int, source FrameSource, km *keymap.Keymap, sink CommandSink) *BoardView {
	v := &BoardView{
		source: source,
		keymap: km,
		sink:   sink,
		x:      x,
		y:      y,
		status: termloop.NewText(x+size+3, y+1, "", termloop.ColorWhite, termloop.ColorDefault),
	}
	for i, line := range km.Describe() {
		v.help = append(v.help, termloop.NewText(x+size+3, y+3+i, line, termloop.ColorWhite, termloop.ColorDefault))
	}
	return v
}

// SetStatusFunc sets where the status line comes from. It is called on every
// Draw, from termloop's loop, so f must be safe to call from there.
func (v *BoardView) SetStatusFunc(f func() string) {
	v.statusFunc = f
}

func (v *BoardView) refreshStatus() {
	if v.statusFunc != nil {
		v.status.SetText(v.statusFunc())
	}
}

func (v *BoardView) Tick(ev termloop.Event) {
	if v.sink == nil {
		return
	}
	if command, ok := v.keymap.Lookup(ev); ok {
		v.sink(command)
	}
}

var borderCell = termloop.Cell{Fg: termloop.ColorWhite, Bg: termloop.ColorBlack, Ch: '+'}

func cellGlyph(cell blockfall.Cell) termloop.Cell {
	switch cell {
	case blockfall.CellActive:
		return termloop.Cell{Fg: termloop.ColorWhite, Bg: termloop.ColorBlack, Ch: '@'}
	case blockfall.CellLocked:
		return termloop.Cell{Fg: termloop.ColorBlue, Bg: termloop.ColorBlack, Ch: '#'}
	}
	return termloop.Cell{Fg: termloop.ColorWhite, Bg: termloop.ColorBlack, Ch: ' '}
}

func (v *BoardView) Draw(s *termloop.Screen) {
	frame := v.source.Render()
	size := len(frame)

	for i := 0; i < size+2; i++ {
		s.RenderCell(v.x+i, v.y, &borderCell)
		s.RenderCell(v.x+i, v.y+size+1, &borderCell)
		s.RenderCell(v.x, v.y+i, &borderCell)
		s.RenderCell(v.x+size+1, v.y+i, &borderCell)
	}

	for row, cells := range frame {
		for col, cell := range cells {
			glyph := cellGlyph(cell)
			s.RenderCell(v.x+1+col, v.y+1+row, &glyph)
		}
	}

	v.refreshStatus()
	v.status.Draw(s)
	for _, line := range v.help {
		line.Draw(s)
	}
}
