package main

import (
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/JoelOtter/termloop"
	"github.com/jauhararifin/blockfall"
	"github.com/jauhararifin/blockfall/keymap"
	"github.com/jauhararifin/blockfall/termview"
)

func main() {
	keymapPath := flag.String("keymap", "", "yaml file with key bindings")
	gravity := flag.Duration("gravity", 500*time.Millisecond, "interval between automatic move-down commands, 0 disables")
	seed := flag.Int64("seed", 0, "piece seed, 0 picks one from the clock")
	strict := flag.Bool("strict", false, "check collisions on move-up and rotate")
	resetOnOverflow := flag.Bool("reset-on-overflow", false, "wipe the board once the spawn cell is taken")
	flag.Parse()

	km, err := keymap.Load(*keymapPath)
	if err != nil {
		log.Fatalf("cannot load keymap: %v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	options := []blockfall.GameOption{blockfall.WithGetter(blockfall.NewRandomGetter(*seed))}
	if *strict {
		options = append(options, blockfall.WithStrictMoves())
	}
	if *resetOnOverflow {
		options = append(options, blockfall.WithOverflowReset())
	}

	game := termloop.NewGame()
	level := termloop.NewBaseLevel(termloop.Cell{})
	level.AddEntity(newBoardPlayer(0, 0, km, *gravity, options))
	game.Screen().SetLevel(level)
	game.Start()
}

type boardPlayer struct {
	*termview.BoardView
	game    *blockfall.Game
	cleared atomic.Int64
}

func newBoardPlayer(x, y int, km *keymap.Keymap, gravity time.Duration, options []blockfall.GameOption) *boardPlayer {
	b := &boardPlayer{}

	options = append(options, blockfall.WithClearHandler(blockfall.ClearHandlerFunc(func(rows int) {
		b.cleared.Add(int64(rows))
	})))
	b.game = blockfall.NewGame(options...)
	b.BoardView = termview.NewBoardView(x, y, b.game.Size(), b.game, km, b.game.Apply)
	b.SetStatusFunc(b.status)

	if gravity > 0 {
		ticker := time.NewTicker(gravity)
		go func() {
			for range ticker.C {
				b.game.Apply(blockfall.MoveDown)
			}
		}()
	}

	return b
}

func (b *boardPlayer) status() string {
	return fmt.Sprintf("Cleared: %d", b.cleared.Load())
}
