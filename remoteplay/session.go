package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jauhararifin/blockfall"
)

type MessageSender interface {
	Send(playerID string, msg []byte) error
}

type MessageSenderFunc func(playerID string, msg []byte) error

func (f MessageSenderFunc) Send(playerID string, msg []byte) error {
	return f(playerID, msg)
}

type Player struct {
	ID   string
	Name string
}

// Session is one remote game. Commands come from the player, move-down ticks
// from the session's own gravity ticker, and every change is pushed back as a
// frame.
type Session struct {
	player  Player
	game    *blockfall.Game
	sender  MessageSender
	gravity time.Duration

	// cmd keeps a command and the frame it produced together.
	cmd sync.Mutex

	m      sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

func NewSession(player Player, sender MessageSender, gravity time.Duration, options ...blockfall.GameOption) (*Session, error) {
	if player.ID == "" || player.Name == "" {
		return nil, fmt.Errorf("player id or name cannot empty")
	}
	return &Session{
		player:  player,
		game:    blockfall.NewGame(options...),
		sender:  sender,
		gravity: gravity,
	}, nil
}

// Resend pushes the current frame again, for a player rejoining the session.
func (s *Session) Resend() {
	s.cmd.Lock()
	defer s.cmd.Unlock()
	s.pushFrame()
}

// Start pushes the first frame and starts the gravity ticker.
func (s *Session) Start() {
	s.Resend()

	s.m.Lock()
	defer s.m.Unlock()
	if s.gravity <= 0 || s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.gravity)
	s.done = make(chan struct{})
	go s.fall(s.ticker, s.done)
}

func (s *Session) fall(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-ticker.C:
			s.OnCommand(blockfall.MoveDown)
		case <-done:
			return
		}
	}
}

func (s *Session) Stop() {
	s.m.Lock()
	defer s.m.Unlock()
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil
}

func (s *Session) OnCommand(command blockfall.Command) {
	if !command.Valid() {
		log.Printf("ignoring unknown command %d from player %s\n", int(command), s.player.ID)
		return
	}
	s.cmd.Lock()
	defer s.cmd.Unlock()
	s.game.Apply(command)
	s.pushFrame()
}

func (s *Session) frame() FrameMessage {
	state := s.game.State()
	return FrameMessage{
		Grid:    s.game.Render(),
		Piece:   state.Piece,
		Cleared: state.Cleared,
	}
}

func (s *Session) pushFrame() {
	msg, err := encode(s.frame())
	if err != nil {
		log.Printf("cannot encode frame message: %v\n", err)
		return
	}
	if err := s.sender.Send(s.player.ID, msg); err != nil {
		log.Printf("cannot send frame message to player %s: %v\n", s.player.ID, err)
	}
}
