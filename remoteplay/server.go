package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jauhararifin/blockfall"
)

type server struct {
	write   func(msg []byte, addr *net.UDPAddr) error
	gravity time.Duration

	m          sync.Mutex
	randomizer *rand.Rand
	sessions   map[string]*Session
	userAddr   map[string]*net.UDPAddr
}

func newServer(write func(msg []byte, addr *net.UDPAddr) error, gravity time.Duration, seed int64) *server {
	return &server{
		write:      write,
		gravity:    gravity,
		randomizer: rand.New(rand.NewSource(seed)),
		sessions:   make(map[string]*Session),
		userAddr:   make(map[string]*net.UDPAddr),
	}
}

func (s *server) Send(playerID string, msg []byte) error {
	s.m.Lock()
	addr, ok := s.userAddr[playerID]
	s.m.Unlock()
	if !ok {
		return fmt.Errorf("cannot get user addr with id=%s", playerID)
	}
	return s.write(msg, addr)
}

func (s *server) OnUserJoin(msg *JoinMessage, addr *net.UDPAddr) error {
	s.m.Lock()
	if existing, ok := s.sessions[msg.ID]; ok {
		s.userAddr[msg.ID] = addr
		s.m.Unlock()
		log.Printf("player %s rejoined from %v\n", msg.ID, addr)
		existing.Resend()
		return nil
	}
	options := []blockfall.GameOption{blockfall.WithGetter(blockfall.NewRandomGetter(s.randomizer.Int63()))}
	if msg.Strict {
		options = append(options, blockfall.WithStrictMoves())
	}
	session, err := NewSession(Player{ID: msg.ID, Name: msg.Name}, s, s.gravity, options...)
	if err != nil {
		s.m.Unlock()
		s.reject(addr, err)
		return err
	}
	s.sessions[msg.ID] = session
	s.userAddr[msg.ID] = addr
	s.m.Unlock()

	log.Printf("player %s (%s) joined from %v\n", msg.Name, msg.ID, addr)
	session.Start()
	return nil
}

// reject answers a refused join so the client does not wait for a frame.
func (s *server) reject(addr *net.UDPAddr, reason error) {
	msg, err := encode(FrameMessage{Rejected: reason.Error()})
	if err != nil {
		log.Printf("cannot encode reject message: %v\n", err)
		return
	}
	if err := s.write(msg, addr); err != nil {
		log.Printf("cannot send reject message to %v: %v\n", addr, err)
	}
}

func (s *server) session(id string) (*Session, error) {
	s.m.Lock()
	defer s.m.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("cannot get session with id=%s", id)
	}
	return session, nil
}

func (s *server) OnUserCommand(msg *CommandMessage) error {
	session, err := s.session(msg.ID)
	if err != nil {
		return err
	}
	session.OnCommand(msg.Command)
	return nil
}

func (s *server) OnUserLeave(msg *LeaveMessage) error {
	session, err := s.session(msg.ID)
	if err != nil {
		return err
	}
	session.Stop()

	s.m.Lock()
	delete(s.sessions, msg.ID)
	delete(s.userAddr, msg.ID)
	s.m.Unlock()

	log.Printf("player %s left\n", msg.ID)
	return nil
}

func (s *server) handle(packet []byte, addr *net.UDPAddr) error {
	userMsg := UserMessage{}
	if err := decode(packet, &userMsg); err != nil {
		return fmt.Errorf("cannot parse user message: %w", err)
	}

	switch {
	case userMsg.Join != nil:
		return s.OnUserJoin(userMsg.Join, addr)
	case userMsg.Command != nil:
		return s.OnUserCommand(userMsg.Command)
	case userMsg.Leave != nil:
		return s.OnUserLeave(userMsg.Leave)
	}
	return fmt.Errorf("empty user message from %v", addr)
}

func (s *server) stopAll() {
	s.m.Lock()
	defer s.m.Unlock()
	for _, session := range s.sessions {
		session.Stop()
	}
}

// serve reads packets until conn is closed, then stops every session.
func (s *server) serve(conn *net.UDPConn) error {
	defer s.stopAll()

	buff := make([]byte, maxPacketSize)
	for {
		n, addr, err := conn.ReadFromUDP(buff)
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		if err != nil {
			log.Printf("cannot read from udp: %v\n", err)
			continue
		}

		if err := s.handle(buff[:n], addr); err != nil {
			log.Printf("cannot handle message from %v: %v\n", addr, err)
		}
	}
}

func startServer(addr string, gravity time.Duration) error {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}
	log.Printf("listening on %v\n", conn.LocalAddr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	gameServer := newServer(func(msg []byte, addr *net.UDPAddr) error {
		_, err := conn.WriteToUDP(msg, addr)
		return err
	}, gravity, time.Now().UnixNano())

	err = gameServer.serve(conn)
	log.Printf("server stopped\n")
	return err
}
