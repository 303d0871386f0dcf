package main

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/JoelOtter/termloop"
	"github.com/google/uuid"
	"github.com/jauhararifin/blockfall"
	"github.com/jauhararifin/blockfall/keymap"
	"github.com/jauhararifin/blockfall/termview"
)

const (
	joinTimeout     = 5 * time.Second
	readBackoff     = 100 * time.Millisecond
	maxReadFailures = 10
)

type client struct {
	id      string
	conn    *net.UDPConn
	backoff time.Duration
}

func (c *client) send(msg UserMessage) error {
	b, err := encode(msg)
	if err != nil {
		return fmt.Errorf("cannot encode user message: %w", err)
	}
	if _, err := c.conn.Write(b); err != nil {
		return fmt.Errorf("cannot send user message: %w", err)
	}
	return nil
}

func (c *client) sendCommand(command blockfall.Command) {
	if err := c.send(UserMessage{Command: &CommandMessage{ID: c.id, Command: command}}); err != nil {
		log.Printf("cannot send %s: %v\n", command, err)
	}
}

func (c *client) readFrame(buff []byte) (FrameMessage, error) {
	frame := FrameMessage{}
	n, _, err := c.conn.ReadFromUDP(buff)
	if err != nil {
		return frame, fmt.Errorf("cannot read from udp: %w", err)
	}
	if err := decode(buff[:n], &frame); err != nil {
		return frame, fmt.Errorf("cannot decode frame message: %w", err)
	}
	return frame, nil
}

// join sends the join message and waits up to timeout for the first frame.
func (c *client) join(name string, strict bool, timeout time.Duration) (FrameMessage, error) {
	if strings.TrimSpace(name) == "" {
		return FrameMessage{}, fmt.Errorf("player name cannot be empty")
	}
	if err := c.send(UserMessage{Join: &JoinMessage{ID: c.id, Name: name, Strict: strict}}); err != nil {
		return FrameMessage{}, err
	}
	log.Printf("user join message sent\n")

	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return FrameMessage{}, fmt.Errorf("cannot set read deadline: %w", err)
	}
	defer c.conn.SetReadDeadline(time.Time{})

	frame, err := c.readFrame(make([]byte, maxPacketSize))
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return frame, fmt.Errorf("server did not answer join within %v", timeout)
	}
	if err != nil {
		return frame, err
	}
	if frame.Rejected != "" {
		return frame, fmt.Errorf("server rejected join: %s", frame.Rejected)
	}
	return frame, nil
}

// readFrames copies incoming frames into frames until the connection is
// closed or reading keeps failing.
func (c *client) readFrames(frames *termview.FrameBuffer, cleared *atomic.Int64) {
	buff := make([]byte, maxPacketSize)
	failures := 0
	for {
		frame, err := c.readFrame(buff)
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			failures++
			if failures >= maxReadFailures {
				log.Printf("giving up on server frames: %v\n", err)
				return
			}
			log.Printf("%v\n", err)
			time.Sleep(time.Duration(failures) * c.backoff)
			continue
		}
		failures = 0
		frames.SetFrame(frame.Grid)
		cleared.Store(int64(frame.Cleared))
	}
}

func startClient(host, name string, km *keymap.Keymap, strict bool) error {
	id := uuid.NewString()
	log.Printf("id generated: %s\n", id)

	addr, err := net.ResolveUDPAddr("udp4", host)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", host, err)
	}

	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return fmt.Errorf("cannot dial %v: %w", addr, err)
	}
	defer conn.Close()

	c := &client{id: id, conn: conn, backoff: readBackoff}
	first, err := c.join(name, strict, joinTimeout)
	if err != nil {
		return err
	}
	log.Printf("first frame received, board is %dx%d\n", len(first.Grid), len(first.Grid))

	var cleared atomic.Int64
	cleared.Store(int64(first.Cleared))
	frames := termview.NewFrameBuffer(len(first.Grid))
	frames.SetFrame(first.Grid)
	view := termview.NewBoardView(0, 0, len(first.Grid), frames, km, c.sendCommand)
	view.SetStatusFunc(func() string {
		return fmt.Sprintf("Cleared: %d", cleared.Load())
	})

	go c.readFrames(frames, &cleared)

	game := termloop.NewGame()
	level := termloop.NewBaseLevel(termloop.Cell{})
	level.AddEntity(view)
	game.Screen().SetLevel(level)
	game.Start()

	return c.send(UserMessage{Leave: &LeaveMessage{ID: id}})
}
