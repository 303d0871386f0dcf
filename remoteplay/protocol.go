package main

import (
	"bytes"
	"encoding/gob"

	"github.com/jauhararifin/blockfall"
)

const maxPacketSize = 64 * 1024

type JoinMessage struct {
	ID     string
	Name   string
	Strict bool
}

type CommandMessage struct {
	ID      string
	Command blockfall.Command
}

type LeaveMessage struct {
	ID string
}

// UserMessage is what clients send. Exactly one field is set.
type UserMessage struct {
	Join    *JoinMessage
	Command *CommandMessage
	Leave   *LeaveMessage
}

// FrameMessage is pushed to the client after every change of its game. A join
// the server refuses is answered with a frame carrying only Rejected.
type FrameMessage struct {
	Grid     [][]blockfall.Cell
	Piece    blockfall.ActivePiece
	Cleared  int
	Rejected string
}

func encode(v interface{}) ([]byte, error) {
	buff := &bytes.Buffer{}
	if err := gob.NewEncoder(buff).Encode(v); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

func decode(msg []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(msg)).Decode(v)
}
