package blockfall

import (
	"fmt"
	"strings"
)

type Command int

const (
	MoveUp Command = iota
	MoveDown
	MoveLeft
	MoveRight
	Rotate
)

var commandNames = [...]string{
	MoveUp:    "move-up",
	MoveDown:  "move-down",
	MoveLeft:  "move-left",
	MoveRight: "move-right",
	Rotate:    "rotate",
}

func Commands() []Command {
	return []Command{MoveUp, MoveDown, MoveLeft, MoveRight, Rotate}
}

func (c Command) Valid() bool {
	return c >= 0 && int(c) < len(commandNames)
}

func (c Command) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

// ParseCommand accepts the names returned by Command.String, case-insensitive.
// Underscores and the camel-case form ("MoveLeft") are accepted too.
func ParseCommand(name string) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	for c, n := range commandNames {
		if normalized == n || normalized == strings.ReplaceAll(n, "-", "") {
			return Command(c), nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}
