// Package keymap maps terminal key presses onto game commands. Bindings come
// from built-in defaults, optionally overridden by a YAML file:
//
//	bindings:
//	  ArrowUp: rotate
//	  w: move-up
//	  Space: none
package keymap

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/JoelOtter/termloop"
	"github.com/jauhararifin/blockfall"
	"gopkg.in/yaml.v3"
)

// Unbound removes a default binding when used as a command name.
const Unbound = "none"

type Config struct {
	Bindings map[string]string `yaml:"bindings"`
}

func defaults() Config {
	return Config{Bindings: map[string]string{
		"ArrowUp":    blockfall.MoveUp.String(),
		"ArrowDown":  blockfall.MoveDown.String(),
		"ArrowLeft":  blockfall.MoveLeft.String(),
		"ArrowRight": blockfall.MoveRight.String(),
		"Space":      blockfall.Rotate.String(),
	}}
}

var namedKeys = map[string]termloop.Key{
	"arrowup":    termloop.KeyArrowUp,
	"arrowdown":  termloop.KeyArrowDown,
	"arrowleft":  termloop.KeyArrowLeft,
	"arrowright": termloop.KeyArrowRight,
	"space":      termloop.KeySpace,
	"enter":      termloop.KeyEnter,
	"tab":        termloop.KeyTab,
}

// key identifies a press: either a special key or a printable rune.
type key struct {
	special termloop.Key
	ch      rune
}

type Keymap struct {
	bindings map[key]blockfall.Command
}

func Default() *Keymap {
	km := &Keymap{bindings: make(map[key]blockfall.Command)}
	if err := km.apply(defaults()); err != nil {
		panic(err)
	}
	return km
}

// Load reads bindings from path on top of the defaults. An empty path yields
// the defaults.
func Load(path string) (*Keymap, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read keymap: %w", err)
	}
	km, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return km, nil
}

func Parse(b []byte) (*Keymap, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse keymap: %w", err)
	}
	km := Default()
	if err := km.apply(cfg); err != nil {
		return nil, err
	}
	return km, nil
}

func (km *Keymap) apply(cfg Config) error {
	for name, command := range cfg.Bindings {
		k, err := parseKey(name)
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(command), Unbound) {
			delete(km.bindings, k)
			continue
		}
		c, err := blockfall.ParseCommand(command)
		if err != nil {
			return fmt.Errorf("key %s: %w", name, err)
		}
		km.bindings[k] = c
	}
	return nil
}

func parseKey(name string) (key, error) {
	if special, ok := namedKeys[strings.ToLower(name)]; ok {
		return key{special: special}, nil
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if r == ' ' {
			return key{special: termloop.KeySpace}, nil
		}
		return key{ch: r}, nil
	}
	return key{}, fmt.Errorf("unknown key %q", name)
}

// Lookup returns the command bound to a key event, if any.
func (km *Keymap) Lookup(ev termloop.Event) (blockfall.Command, bool) {
	if ev.Type != termloop.EventKey {
		return 0, false
	}
	if ev.Ch != 0 {
		c, ok := km.bindings[key{ch: ev.Ch}]
		return c, ok
	}
	c, ok := km.bindings[key{special: ev.Key}]
	return c, ok
}

// Describe lists the bindings as "key: command" lines, sorted by key.
func (km *Keymap) Describe() []string {
	names := make(map[termloop.Key]string, len(namedKeys))
	for name, k := range namedKeys {
		names[k] = name
	}

	lines := make([]string, 0, len(km.bindings))
	for k, c := range km.bindings {
		name := string(k.ch)
		if k.ch == 0 {
			name = names[k.special]
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, c))
	}
	sort.Strings(lines)
	return lines
}
