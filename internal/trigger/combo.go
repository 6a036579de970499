package trigger

import (
	"fmt"
	"strings"
)

// Modifier is a key held together with the main key.
type Modifier int

const (
	ModCtrl Modifier = iota + 1
	ModShift
)

func (m Modifier) String() string {
	switch m {
	case ModCtrl:
		return "ctrl"
	case ModShift:
		return "shift"
	default:
		return fmt.Sprintf("mod(%d)", int(m))
	}
}

var modifierNames = map[string]Modifier{
	"ctrl":  ModCtrl,
	"shift": ModShift,
}

// keyNames lists the main keys every platform backend can bind.
var keyNames = []string{
	"space",
	"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
}

// Combo is a parsed key combination such as ctrl+shift+space.
type Combo struct {
	Mods []Modifier
	Key  string
}

// Has reports whether m is part of the combination.
func (c Combo) Has(m Modifier) bool {
	for _, mod := range c.Mods {
		if mod == m {
			return true
		}
	}
	return false
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		parts = append(parts, m.String())
	}
	return strings.Join(append(parts, c.Key), "+")
}

// ParseHotkey splits a combination such as "f9" or "ctrl+shift+space".
func ParseHotkey(combo string) (Combo, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")
	var c Combo
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[strings.TrimSpace(p)]
		if !ok {
			return Combo{}, fmt.Errorf("unknown modifier %q in %q", p, combo)
		}
		if !c.Has(m) {
			c.Mods = append(c.Mods, m)
		}
	}
	c.Key = strings.TrimSpace(parts[len(parts)-1])
	for _, k := range keyNames {
		if k == c.Key {
			return c, nil
		}
	}
	return Combo{}, fmt.Errorf("unknown key %q", combo)
}
