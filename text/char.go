// Package text provides character-level utilities shared by the
// scanner: character classes ("maps"), control-character constants, and
// human-readable character translations used when rendering errors.
package text

import (
	"strconv"
	"strings"
	"unicode"
)

// Control characters the scanner and its escape expander care about.
const (
	NullCharacter  rune = 0
	Backspace      rune = '\b'
	HorizontalTab  rune = '\t'
	LineFeed       rune = '\n'
	VerticalTab    rune = 11
	FormFeed       rune = '\f'
	CarriageReturn rune = '\r'
	Escape         rune = 27
	Space          rune = ' '
	Backslash      rune = '\\'
	Delete         rune = 127
)

// A Map is a set of characters, used to drive the scanner's map and
// field primitives.
type Map string

// Contains reports whether c belongs to the map.
func (m Map) Contains(c rune) bool {
	return strings.ContainsRune(string(m), c)
}

// Union combines this map with others into a single map.
func (m Map) Union(others ...Map) Map {
	var sb strings.Builder
	sb.WriteString(string(m))
	for _, other := range others {
		for _, c := range other {
			if !Map(sb.String()).Contains(c) {
				sb.WriteRune(c)
			}
		}
	}
	return Map(sb.String())
}

// Predefined character maps.
const (
	Numbers        Map = "0123456789"
	Octal          Map = "01234567"
	Hex            Map = "0123456789abcdefABCDEF"
	LineWhiteSpace Map = " \t\v\f"
	AllWhiteSpace  Map = " \t\v\f\r\n"
)

// translations is the default character-to-label table. It is never
// mutated; per-scanner overrides are supplied at construction.
var translations = map[rune]string{
	NullCharacter:  "null",
	Backspace:      "backspace",
	HorizontalTab:  "tab",
	LineFeed:       "line feed",
	VerticalTab:    "vertical tab",
	FormFeed:       "form feed",
	CarriageReturn: "carriage return",
	Escape:         "escape",
	Space:          "space",
	Delete:         "delete",
}

// Translate returns a human-readable label for c suitable for error
// messages. Control characters without a dedicated label render as
// "control character <n>"; everything else renders as itself.
func Translate(c rune) string {
	if label, ok := translations[c]; ok {
		return label
	}
	if unicode.IsControl(c) {
		return "control character " + strconv.Itoa(int(c))
	}
	return string(c)
}
