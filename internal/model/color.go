package model

import (
	"errors"
	"fmt"
	"strings"
)

// Color is a faction color or the colorless neutral category.
type Color string

const (
	Red     Color = "red"
	Green   Color = "green"
	Blue    Color = "blue"
	Yellow  Color = "yellow"
	Neutral Color = "neutral"
)

var ErrUnknownColor = errors.New("unknown color")

// Factions lists the four player colors in board order.
var Factions = []Color{Blue, Red, Yellow, Green}

// Colors lists every deck color, neutral last.
var Colors = []Color{Blue, Red, Yellow, Green, Neutral}

// IsFaction reports whether c can be a player's color.
func (c Color) IsFaction() bool {
	switch c {
	case Red, Green, Blue, Yellow:
		return true
	}
	return false
}

func (c Color) String() string { return string(c) }

// ParseColor accepts any casing of a known color name.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case Red, Green, Blue, Yellow, Neutral:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
}
