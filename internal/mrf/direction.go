package mrf

import (
	"fmt"
	"strings"
)

// Direction labels one of the five per-cell channels. The four message
// directions are also the sweep directions; Base is the evidence channel and
// is never a valid argument to a message update.
type Direction int

const (
	Right Direction = iota
	Up
	Left
	Down
	Base

	numChannels = 5
)

// SweepOrder is the order in which PassSweep updates directions.
var SweepOrder = [4]Direction{Right, Up, Left, Down}

var directionNames = [numChannels]string{"right", "up", "left", "down", "base"}

func (d Direction) String() string {
	if d < 0 || int(d) >= numChannels {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// IsMessage reports whether d is one of the four message directions.
func (d Direction) IsMessage() bool {
	return d >= Right && d <= Down
}

// Opposite returns the direction pointing back the way d came. Base and
// unrecognised values map to themselves.
func (d Direction) Opposite() Direction {
	if !d.IsMessage() {
		return d
	}
	return (d + 2) % 4
}

// offset returns the (dy, dx) step from a cell to its neighbour in d.
func (d Direction) offset() (int, int) {
	switch d {
	case Right:
		return 0, 1
	case Up:
		return -1, 0
	case Left:
		return 0, -1
	case Down:
		return 1, 0
	}
	return 0, 0
}

// ParseDirection resolves a case-insensitive direction name.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("mrf: unknown direction %q: %w", s, ErrInvalidDirection)
}
