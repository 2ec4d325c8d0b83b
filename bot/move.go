package main

import "fmt"

// Direction is one of the four grid moves. The iteration order North, South,
// West, East only decides tie-breaks.
type Direction uint8

const (
	North Direction = iota
	South
	West
	East
)

var allDirections = [4]Direction{North, South, West, East}

func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case South:
		return "South"
	case West:
		return "West"
	case East:
		return "East"
	default:
		return "Unknown"
	}
}

func (d Direction) opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	default:
		return West
	}
}

// ProtocolCode is the integer the game server expects for a move.
func (d Direction) ProtocolCode() int {
	switch d {
	case North:
		return 1
	case East:
		return 2
	case South:
		return 3
	default:
		return 4
	}
}

// DirectionFromLetter parses the n/e/s/w shorthand used by replay move lists.
func DirectionFromLetter(c byte) (Direction, error) {
	switch c {
	case 'n', 'N':
		return North, nil
	case 's', 'S':
		return South, nil
	case 'w', 'W':
		return West, nil
	case 'e', 'E':
		return East, nil
	default:
		return North, fmt.Errorf("unknown direction letter %q", c)
	}
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) step(d Direction) Position {
	switch d {
	case North:
		return Position{X: p.X, Y: p.Y - 1}
	case South:
		return Position{X: p.X, Y: p.Y + 1}
	case West:
		return Position{X: p.X - 1, Y: p.Y}
	default:
		return Position{X: p.X + 1, Y: p.Y}
	}
}
