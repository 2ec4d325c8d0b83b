package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errMalformedSnapshot = errors.New("malformed snapshot")

// ReadSnapshot parses one board from r. It returns io.EOF when the input
// ends cleanly before a header line.
func ReadSnapshot(r *bufio.Reader) (*Board, error) {
	header, err := readLine(r)
	if err != nil {
		return nil, err
	}
	for strings.TrimSpace(header) == "" {
		if header, err = readLine(r); err != nil {
			return nil, err
		}
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: header %q: want \"width height\"", errMalformedSnapshot, header)
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("%w: bad width %q", errMalformedSnapshot, fields[0])
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil || height <= 0 {
		return nil, fmt.Errorf("%w: bad height %q", errMalformedSnapshot, fields[1])
	}

	board := NewBoard(width, height)
	var seen [2]bool
	for y := 0; y < height; y++ {
		line, err := readLine(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: row %d: unexpected end of input", errMalformedSnapshot, y)
			}
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		if len(line) != width {
			return nil, fmt.Errorf("%w: row %d: length %d, want %d", errMalformedSnapshot, y, len(line), width)
		}
		for x := 0; x < width; x++ {
			p := Position{X: x, Y: y}
			switch c := line[x]; c {
			case ' ':
			case '#':
				board.SetWall(p, true)
			case '1', '2':
				player := Self
				if c == '2' {
					player = Opponent
				}
				if seen[player] {
					return nil, fmt.Errorf("%w: row %d col %d: second %q", errMalformedSnapshot, y, x, c)
				}
				seen[player] = true
				board.PlaceAgent(player, p)
			default:
				return nil, fmt.Errorf("%w: row %d col %d: unexpected byte %q", errMalformedSnapshot, y, x, c)
			}
		}
	}
	if !seen[Self] || !seen[Opponent] {
		return nil, fmt.Errorf("%w: both agents must be present", errMalformedSnapshot)
	}
	return board, nil
}

// readLine returns one line without its terminator. A final line without a
// newline is returned as is.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// String renders the board in snapshot format.
func (b *Board) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %d\n", b.width, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			p := Position{X: x, Y: y}
			switch {
			case p == b.pos[Self]:
				sb.WriteByte('1')
			case p == b.pos[Opponent]:
				sb.WriteByte('2')
			case b.walls[b.index(p)]:
				sb.WriteByte('#')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseSnapshot is a convenience for callers holding the whole text.
func ParseSnapshot(text string) (*Board, error) {
	board, err := ReadSnapshot(bufio.NewReader(strings.NewReader(text)))
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", errMalformedSnapshot)
	}
	return board, err
}
