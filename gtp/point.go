// Package gtp implements the Go Text Protocol front-end: a line-oriented
// command dispatcher over an io.Reader/io.Writer pair, mapping commands
// onto the engine boundary and errors onto one-line failure responses.
package gtp

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fuego-go/fuego/board"
)

// ParseVertex converts a GTP vertex ("D4", "pass") into a board point.
// Column letters skip I, per convention.
func ParseVertex(pos *board.Position, s string) (board.Point, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "PASS" {
		return board.PointPass, nil
	}
	if len(s) < 2 {
		return board.PointNull, errors.Errorf("gtp: invalid vertex %q", s)
	}
	colByte := s[0]
	if colByte < 'A' || colByte > 'Z' || colByte == 'I' {
		return board.PointNull, errors.Errorf("gtp: invalid column in %q", s)
	}
	col := int(colByte - 'A')
	if colByte > 'I' {
		col--
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return board.PointNull, errors.Errorf("gtp: invalid row in %q", s)
	}
	row--
	if row < 0 || row >= pos.Size() || col < 0 || col >= pos.Size() {
		return board.PointNull, errors.Errorf("gtp: vertex %q off board", s)
	}
	return pos.PointAt(row, col), nil
}

// FormatVertex renders a point as a GTP vertex.
func FormatVertex(pos *board.Position, pt board.Point) string {
	if pt == board.PointPass {
		return "pass"
	}
	if pt == board.PointNull {
		return "null"
	}
	row, col := pos.RowCol(pt)
	colByte := byte('A' + col)
	if colByte >= 'I' {
		colByte++
	}
	return string(colByte) + strconv.Itoa(row+1)
}

// ParseColor converts a GTP color argument.
func ParseColor(s string) (board.Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "b", "black":
		return board.Black, nil
	case "w", "white":
		return board.White, nil
	default:
		return board.Empty, errors.Errorf("gtp: invalid color %q", s)
	}
}
