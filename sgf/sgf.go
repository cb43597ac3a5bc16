// Package sgf writes game records in SGF form and dumps search trees as
// GraphViz documents for offline analysis. Reading SGF is out of scope;
// the engine only ever produces records.
package sgf

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/fuego-go/fuego/board"
)

// WriteGame writes pos's game — setup stones, then the move sequence — as
// a single-variation SGF tree. result may be empty or a score string like
// "B+3.5".
func WriteGame(w io.Writer, pos *board.Position, result string) error {
	var sb strings.Builder
	sb.WriteString("(;FF[4]GM[1]CA[UTF-8]AP[fuego-go]")
	fmt.Fprintf(&sb, "SZ[%d]", pos.Size())
	fmt.Fprintf(&sb, "KM[%.1f]", pos.Rules().Komi)
	if result != "" {
		fmt.Fprintf(&sb, "RE[%s]", result)
	}

	setup := pos.SetupStones()
	var black, white []string
	for _, s := range setup {
		coord := pointCoord(pos, s.Point)
		if s.Color == board.Black {
			black = append(black, coord)
		} else {
			white = append(white, coord)
		}
	}
	writeSetup(&sb, "AB", black)
	writeSetup(&sb, "AW", white)

	for _, m := range pos.Moves() {
		tag := "B"
		if m.Color == board.White {
			tag = "W"
		}
		fmt.Fprintf(&sb, ";%s[%s]", tag, pointCoord(pos, m.Point))
	}
	sb.WriteString(")\n")

	_, err := io.WriteString(w, sb.String())
	return errors.WithMessage(err, "sgf: writing game")
}

func writeSetup(sb *strings.Builder, tag string, coords []string) {
	if len(coords) == 0 {
		return
	}
	sb.WriteString(tag)
	for _, c := range coords {
		fmt.Fprintf(sb, "[%s]", c)
	}
}

// pointCoord renders a point in SGF letters; pass is the empty coordinate
// per FF[4].
func pointCoord(pos *board.Position, pt board.Point) string {
	if pt == board.PointPass || pt == board.PointNull {
		return ""
	}
	row, col := pos.RowCol(pt)
	return string([]byte{byte('a' + col), byte('a' + row)})
}
