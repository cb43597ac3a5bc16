// Package render draws board positions: an ASCII diagram for terminal and
// debug output, and a PNG snapshot for offline inspection. Rendering sits
// outside the engine core; nothing here feeds back into the search.
package render

import (
	"fmt"
	"strings"

	"github.com/fuego-go/fuego/board"
)

// ASCII renders the position as a text diagram with coordinate labels, the
// way a terminal front-end shows the board.
func ASCII(pos *board.Position) string {
	size := pos.Size()
	var sb strings.Builder

	sb.WriteString("   ")
	for col := 0; col < size; col++ {
		fmt.Fprintf(&sb, "%c ", colLetter(col))
	}
	sb.WriteByte('\n')

	for row := size - 1; row >= 0; row-- {
		fmt.Fprintf(&sb, "%2d ", row+1)
		for col := 0; col < size; col++ {
			pt := pos.PointAt(row, col)
			switch pos.ColorAt(pt) {
			case board.Black:
				sb.WriteString("X ")
			case board.White:
				sb.WriteString("O ")
			default:
				if pt == pos.KoPoint() {
					sb.WriteString("k ")
				} else {
					sb.WriteString(". ")
				}
			}
		}
		fmt.Fprintf(&sb, "%d\n", row+1)
	}

	sb.WriteString("   ")
	for col := 0; col < size; col++ {
		fmt.Fprintf(&sb, "%c ", colLetter(col))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func colLetter(col int) byte {
	b := byte('A' + col)
	if b >= 'I' {
		b++
	}
	return b
}
