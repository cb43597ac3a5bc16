// Package filter removes moves from consideration before and during the
// search: moves inside unconditionally settled territory, ladder moves
// that are read out as losing, and first-line moves far from any stone.
// The same composite serves as a root filter (run once per search) and as
// a tree filter (run at every expansion); callers wanting cheap expansion
// typically install only the first-line check in the tree and the full
// composite at the root.
package filter

import "github.com/fuego-go/fuego/board"

// Default composes the individual checks; each is independently
// toggleable.
type Default struct {
	CheckSafety           bool `json:"check_safety"`
	CheckLadders          bool `json:"check_ladders"`
	CheckOffensiveLadders bool `json:"check_offensive_ladders"`
	FilterFirstLine       bool `json:"filter_first_line"`

	// MinLadderLength is the shortest losing ladder worth filtering; very
	// short "ladders" are just captures the search should see.
	MinLadderLength int `json:"min_ladder_length"`
}

// NewDefault enables every check.
func NewDefault() *Default {
	return &Default{
		CheckSafety:           true,
		CheckLadders:          true,
		CheckOffensiveLadders: true,
		FilterFirstLine:       true,
		MinLadderLength:       4,
	}
}

// Filter returns the moves kept after removing everything the enabled
// checks reject.
func (d *Default) Filter(b *board.Position, moves []board.Point) []board.Point {
	removed := d.Removals(b)
	if len(removed) == 0 {
		return moves
	}
	out := moves[:0]
	for _, mv := range moves {
		if !removed[mv] {
			out = append(out, mv)
		}
	}
	return out
}

// Removals computes the set of points the enabled checks remove for the
// side to move. Exposed separately so the GTP layer can show what the root
// filter did.
func (d *Default) Removals(b *board.Position) map[board.Point]bool {
	removed := map[board.Point]bool{}
	if d.CheckSafety {
		d.safetyRemovals(b, removed)
	}
	if d.CheckLadders {
		d.ladderRemovals(b, removed)
	}
	if d.CheckOffensiveLadders {
		d.offensiveLadderRemovals(b, removed)
	}
	if d.FilterFirstLine {
		d.firstLineRemovals(b, removed)
	}
	return removed
}

// safetyRemovals drops moves strictly inside either side's unconditionally
// safe territory: nothing there can change the game's outcome.
func (d *Default) safetyRemovals(b *board.Position, removed map[board.Point]bool) {
	for _, c := range []board.Color{board.Black, board.White} {
		for pt := range SafePoints(b, c) {
			if b.ColorAt(pt) == board.Empty {
				removed[pt] = true
			}
		}
	}
}

// ladderRemovals drops the escape move of an own block whose ladder is
// read out as lost: running a dead ladder only hands over captures.
func (d *Default) ladderRemovals(b *board.Position, removed map[board.Point]bool) {
	toPlay := b.ToPlay()
	for _, anchor := range blockAnchors(b, toPlay) {
		libs := b.NumLiberties(anchor)
		if libs < 1 || libs > 2 {
			continue
		}
		stone := anchor
		for _, lib := range b.Liberties(anchor) {
			clone := b.Clone()
			if clone.Play(lib, toPlay) != nil {
				continue
			}
			captured, length := readLadder(clone, stone, 0)
			if captured && length >= d.MinLadderLength {
				removed[lib] = true
			}
		}
	}
}

// offensiveLadderRemovals drops chasing moves on two-liberty opponent
// blocks when the ladder read says the prey escapes.
func (d *Default) offensiveLadderRemovals(b *board.Position, removed map[board.Point]bool) {
	toPlay := b.ToPlay()
	opp := toPlay.Opposite()
	for _, anchor := range blockAnchors(b, opp) {
		if b.NumLiberties(anchor) != 2 {
			continue
		}
		stone := anchor
		for _, lib := range b.Liberties(anchor) {
			clone := b.Clone()
			if clone.Play(lib, toPlay) != nil {
				continue
			}
			if clone.ColorAt(stone) == board.Empty {
				continue // immediate capture, not a chase
			}
			if clone.NumLiberties(stone) != 1 {
				continue // not an atari, not a ladder start
			}
			captured, _ := readLadder(clone, stone, 0)
			if !captured {
				removed[lib] = true
			}
		}
	}
}

// firstLineRemovals drops first-line moves in empty regions: no stone of
// either color within Manhattan distance 4.
func (d *Default) firstLineRemovals(b *board.Position, removed map[board.Point]bool) {
	size := b.Size()
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if row != 0 && row != size-1 && col != 0 && col != size-1 {
				continue
			}
			pt := b.PointAt(row, col)
			if b.ColorAt(pt) != board.Empty {
				continue
			}
			if !stoneWithin(b, row, col, 4) {
				removed[pt] = true
			}
		}
	}
}

func stoneWithin(b *board.Position, row, col, dist int) bool {
	size := b.Size()
	for dr := -dist; dr <= dist; dr++ {
		r := row + dr
		if r < 0 || r >= size {
			continue
		}
		rem := dist - abs(dr)
		for dc := -rem; dc <= rem; dc++ {
			c := col + dc
			if c < 0 || c >= size {
				continue
			}
			cc := b.ColorAt(b.PointAt(r, c))
			if cc == board.Black || cc == board.White {
				return true
			}
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// blockAnchors lists the anchor of every block of the given color.
func blockAnchors(b *board.Position, c board.Color) []board.Point {
	var out []board.Point
	seen := map[board.Point]bool{}
	for row := 0; row < b.Size(); row++ {
		for col := 0; col < b.Size(); col++ {
			pt := b.PointAt(row, col)
			if b.ColorAt(pt) != c {
				continue
			}
			anchor := b.Anchor(pt)
			if !seen[anchor] {
				seen[anchor] = true
				out = append(out, anchor)
			}
		}
	}
	return out
}
