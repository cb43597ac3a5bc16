package playout

import "github.com/fuego-go/fuego/board"

// matchesPattern checks the classic local shapes around an empty candidate
// point: hane against a contacted stone, cut between two opponent stones,
// and the edge block. These are the hand-written forms of the usual 3x3
// rollout patterns, expressed as predicates over the neighborhood instead
// of a generated bit table.
func matchesPattern(b *board.Position, pt board.Point, toPlay board.Color) bool {
	return isHane(b, pt, toPlay) || isCut(b, pt, toPlay) || isEdgeBlock(b, pt, toPlay)
}

// isHane: pt touches an opponent stone orthogonally and a friendly stone
// sits on a diagonal adjacent to that opponent stone — bending around the
// contact stone.
func isHane(b *board.Position, pt board.Point, toPlay board.Color) bool {
	opp := toPlay.Opposite()
	for _, n := range b.Neighbors4(pt) {
		if b.ColorAt(n) != opp {
			continue
		}
		for _, dg := range diagonals(b, pt) {
			if b.ColorAt(dg) != toPlay {
				continue
			}
			if isOrthAdjacent(b, dg, n) {
				return true
			}
		}
	}
	return false
}

// isCut: pt separates two diagonal opponent stones that are not already
// connected through a third stone, i.e. the two shared orthogonal points
// are pt (empty) and a point that is not opponent-colored.
func isCut(b *board.Position, pt board.Point, toPlay board.Color) bool {
	opp := toPlay.Opposite()
	n4 := b.Neighbors4(pt)
	// opposing pairs around pt: (up, left), (up, right), (down, left),
	// (down, right) — an opponent stone on each arm of a corner means the
	// diagonal between them runs through pt.
	pairs := [4][2]board.Point{
		{n4[0], n4[2]}, {n4[0], n4[3]},
		{n4[1], n4[2]}, {n4[1], n4[3]},
	}
	for _, pr := range pairs {
		if b.ColorAt(pr[0]) != opp || b.ColorAt(pr[1]) != opp {
			continue
		}
		// the other point both arms touch: the diagonal across from pt.
		other := pr[0] + pr[1] - pt
		if b.ColorAt(other) != opp {
			return true
		}
	}
	return false
}

// isEdgeBlock: on the first or second line, pt blocks an opponent stone
// pushing along the edge while a friendly stone backs it up within the
// neighborhood.
func isEdgeBlock(b *board.Position, pt board.Point, toPlay board.Color) bool {
	if lineOf(b, pt) > 2 {
		return false
	}
	opp := toPlay.Opposite()
	sawOpp, sawOwn := false, false
	for _, n := range b.Neighbors8(pt) {
		switch b.ColorAt(n) {
		case opp:
			sawOpp = true
		case toPlay:
			sawOwn = true
		}
	}
	return sawOpp && sawOwn
}

func isOrthAdjacent(b *board.Position, a, c board.Point) bool {
	for _, n := range b.Neighbors4(a) {
		if n == c {
			return true
		}
	}
	return false
}

// lineOf returns the 1-indexed distance of pt from the nearest edge.
func lineOf(b *board.Position, pt board.Point) int {
	row, col := b.RowCol(pt)
	line := row + 1
	if col+1 < line {
		line = col + 1
	}
	if b.Size()-row < line {
		line = b.Size() - row
	}
	if b.Size()-col < line {
		line = b.Size() - col
	}
	return line
}

// pseudoLibertiesAfter estimates the liberty count of the block that would
// exist after toPlay plays pt, without mutating the board: the union of
// pt's empty neighbors and the liberties of adjacent friendly blocks,
// minus pt itself, plus those stones of any neighbor block the move
// captures that touch pt orthogonally.
func pseudoLibertiesAfter(b *board.Position, pt board.Point, toPlay board.Color) (libs int, blockSize int) {
	set := map[board.Point]bool{}
	blockSize = 1
	seen := map[board.Point]bool{}
	for _, n := range b.Neighbors4(pt) {
		switch b.ColorAt(n) {
		case board.Empty:
			set[n] = true
		case toPlay:
			anchor := b.Anchor(n)
			if seen[anchor] {
				continue
			}
			seen[anchor] = true
			blockSize += b.BlockSize(anchor)
			for _, lib := range b.Liberties(anchor) {
				set[lib] = true
			}
		case toPlay.Opposite():
			anchor := b.Anchor(n)
			if seen[anchor] || !b.InAtari(anchor) {
				continue
			}
			seen[anchor] = true
			// captured stones adjacent to pt become liberties.
			for _, s := range b.BlockStones(anchor) {
				if isOrthAdjacent(b, s, pt) {
					set[s] = true
				}
			}
		}
	}
	delete(set, pt)
	return len(set), blockSize
}

// fixSelfAtari vetoes or replaces a move that would leave the played block
// with a single liberty. A single-stone throw-in is kept (often a capture
// tesuji); a multi-stone self-atari tries the would-be last liberty as the
// replacement and is otherwise dropped.
func fixSelfAtari(b *board.Position, pt board.Point, toPlay board.Color) (board.Point, bool) {
	libs, size := pseudoLibertiesAfter(b, pt, toPlay)
	if libs > 1 || size <= 1 {
		return pt, true
	}
	// try extending at the remaining liberty instead.
	for _, n := range b.Neighbors4(pt) {
		if b.ColorAt(n) != board.Empty || n == pt {
			continue
		}
		if !b.IsLegalQuick(n, toPlay) {
			continue
		}
		if nl, _ := pseudoLibertiesAfter(b, n, toPlay); nl > 1 {
			return n, true
		}
	}
	return board.PointNull, false
}

// fixClump redirects a move that would form a solid clump of own stones —
// three or more friendly orthogonal neighbors and no contact with the
// opponent — to an adjacent empty point with fewer friendly neighbors,
// when one exists.
func fixClump(b *board.Position, pt board.Point, toPlay board.Color) board.Point {
	own, opp := ownOppNeighbors(b, pt, toPlay)
	if own < 3 || opp > 0 {
		return pt
	}
	for _, n := range b.Neighbors4(pt) {
		if b.ColorAt(n) != board.Empty || !b.IsLegalQuick(n, toPlay) {
			continue
		}
		if nown, nopp := ownOppNeighbors(b, n, toPlay); nown < own && nopp == 0 {
			if libs, _ := pseudoLibertiesAfter(b, n, toPlay); libs > 1 {
				return n
			}
		}
	}
	return pt
}

func ownOppNeighbors(b *board.Position, pt board.Point, toPlay board.Color) (own, opp int) {
	for _, n := range b.Neighbors4(pt) {
		switch b.ColorAt(n) {
		case toPlay:
			own++
		case toPlay.Opposite():
			opp++
		}
	}
	return
}
