package board

import "github.com/pkg/errors"

// handicapEdge returns the 1-indexed coordinate of the standard
// star-point line closest to the edge for a board of the given size.
// 19x19 (and any board >=13) uses the 4th line; 9x9 uses the 3rd line.
// Smaller sizes fall back to the 3rd line; only the standard square-board
// tables are supported.
func handicapEdge(size int) int {
	if size >= 13 {
		return 4
	}
	return 3
}

// standardHandicapPoints returns the canonical placement order for up to 9
// handicap stones on a square board: the four corner star points, then
// tengen, then the four edge midpoints. The first n entries are used.
func standardHandicapPoints(size int) []struct{ Row, Col int } {
	edge := handicapEdge(size)
	low, high := edge, size+1-edge
	mid := (size + 1) / 2
	return []struct{ Row, Col int }{
		{low, high},
		{high, low},
		{high, high},
		{low, low},
		{mid, mid},
		{low, mid},
		{high, mid},
		{mid, low},
		{mid, high},
	}
}

// PlaceSetupStone puts a stone on the board outside normal play, for
// externally chosen handicap stones and position loading. Only permitted
// before any move has been played.
func (p *Position) PlaceSetupStone(pt Point, c Color) error {
	if len(p.moves) != 0 {
		return errors.New("board: setup stones must precede all moves")
	}
	if !p.onBoard(pt) || p.ColorAt(pt) != Empty {
		return errors.Errorf("board: cannot set up stone at %v", pt)
	}
	if c != Black && c != White {
		return errors.Errorf("board: invalid setup color %v", c)
	}
	p.forcePlace(pt, c)
	return nil
}

// PlaceFreeHandicap places the first n stones of the standard handicap
// table and returns the points used (on 19x19, n=5 gives the four star
// points plus tengen). Black plays all handicap stones; white moves first
// afterwards per convention.
func (p *Position) PlaceFreeHandicap(n int) ([]Point, error) {
	if n < 2 || n > 9 {
		return nil, errors.Errorf("board: handicap count %d out of [2,9]", n)
	}
	if len(p.moves) != 0 || len(p.setupStones) != 0 {
		return nil, errors.New("board: handicap must be placed on an empty board")
	}
	table := standardHandicapPoints(p.size)
	if n > len(table) {
		n = len(table)
	}
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		rc := table[i]
		pt := p.PointAt(rc.Row-1, rc.Col-1)
		p.forcePlace(pt, Black)
		pts = append(pts, pt)
	}
	p.toPlay = White
	p.xorTurn()
	p.rules.HandicapCount = n
	p.rules.HandicapStyle = FixedHandicap
	return pts, nil
}
