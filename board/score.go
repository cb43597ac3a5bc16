package board

import "fmt"

// AreaScore is the Tromp-Taylor result for one side: stones plus the
// territory flood-filled to that color.
type AreaScore struct {
	Black float64
	White float64
}

// Score returns Black's score minus White's score minus komi. A positive
// result favors Black.
func (p *Position) Score() float64 {
	a := p.TrompTaylorArea()
	return a.Black - a.White - p.rules.Komi
}

// FinalScore renders the Score as a GTP-style result string, e.g. "B+3.5"
// or "W+7.5", or "0" for a tie (only possible with an integer komi, which
// DefaultRules avoids).
func (p *Position) FinalScore() string {
	s := p.Score()
	switch {
	case s > 0:
		return fmt.Sprintf("B+%v", trimScore(s))
	case s < 0:
		return fmt.Sprintf("W+%v", trimScore(-s))
	default:
		return "0"
	}
}

func trimScore(s float64) string {
	if s == float64(int64(s)) {
		return fmt.Sprintf("%d", int64(s))
	}
	return fmt.Sprintf("%.1f", s)
}

// regionColor is the classification flood fill assigns to an empty region's
// border, per Tromp-Taylor rules.
type regionColor int

const (
	regionNeutral regionColor = iota
	regionBlack
	regionWhite
	regionMixed
)

// TrompTaylorArea computes area scoring with no dead-stone recognition: an
// empty region belongs to a color iff every stone bordering it is that
// color.
func (p *Position) TrompTaylorArea() AreaScore {
	var area AreaScore
	visited := newPointSet(len(p.grid))
	for row := 0; row < p.size; row++ {
		for col := 0; col < p.size; col++ {
			pt := p.PointAt(row, col)
			switch p.ColorAt(pt) {
			case Black:
				area.Black++
			case White:
				area.White++
			case Empty:
				if visited.contains(pt) {
					continue
				}
				region, color := p.floodRegion(pt, &visited)
				switch color {
				case regionBlack:
					area.Black += float64(len(region))
				case regionWhite:
					area.White += float64(len(region))
				}
			}
		}
	}
	return area
}

// floodRegion flood-fills the empty region containing pt and classifies its
// border colors.
func (p *Position) floodRegion(start Point, visited *pointSet) ([]Point, regionColor) {
	stack := []Point{start}
	visited.add(start)
	var region []Point
	sawBlack, sawWhite := false, false
	for len(stack) > 0 {
		pt := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		region = append(region, pt)
		for _, n := range p.neighbors4(pt) {
			switch p.ColorAt(n) {
			case Empty:
				if !visited.contains(n) {
					visited.add(n)
					stack = append(stack, n)
				}
			case Black:
				sawBlack = true
			case White:
				sawWhite = true
			}
		}
	}
	switch {
	case sawBlack && sawWhite:
		return region, regionMixed
	case sawBlack:
		return region, regionBlack
	case sawWhite:
		return region, regionWhite
	default:
		return region, regionNeutral
	}
}

// IsCompletelySurrounded reports whether the empty region containing pt
// borders exactly one color, i.e. it is not neutral or mixed territory.
// Occupied points report true.
// The default playout policy must not pass while any empty point fails
// this check.
func (p *Position) IsCompletelySurrounded(pt Point) bool {
	if p.ColorAt(pt) != Empty {
		return true
	}
	visited := newPointSet(len(p.grid))
	_, color := p.floodRegion(pt, &visited)
	return color == regionBlack || color == regionWhite
}
