package filter

import "github.com/fuego-go/fuego/board"

// SafePoints returns every point unconditionally controlled by c under
// Benson's algorithm: the stones of c's unconditionally alive blocks plus
// the points of the enclosed regions that keep them alive. Such points
// cannot change hands no matter how both sides play.
func SafePoints(b *board.Position, c board.Color) map[board.Point]bool {
	anchors := blockAnchors(b, c)
	if len(anchors) == 0 {
		return nil
	}
	regions := enclosedRegions(b, c)

	// liberties per block, for the vitality test.
	libs := make(map[board.Point]map[board.Point]bool, len(anchors))
	for _, a := range anchors {
		set := map[board.Point]bool{}
		for _, l := range b.Liberties(a) {
			set[l] = true
		}
		libs[a] = set
	}

	alive := map[board.Point]bool{}
	for _, a := range anchors {
		alive[a] = true
	}
	live := make([]*region, len(regions))
	copy(live, regions)

	// Benson fixpoint: drop regions touching a dead block, then drop
	// blocks with fewer than two vital regions, until nothing changes.
	for {
		kept := live[:0]
		for _, r := range live {
			ok := true
			for a := range r.borders {
				if !alive[a] {
					ok = false
					break
				}
			}
			if ok {
				kept = append(kept, r)
			}
		}
		live = kept

		changed := false
		for a := range alive {
			vital := 0
			for _, r := range live {
				if r.borders[a] && r.vitalTo(libs[a]) {
					vital++
				}
			}
			if vital < 2 {
				delete(alive, a)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	if len(alive) == 0 {
		return nil
	}

	safe := map[board.Point]bool{}
	for a := range alive {
		for _, s := range b.BlockStones(a) {
			safe[s] = true
		}
	}
	// only the vital regions are territory: a large non-vital region
	// enclosed by alive blocks could still host an opponent invasion.
	for _, r := range live {
		vital := false
		for a := range alive {
			if r.borders[a] && r.vitalTo(libs[a]) {
				vital = true
				break
			}
		}
		if !vital {
			continue
		}
		for pt := range r.points {
			safe[pt] = true
		}
	}
	return safe
}

// region is a connected component of non-c points (empty intersections
// and opponent stones) together with the c-blocks bordering it.
type region struct {
	points  map[board.Point]bool
	empties []board.Point
	borders map[board.Point]bool // anchors of bordering c-blocks
}

// vitalTo reports whether every empty point of the region is a liberty of
// the block with the given liberty set.
func (r *region) vitalTo(blockLibs map[board.Point]bool) bool {
	for _, e := range r.empties {
		if !blockLibs[e] {
			return false
		}
	}
	return true
}

// enclosedRegions partitions the non-c points of the board into connected
// components.
func enclosedRegions(b *board.Position, c board.Color) []*region {
	visited := map[board.Point]bool{}
	var out []*region
	for row := 0; row < b.Size(); row++ {
		for col := 0; col < b.Size(); col++ {
			start := b.PointAt(row, col)
			if b.ColorAt(start) == c || b.ColorAt(start) == board.Border || visited[start] {
				continue
			}
			r := &region{points: map[board.Point]bool{}, borders: map[board.Point]bool{}}
			stack := []board.Point{start}
			visited[start] = true
			for len(stack) > 0 {
				pt := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				r.points[pt] = true
				if b.ColorAt(pt) == board.Empty {
					r.empties = append(r.empties, pt)
				}
				for _, n := range b.Neighbors4(pt) {
					switch b.ColorAt(n) {
					case c:
						r.borders[b.Anchor(n)] = true
					case board.Border:
					default:
						if !visited[n] {
							visited[n] = true
							stack = append(stack, n)
						}
					}
				}
			}
			out = append(out, r)
		}
	}
	return out
}
