package board

import (
	"sync"

	expRand "golang.org/x/exp/rand"
)

// zobristSeed is fixed so deterministic-mode searches in two separate
// processes see identical hashes for identical positions.
const zobristSeed uint64 = 0xF0E5B0E5C0FFEE

// zobristTable holds one random code per (point, color) pair plus a code
// for side-to-move, generated once per board size and shared (read-only)
// across every Position of that size.
type zobristTable struct {
	size        int
	stride      int
	codes       [][3]uint64 // index by point, then color; [0]=unused [1]=Black [2]=White
	blackToMove uint64
}

var (
	zobristCacheMu sync.Mutex
	zobristCache   = map[int]*zobristTable{}
)

func zobristFor(size int) *zobristTable {
	zobristCacheMu.Lock()
	defer zobristCacheMu.Unlock()
	if t, ok := zobristCache[size]; ok {
		return t
	}
	t := buildZobrist(size)
	zobristCache[size] = t
	return t
}

func buildZobrist(size int) *zobristTable {
	stride := size + 2
	src := expRand.New(expRand.NewSource(zobristSeed + uint64(size)))
	t := &zobristTable{size: size, stride: stride}
	t.codes = make([][3]uint64, stride*stride)
	for i := range t.codes {
		t.codes[i][1] = src.Uint64()
		t.codes[i][2] = src.Uint64()
	}
	t.blackToMove = src.Uint64()
	return t
}

func (t *zobristTable) code(pt Point, c Color) uint64 {
	if c != Black && c != White {
		return 0
	}
	return t.codes[int(pt)][int(c)]
}

// xorStone incorporates or removes a stone from both hash codes.
func (p *Position) xorStone(pt Point, c Color) {
	code := p.zob.code(pt, c)
	p.hash ^= code
	p.hashTurn ^= code
}

// xorTurn flips the side-to-move component of the turn-aware hash.
func (p *Position) xorTurn() {
	p.hashTurn ^= p.zob.blackToMove
}

// RecomputeHash rebuilds both hash codes from scratch by scanning the grid,
// used by tests to confirm the incrementally maintained hash never drifts.
func (p *Position) RecomputeHash() (hash, hashTurn uint64) {
	for row := 0; row < p.size; row++ {
		for col := 0; col < p.size; col++ {
			pt := p.PointAt(row, col)
			c := p.ColorAt(pt)
			if c == Black || c == White {
				hash ^= p.zob.code(pt, c)
			}
		}
	}
	hashTurn = hash
	if p.toPlay == Black {
		hashTurn ^= p.zob.blackToMove
	}
	return
}
