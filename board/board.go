// Package board implements the minimal Go position described by the core
// specification: a square grid with incrementally maintained blocks,
// liberties, ko state and Zobrist hashing, plus a fast copy-capable variant
// used as scratch state during playouts.
package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// Color is the occupant of an intersection.
type Color int8

// The four occupants an intersection can hold.
const (
	Empty Color = iota
	Black
	White
	Border
)

// Opposite returns the other playing color. Empty and Border map to
// themselves.
func (c Color) Opposite() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return c
	}
}

func (c Color) String() string {
	switch c {
	case Empty:
		return "."
	case Black:
		return "B"
	case White:
		return "W"
	case Border:
		return "#"
	default:
		return "?"
	}
}

// Point is a padded-grid coordinate. Every board is surrounded by a one-cell
// border of Color Border so neighbor computation never needs bounds checks.
type Point int32

// Sentinel points outside the playable grid.
const (
	PointNull Point = -1
	PointPass Point = -2
)

// MaxSize is the largest supported board side.
const MaxSize = 25

// IllegalReason classifies why a move was rejected.
type IllegalReason int

const (
	ReasonNone IllegalReason = iota
	ReasonOccupied
	ReasonSuicide
	ReasonSimpleKo
	ReasonSuperKo
	ReasonOutOfBoard
)

func (r IllegalReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonOccupied:
		return "occupied"
	case ReasonSuicide:
		return "suicide"
	case ReasonSimpleKo:
		return "simple-ko"
	case ReasonSuperKo:
		return "super-ko"
	case ReasonOutOfBoard:
		return "out-of-board"
	default:
		return "unknown"
	}
}

// IllegalMoveError is returned by Play when a move is rejected.
type IllegalMoveError struct {
	Point  Point
	Color  Color
	Reason IllegalReason
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %v for %v: %v", e.Point, e.Color, e.Reason)
}

// LastMoveInfo records metadata about the most recently played move.
type LastMoveInfo struct {
	Point       Point
	Color       Color
	WasCapture  bool
	NumCaptured int
	Suicide     bool
	Illegal     bool
	Reason      IllegalReason
	Repetition  bool
}

// Position is a mutable Go board with full incremental state.
type Position struct {
	size   int
	stride int // size + 2, the padded row width

	grid     []Color
	anchorOf []Point
	blocks   map[Point]*block
	stoneNxt []Point // circular linked list of stones within a block

	koPoint Point

	hash        uint64 // Zobrist hash over stone placement only
	hashTurn    uint64 // hash XORed with the side-to-move code
	hashHistory []uint64

	toPlay Color
	rules  Rules

	setupStones []setupStone
	moves       []playedMove

	lastMove LastMoveInfo

	zob *zobristTable
}

type setupStone struct {
	Point Point
	Color Color
}

type playedMove struct {
	Point Point
	Color Color
}

// NewPosition creates an empty board of the given size under the given
// rules, with black to move first.
func NewPosition(size int, rules Rules) *Position {
	if size < 1 || size > MaxSize {
		panic(errors.Errorf("board: invalid size %d", size))
	}
	p := &Position{
		size:    size,
		stride:  size + 2,
		rules:   rules,
		toPlay:  Black,
		koPoint: PointNull,
		// no move yet: LastMove reports PointNull until the first Play.
		lastMove: LastMoveInfo{Point: PointNull},
		zob:      zobristFor(size),
	}
	p.grid = make([]Color, p.stride*p.stride)
	p.anchorOf = make([]Point, len(p.grid))
	p.stoneNxt = make([]Point, len(p.grid))
	p.blocks = make(map[Point]*block)
	for i := range p.grid {
		p.grid[i] = Empty
		p.anchorOf[i] = PointNull
	}
	for row := 0; row < p.stride; row++ {
		p.setColor(p.at(row, 0), Border)
		p.setColor(p.at(row, p.stride-1), Border)
	}
	for col := 0; col < p.stride; col++ {
		p.setColor(p.at(0, col), Border)
		p.setColor(p.at(p.stride-1, col), Border)
	}
	p.hashTurn = p.hash ^ p.zob.blackToMove
	p.hashHistory = append(p.hashHistory, p.hashTurn)
	return p
}

func (p *Position) setColor(pt Point, c Color) { p.grid[int(pt)] = c }

// Size returns the board side length.
func (p *Position) Size() int { return p.size }

// at converts (row, col) in [0, stride) into a Point.
func (p *Position) at(row, col int) Point { return Point(row*p.stride + col) }

// RowCol decodes a Point back into zero-based (row, col) playable coordinates.
func (p *Position) RowCol(pt Point) (row, col int) {
	row = int(pt)/p.stride - 1
	col = int(pt)%p.stride - 1
	return
}

// PointAt returns the Point for zero-based playable (row, col).
func (p *Position) PointAt(row, col int) Point { return p.at(row+1, col+1) }

// ColorAt returns the occupant of a point.
func (p *Position) ColorAt(pt Point) Color {
	if pt == PointPass || pt == PointNull {
		return Empty
	}
	return p.grid[int(pt)]
}

// ToPlay returns the color to move.
func (p *Position) ToPlay() Color { return p.toPlay }

// SetToPlay overrides the color to move (used by GTP's set_free_handicap
// and position loading, where the side to move is supplied externally).
func (p *Position) SetToPlay(c Color) {
	if c != Black && c != White {
		return
	}
	if p.toPlay != c {
		p.toPlay = c
		p.xorTurn()
	}
}

// Hash returns the Zobrist code over stone placement only.
func (p *Position) Hash() uint64 { return p.hash }

// HashWithTurn returns the Zobrist code including the side to move.
func (p *Position) HashWithTurn() uint64 { return p.hashTurn }

// Rules returns the rule set in effect.
func (p *Position) Rules() Rules { return p.rules }

// LastMove returns metadata about the most recent Play call.
func (p *Position) LastMove() LastMoveInfo { return p.lastMove }

// MoveNumber returns the count of moves played so far (setup stones do not
// count).
func (p *Position) MoveNumber() int { return len(p.moves) }

// neighbors4 returns the four orthogonal neighbors of pt.
func (p *Position) neighbors4(pt Point) [4]Point {
	s := Point(p.stride)
	return [4]Point{pt - s, pt + s, pt - 1, pt + 1}
}

// neighbors8 returns the four orthogonal and four diagonal neighbors.
func (p *Position) neighbors8(pt Point) [8]Point {
	s := Point(p.stride)
	return [8]Point{pt - s, pt + s, pt - 1, pt + 1, pt - s - 1, pt - s + 1, pt + s - 1, pt + s + 1}
}

// Neighbors4 is the exported 4-neighbor iterator.
func (p *Position) Neighbors4(pt Point) []Point {
	n := p.neighbors4(pt)
	return n[:]
}

// Neighbors8 is the exported 8-neighbor iterator.
func (p *Position) Neighbors8(pt Point) []Point {
	n := p.neighbors8(pt)
	return n[:]
}

// Clone returns a deep, independent copy of the position. This is the hot
// path used once per simulation to create a worker's scratch board: all
// backing arrays are small (at most 27x27 ints for a 25x25 board) so a
// straight copy is cheap and avoids any aliasing hazard between workers.
func (p *Position) Clone() *Position {
	q := &Position{
		size:     p.size,
		stride:   p.stride,
		koPoint:  p.koPoint,
		hash:     p.hash,
		hashTurn: p.hashTurn,
		toPlay:   p.toPlay,
		rules:    p.rules,
		lastMove: p.lastMove,
		zob:      p.zob,
	}
	q.grid = append([]Color(nil), p.grid...)
	q.anchorOf = append([]Point(nil), p.anchorOf...)
	q.stoneNxt = append([]Point(nil), p.stoneNxt...)
	q.blocks = make(map[Point]*block, len(p.blocks))
	for k, b := range p.blocks {
		nb := *b
		nb.libs = b.libs.clone()
		q.blocks[k] = &nb
	}
	q.hashHistory = append([]uint64(nil), p.hashHistory...)
	q.setupStones = append([]setupStone(nil), p.setupStones...)
	q.moves = append([]playedMove(nil), p.moves...)
	return q
}

// Eq reports whether two positions are bit-identical: same stones, same
// hashes, same side to move. Used by subtree-reuse bookkeeping to confirm
// a replay matches.
func (p *Position) Eq(other *Position) bool {
	if other == nil {
		return false
	}
	if p.size != other.size || p.toPlay != other.toPlay {
		return false
	}
	if p.hash != other.hash || p.hashTurn != other.hashTurn {
		return false
	}
	for i := range p.grid {
		if p.grid[i] != other.grid[i] {
			return false
		}
	}
	return true
}
