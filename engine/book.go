package engine

import "github.com/fuego-go/fuego/board"

// Book answers "is there a known move for this position". The on-disk
// book format and its parsing live outside the engine; whatever loads one
// hands the engine a value satisfying this interface.
type Book interface {
	Lookup(pos *board.Position) (board.Point, bool)
}

// StaticBook is an in-memory book keyed by the position hash including
// side to move.
type StaticBook struct {
	moves map[uint64]board.Point
}

// NewStaticBook returns an empty book.
func NewStaticBook() *StaticBook {
	return &StaticBook{moves: map[uint64]board.Point{}}
}

// Add records a book move for the given position.
func (b *StaticBook) Add(pos *board.Position, mv board.Point) {
	b.moves[pos.HashWithTurn()] = mv
}

// Lookup implements Book.
func (b *StaticBook) Lookup(pos *board.Position) (board.Point, bool) {
	mv, ok := b.moves[pos.HashWithTurn()]
	return mv, ok
}
