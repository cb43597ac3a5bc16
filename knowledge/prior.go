// Package knowledge supplies the two evaluation plug-ins the search
// consults at expansion time: prior knowledge, which seeds each fresh
// child with virtual (count, value) trials, and additive knowledge, whose
// predictor bonus is folded into the selection score. Multiple additive
// predictors compose under a configurable operator.
package knowledge

import (
	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/mcts"
)

// DefaultPrior assigns heuristic virtual trials to fresh children: capture
// and atari-defense moves start optimistic, self-ataris and pass start
// pessimistic, everything else neutral with a light bonus near the last
// move.
type DefaultPrior struct{}

// NewDefaultPrior returns the stock prior source.
func NewDefaultPrior() *DefaultPrior { return &DefaultPrior{} }

// baseCount scales the weight of the virtual trials with board size, so a
// prior is worth proportionally similar evidence on 9x9 and 19x19.
func baseCount(size int) float32 {
	if size >= 15 {
		return 18
	}
	return 9
}

// ProcessPosition sets the prior (value, count) on every candidate.
func (k *DefaultPrior) ProcessPosition(b *board.Position, moves []mcts.CandidateMove) {
	n := baseCount(b.Size())
	toPlay := b.ToPlay()
	last := b.LastMove().Point
	anyCapture := false
	for i := range moves {
		mv := moves[i].Move
		if mv == board.PointPass {
			moves[i].PriorValue, moves[i].PriorCount = 0.1, n
			continue
		}
		switch {
		case capturesSomething(b, mv, toPlay):
			moves[i].PriorValue, moves[i].PriorCount = 1.0, n
			anyCapture = true
		case savesFromAtari(b, mv, toPlay):
			moves[i].PriorValue, moves[i].PriorCount = 0.8, n
		case isSelfAtari(b, mv, toPlay):
			moves[i].PriorValue, moves[i].PriorCount = 0.1, n
		case nearPoint(b, mv, last, 2):
			moves[i].PriorValue, moves[i].PriorCount = 0.6, n/2
		default:
			moves[i].PriorValue, moves[i].PriorCount = 0.5, n/2
		}
	}
	// with a capture on the board, demote the neutral moves a little so
	// the tactical answer is explored first.
	if anyCapture {
		for i := range moves {
			if moves[i].PriorValue == 0.5 {
				moves[i].PriorValue = 0.4
			}
		}
	}
}

// capturesSomething reports whether playing mv takes at least one opponent
// block.
func capturesSomething(b *board.Position, mv board.Point, toPlay board.Color) bool {
	opp := toPlay.Opposite()
	for _, n := range b.Neighbors4(mv) {
		if b.ColorAt(n) == opp && b.InAtari(n) {
			return true
		}
	}
	return false
}

// savesFromAtari reports whether mv is the last liberty of a friendly
// block in atari and extending there gains breathing room.
func savesFromAtari(b *board.Position, mv board.Point, toPlay board.Color) bool {
	for _, n := range b.Neighbors4(mv) {
		if b.ColorAt(n) == toPlay && b.InAtari(n) && b.TheLiberty(n) == mv {
			return true
		}
	}
	return false
}

// isSelfAtari reports whether mv leaves the played block with one liberty,
// by the non-mutating pseudo-liberty estimate.
func isSelfAtari(b *board.Position, mv board.Point, toPlay board.Color) bool {
	libs := map[board.Point]bool{}
	seen := map[board.Point]bool{}
	for _, n := range b.Neighbors4(mv) {
		switch b.ColorAt(n) {
		case board.Empty:
			libs[n] = true
		case toPlay:
			anchor := b.Anchor(n)
			if seen[anchor] {
				continue
			}
			seen[anchor] = true
			for _, lib := range b.Liberties(anchor) {
				libs[lib] = true
			}
		case toPlay.Opposite():
			if b.InAtari(n) {
				// the capture frees at least the adjacent stone.
				libs[n] = true
			}
		}
	}
	delete(libs, mv)
	return len(libs) <= 1
}

// nearPoint reports whether a and c are within Manhattan distance d.
func nearPoint(b *board.Position, a, c board.Point, d int) bool {
	if c == board.PointNull || c == board.PointPass {
		return false
	}
	ar, ac := b.RowCol(a)
	cr, cc := b.RowCol(c)
	dr, dc := ar-cr, ac-cc
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc <= d
}
