// Package playout implements the default rollout move generator: a tiered
// sequence of tactical filters around the last move, falling back to
// uniform random play, with self-atari and clump corrections vetoing bad
// picks. Each worker thread owns one policy instance.
package playout

import (
	rng "github.com/leesper/go_rng"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/mcts"
)

// Config toggles the individual generator tiers and corrections.
type Config struct {
	AtariDefense        bool `json:"atari_defense"`
	LowLibTactics       bool `json:"low_lib_tactics"`
	Patterns            bool `json:"patterns"`
	GlobalCapture       bool `json:"global_capture"`
	SelfAtariCorrection bool `json:"self_atari_correction"`
	ClumpCorrection     bool `json:"clump_correction"`
}

// DefaultConfig enables every tier.
func DefaultConfig() Config {
	return Config{
		AtariDefense:        true,
		LowLibTactics:       true,
		Patterns:            true,
		GlobalCapture:       true,
		SelfAtariCorrection: true,
		ClumpCorrection:     true,
	}
}

// Default is the stock policy. Not safe for concurrent use; create one per
// worker via Factory.
type Default struct {
	conf Config
	gen  *rng.UniformGenerator

	// last two rollout moves, tracked through OnPlay so the pattern tier
	// can look at both neighborhoods.
	last, secondLast board.Point

	cand []board.Point // scratch, reused across calls
}

// New creates a policy seeded for one worker.
func New(conf Config, seed uint64) *Default {
	return &Default{
		conf:       conf,
		gen:        rng.NewUniformGenerator(int64(seed)),
		last:       board.PointNull,
		secondLast: board.PointNull,
	}
}

// Factory adapts New into the per-worker constructor the search driver
// expects.
func Factory(conf Config) mcts.PolicyFactory {
	return func(seed uint64) mcts.PlayoutPolicy {
		return New(conf, seed)
	}
}

// StartPlayout resets per-playout state. The in-tree last move is visible
// through the board; the one before it is not tracked across the boundary.
func (d *Default) StartPlayout(b *board.Position) {
	d.last = b.LastMove().Point
	d.secondLast = board.PointNull
}

// OnPlay records the move just played.
func (d *Default) OnPlay(b *board.Position) {
	d.secondLast = d.last
	d.last = b.LastMove().Point
}

// EndPlayout is a no-op for the default policy.
func (d *Default) EndPlayout() {}

// GenerateMove walks the tiers in priority order. The first tier producing
// a non-empty candidate list wins; one candidate is drawn uniformly and
// run through the corrections, which may veto it (forcing a redraw) or
// replace it with a neighboring point.
func (d *Default) GenerateMove(b *board.Position) board.Point {
	toPlay := b.ToPlay()

	var tiers []func(*board.Position) []board.Point
	if d.last != board.PointNull && d.last != board.PointPass {
		if d.conf.AtariDefense {
			tiers = append(tiers, d.atariDefense)
		}
		if d.conf.LowLibTactics {
			tiers = append(tiers, d.lowLibTactics)
		}
		if d.conf.Patterns {
			tiers = append(tiers, d.patternMoves)
		}
	}
	if d.conf.GlobalCapture {
		tiers = append(tiers, d.globalCapture)
	}

	for _, tier := range tiers {
		cands := tier(b)
		for len(cands) > 0 {
			i := int(d.gen.Int32n(int32(len(cands))))
			mv := cands[i]
			if repl, ok := d.correct(b, mv, toPlay); ok {
				return repl
			}
			cands[i] = cands[len(cands)-1]
			cands = cands[:len(cands)-1]
		}
	}

	return d.randomMove(b, toPlay)
}

// atariDefense answers an atari the opponent's last move put on a friendly
// block: extend on the saving liberty, or capture an adjacent opponent
// block to gain liberties instead.
func (d *Default) atariDefense(b *board.Position) []board.Point {
	toPlay := b.ToPlay()
	d.cand = d.cand[:0]
	seen := map[board.Point]bool{}
	for _, n := range b.Neighbors4(d.last) {
		if b.ColorAt(n) != toPlay || !b.InAtari(n) {
			continue
		}
		anchor := b.Anchor(n)
		if seen[anchor] {
			continue
		}
		seen[anchor] = true
		if lib := b.TheLiberty(anchor); lib != board.PointNull && b.IsLegalQuick(lib, toPlay) {
			d.cand = append(d.cand, lib)
		}
		// counter-capture: any opponent block touching ours that is itself
		// in atari.
		for _, s := range b.BlockStones(anchor) {
			for _, m := range b.Neighbors4(s) {
				if b.ColorAt(m) == toPlay.Opposite() && b.InAtari(m) {
					if lib := b.TheLiberty(m); lib != board.PointNull && b.IsLegalQuick(lib, toPlay) {
						d.cand = append(d.cand, lib)
					}
				}
			}
		}
	}
	return d.cand
}

// lowLibTactics plays on the liberties of two-liberty blocks touching the
// last move: attacking the opponent's weak stones, reinforcing our own.
func (d *Default) lowLibTactics(b *board.Position) []board.Point {
	toPlay := b.ToPlay()
	d.cand = d.cand[:0]
	seen := map[board.Point]bool{}
	pts := append([]board.Point{d.last}, b.Neighbors4(d.last)...)
	for _, pt := range pts {
		c := b.ColorAt(pt)
		if c != board.Black && c != board.White {
			continue
		}
		anchor := b.Anchor(pt)
		if seen[anchor] || b.NumLiberties(anchor) != 2 {
			continue
		}
		seen[anchor] = true
		for _, lib := range b.Liberties(anchor) {
			if b.IsLegalQuick(lib, toPlay) {
				d.cand = append(d.cand, lib)
			}
		}
	}
	return d.cand
}

// patternMoves proposes empty points in the 3x3 neighborhoods of the last
// two moves that match one of the local shape patterns.
func (d *Default) patternMoves(b *board.Position) []board.Point {
	toPlay := b.ToPlay()
	d.cand = d.cand[:0]
	add := func(center board.Point) {
		if center == board.PointNull || center == board.PointPass {
			return
		}
		for _, pt := range b.Neighbors8(center) {
			if b.ColorAt(pt) != board.Empty || !b.IsLegalQuick(pt, toPlay) {
				continue
			}
			if matchesPattern(b, pt, toPlay) {
				d.cand = append(d.cand, pt)
			}
		}
	}
	add(d.last)
	add(d.secondLast)
	return d.cand
}

// globalCapture plays the liberty of any opponent block in atari, anywhere
// on the board.
func (d *Default) globalCapture(b *board.Position) []board.Point {
	toPlay := b.ToPlay()
	opp := toPlay.Opposite()
	d.cand = d.cand[:0]
	seen := map[board.Point]bool{}
	for row := 0; row < b.Size(); row++ {
		for col := 0; col < b.Size(); col++ {
			pt := b.PointAt(row, col)
			if b.ColorAt(pt) != opp {
				continue
			}
			anchor := b.Anchor(pt)
			if seen[anchor] {
				continue
			}
			seen[anchor] = true
			if b.InAtari(anchor) {
				if lib := b.TheLiberty(anchor); lib != board.PointNull && b.IsLegalQuick(lib, toPlay) {
					d.cand = append(d.cand, lib)
				}
			}
		}
	}
	return d.cand
}

// randomMove draws uniformly over legal empty points that do not fill a
// single-point eye. Passing is the last resort, which keeps every rollout
// headed toward a position where all empty regions are surrounded by one
// color.
func (d *Default) randomMove(b *board.Position, toPlay board.Color) board.Point {
	d.cand = d.cand[:0]
	for _, pt := range b.EmptyPoints() {
		if !b.IsLegalQuick(pt, toPlay) || isEyeFill(b, pt, toPlay) {
			continue
		}
		d.cand = append(d.cand, pt)
	}
	for len(d.cand) > 0 {
		i := int(d.gen.Int32n(int32(len(d.cand))))
		mv := d.cand[i]
		if repl, ok := d.correct(b, mv, toPlay); ok {
			return repl
		}
		d.cand[i] = d.cand[len(d.cand)-1]
		d.cand = d.cand[:len(d.cand)-1]
	}
	return board.PointPass
}

// correct runs the self-atari and clump corrections on a drawn candidate.
// ok=false vetoes the candidate entirely.
func (d *Default) correct(b *board.Position, mv board.Point, toPlay board.Color) (board.Point, bool) {
	if d.conf.SelfAtariCorrection {
		if repl, ok := fixSelfAtari(b, mv, toPlay); !ok {
			return board.PointNull, false
		} else if repl != mv {
			mv = repl
		}
	}
	if d.conf.ClumpCorrection {
		mv = fixClump(b, mv, toPlay)
	}
	return mv, true
}

// isEyeFill reports whether playing pt would fill one of toPlay's own
// single-point eyes: every orthogonal neighbor is friendly (or border) and
// at most one diagonal is hostile (none on the edge).
func isEyeFill(b *board.Position, pt board.Point, toPlay board.Color) bool {
	for _, n := range b.Neighbors4(pt) {
		c := b.ColorAt(n)
		if c != toPlay && c != board.Border {
			return false
		}
	}
	oppDiag, borderDiag := 0, 0
	for _, n := range diagonals(b, pt) {
		switch b.ColorAt(n) {
		case toPlay.Opposite():
			oppDiag++
		case board.Border:
			borderDiag++
		}
	}
	if borderDiag > 0 {
		return oppDiag == 0
	}
	return oppDiag <= 1
}

func diagonals(b *board.Position, pt board.Point) []board.Point {
	n8 := b.Neighbors8(pt)
	return n8[4:]
}
