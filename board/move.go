package board

// MaxMoves bounds how many moves a single game may accumulate, defending
// against runaway rollouts.
func (p *Position) MaxMoves() int { return 10 * p.size * p.size }

// Move is one (point, color) entry of the game history. PointPass encodes a
// pass.
type Move struct {
	Point Point
	Color Color
}

// Moves returns the played-move history, oldest first. Setup/handicap
// stones are not included; see SetupStones.
func (p *Position) Moves() []Move {
	out := make([]Move, len(p.moves))
	for i, m := range p.moves {
		out[i] = Move{Point: m.Point, Color: m.Color}
	}
	return out
}

// SetupStones returns the stones placed outside normal play (handicap and
// loaded-position setup), oldest first.
func (p *Position) SetupStones() []Move {
	out := make([]Move, len(p.setupStones))
	for i, s := range p.setupStones {
		out[i] = Move{Point: s.Point, Color: s.Color}
	}
	return out
}

// KoPoint returns the intersection currently forbidden by simple ko, or
// PointNull.
func (p *Position) KoPoint() Point { return p.koPoint }

// EmptyPoints returns every empty on-board intersection.
func (p *Position) EmptyPoints() []Point {
	out := make([]Point, 0, p.size*p.size)
	for row := 0; row < p.size; row++ {
		for col := 0; col < p.size; col++ {
			pt := p.PointAt(row, col)
			if p.ColorAt(pt) == Empty {
				out = append(out, pt)
			}
		}
	}
	return out
}

// IsLegalQuick is the O(degree) legality check used inside rollouts: it
// decides occupied/ko/suicide exactly but does not consult the super-ko
// hash history (rollouts never do). Placing at pt is suicide-free iff some
// neighbor is empty, some friendly neighbor block has a second liberty, or
// some opponent neighbor block is captured by the placement.
func (p *Position) IsLegalQuick(pt Point, c Color) bool {
	if pt == PointPass {
		return true
	}
	if !p.onBoard(pt) || p.ColorAt(pt) != Empty {
		return false
	}
	if pt == p.koPoint {
		return false
	}
	opp := c.Opposite()
	for _, n := range p.neighbors4(pt) {
		switch p.ColorAt(n) {
		case Empty:
			return true
		case c:
			if p.NumLiberties(n) >= 2 {
				return true
			}
		case opp:
			if p.NumLiberties(n) == 1 {
				return true
			}
		}
	}
	return p.rules.AllowSuicide
}

// IsLegal is a non-mutating legality check.
func (p *Position) IsLegal(pt Point, c Color) bool {
	if pt == PointPass {
		return true
	}
	if !p.onBoard(pt) {
		return false
	}
	if p.ColorAt(pt) != Empty {
		return false
	}
	clone := p.Clone()
	clone.toPlay = c
	err := clone.play(pt, c, true)
	return err == nil
}

func (p *Position) onBoard(pt Point) bool {
	if pt < 0 || int(pt) >= len(p.grid) {
		return false
	}
	return p.grid[int(pt)] != Border
}

// Play places a stone of color c at pt (or passes if pt == PointPass),
// mutating the position. It returns an *IllegalMoveError, leaving the
// position unchanged, if the move is illegal.
func (p *Position) Play(pt Point, c Color) error {
	return p.play(pt, c, false)
}

// play is the shared implementation; dryRun suppresses history bookkeeping
// so IsLegal can reuse it on a throwaway clone.
func (p *Position) play(pt Point, c Color, dryRun bool) error {
	if pt == PointPass {
		p.recordPass(c)
		if !dryRun {
			p.moves = append(p.moves, playedMove{Point: PointPass, Color: c})
		}
		p.koPoint = PointNull
		p.toPlay = c.Opposite()
		p.xorTurn()
		p.hashHistory = append(p.hashHistory, p.hashTurn)
		return nil
	}
	if !p.onBoard(pt) {
		return &IllegalMoveError{Point: pt, Color: c, Reason: ReasonOutOfBoard}
	}
	if p.ColorAt(pt) != Empty {
		p.lastMove = LastMoveInfo{Point: pt, Color: c, Illegal: true, Reason: ReasonOccupied}
		return &IllegalMoveError{Point: pt, Color: c, Reason: ReasonOccupied}
	}
	if pt == p.koPoint {
		p.lastMove = LastMoveInfo{Point: pt, Color: c, Illegal: true, Reason: ReasonSimpleKo}
		return &IllegalMoveError{Point: pt, Color: c, Reason: ReasonSimpleKo}
	}

	// Suicide is decided before anything is mutated, so a rejected move
	// leaves the position untouched.
	if !p.rules.AllowSuicide && !p.IsLegalQuick(pt, c) {
		p.lastMove = LastMoveInfo{Point: pt, Color: c, Illegal: true, Reason: ReasonSuicide}
		return &IllegalMoveError{Point: pt, Color: c, Reason: ReasonSuicide}
	}
	// A superko repetition is only known after captures are applied, so
	// keep a copy to restore from.
	var saved *Position
	if p.rules.KoRule != SimpleKo {
		saved = p.Clone()
	}

	prevKo := p.koPoint
	prevHash, prevHashTurn := p.hash, p.hashTurn

	// Step 2: place the stone and merge same-color neighbor blocks.
	p.setColor(pt, c)
	p.anchorOf[int(pt)] = pt
	p.stoneNxt[int(pt)] = pt
	nb := &block{anchor: pt, color: c, size: 1, libs: newPointSet(len(p.grid))}
	for _, n := range p.neighbors4(pt) {
		if p.ColorAt(n) == Empty {
			nb.libs.add(n)
		}
	}
	p.blocks[pt] = nb
	p.xorStone(pt, c)

	merged := map[Point]bool{pt: true}
	for _, n := range p.neighbors4(pt) {
		if p.ColorAt(n) != c {
			continue
		}
		other := p.Anchor(n)
		if other == PointNull || merged[other] {
			continue
		}
		p.mergeBlocks(p.Anchor(pt), other)
		merged[other] = true
	}

	// Step 3: capture any opponent block now at zero liberties.
	opp := c.Opposite()
	captured := 0
	capturedAnchors := map[Point]bool{}
	for _, n := range p.neighbors4(pt) {
		if p.ColorAt(n) != opp {
			continue
		}
		oa := p.Anchor(n)
		if oa == PointNull || capturedAnchors[oa] {
			continue
		}
		b := p.blocks[oa]
		b.libs.remove(pt)
		if b.libs.count() == 0 {
			captured += p.removeBlock(b)
			capturedAnchors[oa] = true
		}
	}

	// Remove pt's own liberty entry (it's occupied now) from its block, and
	// recompute: after captures, freed points may have been added as
	// liberties by removeBlock already.
	playedBlock := p.blocks[p.Anchor(pt)]
	playedBlock.libs.remove(pt)

	suicide := false
	if playedBlock.libs.count() == 0 {
		if captured > 0 {
			// capturing always resolves self-liberties via freed points;
			// recheck is defensive only.
		} else if p.rules.AllowSuicide {
			suicide = true
			captured += p.removeBlock(playedBlock)
		} else {
			// illegal: undo the placement fully.
			p.undoPlacement(pt, c, prevHash, prevHashTurn, prevKo)
			p.lastMove = LastMoveInfo{Point: pt, Color: c, Illegal: true, Reason: ReasonSuicide}
			return &IllegalMoveError{Point: pt, Color: c, Reason: ReasonSuicide}
		}
	}

	// Step 4: ko detection.
	newKo := PointNull
	switch p.rules.KoRule {
	case SimpleKo:
		if captured == 1 && !suicide {
			ba := p.Anchor(pt)
			if bb, ok := p.blocks[ba]; ok && bb.size == 1 && bb.libs.count() == 1 {
				lp, _ := bb.libs.first()
				newKo = lp
			}
		}
	case SuperKo, PositionalSuperKo:
		// hashHistory holds turn-aware hashes taken with the opponent of the
		// mover to play, so the new position is compared in that form;
		// positional superko also matches the same stones with either side
		// to move.
		key := p.hashTurn ^ p.zob.blackToMove
		for _, h := range p.hashHistory {
			if h == key || (p.rules.KoRule == PositionalSuperKo && h^p.zob.blackToMove == key) {
				*p = *saved
				p.lastMove = LastMoveInfo{Point: pt, Color: c, Illegal: true, Reason: ReasonSuperKo, Repetition: true}
				return &IllegalMoveError{Point: pt, Color: c, Reason: ReasonSuperKo}
			}
		}
	}
	p.koPoint = newKo

	p.toPlay = c.Opposite()
	p.xorTurn()
	p.hashHistory = append(p.hashHistory, p.hashTurn)

	p.lastMove = LastMoveInfo{
		Point:       pt,
		Color:       c,
		WasCapture:  captured > 0,
		NumCaptured: captured,
		Suicide:     suicide,
	}
	if !dryRun {
		p.moves = append(p.moves, playedMove{Point: pt, Color: c})
	}
	return nil
}

func (p *Position) recordPass(c Color) {
	p.lastMove = LastMoveInfo{Point: PointPass, Color: c}
}

// undoPlacement reverses an in-progress illegal placement: used only inside
// play() to back out a stone that turned out to be suicide, before any
// history bookkeeping has happened.
func (p *Position) undoPlacement(pt Point, c Color, prevHash, prevHashTurn uint64, prevKo Point) {
	a := p.Anchor(pt)
	if a != PointNull {
		p.removeBlock(p.blocks[a])
	}
	p.hash, p.hashTurn = prevHash, prevHashTurn
	p.koPoint = prevKo
}

// mergeBlocks merges the block anchored at "absorb" into the block anchored
// at "into", relabeling every stone of the absorbed block.
func (p *Position) mergeBlocks(into, absorb Point) {
	big, small := p.blocks[into], p.blocks[absorb]
	if big.size < small.size {
		into, absorb = absorb, into
		big, small = small, big
	}
	stones := p.BlockStones(absorb)
	for _, s := range stones {
		p.anchorOf[int(s)] = into
	}
	// splice the two circular linked lists together.
	bigNext := p.stoneNxt[int(into)]
	smallNext := p.stoneNxt[int(absorb)]
	p.stoneNxt[int(into)] = smallNext
	p.stoneNxt[int(absorb)] = bigNext

	big.libs.union(small.libs)
	big.size += small.size
	big.anchor = into
	delete(p.blocks, absorb)
	p.blocks[into] = big
}

// removeBlock deletes a block from the board, restores its points to
// empty, and grants the freed points as new liberties to every
// still-occupied neighbor. Returns the number of stones removed.
func (p *Position) removeBlock(b *block) int {
	anchor := b.anchor
	stones := p.BlockStones(anchor)
	for _, s := range stones {
		color := p.ColorAt(s)
		p.setColor(s, Empty)
		p.anchorOf[int(s)] = PointNull
		p.xorStone(s, color)
	}
	delete(p.blocks, anchor)
	for _, s := range stones {
		for _, n := range p.neighbors4(s) {
			if p.ColorAt(n) == Empty || p.ColorAt(n) == Border {
				continue
			}
			if nb := p.blocks[p.Anchor(n)]; nb != nil {
				nb.libs.add(s)
			}
		}
	}
	return len(stones)
}

// Undo pops the most recently played move. Because Undo is rare (used by
// the engine's undo command, never by the search — simulations clone
// scratch boards instead, see Position.Clone), it is implemented as a full replay of every earlier move
// rather than a literal reversal of the incremental merge/capture steps.
// This keeps the single source of truth for "what does this position look
// like" to one function (play) and trivially gives a bit-identical round
// trip, since the result is, in effect, "the position that results from
// fewer moves".
func (p *Position) Undo() error {
	if len(p.moves) == 0 {
		return errNoHistory
	}
	moves := p.moves[:len(p.moves)-1]
	setup := p.setupStones
	rules := p.rules
	size := p.size

	fresh := NewPosition(size, rules)
	for _, s := range setup {
		fresh.forcePlace(s.Point, s.Color)
	}
	fresh.setupStones = append([]setupStone(nil), setup...)
	for _, m := range moves {
		if err := fresh.play(m.Point, m.Color, false); err != nil {
			return err
		}
	}
	*p = *fresh
	return nil
}

// forcePlace is used for handicap/setup stones: it bypasses legality and
// capture logic entirely, used only before any moves are played.
func (p *Position) forcePlace(pt Point, c Color) {
	p.setColor(pt, c)
	p.anchorOf[int(pt)] = pt
	p.stoneNxt[int(pt)] = pt
	b := &block{anchor: pt, color: c, size: 1, libs: newPointSet(len(p.grid))}
	p.blocks[pt] = b
	p.xorStone(pt, c)
	merged := map[Point]bool{pt: true}
	for _, n := range p.neighbors4(pt) {
		if p.ColorAt(n) == c {
			if other := p.Anchor(n); other != PointNull && !merged[other] {
				p.mergeBlocks(p.Anchor(pt), other)
				merged[other] = true
			}
		}
	}
	p.recomputeLiberties()
	p.setupStones = append(p.setupStones, setupStone{Point: pt, Color: c})
}

// recomputeLiberties rebuilds every block's liberty set from the grid.
// Only used by forcePlace (handicap setup), which is rare enough that an
// O(board size) rebuild is simpler and safer than incremental maintenance
// around the capture-free setup path.
func (p *Position) recomputeLiberties() {
	for _, b := range p.blocks {
		b.libs = newPointSet(len(p.grid))
	}
	for pt, a := range p.anchorOf {
		if a == PointNull {
			continue
		}
		b := p.blocks[a]
		for _, n := range p.neighbors4(Point(pt)) {
			if p.ColorAt(n) == Empty {
				b.libs.add(n)
			}
		}
	}
}
