package filter

import "github.com/fuego-go/fuego/board"

// ladderDepthLimit bounds the read; a ladder still unsettled this deep is
// treated as an escape.
const ladderDepthLimit = 64

// readLadder reads out the ladder on the block containing preyStone. The
// side to move on b decides whose turn it is in the ladder: the defender
// (defenderMove) when it is the prey's color, the attacker (attackerMove)
// otherwise. Returns whether the prey is eventually captured and how many moves the
// read took.
func readLadder(b *board.Position, preyStone board.Point, depth int) (captured bool, length int) {
	if depth > ladderDepthLimit {
		return false, depth
	}
	if b.ColorAt(preyStone) == board.Empty {
		return true, depth
	}
	preyColor := b.ColorAt(preyStone)
	if b.ToPlay() == preyColor {
		return defenderMove(b, preyStone, depth)
	}
	return attackerMove(b, preyStone, depth)
}

// defenderMove: the prey is in atari; the defender extends on the last
// liberty or counter-captures an adjacent attacker block in atari. The
// prey escapes if any option escapes.
func defenderMove(b *board.Position, preyStone board.Point, depth int) (bool, int) {
	libs := b.NumLiberties(preyStone)
	if libs >= 2 {
		return false, depth
	}
	if libs == 0 {
		return true, depth
	}
	toPlay := b.ToPlay()

	options := []board.Point{}
	if lib := b.TheLiberty(preyStone); lib != board.PointNull {
		options = append(options, lib)
	}
	seen := map[board.Point]bool{}
	for _, s := range b.BlockStones(preyStone) {
		for _, n := range b.Neighbors4(s) {
			if b.ColorAt(n) != toPlay.Opposite() {
				continue
			}
			anchor := b.Anchor(n)
			if seen[anchor] || !b.InAtari(anchor) {
				continue
			}
			seen[anchor] = true
			if lib := b.TheLiberty(anchor); lib != board.PointNull {
				options = append(options, lib)
			}
		}
	}

	worst := depth
	for _, mv := range options {
		clone := b.Clone()
		if clone.Play(mv, toPlay) != nil {
			continue
		}
		if clone.ColorAt(preyStone) == board.Empty {
			// the counter-capture removed the prey? cannot happen; the
			// extend was onto the prey's own liberty. Defensive skip.
			continue
		}
		if clone.NumLiberties(preyStone) >= 3 {
			return false, depth + 1
		}
		cap, l := readLadder(clone, preyStone, depth+1)
		if !cap {
			return false, l
		}
		if l > worst {
			worst = l
		}
	}
	if len(options) == 0 {
		return true, depth
	}
	return true, worst
}

// attackerMove: the prey has two liberties; the attacker fills one. The
// prey is captured if either fill leads to capture. With one liberty the
// attacker simply takes; with three or more the ladder is over.
func attackerMove(b *board.Position, preyStone board.Point, depth int) (bool, int) {
	libs := b.NumLiberties(preyStone)
	switch {
	case libs == 0:
		return true, depth
	case libs == 1:
		return true, depth + 1
	case libs >= 3:
		return false, depth
	}
	toPlay := b.ToPlay()
	for _, mv := range b.Liberties(preyStone) {
		clone := b.Clone()
		if clone.Play(mv, toPlay) != nil {
			continue
		}
		if clone.NumLiberties(clone.Anchor(mv)) <= 1 && clone.LastMove().NumCaptured == 0 {
			// a self-atari chase just gets captured back.
			continue
		}
		if cap, l := readLadder(clone, preyStone, depth+1); cap {
			return true, l
		}
	}
	return false, depth
}
