package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuicideRejected(t *testing.T) {
	p := NewPosition(5, DefaultRules())
	// White surrounds (1,1); black playing there is suicide.
	require.NoError(t, p.Play(p.PointAt(0, 1), White))
	p.SetToPlay(White)
	require.NoError(t, p.Play(p.PointAt(1, 0), White))

	target := p.PointAt(0, 0)
	p.SetToPlay(Black)
	err := p.Play(target, Black)
	require.Error(t, err)
	var ill *IllegalMoveError
	require.ErrorAs(t, err, &ill)
	assert.Equal(t, ReasonSuicide, ill.Reason)
	assert.Equal(t, Empty, p.ColorAt(target))
}

func TestSuicideAllowedByRules(t *testing.T) {
	rules := DefaultRules()
	rules.AllowSuicide = true
	p := NewPosition(5, rules)
	require.NoError(t, p.Play(p.PointAt(0, 1), White))
	p.SetToPlay(White)
	require.NoError(t, p.Play(p.PointAt(1, 0), White))

	p.SetToPlay(Black)
	require.NoError(t, p.Play(p.PointAt(0, 0), Black))
	assert.Equal(t, Empty, p.ColorAt(p.PointAt(0, 0)))
	assert.True(t, p.LastMove().Suicide)
}

// TestIsLegalQuickAgreesWithIsLegal cross-checks the rollout fast path
// against the full legality check on positions without superko history.
func TestIsLegalQuickAgreesWithIsLegal(t *testing.T) {
	p := NewPosition(5, DefaultRules())
	moves := []struct {
		r, c  int
		color Color
	}{
		{2, 2, Black}, {2, 3, White}, {1, 2, Black}, {1, 3, White},
		{3, 2, Black}, {3, 3, White}, {0, 0, Black}, {4, 4, White},
	}
	for _, m := range moves {
		p.SetToPlay(m.color)
		require.NoError(t, p.Play(p.PointAt(m.r, m.c), m.color))
	}
	for _, c := range []Color{Black, White} {
		p.SetToPlay(c)
		for _, pt := range p.EmptyPoints() {
			assert.Equal(t, p.IsLegal(pt, c), p.IsLegalQuick(pt, c),
				"disagreement at %v for %v", pt, c)
		}
	}
}

func TestSuperKoForbidsRepetition(t *testing.T) {
	rules := Rules{Komi: 0.5, KoRule: SuperKo, TwoPassEnds: true}
	p := NewPosition(5, rules)
	type mv struct {
		r, c  int
		color Color
	}
	setup := []mv{
		{3, 3, Black},
		{2, 3, White},
		{2, 4, Black},
		{4, 3, White},
		{4, 4, Black},
		{3, 2, White},
		{3, 5, Black},
	}
	for _, m := range setup {
		require.NoError(t, p.Play(p.PointAt(m.r-1, m.c-1), m.color))
	}
	require.NoError(t, p.Play(p.PointAt(2, 3), White)) // captures (3,3)

	// the immediate recapture would recreate the pre-capture position
	// with the same side to move two plies later; superko rejects it.
	err := p.Play(p.PointAt(2, 2), Black)
	require.Error(t, err)
	var ill *IllegalMoveError
	require.ErrorAs(t, err, &ill)
	assert.Equal(t, ReasonSuperKo, ill.Reason)
	assert.True(t, p.LastMove().Repetition)
}

func TestMoveHistoryAccessors(t *testing.T) {
	p := NewPosition(9, DefaultRules())
	require.NoError(t, p.Play(p.PointAt(4, 4), Black))
	require.NoError(t, p.Play(PointPass, White))

	moves := p.Moves()
	require.Len(t, moves, 2)
	assert.Equal(t, Move{Point: p.PointAt(4, 4), Color: Black}, moves[0])
	assert.Equal(t, Move{Point: PointPass, Color: White}, moves[1])
	assert.Equal(t, 2, p.MoveNumber())
}

func TestScoreStringFormat(t *testing.T) {
	p := NewPosition(9, Rules{Komi: 7.5, TwoPassEnds: true})
	// a lone black stone against an otherwise empty board: every empty
	// region borders only black, so black owns the whole board.
	require.NoError(t, p.Play(p.PointAt(4, 4), Black))
	score := p.FinalScore()
	assert.Equal(t, "B+73.5", score)
}

func TestCloneIndependence(t *testing.T) {
	p := NewPosition(9, DefaultRules())
	require.NoError(t, p.Play(p.PointAt(2, 2), Black))
	q := p.Clone()
	require.NoError(t, q.Play(q.PointAt(3, 3), White))

	assert.Equal(t, Empty, p.ColorAt(p.PointAt(3, 3)))
	assert.NotEqual(t, p.Hash(), q.Hash())
	assert.True(t, p.Eq(p.Clone()))
	assert.False(t, p.Eq(q))
}
