package playout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuego-go/fuego/board"
)

func playRollout(t *testing.T, b *board.Position, p *Default, maxMoves int) int {
	t.Helper()
	p.StartPlayout(b)
	defer p.EndPlayout()
	passes := 0
	moves := 0
	for moves < maxMoves {
		mover := b.ToPlay()
		mv := p.GenerateMove(b)
		require.NoError(t, b.Play(mv, mover), "policy produced an illegal move")
		moves++
		if mv == board.PointPass {
			passes++
			if passes >= 2 {
				return moves
			}
			continue
		}
		passes = 0
		p.OnPlay(b)
	}
	return moves
}

// TestRolloutTerminatesScorable runs full rollouts and checks they end in
// two passes well before the move cap, in a position where every empty
// region is single-colored.
func TestRolloutTerminatesScorable(t *testing.T) {
	b := board.NewPosition(9, board.DefaultRules())
	p := New(DefaultConfig(), 7)
	moves := playRollout(t, b, p, b.MaxMoves())
	assert.Less(t, moves, b.MaxMoves(), "rollout must end by double pass, not the cap")

	for _, pt := range b.EmptyPoints() {
		assert.True(t, b.IsCompletelySurrounded(pt),
			"no empty point may remain unsurrounded once both sides pass")
	}
}

// TestNoPrematurePass: on a near-empty board the policy must produce a
// real move, never a pass.
func TestNoPrematurePass(t *testing.T) {
	b := board.NewPosition(9, board.DefaultRules())
	p := New(DefaultConfig(), 3)
	p.StartPlayout(b)
	for i := 0; i < 10; i++ {
		mv := p.GenerateMove(b)
		require.NotEqual(t, board.PointPass, mv)
		require.NoError(t, b.Play(mv, b.ToPlay()))
		p.OnPlay(b)
	}
	p.EndPlayout()
}

// TestAtariDefenseTier: the opponent just put our block in atari; the
// policy's first tier must answer with the saving liberty.
func TestAtariDefenseTier(t *testing.T) {
	b := board.NewPosition(9, board.DefaultRules())
	// black stone at (4,4); white surrounds on three sides, the last
	// white move creating the atari.
	require.NoError(t, b.Play(b.PointAt(4, 4), board.Black))
	require.NoError(t, b.Play(b.PointAt(3, 4), board.White))
	require.NoError(t, b.Play(b.PointAt(0, 0), board.Black))
	require.NoError(t, b.Play(b.PointAt(5, 4), board.White))
	require.NoError(t, b.Play(b.PointAt(0, 1), board.Black))
	require.NoError(t, b.Play(b.PointAt(4, 3), board.White)) // atari; liberty (4,5)

	p := New(DefaultConfig(), 11)
	p.StartPlayout(b)
	mv := p.GenerateMove(b)
	p.EndPlayout()
	assert.Equal(t, b.PointAt(4, 5), mv)
}

// TestGlobalCaptureTier: with the tactical tiers around the last move
// disabled, a one-liberty opponent block anywhere draws the capture.
func TestGlobalCaptureTier(t *testing.T) {
	b := board.NewPosition(9, board.DefaultRules())
	require.NoError(t, b.Play(b.PointAt(1, 2), board.Black))
	require.NoError(t, b.Play(b.PointAt(2, 2), board.White))
	require.NoError(t, b.Play(b.PointAt(3, 2), board.Black))
	b.SetToPlay(board.Black)
	require.NoError(t, b.Play(b.PointAt(2, 1), board.Black)) // white (2,2) in atari at (2,3)
	b.SetToPlay(board.Black)

	conf := Config{GlobalCapture: true}
	p := New(conf, 5)
	p.StartPlayout(b)
	mv := p.GenerateMove(b)
	p.EndPlayout()
	assert.Equal(t, b.PointAt(2, 3), mv)
}

func TestEyeFillAvoidance(t *testing.T) {
	b := board.NewPosition(5, board.DefaultRules())
	// black ring around (0,0): (0,1) and (1,0) plus (1,1) backup.
	require.NoError(t, b.Play(b.PointAt(0, 1), board.Black))
	b.SetToPlay(board.Black)
	require.NoError(t, b.Play(b.PointAt(1, 0), board.Black))
	b.SetToPlay(board.Black)
	require.NoError(t, b.Play(b.PointAt(1, 1), board.Black))
	b.SetToPlay(board.Black)

	assert.True(t, isEyeFill(b, b.PointAt(0, 0), board.Black))
	assert.False(t, isEyeFill(b, b.PointAt(0, 0), board.White))
}

func TestSelfAtariLibertyEstimate(t *testing.T) {
	b := board.NewPosition(5, board.DefaultRules())
	// a black pair that would end at one liberty if extended at (0,2):
	// white hems in the top edge.
	require.NoError(t, b.Play(b.PointAt(0, 0), board.Black))
	require.NoError(t, b.Play(b.PointAt(1, 0), board.White))
	require.NoError(t, b.Play(b.PointAt(0, 1), board.Black))
	require.NoError(t, b.Play(b.PointAt(1, 1), board.White))
	b.SetToPlay(board.White)
	require.NoError(t, b.Play(b.PointAt(1, 2), board.White))
	b.SetToPlay(board.White)
	require.NoError(t, b.Play(b.PointAt(1, 3), board.White))
	b.SetToPlay(board.Black)

	// extending to (0,2) leaves the three-stone block a single liberty
	// at (0,3).
	libs, size := pseudoLibertiesAfter(b, b.PointAt(0, 2), board.Black)
	assert.Equal(t, 1, libs)
	assert.Equal(t, 3, size)
}
