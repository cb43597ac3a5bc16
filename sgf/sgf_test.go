package sgf

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/mcts"
)

func TestWriteGame(t *testing.T) {
	pos := board.NewPosition(9, board.DefaultRules())
	require.NoError(t, pos.Play(pos.PointAt(3, 2), board.Black)) // row 4, col 3 -> "cd"
	require.NoError(t, pos.Play(board.PointPass, board.White))

	var buf bytes.Buffer
	require.NoError(t, WriteGame(&buf, pos, "B+12"))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "(;FF[4]GM[1]"))
	assert.Contains(t, out, "SZ[9]")
	assert.Contains(t, out, "KM[7.5]")
	assert.Contains(t, out, "RE[B+12]")
	assert.Contains(t, out, ";B[cd]")
	assert.Contains(t, out, ";W[]") // pass
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), ")"))
}

func TestWriteGameSetupStones(t *testing.T) {
	pos := board.NewPosition(19, board.DefaultRules())
	_, err := pos.PlaceFreeHandicap(2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteGame(&buf, pos, ""))
	out := buf.String()
	assert.Contains(t, out, "AB[")
	assert.NotContains(t, out, "RE[")
}

func TestDumpGraph(t *testing.T) {
	pos := board.NewPosition(5, board.DefaultRules())
	conf := mcts.DefaultConfig()
	conf.Deterministic = true
	conf.Seed = 1
	conf.MaxGames = 64
	conf.MaxNodes = 1 << 12
	s, err := mcts.New(conf)
	require.NoError(t, err)
	_, err = s.Run(context.Background(), pos)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DumpGraph(&buf, s, pos, 2, 1))
	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "root")
	assert.Contains(t, out, "->")
}
