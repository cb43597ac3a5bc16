package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/mcts"
)

func testConf() mcts.Config {
	conf := mcts.DefaultConfig()
	conf.Deterministic = true
	conf.Seed = 1
	conf.MaxGames = 64
	conf.MaxNodes = 1 << 12
	conf.ResignMinGames = 1 << 30
	return conf
}

func newTestPlayer(t *testing.T, size int) *Player {
	t.Helper()
	p, err := NewPlayer(size, board.DefaultRules(), testConf())
	require.NoError(t, err)
	return p
}

func TestNewPlayerRejectsBadInput(t *testing.T) {
	_, err := NewPlayer(40, board.DefaultRules(), testConf())
	assert.Error(t, err)

	rules := board.DefaultRules()
	rules.JapaneseScoring = true
	_, err = NewPlayer(9, rules, testConf())
	assert.Error(t, err, "japanese scoring is not implemented and must be rejected")
}

func TestGenMovePlaysOnBoard(t *testing.T) {
	p := newTestPlayer(t, 5)
	res, err := p.GenMove(context.Background(), board.Black)
	require.NoError(t, err)
	require.False(t, res.Resign)
	if res.Move != board.PointPass {
		assert.Equal(t, board.Black, p.Board().ColorAt(res.Move))
	}
	assert.Equal(t, board.White, p.Board().ToPlay())
	assert.Greater(t, res.Sims, int64(0))
}

func TestBookMoveShortCircuitsSearch(t *testing.T) {
	p := newTestPlayer(t, 9)
	book := NewStaticBook()
	pos := p.Board()
	pos.SetToPlay(board.Black)
	center := pos.PointAt(4, 4)
	book.Add(pos, center)
	p.SetBook(book)

	res, err := p.GenMove(context.Background(), board.Black)
	require.NoError(t, err)
	assert.True(t, res.Book)
	assert.Equal(t, center, res.Move)
	assert.Equal(t, board.Black, p.Board().ColorAt(center))
}

func TestPlayUndoRoundTrip(t *testing.T) {
	p := newTestPlayer(t, 9)
	before := p.Board().Hash()
	require.NoError(t, p.Play(board.Black, p.Board().PointAt(2, 2)))
	require.NoError(t, p.Undo())
	assert.Equal(t, before, p.Board().Hash())
	assert.Error(t, p.Undo(), "undo on an empty history must fail")
}

func TestSaveLoadPosition(t *testing.T) {
	p := newTestPlayer(t, 9)
	require.NoError(t, p.Play(board.Black, p.Board().PointAt(2, 2)))
	require.NoError(t, p.Play(board.White, p.Board().PointAt(3, 3)))
	rec := p.SavePosition()
	require.Len(t, rec.Moves, 2)

	q := newTestPlayer(t, 9)
	require.NoError(t, q.LoadPosition(rec))
	assert.True(t, p.Board().Eq(q.Board()))
}

func TestLoadPositionRejectsIllegalHistory(t *testing.T) {
	p := newTestPlayer(t, 9)
	pt := board.NewPosition(9, board.DefaultRules()).PointAt(2, 2)
	rec := Position{
		Size:   9,
		Moves:  []board.Move{{Point: pt, Color: board.Black}, {Point: pt, Color: board.White}},
		ToPlay: board.Black,
	}
	err := p.LoadPosition(rec)
	require.Error(t, err)
	// the old (empty) position is preserved.
	assert.Equal(t, 0, p.Board().MoveNumber())
}

func TestParamsRoundTrip(t *testing.T) {
	p := newTestPlayer(t, 9)
	params := p.Params()
	require.NotEmpty(t, params)

	names := map[string]bool{}
	for _, prm := range params {
		names[prm.Name] = true
		assert.NotEmpty(t, prm.Type)
	}
	for _, want := range []string{
		"search_max_games", "search_bias_constant", "search_rave",
		"playout_patterns", "filter_check_safety", "filter_min_ladder_length",
	} {
		assert.True(t, names[want], "missing parameter %s", want)
	}

	require.NoError(t, p.SetParam("search_max_games", "256"))
	assert.Equal(t, int64(256), p.conf.MaxGames)
}

func TestSetParamPreservesOldValueOnError(t *testing.T) {
	p := newTestPlayer(t, 9)
	old := p.conf.ResignThreshold
	err := p.SetParam("search_resign_threshold", "7.0") // out of [0,1]
	require.Error(t, err)
	assert.Equal(t, old, p.conf.ResignThreshold)

	err = p.SetParam("no_such_parameter", "1")
	assert.Error(t, err)
}

func TestSetParamsAggregatesFailures(t *testing.T) {
	p := newTestPlayer(t, 9)
	err := p.SetParams(map[string]string{
		"search_max_games":  "128",
		"search_rave":       "not-a-bool",
		"no_such_parameter": "1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_rave")
	assert.Contains(t, err.Error(), "no_such_parameter")
	assert.Equal(t, int64(128), p.conf.MaxGames, "valid assignments still apply")
}

func TestSetFreeHandicap(t *testing.T) {
	p := newTestPlayer(t, 9)
	pos := p.Board()
	pts := []board.Point{pos.PointAt(2, 2), pos.PointAt(6, 6)}
	require.NoError(t, p.SetFreeHandicap(pts))
	b := p.Board()
	for _, pt := range pts {
		assert.Equal(t, board.Black, b.ColorAt(pt))
	}
	assert.Equal(t, board.White, b.ToPlay())

	assert.Error(t, p.SetFreeHandicap([]board.Point{pos.PointAt(2, 2), pos.PointAt(2, 2)}),
		"duplicate handicap points are rejected")
}

func TestAutoSaveWritesRecord(t *testing.T) {
	p := newTestPlayer(t, 9)
	path := filepath.Join(t.TempDir(), "game.sgf")
	p.SetAutoSave(path)
	require.NoError(t, p.Play(board.Black, p.Board().PointAt(4, 4)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ";B[")
}

func TestCloseAggregatesCleanup(t *testing.T) {
	p := newTestPlayer(t, 9)
	p.SetAutoSave(filepath.Join(t.TempDir(), "final.sgf"))
	require.NoError(t, p.Play(board.Black, p.Board().PointAt(4, 4)))
	assert.NoError(t, p.Close())
}
