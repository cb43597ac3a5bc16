package engine

import (
	"bytes"
	"context"
	"log"

	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	"github.com/fuego-go/fuego/board"
)

// Arena pits two player configurations against each other over a series of
// self-play games, alternating colors. It keeps its own trace log in a
// buffer, separate from the process-level operational log.
type Arena struct {
	a, b *Player
	size int

	buf    bytes.Buffer
	logger *log.Logger

	// one entry per game from a's perspective: 1 when a won, 0 when b
	// won, 0.5 for a draw.
	results []float64
}

// Summary aggregates a finished series.
type Summary struct {
	Games    int
	AWins    int
	BWins    int
	Draws    int
	AWinRate float64
	StdDev   float64
}

// NewArena builds an arena over two players sharing a board size.
func NewArena(a, b *Player, size int) *Arena {
	ar := &Arena{a: a, b: b, size: size}
	ar.logger = log.New(&ar.buf, "arena: ", log.Ltime)
	return ar
}

// Log returns the arena's accumulated trace.
func (ar *Arena) Log() string { return ar.buf.String() }

// Play runs n games, alternating which player takes black, and returns the
// series summary.
func (ar *Arena) Play(ctx context.Context, n int) (Summary, error) {
	var sum Summary
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		aIsBlack := i%2 == 0
		winner, score, err := ar.playGame(ctx, aIsBlack)
		if err != nil {
			return sum, err
		}
		sum.Games++
		switch winner {
		case 0:
			sum.Draws++
			ar.results = append(ar.results, 0.5)
		case 1:
			sum.AWins++
			ar.results = append(ar.results, 1)
		case -1:
			sum.BWins++
			ar.results = append(ar.results, 0)
		}
		ar.logger.Printf("game %d: a_black=%v result=%s", i+1, aIsBlack, score)
		klog.V(1).Infof("arena game %d/%d done: %s", i+1, n, score)
	}
	if len(ar.results) > 0 {
		sum.AWinRate = stat.Mean(ar.results, nil)
		sum.StdDev = stat.StdDev(ar.results, nil)
	}
	return sum, nil
}

// playGame plays a single game to the end: two consecutive passes or a
// resignation. Returns 1 if player a won, -1 if b, 0 for a draw.
func (ar *Arena) playGame(ctx context.Context, aIsBlack bool) (int, string, error) {
	if err := ar.a.NewGame(ar.size); err != nil {
		return 0, "", err
	}
	if err := ar.b.NewGame(ar.size); err != nil {
		return 0, "", err
	}
	black, white := ar.a, ar.b
	if !aIsBlack {
		black, white = ar.b, ar.a
	}

	passes := 0
	toPlay := board.Black
	maxMoves := ar.a.Board().MaxMoves()
	for move := 0; move < maxMoves; move++ {
		mover, other := black, white
		if toPlay == board.White {
			mover, other = white, black
		}
		res, err := mover.GenMove(ctx, toPlay)
		if err != nil {
			return 0, "", err
		}
		if res.Resign {
			score := "B+Resign"
			winnerIsBlack := toPlay == board.White
			if !winnerIsBlack {
				score = "W+Resign"
			}
			return ar.outcome(winnerIsBlack, aIsBlack), score, nil
		}
		if err := other.Play(toPlay, res.Move); err != nil {
			return 0, "", err
		}
		if res.Move == board.PointPass {
			passes++
			if passes >= 2 {
				break
			}
		} else {
			passes = 0
		}
		toPlay = toPlay.Opposite()
	}

	score := ar.a.FinalScore()
	switch {
	case len(score) > 0 && score[0] == 'B':
		return ar.outcome(true, aIsBlack), score, nil
	case len(score) > 0 && score[0] == 'W':
		return ar.outcome(false, aIsBlack), score, nil
	default:
		return 0, score, nil
	}
}

func (ar *Arena) outcome(winnerIsBlack, aIsBlack bool) int {
	if winnerIsBlack == aIsBlack {
		return 1
	}
	return -1
}
