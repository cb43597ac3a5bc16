// Package engine binds the board, search, playout, knowledge and filter
// components into the player a front-end talks to: genmove, play, undo,
// handicap placement, position load/save, parameter introspection, and the
// optional game-record auto-save.
package engine

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/filter"
	"github.com/fuego-go/fuego/knowledge"
	"github.com/fuego-go/fuego/mcts"
	"github.com/fuego-go/fuego/playout"
	"github.com/fuego-go/fuego/sgf"
)

// GenResult is the outcome of one GenMove call.
type GenResult struct {
	Move   board.Point
	Resign bool
	Value  float32
	Sims   int64
	Book   bool
}

// Player is the complete engine behind the front-end boundary. All methods
// are safe for use from one goroutine at a time; a concurrent Abort is
// allowed.
type Player struct {
	mu sync.Mutex

	size  int
	rules board.Rules
	pos   *board.Position

	conf        mcts.Config
	playoutConf playout.Config

	rootFilter *filter.Default
	treeFilter *filter.Default

	search *mcts.Search
	book   Book

	// clock state, consumed as a per-move search budget.
	mainTime      time.Duration
	byoyomiTime   time.Duration
	byoyomiStones int
	timeLeft      [2]time.Duration

	autoSavePath string
}

// NewPlayer builds a player on an empty board.
func NewPlayer(size int, rules board.Rules, conf mcts.Config) (*Player, error) {
	if !rules.IsValid() {
		return nil, errors.Errorf("engine: unsupported rules %+v", rules)
	}
	if size < 2 || size > board.MaxSize {
		return nil, errors.Errorf("engine: board size %d out of range", size)
	}
	p := &Player{
		size:        size,
		rules:       rules,
		pos:         board.NewPosition(size, rules),
		conf:        conf,
		playoutConf: playout.DefaultConfig(),
		rootFilter:  filter.NewDefault(),
	}
	// expansion-time filtering keeps only the cheap check; the expensive
	// solvers run once per search at the root.
	p.treeFilter = &filter.Default{FilterFirstLine: true}

	prior := knowledge.NewDefaultPrior()
	additive := knowledge.NewMultiple(knowledge.GeometricMean,
		knowledge.CapturePredictor{}, knowledge.AtariEscapePredictor{})

	search, err := mcts.New(conf,
		mcts.WithPolicy(func(seed uint64) mcts.PlayoutPolicy {
			return playout.New(p.playoutConf, seed)
		}),
		mcts.WithPrior(prior),
		mcts.WithAdditive(additive),
		mcts.WithRootFilter(p.rootFilter),
		mcts.WithTreeFilter(p.treeFilter),
	)
	if err != nil {
		return nil, errors.WithMessage(err, "engine: building search")
	}
	p.search = search
	p.conf = search.Config()
	return p, nil
}

// Board returns a copy of the current position for queries.
func (p *Player) Board() *board.Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos.Clone()
}

// Search exposes the search for live analyze output and tree dumps.
func (p *Player) Search() *mcts.Search { return p.search }

// NewGame clears the board, optionally resizing it.
func (p *Player) NewGame(size int) error {
	if size < 2 || size > board.MaxSize {
		return errors.Errorf("engine: board size %d out of range", size)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = size
	p.pos = board.NewPosition(size, p.rules)
	p.timeLeft = [2]time.Duration{p.mainTime, p.mainTime}
	return nil
}

// SetKomi changes komi for the current and subsequent games.
func (p *Player) SetKomi(komi float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules.Komi = komi
	p.pos = rebuildWithRules(p.pos, p.rules)
}

// SetRule updates one named rule variant; unknown names and unsupported
// combinations leave everything unchanged.
func (p *Player) SetRule(name string, value bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rules := p.rules
	switch name {
	case "allow_suicide":
		rules.AllowSuicide = value
	case "capture_dead":
		rules.CaptureDead = value
	case "japanese_scoring":
		rules.JapaneseScoring = value
	case "two_pass_ends":
		rules.TwoPassEnds = value
	case "superko":
		if value {
			rules.KoRule = board.SuperKo
		} else {
			rules.KoRule = board.SimpleKo
		}
	case "positional_superko":
		if value {
			rules.KoRule = board.PositionalSuperKo
		} else {
			rules.KoRule = board.SimpleKo
		}
	default:
		return errors.Errorf("engine: unknown rule %q", name)
	}
	if !rules.IsValid() {
		return errors.Errorf("engine: unsupported rule combination")
	}
	p.rules = rules
	p.pos = rebuildWithRules(p.pos, p.rules)
	return nil
}

// rebuildWithRules replays the current game under changed rules. Rule
// changes mid-game are rare (typically before the first move), so a replay
// is the simplest correct path.
func rebuildWithRules(pos *board.Position, rules board.Rules) *board.Position {
	fresh := board.NewPosition(pos.Size(), rules)
	for _, s := range pos.SetupStones() {
		if err := fresh.PlaceSetupStone(s.Point, s.Color); err != nil {
			klog.Warningf("replaying setup stone %v: %v", s.Point, err)
		}
	}
	for _, m := range pos.Moves() {
		fresh.SetToPlay(m.Color)
		if err := fresh.Play(m.Point, m.Color); err != nil {
			klog.Warningf("replaying move %v under new rules: %v", m.Point, err)
			break
		}
	}
	fresh.SetToPlay(pos.ToPlay())
	return fresh
}

// GenMove runs a search for color and plays the selected move on the
// internal board. Resignation leaves the board untouched.
func (p *Player) GenMove(ctx context.Context, color board.Color) (GenResult, error) {
	p.mu.Lock()
	p.pos.SetToPlay(color)
	pos := p.pos.Clone()
	p.mu.Unlock()

	if p.book != nil {
		if mv, ok := p.book.Lookup(pos); ok && pos.IsLegal(mv, color) {
			klog.V(1).Infof("book move %v for %v", mv, color)
			if err := p.Play(color, mv); err != nil {
				return GenResult{}, err
			}
			return GenResult{Move: mv, Book: true}, nil
		}
	}

	if budget := p.moveBudget(color); budget > 0 {
		conf := p.search.Config()
		conf.MaxTime = budget
		if err := p.search.SetConfig(conf); err != nil {
			return GenResult{}, err
		}
	}

	started := time.Now()
	best, err := p.search.Run(ctx, pos)
	if err != nil {
		return GenResult{}, errors.WithMessage(err, "engine: search failed")
	}
	p.consumeTime(color, time.Since(started))

	res := GenResult{
		Move:   best.Move,
		Resign: best.Resign,
		Value:  best.Value,
		Sims:   p.search.NumSims(),
	}
	klog.V(1).Infof("genmove %v: move=%v value=%.3f sims=%d resign=%v",
		color, best.Move, best.Value, res.Sims, best.Resign)
	if best.Resign {
		return res, nil
	}
	if err := p.Play(color, best.Move); err != nil {
		return GenResult{}, err
	}
	return res, nil
}

// Abort interrupts a running GenMove; the search returns its best move so
// far.
func (p *Player) Abort() { p.search.Abort() }

// Play applies an externally supplied move.
func (p *Player) Play(color board.Color, pt board.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos.SetToPlay(color)
	if err := p.pos.Play(pt, color); err != nil {
		return err
	}
	p.autoSave()
	return nil
}

// Undo pops the last move.
func (p *Player) Undo() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.pos.Undo(); err != nil {
		return err
	}
	p.autoSave()
	return nil
}

// PlaceFreeHandicap places n standard handicap stones and returns them.
func (p *Player) PlaceFreeHandicap(n int) ([]board.Point, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pts, err := p.pos.PlaceFreeHandicap(n)
	if err != nil {
		return nil, err
	}
	p.autoSave()
	return pts, nil
}

// SetFreeHandicap places externally chosen handicap stones.
func (p *Player) SetFreeHandicap(pts []board.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	seen := map[board.Point]bool{}
	for _, pt := range pts {
		if seen[pt] {
			return errors.Errorf("engine: duplicate handicap point %v", pt)
		}
		seen[pt] = true
		if err := p.pos.PlaceSetupStone(pt, board.Black); err != nil {
			return err
		}
	}
	p.pos.SetToPlay(board.White)
	p.autoSave()
	return nil
}

// Position is a transferable game record: setup stones, moves, side to
// move.
type Position struct {
	Size   int          `json:"size"`
	Setup  []board.Move `json:"setup,omitempty"`
	Moves  []board.Move `json:"moves"`
	ToPlay board.Color  `json:"to_play"`
}

// SavePosition exports the current game as a history record.
func (p *Player) SavePosition() Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Position{
		Size:   p.pos.Size(),
		Setup:  p.pos.SetupStones(),
		Moves:  p.pos.Moves(),
		ToPlay: p.pos.ToPlay(),
	}
}

// LoadPosition replaces the current game with the given record, replaying
// every move; the first illegal move aborts the load and leaves the old
// position in place.
func (p *Player) LoadPosition(rec Position) error {
	if rec.Size < 2 || rec.Size > board.MaxSize {
		return errors.Errorf("engine: position size %d out of range", rec.Size)
	}
	fresh := board.NewPosition(rec.Size, p.rules)
	for _, s := range rec.Setup {
		if err := fresh.PlaceSetupStone(s.Point, s.Color); err != nil {
			return errors.WithMessage(err, "engine: loading setup")
		}
	}
	for i, m := range rec.Moves {
		fresh.SetToPlay(m.Color)
		if err := fresh.Play(m.Point, m.Color); err != nil {
			return errors.WithMessagef(err, "engine: loading move %d", i)
		}
	}
	if rec.ToPlay == board.Black || rec.ToPlay == board.White {
		fresh.SetToPlay(rec.ToPlay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = rec.Size
	p.pos = fresh
	return nil
}

// FinalScore scores the current position by area counting.
func (p *Player) FinalScore() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos.FinalScore()
}

// SetBook installs the opening book.
func (p *Player) SetBook(b Book) { p.book = b }

// SetAutoSave enables writing the game record to path after every move;
// an empty path disables it.
func (p *Player) SetAutoSave(path string) { p.autoSavePath = path }

// autoSave writes the record; failures are logged, never fatal. Caller
// holds the mutex.
func (p *Player) autoSave() {
	if p.autoSavePath == "" {
		return
	}
	f, err := os.Create(p.autoSavePath)
	if err != nil {
		klog.Warningf("auto-save: %v", err)
		return
	}
	defer f.Close()
	if err := sgf.WriteGame(f, p.pos, ""); err != nil {
		klog.Warningf("auto-save: %v", err)
	}
}

// TimeSettings installs the game clock: main time plus canadian byo-yomi.
func (p *Player) TimeSettings(mainTime, byoyomi time.Duration, byoyomiStones int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mainTime = mainTime
	p.byoyomiTime = byoyomi
	p.byoyomiStones = byoyomiStones
	p.timeLeft = [2]time.Duration{mainTime, mainTime}
}

// TimeLeft updates the remaining clock reported by the controller.
func (p *Player) TimeLeft(color board.Color, left time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeLeft[clockIdx(color)] = left
}

// moveBudget derives a per-move search budget from the clock: a slice of
// remaining main time assuming the game lasts about half the board, or
// the byo-yomi allowance. Zero means "no clock, use the configured
// MaxTime".
func (p *Player) moveBudget(color board.Color) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mainTime == 0 && p.byoyomiTime == 0 {
		return 0
	}
	left := p.timeLeft[clockIdx(color)]
	if left > 0 {
		estMoves := p.size * p.size / 2
		if done := p.pos.MoveNumber(); done/2 < estMoves {
			estMoves -= done / 2
		}
		if estMoves < 5 {
			estMoves = 5
		}
		return left / time.Duration(estMoves)
	}
	if p.byoyomiStones > 0 {
		return p.byoyomiTime / time.Duration(p.byoyomiStones)
	}
	return p.byoyomiTime
}

func (p *Player) consumeTime(color board.Color, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := clockIdx(color)
	if p.timeLeft[i] > d {
		p.timeLeft[i] -= d
	} else {
		p.timeLeft[i] = 0
	}
}

func clockIdx(c board.Color) int {
	if c == board.Black {
		return 0
	}
	return 1
}

// Close releases the player, flushing the final game record and the
// operational log. Every independent failure is reported.
func (p *Player) Close() error {
	var result *multierror.Error
	p.search.Abort()
	if p.autoSavePath != "" {
		p.mu.Lock()
		f, err := os.Create(p.autoSavePath)
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			if err := sgf.WriteGame(f, p.pos, p.pos.FinalScore()); err != nil {
				result = multierror.Append(result, err)
			}
			if err := f.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		p.mu.Unlock()
	}
	klog.Flush()
	return result.ErrorOrNil()
}
