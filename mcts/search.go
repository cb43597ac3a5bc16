package mcts

import (
	"bytes"
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	rng "github.com/leesper/go_rng"
	"github.com/pkg/errors"

	"github.com/fuego-go/fuego/board"
)

// PlayoutPolicy generates one move per call during the rollout phase. A
// policy instance belongs to exactly one worker thread; Search creates one
// per worker through a PolicyFactory. GenerateMove must return a move that
// is legal for the current side to move, or PointPass — and must not pass
// while any empty point is not completely surrounded, which is what
// guarantees every rollout ends in a position scorable by area counting.
type PlayoutPolicy interface {
	StartPlayout(b *board.Position)
	GenerateMove(b *board.Position) board.Point
	OnPlay(b *board.Position)
	EndPlayout()
}

// PolicyFactory builds a fresh per-worker policy from a worker-specific
// seed.
type PolicyFactory func(seed uint64) PlayoutPolicy

// CandidateMove is one entry of the candidate list handed to knowledge at
// expansion time. Prior knowledge fills PriorValue/PriorCount; additive
// knowledge fills Predictor. Both mutate the entries in place.
type CandidateMove struct {
	Move       board.Point
	PriorValue float32
	PriorCount float32
	Predictor  float32
}

// PriorKnowledge supplies virtual (count, value) pairs for newly expanded
// children. It is consulted exactly once per expansion; the values are
// frozen on the nodes.
type PriorKnowledge interface {
	ProcessPosition(b *board.Position, moves []CandidateMove)
}

// AdditiveKnowledge supplies the per-selection predictor bonus.
// Probability-based predictors stay within (0, 1]; PUCB-style predictors
// are unbounded above.
type AdditiveKnowledge interface {
	ProcessPosition(b *board.Position, moves []CandidateMove)
	ProbabilityBased() bool
}

// MoveFilter removes moves from a candidate list, returning the moves
// kept. A root filter runs once per search on the root candidates; a tree
// filter runs at every expansion.
type MoveFilter interface {
	Filter(b *board.Position, moves []board.Point) []board.Point
}

// EncodeMove converts a board point into the compact form stored on tree
// nodes. Pass survives the round trip.
func EncodeMove(pt board.Point) int32 { return int32(pt) }

// DecodeMove is the inverse of EncodeMove.
func DecodeMove(m int32) board.Point { return board.Point(m) }

// BestMove is the outcome of one completed search.
type BestMove struct {
	Move   board.Point
	Value  float32
	Count  uint32
	Resign bool
}

// ChildStat is a live snapshot of one root child, for analyze-style output
// while the search runs.
type ChildStat struct {
	Move  board.Point
	Count uint32
	Mean  float32
	Rave  float32
}

type stopReason int32

const (
	stopNone stopReason = iota
	stopAborted
	stopMaxGames
	stopDeadline
	stopExhausted
	stopEarlyAbort
)

func (r stopReason) String() string {
	switch r {
	case stopAborted:
		return "aborted"
	case stopMaxGames:
		return "max games"
	case stopDeadline:
		return "deadline"
	case stopExhausted:
		return "pool exhausted"
	case stopEarlyAbort:
		return "early abort"
	default:
		return "running"
	}
}

// Search is the parallel UCT driver. One Search owns one two-pool Tree and
// is reused move after move so the previous tree can be carried forward.
// It is not safe to run two Search calls on the same instance concurrently;
// the live query methods (RootChildStats, BestSequence, RootValue) are safe
// to call from other goroutines while a search runs.
type Search struct {
	conf Config
	tree *Tree

	policyFn   PolicyFactory
	prior      PriorKnowledge
	additive   AdditiveKnowledge
	rootFilter MoveFilter
	treeFilter MoveFilter

	root       *board.Position
	rootIdx    Naughty
	rootPasses int             // consecutive passes ending the root history
	prevPos    *board.Position // position of the previous search's root
	haveTree   bool

	stop    int32 // atomic stopReason
	numSims int64 // atomic

	deadline time.Time

	// serializes expansion and backup when LockFree is off.
	updateMu sync.Mutex

	buf    bytes.Buffer
	logger *log.Logger
}

// Option configures optional search collaborators.
type Option func(*Search)

// WithPolicy sets the playout-policy factory. Without it, a uniform-random
// fallback policy is used.
func WithPolicy(f PolicyFactory) Option { return func(s *Search) { s.policyFn = f } }

// WithPrior sets the prior-knowledge source consulted at expansion.
func WithPrior(k PriorKnowledge) Option { return func(s *Search) { s.prior = k } }

// WithAdditive sets the additive-knowledge source consulted at expansion.
func WithAdditive(k AdditiveKnowledge) Option { return func(s *Search) { s.additive = k } }

// WithRootFilter sets the filter applied once to the root candidates.
func WithRootFilter(f MoveFilter) Option { return func(s *Search) { s.rootFilter = f } }

// WithTreeFilter sets the filter applied at every expansion.
func WithTreeFilter(f MoveFilter) Option { return func(s *Search) { s.treeFilter = f } }

// New builds a Search from a validated config.
func New(conf Config, opts ...Option) (*Search, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("mcts: invalid config %+v", conf)
	}
	conf = conf.normalized()
	s := &Search{
		conf: conf,
		tree: NewTree(conf.MaxNodes),
	}
	s.logger = log.New(&s.buf, "mcts: ", log.Ltime)
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Tree exposes the live tree for offline inspection (analyze output, tree
// dumps). Callers must not mutate it.
func (s *Search) Tree() *Tree { return s.tree }

// Config returns the active configuration.
func (s *Search) Config() Config { return s.conf }

// SetConfig replaces the configuration between searches. The old value is
// kept on an invalid input.
func (s *Search) SetConfig(conf Config) error {
	if !conf.IsValid() {
		return errors.Errorf("mcts: invalid config")
	}
	conf = conf.normalized()
	if conf.MaxNodes != s.conf.MaxNodes {
		s.tree = NewTree(conf.MaxNodes)
		s.haveTree = false
	}
	s.conf = conf
	return nil
}

// Log returns everything the search logged since construction.
func (s *Search) Log() string { return s.buf.String() }

// NumSims returns how many simulations the current (or last) search ran.
func (s *Search) NumSims() int64 { return atomic.LoadInt64(&s.numSims) }

// Abort asks every worker to finish its current simulation and stop.
func (s *Search) Abort() {
	atomic.CompareAndSwapInt32(&s.stop, int32(stopNone), int32(stopAborted))
}

func (s *Search) stopped() bool { return atomic.LoadInt32(&s.stop) != int32(stopNone) }

func (s *Search) setStop(r stopReason) {
	atomic.CompareAndSwapInt32(&s.stop, int32(stopNone), int32(r))
}

// Run searches from pos and returns the selected move. It blocks until a
// stop condition fires (or ctx is cancelled) and all workers have drained.
func (s *Search) Run(ctx context.Context, pos *board.Position) (BestMove, error) {
	if pos == nil {
		return BestMove{}, errors.New("mcts: nil position")
	}
	s.root = pos.Clone()
	s.rootPasses = trailingPasses(pos)
	atomic.StoreInt32(&s.stop, int32(stopNone))
	atomic.StoreInt64(&s.numSims, 0)

	s.prepareRoot()

	s.deadline = time.Time{}
	if s.conf.MaxTime > 0 && !s.conf.Deterministic {
		s.deadline = time.Now().Add(s.conf.MaxTime)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.Abort()
		case <-done:
		}
	}()

	started := time.Now()
	for {
		s.runWorkers()
		reason := stopReason(atomic.LoadInt32(&s.stop))
		if reason == stopExhausted && s.conf.PruneMinCount > 0 {
			if s.tree.Prune(s.conf.PruneMinCount) && !s.tree.NearExhaustion(s.conf.ReserveFraction) {
				s.rootIdx = s.tree.Root()
				s.logger.Printf("pruned tree to %d nodes, resuming", s.tree.NodeCount())
				atomic.StoreInt32(&s.stop, int32(stopNone))
				continue
			}
		}
		break
	}
	close(done)

	s.prevPos = s.root
	s.haveTree = true

	best := s.selectBest()
	s.logger.Printf("stopped after %d sims in %v (%v): move=%v value=%.3f count=%d resign=%v",
		s.NumSims(), time.Since(started).Round(time.Millisecond),
		stopReason(atomic.LoadInt32(&s.stop)), best.Move, best.Value, best.Count, best.Resign)
	return best, nil
}

// prepareRoot installs the search root: the previous subtree when the new
// position extends the previous root's game by a finite move sequence, a
// fresh tree otherwise.
func (s *Search) prepareRoot() {
	if s.conf.ReuseSubtree && s.haveTree && s.prevPos != nil {
		if seq, ok := moveTail(s.prevPos, s.root); ok {
			deadline := time.Time{}
			if s.conf.ExtractTimeBudget > 0 {
				deadline = time.Now().Add(s.conf.ExtractTimeBudget)
			}
			encoded := make([]int32, len(seq))
			for i, m := range seq {
				encoded[i] = EncodeMove(m.Point)
			}
			if root, ok := s.tree.ExtractSubtree(encoded, deadline); ok {
				s.rootIdx = root
				s.logger.Printf("reused subtree: %d nodes under %d-move tail", s.tree.NodeCount(), len(seq))
				return
			}
		}
	}
	s.tree.ResetFresh()
	alloc := s.tree.NewAllocator()
	s.rootIdx = s.tree.EnsureRoot(alloc)
}

// trailingPasses counts the consecutive passes ending pos's history,
// capped at two.
func trailingPasses(pos *board.Position) int {
	moves := pos.Moves()
	n := 0
	for i := len(moves) - 1; i >= 0 && n < 2; i-- {
		if moves[i].Point != board.PointPass {
			break
		}
		n++
	}
	return n
}

// moveTail returns the alternating move sequence leading from prev's
// position to cur's, or ok=false when cur does not extend prev's game.
func moveTail(prev, cur *board.Position) ([]board.Move, bool) {
	if prev.Size() != cur.Size() {
		return nil, false
	}
	pm, cm := prev.Moves(), cur.Moves()
	if len(cm) <= len(pm) {
		return nil, false
	}
	for i, m := range pm {
		if cm[i] != m {
			return nil, false
		}
	}
	ps, cs := prev.SetupStones(), cur.SetupStones()
	if len(ps) != len(cs) {
		return nil, false
	}
	for i, m := range ps {
		if cs[i] != m {
			return nil, false
		}
	}
	return cm[len(pm):], true
}

func (s *Search) runWorkers() {
	var wg sync.WaitGroup
	for i := 0; i < s.conf.Threads; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.worker(id)
		}(i)
	}
	wg.Wait()
}

// worker runs simulations until a stop condition fires. All worker-local
// state — scratch board, policy, RNG, allocator — lives here.
func (s *Search) worker(id int) {
	seed := s.conf.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	seed += uint64(id) * 0x9E3779B97F4A7C15

	gen := rng.NewUniformGenerator(int64(seed))
	var policy PlayoutPolicy
	if s.policyFn != nil {
		policy = s.policyFn(seed)
	} else {
		policy = &fallbackPolicy{gen: gen}
	}
	alloc := s.tree.NewAllocator()

	for !s.stopped() {
		s.simulate(alloc, policy, gen)
		n := atomic.AddInt64(&s.numSims, 1)
		if n%s.conf.CheckInterval == 0 {
			s.checkStop(n)
		}
	}
}

// checkStop evaluates every search-level stop condition. Called every
// CheckInterval simulations by whichever worker crossed the boundary.
func (s *Search) checkStop(n int64) {
	if s.conf.MaxGames > 0 && n >= s.conf.MaxGames {
		s.setStop(stopMaxGames)
		return
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.setStop(stopDeadline)
		return
	}
	if s.tree.NearExhaustion(s.conf.ReserveFraction) {
		s.setStop(stopExhausted)
		return
	}
	if s.conf.EarlyAbort && n >= s.conf.EarlyAbortMinGames {
		best, second := s.topTwoCounts()
		if second > 0 && float32(best) > s.conf.EarlyAbortFactor*float32(second) {
			s.setStop(stopEarlyAbort)
		}
	}
}

func (s *Search) topTwoCounts() (best, second uint32) {
	for _, c := range s.tree.Children(s.rootIdx) {
		cnt := s.tree.Node(c).Count()
		if cnt > best {
			best, second = cnt, best
		} else if cnt > second {
			second = cnt
		}
	}
	return
}

// pathEntry records one node on the descent path together with the color
// that moved into it. The root entry carries the root's side to move, so
// every node's statistic is a win probability for its mover.
type pathEntry struct {
	node  Naughty
	mover board.Color
}

// simulate runs one full simulation: descend, expand, evaluate, backup.
func (s *Search) simulate(alloc *Allocator, policy PlayoutPolicy, gen *rng.UniformGenerator) {
	b := s.root.Clone()
	path := make([]pathEntry, 0, 64)
	seq := make([]board.Move, 0, 128)
	path = append(path, pathEntry{node: s.rootIdx, mover: b.ToPlay()})

	useVL := s.conf.Threads > 1 && s.conf.VirtualLossCount > 0

	node := s.rootIdx
	passes := s.rootPasses
	var blackWin float32
	evaluated := false

descend:
	for {
		n := s.tree.Node(node)
		switch n.Proven() {
		case ProvenWin, ProvenLoss:
			mover := path[len(path)-1].mover
			r := float32(0)
			if n.Proven() == ProvenWin {
				r = 1
			}
			blackWin = perspectiveToBlack(r, mover)
			evaluated = true
			break descend
		}
		if passes >= 2 {
			// terminal by two consecutive passes: score the position as it
			// stands and mark the node proven for later descents.
			blackWin = s.scoreTerminal(b, n, path[len(path)-1].mover)
			evaluated = true
			break descend
		}
		if !n.HasChildren() {
			if n.Count() < s.conf.ExpandThreshold && node != s.rootIdx {
				break descend
			}
			s.expand(b, node, alloc)
			if !n.HasChildren() {
				break descend
			}
		}
		start, count, _ := n.ChildRange()
		if count == 0 {
			break descend
		}
		child := s.selectChild(start, count, n.Count())
		if !child.valid() {
			break descend
		}
		cn := s.tree.Node(child)
		mv := DecodeMove(cn.move)
		mover := b.ToPlay()
		if err := b.Play(mv, mover); err != nil {
			// cannot happen for moves vetted at expansion from the same
			// history; treated as a dead branch if it ever does.
			cn.SetProven(ProvenLoss)
			break descend
		}
		if mv == board.PointPass {
			passes++
		} else {
			passes = 0
		}
		if useVL {
			cn.AddVirtualLoss(s.conf.VirtualLossCount)
		}
		path = append(path, pathEntry{node: child, mover: mover})
		seq = append(seq, board.Move{Point: mv, Color: mover})
		node = child
	}

	if !evaluated {
		blackWin = s.playout(b, policy, &seq, passes)
	}

	if !s.conf.LockFree {
		s.updateMu.Lock()
	}
	s.backup(path, seq, blackWin, useVL)
	if !s.conf.LockFree {
		s.updateMu.Unlock()
	}
}

// perspectiveToBlack converts a result seen from mover's side into Black's
// perspective.
func perspectiveToBlack(r float32, mover board.Color) float32 {
	if mover == board.Black {
		return r
	}
	return 1 - r
}

// scoreTerminal scores a two-pass-terminal in-tree position and freezes the
// outcome on the node.
func (s *Search) scoreTerminal(b *board.Position, n *Node, mover board.Color) float32 {
	score := b.Score()
	var blackWin float32
	switch {
	case score > 0:
		blackWin = 1
	case score < 0:
		blackWin = 0
	default:
		return 0.5
	}
	r := blackWin
	if mover == board.White {
		r = 1 - blackWin
	}
	if r == 1 {
		n.SetProven(ProvenWin)
	} else {
		n.SetProven(ProvenLoss)
	}
	return blackWin
}

// selectChild picks the child maximizing the selection score. Ties break
// deterministically toward the lower child index.
func (s *Search) selectChild(start Naughty, count int32, parentVisits uint32) Naughty {
	params := s.scoreParams()
	best := nilNode
	var bestScore float32 = math32.Inf(-1)
	for i := int32(0); i < count; i++ {
		c := start + Naughty(i)
		cn := s.tree.Node(c)
		if cn.Proven() == ProvenLoss {
			continue
		}
		if cn.Proven() == ProvenWin {
			return c
		}
		sc := cn.Score(parentVisits, params)
		if sc > bestScore {
			best, bestScore = c, sc
		}
	}
	if !best.valid() && count > 0 {
		// every child is a proven loss; descend the first so the backup
		// still records the result.
		return start
	}
	return best
}

func (s *Search) scoreParams() scoreParams {
	p := scoreParams{
		biasConstant:     s.conf.BiasConstant,
		kWeight:          s.conf.KnowledgeWeight,
		kDecay:           s.conf.KnowledgeDecay,
		firstPlayUrgency: s.conf.FirstPlayUrgency,
		virtualLossValue: s.conf.VirtualLossValue,
	}
	if s.conf.Rave {
		p.raveEquivalence = s.conf.RaveEquivalence
		p.raveBeta = s.conf.RaveBeta
	} else {
		// drive the dynamic blend weight to zero.
		p.raveEquivalence = math32.MaxFloat32
	}
	return p
}

// expand generates the node's candidate children — legal moves kept by the
// tree filter (and, at the root, the root filter), plus pass — and
// publishes them with priors and predictor bonuses attached.
func (s *Search) expand(b *board.Position, node Naughty, alloc *Allocator) {
	toPlay := b.ToPlay()
	legal := make([]board.Point, 0, b.Size()*b.Size())
	for _, pt := range b.EmptyPoints() {
		if b.IsLegal(pt, toPlay) {
			legal = append(legal, pt)
		}
	}
	if s.treeFilter != nil {
		legal = s.treeFilter.Filter(b, legal)
	}
	if node == s.rootIdx && s.rootFilter != nil {
		legal = s.rootFilter.Filter(b, legal)
	}
	cands := make([]CandidateMove, 0, len(legal)+1)
	for _, pt := range legal {
		cands = append(cands, CandidateMove{Move: pt})
	}
	cands = append(cands, CandidateMove{Move: board.PointPass})
	if s.prior != nil {
		s.prior.ProcessPosition(b, cands)
	}
	if s.additive != nil {
		s.additive.ProcessPosition(b, cands)
	}
	priors := make([]ChildPrior, len(cands))
	for i, c := range cands {
		priors[i] = ChildPrior{
			Move:       EncodeMove(c.Move),
			PriorValue: c.PriorValue,
			PriorCount: c.PriorCount,
			Predictor:  c.Predictor,
		}
	}
	s.tree.CreateChildren(alloc, node, priors)
}

// playout rolls the game out to a scorable end with the worker's policy and
// returns the result from Black's perspective. seq accumulates every move
// played, in order, for the RAVE update.
func (s *Search) playout(b *board.Position, policy PlayoutPolicy, seq *[]board.Move, passes int) float32 {
	policy.StartPlayout(b)
	defer policy.EndPlayout()

	area := b.Size() * b.Size()
	mercyLimit := int(s.conf.MercyThreshold * float64(area))
	stoneDiff := 0 // black minus white
	length := 0
	maxLen := b.MaxMoves() - b.MoveNumber()

	for length < maxLen {
		mover := b.ToPlay()
		mv := policy.GenerateMove(b)
		if err := b.Play(mv, mover); err != nil {
			// a policy bug surfaced as an illegal move ends the rollout;
			// the position as it stands is scored.
			break
		}
		*seq = append(*seq, board.Move{Point: mv, Color: mover})
		length++
		if mv == board.PointPass {
			passes++
			if passes >= 2 {
				break
			}
			continue
		}
		passes = 0
		policy.OnPlay(b)

		// one stone placed, captures swing the difference by their count;
		// a suicide removes the mover's own stones including the placed one.
		last := b.LastMove()
		delta := 1 + last.NumCaptured
		if last.Suicide {
			delta = 1 - last.NumCaptured
		}
		if mover == board.Black {
			stoneDiff += delta
		} else {
			stoneDiff -= delta
		}
		if s.conf.MercyRule && abs(stoneDiff) > mercyLimit {
			break
		}
	}

	score := b.Score()
	var blackWin float32
	switch {
	case score > 0:
		blackWin = 1
	case score < 0:
		blackWin = 0
	default:
		blackWin = 0.5
	}
	if s.conf.ScoreModification > 0 {
		blackWin = clamp01(blackWin + s.conf.ScoreModification*float32(score)/float32(area))
	}
	if s.conf.LengthModification > 0 && maxLen > 0 {
		w := s.conf.LengthModification * float32(length) / float32(maxLen)
		blackWin = blackWin*(1-w) + 0.5*w
	}
	return blackWin
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// backup walks the path leaf-to-root, adding the result at each node from
// its mover's perspective, undoing virtual losses, and applying the RAVE
// update for all same-color follow-up moves.
func (s *Search) backup(path []pathEntry, seq []board.Move, blackWin float32, undoVL bool) {
	// first[color][point] is the earliest index >= the scan frontier at
	// which color played point; maintained incrementally as the frontier
	// moves toward the root so each node sees first occurrences at or
	// after its own depth.
	var first [2]map[board.Point]int
	first[0] = make(map[board.Point]int, len(seq))
	first[1] = make(map[board.Point]int, len(seq))
	frontier := len(seq)

	for i := len(path) - 1; i >= 0; i-- {
		e := path[i]
		n := s.tree.Node(e.node)

		r := blackWin
		if e.mover == board.White {
			r = 1 - blackWin
		}
		n.Update(r)
		if undoVL && i > 0 {
			n.AddVirtualLoss(-s.conf.VirtualLossCount)
		}

		// moves into path[j] sit at seq[j-1]; moves after this node start
		// at seq index i.
		for frontier > i {
			frontier--
			m := seq[frontier]
			if m.Point != board.PointPass {
				first[colorIdx(m.Color)][m.Point] = frontier
			}
		}
		if s.conf.Rave {
			s.raveUpdate(e.node, i, toPlayAt(path, i), seq, first, blackWin)
		}
	}
}

func colorIdx(c board.Color) int {
	if c == board.Black {
		return 0
	}
	return 1
}

// toPlayAt returns the side to move at path[i]: the mover of the next path
// entry, or the flip of the node's own mover at the leaf.
func toPlayAt(path []pathEntry, i int) board.Color {
	if i+1 < len(path) {
		return path[i+1].mover
	}
	if i == 0 {
		return path[0].mover
	}
	return path[i].mover.Opposite()
}

// raveUpdate folds the simulation result into the RAVE statistic of every
// child of path[nodeIdx] whose move was later played by the node's side to
// move.
func (s *Search) raveUpdate(node Naughty, nodeIdx int, toPlay board.Color, seq []board.Move, first [2]map[board.Point]int, blackWin float32) {
	n := s.tree.Node(node)
	start, count, ok := n.ChildRange()
	if !ok || count == 0 {
		return
	}
	r := blackWin
	if toPlay == board.White {
		r = 1 - blackWin
	}
	m := first[colorIdx(toPlay)]
	total := len(seq) - nodeIdx
	for i := int32(0); i < count; i++ {
		cn := s.tree.Node(start + Naughty(i))
		mv := DecodeMove(cn.move)
		if mv == board.PointPass {
			continue
		}
		idx, played := m[mv]
		if !played || idx < nodeIdx {
			continue
		}
		weight := float32(1)
		if s.conf.RaveWeighting == RaveDistanceDecay && total > 0 {
			weight = 1 - float32(idx-nodeIdx)/float32(total)
			if weight <= 0 {
				continue
			}
		}
		cn.UpdateRAVE(r, weight)
	}
}

// selectBest extracts the final move after the search has stopped: the best
// root child under the configured criterion, with the pass and resign
// special cases applied.
func (s *Search) selectBest() BestMove {
	rootNode := s.tree.Node(s.rootIdx)
	children := s.tree.Children(s.rootIdx)
	if len(children) == 0 {
		return BestMove{Move: board.PointPass, Value: rootNode.Mean(), Count: rootNode.Count()}
	}

	best := s.bestChild(children, nil)
	if best.valid() && DecodeMove(s.tree.Node(best).move) == board.PointPass {
		if !s.passWins() {
			second := s.bestChild(children, func(c Naughty) bool {
				return DecodeMove(s.tree.Node(c).move) != board.PointPass
			})
			if second.valid() {
				best = second
			}
		}
	}
	if !best.valid() {
		return BestMove{Move: board.PointPass, Value: rootNode.Mean(), Count: rootNode.Count()}
	}

	bn := s.tree.Node(best)
	out := BestMove{
		Move:  DecodeMove(bn.move),
		Value: bn.Mean(),
		Count: bn.Count(),
	}
	if rootNode.Mean() < s.conf.ResignThreshold && rootNode.Count() >= s.conf.ResignMinGames {
		out.Resign = true
	}
	return out
}

// passWins reports whether ending the game now wins for the side to move
// under area scoring.
func (s *Search) passWins() bool {
	score := s.root.Score()
	if s.root.ToPlay() == board.Black {
		return score > 0
	}
	return score < 0
}

// bestChild applies the configured selection criterion over the root
// children, skipping proven losses and children rejected by keep.
func (s *Search) bestChild(children []Naughty, keep func(Naughty) bool) Naughty {
	rootVisits := s.tree.Node(s.rootIdx).Count()
	best := nilNode
	var bestKey float32 = math32.Inf(-1)
	for _, c := range children {
		if keep != nil && !keep(c) {
			continue
		}
		cn := s.tree.Node(c)
		if cn.Proven() == ProvenLoss {
			continue
		}
		if cn.Proven() == ProvenWin {
			return c
		}
		var key float32
		count, mean := cn.stat.Load()
		switch s.conf.SelectMode {
		case SelectValue:
			if count == 0 {
				continue
			}
			key = mean
		case SelectBound:
			if count == 0 {
				continue
			}
			key = mean - s.conf.BiasConstant*math32.Sqrt(math32.Log(float32(rootVisits+1))/float32(count))
		case SelectEstimate:
			key = cn.estimate()
		default: // SelectCount, ties broken by value
			key = float32(count) + clamp01(mean)*0.5
		}
		if key > bestKey {
			best, bestKey = c, key
		}
	}
	return best
}

// estimate is the exploration-free blended value: observed mean weighted
// with the frozen prior, blended with the RAVE mean at weight
// raveCount/(raveCount+count+1).
func (n *Node) estimate() float32 {
	count, mean := n.stat.Load()
	muHat := mean
	total := float32(count) + n.priorCount
	if total > 0 {
		muHat = (mean*float32(count) + n.priorValue*n.priorCount) / total
	}
	raveCount, raveMean := n.rave.Load()
	if raveCount <= 0 {
		return muHat
	}
	beta := raveCount / (raveCount + float32(count) + 1)
	return (1-beta)*muHat + beta*raveMean
}

// RootChildStats snapshots every root child for live analyze output. Safe
// to call while the search runs; counts may lag in-flight simulations.
func (s *Search) RootChildStats() []ChildStat {
	children := s.tree.Children(s.rootIdx)
	out := make([]ChildStat, 0, len(children))
	for _, c := range children {
		cn := s.tree.Node(c)
		_, raveMean := cn.rave.Load()
		out = append(out, ChildStat{
			Move:  DecodeMove(cn.move),
			Count: cn.Count(),
			Mean:  cn.Mean(),
			Rave:  raveMean,
		})
	}
	return out
}

// BestSequence returns the principal variation: the most-visited child
// chain from the root, at most max moves long.
func (s *Search) BestSequence(max int) []board.Point {
	out := make([]board.Point, 0, max)
	node := s.rootIdx
	for len(out) < max {
		var best Naughty = nilNode
		var bestCount uint32
		for _, c := range s.tree.Children(node) {
			if cnt := s.tree.Node(c).Count(); !best.valid() || cnt > bestCount {
				best, bestCount = c, cnt
			}
		}
		if !best.valid() || bestCount == 0 {
			break
		}
		out = append(out, DecodeMove(s.tree.Node(best).move))
		node = best
	}
	return out
}

// RootValue returns the current root win-probability estimate for the side
// to move.
func (s *Search) RootValue() float32 {
	return s.tree.Node(s.rootIdx).Mean()
}

// fallbackPolicy is the deterministic last-resort rollout generator used
// when no policy factory is configured: uniform random over legal points
// that do not fill a single-point eye, then pass.
type fallbackPolicy struct {
	gen  *rng.UniformGenerator
	cand []board.Point
}

func (f *fallbackPolicy) StartPlayout(b *board.Position) {}

func (f *fallbackPolicy) GenerateMove(b *board.Position) board.Point {
	f.cand = f.cand[:0]
	toPlay := b.ToPlay()
	for _, pt := range b.EmptyPoints() {
		if !b.IsLegalQuick(pt, toPlay) {
			continue
		}
		if isSinglePointEye(b, pt, toPlay) {
			continue
		}
		f.cand = append(f.cand, pt)
	}
	if len(f.cand) == 0 {
		return board.PointPass
	}
	return f.cand[int(f.gen.Int32n(int32(len(f.cand))))]
}

func (f *fallbackPolicy) OnPlay(b *board.Position) {}
func (f *fallbackPolicy) EndPlayout()              {}

// isSinglePointEye reports whether pt is an eye-like point for c: every
// orthogonal neighbor is c or border. Never filling such points is what
// keeps a uniform-random rollout from destroying its own groups forever.
func isSinglePointEye(b *board.Position, pt board.Point, c board.Color) bool {
	for _, n := range b.Neighbors4(pt) {
		nc := b.ColorAt(n)
		if nc != c && nc != board.Border {
			return false
		}
	}
	return true
}
