package mcts

import (
	"sync/atomic"

	"github.com/chewxy/math32"
)

// Naughty is an arena index standing in for a node pointer, so the tree
// holds no Go pointers and the two pools can be swapped wholesale.
type Naughty int32

// nilNode marks "no such node" (e.g. a not-yet-expanded child range, or a
// failed allocation).
const nilNode Naughty = -1

func (n Naughty) valid() bool { return n >= 0 }

// ProvenStatus is the settled outcome recorded on a node once its subtree
// is fully resolved.
type ProvenStatus int32

const (
	Unknown ProvenStatus = iota
	ProvenWin
	ProvenLoss
)

// childRange packs a contiguous [start, start+count) slice of the owning
// pool into one int64 so expansion can publish children with a single
// atomic commit write of the range descriptor.
const notExpanded int64 = -1

func packRange(start Naughty, count int32) int64 {
	return int64(start)<<32 | int64(uint32(count))
}

func unpackRange(packed int64) (start Naughty, count int32) {
	return Naughty(packed >> 32), int32(uint32(packed))
}

// Node is one vertex of the search tree.
type Node struct {
	move int32 // encoded point; see EncodeMove/DecodeMove for the codec

	stat meanStat
	rave raveStat

	priorValue float32 // frozen at expansion time
	priorCount float32

	predictor float32 // sum of additive-knowledge bonuses, frozen at expansion

	proven int32 // ProvenStatus, atomic

	childRange int64 // atomic childRange descriptor; notExpanded if none

	virtualLoss int32 // atomic
}

func (n *Node) reset() {
	n.move = 0
	n.stat.Reset()
	n.rave.Reset()
	n.priorValue = 0
	n.priorCount = 0
	n.predictor = 0
	atomic.StoreInt32(&n.proven, int32(Unknown))
	atomic.StoreInt64(&n.childRange, notExpanded)
	atomic.StoreInt32(&n.virtualLoss, 0)
}

// Move returns the encoded point this node represents.
func (n *Node) Move() int32 { return n.move }

// Count returns the number of real (non-virtual) playouts backed up through
// this node.
func (n *Node) Count() uint32 {
	c, _ := n.stat.Load()
	return c
}

// Mean returns the current win-probability estimate for the node's mover,
// ignoring the prior.
func (n *Node) Mean() float32 {
	_, m := n.stat.Load()
	return m
}

// RAVE returns the current RAVE (count, mean) pair.
func (n *Node) RAVE() (count, mean float32) { return n.rave.Load() }

// Proven returns the node's proven status.
func (n *Node) Proven() ProvenStatus { return ProvenStatus(atomic.LoadInt32(&n.proven)) }

// SetProven marks the node as a proven win or loss, stopping further
// descent into a settled subtree.
func (n *Node) SetProven(s ProvenStatus) { atomic.StoreInt32(&n.proven, int32(s)) }

// HasChildren reports whether this node's children have been published.
func (n *Node) HasChildren() bool {
	return atomic.LoadInt64(&n.childRange) != notExpanded
}

// ChildRange returns the published [start, start+count) range. ok is false
// before expansion.
func (n *Node) ChildRange() (start Naughty, count int32, ok bool) {
	packed := atomic.LoadInt64(&n.childRange)
	if packed == notExpanded {
		return nilNode, 0, false
	}
	start, count = unpackRange(packed)
	return start, count, true
}

// publishChildren atomically commits a child range, first-writer-wins
// under a race: a CAS from notExpanded to the new descriptor. The caller
// whose CAS fails abandons its allocation; pool fragmentation from the
// loser is accepted.
func (n *Node) publishChildren(start Naughty, count int32) bool {
	return atomic.CompareAndSwapInt64(&n.childRange, notExpanded, packRange(start, count))
}

// AddVirtualLoss adds a temporary pessimistic bias while a worker descends
// through this node.
func (n *Node) AddVirtualLoss(k int32) { atomic.AddInt32(&n.virtualLoss, k) }

// virtualLossCount returns the current virtual loss counter.
func (n *Node) virtualLossCount() int32 { return atomic.LoadInt32(&n.virtualLoss) }

// Update folds a simulation result into this node's statistic.
func (n *Node) Update(result float32) { n.stat.Add(result) }

// UpdateRAVE folds a weighted all-moves-as-first observation into this
// node's RAVE statistic.
func (n *Node) UpdateRAVE(result, weight float32) { n.rave.Add(result, weight) }

// SetPrior freezes the prior (count, value) pair supplied by prior
// knowledge at expansion time. Priors are applied exactly once and never
// updated afterward.
func (n *Node) SetPrior(value, count float32) {
	n.priorValue = value
	n.priorCount = count
}

// SetPredictor freezes the additive-knowledge bonus sum at expansion time.
func (n *Node) SetPredictor(p float32) { n.predictor = p }

// scoreParams bundles the configuration knobs the selection formula
// needs, so Score itself stays a pure function of (node, parent visits,
// params) and is trivial to unit test in isolation.
type scoreParams struct {
	biasConstant     float32 // UCB exploration constant
	raveEquivalence  float32 // "c" in the RAVE blend weight
	raveBeta         float32 // fixed blend weight, when > 0 overrides the dynamic blend
	kWeight, kDecay  float32 // additive-knowledge weight/decay
	firstPlayUrgency float32
	virtualLossValue float32 // pessimistic result assigned per virtual loss
}

// Score computes the UCB+RAVE+additive-knowledge selection score for this
// node acting as a child of a parent with parentVisits total real visits:
//
//	mu_hat = weighted(mean, prior_mean, prior_count)
//	UCB    = bias_constant * sqrt(log(N) / n)
//	rave   = RAVE_mean * weight(RAVE_count, n)
//	add    = K_weight * predictor / (n + K_decay)
//	score  = (1-beta)*mu_hat + beta*rave + UCB + add
//
// Virtual losses are folded into both n and mu_hat so concurrently
// descending workers see a pessimistic, dispersing view of this child.
func (n *Node) Score(parentVisits uint32, p scoreParams) float32 {
	count, mean := n.stat.Load()
	vl := uint32(n.virtualLossCount())
	effCount := count + vl
	if effCount == 0 {
		return p.firstPlayUrgency + n.additiveBonus(0, p)
	}

	effMean := mean
	if vl > 0 {
		effMean = (mean*float32(count) + p.virtualLossValue*float32(vl)) / float32(effCount)
	}

	muHat := effMean
	if n.priorCount > 0 {
		totalCount := float32(effCount) + n.priorCount
		muHat = (effMean*float32(effCount) + n.priorValue*n.priorCount) / totalCount
	}

	ucb := p.biasConstant * math32.Sqrt(math32.Log(float32(parentVisits+1))/float32(effCount))

	raveCount, raveMean := n.rave.Load()
	beta := p.raveBeta
	if beta <= 0 && (raveCount+float32(effCount)) > 0 {
		beta = raveCount / (raveCount + float32(effCount) + p.raveEquivalence*raveCount*float32(effCount))
	}
	if beta > 1 {
		beta = 1
	}

	score := (1-beta)*muHat + beta*raveMean + ucb
	score += n.additiveBonus(effCount, p)
	return score
}

func (n *Node) additiveBonus(count uint32, p scoreParams) float32 {
	if n.predictor == 0 || p.kWeight == 0 {
		return 0
	}
	return p.kWeight * n.predictor / (float32(count) + p.kDecay)
}
