package knowledge

import (
	"github.com/chewxy/math32"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/mcts"
)

// minProbability floors probability-based predictors so a composed product
// never collapses to exactly zero.
const minProbability = 0.0001

// CapturePredictor is a probability-based additive source: capture moves
// score high, self-ataris low, everything else neutral.
type CapturePredictor struct{}

// ProbabilityBased reports the predictor's output range (epsilon, 1].
func (CapturePredictor) ProbabilityBased() bool { return true }

// ProcessPosition sets the predictor value on every candidate.
func (CapturePredictor) ProcessPosition(b *board.Position, moves []mcts.CandidateMove) {
	toPlay := b.ToPlay()
	for i := range moves {
		mv := moves[i].Move
		switch {
		case mv == board.PointPass:
			moves[i].Predictor = minProbability
		case capturesSomething(b, mv, toPlay):
			moves[i].Predictor = 1.0
		case isSelfAtari(b, mv, toPlay):
			moves[i].Predictor = minProbability
		default:
			moves[i].Predictor = 0.5
		}
	}
}

// AtariEscapePredictor is a probability-based source rewarding moves that
// pull a friendly block out of atari.
type AtariEscapePredictor struct{}

func (AtariEscapePredictor) ProbabilityBased() bool { return true }

func (AtariEscapePredictor) ProcessPosition(b *board.Position, moves []mcts.CandidateMove) {
	toPlay := b.ToPlay()
	for i := range moves {
		mv := moves[i].Move
		switch {
		case mv == board.PointPass:
			moves[i].Predictor = minProbability
		case savesFromAtari(b, mv, toPlay):
			moves[i].Predictor = 1.0
		default:
			moves[i].Predictor = 0.5
		}
	}
}

// Composition selects how Multiple combines its predictors' values for one
// candidate move.
type Composition int

const (
	// Product multiplies the values; natural for probabilities.
	Product Composition = iota
	// GeometricMean is the count-th root of the product.
	GeometricMean
	// Sum adds the values; natural for unbounded PUCB-style bonuses.
	Sum
	// Average is the arithmetic mean.
	Average
	// Max takes the strongest single opinion.
	Max
)

// Multiple composes several additive-knowledge sources under one
// composition operator, fixed at construction. The composite reports
// itself probability-based only when every member is.
type Multiple struct {
	preds []mcts.AdditiveKnowledge
	comp  Composition

	scratch []mcts.CandidateMove
}

// NewMultiple builds the combinator. At least one predictor is required.
func NewMultiple(comp Composition, preds ...mcts.AdditiveKnowledge) *Multiple {
	return &Multiple{preds: preds, comp: comp}
}

// ProbabilityBased is true iff every composed predictor is.
func (m *Multiple) ProbabilityBased() bool {
	for _, p := range m.preds {
		if !p.ProbabilityBased() {
			return false
		}
	}
	return true
}

// ProcessPosition runs every predictor over a scratch copy of the
// candidate list and writes the composed value back.
func (m *Multiple) ProcessPosition(b *board.Position, moves []mcts.CandidateMove) {
	if len(m.preds) == 0 {
		return
	}
	if cap(m.scratch) < len(moves) {
		m.scratch = make([]mcts.CandidateMove, len(moves))
	}
	m.scratch = m.scratch[:len(moves)]

	acc := make([]float32, len(moves))
	for pi, p := range m.preds {
		copy(m.scratch, moves)
		for i := range m.scratch {
			m.scratch[i].Predictor = 0
		}
		p.ProcessPosition(b, m.scratch)
		for i := range acc {
			v := m.scratch[i].Predictor
			if pi == 0 {
				acc[i] = v
				continue
			}
			switch m.comp {
			case Product, GeometricMean:
				acc[i] *= v
			case Sum, Average:
				acc[i] += v
			case Max:
				if v > acc[i] {
					acc[i] = v
				}
			}
		}
	}
	n := float32(len(m.preds))
	for i := range moves {
		v := acc[i]
		switch m.comp {
		case GeometricMean:
			if v > 0 {
				v = math32.Pow(v, 1/n)
			}
		case Average:
			v /= n
		}
		if m.ProbabilityBased() && v < minProbability {
			v = minProbability
		}
		moves[i].Predictor = v
	}
}
