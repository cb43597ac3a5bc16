package mcts

import (
	"sync/atomic"

	"github.com/chewxy/math32"
)

// meanStat is a running-mean accumulator: an (n, mu) pair updated online
// as Add(x): n++, mu += (x-mu)/n. Both fields
// are packed into one uint64 (count in the high 32 bits, the mean's
// float32 bits in the low 32) and updated with a compare-and-swap loop.
// This gives every reader a load that is either the pre- or post-update
// pair, in full, never a torn half-written float, without a per-node
// mutex. The same storage backs both scheduling modes: the CAS loop
// already gives the lock-free guarantees, so locked mode (selected via
// Config.LockFree) only changes how updates are scheduled around it (see
// search.go), not how the statistic itself is stored.
type meanStat struct {
	packed uint64
}

func packMean(count uint32, mean float32) uint64 {
	return uint64(count)<<32 | uint64(math32.Float32bits(mean))
}

func unpackMean(packed uint64) (count uint32, mean float32) {
	count = uint32(packed >> 32)
	mean = math32.Float32frombits(uint32(packed))
	return
}

// Load returns the current (count, mean) pair.
func (s *meanStat) Load() (count uint32, mean float32) {
	return unpackMean(atomic.LoadUint64(&s.packed))
}

// Add folds one observation into the accumulator.
func (s *meanStat) Add(x float32) {
	for {
		old := atomic.LoadUint64(&s.packed)
		count, mean := unpackMean(old)
		count++
		mean += (x - mean) / float32(count)
		next := packMean(count, mean)
		if atomic.CompareAndSwapUint64(&s.packed, old, next) {
			return
		}
	}
}

// Merge combines another accumulator's (count, mean) into this one by
// count-weighted mean, a lossless merge (used by subtree extraction when
// two sources of the same statistic are combined).
func (s *meanStat) Merge(otherCount uint32, otherMean float32) {
	if otherCount == 0 {
		return
	}
	for {
		old := atomic.LoadUint64(&s.packed)
		count, mean := unpackMean(old)
		total := count + otherCount
		if total == 0 {
			return
		}
		merged := (mean*float32(count) + otherMean*float32(otherCount)) / float32(total)
		next := packMean(total, merged)
		if atomic.CompareAndSwapUint64(&s.packed, old, next) {
			return
		}
	}
}

// Reset clears the accumulator back to (0, 0).
func (s *meanStat) Reset() { atomic.StoreUint64(&s.packed, 0) }

// raveStat is the RAVE ("all moves as first") accumulator, identical in
// shape to meanStat but updated with possibly fractional weights: the
// distance-decayed RAVE update needs a non-integer "count". Both the
// weight total and the mean are stored as float32 bits, CAS-looped the
// same way.
type raveStat struct {
	packed uint64
}

func packRave(count, mean float32) uint64 {
	return uint64(math32.Float32bits(count))<<32 | uint64(math32.Float32bits(mean))
}

func unpackRave(packed uint64) (count, mean float32) {
	count = math32.Float32frombits(uint32(packed >> 32))
	mean = math32.Float32frombits(uint32(packed))
	return
}

// Load returns the current (weight-count, mean) pair.
func (s *raveStat) Load() (count, mean float32) {
	return unpackRave(atomic.LoadUint64(&s.packed))
}

// Add folds one weighted observation into the RAVE accumulator.
func (s *raveStat) Add(x, weight float32) {
	if weight <= 0 {
		return
	}
	for {
		old := atomic.LoadUint64(&s.packed)
		count, mean := unpackRave(old)
		newCount := count + weight
		mean += weight * (x - mean) / newCount
		next := packRave(newCount, mean)
		if atomic.CompareAndSwapUint64(&s.packed, old, next) {
			return
		}
	}
}

func (s *raveStat) Reset() { atomic.StoreUint64(&s.packed, 0) }
