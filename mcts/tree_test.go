package mcts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestTree(t *testing.T) (*Tree, Naughty) {
	t.Helper()
	tree := NewTree(1024)
	alloc := tree.NewAllocator()
	root := tree.EnsureRoot(alloc)

	start, count := tree.CreateChildren(alloc, root, []ChildPrior{
		{Move: 10}, {Move: 20}, {Move: 30},
	})
	require.Equal(t, int32(3), count)

	// give every node distinct statistics.
	tree.Node(root).Update(1)
	for i := int32(0); i < count; i++ {
		c := start + Naughty(i)
		for k := int32(0); k <= i; k++ {
			tree.Node(c).Update(float32(i % 2))
		}
	}
	// grandchildren under the middle child.
	mid := start + 1
	_, gc := tree.CreateChildren(alloc, mid, []ChildPrior{{Move: 40}, {Move: 50}})
	require.Equal(t, int32(2), gc)
	return tree, root
}

func TestCreateChildrenPublishOnce(t *testing.T) {
	tree := NewTree(64)
	alloc := tree.NewAllocator()
	root := tree.EnsureRoot(alloc)

	s1, c1 := tree.CreateChildren(alloc, root, []ChildPrior{{Move: 1}, {Move: 2}})
	s2, c2 := tree.CreateChildren(alloc, root, []ChildPrior{{Move: 9}})
	assert.Equal(t, s1, s2, "second publish must return the winner's range")
	assert.Equal(t, c1, c2)
	assert.Equal(t, int32(2), tree.ChildCount(root))
}

func TestChildrenCarryPriors(t *testing.T) {
	tree := NewTree(64)
	alloc := tree.NewAllocator()
	root := tree.EnsureRoot(alloc)
	start, _ := tree.CreateChildren(alloc, root, []ChildPrior{
		{Move: 7, PriorValue: 0.9, PriorCount: 5, Predictor: 0.25},
	})
	n := tree.Node(start)
	assert.Equal(t, int32(7), n.Move())
	assert.Equal(t, float32(0.9), n.priorValue)
	assert.Equal(t, float32(5), n.priorCount)
	assert.Equal(t, float32(0.25), n.predictor)
}

func TestExtractSubtreePreservesStatistics(t *testing.T) {
	tree, root := buildTestTree(t)
	children := tree.Children(root)
	mid := children[1]
	wantCount, wantMean := tree.Node(mid).stat.Load()
	wantChildren := tree.ChildCount(mid)
	before := tree.NodeCount()

	newRoot, ok := tree.ExtractSubtree([]int32{20}, time.Time{})
	require.True(t, ok)

	gotCount, gotMean := tree.Node(newRoot).stat.Load()
	assert.Equal(t, wantCount, gotCount)
	assert.Equal(t, wantMean, gotMean)
	assert.Equal(t, wantChildren, tree.ChildCount(newRoot))
	assert.LessOrEqual(t, tree.NodeCount(), before)
	assert.Equal(t, newRoot, tree.Root())
}

func TestExtractSubtreeUnknownMove(t *testing.T) {
	tree, _ := buildTestTree(t)
	_, ok := tree.ExtractSubtree([]int32{99}, time.Time{})
	assert.False(t, ok)
}

func TestExtractSubtreeDeadline(t *testing.T) {
	tree, _ := buildTestTree(t)
	// a deadline in the past: the copy checks it only every 64 nodes, so
	// with so few nodes the check may never run; either outcome is
	// acceptable, but a failure must leave a usable tree.
	_, ok := tree.ExtractSubtree([]int32{20}, time.Now().Add(-time.Second))
	if !ok {
		tree.ResetFresh()
		alloc := tree.NewAllocator()
		root := tree.EnsureRoot(alloc)
		assert.True(t, root.valid())
	}
}

func TestPruneDropsLowCountNodes(t *testing.T) {
	tree, root := buildTestTree(t)
	// counts on the three children are 1, 2, 3; prune below 2.
	ok := tree.Prune(2)
	require.True(t, ok)
	newRoot := tree.Root()
	assert.Equal(t, int32(2), tree.ChildCount(newRoot))
	for _, c := range tree.Children(newRoot) {
		assert.GreaterOrEqual(t, tree.Node(c).Count(), uint32(2))
	}
	_ = root
}

func TestAllocatorExhaustion(t *testing.T) {
	tree := NewTree(4)
	alloc := tree.NewAllocator()
	root := tree.EnsureRoot(alloc)
	_, count := tree.CreateChildren(alloc, root, make([]ChildPrior, 16))
	assert.Equal(t, int32(0), count, "over-budget expansion must fail, not wrap")
}
