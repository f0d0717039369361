package reach_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/rhir/reach"
)

func buildDiamond(t *testing.T) (*rhir.Context, *rhir.ControlFlow, rhir.Ref, rhir.Ref, rhir.Ref, rhir.Ref) {
	t.Helper()
	ctx := rhir.NewContext()
	entry := ctx.NewBlock()
	left := ctx.NewBlock()
	right := ctx.NewBlock()
	join := ctx.NewBlock()
	pred := ctx.NewPredicate(rhir.Nondet{})

	cf := ctx.NewControlFlow()
	require.NoError(t, cf.AddConditionalEdge(entry.Ref(), left.Ref(), right.Ref(), pred.Ref()))
	require.NoError(t, cf.AddUnconditionalEdge(left.Ref(), join.Ref()))
	require.NoError(t, cf.AddUnconditionalEdge(right.Ref(), join.Ref()))
	return ctx, cf, entry.Ref(), left.Ref(), right.Ref(), join.Ref()
}

func TestBlockRefs_Diamond(t *testing.T) {
	_, cf, entry, left, right, join := buildDiamond(t)
	reachable := reach.BlockRefs(cf, entry)
	assert.True(t, reachable[entry])
	assert.True(t, reachable[left])
	assert.True(t, reachable[right])
	assert.True(t, reachable[join])
}

func TestDominators_Diamond(t *testing.T) {
	_, cf, entry, left, right, join := buildDiamond(t)
	dom := reach.Compute(cf, entry)

	assert.True(t, dom.Dominates(entry, join))
	assert.True(t, dom.Dominates(entry, left))
	assert.False(t, dom.Dominates(left, join), "left does not dominate join since right also reaches it")
	assert.False(t, dom.Dominates(right, join))
	assert.True(t, dom.Dominates(join, join))
}
