package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/rhir/optimize"
)

func TestBlock_ElidesChainOfEmptyBlocks(t *testing.T) {
	ctx := rhir.NewContext()
	entry := ctx.NewBlock()
	entry.Ops = append(entry.Ops, rhir.ExternalAction{Action: "start"})
	empty1 := ctx.NewBlock()
	empty2 := ctx.NewBlock()
	exit := ctx.NewBlock()
	exit.Ops = append(exit.Ops, rhir.ExternalAction{Action: "finish"})

	cf := ctx.NewControlFlow()
	require.NoError(t, cf.AddUnconditionalEdge(entry.Ref(), empty1.Ref()))
	require.NoError(t, cf.AddUnconditionalEdge(empty1.Ref(), empty2.Ref()))
	require.NoError(t, cf.AddUnconditionalEdge(empty2.Ref(), exit.Ref()))

	optimize.Block(ctx, cf, entry)

	edge := cf.EdgeFrom(entry.Ref())
	require.NotNil(t, edge)
	uncond, ok := edge.(rhir.UnconditionalEdge)
	require.True(t, ok)
	assert.Equal(t, exit.Ref(), uncond.Target)

	_, ok = ctx.AsBlock(empty1.Ref())
	assert.False(t, ok)
	_, ok = ctx.AsBlock(empty2.Ref())
	assert.False(t, ok)
}

func TestBlock_NeverDropsEntryBlock(t *testing.T) {
	ctx := rhir.NewContext()
	entry := ctx.NewBlock()
	exit := ctx.NewBlock()
	exit.Ops = append(exit.Ops, rhir.ExternalAction{Action: "finish"})

	cf := ctx.NewControlFlow()
	require.NoError(t, cf.AddUnconditionalEdge(entry.Ref(), exit.Ref()))

	optimize.Block(ctx, cf, entry)

	_, ok := ctx.AsBlock(entry.Ref())
	assert.True(t, ok, "entry block must survive even though it is empty")
}

func TestBlock_ConditionalEmptyWithNoOutgoingEdgeIsLeftInPlace(t *testing.T) {
	ctx := rhir.NewContext()
	entry := ctx.NewBlock()
	entry.Ops = append(entry.Ops, rhir.ExternalAction{Action: "start"})
	pred := ctx.NewPredicate(rhir.Nondet{})
	branchTarget := ctx.NewBlock()
	branchTarget.Ops = append(branchTarget.Ops, rhir.ExternalAction{Action: "taken"})
	deadEnd := ctx.NewBlock() // empty, no outgoing edge

	cf := ctx.NewControlFlow()
	require.NoError(t, cf.AddConditionalEdge(entry.Ref(), branchTarget.Ref(), deadEnd.Ref(), pred.Ref()))

	optimize.Block(ctx, cf, entry)

	_, ok := ctx.AsBlock(deadEnd.Ref())
	assert.True(t, ok, "a conditionally-reached block with no outgoing edge must be left in place")
}
