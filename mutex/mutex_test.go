package mutex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/mutex"
	"github.com/viant/racegen/rhir"
)

func TestInclusion_CanonicalizesUnorderedPairs(t *testing.T) {
	ctx := rhir.NewContext()
	inst1 := ctx.NewBlock().Ref()
	inst2 := ctx.NewBlock().Ref()
	block1 := ctx.NewBlock().Ref()
	block2 := ctx.NewBlock().Ref()

	inc := mutex.NewInclusion()
	inc.AddCooccurring(inst1, block1, inst2, block2)

	assert.True(t, inc.IsCooccurring(inst1, block1, inst2, block2))
	assert.True(t, inc.IsCooccurring(inst2, block2, inst1, block1), "inclusion is symmetric regardless of insertion order")
	assert.Equal(t, 1, inc.Len())
}

func buildTwoInstanceModule(t *testing.T) (*rhir.Context, *rhir.Module, rhir.Ref, rhir.Ref, rhir.Ref, rhir.Ref) {
	t.Helper()
	ctx := rhir.NewContext()

	proto, err := ctx.NewProtocol("p", rhir.Ref{}, rhir.Ref{})
	require.NoError(t, err)

	entryA := ctx.NewBlock()
	otherA := ctx.NewBlock()
	cfA := ctx.NewControlFlow()
	require.NoError(t, cfA.AddUnconditionalEdge(entryA.Ref(), otherA.Ref()))
	procA, err := ctx.NewProcess(proto.Ref(), entryA.Ref(), cfA.Ref())
	require.NoError(t, err)

	instA, err := ctx.NewInstance("a", proto.Ref())
	require.NoError(t, err)
	instB, err := ctx.NewInstance("b", proto.Ref())
	require.NoError(t, err)

	module, err := ctx.NewModule([]rhir.Ref{procA.Ref()}, []rhir.Ref{instA.Ref(), instB.Ref()})
	require.NoError(t, err)

	return ctx, module, instA.Ref(), instB.Ref(), entryA.Ref(), otherA.Ref()
}

func TestExclusion_ExcludesOnlyNonCooccurringBlocks(t *testing.T) {
	ctx, module, instA, instB, entry, other := buildTwoInstanceModule(t)

	inc := mutex.NewInclusion()
	inc.AddCooccurring(instA, entry, instB, entry)

	exclusion := mutex.NewExclusion(ctx, inc)
	pairs, err := exclusion.MutuallyExclusiveBlocks(module, instA, entry, instB)
	require.NoError(t, err)

	assert.NotContains(t, pairs, entry, "entry co-occurred with instA's entry so it must not be mutually exclusive")
	assert.Contains(t, pairs, other)
}

func TestExclusion_AllMutuallyExclusiveBlocksSkipsSelf(t *testing.T) {
	ctx, module, instA, _, entry, _ := buildTwoInstanceModule(t)

	inc := mutex.NewInclusion()
	exclusion := mutex.NewExclusion(ctx, inc)
	pairs, err := exclusion.AllMutuallyExclusiveBlocks(module, instA, entry)
	require.NoError(t, err)

	for _, pair := range pairs {
		assert.NotEqual(t, instA, pair.Instance)
	}
}
