package cfir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/mutex"
	"github.com/viant/racegen/rhir"
)

func TestConstructModule_LocksSharedBlockAgainstExclusiveCounterpart(t *testing.T) {
	ctx := rhir.NewContext()
	proto, err := ctx.NewProtocol("p", rhir.Ref{}, rhir.Ref{})
	require.NoError(t, err)
	protoB, err := ctx.NewProtocol("q", rhir.Ref{}, rhir.Ref{})
	require.NoError(t, err)

	entryA := ctx.NewBlock()
	entryA.Ops = append(entryA.Ops, rhir.ExternalAction{Action: "a_critical"})
	cfA := ctx.NewControlFlow()
	procA, err := ctx.NewProcess(proto.Ref(), entryA.Ref(), cfA.Ref())
	require.NoError(t, err)

	entryB := ctx.NewBlock()
	entryB.Ops = append(entryB.Ops, rhir.ExternalAction{Action: "b_critical"})
	cfB := ctx.NewControlFlow()
	procB, err := ctx.NewProcess(protoB.Ref(), entryB.Ref(), cfB.Ref())
	require.NoError(t, err)

	instA, err := ctx.NewInstance("a", proto.Ref())
	require.NoError(t, err)
	instB, err := ctx.NewInstance("b", protoB.Ref())
	require.NoError(t, err)

	module, err := ctx.NewModule([]rhir.Ref{procA.Ref(), procB.Ref()}, []rhir.Ref{instA.Ref(), instB.Ref()})
	require.NoError(t, err)

	inclusion := mutex.NewInclusion() // no observed co-occurrence: every cross-instance block pair is exclusive
	exclusion := mutex.NewExclusion(ctx, inclusion)
	constructor := cfir.NewConstructor(ctx, exclusion)

	cfModule, err := constructor.ConstructModule(module)
	require.NoError(t, err)

	assert.Len(t, cfModule.Mutexes(), 1, "the single cross-instance exclusive pair should allocate exactly one mutex")
	assert.ElementsMatch(t, []string{"a", "b"}, cfModule.ProcedureNames())
	assert.ElementsMatch(t, []string{"a_critical", "b_critical"}, cfModule.Interface.ExternalActions())
}
