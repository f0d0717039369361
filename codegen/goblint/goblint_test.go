package goblint_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/codegen/goblint"
)

func buildModule() *cfir.Module {
	module := cfir.NewModule()
	module.Interface.DeclareInstance("worker")
	module.Interface.DeclareExternalAction("doWork")

	body := &cfir.Sequence{Children: []cfir.Node{
		cfir.Synchronization{Lock: []cfir.MutexID{0}},
		cfir.Statement{Action: "doWork"},
		cfir.Synchronization{Unlock: []cfir.MutexID{0}},
		cfir.Return{},
	}}
	module.AddProcedure("worker", body)
	module.NewMutex()
	return module
}

func TestWrite_UserspaceUsesPthreadMacros(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, goblint.Write(&buf, buildModule(), true))
	out := buf.String()

	assert.Contains(t, out, "typedef pthread_mutex_t __harness_mutex_t;")
	assert.Contains(t, out, "__harness_mutex_lock(&mtx0);")
	assert.NotContains(t, out, "trylock")
}

func TestWrite_KernelUsesExternPrimitives(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, goblint.Write(&buf, buildModule(), false))
	out := buf.String()

	assert.Contains(t, out, "extern void __harness_mutex_lock(__harness_mutex_t *);")
	assert.NotContains(t, out, "pthread")
}
