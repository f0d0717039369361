package executable_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/codegen/executable"
)

func buildModule() *cfir.Module {
	module := cfir.NewModule()
	module.Interface.DeclareInstance("worker")
	module.Interface.DeclareExternalAction("doWork")

	rollback := cfir.LabelID(0)
	body := &cfir.Sequence{Children: []cfir.Node{
		cfir.Synchronization{Lock: []cfir.MutexID{0}, Rollback: &rollback},
		cfir.Statement{Action: "doWork"},
		cfir.Synchronization{Unlock: []cfir.MutexID{0}},
		cfir.Return{},
	}}
	module.AddProcedure("worker", body)
	module.NewMutex()
	return module
}

func TestWrite_EmitsTrylockAndThreadScaffolding(t *testing.T) {
	module := buildModule()
	var buf strings.Builder
	require.NoError(t, executable.Write(&buf, module))
	out := buf.String()

	assert.Contains(t, out, "pthread_mutex_t mtx0;")
	assert.Contains(t, out, "pthread_create(&worker_process, NULL, worker, NULL);")
	assert.Contains(t, out, "doWork(RH_PROC_WORKER, &payload);")
	assert.Contains(t, out, "pthread_mutex_trylock(&mtx0)")
}
