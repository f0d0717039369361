package stirprog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/codegen/stirprog"
	"github.com/viant/racegen/stir"
)

func TestWrite_EmitsCASLoopPerTransition(t *testing.T) {
	var module stir.Module
	nodeSlot := module.State.AddNodeSlot(module.NewNode())
	n0 := stir.NodeID(0)
	n1 := module.NewNode()

	transition := module.AddTransition(nodeSlot, n0, n1, false)
	transition.AddInstruction(stir.DoInstr{Action: "notify"})

	var buf strings.Builder
	require.NoError(t, stirprog.Write(&buf, &module))
	out := buf.String()

	assert.Contains(t, out, "void *transition0(void *arg)")
	assert.Contains(t, out, "atomic_compare_exchange_strong(&state, &current_state, next_state);")
	assert.Contains(t, out, `printf("notify\n");`)
	assert.Contains(t, out, "pthread_create(&transition_threads[0], NULL, transition0, NULL);")
}
