package serialize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/racegen/stir"
	"github.com/viant/racegen/stir/serialize"
)

func TestModule_EmitsEveryInstructionKindIncludingDoInstr(t *testing.T) {
	module := &stir.Module{}
	entry := module.NewNode()
	next := module.NewNode()
	nodeSlot := module.State.AddNodeSlot(entry)
	intSlot := module.State.AddIntSlot(0)

	transition := module.AddTransition(nodeSlot, entry, next, false)
	transition.AddGuard(stir.IntGuard{Slot: intSlot, Value: 1})
	transition.AddInstruction(stir.SetIntInstr{Slot: intSlot, Value: 0})
	transition.AddInstruction(stir.DoInstr{Action: "notify"})

	var buf strings.Builder
	require.NoError(t, serialize.Module(&buf, module))
	out := buf.String()

	assert.Contains(t, out, "state 2")
	assert.Contains(t, out, "transitions 1")
	assert.Contains(t, out, "int_guard")
	assert.Contains(t, out, "set_int_instr")
	assert.Contains(t, out, "do_instr notify", "do_instr lines must be emitted, unlike the source system's serializer")
}
