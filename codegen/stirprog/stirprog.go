// Package stirprog implements spec.md §4.5's "executable-stir" encoding:
// a direct STIR-to-C backend that lowers the symbolic state-transition
// model itself to C, bypassing CFIR entirely — one OS thread per
// transition, each spinning on a lock-free compare-and-swap of the whole
// state vector rather than the lockset-diffed CFIR harness. Grounded on
// codegen/state_transition/codegen.py.
package stirprog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viant/racegen/codegen"
	"github.com/viant/racegen/stir"
)

// Write lowers module to a complete C translation unit.
func Write(w io.Writer, module *stir.Module) error {
	cw := codegen.NewWriter(w)

	cw.Line("#include <stdlib.h>")
	cw.Line("#include <stdio.h>")
	cw.Line("#include <pthread.h>")
	cw.Line("#include <stdatomic.h>")
	cw.Line("")

	writeState(cw, &module.State)

	for _, t := range module.Transitions {
		writeTransition(cw, t)
	}

	n := len(module.Transitions)
	cw.Line("int main(int argc, const char **argv) {")
	cw.Indent()
	cw.Line("(void) argc;")
	cw.Line("(void) argv;")
	cw.Line("")
	cw.Linef("pthread_t transition_threads[%d];", n)
	for i := 0; i < n; i++ {
		cw.Linef("pthread_create(&transition_threads[%d], NULL, transition%d, NULL);", i, i)
	}
	for i := 0; i < n; i++ {
		cw.Linef("pthread_join(transition_threads[%d], NULL);", i)
	}
	cw.Line("return EXIT_SUCCESS;")
	cw.Dedent()
	cw.Line("}")

	return cw.Flush()
}

func writeState(w *codegen.Writer, state *stir.State) {
	w.Line("_Atomic struct State {")
	w.Indent()
	w.Linef("int slots[%d];", state.Len())
	w.Dedent()
	w.Line("} state = (struct State) {")
	w.Indent()
	slots := state.Slots()
	for idx, slot := range slots {
		w.NoNewline()
		switch s := slot.(type) {
		case stir.IntSlot:
			w.Line(strconv.Itoa(s.InitialValue))
		case stir.NodeSlot:
			w.Line(strconv.Itoa(int(s.InitialValue)))
		}
		if idx+1 < len(slots) {
			w.Line(",")
		} else {
			w.Line("")
		}
	}
	w.Dedent()
	w.Line("};")
	w.Line("")
}

func writeTransition(w *codegen.Writer, t *stir.Transition) {
	w.Linef("void *transition%d(void *arg) {", t.ID)
	w.Indent()
	w.Line("(void) arg;")
	w.Line("for (;;) {")
	w.Indent()
	w.Line("struct State current_state = state;")
	w.Line("struct State next_state = current_state;")

	var guardExprs []string
	for _, g := range t.Guards {
		if ig, ok := g.(stir.IntGuard); ok {
			guardExprs = append(guardExprs, fmt.Sprintf("current_state.slots[%d] == %d", ig.Slot, ig.Value))
		}
	}
	conditions := []string{fmt.Sprintf("current_state.slots[%d] == %d", t.NodeSlot, t.SourceNode)}
	if len(guardExprs) > 0 {
		joined := strings.Join(guardExprs, " && ")
		if t.InvertGuard {
			conditions = append(conditions, fmt.Sprintf("!(%s)", joined))
		} else {
			conditions = append(conditions, joined)
		}
	}
	w.Linef("if (!(%s)) continue;", strings.Join(conditions, " && "))

	w.Linef("next_state.slots[%d] = %d;", t.NodeSlot, t.TargetNode)

	var doActions []string
	for _, instr := range t.Instructions {
		switch in := instr.(type) {
		case stir.SetIntInstr:
			w.Linef("next_state.slots[%d] = %d;", in.Slot, in.Value)
		case stir.DoInstr:
			doActions = append(doActions, in.Action)
		}
	}

	w.Line("atomic_compare_exchange_strong(&state, &current_state, next_state);")
	for _, action := range doActions {
		w.Linef("printf(\"%s\\n\");", action)
	}

	w.Dedent()
	w.Line("}")
	w.Line("return NULL;")
	w.Dedent()
	w.Line("}")
	w.Line("")
}
