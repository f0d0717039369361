// Package executable implements spec.md §4.5's "executable" C backend:
// trylock-with-rollback synchronization over a pthread-per-instance
// harness, grounded on codegen/executable/lbe.py.
package executable

import (
	"io"
	"strings"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/codegen"
)

// Write lowers module to a complete, compilable C translation unit.
func Write(w io.Writer, module *cfir.Module) error {
	cw := codegen.NewWriter(w)
	codegen.WriteProgram(cw, module, hooks{})
	return cw.Flush()
}

type hooks struct{}

func (hooks) Preamble(w *codegen.Writer) {
	w.Line("#include <stdlib.h>")
	w.Line("#include <stdio.h>")
	w.Line("#include <pthread.h>")
	w.Line("")
}

func (hooks) MutexDecl(w *codegen.Writer, id cfir.MutexID) {
	w.Linef("static pthread_mutex_t mtx%d;", id)
}

func (hooks) BarrierDecl(w *codegen.Writer, _ int) {
	w.Line("static pthread_barrier_t init_barrier;")
	w.Line("")
}

func (hooks) MutexInit(w *codegen.Writer, id cfir.MutexID) {
	w.Linef("pthread_mutex_init(&mtx%d, NULL);", id)
}

func (hooks) BarrierInit(w *codegen.Writer, procCount int) {
	w.Linef("pthread_barrier_init(&init_barrier, NULL, %d);", procCount)
	w.Line("")
}

func (hooks) VoidArgExpr() string { return "NULL" }

func (hooks) ThreadTypeDecl(w *codegen.Writer, procedureName string) {
	w.Linef("pthread_t %s_process;", procedureName)
}

func (hooks) ThreadCreate(w *codegen.Writer, procedureName string) {
	w.Linef("pthread_create(&%s_process, NULL, %s, NULL);", procedureName, procedureName)
}

func (hooks) ThreadJoin(w *codegen.Writer, procedureName string) {
	w.Linef("pthread_join(%s_process, NULL);", procedureName)
}

func (hooks) ExitSuccess(w *codegen.Writer) { w.Line("return EXIT_SUCCESS;") }

func (hooks) Statement(w *codegen.Writer, procedureName, action string) {
	w.Linef("%s(RH_PROC_%s, &payload);", action, strings.ToUpper(procedureName))
}

func (hooks) Return(w *codegen.Writer) { w.Line("return NULL;") }

func (hooks) InitBarrier(w *codegen.Writer) { w.Line("pthread_barrier_wait(&init_barrier);") }

func (hooks) RandExpr() string { return "rand()" }

// Synchronization emits a trylock chain, rolling back to sync.Rollback on
// contention, or retrying the whole acquisition in a for(;;) loop when no
// rollback label is available (the entry prologue has none to retry to
// but needs one regardless, per spec.md's "why trylock-with-rollback").
func (hooks) Synchronization(w *codegen.Writer, sync cfir.Synchronization) {
	if len(sync.Lock) > 0 {
		if sync.Rollback == nil {
			w.Line("for (;;) {")
			w.Indent()
		}
		for idx, lock := range sync.Lock {
			w.Linef("if (pthread_mutex_trylock(&mtx%d)) {", lock)
			w.Indent()
			for j := idx - 1; j >= 0; j-- {
				w.Linef("pthread_mutex_unlock(&mtx%d);", sync.Lock[j])
			}
			if sync.Rollback == nil {
				w.Line("continue;")
			} else {
				w.Linef("goto label%d;", *sync.Rollback)
			}
			w.Dedent()
			w.Line("}")
		}
		if sync.Rollback == nil {
			w.Line("break;")
			w.Dedent()
			w.Line("}")
		}
	}
	for i := len(sync.Unlock) - 1; i >= 0; i-- {
		w.Linef("pthread_mutex_unlock(&mtx%d);", sync.Unlock[i])
	}
}
