// Package goblint implements spec.md §4.5's analyzer backends —
// "goblint" (userspace) and "goblint-kernel" — which share one harness
// shape behind a `__harness_*` macro layer and use plain lock/unlock
// instead of trylock, since the tools consuming this output
// over-approximate scheduling rather than executing it. Grounded on
// codegen/goblint/lbe.py.
package goblint

import (
	"io"
	"strings"

	"github.com/viant/racegen/cfir"
	"github.com/viant/racegen/codegen"
)

// Write lowers module to a complete C translation unit. userspace selects
// the pthread-backed macro definitions (encoding "goblint"); false
// selects the extern kernel-primitive declarations (encoding
// "goblint-kernel").
func Write(w io.Writer, module *cfir.Module, userspace bool) error {
	cw := codegen.NewWriter(w)
	codegen.WriteProgram(cw, module, hooks{userspace: userspace})
	return cw.Flush()
}

type hooks struct{ userspace bool }

func (h hooks) Preamble(w *codegen.Writer) {
	if h.userspace {
		w.Line("#include <stdlib.h>")
		w.Line("#include <pthread.h>")
		w.Line("")
		w.Line("#define __harness_NULL NULL")
		w.Line("#define __harness_EXIT_SUCCESS EXIT_SUCCESS")
		w.Line("")
		w.Line("typedef pthread_t __harness_thread_t;")
		w.Line("typedef pthread_mutex_t __harness_mutex_t;")
		w.Line("")
		w.Line("#define __harness_thread_create(_thread, _attr, _entry, _param) pthread_create((_thread), (_attr), (_entry), (_param))")
		w.Line("#define __harness_thread_join(_thread, _result) pthread_join((_thread), (_result))")
		w.Line("#define __harness_mutex_init(_mutex, _attr) pthread_mutex_init((_mutex), (_attr))")
		w.Line("#define __harness_mutex_lock(_mutex) pthread_mutex_lock((_mutex))")
		w.Line("#define __harness_mutex_unlock(_mutex) pthread_mutex_unlock((_mutex))")
		w.Line("#define __harness_rand() random()")
		w.Line("")
		return
	}
	w.Line("#define __harness_NULL ((void *) 0)")
	w.Line("#define __harness_EXIT_SUCCESS 0")
	w.Line("")
	w.Line("typedef unsigned int __harness_thread_t;")
	w.Line("typedef unsigned int __harness_mutex_t;")
	w.Line("")
	w.Line("extern void __harness_thread_create(__harness_thread_t *, void *, void *(*)(void *), void *);")
	w.Line("extern void __harness_thread_join(__harness_thread_t, void **);")
	w.Line("extern void __harness_mutex_init(__harness_mutex_t *, void *);")
	w.Line("extern void __harness_mutex_lock(__harness_mutex_t *);")
	w.Line("extern void __harness_mutex_unlock(__harness_mutex_t *);")
	w.Line("extern int __harness_rand(void);")
	w.Line("")
}

func (hooks) MutexDecl(w *codegen.Writer, id cfir.MutexID) {
	w.Linef("static __harness_mutex_t mtx%d;", id)
}

func (hooks) BarrierDecl(w *codegen.Writer, procCount int) {
	w.Line("static _Atomic unsigned int init_barrier = 0;")
	w.Linef("#define INIT_BARRIER_CAPACITY %d", procCount)
	w.Line("")
}

func (hooks) MutexInit(w *codegen.Writer, id cfir.MutexID) {
	w.Linef("__harness_mutex_init(&mtx%d, __harness_NULL);", id)
}

func (hooks) BarrierInit(*codegen.Writer, int) {}

func (hooks) VoidArgExpr() string { return "__harness_NULL" }

func (hooks) ThreadTypeDecl(w *codegen.Writer, procedureName string) {
	w.Linef("__harness_thread_t %s_process;", procedureName)
}

func (hooks) ThreadCreate(w *codegen.Writer, procedureName string) {
	w.Linef("__harness_thread_create(&%s_process, __harness_NULL, %s, __harness_NULL);", procedureName, procedureName)
}

func (hooks) ThreadJoin(w *codegen.Writer, procedureName string) {
	w.Linef("__harness_thread_join(%s_process, __harness_NULL);", procedureName)
}

func (hooks) ExitSuccess(w *codegen.Writer) { w.Line("return __harness_EXIT_SUCCESS;") }

func (hooks) Statement(w *codegen.Writer, procedureName, action string) {
	w.Linef("%s(RH_PROC_%s, &payload);", action, strings.ToUpper(procedureName))
}

func (hooks) Return(w *codegen.Writer) { w.Line("return __harness_NULL;") }

func (hooks) InitBarrier(w *codegen.Writer) {
	w.Line("init_barrier++;")
	w.Line("while (init_barrier < INIT_BARRIER_CAPACITY) {}")
}

func (hooks) RandExpr() string { return "__harness_rand()" }

func (hooks) Synchronization(w *codegen.Writer, sync cfir.Synchronization) {
	for _, lock := range sync.Lock {
		w.Linef("__harness_mutex_lock(&mtx%d);", lock)
	}
	for i := len(sync.Unlock) - 1; i >= 0; i-- {
		w.Linef("__harness_mutex_unlock(&mtx%d);", sync.Unlock[i])
	}
}
