package codegen

import "github.com/viant/racegen/cfir"

// ProgramHooks supplies every backend-specific token the shared
// executable/goblint program skeleton needs: preamble text, mutex and
// barrier declaration/initialization, thread lifecycle calls, and the
// per-node lowering rules of NodeHooks. Grounded on
// codegen/executable/lbe.py and codegen/goblint/lbe.py, which share this
// exact skeleton almost verbatim, differing only in these tokens.
type ProgramHooks interface {
	NodeHooks

	Preamble(w *Writer)
	MutexDecl(w *Writer, id cfir.MutexID)
	BarrierDecl(w *Writer, procCount int)
	MutexInit(w *Writer, id cfir.MutexID)
	BarrierInit(w *Writer, procCount int)
	VoidArgExpr() string
	ThreadTypeDecl(w *Writer, procedureName string)
	ThreadCreate(w *Writer, procedureName string)
	ThreadJoin(w *Writer, procedureName string)
	ExitSuccess(w *Writer)
}

// WriteProgram lowers module as a complete C translation unit: preamble,
// mutex/barrier declarations, one procedure per instance, then main()
// initializing state and joining every instance thread.
func WriteProgram(w *Writer, module *cfir.Module, hooks ProgramHooks) {
	hooks.Preamble(w)

	hasMutexes := false
	for _, id := range module.Mutexes() {
		hooks.MutexDecl(w, id)
		hasMutexes = true
	}
	if hasMutexes {
		w.Line("")
	}

	names := module.ProcedureNames()
	hooks.BarrierDecl(w, len(names))

	for _, name := range names {
		w.Linef("static void *%s(void *arg) {", name)
		w.Indent()
		w.Line("(void) arg;")
		w.Linef("void *payload = %s;", hooks.VoidArgExpr())
		w.Line("")
		WalkNode(w, hooks, name, module.Procedures[name], true)
		hooks.Return(w)
		w.Dedent()
		w.Line("}")
		w.Line("")
	}

	w.Line("int main(int argv, const char **argc) {")
	w.Indent()
	w.Line("(void) argv;")
	w.Line("(void) argc;")
	w.Line("")

	hasMutexes = false
	for _, id := range module.Mutexes() {
		hooks.MutexInit(w, id)
		hasMutexes = true
	}
	if hasMutexes {
		w.Line("")
	}

	hooks.BarrierInit(w, len(names))

	if len(names) > 0 {
		for _, name := range names {
			hooks.ThreadTypeDecl(w, name)
		}
		w.Line("")
		for _, name := range names {
			hooks.ThreadCreate(w, name)
		}
		w.Line("")
		for _, name := range names {
			hooks.ThreadJoin(w, name)
		}
	}

	hooks.ExitSuccess(w)
	w.Dedent()
	w.Line("}")
}
