package codegen

import "github.com/viant/racegen/cfir"

// NodeHooks supplies the backend-specific tokens the CFIR walk needs.
// The walk order and indentation are identical across every C backend
// (spec.md §4.5's shared per-node lowering table); only the literal C
// text for a Statement call, a Return, a barrier wait, a randomness
// expression, and a Synchronization differ between them.
type NodeHooks interface {
	Statement(w *Writer, procedureName, action string)
	Return(w *Writer)
	InitBarrier(w *Writer)
	Synchronization(w *Writer, sync cfir.Synchronization)
	RandExpr() string
}

// WalkNode lowers node (and, recursively, its children) for procedureName
// using hooks. topLevel suppresses the brace pair a nested Sequence would
// otherwise get, matching a procedure body's outermost sequence.
func WalkNode(w *Writer, hooks NodeHooks, procedureName string, node cfir.Node, topLevel bool) {
	switch n := node.(type) {
	case cfir.Statement:
		hooks.Statement(w, procedureName, n.Action)

	case *cfir.Sequence:
		if !topLevel {
			w.Line("{")
			w.Indent()
		}
		for _, child := range n.Children {
			WalkNode(w, hooks, procedureName, child, false)
		}
		if !topLevel {
			w.Dedent()
			w.Line("}")
		}

	case cfir.Labelled:
		w.NoNewline()
		w.Linef("label%d: ", n.Label)
		WalkNode(w, hooks, procedureName, n.Body, false)

	case cfir.Goto:
		w.Linef("goto label%d;", n.Label)

	case cfir.Branch:
		walkBranch(w, hooks, procedureName, n)

	case cfir.Return:
		hooks.Return(w)

	case cfir.Synchronization:
		hooks.Synchronization(w, n)

	case cfir.InitBarrier:
		hooks.InitBarrier(w)
	}
}

func walkBranch(w *Writer, hooks NodeHooks, procedureName string, n cfir.Branch) {
	total := len(n.Children)
	for idx, child := range n.Children {
		switch {
		case idx == 0 && total > 1:
			w.NoNewline()
			w.Linef("if (%s %% %d == 0) ", hooks.RandExpr(), total-idx)
		case idx == 0:
			// single-branch: nothing guards it
		case idx+1 < total:
			w.NoNewline()
			w.Linef("else if (%s %% %d == 0) ", hooks.RandExpr(), total-idx)
		default:
			w.NoNewline()
			w.Line("else ")
		}
		WalkNode(w, hooks, procedureName, child, false)
	}
}
