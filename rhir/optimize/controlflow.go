// Package optimize eliminates empty effect blocks from a process's
// control-flow graph, to fixpoint.
package optimize

import "github.com/viant/racegen/rhir"

// Block eliminates empty blocks reachable from entry within cf, rewiring
// their predecessors directly to their single successor. The entry block
// is never removed, even when empty, so callers always have a stable
// starting point.
//
// Five predecessor/successor shapes are handled; a sixth — a
// conditionally-reached empty block with no outgoing edge at all — is
// left untouched, since neither branch of the incoming edge can be
// safely rewritten to "fall through" without a target.
func Block(ctx *rhir.Context, cf *rhir.ControlFlow, entry *rhir.Block) {
	for {
		fixpoint := true
		visited := make(map[rhir.Ref]bool)
		queue := []rhir.Ref{entry.Ref()}

		for len(queue) > 0 {
			blockRef := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			if visited[blockRef] {
				continue
			}
			visited[blockRef] = true

			block, err := ctx.ToBlock(blockRef)
			if err != nil {
				continue
			}

			outEdge := cf.EdgeFrom(blockRef)
			if outEdge != nil {
				queue = append(queue, outEdge.Successors()...)
			}

			dropBlock := false
			keepBlock := false
			if block.IsEmpty() {
				for _, sourceRef := range cf.EdgesTo(blockRef) {
					inEdge := cf.EdgeFrom(sourceRef)
					switch in := inEdge.(type) {
					case rhir.UnconditionalEdge:
						switch out := outEdge.(type) {
						case nil:
							cf.DropEdge(sourceRef)
							dropBlock = true
						case rhir.UnconditionalEdge:
							cf.DropEdge(sourceRef)
							_ = cf.AddUnconditionalEdge(sourceRef, out.Target)
							dropBlock = true
						case rhir.ConditionalEdge:
							cf.DropEdge(sourceRef)
							_ = cf.AddConditionalEdge(sourceRef, out.Target, out.Alternative, out.Condition)
							dropBlock = true
						}
					case rhir.ConditionalEdge:
						if out, ok := outEdge.(rhir.UnconditionalEdge); ok {
							if in.Target == blockRef {
								cf.DropEdge(sourceRef)
								_ = cf.AddConditionalEdge(sourceRef, out.Target, in.Alternative, in.Condition)
								dropBlock = true
							} else if in.Alternative == blockRef {
								cf.DropEdge(sourceRef)
								_ = cf.AddConditionalEdge(sourceRef, in.Target, out.Target, in.Condition)
								dropBlock = true
							}
						} else {
							keepBlock = true
						}
						// a conditional predecessor feeding into an empty
						// block with no outgoing edge, or one with a
						// conditional outgoing edge, is left in place.
					}
				}
			}

			if dropBlock {
				fixpoint = false
				if blockRef != entry.Ref() && !keepBlock {
					cf.DropEdge(blockRef)
					ctx.Drop(blockRef)
				}
			}
		}

		if fixpoint {
			return
		}
	}
}

// Module runs Block over every process in module.
func Module(ctx *rhir.Context, module *rhir.Module) error {
	for _, procRef := range module.Processes {
		proc, err := ctx.ToProcess(procRef)
		if err != nil {
			return err
		}
		cf, err := ctx.ToControlFlow(proc.ControlFlow)
		if err != nil {
			return err
		}
		entry, err := ctx.ToBlock(proc.EntryBlock)
		if err != nil {
			return err
		}
		Block(ctx, cf, entry)
	}
	return nil
}
