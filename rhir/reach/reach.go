// Package reach computes block reachability and dominance over a
// process's control-flow graph.
package reach

import (
	"github.com/viant/racegen/rhir"
)

// BlockRefs returns the set of blocks reachable from entry. DFS via an
// explicit stack, mirroring the worklist shape used throughout this
// module's control-flow passes.
func BlockRefs(cf *rhir.ControlFlow, entry rhir.Ref) map[rhir.Ref]bool {
	visited := make(map[rhir.Ref]bool)
	stack := []rhir.Ref{entry}
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[ref] {
			continue
		}
		visited[ref] = true
		if edge := cf.EdgeFrom(ref); edge != nil {
			stack = append(stack, edge.Successors()...)
		}
	}
	return visited
}
