package rhir

// Edge is a control-flow edge leaving a block. Concrete kinds:
// UnconditionalEdge and ConditionalEdge.
type Edge interface {
	// Successors lists the blocks this edge can transfer control to, in
	// a stable order (target first, then alternative for conditionals).
	Successors() []Ref
}

// UnconditionalEdge always transfers to Target.
type UnconditionalEdge struct {
	Target Ref
}

func (e UnconditionalEdge) Successors() []Ref { return []Ref{e.Target} }

// ConditionalEdge transfers to Target when Condition holds, Alternative
// otherwise.
type ConditionalEdge struct {
	Target      Ref
	Alternative Ref
	Condition   Ref
}

func (e ConditionalEdge) Successors() []Ref { return []Ref{e.Target, e.Alternative} }

// ControlFlow owns every edge leaving the blocks of one Process. Edges
// are stored here — never on Block itself — so that cyclic graphs never
// need a block to hold a reference to a successor it was built before.
type ControlFlow struct {
	ref          Ref
	edges        map[Ref]Edge
	reverseEdges map[Ref]map[Ref]struct{}
}

func (cf *ControlFlow) Ref() Ref { return cf.ref }

// AddUnconditionalEdge records source -> target. Fails if source already
// has an outgoing edge.
func (cf *ControlFlow) AddUnconditionalEdge(source, target Ref) error {
	if _, ok := cf.edges[source]; ok {
		return newError(KindStructural, "control flow edge for %s already defined", source)
	}
	cf.edges[source] = UnconditionalEdge{Target: target}
	cf.registerReverse(source, target)
	return nil
}

// AddConditionalEdge records source -> target|alternative guarded by
// condition. Fails if source already has an outgoing edge.
func (cf *ControlFlow) AddConditionalEdge(source, target, alternative, condition Ref) error {
	if _, ok := cf.edges[source]; ok {
		return newError(KindStructural, "control flow edge for %s already defined", source)
	}
	cf.edges[source] = ConditionalEdge{Target: target, Alternative: alternative, Condition: condition}
	cf.registerReverse(source, target)
	cf.registerReverse(source, alternative)
	return nil
}

// DropEdge removes the outgoing edge from source, updating reverse
// adjacency. No-op if source has no outgoing edge.
func (cf *ControlFlow) DropEdge(source Ref) {
	edge, ok := cf.edges[source]
	if !ok {
		return
	}
	for _, succ := range edge.Successors() {
		delete(cf.reverseEdges[succ], source)
	}
	delete(cf.edges, source)
}

// EdgeFrom returns the outgoing edge of source, or nil if none.
func (cf *ControlFlow) EdgeFrom(source Ref) Edge {
	return cf.edges[source]
}

// EdgesTo returns every block with an outgoing edge that targets target.
func (cf *ControlFlow) EdgesTo(target Ref) []Ref {
	srcs := cf.reverseEdges[target]
	out := make([]Ref, 0, len(srcs))
	for src := range srcs {
		out = append(out, src)
	}
	return out
}

// Edges returns every edge in the graph, in no particular order.
func (cf *ControlFlow) Edges() []Edge {
	out := make([]Edge, 0, len(cf.edges))
	for _, e := range cf.edges {
		out = append(out, e)
	}
	return out
}

// EdgeSources returns every block that currently has an outgoing edge.
func (cf *ControlFlow) EdgeSources() []Ref {
	out := make([]Ref, 0, len(cf.edges))
	for src := range cf.edges {
		out = append(out, src)
	}
	return out
}

func (cf *ControlFlow) registerReverse(source, target Ref) {
	if cf.reverseEdges[target] == nil {
		cf.reverseEdges[target] = make(map[Ref]struct{})
	}
	cf.reverseEdges[target][source] = struct{}{}
}
