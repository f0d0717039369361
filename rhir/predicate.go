package rhir

// PredicateOp is the condition guarding a conditional control-flow edge.
// Concrete kinds: Nondet, SetEmpty, SetHas, Conjunction, Receival.
type PredicateOp interface {
	predicateOp()
}

// Nondet is a condition that is true or false nondeterministically — the
// model checker explores both branches.
type Nondet struct{}

func (Nondet) predicateOp() {}

// SetEmpty holds when TargetSet currently has no elements.
type SetEmpty struct {
	TargetSet Ref
}

func (SetEmpty) predicateOp() {}

// SetHas holds when Value is a current element of TargetSet.
type SetHas struct {
	TargetSet Ref
	Value     Ref
}

func (SetHas) predicateOp() {}

// Conjunction holds when every predicate in Conjuncts holds.
type Conjunction struct {
	Conjuncts []Ref
}

func (Conjunction) predicateOp() {}

// Receival holds when every message in Messages has arrived. Each
// message may legally arrive from more than one sending instance; the
// STIR translator enumerates one binding per consistent assignment of
// senders (see stir/translate).
type Receival struct {
	Messages []Ref
}

func (Receival) predicateOp() {}
