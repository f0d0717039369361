// Package mutex ingests the external model checker's reachable-state
// co-occurrence relation and turns it into a mutual-exclusion query: for
// a given (instance, block), which other (instance, block) pairs are
// never reachable at the same time and must therefore share a lock.
package mutex

import (
	"sort"

	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/rhir/reach"
)

// pairKey identifies one (instance, block) state.
type pairKey struct {
	Instance rhir.Ref
	Block    rhir.Ref
}

func less(a, b pairKey) bool {
	if a.Instance != b.Instance {
		return a.Instance.Less(b.Instance)
	}
	return a.Block.Less(b.Block)
}

// canonPair canonicalizes an unordered pair of states by sorting the two
// endpoints, so insertion order never affects membership.
type canonPair struct {
	Min, Max pairKey
}

func canonicalize(a, b pairKey) canonPair {
	if less(a, b) {
		return canonPair{Min: a, Max: b}
	}
	return canonPair{Min: b, Max: a}
}

// Inclusion records every pair of (instance,block) states the external
// checker observed co-occurring in at least one reachable global state.
type Inclusion struct {
	pairs map[canonPair]bool
}

// NewInclusion returns an empty mutual-inclusion relation.
func NewInclusion() *Inclusion {
	return &Inclusion{pairs: make(map[canonPair]bool)}
}

// AddCooccurring records that (instance1,block1) and (instance2,block2)
// were observed together in a reachable state.
func (m *Inclusion) AddCooccurring(instance1, block1, instance2, block2 rhir.Ref) {
	p1 := pairKey{Instance: instance1, Block: block1}
	p2 := pairKey{Instance: instance2, Block: block2}
	m.pairs[canonicalize(p1, p2)] = true
}

// IsCooccurring reports whether the two states were ever recorded
// together.
func (m *Inclusion) IsCooccurring(instance1, block1, instance2, block2 rhir.Ref) bool {
	p1 := pairKey{Instance: instance1, Block: block1}
	p2 := pairKey{Instance: instance2, Block: block2}
	return m.pairs[canonicalize(p1, p2)]
}

// Len reports the number of distinct co-occurring pairs recorded.
func (m *Inclusion) Len() int { return len(m.pairs) }

// Exclusion answers mutual-exclusion queries over the complement of an
// Inclusion relation, restricted to blocks reachable in each instance's
// process.
type Exclusion struct {
	ctx       *rhir.Context
	inclusion *Inclusion
}

// NewExclusion builds an Exclusion view over inclusion.
func NewExclusion(ctx *rhir.Context, inclusion *Inclusion) *Exclusion {
	return &Exclusion{ctx: ctx, inclusion: inclusion}
}

// MutuallyExclusiveBlocks yields every block reachable in instance2's
// process that never co-occurs with (instance1,block1).
func (e *Exclusion) MutuallyExclusiveBlocks(module *rhir.Module, instance1 rhir.Ref, block1 rhir.Ref, instance2 rhir.Ref) ([]rhir.Ref, error) {
	inst2, err := e.ctx.ToInstance(instance2)
	if err != nil {
		return nil, err
	}
	procRef, ok := module.FindProcessFor(e.ctx, inst2.Protocol)
	if !ok {
		return nil, &rhir.CompileError{Kind: rhir.KindResolution, Message: "unable to find process for instance " + instance2.String()}
	}
	proc, err := e.ctx.ToProcess(procRef)
	if err != nil {
		return nil, err
	}
	cf, err := e.ctx.ToControlFlow(proc.ControlFlow)
	if err != nil {
		return nil, err
	}

	var out []rhir.Ref
	for block2 := range reach.BlockRefs(cf, proc.EntryBlock) {
		if !e.inclusion.IsCooccurring(instance1, block1, instance2, block2) {
			out = append(out, block2)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out, nil
}

// ExclusivePair pairs a mutually-exclusive block with the instance it
// belongs to.
type ExclusivePair struct {
	Instance rhir.Ref
	Block    rhir.Ref
}

// AllMutuallyExclusiveBlocks yields every (other instance, other block)
// pair that is never reachable at the same time as (instance,block),
// across every instance in module other than instance itself.
func (e *Exclusion) AllMutuallyExclusiveBlocks(module *rhir.Module, instance, block rhir.Ref) ([]ExclusivePair, error) {
	instances := append([]rhir.Ref(nil), module.Instances...)
	sort.Slice(instances, func(i, j int) bool { return instances[i].Less(instances[j]) })

	var out []ExclusivePair
	for _, otherInstance := range instances {
		if otherInstance == instance {
			continue
		}
		blocks, err := e.MutuallyExclusiveBlocks(module, instance, block, otherInstance)
		if err != nil {
			return nil, err
		}
		for _, otherBlock := range blocks {
			out = append(out, ExclusivePair{Instance: otherInstance, Block: otherBlock})
		}
	}
	return out, nil
}
