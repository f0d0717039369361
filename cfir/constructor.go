package cfir

import (
	"sort"

	"github.com/viant/racegen/mutex"
	"github.com/viant/racegen/rhir"
)

// mutexKey canonicalizes a pair of (instance,block) states by which
// instance ref is smaller, so the constructor allocates exactly one
// mutex per unordered pair regardless of which side asks for it first.
type mutexKey struct {
	minInstance, minBlock, maxInstance, maxBlock rhir.Ref
}

// moduleState threads the mutex pool across every instance being
// constructed into one CFIR Module.
type moduleState struct {
	module   *rhir.Module
	cfModule *Module
	mutexes  map[mutexKey]MutexID
}

// instanceState threads per-instance block memoization while lowering
// one instance's control-flow graph.
type instanceState struct {
	process     *rhir.Process
	instanceRef rhir.Ref
	blockLabels map[rhir.Ref]LabelID
	topLevel    *Sequence
}

// Constructor lowers RHIR control flow, combined with a mutual-exclusion
// relation, into a CFIR module: one procedure per instance, mutexes
// allocated per mutually-exclusive (instance,block) pair.
type Constructor struct {
	ctx       *rhir.Context
	exclusion *mutex.Exclusion
}

// NewConstructor returns a Constructor resolving mutual exclusion
// against exclusion.
func NewConstructor(ctx *rhir.Context, exclusion *mutex.Exclusion) *Constructor {
	return &Constructor{ctx: ctx, exclusion: exclusion}
}

// ConstructModule lowers every instance of module into a CFIR Module.
func (c *Constructor) ConstructModule(module *rhir.Module) (*Module, error) {
	ms := &moduleState{module: module, cfModule: NewModule(), mutexes: make(map[mutexKey]MutexID)}
	for _, instanceRef := range module.Instances {
		if err := c.constructInstance(ms, instanceRef); err != nil {
			return nil, err
		}
	}
	return ms.cfModule, nil
}

func (c *Constructor) constructInstance(ms *moduleState, instanceRef rhir.Ref) error {
	inst, err := c.ctx.ToInstance(instanceRef)
	if err != nil {
		return err
	}
	procRef, ok := ms.module.FindProcessFor(c.ctx, inst.Protocol)
	if !ok {
		return &rhir.CompileError{Kind: rhir.KindResolution, Message: "unable to find process for instance " + instanceRef.String()}
	}
	proc, err := c.ctx.ToProcess(procRef)
	if err != nil {
		return err
	}

	is := &instanceState{
		process:     proc,
		instanceRef: instanceRef,
		blockLabels: make(map[rhir.Ref]LabelID),
		topLevel:    &Sequence{},
	}

	entryLabel, err := c.constructBlock(ms, is, proc.EntryBlock)
	if err != nil {
		return err
	}
	ms.cfModule.Interface.DeclareInstance(inst.Label)

	entryLocks, err := c.requiredLocks(ms, instanceRef, proc.EntryBlock)
	if err != nil {
		return err
	}

	prologue := &Sequence{}
	prologue.Add(c.constructSynchronization(nil, entryLocks, nil))
	prologue.Add(InitBarrier{})
	prologue.Add(Goto{Label: entryLabel})
	prologue.Add(is.topLevel)

	ms.cfModule.AddProcedure(inst.Label, prologue)
	return nil
}

func (c *Constructor) constructBlock(ms *moduleState, is *instanceState, blockRef rhir.Ref) (LabelID, error) {
	if label, ok := is.blockLabels[blockRef]; ok {
		return label, nil
	}

	label := ms.cfModule.NewLabel()
	is.blockLabels[blockRef] = label

	block, err := c.ctx.ToBlock(blockRef)
	if err != nil {
		return 0, err
	}

	seq := &Sequence{}
	for _, op := range block.Ops {
		if ext, ok := op.(rhir.ExternalAction); ok {
			seq.Add(Statement{Action: ext.Action})
			ms.cfModule.Interface.DeclareExternalAction(ext.Action)
		}
	}

	cf, err := c.ctx.ToControlFlow(is.process.ControlFlow)
	if err != nil {
		return 0, err
	}
	edge := cf.EdgeFrom(blockRef)

	switch e := edge.(type) {
	case nil:
		seq.Add(Return{})
	case rhir.UnconditionalEdge:
		succLabel, err := c.constructBlock(ms, is, e.Target)
		if err != nil {
			return 0, err
		}
		curLocks, err := c.requiredLocks(ms, is.instanceRef, blockRef)
		if err != nil {
			return 0, err
		}
		nextLocks, err := c.requiredLocks(ms, is.instanceRef, e.Target)
		if err != nil {
			return 0, err
		}
		seq.Add(c.constructSynchronization(curLocks, nextLocks, nil))
		seq.Add(Goto{Label: succLabel})
	case rhir.ConditionalEdge:
		targetLabel, err := c.constructBlock(ms, is, e.Target)
		if err != nil {
			return 0, err
		}
		altLabel, err := c.constructBlock(ms, is, e.Alternative)
		if err != nil {
			return 0, err
		}

		branchLabel := ms.cfModule.NewLabel()
		curLocks, err := c.requiredLocks(ms, is.instanceRef, blockRef)
		if err != nil {
			return 0, err
		}
		targetLocks, err := c.requiredLocks(ms, is.instanceRef, e.Target)
		if err != nil {
			return 0, err
		}
		altLocks, err := c.requiredLocks(ms, is.instanceRef, e.Alternative)
		if err != nil {
			return 0, err
		}

		targetBranch := &Sequence{}
		targetBranch.Add(c.constructSynchronization(curLocks, targetLocks, &branchLabel))
		targetBranch.Add(Goto{Label: targetLabel})

		altBranch := &Sequence{}
		altBranch.Add(c.constructSynchronization(curLocks, altLocks, &branchLabel))
		altBranch.Add(Goto{Label: altLabel})

		seq.Add(Labelled{Label: branchLabel, Body: Branch{Children: []Node{targetBranch, altBranch}}})
	}

	is.topLevel.Add(Labelled{Label: label, Body: seq})
	return label, nil
}

// requiredLocks returns the image of every (instance,block) state
// mutually exclusive with (instanceRef,blockRef) under the mutex pool,
// allocating a fresh mutex the first time a given canonical pair is
// requested.
func (c *Constructor) requiredLocks(ms *moduleState, instanceRef, blockRef rhir.Ref) ([]MutexID, error) {
	pairs, err := c.exclusion.AllMutuallyExclusiveBlocks(ms.module, instanceRef, blockRef)
	if err != nil {
		return nil, err
	}

	locks := make([]MutexID, 0, len(pairs))
	for _, pair := range pairs {
		minInstance, maxInstance := instanceRef, pair.Instance
		minBlock, maxBlock := blockRef, pair.Block
		if pair.Instance.Less(instanceRef) {
			minInstance, maxInstance = pair.Instance, instanceRef
			minBlock, maxBlock = pair.Block, blockRef
		}
		key := mutexKey{minInstance: minInstance, minBlock: minBlock, maxInstance: maxInstance, maxBlock: maxBlock}
		id, ok := ms.mutexes[key]
		if !ok {
			id = ms.cfModule.NewMutex()
			ms.mutexes[key] = id
		}
		locks = append(locks, id)
	}
	return locks, nil
}

// constructSynchronization diffs current against required, locking what
// required adds and unlocking what it drops, both in ascending MutexID
// order (backends reverse the unlock order themselves).
func (c *Constructor) constructSynchronization(current, required []MutexID, rollback *LabelID) Synchronization {
	currentSet := make(map[MutexID]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	requiredSet := make(map[MutexID]bool, len(required))
	for _, id := range required {
		requiredSet[id] = true
	}

	var lock, unlock []MutexID
	for _, id := range required {
		if !currentSet[id] {
			lock = append(lock, id)
		}
	}
	for _, id := range current {
		if !requiredSet[id] {
			unlock = append(unlock, id)
		}
	}
	sort.Slice(lock, func(i, j int) bool { return lock[i] < lock[j] })
	sort.Slice(unlock, func(i, j int) bool { return unlock[i] < unlock[j] })

	return Synchronization{Lock: dedup(lock), Unlock: dedup(unlock), Rollback: rollback}
}

func dedup(sorted []MutexID) []MutexID {
	if len(sorted) == 0 {
		return nil
	}
	out := sorted[:1]
	for _, id := range sorted[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
