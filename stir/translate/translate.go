// Package translate implements the RHIR-to-STIR translator of spec.md
// §4.2: a worklist walk over each instance's control-flow graph that
// materializes the product state space and records the ST-node ↔
// (instance,block) back-map mutex ingestion needs later.
package translate

import (
	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/stir"
)

type instanceCtx struct {
	instanceRef   rhir.Ref
	processRef    rhir.Ref
	entryNode     stir.NodeID
	exitNode      stir.NodeID
	nodeSlot      stir.SlotID
	paramBindings bindingSet // protocol formal -> this instance's actual parameter, zipped once
}

type msgSlotKey struct{ Sender, Receiver, Domain rhir.Ref }
type setSlotKey struct{ Instance, Set, Element rhir.Ref }

// bindingValue is what a formal ref (a protocol parameter, or a
// predicate ref standing for a receival) rebinds to in one enumerated
// condition binding: Msg is set only for receival bindings (the message
// symbol that arrived), Value is always the bound ref.
type bindingValue struct {
	Msg   rhir.Ref
	Value rhir.Ref
}

type bindingSet map[rhir.Ref]bindingValue

func resolveValue(b bindingSet, ref rhir.Ref) rhir.Ref {
	if v, ok := b[ref]; ok {
		return v.Value
	}
	return ref
}

type visitKey struct {
	Pred  stir.NodeID
	Block rhir.Ref
}

type queueItem struct {
	predNode  stir.NodeID
	negate    bool
	condition rhir.Ref // zero Ref means an unconditional predecessor edge
	block     rhir.Ref
}

// translation threads every table the translator builds incrementally
// while lowering one module.
type translation struct {
	ctx     *rhir.Context
	module  *rhir.Module
	st      *stir.Module
	mapping *Mapping

	protocolImpl       map[rhir.Ref]rhir.Ref // protocol ref -> implementing process ref
	instances          map[rhir.Ref]*instanceCtx
	instancesByProcess map[rhir.Ref][]rhir.Ref // process ref -> its instances
	blockNodes         map[blockKey]stir.NodeID
	messageSlots       map[msgSlotKey]stir.SlotID
	setElementSlots    map[setSlotKey]stir.SlotID
	messageDomains     map[rhir.Ref]rhir.Ref   // message symbol ref -> owning domain ref
	outboundMessaging  map[rhir.Ref][]rhir.Ref // domain ref -> sending process refs
}

// Translate lowers every instance's control-flow graph in module into a
// single STIR module, returning the module plus the ST-node ↔
// (instance,block) mapping.
func Translate(ctx *rhir.Context, module *rhir.Module) (*stir.Module, *Mapping, error) {
	t := &translation{
		ctx:                ctx,
		module:             module,
		st:                 &stir.Module{},
		mapping:            newMapping(),
		protocolImpl:       make(map[rhir.Ref]rhir.Ref),
		instances:          make(map[rhir.Ref]*instanceCtx),
		instancesByProcess: make(map[rhir.Ref][]rhir.Ref),
		blockNodes:         make(map[blockKey]stir.NodeID),
		messageSlots:       make(map[msgSlotKey]stir.SlotID),
		setElementSlots:    make(map[setSlotKey]stir.SlotID),
		messageDomains:     make(map[rhir.Ref]rhir.Ref),
		outboundMessaging:  make(map[rhir.Ref][]rhir.Ref),
	}

	if err := t.indexProtocols(); err != nil {
		return nil, nil, err
	}
	if err := t.allocateInstances(); err != nil {
		return nil, nil, err
	}
	for _, instanceRef := range module.Instances {
		if err := t.translateInstance(t.instances[instanceRef]); err != nil {
			return nil, nil, err
		}
	}
	return t.st, t.mapping, nil
}

func (t *translation) indexProtocols() error {
	for _, procRef := range t.module.Processes {
		proc, err := t.ctx.ToProcess(procRef)
		if err != nil {
			return err
		}
		t.protocolImpl[proc.Protocol] = procRef

		protocol, err := t.ctx.ToProtocol(proc.Protocol)
		if err != nil {
			return err
		}
		if err := t.indexDomain(protocol.InProto); err != nil {
			return err
		}
		if !protocol.OutProto.IsZero() {
			if err := t.indexDomain(protocol.OutProto); err != nil {
				return err
			}
			t.outboundMessaging[protocol.OutProto] = append(t.outboundMessaging[protocol.OutProto], procRef)
		}
	}
	return nil
}

func (t *translation) indexDomain(domainRef rhir.Ref) error {
	if domainRef.IsZero() {
		return nil
	}
	domain, err := t.ctx.ToFixedSet(domainRef)
	if err != nil {
		return err
	}
	for _, msg := range domain.Items {
		t.messageDomains[msg] = domainRef
	}
	return nil
}

func (t *translation) allocateInstances() error {
	for _, instanceRef := range t.module.Instances {
		inst, err := t.ctx.ToInstance(instanceRef)
		if err != nil {
			return err
		}
		protocol, err := t.ctx.ToProtocol(inst.Protocol)
		if err != nil {
			return err
		}
		paramBindings, err := zipProtocolParameters(protocol, inst)
		if err != nil {
			return err
		}
		entryNode := t.st.NewNode()
		// exit_node is allocated per instance and never targeted by a
		// transition (spec.md DESIGN NOTES (c)): preserved for forward
		// compatibility with a future "process termination" encoding.
		exitNode := t.st.NewNode()
		nodeSlot := t.st.State.AddNodeSlot(entryNode)
		processRef := t.protocolImpl[inst.Protocol]
		t.instances[instanceRef] = &instanceCtx{
			instanceRef:   instanceRef,
			processRef:    processRef,
			entryNode:     entryNode,
			exitNode:      exitNode,
			nodeSlot:      nodeSlot,
			paramBindings: paramBindings,
		}
		t.instancesByProcess[processRef] = append(t.instancesByProcess[processRef], instanceRef)
	}
	return nil
}

// zipProtocolParameters binds each protocol formal parameter ref to the
// instance's actual parameter ref at the same position — spec.md §4.2's
// `zip(protocol.Parameters, instance.Parameters)`, seeded once per
// instance and merged into every binding set translateBlock builds, the
// same way original_source/race_harness/stir/translator/rhst.py:209-213
// substitutes an instance's parameters unconditionally for every block it
// translates.
func zipProtocolParameters(protocol *rhir.Protocol, inst *rhir.Instance) (bindingSet, error) {
	if len(protocol.Parameters) != len(inst.Parameters) {
		return nil, &rhir.CompileError{Kind: rhir.KindResolution, Message: "instance " + inst.Ref().String() + " parameter count does not match its protocol's formal parameters"}
	}
	if len(protocol.Parameters) == 0 {
		return nil, nil
	}
	bindings := make(bindingSet, len(protocol.Parameters))
	for i, formal := range protocol.Parameters {
		bindings[formal] = bindingValue{Value: inst.Parameters[i]}
	}
	return bindings, nil
}

func (t *translation) translateInstance(ic *instanceCtx) error {
	proc, err := t.ctx.ToProcess(ic.processRef)
	if err != nil {
		return err
	}
	cf, err := t.ctx.ToControlFlow(proc.ControlFlow)
	if err != nil {
		return err
	}

	visited := make(map[visitKey]bool)
	queue := []queueItem{{predNode: ic.entryNode, block: proc.EntryBlock}}

	for len(queue) > 0 {
		item := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		vk := visitKey{Pred: item.predNode, Block: item.block}
		if visited[vk] {
			continue
		}
		visited[vk] = true

		bk := blockKey{Instance: ic.instanceRef, Block: item.block}
		node, ok := t.blockNodes[bk]
		if !ok {
			node = t.st.NewNode()
			t.blockNodes[bk] = node
			t.mapping.mapTo(node, ic.instanceRef, item.block)
		}

		queue = traverseBlock(cf, node, item.block, queue)

		if err := t.translateBlock(ic, item.block, node, item.predNode, item.negate, item.condition); err != nil {
			return err
		}
	}
	return nil
}

func traverseBlock(cf *rhir.ControlFlow, blockNode stir.NodeID, blockRef rhir.Ref, queue []queueItem) []queueItem {
	switch e := cf.EdgeFrom(blockRef).(type) {
	case rhir.UnconditionalEdge:
		queue = append(queue, queueItem{predNode: blockNode, block: e.Target})
	case rhir.ConditionalEdge:
		queue = append(queue, queueItem{predNode: blockNode, condition: e.Condition, block: e.Target})
		queue = append(queue, queueItem{predNode: blockNode, negate: true, condition: e.Condition, block: e.Alternative})
	}
	return queue
}

func (t *translation) translateBlock(ic *instanceCtx, blockRef rhir.Ref, blockNode, predNode stir.NodeID, negate bool, condition rhir.Ref) error {
	bindingsList, err := t.enumerateConditionBindings(ic, condition)
	if err != nil {
		return err
	}
	for i, bindings := range bindingsList {
		bindingsList[i] = mergeBindings(ic.paramBindings, bindings)
	}

	block, err := t.ctx.ToBlock(blockRef)
	if err != nil {
		return err
	}

	for _, bindings := range bindingsList {
		transition := t.st.AddTransition(ic.nodeSlot, predNode, blockNode, negate)

		if !condition.IsZero() {
			predicate, err := t.ctx.ToPredicate(condition)
			if err != nil {
				return err
			}
			if err := t.translateCondition(ic, transition, negate, predicate, bindings); err != nil {
				return err
			}
		}

		for _, op := range block.Ops {
			if err := t.translateOperation(ic, transition, bindings, op); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *translation) translateOperation(ic *instanceCtx, transition *stir.Transition, bindings bindingSet, op rhir.Operation) error {
	switch o := op.(type) {
	case rhir.ExternalAction:
		transition.AddInstruction(stir.DoInstr{Action: o.Action})

	case rhir.Transmission:
		for _, dstRef := range o.Destinations {
			dst := resolveValue(bindings, dstRef)
			if _, ok := t.ctx.AsInstance(dst); ok {
				slot, err := t.messageSlot(ic.instanceRef, dst, o.Message)
				if err != nil {
					return err
				}
				transition.AddInstruction(stir.SetIntInstr{Slot: slot, Value: o.Message.UID()})
				continue
			}
			if fs, ok := t.ctx.AsFixedSet(dst); ok {
				for _, subdst := range fs.Items {
					slot, err := t.messageSlot(ic.instanceRef, subdst, o.Message)
					if err != nil {
						return err
					}
					transition.AddInstruction(stir.SetIntInstr{Slot: slot, Value: o.Message.UID()})
				}
			}
		}

	case rhir.SetAdd:
		value := resolveValue(bindings, o.Value)
		slot, err := t.setElementSlot(ic.instanceRef, o.TargetSet, value)
		if err != nil {
			return err
		}
		transition.AddInstruction(stir.SetIntInstr{Slot: slot, Value: 1})

	case rhir.SetDel:
		value := resolveValue(bindings, o.Value)
		slot, err := t.setElementSlot(ic.instanceRef, o.TargetSet, value)
		if err != nil {
			return err
		}
		transition.AddInstruction(stir.SetIntInstr{Slot: slot, Value: 0})
	}
	return nil
}

func (t *translation) translateCondition(ic *instanceCtx, transition *stir.Transition, negate bool, predicate *rhir.Predicate, bindings bindingSet) error {
	switch op := predicate.Op.(type) {
	case rhir.Nondet:
		// no guard: the transition is constrained only by the source
		// node check every transition already carries.

	case rhir.SetEmpty:
		set, err := t.ctx.ToSet(op.TargetSet)
		if err != nil {
			return err
		}
		domain, err := t.ctx.ToFixedSet(set.Domain)
		if err != nil {
			return err
		}
		for _, elt := range domain.Items {
			slot, err := t.setElementSlot(ic.instanceRef, op.TargetSet, elt)
			if err != nil {
				return err
			}
			transition.AddGuard(stir.IntGuard{Slot: slot, Value: 0})
		}

	case rhir.SetHas:
		value := resolveValue(bindings, op.Value)
		slot, err := t.setElementSlot(ic.instanceRef, op.TargetSet, value)
		if err != nil {
			return err
		}
		transition.AddGuard(stir.IntGuard{Slot: slot, Value: 1})

	case rhir.Receival:
		for _, msgRef := range op.Messages {
			binding, ok := bindings[msgRef]
			if !ok {
				continue
			}
			msg, sender := binding.Msg, binding.Value
			slot, err := t.messageSlot(sender, ic.instanceRef, msg)
			if err != nil {
				return err
			}
			transition.AddGuard(stir.IntGuard{Slot: slot, Value: msg.UID()})
			if !negate {
				transition.AddInstruction(stir.SetIntInstr{Slot: slot, Value: -1})
			}
		}

	case rhir.Conjunction:
		for _, conjRef := range op.Conjuncts {
			conjPredicate, err := t.ctx.ToPredicate(conjRef)
			if err != nil {
				return err
			}
			if err := t.translateCondition(ic, transition, negate, conjPredicate, bindings); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *translation) messageSlot(sender, receiver, message rhir.Ref) (stir.SlotID, error) {
	domain, ok := t.messageDomains[message]
	if !ok {
		return 0, &rhir.CompileError{Kind: rhir.KindResolution, Message: "message " + message.String() + " has no owning domain"}
	}
	key := msgSlotKey{Sender: sender, Receiver: receiver, Domain: domain}
	if id, ok := t.messageSlots[key]; ok {
		return id, nil
	}
	id := t.st.State.AddIntSlot(-1)
	t.messageSlots[key] = id
	return id, nil
}

func (t *translation) setElementSlot(instance, set, element rhir.Ref) (stir.SlotID, error) {
	key := setSlotKey{Instance: instance, Set: set, Element: element}
	if id, ok := t.setElementSlots[key]; ok {
		return id, nil
	}
	id := t.st.State.AddIntSlot(0)
	t.setElementSlots[key] = id
	return id, nil
}

// enumerateConditionBindings returns every distinct binding consistent
// with condition, de-duplicated by structural equality (spec.md §4.2).
// The zero Ref (an unconditional edge) yields exactly one, empty,
// binding. A condition that carries no bindable sub-predicate (a bare
// SetEmpty/SetHas/Nondet) also yields exactly one, empty, binding — the
// condition is still translated, it just never needs more than one
// transition to express.
func (t *translation) enumerateConditionBindings(ic *instanceCtx, condition rhir.Ref) ([]bindingSet, error) {
	if condition.IsZero() {
		return []bindingSet{{}}, nil
	}
	predicate, err := t.ctx.ToPredicate(condition)
	if err != nil {
		return nil, err
	}
	variants, err := t.enumerateConditionBindingsImpl(ic, predicate)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return []bindingSet{{}}, nil
	}

	seen := make(map[uint64]bool, len(variants))
	out := make([]bindingSet, 0, len(variants))
	for _, v := range variants {
		h, err := bindingHash(v)
		if err != nil {
			return nil, err
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, v)
	}
	return out, nil
}

func mergeBindings(base, extra bindingSet) bindingSet {
	merged := make(bindingSet, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (t *translation) enumerateConditionBindingsImpl(ic *instanceCtx, predicate *rhir.Predicate) ([]bindingSet, error) {
	switch op := predicate.Op.(type) {
	case rhir.Receival:
		return t.enumReceivalBindings(op)
	case rhir.Conjunction:
		return t.enumConjunctionBindings(ic, op.Conjuncts)
	default:
		// Nondet, SetEmpty, SetHas bind nothing of their own.
		return nil, nil
	}
}

// enumConjunctionBindings enumerates the full cartesian product of the
// head conjunct's bindings against every binding of its entire tail,
// recursing on the tail as a whole rather than folding pairwise —
// the resolved form of the source system's conjunction-enumeration
// routine (a superseded revision recursed on the tail with its first
// element dropped a second time, silently skipping every other conjunct).
func (t *translation) enumConjunctionBindings(ic *instanceCtx, conjuncts []rhir.Ref) ([]bindingSet, error) {
	if len(conjuncts) == 0 {
		return []bindingSet{{}}, nil
	}
	head := conjuncts[0]
	tail := conjuncts[1:]

	headPredicate, err := t.ctx.ToPredicate(head)
	if err != nil {
		return nil, err
	}
	headVariants, err := t.enumerateConditionBindingsImpl(ic, headPredicate)
	if err != nil {
		return nil, err
	}
	if len(headVariants) == 0 {
		headVariants = []bindingSet{{}}
	}

	tailVariants, err := t.enumConjunctionBindings(ic, tail)
	if err != nil {
		return nil, err
	}
	if len(tailVariants) == 0 {
		tailVariants = []bindingSet{{}}
	}

	out := make([]bindingSet, 0, len(headVariants)*len(tailVariants))
	for _, h := range headVariants {
		for _, tl := range tailVariants {
			out = append(out, mergeBindings(h, tl))
		}
	}
	return out, nil
}

// enumReceivalBindings enumerates one binding per consistent assignment
// of a sending instance to every message the receival waits on. A
// message with no possible sender drops out of the product silently,
// leaving the remaining messages' enumeration unaffected — translateCondition
// then guards only the messages that did bind.
func (t *translation) enumReceivalBindings(op rhir.Receival) ([]bindingSet, error) {
	result := []bindingSet{{}}
	for _, msgRef := range op.Messages {
		senders, err := t.enumSenderInstances(msgRef)
		if err != nil {
			return nil, err
		}
		if len(senders) == 0 {
			continue
		}
		next := make([]bindingSet, 0, len(result)*len(senders))
		for _, base := range result {
			for _, sender := range senders {
				next = append(next, mergeBindings(base, bindingSet{msgRef: {Msg: msgRef, Value: sender}}))
			}
		}
		result = next
	}
	return result, nil
}

// enumSenderInstances returns every instance whose process's outbound
// protocol domain includes msgRef.
func (t *translation) enumSenderInstances(msgRef rhir.Ref) ([]rhir.Ref, error) {
	domain, ok := t.messageDomains[msgRef]
	if !ok {
		return nil, &rhir.CompileError{Kind: rhir.KindResolution, Message: "message " + msgRef.String() + " has no owning domain"}
	}
	var senders []rhir.Ref
	for _, proc := range t.outboundMessaging[domain] {
		senders = append(senders, t.instancesByProcess[proc]...)
	}
	return senders, nil
}
