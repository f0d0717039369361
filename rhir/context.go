package rhir

import (
	"fmt"
	"sort"
	"strings"
)

// Context is the arena owning every entity of one compilation unit. Refs
// minted by one Context are never valid against another: every accessor
// checks ref.ctx before touching the entity table.
type Context struct {
	nextID   int
	entities map[int]interface{}
}

// NewContext returns an empty arena.
func NewContext() *Context {
	return &Context{entities: make(map[int]interface{})}
}

func (c *Context) newRef(kind EntityKind) Ref {
	ref := Ref{kind: kind, id: c.nextID, ctx: c}
	c.nextID++
	return ref
}

func (c *Context) put(ref Ref, entity interface{}) {
	c.entities[ref.id] = entity
}

func (c *Context) checkRef(ref Ref) error {
	if ref.ctx != c {
		return newError(KindReference, "reference %s does not belong to this context", ref)
	}
	if _, ok := c.entities[ref.id]; !ok {
		return newError(KindReference, "reference %s does not belong to this context", ref)
	}
	return nil
}

// Drop removes an entity from the arena. Used by the CF optimizer to
// delete eliminated blocks.
func (c *Context) Drop(ref Ref) {
	delete(c.entities, ref.id)
}

type refHolder interface{ Ref() Ref }

// String renders every entity in the arena as "ref = %+v", one per line,
// in ascending ref-id order — the `rhir` encoding's entire output
// (original_source/ir/context.py's RHContext.__str__, minus its
// insertion-order iteration, which this makes deterministic across
// runs).
func (c *Context) String() string {
	ids := make([]int, 0, len(c.entities))
	for id := range c.entities {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		entity := c.entities[id]
		if rh, ok := entity.(refHolder); ok {
			fmt.Fprintf(&b, "%s = %+v\n", rh.Ref(), entity)
		} else {
			fmt.Fprintf(&b, "#%d = %+v\n", id, entity)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewSymbol allocates a Symbol.
func (c *Context) NewSymbol(label string) *Symbol {
	ref := c.newRef(KindSymbol)
	s := &Symbol{ref: ref, Label: label}
	c.put(ref, s)
	return s
}

// NewFixedSet allocates a FixedSet over items, which must already belong
// to this Context.
func (c *Context) NewFixedSet(label string, items []Ref) (*FixedSet, error) {
	for _, item := range items {
		if err := c.checkRef(item); err != nil {
			return nil, err
		}
	}
	ref := c.newRef(KindFixedSet)
	fs := &FixedSet{ref: ref, Label: label, Items: append([]Ref(nil), items...)}
	c.put(ref, fs)
	return fs, nil
}

// NewProtocol allocates a Protocol. inProto/outProto may be the zero Ref.
func (c *Context) NewProtocol(label string, inProto, outProto Ref) (*Protocol, error) {
	if !inProto.IsZero() {
		if err := c.checkRef(inProto); err != nil {
			return nil, err
		}
	}
	if !outProto.IsZero() {
		if err := c.checkRef(outProto); err != nil {
			return nil, err
		}
	}
	ref := c.newRef(KindProtocol)
	p := &Protocol{ref: ref, Label: label, InProto: inProto, OutProto: outProto}
	c.put(ref, p)
	return p, nil
}

// NewInstance allocates an Instance of proto.
func (c *Context) NewInstance(label string, proto Ref) (*Instance, error) {
	if err := c.checkRef(proto); err != nil {
		return nil, err
	}
	ref := c.newRef(KindInstance)
	inst := &Instance{ref: ref, Label: label, Protocol: proto}
	c.put(ref, inst)
	return inst, nil
}

// NewBlock allocates an empty Block.
func (c *Context) NewBlock() *Block {
	ref := c.newRef(KindBlock)
	b := &Block{ref: ref}
	c.put(ref, b)
	return b
}

// NewControlFlow allocates an empty ControlFlow graph.
func (c *Context) NewControlFlow() *ControlFlow {
	ref := c.newRef(KindControlFlow)
	cf := &ControlFlow{ref: ref, edges: make(map[Ref]Edge), reverseEdges: make(map[Ref]map[Ref]struct{})}
	c.put(ref, cf)
	return cf
}

// NewSet allocates a mutable Set over domain.
func (c *Context) NewSet(label string, domain Ref) (*Set, error) {
	if err := c.checkRef(domain); err != nil {
		return nil, err
	}
	ref := c.newRef(KindSet)
	s := &Set{ref: ref, Label: label, Domain: domain}
	c.put(ref, s)
	return s, nil
}

// NewProcess allocates a Process.
func (c *Context) NewProcess(proto, entryBlock, controlFlow Ref) (*Process, error) {
	for _, r := range []Ref{proto, entryBlock, controlFlow} {
		if err := c.checkRef(r); err != nil {
			return nil, err
		}
	}
	ref := c.newRef(KindProcess)
	p := &Process{ref: ref, Protocol: proto, EntryBlock: entryBlock, ControlFlow: controlFlow}
	c.put(ref, p)
	return p, nil
}

// NewModule allocates the root Module.
func (c *Context) NewModule(processes, instances []Ref) (*Module, error) {
	for _, r := range processes {
		if err := c.checkRef(r); err != nil {
			return nil, err
		}
	}
	for _, r := range instances {
		if err := c.checkRef(r); err != nil {
			return nil, err
		}
	}
	ref := c.newRef(KindModule)
	m := &Module{ref: ref, Processes: append([]Ref(nil), processes...), Instances: append([]Ref(nil), instances...)}
	c.put(ref, m)
	return m, nil
}

// NewPredicate allocates a Predicate wrapping op.
func (c *Context) NewPredicate(op PredicateOp) *Predicate {
	ref := c.newRef(KindPredicate)
	p := &Predicate{ref: ref, Op: op}
	c.put(ref, p)
	return p
}

// NewScope allocates a Scope, optionally nested under parent (the zero
// Ref for a root scope).
func (c *Context) NewScope(parent Ref) (*Scope, error) {
	if !parent.IsZero() {
		if err := c.checkRef(parent); err != nil {
			return nil, err
		}
	}
	ref := c.newRef(KindScope)
	s := &Scope{ref: ref, Parent: parent, bindings: make(map[string]Ref)}
	c.put(ref, s)
	return s, nil
}

// Entity-kind coercions. AsX returns (value, false) without error on
// mismatch, letting callers branch directly on concrete-type switches;
// ToX returns a KindEntityMismatch CompileError in the same case, for
// call sites that expect a specific kind and should fail loudly.

func (c *Context) AsSymbol(ref Ref) (*Symbol, bool) {
	v, ok := c.entities[ref.id].(*Symbol)
	return v, ok && ref.ctx == c
}

func (c *Context) ToSymbol(ref Ref) (*Symbol, error) {
	if v, ok := c.AsSymbol(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a symbol", ref)
}

func (c *Context) AsFixedSet(ref Ref) (*FixedSet, bool) {
	v, ok := c.entities[ref.id].(*FixedSet)
	return v, ok && ref.ctx == c
}

func (c *Context) ToFixedSet(ref Ref) (*FixedSet, error) {
	if v, ok := c.AsFixedSet(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a fixed set", ref)
}

func (c *Context) AsProtocol(ref Ref) (*Protocol, bool) {
	v, ok := c.entities[ref.id].(*Protocol)
	return v, ok && ref.ctx == c
}

func (c *Context) ToProtocol(ref Ref) (*Protocol, error) {
	if v, ok := c.AsProtocol(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a protocol", ref)
}

func (c *Context) AsInstance(ref Ref) (*Instance, bool) {
	v, ok := c.entities[ref.id].(*Instance)
	return v, ok && ref.ctx == c
}

func (c *Context) ToInstance(ref Ref) (*Instance, error) {
	if v, ok := c.AsInstance(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not an instance", ref)
}

func (c *Context) AsBlock(ref Ref) (*Block, bool) {
	v, ok := c.entities[ref.id].(*Block)
	return v, ok && ref.ctx == c
}

func (c *Context) ToBlock(ref Ref) (*Block, error) {
	if v, ok := c.AsBlock(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a block", ref)
}

func (c *Context) AsControlFlow(ref Ref) (*ControlFlow, bool) {
	v, ok := c.entities[ref.id].(*ControlFlow)
	return v, ok && ref.ctx == c
}

func (c *Context) ToControlFlow(ref Ref) (*ControlFlow, error) {
	if v, ok := c.AsControlFlow(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a control flow graph", ref)
}

func (c *Context) AsSet(ref Ref) (*Set, bool) {
	v, ok := c.entities[ref.id].(*Set)
	return v, ok && ref.ctx == c
}

func (c *Context) ToSet(ref Ref) (*Set, error) {
	if v, ok := c.AsSet(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a set", ref)
}

func (c *Context) AsProcess(ref Ref) (*Process, bool) {
	v, ok := c.entities[ref.id].(*Process)
	return v, ok && ref.ctx == c
}

func (c *Context) ToProcess(ref Ref) (*Process, error) {
	if v, ok := c.AsProcess(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a process", ref)
}

func (c *Context) AsModule(ref Ref) (*Module, bool) {
	v, ok := c.entities[ref.id].(*Module)
	return v, ok && ref.ctx == c
}

func (c *Context) ToModule(ref Ref) (*Module, error) {
	if v, ok := c.AsModule(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a module", ref)
}

func (c *Context) AsPredicate(ref Ref) (*Predicate, bool) {
	v, ok := c.entities[ref.id].(*Predicate)
	return v, ok && ref.ctx == c
}

func (c *Context) ToPredicate(ref Ref) (*Predicate, error) {
	if v, ok := c.AsPredicate(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a predicate", ref)
}

func (c *Context) AsScope(ref Ref) (*Scope, bool) {
	v, ok := c.entities[ref.id].(*Scope)
	return v, ok && ref.ctx == c
}

func (c *Context) ToScope(ref Ref) (*Scope, error) {
	if v, ok := c.AsScope(ref); ok {
		return v, nil
	}
	return nil, newError(KindEntityMismatch, "%s is not a scope", ref)
}
