package rhir

// Symbol is an uninterpreted value usable as a set element or message.
type Symbol struct {
	ref   Ref
	Label string
}

func (s *Symbol) Ref() Ref { return s.ref }

// FixedSet is an immutable, statically known collection of refs (the
// domain of an enumerated type — symbols or instances).
type FixedSet struct {
	ref   Ref
	Label string
	Items []Ref
}

func (f *FixedSet) Ref() Ref { return f.ref }

// Has reports whether item appears in the fixed set.
func (f *FixedSet) Has(item Ref) bool {
	for _, it := range f.Items {
		if it == item {
			return true
		}
	}
	return false
}

// Protocol describes the message shape a process instance exchanges:
// InProto is the fixed set of inbound message symbols, OutProto the outbound one.
// Either may be the zero Ref when the protocol only sends or only
// receives.
type Protocol struct {
	ref        Ref
	Label      string
	InProto    Ref
	OutProto   Ref
	Parameters []Ref
}

func (p *Protocol) Ref() Ref { return p.ref }

// AddParameter appends a formal parameter placeholder ref — a symbol
// referenced generically inside the process's blocks/predicates that
// each Instance of this protocol substitutes with one of its own
// Parameters, position for position.
func (p *Protocol) AddParameter(formal Ref) { p.Parameters = append(p.Parameters, formal) }

// Instance is a named, parameterized instantiation of a Protocol —
// one concurrent participant in the module.
type Instance struct {
	ref        Ref
	Label      string
	Protocol   Ref
	Parameters []Ref
}

func (i *Instance) Ref() Ref { return i.ref }

// AddParameter appends an actual parameter ref, substituted for the
// protocol's formal parameter at the same position.
func (i *Instance) AddParameter(actual Ref) { i.Parameters = append(i.Parameters, actual) }

// Block holds a straight-line sequence of Operations. Its control-flow
// successors live in the owning Process's ControlFlow, not on the block
// itself, so that cyclic graphs never require back-references.
type Block struct {
	ref Ref
	Ops []Operation
}

func (b *Block) Ref() Ref { return b.ref }

// IsEmpty reports whether the block has no effects — the condition the
// CF optimizer uses to decide whether a block can be elided.
func (b *Block) IsEmpty() bool { return len(b.Ops) == 0 }

// Set is a mutable collection over a fixed Domain, modified via SetAdd
// and SetDel operations and queried via SetEmpty/SetHas predicates.
type Set struct {
	ref    Ref
	Label  string
	Domain Ref
}

func (s *Set) Ref() Ref { return s.ref }

// Process binds a Protocol to an entry Block and the ControlFlow graph
// reachable from it.
type Process struct {
	ref         Ref
	Protocol    Ref
	EntryBlock  Ref
	ControlFlow Ref
}

func (p *Process) Ref() Ref { return p.ref }

// Module is the root entity: every Process definition paired with the
// concrete Instances that run it.
type Module struct {
	ref       Ref
	Processes []Ref
	Instances []Ref
}

func (m *Module) Ref() Ref { return m.ref }

// FindProcessFor returns the process implementing protocolRef, if any.
func (m *Module) FindProcessFor(c *Context, protocolRef Ref) (Ref, bool) {
	for _, procRef := range m.Processes {
		proc, err := c.ToProcess(procRef)
		if err != nil {
			continue
		}
		if proc.Protocol == protocolRef {
			return procRef, true
		}
	}
	return Ref{}, false
}

// Predicate wraps a PredicateOp with its own Ref so conditional branches
// can reference it structurally (e.g. for mutual-exclusion analysis).
type Predicate struct {
	ref Ref
	Op  PredicateOp
}

func (p *Predicate) Ref() Ref { return p.ref }

// Scope is a lexical binding environment used while building RHIR from a
// surface representation; it plays no role once a Module is complete.
type Scope struct {
	ref      Ref
	Parent   Ref
	bindings map[string]Ref
}

func (s *Scope) Ref() Ref { return s.ref }

// Bind records a name -> ref binding. Returns a structural CompileError
// if the name is already bound in this scope.
func (s *Scope) Bind(name string, ref Ref) error {
	if _, ok := s.bindings[name]; ok {
		return newError(KindStructural, "scope already contains binding %q", name)
	}
	s.bindings[name] = ref
	return nil
}

// TryResolve looks up name in this scope, falling back to ancestor scopes.
func (s *Scope) TryResolve(c *Context, name string) (Ref, bool) {
	if ref, ok := s.bindings[name]; ok {
		return ref, true
	}
	if s.Parent.IsZero() {
		return Ref{}, false
	}
	parent, err := c.ToScope(s.Parent)
	if err != nil {
		return Ref{}, false
	}
	return parent.TryResolve(c, name)
}
