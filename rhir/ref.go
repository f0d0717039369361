package rhir

import "strconv"

// EntityKind tags the concrete type a Ref points at. Every entity in a
// Context shares one monotonic id space (mirroring the source system's
// single counter across all entity constructors), so EntityKind exists
// purely to let Ref coercions fail fast with a clear message instead of a
// type assertion panic deep in a backend.
type EntityKind int

const (
	KindSymbol EntityKind = iota
	KindFixedSet
	KindProtocol
	KindInstance
	KindBlock
	KindControlFlow
	KindSet
	KindProcess
	KindModule
	KindPredicate
	KindScope
)

func (k EntityKind) String() string {
	switch k {
	case KindSymbol:
		return "symbol"
	case KindFixedSet:
		return "fixed_set"
	case KindProtocol:
		return "protocol"
	case KindInstance:
		return "instance"
	case KindBlock:
		return "block"
	case KindControlFlow:
		return "control_flow"
	case KindSet:
		return "set"
	case KindProcess:
		return "process"
	case KindModule:
		return "module"
	case KindPredicate:
		return "predicate"
	case KindScope:
		return "scope"
	default:
		return "unknown"
	}
}

// Ref is an opaque, context-scoped handle to an entity. Refs from two
// different Contexts are never equal even if their ids collide; Context
// methods verify ctx before dereferencing.
type Ref struct {
	kind EntityKind
	id   int
	ctx  *Context
}

// Kind reports the entity kind this Ref was minted for.
func (r Ref) Kind() EntityKind { return r.kind }

// IsZero reports whether r is the zero Ref (no entity, no context).
func (r Ref) IsZero() bool { return r.ctx == nil }

// Less imposes a total order over Refs from the same Context, by
// allocation order. Used to canonicalize unordered pairs (mutual
// inclusion keys, mutex-pool keys) the same way regardless of the order
// their two endpoints were discovered in.
func (r Ref) Less(other Ref) bool { return r.id < other.id }

// UID returns the dense identifier minted for this ref. Exposed for the
// STIR translator, which stamps message-arrival slots with a message
// symbol's uid as the wire-level value identifying it (spec.md §4.2).
func (r Ref) UID() int { return r.id }

func (r Ref) String() string {
	return "%" + strconv.Itoa(r.id)
}
