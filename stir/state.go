// Package stir implements the symbolic state-transition IR consumed by
// the external model checker: a flat vector of integer-valued slots and
// a set of guarded transitions over them.
package stir

// SlotID identifies one cell of state. Slot ids are allocated densely
// and sequentially as a module is built, starting at 0, so they can also
// serve directly as an index into the state vector emitted to the
// checker.
type SlotID int

// Slot is one cell of the state vector. Concrete kinds: IntSlot,
// NodeSlot.
type Slot interface {
	slot()
	Initial() int
}

// IntSlot holds a plain integer — used for message slots (the pending
// message's uid, or -1 for none) and set-membership flags (0 or 1).
type IntSlot struct {
	ID           SlotID
	InitialValue int
}

func (IntSlot) slot()          {}
func (s IntSlot) Initial() int { return s.InitialValue }

// NodeID identifies one control location within an instance's STIR
// program (the STIR analogue of an RHIR Block).
type NodeID int

// NodeSlot holds the current control location of one instance.
type NodeSlot struct {
	ID           SlotID
	InitialValue NodeID
}

func (NodeSlot) slot()          {}
func (s NodeSlot) Initial() int { return int(s.InitialValue) }

// State is the ordered vector of slots making up one module's state
// space. Order is insertion order, matching iteration order of the
// source system's dict-backed state container.
type State struct {
	slots []Slot
}

// Add appends slot and returns its dense index.
func (s *State) Add(slot Slot) SlotID {
	id := SlotID(len(s.slots))
	s.slots = append(s.slots, slot)
	return id
}

// AddIntSlot allocates and appends a fresh IntSlot initialized to
// initial, returning its id.
func (s *State) AddIntSlot(initial int) SlotID {
	id := SlotID(len(s.slots))
	s.slots = append(s.slots, IntSlot{ID: id, InitialValue: initial})
	return id
}

// AddNodeSlot allocates and appends a fresh NodeSlot initialized to
// initial, returning its id.
func (s *State) AddNodeSlot(initial NodeID) SlotID {
	id := SlotID(len(s.slots))
	s.slots = append(s.slots, NodeSlot{ID: id, InitialValue: initial})
	return id
}

// Len reports the number of slots.
func (s *State) Len() int { return len(s.slots) }

// Slots returns the slot vector in declaration order.
func (s *State) Slots() []Slot { return s.slots }
