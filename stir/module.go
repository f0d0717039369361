package stir

// Module is a complete translated STIR program: the state vector plus
// every transition over it.
type Module struct {
	State       State
	Transitions []*Transition

	nextNode NodeID
}

// NewNode allocates and returns the next dense, opaque NodeID.
func (m *Module) NewNode() NodeID {
	id := m.nextNode
	m.nextNode++
	return id
}

// AddTransition appends and numbers a new transition. invertGuard
// negates the conjunction of whatever guards the caller subsequently
// attaches via Transition.AddGuard.
func (m *Module) AddTransition(nodeSlot SlotID, source, target NodeID, invertGuard bool) *Transition {
	t := &Transition{
		ID:          TransitionID(len(m.Transitions)),
		NodeSlot:    nodeSlot,
		SourceNode:  source,
		TargetNode:  target,
		InvertGuard: invertGuard,
	}
	m.Transitions = append(m.Transitions, t)
	return t
}

// Len reports the number of transitions.
func (m *Module) Len() int { return len(m.Transitions) }
