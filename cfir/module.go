package cfir

// Interface is the module's ABI surface: the instances that become
// `enum rh_process_instance` entries and the external actions every
// backend declares as `extern void action(enum rh_process_instance,
// void**)`.
type Interface struct {
	instances      []string
	instanceSet    map[string]bool
	externalActions []string
	actionSet      map[string]bool
}

func newInterface() *Interface {
	return &Interface{instanceSet: make(map[string]bool), actionSet: make(map[string]bool)}
}

// DeclareInstance records instance name, once.
func (iface *Interface) DeclareInstance(name string) {
	if iface.instanceSet[name] {
		return
	}
	iface.instanceSet[name] = true
	iface.instances = append(iface.instances, name)
}

// DeclareExternalAction records action name, once.
func (iface *Interface) DeclareExternalAction(name string) {
	if iface.actionSet[name] {
		return
	}
	iface.actionSet[name] = true
	iface.externalActions = append(iface.externalActions, name)
}

// Instances returns declared instance names in declaration order.
func (iface *Interface) Instances() []string { return append([]string(nil), iface.instances...) }

// ExternalActions returns declared external action names in declaration
// order.
func (iface *Interface) ExternalActions() []string {
	return append([]string(nil), iface.externalActions...)
}

// Module is the root CFIR entity: one top-level Node per instance
// procedure, plus the mutex/label counters and the ABI Interface.
type Module struct {
	Procedures   map[string]Node
	procedureOrder []string
	Interface    *Interface

	nextMutex MutexID
	nextLabel LabelID
}

// NewModule returns an empty CFIR module.
func NewModule() *Module {
	return &Module{Procedures: make(map[string]Node), Interface: newInterface()}
}

// AddProcedure registers body as the top-level node for the instance
// named name.
func (m *Module) AddProcedure(name string, body Node) {
	if _, exists := m.Procedures[name]; !exists {
		m.procedureOrder = append(m.procedureOrder, name)
	}
	m.Procedures[name] = body
}

// ProcedureNames returns procedure names in the order they were added.
func (m *Module) ProcedureNames() []string { return append([]string(nil), m.procedureOrder...) }

// NewMutex allocates and returns the next dense MutexID.
func (m *Module) NewMutex() MutexID {
	id := m.nextMutex
	m.nextMutex++
	return id
}

// NewLabel allocates and returns the next dense LabelID.
func (m *Module) NewLabel() LabelID {
	id := m.nextLabel
	m.nextLabel++
	return id
}

// Mutexes returns every allocated MutexID in ascending order.
func (m *Module) Mutexes() []MutexID {
	out := make([]MutexID, m.nextMutex)
	for i := range out {
		out[i] = MutexID(i)
	}
	return out
}
