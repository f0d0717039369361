package translate

import (
	"github.com/viant/racegen/rhir"
	"github.com/viant/racegen/stir"
)

// blockKey identifies one (instance,block) pair.
type blockKey struct {
	Instance rhir.Ref
	Block    rhir.Ref
}

// Mapping records, for every STIR node the translator allocates for a
// control-flow block, which (instance,block) pair it stands for. The
// per-instance entry/exit nodes are never entered here — they have no
// corresponding RHIR block.
type Mapping struct {
	toRH map[stir.NodeID]blockKey
}

func newMapping() *Mapping { return &Mapping{toRH: make(map[stir.NodeID]blockKey)} }

func (m *Mapping) mapTo(node stir.NodeID, instance, block rhir.Ref) {
	m.toRH[node] = blockKey{Instance: instance, Block: block}
}

// Lookup returns the (instance,block) pair node stands for, if any. The
// checker's CSV ingestion (checker.IngestCSV, feeding package mutex) drops any
// row naming a node absent here, by design (spec.md §7).
func (m *Mapping) Lookup(node stir.NodeID) (instance, block rhir.Ref, ok bool) {
	v, ok := m.toRH[node]
	if !ok {
		return rhir.Ref{}, rhir.Ref{}, false
	}
	return v.Instance, v.Block, true
}

// Len reports the number of mapped nodes.
func (m *Mapping) Len() int { return len(m.toRH) }
