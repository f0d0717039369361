package reach

import "github.com/viant/racegen/rhir"

// Dominators computes, for every block reachable from entry, the set of
// blocks that dominate it (every block on every path from entry to it,
// including itself). Standard iterative fixpoint: Dom(entry) = {entry},
// Dom(n) = {n} U (intersection of Dom(p) for every predecessor p of n).
//
// Not called by CFIR construction, nor by any package outside reach —
// it supports the rollback-label dominance property listed in
// SPEC_FULL.md §13 item 9, which no test checks. The constructor allocates a
// rollback label immediately before the branch it guards, which
// trivially dominates every block inside that branch's arms.
type Dominators struct {
	dom map[rhir.Ref]map[rhir.Ref]bool
}

// Dominates reports whether a dominates b (a == b counts as dominating).
func (d *Dominators) Dominates(a, b rhir.Ref) bool {
	set, ok := d.dom[b]
	if !ok {
		return false
	}
	return set[a]
}

// Compute builds the dominator sets for every block reachable from
// entry in cf.
func Compute(cf *rhir.ControlFlow, entry rhir.Ref) *Dominators {
	reachable := BlockRefs(cf, entry)

	all := make(map[rhir.Ref]bool, len(reachable))
	for ref := range reachable {
		all[ref] = true
	}

	dom := make(map[rhir.Ref]map[rhir.Ref]bool, len(reachable))
	dom[entry] = map[rhir.Ref]bool{entry: true}
	for ref := range reachable {
		if ref == entry {
			continue
		}
		dom[ref] = cloneSet(all)
	}

	changed := true
	for changed {
		changed = false
		for ref := range reachable {
			if ref == entry {
				continue
			}
			preds := cf.EdgesTo(ref)
			var intersection map[rhir.Ref]bool
			for _, pred := range preds {
				predDom, ok := dom[pred]
				if !ok {
					continue
				}
				if intersection == nil {
					intersection = cloneSet(predDom)
					continue
				}
				for k := range intersection {
					if !predDom[k] {
						delete(intersection, k)
					}
				}
			}
			if intersection == nil {
				intersection = make(map[rhir.Ref]bool)
			}
			intersection[ref] = true

			if !setsEqual(intersection, dom[ref]) {
				dom[ref] = intersection
				changed = true
			}
		}
	}

	return &Dominators{dom: dom}
}

func cloneSet(s map[rhir.Ref]bool) map[rhir.Ref]bool {
	out := make(map[rhir.Ref]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func setsEqual(a, b map[rhir.Ref]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
