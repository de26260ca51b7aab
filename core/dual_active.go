package core

import (
	"github.com/pfa/go-eigrp/state"
)

// handleActiveUpdate is IE7: record the new reported distance, never touch
// the frozen computation.
func handleActiveUpdate(t *state.TopologyEntry, from state.NodeId, m state.Metric, k state.KValues) []Action {
	nr := t.MustNeighbour(from)
	if nr.Computed != m.Scalar(k) {
		t.UpdateNeighbour(from, m, k)
	}
	return noOp()
}

// handleActiveQuery covers IE5 and IE6 while a computation runs.
func handleActiveQuery(t *state.TopologyEntry, from state.NodeId, m state.Metric, k state.KValues) []Action {
	t.UpdateNeighbour(from, m, k)

	if from == t.OldSuccessor {
		// IE5: the old successor queries us mid-computation. Only Active0
		// moves (to Active2); in the other substates the redundant query
		// changes nothing and the machine self-loops.
		if t.State == state.Active0 {
			t.State = state.Active2
		}
		return noOp()
	}

	// IE6: a non-successor query gets the best currently known route; the
	// computation is unaffected.
	return []Action{{
		Kind:      SendReply,
		Neighbour: from,
		Prefix:    t.Prefix,
		Route:     currentRoute(t),
	}}
}
