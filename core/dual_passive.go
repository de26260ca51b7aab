package core

import (
	"github.com/pfa/go-eigrp/state"
)

// handlePassiveUpdate covers IE2 and IE4 plus the passive self-loops.
func handlePassiveUpdate(t *state.TopologyEntry, from state.NodeId, m state.Metric, k state.KValues) []Action {
	nr := t.MustNeighbour(from)

	if from == t.Successor {
		if nr.Computed == m.Scalar(k) {
			// Metric unchanged, nothing to do.
			return noOp()
		}
		if !m.Reachable() {
			// The successor withdrew the route; its record goes away.
			t.RemoveNeighbour(from)
			return successorLost(t, k)
		}
		// Still reachable, metric changed: record it and re-advertise.
		t.UpdateNeighbour(from, m, k)
		if nr.Computed < t.Fd {
			t.Fd = nr.Computed
		}
		return []Action{
			{Kind: SetMetric, Route: m},
			{Kind: SendUpdate, Route: m},
		}
	}

	// Update from a non-successor.
	if !m.Reachable() {
		t.RemoveNeighbour(from)
		return noOp()
	}
	t.UpdateNeighbour(from, m, k)
	if t.Successor == state.NoSuccessor {
		t.InstallSuccessor(from)
		return []Action{{Kind: InstallSuccessor, Neighbour: from}}
	}
	return noOp()
}

// handlePassiveQuery covers IE1 and IE3.
func handlePassiveQuery(t *state.TopologyEntry, from state.NodeId, m state.Metric, k state.KValues) []Action {
	t.UpdateNeighbour(from, m, k)

	if from == t.Successor {
		fs, ok := t.FeasibleSuccessor()
		if !ok {
			// IE3: no safe fallback, a diffusing computation starts on
			// behalf of the upstream query.
			return beginDiffusing(t, state.Active3, k)
		}
		// IE1: a feasible successor keeps us passive. If the querying
		// successor's own path is no longer usable, fall back onto the
		// feasible successor before answering.
		var actions []Action
		snr := t.MustNeighbour(from)
		if !snr.Reachable() || snr.Computed > t.Fd {
			t.InstallSuccessor(fs)
			actions = append(actions, Action{Kind: InstallSuccessor, Neighbour: fs})
		}
		return append(actions, Action{
			Kind:      SendReply,
			Neighbour: from,
			Prefix:    t.Prefix,
			Route:     currentRoute(t),
		})
	}

	// IE1: query from a non-successor, answer with the current route.
	return []Action{{
		Kind:      SendReply,
		Neighbour: from,
		Prefix:    t.Prefix,
		Route:     currentRoute(t),
	}}
}
