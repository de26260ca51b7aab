package core

// This file implements the DUAL finite state machine described in the
// informational EIGRP draft:
// https://datatracker.ietf.org/doc/html/draft-savage-eigrp-01
//
// Each destination runs one instance of the machine over its TopologyEntry.
// Handlers are pure: they mutate the entry and return the list of output
// actions for the engine to execute. Input events IE1..IE16 follow the
// draft's numbering; the self-loop events (IE6/IE7/IE8) are the default for
// anything not clearly matching the transition table.

import (
	"github.com/pfa/go-eigrp/state"
)

// HandleUpdate processes a route advertisement from a neighbour.
func HandleUpdate(t *state.TopologyEntry, from state.NodeId, m state.Metric, k state.KValues) []Action {
	if t.State == state.Passive {
		return handlePassiveUpdate(t, from, m, k)
	}
	return handleActiveUpdate(t, from, m, k)
}

// HandleQuery processes a query from a neighbour that lost its route.
func HandleQuery(t *state.TopologyEntry, from state.NodeId, m state.Metric, k state.KValues) []Action {
	if t.State == state.Passive {
		return handlePassiveQuery(t, from, m, k)
	}
	return handleActiveQuery(t, from, m, k)
}

// HandleReply processes a reply to an outstanding query. Unexpected replies
// while passive are ignored.
func HandleReply(t *state.TopologyEntry, from state.NodeId, k state.KValues) []Action {
	if t.State == state.Passive {
		return noOp()
	}
	// IE8: clear the neighbour's reply flag.
	nr := t.MustNeighbour(from)
	nr.ReplyPending = false
	if t.AllRepliesReceived() {
		return receivedLastReply(t, k)
	}
	return noOp()
}

// HandleLinkDown processes the loss of an adjacency. While active this
// doubles as an implicit reply carrying an unreachable metric.
func HandleLinkDown(t *state.TopologyEntry, from state.NodeId, k state.KValues) []Action {
	nr := t.MustNeighbour(from)
	if t.State == state.Passive {
		t.RemoveNeighbour(from)
		if from == t.Successor {
			return successorLost(t, k)
		}
		return noOp()
	}

	owed := nr.ReplyPending
	t.RemoveNeighbour(from)
	if from == t.OldSuccessor {
		// The neighbour waiting on our computation is gone, so no reply is
		// owed on completion. IE9 (self-origin group) / IE10 (upstream
		// group) drop to the first substate.
		switch t.State {
		case state.Active1:
			t.State = state.Active0
		case state.Active3:
			t.State = state.Active2
		}
		t.OldSuccessor = state.NoSuccessor
	}
	if owed && t.AllRepliesReceived() {
		return receivedLastReply(t, k)
	}
	return noOp()
}

// HandleLinkMetricChange processes a local cost change on the link to a
// neighbour.
func HandleLinkMetricChange(t *state.TopologyEntry, from state.NodeId, m state.Metric, k state.KValues) []Action {
	if t.State == state.Passive {
		// Same bookkeeping as an update; on the installed path the route is
		// modified in place rather than re-advertised as a metric change.
		actions := handlePassiveUpdate(t, from, m, k)
		for i := range actions {
			if actions[i].Kind == SetMetric {
				actions[i].Kind = ModifySuccessorRoute
			}
		}
		return actions
	}

	nr := t.MustNeighbour(from)
	old := nr.Computed
	t.UpdateNeighbour(from, m, k)
	if from == t.OldSuccessor && nr.Computed > old {
		// A second triggering condition mid-computation sets the
		// query-origin flag: IE11 / IE12.
		switch t.State {
		case state.Active0:
			t.State = state.Active1
		case state.Active2:
			t.State = state.Active3
		}
	}
	return noOp()
}

// beginDiffusing enters the given active substate: the feasible distance
// stays frozen, the successor is dropped, every current neighbour owes a
// reply, and a query goes out to all of them. If there is nobody to wait
// for, the computation concludes in the same step.
func beginDiffusing(t *state.TopologyEntry, to state.DualState, k state.KValues) []Action {
	t.State = to
	t.OldSuccessor = t.Successor
	t.UninstallSuccessor()
	for _, nr := range t.Neighbours {
		nr.ReplyPending = true
	}
	actions := []Action{
		{Kind: SendQuery, Prefix: t.Prefix},
		{Kind: UninstallSuccessor},
	}
	if t.AllRepliesReceived() {
		actions = append(actions, receivedLastReply(t, k)...)
	}
	return actions
}

// receivedLastReply applies the completion rule, uniform across
// IE13/IE14/IE15/IE16: the new feasible distance is the minimum computed
// distance over the remaining records (loop-free, since every neighbour has
// committed to not routing through us for the duration), the neighbour
// achieving it becomes successor, and with no neighbours left the
// destination goes unreachable and the route is withdrawn.
func receivedLastReply(t *state.TopologyEntry, k state.KValues) []Action {
	prev := t.State
	old := t.OldSuccessor
	t.State = state.Passive
	t.OldSuccessor = state.NoSuccessor

	var actions []Action
	if best, ok := t.BestRoute(); ok {
		t.Fd = t.MustNeighbour(best).Computed
		t.Successor = best
		route := t.MustNeighbour(best).Reported
		actions = append(actions,
			Action{Kind: InstallSuccessor, Neighbour: best},
			Action{Kind: SendUpdate, Route: route},
		)
	} else {
		t.Fd = state.MetricInf
		t.Successor = state.NoSuccessor
		actions = append(actions, Action{Kind: SendUpdate, Route: state.UnreachableMetric()})
	}

	// Active3 answers the upstream query that started the computation;
	// Active1 answers the one that arrived mid-computation, but only if
	// that adjacency still exists. Active0 owes nobody, and Active2 was
	// released by the upstream side already.
	owesReply := prev == state.Active3 || (prev == state.Active1 && t.GetNeighbour(old) != nil)
	if owesReply && old != state.NoSuccessor {
		actions = append(actions, Action{
			Kind:      SendReply,
			Neighbour: old,
			Prefix:    t.Prefix,
			Route:     currentRoute(t),
		})
	}
	return actions
}

// successorLost handles the installed route disappearing while passive:
// IE2 when a feasible successor exists, IE4 (enter Active1) when none does.
func successorLost(t *state.TopologyEntry, k state.KValues) []Action {
	if fs, ok := t.FeasibleSuccessor(); ok {
		t.InstallSuccessor(fs)
		return []Action{
			{Kind: InstallSuccessor, Neighbour: fs},
			{Kind: SendUpdate, Route: t.MustNeighbour(fs).Reported},
		}
	}
	return beginDiffusing(t, state.Active1, k)
}

// currentRoute is the metric this router would advertise right now: the
// successor's reported vector while one is installed, otherwise the best
// reachable record, otherwise unreachable.
func currentRoute(t *state.TopologyEntry) state.Metric {
	if t.Successor != state.NoSuccessor {
		return t.MustNeighbour(t.Successor).Reported
	}
	if best, ok := t.BestRoute(); ok {
		return t.MustNeighbour(best).Reported
	}
	return state.UnreachableMetric()
}
