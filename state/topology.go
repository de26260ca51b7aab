package state

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
	"strings"
)

type NodeId string

// NoSuccessor marks a destination with no usable next hop.
const NoSuccessor = NodeId("")

// DualState is the per-destination DUAL state. Passive is the sole stable
// state; the four active substates track which side originated the running
// diffusing computation (self vs upstream query) and whether a redundant
// query arrived mid-computation.
type DualState int

const (
	Passive DualState = iota
	Active0
	Active1
	Active2
	Active3
)

func (s DualState) Active() bool {
	return s != Passive
}

func (s DualState) String() string {
	switch s {
	case Passive:
		return "Passive"
	case Active0, Active1, Active2, Active3:
		return fmt.Sprintf("Active%d", int(s)-1)
	}
	return fmt.Sprintf("DualState(%d)", int(s))
}

// NeighbourRoute is one neighbour's advertised route for a destination.
// Mutated only through the owning TopologyEntry.
type NeighbourRoute struct {
	// Reported is the distance as advertised by the neighbour itself.
	Reported Metric
	// Computed is the scalar of Reported under the K snapshot at the last
	// recompute.
	Computed uint64
	// ReplyPending is set while the neighbour owes a reply to the running
	// diffusing computation.
	ReplyPending bool
}

func (n *NeighbourRoute) Reachable() bool {
	return n.Reported.Reachable()
}

// TopologyEntry is the per-destination topology table: every neighbour's
// advertised route, the feasible distance, the current successor and the
// DUAL state. Its methods are invariant-preserving primitives and perform
// no I/O.
type TopologyEntry struct {
	Prefix     netip.Prefix
	Neighbours map[NodeId]*NeighbourRoute
	// Fd is the feasible distance: the best scalar distance this router has
	// advertised for the destination while passive. Frozen for the duration
	// of an active computation and only recomputed when one concludes.
	Fd        uint64
	Successor NodeId
	// OldSuccessor is the successor at the moment the running computation
	// started; completion replies are addressed to it.
	OldSuccessor NodeId
	State        DualState
}

func NewTopologyEntry(prefix netip.Prefix) *TopologyEntry {
	return &TopologyEntry{
		Prefix:     prefix,
		Neighbours: make(map[NodeId]*NeighbourRoute),
		Fd:         MetricInf,
		Successor:  NoSuccessor,
	}
}

func (t *TopologyEntry) AddNeighbour(id NodeId, m Metric, k KValues) {
	t.Neighbours[id] = &NeighbourRoute{
		Reported: m,
		Computed: m.Scalar(k),
	}
}

// UpdateNeighbour records a new reported distance and recomputes the scalar.
// The record must exist; routing an event for an unknown neighbour is a
// caller invariant violation.
func (t *TopologyEntry) UpdateNeighbour(id NodeId, m Metric, k KValues) {
	nr := t.MustNeighbour(id)
	nr.Reported = m
	nr.Computed = m.Scalar(k)
}

func (t *TopologyEntry) GetNeighbour(id NodeId) *NeighbourRoute {
	return t.Neighbours[id]
}

func (t *TopologyEntry) MustNeighbour(id NodeId) *NeighbourRoute {
	nr := t.Neighbours[id]
	if nr == nil {
		panic(fmt.Sprintf("no record for neighbour %s on %s", id, t.Prefix))
	}
	return nr
}

func (t *TopologyEntry) RemoveNeighbour(id NodeId) {
	delete(t.Neighbours, id)
}

// FeasibleSuccessor returns the reachable non-successor neighbour with the
// lowest computed distance among those satisfying the feasibility condition
// (reported scalar strictly below Fd). Ties break on the lower NodeId.
func (t *TopologyEntry) FeasibleSuccessor() (NodeId, bool) {
	best := NoSuccessor
	bestDist := MetricInf
	for id, nr := range t.Neighbours {
		if id == t.Successor || !nr.Reachable() {
			continue
		}
		if nr.Computed >= t.Fd {
			continue
		}
		if nr.Computed < bestDist || (nr.Computed == bestDist && id < best) {
			best = id
			bestDist = nr.Computed
		}
	}
	return best, best != NoSuccessor
}

// BestRoute returns the reachable neighbour with the lowest computed
// distance regardless of feasibility. Ties break on the lower NodeId.
func (t *TopologyEntry) BestRoute() (NodeId, bool) {
	best := NoSuccessor
	bestDist := MetricInf
	for id, nr := range t.Neighbours {
		if !nr.Reachable() {
			continue
		}
		if nr.Computed < bestDist || (nr.Computed == bestDist && id < best) {
			best = id
			bestDist = nr.Computed
		}
	}
	return best, best != NoSuccessor
}

// InstallSuccessor makes id the successor. Fd only ever decreases here;
// increasing it is reserved for the completion of a diffusing computation.
func (t *TopologyEntry) InstallSuccessor(id NodeId) {
	nr := t.MustNeighbour(id)
	t.Successor = id
	if nr.Computed < t.Fd {
		t.Fd = nr.Computed
	}
}

func (t *TopologyEntry) UninstallSuccessor() {
	t.Successor = NoSuccessor
}

func (t *TopologyEntry) AllRepliesReceived() bool {
	for _, nr := range t.Neighbours {
		if nr.ReplyPending {
			return false
		}
	}
	return true
}

// ReplyWaitSet lists the neighbours still owing a reply, sorted for
// deterministic output.
func (t *TopologyEntry) ReplyWaitSet() []NodeId {
	var waiting []NodeId
	for id, nr := range t.Neighbours {
		if nr.ReplyPending {
			waiting = append(waiting, id)
		}
	}
	slices.Sort(waiting)
	return waiting
}

// Reachable reports whether the destination currently has a successor.
func (t *TopologyEntry) Reachable() bool {
	return t.Successor != NoSuccessor
}

func (t *TopologyEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s state=%s fd=%d successor=%s", t.Prefix, t.State, t.Fd, t.Successor)
	for _, id := range slices.Sorted(maps.Keys(t.Neighbours)) {
		nr := t.Neighbours[id]
		fmt.Fprintf(&b, "\n  %s computed=%d reachable=%v pending=%v", id, nr.Computed, nr.Reachable(), nr.ReplyPending)
	}
	return b.String()
}
