package core

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pfa/go-eigrp/state"
)

// replyKey identifies one outstanding reply within one diffusing
// computation.
type replyKey struct {
	Prefix    netip.Prefix
	Neighbour state.NodeId
}

// DualEngine owns the topology table and routes inbound events to the
// per-destination state machines. All table access happens on the dispatch
// goroutine; events for different destinations are independent, events for
// the same destination are strictly serialized by the main loop.
type DualEngine struct {
	Rib       RouteTable
	Transport Transport

	// Table maps each destination to its topology entry.
	Table map[netip.Prefix]*state.TopologyEntry

	// replyWait bounds how long a computation waits for each neighbour.
	// Expiry is delivered back through the dispatch loop as a synthetic
	// link-down for the affected destination.
	replyWait *ttlcache.Cache[replyKey, struct{}]

	// queryDedup remembers the last reply sent to each asker so a
	// retransmitted identical query is answered from the cache instead of
	// running through the state machine again.
	queryDedup *ttlcache.Cache[replyKey, answeredQuery]
}

type answeredQuery struct {
	Query state.Metric
	Reply state.Metric
}

func (e *DualEngine) Init(s *state.State) error {
	s.Log.Debug("init dual engine")
	if e.Rib == nil || e.Transport == nil {
		return fmt.Errorf("dual engine requires a route table and a transport")
	}
	e.Table = make(map[netip.Prefix]*state.TopologyEntry)
	e.replyWait = ttlcache.New[replyKey, struct{}](
		ttlcache.WithTTL[replyKey, struct{}](s.LocalCfg.ActiveTimeout),
		ttlcache.WithDisableTouchOnHit[replyKey, struct{}](),
	)
	e.replyWait.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[replyKey, struct{}]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}
		key := item.Key()
		s.Dispatch(func(st *state.State) error {
			return e.replyTimeout(st, key)
		})
	})
	go e.replyWait.Start()
	e.queryDedup = ttlcache.New[replyKey, answeredQuery](
		ttlcache.WithTTL[replyKey, answeredQuery](state.QueryDedupTTL),
		ttlcache.WithDisableTouchOnHit[replyKey, answeredQuery](),
	)
	go e.queryDedup.Start()
	s.Env.RepeatTask(e.runGC, state.GcDelay)
	return nil
}

func (e *DualEngine) Cleanup(s *state.State) error {
	e.replyWait.Stop()
	e.queryDedup.Stop()
	return nil
}

// Entry returns the topology entry for prefix, creating it on first
// mention.
func (e *DualEngine) Entry(prefix netip.Prefix) *state.TopologyEntry {
	t, ok := e.Table[prefix]
	if !ok {
		t = state.NewTopologyEntry(prefix)
		e.Table[prefix] = t
	}
	return t
}

// HandleEvent is the single entry point for inbound protocol events. Must
// run on the dispatch goroutine.
func (e *DualEngine) HandleEvent(s *state.State, ev Event) error {
	k := s.KValues()

	if qe, ok := ev.(QueryEvent); ok {
		key := replyKey{Prefix: qe.Prefix, Neighbour: qe.Neighbour}
		if item := e.queryDedup.Get(key); item != nil && item.Value().Query == qe.Metric {
			s.Log.Debug("answering retransmitted query from cache",
				"neighbour", qe.Neighbour, "prefix", qe.Prefix)
			e.Transport.SendReply(qe.Neighbour, qe.Prefix, item.Value().Reply)
			return nil
		}
	}

	t := e.Entry(ev.Destination())

	// The state machine treats an unknown neighbour as a caller invariant
	// violation, so the record is materialized here before dispatch.
	if t.GetNeighbour(ev.Source()) == nil {
		t.AddNeighbour(ev.Source(), state.UnreachableMetric(), k)
	}

	wasActive := t.State.Active()
	var actions []Action
	switch ev := ev.(type) {
	case UpdateEvent:
		actions = HandleUpdate(t, ev.Neighbour, ev.Metric, k)
	case QueryEvent:
		actions = HandleQuery(t, ev.Neighbour, ev.Metric, k)
	case ReplyEvent:
		actions = HandleReply(t, ev.Neighbour, k)
	case LinkDownEvent:
		actions = HandleLinkDown(t, ev.Neighbour, k)
	case LinkMetricChangeEvent:
		actions = HandleLinkMetricChange(t, ev.Neighbour, ev.Metric, k)
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}

	telemetryObserveEvent(s, ev)
	e.execute(s, t, actions)
	e.syncReplyTimers(t, wasActive)

	// Only queries the machine answered are eligible for dedup; a query
	// that started or joined a computation must always reach the machine.
	if qe, ok := ev.(QueryEvent); ok {
		for _, a := range actions {
			if a.Kind == SendReply && a.Neighbour == qe.Neighbour {
				e.queryDedup.Set(replyKey{Prefix: qe.Prefix, Neighbour: qe.Neighbour},
					answeredQuery{Query: qe.Metric, Reply: a.Route}, ttlcache.DefaultTTL)
			}
		}
	}

	e.maybeDestroy(t)
	return nil
}

// DispatchEvent hands an event to the main loop from any goroutine.
func (e *DualEngine) DispatchEvent(env *state.Env, ev Event) {
	env.Dispatch(func(s *state.State) error {
		return e.HandleEvent(s, ev)
	})
}

// NeighbourDown fans the loss of an adjacency out to every destination the
// neighbour advertised.
func (e *DualEngine) NeighbourDown(s *state.State, neigh state.NodeId) error {
	for prefix, t := range e.Table {
		if t.GetNeighbour(neigh) == nil {
			continue
		}
		if err := e.HandleEvent(s, LinkDownEvent{Prefix: prefix, Neighbour: neigh}); err != nil {
			return err
		}
	}
	return nil
}

func (e *DualEngine) execute(s *state.State, t *state.TopologyEntry, actions []Action) {
	for _, a := range actions {
		s.Log.Debug("dual action", "prefix", t.Prefix, "action", a.String())
		telemetryObserveAction(s, a)
		switch a.Kind {
		case NoOp:
		case InstallSuccessor:
			e.Rib.InstallRoute(t.Prefix, a.Neighbour, t.MustNeighbour(a.Neighbour).Reported)
		case UninstallSuccessor:
			e.Rib.WithdrawRoute(t.Prefix)
		case ModifySuccessorRoute, SetMetric:
			e.Rib.ModifyRoute(t.Prefix, a.Route)
		case SendQuery:
			// While active our own distance is unreachable by definition.
			e.Transport.BroadcastQuery(a.Prefix, state.UnreachableMetric())
		case SendReply:
			e.Transport.SendReply(a.Neighbour, a.Prefix, a.Route)
		case SendUpdate:
			e.Transport.BroadcastUpdate(t.Prefix, a.Route)
		}
	}
}

// syncReplyTimers reconciles the reply-wait timers with the entry's state:
// every owed reply gets a deadline when a computation starts, and all
// timers for the destination die on any transition into passive.
func (e *DualEngine) syncReplyTimers(t *state.TopologyEntry, wasActive bool) {
	if t.State.Active() {
		if !wasActive {
			for _, id := range t.ReplyWaitSet() {
				e.replyWait.Set(replyKey{Prefix: t.Prefix, Neighbour: id}, struct{}{}, ttlcache.DefaultTTL)
			}
			return
		}
		// Drop timers for replies that have since come in.
		for id, nr := range t.Neighbours {
			if !nr.ReplyPending {
				e.replyWait.Delete(replyKey{Prefix: t.Prefix, Neighbour: id})
			}
		}
		return
	}
	for _, key := range e.replyWait.Keys() {
		if key.Prefix == t.Prefix {
			e.replyWait.Delete(key)
		}
	}
}

// replyTimeout presumes a neighbour dead after it sat on a query for the
// whole active timeout.
func (e *DualEngine) replyTimeout(s *state.State, key replyKey) error {
	t, ok := e.Table[key.Prefix]
	if !ok || !t.State.Active() {
		// Stale timer against a quiescent entry.
		return nil
	}
	nr := t.GetNeighbour(key.Neighbour)
	if nr == nil || !nr.ReplyPending {
		return nil
	}
	s.Log.Warn("neighbour did not reply within the active timeout, presuming dead",
		"neighbour", key.Neighbour, "prefix", key.Prefix)
	telemetryObserveReplyTimeout(s)
	return e.HandleEvent(s, LinkDownEvent{Prefix: key.Prefix, Neighbour: key.Neighbour})
}

// runGC prunes unreachable passive records and destroys entries that have
// no neighbours and no route left.
func (e *DualEngine) runGC(s *state.State) error {
	for prefix, t := range e.Table {
		if t.State != state.Passive {
			continue
		}
		for id, nr := range t.Neighbours {
			if !nr.Reachable() && id != t.Successor {
				t.RemoveNeighbour(id)
			}
		}
		if len(t.Neighbours) == 0 && !t.Reachable() {
			delete(e.Table, prefix)
		}
	}
	telemetrySetActiveDestinations(s, e.countActive())
	return nil
}

func (e *DualEngine) maybeDestroy(t *state.TopologyEntry) {
	if t.State == state.Passive && len(t.Neighbours) == 0 && !t.Reachable() {
		delete(e.Table, t.Prefix)
	}
}

func (e *DualEngine) countActive() int {
	n := 0
	for _, t := range e.Table {
		if t.State.Active() {
			n++
		}
	}
	return n
}

// DumpTopology renders the table for the admin endpoint.
func (e *DualEngine) DumpTopology() string {
	out := ""
	for _, t := range e.Table {
		out += t.String() + "\n"
	}
	return out
}
