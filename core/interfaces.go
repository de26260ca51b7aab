package core

import (
	"log/slog"
	"net/netip"

	"github.com/pfa/go-eigrp/state"
)

// RouteTable is the RIB boundary. The engine installs, modifies and
// withdraws the successor route for a destination; the implementation owns
// any interaction with the forwarding plane.
type RouteTable interface {
	InstallRoute(prefix netip.Prefix, nh state.NodeId, metric state.Metric)
	ModifyRoute(prefix netip.Prefix, metric state.Metric)
	WithdrawRoute(prefix netip.Prefix)
}

// Transport is the packet-sending boundary. Framing, reliable delivery and
// retransmission live behind it.
type Transport interface {
	BroadcastQuery(prefix netip.Prefix, metric state.Metric)
	SendReply(neigh state.NodeId, prefix netip.Prefix, metric state.Metric)
	BroadcastUpdate(prefix netip.Prefix, metric state.Metric)
}

// Event is an inbound protocol event scoped to one destination. The
// transport and neighbour-discovery collaborators deliver these already
// authenticated and well-formed.
type Event interface {
	Destination() netip.Prefix
	Source() state.NodeId
}

type UpdateEvent struct {
	Prefix    netip.Prefix
	Neighbour state.NodeId
	Metric    state.Metric
}

type QueryEvent struct {
	Prefix    netip.Prefix
	Neighbour state.NodeId
	Metric    state.Metric
}

type ReplyEvent struct {
	Prefix    netip.Prefix
	Neighbour state.NodeId
}

type LinkDownEvent struct {
	Prefix    netip.Prefix
	Neighbour state.NodeId
}

type LinkMetricChangeEvent struct {
	Prefix    netip.Prefix
	Neighbour state.NodeId
	Metric    state.Metric
}

func (e UpdateEvent) Destination() netip.Prefix           { return e.Prefix }
func (e UpdateEvent) Source() state.NodeId                { return e.Neighbour }
func (e QueryEvent) Destination() netip.Prefix            { return e.Prefix }
func (e QueryEvent) Source() state.NodeId                 { return e.Neighbour }
func (e ReplyEvent) Destination() netip.Prefix            { return e.Prefix }
func (e ReplyEvent) Source() state.NodeId                 { return e.Neighbour }
func (e LinkDownEvent) Destination() netip.Prefix         { return e.Prefix }
func (e LinkDownEvent) Source() state.NodeId              { return e.Neighbour }
func (e LinkMetricChangeEvent) Destination() netip.Prefix { return e.Prefix }
func (e LinkMetricChangeEvent) Source() state.NodeId      { return e.Neighbour }

// LogTransport records outbound packets to the log. It stands in until a
// reliable transport is attached to the daemon.
type LogTransport struct {
	Log *slog.Logger
}

func (t *LogTransport) BroadcastQuery(prefix netip.Prefix, metric state.Metric) {
	t.Log.Info("broadcast query", "prefix", prefix)
}

func (t *LogTransport) SendReply(neigh state.NodeId, prefix netip.Prefix, metric state.Metric) {
	t.Log.Info("send reply", "to", neigh, "prefix", prefix, "reachable", metric.Reachable())
}

func (t *LogTransport) BroadcastUpdate(prefix netip.Prefix, metric state.Metric) {
	t.Log.Info("broadcast update", "prefix", prefix, "reachable", metric.Reachable())
}
