package core

import (
	"fmt"
	"net/netip"

	"github.com/pfa/go-eigrp/state"
)

type ActionKind int

// Output actions requested by the DUAL state machine. The state machine
// never performs I/O; the engine executes these against the route table and
// the transport.
const (
	NoOp ActionKind = iota
	InstallSuccessor
	UninstallSuccessor
	ModifySuccessorRoute
	SendQuery
	SendReply
	SetMetric
	SendUpdate
)

func (k ActionKind) String() string {
	switch k {
	case NoOp:
		return "NO_OP"
	case InstallSuccessor:
		return "INSTALL_SUCCESSOR"
	case UninstallSuccessor:
		return "UNINSTALL_SUCCESSOR"
	case ModifySuccessorRoute:
		return "MODIFY_SUCCESSOR_ROUTE"
	case SendQuery:
		return "SEND_QUERY"
	case SendReply:
		return "SEND_REPLY"
	case SetMetric:
		return "SET_METRIC"
	case SendUpdate:
		return "SEND_UPDATE"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is one requested effect, carrying just enough data for the
// executing collaborator and nothing of DUAL's internal state.
type Action struct {
	Kind      ActionKind
	Neighbour state.NodeId // InstallSuccessor, SendReply
	Prefix    netip.Prefix // SendQuery, SendReply
	Route     state.Metric // ModifySuccessorRoute, SendReply, SetMetric, SendUpdate
}

func (a Action) String() string {
	switch a.Kind {
	case InstallSuccessor:
		return fmt.Sprintf("%s %s", a.Kind, a.Neighbour)
	case SendQuery:
		return fmt.Sprintf("%s %s", a.Kind, a.Prefix)
	case SendReply:
		return fmt.Sprintf("%s %s %s", a.Kind, a.Prefix, a.Neighbour)
	}
	return a.Kind.String()
}

// noOp is the canonical empty result. Handlers never return an empty list;
// absence of effect is represented explicitly.
func noOp() []Action {
	return []Action{{Kind: NoOp}}
}
