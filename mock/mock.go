// Package mock provides recording collaborators for the DUAL engine so the
// core can be exercised without a network or a forwarding plane.
package mock

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pfa/go-eigrp/state"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// Harness implements core.RouteTable and core.Transport by recording every
// call.
type Harness struct {
	mu      sync.Mutex
	actions []HarnessEvent
}

func (h *Harness) record(msg string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, MakeEvent(msg, args...))
}

func (h *Harness) InstallRoute(prefix netip.Prefix, nh state.NodeId, metric state.Metric) {
	h.record("INSTALL_ROUTE", prefix, nh)
}

func (h *Harness) ModifyRoute(prefix netip.Prefix, metric state.Metric) {
	h.record("MODIFY_ROUTE", prefix)
}

func (h *Harness) WithdrawRoute(prefix netip.Prefix) {
	h.record("WITHDRAW_ROUTE", prefix)
}

func (h *Harness) BroadcastQuery(prefix netip.Prefix, metric state.Metric) {
	h.record("BROADCAST_QUERY", prefix)
}

func (h *Harness) SendReply(neigh state.NodeId, prefix netip.Prefix, metric state.Metric) {
	h.record("SEND_REPLY", prefix, neigh, metric.Reachable())
}

func (h *Harness) BroadcastUpdate(prefix netip.Prefix, metric state.Metric) {
	h.record("BROADCAST_UPDATE", prefix, metric.Reachable())
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

// GetActions returns and clears the recorded calls.
func (h *Harness) GetActions() HarnessEvents {
	h.mu.Lock()
	defer h.mu.Unlock()
	x := HarnessEvents(h.actions)
	h.actions = nil
	return x
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message != msg {
			continue
		}
		if len(event.Args) < len(args) {
			continue
		}
		match := true
		for i, arg := range args {
			if !cmp.Equal(event.Args[i], arg, cmpopts.EquateComparable(netip.Prefix{})) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}
