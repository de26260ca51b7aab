package state

import (
	"net/netip"
	"testing"
)

func testPrefix() netip.Prefix {
	return netip.MustParsePrefix("10.1.0.0/16")
}

// delayMetric yields a vector whose scalar under k1=0,k3=1 is 256*d.
func delayMetric(d uint32) Metric {
	return Metric{Bandwidth: 0, Delay: d}
}

var testK = KValues{K3: 1}

func TestFeasibleSuccessor(t *testing.T) {
	e := NewTopologyEntry(testPrefix())
	e.AddNeighbour("n1", delayMetric(10), testK)
	e.InstallSuccessor("n1")
	if e.Fd != delayMetric(10).Scalar(testK) {
		t.Fatalf("Fd = %d after install", e.Fd)
	}

	// n2 fails the feasibility condition, n3 passes it.
	e.AddNeighbour("n2", delayMetric(50), testK)
	e.AddNeighbour("n3", delayMetric(5), testK)

	fs, ok := e.FeasibleSuccessor()
	if !ok || fs != "n3" {
		t.Errorf("FeasibleSuccessor() = %s, want n3", fs)
	}

	e.RemoveNeighbour("n3")
	if _, ok := e.FeasibleSuccessor(); ok {
		t.Error("n2 must not be feasible, its distance is above Fd")
	}
}

func TestFeasibleSuccessorTieBreak(t *testing.T) {
	e := NewTopologyEntry(testPrefix())
	e.AddNeighbour("succ", delayMetric(100), testK)
	e.InstallSuccessor("succ")
	e.AddNeighbour("bb", delayMetric(7), testK)
	e.AddNeighbour("aa", delayMetric(7), testK)

	fs, ok := e.FeasibleSuccessor()
	if !ok || fs != "aa" {
		t.Errorf("FeasibleSuccessor() = %s, want aa (lower id wins ties)", fs)
	}
}

func TestFeasibilityConditionHolds(t *testing.T) {
	e := NewTopologyEntry(testPrefix())
	e.AddNeighbour("n1", delayMetric(20), testK)
	e.InstallSuccessor("n1")
	e.AddNeighbour("n2", delayMetric(19), testK)
	e.AddNeighbour("n3", delayMetric(21), testK)

	if fs, ok := e.FeasibleSuccessor(); ok {
		if e.MustNeighbour(fs).Computed >= e.Fd {
			t.Errorf("feasibility condition violated: %d >= %d", e.MustNeighbour(fs).Computed, e.Fd)
		}
	}
}

func TestNoSuccessorWhileUnreachable(t *testing.T) {
	e := NewTopologyEntry(testPrefix())
	if e.Reachable() {
		t.Error("fresh entry must be unreachable")
	}
	if e.Successor != NoSuccessor {
		t.Error("fresh entry must have no successor")
	}
	if _, ok := e.BestRoute(); ok {
		t.Error("entry with no neighbours must have no best route")
	}

	e.AddNeighbour("n1", UnreachableMetric(), testK)
	if _, ok := e.BestRoute(); ok {
		t.Error("unreachable record must not be a best route")
	}
}

func TestReplyWaitSet(t *testing.T) {
	e := NewTopologyEntry(testPrefix())
	e.AddNeighbour("n2", delayMetric(1), testK)
	e.AddNeighbour("n1", delayMetric(2), testK)
	if !e.AllRepliesReceived() {
		t.Fatal("no pending replies expected")
	}

	for _, nr := range e.Neighbours {
		nr.ReplyPending = true
	}
	got := e.ReplyWaitSet()
	if len(got) != 2 || got[0] != "n1" || got[1] != "n2" {
		t.Errorf("ReplyWaitSet() = %v, want [n1 n2]", got)
	}

	e.MustNeighbour("n1").ReplyPending = false
	if e.AllRepliesReceived() {
		t.Error("n2 still owes a reply")
	}
	e.MustNeighbour("n2").ReplyPending = false
	if !e.AllRepliesReceived() {
		t.Error("all replies are in")
	}
}

func TestInstallLowersFdOnly(t *testing.T) {
	e := NewTopologyEntry(testPrefix())
	e.AddNeighbour("n1", delayMetric(10), testK)
	e.InstallSuccessor("n1")
	fd := e.Fd

	// Installing a closer successor lowers Fd, a farther one never raises it.
	e.AddNeighbour("n2", delayMetric(50), testK)
	e.InstallSuccessor("n2")
	if e.Fd != fd {
		t.Errorf("Fd rose to %d while passive", e.Fd)
	}
	e.AddNeighbour("n3", delayMetric(1), testK)
	e.InstallSuccessor("n3")
	if e.Fd >= fd {
		t.Errorf("Fd = %d, expected a decrease", e.Fd)
	}

	e.UninstallSuccessor()
	if e.Successor != NoSuccessor {
		t.Error("uninstall must clear the successor")
	}
}

func TestMustNeighbourPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("an unknown neighbour is a caller invariant violation")
		}
	}()
	NewTopologyEntry(testPrefix()).MustNeighbour("ghost")
}
