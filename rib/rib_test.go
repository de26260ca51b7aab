package rib

import (
	"net/netip"
	"testing"

	"github.com/pfa/go-eigrp/state"
	"github.com/stretchr/testify/assert"
)

func TestInstallAndLookup(t *testing.T) {
	r := New()
	r.InstallRoute(netip.MustParsePrefix("10.1.0.0/16"), "n1", state.Metric{Delay: 10})
	r.InstallRoute(netip.MustParsePrefix("10.1.2.0/24"), "n2", state.Metric{Delay: 20})

	e, ok := r.Lookup(netip.MustParseAddr("10.1.2.3"))
	assert.True(t, ok)
	assert.Equal(t, state.NodeId("n2"), e.NextHop, "longest prefix wins")

	e, ok = r.Lookup(netip.MustParseAddr("10.1.9.9"))
	assert.True(t, ok)
	assert.Equal(t, state.NodeId("n1"), e.NextHop)

	_, ok = r.Lookup(netip.MustParseAddr("192.168.0.1"))
	assert.False(t, ok)
	assert.Equal(t, 2, r.Size())
}

func TestModifyKeepsNextHop(t *testing.T) {
	r := New()
	p := netip.MustParsePrefix("10.1.0.0/16")
	r.InstallRoute(p, "n1", state.Metric{Delay: 10})

	r.ModifyRoute(p, state.Metric{Delay: 30})

	e, ok := r.Get(p)
	assert.True(t, ok)
	assert.Equal(t, state.NodeId("n1"), e.NextHop)
	assert.Equal(t, uint32(30), e.Metric.Delay)

	// Modifying an absent prefix must not create it.
	r.ModifyRoute(netip.MustParsePrefix("10.2.0.0/16"), state.Metric{Delay: 5})
	assert.Equal(t, 1, r.Size())
}

func TestWithdraw(t *testing.T) {
	r := New()
	p := netip.MustParsePrefix("10.1.0.0/16")
	r.InstallRoute(p, "n1", state.Metric{Delay: 10})
	r.WithdrawRoute(p)

	_, ok := r.Get(p)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Size())

	// Withdrawing twice is harmless.
	r.WithdrawRoute(p)
}

func TestReinstallReplaces(t *testing.T) {
	r := New()
	p := netip.MustParsePrefix("10.1.0.0/16")
	r.InstallRoute(p, "n1", state.Metric{Delay: 10})
	r.InstallRoute(p, "n2", state.Metric{Delay: 5})

	e, _ := r.Get(p)
	assert.Equal(t, state.NodeId("n2"), e.NextHop)
	assert.Equal(t, 1, r.Size())
}
