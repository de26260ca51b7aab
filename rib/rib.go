// Package rib holds the routing information base: the successor route per
// destination, as installed by the DUAL engine. Reads are safe from any
// goroutine so a forwarding plane can consult it directly.
package rib

import (
	"fmt"
	"net/netip"
	"strings"
	"sync"

	"github.com/gaissmai/bart"
	"github.com/pfa/go-eigrp/state"
)

type Entry struct {
	NextHop state.NodeId
	Metric  state.Metric
}

type Table struct {
	mu     sync.RWMutex
	routes bart.Table[Entry]
}

func New() *Table {
	return &Table{}
}

func (t *Table) InstallRoute(prefix netip.Prefix, nh state.NodeId, metric state.Metric) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes.Insert(prefix, Entry{NextHop: nh, Metric: metric})
}

func (t *Table) ModifyRoute(prefix netip.Prefix, metric state.Metric) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.routes.Get(prefix)
	if !ok {
		return
	}
	e.Metric = metric
	t.routes.Insert(prefix, e)
}

func (t *Table) WithdrawRoute(prefix netip.Prefix) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes.Delete(prefix)
}

// Lookup returns the longest-prefix matching route for addr.
func (t *Table) Lookup(addr netip.Addr) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.routes.Lookup(addr)
}

// Get returns the exact-prefix route.
func (t *Table) Get(prefix netip.Prefix) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.routes.Get(prefix)
}

func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.routes.Size()
}

func (t *Table) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var b strings.Builder
	for prefix, e := range t.routes.All() {
		fmt.Fprintf(&b, "%s via %s\n", prefix, e.NextHop)
	}
	return b.String()
}
