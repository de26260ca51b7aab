package state

import "time"

const (
	// MetricInf is the scalar distance of an unreachable route.
	MetricInf = ^uint64(0)
	// DelayUnreachable is the reserved delay value that marks a metric vector
	// as unreachable on the wire.
	DelayUnreachable = ^uint32(0)

	// BandwidthScale is the classic EIGRP bandwidth scaling constant,
	// 10^7 (expressed in kbit/s) multiplied by 256.
	BandwidthScale = uint64(256) * 10_000_000
	// DelayScale converts wire delay (tens of microseconds) into scalar units.
	DelayScale = uint64(256)
)

var (
	DefaultHelloInterval = time.Second * 5
	// HoldTimeMultiplier scales the hello interval into the advertised hold
	// time. The hold time must fit in a 16 bit field, which bounds the
	// configurable hello interval.
	HoldTimeMultiplier = 3
	MaxHoldTime        = 65535

	// ActiveTimeout bounds how long a diffusing computation waits for a
	// neighbour's reply before the neighbour is presumed dead.
	ActiveTimeout = time.Minute * 3

	// QueryDedupTTL is the window within which repeated queries from the same
	// neighbour for the same destination are answered from the cache.
	QueryDedupTTL = time.Second * 3

	GcDelay = time.Second * 1

	// DefaultAdminBind is where the admin/metrics endpoint listens.
	DefaultAdminBind = "127.0.0.1:1520"
)

// DefaultKValues matches the protocol defaults: only bandwidth, load and
// delay weighted.
var DefaultKValues = KValues{K1: 1, K2: 74, K3: 1, K4: 0, K5: 0, K6: 0}
