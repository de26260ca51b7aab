package state

// KValues are the six metric weighting coefficients shared by all routers in
// an autonomous system. Each coefficient is bounded to 0..255 and at least
// one must be non-zero.
type KValues struct {
	K1 uint8 `yaml:"k1"`
	K2 uint8 `yaml:"k2"`
	K3 uint8 `yaml:"k3"`
	K4 uint8 `yaml:"k4"`
	K5 uint8 `yaml:"k5"`
	K6 uint8 `yaml:"k6"`
}

func (k KValues) Valid() bool {
	return k.K1 != 0 || k.K2 != 0 || k.K3 != 0 || k.K4 != 0 || k.K5 != 0 || k.K6 != 0
}

// Metric is the composite route-cost vector advertised between routers.
type Metric struct {
	Bandwidth   uint32 `yaml:"bandwidth"` // kbit/s, lowest along the path
	Delay       uint32 `yaml:"delay"`     // tens of microseconds, summed along the path
	Reliability uint8  `yaml:"reliability,omitempty"`
	Load        uint8  `yaml:"load,omitempty"`
	Mtu         uint32 `yaml:"mtu,omitempty"`
	HopCount    uint8  `yaml:"hop_count,omitempty"`
}

// UnreachableMetric returns the vector advertised for a withdrawn route.
func UnreachableMetric() Metric {
	return Metric{Delay: DelayUnreachable}
}

func (m Metric) Reachable() bool {
	return m.Delay != DelayUnreachable
}

// Scalar computes the weighted composite distance:
//
//	[k1*bw + k2*bw/(256-load) + k3*delay] * k5/(reliability+k4)
//
// where bw and delay are the classic scaled values, and the trailing factor
// only applies when k5 is non-zero. Unreachable vectors map to MetricInf.
func (m Metric) Scalar(k KValues) uint64 {
	if !m.Reachable() {
		return MetricInf
	}
	var bw uint64
	if m.Bandwidth > 0 {
		bw = BandwidthScale / uint64(m.Bandwidth)
	}
	dist := uint64(k.K1) * bw
	if k.K2 != 0 {
		dist += uint64(k.K2) * bw / (256 - uint64(m.Load))
	}
	dist += uint64(k.K3) * DelayScale * uint64(m.Delay)
	if k.K5 != 0 {
		denom := uint64(m.Reliability) + uint64(k.K4)
		if denom == 0 {
			return MetricInf
		}
		dist = dist * uint64(k.K5) / denom
	}
	if dist >= MetricInf {
		dist = MetricInf - 1
	}
	return dist
}
