package state

import (
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// NeighbourCfg is a statically configured adjacency. Discovery and hello
// keepalive run outside the core; the configured set bounds who may source
// events.
type NeighbourCfg struct {
	Id       NodeId         `yaml:"id"`
	Endpoint netip.AddrPort `yaml:"endpoint,omitempty"`
}

// LocalCfg is the node-level configuration.
type LocalCfg struct {
	Id       NodeId `yaml:"id"`
	RouterId uint16 `yaml:"router_id"`
	ASN      uint16 `yaml:"asn"`

	K KValues `yaml:"k_values,omitempty"`

	HelloInterval time.Duration `yaml:"hello_interval,omitempty"`
	ActiveTimeout time.Duration `yaml:"active_timeout,omitempty"`

	AdminBind string `yaml:"admin_bind,omitempty"` // metrics/topology endpoint, empty disables
	LogPath   string `yaml:"log_path,omitempty"`   // if not empty, logs are also written to this file

	Neighbours []NeighbourCfg `yaml:"neighbours,omitempty"`
}

// HoldTime is the neighbour hold time advertised in hellos.
func (c *LocalCfg) HoldTime() time.Duration {
	return c.HelloInterval * time.Duration(HoldTimeMultiplier)
}

// ApplyDefaults fills the zero-valued knobs with protocol defaults.
func (c *LocalCfg) ApplyDefaults() {
	if !c.K.Valid() {
		c.K = DefaultKValues
	}
	if c.HelloInterval == 0 {
		c.HelloInterval = DefaultHelloInterval
	}
	if c.ActiveTimeout == 0 {
		c.ActiveTimeout = ActiveTimeout
	}
}

func ReadConfig(path string) (*LocalCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg LocalCfg
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func WriteConfig(path string, cfg *LocalCfg) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0600)
}
