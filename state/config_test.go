package state

import (
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *LocalCfg {
	cfg := &LocalCfg{
		Id:       "r1",
		RouterId: 1,
		ASN:      100,
		Neighbours: []NeighbourCfg{
			{Id: "r2"},
			{Id: "r3"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := &LocalCfg{Id: "r1"}
	cfg.ApplyDefaults()
	if cfg.K != DefaultKValues {
		t.Errorf("K = %+v, want protocol defaults", cfg.K)
	}
	if cfg.HelloInterval != DefaultHelloInterval {
		t.Errorf("HelloInterval = %s", cfg.HelloInterval)
	}
	if cfg.ActiveTimeout != ActiveTimeout {
		t.Errorf("ActiveTimeout = %s", cfg.ActiveTimeout)
	}
	if cfg.HoldTime() != DefaultHelloInterval*time.Duration(HoldTimeMultiplier) {
		t.Errorf("HoldTime() = %s", cfg.HoldTime())
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eigrp.yaml")
	cfg := validConfig()
	cfg.AdminBind = DefaultAdminBind
	if err := WriteConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Id != cfg.Id || got.ASN != cfg.ASN || got.K != cfg.K {
		t.Errorf("round trip mismatch: %+v != %+v", got, cfg)
	}
	if len(got.Neighbours) != 2 {
		t.Errorf("expected 2 neighbours, got %d", len(got.Neighbours))
	}
}

func TestConfigValidator(t *testing.T) {
	if err := ConfigValidator(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := validConfig()
	bad.Id = "Not Valid!"
	if ConfigValidator(bad) == nil {
		t.Error("invalid node name accepted")
	}

	bad = validConfig()
	bad.K = KValues{}
	if ConfigValidator(bad) == nil {
		t.Error("all-zero k-values accepted")
	}

	bad = validConfig()
	bad.HelloInterval = time.Millisecond
	if ConfigValidator(bad) == nil {
		t.Error("sub-second hello interval accepted")
	}

	bad = validConfig()
	bad.HelloInterval = time.Hour * 100
	if ConfigValidator(bad) == nil {
		t.Error("hello interval exceeding the hold time field accepted")
	}

	bad = validConfig()
	bad.AdminBind = "not-an-addr"
	if ConfigValidator(bad) == nil {
		t.Error("invalid admin bind accepted")
	}

	bad = validConfig()
	bad.Neighbours = append(bad.Neighbours, NeighbourCfg{Id: "r2"})
	if ConfigValidator(bad) == nil {
		t.Error("duplicate neighbour accepted")
	}

	bad = validConfig()
	bad.Neighbours = append(bad.Neighbours, NeighbourCfg{Id: "r1"})
	if ConfigValidator(bad) == nil {
		t.Error("self adjacency accepted")
	}
}
