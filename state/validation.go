package state

import (
	"fmt"
	"net/netip"
	"regexp"
	"time"
)

var namePattern = regexp.MustCompile("^[0-9a-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func KValuesValidator(k KValues) error {
	if !k.Valid() {
		return fmt.Errorf("at least one k-value must be non-zero")
	}
	return nil
}

// HelloIntervalValidator bounds the hello interval so the derived hold time
// still fits the 16 bit hold time field.
func HelloIntervalValidator(interval time.Duration) error {
	maxInterval := time.Duration(MaxHoldTime/HoldTimeMultiplier) * time.Second
	if interval < time.Second || interval > maxInterval {
		return fmt.Errorf("hello_interval must be between 1s and %s", maxInterval)
	}
	return nil
}

func ConfigValidator(cfg *LocalCfg) error {
	if err := NameValidator(string(cfg.Id)); err != nil {
		return err
	}
	if err := KValuesValidator(cfg.K); err != nil {
		return err
	}
	if err := HelloIntervalValidator(cfg.HelloInterval); err != nil {
		return err
	}
	if cfg.ActiveTimeout <= 0 {
		return fmt.Errorf("active_timeout must be positive")
	}
	if cfg.AdminBind != "" {
		if _, err := netip.ParseAddrPort(cfg.AdminBind); err != nil {
			return fmt.Errorf("admin_bind is invalid: %w", err)
		}
	}
	seen := make(map[NodeId]bool)
	for _, n := range cfg.Neighbours {
		if err := NameValidator(string(n.Id)); err != nil {
			return err
		}
		if n.Id == cfg.Id {
			return fmt.Errorf("node %s cannot be its own neighbour", n.Id)
		}
		if seen[n.Id] {
			return fmt.Errorf("duplicate neighbour %s", n.Id)
		}
		seen[n.Id] = true
	}
	return nil
}
