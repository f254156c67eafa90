package claimledgerd

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("claimledgerd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "claimledger.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Owner != "owner" || cfg.Collector != "collector" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxBatch != 20 {
		t.Fatalf("expected default max batch 20, got %d", cfg.MaxBatch)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("CLAIMLEDGER_DB_PATH", "/tmp/claims.db")
	t.Setenv("CLAIMLEDGER_OWNER", "operator")
	t.Setenv("CLAIMLEDGER_BASE_FEE_BPS", "250")

	fs := flag.NewFlagSet("claimledgerd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/tmp/claims.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.Owner != "operator" {
		t.Fatalf("expected env owner, got %q", cfg.Owner)
	}
	if cfg.BaseFeeBps != 250 {
		t.Fatalf("expected env fee 250, got %d", cfg.BaseFeeBps)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CLAIMLEDGER_OWNER", "operator")

	fs := flag.NewFlagSet("claimledgerd", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-owner", "council", "-base-fee-bps", "100"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Owner != "council" {
		t.Fatalf("expected flag owner, got %q", cfg.Owner)
	}
	if cfg.BaseFeeBps != 100 {
		t.Fatalf("expected flag fee 100, got %d", cfg.BaseFeeBps)
	}
}
