package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLadder(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if len(cfg.DefaultRanks) != 5 {
		t.Fatalf("expected five default ranks, got %d", len(cfg.DefaultRanks))
	}
	if cfg.StartRank != 5 {
		t.Fatalf("expected start rank 5, got %d", cfg.StartRank)
	}
	if cfg.DefaultRanks[0].Name != "Leader" || len(cfg.DefaultRanks[0].Permissions) != 3 {
		t.Fatalf("unexpected top rank: %+v", cfg.DefaultRanks[0])
	}
	if !cfg.BuiltinSet().Contains("discipline") {
		t.Fatalf("expected discipline builtin, got %v", cfg.BuiltinSet().Tokens())
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if len(cfg.DefaultRanks) != 5 {
		t.Fatalf("expected default ladder, got %+v", cfg.DefaultRanks)
	}
}

func TestLoadOverridesLadder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factions.toml")
	content := `
builtins = ["roster", "invite"]
start_rank = 2

[[ranks]]
number = 1
name = "Boss"
permissions = ["roster", "invite"]

[[ranks]]
number = 2
name = "Grunt"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if len(cfg.DefaultRanks) != 2 || cfg.DefaultRanks[0].Name != "Boss" {
		t.Fatalf("unexpected ladder: %+v", cfg.DefaultRanks)
	}
	if cfg.StartRank != 2 {
		t.Fatalf("expected start rank 2, got %d", cfg.StartRank)
	}
	if cfg.BuiltinSet().Contains("discipline") {
		t.Fatalf("expected builtins replaced, got %v", cfg.BuiltinSet().Tokens())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestValidateRejectsBadLadders(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"no builtins", func(c *Config) { c.Builtins = nil }, "builtin"},
		{"empty ladder", func(c *Config) { c.DefaultRanks = nil }, "ladder"},
		{"zero number", func(c *Config) { c.DefaultRanks[0].Number = 0 }, "invalid number"},
		{"blank name", func(c *Config) { c.DefaultRanks[0].Name = "" }, "no name"},
		{"duplicate number", func(c *Config) { c.DefaultRanks[1].Number = 1 }, "duplicate rank number"},
		{"duplicate name", func(c *Config) { c.DefaultRanks[1].Name = "leader" }, "duplicate rank name"},
		{"unknown permission", func(c *Config) { c.DefaultRanks[0].Permissions = []string{"banking"} }, "unknown permission"},
		{"start rank off ladder", func(c *Config) { c.StartRank = 9 }, "start rank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("expected error containing %q, got %v", tt.wantSub, err)
			}
		})
	}
}
