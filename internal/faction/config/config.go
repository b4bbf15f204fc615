// Package config holds the engine-wide faction settings: the builtin
// permission tokens, the default rank ladder seeded into new factions, and
// the default starting rank for accepted invitations. Settings load from an
// optional TOML file; absent fields keep their defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/louisbranch/ironhold/internal/faction/permission"
)

// RankSeed describes one rank in the default ladder.
type RankSeed struct {
	Number      int      `toml:"number"`
	Name        string   `toml:"name"`
	Permissions []string `toml:"permissions"`
}

// Config is the engine-wide faction configuration.
type Config struct {
	Builtins     []string   `toml:"builtins"`
	DefaultRanks []RankSeed `toml:"ranks"`
	StartRank    int        `toml:"start_rank"`
}

// Default returns the stock configuration: three builtin permissions, a
// five-tier ladder, and recruits starting at the bottom.
func Default() Config {
	return Config{
		Builtins: []string{"roster", "invite", "discipline"},
		DefaultRanks: []RankSeed{
			{Number: 1, Name: "Leader", Permissions: []string{"roster", "invite", "discipline"}},
			{Number: 2, Name: "Second", Permissions: []string{"roster", "invite", "discipline"}},
			{Number: 3, Name: "Officer", Permissions: []string{"invite", "discipline"}},
			{Number: 4, Name: "Member", Permissions: nil},
			{Number: 5, Name: "Recruit", Permissions: nil},
		},
		StartRank: 5,
	}
}

// Load reads a TOML settings file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read faction settings: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse faction settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ladder and start rank consistency.
func (c Config) Validate() error {
	if len(c.Builtins) == 0 {
		return fmt.Errorf("faction settings: at least one builtin permission is required")
	}
	if len(c.DefaultRanks) == 0 {
		return fmt.Errorf("faction settings: default rank ladder cannot be empty")
	}

	builtins := c.BuiltinSet()
	numbers := make(map[int]struct{}, len(c.DefaultRanks))
	names := make(map[string]struct{}, len(c.DefaultRanks))
	for _, seed := range c.DefaultRanks {
		if seed.Number < 1 {
			return fmt.Errorf("faction settings: rank %q has invalid number %d", seed.Name, seed.Number)
		}
		if seed.Name == "" {
			return fmt.Errorf("faction settings: rank %d has no name", seed.Number)
		}
		if _, ok := numbers[seed.Number]; ok {
			return fmt.Errorf("faction settings: duplicate rank number %d", seed.Number)
		}
		numbers[seed.Number] = struct{}{}
		key := strings.ToLower(strings.TrimSpace(seed.Name))
		if _, ok := names[key]; ok {
			return fmt.Errorf("faction settings: duplicate rank name %q", seed.Name)
		}
		names[key] = struct{}{}
		for _, token := range seed.Permissions {
			if !builtins.Contains(token) {
				return fmt.Errorf("faction settings: rank %q grants unknown permission %q", seed.Name, token)
			}
		}
	}
	if _, ok := numbers[c.StartRank]; !ok {
		return fmt.Errorf("faction settings: start rank %d is not in the default ladder", c.StartRank)
	}
	return nil
}

// BuiltinSet returns the builtin permissions as a set.
func (c Config) BuiltinSet() permission.Set {
	return permission.NewSet(c.Builtins...)
}
