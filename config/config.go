// Package config loads the optional TOML tunables file for the bucket
// table's shape, the way go-ethereum's own node configuration is loaded
// with github.com/BurntSushi/toml. The specification leaves the bucket
// table's size exponent k as an implementer default (spec §3: "k ≥ 0
// chosen at construction (default k = 3)"); this package lets an embedding
// application retune it without recompiling.
//
// Bloom's per-hash variant count (V) is not exposed here: the
// specification calls it "a compile-time small constant" (spec §4.1), and
// internal/bloom bakes it in as such. A tunables file is the wrong place
// for a value the balance and pruning arithmetic is derived from at
// compile time.
package config

import "github.com/BurntSushi/toml"

// Tunables controls the bucket table's shape, independent of any single
// Set instance.
type Tunables struct {
	SizeExp int `toml:"size_exp"`
}

// Default returns the specification's default tunables (k = 3).
func Default() Tunables {
	return Tunables{SizeExp: 3}
}

// Load reads tunables from a TOML file at path, falling back to Default
// for any field the file doesn't set. An empty path returns Default
// without touching the filesystem.
func Load(path string) (Tunables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Tunables{}, err
	}
	return t, nil
}
