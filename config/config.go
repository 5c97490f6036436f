// Package config loads the small set of implementation constants that
// the specification flags as open questions rather than as load-bearing
// language semantics: the fixed per-function frame reservation, the
// pointer-arithmetic scale factor, and the function-table capacity.
//
// DefaultConstants returns the compiler's built-in values; a
// TOML file (grounded on lookbusy1344-arm_emulator's config package) can
// override any of them for experimentation, without touching the
// compiler's source.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Constants holds the tunable implementation constants of the code
// generator and parser.
type Constants struct {
	// FrameBytes is the fixed number of bytes reserved for every
	// function's locals, regardless of how many it actually declares.
	FrameBytes int `toml:"frame_bytes"`

	// PointerScale is the byte count every pointer-arithmetic
	// operation scales by.  A fully correct compiler would scale by
	// the pointee's sizeof; this stays fixed at 8 to match the
	// observed source behavior (see the specification's design notes).
	PointerScale int `toml:"pointer_scale"`

	// MaxFunctions bounds how many function definitions a single
	// translation unit may contain.
	MaxFunctions int `toml:"max_functions"`
}

// DefaultConstants returns the constants the compiler uses absent any
// configuration file.
func DefaultConstants() *Constants {
	return &Constants{
		FrameBytes:   208, // 26 * 8
		PointerScale: 8,
		MaxFunctions: 100,
	}
}

// Load reads path as a TOML file and overlays it on DefaultConstants. An
// empty path returns the defaults unchanged.
func Load(path string) (*Constants, error) {
	cfg := DefaultConstants()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}
