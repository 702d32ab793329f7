// Package config loads a project's optional `cadenza.toml`: prelude unit
// extensions and an allowlist of top-level names the `wasm` CLI command
// is willing to export, per spec.md §3.12/§6.8.
//
// Grounded on Creative-Workz-Studio-LLC-cpi-si-claude-code's
// system/runtime/lib/config/config.go, which loads project configuration
// via `toml.DecodeFile(path, &cfg)` into a plain tagged struct and
// tolerates a missing file by falling back to defaults; Cadenza's version
// is much smaller (no inheritance chain) since there is only one config
// file, not a user/instance/project cascade.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/units"
)

// UnitDecl declares one unit the prelude should register in addition to
// the built-in set. BaseOf is empty for a base unit of a brand new
// dimension; otherwise it names an already-registered unit this one
// converts to via (value*Scale + Offset).
type UnitDecl struct {
	Name   string  `toml:"name"`
	BaseOf string  `toml:"base_of"`
	Scale  float64 `toml:"scale"`
	Offset float64 `toml:"offset"`
}

// Project is a project's `cadenza.toml` contents. The zero value is a
// valid, empty project: no extra units, no export allowlist.
type Project struct {
	Units       []UnitDecl `toml:"units"`
	WasmExports []string   `toml:"wasm_exports"`
}

// Load reads path as TOML into a Project. A missing file is not an
// error — it returns the zero-value Project, matching SPEC_FULL.md
// §3.12's "absent file means the zero-value project."
func Load(path string) (*Project, error) {
	var p Project
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &p, nil
	}
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &p, nil
}

// ApplyTo registers every declared unit into r, base units first (BaseOf
// == ""), then derived units in declaration order, each referencing an
// already-registered name. A derived unit whose BaseOf names neither a
// base unit of p, nor a derived unit declared earlier in p, nor a unit
// already in r is reported as an error rather than silently skipped.
func (p *Project) ApplyTo(r *units.Registry, in *intern.Interner) error {
	for _, u := range p.Units {
		if u.BaseOf != "" {
			continue
		}
		r.DefineBase(in.Intern(u.Name))
	}
	for _, u := range p.Units {
		if u.BaseOf == "" {
			continue
		}
		base, ok := r.Lookup(in.Intern(u.BaseOf))
		if !ok {
			return fmt.Errorf("config: unit %q declares base_of %q, which is not registered", u.Name, u.BaseOf)
		}
		// Scale/Offset relate u to its BaseOf unit; compose them with that
		// unit's own conversion so the registry entry relates u to the
		// dimension's base unit.
		r.Define(in.Intern(u.Name), base.Dimension, u.Scale*base.Scale, base.ToBase(u.Offset))
	}
	return nil
}

// AllowsExport reports whether name may be lowered to a WASM export. An
// empty WasmExports list permits everything (spec.md's default: no
// allowlist configured means no restriction beyond what the IR already
// marks exported).
func (p *Project) AllowsExport(name string) bool {
	if len(p.WasmExports) == 0 {
		return true
	}
	for _, allowed := range p.WasmExports {
		if allowed == name {
			return true
		}
	}
	return false
}
