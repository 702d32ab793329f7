package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/units"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Units) != 0 || len(p.WasmExports) != 0 {
		t.Errorf("expected zero-value project, got %+v", p)
	}
	if !p.AllowsExport("anything") {
		t.Error("empty allowlist should permit every export")
	}
}

func TestLoadParsesUnitsAndExports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cadenza.toml")
	const doc = `
wasm_exports = ["area"]

[[units]]
name = "furlong"

[[units]]
name = "chain"
base_of = "furlong"
scale = 0.1
offset = 0
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(p.Units))
	}
	if !p.AllowsExport("area") {
		t.Error("expected \"area\" to be allowed")
	}
	if p.AllowsExport("volume") {
		t.Error("expected \"volume\" to be rejected by a non-empty allowlist")
	}
}

func TestApplyToRegistersBaseThenDerivedUnits(t *testing.T) {
	p := &Project{Units: []UnitDecl{
		{Name: "furlong"},
		{Name: "chain", BaseOf: "furlong", Scale: 0.1, Offset: 0},
	}}
	r := units.NewRegistry()
	in := intern.New()
	if err := p.ApplyTo(r, in); err != nil {
		t.Fatalf("ApplyTo: %v", err)
	}
	chain, ok := r.Lookup(in.Intern("chain"))
	if !ok {
		t.Fatal("expected chain to be registered")
	}
	if got := chain.ToBase(10); got != 1 {
		t.Errorf("10 chains = %v furlongs, want 1", got)
	}
}

func TestApplyToRejectsUnknownBase(t *testing.T) {
	p := &Project{Units: []UnitDecl{
		{Name: "chain", BaseOf: "furlong", Scale: 0.1},
	}}
	r := units.NewRegistry()
	in := intern.New()
	if err := p.ApplyTo(r, in); err == nil {
		t.Fatal("expected an error for a derived unit with an unregistered base")
	}
}
