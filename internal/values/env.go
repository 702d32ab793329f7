package values

import (
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/units"
)

// binding is one (name, value) entry in a Scope.
type binding struct {
	Name  intern.ID
	Value Value
}

// Scope is a single level of an Env: an insertion-order list of
// bindings. Lookup is linear, matching the expected size of one block or
// call frame (a handful of locals, not thousands).
type Scope struct {
	bindings []binding
}

func newScope() *Scope {
	return &Scope{}
}

func (s *Scope) get(name intern.ID) (Value, bool) {
	for i := range s.bindings {
		if s.bindings[i].Name == name {
			return s.bindings[i].Value, true
		}
	}
	return nil, false
}

func (s *Scope) set(name intern.ID, value Value) bool {
	for i := range s.bindings {
		if s.bindings[i].Name == name {
			s.bindings[i].Value = value
			return true
		}
	}
	return false
}

func (s *Scope) define(name intern.ID, value Value) {
	for i := range s.bindings {
		if s.bindings[i].Name == name {
			s.bindings[i].Value = value
			return
		}
	}
	s.bindings = append(s.bindings, binding{Name: name, Value: value})
}

func (s *Scope) clone() *Scope {
	out := &Scope{bindings: make([]binding, len(s.bindings))}
	copy(out.bindings, s.bindings)
	return out
}

// Env is a lexically scoped stack of scopes, searched from the top
// (most recently pushed) down to the bottom (global). It is built for
// cheap cloning so closures can capture "the environment at this point"
// without copying every scope: scopes are shared (*Scope pointers)
// until a mutation needs to touch one, at which point that scope alone
// is cloned.
//
// Go has no Rc<T>/copy-on-write built in, so this restates
// original_source/crates/cadenza-eval/src/env.rs's
// `Env{scopes: Rc<Vec<Scope>>}` as an explicit owned/shared flag per
// scope: a scope is only copied the first time THIS Env instance writes
// to it, after which further writes through the same Env are free.
type Env struct {
	scopes []*Scope
	owned  []bool // parallel to scopes: true once this Env has its own copy

	// Units is the live unit registry `measure` registers into. Unlike
	// scope bindings it is genuinely global, shared-mutable state (spec.md
	// §3.8's "a global registry maps names to units"), so it is copied by
	// reference, not by the scopes' copy-on-write discipline: every clone
	// of an Env sees the same units as they are defined, regardless of
	// which clone's scope chain did the defining.
	Units *units.Registry
}

// New creates an environment with a single empty global scope and a
// fresh, empty unit registry.
func New() *Env {
	return &Env{scopes: []*Scope{newScope()}, owned: []bool{true}, Units: units.NewRegistry()}
}

// Clone returns a new Env sharing all current scopes by reference. The
// clone is O(depth), not O(total bindings): no scope's bindings are
// copied until one of the two Envs writes to it.
func (e *Env) Clone() *Env {
	scopes := make([]*Scope, len(e.scopes))
	copy(scopes, e.scopes)
	owned := make([]bool, len(e.owned))
	// Neither this Env nor the clone owns any scope exclusively anymore:
	// both now point at the same *Scope objects, so e's own owned flags
	// must be cleared too, or a later write through e would mutate a
	// scope the clone still shares.
	for i := range e.owned {
		e.owned[i] = false
	}
	return &Env{scopes: scopes, owned: owned, Units: e.Units}
}

// PushScope pushes a new empty, exclusively-owned scope (used for
// function calls and block bodies).
func (e *Env) PushScope() {
	e.scopes = append(e.scopes, newScope())
	e.owned = append(e.owned, true)
}

// PopScope pops the top scope. It panics if called on an Env with only
// the global scope left, mirroring the original's "cannot pop the
// global scope" assertion.
func (e *Env) PopScope() {
	if len(e.scopes) <= 1 {
		panic("values: cannot pop the global scope")
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
	e.owned = e.owned[:len(e.owned)-1]
}

// Depth returns the number of scopes.
func (e *Env) Depth() int { return len(e.scopes) }

// ownedScopeAt returns scope i, cloning it first if this Env does not
// yet exclusively own it.
func (e *Env) ownedScopeAt(i int) *Scope {
	if !e.owned[i] {
		e.scopes[i] = e.scopes[i].clone()
		e.owned[i] = true
	}
	return e.scopes[i]
}

// Define binds name in the current (top) scope.
func (e *Env) Define(name intern.ID, value Value) {
	top := len(e.scopes) - 1
	e.ownedScopeAt(top).define(name, value)
}

// DefineGlobal binds name in the bottom (global) scope.
func (e *Env) DefineGlobal(name intern.ID, value Value) {
	e.ownedScopeAt(0).define(name, value)
}

// Get looks up name, searching from the top scope down.
func (e *Env) Get(name intern.ID) (Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Set re-assigns an existing binding, searching from the top scope
// down, and reports whether a binding was found. Used by the `=`
// special form.
func (e *Env) Set(name intern.ID, value Value) bool {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i].get(name); ok {
			e.ownedScopeAt(i).set(name, value)
			return true
		}
	}
	return false
}

// Contains reports whether any scope binds name.
func (e *Env) Contains(name intern.ID) bool {
	_, ok := e.Get(name)
	return ok
}

// All returns every name currently visible, with inner-scope bindings
// shadowing outer ones — a snapshot used by internal/types to build a
// TypeEnv from a running evaluation's bindings.
func (e *Env) All() map[intern.ID]Value {
	out := make(map[intern.ID]Value)
	for _, s := range e.scopes {
		for _, b := range s.bindings {
			out[b.Name] = b.Value
		}
	}
	return out
}
