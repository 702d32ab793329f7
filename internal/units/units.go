// Package units implements Cadenza's dimensional algebra: base dimensions
// identified by their base unit's interned name, derived dimensions as
// multisets of base dimensions with integer exponents, and a global
// registry of named units convertible within their dimension.
//
// Grounded on spec.md §3.8/§4.7, restated in Go idiom: the original's
// HashMap-of-exponents multiset becomes a sorted []Term so two
// Dimensions with the same content compare equal by value, matching the
// evaluator's need to test "same dimension after reduction" cheaply.
package units

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gmofishsauce/cadenza/internal/intern"
)

// Term is one base dimension raised to an integer exponent within a
// Dimension's numerator or denominator multiset.
type Term struct {
	Base intern.ID
	Exp  int
}

// Dimension is a derived dimension: a product of base dimensions each
// raised to a (possibly negative, after normalization) integer power.
// The dimensionless dimension has no terms.
type Dimension struct {
	terms map[intern.ID]int
}

// Base constructs the dimension for a single base unit raised to the
// first power, e.g. the dimension of meters.
func Base(name intern.ID) Dimension {
	return Dimension{terms: map[intern.ID]int{name: 1}}
}

// Dimensionless is the empty-product dimension (pure numbers).
func Dimensionless() Dimension {
	return Dimension{}
}

// IsDimensionless reports whether d has no remaining terms.
func (d Dimension) IsDimensionless() bool {
	for _, exp := range d.terms {
		if exp != 0 {
			return false
		}
	}
	return true
}

// Mul combines two dimensions by adding exponents term-by-term,
// canceling to zero where they meet (the multiplication side of §3.8's
// "multiplication/division simplify by canceling common terms").
func (d Dimension) Mul(other Dimension) Dimension {
	out := map[intern.ID]int{}
	for base, exp := range d.terms {
		out[base] += exp
	}
	for base, exp := range other.terms {
		out[base] += exp
	}
	for base, exp := range out {
		if exp == 0 {
			delete(out, base)
		}
	}
	return Dimension{terms: out}
}

// Div combines two dimensions by subtracting other's exponents.
func (d Dimension) Div(other Dimension) Dimension {
	neg := map[intern.ID]int{}
	for base, exp := range other.terms {
		neg[base] = -exp
	}
	return d.Mul(Dimension{terms: neg})
}

// Equal reports whether two dimensions have identical reduced term sets.
func (d Dimension) Equal(other Dimension) bool {
	if len(d.terms) != len(other.terms) {
		return false
	}
	for base, exp := range d.terms {
		if other.terms[base] != exp {
			return false
		}
	}
	return true
}

// String renders a stable "m^1*s^-2" style form for diagnostics, with
// terms sorted by interned id so output is deterministic.
func (d Dimension) String() string {
	if d.IsDimensionless() {
		return "1"
	}
	ids := make([]intern.ID, 0, len(d.terms))
	for id := range d.terms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var parts []string
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s^%d", intern.Global().Lookup(id), d.terms[id]))
	}
	return strings.Join(parts, "*")
}

// Unit is one entry in the registry: a name convertible to its
// dimension's base unit via `base = this*Scale + Offset`.
type Unit struct {
	Name      intern.ID
	Dimension Dimension
	Scale     float64
	Offset    float64
}

// ToBase converts a value expressed in this unit to the dimension's base
// unit.
func (u Unit) ToBase(value float64) float64 {
	return value*u.Scale + u.Offset
}

// FromBase converts a value expressed in the dimension's base unit back
// into this unit.
func (u Unit) FromBase(value float64) float64 {
	return (value - u.Offset) / u.Scale
}

// Registry maps unit names to their definitions. It is not safe for
// concurrent writers; reads (conversions during evaluation) may run
// concurrently with each other once registration is complete, matching
// §5's "definitions happen during a single-threaded prelude/evaluation
// pass, conversions are read-only after that."
type Registry struct {
	units map[intern.ID]Unit
}

// NewRegistry creates an empty unit registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[intern.ID]Unit)}
}

// DefineBase registers name as a new base unit: its own dimension, scale
// 1, offset 0.
func (r *Registry) DefineBase(name intern.ID) Unit {
	u := Unit{Name: name, Dimension: Base(name), Scale: 1, Offset: 0}
	r.units[name] = u
	return u
}

// Define registers name as a unit within an existing dimension, related
// to that dimension's base unit by `base = this*scale + offset`.
func (r *Registry) Define(name intern.ID, dim Dimension, scale, offset float64) Unit {
	u := Unit{Name: name, Dimension: dim, Scale: scale, Offset: offset}
	r.units[name] = u
	return u
}

// Lookup returns the unit registered under name, if any.
func (r *Registry) Lookup(name intern.ID) (Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Convert converts value from one unit to another of the same dimension,
// erroring if the dimensions differ.
func (r *Registry) Convert(value float64, from, to Unit) (float64, error) {
	if !from.Dimension.Equal(to.Dimension) {
		return 0, fmt.Errorf("units: cannot convert %s to %s: different dimensions (%s vs %s)",
			intern.Global().Lookup(from.Name), intern.Global().Lookup(to.Name),
			from.Dimension, to.Dimension)
	}
	return to.FromBase(from.ToBase(value)), nil
}
