/*
 * properties.go, part of gochemcore.
 *
 *
 * Copyright 2026 The gochemcore Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package chem

import (
	"context"
	"math"
	"sort"

	"github.com/rmera/gochemcore/units"
)

//Property names a quantity an energy model can compute.
type Property int

const (
	Positions Property = iota
	PotentialEnergy
	Forces
	NuclearForces
	ElectronicForces
	Dipole
	Wfn
	ElectronicState
	Mulliken
	ReferenceEnergy
	CorrelationEnergy
)

var propertyNames = [...]string{
	"positions",
	"potential_energy",
	"forces",
	"nuclear_forces",
	"electronic_forces",
	"dipole",
	"wfn",
	"electronic_state",
	"mulliken",
	"reference_energy",
	"correlation_energy",
}

var propertyGoNames = [...]string{
	"Positions",
	"PotentialEnergy",
	"Forces",
	"NuclearForces",
	"ElectronicForces",
	"Dipole",
	"Wfn",
	"ElectronicState",
	"Mulliken",
	"ReferenceEnergy",
	"CorrelationEnergy",
}

func (p Property) valid() bool { return p >= 0 && int(p) < len(propertyNames) }

func (p Property) String() string {
	if !p.valid() {
		return "invalid_property"
	}
	return propertyNames[p]
}

//GoName returns the name of the Go constant for p.
func (p Property) GoName() string {
	if !p.valid() {
		return "Property(?)"
	}
	return propertyGoNames[p]
}

//ParseProperty returns the property with the given snake_case name, and false if there is none.
func ParseProperty(name string) (Property, bool) {
	for i, n := range propertyNames {
		if n == name {
			return Property(i), true
		}
	}
	return 0, false
}

//Value is a computed property. It is either a units.Scalar, a units.Vector or an Opaque.
type Value interface {
	Unit() units.Unit
}

//Opaque holds engine-specific results (wavefunctions, electronic states) the core
//doesn't interpret.
type Opaque struct {
	Data interface{}
}

//Unit returns units.Dimensionless.
func (o Opaque) Unit() units.Unit { return units.Dimensionless }

//Properties is a snapshot of computed values, valid only at the geometry it stores.
//It is immutable by convention once merged into a molecule.
type Properties struct {
	positions []float64
	values    map[Property]Value
}

//NewProperties returns an empty snapshot for the given positions (Angstrom), which are copied.
func NewProperties(positions []float64) *Properties {
	p := make([]float64, len(positions))
	copy(p, positions)
	return &Properties{positions: p, values: make(map[Property]Value)}
}

//Positions returns the geometry of the snapshot. The slice must not be modified.
func (P *Properties) Positions() []float64 { return P.positions }

//Set stores v for p. Setting Positions is ignored: the geometry of a snapshot is fixed.
func (P *Properties) Set(p Property, v Value) {
	if p == Positions {
		return
	}
	P.values[p] = v
}

//Get returns the value for p and whether it is present. Positions is always present.
func (P *Properties) Get(p Property) (Value, bool) {
	if p == Positions {
		return units.V(P.positions, units.Angstrom), true
	}
	v, ok := P.values[p]
	return v, ok
}

//Has returns true if p is present in the snapshot.
func (P *Properties) Has(p Property) bool {
	_, ok := P.Get(p)
	return ok
}

//Keys returns the properties present in the snapshot, Positions included, in enumeration order.
func (P *Properties) Keys() []Property {
	ret := make([]Property, 0, len(P.values)+1)
	ret = append(ret, Positions)
	for k := range P.values {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

//Len returns the number of properties, Positions included.
func (P *Properties) Len() int { return len(P.values) + 1 }

//SameGeometry returns true if both snapshots were taken at bit-identical positions.
func (P *Properties) SameGeometry(positions []float64) bool {
	if len(positions) != len(P.positions) {
		return false
	}
	for i, v := range positions {
		if math.Float64bits(v) != math.Float64bits(P.positions[i]) {
			return false
		}
	}
	return true
}

//GeometryMatches returns true if the snapshot's positions are bit-identical to M's current ones.
func (P *Properties) GeometryMatches(M *Molecule) bool {
	return P.SameGeometry(M.positions.Flat())
}

//merge copies all the values of o into P.
func (P *Properties) merge(o *Properties) {
	for k, v := range o.values {
		P.values[k] = v
	}
}

//Copy returns a shallow copy of P: values are shared, the map is not.
func (P *Properties) Copy() *Properties {
	c := NewProperties(P.positions)
	c.merge(P)
	return c
}

//Properties returns the molecule's property cache. It might belong to a different geometry,
//check with GeometryMatches.
func (M *Molecule) Properties() *Properties { return M.props }

//SetProperties replaces the property cache with p, whose geometry must match the current one.
func (M *Molecule) SetProperties(p *Properties) error {
	if !p.GeometryMatches(M) {
		return newCError(ErrGeometryMismatch, "Molecule.SetProperties", "the properties were computed at a different geometry")
	}
	M.props = p
	return nil
}

//UpdateProperties merges p into the property cache. p must have been computed at the current
//geometry. If the cache belongs to an older geometry it is replaced instead.
func (M *Molecule) UpdateProperties(p *Properties) error {
	if !p.GeometryMatches(M) {
		return newCError(ErrGeometryMismatch, "Molecule.UpdateProperties", "the properties were computed at a different geometry")
	}
	if M.props == p {
		return nil
	}
	if M.props != nil && M.props.GeometryMatches(M) {
		M.props.merge(p)
		return nil
	}
	M.props = p.Copy()
	return nil
}

//GetProperty returns the value of p at the current geometry, or a *NotCalculatedError.
func (M *Molecule) GetProperty(p Property) (Value, error) {
	if M.props != nil && M.props.GeometryMatches(M) {
		if v, ok := M.props.Get(p); ok {
			return v, nil
		}
	}
	return nil, &NotCalculatedError{Property: p, deco: []string{"Molecule.GetProperty"}}
}

//CalcProperty returns p at the current geometry, computing it with the energy model if needed.
func (M *Molecule) CalcProperty(ctx context.Context, p Property) (Value, error) {
	if v, err := M.GetProperty(p); err == nil {
		return v, nil
	}
	if _, err := M.Calculate(ctx, []Property{p}, true); err != nil {
		return nil, errDecorate(err, "Molecule.CalcProperty")
	}
	return M.GetProperty(p)
}

func asScalar(v Value, p Property, caller string) (units.Scalar, error) {
	s, ok := v.(units.Scalar)
	if !ok {
		return units.Scalar{}, newCError(ErrShape, caller, "%s is not a scalar", p)
	}
	return s, nil
}

func asVector(v Value, p Property, caller string) (units.Vector, error) {
	s, ok := v.(units.Vector)
	if !ok {
		return units.Vector{}, newCError(ErrShape, caller, "%s is not a vector", p)
	}
	return s, nil
}

//PotentialEnergy returns the cached potential energy at the current geometry.
func (M *Molecule) PotentialEnergy() (units.Scalar, error) {
	v, err := M.GetProperty(PotentialEnergy)
	if err != nil {
		return units.Scalar{}, err
	}
	return asScalar(v, PotentialEnergy, "Molecule.PotentialEnergy")
}

//Forces returns the cached forces (3 per atom) at the current geometry.
func (M *Molecule) Forces() (units.Vector, error) {
	v, err := M.GetProperty(Forces)
	if err != nil {
		return units.Vector{}, err
	}
	return asVector(v, Forces, "Molecule.Forces")
}

//Dipole returns the cached dipole moment at the current geometry.
func (M *Molecule) Dipole() (units.Vector, error) {
	v, err := M.GetProperty(Dipole)
	if err != nil {
		return units.Vector{}, err
	}
	return asVector(v, Dipole, "Molecule.Dipole")
}

//ElectronicState returns the cached electronic state at the current geometry.
func (M *Molecule) ElectronicState() (Opaque, error) {
	v, err := M.GetProperty(ElectronicState)
	if err != nil {
		return Opaque{}, err
	}
	o, ok := v.(Opaque)
	if !ok {
		return Opaque{}, newCError(ErrShape, "Molecule.ElectronicState", "unexpected value type %T", v)
	}
	return o, nil
}

//CalcPotentialEnergy computes the potential energy if needed and returns it, in eV.
func (M *Molecule) CalcPotentialEnergy(ctx context.Context) (units.Scalar, error) {
	v, err := M.CalcProperty(ctx, PotentialEnergy)
	if err != nil {
		return units.Scalar{}, err
	}
	s, err := asScalar(v, PotentialEnergy, "Molecule.CalcPotentialEnergy")
	if err != nil {
		return s, err
	}
	return s.In(units.EV)
}

//CalcForces computes the forces if needed and returns them, in eV/Angstrom.
func (M *Molecule) CalcForces(ctx context.Context) (units.Vector, error) {
	v, err := M.CalcProperty(ctx, Forces)
	if err != nil {
		return units.Vector{}, err
	}
	f, err := asVector(v, Forces, "Molecule.CalcForces")
	if err != nil {
		return f, err
	}
	return f.In(units.EVPerAngstrom)
}

//CalcDipole computes the dipole moment if needed and returns it.
func (M *Molecule) CalcDipole(ctx context.Context) (units.Vector, error) {
	v, err := M.CalcProperty(ctx, Dipole)
	if err != nil {
		return units.Vector{}, err
	}
	return asVector(v, Dipole, "Molecule.CalcDipole")
}

//CalcElectronicState computes the electronic state if needed and returns it.
func (M *Molecule) CalcElectronicState(ctx context.Context) (Opaque, error) {
	if _, err := M.CalcProperty(ctx, ElectronicState); err != nil {
		return Opaque{}, err
	}
	return M.ElectronicState()
}
