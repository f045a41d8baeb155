/*
 * dynamics_test.go, part of gochemcore.
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
	"errors"
	"math"
	"testing"

	"github.com/rmera/gochemcore/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicDOF(Te *testing.T) {
	a := NewAtomAt("H1", "H", 0, 0, 0)
	b := NewAtomAt("H2", "H", 0.74, 0, 0)
	require.NoError(Te, a.BondTo(b, 1))
	integ := &stillIntegrator{params: IntegratorParams{RemoveTranslation: true, RemoveRotation: true}}
	diat, err := NewMolecule([]*Atom{a, b}, &Options{Integrator: integ})
	require.NoError(Te, err)
	assert.Equal(Te, 3, diat.DynamicDOF(), "linear molecules keep their rotations")

	hoh := NewResidue("HOH", 1, NewChain("W"))
	ats := waterAtoms()
	for _, at := range ats {
		require.NoError(Te, at.SetResidue(hoh))
	}
	wat, err := NewMolecule(ats, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 9, wat.DynamicDOF(), "no integrator, no removals")
	wi := &stillIntegrator{params: IntegratorParams{RemoveTranslation: true, RemoveRotation: true}}
	wat.SetIntegrator(wi)
	assert.Equal(Te, 4, wat.DynamicDOF())
	wi.params.Constraints = []string{HBondConstraints}
	assert.Equal(Te, 2, wat.DynamicDOF())
	wi.params.Constraints = []string{HBondConstraints, WaterConstraints}
	assert.Equal(Te, 2-7, wat.DynamicDOF())
	wi.params.Constraints = []string{WaterConstraints}
	assert.Equal(Te, 4-9, wat.DynamicDOF())

	wi.params.Constraints = nil
	_, err = wat.ConstrainAtom(wat.Atom(0), nil)
	require.NoError(Te, err)
	_, err = wat.ConstrainAngle(wat.Atom(1), wat.Atom(0), wat.Atom(2), nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0, wat.DynamicDOF())
	wat.SetDynamicDOF(6)
	assert.Equal(Te, 6, wat.DynamicDOF())
	wat.ResetDynamicDOF()
	assert.Equal(Te, 0, wat.DynamicDOF())
	_, err = wat.KineticTemperature()
	assert.Error(Te, err)
}

func TestKineticEnergy(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, mol.KineticEnergy().Value)
	mol.Atom(0).SetMomentum(0.01, 0, 0)
	want := 0.5 * 0.01 * 0.01 / 15.999 * units.AMUAng2Fs2InEV
	ke := mol.KineticEnergy()
	assert.Equal(Te, units.EV, ke.U)
	assert.InDelta(Te, want, ke.Value, 1e-12)
	T, err := mol.KineticTemperature()
	require.NoError(Te, err)
	assert.InDelta(Te, 2*want/(units.Boltzmann*9), T.Value, 1e-9)
	assert.Equal(Te, units.Kelvin, T.U)
}

func TestConstraints(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	o, h1, h2 := mol.Atom(0), mol.Atom(1), mol.Atom(2)

	nm := units.S(0.1, units.Nanometer)
	c, err := mol.ConstrainDistance(o, h1, &nm)
	require.NoError(Te, err)
	assert.Equal(Te, units.Angstrom, c.Value.U)
	assert.InDelta(Te, 1.0, c.Value.Values[0], 1e-12)
	assert.InDelta(Te, 1.0-Distance(o, h1), c.Deviation(), 1e-12)
	assert.False(Te, c.Satisfied(1e-3))
	assert.Equal(Te, 1, c.DOF())

	deg := units.S(104.5, units.Degree)
	c, err = mol.ConstrainAngle(h1, o, h2, &deg)
	require.NoError(Te, err)
	assert.InDelta(Te, 104.5*math.Pi/180, c.Value.Values[0], 1e-12)
	assert.True(Te, c.Satisfied(0.01))

	c, err = mol.ConstrainAtom(o, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 3, c.DOF())
	assert.True(Te, c.Satisfied(0))
	assert.Len(Te, mol.Constraints(), 3)

	bad := units.S(1, units.EV)
	_, err = mol.ConstrainDistance(o, h2, &bad)
	assert.True(Te, errors.Is(err, ErrShape))
	_, err = mol.ConstrainDistance(o, o, nil)
	assert.True(Te, errors.Is(err, ErrDuplicateAtom))
	_, err = mol.ConstrainDistance(o, NewAtom("X", "C"), nil)
	assert.True(Te, errors.Is(err, ErrForeignAtom))
	short := units.V([]float64{1, 2}, units.Angstrom)
	_, err = mol.ConstrainAtom(o, &short)
	assert.True(Te, errors.Is(err, ErrShape))
	assert.Len(Te, mol.Constraints(), 3)
	mol.ClearConstraints()
	assert.Len(Te, mol.Constraints(), 0)
}

func TestDihedral(Te *testing.T) {
	a := NewAtomAt("A", "C", 1, 0, 0)
	b := NewAtomAt("B", "C", 0, 0, 0)
	c := NewAtomAt("C", "C", 0, 1, 0)
	d := NewAtomAt("D", "C", 0, 1, 1)
	assert.InDelta(Te, math.Pi/2, math.Abs(Dihedral(a, b, c, d)), 1e-9)
	d.SetPosition(1, 1, 0)
	assert.InDelta(Te, 0, Dihedral(a, b, c, d), 1e-9)
	assert.InDelta(Te, math.Pi/2, Angle(a, b, c), 1e-9)
	assert.InDelta(Te, -math.Pi+0.1, wrapAngle(math.Pi+0.1), 1e-12)
}

func TestMinimize(Te *testing.T) {
	model := newTether(5)
	mol, err := NewMolecule(waterAtoms(), &Options{Model: model})
	require.NoError(Te, err)
	_, err = mol.ConstrainAtom(mol.Atom(2), nil)
	require.NoError(Te, err)
	fixed := append([]float64(nil), mol.Positions().Flat()[6:9]...)
	//pull the atoms away from the minimum
	p := mol.Positions().Flat()
	for i := range p {
		p[i] += 0.05 * float64(i%3+1)
	}
	moved := append([]float64(nil), p[6:9]...)
	ctx := context.Background()
	t, err := mol.Minimize(ctx, &MinimizeOptions{Steps: 500, FrameInterval: 10, ForceTolerance: 1e-3, StepSize: 0.05, AssertConverged: true})
	require.NoError(Te, err)
	require.NotNil(Te, t)
	assert.Greater(Te, t.Len(), 1)
	assert.Less(Te, t.Last().PotentialEnergy, t.First().PotentialEnergy)
	assert.Equal(Te, fixed, mol.Positions().Flat()[6:9], "fixed atoms go back to their constrained position")
	assert.NotEqual(Te, fixed, moved)
	f, err := mol.Forces()
	require.NoError(Te, err)
	assert.True(Te, ForcesConverged(mol.FreeForces(f.Values), 1e-3))
	assert.False(Te, ForcesConverged(f.Values, 1e-3), "the fixed atom is still pulled")

	//not enough steps
	for i := range p {
		p[i] += 0.3
	}
	_, err = mol.Minimize(ctx, &MinimizeOptions{Steps: 1, ForceTolerance: 1e-6, StepSize: 0.01, AssertConverged: true})
	var cerr *ConvergenceError
	require.True(Te, errors.As(err, &cerr))
	assert.NotEmpty(Te, cerr.History)

	//without AssertConverged an unconverged optimization is fine
	_, err = mol.Minimize(ctx, &MinimizeOptions{Steps: 1, ForceTolerance: 1e-6, StepSize: 0.01})
	assert.NoError(Te, err)

	_, err = waterMolecule(Te).Minimize(ctx, nil)
	assert.True(Te, errors.Is(err, ErrNoEnergyModel))
}

func TestConstrainedMinimize(Te *testing.T) {
	ctx := context.Background()
	opts := &MinimizeOptions{Steps: 1000, FrameInterval: 100, ForceTolerance: 1e-3, StepSize: 0.05, AssertConverged: true, ConstraintTolerance: 1e-4}

	//the tether pulls the atoms back to 0.7434 A, the constraint keeps them at 1.5 A.
	a := NewAtomAt("H1", "H", 0, 0, 0)
	b := NewAtomAt("H2", "H", 0.7434, 0, 0)
	require.NoError(Te, a.BondTo(b, 1))
	h2, err := NewMolecule([]*Atom{a, b}, &Options{Model: newTether(5)})
	require.NoError(Te, err)
	target := units.S(1.5, units.Angstrom)
	c, err := h2.ConstrainDistance(a, b, &target)
	require.NoError(Te, err)
	_, err = h2.Minimize(ctx, opts)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.5, Distance(a, b), 1e-4)
	assert.True(Te, c.Satisfied(1e-4))
	assert.InDelta(Te, 0.7434/2, (a.Position().At(0, 0)+b.Position().At(0, 0))/2, 1e-6, "the bond stretches symmetrically")

	//angles, with an atom placed at an explicit position.
	wat, err := NewMolecule(waterAtoms(), &Options{Model: newTether(5)})
	require.NoError(Te, err)
	o, h1, h2at := wat.Atom(0), wat.Atom(1), wat.Atom(2)
	right := units.S(90, units.Degree)
	_, err = wat.ConstrainAngle(h1, o, h2at, &right)
	require.NoError(Te, err)
	place := units.V([]float64{0, 0, 0.2}, units.Angstrom)
	_, err = wat.ConstrainAtom(o, &place)
	require.NoError(Te, err)
	_, err = wat.Minimize(ctx, opts)
	require.NoError(Te, err)
	assert.InDelta(Te, math.Pi/2, Angle(h1, o, h2at), 1e-4)
	assert.Equal(Te, []float64{0, 0, 0.2}, wat.Positions().Flat()[0:3])

	//a constraint between fixed atoms can't be met.
	stuck, err := NewMolecule(waterAtoms(), &Options{Model: newTether(5)})
	require.NoError(Te, err)
	for _, at := range stuck.Atoms()[:2] {
		_, err = stuck.ConstrainAtom(at, nil)
		require.NoError(Te, err)
	}
	_, err = stuck.ConstrainDistance(stuck.Atom(0), stuck.Atom(1), &target)
	require.NoError(Te, err)
	_, err = stuck.Minimize(ctx, opts)
	var cerr *ConvergenceError
	assert.True(Te, errors.As(err, &cerr))
}

func TestConstraintSolver(Te *testing.T) {
	wat, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	o, h1, h2 := wat.Atom(0), wat.Atom(1), wat.Atom(2)
	d := units.S(1.0, units.Angstrom)
	_, err = wat.ConstrainDistance(o, h1, &d)
	require.NoError(Te, err)
	ang := &Constraint{Kind: FixedAngle, Atoms: []*Atom{h1, o, h2}, Value: units.V([]float64{2}, units.Radian)}
	S := wat.NewConstraintSolver(wat.Masses(), ang)
	assert.Equal(Te, 2, S.Len())
	require.NoError(Te, S.Shake())
	assert.InDelta(Te, 1.0, Distance(o, h1), 1e-7)
	assert.InDelta(Te, 2.0, Angle(h1, o, h2), 1e-7)

	//after projection, moving along v doesn't change the constrained quantities to first order.
	v := []float64{0.3, -0.2, 0.5, 1, 0.4, -0.7, -0.2, 0.9, 0.1}
	S.Project(v)
	m := wat.Masses()
	x := wat.Positions().Flat()
	for i := range x {
		x[i] += 1e-6 * v[i] / m[i]
	}
	assert.InDelta(Te, 1.0, Distance(o, h1), 1e-10)
	assert.InDelta(Te, 2.0, Angle(h1, o, h2), 1e-10)

	assert.False(Te, wat.PlaceFixedAtoms())
	fix, err := wat.ConstrainAtom(o, nil)
	require.NoError(Te, err)
	o.SetPosition(1, 1, 1)
	assert.True(Te, wat.PlaceFixedAtoms())
	assert.Equal(Te, 0.0, fix.Deviation())
	assert.False(Te, wat.PlaceFixedAtoms())
}

func waterMolecule(Te *testing.T) *Molecule {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	return mol
}

func TestForcesConverged(Te *testing.T) {
	assert.True(Te, ForcesConverged(nil, 0.1))
	assert.True(Te, ForcesConverged([]float64{0.01, -0.02, 0}, 0.05))
	assert.False(Te, ForcesConverged([]float64{0.01, -0.06, 0}, 0.05))
	//every component is below tolerance, but the mean square is not
	assert.False(Te, ForcesConverged([]float64{0.049, 0.049, 0.049}, 0.05))
}
