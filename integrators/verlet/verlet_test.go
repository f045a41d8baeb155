/*
 * verlet_test.go, part of gochemcore.
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


package verlet

import (
	"context"
	"math"
	"testing"

	chem "github.com/rmera/gochemcore"
	"github.com/rmera/gochemcore/models/harmonic"
	"github.com/rmera/gochemcore/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stretchedH2(Te *testing.T, integ chem.Integrator) *chem.Molecule {
	a := chem.NewAtomAt("H1", "H", 0, 0, 0)
	b := chem.NewAtomAt("H2", "H", 0.9, 0, 0)
	require.NoError(Te, a.BondTo(b, 1))
	m := harmonic.New(&harmonic.Options{K: 30, Equilibria: map[[2]string]float64{{"H", "H"}: 0.74}})
	mol, err := chem.NewMolecule([]*chem.Atom{a, b}, &chem.Options{Model: m, Integrator: integ})
	require.NoError(Te, err)
	return mol
}

func TestEnergyConservation(Te *testing.T) {
	integ := New(&chem.IntegratorParams{Timestep: 0.1, FrameInterval: 10, RemoveTranslation: true})
	mol := stretchedH2(Te, integ)
	t, err := mol.Run(context.Background(), chem.Steps(1000))
	require.NoError(Te, err)
	assert.True(Te, integ.Prepared())
	assert.Equal(Te, 101, t.Len())
	assert.InDelta(Te, 100, mol.Time().Value, 1e-9)
	assert.Equal(Te, 1000, t.Last().Step)
	e0 := t.First().PotentialEnergy + t.First().KineticEnergy
	emin, emax := math.Inf(1), math.Inf(-1)
	for i := 0; i < t.Len(); i++ {
		f := t.Frame(i)
		e := f.PotentialEnergy + f.KineticEnergy
		assert.InDelta(Te, e0, e, 0.01*e0, "frame %d", i)
		emin = math.Min(emin, f.PotentialEnergy)
		emax = math.Max(emax, f.PotentialEnergy)
	}
	assert.Greater(Te, emax-emin, 0.5*e0, "the bond should oscillate")
	//the center of mass stays put
	com := mol.CenterOfMass()
	assert.InDelta(Te, 0.45, com[0], 1e-9)
	p := mol.Momenta().Flat()
	assert.InDelta(Te, 0, p[0]+p[3], 1e-12)
}

func TestFixedAtom(Te *testing.T) {
	integ := New(&chem.IntegratorParams{Timestep: 0.2, FrameInterval: 5})
	mol := stretchedH2(Te, integ)
	_, err := mol.ConstrainAtom(mol.Atom(0), nil)
	require.NoError(Te, err)
	l, err := chem.Duration(units.S(0.01, units.Picosecond))
	require.NoError(Te, err)
	t, err := mol.Run(context.Background(), l)
	require.NoError(Te, err)
	assert.Equal(Te, 11, t.Len())
	assert.Equal(Te, []float64{0, 0, 0}, mol.Positions().Flat()[:3])
	assert.Equal(Te, []float64{0, 0, 0}, mol.Momenta().Flat()[:3])
	assert.NotEqual(Te, 0.9, mol.Positions().At(1, 0))
	assert.Equal(Te, 3, mol.DynamicDOF())
	_, err = mol.KineticTemperature()
	assert.NoError(Te, err)
}

func TestBadSetup(Te *testing.T) {
	integ := New(&chem.IntegratorParams{Timestep: 0})
	mol := stretchedH2(Te, integ)
	_, err := mol.Run(context.Background(), chem.Steps(10))
	assert.Error(Te, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	integ.Params().Timestep = 1
	_, err = mol.Run(ctx, chem.Steps(10))
	assert.ErrorIs(Te, err, context.Canceled)
}

func TestDefaults(Te *testing.T) {
	integ := New(nil)
	assert.Equal(Te, 1.0, integ.Params().Timestep)
	assert.True(Te, integ.Params().RemoveTranslation)
}

//chain returns C1-C2-C3-H4, with stretched bonds.
func chain(Te *testing.T, integ chem.Integrator) *chem.Molecule {
	c1 := chem.NewAtomAt("C1", "C", 0, 0, 0)
	c2 := chem.NewAtomAt("C2", "C", 1.7, 0, 0)
	c3 := chem.NewAtomAt("C3", "C", 2.3, 1.4, 0)
	h4 := chem.NewAtomAt("H4", "H", 3.3, 1.5, 0.6)
	require.NoError(Te, c1.BondTo(c2, 1))
	require.NoError(Te, c2.BondTo(c3, 1))
	require.NoError(Te, c3.BondTo(h4, 1))
	mol, err := chem.NewMolecule([]*chem.Atom{c1, c2, c3, h4}, &chem.Options{Model: harmonic.New(nil), Integrator: integ})
	require.NoError(Te, err)
	return mol
}

func TestConstrainedDynamics(Te *testing.T) {
	integ := New(&chem.IntegratorParams{Timestep: 0.5, FrameInterval: 10, RemoveTranslation: true, Constraints: []string{chem.HBondConstraints}})
	mol := chain(Te, integ)
	c1, c2, c3, h4 := mol.Atom(0), mol.Atom(1), mol.Atom(2), mol.Atom(3)
	ch := chem.Distance(c3, h4)
	cc := chem.Distance(c1, c2)
	ang, err := mol.ConstrainAngle(c1, c2, c3, nil)
	require.NoError(Te, err)
	dih, err := mol.ConstrainDihedral(c1, c2, c3, h4, nil)
	require.NoError(Te, err)
	t, err := mol.Run(context.Background(), chem.Steps(300))
	require.NoError(Te, err)
	assert.InDelta(Te, ch, chem.Distance(c3, h4), 1e-6)
	assert.True(Te, ang.Satisfied(1e-6))
	assert.True(Te, dih.Satisfied(1e-6))
	assert.NotEqual(Te, cc, chem.Distance(c1, c2), "unconstrained bonds move")
	e0 := t.First().PotentialEnergy + t.First().KineticEnergy
	e1 := t.Last().PotentialEnergy + t.Last().KineticEnergy
	assert.InDelta(Te, e0, e1, 0.02*e0)

	//momenta have no component along the constraints.
	p := mol.Momenta().Flat()
	m := mol.Masses()
	x := mol.Positions().Flat()
	for i := range x {
		x[i] += 1e-6 * p[i] / m[i]
	}
	assert.InDelta(Te, ch, chem.Distance(c3, h4), 1e-9)
}

//angularMomentum returns the angular momentum around the center of mass.
func angularMomentum(mol *chem.Molecule) [3]float64 {
	com := mol.CenterOfMass()
	x := mol.Positions().Flat()
	p := mol.Momenta().Flat()
	var L [3]float64
	for i := 0; i < len(x); i += 3 {
		rx, ry, rz := x[i]-com[0], x[i+1]-com[1], x[i+2]-com[2]
		L[0] += ry*p[i+2] - rz*p[i+1]
		L[1] += rz*p[i] - rx*p[i+2]
		L[2] += rx*p[i+1] - ry*p[i]
	}
	return L
}

func TestRemoveRotation(Te *testing.T) {
	for _, linear := range []bool{false, true} {
		integ := New(&chem.IntegratorParams{Timestep: 0.5, FrameInterval: 1, RemoveTranslation: true, RemoveRotation: true})
		ats := []*chem.Atom{
			chem.NewAtomAt("O1", "O", 0, 0, 0),
			chem.NewAtomAt("C2", "C", 1.2, 0, 0),
			chem.NewAtomAt("O3", "O", 2.4, 0.8, 0),
		}
		if linear {
			ats[2].SetPosition(2.4, 0, 0)
		}
		require.NoError(Te, ats[0].BondTo(ats[1], 2))
		require.NoError(Te, ats[1].BondTo(ats[2], 2))
		mol, err := chem.NewMolecule(ats, &chem.Options{Model: harmonic.New(nil), Integrator: integ})
		require.NoError(Te, err)
		require.NoError(Te, mol.SetMomenta([]float64{0.1, 0.5, 0.2, 0, -0.3, 0.1, 0.2, 0.4, -0.6}))
		_, err = mol.Run(context.Background(), chem.Steps(3))
		require.NoError(Te, err)
		L := angularMomentum(mol)
		for k := range L {
			assert.InDelta(Te, 0, L[k], 1e-9, "linear: %v", linear)
		}
		p := mol.Momenta().Flat()
		for k := 0; k < 3; k++ {
			assert.InDelta(Te, 0, p[k]+p[3+k]+p[6+k], 1e-9)
		}
		assert.Equal(Te, 4, mol.DynamicDOF())
	}
}

func TestFixedAtomTarget(Te *testing.T) {
	integ := New(&chem.IntegratorParams{Timestep: 0.2, FrameInterval: 5})
	mol := stretchedH2(Te, integ)
	target := units.V([]float64{0.1, 0, 0}, units.Angstrom)
	_, err := mol.ConstrainAtom(mol.Atom(0), &target)
	require.NoError(Te, err)
	_, err = mol.Run(context.Background(), chem.Steps(20))
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0.1, 0, 0}, mol.Positions().Flat()[:3])
}
