/*
 * molecule_test.go, part of gochemcore.
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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWater(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	assert.Equal(Te, 3, mol.Len())
	assert.Equal(Te, 9, mol.NDims())
	assert.Equal(Te, 2, mol.NumBonds())
	assert.Equal(Te, "H2O1", mol.Stoichiometry())
	assert.Equal(Te, "H2O1", mol.Name)
	assert.False(Te, mol.IsBiomolecule())
	assert.True(Te, mol.IsSmallMolecule())
	assert.Equal(Te, 10, mol.NumElectrons())
	assert.Equal(Te, 4, mol.Homo())
	assert.Equal(Te, 5, mol.Lumo())
	assert.InDelta(Te, 18.015, mol.Mass(), 0.01)
	require.Equal(Te, 1, mol.NumResidues())
	require.Equal(Te, 1, mol.NumChains())
	r := mol.Residue(0)
	assert.Equal(Te, DefaultResidueName, r.Name)
	assert.Equal(Te, DefaultChainName, r.Chain().Name)
	assert.Equal(Te, []int{0, 1, 2}, r.AtomIndexes())
	c, ok := mol.Chain(DefaultChainName)
	require.True(Te, ok)
	assert.Equal(Te, []int{0}, c.ResidueIndexes())
	bonds := mol.Bonds()
	require.Len(Te, bonds, 2)
	for _, b := range bonds {
		assert.Equal(Te, "O", b.At1.Name)
		assert.InDelta(Te, 0.9572, b.Length(), 1e-3)
	}
	assert.InDelta(Te, 104.5, Angle(mol.Atom(1), mol.Atom(0), mol.Atom(2))*180/3.141592653589793, 0.1)
}

func TestBondSymmetry(Te *testing.T) {
	c := NewAtomAt("C", "C", 0, 0, 0)
	o := NewAtomAt("O", "O", 1.2, 0, 0)
	h := NewAtomAt("H", "H", -1, 0, 0)
	require.NoError(Te, c.RecordBond(o, 2))
	require.NoError(Te, h.RecordBond(c, 1))
	mol, err := NewMolecule([]*Atom{c, o, h}, nil)
	require.NoError(Te, err)
	for _, at := range mol.Atoms() {
		for _, nb := range at.Neighbors() {
			o1, _ := at.BondOrder(nb)
			o2, ok := nb.BondOrder(at)
			assert.True(Te, ok, "%s is bonded to %s, but not the other way around", at, nb)
			assert.Equal(Te, o1, o2)
		}
	}
	sum := 0
	for _, at := range mol.Atoms() {
		sum += at.NumBonds()
	}
	assert.Equal(Te, sum/2, mol.NumBonds())
	assert.Equal(Te, 2, mol.NumBonds())
	order, _ := mol.Atom(1).BondOrder(mol.Atom(0))
	assert.Equal(Te, 2, order)
}

func TestParentSlices(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	covered := make([]bool, mol.NDims())
	for i, at := range mol.Atoms() {
		assert.Equal(Te, i, at.Index())
		assert.Equal(Te, mol.ID, at.Owner())
		s, e := at.ParentSlice()
		assert.Equal(Te, 3, e-s)
		for j := s; j < e; j++ {
			assert.False(Te, covered[j], "dimension %d covered twice", j)
			covered[j] = true
		}
	}
	for j, c := range covered {
		assert.True(Te, c, "dimension %d not covered", j)
	}
	s, e := NewAtom("", "C").ParentSlice()
	assert.Equal(Te, -1, s)
	assert.Equal(Te, -1, e)
}

func TestPositionViews(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	h := mol.Atom(1)
	h.SetPosition(1, 2, 3)
	assert.Equal(Te, []float64{1, 2, 3}, mol.Positions().Flat()[3:6])
	p := mol.Positions().Flat()
	p2 := make([]float64, len(p))
	for i := range p2 {
		p2[i] = float64(i)
	}
	require.NoError(Te, mol.SetPositions(p2))
	assert.Equal(Te, 6.0, mol.Atom(2).Position().At(0, 0))
	assert.Error(Te, mol.SetPositions(p2[1:]))
	mol.Atom(0).SetMomentum(0.5, 0, 0)
	assert.Equal(Te, 0.5, mol.Momenta().At(0, 0))
	assert.InDelta(Te, 0.5/15.999, mol.Atom(0).Velocity()[0], 1e-6)
}

func TestConstructionErrors(Te *testing.T) {
	a := NewAtom("A", "C")
	b := NewAtom("B", "C")
	_, err := NewMolecule([]*Atom{a, b, a}, nil)
	assert.True(Te, errors.Is(err, ErrDuplicateAtom))

	require.NoError(Te, a.RecordBond(b, 1))
	require.NoError(Te, b.RecordBond(a, 2))
	_, err = NewMolecule([]*Atom{a, b}, nil)
	assert.True(Te, errors.Is(err, ErrInconsistentBondOrder))
	var cerr Error
	require.True(Te, errors.As(err, &cerr))
	assert.True(Te, cerr.Critical())
	assert.False(Te, a.Attached(), "failed construction must not adopt atoms")
	assert.Equal(Te, -1, a.Index())

	c := NewAtom("C", "C")
	d := NewAtom("D", "C")
	out := NewAtom("Out", "C")
	require.NoError(Te, c.BondTo(out, 1))
	_, err = NewMolecule([]*Atom{c, d}, nil)
	assert.True(Te, errors.Is(err, ErrForeignAtom))
	assert.Equal(Te, 1, c.NumBonds())

	_, err = NewMolecule(nil, nil)
	assert.True(Te, errors.Is(err, ErrNoAtoms))

	assert.Error(Te, c.BondTo(c, 1))
	assert.Error(Te, c.BondTo(d, -1))
}

func TestAddAtoms(Te *testing.T) {
	model := newTether(1)
	integ := &stillIntegrator{}
	a := NewAtomAt("C1", "C", 0, 0, 0)
	b := NewAtomAt("C2", "C", 1.54, 0, 0)
	require.NoError(Te, a.BondTo(b, 1))
	mol, err := NewMolecule([]*Atom{a, b}, &Options{Model: model, Integrator: integ})
	require.NoError(Te, err)
	model.prepared, integ.prepared = true, true
	mol.SetDynamicDOF(1)
	before := append([]float64(nil), mol.Positions().Flat()...)

	h := NewAtomAt("H", "H", -1.09, 0, 0)
	require.NoError(Te, h.RecordBond(mol.Atom(0), 1))
	require.NoError(Te, mol.AddAtom(h))
	assert.Equal(Te, 3, mol.Len())
	assert.Equal(Te, 2, h.Index())
	assert.Equal(Te, 0, a.Index())
	assert.Equal(Te, before, mol.Positions().Flat()[:6])
	assert.Equal(Te, -1.09, mol.Positions().At(2, 0))
	order, ok := mol.Atom(0).BondOrder(h)
	assert.True(Te, ok)
	assert.Equal(Te, 1, order)
	assert.Equal(Te, 2, mol.NumBonds())
	assert.False(Te, model.Prepared())
	assert.False(Te, integ.Prepared())
	assert.Equal(Te, 9, mol.DynamicDOF(), "adding atoms drops the DOF override")

	//already attached
	err = mol.AddAtom(h)
	assert.True(Te, errors.Is(err, ErrOwnershipViolation))
	other, err := NewMolecule([]*Atom{NewAtom("N", "N")}, nil)
	require.NoError(Te, err)
	err = mol.AddAtoms(other.Atoms())
	assert.True(Te, errors.Is(err, ErrOwnershipViolation))
	assert.Equal(Te, 3, mol.Len())
}

func TestCopyOnConstruction(Te *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)
	m1, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	m2, err := NewMolecule(m1.Atoms(), &Options{Name: "copy"})
	require.NoError(Te, err)
	assert.Equal(Te, 1, obs.FilterMessage("copying atoms into new molecule").Len())
	assert.Equal(Te, "copy", m2.Name)
	assert.NotEqual(Te, m1.ID, m2.ID)
	assert.Equal(Te, 2, m2.NumBonds())
	for i := 0; i < m1.Len(); i++ {
		assert.NotSame(Te, m1.Atom(i), m2.Atom(i))
		assert.NotEqual(Te, m1.Atom(i).ID, m2.Atom(i).ID)
		assert.Equal(Te, m1.ID, m1.Atom(i).Owner())
		assert.Equal(Te, m2.ID, m2.Atom(i).Owner())
	}
	assert.Equal(Te, m1.Positions().Flat(), m2.Positions().Flat())
	m2.Atom(0).SetPosition(5, 5, 5)
	assert.NotEqual(Te, m1.Positions().Flat(), m2.Positions().Flat())
}

func TestHierarchy(Te *testing.T) {
	chA := NewChain("A")
	var atoms []*Atom
	for i, name := range []string{"ALA", "GLY", "TRP"} {
		r := NewResidue(name, i+1, chA)
		for _, an := range []string{"N", "C"} {
			at := NewAtomAt(an, an, float64(i)*3, 0, 0)
			require.NoError(Te, at.SetResidue(r))
			atoms = append(atoms, at)
		}
	}
	hoh := NewResidue("HOH", 1, nil)
	w := NewAtomAt("OW", "O", 10, 10, 10)
	require.NoError(Te, w.SetResidue(hoh))
	atoms = append(atoms, w)
	free := NewAtomAt("NA", "Na", -10, 0, 0)
	atoms = append(atoms, free)

	mol, err := NewMolecule(atoms, nil)
	require.NoError(Te, err)
	assert.True(Te, mol.IsBiomolecule())
	assert.Equal(Te, 5, mol.NumResidues())
	assert.Equal(Te, 2, mol.NumChains())
	seq, err := mol.Sequence(chA)
	require.NoError(Te, err)
	assert.Equal(Te, "AGW", seq)
	assert.Equal(Te, Protein, mol.Residue(0).Type)
	assert.Equal(Te, "ALA1", mol.Residue(0).Name)
	assert.Equal(Te, Water, hoh.Type)
	assert.Equal(Te, DefaultChainName, hoh.Chain().Name)
	assert.Equal(Te, DefaultResidueName, free.Residue().Name)
	ats, err := mol.ResidueAtoms(mol.Residue(1))
	require.NoError(Te, err)
	require.Len(Te, ats, 2)
	assert.Equal(Te, 2, ats[0].Index())
	for _, r := range mol.Residues() {
		assert.Equal(Te, mol.ID, r.Owner())
		assert.Equal(Te, mol.ID, r.Chain().Owner())
	}
	assert.Error(Te, w.SetResidue(nil))
	assert.Error(Te, hoh.SetChain(chA))

	//a second chain called A
	r := NewResidue("LYS", 4, NewChain("A"))
	k := NewAtom("NZ", "N")
	require.NoError(Te, k.SetResidue(r))
	err = mol.AddAtom(k)
	assert.True(Te, errors.Is(err, ErrDuplicateChain))
	assert.False(Te, k.Attached())
	assert.Equal(Te, 2, mol.NumChains())

	//residues of other molecules can't be reused
	k2 := NewAtom("NZ", "N")
	require.NoError(Te, k2.SetResidue(mol.Residue(0)))
	m2, err := NewMolecule([]*Atom{NewAtom("", "C")}, nil)
	require.NoError(Te, err)
	err = m2.AddAtom(k2)
	assert.True(Te, errors.Is(err, ErrOwnershipViolation))
}

func TestUserChainNamedLikeDefault(Te *testing.T) {
	z := NewChain(DefaultChainName)
	a := NewAtomAt("CA", "C", 0, 0, 0)
	require.NoError(Te, a.SetResidue(NewResidue("ALA", 1, z)))
	b := NewAtomAt("O", "O", 5, 0, 0)
	mol, err := NewMolecule([]*Atom{a, b}, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 2, mol.NumChains())
	assert.NotSame(Te, a.Residue().Chain(), b.Residue().Chain())
	c, ok := mol.Chain(DefaultChainName)
	require.True(Te, ok)
	assert.Same(Te, z, c)

	//both orders, and later additions.
	d := NewAtomAt("N", "N", 0, 5, 0)
	z2 := NewChain(DefaultChainName)
	e := NewAtomAt("CB", "C", 0, 0, 5)
	require.NoError(Te, e.SetResidue(NewResidue("GLY", 1, z2)))
	mol2, err := NewMolecule([]*Atom{d, e}, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 2, mol2.NumChains())
	f := NewAtomAt("OW", "O", 9, 9, 9)
	require.NoError(Te, mol2.AddAtom(f))
	assert.Same(Te, d.Residue(), f.Residue())
	assert.Equal(Te, 2, mol2.NumChains())

	//two user chains with the same name are still an error.
	g := NewAtomAt("CG", "C", 3, 3, 3)
	require.NoError(Te, g.SetResidue(NewResidue("LEU", 2, NewChain(DefaultChainName))))
	err = mol2.AddAtom(g)
	assert.True(Te, errors.Is(err, ErrDuplicateChain))
}

func TestSingleBiopolymerResidue(Te *testing.T) {
	r := NewResidue("ALA", 1, NewChain("A"))
	at := NewAtom("CA", "C")
	require.NoError(Te, at.SetResidue(r))
	mol, err := NewMolecule([]*Atom{at}, nil)
	require.NoError(Te, err)
	assert.False(Te, mol.IsBiomolecule())
}

func TestBondEditing(Te *testing.T) {
	model := newTether(1)
	mol, err := NewMolecule(waterAtoms(), &Options{Model: model})
	require.NoError(Te, err)
	model.prepared = true
	b, err := mol.NewBond(mol.Atom(1), mol.Atom(2), 1)
	require.NoError(Te, err)
	assert.Equal(Te, 3, mol.NumBonds())
	assert.False(Te, model.Prepared())
	assert.Same(Te, mol.Atom(2), b.Cross(mol.Atom(1)))
	model.prepared = true
	require.NoError(Te, mol.DeleteBond(b))
	assert.Equal(Te, 2, mol.NumBonds())
	assert.False(Te, model.Prepared())
	assert.Error(Te, mol.DeleteBond(b))
	_, err = mol.NewBond(mol.Atom(0), NewAtom("X", "C"), 1)
	assert.True(Te, errors.Is(err, ErrForeignAtom))
}

func TestGuessBonds(Te *testing.T) {
	ats := waterAtoms()
	for _, at := range ats {
		for _, nb := range at.Neighbors() {
			delete(at.bonds, nb)
		}
	}
	require.NoError(Te, GuessBonds(ats))
	mol, err := NewMolecule(ats, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 2, mol.NumBonds())
	_, ok := mol.Atom(1).BondOrder(mol.Atom(2))
	assert.False(Te, ok)
	assert.Error(Te, GuessBonds(mol.Atoms()))
}
