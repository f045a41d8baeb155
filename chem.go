/*
 * chem.go, part of gochemcore.
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
	"fmt"

	"github.com/google/uuid"
	v3 "github.com/rmera/gochemcore/v3"
)

/**Note: Many functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

//Atom is a node of the molecular graph. It can exist on its own (unattached) or belong to exactly
//one Molecule. Once attached, its position and momentum are views into the molecule's buffers,
//and it never migrates to another molecule: copy it instead.
type Atom struct {
	ID     uuid.UUID
	Name   string
	Symbol string
	AtNum  int
	Mass   float64 //amu

	index int       //-1 when unattached
	owner uuid.UUID //uuid.Nil when unattached
	bonds map[*Atom]int
	res   *Residue
	pos   *v3.Matrix //1x3, Angstrom
	mom   *v3.Matrix //1x3, amu*Angstrom/fs
}

//NewAtom returns an unattached atom of the given element, at the origin and at rest.
//The atomic number and mass are taken from the element tables when the symbol is known.
//If name is empty, the symbol is used.
func NewAtom(name, symbol string) *Atom {
	symbol = normalizeSymbol(symbol)
	if name == "" {
		name = symbol
	}
	atnum, mass, _ := ElementData(symbol)
	return &Atom{
		ID:     uuid.New(),
		Name:   name,
		Symbol: symbol,
		AtNum:  atnum,
		Mass:   mass,
		index:  -1,
		bonds:  make(map[*Atom]int),
		pos:    v3.Zeros(1),
		mom:    v3.Zeros(1),
	}
}

//NewAtomAt is like NewAtom, but places the atom at x, y, z (Angstrom).
func NewAtomAt(name, symbol string, x, y, z float64) *Atom {
	A := NewAtom(name, symbol)
	A.SetPosition(x, y, z)
	return A
}

//lazyInit fills the fields of an atom built as a struct literal.
func (A *Atom) lazyInit() {
	if A.bonds == nil {
		A.bonds = make(map[*Atom]int)
	}
	if A.pos == nil {
		A.pos = v3.Zeros(1)
	}
	if A.mom == nil {
		A.mom = v3.Zeros(1)
	}
	if A.owner == uuid.Nil {
		A.index = -1
	}
}

//Index returns the atom's index in its molecule, or -1 if it is unattached.
func (A *Atom) Index() int { return A.index }

//Owner returns the ID of the molecule the atom belongs to, or uuid.Nil.
func (A *Atom) Owner() uuid.UUID { return A.owner }

//Attached returns true if the atom belongs to a molecule.
func (A *Atom) Attached() bool { return A.owner != uuid.Nil }

//ParentSlice returns the range [start,end) of the molecule's flat position and momentum
//buffers that belongs to this atom, or -1,-1 if the atom is unattached.
func (A *Atom) ParentSlice() (int, int) {
	if A.index < 0 {
		return -1, -1
	}
	return 3 * A.index, 3*A.index + 3
}

//Position returns the 1x3 position of the atom, in Angstrom. For an attached atom it
//is a view of the molecule's buffer: changes to either are seen by both.
func (A *Atom) Position() *v3.Matrix { return A.pos }

//Momentum returns the 1x3 momentum of the atom (amu*Angstrom/fs). Like Position, it is a
//view for attached atoms.
func (A *Atom) Momentum() *v3.Matrix { return A.mom }

//SetPosition sets the atom's position, in Angstrom.
func (A *Atom) SetPosition(x, y, z float64) {
	A.lazyInit()
	A.pos.Set(0, 0, x)
	A.pos.Set(0, 1, y)
	A.pos.Set(0, 2, z)
}

//SetMomentum sets the atom's momentum, in amu*Angstrom/fs.
func (A *Atom) SetMomentum(px, py, pz float64) {
	A.lazyInit()
	A.mom.Set(0, 0, px)
	A.mom.Set(0, 1, py)
	A.mom.Set(0, 2, pz)
}

//Velocity returns the velocity of the atom in Angstrom/fs.
func (A *Atom) Velocity() []float64 {
	v := make([]float64, 3)
	for i := range v {
		v[i] = A.mom.At(0, i) / A.Mass
	}
	return v
}

//Residue returns the residue the atom belongs (or is assigned) to, or nil.
func (A *Atom) Residue() *Residue { return A.res }

//SetResidue assigns an unattached atom to r. r must not belong to another molecule by the time
//the atom is attached. It returns an error if the atom is already attached.
func (A *Atom) SetResidue(r *Residue) error {
	if A.Attached() {
		return newCError(ErrOwnershipViolation, "Atom.SetResidue", "atom %s already belongs to molecule %s", A.Name, A.owner)
	}
	A.res = r
	return nil
}

//NumBonds returns the number of atoms bonded to A.
func (A *Atom) NumBonds() int { return len(A.bonds) }

//BondOrder returns the order of the bond between A and B, and false if they are not bonded.
func (A *Atom) BondOrder(B *Atom) (int, bool) {
	o, ok := A.bonds[B]
	return o, ok
}

//Neighbors returns the atoms bonded to A. For attached atoms they are ordered by index.
func (A *Atom) Neighbors() []*Atom {
	ret := make([]*Atom, 0, len(A.bonds))
	for b := range A.bonds {
		ret = append(ret, b)
	}
	sortAtoms(ret)
	return ret
}

//BondTo bonds two unattached atoms with the given order, updating both atoms.
//Bonds between attached atoms are created with Molecule.NewBond.
func (A *Atom) BondTo(B *Atom, order int) error {
	if A.Attached() || B.Attached() {
		return newCError(ErrOwnershipViolation, "Atom.BondTo", "atoms %s and %s: use Molecule.NewBond for attached atoms", A.Name, B.Name)
	}
	if err := checkBond(A, B, order); err != nil {
		return errDecorate(err, "Atom.BondTo")
	}
	A.lazyInit()
	B.lazyInit()
	A.bonds[B] = order
	B.bonds[A] = order
	return nil
}

//RecordBond adds B to A's local bond map only. The matching entry in B is created when both
//atoms are assembled into a molecule.
func (A *Atom) RecordBond(B *Atom, order int) error {
	if A.Attached() {
		return newCError(ErrOwnershipViolation, "Atom.RecordBond", "atom %s is attached", A.Name)
	}
	if err := checkBond(A, B, order); err != nil {
		return errDecorate(err, "Atom.RecordBond")
	}
	A.lazyInit()
	A.bonds[B] = order
	return nil
}

func checkBond(A, B *Atom, order int) error {
	if A == B {
		return newCError(ErrBondOrder, "checkBond", "atom %s can't be bonded to itself", A.Name)
	}
	if order < 0 {
		return newCError(ErrBondOrder, "checkBond", "negative order %d for bond %s-%s", order, A.Name, B.Name)
	}
	return nil
}

func (A *Atom) String() string {
	if A.index < 0 {
		return fmt.Sprintf("%s (%s, unattached)", A.Name, A.Symbol)
	}
	return fmt.Sprintf("%s (%s, index %d)", A.Name, A.Symbol, A.index)
}

//CopyAtoms returns deep copies of atoms, with new IDs, unattached. Bonds between atoms in the set
//are kept, bonds to atoms outside it are dropped. Residues and chains are cloned into unattached
//templates, so the copies can be assembled into a new molecule with the same hierarchy.
func CopyAtoms(atoms []*Atom) []*Atom {
	ret := make([]*Atom, len(atoms))
	old2new := make(map[*Atom]*Atom, len(atoms))
	resmap := make(map[*Residue]*Residue)
	chainmap := make(map[*Chain]*Chain)
	for i, at := range atoms {
		at.lazyInit()
		n := &Atom{
			ID:     uuid.New(),
			Name:   at.Name,
			Symbol: at.Symbol,
			AtNum:  at.AtNum,
			Mass:   at.Mass,
			index:  -1,
			bonds:  make(map[*Atom]int, len(at.bonds)),
			pos:    at.pos.Clone(),
			mom:    at.mom.Clone(),
		}
		if at.res != nil {
			n.res = cloneResidue(at.res, resmap, chainmap)
		}
		ret[i] = n
		old2new[at] = n
	}
	for _, at := range atoms {
		n := old2new[at]
		for nb, order := range at.bonds {
			if nn, ok := old2new[nb]; ok {
				n.bonds[nn] = order
			}
		}
	}
	return ret
}

func cloneResidue(r *Residue, resmap map[*Residue]*Residue, chainmap map[*Chain]*Chain) *Residue {
	if c, ok := resmap[r]; ok {
		return c
	}
	c := &Residue{Name: r.Name, PDBName: r.PDBName, PDBIndex: r.PDBIndex, Type: r.Type, index: -1}
	if r.chain != nil {
		ch, ok := chainmap[r.chain]
		if !ok {
			ch = &Chain{Name: r.chain.Name, index: -1}
			chainmap[r.chain] = ch
		}
		c.chain = ch
	}
	resmap[r] = c
	return c
}
