/*
 * bonds.go, part of gochemcore.
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
	"sort"

	v3 "github.com/rmera/gochemcore/v3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

//Bond is a view over the mutual bond-map entries of two atoms. It is not stored anywhere,
//molecules and atoms build them on demand.
type Bond struct {
	At1   *Atom
	At2   *Atom
	Order int
}

//Cross returns the atom in the bond that is not origin. It panics if origin is not in the bond.
func (B Bond) Cross(origin *Atom) *Atom {
	if origin == B.At1 {
		return B.At2
	}
	if origin == B.At2 {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //programming error
}

//Equal returns true if both bonds join the same pair of atoms, in any order.
func (B Bond) Equal(o Bond) bool {
	return (B.At1 == o.At1 && B.At2 == o.At2) || (B.At1 == o.At2 && B.At2 == o.At1)
}

//Length returns the distance between the bonded atoms, in Angstrom.
func (B Bond) Length() float64 {
	return Distance(B.At1, B.At2)
}

func (B Bond) String() string {
	return fmt.Sprintf("%s-%s (order %d)", B.At1.Name, B.At2.Name, B.Order)
}

//sortAtoms orders atoms by index. Unattached atoms (index -1) keep their relative order at the front.
func sortAtoms(ats []*Atom) {
	sort.SliceStable(ats, func(i, j int) bool { return ats[i].index < ats[j].index })
}

//Bonds returns every bond of the molecule exactly once, ordered by the index of the first atom and
//then by that of the second. At1 always has the lower index.
func (M *Molecule) Bonds() []Bond {
	ret := make([]Bond, 0, M.NumBonds())
	for _, at := range M.atoms {
		for _, nb := range at.Neighbors() {
			if nb.index < at.index {
				continue //don't count twice
			}
			ret = append(ret, Bond{At1: at, At2: nb, Order: at.bonds[nb]})
		}
	}
	return ret
}

//NumBonds returns half the sum of the sizes of all the atoms' bond maps.
func (M *Molecule) NumBonds() int {
	n := 0
	for _, at := range M.atoms {
		n += len(at.bonds)
	}
	if n%2 != 0 {
		panic(newCError(ErrTopologyInvariant, "Molecule.NumBonds", "odd number (%d) of bond map entries", n))
	}
	return n / 2
}

//NewBond bonds two atoms of the molecule with the given order, replacing any previous bond between
//them. Bound energy models and integrators are reset.
func (M *Molecule) NewBond(a1, a2 *Atom, order int) (Bond, error) {
	if err := M.assertAtoms("Molecule.NewBond", a1, a2); err != nil {
		return Bond{}, err
	}
	if err := checkBond(a1, a2, order); err != nil {
		return Bond{}, errDecorate(err, "Molecule.NewBond")
	}
	a1.bonds[a2] = order
	a2.bonds[a1] = order
	M.resetMethods()
	return Bond{At1: a1, At2: a2, Order: order}, nil
}

//DeleteBond removes the bond b from the molecule. Bound energy models and integrators are reset.
func (M *Molecule) DeleteBond(b Bond) error {
	if err := M.assertAtoms("Molecule.DeleteBond", b.At1, b.At2); err != nil {
		return err
	}
	if _, ok := b.At1.bonds[b.At2]; !ok {
		return newCError(ErrBondOrder, "Molecule.DeleteBond", "atoms %s and %s are not bonded", b.At1.Name, b.At2.Name)
	}
	delete(b.At1.bonds, b.At2)
	delete(b.At2.bonds, b.At1)
	M.resetMethods()
	return nil
}

//GuessBonds bonds unattached atoms based on a simple distance criterion, similar
//to that described in DOI:10.1186/1758-2946-3-33. All bonds are created with order 1. Atoms
//with more bonds than allowed for their element lose their longest bonds.
//It's really not thought for proteins or macromolecules, as it scales quadratically.
func GuessBonds(atoms []*Atom) error {
	for i, at := range atoms {
		if at.Attached() {
			return newCError(ErrOwnershipViolation, "GuessBonds", "atom %d (%s) is attached", i, at.Name)
		}
		if CovalentRadius(at.Symbol) == 0 {
			return newCError(ErrBondOrder, "GuessBonds", "couldn't find the covalent radius for %s %d", at.Symbol, i)
		}
		at.lazyInit()
	}
	t := v3.Zeros(1)
	for i, at1 := range atoms {
		cov1 := CovalentRadius(at1.Symbol)
		for _, at2 := range atoms[i+1:] {
			t.Sub(at2.pos, at1.pos)
			d := t.Norm()
			if d < cov1+CovalentRadius(at2.Symbol)+bondtol && d > tooclose {
				at1.bonds[at2] = 1
				at2.bonds[at1] = 1
			}
		}
	}
	//Now we check that no atom has too many bonds.
	for _, at := range atoms {
		max := elements[normalizeSymbol(at.Symbol)].maxbonds
		if max == 0 || len(at.bonds) <= max {
			continue
		}
		nb := make([]*Atom, 0, len(at.bonds))
		for b := range at.bonds {
			nb = append(nb, b)
		}
		sort.Slice(nb, func(i, j int) bool { return Distance(at, nb[i]) < Distance(at, nb[j]) })
		for _, b := range nb[max:] { //we remove the longest bonds
			delete(at.bonds, b)
			delete(b.bonds, at)
		}
	}
	return nil
}
