/*
 * molecule.go, part of gochemcore.
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
	"strings"

	"github.com/google/uuid"
	"github.com/rmera/gochemcore/units"
	v3 "github.com/rmera/gochemcore/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

//Options for NewMolecule.
type Options struct {
	Name       string //if empty, derived from the stoichiometry
	PDBName    string
	Charge     int //formal charge, in elementary charges
	CopyAtoms  bool
	Model      EnergyModel
	Integrator Integrator
}

//DefaultOptions returns the options NewMolecule uses when given nil.
func DefaultOptions() *Options {
	return &Options{}
}

//Molecule owns a set of atoms, their hierarchy (residues, chains), the flat position and momentum
//buffers the atoms are views of, a list of constraints, and a cache of computed properties.
//It may be bound to one energy model and one integrator, which it does not own.
//A Molecule is not safe for concurrent mutation.
type Molecule struct {
	ID      uuid.UUID
	Name    string
	PDBName string

	charge int
	time   float64 //fs

	atoms    []*Atom
	residues []*Residue
	chains   []*Chain
	defres   *Residue
	defchain *Chain

	positions *v3.Matrix //Angstrom
	momenta   *v3.Matrix //amu*Angstrom/fs
	masses    []float64  //amu, one per dimension

	biomolecule bool
	constraints []*Constraint
	dof         *int

	model      EnergyModel
	integrator Integrator
	props      *Properties
	store      PropertyStore
}

//NewMolecule builds a molecule from atoms. Unattached atoms are adopted. If any atom already belongs
//to a molecule, or if o.CopyAtoms is set, the whole set is copied first.
//Bonds recorded by the atoms are symmetrized, and atoms with no residue are placed in a default
//residue (UNK999) in a default chain (Z). On error, the atoms are left untouched.
func NewMolecule(atoms []*Atom, o *Options) (*Molecule, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if len(atoms) == 0 {
		return nil, newCError(ErrNoAtoms, "NewMolecule", "a molecule needs at least one atom")
	}
	copyats := o.CopyAtoms
	seen := make(map[*Atom]bool, len(atoms))
	for i, at := range atoms {
		if at == nil {
			return nil, newCError(ErrNoAtoms, "NewMolecule", "nil atom at position %d", i)
		}
		if seen[at] {
			return nil, newCError(ErrDuplicateAtom, "NewMolecule", "atom %s appears more than once (position %d)", at.Name, i)
		}
		seen[at] = true
		if at.Attached() {
			copyats = true
		}
	}
	if copyats {
		clog.Info("copying atoms into new molecule", zap.Int("atoms", len(atoms)))
		atoms = CopyAtoms(atoms)
	}
	M := &Molecule{
		ID:      uuid.New(),
		PDBName: o.PDBName,
		charge:  o.Charge,
	}
	if err := M.rebuildTopology(atoms); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	switch {
	case o.Name != "":
		M.Name = o.Name
	case M.IsSmallMolecule():
		M.Name = M.Stoichiometry()
	default:
		M.Name = "unnamed macromolecule"
	}
	M.props = NewProperties(M.positions.Flat())
	if o.Model != nil {
		M.SetEnergyModel(o.Model)
	}
	if o.Integrator != nil {
		M.SetIntegrator(o.Integrator)
	}
	return M, nil
}

//AddAtom adds one unattached atom to the molecule. See AddAtoms.
func (M *Molecule) AddAtom(at *Atom) error {
	return errDecorate(M.AddAtoms([]*Atom{at}), "Molecule.AddAtom")
}

//AddAtoms adds unattached atoms to the molecule. Atoms already in the molecule keep their indexes,
//and bonds recorded by the new atoms toward them are mirrored. Atoms that belong to a molecule
//must be copied with CopyAtoms first. On error, the molecule is not modified.
func (M *Molecule) AddAtoms(ats []*Atom) error {
	return errDecorate(M.rebuildTopology(ats), "Molecule.AddAtoms")
}

//resetMethods marks the bound energy model and integrator as not prepared.
func (M *Molecule) resetMethods() {
	if M.model != nil {
		M.model.SetPrepared(false)
	}
	if M.integrator != nil {
		M.integrator.SetPrepared(false)
	}
}

//Atom returns the atom with index i. It panics if i is out of range.
func (M *Molecule) Atom(i int) *Atom { return M.atoms[i] }

//Atoms returns the atoms of the molecule, in index order.
func (M *Molecule) Atoms() []*Atom {
	ret := make([]*Atom, len(M.atoms))
	copy(ret, M.atoms)
	return ret
}

//Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int { return len(M.atoms) }

//NDims returns the number of degrees of freedom of the molecule, 3 per atom.
func (M *Molecule) NDims() int { return 3 * len(M.atoms) }

//Positions returns the molecule's Nx3 position buffer (Angstrom). Changes to it are seen by the atoms.
func (M *Molecule) Positions() *v3.Matrix { return M.positions }

//Momenta returns the molecule's Nx3 momentum buffer (amu*Angstrom/fs).
func (M *Molecule) Momenta() *v3.Matrix { return M.momenta }

//Masses returns a copy of the mass of each degree of freedom (3 per atom), in amu.
func (M *Molecule) Masses() []float64 {
	ret := make([]float64, len(M.masses))
	copy(ret, M.masses)
	return ret
}

//SetPositions copies p (x1,y1,z1,x2...; Angstrom) into the position buffer.
func (M *Molecule) SetPositions(p []float64) error {
	if len(p) != M.NDims() {
		return newCError(ErrShape, "Molecule.SetPositions", "got %d values for %d dimensions", len(p), M.NDims())
	}
	copy(M.positions.Flat(), p)
	return nil
}

//SetMomenta copies p (amu*Angstrom/fs) into the momentum buffer.
func (M *Molecule) SetMomenta(p []float64) error {
	if len(p) != M.NDims() {
		return newCError(ErrShape, "Molecule.SetMomenta", "got %d values for %d dimensions", len(p), M.NDims())
	}
	copy(M.momenta.Flat(), p)
	return nil
}

//Charge returns the formal charge of the molecule.
func (M *Molecule) Charge() int { return M.charge }

//SetCharge sets the formal charge of the molecule. The bound model's charge is not changed.
func (M *Molecule) SetCharge(c int) { M.charge = c }

//Time returns the molecule's simulation time.
func (M *Molecule) Time() units.Scalar { return units.S(M.time, units.Femtosecond) }

//SetTime sets the molecule's simulation time, in fs.
func (M *Molecule) SetTime(t float64) { M.time = t }

//Mass returns the total mass of the molecule, in amu.
func (M *Molecule) Mass() float64 {
	return floats.Sum(M.masses) / 3
}

//IsSmallMolecule returns true if the molecule weights 500 amu or less. It is not mutually exclusive
//with IsBiomolecule.
func (M *Molecule) IsSmallMolecule() bool {
	return M.Mass() <= 500.0
}

//NumElectrons returns the number of electrons, based on the atomic numbers and the charge.
func (M *Molecule) NumElectrons() int {
	n := 0
	for _, at := range M.atoms {
		n += at.AtNum
	}
	return n - M.charge
}

//Homo returns the 0-based index of the highest occupied molecular orbital.
//It assumes a closed shell ground state.
func (M *Molecule) Homo() int {
	return M.NumElectrons()/2 - 1
}

//Lumo returns the 0-based index of the lowest unoccupied molecular orbital.
//It assumes a closed shell ground state.
func (M *Molecule) Lumo() int {
	return M.NumElectrons() / 2
}

//Stoichiometry returns the formula of the molecule, with the element symbols in alphabetical order,
//each followed by its count, i.e. "H2O1".
func (M *Molecule) Stoichiometry() string {
	counts := make(map[string]int)
	for _, at := range M.atoms {
		counts[at.Symbol]++
	}
	syms := make([]string, 0, len(counts))
	for k := range counts {
		syms = append(syms, k)
	}
	sort.Strings(syms)
	var b strings.Builder
	for _, s := range syms {
		fmt.Fprintf(&b, "%s%d", s, counts[s])
	}
	return b.String()
}

//CenterOfMass returns the mass-weighted center of the molecule (Angstrom).
func (M *Molecule) CenterOfMass() []float64 {
	com := make([]float64, 3)
	var tot float64
	for _, at := range M.atoms {
		for j := 0; j < 3; j++ {
			com[j] += at.Mass * at.pos.At(0, j)
		}
		tot += at.Mass
	}
	floats.Scale(1/tot, com)
	return com
}

func (M *Molecule) String() string {
	return fmt.Sprintf("Molecule %s: %d atoms, %d bonds, %d residues, %d chains", M.Name, M.Len(), M.NumBonds(), len(M.residues), len(M.chains))
}
