/*
 * hierarchy.go, part of gochemcore.
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
	"strings"

	"github.com/google/uuid"
)

//ResidueType classifies residues.
type ResidueType int

const (
	Unknown ResidueType = iota
	Protein
	DNA
	RNA
	Water
	Solvent
)

func (t ResidueType) String() string {
	switch t {
	case Protein:
		return "protein"
	case DNA:
		return "dna"
	case RNA:
		return "rna"
	case Water:
		return "water"
	case Solvent:
		return "solvent"
	}
	return "unknown"
}

//Biopolymer returns true for protein, dna and rna residues.
func (t ResidueType) Biopolymer() bool {
	return t == Protein || t == DNA || t == RNA
}

//one-letter codes for amino acids and nucleotides.
var residueOneLetter = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLN": 'Q', "GLU": 'E', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	//protonation states and other common variants
	"HID": 'H', "HIE": 'H', "HIP": 'H', "HSD": 'H', "HSE": 'H', "HSP": 'H',
	"ASH": 'D', "GLH": 'E', "LYN": 'K', "CYX": 'C', "CYM": 'C',
	"MSE": 'M', "SEC": 'U', "PYL": 'O',
	"DA": 'A', "DC": 'C', "DG": 'G', "DT": 'T',
	"A": 'A', "C": 'C', "G": 'G', "U": 'U',
	"RA": 'A', "RC": 'C', "RG": 'G', "RU": 'U',
}

var residueTypes = map[string]ResidueType{
	"DA": DNA, "DC": DNA, "DG": DNA, "DT": DNA, "DI": DNA,
	"A": RNA, "C": RNA, "G": RNA, "U": RNA, "I": RNA,
	"RA": RNA, "RC": RNA, "RG": RNA, "RU": RNA,
	"HOH": Water, "WAT": Water, "H2O": Water, "SOL": Water,
	"TIP": Water, "TIP3": Water, "TP3": Water, "TIP4": Water, "SPC": Water,
	"NA": Solvent, "CL": Solvent, "K": Solvent, "MG": Solvent, "CA": Solvent,
	"ZN": Solvent, "NA+": Solvent, "CL-": Solvent, "SO4": Solvent, "PO4": Solvent,
	"DMS": Solvent, "DMSO": Solvent, "MOH": Solvent, "EOH": Solvent, "ACN": Solvent,
	"GOL": Solvent, "EDO": Solvent, "ACT": Solvent, "CHL": Solvent,
}

//ClassifyResidue returns the type of a residue given its PDB name.
func ClassifyResidue(pdbname string) ResidueType {
	n := strings.ToUpper(strings.TrimSpace(pdbname))
	if t, ok := residueTypes[n]; ok {
		return t
	}
	if _, ok := residueOneLetter[n]; ok {
		return Protein
	}
	return Unknown
}

//Residue groups atoms. It can be created on its own as a template, assigned to unattached atoms with
//Atom.SetResidue, and is adopted by the molecule the atoms are assembled into. A residue never
//belongs to more than one molecule.
type Residue struct {
	Name     string
	PDBName  string
	PDBIndex int
	Type     ResidueType

	index int
	owner uuid.UUID
	chain *Chain
	atoms []int //indexes in the owner molecule
}

//NewResidue returns an unattached residue template. Its name is the PDB name followed by the
//PDB index, and its type is derived from the PDB name.
func NewResidue(pdbname string, pdbindex int, chain *Chain) *Residue {
	return &Residue{
		Name:     fmt.Sprintf("%s%d", pdbname, pdbindex),
		PDBName:  pdbname,
		PDBIndex: pdbindex,
		Type:     ClassifyResidue(pdbname),
		index:    -1,
		chain:    chain,
	}
}

//Index returns the residue's index in its molecule, or -1.
func (R *Residue) Index() int {
	if R.owner == uuid.Nil {
		return -1
	}
	return R.index
}

//Owner returns the ID of the molecule that owns the residue, or uuid.Nil.
func (R *Residue) Owner() uuid.UUID { return R.owner }

//Chain returns the chain of the residue, or nil if none has been assigned.
func (R *Residue) Chain() *Chain { return R.chain }

//SetChain sets the chain of an unattached residue.
func (R *Residue) SetChain(c *Chain) error {
	if R.owner != uuid.Nil {
		return newCError(ErrOwnershipViolation, "Residue.SetChain", "residue %s belongs to molecule %s", R.Name, R.owner)
	}
	R.chain = c
	return nil
}

//AtomIndexes returns the indexes, in the owner molecule, of the atoms in the residue, in molecule order.
func (R *Residue) AtomIndexes() []int {
	ret := make([]int, len(R.atoms))
	copy(ret, R.atoms)
	return ret
}

//Len returns the number of atoms in the residue.
func (R *Residue) Len() int { return len(R.atoms) }

//Code returns the one-letter code of the residue, or 'X' if it has none.
func (R *Residue) Code() byte {
	if c, ok := residueOneLetter[strings.ToUpper(R.PDBName)]; ok {
		return c
	}
	return 'X'
}

func (R *Residue) String() string {
	return fmt.Sprintf("%s (%s)", R.Name, R.Type)
}

//Chain groups residues.
type Chain struct {
	Name string

	index    int
	owner    uuid.UUID
	residues []int //indexes in the owner molecule
}

//NewChain returns an unattached chain template.
func NewChain(name string) *Chain {
	return &Chain{Name: name, index: -1}
}

//Index returns the chain's index in its molecule, or -1.
func (C *Chain) Index() int {
	if C.owner == uuid.Nil {
		return -1
	}
	return C.index
}

//Owner returns the ID of the molecule that owns the chain, or uuid.Nil.
func (C *Chain) Owner() uuid.UUID { return C.owner }

//ResidueIndexes returns the indexes, in the owner molecule, of the residues of the chain.
func (C *Chain) ResidueIndexes() []int {
	ret := make([]int, len(C.residues))
	copy(ret, C.residues)
	return ret
}

//Len returns the number of residues in the chain.
func (C *Chain) Len() int { return len(C.residues) }

//Default hierarchy containers
const (
	DefaultChainName   = "Z"
	DefaultResidueName = "UNK999"
)

//hierarchyPlan holds the changes the hierarchy assigner will commit, so nothing is
//mutated before every check has passed.
type hierarchyPlan struct {
	atomres  []*Residue //residue for each new atom
	residues []*Residue //residues to adopt, in order
	chains   []*Chain   //chains to adopt, in order
	defres   *Residue   //non-nil if the default residue is created in this build
	defchain *Chain
}

//planHierarchy checks and prepares the residue/chain assignment of newats. Nothing is modified.
func (M *Molecule) planHierarchy(newats []*Atom) (*hierarchyPlan, error) {
	p := &hierarchyPlan{atomres: make([]*Residue, len(newats))}
	seenres := make(map[*Residue]bool)
	seenchain := make(map[*Chain]bool)
	//the default chain doesn't take part in the name check, a user chain may share its name.
	names := make(map[string]*Chain, len(M.chains))
	for _, c := range M.chains {
		if c != M.defchain {
			names[c.Name] = c
		}
	}
	defres, defchain := M.defres, M.defchain
	adoptChain := func(c *Chain) error {
		if c.owner == M.ID || seenchain[c] {
			return nil
		}
		if c.owner != uuid.Nil {
			return newCError(ErrOwnershipViolation, "planHierarchy", "chain %s belongs to molecule %s", c.Name, c.owner)
		}
		if c != defchain {
			if o, ok := names[c.Name]; ok && o != c {
				return newCError(ErrDuplicateChain, "planHierarchy", "chain %s", c.Name)
			}
			names[c.Name] = c
		}
		seenchain[c] = true
		p.chains = append(p.chains, c)
		return nil
	}
	for i, at := range newats {
		r := at.res
		if r == nil {
			if defres == nil {
				if defchain == nil {
					defchain = &Chain{Name: DefaultChainName, index: -1}
					p.defchain = defchain
				}
				defres = &Residue{Name: DefaultResidueName, PDBName: "UNK", PDBIndex: 1, Type: Unknown, index: -1, chain: defchain}
				p.defres = defres
			}
			r = defres
		}
		p.atomres[i] = r
		if r.owner == M.ID || seenres[r] {
			continue
		}
		if r.owner != uuid.Nil {
			return nil, newCError(ErrOwnershipViolation, "planHierarchy", "residue %s belongs to molecule %s", r.Name, r.owner)
		}
		c := r.chain
		if c == nil {
			if defchain == nil {
				defchain = &Chain{Name: DefaultChainName, index: -1}
				p.defchain = defchain
			}
			c = defchain
		}
		if err := adoptChain(c); err != nil {
			return nil, err
		}
		seenres[r] = true
		p.residues = append(p.residues, r)
	}
	return p, nil
}

//commitHierarchy applies a plan. newats must have their indexes assigned already.
func (M *Molecule) commitHierarchy(p *hierarchyPlan, newats []*Atom) {
	if p.defres != nil {
		M.defres = p.defres
	}
	if p.defchain != nil {
		M.defchain = p.defchain
	}
	for _, c := range p.chains {
		c.owner = M.ID
		c.index = len(M.chains)
		M.chains = append(M.chains, c)
	}
	for _, r := range p.residues {
		if r.chain == nil {
			r.chain = M.defchain
		}
		r.owner = M.ID
		r.index = len(M.residues)
		M.residues = append(M.residues, r)
		r.chain.residues = append(r.chain.residues, r.index)
	}
	for i, at := range newats {
		r := p.atomres[i]
		at.res = r
		r.atoms = append(r.atoms, at.index)
	}
	nbio := 0
	for _, r := range M.residues {
		if r.Type.Biopolymer() {
			nbio++
		}
	}
	M.biomolecule = nbio >= 2
}

//Residues returns the residues of the molecule, in index order.
func (M *Molecule) Residues() []*Residue {
	ret := make([]*Residue, len(M.residues))
	copy(ret, M.residues)
	return ret
}

//Residue returns the residue with index i. It panics if i is out of range.
func (M *Molecule) Residue(i int) *Residue { return M.residues[i] }

//NumResidues returns the number of residues in the molecule.
func (M *Molecule) NumResidues() int { return len(M.residues) }

//Chains returns the chains of the molecule, in index order.
func (M *Molecule) Chains() []*Chain {
	ret := make([]*Chain, len(M.chains))
	copy(ret, M.chains)
	return ret
}

//Chain returns the chain with the given name, and false if there is none. A user chain is
//preferred over the default chain of the same name.
func (M *Molecule) Chain(name string) (*Chain, bool) {
	for _, c := range M.chains {
		if c.Name == name && c != M.defchain {
			return c, true
		}
	}
	if M.defchain != nil && M.defchain.owner == M.ID && M.defchain.Name == name {
		return M.defchain, true
	}
	return nil, false
}

//NumChains returns the number of chains in the molecule.
func (M *Molecule) NumChains() int { return len(M.chains) }

//ResidueAtoms returns the atoms of the residue r, which must belong to M.
func (M *Molecule) ResidueAtoms(r *Residue) ([]*Atom, error) {
	if r.owner != M.ID {
		return nil, newCError(ErrForeignAtom, "Molecule.ResidueAtoms", "residue %s is not part of the molecule", r.Name)
	}
	ret := make([]*Atom, len(r.atoms))
	for i, v := range r.atoms {
		ret[i] = M.atoms[v]
	}
	return ret, nil
}

//Sequence returns the one-letter sequence of the chain c, which must belong to M.
//Residues with no one-letter code are given as 'X'.
func (M *Molecule) Sequence(c *Chain) (string, error) {
	if c.owner != M.ID {
		return "", newCError(ErrForeignAtom, "Molecule.Sequence", "chain %s is not part of the molecule", c.Name)
	}
	var b strings.Builder
	for _, ri := range c.residues {
		b.WriteByte(M.residues[ri].Code())
	}
	return b.String(), nil
}

//IsBiomolecule returns true if at least two of the molecule's residues are amino acids
//or nucleotides.
func (M *Molecule) IsBiomolecule() bool { return M.biomolecule }
