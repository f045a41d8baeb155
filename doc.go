/*
 * doc.go, part of gochemcore.
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
 */

/*Package chem is the main package of the gochemcore library. It provides a mutable molecule
aggregate (atoms, bonds, residues, chains) with shared coordinate storage, and coordinates the
energy models and integrators that compute properties and evolve the geometry.


	**gochemcore Capabilities**


    Builds molecules from free atoms. Bonds recorded by the atoms are symmetrized and checked,
	and every atom gets an index and a 3-value slice of the molecule's position and momentum
	buffers. An atom's Position and Momentum are views into those buffers.

    Keeps the atom/residue/chain hierarchy in the molecule, placing orphan atoms in a default
	residue (UNK999) and chain (Z), and classifies residues (protein, dna, rna, water, solvent).

    Caches computed properties (energies, forces, dipoles, wavefunctions) for one exact geometry.
	Asking for a property that is not there, or that belongs to a different geometry, returns
	a *NotCalculatedError. Snapshots can also be persisted (see the propstore package).

    Keeps a list of geometric constraints (fixed positions, distances, angles and dihedrals)
	and the degrees of freedom left for dynamics.

    Binds one energy model and one integrator to a molecule, and resets their prepared state
	whenever the structure changes. Calculations can be waited on (Calculate) or not (Submit).

    Minimizes geometries, with the model's own optimizer or a steepest descent.

All quantities are stored in Angstrom, eV, fs, amu, K and elementary charges. The units
package converts from anything else.

A Molecule is not safe for concurrent mutation. Calculations may run in other goroutines, but
their results are merged from the caller's, and the merge fails if the geometry changed.
*/
package chem
