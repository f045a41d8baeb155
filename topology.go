/*
 * topology.go, part of gochemcore.
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
	"github.com/google/uuid"
	v3 "github.com/rmera/gochemcore/v3"
	"go.uber.org/zap"
)

//bondGraph is the symmetric adjacency of a set of atoms.
type bondGraph map[*Atom]map[*Atom]int

//buildBonds symmetrizes the local bond maps of atoms. Every neighbor must be in the set,
//and two atoms that both record a bond must agree on its order.
//Nothing is modified: the result is a new graph.
func buildBonds(atoms []*Atom) (bondGraph, int, error) {
	inset := make(map[*Atom]bool, len(atoms))
	for i, at := range atoms {
		if inset[at] {
			return nil, 0, newCError(ErrDuplicateAtom, "buildBonds", "atom %s appears more than once (position %d)", at.Name, i)
		}
		inset[at] = true
	}
	g := make(bondGraph, len(atoms))
	for _, at := range atoms {
		g[at] = make(map[*Atom]int, len(at.bonds))
	}
	for _, at := range atoms {
		for nb, order := range at.bonds {
			if !inset[nb] {
				return nil, 0, newCError(ErrForeignAtom, "buildBonds", "atom %s is bonded to %s, which is not in the atom set", at.Name, nb.Name)
			}
			if o, ok := nb.bonds[at]; ok && o != order {
				return nil, 0, newCError(ErrInconsistentBondOrder, "buildBonds", "%s->%s has order %d but %s->%s has order %d", at.Name, nb.Name, order, nb.Name, at.Name, o)
			}
			g[at][nb] = order
			g[nb][at] = order
		}
	}
	n := 0
	for _, nbs := range g {
		n += len(nbs)
	}
	if n%2 != 0 {
		return nil, 0, newCError(ErrTopologyInvariant, "buildBonds", "odd number (%d) of bond map entries", n)
	}
	return g, n / 2, nil
}

//rebuildTopology checks and then commits the addition of newats to the molecule. The atoms already
//in the molecule keep their indexes, new atoms get the next ones in order. The whole bond graph is
//rebuilt, so bonds recorded by new atoms toward old ones are mirrored. On error nothing is changed.
func (M *Molecule) rebuildTopology(newats []*Atom) error {
	if len(newats) == 0 {
		return newCError(ErrNoAtoms, "rebuildTopology", "nothing to add")
	}
	for i, at := range newats {
		if at == nil {
			return newCError(ErrNoAtoms, "rebuildTopology", "nil atom at position %d", i)
		}
		if at.Attached() {
			return newCError(ErrOwnershipViolation, "rebuildTopology", "atom %s (position %d) already belongs to molecule %s, copy it first", at.Name, i, at.owner)
		}
		at.lazyInit()
	}
	all := make([]*Atom, 0, len(M.atoms)+len(newats))
	all = append(all, M.atoms...)
	all = append(all, newats...)
	graph, nbonds, err := buildBonds(all)
	if err != nil {
		return errDecorate(err, "rebuildTopology")
	}
	plan, err := M.planHierarchy(newats)
	if err != nil {
		return errDecorate(err, "rebuildTopology")
	}

	//Checks are over, from here on we only commit.
	old := len(M.atoms)
	natoms := len(all)
	pos := v3.Zeros(natoms)
	mom := v3.Zeros(natoms)
	if old > 0 {
		pos.View(0, old).Copy(M.positions.Dense)
		mom.View(0, old).Copy(M.momenta.Dense)
	}
	masses := make([]float64, 3*natoms)
	for i, at := range all {
		if i >= old {
			pos.SetVecs(at.pos, []int{i})
			mom.SetVecs(at.mom, []int{i})
			at.index = i
			at.owner = M.ID
		}
		at.pos = pos.VecView(i)
		at.mom = mom.VecView(i)
		at.bonds = graph[at]
		masses[3*i], masses[3*i+1], masses[3*i+2] = at.Mass, at.Mass, at.Mass
	}
	M.atoms = all
	M.positions, M.momenta, M.masses = pos, mom, masses
	M.commitHierarchy(plan, newats)
	M.dof = nil
	M.resetMethods()
	topologyRebuilds.Inc()
	clog.Debug("topology rebuilt", zap.Stringer("molecule", M.ID), zap.Int("added", len(newats)), zap.Int("atoms", natoms), zap.Int("bonds", nbonds))
	return nil
}

//assertAtoms returns an error if any of ats doesn't belong to M.
func (M *Molecule) assertAtoms(caller string, ats ...*Atom) error {
	for _, at := range ats {
		if at == nil || at.owner != M.ID || at.owner == uuid.Nil {
			name := "nil"
			if at != nil {
				name = at.Name
			}
			return newCError(ErrForeignAtom, caller, "atom %s is not part of molecule %s", name, M.Name)
		}
	}
	return nil
}
