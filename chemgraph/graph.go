/*
 * graph.go, part of gochemcore.
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


//Package chemgraph offers a gonum graph view of the bond graph of a molecule.
package chemgraph

import (
	"fmt"
	"math"
	"sort"

	chem "github.com/rmera/gochemcore"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

//Atom is a graph.Node for a chem.Atom. Its ID is the index of the atom in the molecule.
type Atom struct {
	*chem.Atom
}

//ID returns the graph ID of the atom.
func (A Atom) ID() int64 {
	return int64(A.Index())
}

//AtID returns the unique ID of the underlying chem.Atom.
func (A Atom) AtID() string {
	return A.Atom.ID.String()
}

//Bond is a weighted, undirected graph edge for a chem.Bond.
type Bond struct {
	chem.Bond
	At1, At2 Atom
	W        float64
}

func (B Bond) Weight() float64 { return B.W }

func (B Bond) From() graph.Node { return B.At1 }

func (B Bond) To() graph.Node { return B.At2 }

//bonds are not directional.
func (B Bond) ReversedEdge() graph.Edge {
	B.At1, B.At2 = B.At2, B.At1
	return B
}

//Topology is the bond graph of a molecule.
type Topology struct {
	*simple.WeightedUndirectedGraph
	mol *chem.Molecule
}

//Unit weight for each bond, so path lengths count bonds.
func unitWeight(chem.Bond) float64 { return 1 }

//TopologyFromChem builds the bond graph of mol. If weightfunc is nil, each bond weighs 1.
//Weights must not be negative.
func TopologyFromChem(mol *chem.Molecule, weightfunc func(chem.Bond) float64) *Topology {
	if weightfunc == nil {
		weightfunc = unitWeight
	}
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, at := range mol.Atoms() {
		g.AddNode(Atom{at})
	}
	for _, b := range mol.Bonds() {
		g.SetWeightedEdge(Bond{Bond: b, At1: Atom{b.At1}, At2: Atom{b.At2}, W: weightfunc(b)})
	}
	return &Topology{WeightedUndirectedGraph: g, mol: mol}
}

//toAtoms converts graph nodes into the molecule's atoms, sorted by index.
func (T *Topology) toAtoms(nodes []graph.Node) []*chem.Atom {
	ret := make([]*chem.Atom, 0, len(nodes))
	for _, n := range nodes {
		ret = append(ret, T.mol.Atom(int(n.ID())))
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Index() < ret[j].Index() })
	return ret
}

//Fragments returns the connected components of the bond graph (the separate molecules
//in mol), each sorted by atom index, and ordered by their lowest index.
func (T *Topology) Fragments() [][]*chem.Atom {
	cc := topo.ConnectedComponents(T)
	ret := make([][]*chem.Atom, 0, len(cc))
	for _, c := range cc {
		ret = append(ret, T.toAtoms(c))
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0].Index() < ret[j][0].Index() })
	return ret
}

//ShortestPath returns the atoms on the lightest bond path from a to b, both included, and
//the total weight of the path. It fails if the atoms are not in the molecule or not connected.
func (T *Topology) ShortestPath(a, b *chem.Atom) ([]*chem.Atom, float64, error) {
	if a.Owner() != T.mol.ID || b.Owner() != T.mol.ID {
		return nil, 0, fmt.Errorf("chemgraph: ShortestPath: atoms %s and %s must belong to molecule %s", a.Name, b.Name, T.mol.Name)
	}
	sh := path.DijkstraFrom(Atom{a}, T)
	p, w := sh.To(int64(b.Index()))
	if len(p) == 0 {
		return nil, math.Inf(1), fmt.Errorf("chemgraph: ShortestPath: atoms %s and %s are not connected", a.Name, b.Name)
	}
	ret := make([]*chem.Atom, len(p))
	for i, n := range p {
		ret[i] = T.mol.Atom(int(n.ID()))
	}
	return ret, w, nil
}

//Rings returns a cycle basis of the bond graph: every ring in the molecule can be built
//from these. Each ring is sorted by atom index.
func (T *Topology) Rings() [][]*chem.Atom {
	cycles := topo.UndirectedCyclesIn(T)
	ret := make([][]*chem.Atom, 0, len(cycles))
	for _, c := range cycles {
		if len(c) > 1 && c[0].ID() == c[len(c)-1].ID() {
			c = c[:len(c)-1]
		}
		ret = append(ret, T.toAtoms(c))
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0].Index() < ret[j][0].Index() })
	return ret
}

//Fragments returns the separate molecules (connected components of the bond graph) in mol.
func Fragments(mol *chem.Molecule) [][]*chem.Atom {
	return TopologyFromChem(mol, nil).Fragments()
}

//ShortestPath returns the atoms on the path with fewest bonds from a to b, and the number of bonds in it.
func ShortestPath(mol *chem.Molecule, a, b *chem.Atom) ([]*chem.Atom, int, error) {
	p, w, err := TopologyFromChem(mol, nil).ShortestPath(a, b)
	if err != nil {
		return nil, -1, err
	}
	return p, int(w), nil
}
