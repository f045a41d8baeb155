/*
 * constraints.go, part of gochemcore.
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
	"math"

	"github.com/rmera/gochemcore/units"
	"gonum.org/v1/gonum/floats"
)

//ConstraintKind is the type of a geometric constraint.
type ConstraintKind int

const (
	FixedPosition ConstraintKind = iota
	FixedDistance
	FixedAngle
	FixedDihedral
)

func (k ConstraintKind) String() string {
	switch k {
	case FixedPosition:
		return "position"
	case FixedDistance:
		return "distance"
	case FixedAngle:
		return "angle"
	case FixedDihedral:
		return "dihedral"
	}
	return "unknown"
}

//Constraint fixes a geometric quantity of 1 to 4 atoms of the same molecule.
//Value is a position (3 values, Angstrom) for FixedPosition, a distance (Angstrom) for
//FixedDistance and an angle (radians) for FixedAngle and FixedDihedral.
type Constraint struct {
	Kind  ConstraintKind
	Atoms []*Atom
	Value units.Vector
}

//DOF returns the number of degrees of freedom the constraint removes.
func (C *Constraint) DOF() int {
	if C.Kind == FixedPosition {
		return 3
	}
	return 1
}

//Current returns the current value of the constrained quantity, in the same units as Value.
func (C *Constraint) Current() units.Vector {
	a := C.Atoms
	switch C.Kind {
	case FixedPosition:
		p := make([]float64, 3)
		for i := range p {
			p[i] = a[0].pos.At(0, i)
		}
		return units.V(p, units.Angstrom)
	case FixedDistance:
		return units.V([]float64{Distance(a[0], a[1])}, units.Angstrom)
	case FixedAngle:
		return units.V([]float64{Angle(a[0], a[1], a[2])}, units.Radian)
	default:
		return units.V([]float64{Dihedral(a[0], a[1], a[2], a[3])}, units.Radian)
	}
}

//Deviation returns how far the geometry is from the constrained value: the distance to the fixed
//position, or the absolute difference for the other kinds (dihedrals are compared modulo 2pi).
func (C *Constraint) Deviation() float64 {
	cur := C.Current().Values
	switch C.Kind {
	case FixedPosition:
		return floats.Distance(cur, C.Value.Values, 2)
	case FixedDihedral:
		return math.Abs(wrapAngle(cur[0] - C.Value.Values[0]))
	default:
		return math.Abs(cur[0] - C.Value.Values[0])
	}
}

//Satisfied returns true if the deviation is at most tol.
func (C *Constraint) Satisfied(tol float64) bool {
	return C.Deviation() <= tol
}

func (C *Constraint) String() string {
	names := make([]string, len(C.Atoms))
	for i, a := range C.Atoms {
		names[i] = a.Name
	}
	return fmt.Sprintf("%s constraint on %v: %v", C.Kind, names, C.Value)
}

//Constraints returns the molecule's constraints, in the order they were added.
func (M *Molecule) Constraints() []*Constraint {
	ret := make([]*Constraint, len(M.constraints))
	copy(ret, M.constraints)
	return ret
}

//ClearConstraints removes all constraints and resets the bound methods.
func (M *Molecule) ClearConstraints() {
	M.constraints = M.constraints[:0]
	M.resetMethods()
}

func (M *Molecule) addConstraint(caller string, kind ConstraintKind, value *units.Vector, ats ...*Atom) (*Constraint, error) {
	if err := M.assertAtoms(caller, ats...); err != nil {
		return nil, err
	}
	seen := make(map[*Atom]bool, len(ats))
	for _, a := range ats {
		if seen[a] {
			return nil, newCError(ErrDuplicateAtom, caller, "atom %s appears more than once in the constraint", a.Name)
		}
		seen[a] = true
	}
	C := &Constraint{Kind: kind, Atoms: ats}
	if value == nil {
		C.Value = C.Current()
	} else {
		want := units.Length
		if kind == FixedAngle || kind == FixedDihedral {
			want = units.Angle
		}
		if d, _ := value.U.Dim(); d != want {
			return nil, newCError(ErrShape, caller, "a %s constraint can't take a value in %q", kind, value.U)
		}
		v, err := value.Defunits()
		if err != nil {
			return nil, newCError(ErrShape, caller, "%s", err)
		}
		C.Value = v
	}
	M.constraints = append(M.constraints, C)
	M.resetMethods()
	return C, nil
}

//ConstrainAtom fixes the position of at. If pos is nil, the current position is used.
func (M *Molecule) ConstrainAtom(at *Atom, pos *units.Vector) (*Constraint, error) {
	if pos != nil && pos.Len() != 3 {
		return nil, newCError(ErrShape, "Molecule.ConstrainAtom", "a position needs 3 values, got %d", pos.Len())
	}
	return M.addConstraint("Molecule.ConstrainAtom", FixedPosition, pos, at)
}

func scalarValue(s *units.Scalar) *units.Vector {
	if s == nil {
		return nil
	}
	v := units.V([]float64{s.Value}, s.U)
	return &v
}

//ConstrainDistance fixes the distance between a1 and a2. If dist is nil, the current distance is used.
func (M *Molecule) ConstrainDistance(a1, a2 *Atom, dist *units.Scalar) (*Constraint, error) {
	return M.addConstraint("Molecule.ConstrainDistance", FixedDistance, scalarValue(dist), a1, a2)
}

//ConstrainAngle fixes the a1-a2-a3 angle. If angle is nil, the current angle is used.
func (M *Molecule) ConstrainAngle(a1, a2, a3 *Atom, angle *units.Scalar) (*Constraint, error) {
	return M.addConstraint("Molecule.ConstrainAngle", FixedAngle, scalarValue(angle), a1, a2, a3)
}

//ConstrainDihedral fixes the a1-a2-a3-a4 dihedral. If angle is nil, the current dihedral is used.
func (M *Molecule) ConstrainDihedral(a1, a2, a3, a4 *Atom, angle *units.Scalar) (*Constraint, error) {
	return M.addConstraint("Molecule.ConstrainDihedral", FixedDihedral, scalarValue(angle), a1, a2, a3, a4)
}

//residual returns the signed difference between the current and the constrained value of a
//distance, angle or dihedral constraint.
func (C *Constraint) residual() float64 {
	d := C.Current().Values[0] - C.Value.Values[0]
	if C.Kind == FixedDihedral {
		d = wrapAngle(d)
	}
	return d
}

//gradient returns the buffer indexes of the constrained atoms and the derivative of the
//constrained quantity with respect to each of them, by central differences on x, which must
//be the molecule's position buffer.
func (C *Constraint) gradient(x []float64) ([]int, []float64) {
	const h = 1e-5
	idx := make([]int, 0, 3*len(C.Atoms))
	for _, a := range C.Atoms {
		s, _ := a.ParentSlice()
		idx = append(idx, s, s+1, s+2)
	}
	g := make([]float64, len(idx))
	for k, i := range idx {
		old := x[i]
		x[i] = old + h
		p := C.residual()
		x[i] = old - h
		m := C.residual()
		x[i] = old
		d := p - m
		if C.Kind == FixedDihedral {
			d = wrapAngle(d)
		}
		g[k] = d / (2 * h)
	}
	return idx, g
}

//ConstraintSolver keeps distance, angle and dihedral constraints satisfied while an optimizer or
//an integrator changes positions and momenta. Corrections go along the gradient of each
//constrained quantity, weighted by the inverse masses: SHAKE for positions, RATTLE for momenta.
//Atoms with fixed positions are never moved.
type ConstraintSolver struct {
	Tol     float64 //Angstrom or radians
	MaxIter int     //sweeps over all the constraints

	mol  *Molecule
	cons []*Constraint
	invm []float64 //per dimension, 0 for fixed atoms
}

//NewConstraintSolver returns a solver for the molecule's distance, angle and dihedral constraints
//plus extra, which don't need to be registered in the molecule but must be on its atoms.
//masses has one value per dimension. If it is nil, all atoms weigh the same.
func (M *Molecule) NewConstraintSolver(masses []float64, extra ...*Constraint) *ConstraintSolver {
	S := &ConstraintSolver{Tol: 1e-8, MaxIter: 1000, mol: M, invm: make([]float64, M.NDims())}
	for _, c := range append(M.Constraints(), extra...) {
		if c.Kind != FixedPosition {
			S.cons = append(S.cons, c)
		}
	}
	fixed := M.fixedDims()
	for i := range S.invm {
		switch {
		case fixed[i]:
		case masses == nil:
			S.invm[i] = 1
		case masses[i] > 0:
			S.invm[i] = 1 / masses[i]
		}
	}
	return S
}

//Len returns the number of constraints the solver enforces.
func (S *ConstraintSolver) Len() int { return len(S.cons) }

//Shake moves the molecule's atoms until no constraint deviates more than Tol from its value.
//It returns a *ConvergenceError if that doesn't happen in MaxIter sweeps.
func (S *ConstraintSolver) Shake() error {
	if len(S.cons) == 0 {
		return nil
	}
	x := S.mol.positions.Flat()
	var worst float64
	for it := 0; it < S.MaxIter; it++ {
		worst = 0
		for _, c := range S.cons {
			r := c.residual()
			if math.Abs(r) <= S.Tol {
				continue
			}
			worst = math.Max(worst, math.Abs(r))
			idx, g := c.gradient(x)
			var den float64
			for k, i := range idx {
				den += S.invm[i] * g[k] * g[k]
			}
			if den == 0 {
				continue //nothing can move
			}
			l := r / den
			for k, i := range idx {
				x[i] -= l * S.invm[i] * g[k]
			}
		}
		if worst == 0 {
			return nil
		}
	}
	return NewConvergenceError("constraint solver", []string{fmt.Sprintf("largest deviation %.3g after %d sweeps", worst, S.MaxIter)})
}

//Project removes from v, one value per dimension, the components that would change a constrained
//quantity when atoms move along v weighted by their inverse masses. v can be the momenta, or the
//forces for a solver with unit masses. The positions must satisfy the constraints.
func (S *ConstraintSolver) Project(v []float64) {
	if len(S.cons) == 0 {
		return
	}
	x := S.mol.positions.Flat()
	idx := make([][]int, len(S.cons))
	grad := make([][]float64, len(S.cons))
	den := make([]float64, len(S.cons))
	for j, c := range S.cons {
		idx[j], grad[j] = c.gradient(x)
		for k, i := range idx[j] {
			den[j] += S.invm[i] * grad[j][k] * grad[j][k]
		}
	}
	tol := 1e-12 * (1 + floats.Norm(v, math.Inf(1)))
	for it := 0; it < S.MaxIter; it++ {
		var worst float64
		for j := range S.cons {
			if den[j] == 0 {
				continue
			}
			var rate float64
			for k, i := range idx[j] {
				rate += S.invm[i] * grad[j][k] * v[i]
			}
			mu := rate / den[j]
			for k, i := range idx[j] {
				if S.invm[i] != 0 {
					v[i] -= mu * grad[j][k]
				}
			}
			worst = math.Max(worst, math.Abs(rate)/math.Sqrt(den[j]))
		}
		if worst <= tol {
			return
		}
	}
}

//PlaceFixedAtoms moves every atom with a fixed position to the constrained position. It returns
//true if any atom moved.
func (M *Molecule) PlaceFixedAtoms() bool {
	moved := false
	for _, c := range M.constraints {
		if c.Kind != FixedPosition {
			continue
		}
		v := c.Value.Values
		at := c.Atoms[0]
		for i := 0; i < 3; i++ {
			if at.pos.At(0, i) != v[i] {
				at.pos.Set(0, i, v[i])
				moved = true
			}
		}
	}
	return moved
}
