/*
 * verlet.go, part of gochemcore.
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


//Package verlet evolves molecules in time with the velocity Verlet algorithm.
package verlet

import (
	"context"
	"fmt"
	"math"

	chem "github.com/rmera/gochemcore"
	"github.com/rmera/gochemcore/traj"
	"github.com/rmera/gochemcore/units"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//DefaultParams returns the parameters New uses when given nil: a 1 fs timestep, a frame every
//10 steps and the center of mass momentum removed.
func DefaultParams() *chem.IntegratorParams {
	return &chem.IntegratorParams{Timestep: 1, FrameInterval: 10, RemoveTranslation: true}
}

//Integrator is a velocity Verlet integrator. Forces come from the molecule's energy model.
//Atoms with fixed positions are kept at their constrained positions, at rest. Distance, angle
//and dihedral constraints, and the hbonds and water constraint sets, are kept with SHAKE and RATTLE.
type Integrator struct {
	params   chem.IntegratorParams
	mol      *chem.Molecule
	prepared bool
	fixed    []bool //per dimension
	solver   *chem.ConstraintSolver
}

//New returns an integrator with the given parameters, which may be nil.
func New(params *chem.IntegratorParams) *Integrator {
	if params == nil {
		params = DefaultParams()
	}
	return &Integrator{params: *params}
}

func (I *Integrator) Params() *chem.IntegratorParams { return &I.params }

func (I *Integrator) Prepared() bool { return I.prepared }

func (I *Integrator) SetPrepared(p bool) { I.prepared = p }

func (I *Integrator) SetMolecule(M *chem.Molecule) { I.mol = M }

//distance returns a constraint that keeps a and b at their current distance.
func distance(a, b *chem.Atom) *chem.Constraint {
	return &chem.Constraint{Kind: chem.FixedDistance, Atoms: []*chem.Atom{a, b}, Value: units.V([]float64{chem.Distance(a, b)}, units.Angstrom)}
}

//setConstraints returns the distance constraints for the integrator's constraint sets, at the
//current geometry: every hydrogen to the first atom it is bonded to, and rigid waters.
func (I *Integrator) setConstraints() ([]*chem.Constraint, error) {
	var ret []*chem.Constraint
	seen := make(map[[2]*chem.Atom]bool)
	add := func(a, b *chem.Atom) {
		if seen[[2]*chem.Atom{a, b}] || seen[[2]*chem.Atom{b, a}] {
			return
		}
		seen[[2]*chem.Atom{a, b}] = true
		ret = append(ret, distance(a, b))
	}
	if I.params.HasConstraint(chem.HBondConstraints) {
		for _, at := range I.mol.Atoms() {
			if at.AtNum != 1 {
				continue
			}
			if n := at.Neighbors(); len(n) > 0 {
				add(n[0], at)
			}
		}
	}
	if I.params.HasConstraint(chem.WaterConstraints) {
		for _, r := range I.mol.Residues() {
			if r.Type != chem.Water {
				continue
			}
			ats, err := I.mol.ResidueAtoms(r)
			if err != nil {
				return nil, err
			}
			for i := range ats {
				for j := i + 1; j < len(ats); j++ {
					add(ats[i], ats[j])
				}
			}
		}
	}
	return ret, nil
}

//prepare collects the fixed dimensions and sets up the constraint solver.
func (I *Integrator) prepare() error {
	if I.mol == nil {
		return fmt.Errorf("verlet: the integrator is not bound to a molecule")
	}
	if I.params.Timestep <= 0 {
		return fmt.Errorf("verlet: timestep must be positive, got %g fs", I.params.Timestep)
	}
	I.fixed = make([]bool, I.mol.NDims())
	for _, c := range I.mol.Constraints() {
		if c.Kind != chem.FixedPosition {
			continue
		}
		s, e := c.Atoms[0].ParentSlice()
		for i := s; i < e; i++ {
			I.fixed[i] = true
		}
	}
	extra, err := I.setConstraints()
	if err != nil {
		return fmt.Errorf("verlet: %w", err)
	}
	I.solver = I.mol.NewConstraintSolver(I.mol.Masses(), extra...)
	if I.solver.Len() > 0 {
		chem.Logger().Debug("verlet: constrained dynamics", zap.Int("constraints", I.solver.Len()), zap.Strings("sets", I.params.Constraints))
	}
	I.prepared = true
	return nil
}

//freeze zeroes the momenta of fixed atoms, and puts them back at ref.
func (I *Integrator) freeze(pos, mom, ref []float64) {
	for i, f := range I.fixed {
		if f {
			mom[i] = 0
			pos[i] = ref[i]
		}
	}
}

//removeTranslation sets the total momentum of the free atoms to zero.
func (I *Integrator) removeTranslation(mom, masses []float64) {
	var tot [3]float64
	var mass float64
	for i := 0; i < len(mom); i += 3 {
		if I.fixed[i] {
			continue
		}
		for k := 0; k < 3; k++ {
			tot[k] += mom[i+k]
		}
		mass += masses[i]
	}
	if mass == 0 {
		return
	}
	for i := 0; i < len(mom); i += 3 {
		if I.fixed[i] {
			continue
		}
		for k := 0; k < 3; k++ {
			mom[i+k] -= tot[k] * masses[i] / mass
		}
	}
}

//removeRotation sets the angular momentum of the free atoms, around their center of mass, to zero.
//For linear arrangements only the rotations that exist are removed.
func (I *Integrator) removeRotation(pos, mom, masses []float64) {
	var com [3]float64
	var mass float64
	for i := 0; i < len(pos); i += 3 {
		if I.fixed[i] {
			continue
		}
		for k := 0; k < 3; k++ {
			com[k] += masses[i] * pos[i+k]
		}
		mass += masses[i]
	}
	if mass == 0 {
		return
	}
	for k := range com {
		com[k] /= mass
	}
	L := mat.NewVecDense(3, nil)
	inertia := mat.NewDense(3, 3, nil)
	r := make([]float64, len(pos))
	for i := 0; i < len(pos); i += 3 {
		if I.fixed[i] {
			continue
		}
		m := masses[i]
		x, y, z := pos[i]-com[0], pos[i+1]-com[1], pos[i+2]-com[2]
		r[i], r[i+1], r[i+2] = x, y, z
		px, py, pz := mom[i], mom[i+1], mom[i+2]
		L.SetVec(0, L.AtVec(0)+y*pz-z*py)
		L.SetVec(1, L.AtVec(1)+z*px-x*pz)
		L.SetVec(2, L.AtVec(2)+x*py-y*px)
		r2 := x*x + y*y + z*z
		d := [3]float64{x, y, z}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				v := -m * d[a] * d[b]
				if a == b {
					v += m * r2
				}
				inertia.Set(a, b, inertia.At(a, b)+v)
			}
		}
	}
	var svd mat.SVD
	if !svd.Factorize(inertia, mat.SVDFull) {
		return
	}
	rank := svd.Rank(1e-10)
	if rank == 0 {
		return
	}
	var w mat.VecDense
	svd.SolveVecTo(&w, L, rank)
	wx, wy, wz := w.AtVec(0), w.AtVec(1), w.AtVec(2)
	for i := 0; i < len(mom); i += 3 {
		if I.fixed[i] {
			continue
		}
		m := masses[i]
		x, y, z := r[i], r[i+1], r[i+2]
		mom[i] -= m * (wy*z - wz*y)
		mom[i+1] -= m * (wz*x - wx*z)
		mom[i+2] -= m * (wx*y - wy*x)
	}
}

//removeMomenta applies the translation and rotation removals the parameters ask for.
func (I *Integrator) removeMomenta(pos, mom, masses []float64) {
	if I.params.RemoveTranslation {
		I.removeTranslation(mom, masses)
	}
	if I.params.RemoveRotation && I.mol.Len() > 2 {
		I.removeRotation(pos, mom, masses)
	}
}

//forces returns the forces in eV/Angstrom, zero on fixed atoms.
func (I *Integrator) forces(ctx context.Context) ([]float64, error) {
	f, err := I.mol.CalcForces(ctx)
	if err != nil {
		return nil, err
	}
	return I.mol.FreeForces(f.Values), nil
}

//shake enforces the constraints on the positions and adds to the momenta the impulse that
//moved the atoms from unc.
func (I *Integrator) shake(pos, mom, masses, unc []float64, dt float64) error {
	if I.solver.Len() == 0 {
		return nil
	}
	copy(unc, pos)
	if err := I.solver.Shake(); err != nil {
		return err
	}
	for i := range pos {
		mom[i] += masses[i] * (pos[i] - unc[i]) / dt
	}
	return nil
}

//Run integrates the equations of motion for the given length. The first frame is the starting
//state, and then one frame is recorded every FrameInterval steps, plus the last one.
func (I *Integrator) Run(ctx context.Context, length chem.RunLength) (*traj.Trajectory, error) {
	if !I.prepared {
		if err := I.prepare(); err != nil {
			return nil, err
		}
	}
	M := I.mol
	dt := I.params.Timestep
	nsteps := length.NumSteps(dt)
	interval := I.params.FrameInterval
	if interval <= 0 {
		interval = 1
	}
	pos := M.Positions().Flat()
	mom := M.Momenta().Flat()
	masses := M.Masses()
	for i, m := range masses {
		if m <= 0 {
			return nil, fmt.Errorf("verlet: dimension %d has mass %g", i, m)
		}
	}
	M.PlaceFixedAtoms()
	ref := append([]float64(nil), pos...)
	I.freeze(pos, mom, ref)
	if err := I.solver.Shake(); err != nil {
		return nil, fmt.Errorf("verlet: initial geometry: %w", err)
	}
	I.solver.Project(mom)
	I.removeMomenta(pos, mom, masses)
	f, err := I.forces(ctx)
	if err != nil {
		return nil, err
	}
	t := traj.New(M.Name+" dynamics", M.Len())
	t.Add(M.Frame(0))
	unc := make([]float64, len(pos))
	//F*dt is in eV*fs/Angstrom, and 1 eV = 1/103.64 amu*Angstrom^2/fs^2
	conv := dt / units.AMUAng2Fs2InEV
	start := M.Time().Value
	for step := 1; step <= nsteps; step++ {
		if err := ctx.Err(); err != nil {
			return t, err
		}
		floats.AddScaled(mom, 0.5*conv, f)
		for i := range pos {
			pos[i] += dt * mom[i] / masses[i]
		}
		I.freeze(pos, mom, ref)
		if err := I.shake(pos, mom, masses, unc, dt); err != nil {
			return t, fmt.Errorf("verlet: step %d: %w", step, err)
		}
		f, err = I.forces(ctx)
		if err != nil {
			return t, err
		}
		floats.AddScaled(mom, 0.5*conv, f)
		I.solver.Project(mom)
		I.removeMomenta(pos, mom, masses)
		M.SetTime(start + float64(step)*dt)
		if step%interval == 0 || step == nsteps {
			t.Add(M.Frame(step))
		}
	}
	last := t.Last()
	chem.Logger().Debug("dynamics finished", zap.String("molecule", M.Name), zap.Int("steps", nsteps),
		zap.Float64("final_time_fs", M.Time().Value), zap.Float64("total_energy_eV", last.PotentialEnergy+last.KineticEnergy))
	if math.IsNaN(floats.Sum(pos)) {
		return t, fmt.Errorf("verlet: the integration diverged, try a shorter timestep")
	}
	return t, nil
}
