/*
 * minimize.go, part of gochemcore.
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
	"context"
	"fmt"
	"math"

	"github.com/rmera/gochemcore/traj"
	"github.com/rmera/gochemcore/units"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

//MinimizeOptions controls geometry optimizations.
type MinimizeOptions struct {
	Steps               int     //maximum number of steps
	FrameInterval       int     //steps per recorded frame
	ForceTolerance      float64 //eV/Angstrom
	StepSize            float64 //initial largest displacement, Angstrom
	AssertConverged     bool    //fail with a *ConvergenceError if the final forces are above tolerance
	ConstraintTolerance float64 //largest deviation from a constrained value AssertConverged accepts, Angstrom or radians
}

//DefaultMinimizeOptions returns the options Minimize uses when given nil.
func DefaultMinimizeOptions() *MinimizeOptions {
	return &MinimizeOptions{
		Steps:          200,
		FrameInterval:  10,
		ForceTolerance:      0.05,
		StepSize:            0.1,
		ConstraintTolerance: 1e-4,
	}
}

//ForcesConverged returns true if every force component has an absolute value of at most tol,
//and the mean squared component is at most tol^2/3.
func ForcesConverged(forces []float64, tol float64) bool {
	if len(forces) == 0 {
		return true
	}
	if floats.Norm(forces, math.Inf(1)) > tol {
		return false
	}
	return floats.Dot(forces, forces)/float64(len(forces)) <= tol*tol/3
}

//fixedDims returns, for each dimension, whether it belongs to an atom with a fixed position.
func (M *Molecule) fixedDims() []bool {
	ret := make([]bool, M.NDims())
	for _, c := range M.constraints {
		if c.Kind != FixedPosition {
			continue
		}
		s, e := c.Atoms[0].ParentSlice()
		for i := s; i < e; i++ {
			ret[i] = true
		}
	}
	return ret
}

//FreeForces returns a copy of f (eV/Angstrom) with the components on fixed atoms set to zero.
func (M *Molecule) FreeForces(f []float64) []float64 {
	ret := make([]float64, len(f))
	copy(ret, f)
	for i, fixed := range M.fixedDims() {
		if fixed && i < len(ret) {
			ret[i] = 0
		}
	}
	return ret
}

//Frame returns a snapshot of the molecule's current state. The potential energy is taken from the
//cache, if there.
func (M *Molecule) Frame(step int) *traj.Frame {
	f := &traj.Frame{
		Step:            step,
		Time:            M.time,
		Positions:       append([]float64(nil), M.positions.Flat()...),
		Momenta:         append([]float64(nil), M.momenta.Flat()...),
		PotentialEnergy: math.NaN(),
		KineticEnergy:   M.KineticEnergy().Value,
	}
	if e, err := M.PotentialEnergy(); err == nil {
		if ev, err := e.In(units.EV); err == nil {
			f.PotentialEnergy = ev.Value
		}
	}
	return f
}

//energyAndForces returns the potential energy (eV) and the forces (eV/Angstrom) at the current geometry.
func (M *Molecule) energyAndForces(ctx context.Context) (float64, []float64, error) {
	if _, err := M.Calculate(ctx, []Property{PotentialEnergy, Forces}, true); err != nil {
		return 0, nil, err
	}
	e, err := M.CalcPotentialEnergy(ctx)
	if err != nil {
		return 0, nil, err
	}
	f, err := M.CalcForces(ctx)
	if err != nil {
		return 0, nil, err
	}
	return e.Value, f.Values, nil
}

//Minimize optimizes the geometry with the bound energy model. Models implementing Minimizer do it
//themselves, otherwise an adaptive steepest descent is used, which keeps distance, angle and
//dihedral constraints satisfied. Atoms with fixed positions are first placed at their constrained
//positions, and don't move.
//If o.AssertConverged is set, a *ConvergenceError is returned (with the trajectory) when the final
//forces on the free atoms, without their components along the constraints, are not converged, or
//when a constraint deviates more than o.ConstraintTolerance from its value.
func (M *Molecule) Minimize(ctx context.Context, o *MinimizeOptions) (*traj.Trajectory, error) {
	if M.model == nil {
		return nil, newCError(ErrNoEnergyModel, "Molecule.Minimize", "molecule %s", M.Name)
	}
	if o == nil {
		o = DefaultMinimizeOptions()
	}
	if M.PlaceFixedAtoms() {
		clog.Debug("fixed atoms placed at their constrained positions", zap.String("molecule", M.Name))
	}
	var t *traj.Trajectory
	var err error
	if mz, ok := M.model.(Minimizer); ok {
		t, err = mz.Minimize(ctx, o)
	} else {
		t, err = M.steepestDescent(ctx, o)
	}
	if err != nil {
		return t, errDecorate(err, "Molecule.Minimize")
	}
	if t != nil && t.Len() > 0 {
		clog.Info("minimization finished", zap.String("molecule", M.Name), zap.Float64("initial_energy_eV", t.First().PotentialEnergy),
			zap.Float64("final_energy_eV", t.Last().PotentialEnergy), zap.Int("frames", t.Len()))
	}
	if !o.AssertConverged {
		return t, nil
	}
	_, f, err := M.energyAndForces(ctx)
	if err != nil {
		return t, errDecorate(err, "Molecule.Minimize")
	}
	f = M.FreeForces(f)
	M.NewConstraintSolver(nil).Project(f)
	var hist []string
	if !ForcesConverged(f, o.ForceTolerance) {
		rms := math.Sqrt(floats.Dot(f, f) / float64(len(f)))
		hist = append(hist, fmt.Sprintf("max force %.4g eV/A, rms %.4g eV/A, tolerance %.4g eV/A", floats.Norm(f, math.Inf(1)), rms, o.ForceTolerance))
	}
	for _, c := range M.constraints {
		if d := c.Deviation(); d > o.ConstraintTolerance {
			hist = append(hist, fmt.Sprintf("%s deviates %.4g, tolerance %.4g", c, d, o.ConstraintTolerance))
		}
	}
	if len(hist) > 0 {
		return t, NewConvergenceError("minimization of "+M.Name, hist)
	}
	return t, nil
}

func (M *Molecule) steepestDescent(ctx context.Context, o *MinimizeOptions) (*traj.Trajectory, error) {
	interval := o.FrameInterval
	if interval <= 0 {
		interval = 1
	}
	t := traj.New(M.Name+" minimization", M.Len())
	S := M.NewConstraintSolver(nil)
	if err := S.Shake(); err != nil {
		return nil, err
	}
	e, f, err := M.energyAndForces(ctx)
	if err != nil {
		return nil, err
	}
	t.Add(M.Frame(0))
	step := o.StepSize
	pos := M.positions.Flat()
	old := make([]float64, len(pos))
	i := 1
	for ; i <= o.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return t, err
		}
		f = M.FreeForces(f)
		S.Project(f)
		fmax := floats.Norm(f, math.Inf(1))
		if fmax == 0 || ForcesConverged(f, o.ForceTolerance) || step < 1e-6 {
			break
		}
		copy(old, pos)
		oldprops := M.props
		floats.AddScaled(pos, step/fmax, f)
		if err := S.Shake(); err != nil {
			copy(pos, old)
			M.props = oldprops
			step *= 0.5
			continue
		}
		e1, f1, err := M.energyAndForces(ctx)
		if err != nil {
			copy(pos, old)
			M.props = oldprops
			return t, err
		}
		if e1 < e {
			e, f = e1, f1
			step *= 1.2
		} else {
			copy(pos, old)
			M.props = oldprops
			step *= 0.5
		}
		if i%interval == 0 {
			t.Add(M.Frame(i))
		}
		clog.Debug("descent step", zap.Int("step", i), zap.Float64("energy_eV", e), zap.Float64("step_A", step))
	}
	if !floats.Equal(t.Last().Positions, pos) {
		t.Add(M.Frame(i))
	}
	return t, nil
}
