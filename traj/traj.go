/*
 * traj.go, part of gochemcore.
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

//Package traj holds the trajectories produced by integrators and minimizers: ordered frames of
//positions, momenta, time and potential energy.
package traj

import (
	"fmt"
	"math"

	v3 "github.com/rmera/gochemcore/v3"
)

//Frame is one snapshot of a trajectory. Positions are in Angstrom, momenta in amu*Angstrom/fs,
//time in fs and energies in eV. PotentialEnergy is NaN when it is not known.
type Frame struct {
	Step            int
	Time            float64
	Positions       []float64
	Momenta         []float64 //may be nil
	PotentialEnergy float64
	KineticEnergy   float64
}

//HasEnergy returns true if the frame's potential energy is known.
func (F *Frame) HasEnergy() bool { return !math.IsNaN(F.PotentialEnergy) }

//Coords returns a copy of the positions of the frame as a Nx3 matrix.
func (F *Frame) Coords() *v3.Matrix {
	c := make([]float64, len(F.Positions))
	copy(c, F.Positions)
	m, err := v3.NewMatrix(c)
	if err != nil {
		panic(err) //Add checks the length
	}
	return m
}

//Trajectory is an ordered set of frames for a fixed number of atoms.
type Trajectory struct {
	Name   string
	natoms int
	frames []*Frame
}

//New returns an empty trajectory for natoms atoms.
func New(name string, natoms int) *Trajectory {
	return &Trajectory{Name: name, natoms: natoms}
}

//NAtoms returns the number of atoms per frame.
func (T *Trajectory) NAtoms() int { return T.natoms }

//Len returns the number of frames.
func (T *Trajectory) Len() int { return len(T.frames) }

//Add appends f to the trajectory. It fails if the frame doesn't have 3 values per atom.
func (T *Trajectory) Add(f *Frame) error {
	if len(f.Positions) != 3*T.natoms || T.natoms == 0 {
		return Error{fmt.Sprintf("frame has %d position values, %d expected", len(f.Positions), 3*T.natoms), []string{"Trajectory.Add"}, true}
	}
	if f.Momenta != nil && len(f.Momenta) != 3*T.natoms {
		return Error{fmt.Sprintf("frame has %d momentum values, %d expected", len(f.Momenta), 3*T.natoms), []string{"Trajectory.Add"}, true}
	}
	T.frames = append(T.frames, f)
	return nil
}

//Frame returns the ith frame. It panics if i is out of range.
func (T *Trajectory) Frame(i int) *Frame { return T.frames[i] }

//First returns the first frame, or nil.
func (T *Trajectory) First() *Frame {
	if len(T.frames) == 0 {
		return nil
	}
	return T.frames[0]
}

//Last returns the last frame, or nil.
func (T *Trajectory) Last() *Frame {
	if len(T.frames) == 0 {
		return nil
	}
	return T.frames[len(T.frames)-1]
}

//Times returns the time of each frame, in fs.
func (T *Trajectory) Times() []float64 {
	ret := make([]float64, len(T.frames))
	for i, f := range T.frames {
		ret[i] = f.Time
	}
	return ret
}

//PotentialEnergies returns the potential energy of each frame, in eV (NaN where unknown).
func (T *Trajectory) PotentialEnergies() []float64 {
	ret := make([]float64, len(T.frames))
	for i, f := range T.frames {
		ret[i] = f.PotentialEnergy
	}
	return ret
}

//Error is the error type for the traj package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string { return "traj: " + err.message }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err Error) Critical() bool { return err.critical }
