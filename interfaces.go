/*
 * interfaces.go, part of gochemcore.
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

	"github.com/rmera/gochemcore/traj"
)

//EnergyModel is the capability a calculation engine has to expose in order to be bound to
//a Molecule. The Molecule never owns the model, it only keeps a reference to it.
type EnergyModel interface {

	//DefaultProperties are computed in every calculation, whether or not they were requested.
	DefaultProperties() []Property

	//Calculate starts a calculation of the requested properties at the current geometry of the bound
	//molecule. The returned Job resolves to a Properties snapshot that always contains the positions at
	//which it was computed. Synchronous models can return CompletedJob.
	Calculate(ctx context.Context, requests []Property) (*Job, error)

	//Prepared reports whether the model's precomputed state (basis sets, bond lists, input files) is
	//valid for the current structure. Only the model sets it to true.
	Prepared() bool

	//SetPrepared is called by the Molecule with false whenever the structure changes.
	SetPrepared(bool)

	//Params returns the model's configuration. It must not return nil.
	Params() *ModelParams

	//SetMolecule binds the model to M. It is called with nil when the model is unbound.
	SetMolecule(M *Molecule)
}

//Minimizer is implemented by energy models that carry their own geometry optimizer.
type Minimizer interface {
	Minimize(ctx context.Context, opts *MinimizeOptions) (*traj.Trajectory, error)
}

//Integrator evolves the bound molecule in time.
type Integrator interface {
	Run(ctx context.Context, length RunLength) (*traj.Trajectory, error)
	Prepared() bool
	SetPrepared(bool)
	Params() *IntegratorParams
	SetMolecule(M *Molecule)
}

//PropertyStore persists property snapshots keyed by the system they were computed for:
//elements, charge, multiplicity and exact geometry.
type PropertyStore interface {

	//Load returns the snapshot stored for exactly sys, or nil, nil if there is none.
	Load(ctx context.Context, sys *System) (*Properties, error)

	//Save stores p for sys, replacing any previous snapshot. p must have been computed at sys.Positions.
	Save(ctx context.Context, sys *System, p *Properties) error
}

//Errors

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Each call also returns the "decoration" slice of strings resulting from the current call. If passed an empty string, it should just return the current value, not add the empty string to the slice.
	Critical() bool
}
