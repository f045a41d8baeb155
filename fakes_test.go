/*
 * fakes_test.go, part of gochemcore.
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
	"sync"

	"github.com/rmera/gochemcore/traj"
	"github.com/rmera/gochemcore/units"
)

//tether is a test energy model: every atom is tied to its starting position by a spring, so
//E = k/2 sum |x-x0|^2 and F = -k (x-x0).
type tether struct {
	k        float64
	x0       []float64
	mol      *Molecule
	params   ModelParams
	prepared bool
	async    bool
	mu       sync.Mutex
	calls    [][]Property
}

func newTether(k float64) *tether {
	return &tether{k: k}
}

func (T *tether) DefaultProperties() []Property { return []Property{PotentialEnergy} }

func (T *tether) Params() *ModelParams { return &T.params }

func (T *tether) Prepared() bool { return T.prepared }

func (T *tether) SetPrepared(p bool) { T.prepared = p }

func (T *tether) SetMolecule(M *Molecule) {
	T.mol = M
	if M == nil {
		return
	}
	T.x0 = append([]float64(nil), M.Positions().Flat()...)
}

func (T *tether) ncalls() int {
	T.mu.Lock()
	defer T.mu.Unlock()
	return len(T.calls)
}

func (T *tether) compute(pos []float64, requests []Property) *Properties {
	p := NewProperties(pos)
	var e float64
	f := make([]float64, len(pos))
	for i, v := range pos {
		d := v - T.x0[i]
		e += 0.5 * T.k * d * d
		f[i] = -T.k * d
	}
	for _, r := range requests {
		switch r {
		case PotentialEnergy:
			p.Set(r, units.S(e/units.HartreeInEV, units.Hartree))
		case Forces:
			p.Set(r, units.V(f, units.EVPerAngstrom))
		case Dipole:
			p.Set(r, units.V([]float64{0, 0, 1}, units.Debye))
		case ElectronicState:
			p.Set(r, Opaque{Data: "singlet"})
		}
	}
	return p
}

func (T *tether) Calculate(ctx context.Context, requests []Property) (*Job, error) {
	T.mu.Lock()
	T.calls = append(T.calls, append([]Property(nil), requests...))
	T.mu.Unlock()
	T.prepared = true
	pos := append([]float64(nil), T.mol.Positions().Flat()...)
	if !T.async {
		return CompletedJob(T.compute(pos, requests), nil), nil
	}
	J := NewJob()
	go func() {
		J.Finish(T.compute(pos, requests), nil)
	}()
	return J, nil
}

//stillIntegrator only carries parameters.
type stillIntegrator struct {
	params   IntegratorParams
	prepared bool
	mol      *Molecule
}

func (S *stillIntegrator) Run(ctx context.Context, length RunLength) (*traj.Trajectory, error) {
	t := traj.New("still", S.mol.Len())
	for i := 0; i < length.NumSteps(S.params.Timestep); i++ {
		S.mol.SetTime(S.mol.Time().Value + S.params.Timestep)
		if err := t.Add(S.mol.Frame(i)); err != nil {
			return t, err
		}
	}
	S.prepared = true
	return t, nil
}

func (S *stillIntegrator) Prepared() bool { return S.prepared }

func (S *stillIntegrator) SetPrepared(p bool) { S.prepared = p }

func (S *stillIntegrator) Params() *IntegratorParams { return &S.params }

func (S *stillIntegrator) SetMolecule(M *Molecule) { S.mol = M }

//waterAtoms returns an unattached, bonded water molecule.
func waterAtoms() []*Atom {
	o := NewAtomAt("O", "O", 0, 0, 0.1173)
	h1 := NewAtomAt("H1", "H", 0, 0.7572, -0.4692)
	h2 := NewAtomAt("H2", "H", 0, -0.7572, -0.4692)
	o.BondTo(h1, 1)
	o.BondTo(h2, 1)
	return []*Atom{o, h1, h2}
}
