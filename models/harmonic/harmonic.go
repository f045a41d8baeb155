/*
 * harmonic.go, part of gochemcore.
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


//Package harmonic is a simple in-process energy model where every bond is a spring.
//It is mostly useful to test code that drives energy models, and for quick relaxations
//of bonded structures.
package harmonic

import (
	"context"
	"fmt"
	"math"

	chem "github.com/rmera/gochemcore"
	"github.com/rmera/gochemcore/units"
)

//Options for the harmonic model.
type Options struct {
	K          float64                //force constant, eV/Angstrom^2
	Equilibria map[[2]string]float64 //equilibrium lengths (Angstrom) per element pair, symbols in alphabetical order
}

//DefaultOptions returns the options New uses when given nil.
func DefaultOptions() *Options {
	return &Options{K: 20}
}

type spring struct {
	i, j int
	r0   float64
}

//Model is a harmonic bond-stretching model: E = sum k/2 (r - r0)^2 over the bonds of the molecule.
//r0 is the sum of the covalent radii of the bonded elements unless given in the options.
type Model struct {
	opts     *Options
	params   chem.ModelParams
	mol      *chem.Molecule
	prepared bool
	springs  []spring
}

//New returns a harmonic model.
func New(o *Options) *Model {
	if o == nil {
		o = DefaultOptions()
	}
	return &Model{opts: o, params: chem.ModelParams{Theory: "harmonic bonds"}}
}

func (m *Model) DefaultProperties() []chem.Property {
	return []chem.Property{chem.PotentialEnergy, chem.Forces}
}

func (m *Model) Params() *chem.ModelParams { return &m.params }

func (m *Model) Prepared() bool { return m.prepared }

func (m *Model) SetPrepared(p bool) { m.prepared = p }

func (m *Model) SetMolecule(M *chem.Molecule) { m.mol = M }

//equilibrium returns r0 for a bond between elements s1 and s2.
func (m *Model) equilibrium(s1, s2 string) float64 {
	if s2 < s1 {
		s1, s2 = s2, s1
	}
	if r, ok := m.opts.Equilibria[[2]string{s1, s2}]; ok {
		return r
	}
	return chem.CovalentRadius(s1) + chem.CovalentRadius(s2)
}

//prepare rebuilds the spring list from the molecule's bonds.
func (m *Model) prepare() error {
	if m.mol == nil {
		return fmt.Errorf("harmonic: the model is not bound to a molecule")
	}
	bonds := m.mol.Bonds()
	m.springs = m.springs[:0]
	for _, b := range bonds {
		r0 := m.equilibrium(b.At1.Symbol, b.At2.Symbol)
		if r0 == 0 {
			return fmt.Errorf("harmonic: no equilibrium length for %s-%s", b.At1.Symbol, b.At2.Symbol)
		}
		m.springs = append(m.springs, spring{b.At1.Index(), b.At2.Index(), r0})
	}
	m.prepared = true
	return nil
}

//Energy returns the energy (eV) and forces (eV/Angstrom) at positions.
func (m *Model) Energy(positions []float64) (float64, []float64) {
	var e float64
	f := make([]float64, len(positions))
	var d [3]float64
	for _, s := range m.springs {
		var r2 float64
		for k := 0; k < 3; k++ {
			d[k] = positions[3*s.j+k] - positions[3*s.i+k]
			r2 += d[k] * d[k]
		}
		r := math.Sqrt(r2)
		dr := r - s.r0
		e += 0.5 * m.opts.K * dr * dr
		if r == 0 {
			continue
		}
		for k := 0; k < 3; k++ {
			fk := m.opts.K * dr * d[k] / r
			f[3*s.i+k] += fk
			f[3*s.j+k] -= fk
		}
	}
	return e, f
}

//Calculate computes the energy and forces at once. Only potential energy and forces are supported.
func (m *Model) Calculate(ctx context.Context, requests []chem.Property) (*chem.Job, error) {
	for _, r := range requests {
		if r != chem.PotentialEnergy && r != chem.Forces {
			return nil, fmt.Errorf("harmonic: property %s not supported", r)
		}
	}
	if !m.prepared {
		if err := m.prepare(); err != nil {
			return nil, err
		}
	}
	pos := m.mol.Positions().Flat()
	p := chem.NewProperties(pos)
	e, f := m.Energy(pos)
	p.Set(chem.PotentialEnergy, units.S(e, units.EV))
	p.Set(chem.Forces, units.V(f, units.EVPerAngstrom))
	return chem.CompletedJob(p, nil), nil
}
