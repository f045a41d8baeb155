/*
 * properties_test.go, part of gochemcore.
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
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/gochemcore/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPropertyNames(Te *testing.T) {
	for p := Positions; p <= CorrelationEnergy; p++ {
		q, ok := ParseProperty(p.String())
		assert.True(Te, ok)
		assert.Equal(Te, p, q)
	}
	assert.Equal(Te, "potential_energy", PotentialEnergy.String())
	assert.Equal(Te, "PotentialEnergy", PotentialEnergy.GoName())
	_, ok := ParseProperty("Energy")
	assert.False(Te, ok)
}

func TestNotCalculated(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	_, err = mol.GetProperty(PotentialEnergy)
	var nc *NotCalculatedError
	require.True(Te, errors.As(err, &nc))
	assert.Equal(Te, PotentialEnergy, nc.Property)
	assert.False(Te, nc.Critical())
	assert.Contains(Te, err.Error(), "chem.PotentialEnergy")
	v, err := mol.GetProperty(Positions)
	require.NoError(Te, err)
	assert.Equal(Te, units.Angstrom, v.Unit())

	_, err = mol.CalcPotentialEnergy(context.Background())
	assert.True(Te, errors.Is(err, ErrNoEnergyModel))
}

func TestCalculateAndInvalidate(Te *testing.T) {
	model := newTether(2)
	mol, err := NewMolecule(waterAtoms(), &Options{Model: model})
	require.NoError(Te, err)
	ctx := context.Background()
	mol.Atom(1).SetPosition(0, 0.8572, -0.4692)
	e, err := mol.CalcPotentialEnergy(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, units.EV, e.U)
	assert.InDelta(Te, 0.01, e.Value, 1e-9)
	assert.True(Te, model.Prepared())
	assert.Equal(Te, 1, model.ncalls())

	raw, err := mol.PotentialEnergy()
	require.NoError(Te, err)
	assert.Equal(Te, units.Hartree, raw.U, "the cache keeps the engine's unit")

	f, err := mol.CalcForces(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, 2, model.ncalls())
	assert.Equal(Te, []Property{Forces}, model.calls[1], "the energy is already cached")
	assert.InDelta(Te, -0.2, f.Values[4], 1e-9)

	//cached, no new calculation
	_, err = mol.Calculate(ctx, []Property{Forces}, true)
	require.NoError(Te, err)
	assert.Equal(Te, 2, model.ncalls())
	_, err = mol.Calculate(ctx, []Property{Forces}, false)
	require.NoError(Te, err)
	assert.Equal(Te, 3, model.ncalls())
	assert.Equal(Te, []Property{PotentialEnergy, Forces}, model.calls[2])

	//any change in the geometry invalidates everything
	p := mol.Positions().Flat()
	p[0] += 1e-12
	assert.False(Te, mol.Properties().GeometryMatches(mol))
	_, err = mol.PotentialEnergy()
	var nc *NotCalculatedError
	assert.True(Te, errors.As(err, &nc))
	_, err = mol.Forces()
	assert.True(Te, errors.As(err, &nc))
	p[0] -= 1e-12
	_, err = mol.Forces()
	assert.NoError(Te, err, "the cache is valid again at the exact same geometry")

	d, err := mol.CalcDipole(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, units.Debye, d.U)
	st, err := mol.CalcElectronicState(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, "singlet", st.Data)
}

func TestUpdateProperties(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	p := NewProperties(mol.Positions().Flat())
	p.Set(PotentialEnergy, units.S(-5, units.EV))
	p.Set(Positions, units.V(make([]float64, 9), units.Angstrom))
	assert.Equal(Te, mol.Positions().Flat(), p.Positions(), "positions can't be overwritten")
	require.NoError(Te, mol.UpdateProperties(p))
	q := NewProperties(mol.Positions().Flat())
	q.Set(Dipole, units.V([]float64{1, 0, 0}, units.EAngstrom))
	require.NoError(Te, mol.UpdateProperties(q))
	assert.Equal(Te, []Property{Positions, PotentialEnergy, Dipole}, mol.Properties().Keys())
	assert.Equal(Te, 3, mol.Properties().Len())
	assert.False(Te, p.Has(Dipole), "the merged snapshot is not modified")

	other := NewProperties(make([]float64, 9))
	err = mol.UpdateProperties(other)
	assert.True(Te, errors.Is(err, ErrGeometryMismatch))
	err = mol.SetProperties(other)
	assert.True(Te, errors.Is(err, ErrGeometryMismatch))
	assert.True(Te, mol.Properties().Has(PotentialEnergy))

	//a stale cache gets replaced
	mol.Atom(0).SetPosition(1, 1, 1)
	r := NewProperties(mol.Positions().Flat())
	r.Set(Mulliken, units.V([]float64{-0.8, 0.4, 0.4}, units.ElementaryCharge))
	require.NoError(Te, mol.UpdateProperties(r))
	assert.False(Te, mol.Properties().Has(PotentialEnergy))
	assert.True(Te, mol.Properties().Has(Mulliken))

	//SetProperties replaces even a cache for the current geometry.
	require.NoError(Te, mol.SetProperties(NewProperties(mol.Positions().Flat())))
	assert.False(Te, mol.Properties().Has(Mulliken))
	assert.Equal(Te, 1, mol.Properties().Len())
}

func TestRebindMethods(Te *testing.T) {
	ctx := context.Background()
	first := newTether(1)
	mol, err := NewMolecule(waterAtoms(), &Options{Model: first})
	require.NoError(Te, err)
	_, err = mol.CalcPotentialEnergy(ctx)
	require.NoError(Te, err)
	require.True(Te, first.Prepared())

	second := newTether(2)
	mol.SetEnergyModel(second)
	assert.Nil(Te, first.mol)
	assert.False(Te, first.Prepared())
	assert.Same(Te, mol, second.mol)

	mol.SetEnergyModel(nil)
	assert.Nil(Te, second.mol)
	assert.Nil(Te, mol.EnergyModel())
	_, err = mol.CalcPotentialEnergy(ctx)
	assert.True(Te, errors.Is(err, ErrNoEnergyModel))

	integ := &stillIntegrator{params: IntegratorParams{Timestep: 1}}
	mol.SetIntegrator(integ)
	assert.Same(Te, mol, integ.mol)
	mol.SetIntegrator(nil)
	assert.Nil(Te, integ.mol)
	_, err = mol.Run(ctx, Steps(1))
	assert.True(Te, errors.Is(err, ErrNoIntegrator))
}

func TestSubmit(Te *testing.T) {
	model := newTether(1)
	model.async = true
	mol, err := NewMolecule(waterAtoms(), &Options{Model: model})
	require.NoError(Te, err)
	ctx := context.Background()
	job, err := mol.Submit(ctx, []Property{Forces}, true)
	require.NoError(Te, err)
	p, err := job.Wait(ctx)
	require.NoError(Te, err)
	_, err = mol.Forces()
	assert.Error(Te, err, "Submit doesn't merge")
	require.NoError(Te, mol.UpdateProperties(p))
	_, err = mol.Forces()
	assert.NoError(Te, err)

	//everything cached: finished job, no calculation
	job, err = mol.Submit(ctx, []Property{Forces}, true)
	require.NoError(Te, err)
	select {
	case <-job.Done():
	default:
		Te.Fatal("job for cached properties should be finished")
	}
	assert.Equal(Te, 1, model.ncalls())

	//the geometry changes while the job runs
	job, err = mol.Submit(ctx, []Property{Dipole}, true)
	require.NoError(Te, err)
	mol.Atom(2).SetPosition(3, 3, 3)
	p, err = job.Wait(ctx)
	require.NoError(Te, err)
	err = mol.UpdateProperties(p)
	assert.True(Te, errors.Is(err, ErrGeometryMismatch))

	//waiting is bounded by the context
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewJob().Wait(cctx)
	assert.ErrorIs(Te, err, context.Canceled)
}

func TestJobFinishOnce(Te *testing.T) {
	J := NewJob()
	p := NewProperties([]float64{0, 0, 0})
	J.Finish(p, nil)
	J.Finish(nil, errors.New("late"))
	q, err := J.Wait(context.Background())
	assert.NoError(Te, err)
	assert.Same(Te, p, q)
}

func TestModelCharge(Te *testing.T) {
	core, obs := observer.New(zap.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)
	mol, err := NewMolecule(waterAtoms(), &Options{Charge: -1})
	require.NoError(Te, err)

	plain := newTether(1)
	mol.SetEnergyModel(plain)
	assert.Nil(Te, plain.Params().Charge, "models without a charge option are left alone")

	charged := newTether(1)
	charged.params.ChargeOption = true
	mol.SetEnergyModel(charged)
	require.NotNil(Te, charged.Params().Charge)
	assert.Equal(Te, -1, *charged.Params().Charge)
	assert.Equal(Te, 0, obs.Len())

	other := newTether(1)
	other.params.ChargeOption = true
	one := 1
	other.params.Charge = &one
	mol.SetEnergyModel(other)
	assert.Equal(Te, 1, *other.Params().Charge)
	assert.Equal(Te, 1, obs.FilterMessage("molecular charge does not match the energy model's charge").Len())
	assert.Same(Te, other, mol.EnergyModel())
}

func TestResetOnChange(Te *testing.T) {
	model := newTether(1)
	integ := &stillIntegrator{}
	mol, err := NewMolecule(waterAtoms(), &Options{Model: model, Integrator: integ})
	require.NoError(Te, err)
	assert.Same(Te, integ, mol.Integrator())
	set := func() { model.prepared, integ.prepared = true, true }
	check := func(what string) {
		assert.False(Te, model.Prepared(), what)
		assert.False(Te, integ.Prepared(), what)
	}
	set()
	_, err = mol.ConstrainDistance(mol.Atom(0), mol.Atom(1), nil)
	require.NoError(Te, err)
	check("new constraint")
	set()
	mol.ClearConstraints()
	check("clear constraints")
	set()
	require.NoError(Te, mol.AddAtom(NewAtomAt("Na", "Na", 5, 5, 5)))
	check("new atom")
}

func TestRun(Te *testing.T) {
	mol, err := NewMolecule(waterAtoms(), nil)
	require.NoError(Te, err)
	_, err = mol.Run(context.Background(), Steps(10))
	assert.True(Te, errors.Is(err, ErrNoIntegrator))
	integ := &stillIntegrator{params: IntegratorParams{Timestep: 0.5}}
	mol.SetIntegrator(integ)
	l, err := Duration(units.S(0.01, units.Picosecond))
	require.NoError(Te, err)
	assert.Equal(Te, 20, l.NumSteps(0.5))
	t, err := mol.Run(context.Background(), l)
	require.NoError(Te, err)
	assert.Equal(Te, 20, t.Len())
	assert.InDelta(Te, 10, mol.Time().Value, 1e-9)
	_, err = Duration(units.S(1, units.EV))
	assert.Error(Te, err)
}

func TestRegisterMetrics(Te *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(Te, RegisterMetrics(reg))
	assert.Error(Te, RegisterMetrics(reg))
}
