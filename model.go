/*
 * model.go, part of gochemcore.
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
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rmera/gochemcore/traj"
	"github.com/rmera/gochemcore/units"
	"go.uber.org/zap"
)

//ModelParams is the configuration of an energy model. Models that take a charge set ChargeOption;
//the molecule then fills Charge in when it is nil.
type ModelParams struct {
	Theory       string
	Basis        string
	Functional   string
	ChargeOption bool
	Charge       *int
	Multiplicity int
	SCFCycles    int
	Solvent      string
}

//Integrator constraint sets
const (
	HBondConstraints = "hbonds"
	WaterConstraints = "water"
)

//IntegratorParams is the configuration of an integrator.
type IntegratorParams struct {
	Timestep          float64 //fs
	FrameInterval     int     //steps between recorded frames
	RemoveTranslation bool
	RemoveRotation    bool
	Constraints       []string //any of HBondConstraints, WaterConstraints
}

//HasConstraint returns true if c is among the integrator's constraint sets.
func (P *IntegratorParams) HasConstraint(c string) bool {
	for _, v := range P.Constraints {
		if v == c {
			return true
		}
	}
	return false
}

//RunLength is either a number of steps or a duration.
type RunLength struct {
	Steps    int
	Duration float64 //fs, used when Steps is 0
}

//Steps returns a RunLength of n steps.
func Steps(n int) RunLength { return RunLength{Steps: n} }

//Duration returns a RunLength spanning t, which must be a time.
func Duration(t units.Scalar) (RunLength, error) {
	fs, err := t.In(units.Femtosecond)
	if err != nil {
		return RunLength{}, newCError(ErrShape, "Duration", "%s", err)
	}
	return RunLength{Duration: fs.Value}, nil
}

//NumSteps returns the number of steps of length timestep (fs) the RunLength spans.
func (R RunLength) NumSteps(timestep float64) int {
	if R.Steps > 0 || timestep <= 0 {
		return R.Steps
	}
	return int(math.Ceil(R.Duration/timestep - 1e-9))
}

//Job is the handle for a calculation that may still be running.
type Job struct {
	done   chan struct{}
	once   sync.Once
	result *Properties
	err    error
}

//NewJob returns an unfinished job. The model that created it must call Finish exactly once.
func NewJob() *Job {
	return &Job{done: make(chan struct{})}
}

//CompletedJob returns a job that is already finished.
func CompletedJob(p *Properties, err error) *Job {
	J := NewJob()
	J.Finish(p, err)
	return J
}

//Finish stores the result of the job and releases everybody waiting on it. Only the first
//call has any effect.
func (J *Job) Finish(p *Properties, err error) {
	J.once.Do(func() {
		J.result, J.err = p, err
		close(J.done)
	})
}

//Done returns a channel that is closed when the job finishes.
func (J *Job) Done() <-chan struct{} { return J.done }

//Wait blocks until the job finishes or ctx is done.
func (J *Job) Wait(ctx context.Context) (*Properties, error) {
	select {
	case <-J.done:
		return J.result, J.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

//SetEnergyModel binds model to the molecule. The property cache is emptied, the molecule's charge
//is passed to models that take one (a different, explicitly set, charge only causes a warning),
//and the model is marked as not prepared. A previously bound model is unbound, and a nil model
//leaves the molecule without one.
func (M *Molecule) SetEnergyModel(model EnergyModel) {
	if M.model != nil && M.model != model {
		M.model.SetMolecule(nil)
		M.model.SetPrepared(false)
	}
	M.model = model
	M.props = NewProperties(M.positions.Flat())
	if model == nil {
		return
	}
	model.SetMolecule(M)
	p := model.Params()
	if p.ChargeOption {
		if p.Charge == nil {
			c := M.charge
			p.Charge = &c
		} else if *p.Charge != M.charge {
			clog.Warn("molecular charge does not match the energy model's charge", zap.Int("molecule", M.charge), zap.Int("model", *p.Charge))
		}
	}
	model.SetPrepared(false)
}

//EnergyModel returns the bound energy model, or nil.
func (M *Molecule) EnergyModel() EnergyModel { return M.model }

//SetIntegrator binds integ to the molecule and marks it as not prepared. A previously bound
//integrator is unbound, and a nil integ leaves the molecule without one.
func (M *Molecule) SetIntegrator(integ Integrator) {
	if M.integrator != nil && M.integrator != integ {
		M.integrator.SetMolecule(nil)
		M.integrator.SetPrepared(false)
	}
	M.integrator = integ
	if integ == nil {
		return
	}
	integ.SetMolecule(M)
	integ.SetPrepared(false)
}

//Integrator returns the bound integrator, or nil.
func (M *Molecule) Integrator() Integrator { return M.integrator }

//System identifies what a property snapshot was computed for.
type System struct {
	AtNums       []int
	Charge       int
	Multiplicity int
	Positions    []float64
}

//SameSystem returns true if S and o have the same elements, charge and multiplicity.
//Positions are not compared.
func (S *System) SameSystem(o *System) bool {
	if S == nil || o == nil {
		return S == o
	}
	if S.Charge != o.Charge || S.Multiplicity != o.Multiplicity || len(S.AtNums) != len(o.AtNums) {
		return false
	}
	for i, v := range S.AtNums {
		if o.AtNums[i] != v {
			return false
		}
	}
	return true
}

//System returns the identity of the molecule's current state, as seen by its energy model.
//The charge is the model's when it has one set, the molecule's otherwise. Positions is the
//molecule's buffer, not a copy.
func (M *Molecule) System() *System {
	s := &System{AtNums: make([]int, len(M.atoms)), Charge: M.charge, Positions: M.positions.Flat()}
	for i, at := range M.atoms {
		s.AtNums[i] = at.AtNum
	}
	if M.model != nil {
		p := M.model.Params()
		if p.Charge != nil {
			s.Charge = *p.Charge
		}
		s.Multiplicity = p.Multiplicity
	}
	return s
}

//SetPropertyStore sets a persistent store consulted and fed by cached calculations. nil disables it.
func (M *Molecule) SetPropertyStore(s PropertyStore) { M.store = s }

//toCalculate returns the requested plus default properties, minus, if useCache is set, those already
//in the cache for the current geometry.
func (M *Molecule) toCalculate(requests []Property, useCache bool) []Property {
	set := make(map[Property]bool)
	for _, r := range requests {
		set[r] = true
	}
	for _, r := range M.model.DefaultProperties() {
		set[r] = true
	}
	if useCache && M.props != nil && M.props.GeometryMatches(M) {
		for k := range set {
			if M.props.Has(k) {
				delete(set, k)
			}
		}
	}
	ret := make([]Property, 0, len(set))
	for k := range set {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

//loadStored merges the persistent store's snapshot for the current geometry, if any, into the cache.
func (M *Molecule) loadStored(ctx context.Context) {
	if M.store == nil {
		return
	}
	p, err := M.store.Load(ctx, M.System())
	if err != nil {
		clog.Warn("property store load failed", zap.Error(err))
		return
	}
	if p == nil || !p.GeometryMatches(M) {
		return
	}
	if err := M.UpdateProperties(p); err == nil {
		storeHits.Inc()
	}
}

//Submit starts a calculation of requests plus the model's default properties and returns without
//waiting for it. If useCache is set and everything is already cached, the returned job is finished
//and holds the cache. The result is not merged into the molecule: use UpdateProperties once it is
//done. It will fail if the geometry changed in the meantime.
func (M *Molecule) Submit(ctx context.Context, requests []Property, useCache bool) (*Job, error) {
	if M.model == nil {
		return nil, newCError(ErrNoEnergyModel, "Molecule.Submit", "molecule %s", M.Name)
	}
	calcRequests.Inc()
	if useCache {
		M.loadStored(ctx)
	}
	todo := M.toCalculate(requests, useCache)
	if len(todo) == 0 {
		cacheHits.Inc()
		return CompletedJob(M.props, nil), nil
	}
	job, err := M.model.Calculate(ctx, todo)
	if err != nil {
		return nil, errDecorate(err, "Molecule.Submit")
	}
	return job, nil
}

//Calculate computes requests plus the model's default properties at the current geometry, waits for
//the result, merges it into the property cache and returns the cache. If useCache is set, only the
//properties missing from the cache are computed.
func (M *Molecule) Calculate(ctx context.Context, requests []Property, useCache bool) (*Properties, error) {
	start := time.Now()
	job, err := M.Submit(ctx, requests, useCache)
	if err != nil {
		return nil, errDecorate(err, "Molecule.Calculate")
	}
	p, err := job.Wait(ctx)
	if err != nil {
		return nil, errDecorate(err, "Molecule.Calculate")
	}
	calcSeconds.Observe(time.Since(start).Seconds())
	if err := M.UpdateProperties(p); err != nil {
		return nil, errDecorate(err, "Molecule.Calculate")
	}
	if M.store != nil && p != M.props {
		if err := M.store.Save(ctx, M.System(), M.props); err != nil {
			clog.Warn("property store save failed", zap.Error(err))
		}
	}
	return M.props, nil
}

//Run evolves the molecule with the bound integrator.
func (M *Molecule) Run(ctx context.Context, length RunLength) (*traj.Trajectory, error) {
	if M.integrator == nil {
		return nil, newCError(ErrNoIntegrator, "Molecule.Run", "molecule %s", M.Name)
	}
	t, err := M.integrator.Run(ctx, length)
	return t, errDecorate(err, "Molecule.Run")
}
