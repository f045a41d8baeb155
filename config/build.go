/*
 * build.go, part of gochemcore.
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


package config

import (
	"fmt"

	chem "github.com/rmera/gochemcore"
	"github.com/rmera/gochemcore/integrators/verlet"
	"github.com/rmera/gochemcore/models/harmonic"
	"github.com/rmera/gochemcore/models/xtb"
	"github.com/rmera/gochemcore/propstore"
	"go.uber.org/zap"
)

//Store is a property store that needs to be closed.
type Store interface {
	chem.PropertyStore
	Close() error
}

//NewEnergyModel builds the energy model described by C.
func NewEnergyModel(C *ModelConfig) (chem.EnergyModel, error) {
	switch C.Engine {
	case EngineHarmonic:
		o := harmonic.DefaultOptions()
		o.K = C.K
		return harmonic.New(o), nil
	case EngineXTB:
		o := xtb.DefaultOptions()
		if C.Command != "" {
			o.Command = C.Command
		}
		if C.NCPU > 0 {
			o.NCPU = C.NCPU
		}
		o.WorkDir = C.WorkDir
		o.Keep = C.Keep
		return xtb.New(C.Params(), o), nil
	}
	return nil, fmt.Errorf("config: unknown engine %q", C.Engine)
}

//NewIntegrator builds the velocity Verlet integrator described by C.
func NewIntegrator(C *IntegratorConfig) chem.Integrator {
	return verlet.New(C.Params())
}

//OpenStore opens the property store described by C, or returns nil, nil if C selects none.
//If C has no namespace, one is built from the model configuration, so snapshots of different
//models never mix.
func (C *Config) OpenStore() (Store, error) {
	ns := C.Store.Namespace
	if ns == "" {
		ns = propstore.Namespace(C.Model.Engine, C.Model.Params())
	}
	switch C.Store.Backend {
	case BackendNone, "":
		return nil, nil
	case BackendSQLite:
		path := C.Store.Path
		if path == "" {
			path = ":memory:"
		}
		s, err := propstore.OpenSQLite(path, ns)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendBadger:
		s, err := propstore.OpenBadger(C.Store.Path, ns)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("config: unknown store backend %q", C.Store.Backend)
}

//NewLogger builds a zap logger with the level in C.
func NewLogger(C *LogConfig) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(C.Level)
	if err != nil {
		return nil, fmt.Errorf("config: invalid log level %q: %w", C.Level, err)
	}
	zc := zap.NewProductionConfig()
	if C.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl
	return zc.Build()
}

//Apply binds to mol a new energy model and a new integrator as described in C, and the
//property store, if C selects one. The store is returned so the caller can close it.
func (C *Config) Apply(mol *chem.Molecule) (Store, error) {
	m, err := NewEnergyModel(&C.Model)
	if err != nil {
		return nil, err
	}
	mol.SetEnergyModel(m)
	mol.SetIntegrator(NewIntegrator(&C.Integrator))
	s, err := C.OpenStore()
	if err != nil {
		return nil, err
	}
	if s != nil {
		mol.SetPropertyStore(s)
	}
	return s, nil
}
