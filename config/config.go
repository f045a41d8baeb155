/*
 * config.go, part of gochemcore.
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


//Package config loads the parameters of energy models, integrators, minimizations and
//property stores from a YAML file and GOCHEM_ environment variables, and builds those
//objects from them.
package config

import (
	"fmt"

	chem "github.com/rmera/gochemcore"
)

//Config is the whole configuration.
type Config struct {
	Model      ModelConfig      `mapstructure:"model"`
	Integrator IntegratorConfig `mapstructure:"integrator"`
	Minimize   MinimizeConfig   `mapstructure:"minimize"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
}

//ModelConfig selects and configures the energy model.
type ModelConfig struct {
	Engine       string  `mapstructure:"engine"` //harmonic or xtb
	Theory       string  `mapstructure:"theory"`
	Basis        string  `mapstructure:"basis"`
	Functional   string  `mapstructure:"functional"`
	Charge       *int    `mapstructure:"charge"` //nil means the molecule's charge
	Multiplicity int     `mapstructure:"multiplicity"`
	SCFCycles    int     `mapstructure:"scf_cycles"`
	Solvent      string  `mapstructure:"solvent"`
	Command      string  `mapstructure:"command"` //xtb executable
	NCPU         int     `mapstructure:"ncpu"`
	WorkDir      string  `mapstructure:"workdir"`
	Keep         bool    `mapstructure:"keep"`
	K            float64 `mapstructure:"k"` //harmonic force constant, eV/A^2
}

//IntegratorConfig configures the integrator.
type IntegratorConfig struct {
	Timestep          float64  `mapstructure:"timestep"` //fs
	FrameInterval     int      `mapstructure:"frame_interval"`
	RemoveTranslation bool     `mapstructure:"remove_translation"`
	RemoveRotation    bool     `mapstructure:"remove_rotation"`
	Constraints       []string `mapstructure:"constraints"`
}

//MinimizeConfig configures geometry optimizations.
type MinimizeConfig struct {
	Steps               int     `mapstructure:"steps"`
	FrameInterval       int     `mapstructure:"frame_interval"`
	ForceTolerance      float64 `mapstructure:"force_tolerance"` //eV/A
	StepSize            float64 `mapstructure:"step_size"`       //A
	AssertConverged     bool    `mapstructure:"assert_converged"`
	ConstraintTolerance float64 `mapstructure:"constraint_tolerance"` //A or rad
}

//StoreConfig selects the persistent property store.
type StoreConfig struct {
	Backend   string `mapstructure:"backend"` //none, sqlite or badger
	Path      string `mapstructure:"path"`    //database file (sqlite) or directory (badger). Empty means in memory.
	Namespace string `mapstructure:"namespace"`
}

//LogConfig configures the library logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

//Supported engines and store backends
const (
	EngineHarmonic = "harmonic"
	EngineXTB      = "xtb"

	BackendNone   = "none"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

//Params returns the model parameters in C.
func (C *ModelConfig) Params() *chem.ModelParams {
	p := &chem.ModelParams{
		Theory:       C.Theory,
		Basis:        C.Basis,
		Functional:   C.Functional,
		Multiplicity: C.Multiplicity,
		SCFCycles:    C.SCFCycles,
		Solvent:      C.Solvent,
	}
	if C.Charge != nil {
		c := *C.Charge
		p.Charge = &c
	}
	return p
}

//Params returns the integrator parameters in C.
func (C *IntegratorConfig) Params() *chem.IntegratorParams {
	return &chem.IntegratorParams{
		Timestep:          C.Timestep,
		FrameInterval:     C.FrameInterval,
		RemoveTranslation: C.RemoveTranslation,
		RemoveRotation:    C.RemoveRotation,
		Constraints:       append([]string(nil), C.Constraints...),
	}
}

//Options returns the minimization options in C.
func (C *MinimizeConfig) Options() *chem.MinimizeOptions {
	return &chem.MinimizeOptions{
		Steps:               C.Steps,
		FrameInterval:       C.FrameInterval,
		ForceTolerance:      C.ForceTolerance,
		StepSize:            C.StepSize,
		AssertConverged:     C.AssertConverged,
		ConstraintTolerance: C.ConstraintTolerance,
	}
}

//Validate returns an error describing the first invalid setting in C, or nil.
func (C *Config) Validate() error {
	switch C.Model.Engine {
	case EngineHarmonic:
		if C.Model.K <= 0 {
			return fmt.Errorf("model.k must be positive, got %g", C.Model.K)
		}
	case EngineXTB:
	default:
		return fmt.Errorf("unknown model.engine %q", C.Model.Engine)
	}
	if C.Model.Multiplicity < 1 {
		return fmt.Errorf("model.multiplicity must be at least 1, got %d", C.Model.Multiplicity)
	}
	if C.Integrator.Timestep <= 0 {
		return fmt.Errorf("integrator.timestep must be positive, got %g", C.Integrator.Timestep)
	}
	if C.Integrator.FrameInterval < 1 {
		return fmt.Errorf("integrator.frame_interval must be at least 1, got %d", C.Integrator.FrameInterval)
	}
	for _, c := range C.Integrator.Constraints {
		if c != chem.HBondConstraints && c != chem.WaterConstraints {
			return fmt.Errorf("unknown integrator constraint set %q", c)
		}
	}
	if C.Minimize.Steps < 0 || C.Minimize.ForceTolerance <= 0 || C.Minimize.StepSize <= 0 || C.Minimize.ConstraintTolerance < 0 {
		return fmt.Errorf("minimize needs steps >= 0, positive force_tolerance and step_size, and a constraint_tolerance >= 0")
	}
	switch C.Store.Backend {
	case BackendNone, BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("unknown store.backend %q", C.Store.Backend)
	}
	return nil
}
