/*
 * loader.go, part of gochemcore.
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
	"strings"

	chem "github.com/rmera/gochemcore"
	"github.com/spf13/viper"
)

//envPrefix is the prefix of every environment variable read. Nested keys
//map to GOCHEM_SECTION_FIELD, e.g. GOCHEM_MODEL_ENGINE.
const envPrefix = "GOCHEM"

//setDefaults registers every key, so environment variables can override keys not in the file.
func setDefaults(v *viper.Viper) {
	m := chem.DefaultMinimizeOptions()
	defaults := map[string]interface{}{
		"model.engine":                  EngineHarmonic,
		"model.theory":                  "",
		"model.basis":                   "",
		"model.functional":              "",
		"model.multiplicity":            1,
		"model.scf_cycles":              0,
		"model.solvent":                 "",
		"model.command":                 "xtb",
		"model.ncpu":                    0,
		"model.workdir":                 "",
		"model.keep":                    false,
		"model.k":                       20.0,
		"integrator.timestep":           1.0,
		"integrator.frame_interval":     10,
		"integrator.remove_translation": true,
		"integrator.remove_rotation":    false,
		"integrator.constraints":        []string{},
		"minimize.steps":                m.Steps,
		"minimize.frame_interval":       m.FrameInterval,
		"minimize.force_tolerance":      m.ForceTolerance,
		"minimize.step_size":            m.StepSize,
		"minimize.assert_converged":     false,
		"minimize.constraint_tolerance": m.ConstraintTolerance,
		"store.backend":                 BackendNone,
		"store.path":                    "",
		"store.namespace":               "",
		"log.level":                     "info",
		"log.development":               false,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	//no default: unset means the molecule's charge.
	v.BindEnv("model.charge")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

//Load reads the YAML file at path and applies the GOCHEM_ environment overrides and
//the defaults. An empty path means environment and defaults only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}
	return unmarshalAndValidate(v)
}

//Parse is like Load, but reads the YAML from data.
func Parse(data string) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(strings.NewReader(data)); err != nil {
		return nil, fmt.Errorf("config: failed to parse configuration: %w", err)
	}
	return unmarshalAndValidate(v)
}

//Default returns the configuration with only defaults and environment overrides.
func Default() (*Config, error) {
	return Load("")
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	cfg.Model.Engine = strings.ToLower(cfg.Model.Engine)
	cfg.Store.Backend = strings.ToLower(cfg.Store.Backend)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
