/*
 * units.go, part of gochemcore.
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
 */

//Package units tags numerical values with physical units. Everything in gochemcore is
//stored in the default unit system (Angstrom, eV, fs, amu, K, elementary charges), and
//values coming from calculation engines are converted into it with In.
package units

import (
	"fmt"
	"math"
)

//Unit is the name of a physical unit.
type Unit string

//Dimension is the physical dimension of a unit.
type Dimension int

const (
	None Dimension = iota
	Length
	Energy
	Time
	Mass
	Force
	Momentum
	Charge
	Temperature
	DipoleMoment
	Angle
)

const (
	Dimensionless Unit = ""
	Angstrom      Unit = "angstrom"
	Bohr          Unit = "bohr"
	Nanometer     Unit = "nm"

	EV         Unit = "eV"
	Hartree    Unit = "hartree"
	KcalPerMol Unit = "kcal/mol"
	KJPerMol   Unit = "kJ/mol"

	Femtosecond Unit = "fs"
	Picosecond  Unit = "ps"

	AMU Unit = "amu"

	EVPerAngstrom  Unit = "eV/angstrom"
	HartreePerBohr Unit = "hartree/bohr"
	KcalPerMolAng  Unit = "kcal/mol/angstrom"

	AMUAngstromPerFs Unit = "amu*angstrom/fs"

	ElementaryCharge Unit = "e"

	Kelvin Unit = "K"

	EAngstrom Unit = "e*angstrom"
	Debye     Unit = "debye"

	Radian Unit = "rad"
	Degree Unit = "deg"
)

//Conversion factors and constants, in the default unit system.
const (
	BohrInAngstrom = 0.529177210903
	HartreeInEV    = 27.211386245988
	KcalMolInEV    = 0.0433641043
	KJMolInEV      = 0.0103642697
	DebyeInEAng    = 0.20819434
	//AMUAng2Fs2InEV is one amu*angstrom^2/fs^2 expressed in eV.
	AMUAng2Fs2InEV = 103.642696
	//Boltzmann is k_B in eV/K
	Boltzmann = 8.617333262e-5
)

type unitInfo struct {
	dim    Dimension
	factor float64 //multiply by this to get the default unit of the dimension
}

var table = map[Unit]unitInfo{
	Dimensionless:    {None, 1},
	Angstrom:         {Length, 1},
	Bohr:             {Length, BohrInAngstrom},
	Nanometer:        {Length, 10},
	EV:               {Energy, 1},
	Hartree:          {Energy, HartreeInEV},
	KcalPerMol:       {Energy, KcalMolInEV},
	KJPerMol:         {Energy, KJMolInEV},
	Femtosecond:      {Time, 1},
	Picosecond:       {Time, 1000},
	AMU:              {Mass, 1},
	EVPerAngstrom:    {Force, 1},
	HartreePerBohr:   {Force, HartreeInEV / BohrInAngstrom},
	KcalPerMolAng:    {Force, KcalMolInEV},
	AMUAngstromPerFs: {Momentum, 1},
	ElementaryCharge: {Charge, 1},
	Kelvin:           {Temperature, 1},
	EAngstrom:        {DipoleMoment, 1},
	Debye:            {DipoleMoment, DebyeInEAng},
	Radian:           {Angle, 1},
	Degree:           {Angle, math.Pi / 180},
}

//Default returns the default unit for the dimension d.
func Default(d Dimension) Unit {
	switch d {
	case Length:
		return Angstrom
	case Energy:
		return EV
	case Time:
		return Femtosecond
	case Mass:
		return AMU
	case Force:
		return EVPerAngstrom
	case Momentum:
		return AMUAngstromPerFs
	case Charge:
		return ElementaryCharge
	case Temperature:
		return Kelvin
	case DipoleMoment:
		return EAngstrom
	case Angle:
		return Radian
	}
	return Dimensionless
}

//Dim returns the dimension of the unit, and false if the unit is not known.
func (u Unit) Dim() (Dimension, bool) {
	i, ok := table[u]
	return i.dim, ok
}

//Factor returns the number by which a value in from must be multiplied to
//express it in to. It fails if either unit is unknown or if their dimensions differ.
func Factor(from, to Unit) (float64, error) {
	f, ok := table[from]
	if !ok {
		return 0, fmt.Errorf("units: unknown unit %q", from)
	}
	t, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("units: unknown unit %q", to)
	}
	if f.dim != t.dim {
		return 0, fmt.Errorf("units: can't convert %q into %q", from, to)
	}
	return f.factor / t.factor, nil
}

//Convert expresses v, given in from, in the unit to.
func Convert(v float64, from, to Unit) (float64, error) {
	f, err := Factor(from, to)
	if err != nil {
		return 0, err
	}
	return v * f, nil
}
