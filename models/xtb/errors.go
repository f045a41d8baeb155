/*
 * errors.go, part of gochemcore.
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


package xtb

import "fmt"

//Error is the error type for the xtb package.
type Error struct {
	message    string //One of the messages defined below
	inputname  string
	additional string
	deco       []string
	critical   bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	if err.additional == "" {
		return fmt.Sprintf("xtb: %s (job %s)", err.message, err.inputname)
	}
	return fmt.Sprintf("xtb: %s (job %s): %s", err.message, err.inputname, err.additional)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//Message returns the bare error message, one of the Err constants.
func (err Error) Message() string { return err.message }

const (
	ErrNoMolecule  = "The model is not bound to a molecule"
	ErrUnsupported = "Property not supported"
	ErrSolvent     = "Solvent not supported"
	ErrCantInput   = "Can't build input file"
	ErrNotRunning  = "Calculation is not running"
	ErrNoOutput    = "Can't open output file"
	ErrAbnormal    = "Calculation didn't end normally"
	ErrSCF         = "SCF didn't converge"
	ErrNoEnergy    = "Can't obtain energy"
	ErrNoGradient  = "Can't obtain gradient"
)
