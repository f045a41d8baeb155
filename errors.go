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

package chem

import (
	"errors"
	"fmt"
	"strings"
)

//Kinds of CError. Use errors.Is to check for them.
var (
	ErrDuplicateAtom         = errors.New("duplicate atom")
	ErrInconsistentBondOrder = errors.New("inconsistent bond order")
	ErrForeignAtom           = errors.New("atom does not belong to this molecule")
	ErrOwnershipViolation    = errors.New("object already belongs to a molecule")
	ErrDuplicateChain        = errors.New("duplicate chain name")
	ErrTopologyInvariant     = errors.New("topology invariant violated")
	ErrGeometryMismatch      = errors.New("geometry mismatch")
	ErrNoEnergyModel         = errors.New("no energy model set")
	ErrNoIntegrator          = errors.New("no integrator set")
	ErrBondOrder             = errors.New("invalid bond")
	ErrNoAtoms               = errors.New("no atoms given")
	ErrShape                 = errors.New("wrong number of values")
)

//CError is the error type of the chem package. Structural errors are critical: the operation
//that returned them was aborted without changing the molecule.
type CError struct {
	msg      string
	deco     []string
	critical bool
	kind     error
}

func newCError(kind error, caller string, format string, args ...interface{}) *CError {
	return &CError{msg: fmt.Sprintf(format, args...), deco: []string{caller}, critical: true, kind: kind}
}

//Error returns a string with an error message.
func (err *CError) Error() string {
	if err.kind == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.kind, err.msg)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored
func (err *CError) Critical() bool { return err.critical }

func (err *CError) Unwrap() error { return err.kind }

//NotCalculatedError is returned when a property is requested that has not been computed
//at the current geometry. It is never critical: calculate the property and ask again.
type NotCalculatedError struct {
	Property Property
	deco     []string
}

func (err *NotCalculatedError) Error() string {
	return fmt.Sprintf("%s not calculated at the current geometry, use Molecule.CalcProperty(ctx, chem.%s) first", err.Property, err.Property.GoName())
}

func (err *NotCalculatedError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *NotCalculatedError) Critical() bool { return false }

//ConvergenceError is returned when an iterative procedure (SCF, geometry optimization) fails to
//converge. History holds one entry per attempt or step, oldest first.
type ConvergenceError struct {
	Msg     string
	History []string
	deco    []string
}

//NewConvergenceError returns a ConvergenceError with the given message and attempt history.
func NewConvergenceError(msg string, history []string) *ConvergenceError {
	h := make([]string, len(history))
	copy(h, history)
	return &ConvergenceError{Msg: msg, History: h}
}

func (err *ConvergenceError) Error() string {
	if len(err.History) == 0 {
		return "not converged: " + err.Msg
	}
	return fmt.Sprintf("not converged: %s (attempts: %s)", err.Msg, strings.Join(err.History, "; "))
}

func (err *ConvergenceError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *ConvergenceError) Critical() bool { return true }

//errDecorate decorates err with caller if err is a chem.Error, and returns it.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var err2 Error
	if errors.As(err, &err2) {
		err2.Decorate(caller)
	}
	return err
}
