/*
 * dynamics.go, part of gochemcore.
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

import "github.com/rmera/gochemcore/units"

//DynamicDOF returns the number of degrees of freedom available for dynamics. Unless it was set
//with SetDynamicDOF, it is the number of dimensions minus, in this order:
//3 if the integrator removes translation, 2 if it removes rotation and the molecule has more than
//2 atoms, 1 per hydrogen atom if hydrogen bonds are constrained, 7 (hbonds constrained) or 9 (not)
//per water residue if waters are rigid, and the degrees of freedom each constraint removes.
func (M *Molecule) DynamicDOF() int {
	if M.dof != nil {
		return *M.dof
	}
	df := M.NDims()
	if M.integrator != nil {
		p := M.integrator.Params()
		if p.RemoveTranslation {
			df -= 3
		}
		if p.RemoveRotation {
			if len(M.atoms) > 2 {
				df -= 2
			}
		}
		hbonds := p.HasConstraint(HBondConstraints)
		if hbonds {
			for _, at := range M.atoms {
				if at.AtNum == 1 {
					df--
				}
			}
		}
		if p.HasConstraint(WaterConstraints) {
			for _, r := range M.residues {
				if r.Type != Water {
					continue
				}
				if hbonds {
					df -= 7
				} else {
					df -= 9
				}
			}
		}
	}
	for _, c := range M.constraints {
		df -= c.DOF()
	}
	return df
}

//SetDynamicDOF overrides the computed number of degrees of freedom. The override is dropped
//when atoms are added.
func (M *Molecule) SetDynamicDOF(dof int) {
	M.dof = &dof
}

//ResetDynamicDOF drops an override set with SetDynamicDOF.
func (M *Molecule) ResetDynamicDOF() {
	M.dof = nil
}

//KineticEnergy returns the classical kinetic energy, sum(p^2/2m), in eV.
func (M *Molecule) KineticEnergy() units.Scalar {
	p := M.momenta.Flat()
	var e float64
	for i, v := range p {
		if M.masses[i] == 0 {
			continue //unknown element
		}
		e += v * v / M.masses[i]
	}
	return units.S(0.5*e*units.AMUAng2Fs2InEV, units.EV)
}

//KineticTemperature returns 2E/(k_B f), with E the kinetic energy and f DynamicDOF.
//It fails if the molecule has no dynamic degrees of freedom.
func (M *Molecule) KineticTemperature() (units.Scalar, error) {
	f := M.DynamicDOF()
	if f <= 0 {
		return units.Scalar{}, newCError(ErrShape, "Molecule.KineticTemperature", "the molecule has %d degrees of freedom", f)
	}
	return units.S(2*M.KineticEnergy().Value/(units.Boltzmann*float64(f)), units.Kelvin), nil
}
