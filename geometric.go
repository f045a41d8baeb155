/*
 * geometric.go, part of gochemcore.
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
	"fmt"
	"math"

	v3 "github.com/rmera/gochemcore/v3"
)

const appzero float64 = 0.0000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//AngleVec takes 2 vectors and calculate the angle in radians between them
//It does not check for correctness or return errors!
func AngleVec(v1, v2 *v3.Matrix) float64 {
	normproduct := v1.Norm() * v2.Norm()
	dotprod := v1.Dot(v2)
	argument := dotprod / normproduct
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero {
		argument = 1
	} else if math.Abs(argument+1) <= appzero {
		argument = -1
	}
	angle := math.Acos(argument)
	if math.Abs(angle) <= appzero {
		return 0.00
	}
	return angle
}

//DihedralVec calculate the dihedral between the points a, b, c, d, where the first plane
//is defined by abc and the second by bcd. The result is in radians, in [-pi,pi].
func DihedralVec(a, b, c, d *v3.Matrix) float64 {
	all := []*v3.Matrix{a, b, c, d}
	for number, point := range all {
		if point == nil {
			panic(fmt.Sprintf("Vector %d is nil", number))
		}
		pr, pc := point.Dims()
		if pr != 1 || pc != 3 {
			panic(fmt.Sprintf("Vector %d has invalid shape", number))
		}
	}
	//bma=b minus a
	bma := v3.Zeros(1)
	cmb := v3.Zeros(1)
	dmc := v3.Zeros(1)
	bmascaled := v3.Zeros(1)
	bma.Sub(b, a)
	cmb.Sub(c, b)
	dmc.Sub(d, c)
	bmascaled.Scale(cmb.Norm(), bma)
	v1 := v3.Zeros(1)
	v2 := v3.Zeros(1)
	v1.Cross(bma, cmb)
	v2.Cross(cmb, dmc)
	first := bmascaled.Dot(v2)
	second := v1.Dot(v2)
	return math.Atan2(first, second)
}

//Distance returns the distance between two atoms, in Angstrom.
func Distance(a, b *Atom) float64 {
	t := v3.Zeros(1)
	t.Sub(a.pos, b.pos)
	return t.Norm()
}

//Angle returns the a-b-c angle in radians.
func Angle(a, b, c *Atom) float64 {
	v1 := v3.Zeros(1)
	v2 := v3.Zeros(1)
	v1.Sub(a.pos, b.pos)
	v2.Sub(c.pos, b.pos)
	return AngleVec(v1, v2)
}

//Dihedral returns the a-b-c-d dihedral angle in radians.
func Dihedral(a, b, c, d *Atom) float64 {
	return DihedralVec(a.pos, b.pos, c.pos, d.pos)
}

//wrapAngle returns x shifted by multiples of 2pi into [-pi,pi].
func wrapAngle(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}
