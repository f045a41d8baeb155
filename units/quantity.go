/*
 * quantity.go, part of gochemcore.
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

package units

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

//Scalar is a single unit-tagged value.
type Scalar struct {
	Value float64
	U     Unit
}

//S is a shorthand for building a Scalar.
func S(v float64, u Unit) Scalar {
	return Scalar{Value: v, U: u}
}

//Unit returns the unit of the scalar.
func (s Scalar) Unit() Unit { return s.U }

//In returns the scalar expressed in u.
func (s Scalar) In(u Unit) (Scalar, error) {
	v, err := Convert(s.Value, s.U, u)
	if err != nil {
		return Scalar{}, err
	}
	return Scalar{v, u}, nil
}

//Defunits returns the scalar in the default unit of its dimension.
func (s Scalar) Defunits() (Scalar, error) {
	d, ok := s.U.Dim()
	if !ok {
		return Scalar{}, fmt.Errorf("units: unknown unit %q", s.U)
	}
	return s.In(Default(d))
}

func (s Scalar) String() string {
	if s.U == Dimensionless {
		return fmt.Sprintf("%g", s.Value)
	}
	return fmt.Sprintf("%g %s", s.Value, s.U)
}

//Vector is a flat slice of values sharing one unit. Per-atom 3D
//quantities (forces, positions) are stored as x1,y1,z1,x2...
type Vector struct {
	Values []float64
	U      Unit
}

//V is a shorthand for building a Vector. The values are not copied.
func V(v []float64, u Unit) Vector {
	return Vector{Values: v, U: u}
}

//Unit returns the unit of the vector.
func (v Vector) Unit() Unit { return v.U }

//Len returns the number of components.
func (v Vector) Len() int { return len(v.Values) }

//Copy returns a deep copy of the vector.
func (v Vector) Copy() Vector {
	c := make([]float64, len(v.Values))
	copy(c, v.Values)
	return Vector{c, v.U}
}

//In returns a copy of the vector expressed in u.
func (v Vector) In(u Unit) (Vector, error) {
	f, err := Factor(v.U, u)
	if err != nil {
		return Vector{}, err
	}
	c := v.Copy()
	floats.Scale(f, c.Values)
	c.U = u
	return c, nil
}

//Defunits returns a copy of the vector in the default unit of its dimension.
func (v Vector) Defunits() (Vector, error) {
	d, ok := v.U.Dim()
	if !ok {
		return Vector{}, fmt.Errorf("units: unknown unit %q", v.U)
	}
	return v.In(Default(d))
}

//MaxAbs returns the largest absolute component, or 0 for an empty vector.
func (v Vector) MaxAbs() float64 {
	m := 0.0
	for _, x := range v.Values {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func (v Vector) String() string {
	return fmt.Sprintf("%v %s", v.Values, v.U)
}
