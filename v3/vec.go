/*
 * vec.go, part of gochemcore.
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

package v3

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//Norm returns the euclidean norm of a 1x3 vector.
func (F *Matrix) Norm() float64 {
	return mat.Norm(F.Dense, 2)
}

//Dot returns the dot product between two 1x3 vectors.
func (F *Matrix) Dot(B *Matrix) float64 {
	var d float64
	for i := 0; i < cols; i++ {
		d += F.At(0, i) * B.At(0, i)
	}
	return d
}

//Sub puts A-B in the receiver. A and B are not modified.
func (F *Matrix) Sub(A, B *Matrix) {
	F.Dense.Sub(A.Dense, B.Dense)
}

//Add puts A+B in the receiver.
func (F *Matrix) Add(A, B *Matrix) {
	F.Dense.Add(A.Dense, B.Dense)
}

//AddVec adds the 1x3 vector v to each vector of A, and puts the result in the receiver.
func (F *Matrix) AddVec(A, v *Matrix) {
	for i := 0; i < A.NVecs(); i++ {
		for j := 0; j < cols; j++ {
			F.Set(i, j, A.At(i, j)+v.At(0, j))
		}
	}
}

//SubVec subtracts the 1x3 vector v from each vector of A, and puts the result in the receiver.
func (F *Matrix) SubVec(A, v *Matrix) {
	for i := 0; i < A.NVecs(); i++ {
		for j := 0; j < cols; j++ {
			F.Set(i, j, A.At(i, j)-v.At(0, j))
		}
	}
}

//Cross puts the cross product of the 1x3 vectors a and b in the receiver.
func (F *Matrix) Cross(a, b *Matrix) {
	a0, a1, a2 := a.At(0, 0), a.At(0, 1), a.At(0, 2)
	b0, b1, b2 := b.At(0, 0), b.At(0, 1), b.At(0, 2)
	F.Set(0, 0, a1*b2-a2*b1)
	F.Set(0, 1, a2*b0-a0*b2)
	F.Set(0, 2, a0*b1-a1*b0)
}

//Unit puts in the receiver the unit vector pointing in the same direction
//as the 1x3 vector A. It panics for a zero vector.
func (F *Matrix) Unit(A *Matrix) {
	n := A.Norm()
	if n == 0 || math.IsNaN(n) {
		panic(ErrZeroVector)
	}
	F.Dense.Scale(1/n, A.Dense)
}
