/*
 * v3_test.go, part of gochemcore.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewSharesStorage(Te *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	require.NoError(Te, err)
	assert.Equal(Te, 3, A.NVecs())
	view := A.VecView(1)
	view.Set(0, 0, 100)
	assert.Equal(Te, 100.0, A.At(1, 0))
	assert.Equal(Te, 100.0, a[3])
	A.Set(1, 2, -1)
	assert.Equal(Te, -1.0, view.At(0, 2))
	assert.Equal(Te, a, A.Flat())
	_, err = NewMatrix([]float64{1, 2})
	assert.Error(Te, err)
}

func TestSomeVecs(Te *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	require.NoError(Te, err)
	B := Zeros(3)
	B.SomeVecs(A, []int{1, 3, 5})
	assert.Equal(Te, []float64{4, 5, 6, 10, 11, 12, 16, 17, 18}, B.Flat())
	B.Scale(0, B.Dense)
	A.SetVecs(B, []int{0})
	assert.Equal(Te, 0.0, A.At(0, 1))
	A.SwapVecs(1, 2)
	assert.Equal(Te, 7.0, A.At(1, 0))
	assert.Panics(Te, func() { A.SwapVecs(0, 10) })
}

func TestVectorOps(Te *testing.T) {
	x, _ := NewMatrix([]float64{1, 0, 0})
	y, _ := NewMatrix([]float64{0, 2, 0})
	z := Zeros(1)
	z.Cross(x, y)
	assert.Equal(Te, []float64{0, 0, 2}, z.Flat())
	assert.Equal(Te, 0.0, x.Dot(y))
	u := Zeros(1)
	u.Unit(y)
	assert.InDelta(Te, 1.0, u.Norm(), 1e-12)
	d := Zeros(1)
	d.Sub(y, x)
	assert.Equal(Te, []float64{-1, 2, 0}, d.Flat())
	assert.Panics(Te, func() { u.Unit(Zeros(1)) })
	c := x.Clone()
	c.Set(0, 0, 5)
	assert.Equal(Te, 1.0, x.At(0, 0))
}
