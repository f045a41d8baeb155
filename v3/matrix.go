/*
 * matrix.go, part of gochemcore.
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
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const cols int = 3

//Matrix is a set of vectors in 3D space.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space.
type Matrix struct {
	*mat.Dense
}

//Dense2Matrix wraps a Nx3 gonum Dense. It panics if A doesn't have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != cols {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

//NewMatrix returns a Matrix with 3 columns using data as backing storage.
//The slice is not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	l := len(data)
	if l == 0 || l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(l/cols, cols, data)}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	if vecs <= 0 {
		panic(ErrShape)
	}
	return &Matrix{mat.NewDense(vecs, cols, make([]float64, cols*vecs))}
}

//NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != cols {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//VecView returns a view of the ith vector of the matrix. Changes in the view
//are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	return &Matrix{F.Dense.Slice(i, i+1, 0, cols).(*mat.Dense)}
}

//View returns a view of F starting from the vector i and spanning n vectors.
func (F *Matrix) View(i, n int) *Matrix {
	return &Matrix{F.Dense.Slice(i, i+n, 0, cols).(*mat.Dense)}
}

//Flat returns the backing slice of F, x1,y1,z1,x2... It panics if F is a
//view whose rows are not contiguous in memory.
func (F *Matrix) Flat() []float64 {
	raw := F.RawMatrix()
	if raw.Stride != cols {
		panic(ErrNotContiguous)
	}
	return raw.Data[:raw.Rows*cols]
}

//Clone returns a deep copy of F.
func (F *Matrix) Clone() *Matrix {
	r := Zeros(F.NVecs())
	r.Copy(F.Dense)
	return r
}

//SetVecs sets the vectors with index n = each value of clist, in the receiver, to the
//n vector of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	ar, _ := A.Dims()
	fr := F.NVecs()
	if ar < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val >= fr {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < cols; j++ {
			F.Set(val, j, A.At(key, j))
		}
	}
}

//SomeVecs puts in the receiver the vectors of A with indexes in clist, in the
//same order as the clist.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	ar := A.NVecs()
	for key, val := range clist {
		if val >= ar {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < cols; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

//SwapVecs swaps the vectors i and j of F.
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	for k := 0; k < cols; k++ {
		t := F.At(i, k)
		F.Set(i, k, F.At(j, k))
		F.Set(j, k, t)
	}
}

//String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r := F.NVecs()
	v := make([]string, 0, r+2)
	v = append(v, "[")
	for i := 0; i < r; i++ {
		v = append(v, fmt.Sprintf(" %6.2f %6.2f %6.2f", F.At(i, 0), F.At(i, 1), F.At(i, 2)))
	}
	v = append(v, " ]")
	return strings.Join(v, "\n")
}

//Errors

//Error is the error type of the v3 package. It has the same
//methods as chem.Error, but is defined here to avoid a circular import.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
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

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("v3: A Matrix should have 3 columns")
	ErrShape           = PanicMsg("v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("v3: index out of range")
	ErrNotContiguous   = PanicMsg("v3: the matrix rows are not contiguous in memory")
	ErrZeroVector      = PanicMsg("v3: can't normalize a zero vector")
)
