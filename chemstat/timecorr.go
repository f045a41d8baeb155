/*
 * timecorr.go, part of gochemcore.
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


//Package chemstat computes statistics over trajectories: time correlation functions
//and distributions of per-frame quantities.
package chemstat

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/rmera/gochemcore/traj"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

//Series returns f evaluated on each frame of t.
func Series(t *traj.Trajectory, f func(*traj.Frame) float64) []float64 {
	ret := make([]float64, t.Len())
	for i := range ret {
		ret[i] = f(t.Frame(i))
	}
	return ret
}

//correlate returns the raw correlation sums r[k] = sum_i a[i+k]*b[i] for k in [0, len(a)), computed
//with a zero-padded FFT, so there is no wrap-around.
func correlate(a, b []float64) []float64 {
	n := len(a)
	apad := make([]complex128, 2*n)
	bpad := make([]complex128, 2*n)
	for i := range a {
		apad[i] = complex(a[i], 0)
		bpad[i] = complex(b[i], 0)
	}
	f := fourier.NewCmplxFFT(len(apad))
	f.Coefficients(apad, apad)
	f.Coefficients(bpad, bpad)
	cmplxMulConj(apad, bpad)
	f.Sequence(apad, apad)
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = real(apad[i]) / float64(len(apad)) //the inverse transform is not normalized
	}
	return ret
}

//CrossCorrelation returns the normalized cross-correlation of a and b for lags 0 to len(a)-1:
//C(k) = sum_i (a[i+k]-<a>)(b[i]-<b>) / (N sd(a) sd(b)), with population standard deviations, so the
//autocorrelation at lag 0 is 1.
func CrossCorrelation(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("chemstat: series of different lengths %d, %d", len(a), len(b))
	}
	if len(a) < 2 {
		return nil, fmt.Errorf("chemstat: at least 2 points needed, got %d", len(a))
	}
	amean, avar := stat.PopMeanVariance(a, nil)
	bmean, bvar := stat.PopMeanVariance(b, nil)
	if avar == 0 || bvar == 0 {
		return nil, fmt.Errorf("chemstat: constant series have no correlation")
	}
	ac := make([]float64, len(a))
	bc := make([]float64, len(b))
	for i := range a {
		ac[i] = a[i] - amean
		bc[i] = b[i] - bmean
	}
	ret := correlate(ac, bc)
	norm := math.Sqrt(avar*bvar) * float64(len(a))
	for i := range ret {
		ret[i] /= norm
	}
	return ret, nil
}

//Autocorrelation returns the normalized autocorrelation of a. See CrossCorrelation.
func Autocorrelation(a []float64) ([]float64, error) {
	return CrossCorrelation(a, a)
}

//MomentumAutocorrelation returns the normalized momentum autocorrelation function of t,
//C(k)/C(0), with C(k) the average over time origins of sum_i p_i(t).p_i(t+k). Every frame must have momenta,
//and frames should be equally spaced in time.
func MomentumAutocorrelation(t *traj.Trajectory) ([]float64, error) {
	n := t.Len()
	if n < 2 {
		return nil, fmt.Errorf("chemstat: at least 2 frames needed, got %d", n)
	}
	for i := 0; i < n; i++ {
		if t.Frame(i).Momenta == nil {
			return nil, fmt.Errorf("chemstat: frame %d has no momenta", i)
		}
	}
	total := make([]float64, n)
	comp := make([]float64, n)
	for d := 0; d < 3*t.NAtoms(); d++ {
		for i := range comp {
			comp[i] = t.Frame(i).Momenta[d]
		}
		for k, v := range correlate(comp, comp) {
			total[k] += v
		}
	}
	if total[0] == 0 {
		return nil, fmt.Errorf("chemstat: all momenta are zero")
	}
	c0 := total[0] / float64(n)
	for k := range total {
		total[k] /= float64(n-k) * c0
	}
	return total, nil
}
