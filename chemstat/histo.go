/*
 * histo.go, part of gochemcore.
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


package chemstat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Histogram is the distribution of a set of values.
type Histogram struct {
	Dividers   []float64 //bin edges, len(Counts)+1 values
	Counts     []float64
	normalized bool
}

//NewHistogram bins data. If dividers is nil, nbins bins of equal width covering all the data are used.
//Values outside the dividers are ignored.
func NewHistogram(data []float64, dividers []float64, nbins int) (*Histogram, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("chemstat: no data to bin")
	}
	if dividers == nil {
		if nbins < 1 {
			return nil, fmt.Errorf("chemstat: %d bins requested", nbins)
		}
		lo, hi := floats.Min(data), floats.Max(data)
		//the last divider must be larger than the maximum
		hi = math.Nextafter(hi, math.Inf(1))
		if hi-lo < 1e-12 {
			hi = lo + 1
		}
		dividers = make([]float64, nbins+1)
		floats.Span(dividers, lo, hi)
	}
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		return nil, fmt.Errorf("chemstat: dividers must be at least 2 and sorted")
	}
	sorted := make([]float64, 0, len(data))
	for _, v := range data {
		if v >= dividers[0] && v < dividers[len(dividers)-1] {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)
	H := &Histogram{Dividers: append([]float64(nil), dividers...)}
	H.Counts = stat.Histogram(nil, H.Dividers, sorted, nil)
	return H, nil
}

//Normalized returns true if the histogram is normalized.
func (H *Histogram) Normalized() bool {
	return H.normalized
}

//Normalize scales the counts so they add up to 1. It does nothing on an empty or already
//normalized histogram.
func (H *Histogram) Normalize() {
	s := floats.Sum(H.Counts)
	if H.normalized || s == 0 {
		return
	}
	floats.Scale(1/s, H.Counts)
	H.normalized = true
}

//Centers returns the center of each bin.
func (H *Histogram) Centers() []float64 {
	ret := make([]float64, len(H.Counts))
	for i := range ret {
		ret[i] = (H.Dividers[i] + H.Dividers[i+1]) / 2
	}
	return ret
}
