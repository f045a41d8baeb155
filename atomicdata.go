/*
 * atomicdata.go, part of gochemcore.
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

import "strings"

type element struct {
	atnum    int
	mass     float64 //amu
	covrad   float64 //Angstrom
	vdwrad   float64 //Angstrom
	maxbonds int     //0 means "don't check"
}

//Masses are IUPAC standard atomic weights.
//Covalent radii from Cordero et al., 2008 (DOI:10.1039/B801115J).
//van der Waals radii from 10.1021/j100785a001 and 10.1021/jp8111556,
//metal radii from 10.1023/A:1011625728803
var elements = map[string]element{
	"H":  {1, 1.008, 0.4, 1.10, 1}, //covalent radius is 0.31, but a longer one only adds bonds that get pruned by maxbonds.
	"He": {2, 4.0026, 0.28, 1.40, 0},
	"Li": {3, 6.94, 1.28, 1.82, 0},
	"Be": {4, 9.0122, 0.96, 1.53, 0},
	"B":  {5, 10.81, 0.84, 1.92, 0},
	"C":  {6, 12.011, 0.76, 1.70, 4}, //sp3 radius
	"N":  {7, 14.007, 0.71, 1.55, 0},
	"O":  {8, 15.999, 0.66, 1.52, 2},
	"F":  {9, 18.998, 0.57, 1.47, 1},
	"Ne": {10, 20.180, 0.58, 1.54, 0},
	"Na": {11, 22.990, 1.66, 2.27, 0},
	"Mg": {12, 24.305, 1.41, 1.73, 0},
	"Al": {13, 26.982, 1.21, 1.84, 0},
	"Si": {14, 28.085, 1.11, 2.10, 0},
	"P":  {15, 30.974, 1.07, 1.80, 0},
	"S":  {16, 32.06, 1.05, 1.80, 0},
	"Cl": {17, 35.45, 1.02, 1.75, 1},
	"Ar": {18, 39.948, 1.06, 1.88, 0},
	"K":  {19, 39.098, 2.03, 2.75, 0},
	"Ca": {20, 40.078, 1.76, 2.31, 0},
	"Cr": {24, 51.996, 1.39, 1.97, 0},
	"Mn": {25, 54.938, 1.61, 1.96, 0}, //hs
	"Fe": {26, 55.845, 1.52, 1.96, 0}, //hs
	"Co": {27, 58.933, 1.50, 1.95, 0}, //hs
	"Ni": {28, 58.693, 1.24, 1.63, 0},
	"Cu": {29, 63.546, 1.32, 2.00, 0},
	"Zn": {30, 65.38, 1.22, 2.02, 0},
	"Se": {34, 78.971, 1.20, 1.90, 0},
	"Br": {35, 79.904, 1.20, 1.83, 1},
	"Kr": {36, 83.798, 1.16, 2.02, 0},
	"I":  {53, 126.90, 1.39, 1.98, 1},
	"Xe": {54, 131.29, 1.40, 2.16, 0},
}

//normalizeSymbol turns "CL", "cl" or " Cl" into "Cl".
func normalizeSymbol(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

//ElementData returns the atomic number and the standard mass (amu) of the element with the
//given symbol, and false if the element is not known.
func ElementData(symbol string) (atnum int, mass float64, ok bool) {
	e, ok := elements[normalizeSymbol(symbol)]
	return e.atnum, e.mass, ok
}

//CovalentRadius returns the covalent radius, in Angstrom, of the element with the given
//symbol, or 0 if it is not known.
func CovalentRadius(symbol string) float64 {
	return elements[normalizeSymbol(symbol)].covrad
}

//VdwRadius returns the van der Waals radius, in Angstrom, of the element, or 0 if unknown.
func VdwRadius(symbol string) float64 {
	return elements[normalizeSymbol(symbol)].vdwrad
}
