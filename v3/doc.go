/*
 * doc.go, part of gochemcore.
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

/*Package v3 implements a Matrix type representing a row-major 3D matrix (i.e. a Nx3 matrix).
The v3.Matrix is the coordinate store of gochemcore: a molecule keeps one Matrix for
positions and one for momenta, and every atom holds a 1x3 view (VecView) into them, so
writing through an atom's view changes the molecule's buffer and vice versa.

It is based on gonum's Dense type, with some additional restrictions
because of the fixed number of columns.
*/
package v3
