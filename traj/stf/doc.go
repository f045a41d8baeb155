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

/*Package stf implements the simple trajectory format, used to save the trajectories produced by
minimizations and integrators (package traj). stf files are compressed plain text, easy to read
and write from other programs.


An STF file is compressed with z-standard (zstd). Files whose name ends in 'z' (i.e. stz) are
gzip-compressed instead, and files whose name ends in 'r' are deflate-compressed.

The file starts with a header of key=value lines, sorted by key, ending with a line with the
characters "**", one or more spaces, and the number of atoms per frame. The header always
includes the precision, "prec", as a positive integer. If the header has momenta=true, each
frame also includes the momenta, with precision "mprec". The trajectory name goes with the
key "name".

After the header, each frame has one line per atom with the x, y and z positions in Angstrom,
multiplied by 10^prec and rounded to an integer. If momenta are stored, a second block of one line
per atom follows, with the momenta in amu*Angstrom/fs, multiplied by 10^mprec and rounded.

Each frame ends with a line starting with the character "*", followed by space-separated
key=value fields: step, time (fs), epot and ekin (eV). An unknown potential energy is written as NaN.
Readers ignore fields without a "=", which older files used for box vectors.
*/
package stf
