/*
 * plotutils.go, part of gochemcore.
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


package chemplot

import (
	"math"

	"github.com/rmera/gochemcore/traj"
	"gonum.org/v1/plot/plotter"
)

//Some internal convenience functions.

//timeVaries returns true if not all frames of t have the same time. Minimizations don't advance
//the time, so their frames are plotted against the step.
func timeVaries(t *traj.Trajectory) bool {
	times := t.Times()
	for _, v := range times[1:] {
		if v != times[0] {
			return true
		}
	}
	return false
}

//energyXYs returns the points (x, energy(frame)) of every frame where energy is known.
func energyXYs(t *traj.Trajectory, byTime bool, energy func(*traj.Frame) float64) plotter.XYs {
	pts := make(plotter.XYs, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		f := t.Frame(i)
		e := energy(f)
		if math.IsNaN(e) || math.IsInf(e, 0) {
			continue
		}
		x := float64(f.Step)
		if byTime {
			x = f.Time
		}
		pts = append(pts, plotter.XY{X: x, Y: e})
	}
	return pts
}

//hasKinetic returns true if any frame has a non-zero kinetic energy.
func hasKinetic(t *traj.Trajectory) bool {
	for i := 0; i < t.Len(); i++ {
		if t.Frame(i).KineticEnergy != 0 {
			return true
		}
	}
	return false
}
