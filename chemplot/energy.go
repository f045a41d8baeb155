/*
 * energy.go, part of gochemcore.
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


//Package chemplot produces plots of the energies along minimizations and dynamics runs.
package chemplot

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"github.com/rmera/gochemcore/traj"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Size of the saved plots
const (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

var (
	potentialColor = color.RGBA{R: 200, A: 255}
	kineticColor   = color.RGBA{B: 200, A: 255}
	totalColor     = color.RGBA{A: 255}
)

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	l.Color = c
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(l, s)
	p.Legend.Add(name, l)
	return nil
}

//NewEnergyPlot builds a plot of the potential energy of each frame of t against time, or against the step
//if the time doesn't change along the trajectory (as in minimizations). If the frames have kinetic energies,
//the kinetic and total energies are also plotted. Frames with unknown potential energy are skipped.
func NewEnergyPlot(t *traj.Trajectory, title string) (*plot.Plot, error) {
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("chemplot: NewEnergyPlot: empty trajectory")
	}
	byTime := timeVaries(t)
	pot := energyXYs(t, byTime, func(f *traj.Frame) float64 { return f.PotentialEnergy })
	if len(pot) == 0 {
		return nil, fmt.Errorf("chemplot: NewEnergyPlot: no frame in %s has a potential energy", t.Name)
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	if title == "" {
		p.Title.Text = t.Name
	}
	p.X.Label.Text = "Step"
	if byTime {
		p.X.Label.Text = "Time (fs)"
	}
	p.Y.Label.Text = "Energy (eV)"
	p.Add(plotter.NewGrid())
	if err := addLine(p, "potential", pot, potentialColor); err != nil {
		return nil, err
	}
	if hasKinetic(t) {
		kin := energyXYs(t, byTime, func(f *traj.Frame) float64 { return f.KineticEnergy })
		tot := energyXYs(t, byTime, func(f *traj.Frame) float64 { return f.PotentialEnergy + f.KineticEnergy })
		if err := addLine(p, "kinetic", kin, kineticColor); err != nil {
			return nil, err
		}
		if err := addLine(p, "total", tot, totalColor); err != nil {
			return nil, err
		}
	}
	p.Legend.Top = true
	return p, nil
}

//EnergyPlotTo writes the energy plot of t to w, in the given format ("png", "svg", "pdf"...).
func EnergyPlotTo(w io.Writer, t *traj.Trajectory, title, format string) error {
	p, err := NewEnergyPlot(t, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

//EnergyPlot saves the energy plot of t to filename. The format is taken from the extension,
//a ".png" is added if there is none.
func EnergyPlot(t *traj.Trajectory, title, filename string) error {
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	p, err := NewEnergyPlot(t, title)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, filename); err != nil {
		return fmt.Errorf("chemplot: saving %s: %w", filename, err)
	}
	return nil
}
