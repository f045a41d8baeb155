/*
 * xtb.go, part of gochemcore.
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

//In order to use this package you need the xtb program, which must be obtained from Prof. Stefan Grimme's group.
//Please cite the the xtb references if you used the program.

//Package xtb binds the xtb semiempirical program to chem molecules as an energy model.
package xtb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	chem "github.com/rmera/gochemcore"
	"github.com/rmera/gochemcore/units"
	"go.uber.org/zap"
)

const inputname = "gochem"

//Options for the xtb model. Note that the default methods vary with each version of the program,
//and are NOT considered part of the API, so they can always change.
type Options struct {
	Command string //xtb executable
	NCPU    int
	WorkDir string //parent directory for the job directories. Empty means os.TempDir()
	Keep    bool   //don't delete the job directories
}

//DefaultOptions returns the options New uses when given nil.
func DefaultOptions() *Options {
	cpu := runtime.NumCPU() / 2
	if cpu < 1 {
		cpu = 1
	}
	return &Options{Command: "xtb", NCPU: cpu}
}

//stage is one attempt of the SCF retry ladder.
type stage struct {
	name       string
	etemp      float64 //electronic temperature (K), 0 for the program's default
	damping    float64 //Broyden damping, 0 for the default
	iterFactor float64 //multiplies the SCF cycle limit, 0 means 1
	fresh      bool    //discard the restart file of previous attempts
}

//ladder is tried in order until one stage converges.
var ladder = []stage{
	{name: "defaults"},
	{name: "fresh guess, electronic temperature 1000 K", etemp: 1000, fresh: true},
	{name: "damped, half the iterations", etemp: 1000, damping: 0.05, iterFactor: 0.5, fresh: true},
	{name: "undamped restart, twice the iterations", iterFactor: 2},
}

//defaultSCFCycles is the xtb default limit.
const defaultSCFCycles = 250

//Model runs xtb single points for a molecule.
type Model struct {
	opts     *Options
	params   chem.ModelParams
	mol      *chem.Molecule
	prepared bool
	symbols  []string
	control  string //contents of the xcontrol file
	args     []string
	run      func(ctx context.Context, dir string, args []string) error
}

//New returns an xtb model. The GFN2 Hamiltonian is used unless params.Theory is gfn0, gfn1 or gfnff.
//params may be nil. The model takes the molecule's charge.
func New(params *chem.ModelParams, o *Options) *Model {
	if o == nil {
		o = DefaultOptions()
	}
	m := &Model{opts: o}
	if params != nil {
		m.params = *params
	}
	m.params.ChargeOption = true
	if m.params.Multiplicity == 0 {
		m.params.Multiplicity = 1
	}
	m.run = m.execute
	return m
}

func (m *Model) DefaultProperties() []chem.Property {
	return []chem.Property{chem.PotentialEnergy}
}

func (m *Model) Params() *chem.ModelParams { return &m.params }

func (m *Model) Prepared() bool { return m.prepared }

func (m *Model) SetPrepared(p bool) { m.prepared = p }

func (m *Model) SetMolecule(M *chem.Molecule) { m.mol = M }

//method returns the xtb Hamiltonian to use.
func (m *Model) method() string {
	switch t := strings.ToLower(m.params.Theory); t {
	case "gfn0", "gfn1", "gfn2", "gfnff":
		return t
	}
	return "gfn2"
}

//prepare builds the parts of the input that depend only on the structure: the element list,
//the command line, and the xcontrol blocks for the molecule's constraints.
func (m *Model) prepare() error {
	if m.mol == nil {
		return Error{ErrNoMolecule, inputname, "", []string{"prepare"}, true}
	}
	ats := m.mol.Atoms()
	m.symbols = make([]string, len(ats))
	for i, at := range ats {
		m.symbols[i] = at.Symbol
	}
	charge := m.mol.Charge()
	if m.params.Charge != nil {
		charge = *m.params.Charge
	}
	method := m.method()
	m.args = []string{inputname + ".xyz", "--input", inputname + ".inp",
		"--chrg", strconv.Itoa(charge), "--uhf", strconv.Itoa(m.params.Multiplicity - 1)}
	if method == "gfnff" {
		m.args = append(m.args, "--gfnff")
	} else {
		m.args = append(m.args, "--gfn", strings.TrimPrefix(method, "gfn"))
	}
	if m.opts.NCPU > 1 {
		m.args = append(m.args, "-P", strconv.Itoa(m.opts.NCPU))
	}
	if s := strings.ToLower(m.params.Solvent); s != "" {
		if !solvents[s] {
			return Error{ErrSolvent, inputname, s, []string{"prepare"}, true}
		}
		if method != "gfn0" { //as of the current version, gfn0 doesn't support implicit solvation
			m.args = append(m.args, "--alpb", s)
		}
	}
	m.control = constraintBlocks(m.mol)
	m.prepared = true
	return nil
}

//constraintBlocks returns the $fix and $constrain xcontrol blocks for the molecule's constraints.
//xtb indexes are 1-based, and angles are in degrees.
func constraintBlocks(M *chem.Molecule) string {
	var fixed []string
	var cons []string
	for _, c := range M.Constraints() {
		idx := make([]string, len(c.Atoms))
		for i, a := range c.Atoms {
			idx[i] = strconv.Itoa(a.Index() + 1)
		}
		switch c.Kind {
		case chem.FixedPosition:
			fixed = append(fixed, idx[0])
		case chem.FixedDistance:
			cons = append(cons, fmt.Sprintf(" distance: %s, %.6f", strings.Join(idx, ", "), c.Value.Values[0]))
		default:
			deg, _ := units.Convert(c.Value.Values[0], units.Radian, units.Degree)
			name := "angle"
			if c.Kind == chem.FixedDihedral {
				name = "dihedral"
			}
			cons = append(cons, fmt.Sprintf(" %s: %s, %.6f", name, strings.Join(idx, ", "), deg))
		}
	}
	var b strings.Builder
	if len(fixed) > 0 {
		b.WriteString("$fix\n")
		fmt.Fprintf(&b, " atoms: %s\n", strings.Join(fixed, ","))
		b.WriteString("$end\n")
	}
	if len(cons) > 0 {
		b.WriteString("$constrain\n force constant=1.0\n")
		b.WriteString(strings.Join(cons, "\n"))
		b.WriteString("\n$end\n")
	}
	return b.String()
}

//sccBlock returns the $scc xcontrol block for a stage.
func (m *Model) sccBlock(s stage) string {
	cycles := m.params.SCFCycles
	if cycles <= 0 {
		cycles = defaultSCFCycles
	}
	if s.iterFactor > 0 {
		cycles = int(float64(cycles) * s.iterFactor)
	}
	var b strings.Builder
	b.WriteString("$scc\n")
	fmt.Fprintf(&b, " maxiterations=%d\n", cycles)
	if s.etemp > 0 {
		fmt.Fprintf(&b, " temp=%.1f\n", s.etemp)
	}
	if s.damping > 0 {
		fmt.Fprintf(&b, " broydamp=%.3f\n", s.damping)
	}
	b.WriteString("$end\n")
	return b.String()
}

//writeInput writes the xyz and xcontrol files for positions (Angstrom) into dir.
func (m *Model) writeInput(dir string, positions []float64, s stage) error {
	if len(positions) != 3*len(m.symbols) {
		return Error{ErrCantInput, inputname, fmt.Sprintf("%d coordinates for %d atoms", len(positions), len(m.symbols)), []string{"writeInput"}, true}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n%s\n", len(m.symbols), m.mol.Name)
	for i, sym := range m.symbols {
		fmt.Fprintf(&b, "%-2s %14.8f %14.8f %14.8f\n", sym, positions[3*i], positions[3*i+1], positions[3*i+2])
	}
	if err := os.WriteFile(filepath.Join(dir, inputname+".xyz"), []byte(b.String()), 0o644); err != nil {
		return Error{ErrCantInput, inputname, err.Error(), []string{"os.WriteFile", "writeInput"}, true}
	}
	ctrl := m.control + m.sccBlock(s)
	if err := os.WriteFile(filepath.Join(dir, inputname+".inp"), []byte(ctrl), 0o644); err != nil {
		return Error{ErrCantInput, inputname, err.Error(), []string{"os.WriteFile", "writeInput"}, true}
	}
	if s.fresh {
		os.Remove(filepath.Join(dir, "xtbrestart"))
	}
	return nil
}

//execute runs xtb in dir, with the output going to gochem.out. If xtb fails, the output
//tells whether it was the SCF.
func (m *Model) execute(ctx context.Context, dir string, args []string) error {
	outname := filepath.Join(dir, inputname+".out")
	out, err := os.Create(outname)
	if err != nil {
		return Error{ErrNotRunning, inputname, err.Error(), []string{"os.Create", "execute"}, true}
	}
	command := exec.CommandContext(ctx, m.opts.Command, args...)
	command.Dir = dir
	command.Stdout = out
	command.Stderr = out
	err = command.Run()
	out.Close()
	var exit *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exit):
		if e, ok := checkOutput(outname).(Error); ok && e.message == ErrSCF {
			return e
		}
		return Error{ErrAbnormal, inputname, err.Error(), []string{"exec.Cmd.Run", "execute"}, true}
	default:
		return Error{ErrNotRunning, inputname, err.Error(), []string{"exec.Cmd.Run", "execute"}, true}
	}
}

//Calculate starts an xtb calculation at the current geometry and returns at once. Potential energy
//and forces are supported. The SCF is retried with increasingly conservative settings, and if
//every attempt fails the job finishes with a *chem.ConvergenceError that lists them.
func (m *Model) Calculate(ctx context.Context, requests []chem.Property) (*chem.Job, error) {
	grad := false
	for _, r := range requests {
		switch r {
		case chem.PotentialEnergy:
		case chem.Forces:
			grad = true
		default:
			return nil, Error{ErrUnsupported, inputname, r.String(), []string{"Calculate"}, true}
		}
	}
	if !m.prepared {
		if err := m.prepare(); err != nil {
			return nil, err
		}
	}
	positions := append([]float64(nil), m.mol.Positions().Flat()...)
	args := append([]string(nil), m.args...)
	if grad {
		args = append(args, "--grad")
	}
	parent := m.opts.WorkDir
	if parent == "" {
		parent = os.TempDir()
	}
	//One directory per job: xtb always writes files with the same names.
	dir, err := os.MkdirTemp(parent, "gochem-xtb-")
	if err != nil {
		return nil, Error{ErrCantInput, inputname, err.Error(), []string{"os.MkdirTemp", "Calculate"}, true}
	}
	job := chem.NewJob()
	go func() {
		p, err := m.climb(ctx, dir, positions, args, grad)
		if !m.opts.Keep {
			os.RemoveAll(dir)
		}
		job.Finish(p, err)
	}()
	return job, nil
}

//climb goes up the retry ladder until one stage converges. Only SCF failures climb, any other
//error is returned as it is.
func (m *Model) climb(ctx context.Context, dir string, positions []float64, args []string, grad bool) (*chem.Properties, error) {
	log := chem.Logger().With(zap.String("engine", "xtb"), zap.String("dir", dir))
	var history []string
	for i, s := range ladder {
		if i > 0 {
			log.Info("SCF failed to converge, retrying", zap.String("stage", s.name))
		}
		if err := m.writeInput(dir, positions, s); err != nil {
			return nil, err
		}
		err := m.run(ctx, dir, args)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == nil {
			err = checkOutput(filepath.Join(dir, inputname+".out"))
		}
		if err != nil {
			if e, ok := err.(Error); !ok || e.message != ErrSCF {
				return nil, err
			}
			history = append(history, fmt.Sprintf("%s: %s", s.name, err))
			continue
		}
		return m.collect(dir, positions, grad)
	}
	return nil, chem.NewConvergenceError("xtb SCF", history)
}

//collect reads the results of a finished calculation.
func (m *Model) collect(dir string, positions []float64, grad bool) (*chem.Properties, error) {
	p := chem.NewProperties(positions)
	e, err := Energy(filepath.Join(dir, inputname+".out"))
	if err != nil {
		return nil, err
	}
	p.Set(chem.PotentialEnergy, units.S(e, units.Hartree))
	if grad {
		g, err := Gradient(filepath.Join(dir, "gradient"), len(m.symbols))
		if err != nil {
			return nil, err
		}
		for i := range g {
			g[i] = -g[i]
		}
		p.Set(chem.Forces, units.V(g, units.HartreePerBohr))
	}
	return p, nil
}

//checkOutput returns an error if the output file shows that the calculation didn't converge or
//didn't end normally.
func checkOutput(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return Error{ErrNoOutput, inputname, err.Error(), []string{"os.Open", "checkOutput"}, true}
	}
	defer f.Close()
	normal := false
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		l := strings.ToLower(s.Text())
		switch {
		case strings.Contains(l, "abnormal termination"):
			return Error{ErrAbnormal, inputname, strings.TrimSpace(s.Text()), []string{"checkOutput"}, true}
		case strings.Contains(l, "scc not converged"), strings.Contains(l, "scf not converged"),
			strings.Contains(l, "did not converge"):
			return Error{ErrSCF, inputname, strings.TrimSpace(s.Text()), []string{"checkOutput"}, true}
		case strings.Contains(l, "normal termination of xtb"):
			normal = true
		}
	}
	if !normal {
		return Error{ErrAbnormal, inputname, "no normal termination message", []string{"checkOutput"}, true}
	}
	return nil
}

//Energy reads the last total energy (Hartree) from an xtb output file.
func Energy(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, Error{ErrNoEnergy, inputname, err.Error(), []string{"os.Open", "Energy"}, true}
	}
	defer f.Close()
	energyline := ""
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		if l := s.Text(); strings.Contains(l, "TOTAL ENERGY") || strings.Contains(l, "total E       :") {
			energyline = l
		}
	}
	if energyline == "" {
		return 0, Error{ErrNoEnergy, inputname, "", []string{"Energy"}, true}
	}
	split := strings.Fields(energyline)
	if len(split) < 4 {
		return 0, Error{ErrNoEnergy, inputname, energyline, []string{"Energy"}, true}
	}
	energy, err := strconv.ParseFloat(split[3], 64)
	if err != nil {
		return 0, Error{ErrNoEnergy, inputname, err.Error(), []string{"strconv.ParseFloat", "Energy"}, true}
	}
	return energy, nil
}

//Gradient reads the last gradient (Hartree/Bohr, x1,y1,z1,x2...) for natoms atoms from a
//Turbomole-style gradient file written by xtb.
func Gradient(path string, natoms int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{ErrNoGradient, inputname, err.Error(), []string{"os.Open", "Gradient"}, true}
	}
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, strings.TrimSpace(s.Text()))
	}
	last := -1
	for i, l := range lines {
		if strings.HasPrefix(l, "cycle =") {
			last = i
		}
	}
	//after the cycle line come natoms coordinate lines and natoms gradient lines
	if last < 0 || len(lines) < last+1+2*natoms {
		return nil, Error{ErrNoGradient, inputname, "truncated gradient file", []string{"Gradient"}, true}
	}
	ret := make([]float64, 0, 3*natoms)
	for _, l := range lines[last+1+natoms : last+1+2*natoms] {
		fields := strings.Fields(strings.NewReplacer("D", "E", "d", "e").Replace(l))
		if len(fields) != 3 {
			return nil, Error{ErrNoGradient, inputname, l, []string{"Gradient"}, true}
		}
		for _, v := range fields {
			g, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, Error{ErrNoGradient, inputname, err.Error(), []string{"strconv.ParseFloat", "Gradient"}, true}
			}
			ret = append(ret, g)
		}
	}
	return ret, nil
}

//ALPB solvents known to xtb.
var solvents = map[string]bool{
	"h2o": true, "water": true, "chcl3": true, "ch2cl2": true, "acetone": true,
	"acetonitrile": true, "methanol": true, "toluene": true, "thf": true,
	"dmso": true, "dmf": true, "benzene": true, "ether": true, "hexane": true,
}
