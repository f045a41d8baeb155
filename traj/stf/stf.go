/*
 * stf.go, part of gochemcore.
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


package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/gochemcore"
	"github.com/rmera/gochemcore/traj"
	"go.uber.org/zap"
)

//Default precisions (decimal places) for positions and momenta.
const (
	DefaultPrec         = 2
	DefaultMomentumPrec = 5
)

//StfW writes trajectory frames to an stf file.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
	mprec     int
	momenta   bool
}

//Close flushes and closes the file. The writer can't be used afterwards.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.h.Close()
	if err2 := S.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

//Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

//writer returns a compressor for the file name: gzip for names ending in 'z', flate for names
//ending in 'r' and zstd for anything else.
func writer(name string, w io.Writer, level int) (io.WriteCloser, error) {
	lc := strings.ToLower(name)[len(name)-1]
	if (lc == 'z' || lc == 'r') && level > flate.BestCompression {
		level = flate.BestCompression
	}
	switch lc {
	case 'z':
		return gzip.NewWriterLevel(w, level)
	case 'r':
		return flate.NewWriter(w, level)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

//NewWriter creates the file name and writes the stf header for natoms atoms. The header map may
//set "prec" (decimal places kept for positions) and "momenta" ("true" to also store momenta, with
//"mprec" decimal places). Other keys are copied to the header as they are.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := 11 //For python compatibility
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if name == "" || natoms <= 0 {
		return nil, Error{WrongFormat, name, []string{"NewWriter"}, true}
	}
	S := &StfW{filename: name, natoms: natoms, prec: DefaultPrec, mprec: DefaultMomentumPrec}
	h := make(map[string]string, len(header)+2)
	for k, v := range header {
		h[k] = v
	}
	header = h
	S.prec = precision(header, "prec", DefaultPrec, name)
	S.mprec = precision(header, "mprec", DefaultMomentumPrec, name)
	S.momenta = header["momenta"] == "true"
	header["prec"] = strconv.Itoa(S.prec)
	if S.momenta {
		header["mprec"] = strconv.Itoa(S.mprec)
	}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	S.h, err = writer(name, S.f, level)
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't write header " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v\n", k, header[k])
	}
	fmt.Fprintf(&b, "** %d\n", S.natoms)
	if _, err := S.h.Write([]byte(b.String())); err != nil {
		S.h.Close()
		S.f.Close()
		return nil, Error{"Can't write header " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	S.writeable = true
	return S, nil
}

//precision reads a positive integer from header[key], or returns def.
func precision(header map[string]string, key string, def int, filename string) int {
	p, ok := header[key]
	if !ok {
		return def
	}
	prec, err := strconv.Atoi(p)
	if err != nil || prec <= 0 {
		chem.Logger().Warn("invalid precision for trajectory, will use the default", zap.String("file", filename), zap.String(key, p))
		return def
	}
	return prec
}

//WNext writes one frame. Positions are always written, momenta only if the writer was created
//with them (a frame with no momenta gets zeros). Step, time and energies go in the frame
//termination line.
func (S *StfW) WNext(f *traj.Frame) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if f == nil || f.Positions == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	if len(f.Positions) != 3*S.natoms || (f.Momenta != nil && len(f.Momenta) != 3*S.natoms) {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", len(f.Positions), 3*S.natoms), S.filename, []string{"WNext"}, true}
	}
	var b strings.Builder
	var temp [3]int
	var fl [3]float64
	write := func(vals []float64, prec int) {
		for i := 0; i < S.natoms; i++ {
			if vals != nil {
				copy(fl[:], vals[3*i:3*i+3])
			} else {
				fl = [3]float64{}
			}
			b.WriteString(coordsEncode(fl, temp, prec))
		}
	}
	write(f.Positions, S.prec)
	if S.momenta {
		write(f.Momenta, S.mprec)
	}
	fmt.Fprintf(&b, "* step=%d time=%s epot=%s ekin=%s\n", f.Step, ftoa(f.Time), ftoa(f.PotentialEnergy), ftoa(f.KineticEnergy))
	if _, err := S.h.Write([]byte(b.String())); err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	return nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

//StfR reads stf files.
type StfR struct {
	f        *os.File
	zr       io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	mprec    int
	momenta  bool
	readable bool
}

//zstd.Decoder's Close doesn't return an error, so it can't be an io.ReadCloser by itself.
type stdql struct {
	*zstd.Decoder
}

//Close Closes the object. It can not be used after this call
func (s stdql) Close() error {
	s.Decoder.Close()
	return nil
}

func reader(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		return gzip.NewReader(r)
	case 'r':
		return flate.NewReader(r), nil
	}
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return stdql{d}, nil
}

func coordsEncode(f [3]float64, temp [3]int, prec int) string {
	p := math.Pow(10.0, float64(prec))
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) < 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too few fields: %s", str)
	}
	if len(s) > 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too many fields: %s", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

//New opens a STF trajectory for reading, and returns a pointer
//to the handle, a map with the header, and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := &StfR{filename: name, natoms: -1, prec: DefaultPrec, mprec: DefaultMomentumPrec}
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"os.Open", "New"}, true}
	}
	S.zr, err = reader(name, bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.zr)
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), S.filename, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			S.close()
			return nil, nil, Error{"Malformed header line: " + str, S.filename, []string{"New"}, true}
		}
		m[kv[0]] = kv[1]
	}
	S.prec = precision(m, "prec", DefaultPrec, name)
	S.mprec = precision(m, "mprec", DefaultMomentumPrec, name)
	S.momenta = m["momenta"] == "true"
	S.readable = true
	return S, m, nil
}

//Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

//Next returns the next frame of the trajectory. At the end of the trajectory it returns
//a *LastFrameError, which is not an actual error.
func (S *StfR) Next() (*traj.Frame, error) {
	if !S.readable {
		return nil, Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	f := &traj.Frame{Positions: make([]float64, 3*S.natoms), PotentialEnergy: math.NaN()}
	var temp [3]float64
	read := func(dest []float64, prec int, first bool) error {
		for i := 0; i < S.natoms; i++ {
			b, err := S.h.ReadBytes('\n')
			if err != nil {
				if errors.Is(err, io.EOF) && first && i == 0 && len(b) == 0 {
					//nothing bad happened here, the trajectory just ended.
					S.close()
					return newLastFrameError(S.filename, "Next")
				}
				return Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
			}
			if err := coordsDecode(strings.TrimSuffix(string(b), "\n"), &temp, prec); err != nil {
				return Error{err.Error(), S.filename, []string{"Next"}, true}
			}
			copy(dest[3*i:], temp[:])
		}
		return nil
	}
	if err := read(f.Positions, S.prec, true); err != nil {
		return nil, err
	}
	if S.momenta {
		f.Momenta = make([]float64, 3*S.natoms)
		if err := read(f.Momenta, S.mprec, false); err != nil {
			return nil, err
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return nil, Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if len(s) == 0 || s[0] != '*' {
		return nil, Error{WrongFormat + ": wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	for _, field := range strings.Fields(s)[1:] {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue //box vectors, we don't use them.
		}
		switch kv[0] {
		case "step":
			f.Step, err = strconv.Atoi(kv[1])
		case "time":
			f.Time, err = strconv.ParseFloat(kv[1], 64)
		case "epot":
			f.PotentialEnergy, err = strconv.ParseFloat(kv[1], 64)
		case "ekin":
			f.KineticEnergy, err = strconv.ParseFloat(kv[1], 64)
		}
		if err != nil {
			return nil, Error{WrongFormat + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
	}
	return f, nil
}

func (S *StfR) close() {
	S.zr.Close()
	S.f.Close()
	S.readable = false
}

//Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.close()
}

//Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

//Write saves the whole trajectory t to the file name. Momenta are saved if the first frame has them.
func Write(name string, t *traj.Trajectory, header map[string]string) error {
	if t.Len() == 0 {
		return Error{"empty trajectory", name, []string{"Write"}, true}
	}
	h := map[string]string{"name": strings.ReplaceAll(t.Name, "\n", " ")}
	for k, v := range header {
		h[k] = v
	}
	if t.First().Momenta != nil {
		h["momenta"] = "true"
	}
	w, err := NewWriter(name, t.NAtoms(), h)
	if err != nil {
		return errDecorate(err, "Write")
	}
	for i := 0; i < t.Len(); i++ {
		if err := w.WNext(t.Frame(i)); err != nil {
			w.Close()
			return errDecorate(err, "Write")
		}
	}
	return errDecorate(w.Close(), "Write")
}

//Read loads a whole trajectory from the file name.
func Read(name string) (*traj.Trajectory, error) {
	r, h, err := New(name)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	defer r.Close()
	t := traj.New(h["name"], r.Len())
	for {
		f, err := r.Next()
		if err != nil {
			var last *LastFrameError
			if errors.As(err, &last) {
				return t, nil
			}
			return t, errDecorate(err, "Read")
		}
		if err := t.Add(f); err != nil {
			return t, err
		}
	}
}

//Errors

//errDecorate decorates err with caller if it is a chem.Error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var err2 chem.Error
	if errors.As(err, &err2) {
		err2.Decorate(caller)
	}
	return err
}

//Error is the general structure for stf trajectory errors. It fullfills chem.Error.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

//LastFrameError is returned by Next when the trajectory has no more frames.
type LastFrameError struct {
	deco     []string
	fileName string
}

func (E *LastFrameError) FileName() string { return E.fileName }

func (E *LastFrameError) Error() string { return "EOF" }

func (E *LastFrameError) Critical() bool { return false }

func (E *LastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *LastFrameError {
	return &LastFrameError{fileName: filename, deco: []string{caller}}
}
