/*
 * codec.go, part of gochemcore.
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


//Package propstore keeps property snapshots on disk, so results computed for a geometry
//survive the molecule and the program. Snapshots are keyed by a namespace (which should
//identify the energy model and its parameters) and a hash of the system: atomic numbers,
//charge, multiplicity and positions. All of those are stored with the snapshot and compared
//on load (positions bit-for-bit), so a hash collision is just a miss.
//Opaque values (wavefunctions and such) are not stored.
package propstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/gochemcore"
	"github.com/rmera/gochemcore/units"
	"go.uber.org/zap"
)

//EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

//Key returns the storage key for sys in namespace.
func Key(namespace string, sys *chem.System) string {
	d := xxhash.New()
	var b [8]byte
	put := func(u uint64) {
		binary.LittleEndian.PutUint64(b[:], u)
		d.Write(b[:])
	}
	for _, z := range sys.AtNums {
		put(uint64(z))
	}
	put(uint64(int64(sys.Charge)))
	put(uint64(int64(sys.Multiplicity)))
	for _, v := range sys.Positions {
		put(math.Float64bits(v))
	}
	return namespace + ":" + strconv.Itoa(len(sys.Positions)) + ":" + strconv.FormatUint(d.Sum64(), 16)
}

//Namespace returns a namespace that identifies the energy model configuration p.
func Namespace(model string, p *chem.ModelParams) string {
	charge := "auto"
	if p.Charge != nil {
		charge = strconv.Itoa(*p.Charge)
	}
	return fmt.Sprintf("%s/%s/%s/%s/q%s/m%d/%s", model, p.Theory, p.Basis, p.Functional, charge, p.Multiplicity, p.Solvent)
}

//floats are stored as their bits, so they come back identical (NaN included).
type value struct {
	Property string     `json:"property"`
	Unit     units.Unit `json:"unit"`
	Vector   bool       `json:"vector,omitempty"`
	Bits     []uint64   `json:"bits"`
}

type record struct {
	AtNums       []int    `json:"atnums"`
	Charge       int      `json:"charge"`
	Multiplicity int      `json:"multiplicity"`
	Positions    []uint64 `json:"positions"`
	Values       []value  `json:"values"`
}

func toBits(f []float64) []uint64 {
	ret := make([]uint64, len(f))
	for i, v := range f {
		ret[i] = math.Float64bits(v)
	}
	return ret
}

func fromBits(b []uint64) []float64 {
	ret := make([]float64, len(b))
	for i, v := range b {
		ret[i] = math.Float64frombits(v)
	}
	return ret
}

//Encode serializes the scalar and vector values of p, with its positions and the elements, charge
//and multiplicity of sys, as zstd-compressed JSON.
func Encode(sys *chem.System, p *chem.Properties) ([]byte, error) {
	r := record{AtNums: sys.AtNums, Charge: sys.Charge, Multiplicity: sys.Multiplicity, Positions: toBits(p.Positions())}
	for _, k := range p.Keys() {
		if k == chem.Positions {
			continue
		}
		v, _ := p.Get(k)
		switch t := v.(type) {
		case units.Scalar:
			r.Values = append(r.Values, value{Property: k.String(), Unit: t.U, Bits: toBits([]float64{t.Value})})
		case units.Vector:
			r.Values = append(r.Values, value{Property: k.String(), Unit: t.U, Vector: true, Bits: toBits(t.Values)})
		default:
			chem.Logger().Debug("not storing opaque property", zap.String("property", k.String()))
		}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, Error{err.Error(), []string{"Encode"}, true}
	}
	return encoder.EncodeAll(b, nil), nil
}

//Decode is the inverse of Encode. Values for properties it doesn't know are dropped.
func Decode(data []byte) (*chem.System, *chem.Properties, error) {
	b, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, nil, Error{"decompressing snapshot: " + err.Error(), []string{"Decode"}, true}
	}
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, nil, Error{"decoding snapshot: " + err.Error(), []string{"Decode"}, true}
	}
	p := chem.NewProperties(fromBits(r.Positions))
	sys := &chem.System{AtNums: r.AtNums, Charge: r.Charge, Multiplicity: r.Multiplicity, Positions: p.Positions()}
	for _, v := range r.Values {
		prop, ok := chem.ParseProperty(v.Property)
		if !ok {
			chem.Logger().Warn("unknown property in stored snapshot", zap.String("property", v.Property))
			continue
		}
		vals := fromBits(v.Bits)
		if v.Vector {
			p.Set(prop, units.V(vals, v.Unit))
			continue
		}
		if len(vals) != 1 {
			return nil, nil, Error{fmt.Sprintf("scalar %s has %d values", v.Property, len(vals)), []string{"Decode"}, true}
		}
		p.Set(prop, units.S(vals[0], v.Unit))
	}
	return sys, p, nil
}

//checked decodes data and returns the snapshot only if it was taken for exactly sys.
func checked(data []byte, sys *chem.System, caller string) (*chem.Properties, error) {
	stored, p, err := Decode(data)
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	if !stored.SameSystem(sys) {
		chem.Logger().Debug("stored snapshot is for a different system", zap.String("store", caller))
		return nil, nil
	}
	if !p.SameGeometry(sys.Positions) {
		chem.Logger().Debug("stored snapshot is for a different geometry", zap.String("store", caller))
		return nil, nil
	}
	return p, nil
}

//Errors

//Error is the error type for the propstore package. It fullfills chem.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string { return "propstore: " + err.message }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

func errDecorate(err error, caller string) error {
	if e, ok := err.(chem.Error); ok {
		e.Decorate(caller)
	}
	return err
}
