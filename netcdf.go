/*
Copyright © 2018 the sphdiff authors.
This file is part of sphdiff.

sphdiff is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

sphdiff is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with sphdiff.  If not, see <http://www.gnu.org/licenses/>.
*/

package sphdiff

import (
	"fmt"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// A FileReader reads gridded fields from a NetCDF file.
type FileReader struct {
	f *cdf.File

	// Log receives information about the variables being read.
	Log logrus.FieldLogger
}

// NewFileReader creates a FileReader from the NetCDF file stored in
// rw.
func NewFileReader(rw cdf.ReaderWriterAt) (*FileReader, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("sphdiff: opening netcdf file: %v", err)
	}
	return &FileReader{f: f, Log: logrus.StandardLogger()}, nil
}

// Variables returns the names of the variables in the file.
func (r *FileReader) Variables() []string {
	return r.f.Header.Variables()
}

// ReadField reads the named variable into a Field. Dimension names
// are taken from the file header; where the file contains a
// one-dimensional variable with the same name as a dimension it is
// used as that dimension's coordinate, otherwise the coordinate is
// the integer index sequence.
func (r *FileReader) ReadField(name string) (*Field, error) {
	dims := r.f.Header.Dimensions(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("sphdiff: read netcdf: variable %v not in file", name)
	}
	vals, err := r.readVar(name)
	if err != nil {
		return nil, err
	}
	lengths := r.f.Header.Lengths(name)
	data := sparse.ZerosDense(lengths...)
	data.Elements = vals

	coords := make(map[string][]float64, len(dims))
	for i, d := range dims {
		cdims := r.f.Header.Dimensions(d)
		if len(cdims) == 1 && cdims[0] == d {
			c, err := r.readVar(d)
			if err != nil {
				return nil, err
			}
			coords[d] = c
			continue
		}
		c := make([]float64, lengths[i])
		for j := range c {
			c[j] = float64(j)
		}
		coords[d] = c
	}
	r.Log.WithFields(logrus.Fields{
		"variable":   name,
		"dimensions": dims,
	}).Info("sphdiff: read field")
	return NewField(data, dims, coords)
}

// readVar reads the full contents of a variable as float64.
func (r *FileReader) readVar(name string) ([]float64, error) {
	lengths := r.f.Header.Lengths(name)
	n := 1
	for _, l := range lengths {
		n *= l
	}
	start := make([]int, len(lengths))
	rr := r.f.Reader(name, start, lengths)
	buf := rr.Zero(n)
	if _, err := rr.Read(buf); err != nil {
		return nil, fmt.Errorf("sphdiff: read netcdf variable %v: %v", name, err)
	}
	out := make([]float64, n)
	switch b := buf.(type) {
	case []float64:
		copy(out, b)
	case []float32:
		for i, v := range b {
			out[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			out[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			out[i] = float64(v)
		}
	case []int8:
		for i, v := range b {
			out[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("sphdiff: read netcdf variable %v: unsupported data type %T", name, buf)
	}
	return out, nil
}

// WriteFields writes the given fields to rw as a NetCDF file,
// including a coordinate variable for each dimension. Fields sharing
// a dimension name must agree on its length and coordinate.
func WriteFields(rw cdf.ReaderWriterAt, fields map[string]*Field) error {
	var dims []string
	var lengths []int
	coords := make(map[string][]float64)
	names := make([]string, 0, len(fields))
	for name, f := range fields {
		names = append(names, name)
		for i, d := range f.dims {
			prev, ok := coords[d]
			if !ok {
				dims = append(dims, d)
				lengths = append(lengths, f.Data.Shape[i])
				coords[d] = f.coords[d]
				continue
			}
			if len(prev) != f.Data.Shape[i] {
				return fmt.Errorf("sphdiff: write netcdf: dimension %q has length %d in one field and %d in another",
					d, len(prev), f.Data.Shape[i])
			}
		}
	}
	// Sort the names so the file writes the same way every time.
	sort.Strings(names)

	h := cdf.NewHeader(dims, lengths)
	for _, d := range dims {
		h.AddVariable(d, []string{d}, []float64{0})
	}
	for _, name := range names {
		h.AddVariable(name, fields[name].dims, []float64{0})
	}
	h.Define()

	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("sphdiff: write netcdf: %v", err)
	}
	write := func(name string, vals []float64) error {
		end := f.Header.Lengths(name)
		start := make([]int, len(end))
		w := f.Writer(name, start, end)
		if _, err := w.Write(vals); err != nil {
			return fmt.Errorf("sphdiff: write netcdf variable %v: %v", name, err)
		}
		return nil
	}
	for _, d := range dims {
		if err := write(d, coords[d]); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := write(name, fields[name].Data.Elements); err != nil {
			return err
		}
	}
	return nil
}
