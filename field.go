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

// Package sphdiff calculates second-order finite differences of
// gridded data on a sphere, including pole and periodic boundary
// handling and conversion of derivatives on hybrid model levels to
// derivatives on surfaces of constant pressure.
package sphdiff

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// A Field is a gridded physical quantity: an n-dimensional array of
// values with an ordered set of named dimensions and a 1-dimensional
// coordinate for every dimension. Coordinates are not required to be
// evenly spaced.
//
// Operations on Fields return newly allocated results and never
// modify their inputs.
type Field struct {
	// Data holds the gridded values.
	Data *sparse.DenseArray

	dims   []string
	coords map[string][]float64
}

// NewField creates a Field from data, the ordered dimension names
// dims, and a coordinate for each dimension.
func NewField(data *sparse.DenseArray, dims []string, coords map[string][]float64) (*Field, error) {
	if len(dims) != len(data.Shape) {
		return nil, fmt.Errorf("sphdiff: field has %d dimension names but data has %d dimensions",
			len(dims), len(data.Shape))
	}
	for i, d := range dims {
		for _, d2 := range dims[i+1:] {
			if d == d2 {
				return nil, fmt.Errorf("sphdiff: duplicate dimension name %q", d)
			}
		}
		c, ok := coords[d]
		if !ok {
			return nil, fmt.Errorf("sphdiff: missing coordinate for dimension %q", d)
		}
		if len(c) != data.Shape[i] {
			return nil, fmt.Errorf("sphdiff: coordinate for dimension %q has length %d but data has length %d",
				d, len(c), data.Shape[i])
		}
	}
	f := &Field{Data: data, dims: make([]string, len(dims)), coords: make(map[string][]float64, len(dims))}
	copy(f.dims, dims)
	for _, d := range dims {
		f.coords[d] = coords[d]
	}
	return f, nil
}

// Dims returns the ordered dimension names.
func (f *Field) Dims() []string {
	o := make([]string, len(f.dims))
	copy(o, f.dims)
	return o
}

// Coord returns the coordinate values of the named dimension.
func (f *Field) Coord(dim string) ([]float64, error) {
	if _, err := f.axis(dim); err != nil {
		return nil, err
	}
	c := f.coords[dim]
	o := make([]float64, len(c))
	copy(o, c)
	return o, nil
}

// dimIndex returns the axis position of dim, or -1 if f does not
// have a dimension with that name.
func (f *Field) dimIndex(dim string) int {
	for i, d := range f.dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// axis returns the axis position of dim.
func (f *Field) axis(dim string) (int, error) {
	if i := f.dimIndex(dim); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("sphdiff: field has no dimension %q (dimensions are %v)", dim, f.dims)
}

func (f *Field) copyDims() []string {
	o := make([]string, len(f.dims))
	copy(o, f.dims)
	return o
}

func (f *Field) copyCoords() map[string][]float64 {
	o := make(map[string][]float64, len(f.coords))
	for d, c := range f.coords {
		o[d] = c
	}
	return o
}

// IselRange selects the half-open index range [start,stop) along the
// named dimension.
func (f *Field) IselRange(dim string, start, stop int) (*Field, error) {
	a, err := f.axis(dim)
	if err != nil {
		return nil, err
	}
	n := f.Data.Shape[a]
	if start < 0 || stop > n || start >= stop {
		return nil, fmt.Errorf("sphdiff: index range [%d,%d) is invalid for dimension %q of length %d",
			start, stop, dim, n)
	}
	shape := make([]int, len(f.Data.Shape))
	copy(shape, f.Data.Shape)
	shape[a] = stop - start
	out := sparse.ZerosDense(shape...)
	src := make([]int, len(shape))
	for i := range out.Elements {
		idx := out.IndexNd(i)
		copy(src, idx)
		src[a] += start
		out.Elements[i] = f.Data.Get(src...)
	}
	coords := f.copyCoords()
	c := make([]float64, stop-start)
	copy(c, f.coords[dim][start:stop])
	coords[dim] = c
	return &Field{Data: out, dims: f.copyDims(), coords: coords}, nil
}

// Isel selects the single index i along the named dimension, keeping
// the dimension with length one. Negative i counts from the end.
func (f *Field) Isel(dim string, i int) (*Field, error) {
	a, err := f.axis(dim)
	if err != nil {
		return nil, err
	}
	n := f.Data.Shape[a]
	if i < 0 {
		i += n
	}
	return f.IselRange(dim, i, i+1)
}

// Rename changes the name of a dimension.
func (f *Field) Rename(old, new string) (*Field, error) {
	a, err := f.axis(old)
	if err != nil {
		return nil, err
	}
	if f.dimIndex(new) >= 0 {
		return nil, fmt.Errorf("sphdiff: field already has a dimension %q", new)
	}
	dims := f.copyDims()
	dims[a] = new
	coords := f.copyCoords()
	coords[new] = coords[old]
	delete(coords, old)
	return &Field{Data: f.Data.Copy(), dims: dims, coords: coords}, nil
}

// WithCoord replaces the coordinate of the named dimension, leaving
// the data values unchanged.
func (f *Field) WithCoord(dim string, coord []float64) (*Field, error) {
	a, err := f.axis(dim)
	if err != nil {
		return nil, err
	}
	if len(coord) != f.Data.Shape[a] {
		return nil, fmt.Errorf("sphdiff: replacement coordinate for dimension %q has length %d but data has length %d",
			dim, len(coord), f.Data.Shape[a])
	}
	coords := f.copyCoords()
	c := make([]float64, len(coord))
	copy(c, coord)
	coords[dim] = c
	return &Field{Data: f.Data.Copy(), dims: f.copyDims(), coords: coords}, nil
}

// Concat concatenates fields along the named dimension. All fields
// must have the same dimensions in the same order, and matching
// lengths along every other dimension.
func Concat(dim string, fields ...*Field) (*Field, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("sphdiff: no fields to concatenate")
	}
	first := fields[0]
	a, err := first.axis(dim)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, f := range fields {
		if len(f.dims) != len(first.dims) {
			return nil, fmt.Errorf("sphdiff: cannot concatenate fields with different dimensions %v and %v",
				first.dims, f.dims)
		}
		for i, d := range f.dims {
			if d != first.dims[i] {
				return nil, fmt.Errorf("sphdiff: cannot concatenate fields with different dimensions %v and %v",
					first.dims, f.dims)
			}
			if i != a && f.Data.Shape[i] != first.Data.Shape[i] {
				return nil, fmt.Errorf("sphdiff: dimension %q has length %d in one field and %d in another",
					d, first.Data.Shape[i], f.Data.Shape[i])
			}
		}
		total += f.Data.Shape[a]
	}
	shape := make([]int, len(first.Data.Shape))
	copy(shape, first.Data.Shape)
	shape[a] = total
	out := sparse.ZerosDense(shape...)
	coord := make([]float64, 0, total)
	offset := 0
	for _, f := range fields {
		for i, v := range f.Data.Elements {
			idx := f.Data.IndexNd(i)
			idx[a] += offset
			out.Elements[out.Index1d(idx...)] = v
		}
		coord = append(coord, f.coords[dim]...)
		offset += f.Data.Shape[a]
	}
	coords := first.copyCoords()
	coords[dim] = coord
	return &Field{Data: out, dims: first.copyDims(), coords: coords}, nil
}

// binOp applies op elementwise to f and other, broadcasting by
// dimension name. The result dimensions are f's dimensions followed
// by any dimensions of other that f does not have. Dimensions shared
// by both fields must have equal lengths; coordinates are taken from
// f where present.
func (f *Field) binOp(other *Field, op func(a, b float64) float64) (*Field, error) {
	dims := f.copyDims()
	for _, d := range other.dims {
		if f.dimIndex(d) < 0 {
			dims = append(dims, d)
		}
	}
	shape := make([]int, len(dims))
	coords := make(map[string][]float64, len(dims))
	fmap := make([]int, len(dims))
	omap := make([]int, len(dims))
	for i, d := range dims {
		fmap[i] = f.dimIndex(d)
		omap[i] = other.dimIndex(d)
		if fmap[i] >= 0 {
			shape[i] = f.Data.Shape[fmap[i]]
			coords[d] = f.coords[d]
			if omap[i] >= 0 && other.Data.Shape[omap[i]] != shape[i] {
				return nil, fmt.Errorf("sphdiff: dimension %q has length %d in one operand and %d in the other",
					d, shape[i], other.Data.Shape[omap[i]])
			}
		} else {
			shape[i] = other.Data.Shape[omap[i]]
			coords[d] = other.coords[d]
		}
	}
	out := sparse.ZerosDense(shape...)
	fidx := make([]int, len(f.dims))
	oidx := make([]int, len(other.dims))
	for i := range out.Elements {
		idx := out.IndexNd(i)
		for j := range dims {
			if fmap[j] >= 0 {
				fidx[fmap[j]] = idx[j]
			}
			if omap[j] >= 0 {
				oidx[omap[j]] = idx[j]
			}
		}
		out.Elements[i] = op(f.Data.Get(fidx...), other.Data.Get(oidx...))
	}
	return &Field{Data: out, dims: dims, coords: coords}, nil
}

// Add returns f + other, broadcasting by dimension name.
func (f *Field) Add(other *Field) (*Field, error) {
	return f.binOp(other, func(a, b float64) float64 { return a + b })
}

// Sub returns f - other, broadcasting by dimension name.
func (f *Field) Sub(other *Field) (*Field, error) {
	return f.binOp(other, func(a, b float64) float64 { return a - b })
}

// Mul returns f * other, broadcasting by dimension name.
func (f *Field) Mul(other *Field) (*Field, error) {
	return f.binOp(other, func(a, b float64) float64 { return a * b })
}

// Div returns f / other, broadcasting by dimension name. Division by
// zero follows IEEE 754 semantics.
func (f *Field) Div(other *Field) (*Field, error) {
	return f.binOp(other, func(a, b float64) float64 { return a / b })
}

// Scale returns a copy of f with all values multiplied by v.
func (f *Field) Scale(v float64) *Field {
	return &Field{Data: f.Data.ScaleCopy(v), dims: f.copyDims(), coords: f.copyCoords()}
}

// Diff returns the difference between adjacent values along the named
// dimension, shortening it by one. The result is labeled with the
// upper of each coordinate pair.
func (f *Field) Diff(dim string) (*Field, error) {
	a, err := f.axis(dim)
	if err != nil {
		return nil, err
	}
	n := f.Data.Shape[a]
	if n < 2 {
		return nil, fmt.Errorf("sphdiff: cannot difference dimension %q of length %d", dim, n)
	}
	upper, err := f.IselRange(dim, 1, n)
	if err != nil {
		return nil, err
	}
	lower, err := f.IselRange(dim, 0, n-1)
	if err != nil {
		return nil, err
	}
	lower, err = lower.WithCoord(dim, upper.coords[dim])
	if err != nil {
		return nil, err
	}
	return upper.Sub(lower)
}

// Differentiate estimates the derivative of f with respect to the
// coordinate of the named dimension, which need not be evenly spaced.
// Interior points use a second-order three-point estimate; the two
// edge points use first-order one-sided differences.
func (f *Field) Differentiate(dim string) (*Field, error) {
	a, err := f.axis(dim)
	if err != nil {
		return nil, err
	}
	n := f.Data.Shape[a]
	if n < 2 {
		return nil, fmt.Errorf("sphdiff: cannot differentiate dimension %q of length %d", dim, n)
	}
	x := f.coords[dim]
	out := sparse.ZerosDense(f.Data.Shape...)
	src := make([]int, len(f.Data.Shape))
	for i := range out.Elements {
		idx := out.IndexNd(i)
		copy(src, idx)
		k := idx[a]
		switch {
		case k == 0:
			src[a] = 1
			right := f.Data.Get(src...)
			src[a] = 0
			out.Elements[i] = (right - f.Data.Get(src...)) / (x[1] - x[0])
		case k == n-1:
			src[a] = n - 2
			left := f.Data.Get(src...)
			src[a] = n - 1
			out.Elements[i] = (f.Data.Get(src...) - left) / (x[n-1] - x[n-2])
		default:
			hd := x[k] - x[k-1]
			hs := x[k+1] - x[k]
			center := f.Data.Get(src...)
			src[a] = k - 1
			left := f.Data.Get(src...)
			src[a] = k + 1
			right := f.Data.Get(src...)
			out.Elements[i] = (hd*hd*right + (hs*hs-hd*hd)*center - hs*hs*left) /
				(hs * hd * (hs + hd))
		}
	}
	return &Field{Data: out, dims: f.copyDims(), coords: f.copyCoords()}, nil
}
