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
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// degToRad converts coordinate values from degrees to radians.
func degToRad(deg []float64) []float64 {
	rad := make([]float64, len(deg))
	copy(rad, deg)
	floats.Scale(math.Pi/180, rad)
	return rad
}

// threePointDiff computes the second-order finite-difference estimate
// of the derivative of arr along the named dimension at the interior
// points, for arbitrary uneven spacing of the coordinate x (given in
// radians):
//
//	d[i] = (dxl*darrR/dxr + dxr*darrL/dxl) / dxc
//
// where dxl, dxr and dxc are the left, right and center coordinate
// spacings and darrL and darrR the left and right value differences.
// For uniform spacing this reduces to the usual centered difference.
// The first and last slices, which are expected to be boundary
// extensions, are dropped from the result.
func threePointDiff(arr *Field, dim string, x []float64) (*Field, error) {
	a, err := arr.axis(dim)
	if err != nil {
		return nil, err
	}
	n := arr.Data.Shape[a]
	if n < 3 {
		return nil, fmt.Errorf("sphdiff: differencing dimension %q requires at least 3 points; got %d", dim, n)
	}
	shape := make([]int, len(arr.Data.Shape))
	copy(shape, arr.Data.Shape)
	shape[a] = n - 2
	out := sparse.ZerosDense(shape...)
	src := make([]int, len(shape))
	for i := range out.Elements {
		idx := out.IndexNd(i)
		copy(src, idx)
		k := idx[a] + 1
		dxl := x[k] - x[k-1]
		dxr := x[k+1] - x[k]
		dxc := x[k+1] - x[k-1]
		src[a] = k
		center := arr.Data.Get(src...)
		src[a] = k - 1
		left := arr.Data.Get(src...)
		src[a] = k + 1
		right := arr.Data.Get(src...)
		out.Elements[i] = (dxl*(right-center)/dxr + dxr*(center-left)/dxl) / dxc
	}
	coords := arr.copyCoords()
	c := make([]float64, n-2)
	copy(c, arr.coords[dim][1:n-1])
	coords[dim] = c
	return &Field{Data: out, dims: arr.copyDims(), coords: coords}, nil
}

// DDLon differentiates arr with respect to longitude, assuming a
// global domain with periodic boundaries. Uses second-order finite
// differencing with spherical metric factors, following the methods
// of Seager and Henderson (2013): Diagnostic Computation of Moisture
// Budgets in the ERA-Interim Reanalysis with Reference to Analysis of
// CMIP-Archived Atmospheric Model Data, J. Climate 26(20),
// https://doi.org/10.1175/JCLI-D-13-00018.1.
//
// The result has the same shape as arr, in units of arr's units per
// meter of zonal distance.
func DDLon(arr *Field, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	return dDLon(arr, &c)
}

func dDLon(arr *Field, c *config) (*Field, error) {
	if _, err := arr.axis(c.latDim); err != nil {
		return nil, err
	}
	ext, err := addCyclicLon(arr, LonExtent, c.lonDim)
	if err != nil {
		return nil, err
	}
	d, err := threePointDiff(ext, c.lonDim, degToRad(ext.coords[c.lonDim]))
	if err != nil {
		return nil, err
	}
	// Convert from per radian of longitude to per meter, accounting
	// for the convergence of meridians toward the poles.
	lat := arr.coords[c.latDim]
	metric := sparse.ZerosDense(len(lat))
	for j, latRad := range degToRad(lat) {
		metric.Elements[j] = c.radius * math.Cos(latRad)
	}
	metricField := &Field{
		Data:   metric,
		dims:   []string{c.latDim},
		coords: map[string][]float64{c.latDim: lat},
	}
	return d.Div(metricField)
}

// DDLat differentiates arr with respect to latitude. If divergence is
// true, the derivative is treated as the meridional term in the
// divergence of a vector field, which carries an extra cos(latitude)
// weighting inside the derivative; if false, it is the meridional
// derivative of a scalar field. Uses second-order finite differencing
// with spherical metric factors and pole-folded ghost rows, following
// the methods of Seager and Henderson (2013),
// https://doi.org/10.1175/JCLI-D-13-00018.1.
//
// The result has the same shape as arr, in units of arr's units per
// meter of meridional distance.
func DDLat(arr *Field, divergence bool, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	return dDLat(arr, divergence, &c)
}

func dDLat(arr *Field, divergence bool, c *config) (*Field, error) {
	ext, err := addCyclicLat(arr, LatExtent, c.latDim, c.lonDim)
	if err != nil {
		return nil, err
	}
	extLat := ext.coords[c.latDim]
	extLatRad := degToRad(extLat)
	// The weighting is positive-definite: the ghost rows lie beyond
	// the poles where cos(latitude) goes negative, but folding across
	// the pole must not flip the sign.
	cosLat := sparse.ZerosDense(len(extLatRad))
	for j, latRad := range extLatRad {
		cosLat.Elements[j] = math.Abs(math.Cos(latRad))
	}

	work := ext
	if divergence {
		cosLatField := &Field{
			Data:   cosLat,
			dims:   []string{c.latDim},
			coords: map[string][]float64{c.latDim: extLat},
		}
		if work, err = ext.Mul(cosLatField); err != nil {
			return nil, err
		}
	}

	d, err := threePointDiff(work, c.latDim, extLatRad)
	if err != nil {
		return nil, err
	}
	if !divergence {
		return d.Scale(1 / c.radius), nil
	}
	// Interior points of the extension are the original rows, so the
	// interior of cosLat lines up with d's latitude axis.
	nlat := len(extLat) - 2
	metric := sparse.ZerosDense(nlat)
	for j := 0; j < nlat; j++ {
		metric.Elements[j] = c.radius * cosLat.Elements[j+1]
	}
	metricField := &Field{
		Data:   metric,
		dims:   []string{c.latDim},
		coords: map[string][]float64{c.latDim: arr.coords[c.latDim]},
	}
	return d.Div(metricField)
}

// datetimeUnits gives the number of seconds in each supported
// time-difference unit.
var datetimeUnits = map[string]float64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"D": 86400,
}

// DDT differentiates arr with respect to its time coordinate, which
// is taken to be in seconds. datetimeUnit selects the units of the
// time differences in the result: "s", "m", "h" or "D".
func DDT(arr *Field, datetimeUnit string, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	scale, ok := datetimeUnits[datetimeUnit]
	if !ok {
		return nil, fmt.Errorf("sphdiff: unsupported datetime unit %q", datetimeUnit)
	}
	d, err := arr.Differentiate(c.timeDim)
	if err != nil {
		return nil, err
	}
	return d.Scale(scale), nil
}
