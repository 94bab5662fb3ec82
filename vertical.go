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

import "fmt"

// ToPfullFromPhalf computes values at vertical level midpoints from
// values at level edges: the value at each full level is the average
// of the values at the half levels bounding it. pfull gives the
// coordinate of the resulting full-level dimension, and must be one
// shorter than arr's half-level dimension.
func ToPfullFromPhalf(arr *Field, pfull []float64, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	return toPfullFromPhalf(arr, pfull, c.pfullDim, c.phalfDim)
}

func toPfullFromPhalf(arr *Field, pfull []float64, pfullDim, phalfDim string) (*Field, error) {
	a, err := arr.axis(phalfDim)
	if err != nil {
		return nil, err
	}
	n := arr.Data.Shape[a]
	if len(pfull) != n-1 {
		return nil, fmt.Errorf("sphdiff: %d full levels do not match %d half levels", len(pfull), n)
	}
	relabel := func(half *Field) (*Field, error) {
		full, err := half.Rename(phalfDim, pfullDim)
		if err != nil {
			return nil, err
		}
		return full.WithCoord(pfullDim, pfull)
	}
	top, err := arr.IselRange(phalfDim, 1, n)
	if err != nil {
		return nil, err
	}
	if top, err = relabel(top); err != nil {
		return nil, err
	}
	bottom, err := arr.IselRange(phalfDim, 0, n-1)
	if err != nil {
		return nil, err
	}
	if bottom, err = relabel(bottom); err != nil {
		return nil, err
	}
	sum, err := top.Add(bottom)
	if err != nil {
		return nil, err
	}
	return sum.Scale(0.5), nil
}

// DDLonConstP takes the gradient of arr in longitude on surfaces of
// constant pressure. arr is defined on the full levels of a hybrid
// vertical coordinate, where the pressure at each half level is
// pk + bk*ps and ps is the surface pressure; pk and bk are defined on
// the half levels. Follows Equation B3 of Hill et al. (2017): A Moist
// Static Energy Budget-Based Analysis of the Sahel Rainfall Response
// to Uniform Oceanic Warming, J. Climate 30(15),
// https://doi.org/10.1175/JCLI-D-16-0785.1.
func DDLonConstP(arr, ps, pk, bk *Field, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	return dConstP(arr, ps, pk, bk, &c, func(f *Field) (*Field, error) {
		return dDLon(f, &c)
	})
}

// DDLatConstP takes the gradient of arr in latitude on surfaces of
// constant pressure, with the same hybrid-coordinate convention as
// DDLonConstP.
func DDLatConstP(arr, ps, pk, bk *Field, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	return dConstP(arr, ps, pk, bk, &c, func(f *Field) (*Field, error) {
		return dDLat(f, false, &c)
	})
}

// dConstP converts the fixed-model-level horizontal derivative horiz
// of arr into the corresponding derivative at fixed pressure. The
// correction subtracts the vertical gradient of arr times the rate at
// which pressure on a hybrid level changes with the horizontal
// gradient of surface pressure:
//
//	d(arr)/dx|p = d(arr)/dx|level - d(arr)/dlevel * bk/(dpk+dbk*ps) * d(ps)/dx
func dConstP(arr, ps, pk, bk *Field, c *config, horiz func(*Field) (*Field, error)) (*Field, error) {
	if _, err := arr.axis(c.pfullDim); err != nil {
		return nil, err
	}
	pfull := arr.coords[c.pfullDim]

	vert, err := arr.Differentiate(c.pfullDim)
	if err != nil {
		return nil, err
	}
	bkPfull, err := toPfullFromPhalf(bk, pfull, c.pfullDim, c.phalfDim)
	if err != nil {
		return nil, err
	}
	// Per-layer thickness terms on the full levels.
	layer := func(f *Field) (*Field, error) {
		d, err := f.Diff(c.phalfDim)
		if err != nil {
			return nil, err
		}
		if d, err = d.Rename(c.phalfDim, c.pfullDim); err != nil {
			return nil, err
		}
		return d.WithCoord(c.pfullDim, pfull)
	}
	ap, err := layer(pk)
	if err != nil {
		return nil, err
	}
	bp, err := layer(bk)
	if err != nil {
		return nil, err
	}

	term1, err := horiz(arr)
	if err != nil {
		return nil, err
	}
	dps, err := horiz(ps)
	if err != nil {
		return nil, err
	}

	bpPs, err := bp.Mul(ps)
	if err != nil {
		return nil, err
	}
	dp, err := ap.Add(bpPs)
	if err != nil {
		return nil, err
	}
	frac, err := bkPfull.Div(dp)
	if err != nil {
		return nil, err
	}
	term2, err := vert.Mul(frac)
	if err != nil {
		return nil, err
	}
	if term2, err = term2.Mul(dps); err != nil {
		return nil, err
	}
	return term1.Add(term2.Scale(-1))
}
