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

// Default angular extents of a global grid [degrees].
const (
	// LonExtent is the periodic extent of the longitude axis.
	LonExtent = 360.
	// LatExtent is the pole-to-pole extent of the latitude axis.
	LatExtent = 180.
)

// AddCyclicPointsLon extends arr by one slice on each side of the
// longitude dimension: the last slice is prepended with its
// coordinate decreased by extent, and the first slice is appended
// with its coordinate increased by extent. Coordinates are assumed to
// sit at grid-box midpoints with possibly uneven spacing; the edge
// values are reused unchanged, only relabeled.
func AddCyclicPointsLon(arr *Field, extent float64, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	return addCyclicLon(arr, extent, c.lonDim)
}

func addCyclicLon(arr *Field, extent float64, lonDim string) (*Field, error) {
	a, err := arr.axis(lonDim)
	if err != nil {
		return nil, err
	}
	n := arr.Data.Shape[a]
	lon := arr.coords[lonDim]

	left, err := arr.Isel(lonDim, n-1)
	if err != nil {
		return nil, err
	}
	left, err = left.WithCoord(lonDim, []float64{lon[n-1] - extent})
	if err != nil {
		return nil, err
	}

	right, err := arr.Isel(lonDim, 0)
	if err != nil {
		return nil, err
	}
	right, err = right.WithCoord(lonDim, []float64{lon[0] + extent})
	if err != nil {
		return nil, err
	}

	return Concat(lonDim, left, arr, right)
}

// AddCyclicPointsLat extends arr by one ghost row beyond each
// latitude edge. Each ghost row is the adjacent edge row folded by
// half a revolution in longitude, which is the physically continuous
// continuation of a scalar field across the pole:
//
//	+-------+-------+-------+-------+-------+-------+
//	|   3   |   4   |   5   |   0   |   1   |   2   |   ghost row
//	+-------+-------+-------+-------+-------+-------+
//	|   0   |   1   |   2   |   3   |   4   |   5   |   last row
//	+-------+-------+-------+-------+-------+-------+
//
// The ghost rows keep the original longitude coordinates; their
// latitude coordinates are the mirror images of the edge rows across
// the poles, -extent-lat[0] below and extent-lat[n-1] above. The
// longitude dimension must have even length for an exact half-fold.
func AddCyclicPointsLat(arr *Field, extent float64, opts ...Option) (*Field, error) {
	c := resolveOptions(opts)
	return addCyclicLat(arr, extent, c.latDim, c.lonDim)
}

func addCyclicLat(arr *Field, extent float64, latDim, lonDim string) (*Field, error) {
	la, err := arr.axis(latDim)
	if err != nil {
		return nil, err
	}
	lo, err := arr.axis(lonDim)
	if err != nil {
		return nil, err
	}
	nlat := arr.Data.Shape[la]
	nlon := arr.Data.Shape[lo]
	if nlon%2 != 0 {
		return nil, fmt.Errorf("sphdiff: folding across the pole requires an even number of longitudes; got %d", nlon)
	}
	lat := arr.coords[latDim]

	fold := func(row *Field) (*Field, error) {
		west, err := row.IselRange(lonDim, 0, nlon/2)
		if err != nil {
			return nil, err
		}
		east, err := row.IselRange(lonDim, nlon/2, nlon)
		if err != nil {
			return nil, err
		}
		folded, err := Concat(lonDim, east, west)
		if err != nil {
			return nil, err
		}
		return folded.WithCoord(lonDim, arr.coords[lonDim])
	}

	bottom, err := arr.Isel(latDim, 0)
	if err != nil {
		return nil, err
	}
	if bottom, err = fold(bottom); err != nil {
		return nil, err
	}
	if bottom, err = bottom.WithCoord(latDim, []float64{-extent - lat[0]}); err != nil {
		return nil, err
	}

	top, err := arr.Isel(latDim, nlat-1)
	if err != nil {
		return nil, err
	}
	if top, err = fold(top); err != nil {
		return nil, err
	}
	if top, err = top.WithCoord(latDim, []float64{extent - lat[nlat-1]}); err != nil {
		return nil, err
	}

	return Concat(latDim, bottom, arr, top)
}
