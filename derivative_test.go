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
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Analytic derivative checks on a global 1°x1° cell-centered grid,
// following Seager and Henderson (2013), Table 1.
const (
	testNlon = 360
	testNlat = 180
	// analyticTolerance is the allowed absolute difference between
	// the finite-difference result and the analytic derivative.
	analyticTolerance = 0.1
)

func TestDDLonWavenumber(t *testing.T) {
	const k = 5
	f := testWaveField(testNlon, testNlat, k, "lon", "lat")

	d, err := DDLon(f)
	if err != nil {
		t.Fatal(err)
	}

	lon, _ := f.Coord("lon")
	lat, _ := f.Coord("lat")
	for j := 0; j < testNlat; j++ {
		for i := 0; i < testNlon; i++ {
			want := k * math.Cos(k*lon[i]*math.Pi/180)
			if have := d.Data.Get(j, i); math.Abs(have-want) > analyticTolerance {
				t.Fatalf("d/dx at lon %v lat %v: have %v, want %v", lon[i], lat[j], have, want)
			}
		}
	}
}

func TestDDLatScalarGradient(t *testing.T) {
	const k = 5
	f := testWaveField(testNlon, testNlat, k, "lon", "lat")

	d, err := DDLat(f, false)
	if err != nil {
		t.Fatal(err)
	}

	lon, _ := f.Coord("lon")
	lat, _ := f.Coord("lat")
	for j := 0; j < testNlat; j++ {
		for i := 0; i < testNlon; i++ {
			want := -math.Sin(lat[j]*math.Pi/180) * math.Sin(k*lon[i]*math.Pi/180)
			if have := d.Data.Get(j, i); math.Abs(have-want) > analyticTolerance {
				t.Fatalf("d/dy at lon %v lat %v: have %v, want %v", lon[i], lat[j], have, want)
			}
		}
	}
}

func TestDDLatDivergence(t *testing.T) {
	const k = 6
	f := testWaveField(testNlon, testNlat, k, "lon", "lat")

	d, err := DDLat(f, true)
	if err != nil {
		t.Fatal(err)
	}

	lon, _ := f.Coord("lon")
	lat, _ := f.Coord("lat")
	for j := 0; j < testNlat; j++ {
		for i := 0; i < testNlon; i++ {
			want := -2 * math.Sin(lat[j]*math.Pi/180) * math.Sin(k*lon[i]*math.Pi/180)
			if have := d.Data.Get(j, i); math.Abs(have-want) > analyticTolerance {
				t.Fatalf("divergence term at lon %v lat %v: have %v, want %v", lon[i], lat[j], have, want)
			}
		}
	}
}

// Per-call options override the global defaults without changing
// them.
func TestDDLonCallOptions(t *testing.T) {
	const tol = 1.0e-12

	f := testWaveField(16, 8, 2, "longitude", "latitude")
	want := testWaveField(16, 8, 2, "lon", "lat")

	d, err := DDLon(f, LonDim("longitude"), LatDim("latitude"), Radius(EarthRadius/2))
	if err != nil {
		t.Fatal(err)
	}
	dWant, err := DDLon(want)
	if err != nil {
		t.Fatal(err)
	}
	// Halving the radius doubles the derivative.
	compareArrays(t, dWant.Data.ScaleCopy(2), d.Data, tol)

	if name := GetOption(OptionLonDim); name != "lon" {
		t.Errorf("lon_dim = %v after per-call override; want lon", name)
	}
}

func TestDDLonMissingLatitude(t *testing.T) {
	data := sparse.ZerosDense(8)
	f, err := NewField(data, []string{"lon"},
		map[string][]float64{"lon": cellCenters(0, 360, 8)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DDLon(f); err == nil {
		t.Error("expected a dimension lookup error for a field without latitude")
	}
}

func TestDDT(t *testing.T) {
	const tol = 1.0e-12

	// f = 2*t with t in seconds; the gradient is exact for linear
	// fields at interior and edge points alike.
	time := []float64{0, 60, 180, 240}
	data := sparse.ZerosDense(len(time))
	for i, ti := range time {
		data.Elements[i] = 2 * ti
	}
	f, err := NewField(data, []string{"time"}, map[string][]float64{"time": time})
	if err != nil {
		t.Fatal(err)
	}

	perSecond, err := DDT(f, "s")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range perSecond.Data.Elements {
		if !floats.EqualWithinAbsOrRel(v, 2, tol, tol) {
			t.Errorf("element %d: d/dt = %v per second; want 2", i, v)
		}
	}

	perHour, err := DDT(f, "h")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range perHour.Data.Elements {
		if !floats.EqualWithinAbsOrRel(v, 7200, tol, tol) {
			t.Errorf("element %d: d/dt = %v per hour; want 7200", i, v)
		}
	}

	if _, err := DDT(f, "fortnight"); err == nil {
		t.Error("expected an error for an unsupported datetime unit")
	}
}
