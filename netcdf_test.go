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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNetCDFRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "sphdiff")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	temp := testWaveField(8, 4, 1, "lon", "lat")
	wind := temp.Scale(0.5)

	path := filepath.Join(dir, "fields.nc")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	err = WriteFields(w, map[string]*Field{
		"temperature": temp,
		"wind":        wind,
	})
	if err2 := w.Close(); err == nil {
		err = err2
	}
	if err != nil {
		t.Fatal(err)
	}

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	file, err := NewFileReader(r)
	if err != nil {
		t.Fatal(err)
	}

	names := file.Variables()
	want := map[string]bool{"lon": true, "lat": true, "temperature": true, "wind": true}
	if len(names) != len(want) {
		t.Fatalf("variables = %v; want %v", names, want)
	}
	for _, n := range names {
		if !want[n] {
			t.Fatalf("unexpected variable %q in %v", n, names)
		}
	}

	for name, orig := range map[string]*Field{"temperature": temp, "wind": wind} {
		got, err := file.ReadField(name)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.Dims(), orig.Dims()) {
			t.Errorf("%v: dimensions = %v; want %v", name, got.Dims(), orig.Dims())
		}
		for _, d := range orig.Dims() {
			wc, _ := orig.Coord(d)
			gc, _ := got.Coord(d)
			if !reflect.DeepEqual(gc, wc) {
				t.Errorf("%v: coordinate %v = %v; want %v", name, d, gc, wc)
			}
		}
		compareArrays(t, orig.Data, got.Data, 0)
	}

	if _, err := file.ReadField("pressure"); err == nil {
		t.Error("expected an error reading a variable not in the file")
	}
}

func TestWriteFieldsDimensionMismatch(t *testing.T) {
	a := testWaveField(8, 4, 1, "lon", "lat")
	b := testWaveField(8, 6, 1, "lon", "lat")
	err := WriteFields(nil, map[string]*Field{"a": a, "b": b})
	if err == nil {
		t.Fatal("expected an error for fields disagreeing on a dimension length")
	}
}
