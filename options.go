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
	"io"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// EarthRadius is the default radius of the sphere [m].
const EarthRadius = 6370997.0

// The names of the global options.
const (
	OptionLonDim   = "lon_dim"
	OptionLatDim   = "lat_dim"
	OptionPfullDim = "pfull_dim"
	OptionPhalfDim = "phalf_dim"
	OptionTimeDim  = "time_dim"
	OptionRadius   = "radius"
)

var (
	optionsMx sync.Mutex

	// options holds the process-wide default settings. It is only
	// accessed while holding optionsMx. Scoped overrides are global
	// to the process, not per goroutine; concurrent users either
	// need to serialize overrides or pass options explicitly.
	options = map[string]interface{}{
		OptionLonDim:   "lon",
		OptionLatDim:   "lat",
		OptionPfullDim: "pfull",
		OptionPhalfDim: "phalf",
		OptionTimeDim:  "time",
		OptionRadius:   EarthRadius,
	}

	validators = map[string]func(interface{}) bool{
		OptionLonDim:   nonEmptyString,
		OptionLatDim:   nonEmptyString,
		OptionPfullDim: nonEmptyString,
		OptionPhalfDim: nonEmptyString,
		OptionTimeDim:  nonEmptyString,
		OptionRadius:   positiveFloat,
	}
)

func positiveFloat(v interface{}) bool {
	f, ok := v.(float64)
	return ok && f > 0
}

func nonEmptyString(v interface{}) bool {
	s, ok := v.(string)
	return ok && s != ""
}

func optionNames() []string {
	names := make([]string, 0, len(options))
	for k := range options {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GetOption returns the current value of the named option, or nil if
// no option with that name exists.
func GetOption(name string) interface{} {
	optionsMx.Lock()
	defer optionsMx.Unlock()
	return options[name]
}

// ApplyOverrides replaces the values of the given options, returning
// the previous values of exactly the overridden options. The whole
// batch is validated before any value is changed: if any option name
// is unknown or any value fails its validator, nothing is modified.
func ApplyOverrides(updates map[string]interface{}) (map[string]interface{}, error) {
	optionsMx.Lock()
	defer optionsMx.Unlock()
	for k, v := range updates {
		if _, ok := options[k]; !ok {
			return nil, fmt.Errorf("sphdiff: option name %q is not in the set of valid options %v",
				k, optionNames())
		}
		if validate, ok := validators[k]; ok && !validate(v) {
			return nil, fmt.Errorf("sphdiff: option %q given an invalid value: %v", k, v)
		}
	}
	prev := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		prev[k] = options[k]
		options[k] = v
	}
	return prev, nil
}

// SetOptions applies the given option overrides immediately and
// returns a function that restores the previous values. Deferring the
// restore function scopes the overrides to the enclosing function,
// including error exits:
//
//	restore, err := sphdiff.SetOptions(map[string]interface{}{
//		sphdiff.OptionLonDim: "longitude",
//	})
//	if err != nil {
//		return err
//	}
//	defer restore()
func SetOptions(updates map[string]interface{}) (func(), error) {
	prev, err := ApplyOverrides(updates)
	if err != nil {
		return nil, err
	}
	return func() {
		optionsMx.Lock()
		defer optionsMx.Unlock()
		for k, v := range prev {
			options[k] = v
		}
	}, nil
}

// LoadOptions reads option overrides in TOML format from r and
// applies them, with the same all-or-nothing validation as
// ApplyOverrides. The radius option must be written as a
// floating-point number.
func LoadOptions(r io.Reader) error {
	var updates map[string]interface{}
	if _, err := toml.DecodeReader(r, &updates); err != nil {
		return fmt.Errorf("sphdiff: reading options: %v", err)
	}
	_, err := ApplyOverrides(updates)
	return err
}

// config holds the option values resolved for a single call. Each
// entry point resolves its configuration once, from its explicit
// arguments where given and the current global defaults otherwise,
// and passes the resolved values to all nested calls.
type config struct {
	lonDim   string
	latDim   string
	pfullDim string
	phalfDim string
	timeDim  string
	radius   float64
}

// An Option overrides a default setting for a single call.
type Option func(*config)

// LonDim sets the name of the longitude dimension for a single call.
func LonDim(name string) Option { return func(c *config) { c.lonDim = name } }

// LatDim sets the name of the latitude dimension for a single call.
func LatDim(name string) Option { return func(c *config) { c.latDim = name } }

// PfullDim sets the name of the vertical level midpoint dimension for
// a single call.
func PfullDim(name string) Option { return func(c *config) { c.pfullDim = name } }

// PhalfDim sets the name of the vertical level edge dimension for a
// single call.
func PhalfDim(name string) Option { return func(c *config) { c.phalfDim = name } }

// TimeDim sets the name of the time dimension for a single call.
func TimeDim(name string) Option { return func(c *config) { c.timeDim = name } }

// Radius sets the radius of the sphere [m] for a single call.
func Radius(r float64) Option { return func(c *config) { c.radius = r } }

// resolveOptions captures the current global defaults and applies any
// per-call overrides.
func resolveOptions(opts []Option) config {
	optionsMx.Lock()
	c := config{
		lonDim:   options[OptionLonDim].(string),
		latDim:   options[OptionLatDim].(string),
		pfullDim: options[OptionPfullDim].(string),
		phalfDim: options[OptionPhalfDim].(string),
		timeDim:  options[OptionTimeDim].(string),
		radius:   options[OptionRadius].(float64),
	}
	optionsMx.Unlock()
	for _, o := range opts {
		o(&c)
	}
	return c
}
