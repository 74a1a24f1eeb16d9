// Package field defines the closed set of scalar channels carried by the
// substrate, together with per-field physical specs (valid range, ambient
// default, aggregation, propagation rates).
package field

import (
	"errors"
	"fmt"
)

// Field identifies one scalar channel of the substrate.
type Field uint8

const (
	Occupancy Field = iota
	Material
	Integrity
	Temperature
	Smoke
	Noise
	Signal
	CurrentX
	CurrentY
	Depth
	Salinity
	SonarReturn
)

// Count is the total number of fields.
const Count = 12

// ErrUnknownField is returned when a name does not resolve to a field.
var ErrUnknownField = errors.New("field: unknown field name")

var names = [Count]string{
	Occupancy:   "occupancy",
	Material:    "material",
	Integrity:   "integrity",
	Temperature: "temperature",
	Smoke:       "smoke",
	Noise:       "noise",
	Signal:      "signal",
	CurrentX:    "current_x",
	CurrentY:    "current_y",
	Depth:       "depth",
	Salinity:    "salinity",
	SonarReturn: "sonar_return",
}

// byName is the single name-to-field lookup table. Every string-based
// accessor in the repo resolves through Parse, never a second table.
var byName = func() map[string]Field {
	m := make(map[string]Field, Count)
	for i, n := range names {
		m[n] = Field(i)
	}
	return m
}()

// String returns the canonical lowercase name of the field.
func (f Field) String() string {
	if int(f) >= Count {
		return fmt.Sprintf("field(%d)", uint8(f))
	}
	return names[f]
}

// Index returns the field's grid index.
func (f Field) Index() int { return int(f) }

// Parse resolves a canonical lowercase name to its field.
func Parse(name string) (Field, error) {
	f, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// All returns every field in index order.
func All() []Field {
	fields := make([]Field, Count)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// Values holds one value per field, indexed by Field.
type Values [Count]float32

// Get returns the value for a field.
func (v *Values) Get(f Field) float32 { return v[f.Index()] }

// Set stores the value for a field.
func (v *Values) Set(f Field, val float32) { v[f.Index()] = val }

// GetName returns the value for a field addressed by its canonical name.
func (v *Values) GetName(name string) (float32, error) {
	f, err := Parse(name)
	if err != nil {
		return 0, err
	}
	return v.Get(f), nil
}
