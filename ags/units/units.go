// Package units converts AGS measurement values into canonical SI units: metres for length,
// kg/m³ for density and kg/kg for mass fraction.
package units

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/teranos/qntx-ags/errors"
)

// Kind is the physical dimension of a unit.
type Kind string

const (
	KindLength        Kind = "length"
	KindDensity       Kind = "density"
	KindMassFraction  Kind = "mass_fraction"
	KindDimensionless Kind = "dimensionless"
)

// Unit is one entry of the conversion table.
type Unit struct {
	Symbol string
	Kind   Kind
	Factor float64 // multiply a value in Symbol by Factor to get the canonical unit
}

// Canonical returns the symbol of the canonical unit for the kind.
func (k Kind) Canonical() string {
	switch k {
	case KindLength:
		return "m"
	case KindDensity:
		return "kg/m3"
	case KindMassFraction:
		return "kg/kg"
	default:
		return ""
	}
}

var table = map[string]Unit{}

func register(kind Kind, factor float64, symbols ...string) {
	for _, s := range symbols {
		table[fold(s)] = Unit{Symbol: s, Kind: kind, Factor: factor}
	}
}

func init() {
	register(KindLength, 1, "m")
	register(KindLength, 0.01, "cm")
	register(KindLength, 0.001, "mm")
	register(KindLength, 0.3048, "ft")
	register(KindLength, 0.0254, "in")

	register(KindDensity, 1e-3, "mg/L")
	register(KindDensity, 1, "g/L", "kg/m3", "kg/m³")

	register(KindMassFraction, 1e-6, "mg/kg")
	register(KindMassFraction, 1e-9, "µg/kg", "ug/kg")
	register(KindMassFraction, 1e-3, "g/kg")
	register(KindMassFraction, 1, "kg/kg")

	register(KindDimensionless, 1, "", "%")
}

// fold maps a unit string to its lookup key. NFKC turns the micro sign (U+00B5) into the Greek
// small letter mu and the superscript ³ into 3; lower-casing then makes mg/L match mg/l.
func fold(unit string) string {
	key := norm.NFKC.String(strings.TrimSpace(unit))
	return strings.ToLower(key)
}

// Lookup returns the conversion entry for a unit string.
func Lookup(unit string) (Unit, bool) {
	u, ok := table[fold(unit)]
	return u, ok
}

// Normalize converts value from unit to the canonical unit of its kind.
//
// NaN is returned unchanged. An unknown unit returns the value unchanged together with an
// error wrapping errors.ErrUnrecognizedUnit; callers record it as a warning and keep the value.
func Normalize(value float64, unit string) (float64, error) {
	if math.IsNaN(value) {
		return value, nil
	}
	u, ok := Lookup(unit)
	if !ok {
		return value, errors.Wrapf(errors.ErrUnrecognizedUnit, "%q", unit)
	}
	return value * u.Factor, nil
}

// IsUnrecognized reports whether err came from an unknown unit string.
func IsUnrecognized(err error) bool {
	return err != nil && errors.Is(err, errors.ErrUnrecognizedUnit)
}
