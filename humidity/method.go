// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package humidity

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMethod = errors.New("unknown saturation method")
	ErrUnknownMode   = errors.New("unknown humidity mode")
)

// Method selects the correlation for the saturation pressure of water.
type Method int

const (
	Buck Method = iota
	Magnus
)

var methodNames = [...]string{Buck: "buck", Magnus: "magnus"}

var saturationPressures = [...]func(float64) float64{
	Buck:   BuckSaturationPressure,
	Magnus: MagnusSaturationPressure,
}

// ParseMethod parses "buck" or "magnus".
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if s == name {
			return Method(m), nil
		}
	}
	return Buck, fmt.Errorf("%w '%s', supported are 'buck' and 'magnus'", ErrUnknownMethod, s)
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	return m >= 0 && int(m) < len(methodNames)
}

func (m Method) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Mode is the unit convention of a humidity value.
type Mode int

const (
	Relative Mode = iota // relative humidity, 0-1
	Specific             // specific humidity in g/kg
	Absolute             // absolute humidity in g/m³
)

var modeNames = [...]string{Relative: "relative", Specific: "specific", Absolute: "absolute"}

// ParseMode parses "relative", "specific" or "absolute".
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return Mode(m), nil
		}
	}
	return Relative, fmt.Errorf(
		"%w '%s', supported are 'relative', 'specific' and 'absolute'", ErrUnknownMode, s)
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Unit returns the unit of a humidity value given in this mode.
func (m Mode) Unit() string {
	switch m {
	case Specific:
		return "g/kg"
	case Absolute:
		return "g/m^3"
	default:
		return "1"
	}
}

// Conversion converts a humidity value to specific humidity in kg/kg at the
// temperature t and the pressure p.
type Conversion func(value, t, p float64) float64

// Conversion returns the conversion from this mode to specific humidity. The method is
// only used by the relative mode.
func (m Mode) Conversion(method Method) (Conversion, error) {
	switch m {
	case Relative:
		if !method.Valid() {
			return nil, fmt.Errorf("%w %v", ErrUnknownMethod, method)
		}
		pSat := saturationPressures[method]
		return func(phi, t, p float64) float64 {
			pw := PartialPressureFromRelHumidity(phi, pSat(t-zeroCelsius))
			return SpecificHumidityFromPartialPressure(pw, t, p)
		}, nil
	case Specific:
		return func(q, _, _ float64) float64 { return GramsPerKilogramToSpecific(q) }, nil
	case Absolute:
		return func(ah, t, p float64) float64 { return AbsoluteToSpecific(ah, t, p) }, nil
	default:
		return nil, fmt.Errorf("%w %v", ErrUnknownMode, m)
	}
}

// ToSpecific writes the specific humidity for the humidity value to dst, one element per
// sample with the temperatures t and pressures p.
func ToSpecific(dst, t, p []float64, value float64, conv Conversion) {
	for i := range dst {
		dst[i] = conv(value, t[i], p[i])
	}
}
