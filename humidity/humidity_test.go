// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package humidity

import (
	"math"
	"testing"
)

func relativeError(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}

func TestRelative2AbsoluteHumidity(t *testing.T) {
	tests := []struct {
		rh          float64
		tempCelsius float64
		ah          float64
	}{
		{40.0, 20.0, 6.9},
		{50.0, 15.0, 6.4},
		{70.0, 20.0, 12.1},
		{80.0, 15.0, 10.3},
		{80.0, -10.0, 1.9},
		{20.0, 50.0, 16.6},
	}

	for _, test := range tests {
		ah := Relative2AbsoluteHumidity(test.rh, test.tempCelsius)
		if math.Abs(ah-test.ah) > 0.05 {
			t.Errorf(
				"Absolute humidity for %f%% humidity at %f° C was incorrect, got: %f, want: %f.",
				test.rh, test.tempCelsius, ah, test.ah)
		}
	}
}

func TestSaturationPressureIncreasing(t *testing.T) {
	for _, method := range []Method{Buck, Magnus} {
		t.Run(method.String(), func(t *testing.T) {
			prev := 0.0
			for temp := 273.15; temp <= 373.15; temp += 0.5 {
				pSat := SaturationPressure(temp, method)
				if pSat <= prev {
					t.Fatalf("saturation pressure at %.2f K is %f, not above %f", temp, pSat, prev)
				}
				prev = pSat
			}
		})
	}
}

func TestSaturationPressureMethods(t *testing.T) {
	buck := SaturationPressure(300, Buck)
	magnus := SaturationPressure(300, Magnus)
	if buck == magnus {
		t.Errorf("buck and magnus return the same saturation pressure %f", buck)
	}
	for temp := 273.15; temp <= 323.15; temp++ {
		buck, magnus := SaturationPressure(temp, Buck), SaturationPressure(temp, Magnus)
		if relativeError(magnus, buck) > 0.05 {
			t.Errorf("buck %f and magnus %f differ by more than 5%% at %.2f K", buck, magnus, temp)
		}
	}
}

func TestSaturationPressureReference(t *testing.T) {
	tests := []struct {
		tempCelsius float64
		method      Method
		want        float64
	}{
		{0, Buck, 611.21},
		{0, Magnus, 611.2},
		{20, Buck, 2338.34},
		{20, Magnus, 2332.60},
		{50, Buck, 12349.40},
		{26.85, Buck, 3535.24},
		{26.85, Magnus, 3525.69},
	}
	for _, test := range tests {
		got := SaturationPressure(test.tempCelsius+273.15, test.method)
		if math.Abs(got-test.want) > 0.01 {
			t.Errorf("SaturationPressure(%g °C, %v) = %f, want %f",
				test.tempCelsius, test.method, got, test.want)
		}
	}
}

func TestRelativeToSpecific(t *testing.T) {
	const temp, p = 300.0, 101325.0

	pSat := SaturationPressure(temp, Buck)
	pw := PartialPressureFromRelHumidity(0.5, pSat)
	rhoWater := DensityOfWaterVapor(pw, temp)
	rhoDryAir := DensityOfDryAir(p, pw, temp)
	q := RelativeToSpecific(0.5, temp, p, Buck)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"pSat", pSat, 3535.244078},
		{"partial pressure", pw, 1767.622039},
		{"rhoWater", rhoWater, 0.0127669465},
		{"rhoDryAir", rhoDryAir, 1.1560657656},
		{"specific humidity", q, 0.0109228176},
		{"density route", SpecificHumidityFromDensities(rhoWater, rhoDryAir), q},
	}
	for _, c := range checks {
		if relativeError(c.got, c.want) > 1e-8 {
			t.Errorf("%s = %.10g, want %.10g", c.name, c.got, c.want)
		}
	}
}

func TestAbsoluteToSpecific(t *testing.T) {
	const temp, p = 293.15, 101325.0
	pw := PartialPressureFromAbsoluteHumidity(15, temp)
	if relativeError(pw, 2029.3748475) > 1e-9 {
		t.Errorf("partial pressure = %f, want 2029.3748475", pw)
	}
	// rhoWater is the absolute humidity again, only in kg/m³
	if rhoWater := DensityOfWaterVapor(pw, temp); relativeError(rhoWater, 0.015) > 1e-12 {
		t.Errorf("rhoWater = %g, want 0.015", rhoWater)
	}
	q := AbsoluteToSpecific(15, temp, p)
	if relativeError(q, 0.0125526279) > 1e-8 {
		t.Errorf("AbsoluteToSpecific(15 g/m³) = %.10g, want 0.0125526279", q)
	}
}

func TestPartialPressureRoundTrip(t *testing.T) {
	for _, method := range []Method{Buck, Magnus} {
		for _, temp := range []float64{275, 288.15, 300, 320} {
			for _, p := range []float64{90000, 101325, 110000} {
				for _, phi := range []float64{0.05, 0.3, 0.5, 0.75, 0.99} {
					q := RelativeToSpecific(phi, temp, p, method)
					pw := PartialPressureFromSpecificHumidity(q, temp, p)
					got := pw / SaturationPressure(temp, method)
					if relativeError(got, phi) > 1e-9 {
						t.Errorf("%v T=%g p=%g: phi %g became %.12g", method, temp, p, phi, got)
					}
				}
			}
		}
	}
}

func TestGramsPerKilogram(t *testing.T) {
	for _, v := range []float64{0, 0.5, 10, 12.345, 30} {
		if got := SpecificToGramsPerKilogram(GramsPerKilogramToSpecific(v)); got != v {
			t.Errorf("round trip of %g g/kg gave %g", v, got)
		}
	}
	if q := GramsPerKilogramToSpecific(10); q != 0.01 {
		t.Errorf("10 g/kg = %g kg/kg, want 0.01", q)
	}
}

func TestMaxSpecificHumidity(t *testing.T) {
	const temp, p = 300.0, 101325.0
	qMax := MaxSpecificHumidity(temp, p, Buck)
	if q := RelativeToSpecific(0.5, temp, p, Buck); q >= qMax {
		t.Errorf("specific humidity at 50%% (%g) is not below the maximum %g", q, qMax)
	}
	if q := RelativeToSpecific(1.2, temp, p, Buck); q <= qMax {
		t.Errorf("specific humidity at 120%% (%g) is not above the maximum %g", q, qMax)
	}
}
