// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

// Package humidity converts between the representations of atmospheric moisture:
// relative humidity, specific humidity, absolute humidity and the partial pressure
// of water vapor.
//
// All temperatures are in Kelvin and all pressures in Pascal unless the name of a
// function says otherwise.
package humidity

import "math"

const (
	GasConstantWater  = 461.51  // specific gas constant for water vapor in J / (kg * K)
	GasConstantDryAir = 287.058 // specific gas constant for dry air in J / (kg * K)

	zeroCelsius = 273.15 // in Kelvin
)

// BuckSaturationPressure calculates the saturation vapour pressure of water in Pa with the
// Arden Buck equation (1996). Valid between 0 and 100 °C at 1013.25 hPa and very accurate
// between 0 and 50 °C.
// See https://en.wikipedia.org/wiki/Vapour_pressure_of_water#Accuracy_of_different_formulations
func BuckSaturationPressure(temperatureCelsius float64) float64 {
	e := (18.678 - temperatureCelsius/234.5) * (temperatureCelsius / (257.14 + temperatureCelsius))
	return 611.21 * math.Exp(e)
}

// MagnusSaturationPressure calculates the saturation vapour pressure of water in Pa with the
// Magnus formula. Not as accurate as the Buck equation.
func MagnusSaturationPressure(temperatureCelsius float64) float64 {
	return 611.2 * math.Exp(17.62*temperatureCelsius/(243.12+temperatureCelsius))
}

// SaturationPressure calculates the saturation vapour pressure of water in Pa at the
// temperature t in Kelvin with the given method.
func SaturationPressure(t float64, method Method) float64 {
	return saturationPressures[method](t - zeroCelsius)
}

// PartialPressureFromRelHumidity returns the partial pressure of water vapor for the
// relative humidity phi (0-1) and the saturation pressure pSat.
func PartialPressureFromRelHumidity(phi, pSat float64) float64 {
	return phi * pSat
}

// PartialPressureFromAbsoluteHumidity returns the partial pressure of water vapor for the
// absolute humidity in g/m³ at the temperature t.
func PartialPressureFromAbsoluteHumidity(absoluteHumidity, t float64) float64 {
	return absoluteHumidity / 1000 * t * GasConstantWater
}

// DensityOfWaterVapor returns the density of water vapor in kg/m³ (ideal gas law).
func DensityOfWaterVapor(partialPressure, t float64) float64 {
	return partialPressure / (GasConstantWater * t)
}

// DensityOfDryAir returns the density of the dry air fraction in kg/m³ of humid air
// with the total pressure p and the partial pressure of water vapor.
func DensityOfDryAir(p, partialPressure, t float64) float64 {
	return (p - partialPressure) / (GasConstantDryAir * t)
}

// SpecificHumidityFromDensities returns the specific humidity in kg/kg.
func SpecificHumidityFromDensities(rhoWater, rhoDryAir float64) float64 {
	return rhoWater / (rhoWater + rhoDryAir)
}

// SpecificHumidityFromPartialPressure returns the specific humidity in kg/kg of humid air
// with the total pressure p and the given partial pressure of water vapor.
func SpecificHumidityFromPartialPressure(partialPressure, t, p float64) float64 {
	return SpecificHumidityFromDensities(
		DensityOfWaterVapor(partialPressure, t),
		DensityOfDryAir(p, partialPressure, t),
	)
}

// PartialPressureFromSpecificHumidity is the inverse of SpecificHumidityFromPartialPressure.
//
// Solving q = rhoWater / (rhoWater + rhoDryAir) for the partial pressure gives
// pw = q * p * Rw / (Ra * (1 - q) + q * Rw).
func PartialPressureFromSpecificHumidity(q, t, p float64) float64 {
	return q * p * GasConstantWater / (GasConstantDryAir*(1-q) + q*GasConstantWater)
}

// RelativeToSpecific converts the relative humidity phi (0-1) to specific humidity in kg/kg.
func RelativeToSpecific(phi, t, p float64, method Method) float64 {
	pw := PartialPressureFromRelHumidity(phi, SaturationPressure(t, method))
	return SpecificHumidityFromPartialPressure(pw, t, p)
}

// AbsoluteToSpecific converts the absolute humidity in g/m³ to specific humidity in kg/kg.
func AbsoluteToSpecific(absoluteHumidity, t, p float64) float64 {
	pw := PartialPressureFromAbsoluteHumidity(absoluteHumidity, t)
	return SpecificHumidityFromPartialPressure(pw, t, p)
}

// GramsPerKilogramToSpecific converts specific humidity in g/kg to kg/kg.
func GramsPerKilogramToSpecific(q float64) float64 {
	return q / 1000
}

// SpecificToGramsPerKilogram converts specific humidity in kg/kg to g/kg.
func SpecificToGramsPerKilogram(q float64) float64 {
	return q * 1000
}

// MaxSpecificHumidity returns the specific humidity of saturated air (phi = 1).
func MaxSpecificHumidity(t, p float64, method Method) float64 {
	return RelativeToSpecific(1, t, p, method)
}

// Relative2AbsoluteHumidity calculates the absolute humidity in g/m³ for a given
// relative humidity in percent and temperature in Celsius.
//
// The humidity definitions and the ideal gas law were used for deriving the formula:
// 1. absoluteHumidity = massWaterVapor / VolumeAirAndWater
// 2. relativehumidity = partialVaporPressureWater / saturationVaporPressureWater
// 3. partialVaporPressureWater = (massWaterVapor / VolumeAirAndWater) * gasConstantWater * temperatureKelvin
//
// Resulting formula:
// absoluteHumidity = relativehumidity * saturationVaporPressureWater / (gasConstantWater * temperatureKelvin)
func Relative2AbsoluteHumidity(relativeHumidity float64, temperatureCelsius float64) float64 {
	t := temperatureCelsius + zeroCelsius
	pw := PartialPressureFromRelHumidity(relativeHumidity/100, BuckSaturationPressure(temperatureCelsius))
	return 1000 * DensityOfWaterVapor(pw, t)
}
