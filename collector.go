// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/bdrung/humidair/humidity"
)

// standardPressure is used when neither the sensor nor its flags provide the pressure.
const standardPressure = 101325.0

type sensorCollector struct {
	Sensor               Sensor
	Up                   *prometheus.Desc
	TemperatureC         *prometheus.Desc
	HumidityRH           *prometheus.Desc
	HumidityGram         *prometheus.Desc
	SpecificHumidity     *prometheus.Desc
	PressurePa           *prometheus.Desc
	SaturationPressurePa *prometheus.Desc
	PartialPressureH2OPa *prometheus.Desc
	RawTemperatureC      *prometheus.Desc
	RawHumidityRH        *prometheus.Desc
	RawHumidityGram      *prometheus.Desc
	TempOffset           float64
	HumidityOffset       float64
	Pressure             float64
	Method               humidity.Method
}

func newDesc(name, help string, labels prometheus.Labels) *prometheus.Desc {
	return prometheus.NewDesc(name, help, nil, labels)
}

func NewSensorCollector(s Sensor, flags SensorFlags) *sensorCollector {
	labels := s.Labels()
	collector := &sensorCollector{
		Sensor: s,
		TemperatureC: newDesc(
			"sensor_temperature_celsius",
			"Temperature in Celsius",
			labels,
		),
		HumidityRH: newDesc(
			"sensor_humidity_percent",
			"Relative humidity in percent",
			labels,
		),
		HumidityGram: newDesc(
			"sensor_humidity_grams_per_cubic_meter",
			"Absolute humidity in gram / cubic meter",
			labels,
		),
		SpecificHumidity: newDesc(
			"sensor_specific_humidity_grams_per_kilogram",
			"Specific humidity in gram water vapor / kilogram humid air",
			labels,
		),
		PressurePa: newDesc(
			"sensor_pressure_pascals",
			"Air pressure in Pascal",
			labels,
		),
		SaturationPressurePa: newDesc(
			"sensor_saturation_vapor_pressure_pascals",
			"Saturation vapor pressure of water in Pascal",
			labels,
		),
		PartialPressureH2OPa: newDesc(
			"sensor_vapor_pressure_pascals",
			"Partial pressure of water vapor in Pascal",
			labels,
		),
		Up: newDesc(
			"sensor_up",
			"Value is 1 if reading sensor date was successful, 0 otherwise.",
			labels,
		),
		RawTemperatureC: newDesc(
			"sensor_raw_temperature_celsius",
			"Uncorrected temperature in Celsius",
			labels,
		),
		RawHumidityRH: newDesc(
			"sensor_raw_humidity_percent",
			"Uncorrected relative humidity in percent",
			labels,
		),
		RawHumidityGram: newDesc(
			"sensor_raw_humidity_grams_per_cubic_meter",
			"Uncorrected absolute humidity in gram / cubic meter",
			labels,
		),
		TempOffset:     flags.TempOffset,
		HumidityOffset: flags.HumidityOffset,
		Pressure:       standardPressure,
		Method:         humidity.Buck,
	}
	if flags.Pressure != nil {
		collector.Pressure = *flags.Pressure
	}
	if flags.Method != nil {
		collector.Method = *flags.Method
	}
	return collector
}

func (collector *sensorCollector) Collect(ch chan<- prometheus.Metric) {
	readings, err := collector.Sensor.Poll()
	if err != nil {
		logrus.Print(err)
		ch <- prometheus.MustNewConstMetric(collector.Up, prometheus.GaugeValue, 0.0)
	} else {
		ch <- prometheus.MustNewConstMetric(collector.Up, prometheus.GaugeValue, 1)
	}
	if readings.temperature != nil {
		ch <- prometheus.MustNewConstMetric(
			collector.TemperatureC,
			prometheus.GaugeValue,
			*readings.temperature+collector.TempOffset,
		)
		ch <- prometheus.MustNewConstMetric(
			collector.RawTemperatureC,
			prometheus.GaugeValue,
			*readings.temperature,
		)
	}
	pressure := collector.Pressure
	if readings.pressure != nil {
		pressure = *readings.pressure
		ch <- prometheus.MustNewConstMetric(collector.PressurePa, prometheus.GaugeValue, pressure)
	}
	if readings.humidity != nil {
		ch <- prometheus.MustNewConstMetric(
			collector.HumidityRH,
			prometheus.GaugeValue,
			*readings.humidity+collector.HumidityOffset,
		)
		ch <- prometheus.MustNewConstMetric(
			collector.RawHumidityRH,
			prometheus.GaugeValue,
			*readings.humidity,
		)
		if readings.temperature != nil {
			rh := *readings.humidity + collector.HumidityOffset
			tempC := *readings.temperature + collector.TempOffset
			absoluteHumidity := humidity.Relative2AbsoluteHumidity(rh, tempC)
			ch <- prometheus.MustNewConstMetric(
				collector.HumidityGram,
				prometheus.GaugeValue,
				round64(absoluteHumidity, 2),
			)
			rawAbsoluteHumidity := humidity.Relative2AbsoluteHumidity(
				*readings.humidity,
				*readings.temperature,
			)
			ch <- prometheus.MustNewConstMetric(
				collector.RawHumidityGram,
				prometheus.GaugeValue,
				round64(rawAbsoluteHumidity, 2),
			)
			collector.collectPressures(ch, rh, tempC, pressure)
		}
	}
}

// collectPressures exports the saturation and partial pressure of water vapor and the
// specific humidity for the relative humidity rh in percent.
func (collector *sensorCollector) collectPressures(ch chan<- prometheus.Metric, rh, tempC, pressure float64) {
	t := tempC + 273.15
	pSat := humidity.SaturationPressure(t, collector.Method)
	pw := humidity.PartialPressureFromRelHumidity(rh/100, pSat)
	q := humidity.SpecificHumidityFromPartialPressure(pw, t, pressure)
	ch <- prometheus.MustNewConstMetric(
		collector.SaturationPressurePa,
		prometheus.GaugeValue,
		round64(pSat, 1),
	)
	ch <- prometheus.MustNewConstMetric(
		collector.PartialPressureH2OPa,
		prometheus.GaugeValue,
		round64(pw, 1),
	)
	ch <- prometheus.MustNewConstMetric(
		collector.SpecificHumidity,
		prometheus.GaugeValue,
		round64(humidity.SpecificToGramsPerKilogram(q), 3),
	)
}

func (collector *sensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.TemperatureC
	ch <- collector.HumidityRH
	ch <- collector.HumidityGram
	ch <- collector.SpecificHumidity
	ch <- collector.PressurePa
	ch <- collector.SaturationPressurePa
	ch <- collector.PartialPressureH2OPa
	ch <- collector.Up
	ch <- collector.RawTemperatureC
	ch <- collector.RawHumidityRH
	ch <- collector.RawHumidityGram
}

func round64(value float64, precision int) float64 {
	return math.Round(value*math.Pow10(precision)) / math.Pow10(precision)
}
