// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"fmt"
	"strconv"
	"strings"

	bsbmp "github.com/d2r2/go-bsbmp"
	sht3x "github.com/d2r2/go-sht3x"

	"github.com/bdrung/humidair/humidity"
)

type SensorFlags struct {
	Model          string
	Address        *uint8
	Bus            *int
	Repeatability  string
	TempOffset     float64
	HumidityOffset float64
	// Pressure in Pa is used if the sensor does not measure it.
	Pressure *float64
	Method   *humidity.Method
}

func parseSensorFlags(sensor string) (SensorFlags, error) {
	var flags SensorFlags
	fields := strings.Split(sensor, ",")
	flags.Model = fields[0]
	for _, field := range fields[1:] {
		keyValue := strings.SplitN(field, "=", 2)
		var value string
		if len(keyValue) == 2 {
			value = keyValue[1]
		}
		switch keyValue[0] {
		case "address":
			if address8, err := strconv.ParseUint(value, 0, 8); err == nil {
				address := uint8(address8)
				flags.Address = &address
			} else {
				return flags,
					fmt.Errorf("Specified address '%s' is not an unsigned integer: %s", value, err)
			}
		case "bus":
			if bus32, err := strconv.ParseInt(value, 0, 32); err == nil {
				bus := int(bus32)
				flags.Bus = &bus
			} else {
				return flags, fmt.Errorf("Specified bus '%s' is not an integer: %s", value, err)
			}
		case "repeatability":
			flags.Repeatability = value
		case "temp_offset":
			var err error
			flags.TempOffset, err = strconv.ParseFloat(value, 64)
			if err != nil {
				return flags, fmt.Errorf("Failed to parse temperature offset '%s': %s", value, err)
			}
		case "humidity_offset":
			var err error
			flags.HumidityOffset, err = strconv.ParseFloat(value, 64)
			if err != nil {
				return flags, fmt.Errorf("Failed to parse humidity offset '%s': %s", value, err)
			}
		case "pressure":
			pressure, err := strconv.ParseFloat(value, 64)
			if err != nil || pressure <= 0 {
				return flags, fmt.Errorf("Specified pressure '%s' is not a positive number in Pa", value)
			}
			flags.Pressure = &pressure
		case "method":
			method, err := humidity.ParseMethod(value)
			if err != nil {
				return flags, err
			}
			flags.Method = &method
		default:
			return flags, fmt.Errorf("Unknown sensor option '%s'.", keyValue[0])
		}
	}
	return flags, nil
}

func (s SensorFlags) NewBMPSensor(sensorType bsbmp.SensorType) (*BMPSensor, error) {
	// Defaults
	if s.Address == nil {
		address := uint8(0x76)
		s.Address = &address
	}
	if s.Bus == nil {
		bus := 0
		s.Bus = &bus
	}

	return NewBMPSensor(*s.Address, *s.Bus, s.Model, sensorType)
}

func (s SensorFlags) NewSHT3xSensor() (*SHT3xSensor, error) {
	// Defaults
	if s.Address == nil {
		address := uint8(0x45)
		s.Address = &address
	}
	if s.Bus == nil {
		bus := 0
		s.Bus = &bus
	}
	if s.Repeatability == "" {
		s.Repeatability = "high"
	}

	var repeatability sht3x.MeasureRepeatability
	switch s.Repeatability {
	case "low":
		repeatability = sht3x.RepeatabilityLow
	case "medium":
		repeatability = sht3x.RepeatabilityMedium
	case "high":
		repeatability = sht3x.RepeatabilityHigh
	default:
		return nil, fmt.Errorf("Unknown repeatability: %s", s.Repeatability)
	}

	return NewSHT3xSensor(*s.Address, *s.Bus, s.Model, repeatability, s.Repeatability)
}

func (s SensorFlags) NewSensor() (Sensor, error) {
	switch s.Model {
	case "BME280":
		return s.NewBMPSensor(bsbmp.BME280)
	case "BMP180":
		return s.NewBMPSensor(bsbmp.BMP180)
	case "BMP280":
		return s.NewBMPSensor(bsbmp.BMP280)
	case "BMP388":
		return s.NewBMPSensor(bsbmp.BMP388)
	case "SHT30", "SHT31", "SHT35":
		return s.NewSHT3xSensor()
	default:
		return nil, fmt.Errorf("Invalid/Unsupported sensor model '%s'!", s.Model)
	}
}

func (s SensorFlags) String() string {
	var b strings.Builder
	b.WriteString(s.Model)
	if s.Address != nil {
		fmt.Fprintf(&b, ",address=0x%x", *s.Address)
	}
	if s.Bus != nil {
		fmt.Fprintf(&b, ",bus=%d", *s.Bus)
	}
	if s.Repeatability != "" {
		fmt.Fprintf(&b, ",repeatability=%s", s.Repeatability)
	}
	if s.TempOffset != 0.0 {
		fmt.Fprintf(&b, ",temp_offset=%g", s.TempOffset)
	}
	if s.HumidityOffset != 0.0 {
		fmt.Fprintf(&b, ",humidity_offset=%g", s.HumidityOffset)
	}
	if s.Pressure != nil {
		fmt.Fprintf(&b, ",pressure=%g", *s.Pressure)
	}
	if s.Method != nil {
		fmt.Fprintf(&b, ",method=%s", *s.Method)
	}
	return b.String()
}

func parseSensors(args []string) ([]SensorFlags, error) {
	sensors := make([]SensorFlags, len(args))

	for i, arg := range args {
		sensor, err := parseSensorFlags(arg)
		if err != nil {
			return nil, fmt.Errorf("sensor %d '%s': %w", i+1, arg, err)
		}
		sensors[i] = sensor
	}

	return sensors, nil
}
